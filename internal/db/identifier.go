package db

import (
	"regexp"
	"strings"
)

// a part is either "quoted with "" escapes" or a run without . [ "
const identifierPart = `(?:"((?:""|[^"])+)"|([^.\["]+))`

var tableSpecPattern = regexp.MustCompile(`^` + identifierPart + `(?:\.` + identifierPart + `)?$`)

// TableSpec is a parsed table selector. Schema is empty when the specifier
// names only a table.
type TableSpec struct {
	Schema string
	Table  string
	// Raw is the specifier as given by the caller
	Raw string
}

// HasSchema reports whether the specifier was schema-qualified
func (s TableSpec) HasSchema() bool {
	return s.Schema != ""
}

func (s TableSpec) String() string {
	if s.HasSchema() {
		return s.Schema + "." + s.Table
	}
	return s.Table
}

// ParseTableSpec parses `schema.table`, `table`, `"My.Schema"."My Table"`.
// Surrounding whitespace is ignored.
func ParseTableSpec(spec string) (TableSpec, error) {
	trimmed := strings.TrimSpace(spec)
	m := tableSpecPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return TableSpec{}, &FormatError{Spec: spec}
	}

	first := unquotePart(m[1], m[2])
	if m[3] == "" && m[4] == "" {
		return TableSpec{Table: first, Raw: trimmed}, nil
	}
	return TableSpec{Schema: first, Table: unquotePart(m[3], m[4]), Raw: trimmed}, nil
}

// ParseTableSpecs parses every specifier, failing on the first bad one
func ParseTableSpecs(specs []string) ([]TableSpec, error) {
	parsed := make([]TableSpec, 0, len(specs))
	for _, spec := range specs {
		ts, err := ParseTableSpec(spec)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, ts)
	}
	return parsed, nil
}

func unquotePart(quoted, bare string) string {
	if quoted != "" {
		return strings.ReplaceAll(quoted, `""`, `"`)
	}
	return bare
}
