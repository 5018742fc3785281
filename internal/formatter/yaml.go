package formatter

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/pgscaffold/internal/schema"
)

type yamlModel struct {
	Tables     []yamlTable     `yaml:"tables"`
	Sequences  []yamlSequence  `yaml:"sequences,omitempty"`
	Enums      []yamlEnum      `yaml:"enums,omitempty"`
	Extensions []yamlExtension `yaml:"extensions,omitempty"`
}

type yamlTable struct {
	Schema      string           `yaml:"schema,omitempty"`
	Name        string           `yaml:"name"`
	Comment     *string          `yaml:"comment,omitempty"`
	Columns     []yamlColumn     `yaml:"columns"`
	PrimaryKey  *yamlKey         `yaml:"primary_key,omitempty"`
	ForeignKeys []yamlForeignKey `yaml:"foreign_keys,omitempty"`
	Unique      []yamlKey        `yaml:"unique_constraints,omitempty"`
	Indexes     []yamlIndex      `yaml:"indexes,omitempty"`
}

type yamlColumn struct {
	Name            string  `yaml:"name"`
	Ordinal         int     `yaml:"ordinal"`
	Type            string  `yaml:"type"`
	UnderlyingType  *string `yaml:"underlying_type,omitempty"`
	Nullable        bool    `yaml:"nullable"`
	Default         *string `yaml:"default,omitempty"`
	ValueGeneration string  `yaml:"value_generation,omitempty"`
	Comment         *string `yaml:"comment,omitempty"`
}

type yamlKey struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns"`
}

type yamlForeignKey struct {
	Name             string   `yaml:"name"`
	Columns          []string `yaml:"columns"`
	PrincipalTable   string   `yaml:"principal_table"`
	PrincipalColumns []string `yaml:"principal_columns"`
	OnDelete         string   `yaml:"on_delete"`
}

type yamlIndex struct {
	Name    string   `yaml:"name"`
	Unique  bool     `yaml:"unique,omitempty"`
	Columns []string `yaml:"columns"`
	Include []string `yaml:"include,omitempty"`
	Method  *string  `yaml:"method,omitempty"`
	Filter  *string  `yaml:"filter,omitempty"`
}

type yamlSequence struct {
	Schema      string `yaml:"schema,omitempty"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Start       *int64 `yaml:"start,omitempty"`
	Min         *int64 `yaml:"min,omitempty"`
	Max         *int64 `yaml:"max,omitempty"`
	IncrementBy int64  `yaml:"increment_by"`
	Cyclic      bool   `yaml:"cyclic,omitempty"`
}

type yamlEnum struct {
	Schema string   `yaml:"schema,omitempty"`
	Name   string   `yaml:"name"`
	Labels []string `yaml:"labels"`
}

type yamlExtension struct {
	Name    string `yaml:"name"`
	Schema  string `yaml:"schema"`
	Version string `yaml:"version"`
}

// YAMLFormatter writes the model as a YAML document
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the model as a single YAML document
func (f *YAMLFormatter) Format(m *schema.Model) error {
	doc := yamlModel{Tables: make([]yamlTable, 0, len(m.Tables))}
	for _, t := range m.Tables {
		doc.Tables = append(doc.Tables, toYAMLTable(t))
	}
	for _, seq := range m.Sequences {
		doc.Sequences = append(doc.Sequences, yamlSequence{
			Schema:      seq.Schema,
			Name:        seq.Name,
			Type:        seq.StoreType,
			Start:       seq.StartValue,
			Min:         seq.MinValue,
			Max:         seq.MaxValue,
			IncrementBy: seq.IncrementBy,
			Cyclic:      seq.IsCyclic,
		})
	}
	for _, e := range m.Enums {
		doc.Enums = append(doc.Enums, yamlEnum{Schema: e.Schema, Name: e.Name, Labels: e.Labels})
	}
	for _, ext := range m.Extensions {
		doc.Extensions = append(doc.Extensions, yamlExtension{Name: ext.Name, Schema: ext.Schema, Version: ext.Version})
	}
	return f.encode(doc)
}

// FormatTable writes a single table as a YAML document
func (f *YAMLFormatter) FormatTable(t *schema.Table) error {
	return f.encode(toYAMLTable(t))
}

func (f *YAMLFormatter) encode(v any) error {
	enc := yaml.NewEncoder(f.writer)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func toYAMLTable(t *schema.Table) yamlTable {
	out := yamlTable{
		Schema:  t.Schema,
		Name:    t.Name,
		Comment: t.Comment,
		Columns: make([]yamlColumn, 0, len(t.Columns)),
	}
	for _, col := range t.Columns {
		c := yamlColumn{
			Name:           col.Name,
			Ordinal:        col.Ordinal,
			Type:           col.StoreType,
			UnderlyingType: col.UnderlyingStoreType,
			Nullable:       col.Nullable,
			Default:        col.DefaultSQL,
			Comment:        col.Comment,
		}
		if col.ValueGeneration != schema.GenerationNone {
			c.ValueGeneration = col.ValueGeneration.String()
		}
		out.Columns = append(out.Columns, c)
	}
	if t.PrimaryKey != nil {
		out.PrimaryKey = &yamlKey{Name: t.PrimaryKey.Name, Columns: names(t.PrimaryKey.Columns)}
	}
	for _, fk := range t.ForeignKeys {
		out.ForeignKeys = append(out.ForeignKeys, yamlForeignKey{
			Name:             fk.Name,
			Columns:          names(fk.Columns),
			PrincipalTable:   fk.PrincipalTable.DisplayName(),
			PrincipalColumns: names(fk.PrincipalColumns),
			OnDelete:         fk.OnDelete.String(),
		})
	}
	for _, uc := range t.UniqueConstraints {
		out.Unique = append(out.Unique, yamlKey{Name: uc.Name, Columns: names(uc.Columns)})
	}
	for _, idx := range t.Indexes {
		out.Indexes = append(out.Indexes, yamlIndex{
			Name:    idx.Name,
			Unique:  idx.IsUnique,
			Columns: names(idx.Columns),
			Include: names(idx.IncludeColumns),
			Method:  idx.Method,
			Filter:  idx.Filter,
		})
	}
	return out
}

func names(columns []*schema.Column) []string {
	if len(columns) == 0 {
		return nil
	}
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.Name
	}
	return out
}
