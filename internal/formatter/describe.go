package formatter

import (
	"fmt"
	"strings"

	"github.com/tordrt/pgscaffold/internal/schema"
)

const (
	formatMarkdown = "markdown"
	formatText     = "text"
	formatYAML     = "yaml"
)

// Formats lists the output formats accepted by New and the multi-file formatter
var Formats = []string{formatText, formatMarkdown, formatYAML}

func columnList(columns []*schema.Column) string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}

func isPrimaryKeyColumn(table *schema.Table, col *schema.Column) bool {
	if table.PrimaryKey == nil {
		return false
	}
	for _, c := range table.PrimaryKey.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// columnType renders the store type, with the base type of a domain
func columnType(col *schema.Column) string {
	if col.UnderlyingStoreType != nil {
		return fmt.Sprintf("%s (%s)", col.StoreType, *col.UnderlyingStoreType)
	}
	return col.StoreType
}

func columnFlags(table *schema.Table, col *schema.Column) []string {
	var flags []string
	if isPrimaryKeyColumn(table, col) {
		flags = append(flags, "PK")
	}
	if !col.Nullable {
		flags = append(flags, "NOT NULL")
	}
	switch col.ValueGeneration {
	case schema.GenerationSerial:
		flags = append(flags, "SERIAL")
	case schema.GenerationIdentityAlways:
		flags = append(flags, "IDENTITY ALWAYS")
	case schema.GenerationIdentityByDefault:
		flags = append(flags, "IDENTITY BY DEFAULT")
	}
	if col.DefaultSQL != nil {
		flags = append(flags, "DEFAULT "+*col.DefaultSQL)
	}
	return flags
}

func describeForeignKey(fk *schema.ForeignKey) string {
	s := fmt.Sprintf("%s (%s) → %s (%s)", fk.Name, columnList(fk.Columns),
		fk.PrincipalTable.DisplayName(), columnList(fk.PrincipalColumns))
	if fk.OnDelete != schema.NoAction {
		s += " ON DELETE " + fk.OnDelete.String()
	}
	return s
}

func describeIndex(idx *schema.Index) string {
	s := fmt.Sprintf("%s (%s)", idx.Name, columnList(idx.Columns))
	if idx.Method != nil {
		s += " USING " + *idx.Method
	}
	if len(idx.IncludeColumns) > 0 {
		s += fmt.Sprintf(" INCLUDE (%s)", columnList(idx.IncludeColumns))
	}
	if idx.IsUnique {
		s += " UNIQUE"
	}
	if idx.Filter != nil {
		s += " WHERE " + *idx.Filter
	}
	return s
}

func describeSequence(seq *schema.Sequence) string {
	parts := []string{seq.StoreType, fmt.Sprintf("INCREMENT %d", seq.IncrementBy)}
	if seq.StartValue != nil {
		parts = append(parts, fmt.Sprintf("START %d", *seq.StartValue))
	}
	if seq.MinValue != nil {
		parts = append(parts, fmt.Sprintf("MINVALUE %d", *seq.MinValue))
	}
	if seq.MaxValue != nil {
		parts = append(parts, fmt.Sprintf("MAXVALUE %d", *seq.MaxValue))
	}
	if seq.IsCyclic {
		parts = append(parts, "CYCLE")
	}
	return strings.Join(parts, " ")
}

func sequenceName(seq *schema.Sequence) string {
	return schema.TableKey{Schema: seq.Schema, Name: seq.Name}.String()
}

func enumName(e *schema.EnumType) string {
	return schema.TableKey{Schema: e.Schema, Name: e.Name}.String()
}

// incomingForeignKeys finds all foreign keys of other tables pointing to table
func incomingForeignKeys(table *schema.Table, m *schema.Model) []*schema.ForeignKey {
	var incoming []*schema.ForeignKey
	for _, t := range m.Tables {
		if t == table {
			continue
		}
		for _, fk := range t.ForeignKeys {
			if fk.PrincipalTable == table {
				incoming = append(incoming, fk)
			}
		}
	}
	return incoming
}
