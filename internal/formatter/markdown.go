package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/pgscaffold/internal/schema"
)

// MarkdownFormatter formats the model as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the model in markdown format
func (f *MarkdownFormatter) Format(m *schema.Model) error {
	_, _ = fmt.Fprintln(f.writer, "# Database Schema")
	_, _ = fmt.Fprintln(f.writer)

	for _, t := range m.Tables {
		f.FormatTable(t)
	}

	if len(m.Sequences) > 0 {
		_, _ = fmt.Fprintln(f.writer, "## Sequences")
		_, _ = fmt.Fprintln(f.writer)
		for _, seq := range m.Sequences {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", sequenceName(seq), describeSequence(seq))
		}
		_, _ = fmt.Fprintln(f.writer)
	}
	if len(m.Enums) > 0 {
		_, _ = fmt.Fprintln(f.writer, "## Enums")
		_, _ = fmt.Fprintln(f.writer)
		for _, e := range m.Enums {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", enumName(e), strings.Join(e.Labels, " | "))
		}
		_, _ = fmt.Fprintln(f.writer)
	}
	if len(m.Extensions) > 0 {
		_, _ = fmt.Fprintln(f.writer, "## Extensions")
		_, _ = fmt.Fprintln(f.writer)
		for _, ext := range m.Extensions {
			_, _ = fmt.Fprintf(f.writer, "- %s %s (schema %s)\n", ext.Name, ext.Version, ext.Schema)
		}
		_, _ = fmt.Fprintln(f.writer)
	}
	return nil
}

// FormatTable formats a single table (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatTable(t *schema.Table) {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", t.DisplayName())
	if t.Comment != nil {
		_, _ = fmt.Fprintf(f.writer, "%s\n\n", *t.Comment)
	}

	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)
	for _, col := range t.Columns {
		flags := columnFlags(t, col)
		if len(flags) > 0 {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", col.Name, columnType(col), strings.Join(flags, ", "))
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", col.Name, columnType(col))
		}
	}
	_, _ = fmt.Fprintln(f.writer)

	if len(t.ForeignKeys) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### References")
		_, _ = fmt.Fprintln(f.writer)
		for _, fk := range t.ForeignKeys {
			_, _ = fmt.Fprintf(f.writer, "- %s\n", describeForeignKey(fk))
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if len(t.UniqueConstraints) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Unique")
		_, _ = fmt.Fprintln(f.writer)
		for _, uc := range t.UniqueConstraints {
			_, _ = fmt.Fprintf(f.writer, "- %s on (%s)\n", uc.Name, columnList(uc.Columns))
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if len(t.Indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Idx")
		_, _ = fmt.Fprintln(f.writer)
		for _, idx := range t.Indexes {
			_, _ = fmt.Fprintf(f.writer, "- %s\n", describeIndex(idx))
		}
		_, _ = fmt.Fprintln(f.writer)
	}
}

// FormatIncoming writes the foreign keys of other tables pointing to t
func (f *MarkdownFormatter) FormatIncoming(t *schema.Table, m *schema.Model) {
	incoming := incomingForeignKeys(t, m)
	if len(incoming) == 0 {
		return
	}
	_, _ = fmt.Fprintln(f.writer, "### Referenced by")
	_, _ = fmt.Fprintln(f.writer)
	for _, fk := range incoming {
		_, _ = fmt.Fprintf(f.writer, "- %s (%s) → %s\n", fk.Table.DisplayName(), columnList(fk.Columns), columnList(fk.PrincipalColumns))
	}
	_, _ = fmt.Fprintln(f.writer)
}
