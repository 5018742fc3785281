package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/tordrt/pgscaffold/internal/schema"
)

// TextFormatter formats the model as plain text tables
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the model in text format
func (f *TextFormatter) Format(m *schema.Model) error {
	for i, t := range m.Tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}
		f.FormatTable(t)
	}

	if len(m.Sequences) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "SEQUENCES:")
		for _, seq := range m.Sequences {
			_, _ = fmt.Fprintf(f.writer, "  %s %s\n", sequenceName(seq), describeSequence(seq))
		}
	}
	if len(m.Enums) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "ENUMS:")
		for _, e := range m.Enums {
			_, _ = fmt.Fprintf(f.writer, "  %s (%s)\n", enumName(e), strings.Join(e.Labels, "|"))
		}
	}
	if len(m.Extensions) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "EXTENSIONS:")
		for _, ext := range m.Extensions {
			_, _ = fmt.Fprintf(f.writer, "  %s %s (schema %s)\n", ext.Name, ext.Version, ext.Schema)
		}
	}
	return nil
}

// FormatTable writes a single table
func (f *TextFormatter) FormatTable(t *schema.Table) {
	_, _ = fmt.Fprintf(f.writer, "TABLE %s\n", t.DisplayName())
	if t.Comment != nil {
		_, _ = fmt.Fprintf(f.writer, "  -- %s\n", *t.Comment)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(f.writer)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"#", "Column", "Type", "Attributes"})
	for _, col := range t.Columns {
		tw.AppendRow(table.Row{col.Ordinal, col.Name, columnType(col), strings.Join(columnFlags(t, col), ", ")})
	}
	tw.Render()

	if t.PrimaryKey != nil {
		_, _ = fmt.Fprintf(f.writer, "  PRIMARY KEY %s (%s)\n", t.PrimaryKey.Name, columnList(t.PrimaryKey.Columns))
	}
	f.writeSection("FOREIGN KEYS", len(t.ForeignKeys), func(i int) string { return describeForeignKey(t.ForeignKeys[i]) })
	f.writeSection("UNIQUE", len(t.UniqueConstraints), func(i int) string {
		uc := t.UniqueConstraints[i]
		return fmt.Sprintf("%s (%s)", uc.Name, columnList(uc.Columns))
	})
	f.writeSection("INDEXES", len(t.Indexes), func(i int) string { return describeIndex(t.Indexes[i]) })
}

func (f *TextFormatter) writeSection(title string, n int, line func(i int) string) {
	if n == 0 {
		return
	}
	_, _ = fmt.Fprintf(f.writer, "  %s:\n", title)
	for i := 0; i < n; i++ {
		_, _ = fmt.Fprintf(f.writer, "    %s\n", line(i))
	}
}
