package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/pgscaffold/internal/schema"
)

// MultiFileFormatter writes the model to multiple files in a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text", "markdown" or "yaml"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes an overview file plus one file per table
func (f *MultiFileFormatter) Format(m *schema.Model) error {
	if _, err := New(f.OutputFormat, nil); err != nil {
		return err
	}

	// Create output directory if it doesn't exist
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(m); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, t := range m.Tables {
		if err := f.writeTableFile(t, m); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", t.DisplayName(), err)
		}
	}

	return nil
}

// TableFileName returns the file name a table is written to
func (f *MultiFileFormatter) TableFileName(t *schema.Table) string {
	return t.DisplayName() + f.getFileExtension()
}

func (f *MultiFileFormatter) writeOverview(m *schema.Model) error {
	filename := filepath.Join(f.OutputDir, "_overview"+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	sorted := make([]*schema.Table, len(m.Tables))
	copy(sorted, m.Tables)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].DisplayName() < sorted[j].DisplayName()
	})

	switch f.OutputFormat {
	case formatMarkdown:
		_, _ = fmt.Fprintf(file, "# Schema Overview\n\n")
		_, _ = fmt.Fprintf(file, "Each table has a corresponding file: `<schema>.<table>%s`\n\n", f.getFileExtension())
		_, _ = fmt.Fprintf(file, "## Tables\n\n")
		for _, t := range sorted {
			_, _ = fmt.Fprintf(file, "- **%s**%s\n", t.DisplayName(), references(t, ", "))
		}
		_, _ = fmt.Fprintln(file)
		md := NewMarkdownFormatter(file)
		return md.Format(&schema.Model{Sequences: m.Sequences, Enums: m.Enums, Extensions: m.Extensions})
	case formatYAML:
		return NewYAMLFormatter(file).Format(&schema.Model{Sequences: m.Sequences, Enums: m.Enums, Extensions: m.Extensions})
	default:
		_, _ = fmt.Fprintf(file, "SCHEMA OVERVIEW\n")
		_, _ = fmt.Fprintf(file, "Each table has a file: <schema>.<table>%s\n\n", f.getFileExtension())
		for _, t := range sorted {
			_, _ = fmt.Fprintf(file, "%s%s\n", t.DisplayName(), references(t, ","))
		}
		return NewTextFormatter(file).Format(&schema.Model{Sequences: m.Sequences, Enums: m.Enums, Extensions: m.Extensions})
	}
}

// references lists the principal tables of a table's foreign keys
func references(t *schema.Table, sep string) string {
	if len(t.ForeignKeys) == 0 {
		return ""
	}
	targets := make([]string, 0, len(t.ForeignKeys))
	for _, fk := range t.ForeignKeys {
		targets = append(targets, fk.PrincipalTable.DisplayName())
	}
	return fmt.Sprintf(" (references: %s)", strings.Join(targets, sep))
}

func (f *MultiFileFormatter) writeTableFile(t *schema.Table, m *schema.Model) error {
	file, err := os.Create(filepath.Join(f.OutputDir, f.TableFileName(t)))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	switch f.OutputFormat {
	case formatMarkdown:
		md := NewMarkdownFormatter(file)
		md.FormatTable(t)
		md.FormatIncoming(t, m)
	case formatYAML:
		return NewYAMLFormatter(file).FormatTable(t)
	default:
		NewTextFormatter(file).FormatTable(t)
	}
	return nil
}

func (f *MultiFileFormatter) getFileExtension() string {
	switch f.OutputFormat {
	case formatMarkdown:
		return ".md"
	case formatYAML:
		return ".yaml"
	default:
		return ".txt"
	}
}
