// Package formatter renders an introspected model for humans.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/pgscaffold/internal/schema"
)

// Formatter writes a whole model
type Formatter interface {
	Format(m *schema.Model) error
}

// New returns the single-file formatter for the named format
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case formatText:
		return NewTextFormatter(w), nil
	case formatMarkdown:
		return NewMarkdownFormatter(w), nil
	case formatYAML:
		return NewYAMLFormatter(w), nil
	default:
		return nil, fmt.Errorf("invalid format: %s (must be one of %s)", format, strings.Join(Formats, ", "))
	}
}
