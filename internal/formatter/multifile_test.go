package formatter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiFileFormatter(t *testing.T) {
	tests := []struct {
		format   string
		ext      string
		overview string
		table    string
	}{
		{format: "markdown", ext: ".md", overview: "- **public.orders** (references: public.customers)", table: "### Referenced by"},
		{format: "text", ext: ".txt", overview: "public.orders (references: public.customers)", table: "TABLE public.customers"},
		{format: "yaml", ext: ".yaml", overview: "invoice_no", table: "name: customers"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "schema")
			f := NewMultiFileFormatter(dir, tt.format)
			require.NoError(t, f.Format(sampleModel()))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			var files []string
			for _, e := range entries {
				files = append(files, e.Name())
			}
			assert.ElementsMatch(t, []string{"_overview" + tt.ext, "public.customers" + tt.ext, "public.orders" + tt.ext}, files)

			overview, err := os.ReadFile(filepath.Join(dir, "_overview"+tt.ext))
			require.NoError(t, err)
			assert.Contains(t, string(overview), tt.overview)

			customers, err := os.ReadFile(filepath.Join(dir, "public.customers"+tt.ext))
			require.NoError(t, err)
			assert.Contains(t, string(customers), tt.table)
		})
	}
}

func TestMultiFileFormatter_InvalidFormat(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "schema")
	err := NewMultiFileFormatter(dir, "html").Format(sampleModel())
	require.Error(t, err)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "nothing is written for an invalid format")
}
