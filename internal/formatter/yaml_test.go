package formatter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter(&buf).Format(sampleModel()))

	var doc yamlModel
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	require.Len(t, doc.Tables, 2)
	orders := doc.Tables[1]
	assert.Equal(t, "public", orders.Schema)
	assert.Equal(t, "orders", orders.Name)
	require.Len(t, orders.Columns, 3)
	assert.Equal(t, 3, orders.Columns[1].Ordinal)
	assert.Equal(t, "serial", orders.Columns[0].ValueGeneration)
	assert.Empty(t, orders.Columns[1].ValueGeneration)
	require.NotNil(t, orders.Columns[2].UnderlyingType)
	assert.Equal(t, "numeric(12,2)", *orders.Columns[2].UnderlyingType)

	require.Len(t, orders.ForeignKeys, 1)
	assert.Equal(t, "public.customers", orders.ForeignKeys[0].PrincipalTable)
	assert.Equal(t, "CASCADE", orders.ForeignKeys[0].OnDelete)
	assert.Equal(t, []string{"amount"}, orders.Indexes[0].Include)

	require.Len(t, doc.Sequences, 1)
	require.NotNil(t, doc.Sequences[0].Start)
	assert.Equal(t, int64(1000), *doc.Sequences[0].Start)
	assert.Nil(t, doc.Sequences[0].Min)
	assert.Equal(t, []string{"sad", "ok", "happy"}, doc.Enums[0].Labels)
	assert.Equal(t, "1.3", doc.Extensions[0].Version)
}
