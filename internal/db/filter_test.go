package db

import (
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSpecs(t *testing.T, specs ...string) []TableSpec {
	t.Helper()
	parsed, err := ParseTableSpecs(specs)
	require.NoError(t, err)
	return parsed
}

// arrayValues renders every bound parameter the way it reaches the driver
func arrayValues(t *testing.T, args *queryArgs) []string {
	t.Helper()
	out := make([]string, len(args.values))
	for i, v := range args.values {
		valuer, ok := v.(driver.Valuer)
		require.True(t, ok, "parameter %d is not a driver.Valuer", i+1)
		value, err := valuer.Value()
		require.NoError(t, err)
		out[i] = value.(string)
	}
	return out
}

func TestNewFilters_Empty(t *testing.T) {
	f := NewFilters(nil, nil)
	args := &queryArgs{}

	assert.False(t, f.RestrictsSchemas())
	assert.False(t, f.RestrictsTables())
	assert.Empty(t, f.andTable(args, "ns.nspname", "cls.relname"))
	assert.Empty(t, f.whereSchema(args, "ns.nspname"))
	assert.Empty(t, args.values)
}

func TestNewFilters_SchemasOnly(t *testing.T) {
	f := NewFilters([]string{"public", "sales"}, nil)
	assert.True(t, f.RestrictsSchemas())
	assert.True(t, f.RestrictsTables())

	args := &queryArgs{}
	assert.Equal(t, "WHERE seq.sequence_schema = ANY($1::text[])", f.whereSchema(args, "seq.sequence_schema"))
	assert.Equal(t, []string{`{"public","sales"}`}, arrayValues(t, args))

	args = &queryArgs{}
	assert.Equal(t, "AND (ns.nspname = ANY($1::text[]))", f.andTable(args, "ns.nspname", "cls.relname"))
	assert.Len(t, args.values, 1)
}

func TestNewFilters_TablesOnly(t *testing.T) {
	f := NewFilters(nil, mustSpecs(t, "orders", "sales.customers"))
	assert.False(t, f.RestrictsSchemas())
	assert.True(t, f.RestrictsTables())

	args := &queryArgs{}
	assert.Equal(t,
		"AND (t = ANY($1::text[])\nOR (s::text, t::text) IN (SELECT * FROM unnest($2::text[], $3::text[])))",
		f.andTable(args, "s", "t"))
	assert.Equal(t, []string{`{"orders"}`, `{"sales"}`, `{"customers"}`}, arrayValues(t, args))

	args = &queryArgs{}
	assert.Empty(t, f.whereSchema(args, "s"), "a table selection alone does not restrict schemas")
	assert.Empty(t, args.values)
}

func TestNewFilters_SchemasAndTables(t *testing.T) {
	f := NewFilters([]string{"audit"}, mustSpecs(t, "public.orders"))

	args := &queryArgs{}
	assert.Equal(t,
		"AND (s = ANY($1::text[])\nOR (s::text, t::text) IN (SELECT * FROM unnest($2::text[], $3::text[])))",
		f.andTable(args, "s", "t"))
	assert.Equal(t, []string{`{"audit"}`, `{"public"}`, `{"orders"}`}, arrayValues(t, args))
}

func TestNewFilters_ValuesAreNeverInlined(t *testing.T) {
	f := NewFilters([]string{"o'brien"}, mustSpecs(t, `"it's"`, `"My.Schema"."My Table"`))

	args := &queryArgs{}
	fragment := f.andTable(args, "s", "t")
	assert.NotContains(t, fragment, "brien")
	assert.NotContains(t, fragment, "it's")
	assert.NotContains(t, fragment, "My Table")
	assert.Equal(t, []string{`{"o'brien"}`, `{"it's"}`, `{"My.Schema"}`, `{"My Table"}`}, arrayValues(t, args))
}

func TestQueryArgs_NumbersPlaceholders(t *testing.T) {
	args := &queryArgs{}
	assert.Equal(t, "$1", args.add("a"))
	assert.Equal(t, "$2", args.add("b"))
	assert.Equal(t, []any{"a", "b"}, args.values)
}
