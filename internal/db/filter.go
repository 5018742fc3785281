package db

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// queryArgs collects the positional parameters of one catalog query
type queryArgs struct {
	values []any
}

// add appends a parameter and returns its placeholder
func (a *queryArgs) add(v any) string {
	a.values = append(a.values, v)
	return fmt.Sprintf("$%d", len(a.values))
}

// Filters restricts catalog queries to a selection. Values are always bound
// as text[] parameters. The zero value selects everything.
type Filters struct {
	schemas []string

	// bare names match a table in any schema
	bare []string

	// qualified selections, index-aligned
	qualifiedSchemas []string
	qualifiedTables  []string
}

// NewFilters builds the filters for a schema and table selection
func NewFilters(schemas []string, tables []TableSpec) Filters {
	f := Filters{schemas: schemas}
	for _, t := range tables {
		if t.HasSchema() {
			f.qualifiedSchemas = append(f.qualifiedSchemas, t.Schema)
			f.qualifiedTables = append(f.qualifiedTables, t.Table)
		} else {
			f.bare = append(f.bare, t.Table)
		}
	}
	return f
}

// RestrictsSchemas reports whether a schema selection was given
func (f Filters) RestrictsSchemas() bool {
	return len(f.schemas) > 0
}

// RestrictsTables reports whether any selection narrows the table set
func (f Filters) RestrictsTables() bool {
	return f.RestrictsSchemas() || len(f.bare) > 0 || len(f.qualifiedTables) > 0
}

// schemaPredicate renders `schemaCol = ANY($n)`, or nothing without a
// schema selection
func (f Filters) schemaPredicate(args *queryArgs, schemaCol string) string {
	if !f.RestrictsSchemas() {
		return ""
	}
	return schemaCol + " = ANY(" + args.add(pq.Array(f.schemas)) + "::text[])"
}

// tablePredicate admits a table that lies in a selected schema or matches
// one of the table specifiers
func (f Filters) tablePredicate(args *queryArgs, schemaCol, tableCol string) string {
	if !f.RestrictsTables() {
		return ""
	}

	var terms []string
	if p := f.schemaPredicate(args, schemaCol); p != "" {
		terms = append(terms, p)
	}
	if len(f.bare) > 0 {
		terms = append(terms, tableCol+" = ANY("+args.add(pq.Array(f.bare))+"::text[])")
	}
	if len(f.qualifiedTables) > 0 {
		schemas := args.add(pq.Array(f.qualifiedSchemas))
		tables := args.add(pq.Array(f.qualifiedTables))
		terms = append(terms, fmt.Sprintf("(%s::text, %s::text) IN (SELECT * FROM unnest(%s::text[], %s::text[]))",
			schemaCol, tableCol, schemas, tables))
	}
	return "(" + strings.Join(terms, "\nOR ") + ")"
}

// andTable renders "AND <predicate>" or nothing without a selection
func (f Filters) andTable(args *queryArgs, schemaCol, tableCol string) string {
	if p := f.tablePredicate(args, schemaCol, tableCol); p != "" {
		return "AND " + p
	}
	return ""
}

// whereSchema renders "WHERE <predicate>" or nothing without a schema
// selection
func (f Filters) whereSchema(args *queryArgs, schemaCol string) string {
	if p := f.schemaPredicate(args, schemaCol); p != "" {
		return "WHERE " + p
	}
	return ""
}
