package db

import (
	"context"
	"fmt"
	"slices"

	"github.com/lib/pq"

	"github.com/tordrt/pgscaffold/internal/schema"
)

const defaultIndexMethod = "btree"

// indexRow is one pg_index row that is not a primary key.
// indkey is an int2vector whose array cast keeps a zero lower bound
// ("[0:1]={1,2}"), so the query rebuilds it from its space-separated text.
type indexRow struct {
	name        string
	oid         int64
	unique      bool
	keys        pq.Int64Array
	keyCount    int
	method      string
	expressions *string
	predicate   *string
}

func (x *extraction) loadIndexes(ctx context.Context) error {
	keyCount := `idx.indnatts::int`
	if x.caps.CoveringIndexes {
		keyCount = `idx.indnkeyatts::int`
	}

	args := &queryArgs{}
	query := fmt.Sprintf(`
		SELECT
			ns.nspname,
			cls.relname,
			idxcls.relname AS idx_relname,
			idx.indexrelid::int8 AS idx_oid,
			idx.indisunique,
			string_to_array(idx.indkey::text, ' ')::int8[]::text AS indkey,
			%s AS key_count,
			am.amname,
			CASE WHEN idx.indexprs IS NULL THEN NULL ELSE pg_get_expr(idx.indexprs, cls.oid) END AS expressions,
			CASE WHEN idx.indpred IS NULL THEN NULL ELSE pg_get_expr(idx.indpred, cls.oid) END AS predicate
		FROM pg_class AS cls
		JOIN pg_namespace AS ns ON ns.oid = cls.relnamespace
		JOIN pg_index AS idx ON idx.indrelid = cls.oid
		JOIN pg_class AS idxcls ON idxcls.oid = idx.indexrelid
		JOIN pg_am AS am ON am.oid = idxcls.relam
		WHERE
			%s AND
			NOT idx.indisprimary
		ORDER BY ns.nspname, cls.relname, idxcls.relname
	`, keyCount, x.tableConditions(args))

	rows, err := x.conn.QueryContext(ctx, query, args.values...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	grouped := newGroupedRows[indexRow]()
	for rows.Next() {
		var schemaName, tableName string
		var r indexRow
		if err := rows.Scan(
			&schemaName, &tableName,
			&r.name, &r.oid, &r.unique, &r.keys, &r.keyCount,
			&r.method, &r.expressions, &r.predicate,
		); err != nil {
			return err
		}
		grouped.add(schema.TableKey{Schema: schemaName, Name: tableName}, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return grouped.each(func(key schema.TableKey, rows []indexRow) error {
		table := x.model.FindTable(key.Schema, key.Name)
		if table == nil {
			return nil
		}
		for _, r := range rows {
			x.addIndex(table, r)
		}
		return nil
	})
}

func (x *extraction) addIndex(table *schema.Table, r indexRow) {
	if x.uniqueIndexes[r.oid] {
		return
	}
	if slices.Contains(r.keys, 0) {
		x.diag.ExpressionIndexSkipped(table.DisplayName(), r.name, r.expressions)
		return
	}

	keyCount := r.keyCount
	if keyCount <= 0 || keyCount > len(r.keys) {
		keyCount = len(r.keys)
	}

	columns, err := table.ResolveColumns(r.keys[:keyCount])
	if err != nil {
		x.diag.UnsupportedColumnSkipped("index", table.DisplayName(), r.name, err)
		return
	}
	include, err := table.ResolveColumns(r.keys[keyCount:])
	if err != nil {
		x.diag.UnsupportedColumnSkipped("index", table.DisplayName(), r.name, err)
		return
	}

	index := &schema.Index{
		Table:    table,
		Name:     r.name,
		IsUnique: r.unique,
		Columns:  columns,
		Filter:   r.predicate,
	}
	if len(include) > 0 {
		index.IncludeColumns = include
	}
	if r.method != defaultIndexMethod {
		method := r.method
		index.Method = &method
	}
	table.Indexes = append(table.Indexes, index)
}
