package db

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"golang.org/x/text/cases"

	"github.com/tordrt/pgscaffold/internal/schema"
)

// constraintRow is one pg_constraint row of kind p, f or u
type constraintRow struct {
	name            string
	kind            string
	columns         pq.Int64Array
	principalSchema *string
	principalTable  *string
	principalCols   pq.Int64Array
	deleteAction    string
	indexOID        int64
}

var deleteActions = map[string]schema.ReferentialAction{
	"a": schema.NoAction,
	"r": schema.Restrict,
	"c": schema.Cascade,
	"n": schema.SetNull,
	"d": schema.SetDefault,
}

func (x *extraction) loadConstraints(ctx context.Context) error {
	args := &queryArgs{}
	query := fmt.Sprintf(`
		SELECT
			ns.nspname,
			cls.relname,
			con.conname,
			con.contype::text,
			con.conkey::text,
			frnns.nspname AS fr_nspname,
			frncls.relname AS fr_relname,
			con.confkey::text,
			con.confdeltype::text,
			con.conindid::int8
		FROM pg_class AS cls
		JOIN pg_namespace AS ns ON ns.oid = cls.relnamespace
		JOIN pg_constraint AS con ON con.conrelid = cls.oid
		LEFT OUTER JOIN pg_class AS frncls ON frncls.oid = con.confrelid
		LEFT OUTER JOIN pg_namespace AS frnns ON frnns.oid = frncls.relnamespace
		WHERE
			%s AND
			con.contype IN ('p', 'f', 'u')
		ORDER BY ns.nspname, cls.relname, con.conname
	`, x.tableConditions(args))

	rows, err := x.conn.QueryContext(ctx, query, args.values...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	grouped := newGroupedRows[constraintRow]()
	for rows.Next() {
		var schemaName, tableName string
		var r constraintRow
		if err := rows.Scan(
			&schemaName, &tableName,
			&r.name, &r.kind, &r.columns,
			&r.principalSchema, &r.principalTable, &r.principalCols,
			&r.deleteAction, &r.indexOID,
		); err != nil {
			return err
		}
		grouped.add(schema.TableKey{Schema: schemaName, Name: tableName}, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return grouped.each(func(key schema.TableKey, rows []constraintRow) error {
		table := x.model.FindTable(key.Schema, key.Name)
		if table == nil {
			return nil
		}

		for _, r := range rows {
			if r.kind == "p" {
				x.addPrimaryKey(table, r)
			}
		}
		for _, r := range rows {
			if r.kind == "f" {
				if err := x.addForeignKey(table, r); err != nil {
					return err
				}
			}
		}
		for _, r := range rows {
			if r.kind == "u" {
				x.addUniqueConstraint(table, r)
			}
		}
		return nil
	})
}

func (x *extraction) addPrimaryKey(table *schema.Table, r constraintRow) {
	columns, err := table.ResolveColumns(r.columns)
	if err != nil {
		x.diag.UnsupportedColumnSkipped("primary key", table.DisplayName(), r.name, err)
		return
	}
	table.PrimaryKey = &schema.PrimaryKey{Table: table, Name: r.name, Columns: columns}
}

func (x *extraction) addForeignKey(table *schema.Table, r constraintRow) error {
	principalKey := schema.TableKey{Schema: deref(r.principalSchema), Name: deref(r.principalTable)}
	principal := x.findPrincipalTable(principalKey)
	if principal == nil {
		x.diag.MissingPrincipalTable(table.DisplayName(), r.name, principalKey.String())
		return nil
	}

	if len(r.columns) != len(r.principalCols) {
		return &InternalConsistencyError{
			Table:      table.DisplayName(),
			Constraint: r.name,
			Detail:     fmt.Sprintf("foreign key has %d columns but %d principal columns", len(r.columns), len(r.principalCols)),
		}
	}

	columns, err := table.ResolveColumns(r.columns)
	if err != nil {
		x.diag.UnsupportedColumnSkipped("foreign key", table.DisplayName(), r.name, err)
		return nil
	}
	principalColumns, err := principal.ResolveColumns(r.principalCols)
	if err != nil {
		x.diag.UnsupportedColumnSkipped("foreign key", table.DisplayName(), r.name, err)
		return nil
	}

	// a key dropped over a placeholder never reaches the action mapping
	action, ok := deleteActions[r.deleteAction]
	if !ok {
		return &InternalConsistencyError{
			Table:      table.DisplayName(),
			Constraint: r.name,
			Detail:     fmt.Sprintf("unexpected delete action %q", r.deleteAction),
		}
	}

	table.ForeignKeys = append(table.ForeignKeys, &schema.ForeignKey{
		Table:            table,
		Name:             r.name,
		Columns:          columns,
		PrincipalTable:   principal,
		PrincipalColumns: principalColumns,
		OnDelete:         action,
	})
	return nil
}

// findPrincipalTable matches schema and name exactly, then falls back to a
// case-insensitive match
func (x *extraction) findPrincipalTable(key schema.TableKey) *schema.Table {
	if t := x.model.FindTable(key.Schema, key.Name); t != nil {
		return t
	}

	fold := cases.Fold()
	schemaName, tableName := fold.String(key.Schema), fold.String(key.Name)
	for _, t := range x.model.Tables {
		if fold.String(t.Schema) == schemaName && fold.String(t.Name) == tableName {
			return t
		}
	}
	return nil
}

func (x *extraction) addUniqueConstraint(table *schema.Table, r constraintRow) {
	// the backing index is never an independent index, even if the
	// constraint itself cannot be materialized
	x.uniqueIndexes[r.indexOID] = true

	columns, err := table.ResolveColumns(r.columns)
	if err != nil {
		x.diag.UnsupportedColumnSkipped("unique constraint", table.DisplayName(), r.name, err)
		return
	}

	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}
	x.diag.UniqueConstraintFound(table.DisplayName(), r.name, names)

	table.UniqueConstraints = append(table.UniqueConstraints, &schema.UniqueConstraint{
		Table:   table,
		Name:    r.name,
		Columns: columns,
	})
}
