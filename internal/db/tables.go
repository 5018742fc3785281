package db

import (
	"context"
	"fmt"
)

func (x *extraction) loadTables(ctx context.Context) error {
	args := &queryArgs{}
	query := fmt.Sprintf(`
		SELECT
			ns.nspname,
			cls.relname,
			des.description AS table_comment
		FROM pg_class AS cls
		JOIN pg_namespace AS ns ON ns.oid = cls.relnamespace
		LEFT OUTER JOIN pg_description AS des
			ON des.objoid = cls.oid AND des.classoid = 'pg_class'::regclass AND des.objsubid = 0
		WHERE
			%s
		ORDER BY ns.nspname, cls.relname
	`, x.tableConditions(args))

	rows, err := x.conn.QueryContext(ctx, query, args.values...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var schemaName, tableName string
		var comment *string
		if err := rows.Scan(&schemaName, &tableName, &comment); err != nil {
			return err
		}

		table := x.model.AddTable(schemaName, tableName)
		table.Comment = comment
	}

	return rows.Err()
}
