package db

import (
	"context"

	"github.com/tordrt/pgscaffold/internal/schema"
)

// plpgsql is installed in every database and never worth reporting
const builtinExtension = "plpgsql"

func (x *extraction) loadExtensions(ctx context.Context) error {
	query := `
		SELECT
			ext.extname,
			ns.nspname,
			ext.extversion
		FROM pg_extension AS ext
		JOIN pg_namespace AS ns ON ns.oid = ext.extnamespace
		WHERE ext.extname <> $1
		ORDER BY ext.extname
	`

	rows, err := x.conn.QueryContext(ctx, query, builtinExtension)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var ext schema.Extension
		if err := rows.Scan(&ext.Name, &ext.Schema, &ext.Version); err != nil {
			return err
		}
		x.model.AddExtension(&ext)
	}

	return rows.Err()
}
