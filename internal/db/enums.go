package db

import (
	"context"
	"fmt"

	"github.com/tordrt/pgscaffold/internal/schema"
)

const defaultSchema = "public"

// loadEnums registers every enum type and remembers their qualified names
// so that enum-typed columns can be recognized
func (x *extraction) loadEnums(ctx context.Context) error {
	args := &queryArgs{}
	query := fmt.Sprintf(`
		SELECT
			ns.nspname,
			typ.typname,
			enm.enumlabel
		FROM pg_enum AS enm
		JOIN pg_type AS typ ON typ.oid = enm.enumtypid
		JOIN pg_namespace AS ns ON ns.oid = typ.typnamespace
		%s
		ORDER BY ns.nspname, typ.typname, enm.enumsortorder
	`, x.filters.whereSchema(args, "ns.nspname"))

	rows, err := x.conn.QueryContext(ctx, query, args.values...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	grouped := newGroupedRows[string]()
	for rows.Next() {
		var schemaName, typeName, label string
		if err := rows.Scan(&schemaName, &typeName, &label); err != nil {
			return err
		}
		grouped.add(schema.TableKey{Schema: schemaName, Name: typeName}, label)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return grouped.each(func(key schema.TableKey, labels []string) error {
		x.enumTypes[key.String()] = true

		enumSchema := key.Schema
		if enumSchema == defaultSchema {
			enumSchema = ""
		}
		x.model.AddEnum(&schema.EnumType{Schema: enumSchema, Name: key.Name, Labels: labels})
		return nil
	})
}
