package db

import (
	"context"
	"fmt"
	"slices"

	"github.com/tordrt/pgscaffold/internal/schema"
)

// columnRow is one pg_attribute row joined with its type information
type columnRow struct {
	attnum       int
	name         string
	dropped      bool
	typeName     *string
	typeSchema   *string
	baseTypeName *string
	storeType    *string
	baseStore    *string
	typeType     *string
	elemTypeType *string
	nullable     bool
	defaultSQL   *string
	identity     string
	generated    string
	comment      *string
}

// zeroDefaults lists, per system type name, default expressions that only
// restate the zero value of the type
var zeroDefaults = map[string][]string{
	"int2":        {"0"},
	"int4":        {"0"},
	"int8":        {"0"},
	"float4":      {"0", "0.0", "'0'::real"},
	"float8":      {"0", "0.0", "'0'::double precision"},
	"numeric":     {"0", "0.0", "'0'::numeric"},
	"money":       {"0", "'0'::money", "'$0.00'::money"},
	"bool":        {"false"},
	"date":        {"'0001-01-01'::date"},
	"timestamp":   {"'0001-01-01 00:00:00'::timestamp without time zone"},
	"timestamptz": {"'0001-01-01 00:00:00+00'::timestamp with time zone"},
	"time":        {"'00:00:00'::time without time zone"},
	"interval":    {"'00:00:00'::interval"},
	"uuid":        {"'00000000-0000-0000-0000-000000000000'::uuid"},
}

var serialTypes = []string{"int2", "int4", "int8", "smallint", "integer", "bigint"}

func (x *extraction) loadColumns(ctx context.Context) error {
	identity := `''::text`
	if x.caps.IdentityColumns {
		identity = `attr.attidentity::text`
	}
	generated := `''::text`
	if x.caps.GeneratedColumns {
		generated = `attr.attgenerated::text`
	}

	args := &queryArgs{}
	query := fmt.Sprintf(`
		SELECT
			ns.nspname,
			cls.relname,
			attr.attnum,
			attr.attname,
			attr.attisdropped,
			typ.typname,
			typns.nspname AS typnspname,
			basetyp.typname AS basetypname,
			format_type(typ.oid, attr.atttypmod) AS formatted_typname,
			format_type(basetyp.oid, typ.typtypmod) AS formatted_basetypname,
			CASE WHEN pg_proc.proname = 'array_recv' THEN 'a' ELSE typ.typtype::text END AS typtype,
			CASE WHEN pg_proc.proname = 'array_recv' THEN elemtyp.typtype::text ELSE NULL END AS elemtyptype,
			NOT (attr.attnotnull OR COALESCE(typ.typnotnull, false)) AS nullable,
			CASE WHEN attr.atthasdef THEN (
				SELECT pg_get_expr(adbin, cls.oid) FROM pg_attrdef WHERE adrelid = cls.oid AND adnum = attr.attnum
			) ELSE NULL END AS column_default,
			%s AS attidentity,
			%s AS attgenerated,
			des.description
		FROM pg_class AS cls
		JOIN pg_namespace AS ns ON ns.oid = cls.relnamespace
		JOIN pg_attribute AS attr ON attr.attrelid = cls.oid
		LEFT OUTER JOIN pg_type AS typ ON typ.oid = attr.atttypid
		LEFT OUTER JOIN pg_namespace AS typns ON typns.oid = typ.typnamespace
		LEFT OUTER JOIN pg_proc ON pg_proc.oid = typ.typreceive
		LEFT OUTER JOIN pg_type AS elemtyp ON elemtyp.oid = typ.typelem
		LEFT OUTER JOIN pg_type AS basetyp ON basetyp.oid = typ.typbasetype
		LEFT OUTER JOIN pg_description AS des
			ON des.objoid = cls.oid AND des.classoid = 'pg_class'::regclass AND des.objsubid = attr.attnum
		WHERE
			%s AND
			attr.attnum > 0
		ORDER BY ns.nspname, cls.relname, attr.attnum
	`, identity, generated, x.tableConditions(args))

	rows, err := x.conn.QueryContext(ctx, query, args.values...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	grouped := newGroupedRows[columnRow]()
	for rows.Next() {
		var schemaName, tableName string
		var r columnRow
		if err := rows.Scan(
			&schemaName, &tableName,
			&r.attnum, &r.name, &r.dropped,
			&r.typeName, &r.typeSchema, &r.baseTypeName,
			&r.storeType, &r.baseStore,
			&r.typeType, &r.elemTypeType,
			&r.nullable, &r.defaultSQL,
			&r.identity, &r.generated,
			&r.comment,
		); err != nil {
			return err
		}
		grouped.add(schema.TableKey{Schema: schemaName, Name: tableName}, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return grouped.each(func(key schema.TableKey, rows []columnRow) error {
		table := x.model.FindTable(key.Schema, key.Name)
		if table == nil {
			return nil
		}
		for _, r := range rows {
			x.addColumn(table, r)
		}
		return nil
	})
}

func (x *extraction) addColumn(table *schema.Table, r columnRow) {
	// keep the arena index equal to attnum - 1
	for table.NextOrdinal() < r.attnum {
		table.AddPlaceholder(schema.Dropped)
	}
	if r.attnum < table.NextOrdinal() {
		return
	}

	if r.dropped {
		table.AddPlaceholder(schema.Dropped)
		return
	}
	if x.isEnumColumn(r) {
		x.diag.EnumColumnSkipped(table.DisplayName(), r.name)
		table.AddPlaceholder(schema.Enum)
		return
	}
	if r.generated == "s" {
		x.diag.ComputedColumnSkipped(table.DisplayName(), r.name)
		table.AddPlaceholder(schema.Computed)
		return
	}

	col := &schema.Column{
		Name:       r.name,
		Nullable:   r.nullable,
		StoreType:  deref(r.storeType),
		DefaultSQL: r.defaultSQL,
		Comment:    r.comment,
	}

	systemTypeName := deref(r.typeName)
	if deref(r.typeType) == "d" {
		col.UnderlyingStoreType = r.baseStore
		systemTypeName = deref(r.baseTypeName)
	}

	col.DefaultSQL = cleanDefault(col.DefaultSQL, systemTypeName, col.Nullable)
	col.ValueGeneration = classifyGeneration(r.identity, systemTypeName, table, col)
	if col.ValueGeneration == schema.GenerationSerial {
		col.DefaultSQL = nil
	}
	col.GeneratedOnAdd = col.ValueGeneration != schema.GenerationNone

	table.AddColumn(col)
	x.diag.ColumnFound(table.DisplayName(), col.Name, col.Ordinal, col.StoreType, col.Nullable, col.DefaultSQL)
}

func (x *extraction) isEnumColumn(r columnRow) bool {
	switch deref(r.typeType) {
	case "e":
		return true
	case "a":
		if deref(r.elemTypeType) == "e" {
			return true
		}
	}
	if r.typeName == nil {
		return false
	}
	return x.enumTypes[deref(r.typeSchema)+"."+*r.typeName]
}

// cleanDefault drops defaults that merely restate the zero value of a
// non-nullable column's type
func cleanDefault(defaultSQL *string, systemTypeName string, nullable bool) *string {
	if defaultSQL == nil || nullable {
		return defaultSQL
	}
	if slices.Contains(zeroDefaults[systemTypeName], *defaultSQL) {
		return nil
	}
	return defaultSQL
}

func classifyGeneration(identity, systemTypeName string, table *schema.Table, col *schema.Column) schema.ValueGeneration {
	switch identity {
	case "a":
		return schema.GenerationIdentityAlways
	case "d":
		return schema.GenerationIdentityByDefault
	}

	if col.DefaultSQL == nil || !slices.Contains(serialTypes, systemTypeName) {
		return schema.GenerationNone
	}
	if slices.Contains(serialDefaults(table.Schema, table.Name, col.Name), *col.DefaultSQL) {
		return schema.GenerationSerial
	}
	return schema.GenerationNone
}

// serialDefaults returns the default expressions PostgreSQL renders for the
// implicit sequence of a serial column
func serialDefaults(schemaName, tableName, columnName string) []string {
	seq := tableName + "_" + columnName + "_seq"
	names := []string{seq, `"` + seq + `"`}
	if schemaName != "" {
		for _, s := range []string{schemaName, `"` + schemaName + `"`} {
			names = append(names, s+"."+seq, s+`."`+seq+`"`)
		}
	}

	defaults := make([]string, len(names))
	for i, name := range names {
		defaults[i] = "nextval('" + name + "'::regclass)"
	}
	return defaults
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
