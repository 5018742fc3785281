package db

import (
	"context"
	"fmt"
	"math"

	"github.com/tordrt/pgscaffold/internal/schema"
)

type sequenceRow struct {
	schemaName  string
	name        string
	storeType   string
	start       int64
	min         int64
	max         int64
	increment   int64
	cyclic      bool
	ownerSchema *string
	ownerTable  *string
	ownerColumn *string
}

// sequenceDefaults are the values PostgreSQL picks when CREATE SEQUENCE
// leaves them out
type sequenceDefaults struct {
	start, min, max int64
}

// sequenceRange is the ascending default range of each integer width
var sequenceRange = map[string]struct{ min, max int64 }{
	"smallint": {math.MinInt16, math.MaxInt16},
	"integer":  {math.MinInt32, math.MaxInt32},
	"bigint":   {math.MinInt64, math.MaxInt64},
}

var sequenceTypeAliases = map[string]string{
	"int2": "smallint",
	"int4": "integer",
	"int8": "bigint",
}

func (x *extraction) loadSequences(ctx context.Context) error {
	args := &queryArgs{}
	query := fmt.Sprintf(`
		SELECT
			seq.sequence_schema,
			seq.sequence_name,
			seq.data_type,
			seq.start_value::int8,
			seq.minimum_value::int8,
			seq.maximum_value::int8,
			seq.increment::int8,
			seq.cycle_option = 'YES' AS is_cyclic,
			ownerns.nspname AS owner_schema,
			ownercls.relname AS owner_table,
			ownerattr.attname AS owner_column
		FROM information_schema.sequences AS seq
		JOIN pg_namespace AS seqns ON seqns.nspname = seq.sequence_schema
		JOIN pg_class AS seqcls
			ON seqcls.relnamespace = seqns.oid AND seqcls.relname = seq.sequence_name AND seqcls.relkind = 'S'
		LEFT OUTER JOIN pg_depend AS dep
			ON dep.objid = seqcls.oid AND dep.classid = 'pg_class'::regclass
			AND dep.refclassid = 'pg_class'::regclass AND dep.deptype IN ('a', 'i')
		LEFT OUTER JOIN pg_class AS ownercls ON ownercls.oid = dep.refobjid
		LEFT OUTER JOIN pg_namespace AS ownerns ON ownerns.oid = ownercls.relnamespace
		LEFT OUTER JOIN pg_attribute AS ownerattr
			ON ownerattr.attrelid = dep.refobjid AND ownerattr.attnum = dep.refobjsubid
		%s
		ORDER BY seq.sequence_schema, seq.sequence_name
	`, x.filters.whereSchema(args, "seq.sequence_schema"))

	rows, err := x.conn.QueryContext(ctx, query, args.values...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	var sequences []sequenceRow
	for rows.Next() {
		var r sequenceRow
		if err := rows.Scan(
			&r.schemaName, &r.name, &r.storeType,
			&r.start, &r.min, &r.max, &r.increment, &r.cyclic,
			&r.ownerSchema, &r.ownerTable, &r.ownerColumn,
		); err != nil {
			return err
		}
		sequences = append(sequences, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range sequences {
		if x.isImplicitSequence(r) {
			continue
		}

		seq := &schema.Sequence{
			Schema:      r.schemaName,
			Name:        r.name,
			StoreType:   r.storeType,
			StartValue:  &r.start,
			MinValue:    &r.min,
			MaxValue:    &r.max,
			IncrementBy: r.increment,
			IsCyclic:    r.cyclic,
		}
		x.normalizeSequence(seq)
		x.model.AddSequence(seq)
	}
	return nil
}

// isImplicitSequence reports whether the sequence is owned by a column that
// is outside the selection or generates its own values
func (x *extraction) isImplicitSequence(r sequenceRow) bool {
	if r.ownerTable == nil {
		return false
	}
	owner := x.model.FindTable(deref(r.ownerSchema), *r.ownerTable)
	if owner == nil {
		return true
	}
	col := owner.FindColumn(deref(r.ownerColumn))
	return col != nil && col.GeneratedOnAdd
}

// normalizeSequence unsets every value that equals the engine default
func (x *extraction) normalizeSequence(seq *schema.Sequence) {
	defaults, ok := defaultsForSequence(seq.StoreType, seq.IncrementBy, x.caps)
	if !ok {
		x.diag.UnrecognizedSequenceType(seq.Schema+"."+seq.Name, seq.StoreType)
		return
	}

	if seq.StartValue != nil && *seq.StartValue == defaults.start {
		seq.StartValue = nil
	}
	if seq.MinValue != nil && *seq.MinValue == defaults.min {
		seq.MinValue = nil
	}
	if seq.MaxValue != nil && *seq.MaxValue == defaults.max {
		seq.MaxValue = nil
	}
}

func defaultsForSequence(storeType string, increment int64, caps Capabilities) (sequenceDefaults, bool) {
	if alias, ok := sequenceTypeAliases[storeType]; ok {
		storeType = alias
	}
	r, ok := sequenceRange[storeType]
	if !ok {
		return sequenceDefaults{}, false
	}

	if increment >= 0 {
		return sequenceDefaults{start: 1, min: 1, max: r.max}, true
	}

	minimum := r.min
	if !caps.ExactDescendingMinimum {
		minimum++
	}
	return sequenceDefaults{start: -1, min: minimum, max: -1}, true
}
