package db

import (
	"context"
	"log/slog"
	"strings"
)

// Diagnostic event kinds, carried in the "event" attribute
const (
	EventColumnFound              = "column_found"
	EventEnumColumnSkipped        = "enum_column_skipped"
	EventComputedColumnSkipped    = "computed_column_skipped"
	EventExpressionIndexSkipped   = "expression_index_skipped"
	EventUnsupportedColumnSkipped = "unsupported_column_skipped"
	EventMissingPrincipalTable    = "missing_principal_table_skipped"
	EventUniqueConstraintFound    = "unique_constraint_found"
	EventMissingSchema            = "missing_schema"
	EventMissingTable             = "missing_table"
	EventUnrecognizedSequenceType = "unrecognized_sequence_type"
)

// Diagnostics emits structured events about what the extractor found or
// skipped. It holds no state besides the logger.
type Diagnostics struct {
	logger *slog.Logger
}

// NewDiagnostics wraps a logger. If logger is nil, a discard logger is used.
func NewDiagnostics(logger *slog.Logger) *Diagnostics {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Diagnostics{logger: logger}
}

// Logger returns the underlying logger
func (d *Diagnostics) Logger() *slog.Logger {
	return d.logger
}

func (d *Diagnostics) emit(level slog.Level, event, msg string, attrs ...slog.Attr) {
	attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	d.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// ColumnFound reports a materialized column
func (d *Diagnostics) ColumnFound(table, column string, ordinal int, storeType string, nullable bool, defaultSQL *string) {
	attrs := []slog.Attr{
		slog.String("table", table),
		slog.String("column", column),
		slog.Int("ordinal", ordinal),
		slog.String("store_type", storeType),
		slog.Bool("nullable", nullable),
	}
	if defaultSQL != nil {
		attrs = append(attrs, slog.String("default", *defaultSQL))
	}
	d.emit(slog.LevelDebug, EventColumnFound, "found column", attrs...)
}

// EnumColumnSkipped reports a column whose type is an enum or enum array
func (d *Diagnostics) EnumColumnSkipped(table, column string) {
	d.emit(slog.LevelWarn, EventEnumColumnSkipped, "skipping enum column",
		slog.String("column", table+"."+column))
}

// ComputedColumnSkipped reports a stored generated column
func (d *Diagnostics) ComputedColumnSkipped(table, column string) {
	d.emit(slog.LevelWarn, EventComputedColumnSkipped, "skipping computed column",
		slog.String("column", table+"."+column))
}

// ExpressionIndexSkipped reports an index over expressions
func (d *Diagnostics) ExpressionIndexSkipped(table, index string, expression *string) {
	attrs := []slog.Attr{
		slog.String("table", table),
		slog.String("index", index),
	}
	if expression != nil {
		attrs = append(attrs, slog.String("expression", *expression))
	}
	d.emit(slog.LevelWarn, EventExpressionIndexSkipped, "skipping expression index", attrs...)
}

// UnsupportedColumnSkipped reports an index or constraint that references a
// column which was not materialized
func (d *Diagnostics) UnsupportedColumnSkipped(kind, table, name string, err error) {
	d.emit(slog.LevelWarn, EventUnsupportedColumnSkipped, "skipping "+kind+" referencing unsupported column",
		slog.String("kind", kind),
		slog.String("table", table),
		slog.String("name", name),
		slog.String("reason", err.Error()))
}

// MissingPrincipalTable reports a foreign key whose principal table is not
// part of the model
func (d *Diagnostics) MissingPrincipalTable(table, foreignKey, principal string) {
	d.emit(slog.LevelWarn, EventMissingPrincipalTable, "skipping foreign key referencing missing principal table",
		slog.String("table", table),
		slog.String("foreign_key", foreignKey),
		slog.String("principal_table", principal))
}

// UniqueConstraintFound reports a materialized unique constraint
func (d *Diagnostics) UniqueConstraintFound(table, name string, columns []string) {
	d.emit(slog.LevelDebug, EventUniqueConstraintFound, "found unique constraint",
		slog.String("table", table),
		slog.String("name", name),
		slog.String("columns", strings.Join(columns, ",")))
}

// MissingSchema reports a requested schema with no tables or sequences
func (d *Diagnostics) MissingSchema(schemaName string) {
	d.emit(slog.LevelWarn, EventMissingSchema, "requested schema not found",
		slog.String("schema", schemaName))
}

// MissingTable reports a requested table that was not found
func (d *Diagnostics) MissingTable(spec string) {
	d.emit(slog.LevelWarn, EventMissingTable, "requested table not found",
		slog.String("table", spec))
}

// UnrecognizedSequenceType reports a sequence whose defaults are unknown
func (d *Diagnostics) UnrecognizedSequenceType(sequence, storeType string) {
	d.emit(slog.LevelWarn, EventUnrecognizedSequenceType, "unrecognized sequence data type",
		slog.String("sequence", sequence),
		slog.String("store_type", storeType))
}
