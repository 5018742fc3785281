package db

import (
	"context"
	"database/sql/driver"
	"log/slog"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/pgscaffold/internal/schema"
)

var (
	enumColumns       = []string{"nspname", "typname", "enumlabel"}
	tableColumns      = []string{"nspname", "relname", "table_comment"}
	attributeColumns  = []string{"nspname", "relname", "attnum", "attname", "attisdropped", "typname", "typnspname", "basetypname", "formatted_typname", "formatted_basetypname", "typtype", "elemtyptype", "nullable", "column_default", "attidentity", "attgenerated", "description"}
	constraintColumns = []string{"nspname", "relname", "conname", "contype", "conkey", "fr_nspname", "fr_relname", "confkey", "confdeltype", "conindid"}
	indexColumns      = []string{"nspname", "relname", "idx_relname", "idx_oid", "indisunique", "indkey", "key_count", "amname", "expressions", "predicate"}
	sequenceColumns   = []string{"sequence_schema", "sequence_name", "data_type", "start_value", "minimum_value", "maximum_value", "increment", "is_cyclic", "owner_schema", "owner_table", "owner_column"}
	extensionColumns  = []string{"extname", "nspname", "extversion"}
)

// catalog is a canned set of catalog query results, replayed in the order
// the extractor issues its queries
type catalog struct {
	version     int
	enums       [][]driver.Value
	tables      [][]driver.Value
	columns     [][]driver.Value
	constraints [][]driver.Value
	indexes     [][]driver.Value
	sequences   [][]driver.Value
	extensions  [][]driver.Value

	// columnsQuery overrides the pattern matched against the column query
	columnsQuery string

	// tableArgs and schemaArgs are the parameters expected on the queries
	// filtered by table and by schema; nil accepts any
	tableArgs  []driver.Value
	schemaArgs []driver.Value
}

func newCatalog() *catalog {
	return &catalog{version: 150004}
}

func rowsOf(columns []string, values [][]driver.Value) *sqlmock.Rows {
	rows := sqlmock.NewRows(columns)
	for _, v := range values {
		rows.AddRow(v...)
	}
	return rows
}

func (c *catalog) expect(mock sqlmock.Sqlmock) {
	columnsQuery := c.columnsQuery
	if columnsQuery == "" {
		columnsQuery = "attisdropped"
	}

	mock.ExpectQuery(`current_setting\('server_version_num'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(c.version))
	withArgs(mock.ExpectQuery("FROM pg_enum"), c.schemaArgs).WillReturnRows(rowsOf(enumColumns, c.enums))
	withArgs(mock.ExpectQuery("table_comment"), c.tableArgs).WillReturnRows(rowsOf(tableColumns, c.tables))
	withArgs(mock.ExpectQuery(columnsQuery), c.tableArgs).WillReturnRows(rowsOf(attributeColumns, c.columns))
	withArgs(mock.ExpectQuery("confdeltype"), c.tableArgs).WillReturnRows(rowsOf(constraintColumns, c.constraints))
	withArgs(mock.ExpectQuery(`indisunique, string_to_array\(idx\.indkey::text, ' '\)::int8\[\]::text AS indkey`), c.tableArgs).
		WillReturnRows(rowsOf(indexColumns, c.indexes))
	withArgs(mock.ExpectQuery(`information_schema\.sequences`), c.schemaArgs).WillReturnRows(rowsOf(sequenceColumns, c.sequences))
	mock.ExpectQuery("FROM pg_extension").WithArgs(builtinExtension).
		WillReturnRows(rowsOf(extensionColumns, c.extensions))
}

func withArgs(e *sqlmock.ExpectedQuery, args []driver.Value) *sqlmock.ExpectedQuery {
	if args == nil {
		return e
	}
	return e.WithArgs(args...)
}

func tableRow(schemaName, name string) []driver.Value {
	return []driver.Value{schemaName, name, nil}
}

// attr describes one pg_attribute row
type attr struct {
	schema, table string
	num           int
	name          string
	typ           string
	formatted     string
	kind          string
	elemKind      any
	baseTyp       any
	baseFormatted any
	nullable      bool
	def           any
	identity      string
	generated     string
	dropped       bool
	comment       any
}

func (a attr) row() []driver.Value {
	if a.dropped {
		return []driver.Value{a.schema, a.table, a.num, a.name, true, nil, nil, nil, nil, nil, nil, nil, true, nil, "", "", nil}
	}
	kind := a.kind
	if kind == "" {
		kind = "b"
	}
	return []driver.Value{
		a.schema, a.table, a.num, a.name, false,
		a.typ, "pg_catalog", a.baseTyp,
		a.formatted, a.baseFormatted,
		kind, a.elemKind,
		a.nullable, a.def,
		a.identity, a.generated,
		a.comment,
	}
}

func intColumn(schemaName, table string, num int, name string) attr {
	return attr{schema: schemaName, table: table, num: num, name: name, typ: "int4", formatted: "integer"}
}

func textColumn(schemaName, table string, num int, name string) attr {
	return attr{schema: schemaName, table: table, num: num, name: name, typ: "text", formatted: "text", nullable: true}
}

func pkRow(schemaName, table, name, keys string) []driver.Value {
	return []driver.Value{schemaName, table, name, "p", keys, nil, nil, nil, " ", int64(0)}
}

func fkRow(schemaName, table, name, keys, principalSchema, principalTable, principalKeys, action string) []driver.Value {
	return []driver.Value{schemaName, table, name, "f", keys, principalSchema, principalTable, principalKeys, action, int64(0)}
}

func uniqueRow(schemaName, table, name, keys string, indexOID int64) []driver.Value {
	return []driver.Value{schemaName, table, name, "u", keys, nil, nil, nil, " ", indexOID}
}

// idx describes one pg_index row
type idx struct {
	schema, table string
	name          string
	oid           int64
	unique        bool
	keys          string
	keyCount      int
	method        string
	expressions   any
	predicate     any
}

func (i idx) row() []driver.Value {
	method := i.method
	if method == "" {
		method = "btree"
	}
	return []driver.Value{i.schema, i.table, i.name, i.oid, i.unique, i.keys, i.keyCount, method, i.expressions, i.predicate}
}

// seq describes one information_schema.sequences row
type seq struct {
	schema, name            string
	storeType               string
	start, min, max, inc    int64
	cyclic                  bool
	ownerSchema, ownerTable any
	ownerColumn             any
}

func (s seq) row() []driver.Value {
	return []driver.Value{s.schema, s.name, s.storeType, s.start, s.min, s.max, s.inc, s.cyclic, s.ownerSchema, s.ownerTable, s.ownerColumn}
}

// recordedEvent is a captured diagnostic with its attributes rendered as strings
type recordedEvent struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// recorder is a slog.Handler keeping every record in memory
type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *recorder) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]string)
	rec.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Level: rec.Level, Message: rec.Message, Attrs: attrs})
	return nil
}

func (r *recorder) WithAttrs([]slog.Attr) slog.Handler { return r }

func (r *recorder) WithGroup(string) slog.Handler { return r }

func (r *recorder) byEvent(event string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, e := range r.events {
		if e.Attrs["event"] == event {
			out = append(out, e)
		}
	}
	return out
}

// extract runs the extractor against the catalog through an already open
// sqlmock connection
func extract(t *testing.T, c *catalog, tables, schemas []string) (*schema.Model, *recorder, error) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	c.expect(mock)

	rec := &recorder{}
	extractor := NewExtractor(NewPostgresClientFromDB(conn), slog.New(rec))
	model, err := extractor.ExtractSchema(context.Background(), tables, schemas)
	if err == nil {
		require.NoError(t, mock.ExpectationsWereMet())
	}
	return model, rec, err
}

func columnNames(columns []*schema.Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

func tableNames(m *schema.Model) []string {
	names := make([]string, len(m.Tables))
	for i, t := range m.Tables {
		names[i] = t.DisplayName()
	}
	return names
}
