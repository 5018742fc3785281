package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"

	"github.com/tordrt/pgscaffold/internal/schema"
)

// migrationsHistoryTable is the bookkeeping table of the migrations tool
const migrationsHistoryTable = "__EFMigrationsHistory"

// systemTables are created by extensions and dropped from the model unless
// the caller selects them by name
var systemTables = []string{"spatial_ref_sys", "us_gaz", "us_lex", "us_rules"}

// Extractor handles schema extraction from PostgreSQL
type Extractor struct {
	client *PostgresClient
	diag   *Diagnostics
}

// NewExtractor creates a new schema extractor. If logger is nil, a discard
// logger is used.
func NewExtractor(client *PostgresClient, logger *slog.Logger) *Extractor {
	return &Extractor{
		client: client,
		diag:   NewDiagnostics(logger),
	}
}

// extraction is the state of a single materialization pass
type extraction struct {
	conn    *sql.DB
	caps    Capabilities
	filters Filters
	diag    *Diagnostics
	model   *schema.Model

	enumTypes     map[string]bool
	uniqueIndexes map[int64]bool
}

// ExtractSchema builds the model for the selected tables and schemas.
// Empty selections mean every table of every non-system schema.
func (e *Extractor) ExtractSchema(ctx context.Context, tables, schemas []string) (*schema.Model, error) {
	specs, err := ParseTableSpecs(tables)
	if err != nil {
		return nil, err
	}

	if !e.client.IsOpen() {
		if err := e.client.Open(ctx); err != nil {
			return nil, err
		}
		defer func() {
			if err := e.client.Close(); err != nil {
				e.diag.Logger().Warn("failed to close connection", slog.Any("error", err))
			}
		}()
	}
	conn := e.client.GetConnection()

	caps, err := e.loadCapabilities(ctx, conn)
	if err != nil {
		return nil, err
	}
	e.diag.Logger().Debug("connected", slog.Int("server_version", caps.ServerVersion))

	x := &extraction{
		conn:          conn,
		caps:          caps,
		filters:       NewFilters(schemas, specs),
		diag:          e.diag,
		model:         schema.NewModel(),
		enumTypes:     make(map[string]bool),
		uniqueIndexes: make(map[int64]bool),
	}
	if err := x.run(ctx, specs, schemas); err != nil {
		return nil, err
	}
	return x.model, nil
}

func (x *extraction) run(ctx context.Context, specs []TableSpec, schemas []string) error {
	if err := x.loadEnums(ctx); err != nil {
		return fmt.Errorf("failed to extract enums: %w", err)
	}
	if err := x.loadTables(ctx); err != nil {
		return fmt.Errorf("failed to extract tables: %w", err)
	}
	if err := x.loadColumns(ctx); err != nil {
		return fmt.Errorf("failed to extract columns: %w", err)
	}
	if err := x.loadConstraints(ctx); err != nil {
		return fmt.Errorf("failed to extract constraints: %w", err)
	}
	if err := x.loadIndexes(ctx); err != nil {
		return fmt.Errorf("failed to extract indexes: %w", err)
	}

	x.compact()

	if err := x.loadSequences(ctx); err != nil {
		return fmt.Errorf("failed to extract sequences: %w", err)
	}
	if err := x.loadExtensions(ctx); err != nil {
		return fmt.Errorf("failed to extract extensions: %w", err)
	}

	x.excludeSystemTables(specs)
	x.compact()
	x.reportMissing(specs, schemas)
	return nil
}

// tableConditions restricts a query over pg_class AS cls and pg_namespace
// AS ns to the selected ordinary tables, binding selection values to args
func (x *extraction) tableConditions(args *queryArgs) string {
	cond := `cls.relkind = 'r' AND
	ns.nspname NOT IN ('pg_catalog', 'information_schema') AND
	cls.relname <> '` + migrationsHistoryTable + `'`
	if x.caps.DeclarativePartitioning {
		cond += " AND\n\tNOT cls.relispartition"
	}
	if filter := x.filters.andTable(args, "ns.nspname", "cls.relname"); filter != "" {
		cond += "\n\t" + filter
	}
	return cond
}

// compact drops placeholder slots from every table's published columns
func (x *extraction) compact() {
	for _, t := range x.model.Tables {
		t.Compact()
	}
}

func (x *extraction) excludeSystemTables(specs []TableSpec) {
	var excluded []*schema.Table
	for _, t := range x.model.Tables {
		if slices.Contains(systemTables, t.Name) && !selectsTable(specs, t) {
			excluded = append(excluded, t)
		}
	}
	for _, t := range excluded {
		for _, fk := range x.model.RemoveTable(t) {
			x.diag.MissingPrincipalTable(fk.Table.DisplayName(), fk.Name, t.DisplayName())
		}
	}
}

func (x *extraction) reportMissing(specs []TableSpec, schemas []string) {
	for _, s := range schemas {
		found := slices.ContainsFunc(x.model.Tables, func(t *schema.Table) bool { return t.Schema == s }) ||
			slices.ContainsFunc(x.model.Sequences, func(seq *schema.Sequence) bool { return seq.Schema == s })
		if !found {
			x.diag.MissingSchema(s)
		}
	}

	for _, spec := range specs {
		found := slices.ContainsFunc(x.model.Tables, func(t *schema.Table) bool { return spec.Matches(t) })
		if !found {
			x.diag.MissingTable(spec.Raw)
		}
	}
}

// Matches reports whether the specifier names the table
func (s TableSpec) Matches(t *schema.Table) bool {
	return t.Name == s.Table && (!s.HasSchema() || t.Schema == s.Schema)
}

func selectsTable(specs []TableSpec, t *schema.Table) bool {
	return slices.ContainsFunc(specs, func(s TableSpec) bool { return s.Matches(t) })
}
