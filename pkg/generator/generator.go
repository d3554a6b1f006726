// Package generator wires the schema loader, view materializer,
// statement analyzer, and formatter into the public driver: construct
// once against a live connection, then call Generate per SQL source
// string.
package generator

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/pgtypegen/pgtypegen/pkg/analyzer"
	"github.com/pgtypegen/pgtypegen/pkg/format"
	"github.com/pgtypegen/pgtypegen/pkg/schema"
	"github.com/pgtypegen/pgtypegen/pkg/sqltype"
)

type config struct {
	driver          string
	defaultSchema   string
	fallbackType    string
	typeOverrides   map[sqltype.Name]string
	columnFormatter format.ColumnFormatter
	loadTimeout     time.Duration
	log             *zap.SugaredLogger
	prettyEnabled   bool
	prettyOptions   map[string]string
}

// Option configures a Generator at construction time, following the
// functional-options idiom already used by fixgres.Option.
type Option func(*config)

func WithDefaultSchema(schemaName string) Option {
	return func(c *config) { c.defaultSchema = schemaName }
}

func WithFallbackType(fallback string) Option {
	return func(c *config) { c.fallbackType = fallback }
}

func WithTypeOverrides(overrides map[sqltype.Name]string) Option {
	return func(c *config) { c.typeOverrides = overrides }
}

func WithColumnFormatter(f format.ColumnFormatter) Option {
	return func(c *config) { c.columnFormatter = f }
}

func WithLoadTimeout(d time.Duration) Option {
	return func(c *config) { c.loadTimeout = d }
}

// WithDriver selects the database/sql driver used to open connString:
// "pgx" (default) or "postgres" (lib/pq), for callers who pass a plain
// postgres:// DSN and don't need pgx-specific connection options.
func WithDriver(name string) Option {
	return func(c *config) { c.driver = name }
}

// WithLogger routes the loader's and Generator's structured logging
// through log instead of a no-op logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *config) { c.log = log }
}

// WithPrettyOptions turns on format.DefaultPrettyPrinter for every
// rendered type block, passing it opts verbatim. A nil opts is valid
// and just runs DefaultPrettyPrinter with its own defaults.
func WithPrettyOptions(opts map[string]string) Option {
	return func(c *config) {
		c.prettyEnabled = true
		c.prettyOptions = opts
	}
}

// GenerateResult is one query's outcome: exactly one of Results or Err
// is set.
type GenerateResult struct {
	Results []string
	Err     error
}

// Generator holds the schema snapshot and formatter needed to analyze
// any number of SQL source strings. The connection pool used to build
// the snapshot is released before the first call to Generate.
type Generator struct {
	scope     *analyzer.Scope
	formatter *format.Formatter
	log       *zap.SugaredLogger
}

// New connects to connString, loads the schema snapshot (columns,
// enums, view definitions), materializes views, and releases the
// connection — returning a Generator ready for repeated Generate calls.
func New(connString string, opts ...Option) (*Generator, error) {
	cfg := &config{driver: "pgx", defaultSchema: "public", fallbackType: "string"}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.loadTimeout == 0 {
		cfg.loadTimeout = 30 * time.Second
	}

	log := cfg.log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	db, err := sql.Open(cfg.driver, connString)
	if err != nil {
		return nil, fmt.Errorf("open connection: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.loadTimeout)
	defer cancel()

	loader := schema.NewLoader(db, log, nil)
	cat, enums, views, err := loader.Load(ctx, cfg.defaultSchema)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	types := sqltype.New(cfg.fallbackType, cfg.typeOverrides, enums.AsLookup())

	if err := analyzer.MaterializeViews(cat, enums, types, cfg.defaultSchema, views); err != nil {
		return nil, fmt.Errorf("materialize views: %w", err)
	}

	scope := analyzer.NewScope(cat, cfg.defaultSchema, enums, types)

	var pretty format.PrettyPrinter
	if cfg.prettyEnabled {
		pretty = format.DefaultPrettyPrinter
	}
	formatter := format.New(types, cfg.columnFormatter, pretty, cfg.prettyOptions)

	log.Infow("generator ready", "defaultSchema", cfg.defaultSchema, "fallbackType", cfg.fallbackType)

	return &Generator{scope: scope, formatter: formatter, log: log}, nil
}

// Generate treats sql as a single query: every statement it parses to
// must analyze successfully, and the rendered type blocks come back
// together. A parse failure, or any one statement's analysis failure,
// fails the whole call — no partial result is returned for a failed
// query.
func (g *Generator) Generate(sql string) GenerateResult {
	statements, err := analyzer.AnalyzeSQL(g.scope, sql)
	if err != nil {
		return GenerateResult{Err: err}
	}

	results := make([]string, 0, len(statements))
	for _, stmt := range statements {
		if stmt.Err != nil {
			g.log.Warnw("statement analysis failed", "sql", stmt.SQL, "error", stmt.Err)
			return GenerateResult{Err: stmt.Err}
		}
		results = append(results, g.formatter.Format(stmt.Results))
	}
	return GenerateResult{Results: results}
}

// GenerateBatch analyzes a collection of independent queries (the
// CLI's one-file-per-query batch mode): each query's success or
// failure is isolated from the others.
func (g *Generator) GenerateBatch(queries []string) []GenerateResult {
	out := make([]GenerateResult, len(queries))
	for i, q := range queries {
		out[i] = g.Generate(q)
	}
	return out
}
