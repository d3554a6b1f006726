package analyzer

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/pgtypegen/pgtypegen/pkg/schema"
	"github.com/pgtypegen/pgtypegen/pkg/sqltype"
)

// MaterializeViews analyzes each view's defining SQL and installs the
// resulting column list into cat, so later views and queries can treat
// a view exactly like a base table. Views are processed in the order
// given; a view whose body references a later, not-yet-materialized
// view fails with an UnknownTable error rather than silently producing
// stale columns. The loader returns views sorted by schema and name,
// so a view that depends on a view sorting after it fails this way.
func MaterializeViews(cat *schema.Catalog, enums *schema.EnumCatalog, types *sqltype.Catalog, defaultSchema string, views []schema.ViewSource) error {
	for _, v := range views {
		if err := materializeOne(cat, enums, types, defaultSchema, v); err != nil {
			return fmt.Errorf("materializing view %s.%s: %w", v.Schema, v.Name, err)
		}
	}
	return nil
}

func materializeOne(cat *schema.Catalog, enums *schema.EnumCatalog, types *sqltype.Catalog, defaultSchema string, v schema.ViewSource) error {
	parsed, err := pg_query.Parse(v.SQL)
	if err != nil {
		return parseErr("view definition parse failed", err)
	}
	if len(parsed.GetStmts()) != 1 {
		return unsupported("view definition with more than one statement", nil)
	}
	stmt := parsed.GetStmts()[0].GetStmt()
	sel := stmt.GetSelectStmt()
	if sel == nil {
		return unsupported("non-SELECT view definition", stmt)
	}

	scope := NewScope(cat, defaultSchema, enums, types)
	targets, err := AnalyzeSelect(scope, sel)
	if err != nil {
		return err
	}

	t := schema.NewTable()
	for _, target := range targets {
		t.Add(target.Name, schema.Column{SQLType: target.SQLType, Nullable: target.Nullable})
	}
	cat.Put(v.Schema, v.Name, t)
	return nil
}
