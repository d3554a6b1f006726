package analyzer

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/pgtypegen/pgtypegen/pkg/schema"
)

// fromItem is one (alias, Table, nullable) tuple produced by analyzing
// a single top-level FROM item.
type fromItem struct {
	alias    string
	table    *schema.Table
	nullable bool
}

// BuildFromScope analyzes every FROM item independently (Cartesian
// cross-item semantics) and returns a fresh scope — cloned from s —
// with each item's table bound under its alias, force-nullified where
// the item's nullable flag is set.
func BuildFromScope(s *Scope, fromClause []*pg_query.Node) (*Scope, error) {
	newScope := s.Clone()
	for _, node := range fromClause {
		items, err := analyzeFromItem(s, node)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			newScope.Bind(it.alias, it.table, it.nullable)
		}
	}
	return newScope, nil
}

func analyzeFromItem(s *Scope, node *pg_query.Node) ([]fromItem, error) {
	switch {
	case node.GetRangeVar() != nil:
		item, err := analyzeRangeVar(s, node.GetRangeVar())
		if err != nil {
			return nil, err
		}
		return []fromItem{item}, nil
	case node.GetRangeSubselect() != nil:
		item, err := analyzeRangeSubselect(s, node.GetRangeSubselect())
		if err != nil {
			return nil, err
		}
		return []fromItem{item}, nil
	case node.GetJoinExpr() != nil:
		return analyzeJoinExpr(s, node.GetJoinExpr())
	default:
		return nil, unsupported("FROM item", node)
	}
}

func analyzeRangeVar(s *Scope, rv *pg_query.RangeVar) (fromItem, error) {
	t, ok := s.ResolveTable(rv.GetSchemaname(), rv.GetRelname())
	if !ok {
		return fromItem{}, unknownTable(rv.GetRelname(), wrapNode(rv))
	}
	alias := rv.GetRelname()
	if a := rv.GetAlias(); a != nil && a.GetAliasname() != "" {
		alias = a.GetAliasname()
	}
	return fromItem{alias: alias, table: t}, nil
}

func analyzeRangeSubselect(s *Scope, rs *pg_query.RangeSubselect) (fromItem, error) {
	sel := rs.GetSubquery().GetSelectStmt()
	if sel == nil {
		return fromItem{}, unsupported("non-SELECT FROM subquery", rs.GetSubquery())
	}

	inner := s.Clone()
	targets, err := AnalyzeSelect(inner, sel)
	if err != nil {
		return fromItem{}, err
	}

	t := schema.NewTable()
	colNames := aliasColumnNames(rs.GetAlias())
	for i, target := range targets {
		name := target.Name
		if i < len(colNames) && colNames[i] != "" {
			name = colNames[i]
		}
		t.Add(name, schema.Column{SQLType: target.SQLType, Nullable: target.Nullable})
	}

	alias := ""
	if a := rs.GetAlias(); a != nil {
		alias = a.GetAliasname()
	}
	if alias == "" {
		return fromItem{}, missingAlias("subquery in FROM requires an alias", rs.GetSubquery())
	}
	return fromItem{alias: alias, table: t}, nil
}

func aliasColumnNames(a *pg_query.Alias) []string {
	if a == nil {
		return nil
	}
	names := make([]string, 0, len(a.GetColnames()))
	for _, n := range a.GetColnames() {
		if str := n.GetString_(); str != nil {
			names = append(names, str.GetSval())
		}
	}
	return names
}

func analyzeJoinExpr(s *Scope, je *pg_query.JoinExpr) ([]fromItem, error) {
	left, err := analyzeFromItem(s, je.GetLarg())
	if err != nil {
		return nil, err
	}
	right, err := analyzeFromItem(s, je.GetRarg())
	if err != nil {
		return nil, err
	}

	jt := je.GetJointype()
	if jt == pg_query.JoinType_JOIN_RIGHT || jt == pg_query.JoinType_JOIN_FULL {
		for i := range left {
			left[i].nullable = true
		}
	}
	if jt == pg_query.JoinType_JOIN_LEFT || jt == pg_query.JoinType_JOIN_FULL {
		for i := range right {
			right[i].nullable = true
		}
	}

	return append(left, right...), nil
}
