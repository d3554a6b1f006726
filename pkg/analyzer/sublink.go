package analyzer

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/pgtypegen/pgtypegen/pkg/sqltype"
)

// analyzeSubLink dispatches on SubLink.SubLinkType: EXISTS/row-compare
// subqueries are always a non-null bool, ANY/ALL a nullable bool (no
// match is indistinguishable from a null comparison), a scalar
// subquery's own type widened to nullable (zero rows returns null),
// ARRAY() wraps the inner type, and MULTIEXPR is left untyped.
func analyzeSubLink(s *Scope, sl *pg_query.SubLink) (*ParsedExpression, error) {
	switch sl.GetSubLinkType() {
	case pg_query.SubLinkType_EXISTS_SUBLINK, pg_query.SubLinkType_ROWCOMPARE_SUBLINK:
		return &ParsedExpression{SQLType: sqltype.Bool, Nullable: false}, nil
	case pg_query.SubLinkType_ANY_SUBLINK, pg_query.SubLinkType_ALL_SUBLINK:
		return &ParsedExpression{SQLType: sqltype.Bool, Nullable: true}, nil
	case pg_query.SubLinkType_EXPR_SUBLINK:
		targets, err := analyzeSubselectTargets(s, sl.GetSubselect())
		if err != nil {
			return nil, err
		}
		if len(targets) == 0 {
			return nil, unsupported("scalar subquery with no columns", wrapNode(sl))
		}
		result := *targets[0].ParsedExpression
		result.Name = ""
		result.Nullable = true
		return &result, nil
	case pg_query.SubLinkType_ARRAY_SUBLINK:
		targets, err := analyzeSubselectTargets(s, sl.GetSubselect())
		if err != nil {
			return nil, err
		}
		if len(targets) == 0 {
			return nil, unsupported("ARRAY() subquery with no columns", wrapNode(sl))
		}
		return &ParsedExpression{SQLType: targets[0].SQLType.AsArray(), Nullable: false}, nil
	case pg_query.SubLinkType_MULTIEXPR_SUBLINK:
		return &ParsedExpression{SQLType: sqltype.Any, Nullable: false}, nil
	default:
		return nil, unsupported("SubLink type", wrapNode(sl))
	}
}

// analyzeSubselectTargets analyzes the inner SELECT of a subquery
// expression in a scope cloned from s, so bindings made while
// descending into it never leak back out to the outer scope.
func analyzeSubselectTargets(s *Scope, node *pg_query.Node) ([]*ParsedResultTarget, error) {
	sel := node.GetSelectStmt()
	if sel == nil {
		return nil, unsupported("non-SELECT subquery", node)
	}
	inner := s.Clone()
	return AnalyzeSelect(inner, sel)
}
