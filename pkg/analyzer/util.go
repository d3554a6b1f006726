package analyzer

import (
	"strconv"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// wrapNode re-boxes a pg_query submessage into a *pg_query.Node so it
// can be attached to an Error and deparsed for diagnostics. Returns
// nil for a type with no case here, which deparseNode treats the same
// as a missing node.
func wrapNode(x any) *pg_query.Node {
	switch v := x.(type) {
	case *pg_query.ColumnRef:
		return &pg_query.Node{Node: &pg_query.Node_ColumnRef{ColumnRef: v}}
	case *pg_query.CaseExpr:
		return &pg_query.Node{Node: &pg_query.Node_CaseExpr{CaseExpr: v}}
	case *pg_query.CoalesceExpr:
		return &pg_query.Node{Node: &pg_query.Node_CoalesceExpr{CoalesceExpr: v}}
	case *pg_query.A_Indirection:
		return &pg_query.Node{Node: &pg_query.Node_AIndirection{AIndirection: v}}
	case *pg_query.MinMaxExpr:
		return &pg_query.Node{Node: &pg_query.Node_MinMaxExpr{MinMaxExpr: v}}
	case *pg_query.List:
		return &pg_query.Node{Node: &pg_query.Node_List{List: v}}
	case *pg_query.A_Expr:
		return &pg_query.Node{Node: &pg_query.Node_AExpr{AExpr: v}}
	case *pg_query.SQLValueFunction:
		return &pg_query.Node{Node: &pg_query.Node_SqlvalueFunction{SqlvalueFunction: v}}
	case *pg_query.RangeVar:
		return &pg_query.Node{Node: &pg_query.Node_RangeVar{RangeVar: v}}
	case *pg_query.SubLink:
		return &pg_query.Node{Node: &pg_query.Node_SubLink{SubLink: v}}
	case *pg_query.ResTarget:
		return &pg_query.Node{Node: &pg_query.Node_ResTarget{ResTarget: v}}
	default:
		return nil
	}
}

func renderIntLiteral(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}

func renderBoolLiteral(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// quoteStringLiteral renders a text A_Const's value as a double-quoted
// target-language string literal ("hi" -> `"hi"`).
func quoteStringLiteral(s string) string {
	return strconv.Quote(s)
}

// unquote strips a single layer of double-quoting added by
// quoteStringLiteral, used to recognize the "t"/"f" -> bool rewrite.
func unquote(s string) string {
	if v, err := strconv.Unquote(s); err == nil {
		return v
	}
	return s
}
