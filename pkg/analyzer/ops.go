package analyzer

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/pgtypegen/pgtypegen/pkg/sqltype"
)

// analyzeAExpr dispatches on A_Expr.Kind: plain binary/unary operators
// (AEXPR_OP), ANY/ALL/IN/LIKE/BETWEEN forms, DISTINCT, and NULLIF.
func analyzeAExpr(s *Scope, ae *pg_query.A_Expr) (*ParsedExpression, error) {
	switch ae.GetKind() {
	case pg_query.A_Expr_Kind_AEXPR_OP:
		return analyzeBinaryOp(s, ae)
	case pg_query.A_Expr_Kind_AEXPR_OP_ANY, pg_query.A_Expr_Kind_AEXPR_OP_ALL,
		pg_query.A_Expr_Kind_AEXPR_IN,
		pg_query.A_Expr_Kind_AEXPR_LIKE, pg_query.A_Expr_Kind_AEXPR_ILIKE, pg_query.A_Expr_Kind_AEXPR_SIMILAR,
		pg_query.A_Expr_Kind_AEXPR_BETWEEN, pg_query.A_Expr_Kind_AEXPR_NOT_BETWEEN,
		pg_query.A_Expr_Kind_AEXPR_BETWEEN_SYM, pg_query.A_Expr_Kind_AEXPR_NOT_BETWEEN_SYM:
		return boolWithNullProp(s, ae.GetLexpr(), ae.GetRexpr())
	case pg_query.A_Expr_Kind_AEXPR_DISTINCT, pg_query.A_Expr_Kind_AEXPR_NOT_DISTINCT:
		if _, err := analyzeOperandOrNil(s, ae.GetLexpr()); err != nil {
			return nil, err
		}
		if _, err := analyzeOperandOrNil(s, ae.GetRexpr()); err != nil {
			return nil, err
		}
		return &ParsedExpression{SQLType: sqltype.Bool, Nullable: false}, nil
	case pg_query.A_Expr_Kind_AEXPR_NULLIF:
		lhs, err := analyzeOperandOrNil(s, ae.GetLexpr())
		if err != nil {
			return nil, err
		}
		if _, err := analyzeOperandOrNil(s, ae.GetRexpr()); err != nil {
			return nil, err
		}
		return &ParsedExpression{SQLType: lhs.SQLType, Nullable: true}, nil
	default:
		return nil, unsupported("A_Expr kind", wrapNode(ae))
	}
}

func boolWithNullProp(s *Scope, lexpr, rexpr *pg_query.Node) (*ParsedExpression, error) {
	l, err := analyzeOperandOrNil(s, lexpr)
	if err != nil {
		return nil, err
	}
	r, err := analyzeOperandOrNil(s, rexpr)
	if err != nil {
		return nil, err
	}
	return &ParsedExpression{SQLType: sqltype.Bool, Nullable: l.Nullable || r.Nullable}, nil
}

// analyzeOperandOrNil handles A_Expr forms with no lexpr (unary
// operators): an absent operand is treated as non-nullable and
// type-independent so it never forces the result nullable or
// constrains the result type on its own.
func analyzeOperandOrNil(s *Scope, n *pg_query.Node) (*ParsedExpression, error) {
	if n == nil {
		return &ParsedExpression{SQLType: sqltype.Any, Nullable: false}, nil
	}
	return AnalyzeExpr(s, n)
}

// operatorName extracts the operator symbol, the last element of the
// (possibly schema-qualified) operator name list.
func operatorName(names []*pg_query.Node) string {
	last := ""
	for _, n := range names {
		if str := n.GetString_(); str != nil {
			last = str.GetSval()
		}
	}
	return last
}

func analyzeBinaryOp(s *Scope, ae *pg_query.A_Expr) (*ParsedExpression, error) {
	l, err := analyzeOperandOrNil(s, ae.GetLexpr())
	if err != nil {
		return nil, err
	}
	r, err := analyzeOperandOrNil(s, ae.GetRexpr())
	if err != nil {
		return nil, err
	}
	nullable := l.Nullable || r.Nullable
	op := operatorName(ae.GetName())

	boolOps := map[string]bool{
		"=": true, "<": true, ">": true, "<=": true, ">=": true, "<>": true, "!=": true,
		"@>": true, "<@": true, "?": true, "?|": true, "?&": true, "@?": true, "@@": true,
		"&&": true, "&<": true, "&>": true, "-|-": true, "~*": true, "!~": true, "!~*": true,
	}

	switch op {
	case "+":
		return &ParsedExpression{SQLType: plusType(l.SQLType, r.SQLType), Nullable: nullable}, nil
	case "-":
		return &ParsedExpression{SQLType: minusType(l.SQLType, r.SQLType), Nullable: nullable}, nil
	case "*":
		if isInterval(l.SQLType) && isNumber(s, r.SQLType) || isInterval(r.SQLType) && isNumber(s, l.SQLType) {
			return &ParsedExpression{SQLType: sqltype.Interval, Nullable: nullable}, nil
		}
		return &ParsedExpression{SQLType: r.SQLType, Nullable: nullable}, nil
	case "/":
		if isInterval(l.SQLType) && isNumber(s, r.SQLType) {
			return &ParsedExpression{SQLType: sqltype.Interval, Nullable: nullable}, nil
		}
		return &ParsedExpression{SQLType: r.SQLType, Nullable: nullable}, nil
	case "<<", ">>":
		if isNumber(s, r.SQLType) {
			return &ParsedExpression{SQLType: l.SQLType, Nullable: nullable}, nil
		}
		return &ParsedExpression{SQLType: sqltype.Bool, Nullable: nullable}, nil
	case "~":
		if isNumber(s, r.SQLType) || isBit(s, r.SQLType) {
			return &ParsedExpression{SQLType: r.SQLType, Nullable: nullable}, nil
		}
		return &ParsedExpression{SQLType: sqltype.Bool, Nullable: nullable}, nil
	case "||":
		if l.SQLType.IsArray() || r.SQLType.IsArray() {
			t := l.SQLType
			if !t.IsArray() {
				t = r.SQLType
			}
			return &ParsedExpression{SQLType: t, Nullable: nullable}, nil
		}
		if isText(s, l.SQLType) || isText(s, r.SQLType) {
			return &ParsedExpression{SQLType: sqltype.Text, Nullable: nullable}, nil
		}
		return &ParsedExpression{SQLType: r.SQLType, Nullable: nullable}, nil
	case "&", "|", "#", "->", "#>", "#-":
		return &ParsedExpression{SQLType: l.SQLType, Nullable: nullable}, nil
	case "->>", "#>>":
		return &ParsedExpression{SQLType: sqltype.Text, Nullable: nullable}, nil
	case "%", "^", "|/", "||/", "@":
		return &ParsedExpression{SQLType: r.SQLType, Nullable: nullable}, nil
	default:
		if boolOps[op] {
			return &ParsedExpression{SQLType: sqltype.Bool, Nullable: nullable}, nil
		}
		return nil, unsupported("operator "+op, wrapNode(ae))
	}
}

func plusType(l, r sqltype.Name) sqltype.Name {
	switch {
	case l == sqltype.Date && isNumericLiteralType(r):
		return sqltype.Date
	case r == sqltype.Date && isNumericLiteralType(l):
		return sqltype.Date
	case l == sqltype.Date && isTimeLike(r):
		return sqltype.Tsamp
	case r == sqltype.Date && isTimeLike(l):
		return sqltype.Tsamp
	case l == sqltype.Interval && isTimeOrTimestamp(r):
		return r
	case r == sqltype.Interval && isTimeOrTimestamp(l):
		return l
	default:
		return r
	}
}

func minusType(l, r sqltype.Name) sqltype.Name {
	switch {
	case l == sqltype.JSON || l == sqltype.JSONB:
		return l
	case l == sqltype.Date && r == sqltype.Date:
		return sqltype.Int4
	case l == sqltype.Date && isNumericLiteralType(r):
		return sqltype.Date
	case l == sqltype.Date && r == sqltype.Interval:
		return sqltype.Tsamp
	case isTimeType(l) && isTimeType(r):
		return sqltype.Interval
	case isTimeOrTimestamp(l) && r == sqltype.Interval:
		return l
	case l == sqltype.Tsamp && r == sqltype.Tsamp, l == sqltype.Tsamptz && r == sqltype.Tsamptz:
		return sqltype.Interval
	default:
		return r
	}
}

func isNumericLiteralType(t sqltype.Name) bool {
	switch t {
	case sqltype.Int4, sqltype.Int8, sqltype.Float4, sqltype.Float8, sqltype.Numeric:
		return true
	}
	return false
}

func isTimeLike(t sqltype.Name) bool {
	return isTimeType(t) || t == sqltype.Interval
}

func isTimeType(t sqltype.Name) bool {
	return t == sqltype.Time || t == sqltype.Timetz
}

func isTimeOrTimestamp(t sqltype.Name) bool {
	return isTimeType(t) || t == sqltype.Tsamp || t == sqltype.Tsamptz
}

func isInterval(t sqltype.Name) bool { return t == sqltype.Interval }

func isNumber(s *Scope, t sqltype.Name) bool {
	if s.Types != nil {
		return s.Types.IsNumber(t)
	}
	return isNumericLiteralType(t)
}

func isText(s *Scope, t sqltype.Name) bool {
	if s.Types != nil {
		return s.Types.IsText(t) || t == sqltype.Text
	}
	return t == sqltype.Text
}

func isBit(s *Scope, t sqltype.Name) bool {
	if s.Types != nil {
		return s.Types.IsBit(t)
	}
	return false
}
