package analyzer

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/pgtypegen/pgtypegen/pkg/sqltype"
)

// AnalyzeExpr computes a ParsedExpression for node in scope s. Dispatch
// is on the node's single populated oneof field (pg_query_go's Node is
// a protobuf oneof wrapper), tested getter by getter; a node kind with
// no case here fails Unsupported.
func AnalyzeExpr(s *Scope, node *pg_query.Node) (*ParsedExpression, error) {
	if node == nil {
		return &ParsedExpression{SQLType: sqltype.Null, Nullable: true}, nil
	}

	switch {
	case node.GetAConst() != nil:
		return analyzeAConst(node.GetAConst())
	case node.GetTypeCast() != nil:
		return analyzeTypeCast(s, node.GetTypeCast())
	case node.GetColumnRef() != nil:
		return analyzeColumnRef(s, node.GetColumnRef())
	case node.GetParamRef() != nil:
		return &ParsedExpression{SQLType: sqltype.Any, Nullable: true}, nil
	case node.GetSqlvalueFunction() != nil:
		return analyzeSQLValueFunction(node.GetSqlvalueFunction())
	case node.GetBoolExpr() != nil:
		return analyzeBoolExpr(s, node.GetBoolExpr())
	case node.GetNullTest() != nil:
		return analyzeNullTest(s, node.GetNullTest())
	case node.GetBooleanTest() != nil:
		return analyzeBooleanTest(s, node.GetBooleanTest())
	case node.GetAExpr() != nil:
		return analyzeAExpr(s, node.GetAExpr())
	case node.GetCaseExpr() != nil:
		return analyzeCaseExpr(s, node.GetCaseExpr())
	case node.GetCoalesceExpr() != nil:
		return analyzeCoalesceExpr(s, node.GetCoalesceExpr())
	case node.GetAArrayExpr() != nil:
		return analyzeArrayExpr(s, node.GetAArrayExpr())
	case node.GetAIndirection() != nil:
		return analyzeIndirection(s, node.GetAIndirection())
	case node.GetMinMaxExpr() != nil:
		return analyzeMinMaxExpr(s, node.GetMinMaxExpr())
	case node.GetList() != nil:
		return analyzeList(s, node.GetList())
	case node.GetFuncCall() != nil:
		return analyzeFuncCall(s, node.GetFuncCall())
	case node.GetSubLink() != nil:
		return analyzeSubLink(s, node.GetSubLink())
	default:
		return nil, unsupported("expression node", node)
	}
}

// --- Constants ---

func analyzeAConst(ac *pg_query.A_Const) (*ParsedExpression, error) {
	if ac.GetIsnull() {
		return &ParsedExpression{SQLType: sqltype.Null, Nullable: true}, nil
	}
	switch {
	case ac.GetIval() != nil:
		return constLit(sqltype.Int4, renderIntLiteral(ac.GetIval().GetIval())), nil
	case ac.GetFval() != nil:
		return constLit(sqltype.Float4, ac.GetFval().GetFval()), nil
	case ac.GetBoolval() != nil:
		return constLit(sqltype.Bool, renderBoolLiteral(ac.GetBoolval().GetBoolval())), nil
	case ac.GetSval() != nil:
		return constLit(sqltype.Text, quoteStringLiteral(ac.GetSval().GetSval())), nil
	case ac.GetBsval() != nil:
		return &ParsedExpression{SQLType: "bit", Nullable: false}, nil
	}
	return &ParsedExpression{SQLType: sqltype.Null, Nullable: true}, nil
}

// --- Type cast ---

func analyzeTypeCast(s *Scope, tc *pg_query.TypeCast) (*ParsedExpression, error) {
	inner, err := AnalyzeExpr(s, tc.GetArg())
	if err != nil {
		return nil, err
	}

	castType := typeNameString(tc.GetTypeName())
	if castType == "" {
		castType = string(inner.SQLType)
	}
	result := *inner
	result.Name = ""
	result.SQLType = sqltype.Name(castType)
	if len(tc.GetTypeName().GetArrayBounds()) > 0 {
		result.SQLType = result.SQLType.AsArray()
	}

	// A literal "t"/"f" cast to bool is PostgreSQL's boolean literal
	// shorthand, so narrow it to the actual boolean value.
	if result.SQLType == sqltype.Bool && inner.ConstantValue != nil {
		switch unquote(*inner.ConstantValue) {
		case "t":
			lit := "true"
			result.ConstantValue = &lit
		case "f":
			lit := "false"
			result.ConstantValue = &lit
		}
	}
	return &result, nil
}

func typeNameString(tn *pg_query.TypeName) string {
	if tn == nil {
		return ""
	}
	names := tn.GetNames()
	if len(names) == 0 {
		return ""
	}
	// Last name component, skipping a leading "pg_catalog" qualifier.
	last := ""
	for _, n := range names {
		if str := n.GetString_(); str != nil {
			last = str.GetSval()
		}
	}
	return last
}

// --- Column reference ---

func analyzeColumnRef(s *Scope, cr *pg_query.ColumnRef) (*ParsedExpression, error) {
	fields := cr.GetFields()
	if len(fields) == 0 {
		return nil, unsupported("empty ColumnRef", wrapNode(cr))
	}

	// Bare "*" / "tbl.*" used inside an expression rather than at the
	// top level of a target list: there's no single column to type, so
	// stand in with an untyped placeholder that floods nullability from
	// the referenced table(s).
	if isStarField(fields[len(fields)-1]) {
		if len(fields) == 1 {
			return anyPlaceholder(s.anyTableNullable()), nil
		}
		alias := fieldName(fields[0])
		t, ok := s.Tables[alias]
		if !ok {
			return nil, unknownTable(alias, wrapNode(cr))
		}
		return anyPlaceholder(t.Nullable), nil
	}

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fieldName(f)
	}

	switch len(parts) {
	case 1:
		col, alias, err := s.LookupUnqualified(parts[0])
		if err != nil {
			return nil, err
		}
		_ = alias
		return &ParsedExpression{SQLType: col.SQLType, Nullable: col.Nullable, Name: parts[0]}, nil
	case 2:
		col, err := s.LookupQualified(parts[0], parts[1])
		if err != nil {
			return nil, err
		}
		return &ParsedExpression{SQLType: col.SQLType, Nullable: col.Nullable, Name: parts[1]}, nil
	default:
		// schema.table.column (3+ parts) is explicitly unsupported.
		return nil, unsupported("fully qualified schema.table.column reference", wrapNode(cr))
	}
}

func anyPlaceholder(nullable bool) *ParsedExpression {
	return &ParsedExpression{SQLType: sqltype.Any, Nullable: nullable}
}

func (s *Scope) anyTableNullable() bool {
	for _, a := range s.Aliases {
		if !s.Tables[a].Nullable {
			return false
		}
	}
	return len(s.Aliases) == 0
}

func isStarField(f *pg_query.Node) bool {
	return f.GetAStar() != nil
}

func fieldName(f *pg_query.Node) string {
	if str := f.GetString_(); str != nil {
		return str.GetSval()
	}
	return ""
}

// --- SQL value functions ---

var sqlValueFunctionTypes = map[pg_query.SQLValueFunctionOp]sqltype.Name{
	pg_query.SQLValueFunctionOp_SVFOP_CURRENT_DATE:      sqltype.Date,
	pg_query.SQLValueFunctionOp_SVFOP_CURRENT_TIME:      sqltype.Timetz,
	pg_query.SQLValueFunctionOp_SVFOP_CURRENT_TIME_N:    sqltype.Timetz,
	pg_query.SQLValueFunctionOp_SVFOP_CURRENT_TIMESTAMP: sqltype.Tsamptz,
	pg_query.SQLValueFunctionOp_SVFOP_CURRENT_TIMESTAMP_N: sqltype.Tsamptz,
	pg_query.SQLValueFunctionOp_SVFOP_LOCALTIME:         sqltype.Time,
	pg_query.SQLValueFunctionOp_SVFOP_LOCALTIME_N:       sqltype.Time,
	pg_query.SQLValueFunctionOp_SVFOP_LOCALTIMESTAMP:    sqltype.Tsamp,
	pg_query.SQLValueFunctionOp_SVFOP_LOCALTIMESTAMP_N:  sqltype.Tsamp,
	pg_query.SQLValueFunctionOp_SVFOP_CURRENT_ROLE:      sqltype.Text,
	pg_query.SQLValueFunctionOp_SVFOP_CURRENT_USER:      sqltype.Text,
	pg_query.SQLValueFunctionOp_SVFOP_USER:              sqltype.Text,
	pg_query.SQLValueFunctionOp_SVFOP_SESSION_USER:      sqltype.Text,
	pg_query.SQLValueFunctionOp_SVFOP_CURRENT_CATALOG:   sqltype.Text,
	pg_query.SQLValueFunctionOp_SVFOP_CURRENT_SCHEMA:    sqltype.Text,
}

func analyzeSQLValueFunction(svf *pg_query.SQLValueFunction) (*ParsedExpression, error) {
	t, ok := sqlValueFunctionTypes[svf.GetOp()]
	if !ok {
		return nil, unsupported("SQL value function", wrapNode(svf))
	}
	return &ParsedExpression{SQLType: t, Nullable: false}, nil
}

// --- Boolean expressions, null/bool tests ---

func analyzeBoolExpr(s *Scope, be *pg_query.BoolExpr) (*ParsedExpression, error) {
	nullable := false
	for _, a := range be.GetArgs() {
		p, err := AnalyzeExpr(s, a)
		if err != nil {
			return nil, err
		}
		nullable = nullable || p.Nullable
	}
	return &ParsedExpression{SQLType: sqltype.Bool, Nullable: nullable}, nil
}

func analyzeNullTest(s *Scope, nt *pg_query.NullTest) (*ParsedExpression, error) {
	if _, err := AnalyzeExpr(s, nt.GetArg()); err != nil {
		return nil, err
	}
	return &ParsedExpression{SQLType: sqltype.Bool, Nullable: false}, nil
}

func analyzeBooleanTest(s *Scope, bt *pg_query.BooleanTest) (*ParsedExpression, error) {
	if _, err := AnalyzeExpr(s, bt.GetArg()); err != nil {
		return nil, err
	}
	return &ParsedExpression{SQLType: sqltype.Bool, Nullable: false}, nil
}
