package analyzer

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/pgtypegen/pgtypegen/pkg/sqltype"
)

// analyzeCaseExpr: result type is the first branch's type; branches
// are every WHEN result plus ELSE when present; nullable iff ELSE is
// missing or any branch is nullable.
func analyzeCaseExpr(s *Scope, ce *pg_query.CaseExpr) (*ParsedExpression, error) {
	var branches []*ParsedExpression
	for _, arg := range ce.GetArgs() {
		when := arg.GetCaseWhen()
		if when == nil {
			continue
		}
		if _, err := AnalyzeExpr(s, when.GetExpr()); err != nil {
			return nil, err
		}
		result, err := AnalyzeExpr(s, when.GetResult())
		if err != nil {
			return nil, err
		}
		branches = append(branches, result)
	}

	hasElse := ce.GetDefresult() != nil
	if hasElse {
		elseResult, err := AnalyzeExpr(s, ce.GetDefresult())
		if err != nil {
			return nil, err
		}
		branches = append(branches, elseResult)
	}

	if len(branches) == 0 {
		return nil, unsupported("CASE with no branches", wrapNode(ce))
	}

	nullable := !hasElse
	for _, b := range branches {
		nullable = nullable || b.Nullable
	}

	return &ParsedExpression{
		SQLType:  branches[0].SQLType,
		Nullable: nullable,
		Branches: branches,
	}, nil
}

// analyzeCoalesceExpr walks arguments in order, collecting branches,
// but stops after the first provably non-nullable branch since later
// arguments are unreachable for the type.
func analyzeCoalesceExpr(s *Scope, ce *pg_query.CoalesceExpr) (*ParsedExpression, error) {
	var branches []*ParsedExpression
	allNonNull := false
	for _, arg := range ce.GetArgs() {
		p, err := AnalyzeExpr(s, arg)
		if err != nil {
			return nil, err
		}
		branches = append(branches, p)
		if !p.Nullable {
			allNonNull = true
			break
		}
	}
	if len(branches) == 0 {
		return nil, unsupported("COALESCE with no arguments", wrapNode(ce))
	}
	return &ParsedExpression{
		SQLType:  branches[0].SQLType,
		Nullable: !allNonNull,
		Branches: branches,
	}, nil
}

// analyzeArrayExpr: ARRAY[...] is elem_type[], non-null.
func analyzeArrayExpr(s *Scope, ae *pg_query.A_ArrayExpr) (*ParsedExpression, error) {
	elems := ae.GetElements()
	elemType := sqltype.Any
	if len(elems) > 0 {
		p, err := AnalyzeExpr(s, elems[0])
		if err != nil {
			return nil, err
		}
		elemType = p.SQLType
	}
	return &ParsedExpression{SQLType: elemType.AsArray(), Nullable: false}, nil
}

// analyzeIndirection handles A_Indirection: array subscripting
// ([i] / [lo:hi]) and, implicitly, field-select forms (unsupported
// here — only subscripting is specified).
func analyzeIndirection(s *Scope, ai *pg_query.A_Indirection) (*ParsedExpression, error) {
	arg, err := AnalyzeExpr(s, ai.GetArg())
	if err != nil {
		return nil, err
	}

	indirection := ai.GetIndirection()
	if len(indirection) != 1 {
		return nil, unsupported("multi-dimensional array subscript", wrapNode(ai))
	}

	indices := indirection[0].GetAIndices()
	if indices == nil {
		return nil, unsupported("non-subscript indirection", wrapNode(ai))
	}

	if s.Types != nil && s.Types.IsJSON(arg.SQLType) {
		return &ParsedExpression{SQLType: sqltype.Any, Nullable: true}, nil
	}

	if indices.GetIsSlice() {
		lo, err := analyzeOperandOrNil(s, indices.GetLidx())
		if err != nil {
			return nil, err
		}
		hi, err := analyzeOperandOrNil(s, indices.GetUidx())
		if err != nil {
			return nil, err
		}
		return &ParsedExpression{
			SQLType:  arg.SQLType,
			Nullable: arg.Nullable || lo.Nullable || hi.Nullable,
		}, nil
	}

	if _, err := AnalyzeExpr(s, indices.GetUidx()); err != nil {
		return nil, err
	}
	return &ParsedExpression{SQLType: arg.SQLType.Element(), Nullable: true}, nil
}

// analyzeMinMaxExpr: GREATEST/LEAST — type of first arg; nullable iff
// every arg is nullable.
func analyzeMinMaxExpr(s *Scope, mme *pg_query.MinMaxExpr) (*ParsedExpression, error) {
	var args []*ParsedExpression
	for _, a := range mme.GetArgs() {
		p, err := AnalyzeExpr(s, a)
		if err != nil {
			return nil, err
		}
		args = append(args, p)
	}
	if len(args) == 0 {
		return nil, unsupported("GREATEST/LEAST with no arguments", wrapNode(mme))
	}
	return &ParsedExpression{SQLType: args[0].SQLType, Nullable: allNullable(args)}, nil
}

// analyzeList: type of first item; branches = all items (used when a
// bare list literal appears as an expression, e.g. the right-hand side
// of IN (...)).
func analyzeList(s *Scope, l *pg_query.List) (*ParsedExpression, error) {
	var branches []*ParsedExpression
	for _, item := range l.GetItems() {
		p, err := AnalyzeExpr(s, item)
		if err != nil {
			return nil, err
		}
		branches = append(branches, p)
	}
	if len(branches) == 0 {
		return nil, unsupported("empty list expression", wrapNode(l))
	}
	return &ParsedExpression{SQLType: branches[0].SQLType, Nullable: branches[0].Nullable, Branches: branches}, nil
}
