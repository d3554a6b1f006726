package analyzer

import (
	"strconv"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/pgtypegen/pgtypegen/pkg/schema"
)

// AnalyzedStatement is one parsed, analyzed statement from a (possibly
// multi-statement) source string.
type AnalyzedStatement struct {
	SQL     string
	Results []*ParsedResultTarget
	Err     error
}

// AnalyzeSQL parses source (which may contain several ';'-separated
// statements) and analyzes each independently: one statement's error
// does not prevent the others in the same source string from being
// analyzed — each gets its own AnalyzedStatement.Err.
func AnalyzeSQL(s *Scope, source string) ([]AnalyzedStatement, error) {
	parsed, err := pg_query.Parse(source)
	if err != nil {
		return nil, parseErr("parse failed", err)
	}

	out := make([]AnalyzedStatement, 0, len(parsed.GetStmts()))
	for _, rawStmt := range parsed.GetStmts() {
		stmtSQL := source
		if d, err := pg_query.Deparse(&pg_query.ParseResult{
			Version: parsed.GetVersion(),
			Stmts:   []*pg_query.RawStmt{rawStmt},
		}); err == nil {
			stmtSQL = d
		}

		results, err := AnalyzeStatement(s.Clone(), rawStmt.GetStmt())
		out = append(out, AnalyzedStatement{SQL: stmtSQL, Results: results, Err: err})
	}
	return out, nil
}

// AnalyzeStatement dispatches a single top-level statement node.
func AnalyzeStatement(s *Scope, node *pg_query.Node) ([]*ParsedResultTarget, error) {
	switch {
	case node.GetSelectStmt() != nil:
		return AnalyzeSelect(s, node.GetSelectStmt())
	case node.GetInsertStmt() != nil:
		return analyzeInsert(s, node.GetInsertStmt())
	case node.GetUpdateStmt() != nil:
		return analyzeUpdate(s, node.GetUpdateStmt())
	case node.GetDeleteStmt() != nil:
		return analyzeDelete(s, node.GetDeleteStmt())
	default:
		return nil, unsupported("top-level statement", node)
	}
}

// AnalyzeSelect handles all three SELECT shapes: set operations
// (UNION/INTERSECT/EXCEPT), VALUES, and the simple WITH/FROM/target-
// list form.
func AnalyzeSelect(s *Scope, sel *pg_query.SelectStmt) ([]*ParsedResultTarget, error) {
	if sel.GetOp() != pg_query.SetOperation_SETOP_NONE {
		return analyzeSetOp(s, sel)
	}
	if len(sel.GetValuesLists()) > 0 {
		return analyzeValues(s, sel)
	}
	return analyzeSimpleSelect(s, sel)
}

func analyzeSimpleSelect(s *Scope, sel *pg_query.SelectStmt) ([]*ParsedResultTarget, error) {
	scope := s

	if with := sel.GetWithClause(); with != nil {
		scope = scope.Clone()
		for _, cteNode := range with.GetCtes() {
			cte := cteNode.GetCommonTableExpr()
			if cte == nil {
				continue
			}
			cteSel := cte.GetCtequery().GetSelectStmt()
			if cteSel == nil {
				return nil, unsupported("non-SELECT CTE body", cte.GetCtequery())
			}
			targets, err := AnalyzeSelect(scope.Clone(), cteSel)
			if err != nil {
				return nil, err
			}
			t := schema.NewTable()
			colNames := cte.GetAliascolnames()
			for i, target := range targets {
				name := target.Name
				if i < len(colNames) {
					if str := colNames[i].GetString_(); str != nil {
						name = str.GetSval()
					}
				}
				t.Add(name, schema.Column{SQLType: target.SQLType, Nullable: target.Nullable})
			}
			scope.InstallCTE(cte.GetCtename(), t)
		}
	}

	if len(sel.GetFromClause()) > 0 {
		var err error
		scope, err = BuildFromScope(scope, sel.GetFromClause())
		if err != nil {
			return nil, err
		}
	}

	return analyzeTargetList(scope, sel.GetTargetList())
}

// analyzeSetOp recurses into both branches and merges column-by-
// column: type/name come from the left side, nullable is the OR of
// both sides, and SetVariants accumulates one entry per operand in
// source order (flattened, so a 3-way UNION yields 3 variants, not a
// nested 2).
func analyzeSetOp(s *Scope, sel *pg_query.SelectStmt) ([]*ParsedResultTarget, error) {
	left, err := AnalyzeSelect(s.Clone(), sel.GetLarg())
	if err != nil {
		return nil, err
	}
	right, err := AnalyzeSelect(s.Clone(), sel.GetRarg())
	if err != nil {
		return nil, err
	}
	if len(left) != len(right) {
		return nil, unsupported("set operation with mismatched column counts", nil)
	}

	out := make([]*ParsedResultTarget, len(left))
	for i := range left {
		l, r := left[i], right[i]
		variants := flattenVariants(l)
		variants = append(variants, flattenVariants(r)...)
		out[i] = &ParsedResultTarget{
			Name: l.Name,
			ParsedExpression: &ParsedExpression{
				SQLType:     l.SQLType,
				Nullable:    l.Nullable || r.Nullable,
				SetVariants: variants,
			},
		}
	}
	return out, nil
}

func flattenVariants(p *ParsedExpression) []*ParsedExpression {
	if len(p.SetVariants) > 0 {
		return p.SetVariants
	}
	cp := *p
	cp.SetVariants = nil
	return []*ParsedExpression{&cp}
}

// analyzeValues: columnN naming, type from the first row, nullable iff
// any row's value at that position is nullable, branches collected
// across every row.
func analyzeValues(s *Scope, sel *pg_query.SelectStmt) ([]*ParsedResultTarget, error) {
	rows := sel.GetValuesLists()
	if len(rows) == 0 {
		return nil, unsupported("VALUES with no rows", nil)
	}

	width := len(rows[0].GetList().GetItems())
	columns := make([][]*ParsedExpression, width)

	for _, row := range rows {
		items := row.GetList().GetItems()
		if len(items) != width {
			return nil, unsupported("VALUES rows with mismatched column counts", row)
		}
		for i, item := range items {
			p, err := AnalyzeExpr(s, item)
			if err != nil {
				return nil, err
			}
			columns[i] = append(columns[i], p)
		}
	}

	out := make([]*ParsedResultTarget, width)
	for i, branches := range columns {
		nullable := false
		for _, b := range branches {
			nullable = nullable || b.Nullable
		}
		out[i] = &ParsedResultTarget{
			Name: columnLabel(i),
			ParsedExpression: &ParsedExpression{
				SQLType:  branches[0].SQLType,
				Nullable: nullable,
				Branches: branches,
			},
		}
	}
	return out, nil
}

func columnLabel(i int) string {
	return "column" + strconv.Itoa(i+1)
}

// --- INSERT / UPDATE / DELETE ---

func analyzeInsert(s *Scope, ins *pg_query.InsertStmt) ([]*ParsedResultTarget, error) {
	scope, err := bindTargetRelation(s, ins.GetRelation())
	if err != nil {
		return nil, err
	}
	return analyzeReturning(scope, ins.GetReturningList())
}

func analyzeUpdate(s *Scope, upd *pg_query.UpdateStmt) ([]*ParsedResultTarget, error) {
	scope, err := bindTargetRelation(s, upd.GetRelation())
	if err != nil {
		return nil, err
	}
	if len(upd.GetFromClause()) > 0 {
		scope, err = BuildFromScope(scope, upd.GetFromClause())
		if err != nil {
			return nil, err
		}
	}
	return analyzeReturning(scope, upd.GetReturningList())
}

func analyzeDelete(s *Scope, del *pg_query.DeleteStmt) ([]*ParsedResultTarget, error) {
	scope, err := bindTargetRelation(s, del.GetRelation())
	if err != nil {
		return nil, err
	}
	if len(del.GetUsingClause()) > 0 {
		scope, err = BuildFromScope(scope, del.GetUsingClause())
		if err != nil {
			return nil, err
		}
	}
	return analyzeReturning(scope, del.GetReturningList())
}

func bindTargetRelation(s *Scope, rv *pg_query.RangeVar) (*Scope, error) {
	scope := s.Clone()
	item, err := analyzeRangeVar(scope, rv)
	if err != nil {
		return nil, err
	}
	scope.Bind(item.alias, item.table, item.nullable)
	return scope, nil
}

// analyzeReturning: an empty RETURNING list means no result columns at
// all, not an error.
func analyzeReturning(s *Scope, list []*pg_query.Node) ([]*ParsedResultTarget, error) {
	if len(list) == 0 {
		return nil, nil
	}
	return analyzeTargetList(s, list)
}
