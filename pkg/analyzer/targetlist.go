package analyzer

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// analyzeTargetList expands a SELECT/RETURNING target list into an
// ordered list of named results. Star expansion (bare `*` and
// `alias.*`) walks scope tables in alias (insertion) order; explicit
// names win over inferred ones; a later target with the same name
// replaces an earlier one but keeps the earlier position (last write
// wins).
func analyzeTargetList(s *Scope, targets []*pg_query.Node) ([]*ParsedResultTarget, error) {
	var out []*ParsedResultTarget
	index := make(map[string]int)

	emit := func(name string, pe *ParsedExpression) {
		if i, ok := index[name]; ok {
			out[i] = &ParsedResultTarget{Name: name, ParsedExpression: pe}
			return
		}
		index[name] = len(out)
		out = append(out, &ParsedResultTarget{Name: name, ParsedExpression: pe})
	}

	for _, node := range targets {
		rt := node.GetResTarget()
		if rt == nil {
			return nil, unsupported("target list entry", node)
		}
		val := rt.GetVal()

		if cref := val.GetColumnRef(); cref != nil && isStarField(lastField(cref)) {
			cols, err := expandStar(s, cref)
			if err != nil {
				return nil, err
			}
			for _, c := range cols {
				emit(c.Name, c.ParsedExpression)
			}
			continue
		}

		pe, err := AnalyzeExpr(s, val)
		if err != nil {
			return nil, err
		}

		name := rt.GetName()
		if name == "" {
			name = pe.Name
		}
		if name == "" {
			return nil, missingAlias("expression in target list has no name", wrapNode(rt))
		}
		emit(name, pe)
	}

	return out, nil
}

func lastField(cref *pg_query.ColumnRef) *pg_query.Node {
	fields := cref.GetFields()
	if len(fields) == 0 {
		return nil
	}
	return fields[len(fields)-1]
}

// expandStar handles bare `*` (expand every scoped table, in alias
// order) and `alias.*` (expand just that table).
func expandStar(s *Scope, cref *pg_query.ColumnRef) ([]*ParsedResultTarget, error) {
	fields := cref.GetFields()
	var out []*ParsedResultTarget

	if len(fields) == 1 {
		for _, alias := range s.Aliases {
			t := s.Tables[alias]
			for _, name := range t.Names {
				col, _ := t.Lookup(name)
				out = append(out, &ParsedResultTarget{
					Name: name,
					ParsedExpression: &ParsedExpression{SQLType: col.SQLType, Nullable: col.Nullable},
				})
			}
		}
		return out, nil
	}

	alias := fieldName(fields[0])
	t, ok := s.Tables[alias]
	if !ok {
		return nil, unknownTable(alias, wrapNode(cref))
	}
	for _, name := range t.Names {
		col, _ := t.Lookup(name)
		out = append(out, &ParsedResultTarget{
			Name: name,
			ParsedExpression: &ParsedExpression{SQLType: col.SQLType, Nullable: col.Nullable},
		})
	}
	return out, nil
}
