package analyzer

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/pgtypegen/pgtypegen/pkg/sqltype"
)

// funcRule computes a function call's result type/nullability given
// its already-analyzed arguments. Window functions (FuncCall.Over set)
// use the same dispatch: presence of OVER does not change the rule.
type funcRule func(args []*ParsedExpression, star bool) (sqltype.Name, bool)

func passthroughFirstArg(args []*ParsedExpression, _ bool) (sqltype.Name, bool) {
	if len(args) == 0 {
		return sqltype.Any, true
	}
	return args[0].SQLType, anyNullable(args)
}

func passthroughSecondArg(args []*ParsedExpression, _ bool) (sqltype.Name, bool) {
	if len(args) < 2 {
		return sqltype.Any, true
	}
	return args[1].SQLType, anyNullable(args)
}

func anyNullable(args []*ParsedExpression) bool {
	for _, a := range args {
		if a.Nullable {
			return true
		}
	}
	return false
}

func allNullable(args []*ParsedExpression) bool {
	if len(args) == 0 {
		return true
	}
	for _, a := range args {
		if !a.Nullable {
			return false
		}
	}
	return true
}

func fixedType(t sqltype.Name, nullable bool) funcRule {
	return func(args []*ParsedExpression, star bool) (sqltype.Name, bool) { return t, nullable }
}

func fixedTypeNullProp(t sqltype.Name) funcRule {
	return func(args []*ParsedExpression, star bool) (sqltype.Name, bool) { return t, anyNullable(args) }
}

// passthroughNullableAggregate: type of first arg, nullable always
// (empty-set aggregates), except count(*) which the catalog overrides
// below.
func passthroughNullableAggregate(args []*ParsedExpression, star bool) (sqltype.Name, bool) {
	if star {
		return sqltype.Int8, false
	}
	if len(args) == 0 {
		return sqltype.Any, true
	}
	return args[0].SQLType, true
}

func avgRule(args []*ParsedExpression, _ bool) (sqltype.Name, bool) {
	if len(args) == 0 {
		return sqltype.Numeric, true
	}
	switch args[0].SQLType {
	case sqltype.Interval, sqltype.Float8:
		return args[0].SQLType, true
	case sqltype.Float4:
		return sqltype.Float8, true
	default:
		return sqltype.Numeric, true
	}
}

func arrayPositionRule(args []*ParsedExpression, _ bool) (sqltype.Name, bool) { return sqltype.Int4, true }

func dateTruncRule(args []*ParsedExpression, _ bool) (sqltype.Name, bool) {
	if len(args) < 2 {
		return sqltype.Tsamp, true
	}
	return args[1].SQLType, anyNullable(args)
}

var funcCatalog = map[string]funcRule{
	// pass-through numeric/text shape preservers
	"abs": passthroughFirstArg, "ceil": passthroughFirstArg, "ceiling": passthroughFirstArg,
	"floor": passthroughFirstArg, "round": passthroughFirstArg, "trunc": passthroughFirstArg,
	"lower": passthroughFirstArg, "upper": passthroughFirstArg, "initcap": passthroughFirstArg,
	"substring": passthroughFirstArg, "substr": passthroughFirstArg,
	"trim": passthroughFirstArg, "ltrim": passthroughFirstArg, "rtrim": passthroughFirstArg, "btrim": passthroughFirstArg,
	"lpad": passthroughFirstArg, "rpad": passthroughFirstArg, "repeat": passthroughFirstArg, "reverse": passthroughFirstArg,
	"replace": passthroughFirstArg, "regexp_replace": passthroughFirstArg, "translate": passthroughFirstArg,
	"md5": fixedTypeNullProp(sqltype.Text), "sha224": fixedTypeNullProp(sqltype.Bytea),
	"sha256": fixedTypeNullProp(sqltype.Bytea), "sha384": fixedTypeNullProp(sqltype.Bytea), "sha512": fixedTypeNullProp(sqltype.Bytea),
	"concat": fixedTypeNullProp(sqltype.Text), "concat_ws": fixedTypeNullProp(sqltype.Text),
	"string_agg": passthroughFirstArg,

	// array shape preservers
	"array_append": passthroughFirstArg, "array_cat": passthroughFirstArg,
	"array_remove": passthroughFirstArg, "array_replace": passthroughFirstArg,
	"array_prepend": passthroughSecondArg,

	// always-non-null aggregates / sequence funcs
	"count":     func(args []*ParsedExpression, star bool) (sqltype.Name, bool) { return sqltype.Int8, false },
	"currval":   fixedType(sqltype.Int8, false),
	"nextval":   fixedType(sqltype.Int8, false),
	"lastval":   fixedType(sqltype.Int8, false),
	"setval":    fixedType(sqltype.Int8, false),
	"rank":       fixedType(sqltype.Int8, false),
	"dense_rank": fixedType(sqltype.Int8, false),
	"row_number": fixedType(sqltype.Int8, false),

	// nullable scalar aggregates
	"sum": passthroughNullableAggregate, "min": passthroughNullableAggregate, "max": passthroughNullableAggregate,
	"avg": avgRule,

	// bool-returning
	"bool_and": fixedTypeNullProp(sqltype.Bool), "bool_or": fixedTypeNullProp(sqltype.Bool), "every": fixedTypeNullProp(sqltype.Bool),
	"isfinite": fixedTypeNullProp(sqltype.Bool), "starts_with": fixedTypeNullProp(sqltype.Bool),

	// byte-returning
	"convert_to": fixedTypeNullProp(sqltype.Bytea), "decode": fixedTypeNullProp(sqltype.Bytea),

	// date/time returners
	"make_date": fixedType(sqltype.Date, false), "to_date": fixedType(sqltype.Date, false),
	"date_trunc":         dateTruncRule,
	"make_time":          fixedType(sqltype.Time, false),
	"make_timestamp":     fixedType(sqltype.Tsamp, false),
	"make_timestamptz":   fixedType(sqltype.Tsamptz, false),
	"to_timestamp":       fixedType(sqltype.Tsamptz, false),
	"date_bin":           fixedTypeNullProp(sqltype.Tsamp),
	"clock_timestamp":    fixedType(sqltype.Tsamptz, false),
	"now":                fixedType(sqltype.Tsamptz, false),
	"statement_timestamp": fixedType(sqltype.Tsamptz, false),
	"transaction_timestamp": fixedType(sqltype.Tsamptz, false),
	"timeofday":          fixedType(sqltype.Text, false),

	// int returners
	"length": fixedTypeNullProp(sqltype.Int4), "array_length": fixedTypeNullProp(sqltype.Int4),
	"array_lower": fixedTypeNullProp(sqltype.Int4), "array_upper": fixedTypeNullProp(sqltype.Int4),
	"array_ndims": fixedTypeNullProp(sqltype.Int4), "ascii": fixedTypeNullProp(sqltype.Int4),
	"bit_length": fixedTypeNullProp(sqltype.Int4), "cardinality": fixedTypeNullProp(sqltype.Int4),
	"char_length": fixedTypeNullProp(sqltype.Int4), "character_length": fixedTypeNullProp(sqltype.Int4),
	"chr": fixedTypeNullProp(sqltype.Text), "get_bit": fixedTypeNullProp(sqltype.Int4),
	"get_byte": fixedTypeNullProp(sqltype.Int4), "ntile": fixedTypeNullProp(sqltype.Int4),
	"octet_length": fixedTypeNullProp(sqltype.Int4), "position": fixedTypeNullProp(sqltype.Int4),
	"scale": fixedTypeNullProp(sqltype.Int4), "strpos": fixedTypeNullProp(sqltype.Int4),
	"width_bucket": fixedTypeNullProp(sqltype.Int4),
	"num_nulls": fixedType(sqltype.Int4, false), "num_nonnulls": fixedType(sqltype.Int4, false),
	"array_position": arrayPositionRule,
	"bit_count":      fixedTypeNullProp(sqltype.Int8),
}

// analyzeFuncCall dispatches by last name component of FuncCall.Funcname.
func analyzeFuncCall(s *Scope, fc *pg_query.FuncCall) (*ParsedExpression, error) {
	name := strings.ToLower(funcName(fc.GetFuncname()))
	star := fc.GetAggStar()

	args := make([]*ParsedExpression, 0, len(fc.GetArgs()))
	for _, a := range fc.GetArgs() {
		p, err := AnalyzeExpr(s, a)
		if err != nil {
			return nil, err
		}
		args = append(args, p)
	}

	rule, ok := funcCatalog[name]
	if !ok {
		return &ParsedExpression{SQLType: sqltype.Any, Nullable: true}, nil
	}
	t, nullable := rule(args, star)
	return &ParsedExpression{SQLType: t, Nullable: nullable}, nil
}

func funcName(parts []*pg_query.Node) string {
	last := ""
	for _, n := range parts {
		if str := n.GetString_(); str != nil {
			last = str.GetSval()
		}
	}
	return last
}
