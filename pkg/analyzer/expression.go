package analyzer

import "github.com/pgtypegen/pgtypegen/pkg/sqltype"

// ParsedExpression is the output of analyzing one expression node: its
// computed type, nullability, and (when applicable) the narrowing
// information the formatter needs to render literals, unions, and
// set-operation variants.
type ParsedExpression struct {
	SQLType  sqltype.Name
	Nullable bool

	// Name is non-empty only when the expression is a bare column
	// reference; target-list processing uses it as the implicit
	// column alias.
	Name string

	// ConstantValue is a rendered literal ("42", `"abc"`, "true") set
	// only when the expression is provably a single literal.
	ConstantValue *string

	// Branches holds one entry per possible value for CASE/COALESCE/
	// VALUES/List; the formatter unions
	// each branch's ConstantValue (if set) or mapped SQLType.
	Branches []*ParsedExpression

	// SetVariants holds one entry per operand query of a set
	// operation, in source order, for this column position.
	SetVariants []*ParsedExpression
}

// ParsedResultTarget is a ParsedExpression with a non-empty Name: the
// element type of a statement analyzer's output list.
type ParsedResultTarget struct {
	Name string
	*ParsedExpression
}

func constLit(t sqltype.Name, literal string) *ParsedExpression {
	lit := literal
	return &ParsedExpression{SQLType: t, Nullable: false, ConstantValue: &lit}
}
