// Package format assembles an analyzed statement's result columns into
// a rendered target-language type expression.
package format

import (
	"fmt"
	"strings"

	"github.com/pgtypegen/pgtypegen/pkg/analyzer"
	"github.com/pgtypegen/pgtypegen/pkg/sqltype"
)

// ColumnFormatter renders one column's (name, type) pair into a line
// of output; it owns key/value syntax so callers can target any
// host language.
type ColumnFormatter func(name, tsType string) string

// DefaultColumnFormatter renders a column as a quoted-key TypeScript
// object member.
func DefaultColumnFormatter(name, tsType string) string {
	return fmt.Sprintf("%q: %s,", name, tsType)
}

// Formatter renders ParsedResultTarget lists using a type catalog (for
// mapping bare SQLType values), a column formatter, and an optional
// external pretty-printer applied to the assembled output.
type Formatter struct {
	Types      *sqltype.Catalog
	Column     ColumnFormatter
	Pretty     PrettyPrinter
	PrettyOpts map[string]string
}

// New builds a Formatter; a nil column formatter falls back to
// DefaultColumnFormatter. A nil pretty printer leaves Format's output
// unformatted beyond objectType's own fixed indentation.
func New(types *sqltype.Catalog, column ColumnFormatter, pretty PrettyPrinter, prettyOpts map[string]string) *Formatter {
	if column == nil {
		column = DefaultColumnFormatter
	}
	return &Formatter{Types: types, Column: column, Pretty: pretty, PrettyOpts: prettyOpts}
}

// Format renders one query's result columns. If every target carries
// SetVariants (a set-operation result), the output is a union of one
// object type per variant index; otherwise it is a single object type.
// The assembled string is then run through f.Pretty, if set.
func (f *Formatter) Format(targets []*analyzer.ParsedResultTarget) string {
	var body string
	if len(targets) > 0 && allHaveVariants(targets) {
		n := len(targets[0].SetVariants)
		variants := make([]string, n)
		for i := 0; i < n; i++ {
			variantTargets := make([]*analyzer.ParsedResultTarget, len(targets))
			for j, t := range targets {
				variantTargets[j] = &analyzer.ParsedResultTarget{Name: t.Name, ParsedExpression: t.SetVariants[i]}
			}
			variants[i] = f.objectType(variantTargets)
		}
		body = strings.Join(variants, " | ")
	} else {
		body = f.objectType(targets)
	}
	return applyPretty(f.Pretty, f.PrettyOpts, body)
}

func allHaveVariants(targets []*analyzer.ParsedResultTarget) bool {
	for _, t := range targets {
		if len(t.SetVariants) == 0 {
			return false
		}
	}
	return true
}

func (f *Formatter) objectType(targets []*analyzer.ParsedResultTarget) string {
	if len(targets) == 0 {
		return "{\n}"
	}
	lines := make([]string, 0, len(targets))
	for _, t := range targets {
		lines = append(lines, f.Column(t.Name, f.renderType(t.ParsedExpression)))
	}
	return "{\n  " + strings.Join(lines, "\n  ") + "\n}"
}

// renderType cascades through branches union, else constant literal,
// else mapped sql_type, then nullable appends a deduplicated "null".
func (f *Formatter) renderType(p *analyzer.ParsedExpression) string {
	var union []string
	switch {
	case len(p.Branches) > 0:
		for _, b := range p.Branches {
			union = appendDedup(union, f.branchToken(b))
		}
	case p.ConstantValue != nil:
		union = []string{*p.ConstantValue}
	default:
		union = []string{f.Types.Map(p.SQLType)}
	}
	if p.Nullable {
		union = appendDedup(union, "null")
	}
	return strings.Join(union, " | ")
}

func (f *Formatter) branchToken(b *analyzer.ParsedExpression) string {
	if b.ConstantValue != nil {
		return *b.ConstantValue
	}
	return f.Types.Map(b.SQLType)
}

func appendDedup(tokens []string, next string) []string {
	for _, t := range tokens {
		if t == next {
			return tokens
		}
	}
	return append(tokens, next)
}
