package format

import (
	"strconv"
	"strings"
)

// PrettyPrinter reformats a rendered type expression. It receives the
// raw source wrapped in a sentinel assignment (see applyPretty) and
// the construct-time pretty_options map verbatim, and returns the
// reformatted source still carrying that sentinel — callers strip it
// back off, so a PrettyPrinter never needs to know about the sentinel
// itself beyond preserving it.
type PrettyPrinter func(source string, opts map[string]string) (string, error)

const prettySentinel = "type T = "

// applyPretty wraps body in the sentinel assignment, runs it through
// pp, and strips the sentinel back off. If pp is nil or returns an
// error, body is returned unchanged — pretty-printing never fails a
// Generate call on its own.
func applyPretty(pp PrettyPrinter, opts map[string]string, body string) string {
	if pp == nil {
		return body
	}
	out, err := pp(prettySentinel+body, opts)
	if err != nil {
		return body
	}
	return strings.TrimPrefix(out, prettySentinel)
}

// DefaultPrettyPrinter re-indents a "type T = { ... }" style object or
// union literal to a configurable width and optionally appends a
// trailing semicolon. Recognized opts: "indent" (spaces per level,
// default 2) and "semicolon" ("true" appends one).
//
// It only understands brace/pipe structure, not full syntax: braces
// nest, lines ending in "|" do not advance the indent level. Anything
// not matching that shape is passed through with the sentinel's own
// indentation.
func DefaultPrettyPrinter(source string, opts map[string]string) (string, error) {
	indentWidth := 2
	if v, ok := opts["indent"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			indentWidth = n
		}
	}
	indentUnit := strings.Repeat(" ", indentWidth)

	lines := strings.Split(source, "\n")
	depth := 0
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "}") {
			depth--
		}
		if depth < 0 {
			depth = 0
		}
		out = append(out, strings.Repeat(indentUnit, depth)+trimmed)
		if strings.HasSuffix(trimmed, "{") {
			depth++
		}
	}

	result := strings.Join(out, "\n")
	if opts["semicolon"] == "true" {
		result += ";"
	}
	return result, nil
}
