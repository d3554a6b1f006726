package analyzer

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Kind classifies why analysis failed: a missing table, a missing or
// ambiguous column, an expression with no inferrable name, a construct
// the analyzer doesn't model, or a parse failure.
type Kind string

const (
	KindUnknownTable  Kind = "UnknownTable"
	KindUnknownColumn Kind = "UnknownColumn"
	KindMissingAlias  Kind = "MissingAlias"
	KindUnsupported   Kind = "Unsupported"
	KindParse         Kind = "Parse"
)

// Error wraps one of the five kinds plus a human-readable detail and,
// where the failure can be pinned to a single AST node, that node
// deparsed back to SQL for diagnostics. Analysis is fatal-per-query:
// the first Error returned anywhere in the recursion aborts that
// query's analysis.
type Error struct {
	Kind   Kind
	Detail string
	Cause  error
	Node   *pg_query.Node
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	if frag := deparseNode(e.Node); frag != "" {
		msg += fmt.Sprintf(" (in: %s)", frag)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

func unknownTable(name string, node *pg_query.Node) error {
	return &Error{Kind: KindUnknownTable, Detail: name, Node: node}
}

func unknownColumn(ref string, node *pg_query.Node) error {
	return &Error{Kind: KindUnknownColumn, Detail: ref, Node: node}
}

func missingAlias(expr string, node *pg_query.Node) error {
	return &Error{Kind: KindMissingAlias, Detail: expr, Node: node}
}

func unsupported(construct string, node *pg_query.Node) error {
	return &Error{Kind: KindUnsupported, Detail: construct, Node: node}
}

func parseErr(detail string, cause error) error {
	return &Error{Kind: KindParse, Detail: detail, Cause: cause}
}

// deparseNode renders node back to a SQL fragment for inclusion in an
// error message. Deparse only operates on whole statements, so node is
// boxed as the sole target of a throwaway SELECT and the "SELECT "
// prefix is stripped back off. Returns "" if node is nil or doesn't
// round-trip standalone (not every node kind deparses outside the
// statement it came from).
func deparseNode(node *pg_query.Node) string {
	if node == nil {
		return ""
	}
	wrapped := &pg_query.ParseResult{
		Stmts: []*pg_query.RawStmt{{
			Stmt: &pg_query.Node{
				Node: &pg_query.Node_SelectStmt{
					SelectStmt: &pg_query.SelectStmt{
						TargetList: []*pg_query.Node{{
							Node: &pg_query.Node_ResTarget{
								ResTarget: &pg_query.ResTarget{Val: node},
							},
						}},
					},
				},
			},
		}},
	}
	sql, err := pg_query.Deparse(wrapped)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(sql, "SELECT ")
}
