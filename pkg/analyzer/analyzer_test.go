package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pgtypegen/pgtypegen/pkg/schema"
	"github.com/pgtypegen/pgtypegen/pkg/sqltype"
)

func testScope(t *testing.T) *Scope {
	t.Helper()

	users := schema.NewTable()
	users.Add("id", schema.Column{SQLType: sqltype.Int4, Nullable: false})
	users.Add("name", schema.Column{SQLType: sqltype.Text, Nullable: true})
	users.Add("email", schema.Column{SQLType: sqltype.Text, Nullable: false})

	orders := schema.NewTable()
	orders.Add("id", schema.Column{SQLType: sqltype.Int4, Nullable: false})
	orders.Add("user_id", schema.Column{SQLType: sqltype.Int4, Nullable: false})
	orders.Add("amount", schema.Column{SQLType: sqltype.Numeric, Nullable: false})
	orders.Add("created_at", schema.Column{SQLType: sqltype.Tsamptz, Nullable: false})

	cat := schema.NewCatalog()
	cat.Put("public", "users", users)
	cat.Put("public", "orders", orders)

	enums := schema.NewEnumCatalog()
	enums.Labels[sqltype.Name("mpaa_rating")] = []string{"G", "PG", "PG-13", "R", "NC-17"}

	types := sqltype.New("string", nil, enums.AsLookup())
	return NewScope(cat, "public", enums, types)
}

func analyzeOne(t *testing.T, s *Scope, sql string) []*ParsedResultTarget {
	t.Helper()
	stmts, err := AnalyzeSQL(s, sql)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	require.NoError(t, stmts[0].Err)
	return stmts[0].Results
}

func findResult(t *testing.T, results []*ParsedResultTarget, name string) *ParsedResultTarget {
	t.Helper()
	for _, r := range results {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no result named %q", name)
	return nil
}

func TestSimpleSelectColumnTypes(t *testing.T) {
	s := testScope(t)
	results := analyzeOne(t, s, `SELECT id, name, email FROM users`)

	require.False(t, findResult(t, results, "id").Nullable)
	require.True(t, findResult(t, results, "name").Nullable)
	require.False(t, findResult(t, results, "email").Nullable)
}

func TestStarExpansionOrdersByAliasThenColumn(t *testing.T) {
	s := testScope(t)
	results := analyzeOne(t, s, `SELECT * FROM users`)
	require.Len(t, results, 3)
	require.Equal(t, []string{"id", "name", "email"}, []string{results[0].Name, results[1].Name, results[2].Name})
}

func TestLeftJoinFloodsNullability(t *testing.T) {
	s := testScope(t)
	results := analyzeOne(t, s, `
		SELECT u.id, o.id AS order_id, o.amount
		FROM users u LEFT JOIN orders o ON o.user_id = u.id`)

	require.False(t, findResult(t, results, "id").Nullable, "left side of LEFT JOIN stays non-null")
	require.True(t, findResult(t, results, "order_id").Nullable, "right side of LEFT JOIN is nullable")
	require.True(t, findResult(t, results, "amount").Nullable)
}

func TestRightJoinFloodsLeftSide(t *testing.T) {
	s := testScope(t)
	results := analyzeOne(t, s, `
		SELECT u.id, o.id AS order_id
		FROM users u RIGHT JOIN orders o ON o.user_id = u.id`)

	require.True(t, findResult(t, results, "id").Nullable)
	require.False(t, findResult(t, results, "order_id").Nullable)
}

func TestCaseWithoutElseIsNullable(t *testing.T) {
	s := testScope(t)
	results := analyzeOne(t, s, `
		SELECT CASE WHEN id = 1 THEN 'one' END AS label FROM users`)
	require.True(t, findResult(t, results, "label").Nullable)
}

func TestCaseWithElseNonNullBranchesIsNotNullable(t *testing.T) {
	s := testScope(t)
	results := analyzeOne(t, s, `
		SELECT CASE WHEN id = 1 THEN 'one' ELSE 'other' END AS label FROM users`)
	require.False(t, findResult(t, results, "label").Nullable)
}

func TestCoalesceTruncatesAtFirstNonNullable(t *testing.T) {
	s := testScope(t)
	results := analyzeOne(t, s, `SELECT COALESCE(name, email, 'none') AS contact FROM users`)
	contact := findResult(t, results, "contact")
	require.False(t, contact.Nullable)
	require.Len(t, contact.Branches, 2)
}

func TestLiteralNarrowing(t *testing.T) {
	s := testScope(t)
	results := analyzeOne(t, s, `SELECT 42 AS answer`)
	answer := findResult(t, results, "answer")
	require.NotNil(t, answer.ConstantValue)
	require.Equal(t, "42", *answer.ConstantValue)
	require.False(t, answer.Nullable)
}

func TestUnionProducesSetVariants(t *testing.T) {
	s := testScope(t)
	results := analyzeOne(t, s, `
		SELECT id FROM users
		UNION
		SELECT user_id FROM orders`)
	require.Len(t, results, 1)
	require.Len(t, results[0].SetVariants, 2)
}

func TestValuesColumnNaming(t *testing.T) {
	s := testScope(t)
	results := analyzeOne(t, s, `VALUES (1, 'a'), (2, NULL)`)
	require.Len(t, results, 2)
	require.Equal(t, "column1", results[0].Name)
	require.Equal(t, "column2", results[1].Name)
	require.False(t, results[0].Nullable)
	require.True(t, results[1].Nullable, "second row's NULL makes column2 nullable")
}

func TestInsertReturning(t *testing.T) {
	s := testScope(t)
	results := analyzeOne(t, s, `INSERT INTO users (id, email) VALUES (1, 'a@example.com') RETURNING id, name`)
	require.Len(t, results, 2)
	require.True(t, findResult(t, results, "name").Nullable)
}

func TestInsertWithoutReturningHasNoResults(t *testing.T) {
	s := testScope(t)
	results := analyzeOne(t, s, `INSERT INTO users (id, email) VALUES (1, 'a@example.com')`)
	require.Empty(t, results)
}

func TestUnknownTableFails(t *testing.T) {
	s := testScope(t)
	stmts, err := AnalyzeSQL(s, `SELECT * FROM does_not_exist`)
	require.NoError(t, err)
	require.Error(t, stmts[0].Err)
	var analyzeErr *Error
	require.ErrorAs(t, stmts[0].Err, &analyzeErr)
	require.Equal(t, KindUnknownTable, analyzeErr.Kind)
}

func TestAmbiguousUnqualifiedColumnFails(t *testing.T) {
	s := testScope(t)
	stmts, err := AnalyzeSQL(s, `SELECT id FROM users, orders`)
	require.NoError(t, err)
	require.Error(t, stmts[0].Err)
}

func TestMultiStatementBatchIsolatesErrors(t *testing.T) {
	s := testScope(t)
	stmts, err := AnalyzeSQL(s, `SELECT id FROM users; SELECT * FROM nope;`)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	require.NoError(t, stmts[0].Err)
	require.Error(t, stmts[1].Err)
}

func TestFullyQualifiedColumnReferenceUnsupported(t *testing.T) {
	s := testScope(t)
	stmts, err := AnalyzeSQL(s, `SELECT public.users.id FROM users`)
	require.NoError(t, err)
	require.Error(t, stmts[0].Err)
	var analyzeErr *Error
	require.ErrorAs(t, stmts[0].Err, &analyzeErr)
	require.Equal(t, KindUnsupported, analyzeErr.Kind)
}

func TestSubqueryInFromRequiresAlias(t *testing.T) {
	s := testScope(t)
	stmts, err := AnalyzeSQL(s, `SELECT x FROM (SELECT id AS x FROM users)`)
	require.NoError(t, err)
	require.Error(t, stmts[0].Err)
	var analyzeErr *Error
	require.ErrorAs(t, stmts[0].Err, &analyzeErr)
	require.Equal(t, KindMissingAlias, analyzeErr.Kind)
}

func TestSubqueryInFromWithAlias(t *testing.T) {
	s := testScope(t)
	results := analyzeOne(t, s, `SELECT sub.x FROM (SELECT id AS x FROM users) sub`)
	require.Len(t, results, 1)
	require.Equal(t, "x", results[0].Name)
}

func TestCTEIsVisibleToMainQuery(t *testing.T) {
	s := testScope(t)
	results := analyzeOne(t, s, `
		WITH active AS (SELECT id, name FROM users)
		SELECT id, name FROM active`)
	require.Len(t, results, 2)
	require.True(t, findResult(t, results, "name").Nullable)
}
