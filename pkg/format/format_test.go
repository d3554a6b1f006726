package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pgtypegen/pgtypegen/pkg/analyzer"
	"github.com/pgtypegen/pgtypegen/pkg/sqltype"
)

func testTypes() *sqltype.Catalog {
	return sqltype.New("string", nil, nil)
}

func constStr(v string) *string { return &v }

func TestFormatSimpleObjectType(t *testing.T) {
	f := New(testTypes(), nil, nil, nil)
	out := f.Format([]*analyzer.ParsedResultTarget{
		{Name: "id", ParsedExpression: &analyzer.ParsedExpression{SQLType: sqltype.Int4}},
		{Name: "name", ParsedExpression: &analyzer.ParsedExpression{SQLType: sqltype.Text, Nullable: true}},
	})
	require.Contains(t, out, `"id": number,`)
	require.Contains(t, out, `"name": string | null,`)
}

func TestFormatConstantValue(t *testing.T) {
	f := New(testTypes(), nil, nil, nil)
	out := f.Format([]*analyzer.ParsedResultTarget{
		{Name: "answer", ParsedExpression: &analyzer.ParsedExpression{SQLType: sqltype.Int4, ConstantValue: constStr("42")}},
	})
	require.Contains(t, out, `"answer": 42,`)
}

func TestFormatBranchesDedup(t *testing.T) {
	f := New(testTypes(), nil, nil, nil)
	out := f.Format([]*analyzer.ParsedResultTarget{
		{Name: "contact", ParsedExpression: &analyzer.ParsedExpression{
			SQLType: sqltype.Text,
			Branches: []*analyzer.ParsedExpression{
				{SQLType: sqltype.Text},
				{SQLType: sqltype.Text},
			},
		}},
	})
	require.Contains(t, out, `"contact": string,`)
}

func TestFormatSetVariantsProducesUnionOfObjects(t *testing.T) {
	f := New(testTypes(), nil, nil, nil)
	out := f.Format([]*analyzer.ParsedResultTarget{
		{Name: "id", ParsedExpression: &analyzer.ParsedExpression{
			SQLType: sqltype.Int4,
			SetVariants: []*analyzer.ParsedExpression{
				{SQLType: sqltype.Int4},
				{SQLType: sqltype.Int4, Nullable: true},
			},
		}},
	})
	require.Contains(t, out, `"id": number,`)
	require.Contains(t, out, `"id": number | null,`)
	require.Contains(t, out, " | ")
}

func TestFormatCustomColumnFormatter(t *testing.T) {
	f := New(testTypes(), func(name, tsType string) string {
		return name + "=" + tsType + ";"
	}, nil, nil)
	out := f.Format([]*analyzer.ParsedResultTarget{
		{Name: "id", ParsedExpression: &analyzer.ParsedExpression{SQLType: sqltype.Int4}},
	})
	require.Contains(t, out, "id=number;")
}

func TestFormatEmptyResultList(t *testing.T) {
	f := New(testTypes(), nil, nil, nil)
	out := f.Format(nil)
	require.Equal(t, "{\n}", out)
}

func TestFormatWithDefaultPrettyPrinter(t *testing.T) {
	f := New(testTypes(), nil, DefaultPrettyPrinter, map[string]string{"indent": "4", "semicolon": "true"})
	out := f.Format([]*analyzer.ParsedResultTarget{
		{Name: "id", ParsedExpression: &analyzer.ParsedExpression{SQLType: sqltype.Int4}},
	})
	require.Contains(t, out, `"id": number,`)
	require.True(t, strings.HasSuffix(out, ";"))
}

func TestDefaultPrettyPrinterIndentsBraceNesting(t *testing.T) {
	out, err := DefaultPrettyPrinter("type T = {\n\"id\": number,\n}", map[string]string{"indent": "2"})
	require.NoError(t, err)
	require.Equal(t, "type T = {\n  \"id\": number,\n}", out)
}
