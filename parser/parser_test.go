package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitql-go/gitql/ast"
	"github.com/gitql-go/gitql/environment"
	"github.com/gitql-go/gitql/function"
	"github.com/gitql-go/gitql/provider"
	"github.com/gitql-go/gitql/types"
)

func testProvider() *provider.MemoryProvider {
	return provider.NewMemoryProvider(map[string]provider.MemoryTable{
		"commits": {
			Schema: provider.Schema{
				Fields: []string{"commit_id", "name", "email", "title", "message", "time", "repo"},
				Types: map[string]types.DataType{
					"commit_id": types.Text,
					"name":      types.Text,
					"email":     types.Text,
					"title":     types.Text,
					"message":   types.Text,
					"time":      types.Date,
					"repo":      types.Text,
				},
			},
		},
		"branches": {
			Schema: provider.Schema{
				Fields: []string{"name", "commit_count", "is_head", "is_remote", "repo"},
				Types: map[string]types.DataType{
					"name":         types.Text,
					"commit_count": types.Integer,
					"is_head":      types.Boolean,
					"is_remote":    types.Boolean,
					"repo":         types.Text,
				},
			},
		},
	})
}

func parse(t *testing.T, query string) []ast.Query {
	t.Helper()
	queries, diag := ParseScript(query, testProvider(), function.Standard(), environment.New())
	require.Nil(t, diag, "unexpected diagnostic: %v", diag)
	return queries
}

func parseSelect(t *testing.T, query string) *ast.SelectQuery {
	t.Helper()
	queries := parse(t, query)
	require.Len(t, queries, 1)
	sel, ok := queries[0].(*ast.SelectQuery)
	require.True(t, ok, "expected a select query")
	return sel
}

func parseError(t *testing.T, query string) string {
	t.Helper()
	_, diag := ParseScript(query, testProvider(), function.Standard(), environment.New())
	require.NotNil(t, diag, "expected a diagnostic for %q", query)
	return diag.Message()
}

func TestParseSelectFields(t *testing.T) {
	sel := parseSelect(t, "SELECT name, email FROM commits")
	assert.Equal(t, "commits", sel.Table)
	assert.Equal(t, []string{"name", "email"}, sel.Fields)
	assert.Equal(t, []string{"name", "email"}, sel.Titles())
	assert.False(t, sel.SelectAggregationsOnly)
}

func TestParseSelectStar(t *testing.T) {
	sel := parseSelect(t, "SELECT * FROM branches")
	assert.Equal(t, []string{"name", "commit_count", "is_head", "is_remote", "repo"}, sel.Fields)
	assert.Len(t, sel.Projections, 5)
}

func TestParseSelectAlias(t *testing.T) {
	sel := parseSelect(t, "SELECT name AS author FROM commits")
	assert.Equal(t, []string{"author"}, sel.Titles())
	assert.Equal(t, "author", sel.AliasTable["name"])
}

func TestParseExpressionProjectionTitle(t *testing.T) {
	sel := parseSelect(t, "SELECT 1 + 2 * 3")
	assert.Equal(t, []string{"1 + 2 * 3"}, sel.Titles())
	assert.Equal(t, "", sel.Table)
}

func TestParseHiddenSelections(t *testing.T) {
	sel := parseSelect(t, "SELECT name FROM commits WHERE email = 'a@x' ORDER BY time")
	assert.Equal(t, []string{"name"}, sel.Fields)
	assert.Equal(t, []string{"email", "time"}, sel.HiddenSelections)
}

func TestParseProjectedColumnsAreNotHidden(t *testing.T) {
	sel := parseSelect(t, "SELECT name, email FROM commits WHERE email = 'a@x' ORDER BY name")
	assert.Empty(t, sel.HiddenSelections)
}

func TestParseAggregateLifting(t *testing.T) {
	sel := parseSelect(t, "SELECT COUNT(name) FROM branches")
	require.Len(t, sel.Aggregations, 1)
	call := sel.Aggregations["count"]
	assert.Equal(t, "count", call.FunctionName)
	assert.Equal(t, "name", call.Argument)
	assert.Equal(t, []string{"count"}, sel.Titles())
	assert.True(t, sel.SelectAggregationsOnly)

	symbol, ok := sel.Projections[0].Expr.(*ast.SymbolExpr)
	require.True(t, ok, "aggregate call is replaced by a symbol")
	assert.Equal(t, "count", symbol.Name)
}

func TestParseAggregateAlias(t *testing.T) {
	sel := parseSelect(t, "SELECT MAX(commit_count) AS biggest FROM branches")
	require.Contains(t, sel.Aggregations, "biggest")
	assert.Equal(t, []string{"biggest"}, sel.Titles())
}

func TestParseNestedAggregateLifting(t *testing.T) {
	sel := parseSelect(t, "SELECT MAX(commit_count) + 1 AS answer FROM branches")
	require.Contains(t, sel.Aggregations, "_agg_max_commit_count_0")
	assert.Equal(t, []string{"answer"}, sel.Titles())
	assert.False(t, sel.SelectAggregationsOnly)
}

func TestParseHavingAggregateLifting(t *testing.T) {
	sel := parseSelect(t, "SELECT name FROM commits GROUP BY name HAVING COUNT(commit_id) > 1")
	require.Contains(t, sel.Aggregations, "_agg_count_commit_id_0")
	require.NotNil(t, sel.Having)
	assert.Equal(t, []string{"name"}, sel.Titles())
}

func TestParseMixedProjectionWithGroupBy(t *testing.T) {
	sel := parseSelect(t, "SELECT name, COUNT(commit_id) FROM commits GROUP BY name")
	require.NotNil(t, sel.GroupBy)
	assert.Equal(t, []string{"name"}, sel.GroupBy.FieldNames)
	assert.Equal(t, []string{"name", "count"}, sel.Titles())
	assert.False(t, sel.SelectAggregationsOnly)
}

func TestParseGroupByRollup(t *testing.T) {
	sel := parseSelect(t, "SELECT name FROM commits GROUP BY name, email WITH ROLLUP")
	require.NotNil(t, sel.GroupBy)
	assert.True(t, sel.GroupBy.WithRollup)
	assert.Equal(t, []string{"name", "email"}, sel.GroupBy.FieldNames)
}

func TestParseOrderByDirections(t *testing.T) {
	sel := parseSelect(t, "SELECT name FROM commits ORDER BY name ASC, time DESC")
	require.NotNil(t, sel.OrderBy)
	assert.Equal(t, []bool{true, false}, sel.OrderBy.Ascending)
	assert.Len(t, sel.OrderBy.Arguments, 2)
}

func TestParseLimitOffset(t *testing.T) {
	sel := parseSelect(t, "SELECT name FROM commits LIMIT 10 OFFSET 5")
	require.NotNil(t, sel.Limit)
	require.NotNil(t, sel.Offset)
	assert.Equal(t, 10, sel.Limit.Count)
	assert.Equal(t, 5, sel.Offset.Count)
}

func TestParseDistinct(t *testing.T) {
	sel := parseSelect(t, "SELECT DISTINCT name FROM commits")
	assert.True(t, sel.Distinct)
}

func TestParseIntoOutfile(t *testing.T) {
	sel := parseSelect(t, "SELECT name FROM commits INTO OUTFILE '/tmp/out.csv' FIELDS TERMINATED BY ';' LINES TERMINATED BY '\n'")
	require.NotNil(t, sel.Into)
	assert.Equal(t, "/tmp/out.csv", sel.Into.Path)
	assert.Equal(t, ";", sel.Into.FieldsTerminatedBy)
	assert.False(t, sel.Into.IsDump)
}

func TestParseCaseExpression(t *testing.T) {
	sel := parseSelect(t, "SELECT CASE WHEN is_head THEN 1 ELSE 0 END AS head FROM branches")
	caseExpr, ok := sel.Projections[0].Expr.(*ast.CaseExpr)
	require.True(t, ok)
	assert.Equal(t, types.KindInteger, caseExpr.ValuesType.Kind)
}

func TestParseBacktickSymbol(t *testing.T) {
	sel := parseSelect(t, "SELECT `name` FROM commits")
	assert.Equal(t, []string{"name"}, sel.Titles())
}

func TestParseSetDoDescribeShow(t *testing.T) {
	queries := parse(t, "SET @answer := 42; DO @answer + 1; DESCRIBE commits; SHOW TABLES")
	require.Len(t, queries, 4)
	set, ok := queries[0].(*ast.SetStatement)
	require.True(t, ok)
	assert.Equal(t, "@answer", set.Name)
	_, ok = queries[1].(*ast.DoStatement)
	assert.True(t, ok)
	describe, ok := queries[2].(*ast.DescribeStatement)
	require.True(t, ok)
	assert.Equal(t, "commits", describe.Table)
	_, ok = queries[3].(*ast.ShowTablesStatement)
	assert.True(t, ok)
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name  string
		query string
	}{
		{"unknown table", "SELECT name FROM nowhere"},
		{"unknown column", "SELECT nope FROM commits"},
		{"unknown column in where", "SELECT name FROM commits WHERE nope = 1"},
		{"unknown function", "SELECT nosuch(name) FROM commits"},
		{"arithmetic on text", "SELECT name + 1 FROM commits"},
		{"logical on integer", "SELECT 1 AND 2"},
		{"bitwise on text", "SELECT name | email FROM commits"},
		{"like on integer", "SELECT commit_count FROM branches WHERE commit_count LIKE 'x'"},
		{"case branch mismatch", "SELECT CASE WHEN is_head THEN 1 ELSE 'x' END FROM branches"},
		{"aggregate in where", "SELECT name FROM commits WHERE COUNT(name) > 1"},
		{"undefined global", "SELECT @missing"},
		{"missing from table", "SELECT name FROM"},
		{"incomplete statement", "SELECT"},
		{"duplicate projection", "SELECT name, name FROM commits"},
		{"negative limit", "SELECT name FROM commits LIMIT -1"},
		{"group by unknown column", "SELECT name FROM commits GROUP BY nope"},
		{"where not boolean", "SELECT name FROM commits WHERE 1 + 1"},
		{"comparison type mismatch", "SELECT name FROM commits WHERE name = 1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			message := parseError(t, tc.query)
			assert.NotEmpty(t, message)
		})
	}
}

func TestParseGlobalVariableTypeFlows(t *testing.T) {
	queries := parse(t, "SET @n := 2; SELECT @n * 3")
	require.Len(t, queries, 2)
	sel, ok := queries[1].(*ast.SelectQuery)
	require.True(t, ok)
	assert.Equal(t, types.KindInteger, sel.Projections[0].Expr.Type().Kind)
}

func TestParseDeterministicSyntheticAliases(t *testing.T) {
	first := parseSelect(t, "SELECT MAX(commit_count) + MIN(commit_count) AS spread FROM branches")
	second := parseSelect(t, "SELECT MAX(commit_count) + MIN(commit_count) AS spread FROM branches")
	assert.Equal(t, first.Aggregations, second.Aggregations)
	require.Contains(t, first.Aggregations, "_agg_max_commit_count_0")
	require.Contains(t, first.Aggregations, "_agg_min_commit_count_1")
}
