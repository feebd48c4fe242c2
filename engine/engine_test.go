package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitql-go/gitql/engine"
	"github.com/gitql-go/gitql/environment"
	"github.com/gitql-go/gitql/function"
	"github.com/gitql-go/gitql/object"
	"github.com/gitql-go/gitql/parser"
	"github.com/gitql-go/gitql/provider"
	"github.com/gitql-go/gitql/types"
	"github.com/gitql-go/gitql/value"
)

func commitsProvider(rows [][]value.Value) *provider.MemoryProvider {
	return provider.NewMemoryProvider(map[string]provider.MemoryTable{
		"commits": {
			Schema: provider.Schema{
				Fields: []string{"commit_id", "name", "email", "insertions"},
				Types: map[string]types.DataType{
					"commit_id":  types.Text,
					"name":       types.Text,
					"email":      types.Text,
					"insertions": types.Integer,
				},
			},
			Rows: rows,
		},
	})
}

func commitRow(id, name, email string, insertions int64) []value.Value {
	return []value.Value{
		value.Text(id), value.Text(name), value.Text(email), value.Integer(insertions),
	}
}

// run parses and executes a script, returning the last result.
func run(t *testing.T, p provider.Provider, query string) *object.GitQLObject {
	t.Helper()
	env := environment.New()
	queries, diag := parser.ParseScript(query, p, function.Standard(), env)
	require.Nil(t, diag, "parse diagnostic: %v", diag)
	var result *object.GitQLObject
	for _, q := range queries {
		result, diag = engine.Execute(env, p, function.Standard(), q)
		require.Nil(t, diag, "runtime diagnostic: %v", diag)
	}
	return result
}

func flatLiterals(obj *object.GitQLObject) [][]string {
	var rows [][]string
	for _, row := range obj.Flat() {
		cells := make([]string, len(row.Values))
		for i, v := range row.Values {
			cells[i] = v.Literal()
		}
		rows = append(rows, cells)
	}
	return rows
}

func TestWhereFiltersNonTrue(t *testing.T) {
	p := commitsProvider([][]value.Value{
		commitRow("1", "Ada", "a@x", 10),
		commitRow("2", "Bo", "b@x", 0),
	})
	result := run(t, p, "SELECT name FROM commits WHERE insertions > 5")
	assert.Equal(t, [][]string{{"Ada"}}, flatLiterals(result))
}

func TestOrderByStableAndNullPlacement(t *testing.T) {
	p := provider.NewMemoryProvider(map[string]provider.MemoryTable{
		"t": {
			Schema: provider.Schema{
				Fields: []string{"k", "v"},
				Types:  map[string]types.DataType{"k": types.Integer, "v": types.Text},
			},
			Rows: [][]value.Value{
				{value.Integer(1), value.Text("first")},
				{value.Null(), value.Text("nullish")},
				{value.Integer(1), value.Text("second")},
				{value.Integer(0), value.Text("zero")},
			},
		},
	})

	asc := run(t, p, "SELECT v FROM t ORDER BY k ASC")
	assert.Equal(t, [][]string{{"zero"}, {"first"}, {"second"}, {"nullish"}}, flatLiterals(asc))

	desc := run(t, p, "SELECT v FROM t ORDER BY k DESC")
	assert.Equal(t, [][]string{{"nullish"}, {"first"}, {"second"}, {"zero"}}, flatLiterals(desc))
}

func TestOffsetLimitBounds(t *testing.T) {
	p := commitsProvider([][]value.Value{
		commitRow("1", "a", "", 0),
		commitRow("2", "b", "", 0),
		commitRow("3", "c", "", 0),
	})

	assert.Len(t, run(t, p, "SELECT name FROM commits LIMIT 2").Flat(), 2)
	assert.Len(t, run(t, p, "SELECT name FROM commits OFFSET 2").Flat(), 1)
	assert.Len(t, run(t, p, "SELECT name FROM commits OFFSET 5").Flat(), 0)
	assert.Len(t, run(t, p, "SELECT name FROM commits LIMIT 10 OFFSET 1").Flat(), 2)
}

func TestGroupByPartitioning(t *testing.T) {
	p := commitsProvider([][]value.Value{
		commitRow("1", "A", "", 0),
		commitRow("2", "A", "", 0),
		commitRow("3", "B", "", 0),
	})
	result := run(t, p, "SELECT name, COUNT(commit_id) FROM commits GROUP BY name")
	assert.Equal(t, []string{"name", "count"}, result.Titles)
	assert.Equal(t, [][]string{{"A", "2"}, {"B", "1"}}, flatLiterals(result))
	// One group per distinct key.
	assert.Len(t, result.Groups, 2)
}

func TestGroupByWithRollup(t *testing.T) {
	p := commitsProvider([][]value.Value{
		commitRow("1", "A", "a@x", 0),
		commitRow("2", "A", "b@x", 0),
		commitRow("3", "B", "a@x", 0),
	})
	result := run(t, p, "SELECT name, email, COUNT(commit_id) FROM commits GROUP BY name, email WITH ROLLUP")
	assert.Equal(t, [][]string{
		{"A", "a@x", "1"},
		{"A", "b@x", "1"},
		{"B", "a@x", "1"},
		{"A", "Null", "2"},
		{"B", "Null", "1"},
		{"Null", "Null", "3"},
	}, flatLiterals(result))
}

func TestHavingFiltersGroups(t *testing.T) {
	p := commitsProvider([][]value.Value{
		commitRow("1", "A", "", 0),
		commitRow("2", "A", "", 0),
		commitRow("3", "B", "", 0),
	})
	result := run(t, p, "SELECT name FROM commits GROUP BY name HAVING COUNT(commit_id) > 1")
	assert.Equal(t, [][]string{{"A"}}, flatLiterals(result))
}

func TestAggregationOverEmptyInput(t *testing.T) {
	p := commitsProvider(nil)
	result := run(t, p, "SELECT COUNT(name) FROM commits")
	assert.Equal(t, [][]string{{"0"}}, flatLiterals(result))

	result = run(t, p, "SELECT SUM(insertions) FROM commits")
	assert.Equal(t, [][]string{{"0"}}, flatLiterals(result))

	result = run(t, p, "SELECT MAX(insertions) FROM commits")
	assert.Equal(t, [][]string{{"Null"}}, flatLiterals(result))

	result = run(t, p, "SELECT AVG(insertions) FROM commits")
	assert.Equal(t, [][]string{{"Null"}}, flatLiterals(result))
}

func TestThreeValuedLogic(t *testing.T) {
	p := commitsProvider(nil)
	testCases := []struct {
		expr     string
		expected string
	}{
		{"TRUE OR NULL", "true"},
		{"FALSE OR NULL", "Null"},
		{"TRUE AND NULL", "Null"},
		{"FALSE AND NULL", "false"},
		{"TRUE XOR NULL", "Null"},
		{"TRUE XOR FALSE", "true"},
		{"TRUE XOR TRUE", "false"},
		{"NOT TRUE", "false"},
	}
	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			result := run(t, p, "SELECT "+tc.expr+" AS r")
			assert.Equal(t, [][]string{{tc.expected}}, flatLiterals(result))
		})
	}
}

func TestNullSafeEquality(t *testing.T) {
	p := commitsProvider(nil)
	assert.Equal(t, [][]string{{"true"}}, flatLiterals(run(t, p, "SELECT NULL <=> NULL AS r")))
	assert.Equal(t, [][]string{{"false"}}, flatLiterals(run(t, p, "SELECT 1 <=> NULL AS r")))
	assert.Equal(t, [][]string{{"Null"}}, flatLiterals(run(t, p, "SELECT 1 = NULL AS r")))
}

func TestArithmetic(t *testing.T) {
	p := commitsProvider(nil)
	testCases := []struct {
		expr     string
		expected string
	}{
		{"1 + 2 * 3", "7"},
		{"7 / 2", "3"},
		{"7.0 / 2", "3.5"},
		{"1 / 0", "Null"},
		{"7 % 3", "1"},
		{"-7 % 3", "-1"},
		{"7 % 0", "Null"},
		{"2 ^ 10", "1024"},
		{"10 DIV 3", "3"},
		{"10 MOD 3", "1"},
		{"1 << 4", "16"},
		{"12 >> 2", "3"},
		{"12 & 10", "8"},
		{"12 | 10", "14"},
		{"12 # 10", "6"},
		{"~0", "-1"},
		{"1 + NULL", "Null"},
	}
	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			result := run(t, p, "SELECT "+tc.expr+" AS r")
			assert.Equal(t, [][]string{{tc.expected}}, flatLiterals(result))
		})
	}
}

func TestTextChecks(t *testing.T) {
	p := commitsProvider(nil)
	testCases := []struct {
		expr     string
		expected string
	}{
		{"'branch' LIKE 'br%'", "true"},
		{"'BRANCH' LIKE 'br%'", "true"},
		{"'tag' LIKE 'br%'", "false"},
		{"'file_name' LIKE 'file_name'", "true"},
		{"'branch' GLOB 'br*'", "true"},
		{"'branch' GLOB 'br?nch'", "true"},
		{"'branch' GLOB '[ab]ranch'", "true"},
		{"'branch' REGEXP '^br'", "true"},
		{"'tag' REGEXP '^br'", "false"},
		{"NULL LIKE 'x'", "Null"},
	}
	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			result := run(t, p, "SELECT "+tc.expr+" AS r")
			assert.Equal(t, [][]string{{tc.expected}}, flatLiterals(result))
		})
	}
}

func TestBetweenInclusive(t *testing.T) {
	p := commitsProvider(nil)
	assert.Equal(t, [][]string{{"true"}}, flatLiterals(run(t, p, "SELECT 5 BETWEEN 1 AND 5 AS r")))
	assert.Equal(t, [][]string{{"true"}}, flatLiterals(run(t, p, "SELECT 1 BETWEEN 1 AND 5 AS r")))
	assert.Equal(t, [][]string{{"false"}}, flatLiterals(run(t, p, "SELECT 6 BETWEEN 1 AND 5 AS r")))
	assert.Equal(t, [][]string{{"Null"}}, flatLiterals(run(t, p, "SELECT NULL BETWEEN 1 AND 5 AS r")))
}

func TestRangeContainment(t *testing.T) {
	p := commitsProvider(nil)
	assert.Equal(t, [][]string{{"true"}},
		flatLiterals(run(t, p, "SELECT int4range(1, 10) @> 5 AS r")))
	assert.Equal(t, [][]string{{"false"}},
		flatLiterals(run(t, p, "SELECT int4range(1, 10) @> 42 AS r")))
	assert.Equal(t, [][]string{{"true"}},
		flatLiterals(run(t, p, "SELECT int4range(1, 10) @> int4range(2, 5) AS r")))
}

func TestRangeIsEmpty(t *testing.T) {
	p := commitsProvider(nil)
	assert.Equal(t, [][]string{{"false"}},
		flatLiterals(run(t, p, "SELECT isempty(int4range(1, 5)) AS r")))
	assert.Equal(t, [][]string{{"true"}},
		flatLiterals(run(t, p, "SELECT isempty(int4range(2, 2)) AS r")))
	assert.Equal(t, [][]string{{"true"}},
		flatLiterals(run(t, p, "SELECT isempty(int4range(1 + 1, 2)) AS r")))
}

func TestCaseExpression(t *testing.T) {
	p := commitsProvider([][]value.Value{
		commitRow("1", "Ada", "", 10),
		commitRow("2", "Bo", "", 0),
	})
	result := run(t, p, "SELECT CASE WHEN insertions > 5 THEN 'big' ELSE 'small' END AS size FROM commits")
	assert.Equal(t, [][]string{{"big"}, {"small"}}, flatLiterals(result))
}

func TestInDesugaring(t *testing.T) {
	p := commitsProvider([][]value.Value{
		commitRow("1", "Ada", "", 0),
		commitRow("2", "Bo", "", 0),
		commitRow("3", "Cy", "", 0),
	})
	result := run(t, p, "SELECT name FROM commits WHERE name IN ('Ada', 'Cy')")
	assert.Equal(t, [][]string{{"Ada"}, {"Cy"}}, flatLiterals(result))
	result = run(t, p, "SELECT name FROM commits WHERE name NOT IN ('Ada', 'Cy')")
	assert.Equal(t, [][]string{{"Bo"}}, flatLiterals(result))
}

func TestDistinct(t *testing.T) {
	p := commitsProvider([][]value.Value{
		commitRow("1", "A", "", 0),
		commitRow("2", "A", "", 0),
		commitRow("3", "B", "", 0),
	})
	result := run(t, p, "SELECT DISTINCT name FROM commits")
	assert.Equal(t, [][]string{{"A"}, {"B"}}, flatLiterals(result))
}

func TestAliasVisibleInWhere(t *testing.T) {
	p := commitsProvider([][]value.Value{
		commitRow("1", "Ada", "", 0),
		commitRow("2", "Bo", "", 0),
	})
	result := run(t, p, "SELECT name AS author FROM commits WHERE name = 'Ada'")
	assert.Equal(t, []string{"author"}, result.Titles)
	assert.Equal(t, [][]string{{"Ada"}}, flatLiterals(result))
}

func TestGlobalVariables(t *testing.T) {
	p := commitsProvider([][]value.Value{
		commitRow("1", "Ada", "", 10),
		commitRow("2", "Bo", "", 2),
	})
	result := run(t, p, "SET @threshold := 5; SELECT name FROM commits WHERE insertions > @threshold")
	assert.Equal(t, [][]string{{"Ada"}}, flatLiterals(result))
}

func TestDescribeAndShowTables(t *testing.T) {
	p := commitsProvider(nil)
	result := run(t, p, "DESCRIBE commits")
	assert.Equal(t, []string{"field", "type"}, result.Titles)
	assert.Equal(t, [][]string{
		{"commit_id", "Text"},
		{"name", "Text"},
		{"email", "Text"},
		{"insertions", "Integer"},
	}, flatLiterals(result))

	result = run(t, p, "SHOW TABLES")
	assert.Equal(t, [][]string{{"commits"}}, flatLiterals(result))
}

func TestBenchmarkExpression(t *testing.T) {
	p := commitsProvider(nil)
	result := run(t, p, "SELECT BENCHMARK(10, 1 + 1) AS r")
	assert.Equal(t, [][]string{{"Null"}}, flatLiterals(result))
}

func TestProviderErrorSurfacesAsRuntimeDiagnostic(t *testing.T) {
	p := commitsProvider(nil)
	env := environment.New()
	queries, diag := parser.ParseScript("SELECT name FROM commits", p, function.Standard(), env)
	require.Nil(t, diag)

	// A provider that fails at fetch time.
	failing := &failingProvider{inner: p}
	_, diag = engine.Execute(env, failing, function.Standard(), queries[0])
	require.NotNil(t, diag)
	assert.Contains(t, diag.Message(), "Provider failed")
}

type failingProvider struct {
	inner *provider.MemoryProvider
}

func (f *failingProvider) Fetch(string, []string, map[string]string) ([]string, []object.Row, error) {
	return nil, nil, assert.AnError
}

func (f *failingProvider) Schema(table string) (*provider.Schema, bool) {
	return f.inner.Schema(table)
}

func (f *failingProvider) TableNames() []string {
	return f.inner.TableNames()
}
