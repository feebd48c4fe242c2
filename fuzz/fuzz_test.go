package fuzz

import (
	"testing"

	"github.com/gitql-go/gitql"
	"github.com/gitql-go/gitql/provider"
	"github.com/gitql-go/gitql/types"
	"github.com/gitql-go/gitql/value"
)

func fuzzProvider() *provider.MemoryProvider {
	return provider.NewMemoryProvider(map[string]provider.MemoryTable{
		"refs": {
			Schema: provider.Schema{
				Fields: []string{"name", "type"},
				Types: map[string]types.DataType{
					"name": types.Text,
					"type": types.Text,
				},
			},
			Rows: [][]value.Value{
				{value.Text("main"), value.Text("branch")},
				{value.Text("v1"), value.Text("tag")},
			},
		},
	})
}

// FuzzExecute feeds arbitrary scripts through the whole pipeline. The
// engine must return a result or a diagnostic, never panic.
func FuzzExecute(f *testing.F) {
	seeds := []string{
		"SELECT * FROM refs",
		"SELECT name FROM refs WHERE type LIKE 'br%' ORDER BY name DESC LIMIT 1",
		"SELECT COUNT(name) FROM refs GROUP BY type WITH ROLLUP",
		"SELECT 1 + 2 * 3 ^ 2",
		"SELECT CASE WHEN TRUE THEN 1 ELSE 0 END",
		"SET @x := 1; SELECT @x",
		"DESCRIBE refs; SHOW TABLES",
		"SELECT name FROM refs WHERE name IN ('main', 'dev')",
		"SELECT 0x10 + 0b10 + 0o7",
		"SELECT `name` FROM refs -- comment",
		"SELECT int4range(1, 5) @> 3",
		"SELECT '",
		"SELECT name FROM",
		"0x",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	p := fuzzProvider()
	f.Fuzz(func(t *testing.T, query string) {
		result, diag := gitql.Execute(query, p)
		if result == nil && diag == nil {
			t.Fatal("neither result nor diagnostic returned")
		}
	})
}
