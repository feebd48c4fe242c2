// Package engine evaluates parsed queries against a provider, applying
// the WHERE, GROUP BY, aggregation, HAVING, ORDER BY, paging and
// projection pipeline over materialized rows.
package engine

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/gitql-go/gitql/ast"
	"github.com/gitql-go/gitql/diagnostic"
	"github.com/gitql-go/gitql/environment"
	"github.com/gitql-go/gitql/function"
	"github.com/gitql-go/gitql/object"
	"github.com/gitql-go/gitql/provider"
	"github.com/gitql-go/gitql/types"
	"github.com/gitql-go/gitql/value"
)

// Execute evaluates one parsed statement and returns its result object.
// Provider failures surface as runtime diagnostics without retry; the
// engine never panics on bad rows.
func Execute(env *environment.Environment, p provider.Provider, registry *function.Registry, query ast.Query) (*object.GitQLObject, *diagnostic.Diagnostic) {
	switch q := query.(type) {
	case *ast.SelectQuery:
		return executeSelect(env, p, registry, q)
	case *ast.DoStatement:
		ev := newEvaluator(env, registry, nil, nil)
		if _, diag := ev.eval(q.Expr, object.Row{}); diag != nil {
			return nil, diag
		}
		return &object.GitQLObject{}, nil
	case *ast.SetStatement:
		ev := newEvaluator(env, registry, nil, nil)
		v, diag := ev.eval(q.Value, object.Row{})
		if diag != nil {
			return nil, diag
		}
		env.DefineGlobal(q.Name, v)
		return &object.GitQLObject{}, nil
	case *ast.DescribeStatement:
		return executeDescribe(p, q)
	case *ast.ShowTablesStatement:
		return executeShowTables(p)
	}
	return nil, diagnostic.Error("Unsupported statement kind")
}

func executeDescribe(p provider.Provider, q *ast.DescribeStatement) (*object.GitQLObject, *diagnostic.Diagnostic) {
	schema, ok := p.Schema(q.Table)
	if !ok {
		return nil, diagnostic.Errorf("Unknown table name `%s`", q.Table)
	}
	group := object.Group{}
	for _, field := range schema.Fields {
		group.Rows = append(group.Rows, object.Row{Values: []value.Value{
			value.Text(field),
			value.Text(schema.Types[field].String()),
		}})
	}
	return &object.GitQLObject{
		Titles: []string{"field", "type"},
		Groups: []object.Group{group},
	}, nil
}

func executeShowTables(p provider.Provider) (*object.GitQLObject, *diagnostic.Diagnostic) {
	group := object.Group{}
	for _, name := range p.TableNames() {
		group.Rows = append(group.Rows, object.Row{Values: []value.Value{value.Text(name)}})
	}
	return &object.GitQLObject{
		Titles: []string{"tables"},
		Groups: []object.Group{group},
	}, nil
}

// groupData is one partition of rows plus the number of leading group
// keys that remain significant; rollup groups null out the trailing keys
// on their representative.
type groupData struct {
	rows     []object.Row
	keyCount int
}

func executeSelect(env *environment.Environment, p provider.Provider, registry *function.Registry, q *ast.SelectQuery) (*object.GitQLObject, *diagnostic.Diagnostic) {
	// Materialize the union of user fields, hidden selections and
	// aggregate argument columns.
	fetchFields := fetchFieldList(q)

	var titles []string
	var rows []object.Row
	if q.Table != "" {
		var err error
		titles, rows, err = p.Fetch(q.Table, fetchFields, q.AliasTable)
		if err != nil {
			return nil, diagnostic.Errorf("Provider failed to fetch table `%s`: %s", q.Table, err.Error())
		}
	} else {
		// A table-less select evaluates its projections over one empty row.
		rows = []object.Row{{}}
	}
	slog.Debug("materialized rows", "table", q.Table, "count", len(rows))

	indexes := map[string]int{}
	for i, title := range titles {
		indexes[title] = i
	}
	ev := newEvaluator(env, registry, indexes, q.AliasTable)

	// Filter: drop rows whose WHERE result is non-TRUE.
	if q.Where != nil {
		filtered := rows[:0]
		for _, row := range rows {
			v, diag := ev.eval(q.Where.Condition, row)
			if diag != nil {
				return nil, diag
			}
			if isTrue(v) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	grouped := q.GroupBy != nil
	hasAggregations := len(q.Aggregations) > 0

	if grouped || hasAggregations {
		var diag *diagnostic.Diagnostic
		rows, titles, diag = aggregateGroups(ev, q, rows, titles)
		if diag != nil {
			return nil, diag
		}
		ev = newEvaluator(env, registry, indexOf(titles), q.AliasTable)
	}

	// Filter group representatives by the HAVING predicate.
	if q.Having != nil {
		filtered := rows[:0]
		for _, row := range rows {
			v, diag := ev.eval(q.Having.Condition, row)
			if diag != nil {
				return nil, diag
			}
			if isTrue(v) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	// Stable sort by the ORDER BY expression list with per-key direction.
	if q.OrderBy != nil {
		if diag := sortRows(ev, q.OrderBy, rows); diag != nil {
			return nil, diag
		}
	}

	// Paging.
	if q.Offset != nil {
		if q.Offset.Count >= len(rows) {
			rows = nil
		} else {
			rows = rows[q.Offset.Count:]
		}
	}
	if q.Limit != nil && q.Limit.Count < len(rows) {
		rows = rows[:q.Limit.Count]
	}

	// Project: retain only user-selected columns in SELECT order, dropping
	// hidden selections and synthetic aggregate columns.
	resultTitles := q.Titles()
	projected := make([]object.Row, 0, len(rows))
	for _, row := range rows {
		values := make([]value.Value, len(q.Projections))
		for i, projection := range q.Projections {
			v, diag := ev.eval(projection.Expr, row)
			if diag != nil {
				return nil, diag
			}
			values[i] = v
		}
		projected = append(projected, object.Row{Values: values})
	}

	if q.Distinct {
		projected = distinctRows(projected)
	}

	result := &object.GitQLObject{Titles: resultTitles}
	if grouped {
		for _, row := range projected {
			result.Groups = append(result.Groups, object.Group{Rows: []object.Row{row}})
		}
	} else {
		result.Groups = []object.Group{{Rows: projected}}
	}
	return result, nil
}

// fetchFieldList returns the union of user fields, hidden selections and
// aggregate argument columns, preserving a deterministic order.
func fetchFieldList(q *ast.SelectQuery) []string {
	seen := map[string]bool{}
	var fields []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			fields = append(fields, name)
		}
	}
	for _, f := range q.Fields {
		add(f)
	}
	for _, f := range q.HiddenSelections {
		add(f)
	}
	for _, alias := range sortedAliases(q.Aggregations) {
		add(q.Aggregations[alias].Argument)
	}
	return fields
}

func sortedAliases(aggregations map[string]ast.AggregateCall) []string {
	aliases := make([]string, 0, len(aggregations))
	for alias := range aggregations {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

func indexOf(titles []string) map[string]int {
	indexes := make(map[string]int, len(titles))
	for i, title := range titles {
		indexes[title] = i
	}
	return indexes
}

// aggregateGroups partitions rows, computes every registered aggregation
// per group, and reduces each group to a single representative row with
// the aggregate values installed in appended columns.
func aggregateGroups(ev *evaluator, q *ast.SelectQuery, rows []object.Row, titles []string) ([]object.Row, []string, *diagnostic.Diagnostic) {
	keyCount := 0
	var groups []groupData

	if q.GroupBy != nil {
		keyCount = len(q.GroupBy.FieldNames)
		groups = partition(ev, q.GroupBy.FieldNames, rows, keyCount)
		if q.GroupBy.WithRollup {
			// Super-aggregate groups from the most detailed prefix down to
			// the grand total, with trailing keys nulled.
			for prefix := keyCount - 1; prefix >= 0; prefix-- {
				groups = append(groups, partition(ev, q.GroupBy.FieldNames[:prefix], rows, prefix)...)
			}
		}
	} else {
		// Aggregations without GROUP BY treat the whole set as one group.
		groups = []groupData{{rows: rows, keyCount: 0}}
	}

	aliases := sortedAliases(q.Aggregations)
	aggTitles := append(append([]string{}, titles...), aliases...)
	aliasIndex := map[string]int{}
	for i, alias := range aliases {
		aliasIndex[alias] = len(titles) + i
	}

	registry := ev.registry
	representatives := make([]object.Row, 0, len(groups))
	for _, group := range groups {
		var rep object.Row
		if len(group.rows) > 0 {
			rep = group.rows[0].Clone()
		}
		for len(rep.Values) < len(aggTitles) {
			rep.Values = append(rep.Values, value.Null())
		}

		for _, alias := range aliases {
			call := q.Aggregations[alias]
			agg, ok := registry.Aggregation(call.FunctionName)
			if !ok {
				return nil, nil, diagnostic.Errorf("Unknown aggregation function `%s`", call.FunctionName)
			}
			column, diag := ev.columnValues(call.Argument, group.rows)
			if diag != nil {
				return nil, nil, diag
			}
			rep.Values[aliasIndex[alias]] = agg(column)
		}

		// Rollup representatives null out the insignificant trailing keys.
		if q.GroupBy != nil {
			for k := group.keyCount; k < len(q.GroupBy.FieldNames); k++ {
				if idx, ok := ev.columnIndex(q.GroupBy.FieldNames[k]); ok {
					rep.Values[idx] = value.Null()
				}
			}
		}
		representatives = append(representatives, rep)
	}

	return representatives, aggTitles, nil
}

// partition splits rows by the tuple of the first keyCount group fields,
// preserving first-seen order.
func partition(ev *evaluator, fields []string, rows []object.Row, keyCount int) []groupData {
	if len(fields) == 0 {
		return []groupData{{rows: rows, keyCount: keyCount}}
	}
	order := []string{}
	byKey := map[string]*groupData{}
	for _, row := range rows {
		var sb strings.Builder
		for _, field := range fields {
			if idx, ok := ev.columnIndex(field); ok && idx < len(row.Values) {
				sb.WriteString(row.Values[idx].Literal())
			}
			sb.WriteByte(0)
		}
		key := sb.String()
		group, ok := byKey[key]
		if !ok {
			group = &groupData{keyCount: keyCount}
			byKey[key] = group
			order = append(order, key)
		}
		group.rows = append(group.rows, row)
	}
	groups := make([]groupData, 0, len(order))
	for _, key := range order {
		groups = append(groups, *byKey[key])
	}
	return groups
}

// sortRows stable-sorts rows by the order keys. NULLs sort last ascending
// and first descending.
func sortRows(ev *evaluator, orderBy *ast.OrderByStatement, rows []object.Row) *diagnostic.Diagnostic {
	keys := make([][]value.Value, len(rows))
	for i, row := range rows {
		keys[i] = make([]value.Value, len(orderBy.Arguments))
		for j, arg := range orderBy.Arguments {
			v, diag := ev.eval(arg, row)
			if diag != nil {
				return diag
			}
			keys[i][j] = v
		}
	}
	indices := make([]int, len(rows))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(x, y int) bool {
		a, b := indices[x], indices[y]
		for j := range orderBy.Arguments {
			cmp := compareForSort(keys[a][j], keys[b][j], orderBy.Ascending[j])
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
	sorted := make([]object.Row, len(rows))
	for i, idx := range indices {
		sorted[i] = rows[idx]
	}
	copy(rows, sorted)
	return nil
}

func compareForSort(a, b value.Value, ascending bool) int {
	if a.IsNull() || b.IsNull() {
		switch {
		case a.IsNull() && b.IsNull():
			return 0
		case a.IsNull():
			// NULLs last in ASC, first in DESC.
			if ascending {
				return 1
			}
			return -1
		default:
			if ascending {
				return -1
			}
			return 1
		}
	}
	cmp := a.Compare(b)
	if !ascending {
		cmp = -cmp
	}
	return cmp
}

func distinctRows(rows []object.Row) []object.Row {
	seen := map[string]bool{}
	result := rows[:0]
	for _, row := range rows {
		var sb strings.Builder
		for _, v := range row.Values {
			sb.WriteString(v.Type.String())
			sb.WriteByte(0)
			sb.WriteString(v.Literal())
			sb.WriteByte(0)
		}
		key := sb.String()
		if !seen[key] {
			seen[key] = true
			result = append(result, row)
		}
	}
	return result
}

func isTrue(v value.Value) bool {
	return v.Type.Kind == types.KindBoolean && v.Bool
}
