package function

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitql-go/gitql/token"
	"github.com/gitql-go/gitql/types"
	"github.com/gitql-go/gitql/value"
)

func TestCheckCall(t *testing.T) {
	registry := Standard()
	loc := token.Location{}

	testCases := []struct {
		name     string
		fn       string
		args     []types.DataType
		expected types.DataType
		wantErr  bool
	}{
		{"exact match", "lower", []types.DataType{types.Text}, types.Text, false},
		{"wrong type", "lower", []types.DataType{types.Integer}, types.DataType{}, true},
		{"missing argument", "lower", nil, types.DataType{}, true},
		{"extra argument", "lower", []types.DataType{types.Text, types.Text}, types.DataType{}, true},
		{"optional omitted", "substring", []types.DataType{types.Text, types.Integer}, types.Text, false},
		{"optional provided", "substring", []types.DataType{types.Text, types.Integer, types.Integer}, types.Text, false},
		{"varargs absorbs tail", "concat", []types.DataType{types.Text, types.Integer, types.Boolean}, types.Text, false},
		{"varargs empty", "concat", nil, types.Text, false},
		{"dynamic return", "abs", []types.DataType{types.Integer}, types.Integer, false},
		{"variant accepts date", "day", []types.DataType{types.Date}, types.Integer, false},
		{"variant accepts datetime", "day", []types.DataType{types.DateTime}, types.Integer, false},
		{"variant rejects text", "day", []types.DataType{types.Text}, types.DataType{}, true},
		{"unknown function", "no_such_fn", nil, types.DataType{}, true},
		{"range constructor", "int4range", []types.DataType{types.Integer, types.Integer}, types.Range(types.Integer), false},
		{"range any accepts concrete inner", "isempty", []types.DataType{types.Range(types.Integer)}, types.Boolean, false},
		{"range any accepts date range", "isempty", []types.DataType{types.Range(types.Date)}, types.Boolean, false},
		{"range any rejects scalar", "isempty", []types.DataType{types.Integer}, types.DataType{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, diag := registry.CheckCall(tc.fn, tc.args, loc)
			if tc.wantErr {
				require.NotNil(t, diag)
				return
			}
			require.Nil(t, diag)
			assert.True(t, types.Equals(tc.expected, result),
				"expected %s, got %s", tc.expected.String(), result.String())
		})
	}
}

func TestScalarFunctions(t *testing.T) {
	registry := Standard()
	call := func(name string, args ...value.Value) value.Value {
		fn, ok := registry.Function(name)
		require.True(t, ok, "missing function %s", name)
		return fn(args)
	}

	assert.Equal(t, "abc", call("lower", value.Text("ABC")).AsText())
	assert.Equal(t, "ABC", call("upper", value.Text("abc")).AsText())
	assert.Equal(t, int64(5), call("length", value.Text("hello")).AsInt())
	assert.Equal(t, "cba", call("reverse", value.Text("abc")).AsText())
	assert.Equal(t, "ababab", call("replicate", value.Text("ab"), value.Integer(3)).AsText())
	assert.Equal(t, "he", call("left", value.Text("hello"), value.Integer(2)).AsText())
	assert.Equal(t, "lo", call("right", value.Text("hello"), value.Integer(2)).AsText())
	assert.Equal(t, "ell", call("substring", value.Text("hello"), value.Integer(2), value.Integer(3)).AsText())
	assert.Equal(t, "a1true", call("concat", value.Text("a"), value.Integer(1), value.Boolean(true)).AsText())
	assert.True(t, call("starts_with", value.Text("hello"), value.Text("he")).AsBool())
	assert.True(t, call("ends_with", value.Text("hello"), value.Text("lo")).AsBool())
	assert.True(t, call("contains", value.Text("hello"), value.Text("ell")).AsBool())

	assert.Equal(t, int64(3), call("abs", value.Integer(-3)).AsInt())
	assert.Equal(t, 2.5, call("abs", value.Float(-2.5)).AsFloat())
	assert.Equal(t, int64(2), call("ceil", value.Float(1.2)).AsInt())
	assert.Equal(t, int64(1), call("floor", value.Float(1.8)).AsInt())
	assert.Equal(t, int64(-1), call("sign", value.Integer(-5)).AsInt())
	assert.Equal(t, 3.0, call("sqrt", value.Integer(9)).AsFloat())
	assert.Equal(t, 8.0, call("pow", value.Integer(2), value.Integer(3)).AsFloat())
	assert.Equal(t, int64(1), call("mod", value.Integer(7), value.Integer(3)).AsInt())
	assert.True(t, call("mod", value.Integer(7), value.Integer(0)).IsNull())

	assert.Equal(t, int64(1970), call("year", value.Date(0)).AsInt())
	assert.Equal(t, int64(1), call("month", value.Date(0)).AsInt())
	assert.Equal(t, int64(1), call("day", value.Date(0)).AsInt())
	assert.Equal(t, int64(2), call("to_days", value.Date(200000)).AsInt())

	assert.Equal(t, "Integer", call("typeof", value.Integer(1)).AsText())
	assert.Equal(t, int64(9), call("greatest", value.Integer(3), value.Integer(9), value.Integer(4)).AsInt())
	assert.Equal(t, int64(3), call("least", value.Integer(3), value.Integer(9), value.Integer(4)).AsInt())
	assert.Equal(t, int64(7), call("coalesce", value.Null(), value.Integer(7)).AsInt())
	assert.Equal(t, "yes", call("if", value.Boolean(true), value.Text("yes"), value.Text("no")).AsText())
	assert.True(t, call("isnull", value.Null()).AsBool())
	assert.True(t, call("nullif", value.Integer(1), value.Integer(1)).IsNull())
	assert.NotEmpty(t, call("uuid").AsText())

	r := call("int4range", value.Integer(1), value.Integer(5))
	assert.Equal(t, types.KindRange, r.Type.Kind)
	empty := call("int4range", value.Integer(2), value.Integer(2))

	// isempty goes through CheckCall so the test exercises the same path a
	// parsed query takes.
	returnType, diag := registry.CheckCall("isempty", []types.DataType{r.Type}, token.Location{})
	require.Nil(t, diag)
	assert.Equal(t, types.KindBoolean, returnType.Kind)
	assert.False(t, call("isempty", r).AsBool())
	assert.True(t, call("isempty", empty).AsBool())
}

func TestAggregations(t *testing.T) {
	registry := Standard()
	agg := func(name string, values ...value.Value) value.Value {
		fn, ok := registry.Aggregation(name)
		require.True(t, ok, "missing aggregation %s", name)
		return fn(values)
	}

	assert.Equal(t, int64(3), agg("count", value.Integer(1), value.Integer(2), value.Integer(3)).AsInt())
	assert.Equal(t, int64(0), agg("count").AsInt())

	assert.Equal(t, int64(6), agg("sum", value.Integer(1), value.Integer(2), value.Integer(3)).AsInt())
	assert.Equal(t, int64(0), agg("sum").AsInt())
	assert.Equal(t, 4.5, agg("sum", value.Integer(1), value.Float(3.5)).AsFloat())

	assert.Equal(t, int64(9), agg("max", value.Integer(3), value.Integer(9), value.Integer(4)).AsInt())
	assert.True(t, agg("max").IsNull())

	// min seeds from the first value, so all-negative inputs work.
	assert.Equal(t, int64(-9), agg("min", value.Integer(-3), value.Integer(-9), value.Integer(-4)).AsInt())
	assert.True(t, agg("min").IsNull())

	// avg divides as Float rather than truncating.
	assert.Equal(t, 1.5, agg("avg", value.Integer(1), value.Integer(2)).AsFloat())
	assert.True(t, agg("avg").IsNull())
}
