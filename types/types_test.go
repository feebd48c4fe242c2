package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEquals(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     DataType
		expected bool
	}{
		{"scalars equal", Integer, Integer, true},
		{"scalars differ", Integer, Text, false},
		{"range inner equal", Range(Integer), Range(Integer), true},
		{"range inner differ", Range(Integer), Range(Date), false},
		{"array inner equal", Array(Text), Array(Text), true},
		{"optional inner equal", Optional(Integer), Optional(Integer), true},
		{"composite equal", Composite([]Field{{"a", Integer}}), Composite([]Field{{"a", Integer}}), true},
		{"composite differ", Composite([]Field{{"a", Integer}}), Composite([]Field{{"b", Integer}}), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Equals(tc.a, tc.b))
		})
	}
}

func TestAssignableTo(t *testing.T) {
	testCases := []struct {
		name     string
		from, to DataType
		expected bool
	}{
		{"any accepts text", Text, Any, true},
		{"any accepts range", Range(Integer), Any, true},
		{"null to text", Null, Text, true},
		{"integer to number", Integer, Number, true},
		{"float to number", Float, Number, true},
		{"integer widens to float", Integer, Float, true},
		{"float does not narrow", Float, Integer, false},
		{"text is never numeric", Text, Number, false},
		{"variant accepts member", Date, Variant(Date, DateTime), true},
		{"variant rejects non member", Text, Variant(Date, DateTime), false},
		{"range inner widens to any", Range(Integer), Range(Any), true},
		{"range inner must match", Range(Integer), Range(Date), false},
		{"null to range slot", Null, Range(Any), true},
		{"array inner widens to any", Array(Text), Array(Any), true},
		{"array inner must match", Array(Text), Array(Integer), false},
		{"optional unwraps", Integer, Optional(Integer), true},
		{"varargs unwraps", Text, Varargs(Text), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, AssignableTo(tc.from, tc.to))
		})
	}
}

func TestCoerce(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     DataType
		expected DataType
		ok       bool
	}{
		{"same type", Text, Text, Text, true},
		{"null takes other side", Null, Date, Date, true},
		{"integer and float widen", Integer, Float, Float, true},
		{"integer and number", Integer, Number, Number, true},
		{"text and integer fail", Text, Integer, DataType{}, false},
		{"any takes other side", Any, Boolean, Boolean, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, ok := Coerce(tc.a, tc.b)
			assert.Equal(t, tc.ok, ok)
			if ok {
				assert.True(t, Equals(tc.expected, result))
			}
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "Range(Integer)", Range(Integer).String())
	assert.Equal(t, "Array(Text)", Array(Text).String())
	assert.Equal(t, "Optional(Date)", Optional(Date).String())
	assert.Equal(t, "Variant(Date | DateTime)", Variant(Date, DateTime).String())
}
