// Package value defines the tagged runtime datum produced by providers and
// the expression evaluator.
package value

import (
	"strconv"
	"strings"
	"time"

	"github.com/gitql-go/gitql/types"
)

// Value is a tagged union keyed by its data type. The runtime payload in
// use is determined by Type.Kind.
type Value struct {
	Type types.DataType

	Int      int64   // Integer, Date, DateTime (seconds since epoch)
	Float    float64 // Float
	Text     string  // Text, Time ("HH:MM:SS")
	Bool     bool    // Boolean
	Low      *Value  // Range
	High     *Value  // Range
	Elements []Value // Array
}

// Null returns the NULL value.
func Null() Value {
	return Value{Type: types.Null}
}

// Integer returns an Integer value.
func Integer(v int64) Value {
	return Value{Type: types.Integer, Int: v}
}

// Float returns a Float value.
func Float(v float64) Value {
	return Value{Type: types.Float, Float: v}
}

// Text returns a Text value.
func Text(v string) Value {
	return Value{Type: types.Text, Text: v}
}

// Boolean returns a Boolean value.
func Boolean(v bool) Value {
	return Value{Type: types.Boolean, Bool: v}
}

// Date returns a Date value from seconds since epoch.
func Date(seconds int64) Value {
	return Value{Type: types.Date, Int: seconds}
}

// DateTime returns a DateTime value from seconds since epoch.
func DateTime(seconds int64) Value {
	return Value{Type: types.DateTime, Int: seconds}
}

// Time returns a Time value from an "HH:MM:SS" string.
func Time(v string) Value {
	return Value{Type: types.Time, Text: v}
}

// Range returns a range value over inner with the given bounds.
func Range(inner types.DataType, low, high Value) Value {
	return Value{Type: types.Range(inner), Low: &low, High: &high}
}

// Array returns an array value with the given element type.
func Array(element types.DataType, elements []Value) Value {
	return Value{Type: types.Array(element), Elements: elements}
}

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool {
	return v.Type.Kind == types.KindNull
}

// IsText reports whether the value is Text.
func (v Value) IsText() bool {
	return v.Type.Kind == types.KindText
}

// IsNumber reports whether the value is Integer or Float.
func (v Value) IsNumber() bool {
	return v.Type.Kind == types.KindInteger || v.Type.Kind == types.KindFloat
}

// AsInt returns the integer payload, truncating floats.
func (v Value) AsInt() int64 {
	if v.Type.Kind == types.KindFloat {
		return int64(v.Float)
	}
	return v.Int
}

// AsFloat returns the numeric payload widened to float.
func (v Value) AsFloat() float64 {
	if v.Type.Kind == types.KindFloat {
		return v.Float
	}
	return float64(v.Int)
}

// AsText returns the text payload.
func (v Value) AsText() string { return v.Text }

// AsBool returns the boolean payload.
func (v Value) AsBool() bool { return v.Bool }

// Equals reports equality by type then payload. NULL equals NULL here;
// three-valued comparison semantics live in the evaluator.
func (v Value) Equals(other Value) bool {
	if v.IsNull() || other.IsNull() {
		return v.IsNull() && other.IsNull()
	}
	if v.IsNumber() && other.IsNumber() {
		if v.Type.Kind == types.KindFloat || other.Type.Kind == types.KindFloat {
			return v.AsFloat() == other.AsFloat()
		}
		return v.Int == other.Int
	}
	if v.Type.Kind != other.Type.Kind {
		return false
	}
	switch v.Type.Kind {
	case types.KindBoolean:
		return v.Bool == other.Bool
	case types.KindText, types.KindTime:
		return v.Text == other.Text
	case types.KindDate, types.KindDateTime:
		return v.Int == other.Int
	case types.KindRange:
		return v.Low.Equals(*other.Low) && v.High.Equals(*other.High)
	case types.KindArray:
		if len(v.Elements) != len(other.Elements) {
			return false
		}
		for i := range v.Elements {
			if !v.Elements[i].Equals(other.Elements[i]) {
				return false
			}
		}
		return true
	}
	return v.Literal() == other.Literal()
}

// Compare orders two non-NULL values of compatible types: negative when v
// sorts before other, zero on ties. Integer and Float compare numerically,
// Text lexicographically, Boolean false before true, Date/Time/DateTime by
// moment.
func (v Value) Compare(other Value) int {
	if v.IsNumber() && other.IsNumber() {
		if v.Type.Kind == types.KindFloat || other.Type.Kind == types.KindFloat {
			a, b := v.AsFloat(), other.AsFloat()
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			}
			return 0
		}
		switch {
		case v.Int < other.Int:
			return -1
		case v.Int > other.Int:
			return 1
		}
		return 0
	}
	switch v.Type.Kind {
	case types.KindBoolean:
		switch {
		case !v.Bool && other.Bool:
			return -1
		case v.Bool && !other.Bool:
			return 1
		}
		return 0
	case types.KindDate, types.KindDateTime:
		switch {
		case v.Int < other.Int:
			return -1
		case v.Int > other.Int:
			return 1
		}
		return 0
	}
	return strings.Compare(v.Literal(), other.Literal())
}

// Literal renders the value the way result printers show it.
func (v Value) Literal() string {
	switch v.Type.Kind {
	case types.KindNull:
		return "Null"
	case types.KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case types.KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case types.KindText, types.KindTime:
		return v.Text
	case types.KindBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case types.KindDate:
		return time.Unix(v.Int, 0).UTC().Format("2006-01-02")
	case types.KindDateTime:
		return time.Unix(v.Int, 0).UTC().Format("2006-01-02 15:04:05")
	case types.KindRange:
		return v.Low.Literal() + ".." + v.High.Literal()
	case types.KindArray:
		parts := make([]string, len(v.Elements))
		for i, e := range v.Elements {
			parts[i] = e.Literal()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return ""
}
