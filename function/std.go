package function

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gitql-go/gitql/types"
	"github.com/gitql-go/gitql/value"
)

// registerStdFunctions wires the standard scalar function families: text,
// numeric, date and time, general, and range constructors.
func registerStdFunctions(b *Builder) {
	registerTextFunctions(b)
	registerNumericFunctions(b)
	registerDateFunctions(b)
	registerGeneralFunctions(b)
	registerRangeFunctions(b)
}

func registerTextFunctions(b *Builder) {
	b.RegisterFunction("lower",
		Signature{Parameters: []types.DataType{types.Text}, ReturnType: types.Text},
		func(args []value.Value) value.Value {
			return value.Text(strings.ToLower(args[0].AsText()))
		})

	b.RegisterFunction("upper",
		Signature{Parameters: []types.DataType{types.Text}, ReturnType: types.Text},
		func(args []value.Value) value.Value {
			return value.Text(strings.ToUpper(args[0].AsText()))
		})

	b.RegisterFunction("trim",
		Signature{Parameters: []types.DataType{types.Text}, ReturnType: types.Text},
		func(args []value.Value) value.Value {
			return value.Text(strings.TrimSpace(args[0].AsText()))
		})

	b.RegisterFunction("length",
		Signature{Parameters: []types.DataType{types.Text}, ReturnType: types.Integer},
		func(args []value.Value) value.Value {
			return value.Integer(int64(len(args[0].AsText())))
		})

	b.RegisterFunction("reverse",
		Signature{Parameters: []types.DataType{types.Text}, ReturnType: types.Text},
		func(args []value.Value) value.Value {
			runes := []rune(args[0].AsText())
			for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
				runes[i], runes[j] = runes[j], runes[i]
			}
			return value.Text(string(runes))
		})

	b.RegisterFunction("replicate",
		Signature{Parameters: []types.DataType{types.Text, types.Integer}, ReturnType: types.Text},
		func(args []value.Value) value.Value {
			n := int(args[1].AsInt())
			if n < 0 {
				n = 0
			}
			return value.Text(strings.Repeat(args[0].AsText(), n))
		})

	b.RegisterFunction("ascii",
		Signature{Parameters: []types.DataType{types.Text}, ReturnType: types.Integer},
		func(args []value.Value) value.Value {
			text := args[0].AsText()
			if text == "" {
				return value.Integer(0)
			}
			return value.Integer(int64(text[0]))
		})

	b.RegisterFunction("left",
		Signature{Parameters: []types.DataType{types.Text, types.Integer}, ReturnType: types.Text},
		func(args []value.Value) value.Value {
			text := args[0].AsText()
			n := int(args[1].AsInt())
			if n < 0 {
				n = 0
			}
			if n > len(text) {
				n = len(text)
			}
			return value.Text(text[:n])
		})

	b.RegisterFunction("right",
		Signature{Parameters: []types.DataType{types.Text, types.Integer}, ReturnType: types.Text},
		func(args []value.Value) value.Value {
			text := args[0].AsText()
			n := int(args[1].AsInt())
			if n < 0 {
				n = 0
			}
			if n > len(text) {
				n = len(text)
			}
			return value.Text(text[len(text)-n:])
		})

	b.RegisterFunction("concat",
		Signature{Parameters: []types.DataType{types.Varargs(types.Any)}, ReturnType: types.Text},
		func(args []value.Value) value.Value {
			var sb strings.Builder
			for _, arg := range args {
				if !arg.IsNull() {
					sb.WriteString(arg.Literal())
				}
			}
			return value.Text(sb.String())
		})

	b.RegisterFunction("substring",
		Signature{
			Parameters: []types.DataType{types.Text, types.Integer, types.Optional(types.Integer)},
			ReturnType: types.Text,
		},
		func(args []value.Value) value.Value {
			text := args[0].AsText()
			// One-based start position, SQL style.
			start := int(args[1].AsInt()) - 1
			if start < 0 {
				start = 0
			}
			if start >= len(text) {
				return value.Text("")
			}
			end := len(text)
			if len(args) > 2 {
				if n := int(args[2].AsInt()); start+n < end {
					end = start + n
				}
			}
			return value.Text(text[start:end])
		})

	b.RegisterFunction("starts_with",
		Signature{Parameters: []types.DataType{types.Text, types.Text}, ReturnType: types.Boolean},
		func(args []value.Value) value.Value {
			return value.Boolean(strings.HasPrefix(args[0].AsText(), args[1].AsText()))
		})

	b.RegisterFunction("ends_with",
		Signature{Parameters: []types.DataType{types.Text, types.Text}, ReturnType: types.Boolean},
		func(args []value.Value) value.Value {
			return value.Boolean(strings.HasSuffix(args[0].AsText(), args[1].AsText()))
		})

	b.RegisterFunction("contains",
		Signature{Parameters: []types.DataType{types.Text, types.Text}, ReturnType: types.Boolean},
		func(args []value.Value) value.Value {
			return value.Boolean(strings.Contains(args[0].AsText(), args[1].AsText()))
		})
}

func registerNumericFunctions(b *Builder) {
	b.RegisterFunction("abs",
		Signature{Parameters: []types.DataType{types.Number}, ReturnType: types.Dynamic(0)},
		func(args []value.Value) value.Value {
			if args[0].Type.Kind == types.KindFloat {
				return value.Float(math.Abs(args[0].Float))
			}
			n := args[0].AsInt()
			if n < 0 {
				n = -n
			}
			return value.Integer(n)
		})

	b.RegisterFunction("ceil",
		Signature{Parameters: []types.DataType{types.Number}, ReturnType: types.Integer},
		func(args []value.Value) value.Value {
			return value.Integer(int64(math.Ceil(args[0].AsFloat())))
		})

	b.RegisterFunction("floor",
		Signature{Parameters: []types.DataType{types.Number}, ReturnType: types.Integer},
		func(args []value.Value) value.Value {
			return value.Integer(int64(math.Floor(args[0].AsFloat())))
		})

	b.RegisterFunction("round",
		Signature{
			Parameters: []types.DataType{types.Number, types.Optional(types.Integer)},
			ReturnType: types.Float,
		},
		func(args []value.Value) value.Value {
			digits := 0
			if len(args) > 1 {
				digits = int(args[1].AsInt())
			}
			scale := math.Pow(10, float64(digits))
			return value.Float(math.Round(args[0].AsFloat()*scale) / scale)
		})

	b.RegisterFunction("sign",
		Signature{Parameters: []types.DataType{types.Number}, ReturnType: types.Integer},
		func(args []value.Value) value.Value {
			f := args[0].AsFloat()
			switch {
			case f > 0:
				return value.Integer(1)
			case f < 0:
				return value.Integer(-1)
			}
			return value.Integer(0)
		})

	b.RegisterFunction("sqrt",
		Signature{Parameters: []types.DataType{types.Number}, ReturnType: types.Float},
		func(args []value.Value) value.Value {
			return value.Float(math.Sqrt(args[0].AsFloat()))
		})

	b.RegisterFunction("pow",
		Signature{Parameters: []types.DataType{types.Number, types.Number}, ReturnType: types.Float},
		func(args []value.Value) value.Value {
			return value.Float(math.Pow(args[0].AsFloat(), args[1].AsFloat()))
		})

	b.RegisterFunction("mod",
		Signature{Parameters: []types.DataType{types.Integer, types.Integer}, ReturnType: types.Integer},
		func(args []value.Value) value.Value {
			if args[1].AsInt() == 0 {
				return value.Null()
			}
			return value.Integer(args[0].AsInt() % args[1].AsInt())
		})
}

func registerDateFunctions(b *Builder) {
	dateOrDateTime := types.Variant(types.Date, types.DateTime)

	b.RegisterFunction("current_date",
		Signature{ReturnType: types.Date},
		func([]value.Value) value.Value {
			now := time.Now().UTC()
			midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			return value.Date(midnight.Unix())
		})

	b.RegisterFunction("current_time",
		Signature{ReturnType: types.Time},
		func([]value.Value) value.Value {
			return value.Time(time.Now().UTC().Format("15:04:05"))
		})

	b.RegisterFunction("current_timestamp",
		Signature{ReturnType: types.DateTime},
		func([]value.Value) value.Value {
			return value.DateTime(time.Now().UTC().Unix())
		})

	b.RegisterFunction("day",
		Signature{Parameters: []types.DataType{dateOrDateTime}, ReturnType: types.Integer},
		func(args []value.Value) value.Value {
			return value.Integer(int64(time.Unix(args[0].Int, 0).UTC().Day()))
		})

	b.RegisterFunction("month",
		Signature{Parameters: []types.DataType{dateOrDateTime}, ReturnType: types.Integer},
		func(args []value.Value) value.Value {
			return value.Integer(int64(time.Unix(args[0].Int, 0).UTC().Month()))
		})

	b.RegisterFunction("year",
		Signature{Parameters: []types.DataType{dateOrDateTime}, ReturnType: types.Integer},
		func(args []value.Value) value.Value {
			return value.Integer(int64(time.Unix(args[0].Int, 0).UTC().Year()))
		})

	b.RegisterFunction("hour",
		Signature{Parameters: []types.DataType{types.DateTime}, ReturnType: types.Integer},
		func(args []value.Value) value.Value {
			return value.Integer(int64(time.Unix(args[0].Int, 0).UTC().Hour()))
		})

	b.RegisterFunction("minute",
		Signature{Parameters: []types.DataType{types.DateTime}, ReturnType: types.Integer},
		func(args []value.Value) value.Value {
			return value.Integer(int64(time.Unix(args[0].Int, 0).UTC().Minute()))
		})

	b.RegisterFunction("second",
		Signature{Parameters: []types.DataType{types.DateTime}, ReturnType: types.Integer},
		func(args []value.Value) value.Value {
			return value.Integer(int64(time.Unix(args[0].Int, 0).UTC().Second()))
		})

	b.RegisterFunction("weekday",
		Signature{Parameters: []types.DataType{dateOrDateTime}, ReturnType: types.Integer},
		func(args []value.Value) value.Value {
			return value.Integer(int64(time.Unix(args[0].Int, 0).UTC().Weekday()))
		})

	b.RegisterFunction("to_days",
		Signature{Parameters: []types.DataType{dateOrDateTime}, ReturnType: types.Integer},
		func(args []value.Value) value.Value {
			return value.Integer(args[0].Int / (24 * 60 * 60))
		})
}

func registerGeneralFunctions(b *Builder) {
	b.RegisterFunction("typeof",
		Signature{Parameters: []types.DataType{types.Any}, ReturnType: types.Text},
		func(args []value.Value) value.Value {
			return value.Text(args[0].Type.String())
		})

	b.RegisterFunction("greatest",
		Signature{
			Parameters: []types.DataType{types.Any, types.Varargs(types.Any)},
			ReturnType: types.Dynamic(0),
		},
		func(args []value.Value) value.Value {
			best := args[0]
			for _, arg := range args[1:] {
				if best.IsNull() || (!arg.IsNull() && arg.Compare(best) > 0) {
					best = arg
				}
			}
			return best
		})

	b.RegisterFunction("least",
		Signature{
			Parameters: []types.DataType{types.Any, types.Varargs(types.Any)},
			ReturnType: types.Dynamic(0),
		},
		func(args []value.Value) value.Value {
			best := args[0]
			for _, arg := range args[1:] {
				if best.IsNull() || (!arg.IsNull() && arg.Compare(best) < 0) {
					best = arg
				}
			}
			return best
		})

	b.RegisterFunction("coalesce",
		Signature{
			Parameters: []types.DataType{types.Varargs(types.Any)},
			ReturnType: types.Dynamic(0),
		},
		func(args []value.Value) value.Value {
			for _, arg := range args {
				if !arg.IsNull() {
					return arg
				}
			}
			return value.Null()
		})

	b.RegisterFunction("if",
		Signature{
			Parameters: []types.DataType{types.Boolean, types.Any, types.Any},
			ReturnType: types.Dynamic(1),
		},
		func(args []value.Value) value.Value {
			if !args[0].IsNull() && args[0].AsBool() {
				return args[1]
			}
			return args[2]
		})

	b.RegisterFunction("isnull",
		Signature{Parameters: []types.DataType{types.Any}, ReturnType: types.Boolean},
		func(args []value.Value) value.Value {
			return value.Boolean(args[0].IsNull())
		})

	b.RegisterFunction("nullif",
		Signature{
			Parameters: []types.DataType{types.Any, types.Any},
			ReturnType: types.Dynamic(0),
		},
		func(args []value.Value) value.Value {
			if args[0].Equals(args[1]) {
				return value.Null()
			}
			return args[0]
		})

	b.RegisterFunction("uuid",
		Signature{ReturnType: types.Text},
		func([]value.Value) value.Value {
			return value.Text(uuid.NewString())
		})
}

func registerRangeFunctions(b *Builder) {
	b.RegisterFunction("int4range",
		Signature{
			Parameters: []types.DataType{types.Integer, types.Integer},
			ReturnType: types.Range(types.Integer),
		},
		func(args []value.Value) value.Value {
			return value.Range(types.Integer, args[0], args[1])
		})

	b.RegisterFunction("daterange",
		Signature{
			Parameters: []types.DataType{types.Date, types.Date},
			ReturnType: types.Range(types.Date),
		},
		func(args []value.Value) value.Value {
			return value.Range(types.Date, args[0], args[1])
		})

	b.RegisterFunction("tsrange",
		Signature{
			Parameters: []types.DataType{types.DateTime, types.DateTime},
			ReturnType: types.Range(types.DateTime),
		},
		func(args []value.Value) value.Value {
			return value.Range(types.DateTime, args[0], args[1])
		})

	b.RegisterFunction("isempty",
		Signature{
			Parameters: []types.DataType{types.Range(types.Any)},
			ReturnType: types.Boolean,
		},
		func(args []value.Value) value.Value {
			return value.Boolean(args[0].Low.Equals(*args[0].High))
		})
}
