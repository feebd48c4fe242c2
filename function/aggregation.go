package function

import (
	"github.com/gitql-go/gitql/types"
	"github.com/gitql-go/gitql/value"
)

// registerStdAggregations wires the standard aggregate functions.
//
// Unlike some historical implementations, min seeds its accumulator with
// the first seen value rather than zero, and avg divides as Float rather
// than truncating; both return NULL over an empty group.
func registerStdAggregations(b *Builder) {
	b.RegisterAggregation("max",
		AggregationPrototype{Parameter: types.Any, Result: types.Any},
		aggregationMax)
	b.RegisterAggregation("min",
		AggregationPrototype{Parameter: types.Any, Result: types.Any},
		aggregationMin)
	b.RegisterAggregation("sum",
		AggregationPrototype{Parameter: types.Number, Result: types.Number},
		aggregationSum)
	b.RegisterAggregation("avg",
		AggregationPrototype{Parameter: types.Number, Result: types.Float},
		aggregationAverage)
	b.RegisterAggregation("count",
		AggregationPrototype{Parameter: types.Any, Result: types.Integer},
		aggregationCount)
}

func aggregationMax(values []value.Value) value.Value {
	result := value.Null()
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		if result.IsNull() || v.Compare(result) > 0 {
			result = v
		}
	}
	return result
}

func aggregationMin(values []value.Value) value.Value {
	result := value.Null()
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		if result.IsNull() || v.Compare(result) < 0 {
			result = v
		}
	}
	return result
}

func aggregationSum(values []value.Value) value.Value {
	var intSum int64
	var floatSum float64
	sawFloat := false
	for _, v := range values {
		switch v.Type.Kind {
		case types.KindInteger:
			intSum += v.Int
		case types.KindFloat:
			sawFloat = true
			floatSum += v.Float
		}
	}
	if sawFloat {
		return value.Float(floatSum + float64(intSum))
	}
	return value.Integer(intSum)
}

func aggregationAverage(values []value.Value) value.Value {
	var sum float64
	count := 0
	for _, v := range values {
		if v.IsNumber() {
			sum += v.AsFloat()
			count++
		}
	}
	if count == 0 {
		return value.Null()
	}
	return value.Float(sum / float64(count))
}

func aggregationCount(values []value.Value) value.Value {
	return value.Integer(int64(len(values)))
}
