// Package types defines the data types the engine understands and the
// coercion and equivalence rules among them.
package types

import "strings"

// Kind enumerates the data type variants.
type Kind int

const (
	KindAny Kind = iota
	KindNull
	KindUndefined
	KindBoolean
	KindInteger
	KindFloat
	KindNumber // numeric supertype of Integer and Float
	KindText
	KindDate
	KindTime
	KindDateTime
	KindInterval
	KindRange     // carries one inner type
	KindArray     // carries one element type
	KindComposite // carries an ordered list of named typed fields
	KindVariant   // carries a list of alternatives
	KindOptional  // carries one inner type; the argument may be omitted
	KindVarargs   // carries one inner type; absorbs the argument tail
	KindDynamic   // return type equal to the type of a designated argument
)

// Field is a named member of a composite type.
type Field struct {
	Name string
	Type DataType
}

// DataType is a data type variant. Scalar kinds use only Kind; the
// composite kinds carry their parameters.
type DataType struct {
	Kind         Kind
	Inner        *DataType  // Range, Array, Optional, Varargs
	Fields       []Field    // Composite
	Alternatives []DataType // Variant
	ArgIndex     int        // Dynamic: index of the designated argument
}

// Scalar types.
var (
	Any       = DataType{Kind: KindAny}
	Null      = DataType{Kind: KindNull}
	Undefined = DataType{Kind: KindUndefined}
	Boolean   = DataType{Kind: KindBoolean}
	Integer   = DataType{Kind: KindInteger}
	Float     = DataType{Kind: KindFloat}
	Number    = DataType{Kind: KindNumber}
	Text      = DataType{Kind: KindText}
	Date      = DataType{Kind: KindDate}
	Time      = DataType{Kind: KindTime}
	DateTime  = DataType{Kind: KindDateTime}
	Interval  = DataType{Kind: KindInterval}
)

// Range constructs a range type over inner.
func Range(inner DataType) DataType {
	return DataType{Kind: KindRange, Inner: &inner}
}

// Array constructs an array type with the given element type.
func Array(element DataType) DataType {
	return DataType{Kind: KindArray, Inner: &element}
}

// Optional marks a parameter that may be omitted.
func Optional(inner DataType) DataType {
	return DataType{Kind: KindOptional, Inner: &inner}
}

// Varargs marks a parameter that absorbs the argument tail.
func Varargs(inner DataType) DataType {
	return DataType{Kind: KindVarargs, Inner: &inner}
}

// Composite constructs a composite type from ordered named fields.
func Composite(fields []Field) DataType {
	return DataType{Kind: KindComposite, Fields: fields}
}

// Variant constructs a type accepting any of the alternatives.
func Variant(alternatives ...DataType) DataType {
	return DataType{Kind: KindVariant, Alternatives: alternatives}
}

// Dynamic marks a return type equal to the type of the argument at index.
func Dynamic(argIndex int) DataType {
	return DataType{Kind: KindDynamic, ArgIndex: argIndex}
}

// IsNumber reports whether the type is Integer, Float or Number.
func (t DataType) IsNumber() bool {
	return t.Kind == KindInteger || t.Kind == KindFloat || t.Kind == KindNumber
}

// IsNull reports whether the type is Null.
func (t DataType) IsNull() bool { return t.Kind == KindNull }

// Equals reports structural equality. Range, Array, Optional and Varargs
// compare their inner types; Composite compares field names and types in
// order.
func Equals(a, b DataType) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindRange, KindArray, KindOptional, KindVarargs:
		return Equals(*a.Inner, *b.Inner)
	case KindComposite:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !Equals(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
		return true
	case KindVariant:
		if len(a.Alternatives) != len(b.Alternatives) {
			return false
		}
		for i := range a.Alternatives {
			if !Equals(a.Alternatives[i], b.Alternatives[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// AssignableTo reports whether a value of type from can be used where type
// to is expected. Any accepts everything; Null is assignable to every
// nullable slot; Integer widens to Float and both satisfy Number.
func AssignableTo(from, to DataType) bool {
	switch to.Kind {
	case KindAny:
		return true
	case KindNumber:
		return from.IsNumber() || from.IsNull()
	case KindFloat:
		return from.Kind == KindFloat || from.Kind == KindInteger || from.IsNull()
	case KindOptional:
		return AssignableTo(from, *to.Inner)
	case KindVarargs:
		return AssignableTo(from, *to.Inner)
	case KindVariant:
		for _, alt := range to.Alternatives {
			if AssignableTo(from, alt) {
				return true
			}
		}
		return false
	case KindRange, KindArray:
		if from.Kind == to.Kind && from.Inner != nil && to.Inner != nil {
			return AssignableTo(*from.Inner, *to.Inner)
		}
	}
	if from.Kind == KindNull || from.Kind == KindAny {
		return true
	}
	return Equals(from, to)
}

// Coerce returns the common type of a and b, or false when the types are
// incompatible. Integer widens to Float; Null takes the other side's type.
func Coerce(a, b DataType) (DataType, bool) {
	if Equals(a, b) {
		return a, true
	}
	if a.Kind == KindNull || a.Kind == KindAny {
		return b, true
	}
	if b.Kind == KindNull || b.Kind == KindAny {
		return a, true
	}
	if a.IsNumber() && b.IsNumber() {
		if a.Kind == KindFloat || b.Kind == KindFloat {
			return Float, true
		}
		if a.Kind == KindNumber || b.Kind == KindNumber {
			return Number, true
		}
		return Integer, true
	}
	return DataType{}, false
}

// String renders the type the way DESCRIBE output shows it.
func (t DataType) String() string {
	switch t.Kind {
	case KindAny:
		return "Any"
	case KindNull:
		return "Null"
	case KindUndefined:
		return "Undefined"
	case KindBoolean:
		return "Boolean"
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindNumber:
		return "Number"
	case KindText:
		return "Text"
	case KindDate:
		return "Date"
	case KindTime:
		return "Time"
	case KindDateTime:
		return "DateTime"
	case KindInterval:
		return "Interval"
	case KindRange:
		return "Range(" + t.Inner.String() + ")"
	case KindArray:
		return "Array(" + t.Inner.String() + ")"
	case KindOptional:
		return "Optional(" + t.Inner.String() + ")"
	case KindVarargs:
		return "Varargs(" + t.Inner.String() + ")"
	case KindComposite:
		var parts []string
		for _, f := range t.Fields {
			parts = append(parts, f.Name+": "+f.Type.String())
		}
		return "Composite(" + strings.Join(parts, ", ") + ")"
	case KindVariant:
		var parts []string
		for _, alt := range t.Alternatives {
			parts = append(parts, alt.String())
		}
		return "Variant(" + strings.Join(parts, " | ") + ")"
	case KindDynamic:
		return "Dynamic"
	}
	return "Unknown"
}
