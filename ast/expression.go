package ast

import (
	"github.com/gitql-go/gitql/types"
	"github.com/gitql-go/gitql/value"
)

// StringExpr represents a string literal.
type StringExpr struct {
	Value string
}

func (*StringExpr) exprNode()            {}
func (*StringExpr) Type() types.DataType { return types.Text }

// NumberExpr represents an integer or float literal, including INFINITY
// and NAN.
type NumberExpr struct {
	Value value.Value
}

func (*NumberExpr) exprNode()              {}
func (n *NumberExpr) Type() types.DataType { return n.Value.Type }

// BooleanExpr represents TRUE or FALSE.
type BooleanExpr struct {
	IsTrue bool
}

func (*BooleanExpr) exprNode()            {}
func (*BooleanExpr) Type() types.DataType { return types.Boolean }

// NullExpr represents the NULL literal.
type NullExpr struct{}

func (*NullExpr) exprNode()            {}
func (*NullExpr) Type() types.DataType { return types.Null }

// SymbolExpr represents a column reference. The parser resolves its type
// through the provider schema, or through the aggregation map for lifted
// aggregate aliases.
type SymbolExpr struct {
	Name      string
	ValueType types.DataType
}

func (*SymbolExpr) exprNode()              {}
func (s *SymbolExpr) Type() types.DataType { return s.ValueType }

// GlobalVarExpr represents a reference to a session global variable.
type GlobalVarExpr struct {
	Name      string
	ValueType types.DataType
}

func (*GlobalVarExpr) exprNode()              {}
func (g *GlobalVarExpr) Type() types.DataType { return g.ValueType }

// PrefixOp is a prefix unary operator.
type PrefixOp int

const (
	PrefixNegate     PrefixOp = iota // -
	PrefixNot                        // ! or NOT
	PrefixBitwiseNot                 // ~
)

// PrefixUnaryExpr represents a prefix unary operation.
type PrefixUnaryExpr struct {
	Op    PrefixOp
	Right Expr
}

func (*PrefixUnaryExpr) exprNode() {}
func (p *PrefixUnaryExpr) Type() types.DataType {
	switch p.Op {
	case PrefixNot:
		return types.Boolean
	case PrefixBitwiseNot:
		return types.Integer
	default:
		return p.Right.Type()
	}
}

// ArithmeticOp is a binary arithmetic operator.
type ArithmeticOp int

const (
	ArithPlus     ArithmeticOp = iota // +
	ArithMinus                        // -
	ArithStar                         // *
	ArithSlash                        // / or DIV
	ArithModulus                      // % or MOD
	ArithExponent                     // ^
)

// ArithmeticExpr represents a binary arithmetic operation. Integer stays
// Integer until any operand is Float.
type ArithmeticExpr struct {
	Op    ArithmeticOp
	Left  Expr
	Right Expr
}

func (*ArithmeticExpr) exprNode() {}
func (a *ArithmeticExpr) Type() types.DataType {
	lt, rt := a.Left.Type(), a.Right.Type()
	if lt.Kind == types.KindFloat || rt.Kind == types.KindFloat {
		return types.Float
	}
	if lt.Kind == types.KindInteger && rt.Kind == types.KindInteger {
		return types.Integer
	}
	return types.Number
}

// ComparisonOp is a binary comparison operator.
type ComparisonOp int

const (
	CompGreater       ComparisonOp = iota // >
	CompGreaterEqual                      // >=
	CompLess                              // <
	CompLessEqual                         // <=
	CompEqual                             // =
	CompNotEqual                          // != or <>
	CompNullSafeEqual                     // <=>
	CompContains                          // @> range containment
)

// ComparisonExpr represents a binary comparison.
type ComparisonExpr struct {
	Op    ComparisonOp
	Left  Expr
	Right Expr
}

func (*ComparisonExpr) exprNode()            {}
func (*ComparisonExpr) Type() types.DataType { return types.Boolean }

// CheckOp is a text matching operator.
type CheckOp int

const (
	CheckContains   CheckOp = iota // substring containment
	CheckStartsWith                // prefix
	CheckEndsWith                  // suffix
	CheckMatches                   // POSIX regular expression (REGEXP)
	CheckLike                      // SQL wildcards % and _
	CheckGlob                      // shell globs *, ? and [abc]
)

// CheckExpr represents a text matching operation.
type CheckExpr struct {
	Op    CheckOp
	Left  Expr
	Right Expr
}

func (*CheckExpr) exprNode()            {}
func (*CheckExpr) Type() types.DataType { return types.Boolean }

// LogicalOp is a logical connective.
type LogicalOp int

const (
	LogicalOr  LogicalOp = iota // OR or ||
	LogicalAnd                  // AND or &&
	LogicalXor                  // XOR
)

// LogicalExpr represents a logical operation with three-valued semantics.
type LogicalExpr struct {
	Op    LogicalOp
	Left  Expr
	Right Expr
}

func (*LogicalExpr) exprNode()            {}
func (*LogicalExpr) Type() types.DataType { return types.Boolean }

// BitwiseOp is a bitwise operator.
type BitwiseOp int

const (
	BitwiseOr         BitwiseOp = iota // |
	BitwiseAnd                         // &
	BitwiseXor                         // #
	BitwiseLeftShift                   // <<
	BitwiseRightShift                  // >>
)

// BitwiseExpr represents a bitwise operation over integers.
type BitwiseExpr struct {
	Op    BitwiseOp
	Left  Expr
	Right Expr
}

func (*BitwiseExpr) exprNode()            {}
func (*BitwiseExpr) Type() types.DataType { return types.Integer }

// CallExpr represents a scalar function call. The parser resolves the
// return type from the function signature, substituting the designated
// argument type for Dynamic returns.
type CallExpr struct {
	FunctionName string
	Arguments    []Expr
	ReturnType   types.DataType
}

func (*CallExpr) exprNode()              {}
func (c *CallExpr) Type() types.DataType { return c.ReturnType }

// BetweenExpr represents an inclusive range check.
type BetweenExpr struct {
	Value      Expr
	RangeStart Expr
	RangeEnd   Expr
}

func (*BetweenExpr) exprNode()            {}
func (*BetweenExpr) Type() types.DataType { return types.Boolean }

// CaseExpr represents a searched CASE expression. All value branches unify
// to ValuesType.
type CaseExpr struct {
	Conditions   []Expr
	Values       []Expr
	DefaultValue Expr // nil when absent; evaluates to NULL
	ValuesType   types.DataType
}

func (*CaseExpr) exprNode()              {}
func (c *CaseExpr) Type() types.DataType { return c.ValuesType }

// ArrayExpr represents an array literal.
type ArrayExpr struct {
	Elements    []Expr
	ElementType types.DataType
}

func (*ArrayExpr) exprNode()              {}
func (a *ArrayExpr) Type() types.DataType { return types.Array(a.ElementType) }
