// Package format renders expressions back to canonical query text. The
// parser uses it to derive default titles for unaliased projections.
package format

import (
	"strings"

	"github.com/gitql-go/gitql/ast"
)

// String renders an expression as canonical query text with single spaces
// between tokens.
func String(expr ast.Expr) string {
	var sb strings.Builder
	write(&sb, expr)
	return sb.String()
}

func write(sb *strings.Builder, expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.StringExpr:
		sb.WriteByte('\'')
		sb.WriteString(e.Value)
		sb.WriteByte('\'')
	case *ast.NumberExpr:
		sb.WriteString(e.Value.Literal())
	case *ast.BooleanExpr:
		if e.IsTrue {
			sb.WriteString("TRUE")
		} else {
			sb.WriteString("FALSE")
		}
	case *ast.NullExpr:
		sb.WriteString("NULL")
	case *ast.SymbolExpr:
		sb.WriteString(e.Name)
	case *ast.GlobalVarExpr:
		sb.WriteString(e.Name)
	case *ast.PrefixUnaryExpr:
		switch e.Op {
		case ast.PrefixNegate:
			sb.WriteByte('-')
		case ast.PrefixNot:
			sb.WriteString("NOT ")
		case ast.PrefixBitwiseNot:
			sb.WriteByte('~')
		}
		write(sb, e.Right)
	case *ast.ArithmeticExpr:
		writeBinary(sb, e.Left, arithmeticOps[e.Op], e.Right)
	case *ast.ComparisonExpr:
		writeBinary(sb, e.Left, comparisonOps[e.Op], e.Right)
	case *ast.CheckExpr:
		writeBinary(sb, e.Left, checkOps[e.Op], e.Right)
	case *ast.LogicalExpr:
		writeBinary(sb, e.Left, logicalOps[e.Op], e.Right)
	case *ast.BitwiseExpr:
		writeBinary(sb, e.Left, bitwiseOps[e.Op], e.Right)
	case *ast.CallExpr:
		sb.WriteString(e.FunctionName)
		sb.WriteByte('(')
		for i, arg := range e.Arguments {
			if i > 0 {
				sb.WriteString(", ")
			}
			write(sb, arg)
		}
		sb.WriteByte(')')
	case *ast.BetweenExpr:
		write(sb, e.Value)
		sb.WriteString(" BETWEEN ")
		write(sb, e.RangeStart)
		sb.WriteString(" AND ")
		write(sb, e.RangeEnd)
	case *ast.CaseExpr:
		sb.WriteString("CASE")
		for i := range e.Conditions {
			sb.WriteString(" WHEN ")
			write(sb, e.Conditions[i])
			sb.WriteString(" THEN ")
			write(sb, e.Values[i])
		}
		if e.DefaultValue != nil {
			sb.WriteString(" ELSE ")
			write(sb, e.DefaultValue)
		}
		sb.WriteString(" END")
	case *ast.ArrayExpr:
		sb.WriteByte('[')
		for i, element := range e.Elements {
			if i > 0 {
				sb.WriteString(", ")
			}
			write(sb, element)
		}
		sb.WriteByte(']')
	}
}

func writeBinary(sb *strings.Builder, left ast.Expr, op string, right ast.Expr) {
	write(sb, left)
	sb.WriteByte(' ')
	sb.WriteString(op)
	sb.WriteByte(' ')
	write(sb, right)
}

var arithmeticOps = map[ast.ArithmeticOp]string{
	ast.ArithPlus:     "+",
	ast.ArithMinus:    "-",
	ast.ArithStar:     "*",
	ast.ArithSlash:    "/",
	ast.ArithModulus:  "%",
	ast.ArithExponent: "^",
}

var comparisonOps = map[ast.ComparisonOp]string{
	ast.CompGreater:       ">",
	ast.CompGreaterEqual:  ">=",
	ast.CompLess:          "<",
	ast.CompLessEqual:     "<=",
	ast.CompEqual:         "=",
	ast.CompNotEqual:      "!=",
	ast.CompNullSafeEqual: "<=>",
	ast.CompContains:      "@>",
}

var checkOps = map[ast.CheckOp]string{
	ast.CheckContains:   "CONTAINS",
	ast.CheckStartsWith: "STARTS WITH",
	ast.CheckEndsWith:   "ENDS WITH",
	ast.CheckMatches:    "REGEXP",
	ast.CheckLike:       "LIKE",
	ast.CheckGlob:       "GLOB",
}

var logicalOps = map[ast.LogicalOp]string{
	ast.LogicalOr:  "OR",
	ast.LogicalAnd: "AND",
	ast.LogicalXor: "XOR",
}

var bitwiseOps = map[ast.BitwiseOp]string{
	ast.BitwiseOr:         "|",
	ast.BitwiseAnd:        "&",
	ast.BitwiseXor:        "#",
	ast.BitwiseLeftShift:  "<<",
	ast.BitwiseRightShift: ">>",
}
