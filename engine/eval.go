package engine

import (
	"math"
	"regexp"
	"strings"

	"github.com/gobwas/glob"

	"github.com/gitql-go/gitql/ast"
	"github.com/gitql-go/gitql/diagnostic"
	"github.com/gitql-go/gitql/environment"
	"github.com/gitql-go/gitql/function"
	"github.com/gitql-go/gitql/object"
	"github.com/gitql-go/gitql/types"
	"github.com/gitql-go/gitql/value"
)

// evaluator evaluates expressions against one row at a time. Column
// references resolve by output title first, then through the alias table.
type evaluator struct {
	env      *environment.Environment
	registry *function.Registry
	indexes  map[string]int
	aliases  map[string]string
}

func newEvaluator(env *environment.Environment, registry *function.Registry, indexes map[string]int, aliases map[string]string) *evaluator {
	return &evaluator{env: env, registry: registry, indexes: indexes, aliases: aliases}
}

// columnIndex resolves a column name to its position, trying the raw name
// first and the aliased output name second.
func (e *evaluator) columnIndex(name string) (int, bool) {
	if idx, ok := e.indexes[name]; ok {
		return idx, true
	}
	if alias, ok := e.aliases[name]; ok {
		if idx, ok := e.indexes[alias]; ok {
			return idx, true
		}
	}
	return 0, false
}

// columnValues extracts one column across a group of rows.
func (e *evaluator) columnValues(name string, rows []object.Row) ([]value.Value, *diagnostic.Diagnostic) {
	idx, ok := e.columnIndex(name)
	if !ok {
		return nil, diagnostic.Errorf("Unknown column `%s` during aggregation", name)
	}
	values := make([]value.Value, 0, len(rows))
	for _, row := range rows {
		if idx < len(row.Values) {
			values = append(values, row.Values[idx])
		} else {
			values = append(values, value.Null())
		}
	}
	return values, nil
}

// nullSafeFunctions are the scalar functions that receive NULL arguments
// unchanged; every other function NULL-propagates.
var nullSafeFunctions = map[string]bool{
	"isnull":   true,
	"coalesce": true,
	"if":       true,
	"typeof":   true,
	"nullif":   true,
	"concat":   true,
	"greatest": true,
	"least":    true,
}

// eval evaluates an expression against a row with three-valued logic.
func (e *evaluator) eval(expr ast.Expr, row object.Row) (value.Value, *diagnostic.Diagnostic) {
	switch node := expr.(type) {
	case *ast.StringExpr:
		return value.Text(node.Value), nil
	case *ast.NumberExpr:
		return node.Value, nil
	case *ast.BooleanExpr:
		return value.Boolean(node.IsTrue), nil
	case *ast.NullExpr:
		return value.Null(), nil
	case *ast.SymbolExpr:
		idx, ok := e.columnIndex(node.Name)
		if !ok || idx >= len(row.Values) {
			return value.Null(), nil
		}
		return row.Values[idx], nil
	case *ast.GlobalVarExpr:
		if v, ok := e.env.GlobalValue(node.Name); ok {
			return v, nil
		}
		return value.Null(), nil
	case *ast.PrefixUnaryExpr:
		return e.evalPrefixUnary(node, row)
	case *ast.ArithmeticExpr:
		return e.evalArithmetic(node, row)
	case *ast.ComparisonExpr:
		return e.evalComparison(node, row)
	case *ast.CheckExpr:
		return e.evalCheck(node, row)
	case *ast.LogicalExpr:
		return e.evalLogical(node, row)
	case *ast.BitwiseExpr:
		return e.evalBitwise(node, row)
	case *ast.CallExpr:
		return e.evalCall(node, row)
	case *ast.BetweenExpr:
		return e.evalBetween(node, row)
	case *ast.CaseExpr:
		return e.evalCase(node, row)
	case *ast.ArrayExpr:
		return e.evalArray(node, row)
	}
	return value.Null(), diagnostic.Error("Unsupported expression kind")
}

func (e *evaluator) evalPrefixUnary(node *ast.PrefixUnaryExpr, row object.Row) (value.Value, *diagnostic.Diagnostic) {
	inner, diag := e.eval(node.Right, row)
	if diag != nil {
		return value.Null(), diag
	}
	if inner.IsNull() {
		return value.Null(), nil
	}
	switch node.Op {
	case ast.PrefixNegate:
		if inner.Type.Kind == types.KindFloat {
			return value.Float(-inner.Float), nil
		}
		return value.Integer(-inner.Int), nil
	case ast.PrefixNot:
		return value.Boolean(!inner.AsBool()), nil
	default:
		return value.Integer(^inner.AsInt()), nil
	}
}

func (e *evaluator) evalArithmetic(node *ast.ArithmeticExpr, row object.Row) (value.Value, *diagnostic.Diagnostic) {
	left, diag := e.eval(node.Left, row)
	if diag != nil {
		return value.Null(), diag
	}
	right, diag := e.eval(node.Right, row)
	if diag != nil {
		return value.Null(), diag
	}
	if left.IsNull() || right.IsNull() {
		return value.Null(), nil
	}

	// Integer stays Integer until any operand is Float.
	if left.Type.Kind == types.KindFloat || right.Type.Kind == types.KindFloat {
		a, b := left.AsFloat(), right.AsFloat()
		switch node.Op {
		case ast.ArithPlus:
			return value.Float(a + b), nil
		case ast.ArithMinus:
			return value.Float(a - b), nil
		case ast.ArithStar:
			return value.Float(a * b), nil
		case ast.ArithSlash:
			if b == 0 {
				return value.Null(), nil
			}
			return value.Float(a / b), nil
		case ast.ArithModulus:
			if b == 0 {
				return value.Null(), nil
			}
			return value.Float(math.Mod(a, b)), nil
		default:
			return value.Float(math.Pow(a, b)), nil
		}
	}

	a, b := left.AsInt(), right.AsInt()
	switch node.Op {
	case ast.ArithPlus:
		return value.Integer(a + b), nil
	case ast.ArithMinus:
		return value.Integer(a - b), nil
	case ast.ArithStar:
		return value.Integer(a * b), nil
	case ast.ArithSlash:
		if b == 0 {
			return value.Null(), nil
		}
		return value.Integer(a / b), nil
	case ast.ArithModulus:
		if b == 0 {
			return value.Null(), nil
		}
		// Go's % already follows the sign of the dividend.
		return value.Integer(a % b), nil
	default:
		if b < 0 {
			return value.Float(math.Pow(float64(a), float64(b))), nil
		}
		result := int64(1)
		for i := int64(0); i < b; i++ {
			result *= a
		}
		return value.Integer(result), nil
	}
}

func (e *evaluator) evalComparison(node *ast.ComparisonExpr, row object.Row) (value.Value, *diagnostic.Diagnostic) {
	left, diag := e.eval(node.Left, row)
	if diag != nil {
		return value.Null(), diag
	}
	right, diag := e.eval(node.Right, row)
	if diag != nil {
		return value.Null(), diag
	}

	// NULL-safe equal never yields NULL: NULL equals NULL and nothing else.
	if node.Op == ast.CompNullSafeEqual {
		return value.Boolean(left.Equals(right)), nil
	}

	if left.IsNull() || right.IsNull() {
		return value.Null(), nil
	}

	switch node.Op {
	case ast.CompEqual:
		return value.Boolean(left.Equals(right)), nil
	case ast.CompNotEqual:
		return value.Boolean(!left.Equals(right)), nil
	case ast.CompContains:
		return evalRangeContains(left, right), nil
	}

	cmp := left.Compare(right)
	switch node.Op {
	case ast.CompGreater:
		return value.Boolean(cmp > 0), nil
	case ast.CompGreaterEqual:
		return value.Boolean(cmp >= 0), nil
	case ast.CompLess:
		return value.Boolean(cmp < 0), nil
	default:
		return value.Boolean(cmp <= 0), nil
	}
}

// evalRangeContains implements @>: range contains point, or range
// contains range, with inclusive bounds.
func evalRangeContains(left, right value.Value) value.Value {
	if right.Type.Kind == types.KindRange {
		return value.Boolean(
			left.Low.Compare(*right.Low) <= 0 && right.High.Compare(*left.High) <= 0)
	}
	return value.Boolean(
		left.Low.Compare(right) <= 0 && right.Compare(*left.High) <= 0)
}

func (e *evaluator) evalCheck(node *ast.CheckExpr, row object.Row) (value.Value, *diagnostic.Diagnostic) {
	left, diag := e.eval(node.Left, row)
	if diag != nil {
		return value.Null(), diag
	}
	right, diag := e.eval(node.Right, row)
	if diag != nil {
		return value.Null(), diag
	}
	if left.IsNull() || right.IsNull() {
		return value.Null(), nil
	}

	text, pattern := left.AsText(), right.AsText()
	switch node.Op {
	case ast.CheckContains:
		return value.Boolean(strings.Contains(text, pattern)), nil
	case ast.CheckStartsWith:
		return value.Boolean(strings.HasPrefix(text, pattern)), nil
	case ast.CheckEndsWith:
		return value.Boolean(strings.HasSuffix(text, pattern)), nil
	case ast.CheckLike:
		re, err := regexp.Compile(likePatternToRegexp(pattern))
		if err != nil {
			return value.Null(), diagnostic.Errorf("Invalid LIKE pattern `%s`", pattern)
		}
		return value.Boolean(re.MatchString(text)), nil
	case ast.CheckGlob:
		matcher, err := glob.Compile(pattern)
		if err != nil {
			return value.Null(), diagnostic.Errorf("Invalid GLOB pattern `%s`", pattern)
		}
		return value.Boolean(matcher.Match(text)), nil
	default: // CheckMatches
		re, err := regexp.CompilePOSIX(pattern)
		if err != nil {
			return value.Null(), diagnostic.Errorf("Invalid regular expression `%s`", pattern)
		}
		return value.Boolean(re.MatchString(text)), nil
	}
}

// likePatternToRegexp translates SQL wildcards: % matches any run and _
// matches a single character. Matching is case-insensitive.
func likePatternToRegexp(pattern string) string {
	quoted := regexp.QuoteMeta(pattern)
	quoted = strings.ReplaceAll(quoted, "%", ".*")
	quoted = strings.ReplaceAll(quoted, "_", ".")
	return "(?is)^" + quoted + "$"
}

func (e *evaluator) evalLogical(node *ast.LogicalExpr, row object.Row) (value.Value, *diagnostic.Diagnostic) {
	left, diag := e.eval(node.Left, row)
	if diag != nil {
		return value.Null(), diag
	}
	right, diag := e.eval(node.Right, row)
	if diag != nil {
		return value.Null(), diag
	}

	// Standard SQL three-valued truth tables.
	switch node.Op {
	case ast.LogicalOr:
		if isTrue(left) || isTrue(right) {
			return value.Boolean(true), nil
		}
		if left.IsNull() || right.IsNull() {
			return value.Null(), nil
		}
		return value.Boolean(false), nil
	case ast.LogicalAnd:
		if isFalse(left) || isFalse(right) {
			return value.Boolean(false), nil
		}
		if left.IsNull() || right.IsNull() {
			return value.Null(), nil
		}
		return value.Boolean(true), nil
	default: // XOR is defined only for non-NULL booleans
		if left.IsNull() || right.IsNull() {
			return value.Null(), nil
		}
		return value.Boolean(left.AsBool() != right.AsBool()), nil
	}
}

func (e *evaluator) evalBitwise(node *ast.BitwiseExpr, row object.Row) (value.Value, *diagnostic.Diagnostic) {
	left, diag := e.eval(node.Left, row)
	if diag != nil {
		return value.Null(), diag
	}
	right, diag := e.eval(node.Right, row)
	if diag != nil {
		return value.Null(), diag
	}
	if left.IsNull() || right.IsNull() {
		return value.Null(), nil
	}

	a, b := left.AsInt(), right.AsInt()
	switch node.Op {
	case ast.BitwiseOr:
		return value.Integer(a | b), nil
	case ast.BitwiseAnd:
		return value.Integer(a & b), nil
	case ast.BitwiseXor:
		return value.Integer(a ^ b), nil
	case ast.BitwiseLeftShift:
		if b < 0 {
			return value.Null(), diagnostic.Error("Shift amount must be non-negative")
		}
		return value.Integer(a << uint64(b)), nil
	default:
		if b < 0 {
			return value.Null(), diagnostic.Error("Shift amount must be non-negative")
		}
		return value.Integer(a >> uint64(b)), nil
	}
}

func (e *evaluator) evalCall(node *ast.CallExpr, row object.Row) (value.Value, *diagnostic.Diagnostic) {
	// BENCHMARK re-evaluates its expression argument count times.
	if node.FunctionName == "benchmark" {
		count, diag := e.eval(node.Arguments[0], row)
		if diag != nil {
			return value.Null(), diag
		}
		for i := int64(0); i < count.AsInt(); i++ {
			if _, diag := e.eval(node.Arguments[1], row); diag != nil {
				return value.Null(), diag
			}
		}
		return value.Null(), nil
	}

	fn, ok := e.registry.Function(node.FunctionName)
	if !ok {
		return value.Null(), diagnostic.Errorf("Unknown function name `%s`", node.FunctionName)
	}

	args := make([]value.Value, len(node.Arguments))
	for i, arg := range node.Arguments {
		v, diag := e.eval(arg, row)
		if diag != nil {
			return value.Null(), diag
		}
		if v.IsNull() && !nullSafeFunctions[node.FunctionName] {
			return value.Null(), nil
		}
		args[i] = v
	}
	return fn(args), nil
}

func (e *evaluator) evalBetween(node *ast.BetweenExpr, row object.Row) (value.Value, *diagnostic.Diagnostic) {
	v, diag := e.eval(node.Value, row)
	if diag != nil {
		return value.Null(), diag
	}
	low, diag := e.eval(node.RangeStart, row)
	if diag != nil {
		return value.Null(), diag
	}
	high, diag := e.eval(node.RangeEnd, row)
	if diag != nil {
		return value.Null(), diag
	}
	if v.IsNull() || low.IsNull() || high.IsNull() {
		return value.Null(), nil
	}
	return value.Boolean(v.Compare(low) >= 0 && v.Compare(high) <= 0), nil
}

func (e *evaluator) evalCase(node *ast.CaseExpr, row object.Row) (value.Value, *diagnostic.Diagnostic) {
	for i, condition := range node.Conditions {
		v, diag := e.eval(condition, row)
		if diag != nil {
			return value.Null(), diag
		}
		if isTrue(v) {
			return e.eval(node.Values[i], row)
		}
	}
	if node.DefaultValue != nil {
		return e.eval(node.DefaultValue, row)
	}
	return value.Null(), nil
}

func (e *evaluator) evalArray(node *ast.ArrayExpr, row object.Row) (value.Value, *diagnostic.Diagnostic) {
	elements := make([]value.Value, len(node.Elements))
	for i, element := range node.Elements {
		v, diag := e.eval(element, row)
		if diag != nil {
			return value.Null(), diag
		}
		elements[i] = v
	}
	return value.Array(node.ElementType, elements), nil
}

func isFalse(v value.Value) bool {
	return v.Type.Kind == types.KindBoolean && !v.Bool
}
