package parser

import (
	"math"
	"strconv"

	"github.com/gitql-go/gitql/ast"
	"github.com/gitql-go/gitql/diagnostic"
	"github.com/gitql-go/gitql/token"
	"github.com/gitql-go/gitql/types"
	"github.com/gitql-go/gitql/value"
)

// parseExpression parses a full expression: the or_expr level.
func (p *Parser) parseExpression() (ast.Expr, *diagnostic.Diagnostic) {
	return p.parseOr()
}

// parseOr handles OR, || and XOR.
func (p *Parser) parseOr() (ast.Expr, *diagnostic.Diagnostic) {
	left, diag := p.parseAnd()
	if diag != nil {
		return nil, diag
	}
	for p.curIs(token.OROR) || p.curIs(token.XOR) {
		op := ast.LogicalOr
		if p.curIs(token.XOR) {
			op = ast.LogicalXor
		}
		loc := p.cur().Loc
		p.advance()
		right, diag := p.parseAnd()
		if diag != nil {
			return nil, diag
		}
		if diag := requireBoolean(left, loc); diag != nil {
			return nil, diag
		}
		if diag := requireBoolean(right, loc); diag != nil {
			return nil, diag
		}
		left = &ast.LogicalExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseAnd handles AND and &&.
func (p *Parser) parseAnd() (ast.Expr, *diagnostic.Diagnostic) {
	left, diag := p.parseNot()
	if diag != nil {
		return nil, diag
	}
	for p.curIs(token.ANDAND) {
		loc := p.cur().Loc
		p.advance()
		right, diag := p.parseNot()
		if diag != nil {
			return nil, diag
		}
		if diag := requireBoolean(left, loc); diag != nil {
			return nil, diag
		}
		if diag := requireBoolean(right, loc); diag != nil {
			return nil, diag
		}
		left = &ast.LogicalExpr{Op: ast.LogicalAnd, Left: left, Right: right}
	}
	return left, nil
}

// parseNot handles the prefix NOT.
func (p *Parser) parseNot() (ast.Expr, *diagnostic.Diagnostic) {
	if p.curIs(token.NOT) {
		loc := p.cur().Loc
		p.advance()
		inner, diag := p.parseNot()
		if diag != nil {
			return nil, diag
		}
		if diag := requireBoolean(inner, loc); diag != nil {
			return nil, diag
		}
		return &ast.PrefixUnaryExpr{Op: ast.PrefixNot, Right: inner}, nil
	}
	return p.parseComparison()
}

// parseComparison handles binary comparisons, BETWEEN, IN, IS [NOT] NULL,
// LIKE, GLOB, REGEXP and @> containment.
func (p *Parser) parseComparison() (ast.Expr, *diagnostic.Diagnostic) {
	left, diag := p.parseBitwise()
	if diag != nil {
		return nil, diag
	}

	switch p.cur().Type {
	case token.GT, token.GTE, token.LT, token.LTE, token.EQ, token.NEQ, token.NULLSAFEEQ:
		op := comparisonOpFor(p.cur().Type)
		loc := p.cur().Loc
		p.advance()
		right, diag := p.parseBitwise()
		if diag != nil {
			return nil, diag
		}
		if _, ok := types.Coerce(left.Type(), right.Type()); !ok {
			return nil, diagnostic.Errorf(
				"Comparison operands have incompatible types %s and %s",
				left.Type().String(), right.Type().String()).
				WithLocation(loc)
		}
		return &ast.ComparisonExpr{Op: op, Left: left, Right: right}, nil

	case token.ATARROW:
		loc := p.cur().Loc
		p.advance()
		right, diag := p.parseBitwise()
		if diag != nil {
			return nil, diag
		}
		lt := left.Type()
		if lt.Kind != types.KindRange {
			return nil, diagnostic.Error("Operator @> expects a range on the left side").
				WithLocation(loc)
		}
		rt := right.Type()
		if !types.Equals(rt, lt) && !types.AssignableTo(rt, *lt.Inner) {
			return nil, diagnostic.Errorf(
				"Operator @> expects %s or %s on the right side but got %s",
				lt.String(), lt.Inner.String(), rt.String()).
				WithLocation(loc)
		}
		return &ast.ComparisonExpr{Op: ast.CompContains, Left: left, Right: right}, nil

	case token.BETWEEN:
		return p.parseBetween(left)

	case token.IN:
		return p.parseIn(left, false)

	case token.NOT:
		// NOT here can only introduce NOT IN.
		if p.peekIs(token.IN) {
			p.advance()
			return p.parseIn(left, true)
		}
		return left, nil

	case token.IS:
		p.advance()
		negated := false
		if p.curIs(token.NOT) {
			negated = true
			p.advance()
		}
		if diag := p.expect(token.NULL, "NULL after IS"); diag != nil {
			return nil, diag
		}
		// IS NULL is the NULL-safe comparison against the NULL literal.
		var check ast.Expr = &ast.ComparisonExpr{
			Op:    ast.CompNullSafeEqual,
			Left:  left,
			Right: &ast.NullExpr{},
		}
		if negated {
			check = &ast.PrefixUnaryExpr{Op: ast.PrefixNot, Right: check}
		}
		return check, nil

	case token.LIKE, token.GLOB, token.REGEXP:
		op := ast.CheckLike
		switch p.cur().Type {
		case token.GLOB:
			op = ast.CheckGlob
		case token.REGEXP:
			op = ast.CheckMatches
		}
		loc := p.cur().Loc
		p.advance()
		right, diag := p.parseBitwise()
		if diag != nil {
			return nil, diag
		}
		if diag := requireText(left, loc); diag != nil {
			return nil, diag
		}
		if diag := requireText(right, loc); diag != nil {
			return nil, diag
		}
		return &ast.CheckExpr{Op: op, Left: left, Right: right}, nil
	}

	return left, nil
}

// parseBetween parses the inclusive `value BETWEEN low AND high`.
func (p *Parser) parseBetween(left ast.Expr) (ast.Expr, *diagnostic.Diagnostic) {
	loc := p.cur().Loc
	p.advance()
	low, diag := p.parseBitwise()
	if diag != nil {
		return nil, diag
	}
	if diag := p.expect(token.ANDAND, "AND between the range bounds"); diag != nil {
		return nil, diag
	}
	high, diag := p.parseBitwise()
	if diag != nil {
		return nil, diag
	}
	if _, ok := types.Coerce(left.Type(), low.Type()); !ok {
		return nil, diagnostic.Errorf(
			"BETWEEN low bound type %s is incompatible with value type %s",
			low.Type().String(), left.Type().String()).
			WithLocation(loc)
	}
	if _, ok := types.Coerce(left.Type(), high.Type()); !ok {
		return nil, diagnostic.Errorf(
			"BETWEEN high bound type %s is incompatible with value type %s",
			high.Type().String(), left.Type().String()).
			WithLocation(loc)
	}
	return &ast.BetweenExpr{Value: left, RangeStart: low, RangeEnd: high}, nil
}

// parseIn desugars `value [NOT] IN (a, b, c)` into a chain of equality
// comparisons joined with OR.
func (p *Parser) parseIn(left ast.Expr, negated bool) (ast.Expr, *diagnostic.Diagnostic) {
	loc := p.cur().Loc
	p.advance()
	if diag := p.expect(token.LPAREN, "( after IN"); diag != nil {
		return nil, diag
	}
	var result ast.Expr
	for {
		item, diag := p.parseBitwise()
		if diag != nil {
			return nil, diag
		}
		if _, ok := types.Coerce(left.Type(), item.Type()); !ok {
			return nil, diagnostic.Errorf(
				"IN list element type %s is incompatible with value type %s",
				item.Type().String(), left.Type().String()).
				WithLocation(loc)
		}
		eq := &ast.ComparisonExpr{Op: ast.CompEqual, Left: left, Right: item}
		if result == nil {
			result = eq
		} else {
			result = &ast.LogicalExpr{Op: ast.LogicalOr, Left: result, Right: eq}
		}
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	if diag := p.expect(token.RPAREN, ") after IN list"); diag != nil {
		return nil, diag
	}
	if negated {
		return &ast.PrefixUnaryExpr{Op: ast.PrefixNot, Right: result}, nil
	}
	return result, nil
}

// parseBitwise handles |, & and #.
func (p *Parser) parseBitwise() (ast.Expr, *diagnostic.Diagnostic) {
	left, diag := p.parseShift()
	if diag != nil {
		return nil, diag
	}
	for p.curIs(token.BITOR) || p.curIs(token.BITAND) || p.curIs(token.BITXOR) {
		var op ast.BitwiseOp
		switch p.cur().Type {
		case token.BITOR:
			op = ast.BitwiseOr
		case token.BITAND:
			op = ast.BitwiseAnd
		default:
			op = ast.BitwiseXor
		}
		loc := p.cur().Loc
		p.advance()
		right, diag := p.parseShift()
		if diag != nil {
			return nil, diag
		}
		if diag := requireInteger(left, loc); diag != nil {
			return nil, diag
		}
		if diag := requireInteger(right, loc); diag != nil {
			return nil, diag
		}
		left = &ast.BitwiseExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseShift handles << and >>.
func (p *Parser) parseShift() (ast.Expr, *diagnostic.Diagnostic) {
	left, diag := p.parseAdditive()
	if diag != nil {
		return nil, diag
	}
	for p.curIs(token.LSHIFT) || p.curIs(token.RSHIFT) {
		op := ast.BitwiseLeftShift
		if p.curIs(token.RSHIFT) {
			op = ast.BitwiseRightShift
		}
		loc := p.cur().Loc
		p.advance()
		right, diag := p.parseAdditive()
		if diag != nil {
			return nil, diag
		}
		if diag := requireInteger(left, loc); diag != nil {
			return nil, diag
		}
		if diag := requireInteger(right, loc); diag != nil {
			return nil, diag
		}
		left = &ast.BitwiseExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseAdditive handles + and -.
func (p *Parser) parseAdditive() (ast.Expr, *diagnostic.Diagnostic) {
	left, diag := p.parseMultiplicative()
	if diag != nil {
		return nil, diag
	}
	for p.curIs(token.PLUS) || p.curIs(token.MINUS) {
		op := ast.ArithPlus
		if p.curIs(token.MINUS) {
			op = ast.ArithMinus
		}
		loc := p.cur().Loc
		p.advance()
		right, diag := p.parseMultiplicative()
		if diag != nil {
			return nil, diag
		}
		if diag := requireNumber(left, loc); diag != nil {
			return nil, diag
		}
		if diag := requireNumber(right, loc); diag != nil {
			return nil, diag
		}
		left = &ast.ArithmeticExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseMultiplicative handles *, / (DIV) and % (MOD).
func (p *Parser) parseMultiplicative() (ast.Expr, *diagnostic.Diagnostic) {
	left, diag := p.parseExponent()
	if diag != nil {
		return nil, diag
	}
	for p.curIs(token.ASTERISK) || p.curIs(token.SLASH) || p.curIs(token.PERCENT) {
		var op ast.ArithmeticOp
		switch p.cur().Type {
		case token.ASTERISK:
			op = ast.ArithStar
		case token.SLASH:
			op = ast.ArithSlash
		default:
			op = ast.ArithModulus
		}
		loc := p.cur().Loc
		p.advance()
		right, diag := p.parseExponent()
		if diag != nil {
			return nil, diag
		}
		if diag := requireNumber(left, loc); diag != nil {
			return nil, diag
		}
		if diag := requireNumber(right, loc); diag != nil {
			return nil, diag
		}
		left = &ast.ArithmeticExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseExponent handles ^, binding tighter than multiplication.
func (p *Parser) parseExponent() (ast.Expr, *diagnostic.Diagnostic) {
	left, diag := p.parseUnary()
	if diag != nil {
		return nil, diag
	}
	for p.curIs(token.CARET) {
		loc := p.cur().Loc
		p.advance()
		right, diag := p.parseUnary()
		if diag != nil {
			return nil, diag
		}
		if diag := requireNumber(left, loc); diag != nil {
			return nil, diag
		}
		if diag := requireNumber(right, loc); diag != nil {
			return nil, diag
		}
		left = &ast.ArithmeticExpr{Op: ast.ArithExponent, Left: left, Right: right}
	}
	return left, nil
}

// parseUnary handles prefix -, ! and ~.
func (p *Parser) parseUnary() (ast.Expr, *diagnostic.Diagnostic) {
	switch p.cur().Type {
	case token.MINUS:
		loc := p.cur().Loc
		p.advance()
		inner, diag := p.parseUnary()
		if diag != nil {
			return nil, diag
		}
		if diag := requireNumber(inner, loc); diag != nil {
			return nil, diag
		}
		return &ast.PrefixUnaryExpr{Op: ast.PrefixNegate, Right: inner}, nil
	case token.BANG:
		loc := p.cur().Loc
		p.advance()
		inner, diag := p.parseUnary()
		if diag != nil {
			return nil, diag
		}
		if diag := requireBoolean(inner, loc); diag != nil {
			return nil, diag
		}
		return &ast.PrefixUnaryExpr{Op: ast.PrefixNot, Right: inner}, nil
	case token.BITNOT:
		loc := p.cur().Loc
		p.advance()
		inner, diag := p.parseUnary()
		if diag != nil {
			return nil, diag
		}
		if diag := requireInteger(inner, loc); diag != nil {
			return nil, diag
		}
		return &ast.PrefixUnaryExpr{Op: ast.PrefixBitwiseNot, Right: inner}, nil
	}
	return p.parsePrimary()
}

// parsePrimary handles literals, symbols, calls, CASE, arrays, global
// variables and parenthesized expressions.
func (p *Parser) parsePrimary() (ast.Expr, *diagnostic.Diagnostic) {
	switch p.cur().Type {
	case token.INT:
		n, err := strconv.ParseInt(p.cur().Value, 10, 64)
		if err != nil {
			return nil, diagnostic.Error("Integer literal is out of range").
				WithLocation(p.cur().Loc)
		}
		p.advance()
		return &ast.NumberExpr{Value: value.Integer(n)}, nil

	case token.FLOAT:
		f, err := strconv.ParseFloat(p.cur().Value, 64)
		if err != nil {
			return nil, diagnostic.Error("Float literal is out of range").
				WithLocation(p.cur().Loc)
		}
		p.advance()
		return &ast.NumberExpr{Value: value.Float(f)}, nil

	case token.INFINITY:
		p.advance()
		return &ast.NumberExpr{Value: value.Float(math.Inf(1))}, nil

	case token.NAN:
		p.advance()
		return &ast.NumberExpr{Value: value.Float(math.NaN())}, nil

	case token.STRING:
		s := p.cur().Value
		p.advance()
		return &ast.StringExpr{Value: s}, nil

	case token.TRUE, token.FALSE:
		isTrue := p.curIs(token.TRUE)
		p.advance()
		return &ast.BooleanExpr{IsTrue: isTrue}, nil

	case token.NULL:
		p.advance()
		return &ast.NullExpr{}, nil

	case token.GLOBALVAR:
		name := p.cur().Value
		loc := p.cur().Loc
		valueType, ok := p.env.GlobalType(name)
		if !ok {
			return nil, diagnostic.Errorf("Undefined global variable `%s`", name).
				AddHelp("Declare it first with SET " + name + " := <value>").
				WithLocation(loc)
		}
		p.advance()
		return &ast.GlobalVarExpr{Name: name, ValueType: valueType}, nil

	case token.SYMBOL:
		if p.peekIs(token.LPAREN) {
			return p.parseCall()
		}
		name := p.cur().Value
		loc := p.cur().Loc
		valueType, diag := p.resolveSymbolType(name, loc)
		if diag != nil {
			return nil, diag
		}
		p.advance()
		p.markFieldUsed(name)
		return &ast.SymbolExpr{Name: name, ValueType: valueType}, nil

	case token.BENCHMARK:
		return p.parseBenchmark()

	case token.LPAREN:
		p.advance()
		expr, diag := p.parseExpression()
		if diag != nil {
			return nil, diag
		}
		if diag := p.expect(token.RPAREN, ") to close the expression"); diag != nil {
			return nil, diag
		}
		return expr, nil

	case token.CASE:
		return p.parseCase()

	case token.ARRAY:
		p.advance()
		if !p.curIs(token.LBRACKET) {
			return nil, diagnostic.Error("Expect [ after ARRAY").
				WithLocation(p.cur().Loc)
		}
		return p.parseArray()

	case token.LBRACKET:
		return p.parseArray()
	}

	return nil, diagnostic.Errorf("Unexpected token `%s` in expression", p.cur().Value).
		WithLocation(p.cur().Loc)
}

// parseCall parses a scalar function call or an aggregate call. Aggregate
// calls are only legal where the context allows them; they are lifted into
// synthetic symbols by the select statement parser.
func (p *Parser) parseCall() (ast.Expr, *diagnostic.Diagnostic) {
	name := p.cur().Value
	nameLoc := p.cur().Loc
	p.advance() // function name
	p.advance() // (

	if p.registry.IsAggregation(name) {
		if !p.ctx.allowAggregates {
			return nil, diagnostic.Errorf("Aggregate function `%s` is not allowed here", name).
				AddHelp("Aggregates can appear in the SELECT list or in HAVING").
				WithLocation(nameLoc)
		}
		return p.parseAggregateCall(name, nameLoc)
	}

	var args []ast.Expr
	if !p.curIs(token.RPAREN) {
		for {
			arg, diag := p.parseExpression()
			if diag != nil {
				return nil, diag
			}
			args = append(args, arg)
			if !p.curIs(token.COMMA) {
				break
			}
			p.advance()
		}
	}
	if diag := p.expect(token.RPAREN, ") to close the call"); diag != nil {
		return nil, diag
	}

	argTypes := make([]types.DataType, len(args))
	for i, arg := range args {
		argTypes[i] = arg.Type()
	}
	returnType, diag := p.registry.CheckCall(name, argTypes, nameLoc)
	if diag != nil {
		return nil, diag
	}
	return &ast.CallExpr{FunctionName: name, Arguments: args, ReturnType: returnType}, nil
}

// parseAggregateCall parses `fn(column)`; the argument must be a column of
// the selected table.
func (p *Parser) parseAggregateCall(name string, nameLoc token.Location) (ast.Expr, *diagnostic.Diagnostic) {
	if !p.curIs(token.SYMBOL) {
		return nil, diagnostic.Errorf("Aggregate function `%s` expects a column name argument", name).
			WithLocation(p.cur().Loc)
	}
	column := p.cur().Value
	columnLoc := p.cur().Loc
	columnType, diag := p.resolveSymbolType(column, columnLoc)
	if diag != nil {
		return nil, diag
	}
	proto, _ := p.registry.AggregationPrototype(name)
	if !types.AssignableTo(columnType, proto.Parameter) {
		return nil, diagnostic.Errorf(
			"Aggregate function `%s` expects type %s but column `%s` has type %s",
			name, proto.Parameter.String(), column, columnType.String()).
			WithLocation(columnLoc)
	}
	p.advance()
	if diag := p.expect(token.RPAREN, ") to close the call"); diag != nil {
		return nil, diag
	}
	return &ast.CallExpr{
		FunctionName: name,
		Arguments:    []ast.Expr{&ast.SymbolExpr{Name: column, ValueType: columnType}},
		ReturnType:   proto.Result,
	}, nil
}

// parseBenchmark parses `BENCHMARK(count, expr)`.
func (p *Parser) parseBenchmark() (ast.Expr, *diagnostic.Diagnostic) {
	nameLoc := p.cur().Loc
	p.advance()
	if diag := p.expect(token.LPAREN, "( after BENCHMARK"); diag != nil {
		return nil, diag
	}
	count, diag := p.parseExpression()
	if diag != nil {
		return nil, diag
	}
	if diag := requireInteger(count, nameLoc); diag != nil {
		return nil, diag
	}
	if diag := p.expect(token.COMMA, ", between BENCHMARK arguments"); diag != nil {
		return nil, diag
	}
	expr, diag := p.parseExpression()
	if diag != nil {
		return nil, diag
	}
	if diag := p.expect(token.RPAREN, ") to close the call"); diag != nil {
		return nil, diag
	}
	return &ast.CallExpr{
		FunctionName: "benchmark",
		Arguments:    []ast.Expr{count, expr},
		ReturnType:   types.Null,
	}, nil
}

// parseCase parses the searched CASE form. All value branches must unify
// to a single type, which becomes the expression's type.
func (p *Parser) parseCase() (ast.Expr, *diagnostic.Diagnostic) {
	caseLoc := p.cur().Loc
	p.advance()

	var conditions []ast.Expr
	var values []ast.Expr
	var defaultValue ast.Expr
	valuesType := types.Null

	for p.curIs(token.WHEN) {
		loc := p.cur().Loc
		p.advance()
		cond, diag := p.parseExpression()
		if diag != nil {
			return nil, diag
		}
		if diag := requireBoolean(cond, loc); diag != nil {
			return nil, diag
		}
		if diag := p.expect(token.THEN, "THEN after the WHEN condition"); diag != nil {
			return nil, diag
		}
		val, diag := p.parseExpression()
		if diag != nil {
			return nil, diag
		}
		unified, ok := types.Coerce(valuesType, val.Type())
		if !ok {
			return nil, diagnostic.Errorf(
				"CASE branches must unify to a single type, got %s and %s",
				valuesType.String(), val.Type().String()).
				WithLocation(loc)
		}
		valuesType = unified
		conditions = append(conditions, cond)
		values = append(values, val)
	}

	if len(conditions) == 0 {
		return nil, diagnostic.Error("CASE expects at least one WHEN branch").
			WithLocation(caseLoc)
	}

	if p.curIs(token.ELSE) {
		loc := p.cur().Loc
		p.advance()
		val, diag := p.parseExpression()
		if diag != nil {
			return nil, diag
		}
		unified, ok := types.Coerce(valuesType, val.Type())
		if !ok {
			return nil, diagnostic.Errorf(
				"CASE branches must unify to a single type, got %s and %s",
				valuesType.String(), val.Type().String()).
				WithLocation(loc)
		}
		valuesType = unified
		defaultValue = val
	}

	if diag := p.expect(token.END, "END to close the CASE expression"); diag != nil {
		return nil, diag
	}

	return &ast.CaseExpr{
		Conditions:   conditions,
		Values:       values,
		DefaultValue: defaultValue,
		ValuesType:   valuesType,
	}, nil
}

// parseArray parses an array literal; elements must unify to a single
// element type.
func (p *Parser) parseArray() (ast.Expr, *diagnostic.Diagnostic) {
	p.advance() // [
	var elements []ast.Expr
	elementType := types.Any
	for !p.curIs(token.RBRACKET) {
		loc := p.cur().Loc
		element, diag := p.parseExpression()
		if diag != nil {
			return nil, diag
		}
		unified, ok := types.Coerce(elementType, element.Type())
		if !ok {
			return nil, diagnostic.Errorf(
				"Array elements must share one type, got %s and %s",
				elementType.String(), element.Type().String()).
				WithLocation(loc)
		}
		elementType = unified
		elements = append(elements, element)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	if diag := p.expect(token.RBRACKET, "] to close the array"); diag != nil {
		return nil, diag
	}
	return &ast.ArrayExpr{Elements: elements, ElementType: elementType}, nil
}

func comparisonOpFor(t token.Token) ast.ComparisonOp {
	switch t {
	case token.GT:
		return ast.CompGreater
	case token.GTE:
		return ast.CompGreaterEqual
	case token.LT:
		return ast.CompLess
	case token.LTE:
		return ast.CompLessEqual
	case token.EQ:
		return ast.CompEqual
	case token.NULLSAFEEQ:
		return ast.CompNullSafeEqual
	default:
		return ast.CompNotEqual
	}
}

func requireBoolean(expr ast.Expr, loc token.Location) *diagnostic.Diagnostic {
	t := expr.Type()
	if t.Kind == types.KindBoolean || t.IsNull() || t.Kind == types.KindAny {
		return nil
	}
	return diagnostic.Errorf("Expect a Boolean operand but got %s", t.String()).
		WithLocation(loc)
}

func requireNumber(expr ast.Expr, loc token.Location) *diagnostic.Diagnostic {
	t := expr.Type()
	if t.IsNumber() || t.IsNull() || t.Kind == types.KindAny {
		return nil
	}
	return diagnostic.Errorf("Expect a numeric operand but got %s", t.String()).
		WithLocation(loc)
}

func requireInteger(expr ast.Expr, loc token.Location) *diagnostic.Diagnostic {
	t := expr.Type()
	if t.Kind == types.KindInteger || t.Kind == types.KindNumber || t.IsNull() || t.Kind == types.KindAny {
		return nil
	}
	return diagnostic.Errorf("Expect an Integer operand but got %s", t.String()).
		WithLocation(loc)
}

func requireText(expr ast.Expr, loc token.Location) *diagnostic.Diagnostic {
	t := expr.Type()
	if t.Kind == types.KindText || t.IsNull() || t.Kind == types.KindAny {
		return nil
	}
	return diagnostic.Errorf("Expect a Text operand but got %s", t.String()).
		WithLocation(loc)
}
