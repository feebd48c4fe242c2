// Package visitor provides traversal and rewriting over expression trees.
package visitor

import "github.com/gitql-go/gitql/ast"

// Walk traverses the expression tree in pre-order, calling fn for each
// node. If fn returns false, the node's children are not visited.
func Walk(expr ast.Expr, fn func(ast.Expr) bool) {
	if expr == nil || !fn(expr) {
		return
	}
	switch e := expr.(type) {
	case *ast.PrefixUnaryExpr:
		Walk(e.Right, fn)
	case *ast.ArithmeticExpr:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	case *ast.ComparisonExpr:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	case *ast.CheckExpr:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	case *ast.LogicalExpr:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	case *ast.BitwiseExpr:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	case *ast.CallExpr:
		for _, arg := range e.Arguments {
			Walk(arg, fn)
		}
	case *ast.BetweenExpr:
		Walk(e.Value, fn)
		Walk(e.RangeStart, fn)
		Walk(e.RangeEnd, fn)
	case *ast.CaseExpr:
		for _, cond := range e.Conditions {
			Walk(cond, fn)
		}
		for _, val := range e.Values {
			Walk(val, fn)
		}
		if e.DefaultValue != nil {
			Walk(e.DefaultValue, fn)
		}
	case *ast.ArrayExpr:
		for _, element := range e.Elements {
			Walk(element, fn)
		}
	}
}

// Rewrite traverses the tree in post-order (children first) and replaces
// each node with the result of fn. Returning the original node keeps it.
func Rewrite(expr ast.Expr, fn func(ast.Expr) ast.Expr) ast.Expr {
	if expr == nil {
		return nil
	}
	switch e := expr.(type) {
	case *ast.PrefixUnaryExpr:
		e.Right = Rewrite(e.Right, fn)
	case *ast.ArithmeticExpr:
		e.Left = Rewrite(e.Left, fn)
		e.Right = Rewrite(e.Right, fn)
	case *ast.ComparisonExpr:
		e.Left = Rewrite(e.Left, fn)
		e.Right = Rewrite(e.Right, fn)
	case *ast.CheckExpr:
		e.Left = Rewrite(e.Left, fn)
		e.Right = Rewrite(e.Right, fn)
	case *ast.LogicalExpr:
		e.Left = Rewrite(e.Left, fn)
		e.Right = Rewrite(e.Right, fn)
	case *ast.BitwiseExpr:
		e.Left = Rewrite(e.Left, fn)
		e.Right = Rewrite(e.Right, fn)
	case *ast.CallExpr:
		for i, arg := range e.Arguments {
			e.Arguments[i] = Rewrite(arg, fn)
		}
	case *ast.BetweenExpr:
		e.Value = Rewrite(e.Value, fn)
		e.RangeStart = Rewrite(e.RangeStart, fn)
		e.RangeEnd = Rewrite(e.RangeEnd, fn)
	case *ast.CaseExpr:
		for i, cond := range e.Conditions {
			e.Conditions[i] = Rewrite(cond, fn)
		}
		for i, val := range e.Values {
			e.Values[i] = Rewrite(val, fn)
		}
		if e.DefaultValue != nil {
			e.DefaultValue = Rewrite(e.DefaultValue, fn)
		}
	case *ast.ArrayExpr:
		for i, element := range e.Elements {
			e.Elements[i] = Rewrite(element, fn)
		}
	}
	return fn(expr)
}

// CollectSymbols returns the distinct column names referenced by the
// expression, in first-seen order.
func CollectSymbols(expr ast.Expr) []string {
	var names []string
	seen := map[string]bool{}
	Walk(expr, func(e ast.Expr) bool {
		if sym, ok := e.(*ast.SymbolExpr); ok && !seen[sym.Name] {
			seen[sym.Name] = true
			names = append(names, sym.Name)
		}
		return true
	})
	return names
}
