// Package ast defines the abstract syntax tree for GQL queries.
package ast

import "github.com/gitql-go/gitql/types"

// Expr represents an expression. Every expression exposes its static type,
// computed from its children and the function registries at parse time.
type Expr interface {
	Type() types.DataType
	exprNode()
}

// Statement represents a single clause of a select query.
type Statement interface {
	statementNode()
}

// Query represents a parsed top-level statement.
type Query interface {
	queryNode()
}
