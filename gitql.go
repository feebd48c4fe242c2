// Package gitql exposes git repository contents as queryable virtual
// tables through a SQL-like dialect.
//
// Basic usage:
//
//	p, err := gitprovider.Open(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	session := gitql.NewSession(p)
//	result, diag := session.Execute("SELECT name FROM refs LIMIT 10")
//	if diag != nil {
//	    log.Fatal(diag)
//	}
//
// Any provider.Provider implementation can back a session; the engine
// itself never touches git objects.
package gitql

import (
	"github.com/gitql-go/gitql/ast"
	"github.com/gitql-go/gitql/diagnostic"
	"github.com/gitql-go/gitql/engine"
	"github.com/gitql-go/gitql/environment"
	"github.com/gitql-go/gitql/function"
	"github.com/gitql-go/gitql/object"
	"github.com/gitql-go/gitql/parser"
	"github.com/gitql-go/gitql/printer"
	"github.com/gitql-go/gitql/provider"
)

// Session executes queries against one provider with shared global
// variables. A session is single-threaded; concurrent callers use
// independent sessions.
type Session struct {
	provider provider.Provider
	registry *function.Registry
	env      *environment.Environment
}

// NewSession creates a session over a provider with the standard function
// registry.
func NewSession(p provider.Provider) *Session {
	return &Session{
		provider: p,
		registry: function.Standard(),
		env:      environment.New(),
	}
}

// NewSessionWithRegistry creates a session with a custom registry
// snapshot, for embedders that register their own functions.
func NewSessionWithRegistry(p provider.Provider, registry *function.Registry) *Session {
	return &Session{
		provider: p,
		registry: registry,
		env:      environment.New(),
	}
}

// Parse tokenizes and parses a script into statements without executing
// them.
func (s *Session) Parse(query string) ([]ast.Query, *diagnostic.Diagnostic) {
	return parser.ParseScript(query, s.provider, s.registry, s.env)
}

// ExecuteParsed runs parsed statements in order and returns the last
// statement's result. A SELECT with an INTO clause writes its result to
// the named file instead of returning it.
func (s *Session) ExecuteParsed(queries []ast.Query) (*object.GitQLObject, *diagnostic.Diagnostic) {
	result := &object.GitQLObject{}
	for _, query := range queries {
		r, diag := engine.Execute(s.env, s.provider, s.registry, query)
		if diag != nil {
			return nil, diag
		}
		if sel, ok := query.(*ast.SelectQuery); ok && sel.Into != nil {
			if err := printer.WriteOutfile(sel.Into, r); err != nil {
				return nil, diagnostic.Errorf("Failed to write outfile: %s", err.Error())
			}
			r = &object.GitQLObject{}
		}
		result = r
	}
	return result, nil
}

// Execute parses and runs a script in one call.
func (s *Session) Execute(query string) (*object.GitQLObject, *diagnostic.Diagnostic) {
	queries, diag := s.Parse(query)
	if diag != nil {
		return nil, diag
	}
	return s.ExecuteParsed(queries)
}

// Execute parses and evaluates a query against a provider with a fresh
// session.
func Execute(query string, p provider.Provider) (*object.GitQLObject, *diagnostic.Diagnostic) {
	return NewSession(p).Execute(query)
}
