// Package parser provides the recursive descent GQL parser and its
// semantic checks.
package parser

import (
	"github.com/gitql-go/gitql/ast"
	"github.com/gitql-go/gitql/diagnostic"
	"github.com/gitql-go/gitql/environment"
	"github.com/gitql-go/gitql/function"
	"github.com/gitql-go/gitql/lexer"
	"github.com/gitql-go/gitql/provider"
	"github.com/gitql-go/gitql/token"
	"github.com/gitql-go/gitql/types"
)

// SchemaProvider is the subset of the provider contract the parser needs:
// table schemas for column resolution. Provider-specific column names never
// leak into the parser; it queries schemas solely through this interface.
type SchemaProvider interface {
	Schema(table string) (*provider.Schema, bool)
	TableNames() []string
}

// Parser is a recursive descent GQL parser with a single token lookahead.
type Parser struct {
	tokens   []token.Item
	pos      int
	schemas  SchemaProvider
	registry *function.Registry
	env      *environment.Environment

	// ctx is the semantic context of the select statement being parsed.
	ctx *selectContext
}

// selectContext accumulates the semantic state of one select statement.
type selectContext struct {
	table  string
	schema *provider.Schema // nil for table-less selects

	fields           []string
	fieldSet         map[string]bool
	aliases          map[string]string
	hidden           []string
	hiddenSet        map[string]bool
	aggregations     map[string]ast.AggregateCall
	aggregationTypes map[string]types.DataType
	projectionTypes  map[string]types.DataType
	liftCounter      int

	// allowAggregates is true while parsing SELECT projections or HAVING.
	allowAggregates bool
}

func newSelectContext() *selectContext {
	return &selectContext{
		fieldSet:         map[string]bool{},
		aliases:          map[string]string{},
		hiddenSet:        map[string]bool{},
		aggregations:     map[string]ast.AggregateCall{},
		aggregationTypes: map[string]types.DataType{},
		projectionTypes:  map[string]types.DataType{},
	}
}

// New creates a parser over a token sequence.
func New(tokens []token.Item, schemas SchemaProvider, registry *function.Registry, env *environment.Environment) *Parser {
	return &Parser{
		tokens:   tokens,
		schemas:  schemas,
		registry: registry,
		env:      env,
		ctx:      newSelectContext(),
	}
}

// ParseScript tokenizes and parses a multi-statement script. Any lexical,
// syntactic or semantic violation halts parsing with a single diagnostic.
func ParseScript(query string, schemas SchemaProvider, registry *function.Registry, env *environment.Environment) ([]ast.Query, *diagnostic.Diagnostic) {
	tokens, diag := lexer.Tokenize(query)
	if diag != nil {
		return nil, diag
	}
	return New(tokens, schemas, registry, env).ParseAll()
}

// ParseAll parses statements separated by semicolons until EOF.
func (p *Parser) ParseAll() ([]ast.Query, *diagnostic.Diagnostic) {
	var queries []ast.Query
	for !p.curIs(token.EOF) {
		for p.curIs(token.SEMICOLON) {
			p.advance()
		}
		if p.curIs(token.EOF) {
			break
		}
		query, diag := p.parseQuery()
		if diag != nil {
			return nil, diag
		}
		queries = append(queries, query)
		if !p.curIs(token.SEMICOLON) && !p.curIs(token.EOF) {
			return nil, diagnostic.Errorf("Unexpected token `%s` after statement", p.cur().Value).
				AddHelp("Separate statements with ;").
				WithLocation(p.cur().Loc)
		}
	}
	return queries, nil
}

// parseQuery dispatches on the statement's first token.
func (p *Parser) parseQuery() (ast.Query, *diagnostic.Diagnostic) {
	switch p.cur().Type {
	case token.SELECT:
		return p.parseSelectQuery()
	case token.DO:
		return p.parseDo()
	case token.SET:
		return p.parseSet()
	case token.DESCRIBE:
		return p.parseDescribe()
	case token.SHOW:
		return p.parseShow()
	default:
		return nil, diagnostic.Errorf("Unexpected token `%s` at start of statement", p.cur().Value).
			AddHelp("Expect SELECT, DO, SET, DESCRIBE or SHOW").
			WithLocation(p.cur().Loc)
	}
}

// parseDo parses `DO expr`: the expression is evaluated and discarded.
func (p *Parser) parseDo() (ast.Query, *diagnostic.Diagnostic) {
	p.advance()
	p.ctx = newSelectContext()
	expr, diag := p.parseExpression()
	if diag != nil {
		return nil, diag
	}
	return &ast.DoStatement{Expr: expr}, nil
}

// parseSet parses `SET @name := expr` and records the variable's static
// type so later statements in the script can reference it.
func (p *Parser) parseSet() (ast.Query, *diagnostic.Diagnostic) {
	p.advance()
	if !p.curIs(token.GLOBALVAR) {
		return nil, diagnostic.Error("Expect global variable name after SET").
			AddHelp("Global variable names start with @").
			WithLocation(p.cur().Loc)
	}
	name := p.cur().Value
	p.advance()
	if !p.curIs(token.COLONEQ) {
		return nil, diagnostic.Error("Expect := after global variable name").
			WithLocation(p.cur().Loc)
	}
	p.advance()
	p.ctx = newSelectContext()
	expr, diag := p.parseExpression()
	if diag != nil {
		return nil, diag
	}
	p.env.DefineGlobalType(name, expr.Type())
	return &ast.SetStatement{Name: name, Value: expr}, nil
}

// parseDescribe parses `DESCRIBE table`.
func (p *Parser) parseDescribe() (ast.Query, *diagnostic.Diagnostic) {
	p.advance()
	if !p.curIs(token.SYMBOL) {
		return nil, diagnostic.Error("Expect table name after DESCRIBE").
			WithLocation(p.cur().Loc)
	}
	table := p.cur().Value
	if _, ok := p.schemas.Schema(table); !ok {
		return nil, diagnostic.Errorf("Unknown table name `%s`", table).
			AddHelp("Run SHOW TABLES to list the available tables").
			WithLocation(p.cur().Loc)
	}
	p.advance()
	return &ast.DescribeStatement{Table: table}, nil
}

// parseShow parses `SHOW TABLES`.
func (p *Parser) parseShow() (ast.Query, *diagnostic.Diagnostic) {
	p.advance()
	if !p.curIs(token.SYMBOL) || p.cur().Value != "tables" {
		return nil, diagnostic.Error("Expect TABLES after SHOW").
			WithLocation(p.cur().Loc)
	}
	p.advance()
	return &ast.ShowTablesStatement{}, nil
}

// Token navigation.

func (p *Parser) cur() token.Item {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	end := 0
	if len(p.tokens) > 0 {
		end = p.tokens[len(p.tokens)-1].Loc.End
	}
	return token.Item{Type: token.EOF, Loc: token.Location{Start: end, End: end}}
}

func (p *Parser) peek() token.Item {
	p.pos++
	item := p.cur()
	p.pos--
	return item
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *Parser) curIs(t token.Token) bool {
	return p.cur().Type == t
}

func (p *Parser) peekIs(t token.Token) bool {
	return p.peek().Type == t
}

func (p *Parser) expect(t token.Token, what string) *diagnostic.Diagnostic {
	if p.curIs(t) {
		p.advance()
		return nil
	}
	return diagnostic.Errorf("Expect %s but got `%s`", what, p.cur().Value).
		WithLocation(p.cur().Loc)
}

// resolveSymbolType resolves a column reference against the current
// context: table schema first, then lifted aggregation aliases, then
// projection output names.
func (p *Parser) resolveSymbolType(name string, loc token.Location) (types.DataType, *diagnostic.Diagnostic) {
	if p.ctx.schema != nil {
		if t, ok := p.ctx.schema.Types[name]; ok {
			return t, nil
		}
	}
	if t, ok := p.ctx.aggregationTypes[name]; ok {
		return t, nil
	}
	if t, ok := p.ctx.projectionTypes[name]; ok {
		return t, nil
	}
	diag := diagnostic.Errorf("Unknown column name `%s`", name).WithLocation(loc)
	if p.ctx.table != "" {
		diag.AddHelp("Run DESCRIBE " + p.ctx.table + " to list its columns")
	}
	return types.DataType{}, diag
}

// markFieldUsed records a raw schema column referenced by any expression so
// the provider fetches it. parseSelectQuery keeps the columns recorded during
// the select list as fields and turns the later ones into hidden selections.
func (p *Parser) markFieldUsed(name string) {
	if p.ctx.schema == nil {
		return
	}
	if _, ok := p.ctx.schema.Types[name]; !ok {
		return
	}
	if !p.ctx.fieldSet[name] {
		p.ctx.fieldSet[name] = true
		p.ctx.fields = append(p.ctx.fields, name)
	}
}

// markHidden records a schema column needed by WHERE, GROUP BY, HAVING or
// ORDER BY that is not user-projected; it is fetched but stripped from the
// final result.
func (p *Parser) markHidden(name string) {
	if p.ctx.schema == nil {
		return
	}
	if _, ok := p.ctx.schema.Types[name]; !ok {
		return
	}
	if p.ctx.fieldSet[name] || p.ctx.hiddenSet[name] {
		return
	}
	p.ctx.hiddenSet[name] = true
	p.ctx.hidden = append(p.ctx.hidden, name)
}
