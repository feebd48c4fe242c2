package parser

import (
	"fmt"
	"strconv"

	"github.com/gitql-go/gitql/ast"
	"github.com/gitql-go/gitql/diagnostic"
	"github.com/gitql-go/gitql/format"
	"github.com/gitql-go/gitql/token"
	"github.com/gitql-go/gitql/types"
	"github.com/gitql-go/gitql/visitor"
)

// parseSelectQuery parses a full select statement with all its clauses.
func (p *Parser) parseSelectQuery() (ast.Query, *diagnostic.Diagnostic) {
	p.advance() // SELECT
	p.ctx = newSelectContext()

	// The select list is validated against the table schema, so the table
	// name is resolved before the projections are parsed.
	if diag := p.prescanTable(); diag != nil {
		return nil, diag
	}

	query := &ast.SelectQuery{Table: p.ctx.table}

	if p.curIs(token.DISTINCT) {
		query.Distinct = true
		p.advance()
	}

	if diag := p.parseSelectList(query); diag != nil {
		return nil, diag
	}
	// Columns recorded while parsing the select list are the projected
	// fields; columns first referenced by later clauses are hidden.
	projectedFields := len(p.ctx.fields)

	if p.curIs(token.FROM) {
		p.advance()
		if diag := p.expect(token.SYMBOL, "table name after FROM"); diag != nil {
			return nil, diag
		}
	}

	if p.curIs(token.WHERE) {
		loc := p.cur().Loc
		p.advance()
		condition, diag := p.parseExpression()
		if diag != nil {
			return nil, diag
		}
		if diag := requireBoolean(condition, loc); diag != nil {
			return nil, diag
		}
		for _, name := range visitor.CollectSymbols(condition) {
			p.markHidden(name)
		}
		query.Where = &ast.WhereStatement{Condition: condition}
	}

	if p.curIs(token.GROUP) {
		groupBy, diag := p.parseGroupBy()
		if diag != nil {
			return nil, diag
		}
		query.GroupBy = groupBy
	}

	if p.curIs(token.HAVING) {
		loc := p.cur().Loc
		p.advance()
		p.ctx.allowAggregates = true
		condition, diag := p.parseExpression()
		p.ctx.allowAggregates = false
		if diag != nil {
			return nil, diag
		}
		condition = p.liftAggregates(condition)
		if diag := requireBoolean(condition, loc); diag != nil {
			return nil, diag
		}
		for _, name := range visitor.CollectSymbols(condition) {
			p.markHidden(name)
		}
		query.Having = &ast.HavingStatement{Condition: condition}
	}

	if p.curIs(token.ORDER) {
		orderBy, diag := p.parseOrderBy()
		if diag != nil {
			return nil, diag
		}
		query.OrderBy = orderBy
	}

	if p.curIs(token.LIMIT) {
		p.advance()
		count, diag := p.parseNonNegativeInt("LIMIT")
		if diag != nil {
			return nil, diag
		}
		query.Limit = &ast.LimitStatement{Count: count}
	}

	if p.curIs(token.OFFSET) {
		p.advance()
		count, diag := p.parseNonNegativeInt("OFFSET")
		if diag != nil {
			return nil, diag
		}
		query.Offset = &ast.OffsetStatement{Count: count}
	}

	if p.curIs(token.INTO) {
		into, diag := p.parseInto()
		if diag != nil {
			return nil, diag
		}
		query.Into = into
	}

	query.Fields = p.ctx.fields[:projectedFields]
	query.AliasTable = p.ctx.aliases
	hidden := p.ctx.hidden
	for _, name := range p.ctx.fields[projectedFields:] {
		if !p.ctx.hiddenSet[name] {
			hidden = append(hidden, name)
		}
	}
	query.HiddenSelections = hidden
	query.Aggregations = p.ctx.aggregations
	query.SelectAggregationsOnly = selectAggregationsOnly(query.Projections, p.ctx)
	return query, nil
}

// prescanTable finds the FROM table ahead of the select list and resolves
// its schema, so projections can be checked as they are parsed.
func (p *Parser) prescanTable() *diagnostic.Diagnostic {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
		case token.SEMICOLON:
			return nil
		case token.FROM:
			if depth != 0 {
				continue
			}
			if i+1 >= len(p.tokens) || p.tokens[i+1].Type != token.SYMBOL {
				return diagnostic.Error("Expect table name after FROM").
					WithLocation(p.tokens[i].Loc)
			}
			table := p.tokens[i+1].Value
			schema, ok := p.schemas.Schema(table)
			if !ok {
				return diagnostic.Errorf("Unknown table name `%s`", table).
					AddHelp("Run SHOW TABLES to list the available tables").
					WithLocation(p.tokens[i+1].Loc)
			}
			p.ctx.table = table
			p.ctx.schema = schema
			return nil
		}
	}
	return nil
}

// parseSelectList parses `*` or the projection list, lifting aggregate
// calls into synthetic symbols and recording aliases and fetched fields.
func (p *Parser) parseSelectList(query *ast.SelectQuery) *diagnostic.Diagnostic {
	if p.curIs(token.ASTERISK) {
		if p.ctx.schema == nil {
			return diagnostic.Error("SELECT * requires a FROM table").
				WithLocation(p.cur().Loc)
		}
		p.advance()
		for _, field := range p.ctx.schema.Fields {
			fieldType := p.ctx.schema.Types[field]
			p.markFieldUsed(field)
			p.ctx.projectionTypes[field] = fieldType
			query.Projections = append(query.Projections, ast.Projection{
				Name: field,
				Expr: &ast.SymbolExpr{Name: field, ValueType: fieldType},
			})
		}
		return nil
	}

	seenTitles := map[string]bool{}
	for {
		p.ctx.allowAggregates = true
		expr, diag := p.parseExpression()
		p.ctx.allowAggregates = false
		if diag != nil {
			return diag
		}

		alias := ""
		var aliasLoc token.Location
		if p.curIs(token.AS) {
			p.advance()
			if !p.curIs(token.SYMBOL) {
				return diagnostic.Error("Expect alias name after AS").
					WithLocation(p.cur().Loc)
			}
			alias = p.cur().Value
			aliasLoc = p.cur().Loc
			p.advance()
		}

		title, projected, diag := p.buildProjection(expr, alias, aliasLoc)
		if diag != nil {
			return diag
		}
		if seenTitles[title] {
			return diagnostic.Errorf("Duplicate projection name `%s`", title).
				AddHelp("Rename one of the projections with AS").
				WithLocation(aliasLoc)
		}
		seenTitles[title] = true
		p.ctx.projectionTypes[title] = projected.Type()
		query.Projections = append(query.Projections, ast.Projection{Name: title, Expr: projected})

		if !p.curIs(token.COMMA) {
			return nil
		}
		p.advance()
	}
}

// buildProjection derives the output title for one projection and lifts
// any aggregate calls it contains.
func (p *Parser) buildProjection(expr ast.Expr, alias string, aliasLoc token.Location) (string, ast.Expr, *diagnostic.Diagnostic) {
	// A projection that is exactly one aggregate call takes the alias (or
	// the function name) as its registered aggregation alias, so the title
	// and the computed column coincide.
	if call, ok := expr.(*ast.CallExpr); ok && p.registry.IsAggregation(call.FunctionName) {
		title := alias
		if title == "" {
			title = call.FunctionName
		}
		column := call.Arguments[0].(*ast.SymbolExpr).Name
		p.registerAggregation(title, call.FunctionName, column, call.ReturnType)
		return title, &ast.SymbolExpr{Name: title, ValueType: call.ReturnType}, nil
	}

	title := alias
	if symbol, ok := expr.(*ast.SymbolExpr); ok {
		if title == "" {
			title = symbol.Name
		} else {
			if _, exists := p.ctx.aliases[symbol.Name]; exists && p.ctx.aliases[symbol.Name] != title {
				return "", nil, diagnostic.Errorf("Column `%s` already has a different alias", symbol.Name).
					WithLocation(aliasLoc)
			}
			p.ctx.aliases[symbol.Name] = title
		}
		return title, expr, nil
	}

	if title == "" {
		title = format.String(expr)
	}
	return title, p.liftAggregates(expr), nil
}

// liftAggregates replaces aggregate call sites with synthetic symbol
// references and registers the calls into the aggregation map. Synthetic
// aliases derive deterministically from the function name, the argument
// column and an ordinal, so re-parsing the same query yields identical
// internal names.
func (p *Parser) liftAggregates(expr ast.Expr) ast.Expr {
	return visitor.Rewrite(expr, func(e ast.Expr) ast.Expr {
		call, ok := e.(*ast.CallExpr)
		if !ok || !p.registry.IsAggregation(call.FunctionName) {
			return e
		}
		column := call.Arguments[0].(*ast.SymbolExpr).Name
		alias := fmt.Sprintf("_agg_%s_%s_%d", call.FunctionName, column, p.ctx.liftCounter)
		p.ctx.liftCounter++
		p.registerAggregation(alias, call.FunctionName, column, call.ReturnType)
		return &ast.SymbolExpr{Name: alias, ValueType: call.ReturnType}
	})
}

func (p *Parser) registerAggregation(alias, functionName, column string, result types.DataType) {
	p.ctx.aggregations[alias] = ast.AggregateCall{FunctionName: functionName, Argument: column}
	p.ctx.aggregationTypes[alias] = result
}

// parseGroupBy parses `GROUP BY id_list [WITH ROLLUP]`.
func (p *Parser) parseGroupBy() (*ast.GroupByStatement, *diagnostic.Diagnostic) {
	p.advance() // GROUP
	if diag := p.expect(token.BY, "BY after GROUP"); diag != nil {
		return nil, diag
	}
	groupBy := &ast.GroupByStatement{}
	for {
		if !p.curIs(token.SYMBOL) {
			return nil, diagnostic.Error("Expect column name in GROUP BY").
				WithLocation(p.cur().Loc)
		}
		name := p.cur().Value
		if _, diag := p.resolveSymbolType(name, p.cur().Loc); diag != nil {
			return nil, diag
		}
		p.markHidden(name)
		groupBy.FieldNames = append(groupBy.FieldNames, name)
		p.advance()
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	if p.curIs(token.WITH) {
		p.advance()
		if diag := p.expect(token.ROLLUP, "ROLLUP after WITH"); diag != nil {
			return nil, diag
		}
		groupBy.WithRollup = true
	}
	return groupBy, nil
}

// parseOrderBy parses `ORDER BY order_list` with per-key direction.
func (p *Parser) parseOrderBy() (*ast.OrderByStatement, *diagnostic.Diagnostic) {
	p.advance() // ORDER
	if diag := p.expect(token.BY, "BY after ORDER"); diag != nil {
		return nil, diag
	}
	orderBy := &ast.OrderByStatement{}
	for {
		expr, diag := p.parseExpression()
		if diag != nil {
			return nil, diag
		}
		ascending := true
		if p.curIs(token.ASC) {
			p.advance()
		} else if p.curIs(token.DESC) {
			ascending = false
			p.advance()
		}
		for _, name := range visitor.CollectSymbols(expr) {
			p.markHidden(name)
		}
		orderBy.Arguments = append(orderBy.Arguments, expr)
		orderBy.Ascending = append(orderBy.Ascending, ascending)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	return orderBy, nil
}

// parseNonNegativeInt parses the integer argument of LIMIT or OFFSET.
func (p *Parser) parseNonNegativeInt(clause string) (int, *diagnostic.Diagnostic) {
	if !p.curIs(token.INT) {
		return 0, diagnostic.Errorf("Expect a non-negative integer after %s", clause).
			WithLocation(p.cur().Loc)
	}
	n, err := strconv.Atoi(p.cur().Value)
	if err != nil || n < 0 {
		return 0, diagnostic.Errorf("Expect a non-negative integer after %s", clause).
			WithLocation(p.cur().Loc)
	}
	p.advance()
	return n, nil
}

// parseInto parses `INTO OUTFILE|DUMPFILE 'path'` with optional FIELDS and
// LINES options.
func (p *Parser) parseInto() (*ast.IntoStatement, *diagnostic.Diagnostic) {
	p.advance() // INTO
	into := &ast.IntoStatement{FieldsTerminatedBy: ",", LinesTerminatedBy: "\n"}
	switch p.cur().Type {
	case token.OUTFILE:
	case token.DUMPFILE:
		into.IsDump = true
	default:
		return nil, diagnostic.Error("Expect OUTFILE or DUMPFILE after INTO").
			WithLocation(p.cur().Loc)
	}
	p.advance()
	if !p.curIs(token.STRING) {
		return nil, diagnostic.Error("Expect file path string after OUTFILE or DUMPFILE").
			WithLocation(p.cur().Loc)
	}
	into.Path = p.cur().Value
	p.advance()

	for {
		switch p.cur().Type {
		case token.FIELDS:
			p.advance()
			if diag := p.expect(token.TERMINATED, "TERMINATED after FIELDS"); diag != nil {
				return nil, diag
			}
			if diag := p.expect(token.BY, "BY after TERMINATED"); diag != nil {
				return nil, diag
			}
			if !p.curIs(token.STRING) {
				return nil, diagnostic.Error("Expect separator string after TERMINATED BY").
					WithLocation(p.cur().Loc)
			}
			into.FieldsTerminatedBy = p.cur().Value
			p.advance()
			if p.curIs(token.ENCLOSED) {
				p.advance()
				if diag := p.expect(token.BY, "BY after ENCLOSED"); diag != nil {
					return nil, diag
				}
				if !p.curIs(token.STRING) {
					return nil, diagnostic.Error("Expect enclosing string after ENCLOSED BY").
						WithLocation(p.cur().Loc)
				}
				into.EnclosedBy = p.cur().Value
				p.advance()
			}
		case token.LINES:
			p.advance()
			if diag := p.expect(token.TERMINATED, "TERMINATED after LINES"); diag != nil {
				return nil, diag
			}
			if diag := p.expect(token.BY, "BY after TERMINATED"); diag != nil {
				return nil, diag
			}
			if !p.curIs(token.STRING) {
				return nil, diagnostic.Error("Expect separator string after TERMINATED BY").
					WithLocation(p.cur().Loc)
			}
			into.LinesTerminatedBy = p.cur().Value
			p.advance()
		default:
			return into, nil
		}
	}
}

// selectAggregationsOnly reports whether every non-literal projection is a
// lifted aggregate alias.
func selectAggregationsOnly(projections []ast.Projection, ctx *selectContext) bool {
	if len(ctx.aggregations) == 0 {
		return false
	}
	for _, projection := range projections {
		switch e := projection.Expr.(type) {
		case *ast.NumberExpr, *ast.StringExpr, *ast.BooleanExpr, *ast.NullExpr:
		case *ast.SymbolExpr:
			if _, ok := ctx.aggregations[e.Name]; !ok {
				return false
			}
		default:
			return false
		}
	}
	return true
}
