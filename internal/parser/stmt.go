package parser

import (
	"pulse/internal/ast"
	"pulse/internal/lexer"
)

func (p *Parser) statement() ast.Stmt {
	switch p.peek().Kind {
	case lexer.TokenLBrace:
		return p.block()
	case lexer.TokenIf:
		return p.ifStmt()
	case lexer.TokenWhile:
		return p.whileStmt()
	case lexer.TokenFor:
		return p.forStmt()
	case lexer.TokenReturn:
		return p.returnStmt()
	case lexer.TokenTry:
		return p.tryStmt()
	default:
		start := p.peek().Pos
		expr := p.expression()
		p.endStatement()
		return &ast.ExprStmt{Expr: expr, Span: span(start, p.end())}
	}
}

func (p *Parser) block() *ast.BlockStmt {
	p.skipNewlines()
	start := p.consume(lexer.TokenLBrace, "expected '{'").Pos
	var stmts []ast.Stmt
	for {
		p.skipSeparators()
		if p.check(lexer.TokenRBrace) || p.isAtEnd() {
			break
		}
		stmts = append(stmts, p.statement())
	}
	p.consume(lexer.TokenRBrace, "expected '}'")
	return &ast.BlockStmt{Stmts: stmts, Span: span(start, p.end())}
}

// body parses a loop or branch body: a block or a single statement.
func (p *Parser) body() ast.Stmt {
	p.skipNewlines()
	if p.check(lexer.TokenLBrace) {
		return p.block()
	}
	return p.statement()
}

func (p *Parser) condition(keyword string) ast.Expr {
	p.consume(lexer.TokenLParen, "expected '(' after "+keyword)
	p.skipNewlines()
	cond := p.expression()
	p.skipNewlines()
	p.consume(lexer.TokenRParen, "expected ')' after "+keyword+" condition")
	return cond
}

func (p *Parser) ifStmt() ast.Stmt {
	start := p.consume(lexer.TokenIf, "expected if").Pos
	cond := p.condition("if")
	then := p.body()
	var els ast.Stmt
	if p.checkAfterNewlines(lexer.TokenElse) {
		p.advance()
		if p.check(lexer.TokenIf) {
			els = p.ifStmt()
		} else {
			els = p.body()
		}
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: els, Span: span(start, p.end())}
}

func (p *Parser) whileStmt() ast.Stmt {
	start := p.consume(lexer.TokenWhile, "expected while").Pos
	cond := p.condition("while")
	body := p.body()
	return &ast.WhileStmt{Cond: cond, Body: body, Span: span(start, p.end())}
}

func (p *Parser) forStmt() ast.Stmt {
	start := p.consume(lexer.TokenFor, "expected for").Pos
	p.consume(lexer.TokenLParen, "expected '(' after for")
	s := &ast.ForStmt{}
	p.skipNewlines()
	if !p.check(lexer.TokenSemicolon) {
		s.Init = p.expression()
	}
	p.consume(lexer.TokenSemicolon, "expected ';' after loop initializer")
	p.skipNewlines()
	if !p.check(lexer.TokenSemicolon) {
		s.Test = p.expression()
	}
	p.consume(lexer.TokenSemicolon, "expected ';' after loop condition")
	p.skipNewlines()
	if !p.check(lexer.TokenRParen) {
		s.Update = p.expression()
	}
	p.skipNewlines()
	p.consume(lexer.TokenRParen, "expected ')' after for clauses")
	s.Body = p.body()
	s.Span = span(start, p.end())
	return s
}

func (p *Parser) returnStmt() ast.Stmt {
	start := p.consume(lexer.TokenReturn, "expected return").Pos
	var value ast.Expr
	switch p.peek().Kind {
	case lexer.TokenNewline, lexer.TokenSemicolon, lexer.TokenRBrace, lexer.TokenEOF:
	default:
		value = p.expression()
	}
	p.endStatement()
	return &ast.ReturnStmt{Value: value, Span: span(start, p.end())}
}

func (p *Parser) tryStmt() ast.Stmt {
	start := p.consume(lexer.TokenTry, "expected try").Pos
	s := &ast.TryStmt{Block: p.block()}
	if p.checkAfterNewlines(lexer.TokenCatch) {
		catchStart := p.advance().Pos
		clause := &ast.CatchClause{}
		if p.match(lexer.TokenLParen) {
			clause.Param = p.consume(lexer.TokenIdent, "expected catch parameter").Lexeme
			p.consume(lexer.TokenRParen, "expected ')' after catch parameter")
		}
		clause.Body = p.block()
		clause.Span = span(catchStart, p.end())
		s.Handler = clause
	}
	if p.checkAfterNewlines(lexer.TokenFinally) {
		p.advance()
		s.Finalizer = p.block()
	}
	if s.Handler == nil && s.Finalizer == nil {
		p.fail("expected catch or finally after try block")
	}
	s.Span = span(start, p.end())
	return s
}
