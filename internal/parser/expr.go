package parser

import (
	"fmt"

	"pulse/internal/ast"
	"pulse/internal/lexer"
)

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

// assignment is right-associative. Targets must be identifiers or member
// expressions.
func (p *Parser) assignment() ast.Expr {
	target := p.ternary()
	if p.match(lexer.TokenAssign, lexer.TokenPlusAssign, lexer.TokenMinusAssign) {
		op := p.previous()
		switch target.(type) {
		case *ast.Identifier, *ast.MemberExpr:
		default:
			start := target.GetSpan().Start
			p.failAt(lexer.Position{Line: start.Line, Col: start.Col}, op.Lexeme, "invalid assignment target")
		}
		p.skipNewlines()
		value := p.assignment()
		return &ast.AssignExpr{Op: op.Lexeme, Target: target, Value: value, Span: spanOf(target, value)}
	}
	return target
}

func (p *Parser) ternary() ast.Expr {
	test := p.logicalOr()
	if !p.match(lexer.TokenQuestion) {
		return test
	}
	p.skipNewlines()
	cons := p.assignment()
	p.skipNewlines()
	p.consume(lexer.TokenColon, "expected ':' in conditional expression")
	p.skipNewlines()
	alt := p.ternary()
	return &ast.ConditionalExpr{Test: test, Consequent: cons, Alternate: alt, Span: spanOf(test, alt)}
}

func (p *Parser) logicalOr() ast.Expr {
	left := p.logicalAnd()
	for p.match(lexer.TokenOrOr) {
		p.skipNewlines()
		right := p.logicalAnd()
		left = &ast.LogicalExpr{Op: "||", Left: left, Right: right, Span: spanOf(left, right)}
	}
	return left
}

func (p *Parser) logicalAnd() ast.Expr {
	left := p.equality()
	for p.match(lexer.TokenAndAnd) {
		p.skipNewlines()
		right := p.equality()
		left = &ast.LogicalExpr{Op: "&&", Left: left, Right: right, Span: spanOf(left, right)}
	}
	return left
}

func (p *Parser) equality() ast.Expr {
	return p.binary(p.comparison, lexer.TokenEqEq, lexer.TokenNotEq)
}

// comparison treats TokenTagOpen as less-than: in binary position '<'
// cannot start a template element.
func (p *Parser) comparison() ast.Expr {
	return p.binary(p.additive, lexer.TokenTagOpen, lexer.TokenLessEq, lexer.TokenGreater, lexer.TokenGreaterEq)
}

func (p *Parser) additive() ast.Expr {
	return p.binary(p.multiplicative, lexer.TokenPlus, lexer.TokenMinus)
}

func (p *Parser) multiplicative() ast.Expr {
	return p.binary(p.unary, lexer.TokenStar, lexer.TokenSlash, lexer.TokenPercent)
}

func (p *Parser) binary(operand func() ast.Expr, ops ...lexer.TokenKind) ast.Expr {
	left := operand()
	for p.match(ops...) {
		op := p.previous().Lexeme
		p.skipNewlines()
		right := operand()
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Span: spanOf(left, right)}
	}
	return left
}

func (p *Parser) unary() ast.Expr {
	switch p.peek().Kind {
	case lexer.TokenBang, lexer.TokenMinus, lexer.TokenPlus:
		op := p.advance()
		operand := p.unary()
		return &ast.UnaryExpr{Op: op.Lexeme, Operand: operand, Span: span(op.Pos, p.end())}
	case lexer.TokenAwait:
		start := p.advance().Pos
		arg := p.unary()
		return &ast.AwaitExpr{Argument: arg, Span: span(start, p.end())}
	}
	return p.postfix()
}

func (p *Parser) postfix() ast.Expr {
	expr := p.primary()
	for {
		switch p.peek().Kind {
		case lexer.TokenLParen:
			p.advance()
			args := p.arguments()
			expr = &ast.CallExpr{Callee: expr, Args: args, Span: span(toLex(expr.GetSpan().Start), p.end())}
		case lexer.TokenDot:
			p.advance()
			prop := p.name("expected property name after '.'")
			id := &ast.Identifier{Name: prop.Lexeme, Span: span(prop.Pos, p.end())}
			expr = &ast.MemberExpr{Object: expr, Property: id, Span: spanOf(expr, id)}
		case lexer.TokenLBracket:
			p.advance()
			p.skipNewlines()
			index := p.expression()
			p.skipNewlines()
			p.consume(lexer.TokenRBracket, "expected ']'")
			expr = &ast.MemberExpr{Object: expr, Property: index, Computed: true, Span: span(toLex(expr.GetSpan().Start), p.end())}
		default:
			return expr
		}
	}
}

// arguments parses a call argument list after the opening parenthesis.
func (p *Parser) arguments() []ast.Expr {
	var args []ast.Expr
	p.skipNewlines()
	for !p.check(lexer.TokenRParen) {
		args = append(args, p.expression())
		p.skipNewlines()
		if !p.match(lexer.TokenComma) {
			break
		}
		p.skipNewlines()
	}
	p.consume(lexer.TokenRParen, "expected ')' after arguments")
	return args
}

func (p *Parser) primary() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case lexer.TokenNumber:
		p.advance()
		return &ast.Literal{Kind: ast.LitNumber, Raw: tok.Lexeme, Num: tok.Literal.(float64), Span: span(tok.Pos, p.end())}
	case lexer.TokenString:
		p.advance()
		return &ast.Literal{Kind: ast.LitString, Raw: tok.Lexeme, Str: tok.Literal.(string), Span: span(tok.Pos, p.end())}
	case lexer.TokenBoolean:
		p.advance()
		lit := &ast.Literal{Raw: tok.Lexeme, Span: span(tok.Pos, p.end())}
		switch tok.Lexeme {
		case "true", "false":
			lit.Kind = ast.LitBool
			lit.Bool = tok.Lexeme == "true"
		case "null":
			lit.Kind = ast.LitNull
		default:
			lit.Kind = ast.LitUndefined
		}
		return lit
	case lexer.TokenIdent:
		if p.peekAt(1).Kind == lexer.TokenArrow {
			return p.arrow(false)
		}
		p.advance()
		return &ast.Identifier{Name: tok.Lexeme, Span: span(tok.Pos, p.end())}
	case lexer.TokenAsync:
		next := p.peekAt(1)
		if next.Kind == lexer.TokenIdent || next.Kind == lexer.TokenLParen {
			p.advance()
			return p.arrow(true)
		}
	case lexer.TokenLParen:
		if p.arrowAhead() {
			return p.arrow(false)
		}
		p.advance()
		p.skipNewlines()
		expr := p.expression()
		p.skipNewlines()
		p.consume(lexer.TokenRParen, "expected ')'")
		return expr
	case lexer.TokenLBracket:
		return p.arrayLiteral()
	case lexer.TokenLBrace:
		return p.objectLiteral()
	case lexer.TokenTagOpen:
		return p.element()
	}
	p.fail(fmt.Sprintf("unexpected token %s", tok))
	return nil
}

// arrowAhead reports whether the parenthesis at the cursor closes into
// an arrow function's parameter list.
func (p *Parser) arrowAhead() bool {
	depth := 0
	for i := p.current; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case lexer.TokenLParen:
			depth++
		case lexer.TokenRParen:
			depth--
			if depth == 0 {
				return i+1 < len(p.toks) && p.toks[i+1].Kind == lexer.TokenArrow
			}
		case lexer.TokenEOF:
			return false
		}
	}
	return false
}

func (p *Parser) arrow(async bool) ast.Expr {
	start := p.peek().Pos
	if async {
		start = p.previous().Pos
	}
	var params []*ast.Param
	if p.check(lexer.TokenIdent) {
		tok := p.advance()
		params = []*ast.Param{{Name: tok.Lexeme, Span: span(tok.Pos, p.end())}}
	} else {
		params = p.params()
	}
	p.consume(lexer.TokenArrow, "expected '=>'")
	p.skipNewlines()
	fn := &ast.ArrowFunc{Params: params, Async: async}
	if p.check(lexer.TokenLBrace) {
		fn.Body = p.block()
	} else {
		fn.Expr = p.assignment()
	}
	fn.Span = span(start, p.end())
	return fn
}

func (p *Parser) arrayLiteral() ast.Expr {
	start := p.consume(lexer.TokenLBracket, "expected '['").Pos
	var elems []ast.Expr
	p.skipNewlines()
	for !p.check(lexer.TokenRBracket) {
		elems = append(elems, p.expression())
		p.skipNewlines()
		if !p.match(lexer.TokenComma) {
			break
		}
		p.skipNewlines()
	}
	p.consume(lexer.TokenRBracket, "expected ']' after array elements")
	return &ast.ArrayExpr{Elements: elems, Span: span(start, p.end())}
}

func (p *Parser) objectLiteral() ast.Expr {
	start := p.consume(lexer.TokenLBrace, "expected '{'").Pos
	var props []*ast.Property
	p.skipNewlines()
	for !p.check(lexer.TokenRBrace) {
		keyTok := p.peek()
		prop := &ast.Property{}
		switch {
		case keyTok.Kind == lexer.TokenString:
			prop.Key = keyTok.Literal.(string)
			prop.Quoted = true
		case keyTok.Kind == lexer.TokenNumber:
			prop.Key = keyTok.Lexeme
		case keyTok.IsName():
			prop.Key = keyTok.Lexeme
		default:
			p.fail(fmt.Sprintf("expected property key, found %s", keyTok))
		}
		p.advance()
		if p.match(lexer.TokenColon) {
			p.skipNewlines()
			prop.Value = p.expression()
		} else if keyTok.Kind == lexer.TokenIdent {
			prop.Shorthand = true
			prop.Value = &ast.Identifier{Name: keyTok.Lexeme, Span: span(keyTok.Pos, p.end())}
		} else {
			p.fail(fmt.Sprintf("expected ':' after property key, found %s", p.peek()))
		}
		prop.Span = span(keyTok.Pos, p.end())
		props = append(props, prop)
		p.skipNewlines()
		if !p.match(lexer.TokenComma) {
			break
		}
		p.skipNewlines()
	}
	p.consume(lexer.TokenRBrace, "expected '}' after object properties")
	return &ast.ObjectExpr{Properties: props, Span: span(start, p.end())}
}

func spanOf(first, last ast.Node) ast.Span {
	return ast.Span{Start: first.GetSpan().Start, End: last.GetSpan().End}
}

func toLex(p ast.Position) lexer.Position {
	return lexer.Position{Line: p.Line, Col: p.Col}
}
