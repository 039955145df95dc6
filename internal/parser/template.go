package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"pulse/internal/ast"
	"pulse/internal/lexer"
)

// element parses <tag attrs>children</tag> or <tag attrs />.
func (p *Parser) element() ast.Expr {
	start := p.consume(lexer.TokenTagOpen, "expected '<'").Pos
	name := p.tagName()
	open := &ast.OpeningTag{Name: name}
	for {
		p.skipNewlines()
		if p.check(lexer.TokenGreater) || p.check(lexer.TokenSelfClose) || p.isAtEnd() {
			break
		}
		open.Attributes = append(open.Attributes, p.attribute())
	}
	if p.match(lexer.TokenSelfClose) {
		open.SelfClosing = true
		open.Span = span(start, p.end())
		return &ast.Element{Opening: open, Span: open.Span}
	}
	p.consume(lexer.TokenGreater, fmt.Sprintf("expected '>' to close <%s>", name))
	open.Span = span(start, p.end())

	children := p.children(name)

	closeTok := p.consume(lexer.TokenTagClose, fmt.Sprintf("expected </%s>", name))
	closeName := p.tagName()
	p.consume(lexer.TokenGreater, fmt.Sprintf("expected '>' to close </%s>", closeName))
	if closeName != name {
		p.failAt(closeTok.Pos, closeName, fmt.Sprintf("mismatched closing tag: <%s> is closed by </%s>", name, closeName))
	}
	closing := &ast.ClosingTag{Name: closeName, Span: span(closeTok.Pos, p.end())}
	return &ast.Element{Opening: open, Children: children, Closing: closing, Span: span(start, p.end())}
}

func (p *Parser) tagName() string {
	return p.name("expected tag name").Lexeme
}

// attribute parses name, name="text" or name={expr}. Names may start with
// '@' for event bindings and may contain dashes (data-id).
func (p *Parser) attribute() *ast.Attribute {
	start := p.peek().Pos
	var b strings.Builder
	if p.match(lexer.TokenAt) {
		b.WriteByte('@')
	}
	b.WriteString(p.name("expected attribute name").Lexeme)
	for p.check(lexer.TokenMinus) && p.peekAt(1).IsName() {
		p.advance()
		b.WriteByte('-')
		b.WriteString(p.advance().Lexeme)
	}
	attr := &ast.Attribute{Name: b.String()}
	if p.match(lexer.TokenAssign) {
		tok := p.peek()
		switch tok.Kind {
		case lexer.TokenString:
			p.advance()
			attr.Value = &ast.Literal{Kind: ast.LitString, Raw: tok.Lexeme, Str: tok.Literal.(string), Span: span(tok.Pos, p.end())}
		case lexer.TokenLBrace:
			p.advance()
			p.skipNewlines()
			attr.Value = p.expression()
			p.skipNewlines()
			p.consume(lexer.TokenRBrace, "expected '}' after attribute expression")
		default:
			p.fail(fmt.Sprintf("expected string or {expression} for attribute %s, found %s", attr.Name, tok))
		}
	}
	attr.Span = span(start, p.end())
	return attr
}

func (p *Parser) children(parent string) []ast.Child {
	var children []ast.Child
	for {
		switch p.peek().Kind {
		case lexer.TokenTagClose:
			return children
		case lexer.TokenEOF:
			p.fail(fmt.Sprintf("unterminated element <%s>", parent))
		case lexer.TokenTagOpen:
			children = append(children, p.element().(*ast.Element))
		case lexer.TokenLBrace:
			start := p.advance().Pos
			p.skipNewlines()
			expr := p.expression()
			p.skipNewlines()
			p.consume(lexer.TokenRBrace, "expected '}' after expression")
			children = append(children, &ast.ExpressionSlot{Expr: expr, Span: span(start, p.end())})
		default:
			if text := p.textRun(); text != nil {
				children = append(children, text)
			}
		}
	}
}

// textRun gathers the tokens up to the next tag or slot and rebuilds their
// text from source columns: adjacent tokens are joined, any gap or line
// break becomes one space. The result is trimmed; blank text yields nil.
func (p *Parser) textRun() *ast.TextRun {
	var b strings.Builder
	start := p.peek().Pos
	var prevEnd lexer.Position
	gap := false
	for {
		tok := p.peek()
		switch tok.Kind {
		case lexer.TokenTagOpen, lexer.TokenTagClose, lexer.TokenLBrace, lexer.TokenEOF:
			text := strings.TrimSpace(b.String())
			if text == "" {
				return nil
			}
			return &ast.TextRun{Value: text, Span: span(start, prevEnd)}
		case lexer.TokenNewline:
			gap = true
			p.advance()
			continue
		}
		if b.Len() > 0 && (gap || tok.Pos.Line != prevEnd.Line || tok.Pos.Col > prevEnd.Col) {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Lexeme)
		gap = false
		prevEnd = lexer.Position{Line: tok.Pos.Line, Col: tok.Pos.Col + utf8.RuneCountInString(tok.Lexeme)}
		p.advance()
	}
}
