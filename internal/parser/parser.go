package parser

import (
	"fmt"
	"unicode/utf8"

	"pulse/internal/ast"
	"pulse/internal/lexer"
)

// ParseError is returned for any grammar violation. Line and Col are
// 1-based and point at the offending token.
type ParseError struct {
	Message string
	Line    int
	Col     int
	Lexeme  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Message)
}

// bailout carries a ParseError up to the enclosing top-level statement.
type bailout struct {
	err *ParseError
}

type Parser struct {
	toks    []lexer.Token
	current int
	resync  int
}

// New creates a parser over toks. A missing EOF sentinel is appended.
func New(toks []lexer.Token) *Parser {
	if len(toks) == 0 || toks[len(toks)-1].Kind != lexer.TokenEOF {
		var pos lexer.Position
		if len(toks) > 0 {
			pos = toks[len(toks)-1].Pos
		}
		toks = append(toks[:len(toks):len(toks)], lexer.Token{Kind: lexer.TokenEOF, Pos: pos})
	}
	return &Parser{toks: toks, resync: -1}
}

// Parse parses a complete token sequence.
func Parse(toks []lexer.Token) (*ast.Program, error) {
	return New(toks).Parse()
}

// ParseSource tokenizes and parses src.
func ParseSource(src string) (*ast.Program, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return Parse(toks)
}

// Parse stops at the first failing top-level statement. The cursor is
// resynchronized before the error is returned (see Resync).
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{}
	start := p.peek().Pos
	for {
		p.skipSeparators()
		if p.isAtEnd() {
			break
		}
		node, err := p.topLevelStatement()
		if err != nil {
			return nil, err
		}
		prog.Body = append(prog.Body, node)
	}
	prog.Span = span(start, p.peek().Pos)
	return prog, nil
}

// Resync returns the position the parser recovered to after the last
// failure, and false when no failure happened.
func (p *Parser) Resync() (lexer.Position, bool) {
	if p.resync < 0 {
		return lexer.Position{}, false
	}
	return p.toks[p.resync].Pos, true
}

func (p *Parser) topLevelStatement() (node ast.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			p.synchronize()
			node, err = nil, b.err
		}
	}()
	return p.topLevel(), nil
}

func (p *Parser) topLevel() ast.Node {
	switch p.peek().Kind {
	case lexer.TokenImport:
		return p.importDecl()
	case lexer.TokenExport:
		return p.exportDecl()
	case lexer.TokenAt, lexer.TokenComponent, lexer.TokenStore, lexer.TokenGuard:
		return p.declaration()
	default:
		return p.statement()
	}
}

// synchronize skips the failing token and then advances to a line break
// or a token that can start a statement.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		switch p.peek().Kind {
		case lexer.TokenNewline, lexer.TokenComponent, lexer.TokenStore, lexer.TokenGuard,
			lexer.TokenImport, lexer.TokenExport, lexer.TokenAt, lexer.TokenIf,
			lexer.TokenWhile, lexer.TokenFor, lexer.TokenReturn, lexer.TokenTry:
			p.resync = p.current
			return
		}
		p.advance()
	}
	p.resync = p.current
}

func (p *Parser) importDecl() ast.Decl {
	start := p.consume(lexer.TokenImport, "expected import").Pos
	decl := &ast.ImportDecl{}
	switch p.peek().Kind {
	case lexer.TokenString:
	case lexer.TokenIdent:
		decl.Default = p.advance().Lexeme
		p.expectWord("from")
	case lexer.TokenLBrace:
		p.advance()
		p.skipNewlines()
		for !p.check(lexer.TokenRBrace) {
			nameTok := p.consume(lexer.TokenIdent, "expected imported name")
			spec := ast.ImportSpecifier{Name: nameTok.Lexeme}
			if p.checkWord("as") {
				p.advance()
				spec.Alias = p.consume(lexer.TokenIdent, "expected alias after 'as'").Lexeme
			}
			spec.Span = span(nameTok.Pos, p.end())
			decl.Specifiers = append(decl.Specifiers, spec)
			p.skipNewlines()
			if !p.match(lexer.TokenComma) {
				break
			}
			p.skipNewlines()
		}
		p.consume(lexer.TokenRBrace, "expected '}' after import list")
		p.expectWord("from")
	default:
		p.fail(fmt.Sprintf("expected import list or module path, found %s", p.peek()))
	}
	src := p.consume(lexer.TokenString, "expected module path string")
	decl.Source = src.Literal.(string)
	p.endStatement()
	decl.Span = span(start, p.end())
	return decl
}

func (p *Parser) exportDecl() ast.Decl {
	start := p.consume(lexer.TokenExport, "expected export").Pos
	switch p.peek().Kind {
	case lexer.TokenAt, lexer.TokenComponent, lexer.TokenStore, lexer.TokenGuard:
	default:
		p.fail(fmt.Sprintf("only component, store and guard declarations can be exported, found %s", p.peek()))
	}
	inner := p.declaration()
	return &ast.ExportDecl{Decl: inner, Span: span(start, p.end())}
}

func (p *Parser) declaration() ast.Decl {
	start := p.peek().Pos
	decorators := p.decorators()
	if len(decorators) > 0 && p.check(lexer.TokenExport) {
		// @route("/") export component Home { ... }
		p.advance()
		inner := p.declarationAfter(start, decorators)
		return &ast.ExportDecl{Decl: inner, Span: span(start, p.end())}
	}
	return p.declarationAfter(start, decorators)
}

func (p *Parser) declarationAfter(start lexer.Position, decorators []*ast.Decorator) ast.Decl {
	switch p.peek().Kind {
	case lexer.TokenComponent:
		return p.componentDecl(start, decorators)
	case lexer.TokenStore:
		return p.storeDecl(start, decorators)
	case lexer.TokenGuard:
		return p.guardDecl(start, decorators)
	default:
		p.fail(fmt.Sprintf("expected component, store or guard after decorators, found %s", p.peek()))
		return nil
	}
}

func (p *Parser) decorators() []*ast.Decorator {
	var out []*ast.Decorator
	for p.check(lexer.TokenAt) {
		start := p.advance().Pos
		name := p.name("expected decorator name")
		d := &ast.Decorator{Name: name.Lexeme}
		if p.match(lexer.TokenLParen) {
			for _, arg := range p.arguments() {
				v, err := ast.ValueOf(arg)
				if err != nil {
					pos := arg.GetSpan().Start
					p.failAt(lexer.Position{Line: pos.Line, Col: pos.Col}, "", err.Error())
				}
				d.Args = append(d.Args, v)
			}
		}
		d.Span = span(start, p.end())
		out = append(out, d)
		p.skipNewlines()
	}
	return out
}

func (p *Parser) componentDecl(start lexer.Position, decorators []*ast.Decorator) ast.Decl {
	p.consume(lexer.TokenComponent, "expected component")
	name := p.consume(lexer.TokenIdent, "expected component name").Lexeme
	members := p.memberBlock()
	c, err := ast.NewComponent(name, decorators, members, span(start, p.end()))
	if err != nil {
		p.memberFail(err)
	}
	return c
}

func (p *Parser) storeDecl(start lexer.Position, decorators []*ast.Decorator) ast.Decl {
	p.consume(lexer.TokenStore, "expected store")
	name := p.consume(lexer.TokenIdent, "expected store name").Lexeme
	members := p.memberBlock()
	s, err := ast.NewStore(name, decorators, members, span(start, p.end()))
	if err != nil {
		p.memberFail(err)
	}
	return s
}

func (p *Parser) guardDecl(start lexer.Position, decorators []*ast.Decorator) ast.Decl {
	p.consume(lexer.TokenGuard, "expected guard")
	name := p.consume(lexer.TokenIdent, "expected guard name").Lexeme
	params := p.params()
	body := p.block()
	return &ast.GuardDecl{Name: name, Decorators: decorators, Params: params, Body: body, Span: span(start, p.end())}
}

func (p *Parser) memberFail(err error) {
	if me, ok := err.(*ast.MemberError); ok {
		pos := me.Member.GetSpan().Start
		p.failAt(lexer.Position{Line: pos.Line, Col: pos.Col}, "", me.Msg)
	}
	p.fail(err.Error())
}

func (p *Parser) memberBlock() []ast.Member {
	p.skipNewlines()
	p.consume(lexer.TokenLBrace, "expected '{'")
	var members []ast.Member
	for {
		p.skipSeparators()
		if p.check(lexer.TokenRBrace) || p.isAtEnd() {
			break
		}
		members = append(members, p.member())
		p.endStatement()
	}
	p.consume(lexer.TokenRBrace, "expected '}'")
	return members
}

func (p *Parser) member() ast.Member {
	start := p.peek().Pos
	async := p.match(lexer.TokenAsync)
	switch p.peek().Kind {
	case lexer.TokenMethod:
		p.advance()
		name := p.consume(lexer.TokenIdent, "expected method name").Lexeme
		params := p.params()
		body := p.block()
		return &ast.MethodDecl{Name: name, Params: params, Body: body, Async: async, Span: span(start, p.end())}
	case lexer.TokenAction:
		p.advance()
		name := p.consume(lexer.TokenIdent, "expected action name").Lexeme
		params := p.params()
		body := p.block()
		return &ast.ActionDecl{Name: name, Params: params, Body: body, Async: async, Span: span(start, p.end())}
	case lexer.TokenLifecycle:
		p.advance()
		phase := p.consume(lexer.TokenIdent, "expected lifecycle phase").Lexeme
		var params []*ast.Param
		if p.check(lexer.TokenLParen) {
			params = p.params()
		}
		body := p.block()
		return &ast.LifecycleDecl{Phase: phase, Params: params, Body: body, Async: async, Span: span(start, p.end())}
	}
	if async {
		p.fail("async is only allowed on method, action and lifecycle")
	}
	switch p.peek().Kind {
	case lexer.TokenState:
		p.advance()
		name := p.consume(lexer.TokenIdent, "expected state name").Lexeme
		typ := p.optionalType()
		var init ast.Expr
		if p.match(lexer.TokenAssign) {
			p.skipNewlines()
			init = p.expression()
		}
		return &ast.StateDecl{Name: name, Type: typ, Init: init, Span: span(start, p.end())}
	case lexer.TokenProp:
		p.advance()
		name := p.consume(lexer.TokenIdent, "expected prop name").Lexeme
		typ := p.optionalType()
		var def ast.Expr
		if p.match(lexer.TokenAssign) {
			p.skipNewlines()
			def = p.expression()
		}
		return &ast.PropDecl{Name: name, Type: typ, Default: def, Span: span(start, p.end())}
	case lexer.TokenEffect:
		p.advance()
		var deps []ast.Expr
		if p.match(lexer.TokenOn) {
			deps = append(deps, p.expression())
			for p.match(lexer.TokenComma) {
				p.skipNewlines()
				deps = append(deps, p.expression())
			}
		}
		body := p.block()
		return &ast.EffectDecl{Deps: deps, Body: body, Span: span(start, p.end())}
	case lexer.TokenComputed:
		p.advance()
		name := p.consume(lexer.TokenIdent, "expected computed name").Lexeme
		p.consume(lexer.TokenLParen, "expected '(' after computed name")
		p.consume(lexer.TokenRParen, fmt.Sprintf("computed %s takes no parameters", name))
		body := p.block()
		return &ast.ComputedDecl{Name: name, Body: body, Span: span(start, p.end())}
	case lexer.TokenRender:
		p.advance()
		body := p.block()
		return &ast.RenderDecl{Body: body, Span: span(start, p.end())}
	default:
		p.fail(fmt.Sprintf("expected member declaration, found %s", p.peek()))
		return nil
	}
}

func (p *Parser) params() []*ast.Param {
	p.consume(lexer.TokenLParen, "expected '('")
	var params []*ast.Param
	p.skipNewlines()
	for !p.check(lexer.TokenRParen) {
		nameTok := p.consume(lexer.TokenIdent, "expected parameter name")
		param := &ast.Param{Name: nameTok.Lexeme}
		param.Type = p.optionalType()
		if p.match(lexer.TokenAssign) {
			p.skipNewlines()
			param.Default = p.expression()
		}
		param.Span = span(nameTok.Pos, p.end())
		params = append(params, param)
		p.skipNewlines()
		if !p.match(lexer.TokenComma) {
			break
		}
		p.skipNewlines()
	}
	p.consume(lexer.TokenRParen, "expected ')' after parameters")
	return params
}

func (p *Parser) optionalType() ast.TypeExpr {
	if !p.match(lexer.TokenColon) {
		return nil
	}
	tok := p.peek()
	if tok.Kind != lexer.TokenIdent {
		p.fail(fmt.Sprintf("expected type annotation, found %s", tok))
	}
	p.advance()
	sp := span(tok.Pos, p.end())
	switch tok.Lexeme {
	case "string", "number", "boolean":
		return &ast.PrimitiveType{Name: tok.Lexeme, Span: sp}
	default:
		return &ast.NamedType{Name: tok.Lexeme, Span: sp}
	}
}

// token primitives

func (p *Parser) peek() lexer.Token {
	return p.toks[p.current]
}

func (p *Parser) peekAt(offset int) lexer.Token {
	i := p.current + offset
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) previous() lexer.Token {
	if p.current == 0 {
		return p.toks[0]
	}
	return p.toks[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == lexer.TokenEOF
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.current++
	}
	return tok
}

func (p *Parser) check(kind lexer.TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) checkWord(word string) bool {
	tok := p.peek()
	return tok.Kind == lexer.TokenIdent && tok.Lexeme == word
}

func (p *Parser) match(kinds ...lexer.TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(kind lexer.TokenKind, msg string) lexer.Token {
	if p.check(kind) {
		return p.advance()
	}
	p.fail(fmt.Sprintf("%s, found %s", msg, p.peek()))
	return lexer.Token{}
}

func (p *Parser) expectWord(word string) {
	if !p.checkWord(word) {
		p.fail(fmt.Sprintf("expected '%s', found %s", word, p.peek()))
	}
	p.advance()
}

// name accepts an identifier or a keyword, for property, attribute and
// decorator names.
func (p *Parser) name(msg string) lexer.Token {
	if p.peek().IsName() {
		return p.advance()
	}
	p.fail(fmt.Sprintf("%s, found %s", msg, p.peek()))
	return lexer.Token{}
}

func (p *Parser) skipNewlines() {
	for p.check(lexer.TokenNewline) {
		p.advance()
	}
}

func (p *Parser) skipSeparators() {
	for p.check(lexer.TokenNewline) || p.check(lexer.TokenSemicolon) {
		p.advance()
	}
}

// checkAfterNewlines reports whether the next non-newline token has the
// given kind, and consumes the newlines if so.
func (p *Parser) checkAfterNewlines(kind lexer.TokenKind) bool {
	i := p.current
	for p.toks[i].Kind == lexer.TokenNewline {
		i++
	}
	if p.toks[i].Kind != kind {
		return false
	}
	p.current = i
	return true
}

// endStatement accepts ';', a line break, a closing brace or the end of
// input after a statement.
func (p *Parser) endStatement() {
	if p.match(lexer.TokenSemicolon) {
		return
	}
	switch p.peek().Kind {
	case lexer.TokenNewline, lexer.TokenRBrace, lexer.TokenEOF:
		return
	}
	p.fail(fmt.Sprintf("expected end of statement, found %s", p.peek()))
}

func (p *Parser) fail(msg string) {
	tok := p.peek()
	p.failAt(tok.Pos, tok.Lexeme, msg)
}

func (p *Parser) failAt(pos lexer.Position, lexeme, msg string) {
	panic(bailout{err: &ParseError{Message: msg, Line: pos.Line, Col: pos.Col, Lexeme: lexeme}})
}

// end is the position just past the previous token.
func (p *Parser) end() lexer.Position {
	tok := p.previous()
	return lexer.Position{Line: tok.Pos.Line, Col: tok.Pos.Col + utf8.RuneCountInString(tok.Lexeme)}
}

func span(start, end lexer.Position) ast.Span {
	return ast.Span{Start: pos(start), End: pos(end)}
}

func pos(p lexer.Position) ast.Position {
	return ast.Position{Line: p.Line, Col: p.Col}
}
