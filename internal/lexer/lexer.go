package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// LexError is the only fatal lexing failure: a string literal that is
// never closed. Line is the line on which the string started.
type LexError struct {
	Msg  string
	Line int
	Col  int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

type Lexer struct {
	src    string
	pos    int
	line   int
	col    int
	peeked *Token
	err    error
}

func New(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Tokenize converts src into a token slice that always ends with a
// TokenEOF sentinel. Unrecognized characters become TokenUnknown tokens;
// only an unterminated string aborts tokenization.
func Tokenize(src string) ([]Token, error) {
	l := New(src)
	var toks []Token
	for {
		tok := l.Next()
		if l.err != nil {
			return nil, l.err
		}
		toks = append(toks, tok)
		if tok.Kind == TokenEOF {
			return toks, nil
		}
	}
}

// Err returns the error that stopped the lexer, if any.
func (l *Lexer) Err() error {
	return l.err
}

func (l *Lexer) Next() Token {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil
		return tok
	}
	if l.err != nil {
		return Token{Kind: TokenEOF, Pos: Position{Line: l.line, Col: l.col}}
	}
	l.skipSpace()
	startPos := Position{Line: l.line, Col: l.col}
	if l.eof() {
		return Token{Kind: TokenEOF, Pos: startPos}
	}
	ch := l.peek()
	if isIdentStart(ch) {
		text := l.readIdent()
		kind := Lookup(text)
		tok := Token{Kind: kind, Lexeme: text, Pos: startPos}
		if kind == TokenBoolean {
			switch text {
			case "true":
				tok.Literal = true
			case "false":
				tok.Literal = false
			}
		}
		return tok
	}
	if isDigit(ch) {
		text := l.readNumber()
		v, _ := strconv.ParseFloat(text, 64)
		return Token{Kind: TokenNumber, Lexeme: text, Literal: v, Pos: startPos}
	}
	switch ch {
	case '\n':
		l.advance()
		return Token{Kind: TokenNewline, Lexeme: "\n", Pos: startPos}
	case '"', '\'':
		start := l.pos
		body, ok := l.readString(ch)
		if !ok {
			l.err = &LexError{Msg: "unterminated string literal", Line: startPos.Line, Col: startPos.Col}
			return Token{Kind: TokenEOF, Pos: startPos}
		}
		return Token{Kind: TokenString, Lexeme: l.src[start:l.pos], Literal: body, Pos: startPos}
	case '(':
		return l.single(TokenLParen, startPos)
	case ')':
		return l.single(TokenRParen, startPos)
	case '{':
		return l.single(TokenLBrace, startPos)
	case '}':
		return l.single(TokenRBrace, startPos)
	case '[':
		return l.single(TokenLBracket, startPos)
	case ']':
		return l.single(TokenRBracket, startPos)
	case ',':
		return l.single(TokenComma, startPos)
	case '.':
		return l.single(TokenDot, startPos)
	case ':':
		return l.single(TokenColon, startPos)
	case ';':
		return l.single(TokenSemicolon, startPos)
	case '?':
		return l.single(TokenQuestion, startPos)
	case '@':
		return l.single(TokenAt, startPos)
	case '*':
		return l.single(TokenStar, startPos)
	case '%':
		return l.single(TokenPercent, startPos)
	case '+':
		if l.match("+=") {
			return Token{Kind: TokenPlusAssign, Lexeme: "+=", Pos: startPos}
		}
		return l.single(TokenPlus, startPos)
	case '-':
		if l.match("-=") {
			return Token{Kind: TokenMinusAssign, Lexeme: "-=", Pos: startPos}
		}
		return l.single(TokenMinus, startPos)
	case '/':
		if l.match("/>") {
			return Token{Kind: TokenSelfClose, Lexeme: "/>", Pos: startPos}
		}
		return l.single(TokenSlash, startPos)
	case '=':
		if l.match("==") {
			return Token{Kind: TokenEqEq, Lexeme: "==", Pos: startPos}
		}
		if l.match("=>") {
			return Token{Kind: TokenArrow, Lexeme: "=>", Pos: startPos}
		}
		return l.single(TokenAssign, startPos)
	case '!':
		if l.match("!=") {
			return Token{Kind: TokenNotEq, Lexeme: "!=", Pos: startPos}
		}
		return l.single(TokenBang, startPos)
	case '<':
		if l.match("<=") {
			return Token{Kind: TokenLessEq, Lexeme: "<=", Pos: startPos}
		}
		if l.match("</") {
			return Token{Kind: TokenTagClose, Lexeme: "</", Pos: startPos}
		}
		return l.single(TokenTagOpen, startPos)
	case '>':
		if l.match(">=") {
			return Token{Kind: TokenGreaterEq, Lexeme: ">=", Pos: startPos}
		}
		return l.single(TokenGreater, startPos)
	case '&':
		if l.match("&&") {
			return Token{Kind: TokenAndAnd, Lexeme: "&&", Pos: startPos}
		}
	case '|':
		if l.match("||") {
			return Token{Kind: TokenOrOr, Lexeme: "||", Pos: startPos}
		}
	}
	start := l.pos
	l.advance()
	return Token{Kind: TokenUnknown, Lexeme: l.src[start:l.pos], Pos: startPos}
}

func (l *Lexer) Peek() Token {
	if l.peeked == nil {
		tok := l.Next()
		l.peeked = &tok
	}
	return *l.peeked
}

func (l *Lexer) single(kind TokenKind, pos Position) Token {
	start := l.pos
	l.advance()
	return Token{Kind: kind, Lexeme: l.src[start:l.pos], Pos: pos}
}

func (l *Lexer) skipSpace() {
	for !l.eof() {
		ch := l.peek()
		switch {
		case ch == ' ' || ch == '\r' || ch == '\t':
			l.advance()
		case ch == '/' && l.peekN(1) == '/':
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}
		case ch == '/' && l.peekN(1) == '*':
			l.advance()
			l.advance()
			for !l.eof() {
				if l.peek() == '*' && l.peekN(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readIdent() string {
	start := l.pos
	for !l.eof() && isIdentPart(l.peek()) {
		l.advance()
	}
	return l.src[start:l.pos]
}

// readNumber reads digits with at most one fractional part. A dot that is
// not followed by a digit is left for the member operator.
func (l *Lexer) readNumber() string {
	start := l.pos
	for !l.eof() && isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		l.advance()
		for !l.eof() && isDigit(l.peek()) {
			l.advance()
		}
	}
	return l.src[start:l.pos]
}

// readString scans to the matching quote. Escapes are not decoded; a
// backslash only keeps the next character from closing the string.
func (l *Lexer) readString(quote rune) (string, bool) {
	l.advance()
	var b strings.Builder
	for !l.eof() {
		ch := l.peek()
		if ch == quote {
			l.advance()
			return b.String(), true
		}
		if ch == '\\' {
			b.WriteRune(ch)
			l.advance()
			if l.eof() {
				break
			}
			ch = l.peek()
		}
		b.WriteRune(ch)
		l.advance()
	}
	return "", false
}

func (l *Lexer) match(s string) bool {
	if strings.HasPrefix(l.src[l.pos:], s) {
		for range s {
			l.advance()
		}
		return true
	}
	return false
}

func (l *Lexer) advance() {
	if l.eof() {
		return
	}
	_, size := utf8.DecodeRuneInString(l.src[l.pos:])
	ch := l.src[l.pos]
	l.pos += size
	if ch == '\n' {
		l.line++
		l.col = 1
		return
	}
	l.col++
}

func (l *Lexer) peek() rune {
	if l.eof() {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return ch
}

func (l *Lexer) peekN(n int) rune {
	idx := l.pos
	for i := 0; i < n; i++ {
		if idx >= len(l.src) {
			return 0
		}
		_, size := utf8.DecodeRuneInString(l.src[idx:])
		idx += size
	}
	if idx >= len(l.src) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.src[idx:])
	return ch
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.src)
}

func isIdentStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
