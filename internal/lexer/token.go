package lexer

import "fmt"

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenNewline
	TokenUnknown
	TokenIdent
	TokenNumber
	TokenString
	TokenBoolean // true, false, null, undefined
	// keywords
	TokenComponent
	TokenState
	TokenProp
	TokenMethod
	TokenRender
	TokenEffect
	TokenComputed
	TokenStore
	TokenAction
	TokenLifecycle
	TokenGuard
	TokenRouter
	TokenRoute
	TokenUse
	TokenOn
	TokenImport
	TokenExport
	TokenAsync
	TokenAwait
	TokenIf
	TokenElse
	TokenFor
	TokenWhile
	TokenReturn
	TokenTry
	TokenCatch
	TokenFinally
	// punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenDot
	TokenColon
	TokenSemicolon
	TokenQuestion
	TokenAt
	TokenArrow
	// operators
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenBang
	TokenAssign
	TokenPlusAssign
	TokenMinusAssign
	TokenEqEq
	TokenNotEq
	TokenLessEq
	TokenGreater
	TokenGreaterEq
	TokenAndAnd
	TokenOrOr
	// template tokens
	TokenTagOpen   // "<": opening tag start, or less-than in binary position
	TokenTagClose  // "</"
	TokenSelfClose // "/>"
)

type Position struct {
	Line int
	Col  int
}

// Token is produced once by the lexer and never modified.
// Literal holds the decoded value: float64 for numbers, the raw body for
// strings, bool for true/false and nil otherwise.
type Token struct {
	Kind    TokenKind
	Lexeme  string
	Literal any
	Pos     Position
}

func (t Token) String() string {
	if t.Kind == TokenEOF {
		return "end of input"
	}
	if t.Kind == TokenNewline {
		return "line break"
	}
	return fmt.Sprintf("%q", t.Lexeme)
}

// IsKeyword reports whether the token is one of the reserved words,
// including the literal class.
func (t Token) IsKeyword() bool {
	return t.Kind == TokenBoolean || (t.Kind >= TokenComponent && t.Kind <= TokenFinally)
}

// IsName reports whether the token can be used where a property or
// attribute name is expected.
func (t Token) IsName() bool {
	return t.Kind == TokenIdent || t.IsKeyword()
}

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "eof"
	case TokenNewline:
		return "newline"
	case TokenUnknown:
		return "unknown"
	case TokenIdent:
		return "identifier"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenBoolean:
		return "literal"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenLBrace:
		return "{"
	case TokenRBrace:
		return "}"
	case TokenLBracket:
		return "["
	case TokenRBracket:
		return "]"
	case TokenComma:
		return ","
	case TokenDot:
		return "."
	case TokenColon:
		return ":"
	case TokenSemicolon:
		return ";"
	case TokenQuestion:
		return "?"
	case TokenAt:
		return "@"
	case TokenArrow:
		return "=>"
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenStar:
		return "*"
	case TokenSlash:
		return "/"
	case TokenPercent:
		return "%"
	case TokenBang:
		return "!"
	case TokenAssign:
		return "="
	case TokenPlusAssign:
		return "+="
	case TokenMinusAssign:
		return "-="
	case TokenEqEq:
		return "=="
	case TokenNotEq:
		return "!="
	case TokenLessEq:
		return "<="
	case TokenGreater:
		return ">"
	case TokenGreaterEq:
		return ">="
	case TokenAndAnd:
		return "&&"
	case TokenOrOr:
		return "||"
	case TokenTagOpen:
		return "<"
	case TokenTagClose:
		return "</"
	case TokenSelfClose:
		return "/>"
	}
	for word, kind := range keywords {
		if kind == k && k != TokenBoolean {
			return word
		}
	}
	return fmt.Sprintf("token(%d)", int(k))
}

var keywords = map[string]TokenKind{
	"component": TokenComponent,
	"state":     TokenState,
	"prop":      TokenProp,
	"method":    TokenMethod,
	"render":    TokenRender,
	"effect":    TokenEffect,
	"computed":  TokenComputed,
	"store":     TokenStore,
	"action":    TokenAction,
	"lifecycle": TokenLifecycle,
	"guard":     TokenGuard,
	"router":    TokenRouter,
	"route":     TokenRoute,
	"use":       TokenUse,
	"on":        TokenOn,
	"import":    TokenImport,
	"export":    TokenExport,
	"async":     TokenAsync,
	"await":     TokenAwait,
	"if":        TokenIf,
	"else":      TokenElse,
	"for":       TokenFor,
	"while":     TokenWhile,
	"return":    TokenReturn,
	"try":       TokenTry,
	"catch":     TokenCatch,
	"finally":   TokenFinally,
	"true":      TokenBoolean,
	"false":     TokenBoolean,
	"null":      TokenBoolean,
	"undefined": TokenBoolean,
}

// Lookup classifies an identifier against the keyword table.
func Lookup(ident string) TokenKind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return TokenIdent
}
