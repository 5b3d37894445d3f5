package parser

import "fmt"

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenEOF        TokenKind = iota
	TokenUnreserved           // selector or unquoted argument
	TokenQuoted               // '...' or "..."
	TokenOperator             // comparison operator symbol
	TokenLParen
	TokenRParen
	TokenAnd // ";" or " and "
	TokenOr  // "," or " or "
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of input"
	case TokenUnreserved:
		return "unreserved string"
	case TokenQuoted:
		return "quoted string"
	case TokenOperator:
		return "comparison operator"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	case TokenAnd:
		return "AND"
	case TokenOr:
		return "OR"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is a lexical token.
type Token struct {
	Kind   TokenKind
	Text   string // raw source text, quotes included
	Value  string // decoded value; differs from Text only for quoted strings
	Offset int    // byte offset of the first character
}

func (t Token) String() string {
	if t.Kind == TokenEOF {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}
