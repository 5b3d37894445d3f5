package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/roach88/rsql/internal/operator"
)

// reservedChars can never appear in a selector or unquoted argument.
const reservedChars = "\"'();,=<>!~ "

func isReserved(r rune) bool {
	return strings.ContainsRune(reservedChars, r)
}

// Lexer tokenizes RSQL input on demand.
//
// Whitespace is not skipped: a space is only valid as part of the textual
// aliases " and " and " or ", or inside a quoted argument.
type Lexer struct {
	input    string
	pos      int
	registry *operator.Registry
}

// NewLexer creates a Lexer over input. A nil registry means operator.Default().
func NewLexer(input string, registry *operator.Registry) *Lexer {
	if registry == nil {
		registry = operator.Default()
	}
	return &Lexer{input: input, registry: registry}
}

// Next returns the next token, or a *ParseError when the input at the
// current position matches no token.
func (l *Lexer) Next() (Token, error) {
	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Offset: l.pos}, nil
	}

	switch ch := l.input[l.pos]; ch {
	case '(':
		return l.single(TokenLParen), nil
	case ')':
		return l.single(TokenRParen), nil
	case ';':
		return l.single(TokenAnd), nil
	case ',':
		return l.single(TokenOr), nil
	case ' ':
		return l.readAlias()
	case '"', '\'':
		return l.readQuoted(ch)
	case '=', '<', '>', '!', '~':
		return l.readOperator()
	default:
		return l.readUnreserved()
	}
}

func (l *Lexer) single(kind TokenKind) Token {
	text := l.input[l.pos : l.pos+1]
	tok := Token{Kind: kind, Text: text, Value: text, Offset: l.pos}
	l.pos++
	return tok
}

func (l *Lexer) readAlias() (Token, error) {
	rest := l.input[l.pos:]
	for _, alias := range []struct {
		kind TokenKind
		text string
	}{
		{TokenAnd, operator.And.Alias()},
		{TokenOr, operator.Or.Alias()},
	} {
		if strings.HasPrefix(rest, alias.text) {
			tok := Token{Kind: alias.kind, Text: alias.text, Value: alias.text, Offset: l.pos}
			l.pos += len(alias.text)
			return tok, nil
		}
	}

	return Token{}, &ParseError{
		Code:    ErrCodeSyntax,
		Message: `unexpected space; whitespace is only allowed in " and ", " or " and quoted arguments`,
		Offset:  l.pos,
		Token:   " ",
	}
}

func (l *Lexer) readQuoted(quote byte) (Token, error) {
	start := l.pos
	end := strings.IndexByte(l.input[start+1:], quote)
	if end < 0 {
		return Token{}, &ParseError{
			Code:    ErrCodeUnterminatedQuote,
			Message: fmt.Sprintf("quoted argument is missing its closing %c", quote),
			Offset:  start,
			Token:   l.input[start:],
		}
	}

	value := l.input[start+1 : start+1+end]
	if !utf8.ValidString(value) {
		return Token{}, &ParseError{
			Code:    ErrCodeInvalidEncoding,
			Message: "quoted argument is not valid UTF-8",
			Offset:  start,
		}
	}

	l.pos = start + end + 2
	return Token{
		Kind:   TokenQuoted,
		Text:   l.input[start:l.pos],
		Value:  value,
		Offset: start,
	}, nil
}

func (l *Lexer) readOperator() (Token, error) {
	start := l.pos
	rest := l.input[start:]

	if symbol, ok := l.registry.Match(rest); ok {
		l.pos += len(symbol)
		return Token{Kind: TokenOperator, Text: symbol, Value: symbol, Offset: start}, nil
	}

	candidate := operatorCandidate(rest)
	msg := fmt.Sprintf("unknown comparison operator %q", candidate)
	if candidate == "=" {
		msg = "bare '=' is not a comparison operator, use '=='"
	}
	return Token{}, &ParseError{
		Code:    ErrCodeUnknownOperator,
		Message: msg,
		Offset:  start,
		Token:   candidate,
	}
}

// operatorCandidate extracts the text that looks like an operator at the
// start of s, for error reporting: "=word=" in FIQL form, a lone "=", or
// the leading symbol characters.
func operatorCandidate(s string) string {
	if s[0] == '=' {
		i := 1
		for i < len(s) && isASCIILetter(s[i]) {
			i++
		}
		if i < len(s) && s[i] == '=' {
			return s[:i+1]
		}
		return "="
	}
	i := 1
	for i < len(s) && strings.IndexByte("=<>!~", s[i]) >= 0 {
		i++
	}
	return s[:i]
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func (l *Lexer) readUnreserved() (Token, error) {
	start := l.pos
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if r == utf8.RuneError && size == 1 {
			return Token{}, &ParseError{
				Code:    ErrCodeInvalidEncoding,
				Message: "input is not valid UTF-8",
				Offset:  l.pos,
			}
		}
		if isReserved(r) {
			break
		}
		l.pos += size
	}

	text := l.input[start:l.pos]
	return Token{Kind: TokenUnreserved, Text: text, Value: text, Offset: start}, nil
}
