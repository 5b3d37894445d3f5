package parser

import (
	"errors"
	"fmt"

	"github.com/roach88/rsql/internal/ast"
	"github.com/roach88/rsql/internal/operator"
)

// DefaultMaxDepth bounds parenthesis nesting unless WithMaxDepth says otherwise.
const DefaultMaxDepth = 64

// Option configures a Parser.
type Option func(*Parser)

// WithMaxDepth sets the maximum parenthesis nesting depth. Values below 1
// are ignored.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		if depth > 0 {
			p.maxDepth = depth
		}
	}
}

// Parser turns RSQL text into an ast.Node.
//
// A Parser only holds its registry and options. Each Parse call allocates
// its own lexer and state, so one Parser can serve concurrent callers.
type Parser struct {
	registry *operator.Registry
	factory  *ast.Factory
	maxDepth int
}

// New creates a Parser over registry. A nil registry means operator.Default().
func New(registry *operator.Registry, opts ...Option) *Parser {
	if registry == nil {
		registry = operator.Default()
	}
	p := &Parser{
		registry: registry,
		factory:  ast.NewFactory(registry),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = New(nil)

// Parse parses query with the default operators.
func Parse(query string) (ast.Node, error) {
	return defaultParser.Parse(query)
}

// Registry returns the registry the parser resolves operators against.
func (p *Parser) Registry() *operator.Registry {
	return p.registry
}

// Parse parses query into a tree.
//
// Returns ErrInvalidArgument for an empty query and a *ParseError for the
// first lexical or grammatical violation. No partial tree is ever returned.
func (p *Parser) Parse(query string) (ast.Node, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", ErrInvalidArgument)
	}

	s := &state{
		lexer:    NewLexer(query, p.registry),
		factory:  p.factory,
		maxDepth: p.maxDepth,
	}
	if err := s.advance(); err != nil {
		return nil, err
	}

	node, err := s.parseOr()
	if err != nil {
		return nil, err
	}

	switch s.tok.Kind {
	case TokenEOF:
		return node, nil
	case TokenRParen:
		return nil, s.errorAt(ErrCodeUnmatchedParen, s.tok, "')' has no matching '('")
	default:
		return nil, s.errorAt(ErrCodeTrailingInput, s.tok, fmt.Sprintf("unexpected %s after complete query", s.tok.Kind))
	}
}

// state is the per-call parse state.
type state struct {
	lexer    *Lexer
	factory  *ast.Factory
	tok      Token // current lookahead
	depth    int
	maxDepth int
}

func (s *state) advance() error {
	tok, err := s.lexer.Next()
	if err != nil {
		return err
	}
	s.tok = tok
	return nil
}

// parseOr handles: or = and ( OR and )*
func (s *state) parseOr() (ast.Node, error) {
	return s.parseLogical(operator.Or, TokenOr, s.parseAnd)
}

// parseAnd handles: and = constraint ( AND constraint )*
func (s *state) parseAnd() (ast.Node, error) {
	return s.parseLogical(operator.And, TokenAnd, s.parseConstraint)
}

// parseLogical collects terms separated by sep into one flat node.
// A single term is returned as is.
func (s *state) parseLogical(op operator.Logical, sep TokenKind, term func() (ast.Node, error)) (ast.Node, error) {
	start := s.tok

	first, err := term()
	if err != nil {
		return nil, err
	}
	terms := []ast.Node{first}

	for s.tok.Kind == sep {
		if err := s.advance(); err != nil {
			return nil, err
		}
		next, err := term()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}

	if len(terms) == 1 {
		return first, nil
	}

	node, err := s.factory.CreateLogical(op, terms)
	if err != nil {
		return nil, s.wrapNodeError(err, start)
	}
	return node, nil
}

// parseConstraint handles: constraint = '(' or ')' | comparison
func (s *state) parseConstraint() (ast.Node, error) {
	if s.tok.Kind != TokenLParen {
		return s.parseComparison()
	}

	open := s.tok
	s.depth++
	if s.depth > s.maxDepth {
		return nil, s.errorAt(ErrCodeNestingTooDeep, open,
			fmt.Sprintf("parentheses nested deeper than %d", s.maxDepth))
	}
	if err := s.advance(); err != nil {
		return nil, err
	}

	node, err := s.parseOr()
	if err != nil {
		return nil, err
	}

	switch s.tok.Kind {
	case TokenRParen:
	case TokenEOF:
		return nil, s.errorAt(ErrCodeUnmatchedParen, open,
			fmt.Sprintf("'(' at offset %d is never closed", open.Offset))
	default:
		return nil, s.unexpected("')' or logical operator")
	}
	if err := s.advance(); err != nil {
		return nil, err
	}
	s.depth--

	return node, nil
}

// parseComparison handles: comparison = selector comparison-op arguments
func (s *state) parseComparison() (ast.Node, error) {
	selector := s.tok
	if selector.Kind != TokenUnreserved {
		return nil, s.unexpected("selector")
	}
	if err := s.advance(); err != nil {
		return nil, err
	}

	op := s.tok
	if op.Kind != TokenOperator {
		return nil, s.unexpected("comparison operator")
	}
	if err := s.advance(); err != nil {
		return nil, err
	}

	args, err := s.parseArguments()
	if err != nil {
		return nil, err
	}

	node, err := s.factory.CreateComparison(op.Text, selector.Text, args)
	if err != nil {
		return nil, s.wrapNodeError(err, selector)
	}
	return node, nil
}

// parseArguments handles: arguments = value | '(' value ( ',' value )* ')'
//
// Only reachable right after a comparison operator, so a '(' here always
// opens an argument group, never a nested expression.
func (s *state) parseArguments() ([]string, error) {
	if s.tok.Kind != TokenLParen {
		v, err := s.parseValue()
		if err != nil {
			return nil, err
		}
		return []string{v}, nil
	}

	open := s.tok
	if err := s.advance(); err != nil {
		return nil, err
	}

	var values []string
	for {
		v, err := s.parseValue()
		if err != nil {
			return nil, err
		}
		values = append(values, v)

		if s.tok.Kind != TokenOr || s.tok.Text != operator.Or.Symbol() {
			break
		}
		if err := s.advance(); err != nil {
			return nil, err
		}
	}

	switch s.tok.Kind {
	case TokenRParen:
	case TokenEOF:
		return nil, s.errorAt(ErrCodeUnmatchedParen, open,
			fmt.Sprintf("argument group opened at offset %d is never closed", open.Offset))
	default:
		return nil, s.unexpected("',' or ')' in argument group")
	}
	if err := s.advance(); err != nil {
		return nil, err
	}
	return values, nil
}

// parseValue handles: value = quoted-argument | unquoted-argument
func (s *state) parseValue() (string, error) {
	tok := s.tok
	switch tok.Kind {
	case TokenUnreserved, TokenQuoted:
	default:
		return "", s.unexpected("argument")
	}
	if err := s.advance(); err != nil {
		return "", err
	}
	return tok.Value, nil
}

func (s *state) errorAt(code ErrorCode, tok Token, msg string) *ParseError {
	return &ParseError{
		Code:    code,
		Message: msg,
		Offset:  tok.Offset,
		Token:   tok.Text,
	}
}

func (s *state) unexpected(want string) *ParseError {
	return s.errorAt(ErrCodeSyntax, s.tok, fmt.Sprintf("expected %s, got %s", want, s.tok.Kind))
}

// wrapNodeError converts a factory failure into a ParseError located at tok.
func (s *state) wrapNodeError(err error, tok Token) error {
	var ne *ast.NodeError
	if !errors.As(err, &ne) {
		return err
	}

	code := ErrCodeInvariant
	switch ne.Code {
	case ast.ErrCodeUnknownOperator:
		code = ErrCodeUnknownOperator
	case ast.ErrCodeEmptySelector:
		code = ErrCodeEmptySelector
	case ast.ErrCodeArityMismatch:
		code = ErrCodeArityMismatch
	}

	pe := s.errorAt(code, tok, ne.Message)
	pe.Err = err
	return pe
}
