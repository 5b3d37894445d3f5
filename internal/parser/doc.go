// Package parser parses RSQL query text into an ast.Node.
//
// RSQL is a superset of FIQL: comparisons of the form
// "selector operator argument(s)" combined with AND (";" or " and ") and
// OR ("," or " or "), grouped with parentheses.
//
// GRAMMAR (lowest precedence first):
//
//	query      = or EOF
//	or         = and ( OR and )*
//	and        = constraint ( AND constraint )*
//	constraint = '(' or ')' | comparison
//	comparison = selector comparison-op arguments
//	arguments  = value | '(' value ( ',' value )* ')'
//	value      = quoted-argument | unquoted-argument
//
// AND binds tighter than OR, so "a==1,b==2;c==3" is Or[a, And[b, c]].
// Terms at one level are collected into a single n-ary node and a lone
// term is returned unwrapped, so "((a==1))" is just the comparison.
//
// A '(' that directly follows a comparison operator opens an argument
// group; anywhere else it opens a nested expression. The grammar is the
// same for every arity class; argument counts are checked by the node
// factory.
//
// LEXICAL RULES:
//
// Selectors and unquoted arguments are non-empty runs of any characters
// except the reserved set  " ' ( ) ; , = < > ! ~  and space. Quoted
// arguments run to the next occurrence of the opening quote with no
// escape processing. A lone "=" is rejected rather than read as equality.
// Spaces are only accepted inside " and ", " or " and quoted arguments.
//
// ERRORS:
//
// Parsing is all-or-nothing. The first violation aborts the call with a
// *ParseError carrying an ErrorCode, the byte offset and the offending
// text. An empty query yields ErrInvalidArgument.
//
// CONCURRENCY:
//
// Parse holds no shared mutable state. A Parser and its operator.Registry
// can be used from any number of goroutines.
package parser
