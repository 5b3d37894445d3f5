// Package operator defines the comparison and logical operators recognized
// by the RSQL parser and the Registry that holds them.
//
// A Registry is built once and never mutated afterwards. The lexer consults
// it for greedy symbol matching and the node factory resolves symbols to
// operator identities through it, so one Registry may be shared by any
// number of concurrent parses.
//
// DEFAULT OPERATORS:
//
//	meaning            canonical  alternative  arity
//	-------            ---------  -----------  -----
//	equal              ==                      exactly-one
//	not-equal          !=                      exactly-one
//	greater-than       =gt=       >            exactly-one
//	greater-or-equal   =ge=       >=           exactly-one
//	less-than          =lt=       <            exactly-one
//	less-or-equal      =le=       <=           exactly-one
//	in                 =in=                    one-or-more
//	not-in             =out=                   one-or-more
//
// The default table and the logical operators (AND ";" / " and ", OR "," /
// " or ") are part of the query language contract. Changing a symbol, an
// arity or the precedence order breaks every consumer of the produced trees.
//
// CUSTOM REGISTRIES:
//
// Callers needing extra operators build their own Registry:
//
//	like, err := operator.NewComparison(operator.ExactlyOne, "=like=")
//	reg, err := operator.NewRegistry(append(operator.DefaultOperators(), like)...)
//
// NewRegistry rejects two operators sharing a symbol, since that would make
// lexing ambiguous.
package operator
