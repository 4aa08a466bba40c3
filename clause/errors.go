package clause

import "errors"

var (
	// ErrNilClause indicates a combinator holds a nil sub-clause.
	ErrNilClause = errors.New("clause: nil clause")

	// ErrOrUnderAnd indicates an Or nested under an And, which cannot be
	// flattened into disjunctive normal form by a shallow pass.
	ErrOrUnderAnd = errors.New("clause: Or under And cannot be flattened")

	// ErrUnknownClause indicates an unrecognized clause variant.
	ErrUnknownClause = errors.New("clause: unknown clause variant")

	// ErrCompile indicates a clause could not be rendered as a script.
	ErrCompile = errors.New("clause: compile failed")

	// ErrDecode indicates a serialized clause is malformed.
	ErrDecode = errors.New("clause: decode failed")
)
