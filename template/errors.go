package template

import "errors"

var (
	// ErrMalformedInput indicates a caller supplied an invalid output,
	// amount, or script.
	ErrMalformedInput = errors.New("template: malformed input")

	// ErrAmountExceeded indicates the pending output total exceeds the
	// declared maximum amount.
	ErrAmountExceeded = errors.New("template: total amount exceeds declared maximum")

	// ErrEmptyOutputSet indicates Finalize was called with no outputs added.
	ErrEmptyOutputSet = errors.New("template: no outputs added")

	// ErrAlreadyFinalized indicates a Builder was reused after Finalize.
	ErrAlreadyFinalized = errors.New("template: builder already finalized")

	// ErrInvariantViolation indicates a claimed digest or output set does
	// not match the transaction body it was attached to.
	ErrInvariantViolation = errors.New("template: invariant violation")
)
