package store

import "errors"

var (
	// ErrNilTemplate indicates a nil template was passed to Put.
	ErrNilTemplate = errors.New("store: nil template")

	// ErrNotFound indicates no template with the given digest is stored.
	ErrNotFound = errors.New("store: template not found")

	// ErrForgedRecord indicates a stored record's digest does not match
	// its content. The record is surfaced as corrupt rather than returned.
	ErrForgedRecord = errors.New("store: stored record fails digest verification")
)
