package contract

import "errors"

var (
	// ErrNilTemplate indicates a nil template was added to a graph.
	ErrNilTemplate = errors.New("contract: nil template")

	// ErrTemplateNotFound indicates no node with the given digest exists.
	ErrTemplateNotFound = errors.New("contract: template not found")

	// ErrInvalidParams indicates invalid contract parameters.
	ErrInvalidParams = errors.New("contract: invalid parameters")
)
