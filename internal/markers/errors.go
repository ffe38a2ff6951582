package markers

import "errors"

var (
	// ErrInvalidMarker indicates a marker expression could not be parsed
	ErrInvalidMarker = errors.New("invalid marker")

	// ErrUndefinedComparison indicates an operator that has no meaning for
	// the operands, such as "~=" between two non-version strings
	ErrUndefinedComparison = errors.New("undefined comparison")

	// ErrUnknownVariable indicates a marker names a variable PEP 508 does not define
	ErrUnknownVariable = errors.New("unknown marker variable")
)
