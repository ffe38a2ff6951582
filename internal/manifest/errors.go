package manifest

import (
	"errors"
	"fmt"
)

// Sentinel errors for the manifest package
var (
	// ErrFileNotFound indicates the requirement file does not exist
	ErrFileNotFound = errors.New("requirement file not found")

	// ErrInvalidSyntax indicates a line is not a valid requirement or option
	ErrInvalidSyntax = errors.New("invalid requirement syntax")

	// ErrInvalidSpecifier indicates a version specifier is malformed
	ErrInvalidSpecifier = errors.New("invalid version specifier")

	// ErrRemoteInclude indicates an include directive points at a URL
	ErrRemoteInclude = errors.New("remote requirement files are not supported")
)

// ParseError locates a syntax error inside a requirement file
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
