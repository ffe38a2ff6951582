package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	// ErrConflict indicates a package is required with different versions
	ErrConflict = errors.New("package is duplicated with different versions")

	// ErrMissingInclude indicates manifests exist that the root does not include
	ErrMissingInclude = errors.New("manifests are missing from the root manifest")
)

// ConflictError reports two incompatible records for the same package.
// Which side is Existing and which is Incoming depends on processing
// order and carries no meaning.
type ConflictError struct {
	Name     string
	Existing string
	Incoming string
	Sources  []Source
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s is duplicated with different versions: %q vs %q",
		e.Name, e.Incoming, e.Existing)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// NewConflictError creates a new ConflictError
func NewConflictError(name, existing, incoming string, sources ...Source) *ConflictError {
	return &ConflictError{
		Name:     name,
		Existing: existing,
		Incoming: incoming,
		Sources:  sources,
	}
}

// MissingIncludeError lists manifests under the root's tree that are not
// referenced through an include directive of the root manifest
type MissingIncludeError struct {
	Root    string
	Missing []string
}

func (e *MissingIncludeError) Error() string {
	return fmt.Sprintf("[%s] are missing from %s", strings.Join(e.Missing, ", "), e.Root)
}

func (e *MissingIncludeError) Unwrap() error {
	return ErrMissingInclude
}

// NewMissingIncludeError creates a new MissingIncludeError
func NewMissingIncludeError(root string, missing []string) *MissingIncludeError {
	return &MissingIncludeError{
		Root:    root,
		Missing: missing,
	}
}

// IsFatal reports whether err belongs to the merge's fatal taxonomy
// (conflict or missing include) as opposed to an I/O or usage failure
func IsFatal(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrMissingInclude)
}
