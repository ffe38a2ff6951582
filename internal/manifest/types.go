package manifest

import "github.com/quantmind-br/reqmerge/internal/domain"

// File is a parsed requirement file
type File struct {
	Path         string
	Requirements []*domain.Requirement
	// Includes holds the cleaned paths of "-r" targets, in file order
	Includes []string
	// Constraints holds the cleaned paths of "-c" targets; they are
	// recorded but never merged
	Constraints []string
}

// ignoredOptions are global pip options that do not affect merging.
// The value reports whether the option consumes an argument.
var ignoredOptions = map[string]bool{
	"-i":                true,
	"--index-url":       true,
	"--extra-index-url": true,
	"-f":                true,
	"--find-links":      true,
	"--trusted-host":    true,
	"--use-feature":     true,
	"--only-binary":     true,
	"--no-binary":       true,
	"--no-index":        false,
	"--pre":             false,
	"--prefer-binary":   false,
	"--require-hashes":  false,
}

// requirementOptions may trail a requirement on the same line
var requirementOptions = map[string]bool{
	"--hash":            true,
	"--config-settings": true,
	"--global-option":   true,
}
