package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

var nameSeparators = regexp.MustCompile(`[-_.]+`)

// Source points at the manifest line a requirement came from
type Source struct {
	Path string `json:"path" yaml:"path" toml:"path"`
	Line int    `json:"line" yaml:"line" toml:"line"`
}

func (s Source) String() string {
	if s.Line > 0 {
		return fmt.Sprintf("%s:%d", s.Path, s.Line)
	}
	return s.Path
}

// Requirement is one package constraint parsed from a manifest line
type Requirement struct {
	// Name is the PEP 503 canonical package name
	Name string `json:"name" yaml:"name" toml:"name"`
	// Specifier is the normalized version constraint; empty means unpinned
	Specifier string `json:"specifier,omitempty" yaml:"specifier,omitempty" toml:"specifier,omitempty"`
	// Extras is the set of requested optional features
	Extras map[string]struct{} `json:"-" yaml:"-" toml:"-"`
	// Marker is the raw environment marker, empty when unconditional
	Marker string `json:"marker,omitempty" yaml:"marker,omitempty" toml:"marker,omitempty"`
	// Link is a direct URL or path; when set it is emitted verbatim
	Link     string   `json:"link,omitempty" yaml:"link,omitempty" toml:"link,omitempty"`
	Editable bool     `json:"editable,omitempty" yaml:"editable,omitempty" toml:"editable,omitempty"`
	Sources  []Source `json:"sources" yaml:"sources" toml:"sources"`
}

// NewRequirement creates a requirement with a canonical name and the given extras
func NewRequirement(name, specifier string, extras ...string) *Requirement {
	req := &Requirement{
		Name:      CanonicalName(name),
		Specifier: specifier,
		Extras:    make(map[string]struct{}, len(extras)),
	}
	for _, e := range extras {
		req.AddExtra(e)
	}
	return req
}

// AddExtra adds an extra to the requirement's set
func (r *Requirement) AddExtra(extra string) {
	extra = strings.TrimSpace(extra)
	if extra == "" {
		return
	}
	if r.Extras == nil {
		r.Extras = make(map[string]struct{})
	}
	r.Extras[extra] = struct{}{}
}

// MergeExtras unions other's extras into r
func (r *Requirement) MergeExtras(other *Requirement) {
	for e := range other.Extras {
		r.AddExtra(e)
	}
}

// SortedExtras returns the extras in lexicographic order
func (r *Requirement) SortedExtras() []string {
	extras := make([]string, 0, len(r.Extras))
	for e := range r.Extras {
		extras = append(extras, e)
	}
	sort.Strings(extras)
	return extras
}

// IsPinned reports whether the requirement carries a version specifier
func (r *Requirement) IsPinned() bool {
	return r.Specifier != ""
}

// String renders the requirement as a manifest line: the link verbatim
// when present, otherwise name[extras]specifier.
func (r *Requirement) String() string {
	if r.Link != "" {
		return r.Link
	}
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteByte('[')
		b.WriteString(strings.Join(r.SortedExtras(), ","))
		b.WriteByte(']')
	}
	b.WriteString(r.Specifier)
	return b.String()
}

// CanonicalName normalizes a package name per PEP 503: case-folded, with
// runs of "-", "_" and "." collapsed into a single "-".
func CanonicalName(name string) string {
	name = strings.TrimSpace(name)
	return nameSeparators.ReplaceAllString(cases.Fold().String(name), "-")
}

// MergedManifest maps a canonical package name to its single merged record
type MergedManifest map[string]*Requirement

// Names returns the package names in sorted order
func (m MergedManifest) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy of the requirement that shares no mutable state
func (r *Requirement) Clone() *Requirement {
	clone := *r
	clone.Extras = make(map[string]struct{}, len(r.Extras))
	for e := range r.Extras {
		clone.Extras[e] = struct{}{}
	}
	clone.Sources = append([]Source(nil), r.Sources...)
	return &clone
}
