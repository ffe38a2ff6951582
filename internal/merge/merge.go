package merge

import (
	"sort"

	"github.com/quantmind-br/reqmerge/internal/domain"
	"github.com/quantmind-br/reqmerge/internal/utils"
)

// Warning is an advisory finding that does not stop the merge
type Warning struct {
	Package string        `json:"package" yaml:"package" toml:"package"`
	Message string        `json:"message" yaml:"message" toml:"message"`
	Source  domain.Source `json:"source" yaml:"source" toml:"source"`
}

// Merger folds requirement records into a MergedManifest
type Merger struct {
	logger   *utils.Logger
	merged   domain.MergedManifest
	warnings []Warning
}

// NewMerger creates an empty merger
func NewMerger(logger *utils.Logger) *Merger {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Merger{
		logger: logger.WithComponent("merge"),
		merged: make(domain.MergedManifest),
	}
}

// Add merges one record. An unpinned record produces a warning. A record
// whose specifier differs from an already merged record of the same name
// returns a *domain.ConflictError; an empty specifier counts as a value of
// its own, so pinned against unpinned conflicts too. The input record is
// never mutated.
func (m *Merger) Add(req *domain.Requirement) error {
	if !req.IsPinned() {
		m.warn(req, "package is not pinned")
	}

	existing, ok := m.merged[req.Name]
	if !ok {
		m.merged[req.Name] = req.Clone()
		return nil
	}

	if existing.Specifier != req.Specifier {
		return conflict(existing, req, existing.Specifier, req.Specifier)
	}
	if existing.Link != "" && req.Link != "" && existing.Link != req.Link {
		return conflict(existing, req, existing.Link, req.Link)
	}

	if existing.Link == "" && req.Link != "" {
		existing.Link = req.Link
	}
	existing.Editable = existing.Editable || req.Editable
	existing.MergeExtras(req)
	existing.Sources = append(existing.Sources, req.Sources...)
	return nil
}

// Merge adds every record and returns the merged manifest, or the first
// conflict encountered. Nothing is returned on conflict.
func (m *Merger) Merge(reqs []*domain.Requirement) (domain.MergedManifest, error) {
	for _, req := range reqs {
		if err := m.Add(req); err != nil {
			return nil, err
		}
	}
	return m.merged, nil
}

// Warnings returns the warnings raised so far
func (m *Merger) Warnings() []Warning {
	return m.warnings
}

func (m *Merger) warn(req *domain.Requirement, msg string) {
	w := Warning{Package: req.Name, Message: msg}
	if len(req.Sources) > 0 {
		w.Source = req.Sources[0]
	}
	m.warnings = append(m.warnings, w)

	m.logger.Warn().
		Str("package", req.Name).
		Str("source", w.Source.String()).
		Msg(msg)
}

func conflict(existing, incoming *domain.Requirement, a, b string) error {
	sources := make([]domain.Source, 0, len(existing.Sources)+len(incoming.Sources))
	sources = append(sources, existing.Sources...)
	sources = append(sources, incoming.Sources...)
	return domain.NewConflictError(incoming.Name, a, b, sources...)
}

// Render returns the manifest line for a merged record
func Render(req *domain.Requirement) string {
	return req.String()
}

// Lines renders every record of the manifest, sorted lexicographically
func Lines(manifest domain.MergedManifest) []string {
	lines := make([]string, 0, len(manifest))
	for _, req := range manifest {
		lines = append(lines, Render(req))
	}
	sort.Strings(lines)
	return lines
}
