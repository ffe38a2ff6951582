package output

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/quantmind-br/reqmerge/internal/domain"
	"github.com/quantmind-br/reqmerge/internal/merge"
	"github.com/quantmind-br/reqmerge/internal/utils"
)

// Report describes one merge run
type Report struct {
	GeneratedAt time.Time         `json:"generated_at" yaml:"generated_at" toml:"generated_at"`
	Root        string            `json:"root,omitempty" yaml:"root,omitempty" toml:"root,omitempty"`
	Files       []string          `json:"files" yaml:"files" toml:"files"`
	Packages    []ReportPackage   `json:"packages" yaml:"packages" toml:"packages"`
	Dropped     []ReportDropped   `json:"dropped,omitempty" yaml:"dropped,omitempty" toml:"dropped,omitempty"`
	Warnings    []merge.Warning   `json:"warnings,omitempty" yaml:"warnings,omitempty" toml:"warnings,omitempty"`
	Environment map[string]string `json:"environment,omitempty" yaml:"environment,omitempty" toml:"environment,omitempty"`
}

// ReportPackage is one line of the merged manifest and where it came from
type ReportPackage struct {
	Name      string          `json:"name" yaml:"name" toml:"name"`
	Line      string          `json:"line" yaml:"line" toml:"line"`
	Specifier string          `json:"specifier,omitempty" yaml:"specifier,omitempty" toml:"specifier,omitempty"`
	Extras    []string        `json:"extras,omitempty" yaml:"extras,omitempty" toml:"extras,omitempty"`
	Link      string          `json:"link,omitempty" yaml:"link,omitempty" toml:"link,omitempty"`
	Sources   []domain.Source `json:"sources" yaml:"sources" toml:"sources"`
}

// ReportDropped is a record filtered out by its environment marker
type ReportDropped struct {
	Name   string        `json:"name" yaml:"name" toml:"name"`
	Marker string        `json:"marker" yaml:"marker" toml:"marker"`
	Source domain.Source `json:"source" yaml:"source" toml:"source"`
}

// ReportCollector gathers the facts of a run and writes them as YAML, or
// as JSON or TOML when the report path ends in .json or .toml
type ReportCollector struct {
	path        string
	root        string
	files       []string
	dropped     []ReportDropped
	environment map[string]string
	now         func() time.Time
}

// CollectorOptions contains options for the report collector
type CollectorOptions struct {
	// Path of the report; empty disables the collector
	Path string
}

// NewReportCollector creates a report collector
func NewReportCollector(opts CollectorOptions) *ReportCollector {
	return &ReportCollector{
		path: opts.Path,
		now:  time.Now,
	}
}

// IsEnabled reports whether a report will be written
func (c *ReportCollector) IsEnabled() bool {
	return c.path != ""
}

// SetFiles records the parsed files and, in scan mode, the root
func (c *ReportCollector) SetFiles(root string, files []string) {
	c.root = root
	c.files = files
}

// SetEnvironment records the marker environment used for filtering
func (c *ReportCollector) SetEnvironment(env map[string]string) {
	c.environment = env
}

// AddDropped records a requirement removed by its marker
func (c *ReportCollector) AddDropped(req *domain.Requirement) {
	d := ReportDropped{Name: req.Name, Marker: req.Marker}
	if len(req.Sources) > 0 {
		d.Source = req.Sources[0]
	}
	c.dropped = append(c.dropped, d)
}

// Build assembles the report for a merged manifest
func (c *ReportCollector) Build(manifest domain.MergedManifest, warnings []merge.Warning) *Report {
	report := &Report{
		GeneratedAt: c.now().UTC(),
		Root:        c.root,
		Files:       c.files,
		Packages:    make([]ReportPackage, 0, len(manifest)),
		Dropped:     c.dropped,
		Warnings:    warnings,
		Environment: c.environment,
	}
	for _, name := range manifest.Names() {
		req := manifest[name]
		report.Packages = append(report.Packages, ReportPackage{
			Name:      req.Name,
			Line:      merge.Render(req),
			Specifier: req.Specifier,
			Extras:    req.SortedExtras(),
			Link:      req.Link,
			Sources:   req.Sources,
		})
	}
	return report
}

// Flush writes the report for a merged manifest. It is a no-op when the
// collector is disabled.
func (c *ReportCollector) Flush(manifest domain.MergedManifest, warnings []merge.Warning) error {
	if !c.IsEnabled() {
		return nil
	}

	data, err := Marshal(c.Build(manifest, warnings), c.path)
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(c.path, data, 0644)
}

// Marshal encodes the report in the format implied by path's extension
func Marshal(report *Report, path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode report: %w", err)
		}
		return append(data, '\n'), nil
	case ".toml":
		data, err := toml.Marshal(report)
		if err != nil {
			return nil, fmt.Errorf("failed to encode report: %w", err)
		}
		return data, nil
	default:
		data, err := yaml.Marshal(report)
		if err != nil {
			return nil, fmt.Errorf("failed to encode report: %w", err)
		}
		return data, nil
	}
}
