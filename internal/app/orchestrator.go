package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/joho/godotenv"

	"github.com/quantmind-br/reqmerge/internal/config"
	"github.com/quantmind-br/reqmerge/internal/discovery"
	"github.com/quantmind-br/reqmerge/internal/domain"
	"github.com/quantmind-br/reqmerge/internal/manifest"
	"github.com/quantmind-br/reqmerge/internal/markers"
	"github.com/quantmind-br/reqmerge/internal/merge"
	"github.com/quantmind-br/reqmerge/internal/output"
	"github.com/quantmind-br/reqmerge/internal/utils"
)

// Mode selects how input manifests are discovered
type Mode string

const (
	// ModeExplicit merges the listed files and everything they include
	ModeExplicit Mode = "explicit"
	// ModeScan merges the tree of a root manifest and requires the root to
	// include every nested manifest
	ModeScan Mode = "scan"
)

// Orchestrator coordinates the merge pipeline: discovery, marker
// filtering, aggregation and output
type Orchestrator struct {
	config     *config.Config
	logger     *utils.Logger
	discoverer *discovery.Discoverer
	prober     markers.Prober
	writer     *output.Writer
	collector  *output.ReportCollector
}

// OrchestratorOptions contains options for creating an orchestrator
type OrchestratorOptions struct {
	Config *config.Config
	// Logger receives all diagnostics; built from Config when nil
	Logger *utils.Logger
	Debug  bool
	// Prober overrides the interpreter prober built from Config
	Prober     markers.Prober
	Stdout     io.Writer
	OutputPath string
	ReportPath string
	Force      bool
}

// Result summarizes a successful run
type Result struct {
	Lines    []string
	Files    []string
	Warnings []merge.Warning
	Dropped  int
}

// NewOrchestrator creates a new orchestrator with the given configuration
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Debug:  opts.Debug,
		})
	}

	prober := opts.Prober
	if prober == nil && cfg.Markers.Probe {
		prober = markers.NewInterpreterProber(cfg.Markers.Interpreter, cfg.Markers.ProbeTimeout)
	}

	loader := manifest.NewLoader(logger)
	if len(cfg.Manifest.EnvFiles) > 0 {
		vars, err := godotenv.Read(cfg.Manifest.EnvFiles...)
		if err != nil {
			return nil, fmt.Errorf("failed to read env files: %w", err)
		}
		loader.WithVariables(vars)
		logger.Debug().
			Strs("env_files", cfg.Manifest.EnvFiles).
			Int("variables", len(vars)).
			Msg("Loaded variables for requirement files")
	}

	return &Orchestrator{
		config:     cfg,
		logger:     logger,
		discoverer: discovery.NewDiscoverer(loader, cfg.Discovery.Pattern, logger),
		prober:     prober,
		writer: output.NewWriter(output.WriterOptions{
			Path:   opts.OutputPath,
			Force:  opts.Force || cfg.Output.Force,
			Stdout: opts.Stdout,
			Logger: logger,
		}),
		collector: output.NewReportCollector(output.CollectorOptions{Path: opts.ReportPath}),
	}, nil
}

// Run merges the manifests named by paths. On any fatal condition the
// error is returned and nothing is written.
func (o *Orchestrator) Run(ctx context.Context, mode Mode, paths []string) (*Result, error) {
	startTime := time.Now()

	o.logger.Debug().
		Str("mode", string(mode)).
		Strs("paths", paths).
		Msg("Starting requirements merge")

	if err := o.writer.Check(); err != nil {
		return nil, err
	}

	found, err := o.discover(mode, paths)
	if err != nil {
		return nil, err
	}
	o.collector.SetFiles(found.Root, found.Paths())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	env := o.environment(ctx)
	o.collector.SetEnvironment(env)

	reqs, dropped, err := o.filter(found.Requirements(), env)
	if err != nil {
		return nil, err
	}

	merger := merge.NewMerger(o.logger)
	merged, err := merger.Merge(reqs)
	if err != nil {
		return nil, err
	}

	lines := merge.Lines(merged)
	if err := o.writer.Write(ctx, lines); err != nil {
		return nil, err
	}
	if err := o.collector.Flush(merged, merger.Warnings()); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	o.logger.Info().
		Int("files", len(found.Files)).
		Int("packages", len(lines)).
		Int("warnings", len(merger.Warnings())).
		Int("dropped", dropped).
		Dur("duration", time.Since(startTime)).
		Msg("Requirements merged")

	return &Result{
		Lines:    lines,
		Files:    found.Paths(),
		Warnings: merger.Warnings(),
		Dropped:  dropped,
	}, nil
}

func (o *Orchestrator) discover(mode Mode, paths []string) (*discovery.Result, error) {
	switch mode {
	case ModeScan:
		if len(paths) != 1 {
			return nil, fmt.Errorf("scan mode takes exactly one root file, got %d", len(paths))
		}
		return o.discoverer.Scan(paths[0])
	case ModeExplicit:
		return o.discoverer.Explicit(paths)
	default:
		return nil, fmt.Errorf("unknown mode: %s", mode)
	}
}

func (o *Orchestrator) environment(ctx context.Context) markers.Environment {
	fallback := markers.DefaultEnvironment(o.config.Markers.PythonVersion)
	return markers.Resolve(ctx, o.prober, fallback, o.config.Markers.Environment, o.logger)
}

// filter drops the records whose marker is false in env
func (o *Orchestrator) filter(reqs []*domain.Requirement, env markers.Environment) ([]*domain.Requirement, int, error) {
	kept := make([]*domain.Requirement, 0, len(reqs))
	dropped := 0
	for _, req := range reqs {
		ok, err := markers.Evaluate(req.Marker, env)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %s: %w", sourceOf(req), req.Name, err)
		}
		if !ok {
			dropped++
			o.collector.AddDropped(req)
			o.logger.Debug().
				Str("package", req.Name).
				Str("marker", req.Marker).
				Str("source", sourceOf(req)).
				Msg("Requirement dropped by environment marker")
			continue
		}
		kept = append(kept, req)
	}
	return kept, dropped, nil
}

func sourceOf(req *domain.Requirement) string {
	if len(req.Sources) == 0 {
		return "<unknown>"
	}
	return req.Sources[0].String()
}
