package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/quantmind-br/reqmerge/internal/utils"
)

// ErrOutputExists is returned when the output file exists and overwriting
// was not requested
var ErrOutputExists = errors.New("output file already exists")

// Writer emits the merged manifest
type Writer struct {
	path   string
	force  bool
	stdout io.Writer
	logger *utils.Logger
}

// WriterOptions contains options for the writer
type WriterOptions struct {
	// Path of the output file; empty writes to Stdout
	Path   string
	Force  bool
	Stdout io.Writer
	Logger *utils.Logger
}

// NewWriter creates a new manifest writer
func NewWriter(opts WriterOptions) *Writer {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}

	return &Writer{
		path:   opts.Path,
		force:  opts.Force,
		stdout: opts.Stdout,
		logger: opts.Logger.WithComponent("output"),
	}
}

// Check fails early when the output file exists and cannot be overwritten
func (w *Writer) Check() error {
	if w.path == "" || w.force {
		return nil
	}
	if _, err := os.Stat(w.path); err == nil {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrOutputExists, w.path)
	}
	return nil
}

// Write emits each line newline-terminated
func (w *Writer) Write(ctx context.Context, lines []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	content := Format(lines)

	if w.path == "" {
		_, err := io.WriteString(w.stdout, content)
		return err
	}

	if err := w.Check(); err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(w.path, []byte(content), 0644); err != nil {
		return err
	}

	w.logger.Info().
		Str("path", w.path).
		Int("packages", len(lines)).
		Msg("Merged manifest written")
	return nil
}

// Format joins lines into manifest text
func Format(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
