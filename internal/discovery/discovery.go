package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/quantmind-br/reqmerge/internal/domain"
	"github.com/quantmind-br/reqmerge/internal/manifest"
	"github.com/quantmind-br/reqmerge/internal/utils"
)

// Loader loads a single requirement file
type Loader interface {
	Load(path string) (*manifest.File, error)
}

// Result is the set of requirement files a run parses
type Result struct {
	// Root is the root manifest in scan mode, empty in explicit mode
	Root  string
	Files []*manifest.File
}

// Paths returns the paths of the discovered files in sorted order
func (r *Result) Paths() []string {
	paths := make([]string, len(r.Files))
	for i, f := range r.Files {
		paths[i] = f.Path
	}
	return paths
}

// Requirements returns every requirement of every discovered file
func (r *Result) Requirements() []*domain.Requirement {
	var reqs []*domain.Requirement
	for _, f := range r.Files {
		reqs = append(reqs, f.Requirements...)
	}
	return reqs
}

// Discoverer finds the requirement files of a tree
type Discoverer struct {
	loader  Loader
	pattern string
	logger  *utils.Logger
}

// NewDiscoverer creates a discoverer matching file names against pattern
func NewDiscoverer(loader Loader, pattern string, logger *utils.Logger) *Discoverer {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Discoverer{
		loader:  loader,
		pattern: pattern,
		logger:  logger.WithComponent("discovery"),
	}
}

// Scan discovers files from a single root manifest. Every manifest in a
// subdirectory of the root's directory must be included by a -r line of
// the root itself, not by a file the root includes; otherwise a
// *domain.MissingIncludeError lists the stragglers. The
// result holds every manifest under the root's directory plus everything
// reachable through includes.
func (d *Discoverer) Scan(root string) (*Result, error) {
	root = filepath.Clean(root)
	dir := filepath.Dir(root)

	rootFile, err := d.loader.Load(root)
	if err != nil {
		return nil, err
	}

	nested, err := d.glob(dir, "**/*/"+d.pattern)
	if err != nil {
		return nil, err
	}
	imported := make(map[string]bool, len(rootFile.Includes))
	for _, inc := range rootFile.Includes {
		imported[inc] = true
	}
	var missing []string
	for _, path := range nested {
		if !imported[path] {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return nil, domain.NewMissingIncludeError(root, missing)
	}

	tree, err := d.glob(dir, "**/"+d.pattern)
	if err != nil {
		return nil, err
	}

	files, err := d.closure(map[string]*manifest.File{root: rootFile}, append(tree, rootFile.Includes...))
	if err != nil {
		return nil, err
	}
	return d.result(root, files), nil
}

// Explicit discovers files from a list of manifests: the files
// themselves, everything they include, and every manifest under their
// directories. There is no completeness check.
func (d *Discoverer) Explicit(paths []string) (*Result, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no requirement files given")
	}

	var queue []string
	seenDirs := make(map[string]bool)
	for _, p := range paths {
		p = filepath.Clean(p)
		if !utils.FileExists(p) {
			return nil, fmt.Errorf("%w: %s", manifest.ErrFileNotFound, p)
		}
		queue = append(queue, p)

		dir := filepath.Dir(p)
		if seenDirs[dir] {
			continue
		}
		seenDirs[dir] = true
		tree, err := d.glob(dir, "**/"+d.pattern)
		if err != nil {
			return nil, err
		}
		queue = append(queue, tree...)
	}

	files, err := d.closure(make(map[string]*manifest.File), queue)
	if err != nil {
		return nil, err
	}
	return d.result("", files), nil
}

// closure loads every queued path and, transitively, every include
func (d *Discoverer) closure(loaded map[string]*manifest.File, queue []string) (map[string]*manifest.File, error) {
	for _, f := range loaded {
		queue = append(queue, f.Includes...)
	}

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		if _, ok := loaded[path]; ok {
			continue
		}

		file, err := d.loader.Load(path)
		if err != nil {
			return nil, err
		}
		loaded[path] = file
		queue = append(queue, file.Includes...)
	}
	return loaded, nil
}

func (d *Discoverer) result(root string, files map[string]*manifest.File) *Result {
	res := &Result{Root: root, Files: make([]*manifest.File, 0, len(files))}
	for _, f := range files {
		res.Files = append(res.Files, f)
	}
	sort.Slice(res.Files, func(i, j int) bool {
		return res.Files[i].Path < res.Files[j].Path
	})

	d.logger.Debug().
		Str("root", root).
		Strs("files", res.Paths()).
		Msg("Discovered requirement files")
	return res
}

// glob returns the cleaned, sorted paths of regular files under dir that
// match pattern
func (d *Discoverer) glob(dir, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob %s in %s: %w", pattern, dir, err)
	}

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		path := filepath.Clean(filepath.Join(dir, filepath.FromSlash(m)))
		if utils.FileExists(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}
