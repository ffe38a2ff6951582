package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/reqmerge/internal/config"
	"github.com/quantmind-br/reqmerge/internal/domain"
	"github.com/quantmind-br/reqmerge/internal/manifest"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newDiscoverer() *Discoverer {
	return NewDiscoverer(manifest.NewLoader(nil), config.DefaultPattern, nil)
}

func TestScan_CompleteTree(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, filepath.Join(dir, "requirements.txt"),
		"-r api/requirements.txt\n-r web/requirements-dev.txt\nflake8==4.0.1\n")
	api := writeFile(t, filepath.Join(dir, "api", "requirements.txt"), "docker[tls]==4.1.0\n")
	web := writeFile(t, filepath.Join(dir, "web", "requirements-dev.txt"), "requests\n")
	lint := writeFile(t, filepath.Join(dir, "requirements-lint.txt"), "black\n")
	writeFile(t, filepath.Join(dir, "api", "setup.cfg"), "[metadata]\n")

	res, err := newDiscoverer().Scan(root)

	require.NoError(t, err)
	assert.Equal(t, root, res.Root)
	assert.ElementsMatch(t, []string{root, api, web, lint}, res.Paths())
	assert.Len(t, res.Requirements(), 4)
}

func TestScan_MissingInclude(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, filepath.Join(dir, "requirements.txt"), "-r api/requirements.txt\n")
	writeFile(t, filepath.Join(dir, "api", "requirements.txt"), "docker\n")
	worker := writeFile(t, filepath.Join(dir, "worker", "requirements.txt"), "celery\n")
	deep := writeFile(t, filepath.Join(dir, "worker", "jobs", "requirements-extra.txt"), "redis\n")

	res, err := newDiscoverer().Scan(root)

	assert.Nil(t, res)
	require.ErrorIs(t, err, domain.ErrMissingInclude)

	var missingErr *domain.MissingIncludeError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, root, missingErr.Root)
	assert.ElementsMatch(t, []string{worker, deep}, missingErr.Missing)
}

func TestScan_TransitiveIncludeDoesNotCount(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, filepath.Join(dir, "requirements.txt"), "-r a/requirements.txt\n")
	writeFile(t, filepath.Join(dir, "a", "requirements.txt"), "-r b/requirements.txt\nflask\n")
	nested := writeFile(t, filepath.Join(dir, "a", "b", "requirements.txt"), "click\n")

	_, err := newDiscoverer().Scan(root)

	var missingErr *domain.MissingIncludeError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, []string{nested}, missingErr.Missing)
}

func TestScan_SameDirectoryFilesNeedNoInclude(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, filepath.Join(dir, "requirements.txt"), "flake8\n")
	writeFile(t, filepath.Join(dir, "requirements-dev.txt"), "pytest\n")

	res, err := newDiscoverer().Scan(root)

	require.NoError(t, err)
	assert.Len(t, res.Files, 2)
}

func TestScan_FollowsIncludesOutsideTree(t *testing.T) {
	base := t.TempDir()
	shared := writeFile(t, filepath.Join(base, "shared", "common.txt"), "six\n")
	root := writeFile(t, filepath.Join(base, "app", "requirements.txt"), "-r ../shared/common.txt\n")

	res, err := newDiscoverer().Scan(root)

	require.NoError(t, err)
	assert.Equal(t, []string{root, shared}, res.Paths())
}

func TestScan_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, filepath.Join(dir, "requirements.txt"), "-r sub/requirements.txt\nflake8\n")
	sub := writeFile(t, filepath.Join(dir, "sub", "requirements.txt"), "-r ../requirements.txt\nrequests\n")

	res, err := newDiscoverer().Scan(root)

	require.NoError(t, err)
	assert.Equal(t, []string{root, sub}, res.Paths())
}

func TestScan_MissingIncludeTarget(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, filepath.Join(dir, "requirements.txt"), "-r nowhere.txt\n")

	_, err := newDiscoverer().Scan(root)

	assert.ErrorIs(t, err, manifest.ErrFileNotFound)
}

func TestScan_RootNotFound(t *testing.T) {
	_, err := newDiscoverer().Scan(filepath.Join(t.TempDir(), "requirements.txt"))

	assert.ErrorIs(t, err, manifest.ErrFileNotFound)
}

func TestExplicit(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a", "requirements.txt"), "flake8\n")
	aNested := writeFile(t, filepath.Join(dir, "a", "sub", "requirements-test.txt"), "pytest\n")
	b := writeFile(t, filepath.Join(dir, "b", "deps.txt"), "-r ../shared.txt\nrequests\n")
	shared := writeFile(t, filepath.Join(dir, "shared.txt"), "six\n")
	writeFile(t, filepath.Join(dir, "c", "requirements.txt"), "unrelated\n")

	res, err := newDiscoverer().Explicit([]string{a, b})

	require.NoError(t, err)
	assert.Empty(t, res.Root)
	assert.ElementsMatch(t, []string{a, aNested, b, shared}, res.Paths())
}

func TestExplicit_DuplicatePaths(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "requirements.txt"), "flake8\n")

	res, err := newDiscoverer().Explicit([]string{a, a})

	require.NoError(t, err)
	assert.Equal(t, []string{a}, res.Paths())
}

func TestExplicit_Errors(t *testing.T) {
	_, err := newDiscoverer().Explicit(nil)
	assert.Error(t, err)

	_, err = newDiscoverer().Explicit([]string{filepath.Join(t.TempDir(), "missing.txt")})
	assert.ErrorIs(t, err, manifest.ErrFileNotFound)
}

func TestResult_Paths(t *testing.T) {
	res := &Result{Files: []*manifest.File{{Path: "a.txt"}, {Path: "b.txt"}}}
	assert.Equal(t, []string{"a.txt", "b.txt"}, res.Paths())
}
