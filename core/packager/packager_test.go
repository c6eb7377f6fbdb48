package packager

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristendillon/pypack/core/models"
)

func newProject(t *testing.T, files map[string]string) (string, *models.DependencySet) {
	t.Helper()
	root := t.TempDir()
	set := models.NewDependencySet()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		set.Add(path, models.SourceModule)
	}
	return root, set
}

func TestCopyTreePreservesLayout(t *testing.T) {
	root, set := newProject(t, map[string]string{
		"app.py":     "import pkg.mod\n",
		"pkg/mod.py": "x = 1\n",
	})
	out := filepath.Join(t.TempDir(), "out")

	p := New(root, out, false)
	require.NoError(t, p.Package(set, nil))

	content, err := os.ReadFile(filepath.Join(out, "pkg", "mod.py"))
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", string(content))
	assert.FileExists(t, filepath.Join(out, "app.py"))
	assert.NoFileExists(t, filepath.Join(out, requirementsFile))
	assert.Equal(t, out, p.OutputPath())
}

func TestCopyTreeWritesRequirements(t *testing.T) {
	root, set := newProject(t, map[string]string{"app.py": ""})
	out := filepath.Join(t.TempDir(), "out")

	require.NoError(t, New(root, out, false).Package(set, []string{"requests", "yaml"}))

	content, err := os.ReadFile(filepath.Join(out, requirementsFile))
	require.NoError(t, err)
	assert.Equal(t, "requests\nyaml\n", string(content))
}

func TestCopyTreeOverwritesExistingOutput(t *testing.T) {
	root, set := newProject(t, map[string]string{"app.py": "new\n"})
	out := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.MkdirAll(out, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "app.py"), []byte("old\n"), 0644))

	require.NoError(t, New(root, out, false).Package(set, nil))

	content, err := os.ReadFile(filepath.Join(out, "app.py"))
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(content))
}

func TestEntryOutsideRootLandsAtOutputRoot(t *testing.T) {
	root, set := newProject(t, map[string]string{"utils.py": ""})
	entry := filepath.Join(t.TempDir(), "run.py")
	require.NoError(t, os.WriteFile(entry, []byte("import utils\n"), 0644))
	set.Add(entry, models.SourceModule)
	out := filepath.Join(t.TempDir(), "out")

	require.NoError(t, New(root, out, false).Package(set, nil))
	assert.FileExists(t, filepath.Join(out, "run.py"))
	assert.FileExists(t, filepath.Join(out, "utils.py"))
}

func TestArchiveLayout(t *testing.T) {
	root, set := newProject(t, map[string]string{
		"app.py":     "",
		"pkg/mod.py": "x = 1\n",
	})
	out := filepath.Join(t.TempDir(), "dist")

	p := New(root, out, true)
	require.NoError(t, p.Package(set, []string{"requests"}))
	assert.Equal(t, out+archiveExt, p.OutputPath())

	f, err := os.Open(out + archiveExt)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"app.py", "pkg/mod.py", requirementsFile}, names)
}

func TestPackageFailureReported(t *testing.T) {
	root, set := newProject(t, map[string]string{"app.py": ""})
	// The output path collides with an existing file, so directory
	// creation must fail.
	out := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(out, []byte("in the way"), 0644))

	err := New(root, filepath.Join(out, "nested"), false).Package(set, nil)
	require.Error(t, err)
}
