package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristendillon/pypack/core/models"
)

func newProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func relPaths(t *testing.T, root string, set *models.DependencySet) []string {
	t.Helper()
	var out []string
	for _, p := range set.Paths() {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestEntryWithNoImports(t *testing.T) {
	root := newProject(t, map[string]string{
		"app.py": "print('hello')\n",
	})

	result, err := New(root).Walk(filepath.Join(root, "app.py"))
	require.NoError(t, err)
	assert.Equal(t, []string{"app.py"}, relPaths(t, root, result.Set))
	assert.Empty(t, result.Warnings)
}

func TestTransitiveClosure(t *testing.T) {
	root := newProject(t, map[string]string{
		"app.py":          "import utils\nfrom pkg import helper\n",
		"utils.py":        "import os\n",
		"pkg/__init__.py": "",
		"pkg/helper.py":   "from . import sibling\n",
		"pkg/sibling.py":  "",
		"unrelated.py":    "import utils\n",
	})

	result, err := New(root).Walk(filepath.Join(root, "app.py"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"app.py",
		"pkg/__init__.py",
		"pkg/helper.py",
		"pkg/sibling.py",
		"utils.py",
	}, relPaths(t, root, result.Set))
	assert.Equal(t, []string{"os"}, result.Externals)
}

func TestCyclicImportsTerminate(t *testing.T) {
	root := newProject(t, map[string]string{
		"a.py": "import b\n",
		"b.py": "import a\n",
	})

	result, err := New(root).Walk(filepath.Join(root, "a.py"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "b.py"}, relPaths(t, root, result.Set))
}

func TestEntryParseFailureIsFatal(t *testing.T) {
	root := newProject(t, map[string]string{
		"app.py": "x = \"unterminated\n",
	})

	_, err := New(root).Walk(filepath.Join(root, "app.py"))
	require.Error(t, err)
}

func TestNonEntryParseFailureIsWarning(t *testing.T) {
	root := newProject(t, map[string]string{
		"app.py": "import broken\n",
		// broken.py cannot be parsed and imports another module; the file
		// itself stays in the set, its imports go unexplored.
		"broken.py": "import hidden\nx = \"unterminated\n",
		"hidden.py": "",
	})

	result, err := New(root).Walk(filepath.Join(root, "app.py"))
	require.NoError(t, err)
	assert.Equal(t, []string{"app.py", "broken.py"}, relPaths(t, root, result.Set))
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, models.ParseFailureWarning, result.Warnings[0].Kind)
}

func TestInvalidRelativeImportIsWarning(t *testing.T) {
	root := newProject(t, map[string]string{
		"app.py": "from .. import nothing\n",
	})

	result, err := New(root).Walk(filepath.Join(root, "app.py"))
	require.NoError(t, err)
	assert.Equal(t, []string{"app.py"}, relPaths(t, root, result.Set))
	require.NotEmpty(t, result.Warnings)
	for _, w := range result.Warnings {
		assert.Equal(t, models.InvalidRelativeImportWarning, w.Kind)
	}
	assert.Empty(t, result.Externals)
}

func TestExternalsExcludeLocalSubmoduleMisses(t *testing.T) {
	root := newProject(t, map[string]string{
		// "attr" is an attribute of pkg, not a module; pkg itself is local
		// so nothing here is third-party.
		"app.py":          "from pkg import attr\nimport requests\n",
		"pkg/__init__.py": "attr = 1\n",
	})

	result, err := New(root).Walk(filepath.Join(root, "app.py"))
	require.NoError(t, err)
	assert.Equal(t, []string{"requests"}, result.Externals)
}

func TestDataFileCollection(t *testing.T) {
	root := newProject(t, map[string]string{
		"app.py":           "import utils\n",
		"utils.py":         "",
		"settings.yaml":    "a: 1\n",
		"notes.md":         "ignored\n",
		"sub/fixture.json": "{}\n",
	})

	w := New(root)
	w.DataExtensions = []string{".yaml", ".json"}
	result, err := w.Walk(filepath.Join(root, "app.py"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"app.py",
		"settings.yaml",
		"sub/fixture.json",
		"utils.py",
	}, relPaths(t, root, result.Set))

	kind, ok := result.Set.Kind(filepath.Join(root, "settings.yaml"))
	require.True(t, ok)
	assert.Equal(t, models.DataFile, kind)
}

func TestWalkIsOrderIndependent(t *testing.T) {
	root := newProject(t, map[string]string{
		"a.py": "import b\nimport c\n",
		"b.py": "import d\n",
		"c.py": "import d\n",
		"d.py": "",
	})

	first, err := New(root).Walk(filepath.Join(root, "a.py"))
	require.NoError(t, err)
	second, err := New(root).Walk(filepath.Join(root, "a.py"))
	require.NoError(t, err)
	assert.Equal(t, first.Set.Paths(), second.Set.Paths())
	assert.Equal(t, []string{"a.py", "b.py", "c.py", "d.py"}, relPaths(t, root, first.Set))
}
