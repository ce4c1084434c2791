package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmorrow/taproot/internal/pysrc"
	"github.com/jmorrow/taproot/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func newTestBuilder(t *testing.T, root string, s *store.Store) *Builder {
	t.Helper()
	b := NewBuilder(root, s, nil)
	t.Cleanup(b.Close)
	return b
}

func childNames(n *Node) []string {
	var names []string
	for _, c := range n.Children {
		names = append(names, c.Name)
	}
	return names
}

func TestBuild_Leaf(t *testing.T) {
	t.Parallel()
	root := writeProject(t, map[string]string{
		"util.py": "def add(a, b):\n    return a + b\n",
	})
	b := newTestBuilder(t, root, newTestStore(t))

	n, err := b.Build(filepath.Join(root, "util.py"), "add")
	require.NoError(t, err)
	assert.Equal(t, "add", n.Name)
	assert.Equal(t, KindFunction, n.Kind)
	assert.False(t, n.Terminal)
	assert.Empty(t, n.Children)
	assert.Contains(t, n.Source, "def add(a, b):")
}

func TestBuild_SameFileChild(t *testing.T) {
	t.Parallel()
	root := writeProject(t, map[string]string{
		"util.py": `def add(a, b):
    return a + b

def compute(x):
    return add(x, 1)
`,
	})
	b := newTestBuilder(t, root, newTestStore(t))

	n, err := b.Build(filepath.Join(root, "util.py"), "compute")
	require.NoError(t, err)
	assert.Equal(t, []string{"add"}, childNames(n))
	assert.Empty(t, n.Children[0].Children)
}

func TestBuild_CrossFileViaImport(t *testing.T) {
	t.Parallel()
	root := writeProject(t, map[string]string{
		"helpers/math.py": "def add(a, b):\n    return a + b\n",
		"main.py": `from helpers.math import add

def run(x):
    return add(x, 2)
`,
	})
	b := newTestBuilder(t, root, newTestStore(t))

	n, err := b.Build(filepath.Join(root, "main.py"), "run")
	require.NoError(t, err)
	require.Len(t, n.Children, 1)
	assert.Equal(t, "add", n.Children[0].Name)
	assert.Equal(t, filepath.Join(root, "helpers", "math.py"), n.Children[0].Path)
}

func TestBuild_SameFileWinsOverImport(t *testing.T) {
	t.Parallel()
	root := writeProject(t, map[string]string{
		"other.py": "def helper():\n    return 1\n",
		"main.py": `from other import helper

def helper():
    return 2

def run():
    return helper()
`,
	})
	b := newTestBuilder(t, root, newTestStore(t))

	n, err := b.Build(filepath.Join(root, "main.py"), "run")
	require.NoError(t, err)
	require.Len(t, n.Children, 1)
	assert.Equal(t, filepath.Join(root, "main.py"), n.Children[0].Path)
}

func TestBuild_UnresolvedSilentlyPruned(t *testing.T) {
	t.Parallel()
	root := writeProject(t, map[string]string{
		"main.py": `import numpy

def run(x):
    print(x)
    return numpy_like(x) + len(x)
`,
	})
	b := newTestBuilder(t, root, newTestStore(t))

	n, err := b.Build(filepath.Join(root, "main.py"), "run")
	require.NoError(t, err)
	assert.Empty(t, n.Children)
}

func TestBuild_CycleBounded(t *testing.T) {
	t.Parallel()
	root := writeProject(t, map[string]string{
		"rec.py": `def a(n):
    return b(n - 1)

def b(n):
    return a(n - 1)
`,
	})
	b := newTestBuilder(t, root, newTestStore(t))

	n, err := b.Build(filepath.Join(root, "rec.py"), "a")
	require.NoError(t, err)
	require.Len(t, n.Children, 1)
	nb := n.Children[0]
	assert.Equal(t, "b", nb.Name)
	require.Len(t, nb.Children, 1)
	// b's child is the same node as the root: a back-reference, not a copy.
	assert.Same(t, n, nb.Children[0])
}

func TestBuild_TerminalAtStoredIdentity(t *testing.T) {
	t.Parallel()
	root := writeProject(t, map[string]string{
		"util.py": `def add(a, b):
    return a + b

def compute(x):
    return add(x, 1)
`,
	})
	s := newTestStore(t)
	id := store.Identity("util.py", "add")
	require.NoError(t, s.Put(id, "util.py", "add", "already documented"))

	b := newTestBuilder(t, root, s)
	n, err := b.Build(filepath.Join(root, "util.py"), "compute")
	require.NoError(t, err)
	require.Len(t, n.Children, 1)
	assert.True(t, n.Children[0].Terminal)
	assert.Empty(t, n.Children[0].Children)
	assert.Empty(t, n.Children[0].Source)
}

func TestBuild_TargetNotFound(t *testing.T) {
	t.Parallel()
	root := writeProject(t, map[string]string{"a.py": "x = 1\n"})
	b := newTestBuilder(t, root, newTestStore(t))

	_, err := b.Build(filepath.Join(root, "a.py"), "missing")
	require.ErrorIs(t, err, pysrc.ErrNotFound)
}

func TestBuild_ClassCalleeNode(t *testing.T) {
	t.Parallel()
	root := writeProject(t, map[string]string{
		"app.py": `class Worker:
    def run(self):
        return 1

def main():
    w = Worker()
    return w
`,
	})
	b := newTestBuilder(t, root, newTestStore(t))

	n, err := b.Build(filepath.Join(root, "app.py"), "main")
	require.NoError(t, err)
	require.Len(t, n.Children, 1)
	assert.Equal(t, KindClass, n.Children[0].Kind)
	assert.Equal(t, "Worker", n.Children[0].Name)
}

func TestBuildMethod(t *testing.T) {
	t.Parallel()
	root := writeProject(t, map[string]string{
		"svc.py": `def fetch(url):
    return url

class Service:
    def load(self):
        return fetch("x")
`,
	})
	b := newTestBuilder(t, root, newTestStore(t))

	n, err := b.BuildMethod(filepath.Join(root, "svc.py"), "Service", "load")
	require.NoError(t, err)
	assert.Equal(t, "Service", n.ClassName)
	assert.Equal(t, []string{"fetch"}, childNames(n))
}

func TestResolve_Tagging(t *testing.T) {
	t.Parallel()
	root := writeProject(t, map[string]string{
		"other.py": "def imported():\n    pass\n",
		"main.py": `from other import imported

def local():
    pass
`,
	})
	b := newTestBuilder(t, root, newTestStore(t))
	m, err := pysrc.ParseFile(filepath.Join(root, "main.py"))
	require.NoError(t, err)
	defer m.Close()

	path, kind := b.Resolve(m, "local")
	assert.Equal(t, ResolvedLocal, kind)
	assert.Equal(t, filepath.Join(root, "main.py"), path)

	path, kind = b.Resolve(m, "imported")
	assert.Equal(t, ResolvedImported, kind)
	assert.Equal(t, filepath.Join(root, "other.py"), path)

	_, kind = b.Resolve(m, "print")
	assert.Equal(t, Unresolved, kind)
}
