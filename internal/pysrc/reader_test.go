package pysrc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSource = `import os

def add(a, b):
    return a + b


@staticmethod
def decorated(x):
    return add(x, 1)


class Greeter:
    def __init__(self, name):
        self.name = name

    def greet(self):
        return "hi " + self.name


def outer():
    def inner():
        pass
    return inner
`

func parseSample(t *testing.T) *Module {
	t.Helper()
	m, err := Parse("sample.py", []byte(sampleSource))
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func TestParseFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "a.py")
	require.NoError(t, os.WriteFile(path, []byte("def f():\n    pass\n"), 0o644))

	m, err := ParseFile(path)
	require.NoError(t, err)
	defer m.Close()
	assert.Equal(t, path, m.Path)
	assert.True(t, m.HasDef("f"))
}

func TestParseFile_Missing(t *testing.T) {
	t.Parallel()
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.py"))
	require.Error(t, err)
}

func TestFindDefinition_Function(t *testing.T) {
	t.Parallel()
	m := parseSample(t)

	d, err := m.FindDefinition("add")
	require.NoError(t, err)
	assert.Equal(t, "add", d.Name)
	assert.Equal(t, KindFunction, d.Kind)
	assert.Equal(t, "def add(a, b):\n    return a + b", d.Source())
}

func TestFindDefinition_Class(t *testing.T) {
	t.Parallel()
	m := parseSample(t)

	d, err := m.FindDefinition("Greeter")
	require.NoError(t, err)
	assert.Equal(t, KindClass, d.Kind)
	assert.Contains(t, d.Source(), "class Greeter:")
	assert.Contains(t, d.Source(), "def greet(self):")
}

func TestFindDefinition_DecoratorsIncluded(t *testing.T) {
	t.Parallel()
	m := parseSample(t)

	d, err := m.FindDefinition("decorated")
	require.NoError(t, err)
	assert.Equal(t, KindFunction, d.Kind)
	assert.Contains(t, d.Source(), "@staticmethod")
}

func TestFindDefinition_NotFound(t *testing.T) {
	t.Parallel()
	m := parseSample(t)

	_, err := m.FindDefinition("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFindDefinition_NestedNotVisible(t *testing.T) {
	t.Parallel()
	m := parseSample(t)

	// inner is defined inside outer and must not be found at module level.
	_, err := m.FindDefinition("inner")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTopLevelDefs_Order(t *testing.T) {
	t.Parallel()
	m := parseSample(t)

	var names []string
	for _, d := range m.TopLevelDefs() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"add", "decorated", "Greeter", "outer"}, names)
}

func TestClassMethods(t *testing.T) {
	t.Parallel()
	m := parseSample(t)

	methods, err := m.ClassMethods("Greeter")
	require.NoError(t, err)
	require.Len(t, methods, 2)
	assert.Equal(t, "__init__", methods[0].Name)
	assert.Equal(t, "greet", methods[1].Name)
}

func TestClassMethods_NotAClass(t *testing.T) {
	t.Parallel()
	m := parseSample(t)

	_, err := m.ClassMethods("add")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFindMethod(t *testing.T) {
	t.Parallel()
	m := parseSample(t)

	d, err := m.FindMethod("Greeter", "greet")
	require.NoError(t, err)
	assert.Contains(t, d.Source(), "def greet(self):")

	_, err = m.FindMethod("Greeter", "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReRead_Identical(t *testing.T) {
	t.Parallel()
	a := parseSample(t)
	b := parseSample(t)

	da, err := a.FindDefinition("add")
	require.NoError(t, err)
	db, err := b.FindDefinition("add")
	require.NoError(t, err)
	assert.Equal(t, da.Source(), db.Source())
}
