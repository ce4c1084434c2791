package store

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())

	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='docstrings'",
	).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "docstrings", name)
}

func TestNewStore_InvalidPath(t *testing.T) {
	t.Parallel()
	_, err := NewStore("/nonexistent/dir/db.sqlite")
	require.Error(t, err)
}

func TestPutGetHas(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	id := Identity("util.py", "add")

	ok, err := s.Has(id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(id, "util.py", "add", "Adds two numbers."))

	ok, err = s.Has(id)
	require.NoError(t, err)
	assert.True(t, ok)

	text, found, err := s.Get(id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Adds two numbers.", text)
}

func TestPut_FirstWriteWins(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	id := Identity("util.py", "add")
	require.NoError(t, s.Put(id, "util.py", "add", "original"))
	require.NoError(t, s.Put(id, "util.py", "add", "overwrite attempt"))

	text, found, err := s.Get(id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "original", text)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGet_Missing(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	text, found, err := s.Get(Identity("a.py", "missing"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, text)
}

func TestIdentity_Distinctness(t *testing.T) {
	t.Parallel()

	// Same name, different files: distinct.
	assert.NotEqual(t, Identity("a.py", "run"), Identity("b.py", "run"))
	// Different names, same file: distinct.
	assert.NotEqual(t, Identity("a.py", "run"), Identity("a.py", "walk"))
	// Deterministic across calls.
	assert.Equal(t, Identity("a.py", "run"), Identity("a.py", "run"))
	// Separator prevents ambiguous concatenation.
	assert.NotEqual(t, Identity("a.py", "xrun"), Identity("a.pyx", "run"))
}

func TestRelPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pkg/util.py", filepath.ToSlash(RelPath("/proj", "/proj/pkg/util.py")))
	assert.Equal(t, "util.py", RelPath("", "util.py"))
}

func TestEntries_OrderAndFields(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.Put(Identity("u.py", "add"), "u.py", "add", "doc a"))
	require.NoError(t, s.Put(Identity("u.py", "compute"), "u.py", "compute", "doc b"))

	entries, err := s.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	names := []string{entries[0].FuncName, entries[1].FuncName}
	assert.ElementsMatch(t, []string{"add", "compute"}, names)
	for _, e := range entries {
		assert.NotEmpty(t, e.Identity)
		assert.Equal(t, "u.py", e.FilePath)
		assert.False(t, e.CreatedAt.IsZero())
	}
}

func TestExportCSV(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.Put(Identity("u.py", "add"), "u.py", "add", "Adds two numbers."))

	var buf bytes.Buffer
	require.NoError(t, s.ExportCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "file_path,func_name,unique_id,docstring", lines[0])
	assert.Contains(t, lines[1], "u.py,add,")
	assert.Contains(t, lines[1], "Adds two numbers.")
}
