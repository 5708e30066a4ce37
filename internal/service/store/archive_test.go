package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchive_Save(t *testing.T) {
	a, err := NewArchive(filepath.Join(t.TempDir(), "received"))
	require.NoError(t, err)

	path, err := a.SavePush("mow.DE-1", []byte(`{"id":"mow.DE-1"}`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(a.Dir(), "push_mow.DE-1.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"id\": \"mow.DE-1\"\n}", string(data))

	path, err = a.SaveEvent("mow.DE-1", []byte(`{"identifier":"mow.DE-1"}`))
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestArchive_RejectsUnsafeIdentifiers(t *testing.T) {
	a, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"../escape", "a/b", `a\b`, "..", "x..y"} {
		_, err := a.SavePush(id, []byte(`{}`))
		assert.ErrorIs(t, err, ErrUnsafeIdentifier, id)
	}
}

func TestArchive_Prune(t *testing.T) {
	dir := t.TempDir()
	a, err := NewArchive(dir)
	require.NoError(t, err)

	old := time.Now().Add(-10 * 24 * time.Hour)
	for _, name := range []string{"push_old.json", "event_old.json", "notes.json"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(`{}`), 0644))
		require.NoError(t, os.Chtimes(p, old, old))
	}
	_, err = a.SavePush("new", []byte(`{}`))
	require.NoError(t, err)

	removed, err := a.Prune(time.Now().Add(-7 * 24 * time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 2, removed)
	assert.NoFileExists(t, filepath.Join(dir, "push_old.json"))
	assert.NoFileExists(t, filepath.Join(dir, "event_old.json"))
	assert.FileExists(t, filepath.Join(dir, "notes.json"))
	assert.FileExists(t, filepath.Join(dir, "push_new.json"))
}

func TestArchive_PruneMissingDir(t *testing.T) {
	a, err := NewArchive(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)

	removed, err := a.Prune(time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
}
