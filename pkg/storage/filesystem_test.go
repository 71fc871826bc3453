package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveReadReplace(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("snapshots/cse_events.json", []byte(`[]`))
	require.NoError(t, err)
	_, err = store.Save("snapshots/cse_events.json", []byte(`[{"id":"a"}]`))
	require.NoError(t, err)

	data, err := store.Read("snapshots/cse_events.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a"}]`, string(data))

	names, err := store.List("snapshots")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("snapshots", "cse_events.json")}, names)
}

func TestLocalStorageReadMissing(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Read("nope.json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotExist))

	names, err := store.List("backups")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("backups/old.json", []byte("{}"))
	require.NoError(t, err)
	_, err = store.Save("backups/new.json", []byte("{}"))
	require.NoError(t, err)
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(store.Path("backups/old.json"), old, old))

	deleted, err := store.CleanupOlderThan("backups", 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("backups", "old.json")}, deleted)

	_, err = store.Read("backups/new.json")
	assert.NoError(t, err)
}
