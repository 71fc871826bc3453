package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-calendar-api/pkg/storage"
)

type backupMetricsStub struct{ count int }

func (m *backupMetricsStub) RecordBackup() { m.count++ }

func TestBackupServiceRunOnce(t *testing.T) {
	dir := t.TempDir()
	files, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	store := newTestStore(nil, nil)
	_, err = store.Add(context.Background(), lecture("Compilers", "2024-01-10", "10:00", 60))
	require.NoError(t, err)

	stale := filepath.Join(dir, "backups", "events-20230101T000000Z.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("[]"), 0o644))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	metrics := &backupMetricsStub{}
	svc := NewBackupService(store, files, metrics, nil, BackupConfig{Retention: 24 * time.Hour, Location: time.UTC})
	svc.now = func() time.Time { return fixedNow }

	info, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "backups/events-20240110T090000Z.json", info.Path)
	assert.Equal(t, 1, info.Events)
	assert.Equal(t, fixedNow, info.CreatedAt)
	assert.Equal(t, 1, metrics.count)

	names, err := svc.List()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("backups", "events-20240110T090000Z.json")}, names)

	payload, err := files.Read(info.Path)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"title": "Compilers"`)
}

func TestBackupServiceSchedule(t *testing.T) {
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	bad := NewBackupService(newTestStore(nil, nil), files, nil, nil, BackupConfig{Schedule: "not a schedule"})
	assert.Error(t, bad.Start(context.Background()))

	good := NewBackupService(newTestStore(nil, nil), files, nil, nil, BackupConfig{Schedule: "@every 1h"})
	require.NoError(t, good.Start(context.Background()))
	good.Stop()
}
