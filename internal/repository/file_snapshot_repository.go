package repository

import (
	"context"
	"errors"
	"fmt"

	appErrors "github.com/noah-isme/dept-calendar-api/pkg/errors"
	"github.com/noah-isme/dept-calendar-api/pkg/storage"
)

// FileSnapshotRepository stores each snapshot as <key>.json under the storage directory.
type FileSnapshotRepository struct {
	storage *storage.LocalStorage
}

// NewFileSnapshotRepository constructs a file-backed repository.
func NewFileSnapshotRepository(store *storage.LocalStorage) *FileSnapshotRepository {
	return &FileSnapshotRepository{storage: store}
}

// Read loads the snapshot file for key.
func (r *FileSnapshotRepository) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload, err := r.storage.Read(fileName(key))
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, appErrors.ErrSnapshotMissing
		}
		return nil, fmt.Errorf("read snapshot %s: %w", key, err)
	}
	return payload, nil
}

// Write replaces the snapshot file for key.
func (r *FileSnapshotRepository) Write(ctx context.Context, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := r.storage.Save(fileName(key), payload); err != nil {
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}
	return nil
}

func fileName(key string) string {
	return key + ".json"
}
