package service

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/dept-calendar-api/internal/models"
	appErrors "github.com/noah-isme/dept-calendar-api/pkg/errors"
	"github.com/noah-isme/dept-calendar-api/pkg/storage"
)

type backupSource interface {
	Canonical(ctx context.Context) []models.Event
	ExportAll(ctx context.Context) ([]byte, error)
}

type backupMetrics interface {
	RecordBackup()
}

// BackupConfig controls scheduled backups.
type BackupConfig struct {
	Schedule  string
	Dir       string
	Retention time.Duration
	Location  *time.Location
}

// BackupService writes the JSON export to local storage on a cron schedule
// and prunes old copies.
type BackupService struct {
	source  backupSource
	files   *storage.LocalStorage
	metrics backupMetrics
	logger  *zap.Logger
	cfg     BackupConfig
	cron    *cron.Cron
	now     func() time.Time

	mu sync.Mutex
}

// NewBackupService constructs a BackupService. metrics and logger may be nil.
func NewBackupService(source backupSource, files *storage.LocalStorage, metrics backupMetrics, logger *zap.Logger, cfg BackupConfig) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "@daily"
	}
	if cfg.Dir == "" {
		cfg.Dir = "backups"
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &BackupService{
		source:  source,
		files:   files,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithLocation(cfg.Location)),
		now:     time.Now,
	}
}

// Start registers the backup job and starts the scheduler.
func (s *BackupService) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Sugar().Errorw("scheduled backup failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", s.cfg.Schedule, err)
	}
	s.cron.Start()
	s.logger.Sugar().Infow("backup scheduler started", "schedule", s.cfg.Schedule, "dir", s.cfg.Dir)
	return nil
}

// Stop halts the scheduler and waits for a running backup to finish.
func (s *BackupService) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce writes one backup and removes those older than the retention.
func (s *BackupService) RunOnce(ctx context.Context) (*models.BackupInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := s.source.ExportAll(ctx)
	if err != nil {
		return nil, err
	}
	createdAt := s.now().UTC()
	name := path.Join(s.cfg.Dir, fmt.Sprintf("events-%s.json", createdAt.Format("20060102T150405Z")))
	saved, err := s.files.Save(name, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write backup")
	}
	if s.metrics != nil {
		s.metrics.RecordBackup()
	}

	if s.cfg.Retention > 0 {
		deleted, err := s.files.CleanupOlderThan(s.cfg.Dir, s.cfg.Retention)
		if err != nil {
			s.logger.Sugar().Warnw("backup cleanup failed", "error", err)
		} else if len(deleted) > 0 {
			s.logger.Sugar().Infow("old backups removed", "count", len(deleted))
		}
	}

	info := &models.BackupInfo{Path: saved, Events: len(s.source.Canonical(ctx)), CreatedAt: createdAt}
	s.logger.Sugar().Infow("backup written", "path", saved, "events", info.Events)
	return info, nil
}

// List returns the stored backups, oldest first.
func (s *BackupService) List() ([]string, error) {
	return s.files.List(s.cfg.Dir)
}
