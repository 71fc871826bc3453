package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dept-calendar-api/pkg/jobs"
)

// DefaultStorageKey is the fixed key the canonical collection is stored under.
const DefaultStorageKey = "cse_events"

type snapshotRepository interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, payload []byte) error
}

type persistMetrics interface {
	ObservePersist(backend string, duration time.Duration, err error)
}

// PersisterConfig describes where and how snapshots are written.
type PersisterConfig struct {
	Key        string
	Backend    string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
}

func (c PersisterConfig) withDefaults() PersisterConfig {
	if c.Key == "" {
		c.Key = DefaultStorageKey
	}
	if c.Backend == "" {
		c.Backend = "unknown"
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	return c
}

// SyncPersister writes every snapshot inline. Failures are logged and counted.
type SyncPersister struct {
	repo    snapshotRepository
	cfg     PersisterConfig
	metrics persistMetrics
	logger  *zap.Logger
}

// NewSyncPersister constructs a SyncPersister. metrics and logger may be nil.
func NewSyncPersister(repo snapshotRepository, cfg PersisterConfig, metrics persistMetrics, logger *zap.Logger) *SyncPersister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncPersister{repo: repo, cfg: cfg.withDefaults(), metrics: metrics, logger: logger}
}

// Load reads the stored snapshot.
func (p *SyncPersister) Load(ctx context.Context) ([]byte, error) {
	return p.repo.Read(ctx, p.cfg.Key)
}

// Save writes payload immediately.
func (p *SyncPersister) Save(ctx context.Context, revision uint64, payload []byte) {
	if err := writeSnapshot(ctx, p.repo, p.cfg, p.metrics, payload); err != nil {
		p.logger.Warn("snapshot write failed", zap.Uint64("revision", revision), zap.String("backend", p.cfg.Backend), zap.Error(err))
	}
}

// AsyncPersister hands snapshots to a single-worker queue so mutations never
// wait on storage. Only the newest pending snapshot is written; an older
// revision never overwrites a newer one.
type AsyncPersister struct {
	repo    snapshotRepository
	cfg     PersisterConfig
	metrics persistMetrics
	logger  *zap.Logger
	queue   *jobs.Queue

	mu      sync.Mutex
	pending uint64
	written uint64
}

type snapshotJob struct {
	revision uint64
	payload  []byte
}

// NewAsyncPersister constructs an AsyncPersister. Call Start before saving.
func NewAsyncPersister(repo snapshotRepository, cfg PersisterConfig, metrics persistMetrics, logger *zap.Logger) *AsyncPersister {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &AsyncPersister{repo: repo, cfg: cfg.withDefaults(), metrics: metrics, logger: logger}
	p.queue = jobs.NewQueue("snapshot-writer", p.handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 1,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return p
}

// Start launches the writer.
func (p *AsyncPersister) Start(ctx context.Context) {
	p.queue.Start(ctx)
}

// Stop halts the writer. Pending snapshots that were not flushed are lost.
func (p *AsyncPersister) Stop() {
	p.queue.Stop()
}

// Load reads the stored snapshot synchronously.
func (p *AsyncPersister) Load(ctx context.Context) ([]byte, error) {
	return p.repo.Read(ctx, p.cfg.Key)
}

// Save records payload as the newest snapshot and schedules a write. A
// snapshot still waiting for the writer is replaced.
func (p *AsyncPersister) Save(_ context.Context, revision uint64, payload []byte) {
	p.mu.Lock()
	if revision <= p.pending {
		p.mu.Unlock()
		return
	}
	p.pending = revision
	p.mu.Unlock()

	job := jobs.Job{Key: p.cfg.Key, Payload: snapshotJob{revision: revision, payload: payload}}
	if err := p.queue.Enqueue(job); err != nil {
		p.logger.Warn("snapshot not scheduled", zap.Uint64("revision", revision), zap.Error(err))
	}
}

// Flush waits until the newest saved snapshot has been written or ctx ends.
func (p *AsyncPersister) Flush(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		p.mu.Lock()
		done := p.written >= p.pending
		p.mu.Unlock()
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Written returns the newest revision known to be stored.
func (p *AsyncPersister) Written() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written
}

func (p *AsyncPersister) handle(ctx context.Context, job jobs.Job) error {
	snap, ok := job.Payload.(snapshotJob)
	if !ok {
		return nil
	}
	p.mu.Lock()
	stale := snap.revision <= p.written
	p.mu.Unlock()
	if stale {
		return nil
	}
	if err := writeSnapshot(ctx, p.repo, p.cfg, p.metrics, snap.payload); err != nil {
		return fmt.Errorf("snapshot revision %d: %w", snap.revision, err)
	}
	p.mu.Lock()
	if snap.revision > p.written {
		p.written = snap.revision
	}
	p.mu.Unlock()
	p.logger.Debug("snapshot written", zap.Uint64("revision", snap.revision))
	return nil
}

func writeSnapshot(ctx context.Context, repo snapshotRepository, cfg PersisterConfig, metrics persistMetrics, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	start := time.Now()
	err := repo.Write(ctx, cfg.Key, payload)
	if metrics != nil {
		metrics.ObservePersist(cfg.Backend, time.Since(start), err)
	}
	return err
}
