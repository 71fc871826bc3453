package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned when every slot holds a distinct pending key.
	ErrQueueFull = errors.New("queue full")
	// ErrQueueClosed is returned once the queue is not accepting work.
	ErrQueueClosed = errors.New("queue closed")
)

// Job is a unit of work addressed by Key. A newer job replaces a pending job
// with the same key.
type Job struct {
	Key      string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures the dispatcher.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

func (c QueueConfig) normalized() QueueConfig {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.BufferSize <= 0 {
		c.BufferSize = c.Workers * 4
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// Queue dispatches keyed jobs to a fixed set of workers. At most one job per
// key waits at a time and a key is never handled by two workers at once.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig

	mu       sync.Mutex
	pending  map[string]Job
	inFlight map[string]bool
	order    []string
	wake     chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	state    int
}

const (
	stateIdle = iota
	stateRunning
	stateStopped
)

// NewQueue builds a queue. It accepts jobs only after Start.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	return &Queue{
		name:     name,
		handler:  handler,
		cfg:      cfg.normalized(),
		pending:  make(map[string]Job),
		inFlight: make(map[string]bool),
		wake:     make(chan struct{}, 1),
	}
}

// Start launches the workers. Subsequent calls do nothing.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state != stateIdle {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 1; i <= q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.work(i)
	}
	q.state = stateRunning
	q.cfg.Logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.cfg.Workers))
}

// Stop cancels the workers and waits for the handler calls in progress.
// Jobs still pending are dropped.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.state != stateRunning {
		q.state = stateStopped
		q.mu.Unlock()
		return
	}
	q.state = stateStopped
	q.cancel()
	dropped := len(q.pending)
	q.pending = make(map[string]Job)
	q.order = nil
	q.mu.Unlock()

	q.wg.Wait()
	q.cfg.Logger.Info("queue stopped", zap.String("queue", q.name), zap.Int("dropped", dropped))
}

// Enqueue schedules job without blocking. When a job with the same key is
// already waiting it is replaced and its retry count carried over.
func (q *Queue) Enqueue(job Job) error {
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.put(job, false)
}

// Pending reports how many keys are waiting for a worker.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// put must be called with q.mu held. A retry never replaces a newer job.
func (q *Queue) put(job Job, retry bool) error {
	if q.state != stateRunning {
		return fmt.Errorf("queue %s: %w", q.name, ErrQueueClosed)
	}
	if prev, ok := q.pending[job.Key]; ok {
		if retry {
			return nil
		}
		job.Attempt = prev.Attempt
		q.pending[job.Key] = job
		return nil
	}
	if len(q.pending) >= q.cfg.BufferSize {
		return fmt.Errorf("queue %s: %w", q.name, ErrQueueFull)
	}
	q.pending[job.Key] = job
	q.order = append(q.order, job.Key)
	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// next pops the oldest pending key that no worker is handling.
func (q *Queue) next() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, key := range q.order {
		if q.inFlight[key] {
			continue
		}
		q.order = append(q.order[:i:i], q.order[i+1:]...)
		job := q.pending[key]
		delete(q.pending, key)
		q.inFlight[key] = true
		if len(q.order) > 0 {
			select {
			case q.wake <- struct{}{}:
			default:
			}
		}
		return job, true
	}
	return Job{}, false
}

func (q *Queue) done(key string) {
	q.mu.Lock()
	delete(q.inFlight, key)
	more := len(q.order) > 0
	q.mu.Unlock()
	if more {
		select {
		case q.wake <- struct{}{}:
		default:
		}
	}
}

func (q *Queue) work(worker int) {
	defer q.wg.Done()
	for q.ctx.Err() == nil {
		job, ok := q.next()
		if !ok {
			select {
			case <-q.ctx.Done():
				return
			case <-q.wake:
				continue
			}
		}

		err := q.handler(q.ctx, job)
		q.done(job.Key)
		if err != nil {
			q.retry(job, err)
			continue
		}
		q.cfg.Logger.Debug("job done",
			zap.String("queue", q.name),
			zap.String("key", job.Key),
			zap.Int("worker", worker),
			zap.Duration("waited", time.Since(job.Enqueued)),
		)
	}
}

func (q *Queue) retry(job Job, cause error) {
	job.Attempt++
	if job.Attempt > q.cfg.MaxRetries {
		q.cfg.Logger.Error("job abandoned",
			zap.String("queue", q.name),
			zap.String("key", job.Key),
			zap.Int("attempts", job.Attempt),
			zap.Error(cause),
		)
		return
	}
	q.cfg.Logger.Warn("job failed, retrying",
		zap.String("queue", q.name),
		zap.String("key", job.Key),
		zap.Int("attempt", job.Attempt),
		zap.Error(cause),
	)

	time.AfterFunc(q.cfg.RetryDelay, func() {
		q.mu.Lock()
		err := q.put(job, true)
		q.mu.Unlock()
		if err != nil && !errors.Is(err, ErrQueueClosed) {
			q.cfg.Logger.Error("job not requeued", zap.String("queue", q.name), zap.String("key", job.Key), zap.Error(err))
		}
	})
}
