package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNotRunning is returned by Enqueue before Start or after Stop.
var ErrNotRunning = errors.New("queue not running")

// Handler processes one item.
type Handler[T any] func(context.Context, T) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

type envelope[T any] struct {
	item    T
	attempt int
}

// Queue is an in-memory work queue drained by a fixed set of goroutines.
// Failed items are retried with a fixed delay up to MaxRetries times.
type Queue[T any] struct {
	name    string
	handler Handler[T]
	cfg     QueueConfig
	logger  *zap.Logger

	items   chan envelope[T]
	ctx     context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup
	retries sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewQueue builds a queue around handler.
func NewQueue[T any](name string, handler Handler[T], cfg QueueConfig) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 64
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Queue[T]{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger.With(zap.String("queue", name)),
		items:   make(chan envelope[T], cfg.BufferSize),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.workers.Add(1)
		go q.work()
	}
	q.running = true
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Running reports whether the queue accepts items.
func (q *Queue[T]) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// Enqueue hands item to the workers. It blocks while the buffer is full
// unless ctx is done first.
func (q *Queue[T]) Enqueue(ctx context.Context, item T) error {
	return q.push(ctx, envelope[T]{item: item})
}

func (q *Queue[T]) push(ctx context.Context, env envelope[T]) error {
	q.mu.Lock()
	running, qctx := q.running, q.ctx
	q.mu.Unlock()
	if !running {
		return fmt.Errorf("%s: %w", q.name, ErrNotRunning)
	}

	select {
	case <-qctx.Done():
		return fmt.Errorf("%s: %w", q.name, ErrNotRunning)
	case <-ctx.Done():
		return ctx.Err()
	case q.items <- env:
		return nil
	}
}

// Stop rejects new items, lets the workers finish what is buffered and
// waits for them. Retries still waiting on their delay are dropped.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.cancel()
	q.mu.Unlock()

	q.workers.Wait()
	q.retries.Wait()
	q.logger.Info("queue stopped")
}

func (q *Queue[T]) work() {
	defer q.workers.Done()
	for {
		select {
		case <-q.ctx.Done():
			q.drain()
			return
		case env := <-q.items:
			if err := q.handler(q.ctx, env.item); err != nil {
				q.retry(env, err)
			}
		}
	}
}

// drain handles whatever is still buffered once the queue is stopping,
// without retries.
func (q *Queue[T]) drain() {
	ctx := context.WithoutCancel(q.ctx)
	for {
		select {
		case env := <-q.items:
			if err := q.handler(ctx, env.item); err != nil {
				q.logger.Error("item dropped during shutdown", zap.Error(err))
			}
		default:
			return
		}
	}
}

func (q *Queue[T]) retry(env envelope[T], err error) {
	env.attempt++
	if env.attempt > q.cfg.MaxRetries {
		q.logger.Error("item dropped after retries", zap.Int("attempts", env.attempt), zap.Error(err))
		return
	}
	q.logger.Warn("item failed, retrying", zap.Int("attempt", env.attempt), zap.Error(err))

	q.retries.Add(1)
	go func() {
		defer q.retries.Done()
		timer := time.NewTimer(q.cfg.RetryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			q.logger.Warn("retry dropped, queue stopping")
		case <-timer.C:
			select {
			case q.items <- env:
			case <-q.ctx.Done():
				q.logger.Warn("retry dropped, queue stopping")
			}
		}
	}()
}
