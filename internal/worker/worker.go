package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Refresher rebuilds the news cache.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(ctx context.Context) error

func (f RefreshFunc) Refresh(ctx context.Context) error { return f(ctx) }

// Worker refreshes the cache at start and on every tick so requests rarely
// pay for a cold fetch.
type Worker struct {
	refresher Refresher
	interval  time.Duration
	timeout   time.Duration
	log       *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New creates a worker. timeout bounds a single refresh.
func New(refresher Refresher, interval, timeout time.Duration, log *slog.Logger) *Worker {
	return &Worker{
		refresher: refresher,
		interval:  interval,
		timeout:   timeout,
		log:       log.With(slog.String("component", "worker")),
	}
}

// Start runs the worker in its own goroutine.
func (w *Worker) Start() {
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.wg.Add(1)
	go w.run()
}

// Stop cancels the worker and waits for the current refresh to return.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Worker) run() {
	defer w.wg.Done()
	w.log.Info("Prefetch worker started", slog.String("interval", w.interval.String()))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh()
	for {
		select {
		case <-ticker.C:
			w.refresh()
		case <-w.ctx.Done():
			w.log.Info("Worker stopping")
			return
		}
	}
}

func (w *Worker) refresh() {
	if w.ctx.Err() != nil {
		return
	}
	start := time.Now()

	ctx := w.ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(w.ctx, w.timeout)
		defer cancel()
	}

	if err := w.refresher.Refresh(ctx); err != nil {
		w.log.Error("Prefetch failed", slog.Any("error", err))
		return
	}
	w.log.Info("Prefetch completed", slog.Duration("duration", time.Since(start)))
}
