package worker

import (
	"context"
	"log/slog"
	"time"

	audit "obligo/pkg/platform/audit"
)

// OutboxSource yields unrelayed outbox entries and records their delivery.
type OutboxSource interface {
	FetchUnpublished(ctx context.Context, limit int) ([]audit.OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []string) error
}

// Producer delivers outbox entries to the broker. Publish must return only
// after every entry is acknowledged.
type Producer interface {
	Publish(ctx context.Context, entries []audit.OutboxEntry) error
}

// Worker relays outbox entries to a Producer on a fixed interval. Delivery is
// at-least-once: entries are marked only after the producer acknowledges them.
type Worker struct {
	source    OutboxSource
	producer  Producer
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

type Option func(*Worker)

func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) { w.logger = logger }
}

func NewWorker(source OutboxSource, producer Producer, opts ...Option) *Worker {
	w := &Worker{
		source:    source,
		producer:  producer,
		interval:  time.Second,
		batchSize: 100,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until ctx is cancelled. Relay failures are logged and retried on
// the next tick.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.RelayOnce(ctx); err != nil && ctx.Err() == nil {
				w.logger.ErrorContext(ctx, "outbox relay failed", "error", err)
			}
		}
	}
}

// RelayOnce drains at most one batch and returns how many entries were delivered.
func (w *Worker) RelayOnce(ctx context.Context) (int, error) {
	entries, err := w.source.FetchUnpublished(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if err := w.producer.Publish(ctx, entries); err != nil {
		return 0, err
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := w.source.MarkPublished(ctx, ids); err != nil {
		return 0, err
	}
	w.logger.DebugContext(ctx, "outbox entries relayed", "count", len(entries))
	return len(entries), nil
}
