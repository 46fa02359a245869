// Package activity records who changed what. Recording is best effort: a
// failing or slow sink never blocks or fails the mutation being recorded.
package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkordes/tripplanner/internal/domain"
)

// Logger records activity entries. Log must not block on I/O and has no
// error to return; delivery problems are the implementation's to handle.
type Logger interface {
	Log(ctx context.Context, e domain.ActivityEntry)
}

// Sink persists one entry. repo.ActivityRepo satisfies it.
type Sink interface {
	Insert(ctx context.Context, e domain.ActivityEntry) error
}

// Nop discards every entry.
type Nop struct{}

// Log implements Logger.
func (Nop) Log(context.Context, domain.ActivityEntry) {}

// writeTimeout bounds a single sink write so a stuck database cannot pin
// the worker forever.
const writeTimeout = 5 * time.Second

// AsyncLogger queues entries on a bounded channel and writes them to a Sink
// from one background goroutine. When the queue is full, entries are
// dropped and a warning is logged.
type AsyncLogger struct {
	sink  Sink
	log   *slog.Logger
	queue chan domain.ActivityEntry
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsyncLogger starts the worker. Call Close to drain the queue and stop it.
func NewAsyncLogger(sink Sink, log *slog.Logger, buffer int) *AsyncLogger {
	l := &AsyncLogger{
		sink:  sink,
		log:   log,
		queue: make(chan domain.ActivityEntry, max(buffer, 1)),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

// Log enqueues e without blocking. A zero At is stamped with the current time.
func (l *AsyncLogger) Log(ctx context.Context, e domain.ActivityEntry) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.queue <- e:
	default:
		l.log.WarnContext(ctx, "activity log queue full, dropping entry",
			"action", e.Action,
			"entity_type", e.EntityType,
			"entity_id", e.EntityID,
		)
	}
}

// Close stops accepting entries and waits for queued ones to be written or
// for ctx to expire. Entries logged after Close are discarded.
func (l *AsyncLogger) Close(ctx context.Context) error {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.queue)
	}
	l.mu.Unlock()
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *AsyncLogger) run() {
	defer close(l.done)
	for e := range l.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := l.sink.Insert(ctx, e); err != nil {
			l.log.Error("activity log write failed",
				"error", err,
				"action", e.Action,
				"entity_type", e.EntityType,
				"entity_id", e.EntityID,
			)
		}
		cancel()
	}
}
