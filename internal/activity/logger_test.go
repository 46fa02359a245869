package activity_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripplanner/internal/activity"
	"github.com/pkordes/tripplanner/internal/domain"
)

// mockSink is a hand-written test double for activity.Sink.
type mockSink struct {
	mu      sync.Mutex
	insert  func(ctx context.Context, e domain.ActivityEntry) error
	written []domain.ActivityEntry
}

func (m *mockSink) Insert(ctx context.Context, e domain.ActivityEntry) error {
	if m.insert != nil {
		if err := m.insert(ctx, e); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written = append(m.written, e)
	return nil
}

func (m *mockSink) entries() []domain.ActivityEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ActivityEntry(nil), m.written...)
}

var _ activity.Sink = (*mockSink)(nil)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func TestAsyncLogger_WritesQueuedEntriesOnClose(t *testing.T) {
	sink := &mockSink{}
	l := activity.NewAsyncLogger(sink, newTestLogger(&bytes.Buffer{}), 16)
	id := uuid.New()

	l.Log(context.Background(), domain.ActivityEntry{Action: "trip.created", EntityType: domain.EntityTrip, EntityID: id})
	l.Log(context.Background(), domain.ActivityEntry{Action: "trip.published", EntityType: domain.EntityTrip, EntityID: id})
	require.NoError(t, l.Close(context.Background()))

	got := sink.entries()
	require.Len(t, got, 2)
	assert.Equal(t, "trip.created", got[0].Action)
	assert.False(t, got[0].At.IsZero(), "zero At must be stamped")
}

func TestAsyncLogger_SinkErrorIsLoggedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	sink := &mockSink{insert: func(context.Context, domain.ActivityEntry) error {
		return errors.New("disk full")
	}}
	l := activity.NewAsyncLogger(sink, newTestLogger(&buf), 4)

	l.Log(context.Background(), domain.ActivityEntry{Action: "gear.assigned"})
	require.NoError(t, l.Close(context.Background()))

	assert.Contains(t, buf.String(), "activity log write failed")
	assert.Contains(t, buf.String(), "disk full")
}

func TestAsyncLogger_DropsWhenFull(t *testing.T) {
	var buf bytes.Buffer
	release := make(chan struct{})
	sink := &mockSink{insert: func(context.Context, domain.ActivityEntry) error {
		<-release
		return nil
	}}
	l := activity.NewAsyncLogger(sink, newTestLogger(&buf), 1)

	// One entry is held by the blocked worker, one fills the queue, the
	// rest are dropped.
	for range 10 {
		l.Log(context.Background(), domain.ActivityEntry{Action: "gear.assigned"})
	}
	close(release)
	require.NoError(t, l.Close(context.Background()))

	assert.Less(t, len(sink.entries()), 10)
	assert.Contains(t, buf.String(), "activity log queue full")
}

func TestAsyncLogger_LogAfterCloseIsIgnored(t *testing.T) {
	sink := &mockSink{}
	l := activity.NewAsyncLogger(sink, newTestLogger(&bytes.Buffer{}), 4)
	require.NoError(t, l.Close(context.Background()))

	assert.NotPanics(t, func() {
		l.Log(context.Background(), domain.ActivityEntry{Action: "late"})
	})
	assert.Empty(t, sink.entries())
}

func TestAsyncLogger_CloseHonoursDeadline(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	sink := &mockSink{insert: func(context.Context, domain.ActivityEntry) error {
		<-release
		return nil
	}}
	l := activity.NewAsyncLogger(sink, newTestLogger(&bytes.Buffer{}), 4)
	l.Log(context.Background(), domain.ActivityEntry{Action: "slow"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, l.Close(ctx), context.DeadlineExceeded)
}
