package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/4-in-a-row/server/internal/domain"
)

type memorySink struct {
	mu     sync.Mutex
	events []domain.AnalyticsEvent
	err    error
	gate   chan struct{}
}

func (m *memorySink) Publish(ctx context.Context, event domain.AnalyticsEvent) error {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *memorySink) published() []domain.AnalyticsEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AnalyticsEvent(nil), m.events...)
}

func closeDispatcher(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
}

func TestDispatcher_PublishesInOrder(t *testing.T) {
	sink := &memorySink{}
	d := NewDispatcher(sink, 8)

	d.Emit(domain.AnalyticsEvent{Type: domain.EventGameStart, RoomID: "r1"})
	d.Emit(domain.AnalyticsEvent{Type: domain.EventMove, RoomID: "r1"})
	d.Emit(domain.AnalyticsEvent{Type: domain.EventGameEnd, RoomID: "r1"})
	closeDispatcher(t, d)

	got := sink.published()
	require.Len(t, got, 3)
	assert.Equal(t, domain.EventGameStart, got[0].Type)
	assert.Equal(t, domain.EventMove, got[1].Type)
	assert.Equal(t, domain.EventGameEnd, got[2].Type)
}

func TestDispatcher_SinkErrorsAreSwallowed(t *testing.T) {
	sink := &memorySink{err: errors.New("stream down")}
	d := NewDispatcher(sink, 4)

	d.Emit(domain.AnalyticsEvent{Type: domain.EventMove, RoomID: "r1"})
	d.Emit(domain.AnalyticsEvent{Type: domain.EventMove, RoomID: "r1"})
	closeDispatcher(t, d)

	assert.Len(t, sink.published(), 2)
}

func TestDispatcher_EmitNeverBlocks(t *testing.T) {
	sink := &memorySink{gate: make(chan struct{})}
	d := NewDispatcher(sink, 1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Emit(domain.AnalyticsEvent{Type: domain.EventMove, RoomID: "r1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a stalled sink")
	}

	close(sink.gate)
	closeDispatcher(t, d)

	// one in flight plus one buffered at most
	assert.LessOrEqual(t, len(sink.published()), 2)
	assert.NotEmpty(t, sink.published())
	assert.Positive(t, d.Dropped())
}

func TestDispatcher_EmitAfterCloseIsIgnored(t *testing.T) {
	sink := &memorySink{}
	d := NewDispatcher(sink, 4)
	closeDispatcher(t, d)

	d.Emit(domain.AnalyticsEvent{Type: domain.EventMove, RoomID: "r1"})
	assert.Empty(t, sink.published())

	// closing twice is fine
	closeDispatcher(t, d)
}

func TestDispatcher_CloseHonoursContext(t *testing.T) {
	sink := &memorySink{gate: make(chan struct{})}
	d := NewDispatcher(sink, 4)
	d.Emit(domain.AnalyticsEvent{Type: domain.EventMove, RoomID: "r1"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)

	close(sink.gate)
}

func TestLogSink_Publish(t *testing.T) {
	winner := "alice"
	err := LogSink{}.Publish(context.Background(), domain.AnalyticsEvent{
		Type:   domain.EventGameEnd,
		RoomID: "r1",
		Winner: &winner,
	})
	assert.NoError(t, err)
}
