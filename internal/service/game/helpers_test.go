package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/4-in-a-row/server/internal/domain"
)

type recordingConn struct {
	mu   sync.Mutex
	msgs map[string][]domain.ServerMessage
}

func newRecordingConn() *recordingConn {
	return &recordingConn{msgs: make(map[string][]domain.ServerMessage)}
}

func (c *recordingConn) SendMessage(connID string, message domain.ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs[connID] = append(c.msgs[connID], message)
	return nil
}

func (c *recordingConn) messages(connID string) []domain.ServerMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.ServerMessage(nil), c.msgs[connID]...)
}

func (c *recordingConn) ofType(connID, msgType string) []domain.ServerMessage {
	var out []domain.ServerMessage
	for _, m := range c.messages(connID) {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

type recordingEvents struct {
	mu     sync.Mutex
	events []domain.AnalyticsEvent
}

func (e *recordingEvents) Emit(event domain.AnalyticsEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *recordingEvents) count(t domain.EventType) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ev := range e.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

type fakeRepo struct {
	mu      sync.Mutex
	records []*domain.GameRecord
	err     error
}

func (f *fakeRepo) SaveGame(ctx context.Context, record *domain.GameRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeRepo) saved() []*domain.GameRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.GameRecord(nil), f.records...)
}

type harness struct {
	reg    *Registry
	conn   *recordingConn
	events *recordingEvents
	repo   *fakeRepo
	clock  *clockwork.FakeClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		conn:   newRecordingConn(),
		events: &recordingEvents{},
		repo:   &fakeRepo{},
		clock:  clockwork.NewFakeClock(),
	}
	h.reg = NewRegistry(Options{
		Conn:    h.conn,
		Events:  h.events,
		Repo:    h.repo,
		Clock:   h.clock,
		Persist: true,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = h.reg.Shutdown(ctx)
	})
	return h
}

// pair joins alice on c1 and bob on c2 and returns the room id.
func (h *harness) pair(t *testing.T) string {
	t.Helper()
	require.NoError(t, h.reg.Join("c1", "alice"))
	require.NoError(t, h.reg.Join("c2", "bob"))

	starts := h.conn.ofType("c1", domain.MsgStart)
	require.Len(t, starts, 1)
	return starts[0].RoomID
}

// botGame queues alice on c1 and lets the fallback timer fire.
func (h *harness) botGame(t *testing.T) string {
	t.Helper()
	require.NoError(t, h.reg.Join("c1", "alice"))
	h.clock.Advance(DefaultMatchTimeout)

	require.Eventually(t, func() bool {
		return len(h.conn.ofType("c1", domain.MsgStart)) == 1
	}, time.Second, 5*time.Millisecond)
	return h.conn.ofType("c1", domain.MsgStart)[0].RoomID
}

func (h *harness) endFor(connID string) *domain.ServerMessage {
	ends := h.conn.ofType(connID, domain.MsgEnd)
	if len(ends) == 0 {
		return nil
	}
	return &ends[len(ends)-1]
}

var errBoom = errors.New("boom")
