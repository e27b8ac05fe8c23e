package game

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"github.com/iamasit07/4-in-a-row/server/internal/domain"
	"github.com/iamasit07/4-in-a-row/server/pkg/uid"
)

const (
	DefaultMatchTimeout    = 10 * time.Second
	DefaultReconnectWindow = 30 * time.Second
	DefaultSaveTimeout     = 5 * time.Second

	maxUsernameLength = 32
	anonymousUsername = "anon"
)

// ConnectionManagerInterface delivers messages to a single connection.
// SendMessage is called while session and registry locks are held, so it
// must not block.
type ConnectionManagerInterface interface {
	SendMessage(connID string, message domain.ServerMessage) error
}

// EventEmitter is the analytics sink. Emit is fire-and-forget.
type EventEmitter interface {
	Emit(event domain.AnalyticsEvent)
}

type GameRepository interface {
	SaveGame(ctx context.Context, record *domain.GameRecord) error
}

type Options struct {
	Conn            ConnectionManagerInterface
	Events          EventEmitter
	Repo            GameRepository // nil disables persistence
	Clock           clockwork.Clock
	MatchTimeout    time.Duration
	ReconnectWindow time.Duration
	SaveTimeout     time.Duration
	Persist         bool
}

type waitingEntry struct {
	ConnID   string
	Username string
	timer    *Timer
}

// reconnectKey names a seat, not a username: both players may share a name.
type reconnectKey struct {
	RoomID string
	Seat   int
}

type reconnectEntry struct {
	reconnectKey
	Username string
	timer    *Timer
}

type Stats struct {
	Waiting           int `json:"waiting"`
	Sessions          int `json:"sessions"`
	PendingReconnects int `json:"pendingReconnects"`
}

// Registry owns the waiting queue, the live sessions and the reconnection
// timers. One mutex guards all of them. Session state has its own lock and
// the lock order is always session before registry.
type Registry struct {
	conn            ConnectionManagerInterface
	events          EventEmitter
	repo            GameRepository
	clock           clockwork.Clock
	matchTimeout    time.Duration
	reconnectWindow time.Duration
	saveTimeout     time.Duration
	persist         bool

	mu         sync.Mutex
	waiting    []*waitingEntry
	sessions   map[string]*Session // roomID -> session
	connToRoom map[string]string   // connID -> roomID
	reconnects map[reconnectKey]*reconnectEntry
	closed     bool

	saves sync.WaitGroup
}

func NewRegistry(opts Options) *Registry {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.MatchTimeout <= 0 {
		opts.MatchTimeout = DefaultMatchTimeout
	}
	if opts.ReconnectWindow <= 0 {
		opts.ReconnectWindow = DefaultReconnectWindow
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = DefaultSaveTimeout
	}

	return &Registry{
		conn:            opts.Conn,
		events:          opts.Events,
		repo:            opts.Repo,
		clock:           opts.Clock,
		matchTimeout:    opts.MatchTimeout,
		reconnectWindow: opts.ReconnectWindow,
		saveTimeout:     opts.SaveTimeout,
		persist:         opts.Persist,
		sessions:        make(map[string]*Session),
		connToRoom:      make(map[string]string),
		reconnects:      make(map[reconnectKey]*reconnectEntry),
	}
}

// NormalizeUsername trims the name, falls back to "anon" and caps the length.
func NormalizeUsername(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return anonymousUsername
	}
	if utf8.RuneCountInString(name) > maxUsernameLength {
		name = string([]rune(name)[:maxUsernameLength])
	}
	return name
}

// Join pairs the connection with the oldest waiting player, or queues it and
// arms the bot fallback timer.
func (r *Registry) Join(connID, rawUsername string) error {
	username := NormalizeUsername(rawUsername)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return domain.ErrShuttingDown
	}

	for _, w := range r.waiting {
		if w.ConnID == connID {
			r.send(connID, waitingMessage())
			return nil
		}
	}
	if _, playing := r.connToRoom[connID]; playing {
		return domain.ErrAlreadyPlaying
	}

	if len(r.waiting) > 0 {
		peer := r.waiting[0]
		r.waiting = r.waiting[1:]
		peer.timer.Cancel()

		p1 := &Player{Username: peer.Username, Token: domain.Player1, ConnID: peer.ConnID}
		p2 := &Player{Username: username, Token: domain.Player2, ConnID: connID}
		s := r.startSessionLocked(p1, p2)

		log.Printf("[MATCHMAKING] Match found: %s vs %s in room %s", p1.Username, p2.Username, s.ID)
		return nil
	}

	entry := &waitingEntry{ConnID: connID, Username: username}
	entry.timer = schedule(r.clock, r.matchTimeout, func() {
		r.onMatchTimeout(entry)
	})
	r.waiting = append(r.waiting, entry)

	log.Printf("[MATCHMAKING] %s queued (conn %s), bot fallback in %s", username, connID, r.matchTimeout)
	r.send(connID, waitingMessage())
	return nil
}

func (r *Registry) onMatchTimeout(entry *waitingEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.removeWaitingLocked(entry) {
		return
	}

	human := &Player{Username: entry.Username, Token: domain.Player1, ConnID: entry.ConnID}
	computer := &Player{Username: domain.BotUsername, Token: domain.BotToken, Computer: true}
	s := r.startSessionLocked(human, computer)

	log.Printf("[MATCHMAKING] No opponent for %s after %s, starting bot game %s", entry.Username, r.matchTimeout, s.ID)
}

// startSessionLocked registers a new session and tells both sides about it.
// The session is not reachable by anyone else until r.mu is released.
func (r *Registry) startSessionLocked(p1, p2 *Player) *Session {
	now := r.clock.Now()
	s := newSession(uid.NewRoomID(now), p1, p2, now)
	r.sessions[s.ID] = s

	for _, p := range s.Players {
		if p.Computer {
			continue
		}
		r.connToRoom[p.ConnID] = s.ID
		board := s.board
		r.send(p.ConnID, domain.ServerMessage{
			Type:    domain.MsgStart,
			RoomID:  s.ID,
			Board:   &board,
			Players: s.usernames(),
			Token:   p.Token,
		})
	}

	r.emit(domain.AnalyticsEvent{
		Type:      domain.EventGameStart,
		RoomID:    s.ID,
		Players:   s.usernames(),
		Timestamp: now.UnixMilli(),
	})

	log.Printf("[SESSION] Created session %s: %s (%s) vs %s (%s)",
		s.ID, p1.Username, p1.Token, p2.Username, p2.Token)
	return s
}

// Rejoin binds connID to the named player of an ongoing session and cancels
// that player's forfeit timer.
func (r *Registry) Rejoin(connID, rawUsername, roomID string) error {
	username := NormalizeUsername(rawUsername)

	s := r.lookup(roomID)
	if s == nil {
		return domain.ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished() {
		return domain.ErrSessionNotFound
	}

	idx := s.seatForRejoin(username)
	if idx == -1 {
		return domain.ErrPlayerNotInSession
	}

	r.mu.Lock()
	if other, seated := r.connToRoom[connID]; seated && other != roomID {
		r.mu.Unlock()
		return domain.ErrAlreadyPlaying
	}

	p := s.Players[idx]
	previous := p.ConnID
	p.ConnID = connID

	if previous != "" && previous != connID && r.connToRoom[previous] == roomID {
		delete(r.connToRoom, previous)
	}
	r.connToRoom[connID] = roomID
	r.removeWaitingConnLocked(connID)
	cancelled := false
	key := reconnectKey{RoomID: roomID, Seat: idx}
	if entry, ok := r.reconnects[key]; ok {
		cancelled = entry.timer.Cancel()
		delete(r.reconnects, key)
	}
	r.mu.Unlock()

	log.Printf("[RECONNECT] %s rejoined %s (forfeit timer cancelled: %v)", username, roomID, cancelled)

	board := s.board
	r.send(connID, domain.ServerMessage{
		Type:    domain.MsgRejoinOK,
		RoomID:  s.ID,
		Board:   &board,
		Players: s.usernames(),
		Token:   p.Token,
	})
	r.broadcastLocked(s, domain.ServerMessage{
		Type:    domain.MsgInfo,
		Message: username + " rejoined",
	})
	return nil
}

// Disconnect is called by the transport when a connection goes away.
func (r *Registry) Disconnect(connID string) {
	r.mu.Lock()
	if r.removeWaitingConnLocked(connID) {
		r.mu.Unlock()
		log.Printf("[MATCHMAKING] Conn %s left the queue", connID)
		return
	}

	roomID, ok := r.connToRoom[connID]
	delete(r.connToRoom, connID)
	s := r.sessions[roomID]
	r.mu.Unlock()

	if !ok || s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished() {
		return
	}
	idx := s.indexByConn(connID)
	if idx == -1 {
		return
	}

	p := s.Players[idx]
	p.ConnID = ""

	key := reconnectKey{RoomID: s.ID, Seat: idx}
	entry := &reconnectEntry{reconnectKey: key, Username: p.Username}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if old, exists := r.reconnects[key]; exists {
		old.timer.Cancel()
	}
	entry.timer = schedule(r.clock, r.reconnectWindow, func() {
		r.onReconnectTimeout(entry)
	})
	r.reconnects[key] = entry
	r.mu.Unlock()

	log.Printf("[RECONNECT] %s disconnected from %s, forfeit in %s", p.Username, s.ID, r.reconnectWindow)
	r.broadcastLocked(s, domain.ServerMessage{
		Type:    domain.MsgInfo,
		Message: p.Username + " disconnected. Waiting " + r.reconnectWindow.String() + " to reconnect...",
	})
}

func (r *Registry) onReconnectTimeout(entry *reconnectEntry) {
	r.mu.Lock()
	if r.reconnects[entry.reconnectKey] != entry {
		r.mu.Unlock()
		return
	}
	delete(r.reconnects, entry.reconnectKey)
	s := r.sessions[entry.RoomID]
	r.mu.Unlock()

	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished() {
		return
	}
	idx := entry.Seat
	if s.Players[idx].ConnID != "" {
		// rejoined between the timer firing and us getting the lock
		return
	}

	winner := s.opponentOf(idx).Username
	log.Printf("[RECONNECT] %s did not return to %s, %s wins by forfeit", entry.Username, s.ID, winner)

	r.broadcastLocked(s, domain.ServerMessage{
		Type:   domain.MsgEnd,
		Winner: &winner,
		Reason: domain.ReasonForfeit,
	})
	r.finalizeLocked(s, domain.StatusForfeited, &winner, domain.ReasonForfeit, r.persist)
}

// Session returns a copy of a live session's state.
func (r *Registry) Session(roomID string) (Snapshot, bool) {
	s := r.lookup(roomID)
	if s == nil {
		return Snapshot{}, false
	}
	return s.Snapshot(), true
}

// LiveGames lists the sessions still in progress, oldest first.
func (r *Registry) LiveGames() []Snapshot {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	live := make([]Snapshot, 0, len(sessions))
	for _, s := range sessions {
		snap := s.Snapshot()
		if snap.Status == domain.StatusActive {
			live = append(live, snap)
		}
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].CreatedAt.Equal(live[j].CreatedAt) {
			return live[i].ID < live[j].ID
		}
		return live[i].CreatedAt.Before(live[j].CreatedAt)
	})
	return live
}

func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Stats{
		Waiting:           len(r.waiting),
		Sessions:          len(r.sessions),
		PendingReconnects: len(r.reconnects),
	}
}

// Shutdown cancels every outstanding timer and waits for in-flight saves.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	for _, w := range r.waiting {
		w.timer.Cancel()
	}
	r.waiting = nil
	for key, entry := range r.reconnects {
		entry.timer.Cancel()
		delete(r.reconnects, key)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.saves.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[SESSION] Registry shut down")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Registry) lookup(roomID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[roomID]
}

func (r *Registry) removeWaitingLocked(entry *waitingEntry) bool {
	for i, w := range r.waiting {
		if w == entry {
			r.waiting = append(r.waiting[:i], r.waiting[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Registry) removeWaitingConnLocked(connID string) bool {
	for _, w := range r.waiting {
		if w.ConnID == connID {
			w.timer.Cancel()
			return r.removeWaitingLocked(w)
		}
	}
	return false
}

// broadcastLocked sends msg to every connected human in s, in player order.
// Caller holds s.mu, which keeps the order identical for both players.
func (r *Registry) broadcastLocked(s *Session, msg domain.ServerMessage) {
	for _, p := range s.Players {
		if p.Computer || p.ConnID == "" {
			continue
		}
		r.send(p.ConnID, msg)
	}
}

func (r *Registry) send(connID string, msg domain.ServerMessage) {
	if r.conn == nil {
		return
	}
	if err := r.conn.SendMessage(connID, msg); err != nil {
		log.Printf("[SESSION] Failed to send %s to %s: %v", msg.Type, connID, err)
	}
}

func (r *Registry) emit(event domain.AnalyticsEvent) {
	if r.events == nil {
		return
	}
	r.events.Emit(event)
}

func waitingMessage() domain.ServerMessage {
	return domain.ServerMessage{Type: domain.MsgWaiting, Message: "Waiting for opponent..."}
}
