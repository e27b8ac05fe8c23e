package game

import (
	"sync"
	"time"

	"github.com/iamasit07/4-in-a-row/server/internal/domain"
)

type Player struct {
	Username string
	Token    domain.Token
	ConnID   string // empty while the player is inside the reconnection window
	Computer bool
}

// Session is a single game between two players. Everything below mu is
// guarded by it; the board is only ever written by the turn orchestrator.
type Session struct {
	ID        string
	Players   [2]*Player
	CreatedAt time.Time

	mu      sync.Mutex
	board   domain.Board
	turn    int
	moves   []domain.Move
	status  domain.GameStatus
	winner  *string
	reason  string
	endedAt time.Time
}

// Snapshot is a read-only copy of a session's state.
type Snapshot struct {
	ID        string
	Players   [2]Player
	Board     domain.Board
	Turn      int
	Moves     []domain.Move
	Status    domain.GameStatus
	Winner    *string
	CreatedAt time.Time
}

func newSession(id string, p1, p2 *Player, createdAt time.Time) *Session {
	return &Session{
		ID:        id,
		Players:   [2]*Player{p1, p2},
		CreatedAt: createdAt,
		board:     domain.NewBoard(),
		status:    domain.StatusActive,
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:        s.ID,
		Board:     s.board,
		Turn:      s.turn,
		Moves:     append([]domain.Move(nil), s.moves...),
		Status:    s.status,
		Winner:    s.winner,
		CreatedAt: s.CreatedAt,
	}
	for i, p := range s.Players {
		snap.Players[i] = *p
	}
	return snap
}

func (s *Session) finished() bool {
	return s.status != domain.StatusActive
}

func (s *Session) usernames() []string {
	return []string{s.Players[0].Username, s.Players[1].Username}
}

func (s *Session) opponentOf(idx int) *Player {
	return s.Players[1-idx]
}

func (s *Session) indexByConn(connID string) int {
	if connID == "" {
		return -1
	}
	for i, p := range s.Players {
		if p.ConnID == connID {
			return i
		}
	}
	return -1
}

func (s *Session) indexByUsername(username string) int {
	for i, p := range s.Players {
		if !p.Computer && p.Username == username {
			return i
		}
	}
	return -1
}

// seatForRejoin picks the seat a returning player named username takes back.
// A seat whose connection dropped wins over one that is still bound.
func (s *Session) seatForRejoin(username string) int {
	bound := -1
	for i, p := range s.Players {
		if p.Computer || p.Username != username {
			continue
		}
		if p.ConnID == "" {
			return i
		}
		if bound == -1 {
			bound = i
		}
	}
	return bound
}

// resolvePlayer finds the acting player: by connection first, then by
// username, then by token. The computer player is never resolved from a
// client reference.
func (s *Session) resolvePlayer(connID, ref string) (int, error) {
	if idx := s.indexByConn(connID); idx != -1 {
		return idx, nil
	}
	if ref == "" {
		return -1, domain.ErrNotAPlayer
	}
	if idx := s.indexByUsername(ref); idx != -1 {
		return idx, nil
	}
	for i, p := range s.Players {
		if !p.Computer && string(p.Token) == ref {
			return i, nil
		}
	}
	return -1, domain.ErrNotAPlayer
}

func (s *Session) record() *domain.GameRecord {
	rec := &domain.GameRecord{
		RoomID:     s.ID,
		Board:      s.board,
		Winner:     s.winner,
		Reason:     s.reason,
		Moves:      append([]domain.Move(nil), s.moves...),
		CreatedAt:  s.CreatedAt,
		EndedAt:    s.endedAt,
		DurationMs: s.endedAt.Sub(s.CreatedAt).Milliseconds(),
	}
	for _, p := range s.Players {
		rec.Players = append(rec.Players, domain.PlayerRecord{Username: p.Username, Token: p.Token})
	}
	return rec
}
