package game

import (
	"context"
	"log"

	"github.com/iamasit07/4-in-a-row/server/internal/domain"
)

// Finalize ends a live session. A nil winner records a draw. It reports
// false when the session is unknown or already finalized.
func (r *Registry) Finalize(roomID string, winner *string, persist bool) bool {
	s := r.lookup(roomID)
	if s == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	status, reason := domain.StatusDraw, domain.ReasonDraw
	if winner != nil {
		status, reason = domain.StatusWon, domain.ReasonConnectFour
	}
	return r.finalizeLocked(s, status, winner, reason, persist)
}

// finalizeLocked moves s to its terminal state and removes it from the
// registry. Only the first call per session does anything. Caller holds s.mu.
func (r *Registry) finalizeLocked(s *Session, status domain.GameStatus, winner *string, reason string, persist bool) bool {
	if s.finished() {
		return false
	}

	s.status = status
	s.winner = winner
	s.reason = reason
	s.endedAt = r.clock.Now()

	r.mu.Lock()
	if r.sessions[s.ID] == s {
		delete(r.sessions, s.ID)
	}
	for i, p := range s.Players {
		if p.ConnID != "" && r.connToRoom[p.ConnID] == s.ID {
			delete(r.connToRoom, p.ConnID)
		}
		key := reconnectKey{RoomID: s.ID, Seat: i}
		if entry, ok := r.reconnects[key]; ok {
			entry.timer.Cancel()
			delete(r.reconnects, key)
		}
	}
	async := !r.closed
	if persist && r.repo != nil && async {
		r.saves.Add(1)
	}
	r.mu.Unlock()

	winnerName := "none"
	if winner != nil {
		winnerName = *winner
	}
	log.Printf("[GAME] Game %s over (%s), winner: %s, moves: %d", s.ID, reason, winnerName, len(s.moves))

	r.emit(domain.AnalyticsEvent{
		Type:      domain.EventGameEnd,
		RoomID:    s.ID,
		Winner:    winner,
		MoveCount: len(s.moves),
		Timestamp: s.endedAt.UnixMilli(),
	})

	if persist && r.repo != nil {
		record := s.record()
		if async {
			// saves run in the background so the end message is not held up
			go func() {
				defer r.saves.Done()
				r.saveGame(record)
			}()
		} else {
			r.saveGame(record)
		}
	}

	return true
}

func (r *Registry) saveGame(record *domain.GameRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.saveTimeout)
	defer cancel()

	if err := r.repo.SaveGame(ctx, record); err != nil {
		log.Printf("[GAME] Error saving game %s: %v", record.RoomID, err)
		return
	}
	log.Printf("[GAME] Game %s saved successfully", record.RoomID)
}
