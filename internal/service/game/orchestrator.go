package game

import (
	"log"

	"github.com/iamasit07/4-in-a-row/server/internal/domain"
	"github.com/iamasit07/4-in-a-row/server/internal/service/bot"
)

// SubmitMove plays column for the player behind connID (or playerRef) in
// roomID. When the opponent is the computer its reply is played before
// SubmitMove returns, so the turn always ends back on a human.
//
// Rejected moves leave the board and the turn untouched.
func (r *Registry) SubmitMove(connID, roomID string, column int, playerRef string) error {
	s := r.lookup(roomID)
	if s == nil {
		return domain.ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished() {
		return domain.ErrSessionNotFound
	}

	actor, err := s.resolvePlayer(connID, playerRef)
	if err != nil {
		return err
	}
	if actor != s.turn {
		return domain.ErrNotYourTurn
	}

	for {
		ended, err := r.playTurnLocked(s, actor, column)
		if err != nil || ended {
			return err
		}

		next := s.Players[s.turn]
		if !next.Computer {
			return nil
		}

		// the board cannot be full here, playTurnLocked ends the game first
		actor = s.turn
		column = bot.ChooseColumn(s.board, next.Token, s.opponentOf(actor).Token)
		log.Printf("[BOT] %s plays column %d in %s", next.Username, column, s.ID)
	}
}

// playTurnLocked applies one move and reports whether it ended the game.
func (r *Registry) playTurnLocked(s *Session, idx, column int) (bool, error) {
	p := s.Players[idx]

	if _, err := s.board.ApplyMove(column, p.Token); err != nil {
		return false, err
	}

	now := r.clock.Now().UnixMilli()
	s.moves = append(s.moves, domain.Move{By: p.Username, Column: column, Timestamp: now})

	board := s.board
	r.broadcastLocked(s, domain.ServerMessage{Type: domain.MsgUpdate, Board: &board})

	col := column
	r.emit(domain.AnalyticsEvent{
		Type:      domain.EventMove,
		RoomID:    s.ID,
		By:        p.Username,
		Column:    &col,
		Timestamp: now,
	})

	// a move that fills the board and connects four is a win, not a draw
	if s.board.CheckWin(p.Token) {
		winner := p.Username
		r.broadcastLocked(s, domain.ServerMessage{Type: domain.MsgEnd, Winner: &winner})
		r.finalizeLocked(s, domain.StatusWon, &winner, domain.ReasonConnectFour, r.persist)
		return true, nil
	}

	if s.board.IsFull() {
		r.broadcastLocked(s, domain.ServerMessage{Type: domain.MsgEnd, Draw: true})
		r.finalizeLocked(s, domain.StatusDraw, nil, domain.ReasonDraw, r.persist)
		return true, nil
	}

	s.turn = 1 - s.turn
	return false, nil
}
