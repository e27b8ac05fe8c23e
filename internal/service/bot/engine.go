package bot

import (
	"github.com/iamasit07/4-in-a-row/server/internal/domain"
)

const (
	SCORE_LOSING_REPLY = 1000 // penalty per opponent reply that wins on the spot
	CENTER_WEIGHT      = 2
)

// center-out scan order used by the heuristic phase
var columnOrder = [domain.Columns]int{3, 2, 4, 1, 5, 0, 6}

// ChooseColumn picks the computer's column. It is pure: the board is passed
// by value and the same inputs always give the same column. It returns -1
// only when the board has no open column.
func ChooseColumn(board domain.Board, botToken, opponentToken domain.Token) int {
	open := board.OpenColumns()
	if len(open) == 0 {
		return -1
	}

	// === PHASE 1: immediate win ===
	for _, col := range open {
		if winsAfter(board, col, botToken) {
			return col
		}
	}

	// === PHASE 2: block the opponent's immediate win ===
	for _, col := range open {
		if winsAfter(board, col, opponentToken) {
			return col
		}
	}

	// === PHASE 3: heuristic ===
	best := -1
	bestScore := 0
	for _, col := range columnOrder {
		next, ok := board.SimulateMove(col, botToken)
		if !ok {
			continue
		}

		score := centerBonus(col) + patternScore(next, botToken)
		score -= SCORE_LOSING_REPLY * countWinningReplies(next, opponentToken)

		if best == -1 || score > bestScore {
			best = col
			bestScore = score
		}
	}

	if best == -1 {
		return open[0]
	}
	return best
}

func winsAfter(board domain.Board, col int, token domain.Token) bool {
	next, ok := board.SimulateMove(col, token)
	return ok && next.CheckWin(token)
}

func countWinningReplies(board domain.Board, opponentToken domain.Token) int {
	count := 0
	for _, col := range board.OpenColumns() {
		if winsAfter(board, col, opponentToken) {
			count++
		}
	}
	return count
}

func centerBonus(col int) int {
	center := domain.Columns / 2
	dist := col - center
	if dist < 0 {
		dist = -dist
	}
	return CENTER_WEIGHT * (center - dist)
}
