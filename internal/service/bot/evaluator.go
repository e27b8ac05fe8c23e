package bot

import (
	"github.com/iamasit07/4-in-a-row/server/internal/domain"
)

const (
	SCORE_TWO_IN_ROW   = 3
	SCORE_THREE_IN_ROW = 30
)

// patternScore walks every cell holding token and, for each of the four
// directions, scores the run that starts there: runs of exactly 2 and exactly
// 3 count, anything else is ignored.
func patternScore(board domain.Board, token domain.Token) int {
	score := 0

	for row := 0; row < domain.Rows; row++ {
		for col := 0; col < domain.Columns; col++ {
			if board[row][col] != token {
				continue
			}
			for _, dir := range domain.Directions {
				switch board.RunLength(row, col, dir[0], dir[1], token) {
				case 2:
					score += SCORE_TWO_IN_ROW
				case 3:
					score += SCORE_THREE_IN_ROW
				}
			}
		}
	}

	return score
}
