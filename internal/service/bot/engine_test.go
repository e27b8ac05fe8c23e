package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iamasit07/4-in-a-row/server/internal/domain"
)

const (
	b = domain.BotToken
	h = domain.Player1
)

func boardWith(cells map[[2]int]domain.Token) domain.Board {
	var board domain.Board
	for pos, tok := range cells {
		board[pos[0]][pos[1]] = tok
	}
	return board
}

func TestChooseColumn_EmptyBoardPrefersCenter(t *testing.T) {
	assert.Equal(t, 3, ChooseColumn(domain.NewBoard(), b, h))
}

func TestChooseColumn_WinBeatsBlock(t *testing.T) {
	board := boardWith(map[[2]int]domain.Token{
		{5, 6}: b, {4, 6}: b, {3, 6}: b,
		{5, 0}: h, {5, 1}: h, {5, 2}: h,
	})

	assert.Equal(t, 6, ChooseColumn(board, b, h))
}

func TestChooseColumn_BlocksOpponentWin(t *testing.T) {
	board := boardWith(map[[2]int]domain.Token{
		{5, 0}: h, {5, 1}: h, {5, 2}: h,
		{5, 5}: b, {5, 6}: b,
	})

	assert.Equal(t, 3, ChooseColumn(board, b, h))
}

func TestChooseColumn_BlocksVerticalThreat(t *testing.T) {
	board := boardWith(map[[2]int]domain.Token{
		{5, 1}: h, {4, 1}: h, {3, 1}: h,
		{5, 3}: b,
	})

	assert.Equal(t, 1, ChooseColumn(board, b, h))
}

func TestChooseColumn_AvoidsSettingUpOpponent(t *testing.T) {
	// dropping into column 3 lands on row 5 and lets the opponent
	// complete row 4 right on top of it
	board := boardWith(map[[2]int]domain.Token{
		{5, 0}: b, {5, 1}: h, {5, 2}: b,
		{4, 0}: h, {4, 1}: h, {4, 2}: h,
	})

	col := ChooseColumn(board, b, h)
	assert.NotEqual(t, 3, col)
	assert.True(t, board.IsValidMove(col))
}

func TestChooseColumn_Deterministic(t *testing.T) {
	board := boardWith(map[[2]int]domain.Token{
		{5, 3}: h, {4, 3}: b, {5, 2}: h, {5, 4}: b, {3, 3}: h,
	})

	first := ChooseColumn(board, b, h)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, ChooseColumn(board, b, h))
	}
}

func TestChooseColumn_DoesNotMutateInput(t *testing.T) {
	board := boardWith(map[[2]int]domain.Token{{5, 3}: h})
	before := board

	ChooseColumn(board, b, h)
	assert.Equal(t, before, board)
}

func TestChooseColumn_SingleOpenColumn(t *testing.T) {
	var board domain.Board
	for r := 0; r < domain.Rows; r++ {
		for c := 0; c < domain.Columns; c++ {
			if ((c/2)%2+r)%2 == 0 {
				board[r][c] = h
			} else {
				board[r][c] = b
			}
		}
	}
	assert.Equal(t, -1, ChooseColumn(board, b, h))

	board[0][5] = domain.Empty
	assert.Equal(t, 5, ChooseColumn(board, b, h))
}

func TestPatternScore(t *testing.T) {
	tests := []struct {
		name  string
		cells map[[2]int]domain.Token
		want  int
	}{
		{"nothing", nil, 0},
		{"lone disk", map[[2]int]domain.Token{{5, 0}: b}, 0},
		// run of 2 from (5,0) plus run of 1 from (5,1)
		{"pair", map[[2]int]domain.Token{{5, 0}: b, {5, 1}: b}, SCORE_TWO_IN_ROW},
		// 3 from (5,0) and 2 from (5,1)
		{"triple", map[[2]int]domain.Token{{5, 0}: b, {5, 1}: b, {5, 2}: b}, SCORE_THREE_IN_ROW + SCORE_TWO_IN_ROW},
		{"opponent ignored", map[[2]int]domain.Token{{5, 0}: h, {5, 1}: h}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, patternScore(boardWith(tt.cells), b))
		})
	}
}

func TestCenterBonus(t *testing.T) {
	assert.Equal(t, 6, centerBonus(3))
	assert.Equal(t, 4, centerBonus(2))
	assert.Equal(t, 4, centerBonus(4))
	assert.Equal(t, 0, centerBonus(0))
	assert.Equal(t, 0, centerBonus(6))
}
