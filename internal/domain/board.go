package domain

// Board is the grid, row 0 is the top row (0 -> top and 5 -> bottom).
// It is a value type so assigning it gives an independent copy.
type Board [Rows][Columns]Token

type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

func NewBoard() Board {
	return Board{}
}

func (b *Board) IsColumnFull(column int) bool {
	return b[0][column] != Empty
}

func (b *Board) IsValidMove(column int) bool {
	if column < 0 || column >= Columns {
		return false
	}
	return !b.IsColumnFull(column)
}

// ApplyMove drops token into column. The board is left untouched when the
// move is rejected.
func (b *Board) ApplyMove(column int, token Token) (Position, error) {
	if !b.IsValidMove(column) {
		return Position{}, ErrInvalidMove
	}

	// shifting the disk from top to bottom till it
	// reaches the end or another disk
	for row := Rows - 1; row >= 0; row-- {
		if b[row][column] == Empty {
			b[row][column] = token
			return Position{Row: row, Column: column}, nil
		}
	}

	return Position{}, ErrInvalidMove
}

func (b *Board) IsFull() bool {
	for c := 0; c < Columns; c++ {
		if b[0][c] == Empty {
			return false
		}
	}
	return true
}

// OpenColumns lists the columns that still accept a disk, left to right.
func (b *Board) OpenColumns() []int {
	open := make([]int, 0, Columns)
	for col := 0; col < Columns; col++ {
		if !b.IsColumnFull(col) {
			open = append(open, col)
		}
	}
	return open
}

// SimulateMove returns a copy of the board with the move applied.
func (b Board) SimulateMove(column int, token Token) (Board, bool) {
	if _, err := b.ApplyMove(column, token); err != nil {
		return b, false
	}
	return b, true
}
