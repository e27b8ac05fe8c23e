package domain

// Directions scanned for runs: horizontal, vertical, diagonal \ and diagonal /.
var Directions = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// RunLength counts same-token cells starting at (row, column) and stepping
// in (deltaRow, deltaCol), looking at most ToWin cells. It returns 0 when the
// starting cell does not hold token.
func (b *Board) RunLength(row, column, deltaRow, deltaCol int, token Token) int {
	if b[row][column] != token {
		return 0
	}

	count := 1
	for k := 1; k < ToWin; k++ {
		r, c := row+deltaRow*k, column+deltaCol*k
		if r < 0 || r >= Rows || c < 0 || c >= Columns {
			break
		}
		if b[r][c] != token {
			break
		}
		count++
	}
	return count
}

// CheckWin scans every cell holding token and reports whether any of the four
// axes carries ToWin or more in a row.
func (b *Board) CheckWin(token Token) bool {
	if token == Empty {
		return false
	}

	for row := 0; row < Rows; row++ {
		for col := 0; col < Columns; col++ {
			if b[row][col] != token {
				continue
			}
			for _, dir := range Directions {
				if b.RunLength(row, col, dir[0], dir[1], token) >= ToWin {
					return true
				}
			}
		}
	}
	return false
}
