package entity

import (
	"fmt"

	"github.com/Brenn007/matchmaking-project/internal/apperror"
)

// Mark is the content of one board cell. The byte values are the wire alphabet.
type Mark byte

const (
	MarkEmpty Mark = ' '
	MarkA     Mark = 'A'
	MarkB     Mark = 'B'
)

const (
	BoardSide = 3
	BoardSize = BoardSide * BoardSide
)

var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is a 3x3 grid stored row by row, index = row*3+col.
type Board [BoardSize]Mark

func NewBoard() Board {
	var board Board
	for i := range board {
		board[i] = MarkEmpty
	}

	return board
}

// CellIndex maps row/col to a board index, -1 when either is outside the grid.
func CellIndex(row, col int) int {
	if row < 0 || row >= BoardSide || col < 0 || col >= BoardSide {
		return -1
	}

	return row*BoardSide + col
}

// Place puts mark into the cell. A filled cell is never overwritten.
func (that *Board) Place(index int, mark Mark) error {
	if index < 0 || index >= BoardSize {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOutOfRange, index)
	}

	if that[index] != MarkEmpty {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, index)
	}

	that[index] = mark

	return nil
}

func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == MarkEmpty {
			return false
		}
	}

	return true
}

// WinningLine reports the seat owning the first completed line, if any.
func (that *Board) WinningLine() (Seat, bool) {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != MarkEmpty && a == b && b == c {
			return SeatForMark(a), true
		}
	}

	return SeatNone, false
}

func (that Board) String() string {
	raw := make([]byte, BoardSize)
	for i, cell := range that {
		raw[i] = byte(cell)
	}

	return string(raw)
}
