package entity

import (
	"testing"

	"github.com/Brenn007/matchmaking-project/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustParseBoard reads the 9-char wire form of a board.
func mustParseBoard(t *testing.T, raw string) Board {
	t.Helper()

	require.Len(t, raw, BoardSize)

	var board Board
	for i := range board {
		mark := Mark(raw[i])
		require.Contains(t, []Mark{MarkEmpty, MarkA, MarkB}, mark, "cell %d", i)
		board[i] = mark
	}

	return board
}

func TestBoard_Place(t *testing.T) {
	t.Run("Places a mark into an empty cell", func(t *testing.T) {
		// Given: an empty board
		board := NewBoard()

		// When: seat 1 marks the center
		err := board.Place(4, MarkA)

		// Then: the cell holds the mark
		require.NoError(t, err)
		assert.Equal(t, "    A    ", board.String())
	})

	t.Run("Rejects an occupied cell without changing it", func(t *testing.T) {
		// Given: a board where cell 0 is taken by seat 1
		board := mustParseBoard(t, "A        ")

		// When: seat 2 tries the same cell
		err := board.Place(0, MarkB)

		// Then: ErrCellOccupied is returned and the cell keeps its mark
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, MarkA, board[0])
	})

	t.Run("Rejects indexes outside the grid", func(t *testing.T) {
		board := NewBoard()

		for _, index := range []int{-1, 9, 20} {
			// When: an out of range index is used
			err := board.Place(index, MarkA)

			// Then: ErrCellOutOfRange is returned
			require.ErrorIs(t, err, apperror.ErrCellOutOfRange)
		}

		assert.Equal(t, NewBoard(), board)
	})
}

func TestBoard_WinningLine(t *testing.T) {
	t.Run("Row", func(t *testing.T) {
		board := mustParseBoard(t, "AAA BB   ")

		seat, ok := board.WinningLine()

		require.True(t, ok)
		assert.Equal(t, SeatOne, seat)
	})

	t.Run("Column", func(t *testing.T) {
		board := mustParseBoard(t, "BA BA B A")

		seat, ok := board.WinningLine()

		require.True(t, ok)
		assert.Equal(t, SeatTwo, seat)
	})

	t.Run("Diagonal", func(t *testing.T) {
		board := mustParseBoard(t, "  BAB BAA")

		seat, ok := board.WinningLine()

		require.True(t, ok)
		assert.Equal(t, SeatTwo, seat)
	})

	t.Run("No line on a full drawn board", func(t *testing.T) {
		board := mustParseBoard(t, "ABAABBBAA")

		_, ok := board.WinningLine()

		assert.False(t, ok)
		assert.True(t, board.IsFull())
	})
}

func TestCellIndex(t *testing.T) {
	assert.Equal(t, 0, CellIndex(0, 0))
	assert.Equal(t, 5, CellIndex(1, 2))
	assert.Equal(t, 8, CellIndex(2, 2))

	// a column past the edge must not wrap into the next row
	assert.Equal(t, -1, CellIndex(0, 5))
	assert.Equal(t, -1, CellIndex(3, 0))
	assert.Equal(t, -1, CellIndex(-1, 1))
}
