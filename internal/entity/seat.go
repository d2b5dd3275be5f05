package entity

// Seat is a match-scoped player slot. Seat 1 always moves first.
type Seat int

const (
	SeatNone Seat = 0
	SeatOne  Seat = 1
	SeatTwo  Seat = 2
)

func (that Seat) IsValid() bool {
	return that == SeatOne || that == SeatTwo
}

func (that Seat) Opponent() Seat {
	switch that {
	case SeatOne:
		return SeatTwo
	case SeatTwo:
		return SeatOne
	default:
		return SeatNone
	}
}

func (that Seat) Mark() Mark {
	switch that {
	case SeatOne:
		return MarkA
	case SeatTwo:
		return MarkB
	default:
		return MarkEmpty
	}
}

func SeatForMark(mark Mark) Seat {
	switch mark {
	case MarkA:
		return SeatOne
	case MarkB:
		return SeatTwo
	default:
		return SeatNone
	}
}

// index into a two-element per-seat array.
func (that Seat) index() int {
	return int(that) - 1
}
