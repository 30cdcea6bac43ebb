package puzzle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MoveCount counts moves under some metric, or the order of a move.
type MoveCount int

// A Move is a named family (the quantum move, e.g. "R") raised to an amount.
// R2 is {R, 2}, R' is {R, -1}.
type Move struct {
	Family string
	Amount int
}

var moveRe = regexp.MustCompile(`^(\d*[A-Za-z_]+)(\d*)(')?$`)

// ParseMove parses moves such as R, R2, R', Rw2' and 2R.
func ParseMove(s string) (Move, error) {
	m := moveRe.FindStringSubmatch(s)
	if m == nil {
		return Move{}, &InvalidMoveError{Move: s, Reason: "could not parse move"}
	}
	amount := 1
	if m[2] != "" {
		a, err := strconv.Atoi(m[2])
		if err != nil {
			return Move{}, &InvalidMoveError{Move: s, Reason: err.Error()}
		}
		if a == 0 {
			return Move{}, &InvalidMoveError{Move: s, Reason: "zero amount"}
		}
		amount = a
	}
	if m[3] == "'" {
		amount = -amount
	}
	return Move{Family: m[1], Amount: amount}, nil
}

// ParseMoveList splits a move list on whitespace and commas.
func ParseMoveList(s string) ([]Move, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r <= ' ' || r == ','
	})
	moves := make([]Move, 0, len(fields))
	for _, f := range fields {
		m, err := ParseMove(f)
		if err != nil {
			return nil, err
		}
		moves = append(moves, m)
	}
	return moves, nil
}

// Quantum returns the amount-1 move of the same family.
func (m Move) Quantum() Move {
	return Move{Family: m.Family, Amount: 1}
}

// Invert returns the move with the amount negated.
func (m Move) Invert() Move {
	return Move{Family: m.Family, Amount: -m.Amount}
}

func (m Move) String() string {
	switch {
	case m.Amount == 1:
		return m.Family
	case m.Amount == -1:
		return m.Family + "'"
	case m.Amount < 0:
		return fmt.Sprintf("%s%d'", m.Family, -m.Amount)
	default:
		return fmt.Sprintf("%s%d", m.Family, m.Amount)
	}
}
