// Package generators precomputes the flat list of generator moves used by a
// search, along with their transformations, cached inverses and the move
// classes they fall into.
package generators

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/Carter-Thomas/twsearch/puzzle"
)

var (
	ErrNoGenerators  = errors.New("no generator moves")
	ErrBadMoveOrder  = errors.New("move order could not be determined")
	ErrUnknownMetric = errors.New("unknown metric")
)

// Metric is the move-counting convention.
type Metric int

const (
	// Hand counts every non-identity power of a quantum move as one move
	// (HTM on cubes: R, R2 and R' all cost 1).
	Hand Metric = iota
	// Quantum counts only the quantum move and its inverse as one move (QTM:
	// R2 costs 2).
	Quantum
)

func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(s) {
	case "hand", "htm", "":
		return Hand, nil
	case "quantum", "qtm":
		return Quantum, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

func (m Metric) String() string {
	if m == Quantum {
		return "quantum"
	}
	return "hand"
}

type FlatMoveIndex int
type MoveClassIndex int

type MoveInfo[T any] struct {
	FlatMoveIndex  FlatMoveIndex
	MoveClassIndex MoveClassIndex
	Move           puzzle.Move
	Transformation T
	// Inverse is cached since every expansion step applies it.
	Inverse T
}

// Table is the flat generator list. Every move of a class is a power of the
// same quantum move.
type Table[T any] struct {
	Metric      Metric
	Flat        []MoveInfo[T]
	ByMoveClass [][]MoveInfo[T]
	// ClassMoves holds the quantum move of each class.
	ClassMoves []puzzle.Move
	// ClassClosed is true when the class contains every non-identity power
	// of its quantum move, so two moves of the class in a row always
	// collapse into at most one.
	ClassClosed []bool
	Commutes    [][]bool
}

func (t *Table[T]) NumMoveClasses() int {
	return len(t.ByMoveClass)
}

// amounts lists the move amounts a quantum move of the given order
// contributes under the metric: R, R2, R' for order 4 in the hand metric.
func amounts(order int, metric Metric) []int {
	if metric == Quantum {
		if order <= 2 {
			return []int{1}
		}
		return []int{1, -1}
	}
	as := make([]int, 0, order-1)
	for k := 1; k < order; k++ {
		a := k
		if 2*k > order {
			a = k - order
		}
		as = append(as, a)
	}
	return as
}

// New builds the generator table. Moves are reduced to their quantum moves
// (R2 and R' both name the R family) and de-duplicated, keeping first-seen
// order. An empty move list means every move the puzzle defines.
func New[P, T any](p puzzle.GroupAction[P, T], moves []puzzle.Move, metric Metric) (*Table[T], error) {
	if len(moves) == 0 {
		moves = p.AllMoves()
	}
	quantums := lo.UniqBy(lo.Map(moves, func(m puzzle.Move, _ int) puzzle.Move {
		return m.Quantum()
	}), func(m puzzle.Move) string {
		return m.Family
	})
	if len(quantums) == 0 {
		return nil, ErrNoGenerators
	}

	table := &Table[T]{Metric: metric}
	for _, q := range quantums {
		order, err := p.MoveOrder(q)
		if err != nil {
			return nil, err
		}
		if order < 1 {
			return nil, fmt.Errorf("%w: %s has order %d", ErrBadMoveOrder, q, order)
		}
		if order == 1 {
			log.Warn().Str("move", q.String()).Msg("skipping-identity-generator")
			continue
		}
		classIdx := MoveClassIndex(len(table.ByMoveClass))
		var class []MoveInfo[T]
		for _, a := range amounts(int(order), metric) {
			m := puzzle.Move{Family: q.Family, Amount: a}
			tr, err := p.TransformationFromMove(m)
			if err != nil {
				return nil, err
			}
			info := MoveInfo[T]{
				FlatMoveIndex:  FlatMoveIndex(len(table.Flat)),
				MoveClassIndex: classIdx,
				Move:           m,
				Transformation: tr,
				Inverse:        p.InvertTransformation(tr),
			}
			table.Flat = append(table.Flat, info)
			class = append(class, info)
		}
		table.ByMoveClass = append(table.ByMoveClass, class)
		table.ClassMoves = append(table.ClassMoves, q)
		table.ClassClosed = append(table.ClassClosed, metric == Hand || order <= 3)
	}
	if len(table.Flat) == 0 {
		return nil, ErrNoGenerators
	}

	for i, info := range table.Flat {
		if int(info.FlatMoveIndex) != i {
			panic("flat move indexing is out of order")
		}
	}

	n := len(table.ClassMoves)
	table.Commutes = make([][]bool, n)
	for i := range table.Commutes {
		table.Commutes[i] = make([]bool, n)
	}
	for i := 0; i < n; i++ {
		table.Commutes[i][i] = true
		for j := i + 1; j < n; j++ {
			c, err := p.DoMovesCommute(table.ClassMoves[i], table.ClassMoves[j])
			if err != nil {
				return nil, err
			}
			table.Commutes[i][j] = c
			table.Commutes[j][i] = c
		}
	}

	log.Debug().Int("flat-moves", len(table.Flat)).
		Int("move-classes", n).
		Str("metric", metric.String()).
		Msg("search-generators")
	return table, nil
}
