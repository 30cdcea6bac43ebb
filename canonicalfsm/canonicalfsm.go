// Package canonicalfsm builds the automaton that rejects move-class
// sequences which are reorderings of an already accepted sequence.
//
// A state is the set of move classes applied so far that commute with every
// class applied after them. Appending class m is redundant when that set
// holds a class j that commutes with m and either j > m (the same moves in
// the other order are accepted instead), or j == m and the class already
// contains every power of its quantum move (the two moves would merge into
// at most one). Otherwise the next set is m plus the members that commute
// with m.
//
// For every sequence of moves there is exactly one ordering of its commuting
// runs that passes these rules, so pruning never hides a pattern and never
// raises its depth.
package canonicalfsm

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/rs/zerolog/log"

	"github.com/Carter-Thomas/twsearch/generators"
)

// MaxMoveClasses is the number of classes a state's bitset can hold.
const MaxMoveClasses = 64

var ErrTooManyMoveClasses = errors.New("too many move classes for the canonical fsm")

type State int

const (
	StartState State = 0
	forbidden  State = -1
)

type Options struct {
	// Disabled builds an automaton with a single state that accepts every
	// sequence.
	Disabled bool
}

type CanonicalFSM struct {
	numClasses  int
	masks       []uint64
	transitions [][]State
}

// FromGenerators builds the automaton for a generator table.
func FromGenerators[T any](table *generators.Table[T], opts Options) (*CanonicalFSM, error) {
	return New(table.Commutes, table.ClassClosed, opts)
}

// New builds the automaton eagerly, by breadth-first search over the
// reachable states.
func New(commutes [][]bool, closed []bool, opts Options) (*CanonicalFSM, error) {
	n := len(closed)
	if len(commutes) != n {
		return nil, fmt.Errorf("commutation table has %d rows for %d move classes", len(commutes), n)
	}
	if n > MaxMoveClasses {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyMoveClasses, n, MaxMoveClasses)
	}
	fsm := &CanonicalFSM{numClasses: n}
	if opts.Disabled {
		fsm.masks = []uint64{0}
		fsm.transitions = [][]State{make([]State, n)}
		return fsm, nil
	}

	commuteMask := make([]uint64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if commutes[i][j] {
				commuteMask[i] |= 1 << j
			}
		}
	}

	index := map[uint64]State{0: StartState}
	fsm.masks = []uint64{0}
	for s := 0; s < len(fsm.masks); s++ {
		mask := fsm.masks[s]
		row := make([]State, n)
		for m := 0; m < n; m++ {
			bit := uint64(1) << m
			above := ^(bit<<1 - 1)
			if mask&commuteMask[m]&above != 0 || (mask&bit != 0 && closed[m]) {
				row[m] = forbidden
				continue
			}
			next := bit | (mask & commuteMask[m])
			ns, ok := index[next]
			if !ok {
				ns = State(len(fsm.masks))
				index[next] = ns
				fsm.masks = append(fsm.masks, next)
			}
			row[m] = ns
		}
		fsm.transitions = append(fsm.transitions, row)
	}
	log.Debug().Int("states", len(fsm.masks)).Int("move-classes", n).Msg("canonical-fsm")
	return fsm, nil
}

// NextState returns the state after appending the move class, or false if
// doing so is redundant.
func (f *CanonicalFSM) NextState(s State, moveClass generators.MoveClassIndex) (State, bool) {
	next := f.transitions[s][moveClass]
	if next == forbidden {
		return 0, false
	}
	return next, true
}

func (f *CanonicalFSM) NumStates() int {
	return len(f.masks)
}

func (f *CanonicalFSM) NumMoveClasses() int {
	return f.numClasses
}

// Classes returns the move classes in a state's set, in increasing order.
func (f *CanonicalFSM) Classes(s State) []generators.MoveClassIndex {
	mask := f.masks[s]
	classes := make([]generators.MoveClassIndex, 0, bits.OnesCount64(mask))
	for mask != 0 {
		c := bits.TrailingZeros64(mask)
		classes = append(classes, generators.MoveClassIndex(c))
		mask &= mask - 1
	}
	return classes
}
