package godsalg

import (
	"iter"

	"github.com/Carter-Thomas/twsearch/puzzle"
)

const noEntry = -1

type tableEntry[P any] struct {
	pattern P
	depth   int
	// next chains entries whose hashes collide.
	next int
}

// Table maps every pattern found to the depth it was first found at. Each
// pattern is inserted once; since layers are expanded in increasing depth,
// that depth is its distance from the start pattern.
type Table[P any] struct {
	hasher      puzzle.PatternHasher[P]
	buckets     map[uint64]int
	entries     []tableEntry[P]
	depthCounts []int
	// "completed" rather than "complete": the whole reachable set is in the
	// table.
	completed bool
}

func newTable[P any](hasher puzzle.PatternHasher[P]) *Table[P] {
	return &Table[P]{
		hasher:  hasher,
		buckets: make(map[uint64]int),
	}
}

func (t *Table[P]) find(p P, hash uint64) int {
	idx, ok := t.buckets[hash]
	if !ok {
		return noEntry
	}
	for ; idx != noEntry; idx = t.entries[idx].next {
		if t.hasher.PatternsEqual(t.entries[idx].pattern, p) {
			return idx
		}
	}
	return noEntry
}

// insert assumes p is not in the table yet, and takes ownership of p.
func (t *Table[P]) insert(p P, hash uint64, depth int) {
	next, ok := t.buckets[hash]
	if !ok {
		next = noEntry
	}
	t.buckets[hash] = len(t.entries)
	t.entries = append(t.entries, tableEntry[P]{pattern: p, depth: depth, next: next})
	for len(t.depthCounts) <= depth {
		t.depthCounts = append(t.depthCounts, 0)
	}
	t.depthCounts[depth]++
}

// Depth returns the number of moves needed to reach p from the start
// pattern, if p has been found.
func (t *Table[P]) Depth(p P) (int, bool) {
	idx := t.find(p, t.hasher.PatternHash(p))
	if idx == noEntry {
		return 0, false
	}
	return t.entries[idx].depth, true
}

func (t *Table[P]) Len() int {
	return len(t.entries)
}

func (t *Table[P]) Completed() bool {
	return t.completed
}

// DepthCounts returns the number of patterns at each depth.
func (t *Table[P]) DepthCounts() []int {
	return append([]int(nil), t.depthCounts...)
}

// All yields every pattern with its depth, in discovery order. The yielded
// patterns belong to the table and must not be modified.
func (t *Table[P]) All() iter.Seq2[P, int] {
	return func(yield func(P, int) bool) {
		for i := range t.entries {
			if !yield(t.entries[i].pattern, t.entries[i].depth) {
				return
			}
		}
	}
}
