// Package puzzle defines the capabilities a puzzle exposes to the search
// code. Nothing here knows about a concrete puzzle; a puzzle in turn never
// needs to know about the search.
package puzzle

// SemiGroupAction is a (possibly partial) action of moves on patterns.
//
// P is a pattern and T a transformation. Neither has to be comparable; use
// PatternHasher for equality and hashing.
type SemiGroupAction[P, T any] interface {
	MoveOrder(m Move) (MoveCount, error)
	TransformationFromMove(m Move) (T, error)
	DoMovesCommute(m1, m2 Move) (bool, error)

	// ApplyTransformation returns the resulting pattern, or false if t is not
	// defined for p.
	ApplyTransformation(p P, t T) (P, bool)

	// ApplyTransformationInto must return true/false exactly when
	// ApplyTransformation would. It writes the result into *into, reusing
	// its storage.
	//
	// If it returns false, *into may be left mangled. Implementations must
	// accept a previously mangled *into without affecting the result.
	ApplyTransformationInto(p P, t T, into *P) bool
}

// GroupAction is an action where every transformation has an inverse.
type GroupAction[P, T any] interface {
	SemiGroupAction[P, T]

	AllMoves() []Move
	InvertTransformation(t T) T
}

// DefaultPatterner puzzles have a canonical starting pattern (the solved
// state, usually).
type DefaultPatterner[P any] interface {
	DefaultPattern() P
}

// PatternHasher provides structural hashing, equality and copying of
// patterns, total over every reachable pattern.
type PatternHasher[P any] interface {
	PatternHash(p P) uint64
	PatternsEqual(a, b P) bool
	ClonePattern(p P) P
}

// Searchable is everything the god's algorithm search needs.
type Searchable[P, T any] interface {
	GroupAction[P, T]
	PatternHasher[P]
}
