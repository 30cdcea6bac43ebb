package kpuzzle

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// BuiltinNames lists the puzzles Builtin understands. cycle-<n> takes any
// n from 2 to MaxOrbitSize.
func BuiltinNames() []string {
	names := []string{"2x2x2", "two-swaps", "cycle-<n>"}
	sort.Strings(names)
	return names
}

func Builtin(name string) (*Definition, error) {
	switch {
	case name == "2x2x2":
		return cube2x2x2(), nil
	case name == "two-swaps":
		return twoSwaps(), nil
	case strings.HasPrefix(name, "cycle-"):
		n, err := strconv.Atoi(strings.TrimPrefix(name, "cycle-"))
		if err != nil || n < 2 || n > MaxOrbitSize {
			return nil, fmt.Errorf("%w: bad cycle size in %q", ErrInvalidDefinition, name)
		}
		return cycle(n), nil
	}
	return nil, fmt.Errorf("%w: no builtin puzzle named %q", ErrInvalidDefinition, name)
}

// cycle is a single orbit of n pieces with one move r that shifts every
// piece along by one.
func cycle(n int) *Definition {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = (i + 1) % n
	}
	return &Definition{
		Name:   fmt.Sprintf("cycle-%d", n),
		Orbits: []Orbit{{Name: "PIECES", NumPieces: n, NumOrientations: 1}},
		Moves: map[string]map[string]OrbitTransformation{
			"r": {"PIECES": {Permutation: perm}},
		},
	}
}

// twoSwaps has two disjoint transpositions a and b, which commute.
func twoSwaps() *Definition {
	return &Definition{
		Name:   "two-swaps",
		Orbits: []Orbit{{Name: "PIECES", NumPieces: 4, NumOrientations: 1}},
		Moves: map[string]map[string]OrbitTransformation{
			"a": {"PIECES": {Permutation: []int{1, 0, 2, 3}}},
			"b": {"PIECES": {Permutation: []int{0, 1, 3, 2}}},
		},
	}
}

type vec [3]int

// rotate turns v by +90 degrees about the given axis (right-hand rule).
func rotate(v vec, axis int) vec {
	x, y, z := v[0], v[1], v[2]
	switch axis {
	case 0:
		return vec{x, -z, y}
	case 1:
		return vec{z, y, -x}
	default:
		return vec{-y, x, z}
	}
}

func cornerIndex(c vec) int {
	return ((c[0]+1)/2)*4 + ((c[1]+1)/2)*2 + (c[2]+1)/2
}

func stickerIndex(c vec, axis int) int {
	return cornerIndex(c)*3 + axis
}

func unitAxis(v vec) int {
	for i, x := range v {
		if x != 0 {
			return i
		}
	}
	panic("zero vector")
}

// cube2x2x2 is generated from geometry: 24 stickers, each identified by its
// corner position and the axis it faces along. Face turns are clockwise as
// seen from outside the face.
func cube2x2x2() *Definition {
	faces := []struct {
		name       string
		axis, sign int
	}{
		{"U", 1, 1}, {"D", 1, -1},
		{"R", 0, 1}, {"L", 0, -1},
		{"F", 2, 1}, {"B", 2, -1},
	}
	def := &Definition{
		Name:   "2x2x2",
		Orbits: []Orbit{{Name: "STICKERS", NumPieces: 24, NumOrientations: 1}},
		Moves:  map[string]map[string]OrbitTransformation{},
	}
	for _, f := range faces {
		// clockwise from outside is -90 degrees about the outward normal.
		turns := 1
		if f.sign > 0 {
			turns = 3
		}
		perm := make([]int, 24)
		for i := range perm {
			perm[i] = i
		}
		for ci := 0; ci < 8; ci++ {
			c := vec{2*((ci>>2)&1) - 1, 2*((ci>>1)&1) - 1, 2*(ci&1) - 1}
			if c[f.axis] != f.sign {
				continue
			}
			for a := 0; a < 3; a++ {
				var normal vec
				normal[a] = c[a]
				nc, nn := c, normal
				for t := 0; t < turns; t++ {
					nc = rotate(nc, f.axis)
					nn = rotate(nn, f.axis)
				}
				// the sticker at (c, a) moves to (nc, axis of nn).
				perm[stickerIndex(nc, unitAxis(nn))] = stickerIndex(c, a)
			}
		}
		def.Moves[f.name] = map[string]OrbitTransformation{
			"STICKERS": {Permutation: perm},
		}
	}
	return def
}
