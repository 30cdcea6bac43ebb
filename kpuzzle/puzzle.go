package kpuzzle

import (
	"bytes"
	"fmt"

	"github.com/cespare/xxhash"

	"github.com/Carter-Thomas/twsearch/puzzle"
	"github.com/Carter-Thomas/twsearch/zobrist"
)

type HashFunction int

const (
	HashXXHash HashFunction = iota
	HashZobrist
)

func ParseHashFunction(s string) (HashFunction, error) {
	switch s {
	case "", "xxhash":
		return HashXXHash, nil
	case "zobrist":
		return HashZobrist, nil
	}
	return 0, fmt.Errorf("unknown hash function %q", s)
}

type orbitLayout struct {
	Orbit
	offset int
}

type quantumMove struct {
	transformation *Transformation
	order          puzzle.MoveCount
}

// Puzzle is a permutation-and-orientation puzzle built from a Definition.
// Patterns and transformations share a byte layout: for every orbit, its
// piece slots followed by its orientation slots.
type Puzzle struct {
	def     *Definition
	orbits  []orbitLayout
	size    int
	moves   map[string]quantumMove
	def0    *Pattern
	hashFn  HashFunction
	zobrist *zobrist.Zobrist
}

type Option func(*Puzzle)

func WithHashFunction(h HashFunction) Option {
	return func(p *Puzzle) {
		p.hashFn = h
	}
}

// New builds a puzzle. The definition is validated first.
func New(def *Definition, opts ...Option) (*Puzzle, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	p := &Puzzle{def: def, moves: map[string]quantumMove{}}
	for _, opt := range opts {
		opt(p)
	}
	for _, o := range def.Orbits {
		p.orbits = append(p.orbits, orbitLayout{Orbit: o, offset: p.size})
		p.size += 2 * o.NumPieces
	}

	p.def0 = &Pattern{data: make([]byte, p.size)}
	for _, o := range p.orbits {
		op, ok := def.DefaultPattern[o.Name]
		for i := 0; i < o.NumPieces; i++ {
			piece, ori := i, 0
			if ok {
				piece = op.Pieces[i]
				if op.Orientation != nil {
					ori = op.Orientation[i]
				}
			}
			p.def0.data[o.offset+i] = byte(piece)
			p.def0.data[o.offset+o.NumPieces+i] = byte(ori)
		}
	}

	for name, orbits := range def.Moves {
		t := p.identity()
		for _, o := range p.orbits {
			ot, ok := orbits[o.Name]
			if !ok {
				continue
			}
			for i := 0; i < o.NumPieces; i++ {
				t.data[o.offset+i] = byte(ot.Permutation[i])
				if ot.OrientationDelta != nil {
					t.data[o.offset+o.NumPieces+i] = byte(ot.OrientationDelta[i])
				}
			}
		}
		p.moves[name] = quantumMove{transformation: t, order: p.transformationOrder(t)}
	}

	if p.hashFn == HashZobrist {
		numValues := make([]int, 0, p.size)
		for _, o := range p.orbits {
			for i := 0; i < o.NumPieces; i++ {
				numValues = append(numValues, o.NumPieces)
			}
			for i := 0; i < o.NumPieces; i++ {
				numValues = append(numValues, o.NumOrientations)
			}
		}
		p.zobrist = &zobrist.Zobrist{}
		p.zobrist.Initialize(numValues)
	}
	return p, nil
}

func (p *Puzzle) Name() string {
	return p.def.Name
}

func (p *Puzzle) Definition() *Definition {
	return p.def
}

func (p *Puzzle) identity() *Transformation {
	t := &Transformation{data: make([]byte, p.size)}
	for _, o := range p.orbits {
		for i := 0; i < o.NumPieces; i++ {
			t.data[o.offset+i] = byte(i)
		}
	}
	return t
}

// apply is shared by pattern application and transformation composition:
// dst[i] = src[t[i]], with orientations added modulo the orbit's count.
func (p *Puzzle) apply(src, t, dst []byte) {
	for _, o := range p.orbits {
		n := o.NumPieces
		perm := t[o.offset : o.offset+n]
		delta := t[o.offset+n : o.offset+2*n]
		srcPieces := src[o.offset : o.offset+n]
		srcOri := src[o.offset+n : o.offset+2*n]
		dstPieces := dst[o.offset : o.offset+n]
		dstOri := dst[o.offset+n : o.offset+2*n]
		if o.NumOrientations == 1 {
			for i, from := range perm {
				dstPieces[i] = srcPieces[from]
				dstOri[i] = 0
			}
			continue
		}
		no := o.NumOrientations
		for i, from := range perm {
			dstPieces[i] = srcPieces[from]
			dstOri[i] = byte((int(srcOri[from]) + int(delta[i])) % no)
		}
	}
}

// Compose returns t1 followed by t2.
func (p *Puzzle) Compose(t1, t2 *Transformation) *Transformation {
	c := &Transformation{data: make([]byte, p.size)}
	p.apply(t1.data, t2.data, c.data)
	return c
}

func (p *Puzzle) InvertTransformation(t *Transformation) *Transformation {
	inv := &Transformation{data: make([]byte, p.size)}
	for _, o := range p.orbits {
		n, no := o.NumPieces, o.NumOrientations
		for i := 0; i < n; i++ {
			to := int(t.data[o.offset+i])
			inv.data[o.offset+to] = byte(i)
			inv.data[o.offset+n+to] = byte((no - int(t.data[o.offset+n+i])) % no)
		}
	}
	return inv
}

func (p *Puzzle) power(t *Transformation, amount int) *Transformation {
	result := p.identity()
	for i := 0; i < amount; i++ {
		result = p.Compose(result, t)
	}
	return result
}

// transformationOrder is the lcm over all cycles of the cycle length times
// the order of the cycle's accumulated twist.
func (p *Puzzle) transformationOrder(t *Transformation) puzzle.MoveCount {
	order := 1
	for _, o := range p.orbits {
		n, no := o.NumPieces, o.NumOrientations
		visited := make([]bool, n)
		for start := 0; start < n; start++ {
			if visited[start] {
				continue
			}
			length, twist := 0, 0
			for i := start; !visited[i]; i = int(t.data[o.offset+i]) {
				visited[i] = true
				length++
				twist += int(t.data[o.offset+n+i])
			}
			cycleOrder := length * (no / gcd(twist%no, no))
			order = lcm(order, cycleOrder)
		}
	}
	return puzzle.MoveCount(order)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	return a / gcd(a, b) * b
}

func (p *Puzzle) lookupMove(m puzzle.Move) (quantumMove, error) {
	qm, ok := p.moves[m.Family]
	if !ok {
		return quantumMove{}, &puzzle.InvalidMoveError{
			Move:   m.String(),
			Reason: fmt.Sprintf("puzzle %s has no move family %s", p.def.Name, m.Family),
		}
	}
	return qm, nil
}

// MoveOrder returns the order of the move itself (R2 on a cube has order 2).
func (p *Puzzle) MoveOrder(m puzzle.Move) (puzzle.MoveCount, error) {
	t, err := p.TransformationFromMove(m)
	if err != nil {
		return 0, err
	}
	return p.transformationOrder(t), nil
}

func (p *Puzzle) TransformationFromMove(m puzzle.Move) (*Transformation, error) {
	qm, err := p.lookupMove(m)
	if err != nil {
		return nil, err
	}
	order := int(qm.order)
	amount := ((m.Amount % order) + order) % order
	return p.power(qm.transformation, amount), nil
}

func (p *Puzzle) DoMovesCommute(m1, m2 puzzle.Move) (bool, error) {
	t1, err := p.TransformationFromMove(m1)
	if err != nil {
		return false, err
	}
	t2, err := p.TransformationFromMove(m2)
	if err != nil {
		return false, err
	}
	return bytes.Equal(p.Compose(t1, t2).data, p.Compose(t2, t1).data), nil
}

// ApplyTransformation is total for this puzzle.
func (p *Puzzle) ApplyTransformation(pat *Pattern, t *Transformation) (*Pattern, bool) {
	out := &Pattern{data: make([]byte, p.size)}
	p.apply(pat.data, t.data, out.data)
	return out, true
}

func (p *Puzzle) ApplyTransformationInto(pat *Pattern, t *Transformation, into **Pattern) bool {
	if *into == nil || len((*into).data) != p.size {
		*into = &Pattern{data: make([]byte, p.size)}
	}
	p.apply(pat.data, t.data, (*into).data)
	return true
}

func (p *Puzzle) AllMoves() []puzzle.Move {
	names := p.def.MoveNames()
	moves := make([]puzzle.Move, len(names))
	for i, n := range names {
		moves[i] = puzzle.Move{Family: n, Amount: 1}
	}
	return moves
}

func (p *Puzzle) DefaultPattern() *Pattern {
	return p.ClonePattern(p.def0)
}

func (p *Puzzle) PatternHash(pat *Pattern) uint64 {
	if p.zobrist != nil {
		return p.zobrist.Hash(pat.data)
	}
	return xxhash.Sum64(pat.data)
}

func (p *Puzzle) PatternsEqual(a, b *Pattern) bool {
	return bytes.Equal(a.data, b.data)
}

func (p *Puzzle) ClonePattern(pat *Pattern) *Pattern {
	return &Pattern{data: bytes.Clone(pat.data)}
}

// ApplyMoves applies a move sequence to a pattern, e.g. to build a start
// pattern from a scramble.
func (p *Puzzle) ApplyMoves(pat *Pattern, moves []puzzle.Move) (*Pattern, error) {
	cur := p.ClonePattern(pat)
	for _, m := range moves {
		t, err := p.TransformationFromMove(m)
		if err != nil {
			return nil, err
		}
		cur, _ = p.ApplyTransformation(cur, t)
	}
	return cur, nil
}
