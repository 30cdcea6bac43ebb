package godsalg

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/Carter-Thomas/twsearch/generators"
	"github.com/Carter-Thomas/twsearch/kpuzzle"
	"github.com/Carter-Thomas/twsearch/puzzle"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func builtin(t *testing.T, name string) *kpuzzle.Puzzle {
	def, err := kpuzzle.Builtin(name)
	if err != nil {
		t.Fatal(err)
	}
	p, err := kpuzzle.New(def)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func moveList(t *testing.T, s string) []puzzle.Move {
	ms, err := puzzle.ParseMoveList(s)
	if err != nil {
		t.Fatal(err)
	}
	return ms
}

func fill(t *testing.T, p *kpuzzle.Puzzle, opts Options) *Search[*kpuzzle.Pattern, *kpuzzle.Transformation] {
	s, err := New[*kpuzzle.Pattern, *kpuzzle.Transformation](p, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Fill(context.Background()); err != nil {
		t.Fatal(err)
	}
	return s
}

func appliedTotal(s *Search[*kpuzzle.Pattern, *kpuzzle.Transformation]) int {
	total := 0
	for _, l := range s.Layers() {
		total += l.Applied
	}
	return total
}

// naiveDepths is an independent breadth-first search that applies every
// generator move forwards at every node, keyed by the text encoding.
func naiveDepths(t *testing.T, p *kpuzzle.Puzzle, gens string, metric generators.Metric) map[string]int {
	table, err := generators.New[*kpuzzle.Pattern, *kpuzzle.Transformation](p, moveList(t, gens), metric)
	if err != nil {
		t.Fatal(err)
	}
	start := p.DefaultPattern()
	depths := map[string]int{p.FormatPattern(start): 0}
	frontier := []*kpuzzle.Pattern{start}
	for d := 1; len(frontier) > 0; d++ {
		var next []*kpuzzle.Pattern
		for _, pat := range frontier {
			for _, info := range table.Flat {
				np, _ := p.ApplyTransformation(pat, info.Transformation)
				key := p.FormatPattern(np)
				if _, ok := depths[key]; ok {
					continue
				}
				depths[key] = d
				next = append(next, np)
			}
		}
		frontier = next
	}
	return depths
}

func TestOrderThreeGenerator(t *testing.T) {
	is := is.New(t)
	p := builtin(t, "cycle-3")
	for _, metric := range []generators.Metric{generators.Hand, generators.Quantum} {
		s := fill(t, p, Options{Generators: moveList(t, "r"), Metric: metric})
		table := s.Table()
		is.True(table.Completed())
		is.Equal(table.Len(), 3)
		is.Equal(table.DepthCounts(), []int{1, 2})
		is.Equal(s.MaxDepth(), 1)

		// r and r' are both generators, so both are one move away.
		for _, m := range []string{"r", "r2"} {
			pat, err := p.ApplyMoves(p.DefaultPattern(), moveList(t, m))
			is.NoErr(err)
			d, ok := table.Depth(pat)
			is.True(ok)
			is.Equal(d, 1)
		}
		// the layer at depth 2 was expanded and found nothing.
		layers := s.Layers()
		is.Equal(len(layers), 2)
		is.Equal(layers[1].NewPatterns, 0)
	}
}

func TestQuarterTurnMetricDepths(t *testing.T) {
	is := is.New(t)
	p := builtin(t, "cycle-4")

	s := fill(t, p, Options{Generators: moveList(t, "r"), Metric: generators.Quantum})
	is.Equal(s.Table().DepthCounts(), []int{1, 2, 1})
	is.Equal(s.MaxDepth(), 2)
	r2, err := p.ApplyMoves(p.DefaultPattern(), moveList(t, "r2"))
	is.NoErr(err)
	d, ok := s.Table().Depth(r2)
	is.True(ok)
	is.Equal(d, 2)

	s = fill(t, p, Options{Generators: moveList(t, "r"), Metric: generators.Hand})
	is.Equal(s.Table().DepthCounts(), []int{1, 3})
}

func TestCommutingMovesArePruned(t *testing.T) {
	is := is.New(t)
	p := builtin(t, "two-swaps")

	pruned := fill(t, p, Options{Generators: moveList(t, "a b")})
	unpruned := fill(t, p, Options{Generators: moveList(t, "a b"), DisableCanonicalFSM: true})

	is.Equal(pruned.Table().DepthCounts(), []int{1, 2, 1})
	is.Equal(unpruned.Table().DepthCounts(), []int{1, 2, 1})

	// a, b at depth 1; only a·b at depth 2 (b·a is skipped); nothing after.
	is.Equal(appliedTotal(pruned), 3)
	// 2 + 2·2 + 1·2
	is.Equal(appliedTotal(unpruned), 8)

	layers := pruned.Layers()
	is.Equal(layers[1].Tested, 4)
	is.Equal(layers[1].Pruned, 3)
	is.Equal(layers[1].Applied, 1)
}

func TestPruningDoesNotChangeTable(t *testing.T) {
	is := is.New(t)
	p := builtin(t, "2x2x2")
	for _, tc := range []struct {
		gens   string
		metric generators.Metric
		count  int
	}{
		{"U D", generators.Quantum, 16},
		{"U D", generators.Hand, 16},
		{"U R", generators.Hand, 29160},
	} {
		pruned := fill(t, p, Options{Generators: moveList(t, tc.gens), Metric: tc.metric})
		unpruned := fill(t, p, Options{Generators: moveList(t, tc.gens), Metric: tc.metric, DisableCanonicalFSM: true})

		is.Equal(pruned.Table().Len(), tc.count)
		is.Equal(unpruned.Table().Len(), tc.count)
		is.Equal(pruned.MaxDepth(), unpruned.MaxDepth())
		for pat, depth := range pruned.Table().All() {
			d, ok := unpruned.Table().Depth(pat)
			is.True(ok)
			is.Equal(d, depth)
		}
		is.True(appliedTotal(pruned) < appliedTotal(unpruned))
	}
}

func TestPruningWithMixedCommutation(t *testing.T) {
	is := is.New(t)
	p := builtin(t, "2x2x2")
	// U and D commute, R commutes with neither; the full group is too big,
	// so both searches stop at the same depth.
	for _, tc := range []struct {
		metric   generators.Metric
		maxDepth int
	}{
		{generators.Hand, 4},
		{generators.Quantum, 6},
	} {
		opts := Options{Generators: moveList(t, "U D R"), Metric: tc.metric, MaxDepth: tc.maxDepth}
		pruned := fill(t, p, opts)
		opts.DisableCanonicalFSM = true
		unpruned := fill(t, p, opts)

		is.Equal(pruned.Generators().NumMoveClasses(), 3)
		is.True(pruned.CanonicalFSM().NumStates() > 3)
		is.Equal(pruned.Table().DepthCounts(), unpruned.Table().DepthCounts())
		is.Equal(len(pruned.Table().DepthCounts()), tc.maxDepth+1)
		for pat, depth := range unpruned.Table().All() {
			d, ok := pruned.Table().Depth(pat)
			is.True(ok)
			is.Equal(d, depth)
		}
		is.True(appliedTotal(pruned) < appliedTotal(unpruned))
	}
}

func TestDepthsAreMinimal(t *testing.T) {
	is := is.New(t)
	p := builtin(t, "2x2x2")
	for _, metric := range []generators.Metric{generators.Hand, generators.Quantum} {
		want := naiveDepths(t, p, "U R", metric)
		s := fill(t, p, Options{Generators: moveList(t, "U R"), Metric: metric})

		is.Equal(s.Table().Len(), len(want))
		seen := map[string]bool{}
		for pat, depth := range s.Table().All() {
			key := p.FormatPattern(pat)
			is.True(!seen[key]) // each pattern appears once
			seen[key] = true
			is.Equal(depth, want[key])
		}
	}
}

func TestStartPatternOverride(t *testing.T) {
	is := is.New(t)
	p := builtin(t, "cycle-4")
	start, err := p.ApplyMoves(p.DefaultPattern(), moveList(t, "r"))
	is.NoErr(err)

	s, err := New[*kpuzzle.Pattern, *kpuzzle.Transformation](p, Options{Generators: moveList(t, "r"), Metric: generators.Quantum})
	is.NoErr(err)
	s.SetStartPattern(start)
	is.NoErr(s.Fill(context.Background()))

	d, ok := s.Table().Depth(start)
	is.True(ok)
	is.Equal(d, 0)
	d, ok = s.Table().Depth(p.DefaultPattern())
	is.True(ok)
	is.Equal(d, 1)
	is.Equal(s.Table().DepthCounts(), []int{1, 2, 1})
}

func TestInvalidGenerator(t *testing.T) {
	is := is.New(t)
	p := builtin(t, "2x2x2")
	s, err := New[*kpuzzle.Pattern, *kpuzzle.Transformation](p, Options{Generators: moveList(t, "U Q")})
	is.True(errors.Is(err, puzzle.ErrInvalidMove))
	is.True(s == nil)
}

func TestFillTwice(t *testing.T) {
	is := is.New(t)
	p := builtin(t, "cycle-3")
	s := fill(t, p, Options{})
	is.Equal(s.Fill(context.Background()), ErrAlreadyFilled)
}

func TestMaxDepth(t *testing.T) {
	is := is.New(t)
	p := builtin(t, "cycle-6")
	s := fill(t, p, Options{Metric: generators.Quantum, MaxDepth: 2})
	is.True(!s.Table().Completed())
	is.Equal(s.MaxDepth(), 2)
	is.Equal(s.Table().DepthCounts(), []int{1, 2, 2})

	s = fill(t, p, Options{Metric: generators.Quantum})
	is.True(s.Table().Completed())
	is.Equal(s.MaxDepth(), 3)
	is.Equal(s.Table().DepthCounts(), []int{1, 2, 2, 1})
}

func TestCancelledContext(t *testing.T) {
	is := is.New(t)
	p := builtin(t, "2x2x2")
	s, err := New[*kpuzzle.Pattern, *kpuzzle.Transformation](p, Options{Generators: moveList(t, "U R")})
	is.NoErr(err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Fill(ctx)
	is.True(errors.Is(err, context.Canceled))
	is.Equal(s.Table().Len(), 1)
	is.True(!s.Table().Completed())
}

type recordingReporter struct {
	progress []Progress
	done     []Progress
	summary  []Summary
}

func (r *recordingReporter) LayerProgress(p Progress) { r.progress = append(r.progress, p) }
func (r *recordingReporter) LayerDone(p Progress)     { r.done = append(r.done, p) }
func (r *recordingReporter) Done(s Summary)           { r.summary = append(r.summary, s) }

func TestReporter(t *testing.T) {
	is := is.New(t)
	p := builtin(t, "cycle-4")
	rep := &recordingReporter{}
	s := fill(t, p, Options{Metric: generators.Quantum, Reporter: rep, ProgressInterval: 1})

	// depth 1, 2 and the empty layer 3.
	is.Equal(len(rep.done), 3)
	is.Equal(rep.done[0].NewPatterns, 2)
	is.Equal(rep.done[0].Cumulative, 3)
	is.Equal(rep.done[1].ToTest, 4)
	is.Equal(rep.done[2].NewPatterns, 0)
	is.Equal(rep.done[2].Cumulative, 4)
	is.True(len(rep.progress) > 0)
	for _, pr := range rep.progress {
		is.True(pr.Tested <= pr.ToTest)
	}

	is.Equal(len(rep.summary), 1)
	is.Equal(rep.summary[0].NumPatterns, 4)
	is.Equal(rep.summary[0].MaxDepth, 2)
	is.True(rep.summary[0].Completed)

	// the reporter only gets copies.
	rep.summary[0].DepthCounts[0] = 99
	is.Equal(s.Table().DepthCounts(), []int{1, 2, 1})
	is.Equal(s.Summary().DepthCounts, []int{1, 2, 1})
	is.Equal(s.Summary().NumPatterns, 4)
}

func TestProgressAcrossPrunedClasses(t *testing.T) {
	is := is.New(t)
	p := builtin(t, "two-swaps")
	rep := &recordingReporter{}
	fill(t, p, Options{Generators: moveList(t, "a b"), Reporter: rep, ProgressInterval: 2})

	// depth 2 reaches 4 tested through a pruned class, and depth 3 prunes
	// everything; both still report.
	var depths, tested []int
	for _, pr := range rep.progress {
		depths = append(depths, pr.Depth)
		tested = append(tested, pr.Tested)
	}
	is.Equal(depths, []int{1, 2, 2, 3})
	is.Equal(tested, []int{2, 2, 4, 2})
}

// linePuzzle is a partial action: a token on cells 0..size-1, moved by
// steps that fall off the end are undefined.
type linePuzzle struct {
	size int
	// applyCalls counts ApplyTransformationInto calls.
	applyCalls int
}

func (l *linePuzzle) MoveOrder(m puzzle.Move) (puzzle.MoveCount, error) {
	if m.Family != "step" {
		return 0, &puzzle.InvalidMoveError{Move: m.String(), Reason: "no such move"}
	}
	// no finite order; in the quantum metric the class is {step, step'}.
	return 1000, nil
}

func (l *linePuzzle) TransformationFromMove(m puzzle.Move) (int, error) {
	if _, err := l.MoveOrder(m); err != nil {
		return 0, err
	}
	return m.Amount, nil
}

func (l *linePuzzle) DoMovesCommute(m1, m2 puzzle.Move) (bool, error) {
	return true, nil
}

func (l *linePuzzle) ApplyTransformation(p int, t int) (int, bool) {
	q := p + t
	if q < 0 || q >= l.size {
		return 0, false
	}
	return q, true
}

func (l *linePuzzle) ApplyTransformationInto(p int, t int, into *int) bool {
	l.applyCalls++
	q, ok := l.ApplyTransformation(p, t)
	if !ok {
		*into = -12345 // mangled
		return false
	}
	*into = q
	return true
}

func (l *linePuzzle) AllMoves() []puzzle.Move {
	return []puzzle.Move{{Family: "step", Amount: 1}}
}

func (l *linePuzzle) InvertTransformation(t int) int { return -t }
func (l *linePuzzle) PatternHash(p int) uint64       { return uint64(p) }
func (l *linePuzzle) PatternsEqual(a, b int) bool    { return a == b }
func (l *linePuzzle) ClonePattern(p int) int         { return p }

var lineOptions = Options{Metric: generators.Quantum}

func TestPartialAction(t *testing.T) {
	is := is.New(t)
	l := &linePuzzle{size: 5}
	s, err := New[int, int](l, lineOptions)
	is.NoErr(err)

	// no default pattern.
	is.Equal(s.Fill(context.Background()), ErrNoStartPattern)

	s, err = New[int, int](l, lineOptions)
	is.NoErr(err)
	s.SetStartPattern(0)
	is.NoErr(s.Fill(context.Background()))
	is.True(s.Table().Completed())
	is.Equal(s.MaxDepth(), 4)
	for cell := 0; cell < 5; cell++ {
		d, ok := s.Table().Depth(cell)
		is.True(ok)
		is.Equal(d, cell)
	}
	_, ok := s.Table().Depth(-12345)
	is.True(!ok)

	// from the middle, undefined steps at both ends.
	s, err = New[int, int](l, lineOptions)
	is.NoErr(err)
	s.SetStartPattern(2)
	is.NoErr(s.Fill(context.Background()))
	is.Equal(s.Table().DepthCounts(), []int{1, 2, 2})
	is.True(l.applyCalls > 0)
}
