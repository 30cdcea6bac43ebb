// Package godsalg computes god's algorithm tables: the distance from a start
// pattern to every pattern reachable from it, by breadth-first search over
// the generator moves.
package godsalg

import (
	"context"
	"errors"
	"time"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/Carter-Thomas/twsearch/bulkqueue"
	"github.com/Carter-Thomas/twsearch/canonicalfsm"
	"github.com/Carter-Thomas/twsearch/generators"
	"github.com/Carter-Thomas/twsearch/puzzle"
)

// DefaultProgressInterval is the number of tested moves between progress
// reports when Options leaves it unset.
const DefaultProgressInterval = 1000

// Rough per-pattern overhead of the table (entry, bucket, queue item), on
// top of the pattern itself.
const tableEntryOverhead = 64

var (
	ErrNoStartPattern = errors.New("no start pattern given and the puzzle has no default pattern")
	ErrAlreadyFilled  = errors.New("search has already been run")
)

// Options configures a Search. The zero value searches every move of the
// puzzle in the hand metric.
type Options struct {
	// Generators are the generator moves. Empty means every move the
	// puzzle defines.
	Generators []puzzle.Move
	Metric     generators.Metric
	Reporter   Reporter
	// ProgressInterval is the number of tested moves between progress
	// reports.
	ProgressInterval int
	// DisableCanonicalFSM expands every move at every node. The table is
	// the same; it is only slower.
	DisableCanonicalFSM bool
	// MaxDepth stops the search after this many layers, if positive. The
	// table is then not completed.
	MaxDepth int
	// MemoryFraction, if positive, is the fraction of system memory the
	// table may use before a warning is logged. PatternBytes is the
	// estimated size of one pattern.
	MemoryFraction float64
	PatternBytes   int
}

// LayerStats records the expansion of one layer.
type LayerStats struct {
	Depth int
	// Tested counts every (pattern, move) pair, Pruned those skipped by the
	// canonical fsm and Applied those actually applied.
	Tested      int
	Pruned      int
	Applied     int
	NewPatterns int
	Cumulative  int
	Elapsed     time.Duration
}

type queueItem[P any] struct {
	fsmState canonicalfsm.State
	pattern  P
}

// Search is a single god's algorithm search. It is not safe for concurrent
// use.
type Search[P, T any] struct {
	puzzle        puzzle.Searchable[P, T]
	startPattern  P
	hasStart      bool
	generators    *generators.Table[T]
	canonicalFSM  *canonicalfsm.CanonicalFSM
	reporter      Reporter
	opts          Options
	patternBudget int

	table *Table[P]
	// bulkQueues[d] holds the patterns found at depth d until they are
	// expanded.
	bulkQueues []*bulkqueue.BulkQueue[queueItem[P]]
	layers     []LayerStats
	maxDepth   int
	summary    Summary
	filled     bool
}

// New sets up a search. Every setup error (bad move, bad generator table)
// is returned here, before any searching.
func New[P, T any](p puzzle.Searchable[P, T], opts Options) (*Search[P, T], error) {
	table, err := generators.New[P, T](p, opts.Generators, opts.Metric)
	if err != nil {
		return nil, err
	}
	fsm, err := canonicalfsm.FromGenerators(table, canonicalfsm.Options{
		Disabled: opts.DisableCanonicalFSM,
	})
	if err != nil {
		return nil, err
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	s := &Search[P, T]{
		puzzle:       p,
		generators:   table,
		canonicalFSM: fsm,
		reporter:     opts.Reporter,
		opts:         opts,
		table:        newTable[P](p),
	}
	if s.reporter == nil {
		s.reporter = NopReporter{}
	}
	if opts.MemoryFraction > 0 {
		perPattern := opts.PatternBytes + tableEntryOverhead
		s.patternBudget = int(opts.MemoryFraction * float64(memory.TotalMemory()) / float64(perPattern))
	}
	return s, nil
}

// SetStartPattern overrides the puzzle's default pattern as the root of the
// search.
func (s *Search[P, T]) SetStartPattern(p P) {
	s.startPattern = s.puzzle.ClonePattern(p)
	s.hasStart = true
}

func (s *Search[P, T]) start() (P, error) {
	if s.hasStart {
		return s.startPattern, nil
	}
	if dp, ok := s.puzzle.(puzzle.DefaultPatterner[P]); ok {
		return dp.DefaultPattern(), nil
	}
	var zero P
	return zero, ErrNoStartPattern
}

// Table is the pattern table; see Table.Completed for whether it is whole.
func (s *Search[P, T]) Table() *Table[P] {
	return s.table
}

// MaxDepth is the depth of the deepest non-empty layer.
func (s *Search[P, T]) MaxDepth() int {
	return s.maxDepth
}

// Layers returns the stats of every expanded layer, depth 1 first.
func (s *Search[P, T]) Layers() []LayerStats {
	return append([]LayerStats(nil), s.layers...)
}

// Summary is what was last passed to the reporter's Done.
func (s *Search[P, T]) Summary() Summary {
	summary := s.summary
	summary.DepthCounts = append([]int(nil), s.summary.DepthCounts...)
	return summary
}

func (s *Search[P, T]) Generators() *generators.Table[T] {
	return s.generators
}

func (s *Search[P, T]) CanonicalFSM() *canonicalfsm.CanonicalFSM {
	return s.canonicalFSM
}

// Fill runs the search until a layer turns up no new patterns. ctx is
// checked between layers; if it is done, Fill returns its error and leaves
// the table as it was after the last full layer.
func (s *Search[P, T]) Fill(ctx context.Context) error {
	if s.filled {
		return ErrAlreadyFilled
	}
	startPattern, err := s.start()
	if err != nil {
		return err
	}
	s.filled = true

	s.table.insert(startPattern, s.puzzle.PatternHash(startPattern), 0)
	s.bulkQueues = append(s.bulkQueues, bulkqueue.NewWith(queueItem[P]{
		fsmState: canonicalfsm.StartState,
		pattern:  startPattern,
	}))

	currentDepth := 0
	numPatternsTotal := 1
	budgetWarned := false
	var scratch P

	startTime := time.Now()
	for !s.table.completed {
		if err := ctx.Err(); err != nil {
			log.Info().Int("depth", currentDepth).Int("patterns", numPatternsTotal).
				Msg("search-interrupted")
			s.maxDepth = currentDepth
			s.finish(numPatternsTotal, startTime)
			return err
		}
		if s.opts.MaxDepth > 0 && currentDepth >= s.opts.MaxDepth {
			log.Info().Int("depth", currentDepth).Msg("max-depth-reached")
			break
		}
		if s.patternBudget > 0 && !budgetWarned && numPatternsTotal > s.patternBudget {
			log.Warn().Int("patterns", numPatternsTotal).Int("budget", s.patternBudget).
				Msg("table-exceeds-memory-budget")
			budgetWarned = true
		}

		// Move the layer out of its slot, so the next layer is written to a
		// fresh queue while this one is read.
		lastDepthPatterns := s.bulkQueues[currentDepth]
		s.bulkQueues[currentDepth] = nil
		numLastDepthPatterns := lastDepthPatterns.Size()

		currentDepth++
		numPatternsBefore := numPatternsTotal
		layerStart := time.Now()
		stats := LayerStats{Depth: currentDepth}
		numToTest := numLastDepthPatterns * len(s.generators.Flat)
		progress := func() Progress {
			return Progress{
				Depth:       currentDepth,
				Tested:      stats.Tested,
				ToTest:      numToTest,
				NewPatterns: stats.NewPatterns,
				Cumulative:  numPatternsBefore + stats.NewPatterns,
				Elapsed:     time.Since(layerStart),
			}
		}

		// A pruned class moves Tested by several at once, so progress is
		// reported on passing a threshold rather than on exact multiples.
		nextReport := s.opts.ProgressInterval
		tick := func() {
			if stats.Tested >= nextReport {
				s.reporter.LayerProgress(progress())
				nextReport = (stats.Tested/s.opts.ProgressInterval + 1) * s.opts.ProgressInterval
			}
		}

		patternsAtCurrentDepth := bulkqueue.New[queueItem[P]](numLastDepthPatterns)
		for item := range lastDepthPatterns.Drain() {
			for classIdx, movesInClass := range s.generators.ByMoveClass {
				nextState, ok := s.canonicalFSM.NextState(item.fsmState, generators.MoveClassIndex(classIdx))
				if !ok {
					stats.Tested += len(movesInClass)
					stats.Pruned += len(movesInClass)
					tick()
					continue
				}
				for i := range movesInClass {
					stats.Tested++
					tick()
					if !s.puzzle.ApplyTransformationInto(item.pattern, movesInClass[i].Inverse, &scratch) {
						continue
					}
					stats.Applied++
					hash := s.puzzle.PatternHash(scratch)
					if s.table.find(scratch, hash) != noEntry {
						continue
					}
					newPattern := s.puzzle.ClonePattern(scratch)
					s.table.insert(newPattern, hash, currentDepth)
					patternsAtCurrentDepth.Push(queueItem[P]{fsmState: nextState, pattern: newPattern})
					stats.NewPatterns++
				}
			}
		}

		numPatternsTotal += stats.NewPatterns
		stats.Cumulative = numPatternsTotal
		stats.Elapsed = time.Since(layerStart)
		s.layers = append(s.layers, stats)
		s.reporter.LayerDone(progress())
		log.Debug().Int("depth", currentDepth).
			Int("patterns", stats.NewPatterns).
			Int("cumulative", numPatternsTotal).
			Int("tested", stats.Tested).
			Int("pruned", stats.Pruned).
			Dur("elapsed", stats.Elapsed).
			Msg("layer-done")

		s.bulkQueues = append(s.bulkQueues, patternsAtCurrentDepth)
		if stats.NewPatterns == 0 {
			s.table.completed = true
		}
	}
	if s.table.completed {
		s.maxDepth = currentDepth - 1
	} else {
		s.maxDepth = currentDepth
	}
	s.finish(numPatternsTotal, startTime)
	return nil
}

func (s *Search[P, T]) finish(numPatternsTotal int, startTime time.Time) {
	summary := Summary{
		NumPatterns: numPatternsTotal,
		MaxDepth:    s.maxDepth,
		Completed:   s.table.completed,
		Elapsed:     time.Since(startTime),
		DepthCounts: s.table.DepthCounts(),
	}
	s.summary = summary
	s.reporter.Done(s.Summary())
	log.Debug().Int("patterns", summary.NumPatterns).
		Int("max-depth", summary.MaxDepth).
		Bool("completed", summary.Completed).
		Dur("elapsed", summary.Elapsed).
		Msg("gods-algorithm-search-done")
}
