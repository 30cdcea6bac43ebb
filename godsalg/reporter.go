package godsalg

import "time"

// Progress describes one layer's expansion so far. Tested counts pruned
// moves too, so it ends at ToTest.
type Progress struct {
	Depth       int
	Tested      int
	ToTest      int
	NewPatterns int
	Cumulative  int
	Elapsed     time.Duration
}

// Summary describes a finished (or stopped) search.
type Summary struct {
	NumPatterns int
	MaxDepth    int
	Completed   bool
	Elapsed     time.Duration
	DepthCounts []int
}

// A Reporter observes a search. It receives copies, so it cannot change
// the search; it is called from the search goroutine and should return
// quickly.
type Reporter interface {
	// LayerProgress is called every ProgressInterval tested moves.
	LayerProgress(Progress)
	LayerDone(Progress)
	Done(Summary)
}

// NopReporter ignores every event. It is used when Options has no Reporter.
type NopReporter struct{}

func (NopReporter) LayerProgress(Progress) {}
func (NopReporter) LayerDone(Progress)     {}
func (NopReporter) Done(Summary)           {}
