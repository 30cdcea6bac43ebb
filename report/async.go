package report

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Carter-Thomas/twsearch/godsalg"
)

const DefaultBufferSize = 64

type eventKind int

const (
	eventProgress eventKind = iota
	eventLayerDone
	eventDone
)

type event struct {
	kind     eventKind
	progress godsalg.Progress
	summary  godsalg.Summary
}

// AsyncReporter hands events to another reporter on its own goroutine, so a
// slow reporter (a terminal, a remote sink) does not hold up the search.
// Progress ticks are dropped while the buffer is full; layer and search
// completions are always delivered.
type AsyncReporter struct {
	inner   godsalg.Reporter
	events  chan event
	g       errgroup.Group
	dropped atomic.Int64
	once    sync.Once
}

func NewAsyncReporter(inner godsalg.Reporter, bufferSize int) *AsyncReporter {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	r := &AsyncReporter{
		inner:  inner,
		events: make(chan event, bufferSize),
	}
	r.g.Go(func() error {
		for ev := range r.events {
			switch ev.kind {
			case eventProgress:
				r.inner.LayerProgress(ev.progress)
			case eventLayerDone:
				r.inner.LayerDone(ev.progress)
			case eventDone:
				r.inner.Done(ev.summary)
			}
		}
		return nil
	})
	return r
}

func (r *AsyncReporter) LayerProgress(p godsalg.Progress) {
	select {
	case r.events <- event{kind: eventProgress, progress: p}:
	default:
		r.dropped.Add(1)
	}
}

func (r *AsyncReporter) LayerDone(p godsalg.Progress) {
	r.events <- event{kind: eventLayerDone, progress: p}
}

func (r *AsyncReporter) Done(s godsalg.Summary) {
	r.events <- event{kind: eventDone, summary: s}
}

// Dropped is the number of progress ticks skipped so far.
func (r *AsyncReporter) Dropped() int64 {
	return r.dropped.Load()
}

// Close delivers everything still buffered and stops the goroutine. No
// events may be sent after Close.
func (r *AsyncReporter) Close() error {
	r.once.Do(func() {
		close(r.events)
	})
	err := r.g.Wait()
	if n := r.Dropped(); n > 0 {
		log.Debug().Int64("dropped", n).Msg("progress-ticks-dropped")
	}
	return err
}
