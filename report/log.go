// Package report turns search progress into log events and text.
package report

import (
	"github.com/rs/zerolog"

	"github.com/Carter-Thomas/twsearch/godsalg"
)

// LogReporter writes every search event to a zerolog logger.
type LogReporter struct {
	logger zerolog.Logger
}

func NewLogReporter(logger zerolog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) LayerProgress(p godsalg.Progress) {
	r.logger.Debug().
		Int("depth", p.Depth).
		Int("tested", p.Tested).
		Int("remaining", p.ToTest-p.Tested).
		Int("patterns", p.NewPatterns).
		Int("cumulative", p.Cumulative).
		Msg("layer-progress")
}

func (r *LogReporter) LayerDone(p godsalg.Progress) {
	r.logger.Info().
		Int("depth", p.Depth).
		Str("patterns", FormatNumber(p.NewPatterns)).
		Str("cumulative", FormatNumber(p.Cumulative)).
		Dur("elapsed", p.Elapsed).
		Msg("layer-done")
}

func (r *LogReporter) Done(s godsalg.Summary) {
	r.logger.Info().
		Int("patterns", s.NumPatterns).
		Int("max-depth", s.MaxDepth).
		Bool("completed", s.Completed).
		Dur("elapsed", s.Elapsed).
		Msg("search-done")
}
