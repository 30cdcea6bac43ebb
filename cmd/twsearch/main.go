package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Carter-Thomas/twsearch/config"
	"github.com/Carter-Thomas/twsearch/generators"
	"github.com/Carter-Thomas/twsearch/godsalg"
	"github.com/Carter-Thomas/twsearch/kpuzzle"
	"github.com/Carter-Thomas/twsearch/puzzle"
	"github.com/Carter-Thomas/twsearch/report"
	"github.com/Carter-Thomas/twsearch/tablestore"
)

var (
	GitVersion string
)

const histogramWidth = 50

func setupLogging(cfg *config.Config) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	var logger zerolog.Logger
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")
}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	cfg := config.DefaultConfig()
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\nUsage of twsearch:\n%s", err, config.Usage())
		return 2
	}
	setupLogging(cfg)
	if GitVersion != "" {
		log.Info().Str("version", GitVersion).Msg("twsearch")
	}
	log.Debug().Msgf("Loaded config: %v", cfg.SanitizedSettings())

	if cfg.GetString(config.ConfigCPUProfile) != "" {
		f, err := os.Create(cfg.GetString(config.ConfigCPUProfile))
		if err != nil {
			panic("could not create CPU profile: " + err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic("could not start CPU profile: " + err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		if errors.Is(err, context.Canceled) {
			return 130
		}
		log.Error().Err(err).Msg("twsearch-failed")
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config) error {
	def, err := kpuzzle.Get(cfg.PuzzleSource())
	if err != nil {
		return err
	}
	hashFn, err := kpuzzle.ParseHashFunction(cfg.GetString(config.ConfigHashFunction))
	if err != nil {
		return err
	}
	p, err := kpuzzle.New(def, kpuzzle.WithHashFunction(hashFn))
	if err != nil {
		return err
	}
	moves, err := puzzle.ParseMoveList(cfg.GetString(config.ConfigGenerators))
	if err != nil {
		return err
	}
	metric, err := generators.ParseMetric(cfg.GetString(config.ConfigMetric))
	if err != nil {
		return err
	}

	rep := report.NewAsyncReporter(report.NewLogReporter(log.Logger), 0)
	search, err := godsalg.New[*kpuzzle.Pattern, *kpuzzle.Transformation](p, godsalg.Options{
		Generators:          moves,
		Metric:              metric,
		Reporter:            rep,
		ProgressInterval:    cfg.GetInt(config.ConfigProgressInterval),
		DisableCanonicalFSM: cfg.GetBool(config.ConfigNoCanonical),
		MaxDepth:            cfg.GetInt(config.ConfigMaxDepth),
		MemoryFraction:      cfg.GetFloat64(config.ConfigMemoryFraction),
		PatternBytes:        len(p.DefaultPattern().Bytes()),
	})
	if err != nil {
		rep.Close()
		return err
	}
	if start := cfg.GetString(config.ConfigStart); start != "" {
		startPattern, err := p.ParseStart(start)
		if err != nil {
			rep.Close()
			return err
		}
		search.SetStartPattern(startPattern)
	}
	log.Info().Str("puzzle", p.Name()).
		Int("move-classes", search.Generators().NumMoveClasses()).
		Int("flat-moves", len(search.Generators().Flat)).
		Int("fsm-states", search.CanonicalFSM().NumStates()).
		Str("metric", metric.String()).
		Msg("starting-search")

	fillErr := search.Fill(ctx)
	if err := rep.Close(); err != nil {
		return err
	}
	if fillErr != nil && !errors.Is(fillErr, context.Canceled) {
		return fillErr
	}

	summary := search.Summary()
	fmt.Println()
	if err := report.WriteSummary(os.Stdout, summary); err != nil {
		return err
	}
	fmt.Println()
	if err := report.WriteDepthTable(os.Stdout, summary.DepthCounts); err != nil {
		return err
	}
	if cfg.GetBool(config.ConfigHistogram) {
		fmt.Println()
		if err := report.WriteHistogram(os.Stdout, summary.DepthCounts, histogramWidth); err != nil {
			return err
		}
	}

	if path := cfg.GetString(config.ConfigExportSqlite); path != "" && fillErr == nil {
		if err := export(path, cfg, p, search.Table()); err != nil {
			return err
		}
	}
	return fillErr
}

func export(path string, cfg *config.Config, p *kpuzzle.Puzzle, table *godsalg.Table[*kpuzzle.Pattern]) error {
	store, err := tablestore.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	meta := map[string]string{
		"puzzle":        p.Name(),
		"generators":    cfg.GetString(config.ConfigGenerators),
		"metric":        cfg.GetString(config.ConfigMetric),
		"start":         cfg.GetString(config.ConfigStart),
		"hash-function": cfg.GetString(config.ConfigHashFunction),
	}
	encode := func(pat *kpuzzle.Pattern) []byte {
		return pat.Bytes()
	}
	if err := tablestore.WriteTable(context.Background(), store, table, p, encode, meta); err != nil {
		return err
	}
	log.Info().Str("path", path).Int("patterns", table.Len()).Msg("table-exported")
	return nil
}
