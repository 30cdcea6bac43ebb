package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigFile             = "config"
	ConfigPuzzle           = "puzzle"
	ConfigPuzzleFile       = "puzzle-file"
	ConfigGenerators       = "generators"
	ConfigMetric           = "metric"
	ConfigStart            = "start"
	ConfigNoCanonical      = "no-canonical"
	ConfigMaxDepth         = "max-depth"
	ConfigProgressInterval = "progress-interval"
	ConfigHashFunction     = "hash-function"
	ConfigMemoryFraction   = "memory-fraction"
	ConfigExportSqlite     = "export-sqlite"
	ConfigHistogram        = "histogram"
	ConfigDebug            = "debug"
	ConfigCPUProfile       = "cpu-profile"
)

const EnvPrefix = "TWSEARCH"

// Config holds settings from, in decreasing priority: command-line flags,
// TWSEARCH_* environment variables, an optional config file and defaults.
type Config struct {
	*viper.Viper
	args []string
}

func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	c.SetDefault(ConfigPuzzle, "2x2x2")
	c.SetDefault(ConfigMetric, "hand")
	c.SetDefault(ConfigProgressInterval, 1000)
	c.SetDefault(ConfigHashFunction, "xxhash")
	c.SetDefault(ConfigMemoryFraction, 0.5)
	c.SetDefault(ConfigHistogram, true)
	return c
}

func flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("twsearch", pflag.ContinueOnError)
	fs.String(ConfigFile, "", "optional yaml config file")
	fs.StringP(ConfigPuzzle, "p", "2x2x2", "builtin puzzle name, or path to a definition file")
	fs.String(ConfigPuzzleFile, "", "path to a puzzle definition file; overrides --puzzle")
	fs.StringP(ConfigGenerators, "g", "", "generator moves, e.g. \"U R F\"; all moves if empty")
	fs.StringP(ConfigMetric, "m", "hand", "hand (htm) or quantum (qtm)")
	fs.String(ConfigStart, "", "start pattern: moves applied to the default pattern, or an encoded pattern such as \"PIECES:1,0,2,3\"")
	fs.Bool(ConfigNoCanonical, false, "do not prune with the canonical sequence automaton")
	fs.Int(ConfigMaxDepth, 0, "stop after this many layers; 0 means no limit")
	fs.Int(ConfigProgressInterval, 1000, "tested moves between progress reports")
	fs.String(ConfigHashFunction, "xxhash", "pattern hash: xxhash or zobrist")
	fs.Float64(ConfigMemoryFraction, 0.5, "warn when the table passes this fraction of system memory; 0 disables")
	fs.String(ConfigExportSqlite, "", "write the finished table to this sqlite file")
	fs.Bool(ConfigHistogram, true, "print the depth histogram")
	fs.Bool(ConfigDebug, false, "debug logging")
	fs.String(ConfigCPUProfile, "", "write a cpu profile to this file")
	return fs
}

// Load parses args and binds the environment. Positional arguments are kept
// in Args.
func (c *Config) Load(args []string) error {
	fs := flagSet()
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.SetEnvPrefix(EnvPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	c.args = fs.Args()

	if path := c.GetString(ConfigFile); path != "" {
		c.SetConfigFile(path)
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	return nil
}

func (c *Config) Args() []string {
	return c.args
}

// PuzzleSource is the definition file if one was given, else the puzzle
// name.
func (c *Config) PuzzleSource() string {
	if f := c.GetString(ConfigPuzzleFile); f != "" {
		return f
	}
	return c.GetString(ConfigPuzzle)
}

// SanitizedSettings returns every setting, for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}

func Usage() string {
	return flagSet().FlagUsages()
}
