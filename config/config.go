// SPDX-License-Identifier: MIT

// Package config holds the run parameters and loads them from defaults, an
// optional config file, PHASEGATE_* environment variables (with .env
// support) and bound command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/katalvlaran/phasegate/matbuf"
)

// EnvPrefix prefixes every environment override, e.g. PHASEGATE_POINTS.
const EnvPrefix = "PHASEGATE"

// Validation errors.
var (
	ErrPoints        = errors.New("config: points must be a positive multiple of 8")
	ErrEpsilon       = errors.New("config: epsilon must be finite and > 0")
	ErrDepth         = errors.New("config: depth out of range")
	ErrPrecision     = errors.New("config: unknown precision")
	ErrProgressEvery = errors.New("config: progress_every must be > 0")
	ErrTimeout       = errors.New("config: timeout must be >= 0")
	ErrLogLevel      = errors.New("config: unknown log level")
)

// Config is the full parameter set of one run.
type Config struct {
	Points    int     `mapstructure:"points" yaml:"points" json:"points"`
	Epsilon   float64 `mapstructure:"epsilon" yaml:"epsilon" json:"epsilon"`
	Depth     int     `mapstructure:"depth" yaml:"depth" json:"depth"`
	Precision string  `mapstructure:"precision" yaml:"precision" json:"precision"`

	DiagnosticsPath string `mapstructure:"diagnostics" yaml:"diagnostics" json:"diagnostics"`
	TablePath       string `mapstructure:"table" yaml:"table" json:"table"`
	MetricsPath     string `mapstructure:"metrics_file" yaml:"metrics_file" json:"metrics_file"`

	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	ProgressEvery int           `mapstructure:"progress_every" yaml:"progress_every" json:"progress_every"`
	SkipMITM      bool          `mapstructure:"skip_mitm" yaml:"skip_mitm" json:"skip_mitm"`
	Strict        bool          `mapstructure:"strict" yaml:"strict" json:"strict"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file" json:"log_file"`
}

// Default returns the parameters used when nothing overrides them.
func Default() Config {
	return Config{
		Points:          256,
		Epsilon:         1e-2,
		Depth:           20,
		Precision:       matbuf.DefaultPrecision.String(),
		DiagnosticsPath: "phase_table_diagnostics.json",
		TablePath:       "phase_table.json",
		ProgressEvery:   1 << 20,
		LogLevel:        "info",
	}
}

// PhaseCount returns Points/8.
func (c Config) PhaseCount() int { return c.Points / 8 }

// ParsedPrecision returns the buffer precision named by c.Precision.
func (c Config) ParsedPrecision() (matbuf.Precision, error) {
	p, err := matbuf.ParsePrecision(c.Precision)
	if err != nil {
		return p, fmt.Errorf("%w: %q", ErrPrecision, c.Precision)
	}

	return p, nil
}

// Validate checks every field; the first failure is returned.
func (c Config) Validate() error {
	switch {
	case c.Points <= 0 || c.Points%8 != 0:
		return fmt.Errorf("%w: got %d", ErrPoints, c.Points)
	case math.IsNaN(c.Epsilon) || math.IsInf(c.Epsilon, 0) || c.Epsilon <= 0:
		return fmt.Errorf("%w: got %g", ErrEpsilon, c.Epsilon)
	case c.Depth < 1 || c.Depth > matbuf.MaxDepth:
		return fmt.Errorf("%w: got %d, want [1, %d]", ErrDepth, c.Depth, matbuf.MaxDepth)
	case c.ProgressEvery <= 0:
		return fmt.Errorf("%w: got %d", ErrProgressEvery, c.ProgressEvery)
	case c.Timeout < 0:
		return fmt.Errorf("%w: got %s", ErrTimeout, c.Timeout)
	}
	if _, err := c.ParsedPrecision(); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %q", ErrLogLevel, c.LogLevel)
	}

	return nil
}

// SetDefaults registers Default() on v so that unset keys resolve.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("points", d.Points)
	v.SetDefault("epsilon", d.Epsilon)
	v.SetDefault("depth", d.Depth)
	v.SetDefault("precision", d.Precision)
	v.SetDefault("diagnostics", d.DiagnosticsPath)
	v.SetDefault("table", d.TablePath)
	v.SetDefault("metrics_file", d.MetricsPath)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("progress_every", d.ProgressEvery)
	v.SetDefault("skip_mitm", d.SkipMITM)
	v.SetDefault("strict", d.Strict)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
}

// RegisterFlags defines one flag per Config field on fs, named after the
// config key with dashes, defaulting to Default().
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.Int("points", d.Points, "slots on the full phase circle (multiple of 8)")
	fs.Float64("epsilon", d.Epsilon, "diagonality tolerance")
	fs.Int("depth", d.Depth, "maximum number of blocks per buffered sequence")
	fs.String("precision", d.Precision, "buffer precision: single or double")
	fs.String("diagnostics", d.DiagnosticsPath, "diagnostic record path (.json, .yaml)")
	fs.String("table", d.TablePath, "expanded table path (.json, .yaml)")
	fs.String("metrics-file", d.MetricsPath, "write Prometheus metrics to this textfile")
	fs.Duration("timeout", d.Timeout, "abort the search after this long (0 = never)")
	fs.Int("progress-every", d.ProgressEvery, "log progress every n outer steps")
	fs.Bool("skip-mitm", d.SkipMITM, "skip the meet-in-the-middle stage")
	fs.Bool("strict", d.Strict, "exit non-zero on incomplete coverage or mismatches")
	fs.String("log-level", d.LogLevel, "log level")
	fs.String("log-file", d.LogFile, "also write logs to this rotated file")
}

// BindFlags binds every flag of fs to the config key with underscores.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		err = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})

	return err
}

// LoadEnv copies the variables in the dotenv file at path into the process
// environment without overriding ones already set. A missing file is not an
// error; an unreadable or malformed one is.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: load %q: %w", path, err)
	}

	return nil
}

// Load resolves a Config from v. A missing .env file is ignored; a .env or
// configFile that cannot be read is an error. Flags must already be bound
// to v by the caller. The result is validated.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if err := LoadEnv(".env"); err != nil {
		return Config{}, err
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %q: %w", configFile, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}

	return c, nil
}
