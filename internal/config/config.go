// Package config handles configuration loading for narrative.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/seenimoa/narrative/internal/analysis/sentiment"
	"github.com/seenimoa/narrative/pkg/utils"
)

// Config represents the complete application configuration.
type Config struct {
	Source   string         `mapstructure:"source"   yaml:"source"` // "guardian", "feed" or "snapshot"
	Guardian GuardianConfig `mapstructure:"guardian" yaml:"guardian"`
	Feeds    []FeedConfig   `mapstructure:"feeds"    yaml:"feeds"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Report   ReportConfig   `mapstructure:"report"   yaml:"report"`
	Snapshot SnapshotConfig `mapstructure:"snapshot" yaml:"snapshot"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// GuardianConfig holds Guardian content API settings.
type GuardianConfig struct {
	BaseURL           string        `mapstructure:"base_url"            yaml:"base_url"`
	APIKey            string        `mapstructure:"api_key"             yaml:"api_key"`
	PageSize          int           `mapstructure:"page_size"           yaml:"page_size"`
	MaxPages          int           `mapstructure:"max_pages"           yaml:"max_pages"` // 0 = all
	Section           string        `mapstructure:"section"             yaml:"section"`
	Tag               string        `mapstructure:"tag"                 yaml:"tag"`
	MaxRetries        int           `mapstructure:"max_retries"         yaml:"max_retries"`
	BaseBackoff       time.Duration `mapstructure:"base_backoff"        yaml:"base_backoff"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"     yaml:"request_timeout"`
	RequestsPerSecond int           `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// FeedConfig is one RSS/Atom feed.
type FeedConfig struct {
	Name    string `mapstructure:"name"    yaml:"name"`
	URL     string `mapstructure:"url"     yaml:"url"`
	Section string `mapstructure:"section" yaml:"section"`
}

// AnalysisConfig holds the query window and model parameters.
type AnalysisConfig struct {
	Query           string  `mapstructure:"query"            yaml:"query"`
	From            string  `mapstructure:"from"             yaml:"from"` // YYYY-MM-DD
	To              string  `mapstructure:"to"               yaml:"to"`   // YYYY-MM-DD
	Topics          int     `mapstructure:"topics"           yaml:"topics"`
	Seed            uint64  `mapstructure:"seed"             yaml:"seed"`
	Iterations      int     `mapstructure:"iterations"       yaml:"iterations"`
	Alpha           float64 `mapstructure:"alpha"            yaml:"alpha"`
	Eta             float64 `mapstructure:"eta"              yaml:"eta"`
	SentimentMethod string  `mapstructure:"sentiment_method" yaml:"sentiment_method"` // "afinn", "bing", "market"
	StopwordsFile   string  `mapstructure:"stopwords_file"   yaml:"stopwords_file"`
	LexiconFile     string  `mapstructure:"lexicon_file"     yaml:"lexicon_file"`
	DropNumeric     bool    `mapstructure:"drop_numeric"     yaml:"drop_numeric"`
	Workers         int     `mapstructure:"workers"          yaml:"workers"`
}

// ReportConfig holds output settings.
type ReportConfig struct {
	OutDir     string   `mapstructure:"out_dir"     yaml:"out_dir"`
	Formats    []string `mapstructure:"formats"     yaml:"formats"` // any of "html", "text", "pdf"
	Title      string   `mapstructure:"title"       yaml:"title"`
	TopAuthors int      `mapstructure:"top_authors" yaml:"top_authors"`
	TopTerms   int      `mapstructure:"top_terms"   yaml:"top_terms"`
	Rolling    int      `mapstructure:"rolling"     yaml:"rolling"` // days in the smoothed daily mean
}

// SnapshotConfig holds the article cache location.
type SnapshotConfig struct {
	Path string `mapstructure:"path" yaml:"path"` // .csv, .db or .sqlite; empty disables the cache
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.narrative/config.yaml (home directory)
//  3. /etc/narrative/config.yaml (system)
//
// Environment variables override config file values.
// Format: NARRATIVE_<SECTION>_<KEY>, e.g., NARRATIVE_ANALYSIS_TOPICS
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".narrative"))
	v.AddConfigPath("/etc/narrative")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("NARRATIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("source", "guardian")

	// Guardian defaults
	v.SetDefault("guardian.base_url", "https://content.guardianapis.com")
	v.SetDefault("guardian.page_size", 50)
	v.SetDefault("guardian.max_pages", 0)
	v.SetDefault("guardian.tag", "type/article")
	v.SetDefault("guardian.max_retries", 3)
	v.SetDefault("guardian.base_backoff", "1s")
	v.SetDefault("guardian.request_timeout", "30s")
	v.SetDefault("guardian.requests_per_second", 5)

	// Analysis defaults
	v.SetDefault("analysis.query", "ChatGPT")
	v.SetDefault("analysis.topics", 5)
	v.SetDefault("analysis.seed", 1234)
	v.SetDefault("analysis.iterations", 200)
	v.SetDefault("analysis.alpha", 0.1)
	v.SetDefault("analysis.eta", 0.01)
	v.SetDefault("analysis.sentiment_method", "afinn")
	v.SetDefault("analysis.drop_numeric", true)
	v.SetDefault("analysis.workers", 4)

	// Report defaults
	v.SetDefault("report.out_dir", "./out")
	v.SetDefault("report.formats", []string{"html", "text"})
	v.SetDefault("report.title", "News Narrative Report")
	v.SetDefault("report.top_authors", 10)
	v.SetDefault("report.top_terms", 10)
	v.SetDefault("report.rolling", 7)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("NARRATIVE_GUARDIAN_API_KEY"); key != "" {
		cfg.Guardian.APIKey = key
	}
}

// Validate fails fast on settings that would only surface mid-run.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch c.Source {
	case "guardian", "snapshot":
	case "feed":
		if len(c.Feeds) == 0 {
			add("source %q needs at least one entry under feeds", c.Source)
		}
	default:
		add("unknown source %q (want guardian, feed or snapshot)", c.Source)
	}
	if c.Source == "snapshot" && c.Snapshot.Path == "" {
		add("source snapshot needs snapshot.path")
	}

	if c.Analysis.Topics < 1 {
		add("analysis.topics must be >= 1, got %d", c.Analysis.Topics)
	}
	if c.Analysis.Iterations < 1 {
		add("analysis.iterations must be >= 1, got %d", c.Analysis.Iterations)
	}
	if c.Analysis.Workers < 1 {
		add("analysis.workers must be >= 1, got %d", c.Analysis.Workers)
	}
	if _, err := sentiment.ParseMethod(c.Analysis.SentimentMethod); err != nil {
		errs = append(errs, err)
	}

	from, errFrom := parseDay("analysis.from", c.Analysis.From)
	to, errTo := parseDay("analysis.to", c.Analysis.To)
	if errFrom != nil {
		errs = append(errs, errFrom)
	}
	if errTo != nil {
		errs = append(errs, errTo)
	}
	if errFrom == nil && errTo == nil && !from.IsZero() && !to.IsZero() && to.Before(from) {
		add("analysis.to %s is before analysis.from %s", c.Analysis.To, c.Analysis.From)
	}

	for _, f := range c.Report.Formats {
		switch strings.ToLower(f) {
		case "html", "text", "pdf":
		default:
			add("unknown report format %q (want html, text or pdf)", f)
		}
	}
	if c.Report.TopAuthors < 0 {
		add("report.top_authors must be >= 0, got %d", c.Report.TopAuthors)
	}
	if c.Report.Rolling < 0 {
		add("report.rolling must be >= 0, got %d", c.Report.Rolling)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// Window returns the configured date window. Unset bounds are zero.
func (c *Config) Window() (from, to time.Time, err error) {
	if from, err = parseDay("analysis.from", c.Analysis.From); err != nil {
		return
	}
	to, err = parseDay("analysis.to", c.Analysis.To)
	return
}

func parseDay(name, s string) (time.Time, error) {
	t, err := utils.ParseDay(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
