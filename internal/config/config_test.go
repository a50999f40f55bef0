package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/narrative/internal/analysis/sentiment"
)

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	t.Setenv("NARRATIVE_GUARDIAN_API_KEY", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Source != "guardian" {
		t.Errorf("Source: got %q, want %q", cfg.Source, "guardian")
	}

	// Guardian defaults
	if cfg.Guardian.BaseURL != "https://content.guardianapis.com" {
		t.Errorf("Guardian.BaseURL: got %q", cfg.Guardian.BaseURL)
	}
	if cfg.Guardian.PageSize != 50 {
		t.Errorf("Guardian.PageSize: got %d, want 50", cfg.Guardian.PageSize)
	}
	if cfg.Guardian.MaxRetries != 3 {
		t.Errorf("Guardian.MaxRetries: got %d, want 3", cfg.Guardian.MaxRetries)
	}
	if cfg.Guardian.BaseBackoff != time.Second {
		t.Errorf("Guardian.BaseBackoff: got %v, want 1s", cfg.Guardian.BaseBackoff)
	}
	if cfg.Guardian.RequestTimeout != 30*time.Second {
		t.Errorf("Guardian.RequestTimeout: got %v, want 30s", cfg.Guardian.RequestTimeout)
	}

	// Analysis defaults
	if cfg.Analysis.Topics != 5 {
		t.Errorf("Analysis.Topics: got %d, want 5", cfg.Analysis.Topics)
	}
	if cfg.Analysis.Seed != 1234 {
		t.Errorf("Analysis.Seed: got %d, want 1234", cfg.Analysis.Seed)
	}
	if cfg.Analysis.SentimentMethod != "afinn" {
		t.Errorf("Analysis.SentimentMethod: got %q, want %q", cfg.Analysis.SentimentMethod, "afinn")
	}
	if cfg.Analysis.Alpha != 0.1 {
		t.Errorf("Analysis.Alpha: got %f, want 0.1", cfg.Analysis.Alpha)
	}
	if !cfg.Analysis.DropNumeric {
		t.Error("Analysis.DropNumeric should be true by default")
	}
	if cfg.Analysis.Workers != 4 {
		t.Errorf("Analysis.Workers: got %d, want 4", cfg.Analysis.Workers)
	}

	// Report defaults
	if cfg.Report.OutDir != "./out" {
		t.Errorf("Report.OutDir: got %q", cfg.Report.OutDir)
	}
	if strings.Join(cfg.Report.Formats, ",") != "html,text" {
		t.Errorf("Report.Formats: got %v", cfg.Report.Formats)
	}
	if cfg.Report.TopAuthors != 10 {
		t.Errorf("Report.TopAuthors: got %d, want 10", cfg.Report.TopAuthors)
	}
	if cfg.Report.Rolling != 7 {
		t.Errorf("Report.Rolling: got %d, want 7", cfg.Report.Rolling)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "text")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
source: feed
guardian:
  api_key: "test_key_12345678901234"
  page_size: 200
  base_backoff: 250ms
feeds:
  - name: guardian-tech
    url: https://www.theguardian.com/technology/rss
    section: Technology
analysis:
  query: "ChatGPT AND education"
  from: "2023-01-01"
  to: "2023-06-30"
  topics: 8
  seed: 42
  sentiment_method: bing
report:
  formats: [html, pdf]
  top_authors: 3
snapshot:
  path: cache/articles.db
logging:
  level: "debug"
  format: "json"
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	t.Setenv("NARRATIVE_GUARDIAN_API_KEY", "")

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Source != "feed" {
		t.Errorf("Source: got %q", cfg.Source)
	}
	if cfg.Guardian.APIKey != "test_key_12345678901234" {
		t.Errorf("Guardian.APIKey: got %q", cfg.Guardian.APIKey)
	}
	if cfg.Guardian.PageSize != 200 {
		t.Errorf("Guardian.PageSize: got %d, want 200", cfg.Guardian.PageSize)
	}
	if cfg.Guardian.BaseBackoff != 250*time.Millisecond {
		t.Errorf("Guardian.BaseBackoff: got %v, want 250ms", cfg.Guardian.BaseBackoff)
	}
	if len(cfg.Feeds) != 1 || cfg.Feeds[0].Section != "Technology" {
		t.Errorf("Feeds: got %+v", cfg.Feeds)
	}
	if cfg.Analysis.Query != "ChatGPT AND education" {
		t.Errorf("Analysis.Query: got %q", cfg.Analysis.Query)
	}
	if cfg.Analysis.Topics != 8 || cfg.Analysis.Seed != 42 {
		t.Errorf("Analysis: got topics=%d seed=%d", cfg.Analysis.Topics, cfg.Analysis.Seed)
	}
	if cfg.Analysis.SentimentMethod != "bing" {
		t.Errorf("Analysis.SentimentMethod: got %q", cfg.Analysis.SentimentMethod)
	}
	if cfg.Analysis.Iterations != 200 {
		t.Errorf("Analysis.Iterations should keep default 200, got %d", cfg.Analysis.Iterations)
	}
	if strings.Join(cfg.Report.Formats, ",") != "html,pdf" {
		t.Errorf("Report.Formats: got %v", cfg.Report.Formats)
	}
	if cfg.Snapshot.Path != "cache/articles.db" {
		t.Errorf("Snapshot.Path: got %q", cfg.Snapshot.Path)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "json")
	}

	from, to, err := cfg.Window()
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if from.Format("2006-01-02") != "2023-01-01" || to.Format("2006-01-02") != "2023-06-30" {
		t.Errorf("Window: got %v - %v", from, to)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(cfgPath, []byte("analysis:\n  topics: 8\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NARRATIVE_ANALYSIS_TOPICS", "12")
	t.Setenv("NARRATIVE_GUARDIAN_API_KEY", "env-key-1234567890")

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Analysis.Topics != 12 {
		t.Errorf("Analysis.Topics: got %d, want 12", cfg.Analysis.Topics)
	}
	if cfg.Guardian.APIKey != "env-key-1234567890" {
		t.Errorf("Guardian.APIKey: got %q", cfg.Guardian.APIKey)
	}
}

// ── Validate ──

func validConfig() *Config {
	return &Config{
		Source:   "guardian",
		Analysis: AnalysisConfig{Topics: 5, Iterations: 10, Workers: 2, SentimentMethod: "afinn"},
		Report:   ReportConfig{Formats: []string{"html"}},
	}
}

func TestValidateRejectsUnsupportedMethod(t *testing.T) {
	cfg := validConfig()
	cfg.Analysis.SentimentMethod = "vader"

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	var ume *sentiment.UnsupportedMethodError
	if !errors.As(err, &ume) {
		t.Fatalf("expected *UnsupportedMethodError in chain, got %v", err)
	}
	if ume.Name != "vader" {
		t.Errorf("Name: got %q", ume.Name)
	}
}

func TestValidateCases(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero topics", func(c *Config) { c.Analysis.Topics = 0 }, "analysis.topics"},
		{"zero workers", func(c *Config) { c.Analysis.Workers = 0 }, "analysis.workers"},
		{"bad source", func(c *Config) { c.Source = "twitter" }, "unknown source"},
		{"feed without feeds", func(c *Config) { c.Source = "feed" }, "feeds"},
		{"snapshot without path", func(c *Config) { c.Source = "snapshot" }, "snapshot.path"},
		{"bad date", func(c *Config) { c.Analysis.From = "15/01/2023" }, "YYYY-MM-DD"},
		{"reversed window", func(c *Config) { c.Analysis.From, c.Analysis.To = "2023-02-01", "2023-01-01" }, "before"},
		{"bad format", func(c *Config) { c.Report.Formats = []string{"docx"} }, "docx"},
		{"negative rolling", func(c *Config) { c.Report.Rolling = -1 }, "report.rolling"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
	if err := validConfig().Validate(); err != nil {
		t.Errorf("valid config: %v", err)
	}
}

// ── overrideFromEnv ──

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("NARRATIVE_GUARDIAN_API_KEY", "guardian-key-123456")
	cfg := &Config{}
	overrideFromEnv(cfg)
	if cfg.Guardian.APIKey != "guardian-key-123456" {
		t.Errorf("Guardian.APIKey: got %q", cfg.Guardian.APIKey)
	}
}

func TestOverrideFromEnvNoEnvSet(t *testing.T) {
	t.Setenv("NARRATIVE_GUARDIAN_API_KEY", "")
	cfg := &Config{Guardian: GuardianConfig{APIKey: "from-config"}}
	overrideFromEnv(cfg)
	if cfg.Guardian.APIKey != "from-config" {
		t.Errorf("APIKey should stay as 'from-config' when env is unset, got %q", cfg.Guardian.APIKey)
	}
}

// ── maskKey ──

func TestMaskKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "***"},
		{"abcd", "***"},
		{"12345678", "***"},
		{"123456789", "123...789"},
		{"sk-abcdef1234567890xyz", "sk-...xyz"},
	}
	for _, tc := range tests {
		if got := maskKey(tc.input); got != tc.want {
			t.Errorf("maskKey(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}
}

// ── CheckAPIKeys ──

func TestCheckAPIKeys(t *testing.T) {
	t.Setenv("NARRATIVE_GUARDIAN_API_KEY", "")

	statuses := CheckAPIKeys(&Config{Source: "guardian"})
	if len(statuses) != 1 {
		t.Fatalf("CheckAPIKeys: got %d statuses, want 1", len(statuses))
	}
	if statuses[0].IsSet || statuses[0].Source != KeySourceNone || !statuses[0].Required {
		t.Errorf("status: got %+v", statuses[0])
	}
	if got := MissingRequired(statuses); len(got) != 1 || got[0] != "Guardian API Key" {
		t.Errorf("MissingRequired: got %v", got)
	}

	statuses = CheckAPIKeys(&Config{Source: "snapshot"})
	if len(MissingRequired(statuses)) != 0 {
		t.Error("snapshot source should not require the Guardian key")
	}

	statuses = CheckAPIKeys(&Config{Source: "guardian", Guardian: GuardianConfig{APIKey: "test-very-long-key-value"}})
	if statuses[0].Source != KeySourceConfig || statuses[0].Masked != "tes...lue" {
		t.Errorf("config key: got %+v", statuses[0])
	}
}

func TestCheckKeySourceDetection(t *testing.T) {
	t.Setenv("TEST_VAR", "")
	s := checkKey("Test", "config-value-long-enough", "TEST_VAR")
	if s.Source != KeySourceConfig {
		t.Errorf("config value: got source %q, want %q", s.Source, KeySourceConfig)
	}

	t.Setenv("TEST_VAR", "env-value-long-enough")
	s = checkKey("Test", "env-value-long-enough", "TEST_VAR")
	if s.Source != KeySourceEnv {
		t.Errorf("env value: got source %q, want %q", s.Source, KeySourceEnv)
	}
}
