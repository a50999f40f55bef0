package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/narrative/internal/analysis/sentiment"
	"github.com/seenimoa/narrative/internal/analysis/text"
	"github.com/seenimoa/narrative/internal/analysis/topic"
	"github.com/seenimoa/narrative/internal/config"
	"github.com/seenimoa/narrative/internal/corpus"
	"github.com/seenimoa/narrative/internal/pipeline"
	"github.com/seenimoa/narrative/internal/report"
	"github.com/seenimoa/narrative/internal/snapshot"
	"github.com/seenimoa/narrative/pkg/models"
)

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, analyze and report in one go",
	Example: `  narrative run --from 2023-01-01 --to 2023-03-31
  narrative run --query "ChatGPT" --snapshot cache/chatgpt.db --out out/chatgpt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyFlags(cmd, cfg); err != nil {
			return err
		}
		runner, err := newRunner(cfg, logger, runID)
		if err != nil {
			return err
		}
		res, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}
		return writeOutputs(cmd.Context(), cmd.OutOrStdout(), res, cfg, logger)
	},
}

// --- Fetch Command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and clean articles into a snapshot without analyzing them",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyFlags(cmd, cfg); err != nil {
			return err
		}
		if cfg.Snapshot.Path == "" {
			return fmt.Errorf("%w: fetch needs --snapshot or snapshot.path", config.ErrInvalidConfig)
		}
		if cfg.Source == "snapshot" {
			return fmt.Errorf("%w: fetch cannot read from the snapshot it writes", config.ErrInvalidConfig)
		}
		runner, err := newRunner(cfg, logger, runID)
		if err != nil {
			return err
		}
		docs, skipped, err := runner.Fetch(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %d articles saved to %s (%d malformed skipped)\n", len(docs), cfg.Snapshot.Path, skipped)
		return nil
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a saved snapshot and write reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyFlags(cmd, cfg); err != nil {
			return err
		}
		if cfg.Snapshot.Path == "" {
			return fmt.Errorf("%w: analyze needs --snapshot or snapshot.path", config.ErrInvalidConfig)
		}
		cfg.Source = "snapshot"
		runner, err := newRunner(cfg, logger, runID)
		if err != nil {
			return err
		}
		from, to, err := cfg.Window()
		if err != nil {
			return err
		}
		docs, err := snapshot.LoadWindow(cfg.Snapshot.Path, from, to)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		res, err := runner.Analyze(cmd.Context(), docs)
		if err != nil {
			return err
		}
		return writeOutputs(cmd.Context(), cmd.OutOrStdout(), res, cfg, logger)
	},
}

func init() {
	for _, c := range []*cobra.Command{runCmd, fetchCmd, analyzeCmd} {
		c.Flags().String("from", "", "first publication day, YYYY-MM-DD")
		c.Flags().String("to", "", "last publication day, YYYY-MM-DD")
		c.Flags().String("snapshot", "", "snapshot file (.csv, .db or .sqlite)")
	}
	for _, c := range []*cobra.Command{runCmd, fetchCmd} {
		c.Flags().String("query", "", "search query")
		c.Flags().String("source", "", "article source: guardian, feed or snapshot")
	}
	for _, c := range []*cobra.Command{runCmd, analyzeCmd} {
		c.Flags().String("out", "", "output directory for charts and reports")
		c.Flags().StringSlice("format", nil, "report formats: html, text, pdf")
		c.Flags().Int("topics", 0, "number of topics")
		c.Flags().String("method", "", "sentiment lexicon: afinn, bing or market")
	}
}

// applyFlags copies explicitly set flags over the loaded config and
// validates the result.
func applyFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	str("from", &c.Analysis.From)
	str("to", &c.Analysis.To)
	str("query", &c.Analysis.Query)
	str("source", &c.Source)
	str("snapshot", &c.Snapshot.Path)
	str("out", &c.Report.OutDir)
	str("method", &c.Analysis.SentimentMethod)
	if flags.Changed("format") {
		c.Report.Formats, _ = flags.GetStringSlice("format")
	}
	if flags.Changed("topics") {
		c.Analysis.Topics, _ = flags.GetInt("topics")
	}
	return c.Validate()
}

// newSource builds the configured article source.
func newSource(c *config.Config, logger *slog.Logger) (corpus.Source, error) {
	switch c.Source {
	case "guardian":
		gc := corpus.DefaultGuardianConfig()
		gc.BaseURL = c.Guardian.BaseURL
		gc.APIKey = c.Guardian.APIKey
		gc.PageSize = c.Guardian.PageSize
		gc.MaxPages = c.Guardian.MaxPages
		gc.Section = c.Guardian.Section
		gc.Tag = c.Guardian.Tag
		gc.Retry.MaxRetries = c.Guardian.MaxRetries
		if c.Guardian.BaseBackoff > 0 {
			gc.Retry.BaseDelay = c.Guardian.BaseBackoff
		}
		if c.Guardian.RequestTimeout > 0 {
			gc.RequestTimeout = c.Guardian.RequestTimeout
		}
		gc.RequestsPerSecond = c.Guardian.RequestsPerSecond
		return corpus.NewGuardian(gc, logger), nil
	case "feed":
		feeds := make([]corpus.FeedConfig, len(c.Feeds))
		for i, f := range c.Feeds {
			feeds[i] = corpus.FeedConfig{Name: f.Name, URL: f.URL, Section: f.Section}
		}
		return corpus.NewFeed(feeds, c.Guardian.RequestTimeout, logger), nil
	case "snapshot":
		return corpus.NewSnapshot(c.Snapshot.Path), nil
	default:
		return nil, fmt.Errorf("%w: unknown source %q", config.ErrInvalidConfig, c.Source)
	}
}

// newScorer builds the sentiment scorer, merging an optional lexicon file.
func newScorer(c *config.Config) (*sentiment.Scorer, error) {
	method, err := sentiment.ParseMethod(c.Analysis.SentimentMethod)
	if err != nil {
		return nil, err
	}
	var extra map[string]float64
	if c.Analysis.LexiconFile != "" {
		if extra, err = sentiment.LoadLexicon(c.Analysis.LexiconFile); err != nil {
			return nil, err
		}
	}
	return sentiment.NewScorer(method, extra)
}

// pipelineConfig translates the loaded config into run settings.
func pipelineConfig(c *config.Config, runID string) (pipeline.Config, error) {
	from, to, err := c.Window()
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	stop := text.DefaultStopwords()
	if c.Analysis.StopwordsFile != "" {
		extra, err := text.LoadStopwords(c.Analysis.StopwordsFile)
		if err != nil {
			return pipeline.Config{}, err
		}
		stop = stop.Union(extra.Words()...)
	}

	pc := pipeline.Config{
		RunID: runID,
		Query: c.Analysis.Query,
		From:  from,
		To:    to,
		Topic: topic.Config{
			K:          c.Analysis.Topics,
			Seed:       c.Analysis.Seed,
			Iterations: c.Analysis.Iterations,
			Alpha:      c.Analysis.Alpha,
			Eta:        c.Analysis.Eta,
		},
		TopTerms:    c.Report.TopTerms,
		TopAuthors:  c.Report.TopAuthors,
		Workers:     c.Analysis.Workers,
		Stopwords:   stop,
		DropNumeric: c.Analysis.DropNumeric,
	}
	// never overwrite the snapshot being read
	if c.Source != "snapshot" {
		pc.Snapshot = c.Snapshot.Path
	}
	return pc, nil
}

func newRunner(c *config.Config, logger *slog.Logger, runID string) (*pipeline.Runner, error) {
	if missing := config.MissingRequired(config.CheckAPIKeys(c)); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s not set (export NARRATIVE_GUARDIAN_API_KEY)", corpus.ErrUnauthorized, strings.Join(missing, ", "))
	}
	src, err := newSource(c, logger)
	if err != nil {
		return nil, err
	}
	scorer, err := newScorer(c)
	if err != nil {
		return nil, err
	}
	pc, err := pipelineConfig(c, runID)
	if err != nil {
		return nil, err
	}
	return pipeline.New(src, scorer, pc, logger), nil
}

// writeOutputs renders charts and every configured report format into the
// output directory. The text report is also printed to w.
func writeOutputs(ctx context.Context, w io.Writer, res *models.RunResult, c *config.Config, logger *slog.Logger) error {
	outDir := c.Report.OutDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	arts, err := report.StandardCharts(ctx, report.NewSVGRenderer(filepath.Join(outDir, "charts")), res)
	if err != nil {
		return err
	}
	for _, a := range arts {
		logger.Debug("chart written", "title", a.Title, "path", a.Path)
	}

	summaryPath := filepath.Join(outDir, "summary.json")
	if err := writeJSON(summaryPath, res); err != nil {
		return err
	}

	rc := report.DefaultReportConfig()
	if c.Report.Title != "" {
		rc.Title = c.Report.Title
	}
	if c.Report.Rolling > 0 {
		rc.Rolling = c.Report.Rolling
	}

	written := []string{summaryPath}
	var html string
	for _, f := range c.Report.Formats {
		switch strings.ToLower(f) {
		case "text":
			txt, err := report.GenerateText(res, rc)
			if err != nil {
				return err
			}
			path := filepath.Join(outDir, "report.txt")
			if err := os.WriteFile(path, []byte(txt), 0o644); err != nil {
				return fmt.Errorf("writing text report: %w", err)
			}
			fmt.Fprint(w, txt)
			written = append(written, path)
		case "html", "pdf":
			if html == "" {
				if html, err = report.GenerateHTML(res, rc); err != nil {
					return err
				}
			}
			if strings.EqualFold(f, "html") {
				path := filepath.Join(outDir, "report.html")
				if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
					return fmt.Errorf("writing HTML report: %w", err)
				}
				written = append(written, path)
				continue
			}
			pc := report.DefaultPDFConfig()
			pc.OutputPath = filepath.Join(outDir, "report.pdf")
			path, err := report.GeneratePDF(ctx, html, pc)
			if err != nil {
				return err
			}
			if !strings.HasSuffix(path, ".pdf") {
				logger.Warn("no PDF engine found, wrote HTML instead", "path", path)
			}
			written = append(written, path)
		}
	}

	logger.Info("reports written", "dir", outDir, "files", written, "charts", len(arts))
	fmt.Fprintf(w, "\n📄 %d report file(s) and %d chart(s) in %s\n", len(written), len(arts), outDir)
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
