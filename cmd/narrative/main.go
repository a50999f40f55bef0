// Command narrative reports topic and sentiment narratives of news coverage.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seenimoa/narrative/internal/analysis/topic"
	"github.com/seenimoa/narrative/internal/config"
	"github.com/seenimoa/narrative/internal/corpus"
	"github.com/seenimoa/narrative/internal/logging"
	"github.com/seenimoa/narrative/internal/report"
	"github.com/seenimoa/narrative/internal/snapshot"
	"github.com/seenimoa/narrative/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global state set up by the root command.
var (
	cfg    *config.Config
	logger *slog.Logger
	runID  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "narrative",
	Short: "narrative — topic and sentiment narratives of news coverage",
	Long: `narrative fetches news articles matching a query, fits a topic model,
scores sentiment with a lexicon and reports how coverage changed by day,
topic, author and section.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		runID = logging.NewRunID()
		logger = logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			RunID:  runID,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(statusCmd)
}

// exitCode maps error classes to process exit codes.
func exitCode(err error) int {
	var insufficient *topic.InsufficientDataError
	switch {
	case errors.Is(err, config.ErrInvalidConfig):
		return 2
	case errors.Is(err, corpus.ErrUnauthorized):
		return 3
	case errors.Is(err, corpus.ErrNoArticles):
		return 4
	case errors.As(err, &insufficient):
		return 5
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("narrative %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, credentials and cache status",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  narrative — Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    Source:        %s\n", cfg.Source)
		fmt.Fprintf(out, "    Query:         %q (%s to %s)\n", cfg.Analysis.Query, orDash(cfg.Analysis.From), orDash(cfg.Analysis.To))
		fmt.Fprintf(out, "    Topics:        %d (seed %d, %d iterations)\n", cfg.Analysis.Topics, cfg.Analysis.Seed, cfg.Analysis.Iterations)
		fmt.Fprintf(out, "    Sentiment:     %s\n", cfg.Analysis.SentimentMethod)
		fmt.Fprintf(out, "    Reports:       %v → %s\n", cfg.Report.Formats, cfg.Report.OutDir)
		fmt.Fprintf(out, "    PDF engine:    %s\n", pdfEngineName())
		fmt.Fprintf(out, "    Snapshot:      %s\n", snapshotStatus(cfg.Snapshot.Path))
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(out, "    Problems:      %v\n", err)
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  API Keys:")
		keys := config.CheckAPIKeys(cfg)
		for _, k := range keys {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			if k.Required && !k.IsSet {
				status += " (required)"
			}
			fmt.Fprintf(out, "    %-25s %s\n", k.Name+":", status)
		}

		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func pdfEngineName() string {
	if report.IsPDFSupported() {
		return string(report.DetectPDFEngine())
	}
	return "none (HTML fallback)"
}

func snapshotStatus(path string) string {
	if path == "" {
		return "disabled"
	}
	if _, err := os.Stat(path); err != nil {
		return path + " (not created yet)"
	}
	n, err := snapshot.Count(path)
	if err != nil {
		return fmt.Sprintf("%s (unreadable: %v)", path, err)
	}
	return fmt.Sprintf("%s (%s articles)", path, utils.FormatCompact(n))
}
