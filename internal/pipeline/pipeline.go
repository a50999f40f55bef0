// Package pipeline runs one narrative analysis end to end: fetch, clean,
// tokenize, topic model, sentiment and aggregation. Each stage returns a new
// value and the context is checked between stages.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/narrative/internal/analysis/aggregate"
	"github.com/seenimoa/narrative/internal/analysis/sentiment"
	"github.com/seenimoa/narrative/internal/analysis/termfreq"
	"github.com/seenimoa/narrative/internal/analysis/text"
	"github.com/seenimoa/narrative/internal/analysis/topic"
	"github.com/seenimoa/narrative/internal/corpus"
	"github.com/seenimoa/narrative/internal/snapshot"
	"github.com/seenimoa/narrative/pkg/models"
	"github.com/seenimoa/narrative/pkg/utils"
)

// Config holds everything a run needs besides its source and scorer.
type Config struct {
	RunID       string
	Query       string
	From        time.Time
	To          time.Time
	Topic       topic.Config
	TopTerms    int // terms listed per topic
	TopAuthors  int // 0 keeps every author
	Workers     int // per-document fan-out
	Stopwords   text.StopwordSet
	DropNumeric bool
	Snapshot    string // when set, the cleaned corpus is saved here after fetching
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Query:       "ChatGPT",
		Topic:       topic.DefaultConfig(),
		TopTerms:    10,
		TopAuthors:  10,
		Workers:     4,
		Stopwords:   text.DefaultStopwords(),
		DropNumeric: true,
	}
}

// statsSource is a Source that also reports what it skipped.
type statsSource interface {
	FetchWithStats(ctx context.Context, query string, from, to time.Time) ([]models.Article, corpus.FetchStats, error)
}

// Runner executes runs against one source.
type Runner struct {
	source corpus.Source
	scorer *sentiment.Scorer
	cfg    Config
	logger *slog.Logger
}

// New creates a Runner. A nil logger discards output.
func New(src corpus.Source, scorer *sentiment.Scorer, cfg Config, logger *slog.Logger) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{source: src, scorer: scorer, cfg: cfg, logger: logger}
}

// Run fetches the corpus and analyzes it.
func (r *Runner) Run(ctx context.Context) (*models.RunResult, error) {
	start := time.Now()

	docs, skipped, err := r.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	res, err := r.Analyze(ctx, docs)
	if err != nil {
		return nil, err
	}
	res.Stats.Skipped = skipped
	res.Stats.Duration = time.Since(start)
	return res, nil
}

// Fetch pulls articles from the source and cleans them. It returns the
// cleaned corpus and the number of malformed records the source skipped.
func (r *Runner) Fetch(ctx context.Context) ([]models.CleanedArticle, int, error) {
	r.logger.Info("fetching articles",
		"source", r.source.Name(),
		"query", r.cfg.Query,
		"from", utils.FormatDay(r.cfg.From),
		"to", utils.FormatDay(r.cfg.To),
	)

	var (
		articles []models.Article
		skipped  int
		err      error
	)
	if s, ok := r.source.(statsSource); ok {
		var stats corpus.FetchStats
		articles, stats, err = s.FetchWithStats(ctx, r.cfg.Query, r.cfg.From, r.cfg.To)
		skipped = len(stats.Skipped)
		r.logger.Info("fetch complete", "articles", len(articles), "pages", stats.Pages, "requests", stats.Requests, "retries", stats.Retries, "skipped", skipped)
	} else {
		articles, err = r.source.Fetch(ctx, r.cfg.Query, r.cfg.From, r.cfg.To)
		r.logger.Info("fetch complete", "articles", len(articles))
	}
	if err != nil {
		return nil, skipped, fmt.Errorf("fetch: %w", err)
	}
	if len(articles) == 0 {
		return nil, skipped, corpus.ErrNoArticles
	}

	cleaned, err := fanOut(ctx, r.cfg.Workers, articles, text.Clean)
	if err != nil {
		return nil, skipped, fmt.Errorf("clean: %w", err)
	}
	sortCleaned(cleaned)

	if r.cfg.Snapshot != "" {
		if err := snapshot.Save(r.cfg.Snapshot, cleaned); err != nil {
			return nil, skipped, fmt.Errorf("save snapshot: %w", err)
		}
		r.logger.Info("snapshot saved", "path", r.cfg.Snapshot, "articles", len(cleaned))
	}
	return cleaned, skipped, nil
}

// Analyze runs every stage after cleaning over docs.
func (r *Runner) Analyze(ctx context.Context, docs []models.CleanedArticle) (*models.RunResult, error) {
	start := time.Now()
	if len(docs) == 0 {
		return nil, corpus.ErrNoArticles
	}
	docs = append([]models.CleanedArticle(nil), docs...)
	sortCleaned(docs)

	// tokens
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tok := text.NewTokenizer(r.cfg.Stopwords, r.cfg.DropNumeric)
	records := tok.TokenRecords(docs)
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	matrix := termfreq.Build(ids, records)
	empty := matrix.EmptyDocuments()
	r.logger.Info("term matrix built",
		"documents", matrix.NumDocuments(),
		"tokens", len(records),
		"vocabulary", len(matrix.Vocabulary()),
		"empty_documents", len(empty),
	)
	if len(empty) > 0 {
		r.logger.Warn("documents with no token after filtering", "count", len(empty), "ids", empty)
	}

	// topics
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	model, err := topic.Fit(matrix, r.cfg.Topic)
	if err != nil {
		return nil, fmt.Errorf("topic model: %w", err)
	}
	r.logger.Info("topic model fitted", "topics", model.K(), "iterations", r.cfg.Topic.Iterations, "seed", r.cfg.Topic.Seed)

	// sentiment
	scores, err := fanOut(ctx, r.cfg.Workers, docs, r.scorer.ScoreArticle)
	if err != nil {
		return nil, fmt.Errorf("sentiment: %w", err)
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].DocumentID != scores[j].DocumentID {
			return scores[i].DocumentID < scores[j].DocumentID
		}
		return scores[i].PublishedAt.Before(scores[j].PublishedAt)
	})
	r.logger.Info("sentiment scored", "method", r.scorer.Method(), "documents", len(scores))

	// aggregate
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	articles := make([]models.Article, len(docs))
	for i, d := range docs {
		articles[i] = d.Article
	}
	summary, joined := aggregate.Run(scores, model.Assignments(), articles, aggregate.Options{TopAuthors: r.cfg.TopAuthors})
	if len(joined.Dropped) > 0 {
		r.logger.Warn("documents dropped in join", "count", len(joined.Dropped), "ids", joined.Dropped)
	}

	terms := make([][]models.TopicTerm, model.K())
	for k := range terms {
		terms[k] = model.TopTerms(k, r.cfg.TopTerms)
	}

	res := &models.RunResult{
		RunID:      r.cfg.RunID,
		Query:      r.cfg.Query,
		From:       r.cfg.From,
		To:         r.cfg.To,
		Method:     string(r.scorer.Method()),
		Topics:     model.K(),
		Summary:    summary,
		Documents:  joined.Rows,
		TopicTerms: terms,
		Stats: models.RunStats{
			Fetched:        len(docs),
			Documents:      matrix.NumDocuments(),
			EmptyDocuments: len(empty),
			Tokens:         len(records),
			Vocabulary:     len(matrix.Vocabulary()),
			Dropped:        len(joined.Dropped),
			Duration:       time.Since(start),
		},
	}
	r.logger.Info("run complete",
		"documents", len(res.Documents),
		"mean_sentiment", res.MeanSentiment(),
		"dropped", res.Stats.Dropped,
		"duration", res.Stats.Duration,
	)
	return res, nil
}

// fanOut applies fn to every element of in on at most workers goroutines.
// Output order matches input order.
func fanOut[T, R any](ctx context.Context, workers int, in []T, fn func(T) R) ([]R, error) {
	out := make([]R, len(in))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, v := range in {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = fn(v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func sortCleaned(docs []models.CleanedArticle) {
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].ID != docs[j].ID {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].PublishedAt.Before(docs[j].PublishedAt)
	})
}
