package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seenimoa/narrative/internal/analysis/sentiment"
	"github.com/seenimoa/narrative/internal/analysis/topic"
	"github.com/seenimoa/narrative/internal/corpus"
	"github.com/seenimoa/narrative/internal/snapshot"
	"github.com/seenimoa/narrative/pkg/models"
)

type fakeSource struct {
	articles []models.Article
	err      error
	calls    int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(ctx context.Context, query string, from, to time.Time) ([]models.Article, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.articles, f.err
}

type statsFake struct {
	fakeSource
	skipped int
}

func (s *statsFake) FetchWithStats(ctx context.Context, query string, from, to time.Time) ([]models.Article, corpus.FetchStats, error) {
	arts, err := s.Fetch(ctx, query, from, to)
	stats := corpus.FetchStats{Requests: 1, Pages: 1}
	for i := range s.skipped {
		stats.Skipped = append(stats.Skipped, &corpus.MalformedRecordError{ID: fmt.Sprintf("bad-%d", i), Field: "body", Reason: "missing"})
	}
	return arts, stats, err
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// scenarioArticles scores +1, -1 on 2023-01-15 and +2 on 2023-02-01 with
// the afinn lexicon.
func scenarioArticles() []models.Article {
	return []models.Article{
		{ID: "c", SectionName: "Business", PublishedAt: at("2023-02-01T08:00:00Z"), Byline: "Alex Hern",
			Headline: "Investors", BodyText: "Investors see a benefit in chatbot market shares and venture funding rounds."},
		{ID: "a", SectionName: "Technology", PublishedAt: at("2023-01-15T09:00:00Z"), Byline: "Alex Hern and Dan Milmo",
			Headline: "Regulators", BodyText: "<p>Regulators <b>agree</b> chatbot language models need oversight.</p>"},
		{ID: "b", SectionName: "Education", PublishedAt: at("2023-01-15T12:30:00Z"), Byline: "Sally Weale",
			Headline: "Universities", BodyText: "Universities admit essay marking with chatbot tools troubles lecturers."},
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RunID = "run-1"
	cfg.Topic = topic.Config{K: 2, Seed: 7, Iterations: 30, Alpha: 0.1, Eta: 0.01}
	cfg.TopTerms = 3
	cfg.Workers = 2
	return cfg
}

func newScorer(t *testing.T) *sentiment.Scorer {
	t.Helper()
	s, err := sentiment.NewScorer(sentiment.MethodAFINN, nil)
	require.NoError(t, err)
	return s
}

func TestRunDailyScenario(t *testing.T) {
	src := &fakeSource{articles: scenarioArticles()}
	res, err := New(src, newScorer(t), testConfig(), nil).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, []models.SummaryRow{
		{GroupBy: models.GroupByDay, Key: "2023-01-15", MeanSentiment: 0, Count: 2},
		{GroupBy: models.GroupByDay, Key: "2023-02-01", MeanSentiment: 2, Count: 1},
	}, res.Summary.ByDay)

	require.Equal(t, "run-1", res.RunID)
	require.Equal(t, "afinn", res.Method)
	require.Equal(t, 2, res.Topics)
	require.Len(t, res.TopicTerms, 2)
	require.Len(t, res.TopicTerms[0], 3)
	require.Len(t, res.Documents, 3)
	require.Equal(t, []string{"a", "b", "c"}, []string{res.Documents[0].DocumentID, res.Documents[1].DocumentID, res.Documents[2].DocumentID})
	require.Equal(t, []string{"Alex Hern", "Dan Milmo"}, res.Documents[0].Authors)
	require.Zero(t, res.Summary.Dropped)
	require.Equal(t, 3, res.Stats.Fetched)
	require.Positive(t, res.Stats.Vocabulary)
	require.Positive(t, res.Stats.Tokens)
}

func TestRunIsDeterministic(t *testing.T) {
	run := func(workers int) *models.RunResult {
		cfg := testConfig()
		cfg.Workers = workers
		res, err := New(&fakeSource{articles: scenarioArticles()}, newScorer(t), cfg, nil).Run(context.Background())
		require.NoError(t, err)
		res.Stats.Duration = 0
		return res
	}

	first := run(1)
	require.Equal(t, first, run(1), "same seed must give the same result")
	require.Equal(t, first, run(8), "worker count must not change the result")
}

func TestRunEmptySource(t *testing.T) {
	_, err := New(&fakeSource{}, newScorer(t), testConfig(), nil).Run(context.Background())
	require.ErrorIs(t, err, corpus.ErrNoArticles)
}

func TestRunSourceErrorIsWrapped(t *testing.T) {
	src := &fakeSource{err: &corpus.FetchError{Source: "fake", Attempts: 3, Err: corpus.ErrRateLimited}}
	_, err := New(src, newScorer(t), testConfig(), nil).Run(context.Background())

	require.ErrorIs(t, err, corpus.ErrRateLimited)
	var fe *corpus.FetchError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, 3, fe.Attempts)
}

func TestRunInsufficientData(t *testing.T) {
	cfg := testConfig()
	cfg.Topic.K = 50
	_, err := New(&fakeSource{articles: scenarioArticles()}, newScorer(t), cfg, nil).Run(context.Background())

	var insufficient *topic.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, 50, insufficient.K)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(&fakeSource{articles: scenarioArticles()}, newScorer(t), testConfig(), nil).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeCancelledBetweenStages(t *testing.T) {
	r := New(&fakeSource{articles: scenarioArticles()}, newScorer(t), testConfig(), nil)
	docs, _, err := r.Fetch(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Analyze(ctx, docs)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFetchCleansAndSavesSnapshot(t *testing.T) {
	cfg := testConfig()
	cfg.Snapshot = filepath.Join(t.TempDir(), "cache", "corpus.csv")

	src := &statsFake{fakeSource: fakeSource{articles: scenarioArticles()}, skipped: 2}
	docs, skipped, err := New(src, newScorer(t), cfg, nil).Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, skipped)
	require.Len(t, docs, 3)
	require.Equal(t, "a", docs[0].ID)
	require.Equal(t, "Regulators agree chatbot language models need oversight", docs[0].BodyTextCleaned)

	saved, err := snapshot.Load(cfg.Snapshot)
	require.NoError(t, err)
	require.Equal(t, docs, saved)
}

func TestRunReportsSkipped(t *testing.T) {
	src := &statsFake{fakeSource: fakeSource{articles: scenarioArticles()}, skipped: 4}
	res, err := New(src, newScorer(t), testConfig(), nil).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, res.Stats.Skipped)
}

func TestAnalyzeFromSnapshotMatchesRun(t *testing.T) {
	cfg := testConfig()
	cfg.Snapshot = filepath.Join(t.TempDir(), "corpus.db")
	r := New(&fakeSource{articles: scenarioArticles()}, newScorer(t), cfg, nil)

	live, err := r.Run(context.Background())
	require.NoError(t, err)

	docs, err := snapshot.Load(cfg.Snapshot)
	require.NoError(t, err)
	cached, err := r.Analyze(context.Background(), docs)
	require.NoError(t, err)

	require.Equal(t, live.Summary, cached.Summary)
	require.Equal(t, live.Documents, cached.Documents)
}

func TestAnalyzeEmptyDocuments(t *testing.T) {
	arts := scenarioArticles()
	arts = append(arts, models.Article{ID: "z", PublishedAt: at("2023-01-20T10:00:00Z"), BodyText: "the and of 2023"})

	res, err := New(&fakeSource{articles: arts}, newScorer(t), testConfig(), nil).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Stats.EmptyDocuments)
	require.Len(t, res.Documents, 4, "an empty document keeps its row")
	require.Equal(t, 0, res.Documents[3].Topic)
	require.Zero(t, res.Documents[3].Score)
}

func TestFanOutPreservesOrder(t *testing.T) {
	in := make([]int, 100)
	for i := range in {
		in[i] = i
	}
	out, err := fanOut(context.Background(), 7, in, func(v int) string { return fmt.Sprint(v * 2) })
	require.NoError(t, err)
	for i, v := range out {
		require.Equal(t, fmt.Sprint(i*2), v)
	}
}

func TestFanOutCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fanOut(ctx, 2, []int{1, 2, 3}, func(v int) int { return v })
	require.ErrorIs(t, err, context.Canceled)
}
