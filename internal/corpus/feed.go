package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/narrative/internal/analysis/text"
	"github.com/seenimoa/narrative/pkg/models"
	"github.com/seenimoa/narrative/pkg/utils"
)

// FeedConfig names one RSS or Atom feed.
type FeedConfig struct {
	Name    string `mapstructure:"name"`
	URL     string `mapstructure:"url"`
	Section string `mapstructure:"section"` // used when items carry no category
}

// Feed reads articles from RSS/Atom feeds. Feeds are not searchable, so
// items are filtered locally by query terms and publication date.
type Feed struct {
	feeds   []FeedConfig
	parser  *gofeed.Parser
	limiter *RateLimiter
	retry   RetryPolicy
	log     *slog.Logger
}

// NewFeed creates a feed source over the given feeds.
func NewFeed(feeds []FeedConfig, timeout time.Duration, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := gofeed.NewParser()
	p.UserAgent = DefaultUserAgent
	if timeout > 0 {
		p.Client = newTimeoutClient(timeout)
	}
	return &Feed{
		feeds:   feeds,
		parser:  p,
		limiter: NewRateLimiter(2, time.Second),
		retry:   DefaultRetryPolicy(),
		log:     logger.With("source", "feed"),
	}
}

// Name returns the data source name.
func (f *Feed) Name() string { return "RSS" }

// Fetch reads every feed concurrently and returns the matching items
// ordered by publication time. A feed that fails is logged and skipped
// unless every feed fails.
func (f *Feed) Fetch(ctx context.Context, query string, from, to time.Time) ([]models.Article, error) {
	articles, _, err := f.FetchWithStats(ctx, query, from, to)
	return articles, err
}

// FetchWithStats is Fetch plus request and skip counters. Each feed read
// counts as one page.
func (f *Feed) FetchWithStats(ctx context.Context, query string, from, to time.Time) ([]models.Article, FetchStats, error) {
	var stats FetchStats
	if len(f.feeds) == 0 {
		return nil, stats, fmt.Errorf("%s: no feeds configured", f.Name())
	}

	var (
		mu       sync.Mutex
		articles []models.Article
		failures []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, fc := range f.feeds {
		g.Go(func() error {
			items, skipped, attempts, err := f.fetchOne(gctx, fc)
			mu.Lock()
			defer mu.Unlock()
			stats.Requests += attempts
			if attempts > 0 {
				stats.Retries += attempts - 1
			}
			if err != nil {
				f.log.Warn("feed failed", "feed", fc.Name, "error", err)
				failures = append(failures, err)
				return nil
			}
			stats.Pages++
			stats.Skipped = append(stats.Skipped, skipped...)
			articles = append(articles, filterArticles(items, query, from, to)...)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	if len(failures) == len(f.feeds) {
		return nil, stats, errors.Join(failures...)
	}
	sort.SliceStable(stats.Skipped, func(i, j int) bool { return stats.Skipped[i].ID < stats.Skipped[j].ID })

	sort.SliceStable(articles, func(i, j int) bool {
		if !articles[i].PublishedAt.Equal(articles[j].PublishedAt) {
			return articles[i].PublishedAt.Before(articles[j].PublishedAt)
		}
		return articles[i].ID < articles[j].ID
	})
	return dedupe(articles), stats, nil
}

func (f *Feed) fetchOne(ctx context.Context, fc FeedConfig) ([]models.Article, []*MalformedRecordError, int, error) {
	var feed *gofeed.Feed
	attempts, err := f.retry.Do(ctx, func(ctx context.Context) error {
		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}
		var perr error
		feed, perr = f.parser.ParseURLWithContext(fc.URL, ctx)
		return classifyFeedError(perr)
	})
	if err != nil {
		return nil, nil, attempts, &FetchError{Source: fc.Name, URL: fc.URL, Attempts: attempts, Err: err}
	}

	out := make([]models.Article, 0, len(feed.Items))
	var skipped []*MalformedRecordError
	for _, item := range feed.Items {
		a, merr := itemToArticle(item, fc)
		if merr != nil {
			f.log.Warn("skipping malformed record", "feed", fc.Name, "id", merr.ID, "field", merr.Field, "reason", merr.Reason)
			skipped = append(skipped, merr)
			continue
		}
		out = append(out, a)
	}
	return out, skipped, attempts, nil
}

// classifyFeedError maps gofeed's HTTP failures onto the corpus taxonomy so
// the retry policy treats them like API failures.
func classifyFeedError(err error) error {
	if err == nil {
		return nil
	}
	var he gofeed.HTTPError
	if errors.As(err, &he) {
		return &HTTPError{StatusCode: he.StatusCode, Status: he.Status}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrTransient, err)
}

func itemToArticle(item *gofeed.Item, fc FeedConfig) (models.Article, *MalformedRecordError) {
	id := item.GUID
	if id == "" {
		id = item.Link
	}
	if id == "" {
		return models.Article{}, &MalformedRecordError{Field: "guid", Reason: "is empty"}
	}

	published := item.PublishedParsed
	if published == nil {
		published = item.UpdatedParsed
	}
	if published == nil {
		return models.Article{}, &MalformedRecordError{ID: id, Field: "published", Reason: "is missing"}
	}

	body := text.HTMLToText(item.Content)
	if body == "" {
		body = text.HTMLToText(item.Description)
	}
	if body == "" {
		return models.Article{}, &MalformedRecordError{ID: id, Field: "content", Reason: "is empty"}
	}

	var names []string
	for _, p := range item.Authors {
		if p != nil && strings.TrimSpace(p.Name) != "" {
			names = append(names, strings.TrimSpace(p.Name))
		}
	}
	section := fc.Section
	if len(item.Categories) > 0 && section == "" {
		section = item.Categories[0]
	}

	return models.Article{
		ID:          id,
		SectionName: section,
		PublishedAt: published.UTC(),
		Byline:      strings.Join(names, " and "),
		Headline:    strings.TrimSpace(item.Title),
		BodyText:    body,
		WordCount:   len(strings.Fields(body)),
		WebURL:      item.Link,
	}, nil
}

// filterArticles keeps articles published within [from, to] (whole days,
// UTC) whose headline or body contains every query term.
func filterArticles(in []models.Article, query string, from, to time.Time) []models.Article {
	terms := strings.Fields(strings.ToLower(query))
	out := in[:0:0]
	for _, a := range in {
		if !InRange(a.PublishedAt, from, to) {
			continue
		}
		if len(terms) > 0 && !containsAll(strings.ToLower(a.Headline+" "+a.BodyText), terms) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// InRange reports whether t falls on a day within [from, to]. Zero bounds
// are open.
func InRange(t, from, to time.Time) bool {
	return utils.InWindow(t, from, to)
}

func containsAll(s string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(s, t) {
			return false
		}
	}
	return true
}

// dedupe drops repeated ids, keeping the first. Syndicated items often
// appear in more than one feed.
func dedupe(in []models.Article) []models.Article {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, a := range in {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		out = append(out, a)
	}
	return out
}
