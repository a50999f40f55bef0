package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/narrative/internal/analysis/text"
	"github.com/seenimoa/narrative/pkg/models"
)

// DefaultGuardianURL is the Guardian Open Platform content API.
const DefaultGuardianURL = "https://content.guardianapis.com"

// GuardianConfig holds everything the Guardian source needs. It is passed
// at construction; the source keeps no process-wide session.
type GuardianConfig struct {
	BaseURL           string
	APIKey            string
	PageSize          int           // results per page, the API caps this at 200
	MaxPages          int           // stop after this many pages, 0 = all
	Section           string        // optional section filter, e.g. "technology"
	Tag               string        // optional tag filter, e.g. "type/article"
	Retry             RetryPolicy   // per-request retries
	RequestTimeout    time.Duration // hard timeout per request
	RequestsPerSecond int           // client-side rate limit
}

// DefaultGuardianConfig returns production defaults without an API key.
func DefaultGuardianConfig() GuardianConfig {
	return GuardianConfig{
		BaseURL:           DefaultGuardianURL,
		PageSize:          50,
		Tag:               "type/article",
		Retry:             DefaultRetryPolicy(),
		RequestTimeout:    30 * time.Second,
		RequestsPerSecond: 5,
	}
}

// Guardian fetches articles from the Guardian content API search endpoint.
type Guardian struct {
	cfg     GuardianConfig
	client  *http.Client
	limiter *RateLimiter
	log     *slog.Logger
}

// NewGuardian creates a Guardian source. A nil logger discards output.
func NewGuardian(cfg GuardianConfig, logger *slog.Logger) *Guardian {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGuardianURL
	}
	if cfg.PageSize <= 0 || cfg.PageSize > 200 {
		cfg.PageSize = 50
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Guardian{
		cfg:     cfg,
		client:  &http.Client{},
		limiter: NewRateLimiter(cfg.RequestsPerSecond, time.Second/time.Duration(cfg.RequestsPerSecond)),
		log:     logger.With("source", "guardian"),
	}
}

// Name returns the data source name.
func (g *Guardian) Name() string { return "The Guardian" }

// Fetch returns every article matching query between from and to.
func (g *Guardian) Fetch(ctx context.Context, query string, from, to time.Time) ([]models.Article, error) {
	articles, _, err := g.FetchWithStats(ctx, query, from, to)
	return articles, err
}

// FetchWithStats is Fetch plus request and skip counters.
func (g *Guardian) FetchWithStats(ctx context.Context, query string, from, to time.Time) ([]models.Article, FetchStats, error) {
	var stats FetchStats
	if g.cfg.APIKey == "" {
		return nil, stats, &FetchError{Source: g.Name(), URL: g.cfg.BaseURL, Err: ErrUnauthorized}
	}

	var articles []models.Article
	for page := 1; ; page++ {
		resp, attempts, err := g.fetchPage(ctx, query, from, to, page)
		stats.Requests += attempts
		stats.Retries += attempts - 1
		if err != nil {
			return nil, stats, err
		}
		stats.Pages++

		for _, r := range resp.Results {
			a, merr := r.toArticle()
			if merr != nil {
				stats.Skipped = append(stats.Skipped, merr)
				g.log.Warn("skipping malformed record", "id", merr.ID, "field", merr.Field, "reason", merr.Reason)
				continue
			}
			articles = append(articles, a)
		}

		g.log.Debug("fetched page", "page", resp.CurrentPage, "pages", resp.Pages, "total", resp.Total)
		if resp.CurrentPage >= resp.Pages || len(resp.Results) == 0 {
			break
		}
		if g.cfg.MaxPages > 0 && page >= g.cfg.MaxPages {
			g.log.Warn("page limit reached", "max_pages", g.cfg.MaxPages, "pages", resp.Pages)
			break
		}
	}

	// Results shift between pages while paginating, so an id can repeat.
	n := len(articles)
	articles = dedupe(articles)
	g.log.Info("fetch complete", "articles", len(articles), "pages", stats.Pages,
		"retries", stats.Retries, "skipped", len(stats.Skipped), "duplicates", n-len(articles))
	return articles, stats, nil
}

func (g *Guardian) fetchPage(ctx context.Context, query string, from, to time.Time, page int) (*guardianResponse, int, error) {
	u := g.searchURL(query, from, to, page)

	var out guardianResponse
	attempts, err := g.cfg.Retry.Do(ctx, func(ctx context.Context) error {
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}
		body, err := doGet(ctx, g.client, u, g.cfg.RequestTimeout, nil)
		if err != nil {
			if Retryable(err) {
				g.log.Warn("request failed, will retry", "page", page, "error", err)
			}
			return err
		}
		defer body.Close()

		var env guardianEnvelope
		if err := json.NewDecoder(body).Decode(&env); err != nil {
			return fmt.Errorf("%w: decode page %d: %v", ErrTransient, page, err)
		}
		if env.Response.Status != "ok" {
			return fmt.Errorf("api status %q: %s", env.Response.Status, env.Response.Message)
		}
		out = env.Response
		return nil
	})
	if err != nil {
		return nil, attempts, &FetchError{Source: g.Name(), URL: redact(u), Attempts: attempts, Err: err}
	}
	return &out, attempts, nil
}

func (g *Guardian) searchURL(query string, from, to time.Time, page int) string {
	q := url.Values{}
	q.Set("q", query)
	if !from.IsZero() {
		q.Set("from-date", from.Format(models.DayLayout))
	}
	if !to.IsZero() {
		q.Set("to-date", to.Format(models.DayLayout))
	}
	if g.cfg.Section != "" {
		q.Set("section", g.cfg.Section)
	}
	if g.cfg.Tag != "" {
		q.Set("tag", g.cfg.Tag)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("page-size", strconv.Itoa(g.cfg.PageSize))
	q.Set("order-by", "oldest")
	q.Set("show-fields", "byline,headline,bodyText,body,wordcount")
	q.Set("api-key", g.cfg.APIKey)
	return strings.TrimRight(g.cfg.BaseURL, "/") + "/search?" + q.Encode()
}

// --- Wire format ---

type guardianEnvelope struct {
	Response guardianResponse `json:"response"`
}

type guardianResponse struct {
	Status      string           `json:"status"`
	Message     string           `json:"message,omitempty"`
	Total       int              `json:"total"`
	StartIndex  int              `json:"startIndex"`
	PageSize    int              `json:"pageSize"`
	CurrentPage int              `json:"currentPage"`
	Pages       int              `json:"pages"`
	Results     []guardianResult `json:"results"`
}

type guardianResult struct {
	ID                 string         `json:"id"`
	Type               string         `json:"type"`
	SectionID          string         `json:"sectionId"`
	SectionName        string         `json:"sectionName"`
	WebPublicationDate string         `json:"webPublicationDate"`
	WebTitle           string         `json:"webTitle"`
	WebURL             string         `json:"webUrl"`
	Fields             guardianFields `json:"fields"`
}

type guardianFields struct {
	Byline    string `json:"byline"`
	Headline  string `json:"headline"`
	BodyText  string `json:"bodyText"`
	Body      string `json:"body"`
	WordCount string `json:"wordcount"`
}

// toArticle validates a search result. id, publication date and body text
// are required; everything else degrades to a default.
func (r guardianResult) toArticle() (models.Article, *MalformedRecordError) {
	if strings.TrimSpace(r.ID) == "" {
		return models.Article{}, &MalformedRecordError{Field: "id", Reason: "is empty"}
	}
	published, err := time.Parse(time.RFC3339, r.WebPublicationDate)
	if err != nil {
		return models.Article{}, &MalformedRecordError{ID: r.ID, Field: "webPublicationDate", Reason: fmt.Sprintf("unparseable %q", r.WebPublicationDate)}
	}

	body := strings.TrimSpace(r.Fields.BodyText)
	if body == "" {
		body = text.HTMLToText(r.Fields.Body)
	}
	if body == "" {
		return models.Article{}, &MalformedRecordError{ID: r.ID, Field: "bodyText", Reason: "is empty"}
	}

	headline := r.Fields.Headline
	if headline == "" {
		headline = r.WebTitle
	}

	wc, err := strconv.Atoi(strings.TrimSpace(r.Fields.WordCount))
	if err != nil || wc < 0 {
		wc = len(strings.Fields(body))
	}

	return models.Article{
		ID:          r.ID,
		SectionName: r.SectionName,
		PublishedAt: published.UTC(),
		Byline:      strings.TrimSpace(r.Fields.Byline),
		Headline:    headline,
		BodyText:    body,
		WordCount:   wc,
		WebURL:      r.WebURL,
	}, nil
}
