package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/narrative/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Chart Renderer: ChartSpec in, SVG artifact out
// ════════════════════════════════════════════════════════════════════

// ChartKind is the shape of a chart.
type ChartKind string

const (
	KindBar     ChartKind = "bar"
	KindLine    ChartKind = "line"
	KindScatter ChartKind = "scatter"
)

// ErrUnknownChartKind is returned for a ChartSpec with an unsupported Kind.
var ErrUnknownChartKind = errors.New("unknown chart kind")

// ErrUnknownField is returned when a ChartSpec axis names no known column.
var ErrUnknownField = errors.New("unknown chart field")

// Summary row columns usable as chart axes.
const (
	FieldKey           = "key"
	FieldMeanSentiment = "mean_sentiment"
	FieldCount         = "count"
)

// Document row columns usable as chart axes.
const (
	FieldPublishedAt = "published_at"
	FieldScore       = "score"
	FieldTopic       = "topic"
	FieldWordCount   = "word_count"
)

// ChartSpec describes one chart. X and Y name columns of the rows passed
// to the renderer.
type ChartSpec struct {
	Kind  ChartKind
	X     string
	Y     string
	Title string
}

// Artifact is a rendered chart. Path is empty when nothing was written.
type Artifact struct {
	Kind  ChartKind
	Title string
	Path  string
	SVG   string
}

// Renderer turns aggregated rows into chart artifacts. The analysis core
// never inspects what a renderer produces.
type Renderer interface {
	Render(ctx context.Context, spec ChartSpec, rows []models.SummaryRow) (Artifact, error)
	RenderDocuments(ctx context.Context, spec ChartSpec, rows []models.DocumentRow) (Artifact, error)
}

// SVGRenderer draws charts as standalone SVG. With an empty OutDir charts
// are kept in memory only.
type SVGRenderer struct {
	OutDir string
	Config ChartConfig
}

// NewSVGRenderer returns a renderer writing into outDir.
func NewSVGRenderer(outDir string) *SVGRenderer {
	return &SVGRenderer{OutDir: outDir, Config: DefaultChartConfig()}
}

// Render draws summary rows. Bar and line charts take X=key; Y is
// mean_sentiment or count.
func (r *SVGRenderer) Render(ctx context.Context, spec ChartSpec, rows []models.SummaryRow) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	if spec.X != FieldKey {
		return Artifact{}, fmt.Errorf("%w: x=%q for summary rows", ErrUnknownField, spec.X)
	}
	yOf, err := summaryField(spec.Y)
	if err != nil {
		return Artifact{}, err
	}

	cfg := r.config(spec.Title)
	var svg string
	switch spec.Kind {
	case KindBar:
		items := make([]BarItem, len(rows))
		for i, row := range rows {
			items[i] = BarItem{Label: row.Key, Value: yOf(row), Note: fmt.Sprintf("n=%d", row.Count)}
		}
		svg = HorizontalBarChart(items, cfg)
	case KindLine:
		if spec.Y == FieldMeanSentiment {
			points := make([]TimelinePoint, len(rows))
			for i, row := range rows {
				points[i] = TimelinePoint{Label: row.Key, Value: row.MeanSentiment, Count: row.Count}
			}
			svg = TimelineChart(points, cfg)
		} else {
			values := make([]float64, len(rows))
			labels := make([]string, len(rows))
			for i, row := range rows {
				values[i], labels[i] = yOf(row), row.Key
			}
			svg = LineChart([]LineChartSeries{{Name: spec.Y, Values: values}}, labels, cfg)
		}
	case KindScatter:
		points := make([]ScatterPoint, len(rows))
		for i, row := range rows {
			points[i] = ScatterPoint{X: float64(row.Count), Y: yOf(row), Label: fmt.Sprintf("%s: %.2f (n=%d)", row.Key, row.MeanSentiment, row.Count)}
		}
		svg = ScatterChart(points, nil, cfg)
	default:
		return Artifact{}, fmt.Errorf("%w: %q", ErrUnknownChartKind, spec.Kind)
	}
	return r.write(spec, svg)
}

// RenderDocuments draws one mark per document. Scatter is the natural kind;
// X and Y may be published_at, score, topic or word_count.
func (r *SVGRenderer) RenderDocuments(ctx context.Context, spec ChartSpec, rows []models.DocumentRow) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	xOf, err := documentField(spec.X)
	if err != nil {
		return Artifact{}, err
	}
	yOf, err := documentField(spec.Y)
	if err != nil {
		return Artifact{}, err
	}

	cfg := r.config(spec.Title)
	var svg string
	switch spec.Kind {
	case KindScatter:
		points := make([]ScatterPoint, len(rows))
		for i, row := range rows {
			points[i] = ScatterPoint{
				X:     xOf(row),
				Y:     yOf(row),
				Group: row.Topic,
				Label: fmt.Sprintf("%s | %s | topic %d | %.2f", row.Day(), truncate(row.Headline, 80), row.Topic, row.Score),
			}
		}
		var tick func(float64) string
		if spec.X == FieldPublishedAt {
			tick = func(v float64) string { return time.Unix(int64(v), 0).UTC().Format("02 Jan 06") }
		}
		svg = ScatterChart(points, tick, cfg)
	case KindBar:
		items := make([]BarItem, len(rows))
		for i, row := range rows {
			items[i] = BarItem{Label: truncate(row.Headline, 40), Value: yOf(row), Note: row.Day()}
		}
		svg = HorizontalBarChart(items, cfg)
	case KindLine:
		values := make([]float64, len(rows))
		labels := make([]string, len(rows))
		for i, row := range rows {
			values[i], labels[i] = yOf(row), row.Day()
		}
		svg = LineChart([]LineChartSeries{{Name: spec.Y, Values: values}}, labels, cfg)
	default:
		return Artifact{}, fmt.Errorf("%w: %q", ErrUnknownChartKind, spec.Kind)
	}
	return r.write(spec, svg)
}

func (r *SVGRenderer) config(title string) ChartConfig {
	cfg := r.Config
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	cfg.Title = title
	return cfg
}

func (r *SVGRenderer) write(spec ChartSpec, svg string) (Artifact, error) {
	a := Artifact{Kind: spec.Kind, Title: spec.Title, SVG: svg}
	if r.OutDir == "" {
		return a, nil
	}
	if err := os.MkdirAll(r.OutDir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("creating chart directory: %w", err)
	}
	a.Path = filepath.Join(r.OutDir, Slug(spec.Title)+".svg")
	if err := os.WriteFile(a.Path, []byte(svg), 0o644); err != nil {
		return Artifact{}, fmt.Errorf("writing chart %s: %w", a.Path, err)
	}
	return a, nil
}

func summaryField(name string) (func(models.SummaryRow) float64, error) {
	switch name {
	case FieldMeanSentiment:
		return func(r models.SummaryRow) float64 { return r.MeanSentiment }, nil
	case FieldCount:
		return func(r models.SummaryRow) float64 { return float64(r.Count) }, nil
	default:
		return nil, fmt.Errorf("%w: y=%q for summary rows", ErrUnknownField, name)
	}
}

func documentField(name string) (func(models.DocumentRow) float64, error) {
	switch name {
	case FieldPublishedAt:
		return func(r models.DocumentRow) float64 { return float64(r.PublishedAt.Unix()) }, nil
	case FieldScore:
		return func(r models.DocumentRow) float64 { return r.Score }, nil
	case FieldTopic:
		return func(r models.DocumentRow) float64 { return float64(r.Topic) }, nil
	case FieldWordCount:
		return func(r models.DocumentRow) float64 { return float64(r.WordCount) }, nil
	default:
		return nil, fmt.Errorf("%w: %q for document rows", ErrUnknownField, name)
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a chart title into a file name stem.
func Slug(title string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if s == "" {
		return "chart"
	}
	return s
}

// ════════════════════════════════════════════════════════════════════
// Standard chart set for a run
// ════════════════════════════════════════════════════════════════════

// StandardCharts renders the charts every report carries: sentiment by day,
// topic, author and section, and a per-document scatter.
func StandardCharts(ctx context.Context, r Renderer, res *models.RunResult) ([]Artifact, error) {
	var out []Artifact
	summaries := []struct {
		spec ChartSpec
		rows []models.SummaryRow
	}{
		{ChartSpec{Kind: KindLine, X: FieldKey, Y: FieldMeanSentiment, Title: "Mean sentiment by day"}, res.Summary.ByDay},
		{ChartSpec{Kind: KindBar, X: FieldKey, Y: FieldMeanSentiment, Title: "Mean sentiment by topic"}, topicRows(res.Summary.ByTopic)},
		{ChartSpec{Kind: KindBar, X: FieldKey, Y: FieldMeanSentiment, Title: "Mean sentiment by author"}, res.Summary.ByAuthor},
		{ChartSpec{Kind: KindBar, X: FieldKey, Y: FieldMeanSentiment, Title: "Mean sentiment by section"}, res.Summary.BySection},
	}
	for _, s := range summaries {
		a, err := r.Render(ctx, s.spec, s.rows)
		if err != nil {
			return out, fmt.Errorf("render %q: %w", s.spec.Title, err)
		}
		out = append(out, a)
	}

	a, err := r.RenderDocuments(ctx, ChartSpec{Kind: KindScatter, X: FieldPublishedAt, Y: FieldScore, Title: "Article sentiment over time"}, res.Documents)
	if err != nil {
		return out, fmt.Errorf("render document scatter: %w", err)
	}
	return append(out, a), nil
}

// topicRows relabels numeric topic keys for display.
func topicRows(rows []models.SummaryRow) []models.SummaryRow {
	out := make([]models.SummaryRow, len(rows))
	for i, r := range rows {
		out[i] = r
		if n, err := strconv.Atoi(r.Key); err == nil {
			out[i].Key = fmt.Sprintf("Topic %d", n+1)
		}
	}
	return out
}
