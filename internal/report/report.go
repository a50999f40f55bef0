package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/narrative/internal/analysis/aggregate"
	"github.com/seenimoa/narrative/internal/analysis/sentiment"
	"github.com/seenimoa/narrative/pkg/models"
	"github.com/seenimoa/narrative/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report Generator: Orchestrates chart + template rendering
// ════════════════════════════════════════════════════════════════════

// ReportFormat specifies the output format.
type ReportFormat string

const (
	FormatHTML ReportFormat = "html"
	FormatPDF  ReportFormat = "pdf"
	FormatText ReportFormat = "text"
)

// ReportConfig controls report generation behaviour.
type ReportConfig struct {
	Title     string      // custom report title (optional)
	Author    string      // author name (optional, default: "narrative")
	Headlines int         // most positive / negative headlines to list (default: 5)
	Rolling   int         // trailing window in days for the smoothed daily mean (default: 7)
	ChartCfg  ChartConfig // chart rendering config
}

// DefaultReportConfig returns sensible defaults.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Title:     "News Narrative Report",
		Author:    "narrative",
		Headlines: 5,
		Rolling:   7,
		ChartCfg:  DefaultChartConfig(),
	}
}

// ════════════════════════════════════════════════════════════════════
// Report Data: Flattened for template rendering
// ════════════════════════════════════════════════════════════════════

// ReportData is the template model passed to HTML templates.
type ReportData struct {
	// Header
	Title       string
	Query       string
	Window      string
	Method      string
	Author      string
	RunID       string
	GeneratedAt string

	// Headline numbers
	Articles      int
	Skipped       int
	Dropped       int
	Vocabulary    int
	Topics        int
	MeanSentiment string
	MeanClass     string
	PositiveShare string
	Duration      string
	DaysCovered   int // days in the window with at least one article
	WindowDays    int // 0 when the window is open-ended

	// Charts (embedded SVG strings)
	DayChart     template.HTML
	TopicChart   template.HTML
	AuthorChart  template.HTML
	SectionChart template.HTML
	DocChart     template.HTML
	GaugeChart   template.HTML

	from, to time.Time // run window, for listing quiet days

	// Tables
	TopicTerms   []TopicRow
	ByDay        []GroupRow
	Rolling      []GroupRow // trailing mean by day, empty with fewer than two days
	RollingDays  int
	ByTopic      []GroupRow
	ByAuthor     []GroupRow
	BySection    []GroupRow
	MostPositive []HeadlineRow
	MostNegative []HeadlineRow
}

// TopicRow lists a topic's heaviest terms.
type TopicRow struct {
	Topic string
	Terms string
	Count int
}

// GroupRow is a summary row formatted for display.
type GroupRow struct {
	Key   string
	Mean  string
	Value float64 // raw mean for sorting
	Class string  // CSS class: positive, negative, neutral
	Count int
}

// HeadlineRow is one document in the headline lists.
type HeadlineRow struct {
	Day      string
	Headline string
	Section  string
	Score    string
	Class    string
}

// ════════════════════════════════════════════════════════════════════
// Generate Report
// ════════════════════════════════════════════════════════════════════

// GenerateHTML generates an interactive HTML report from a run result.
func GenerateHTML(res *models.RunResult, cfg ReportConfig) (string, error) {
	if res == nil {
		return "", fmt.Errorf("run result is nil")
	}

	data, err := buildReportData(res, cfg, true)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New("report").Funcs(templateFuncs).Parse(ReportTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}

// GenerateText generates a plain-text report (terminal / CLI friendly).
func GenerateText(res *models.RunResult, cfg ReportConfig) (string, error) {
	if res == nil {
		return "", fmt.Errorf("run result is nil")
	}

	data, err := buildReportData(res, cfg, false)
	if err != nil {
		return "", err
	}
	return renderTextReport(data), nil
}

// ════════════════════════════════════════════════════════════════════
// Internal: Build template data
// ════════════════════════════════════════════════════════════════════

func buildReportData(res *models.RunResult, cfg ReportConfig, charts bool) (ReportData, error) {
	if cfg.Title == "" {
		cfg.Title = DefaultReportConfig().Title
	}
	if cfg.Author == "" {
		cfg.Author = DefaultReportConfig().Author
	}
	if cfg.Rolling <= 0 {
		cfg.Rolling = DefaultReportConfig().Rolling
	}
	if cfg.Headlines <= 0 {
		cfg.Headlines = DefaultReportConfig().Headlines
	}

	mean := res.MeanSentiment()
	data := ReportData{
		Title:         cfg.Title,
		Query:         res.Query,
		Window:        formatWindow(res.From, res.To),
		Method:        res.Method,
		Author:        cfg.Author,
		RunID:         res.RunID,
		GeneratedAt:   ReportTimestamp(),
		Articles:      len(res.Documents),
		Skipped:       res.Stats.Skipped,
		Dropped:       res.Summary.Dropped,
		Vocabulary:    res.Stats.Vocabulary,
		Topics:        res.Topics,
		MeanSentiment: utils.FormatScore(mean),
		MeanClass:     scoreClass(mean),
		PositiveShare: utils.FormatPct(res.PositiveShare()),
		Duration:      FormatDuration(res.Stats.Duration),
		DaysCovered:   len(res.Summary.ByDay),
		WindowDays:    utils.DaysBetween(res.From, res.To),
		from:          res.From,
		to:            res.To,
		ByDay:         groupRows(res.Summary.ByDay, ""),
		RollingDays:   cfg.Rolling,
		ByTopic:       groupRows(res.Summary.ByTopic, "Topic "),
		ByAuthor:      groupRows(res.Summary.ByAuthor, ""),
		BySection:     groupRows(res.Summary.BySection, ""),
	}

	counts := make(map[int]int)
	for _, d := range res.Documents {
		counts[d.Topic]++
	}
	for i, terms := range res.TopicTerms {
		words := make([]string, len(terms))
		for j, t := range terms {
			words[j] = t.Term
		}
		data.TopicTerms = append(data.TopicTerms, TopicRow{
			Topic: fmt.Sprintf("Topic %d", i+1),
			Terms: strings.Join(words, ", "),
			Count: counts[i],
		})
	}

	data.MostPositive, data.MostNegative = extremes(res.Documents, cfg.Headlines)
	if len(res.Summary.ByDay) > 1 {
		data.Rolling = groupRows(aggregate.Rolling(res.Summary.ByDay, cfg.Rolling), "")
	}

	if charts {
		r := &SVGRenderer{Config: cfg.ChartCfg}
		arts, err := StandardCharts(context.Background(), r, res)
		if err != nil {
			return ReportData{}, err
		}
		data.DayChart = template.HTML(arts[0].SVG)
		data.TopicChart = template.HTML(arts[1].SVG)
		data.AuthorChart = template.HTML(arts[2].SVG)
		data.SectionChart = template.HTML(arts[3].SVG)
		data.DocChart = template.HTML(arts[4].SVG)
		data.GaugeChart = template.HTML(GaugeChart(res.PositiveShare(), "positive articles", 200))
	}
	return data, nil
}

var templateFuncs = template.FuncMap{
	// dict builds a map from alternating key/value arguments so a
	// sub-template can take more than one value.
	"dict": func(kv ...any) (map[string]any, error) {
		if len(kv)%2 != 0 {
			return nil, fmt.Errorf("dict: odd number of arguments")
		}
		m := make(map[string]any, len(kv)/2)
		for i := 0; i < len(kv); i += 2 {
			k, ok := kv[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
			}
			m[k] = kv[i+1]
		}
		return m, nil
	},
}

func groupRows(rows []models.SummaryRow, prefix string) []GroupRow {
	out := make([]GroupRow, len(rows))
	for i, r := range rows {
		key := r.Key
		if prefix != "" {
			if n, err := strconv.Atoi(key); err == nil {
				key = prefix + strconv.Itoa(n+1)
			}
		}
		out[i] = GroupRow{
			Key:   key,
			Mean:  utils.FormatScore(r.MeanSentiment),
			Value: r.MeanSentiment,
			Class: scoreClass(r.MeanSentiment),
			Count: r.Count,
		}
	}
	return out
}

// extremes returns up to n highest and n lowest scoring documents. A
// document appears in a list only when its score has that sign.
func extremes(docs []models.DocumentRow, n int) (pos, neg []HeadlineRow) {
	sorted := make([]models.DocumentRow, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	row := func(d models.DocumentRow) HeadlineRow {
		return HeadlineRow{
			Day:      d.Day(),
			Headline: d.Headline,
			Section:  d.Section,
			Score:    fmt.Sprintf("%+.1f", d.Score),
			Class:    scoreClass(d.Score),
		}
	}
	for i := 0; i < len(sorted) && len(pos) < n && sorted[i].Score > 0; i++ {
		pos = append(pos, row(sorted[i]))
	}
	for i := len(sorted) - 1; i >= 0 && len(neg) < n && sorted[i].Score < 0; i-- {
		neg = append(neg, row(sorted[i]))
	}
	return pos, neg
}

// quietDays lists window days without any article, at most eight.
func quietDays(d ReportData) []string {
	if d.WindowDays == 0 || d.DaysCovered >= d.WindowDays {
		return nil
	}
	covered := make(map[string]bool, len(d.ByDay))
	for _, r := range d.ByDay {
		covered[r.Key] = true
	}
	var out []string
	for day := range utils.Days(d.from, d.to) {
		if key := utils.FormatDay(day); !covered[key] {
			out = append(out, key)
		}
		if len(out) == 8 {
			out = append(out, "…")
			break
		}
	}
	return out
}

func scoreClass(v float64) string {
	return strings.ToLower(sentiment.Label(v))
}

func formatWindow(from, to time.Time) string {
	f, t := "start", "today"
	if !from.IsZero() {
		f = from.Format("02 Jan 2006")
	}
	if !to.IsZero() {
		t = to.Format("02 Jan 2006")
	}
	return f + " to " + t
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

func renderTextReport(d ReportData) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", d.Title))
	sb.WriteString(fmt.Sprintf("  Generated: %s | Run: %s\n", d.GeneratedAt, d.RunID))
	sb.WriteString(line + "\n\n")

	sb.WriteString(fmt.Sprintf("  Query: %q | %s\n", d.Query, d.Window))
	sb.WriteString(fmt.Sprintf("  Articles: %s | Skipped: %s | Dropped: %s | Vocabulary: %s\n",
		utils.FormatCount(d.Articles), utils.FormatCount(d.Skipped), utils.FormatCount(d.Dropped), utils.FormatCount(d.Vocabulary)))
	if d.WindowDays > 0 {
		sb.WriteString(fmt.Sprintf("  Days with coverage: %d of %d", d.DaysCovered, d.WindowDays))
		if quiet := quietDays(d); len(quiet) > 0 {
			sb.WriteString(fmt.Sprintf(" (none on %s)", strings.Join(quiet, ", ")))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("  Sentiment (%s): mean %s | positive %s | took %s\n",
		d.Method, d.MeanSentiment, d.PositiveShare, d.Duration))
	sb.WriteString(thinLine + "\n")

	if len(d.TopicTerms) > 0 {
		sb.WriteString(fmt.Sprintf("\n  ■ TOPICS (%d)\n", d.Topics))
		for _, t := range d.TopicTerms {
			sb.WriteString(fmt.Sprintf("    %-9s %4d docs  %s\n", t.Topic, t.Count, t.Terms))
		}
		sb.WriteString(thinLine + "\n")
	}

	writeGroup := func(title string, rows []GroupRow) {
		if len(rows) == 0 {
			return
		}
		sb.WriteString(fmt.Sprintf("\n  ■ %s\n", title))
		for _, r := range rows {
			sb.WriteString(fmt.Sprintf("    %-28s %7s  n=%d\n", truncate(r.Key, 28), r.Mean, r.Count))
		}
		sb.WriteString(thinLine + "\n")
	}
	writeGroup("SENTIMENT BY DAY", d.ByDay)
	writeGroup(fmt.Sprintf("ROLLING %d-DAY MEAN", d.RollingDays), d.Rolling)
	writeGroup("SENTIMENT BY TOPIC", d.ByTopic)
	writeGroup("SENTIMENT BY AUTHOR", d.ByAuthor)
	writeGroup("SENTIMENT BY SECTION", d.BySection)

	writeHeadlines := func(title string, rows []HeadlineRow) {
		if len(rows) == 0 {
			return
		}
		sb.WriteString(fmt.Sprintf("\n  ■ %s\n", title))
		for _, h := range rows {
			sb.WriteString(fmt.Sprintf("    [%s] %s %s\n", h.Score, h.Day, truncate(h.Headline, 70)))
		}
		sb.WriteString(thinLine + "\n")
	}
	writeHeadlines("MOST POSITIVE", d.MostPositive)
	writeHeadlines("MOST NEGATIVE", d.MostNegative)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  Lexicon scores count dictionary words; they do not read context,\n")
	sb.WriteString("  negation or sarcasm. Treat them as a coarse signal.\n")
	sb.WriteString(line + "\n")

	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Utility: Timestamp
// ════════════════════════════════════════════════════════════════════

// ReportTimestamp returns the current UTC time formatted for report headers.
func ReportTimestamp() string {
	return time.Now().UTC().Format("02 Jan 2006, 15:04 UTC")
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
