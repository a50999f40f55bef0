package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/narrative/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func day(d int) time.Time {
	return time.Date(2023, 1, d, 10, 0, 0, 0, time.UTC)
}

func sampleResult() *models.RunResult {
	docs := []models.DocumentRow{
		{DocumentID: "a", PublishedAt: day(1), Section: "Technology", Authors: []string{"Alex Hern"}, Headline: "ChatGPT wins praise & prizes", Topic: 0, Score: 4, WordCount: 300},
		{DocumentID: "b", PublishedAt: day(1), Section: "Education", Authors: []string{"Sally Weale"}, Headline: "Schools fear cheating", Topic: 1, Score: -3, WordCount: 500},
		{DocumentID: "c", PublishedAt: day(2), Section: "Technology", Headline: "Chatbot launch", Topic: 0, Score: 0, WordCount: 120},
		{DocumentID: "d", PublishedAt: day(3), Section: "Business", Authors: []string{"Alex Hern"}, Headline: "Investors pile in", Topic: 1, Score: 2, WordCount: 800},
	}
	return &models.RunResult{
		RunID:  "0b7c3a52-4a4e-4c1d-9a57-9e0f4c1f2d11",
		Query:  "ChatGPT",
		From:   day(1),
		To:     day(3),
		Method: "afinn",
		Topics: 2,
		Summary: models.Summary{
			ByDay: []models.SummaryRow{
				{GroupBy: models.GroupByDay, Key: "2023-01-01", MeanSentiment: 0.5, Count: 2},
				{GroupBy: models.GroupByDay, Key: "2023-01-02", MeanSentiment: 0, Count: 1},
				{GroupBy: models.GroupByDay, Key: "2023-01-03", MeanSentiment: 2, Count: 1},
			},
			ByTopic: []models.SummaryRow{
				{GroupBy: models.GroupByTopic, Key: "0", MeanSentiment: 2, Count: 2},
				{GroupBy: models.GroupByTopic, Key: "1", MeanSentiment: -0.5, Count: 2},
			},
			ByAuthor: []models.SummaryRow{
				{GroupBy: models.GroupByAuthor, Key: "Alex Hern", MeanSentiment: 3, Count: 2},
				{GroupBy: models.GroupByAuthor, Key: "Sally Weale", MeanSentiment: -3, Count: 1},
			},
			BySection: []models.SummaryRow{
				{GroupBy: models.GroupBySection, Key: "Business", MeanSentiment: 2, Count: 1},
				{GroupBy: models.GroupBySection, Key: "Education", MeanSentiment: -3, Count: 1},
				{GroupBy: models.GroupBySection, Key: "Technology", MeanSentiment: 2, Count: 2},
			},
			Dropped: 1,
		},
		Documents: docs,
		TopicTerms: [][]models.TopicTerm{
			{{Topic: 0, Term: "chatbot", Weight: 0.2}, {Topic: 0, Term: "openai", Weight: 0.1}},
			{{Topic: 1, Term: "school", Weight: 0.3}, {Topic: 1, Term: "exam", Weight: 0.1}},
		},
		Stats: models.RunStats{Fetched: 5, Skipped: 1, Documents: 4, Vocabulary: 42, Duration: 1500 * time.Millisecond},
	}
}

// ════════════════════════════════════════════════════════════════════
// Chart Tests
// ════════════════════════════════════════════════════════════════════

func TestTimelineChart_Basic(t *testing.T) {
	points := []TimelinePoint{
		{Label: "2023-01-01", Value: 0.5, Count: 2},
		{Label: "2023-01-02", Value: -1, Count: 5},
		{Label: "2023-01-03", Value: 2, Count: 1},
	}
	cfg := DefaultChartConfig()
	cfg.Title = "Daily"

	svg := TimelineChart(points, cfg)
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("expected a complete SVG document, got %.40q", svg)
	}
	if !strings.Contains(svg, "Daily") {
		t.Error("expected title in chart")
	}
	if !strings.Contains(svg, "2023-01-02: 5 articles") {
		t.Error("expected count bar hover text")
	}
	if !strings.Contains(svg, "2023-01-03: 2.00 (n=1)") {
		t.Error("expected sentiment point hover text")
	}
}

func TestTimelineChart_Empty(t *testing.T) {
	svg := TimelineChart(nil, DefaultChartConfig())
	if !strings.Contains(svg, "No data available") {
		t.Error("expected empty message")
	}
}

func TestTimelineChart_SinglePoint(t *testing.T) {
	svg := TimelineChart([]TimelinePoint{{Label: "2023-01-01", Value: 1, Count: 1}}, ChartConfig{})
	if !strings.Contains(svg, "<circle") {
		t.Error("expected a point for a single day")
	}
	if strings.Contains(svg, "NaN") {
		t.Error("single point must not produce NaN coordinates")
	}
}

func TestLineChart_Basic(t *testing.T) {
	series := []LineChartSeries{
		{Name: "count", Values: []float64{1, 3, 2}},
	}
	svg := LineChart(series, []string{"a", "b", "c"}, DefaultChartConfig())
	if !strings.Contains(svg, "<polyline") && !strings.Contains(svg, "<path") {
		t.Error("expected a line in the chart")
	}
	if !strings.Contains(svg, "count b: 3.00") {
		t.Error("expected hover text per point")
	}
}

func TestLineChart_Empty(t *testing.T) {
	svg := LineChart(nil, nil, DefaultChartConfig())
	if !strings.Contains(svg, "No data") {
		t.Error("expected empty message")
	}
}

func TestHorizontalBarChart_WithNegative(t *testing.T) {
	items := []BarItem{
		{Label: "Technology", Value: 2, Note: "n=2"},
		{Label: "Education", Value: -3, Note: "n=1"},
	}
	svg := HorizontalBarChart(items, DefaultChartConfig())
	for _, want := range []string{"Technology", "Education", "-3.00", "<title>"} {
		if !strings.Contains(svg, want) {
			t.Errorf("expected %q in chart", want)
		}
	}
}

func TestHorizontalBarChart_Empty(t *testing.T) {
	svg := HorizontalBarChart(nil, DefaultChartConfig())
	if !strings.Contains(svg, "No data") {
		t.Error("expected empty message")
	}
}

func TestScatterChart_TickFormatter(t *testing.T) {
	points := []ScatterPoint{
		{X: float64(day(1).Unix()), Y: 1, Group: 0, Label: "first"},
		{X: float64(day(9).Unix()), Y: -2, Group: 3, Label: "second <b>"},
	}
	svg := ScatterChart(points, func(v float64) string { return "tick" }, DefaultChartConfig())
	if !strings.Contains(svg, ">tick<") {
		t.Error("expected custom tick labels")
	}
	if !strings.Contains(svg, "second &lt;b&gt;") {
		t.Error("expected escaped hover label")
	}
	if strings.Count(svg, "<circle") != 2 {
		t.Errorf("expected 2 points, got %d", strings.Count(svg, "<circle"))
	}
}

func TestScatterChart_Empty(t *testing.T) {
	if svg := ScatterChart(nil, nil, ChartConfig{}); !strings.Contains(svg, "No data") {
		t.Error("expected empty message")
	}
}

func TestGaugeChart_Values(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"low", 15, "15%"},
		{"high", 85, "85%"},
		{"clamped_zero", -10, "0%"},
		{"clamped_max", 150, "100%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svg := GaugeChart(tt.value, "positive", 200)
			if !strings.Contains(svg, tt.want) {
				t.Errorf("GaugeChart(%v): expected %q", tt.value, tt.want)
			}
			if !strings.Contains(svg, "positive") {
				t.Error("expected label in output")
			}
		})
	}
}

func TestGaugeChart_ZeroWidth(t *testing.T) {
	svg := GaugeChart(50, "Test", 0)
	if !strings.Contains(svg, `width="200"`) {
		t.Error("expected default width")
	}
}

// ════════════════════════════════════════════════════════════════════
// Renderer Tests
// ════════════════════════════════════════════════════════════════════

func TestSVGRenderer_WritesFile(t *testing.T) {
	dir := t.TempDir()
	r := NewSVGRenderer(dir)
	res := sampleResult()

	a, err := r.Render(context.Background(), ChartSpec{Kind: KindBar, X: FieldKey, Y: FieldMeanSentiment, Title: "By Section!"}, res.Summary.BySection)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if want := filepath.Join(dir, "by-section.svg"); a.Path != want {
		t.Errorf("path: got %q, want %q", a.Path, want)
	}
	data, err := os.ReadFile(a.Path)
	if err != nil {
		t.Fatalf("reading chart: %v", err)
	}
	if string(data) != a.SVG {
		t.Error("file content differs from artifact SVG")
	}
}

func TestSVGRenderer_InMemory(t *testing.T) {
	r := &SVGRenderer{}
	a, err := r.Render(context.Background(), ChartSpec{Kind: KindLine, X: FieldKey, Y: FieldCount, Title: "Counts"}, sampleResult().Summary.ByDay)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if a.Path != "" {
		t.Errorf("expected no path, got %q", a.Path)
	}
	if !strings.Contains(a.SVG, "Counts") {
		t.Error("expected title in SVG")
	}
}

func TestSVGRenderer_Errors(t *testing.T) {
	r := &SVGRenderer{}
	ctx := context.Background()
	rows := sampleResult().Summary.ByDay
	docs := sampleResult().Documents

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"unknown kind", func() error {
			_, err := r.Render(ctx, ChartSpec{Kind: "pie", X: FieldKey, Y: FieldCount}, rows)
			return err
		}, ErrUnknownChartKind},
		{"unknown y", func() error {
			_, err := r.Render(ctx, ChartSpec{Kind: KindBar, X: FieldKey, Y: "median"}, rows)
			return err
		}, ErrUnknownField},
		{"summary x must be key", func() error {
			_, err := r.Render(ctx, ChartSpec{Kind: KindBar, X: FieldCount, Y: FieldCount}, rows)
			return err
		}, ErrUnknownField},
		{"documents unknown kind", func() error {
			_, err := r.RenderDocuments(ctx, ChartSpec{Kind: "pie", X: FieldPublishedAt, Y: FieldScore}, docs)
			return err
		}, ErrUnknownChartKind},
		{"documents unknown field", func() error {
			_, err := r.RenderDocuments(ctx, ChartSpec{Kind: KindScatter, X: "author", Y: FieldScore}, docs)
			return err
		}, ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSVGRenderer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&SVGRenderer{}).Render(ctx, ChartSpec{Kind: KindBar, X: FieldKey, Y: FieldCount}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestSVGRenderer_DocumentScatter(t *testing.T) {
	a, err := (&SVGRenderer{}).RenderDocuments(context.Background(),
		ChartSpec{Kind: KindScatter, X: FieldPublishedAt, Y: FieldScore, Title: "Docs"}, sampleResult().Documents)
	if err != nil {
		t.Fatalf("RenderDocuments: %v", err)
	}
	if strings.Count(a.SVG, "<circle") != 4 {
		t.Errorf("expected one point per document, got %d", strings.Count(a.SVG, "<circle"))
	}
	if !strings.Contains(a.SVG, "01 Jan 23") {
		t.Error("expected date tick labels")
	}
}

func TestStandardCharts(t *testing.T) {
	dir := t.TempDir()
	arts, err := StandardCharts(context.Background(), NewSVGRenderer(dir), sampleResult())
	if err != nil {
		t.Fatalf("StandardCharts: %v", err)
	}
	if len(arts) != 5 {
		t.Fatalf("expected 5 charts, got %d", len(arts))
	}
	if !strings.Contains(arts[1].SVG, "Topic 1") || !strings.Contains(arts[1].SVG, "Topic 2") {
		t.Error("expected topic keys relabelled for display")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 5 {
		t.Errorf("expected 5 files, got %d", len(entries))
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Mean sentiment by day", "mean-sentiment-by-day"},
		{"  ChatGPT: Q&A!  ", "chatgpt-q-a"},
		{"", "chart"},
		{"***", "chart"},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// Report Generator Tests
// ════════════════════════════════════════════════════════════════════

func TestGenerateHTML_Basic(t *testing.T) {
	html, err := GenerateHTML(sampleResult(), DefaultReportConfig())
	if err != nil {
		t.Fatalf("GenerateHTML failed: %v", err)
	}

	checks := []struct {
		name   string
		substr string
	}{
		{"html tag", "<html"},
		{"title", "News Narrative Report"},
		{"query", "ChatGPT"},
		{"window", "01 Jan 2023 to 03 Jan 2023"},
		{"escaped headline", "ChatGPT wins praise &amp; prizes"},
		{"topic terms", "chatbot, openai"},
		{"topic label", "Topic 2"},
		{"author row", "Sally Weale"},
		{"dropped note", "1 document(s)"},
		{"inline svg", "<svg"},
		{"gauge", "50%"},
		{"sortable tables", "sortable-table"},
		{"run id", "0b7c3a52"},
	}
	for _, c := range checks {
		if !strings.Contains(html, c.substr) {
			t.Errorf("%s: expected %q in HTML", c.name, c.substr)
		}
	}
}

func TestGenerateHTML_NilResult(t *testing.T) {
	if _, err := GenerateHTML(nil, DefaultReportConfig()); err == nil {
		t.Error("expected error for nil result")
	}
}

func TestGenerateHTML_EmptyResult(t *testing.T) {
	html, err := GenerateHTML(&models.RunResult{Query: "nothing"}, ReportConfig{})
	if err != nil {
		t.Fatalf("GenerateHTML failed: %v", err)
	}
	if !strings.Contains(html, "No data") {
		t.Error("expected empty chart placeholders")
	}
	if strings.Contains(html, "Most positive") {
		t.Error("expected no headline tables without documents")
	}
}

func TestGenerateHTML_CustomTitle(t *testing.T) {
	cfg := DefaultReportConfig()
	cfg.Title = "Chatbots in the press"
	html, err := GenerateHTML(sampleResult(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "<title>Chatbots in the press</title>") {
		t.Error("expected custom title")
	}
}

func TestGenerateText_Basic(t *testing.T) {
	text, err := GenerateText(sampleResult(), DefaultReportConfig())
	if err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}
	for _, want := range []string{
		"News Narrative Report",
		`Query: "ChatGPT"`,
		"Articles: 4 | Skipped: 1 | Dropped: 1 | Vocabulary: 42",
		"TOPICS (2)",
		"school, exam",
		"SENTIMENT BY SECTION",
		"MOST POSITIVE",
		"[+4.0]",
		"MOST NEGATIVE",
		"[-3.0]",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in text report", want)
		}
	}
	if strings.Contains(text, "<svg") {
		t.Error("text report must not embed SVG")
	}
}

func TestGenerateText_DayCoverage(t *testing.T) {
	res := sampleResult()
	res.To = day(5)
	text, err := GenerateText(res, DefaultReportConfig())
	if err != nil {
		t.Fatal(err)
	}
	if want := "Days with coverage: 3 of 5 (none on 2023-01-04, 2023-01-05)"; !strings.Contains(text, want) {
		t.Errorf("expected %q in text report", want)
	}

	res.To = time.Time{}
	text, _ = GenerateText(res, DefaultReportConfig())
	if strings.Contains(text, "Days with coverage") {
		t.Error("open-ended window must not report coverage")
	}
}

func TestGenerateText_Rolling(t *testing.T) {
	text, err := GenerateText(sampleResult(), DefaultReportConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "ROLLING 7-DAY MEAN") {
		t.Error("expected rolling mean section")
	}

	res := sampleResult()
	res.Summary.ByDay = res.Summary.ByDay[:1]
	text, _ = GenerateText(res, DefaultReportConfig())
	if strings.Contains(text, "ROLLING") {
		t.Error("a single day must not get a rolling mean")
	}
}

func TestGenerateText_NilResult(t *testing.T) {
	if _, err := GenerateText(nil, DefaultReportConfig()); err == nil {
		t.Error("expected error for nil result")
	}
}

func TestExtremes(t *testing.T) {
	pos, neg := extremes(sampleResult().Documents, 5)
	if len(pos) != 2 || pos[0].Headline != "ChatGPT wins praise & prizes" {
		t.Errorf("positive: got %+v", pos)
	}
	if len(neg) != 1 || neg[0].Headline != "Schools fear cheating" {
		t.Errorf("negative: got %+v", neg)
	}

	pos, _ = extremes(sampleResult().Documents, 1)
	if len(pos) != 1 {
		t.Errorf("limit: got %d rows, want 1", len(pos))
	}
}

func TestGroupRows(t *testing.T) {
	rows := groupRows(sampleResult().Summary.ByTopic, "Topic ")
	if rows[0].Key != "Topic 1" || rows[0].Class != "positive" {
		t.Errorf("row 0: got %+v", rows[0])
	}
	if rows[1].Mean != "-0.50" || rows[1].Class != "negative" {
		t.Errorf("row 1: got %+v", rows[1])
	}
}

func TestDefaultReportConfig(t *testing.T) {
	cfg := DefaultReportConfig()
	if cfg.Title == "" || cfg.Author == "" {
		t.Error("expected title and author defaults")
	}
	if cfg.Headlines != 5 {
		t.Errorf("Headlines: got %d, want 5", cfg.Headlines)
	}
	if cfg.ChartCfg.Width == 0 {
		t.Error("expected chart defaults")
	}
}

// ════════════════════════════════════════════════════════════════════
// PDF Tests
// ════════════════════════════════════════════════════════════════════

func TestGeneratePDF_NoOutputPath(t *testing.T) {
	if _, err := GeneratePDF(context.Background(), "<html></html>", PDFConfig{}); err == nil {
		t.Error("expected error for empty output path")
	}
}

func TestGeneratePDF_HTMLFallback(t *testing.T) {
	dir := t.TempDir()
	cfg := PDFConfig{Engine: EngineNone, OutputPath: filepath.Join(dir, "sub", "report.pdf")}

	html := "<html><body>Test Report</body></html>"
	path, err := GeneratePDF(context.Background(), html, cfg)
	if err != nil {
		t.Fatalf("GeneratePDF fallback failed: %v", err)
	}
	if want := filepath.Join(dir, "sub", "report.html"); path != want {
		t.Errorf("path: got %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading fallback file: %v", err)
	}
	if string(data) != html {
		t.Error("fallback HTML content mismatch")
	}
}

func TestGeneratePDF_UnknownEngine(t *testing.T) {
	_, err := GeneratePDF(context.Background(), "", PDFConfig{Engine: "prince", OutputPath: filepath.Join(t.TempDir(), "x.pdf")})
	if err == nil {
		t.Error("expected error for unsupported engine")
	}
}

func TestDetectPDFEngine(t *testing.T) {
	switch e := DetectPDFEngine(); e {
	case EngineWKHTML, EngineChromium, EngineNone:
	default:
		t.Errorf("unexpected engine %q", e)
	}
	if IsPDFSupported() != (DetectPDFEngine() != EngineNone) {
		t.Error("IsPDFSupported disagrees with DetectPDFEngine")
	}
}

func TestWriteTempHTML(t *testing.T) {
	path, err := writeTempHTML("<p>x</p>")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(path)
	if !strings.HasPrefix(filepath.Base(path), "narrative-report-") {
		t.Errorf("unexpected temp name %q", path)
	}
}

// ════════════════════════════════════════════════════════════════════
// Utility Tests
// ════════════════════════════════════════════════════════════════════

func TestReportTimestamp(t *testing.T) {
	if ts := ReportTimestamp(); !strings.HasSuffix(ts, "UTC") {
		t.Errorf("expected UTC timestamp, got %s", ts)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input time.Duration
		want  string
	}{
		{1500 * time.Millisecond, "1.5s"},
		{3 * time.Minute, "3.0m"},
		{2 * time.Hour, "2.0h"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.input); got != tt.want {
			t.Errorf("FormatDuration(%v): got %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestEscapeXML(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", "hello"},
		{"a & b", "a &amp; b"},
		{"<b>test</b>", "&lt;b&gt;test&lt;/b&gt;"},
		{`"quoted"`, "&quot;quoted&quot;"},
	}
	for _, tt := range tests {
		if result := escapeXML(tt.input); result != tt.expected {
			t.Errorf("escapeXML(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo wörld", 5); got != "héll…" {
		t.Errorf("truncate: got %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate: got %q", got)
	}
}

func TestPlotArea(t *testing.T) {
	cfg := DefaultChartConfig()
	x, y, w, h := cfg.plotArea()
	if x != cfg.MarginLeft || y != cfg.MarginTop {
		t.Errorf("origin: got (%d,%d)", x, y)
	}
	if w != cfg.Width-cfg.MarginLeft-cfg.MarginRight {
		t.Errorf("width: got %d", w)
	}
	if h != cfg.Height-cfg.MarginTop-cfg.MarginBottom {
		t.Errorf("height: got %d", h)
	}
}

func TestEmptySVG(t *testing.T) {
	svg := emptySVG(ChartConfig{}, "Test message")
	if !strings.Contains(svg, "Test message") || !strings.Contains(svg, `width="400"`) {
		t.Error("expected message and fallback size in empty SVG")
	}
}
