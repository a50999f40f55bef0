// Package report renders narrative analysis results: standalone SVG charts,
// an interactive HTML report, a terminal text report and an optional PDF
// export.
package report

import (
	"fmt"
	"math"
	"strings"
)

// ════════════════════════════════════════════════════════════════════
// SVG Chart Generator: Pure Go, Zero Dependencies
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 800)
	Height       int    // SVG height in pixels (default: 400)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 60)
	MarginBottom int    // bottom margin (default: 50)
	MarginLeft   int    // left margin (default: 70)
	BgColor      string // background color (default: "#ffffff")
	GridColor    string // grid line color (default: "#e8e8e8")
	TextColor    string // axis label color (default: "#333333")
	FontSize     int    // axis label font size (default: 11)
	Title        string // chart title
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       400,
		MarginTop:    40,
		MarginRight:  60,
		MarginBottom: 50,
		MarginLeft:   70,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		FontSize:     11,
	}
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// withDefaults fills a zero config, keeping the title.
func (c ChartConfig) withDefaults(title string) ChartConfig {
	if c.Width == 0 {
		t := c.Title
		c = DefaultChartConfig()
		c.Title = t
	}
	if c.Title == "" {
		c.Title = title
	}
	return c
}

var palette = []string{"#2196f3", "#ff9800", "#4caf50", "#e91e63", "#9c27b0", "#00bcd4", "#795548", "#607d8b"}

// ════════════════════════════════════════════════════════════════════
// Timeline Chart (sentiment line over article-count bars)
// ════════════════════════════════════════════════════════════════════

// TimelinePoint is one day of a sentiment timeline.
type TimelinePoint struct {
	Label string  // x-axis label, usually a YYYY-MM-DD day
	Value float64 // mean sentiment
	Count int     // articles that day
}

// TimelineChart draws mean sentiment per period as a line, with the
// article count per period as bars along the bottom fifth of the plot.
// Every point carries a hover title.
func TimelineChart(points []TimelinePoint, cfg ChartConfig) string {
	if len(points) == 0 {
		return emptySVG(cfg, "No data available")
	}
	cfg = cfg.withDefaults("Sentiment over time")

	px, py, pw, ph := cfg.plotArea()
	countH := float64(ph) * 0.2
	lineH := float64(ph) - countH

	minVal, maxVal := points[0].Value, points[0].Value
	maxCount := 0
	for _, p := range points {
		minVal = math.Min(minVal, p.Value)
		maxVal = math.Max(maxVal, p.Value)
		if p.Count > maxCount {
			maxCount = p.Count
		}
	}
	minVal, maxVal = padRange(minVal, maxVal)
	vRange := maxVal - minVal

	n := len(points)
	step := float64(pw)
	if n > 1 {
		step = float64(pw) / float64(n-1)
	}
	xOf := func(i int) float64 {
		if n == 1 {
			return float64(px) + float64(pw)/2
		}
		return float64(px) + float64(i)*step
	}
	yOf := func(v float64) float64 {
		return float64(py) + lineH - (v-minVal)/vRange*lineH
	}

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	writeFrame(&sb, cfg)

	// Y-axis grid (sentiment)
	gridLines := 5
	for i := 0; i <= gridLines; i++ {
		val := minVal + vRange*float64(i)/float64(gridLines)
		y := yOf(val)
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%.1f</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, val))
	}
	if minVal < 0 && maxVal > 0 {
		y := yOf(0)
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#999" stroke-width="1"/>`, px, y, px+pw, y))
	}

	// Count bars
	barW := math.Max(1, math.Min(12, step*0.6))
	for i, p := range points {
		if maxCount == 0 || p.Count == 0 {
			continue
		}
		h := float64(p.Count) / float64(maxCount) * (countH - 4)
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#90caf9" opacity="0.6"><title>%s: %d articles</title></rect>`,
			xOf(i)-barW/2, float64(py+ph)-h, barW, h, escapeXML(p.Label), p.Count))
	}

	// Sentiment line
	var path []string
	for i, p := range points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		path = append(path, fmt.Sprintf("%s%.1f,%.1f", cmd, xOf(i), yOf(p.Value)))
	}
	if len(path) > 1 {
		sb.WriteString(fmt.Sprintf(`<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`, strings.Join(path, " "), palette[0]))
	}
	for i, p := range points {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"><title>%s: %.2f (n=%d)</title></circle>`,
			xOf(i), yOf(p.Value), pointColor(p.Value), escapeXML(p.Label), p.Value, p.Count))
	}

	labels := make([]string, n)
	for i, p := range points {
		labels[i] = p.Label
	}
	writeXLabels(&sb, cfg, labels, xOf)

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Line Chart
// ════════════════════════════════════════════════════════════════════

// LineChartSeries represents a named data series for line charts.
type LineChartSeries struct {
	Name   string
	Values []float64
	Color  string // hex color (optional, auto-assigned if empty)
}

// LineChart generates an SVG line chart with one or more series.
// Labels are optional X-axis labels corresponding to data points.
func LineChart(series []LineChartSeries, labels []string, cfg ChartConfig) string {
	if len(series) == 0 {
		return emptySVG(cfg, "No data")
	}
	cfg = cfg.withDefaults("Line Chart")

	px, py, pw, ph := cfg.plotArea()

	minVal, maxVal := math.MaxFloat64, -math.MaxFloat64
	maxLen := 0
	for _, s := range series {
		if len(s.Values) > maxLen {
			maxLen = len(s.Values)
		}
		for _, v := range s.Values {
			if !math.IsNaN(v) && v < minVal {
				minVal = v
			}
			if !math.IsNaN(v) && v > maxVal {
				maxVal = v
			}
		}
	}
	if maxLen == 0 || minVal > maxVal {
		return emptySVG(cfg, "No data points")
	}
	minVal, maxVal = padRange(minVal, maxVal)
	vRange := maxVal - minVal

	xOf := func(i int) float64 {
		if maxLen == 1 {
			return float64(px) + float64(pw)/2
		}
		return float64(px) + float64(i)*float64(pw)/float64(maxLen-1)
	}

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	writeFrame(&sb, cfg)

	gridLines := 5
	for i := 0; i <= gridLines; i++ {
		val := minVal + vRange*float64(i)/float64(gridLines)
		y := py + ph - int(float64(ph)*float64(i)/float64(gridLines))
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="end">%.1f</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, val))
	}

	for si, s := range series {
		color := s.Color
		if color == "" {
			color = palette[si%len(palette)]
		}

		var pathParts []string
		for i, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			cx := xOf(i)
			cy := float64(py+ph) - (v-minVal)/vRange*float64(ph)
			cmd := "L"
			if len(pathParts) == 0 {
				cmd = "M"
			}
			pathParts = append(pathParts, fmt.Sprintf("%s%.1f,%.1f", cmd, cx, cy))

			label := fmt.Sprint(i)
			if i < len(labels) {
				label = labels[i]
			}
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="2.5" fill="%s"><title>%s %s: %.2f</title></circle>`,
				cx, cy, color, escapeXML(s.Name), escapeXML(label), v))
		}
		if len(pathParts) > 1 {
			sb.WriteString(fmt.Sprintf(`<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
				strings.Join(pathParts, " "), color))
		}

		// Legend
		ly := py + 10 + si*16
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2"/>`,
			px+10, ly, px+30, ly, color))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="10" fill="%s">%s</text>`,
			px+35, ly+4, cfg.TextColor, escapeXML(s.Name)))
	}

	if len(labels) > maxLen {
		labels = labels[:maxLen]
	}
	writeXLabels(&sb, cfg, labels, xOf)

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Bar Chart (Horizontal)
// ════════════════════════════════════════════════════════════════════

// BarItem represents a single bar in a horizontal bar chart.
type BarItem struct {
	Label string
	Value float64
	Note  string // extra hover text, e.g. "n=12"
	Color string // optional
}

// HorizontalBarChart generates an SVG horizontal bar chart. Negative values
// extend left of a zero line.
func HorizontalBarChart(items []BarItem, cfg ChartConfig) string {
	if len(items) == 0 {
		return emptySVG(cfg, "No data")
	}
	cfg = cfg.withDefaults("Comparison")
	cfg.MarginLeft = 160 // wider for author and section names
	if minH := 28*len(items) + cfg.MarginTop + cfg.MarginBottom; cfg.Height < minH {
		cfg.Height = minH
	}

	px, py, pw, ph := cfg.plotArea()

	maxVal := 0.0
	minVal := 0.0
	for _, item := range items {
		maxVal = math.Max(maxVal, item.Value)
		minVal = math.Min(minVal, item.Value)
	}

	hasNegative := minVal < 0
	valRange := maxVal - minVal
	if valRange < 0.001 {
		valRange = 1
	}

	barH := math.Min(float64(ph)/float64(len(items))*0.7, 30)
	gap := (float64(ph) - barH*float64(len(items))) / float64(len(items)+1)

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	writeFrame(&sb, cfg)

	zeroX := float64(px)
	if hasNegative {
		zeroX = float64(px) + (-minVal/valRange)*float64(pw)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="#999" stroke-width="1"/>`,
			zeroX, py, zeroX, py+ph))
	}

	for i, item := range items {
		by := float64(py) + gap + float64(i)*(barH+gap)
		color := item.Color
		if color == "" {
			color = pointColor(item.Value)
		}

		bw := math.Abs(item.Value) / valRange * float64(pw)
		bx := zeroX
		if item.Value < 0 {
			bx = zeroX - bw
		}

		hover := fmt.Sprintf("%s: %.2f", item.Label, item.Value)
		if item.Note != "" {
			hover += " (" + item.Note + ")"
		}
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="2"><title>%s</title></rect>`,
			bx, by, bw, barH, color, escapeXML(hover)))

		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, by+barH/2+4, cfg.FontSize, cfg.TextColor, escapeXML(truncate(item.Label, 24))))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-size="%d" fill="%s">%.2f</text>`,
			bx+bw+5, by+barH/2+4, cfg.FontSize, cfg.TextColor, item.Value))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Scatter Chart
// ════════════════════════════════════════════════════════════════════

// ScatterPoint is one document in a scatter chart.
type ScatterPoint struct {
	X     float64
	Y     float64
	Group int    // colour index, e.g. dominant topic
	Label string // hover text
}

// ScatterChart plots points on linear axes. xTick formats x-axis tick
// values; nil prints the number.
func ScatterChart(points []ScatterPoint, xTick func(float64) string, cfg ChartConfig) string {
	if len(points) == 0 {
		return emptySVG(cfg, "No data")
	}
	cfg = cfg.withDefaults("Scatter")
	if xTick == nil {
		xTick = func(v float64) string { return fmt.Sprintf("%.0f", v) }
	}

	px, py, pw, ph := cfg.plotArea()

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	minX, maxX = padRange(minX, maxX)
	minY, maxY = padRange(minY, maxY)

	xOf := func(v float64) float64 { return float64(px) + (v-minX)/(maxX-minX)*float64(pw) }
	yOf := func(v float64) float64 { return float64(py+ph) - (v-minY)/(maxY-minY)*float64(ph) }

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	writeFrame(&sb, cfg)

	ticks := 5
	for i := 0; i <= ticks; i++ {
		yv := minY + (maxY-minY)*float64(i)/float64(ticks)
		y := yOf(yv)
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%.1f</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, yv))

		xv := minX + (maxX-minX)*float64(i)/float64(ticks)
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			xOf(xv), py+ph+18, cfg.FontSize-1, cfg.TextColor, escapeXML(xTick(xv))))
	}
	if minY < 0 && maxY > 0 {
		y := yOf(0)
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#999" stroke-width="1"/>`, px, y, px+pw, y))
	}

	for _, p := range points {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3.5" fill="%s" fill-opacity="0.7"><title>%s</title></circle>`,
			xOf(p.X), yOf(p.Y), palette[abs(p.Group)%len(palette)], escapeXML(p.Label)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Gauge / Dial Chart (share of positive coverage)
// ════════════════════════════════════════════════════════════════════

// GaugeChart generates an SVG semicircular gauge for a percentage such as
// the share of positive articles. value should be 0-100.
func GaugeChart(value float64, label string, width int) string {
	if width == 0 {
		width = 200
	}
	height := width/2 + 30

	cx := float64(width) / 2
	cy := float64(width)/2 - 10
	radius := float64(width)/2 - 20

	value = math.Max(0, math.Min(100, value))

	// 0 maps to 180° (left), 100 to 0° (right)
	angle := math.Pi - (value/100)*math.Pi
	needleX := cx + radius*0.85*math.Cos(angle)
	needleY := cy - radius*0.85*math.Sin(angle)

	var color string
	switch {
	case value < 30:
		color = "#ef5350"
	case value < 50:
		color = "#ff9800"
	case value < 70:
		color = "#ffc107"
	default:
		color = "#4caf50"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height))
	sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="white"/>`, width, height))

	sb.WriteString(fmt.Sprintf(`<path d="M%.1f,%.1f A%.1f,%.1f 0 0,1 %.1f,%.1f" fill="none" stroke="#e0e0e0" stroke-width="12" stroke-linecap="round"/>`,
		cx-radius, cy, radius, radius, cx+radius, cy))

	endX := cx + radius*math.Cos(angle)
	endY := cy - radius*math.Sin(angle)
	largeArc := 0
	if value > 50 {
		largeArc = 1
	}
	sb.WriteString(fmt.Sprintf(`<path d="M%.1f,%.1f A%.1f,%.1f 0 %d,1 %.1f,%.1f" fill="none" stroke="%s" stroke-width="12" stroke-linecap="round"/>`,
		cx-radius, cy, radius, radius, largeArc, endX, endY, color))

	sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333" stroke-width="2"/>`,
		cx, cy, needleX, needleY))
	sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="5" fill="#333"/>`, cx, cy))

	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-size="22" font-weight="bold" fill="%s" text-anchor="middle">%.0f%%</text>`,
		cx, cy+25, color, value))
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="11" fill="#666" text-anchor="middle">%s</text>`,
		cx, height-5, escapeXML(label)))

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

// writeFrame draws the background and the centred title.
func writeFrame(sb *strings.Builder, cfg ChartConfig) {
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))
}

// writeXLabels prints at most seven evenly spaced x-axis labels.
func writeXLabels(sb *strings.Builder, cfg ChartConfig, labels []string, xOf func(int) float64) {
	if len(labels) == 0 {
		return
	}
	_, py, _, ph := cfg.plotArea()
	interval := len(labels) / 6
	if interval < 1 {
		interval = 1
	}
	for i := 0; i < len(labels); i += interval {
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			xOf(i), py+ph+18, cfg.FontSize-1, cfg.TextColor, escapeXML(labels[i])))
	}
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

// padRange widens [lo, hi] by 5% each side, and to a unit range when flat.
func padRange(lo, hi float64) (float64, float64) {
	r := hi - lo
	if r < 0.001 {
		return lo - 0.5, hi + 0.5
	}
	return lo - r*0.05, hi + r*0.05
}

func pointColor(v float64) string {
	switch {
	case v > 0:
		return "#4caf50"
	case v < 0:
		return "#ef5350"
	default:
		return "#9e9e9e"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
