package report

// ReportTemplate is the HTML template for the narrative report. Charts are
// inline SVG and tables sort on header click, so the file is self-contained.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 960px;
    margin: 0 auto;
    padding: 20px;
  }
  h1, h2, h3 { font-weight: 600; }
  h1 { font-size: 1.5rem; margin-bottom: 4px; color: var(--accent); }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  h3 { font-size: 1rem; margin: 16px 0 8px; }
  .muted { color: var(--muted); font-size: 0.85rem; }

  .header {
    display: flex;
    justify-content: space-between;
    align-items: flex-start;
    border-bottom: 3px solid var(--accent);
    padding-bottom: 12px;
    margin-bottom: 16px;
  }
  .header-right { text-align: right; }
  .query-badge {
    display: inline-block;
    background: var(--accent);
    color: white;
    padding: 2px 12px;
    border-radius: 4px;
    font-weight: 700;
  }

  .stat-bar {
    display: grid;
    grid-template-columns: repeat(auto-fill, minmax(130px, 1fr));
    gap: 8px;
    background: var(--section-bg);
    padding: 12px;
    border-radius: 8px;
    margin-bottom: 16px;
  }
  .stat-item { text-align: center; }
  .stat-item .label { font-size: 0.75rem; color: var(--muted); text-transform: uppercase; }
  .stat-item .value { font-size: 1rem; font-weight: 600; }
  .positive { color: var(--green); }
  .negative { color: var(--red); }
  .neutral { color: var(--muted); }

  table { width: 100%; border-collapse: collapse; margin: 8px 0 16px; font-size: 0.9rem; }
  th { background: var(--section-bg); text-align: left; padding: 8px; font-weight: 600; }
  th.sortable { cursor: pointer; user-select: none; }
  th.sortable::after { content: " ↕"; color: var(--muted); font-size: 0.75rem; }
  td { padding: 8px; border-bottom: 1px solid var(--border); }
  td.num { text-align: right; font-variant-numeric: tabular-nums; }

  .chart-container { margin: 12px 0; overflow-x: auto; }
  .chart-container svg { max-width: 100%; height: auto; }
  .chart-grid { display: grid; grid-template-columns: 1fr 1fr; gap: 12px; }
  .gauge-inline { display: flex; align-items: center; gap: 12px; }
  .gauge-inline svg { flex-shrink: 0; }

  .section { margin: 20px 0; }
  .footer {
    margin-top: 30px;
    padding-top: 12px;
    border-top: 2px solid var(--border);
    font-size: 0.8rem;
    color: var(--muted);
    text-align: center;
  }

  @media (max-width: 700px) { .chart-grid { grid-template-columns: 1fr; } }
  @media print {
    body { max-width: 100%; padding: 10px; }
    .section { page-break-inside: avoid; }
  }
</style>
</head>
<body>

<!-- ═══════ HEADER ═══════ -->
<div class="header">
  <div class="header-left">
    <h1>{{.Title}}</h1>
    <p><span class="query-badge">{{.Query}}</span> <span class="muted">{{.Window}}</span></p>
  </div>
  <div class="header-right">
    <p class="muted">{{.GeneratedAt}}</p>
    <p class="muted">{{.Author}} · run {{.RunID}}</p>
  </div>
</div>

<!-- ═══════ HEADLINE NUMBERS ═══════ -->
<div class="stat-bar">
  <div class="stat-item"><div class="label">Articles</div><div class="value">{{.Articles}}</div></div>
  <div class="stat-item"><div class="label">Skipped</div><div class="value">{{.Skipped}}</div></div>
  <div class="stat-item"><div class="label">Topics</div><div class="value">{{.Topics}}</div></div>
  <div class="stat-item"><div class="label">Vocabulary</div><div class="value">{{.Vocabulary}}</div></div>
  <div class="stat-item"><div class="label">Mean ({{.Method}})</div><div class="value {{.MeanClass}}">{{.MeanSentiment}}</div></div>
  <div class="stat-item"><div class="label">Positive</div><div class="value">{{.PositiveShare}}</div></div>
  {{if .WindowDays}}<div class="stat-item"><div class="label">Days covered</div><div class="value">{{.DaysCovered}} / {{.WindowDays}}</div></div>{{end}}
  <div class="stat-item"><div class="label">Took</div><div class="value">{{.Duration}}</div></div>
</div>
{{if .Dropped}}<p class="muted">{{.Dropped}} document(s) had no topic or sentiment and were left out of the summaries.</p>{{end}}

<!-- ═══════ TIMELINE ═══════ -->
<div class="section">
  <h2>Sentiment over time</h2>
  <div class="gauge-inline">
    {{if .GaugeChart}}{{.GaugeChart}}{{end}}
    <p class="muted">Share of articles with a positive lexicon score. Hover any point for its value.</p>
  </div>
  {{if .DayChart}}<div class="chart-container">{{.DayChart}}</div>{{end}}
  {{if .DocChart}}<div class="chart-container">{{.DocChart}}</div>{{end}}
</div>

<!-- ═══════ TOPICS ═══════ -->
{{if .TopicTerms}}
<div class="section">
  <h2>Topics</h2>
  <table class="sortable-table">
    <thead><tr><th class="sortable">Topic</th><th class="sortable">Articles</th><th>Top terms</th></tr></thead>
    <tbody>
    {{range .TopicTerms}}<tr><td>{{.Topic}}</td><td class="num">{{.Count}}</td><td>{{.Terms}}</td></tr>
    {{end}}</tbody>
  </table>
  {{if .TopicChart}}<div class="chart-container">{{.TopicChart}}</div>{{end}}
</div>
{{end}}

<!-- ═══════ BREAKDOWNS ═══════ -->
<div class="section">
  <h2>Breakdowns</h2>
  <div class="chart-grid">
    {{if .AuthorChart}}<div class="chart-container">{{.AuthorChart}}</div>{{end}}
    {{if .SectionChart}}<div class="chart-container">{{.SectionChart}}</div>{{end}}
  </div>
  {{template "group" (dict "Title" "By day" "Rows" .ByDay)}}
  {{if .Rolling}}{{template "group" (dict "Title" (printf "Rolling %d-day mean" .RollingDays) "Rows" .Rolling)}}{{end}}
  {{template "group" (dict "Title" "By topic" "Rows" .ByTopic)}}
  {{template "group" (dict "Title" "By author" "Rows" .ByAuthor)}}
  {{template "group" (dict "Title" "By section" "Rows" .BySection)}}
</div>

<!-- ═══════ HEADLINES ═══════ -->
{{if or .MostPositive .MostNegative}}
<div class="section">
  <h2>Headlines</h2>
  {{template "headlines" (dict "Title" "Most positive" "Rows" .MostPositive)}}
  {{template "headlines" (dict "Title" "Most negative" "Rows" .MostNegative)}}
</div>
{{end}}

<div class="footer">
  Lexicon scores count dictionary words and do not read context, negation or sarcasm.
  Treat them as a coarse signal.
</div>

<script>
document.querySelectorAll("table.sortable-table").forEach(function (table) {
  table.querySelectorAll("th.sortable").forEach(function (th) {
    var col = th.cellIndex, asc = true;
    th.addEventListener("click", function () {
      var body = table.tBodies[0];
      var rows = Array.prototype.slice.call(body.rows);
      rows.sort(function (a, b) {
        var x = a.cells[col].dataset.value || a.cells[col].textContent;
        var y = b.cells[col].dataset.value || b.cells[col].textContent;
        var nx = parseFloat(x), ny = parseFloat(y);
        var c = (!isNaN(nx) && !isNaN(ny)) ? nx - ny : x.localeCompare(y);
        return asc ? c : -c;
      });
      rows.forEach(function (r) { body.appendChild(r); });
      asc = !asc;
    });
  });
});
</script>
</body>
</html>

{{define "group"}}{{if .Rows}}
  <h3>{{.Title}}</h3>
  <table class="sortable-table">
    <thead><tr><th class="sortable">Key</th><th class="sortable">Mean sentiment</th><th class="sortable">Articles</th></tr></thead>
    <tbody>
    {{range .Rows}}<tr><td>{{.Key}}</td><td class="num {{.Class}}" data-value="{{.Value}}">{{.Mean}}</td><td class="num">{{.Count}}</td></tr>
    {{end}}</tbody>
  </table>
{{end}}{{end}}

{{define "headlines"}}{{if .Rows}}
  <h3>{{.Title}}</h3>
  <table class="sortable-table">
    <thead><tr><th class="sortable">Day</th><th class="sortable">Score</th><th>Headline</th><th class="sortable">Section</th></tr></thead>
    <tbody>
    {{range .Rows}}<tr><td>{{.Day}}</td><td class="num {{.Class}}">{{.Score}}</td><td>{{.Headline}}</td><td>{{.Section}}</td></tr>
    {{end}}</tbody>
  </table>
{{end}}{{end}}
`
