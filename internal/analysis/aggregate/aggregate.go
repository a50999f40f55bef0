// Package aggregate joins per-document sentiment with topic assignments and
// article metadata and rolls the result up into grouped summaries.
package aggregate

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/seenimoa/narrative/pkg/models"
)

// JoinResult is the inner join of sentiment scores, topics and metadata.
type JoinResult struct {
	Rows    []models.DocumentRow
	Dropped []string // ids present in only one of the inputs, sorted
}

// Join matches scores, dominant topics and articles by document id. A
// document missing from any input is dropped and reported in Dropped.
// Rows are ordered by document id, then publication time.
func Join(scores []models.SentimentScore, topics map[string]int, articles []models.Article) JoinResult {
	meta := make(map[string]models.Article, len(articles))
	for _, a := range articles {
		meta[a.ID] = a
	}

	seen := make(map[string]bool, len(scores))
	dropped := make(map[string]struct{})
	var rows []models.DocumentRow

	for _, s := range scores {
		seen[s.DocumentID] = true
		topic, okTopic := topics[s.DocumentID]
		a, okMeta := meta[s.DocumentID]
		if !okTopic || !okMeta {
			dropped[s.DocumentID] = struct{}{}
			continue
		}
		rows = append(rows, models.DocumentRow{
			DocumentID:  s.DocumentID,
			PublishedAt: s.PublishedAt,
			Section:     strings.TrimSpace(a.SectionName),
			Authors:     SplitByline(a.Byline),
			Headline:    a.Headline,
			Topic:       topic,
			Score:       s.Score,
			WordCount:   a.WordCount,
		})
	}
	for id := range topics {
		if !seen[id] {
			dropped[id] = struct{}{}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].DocumentID != rows[j].DocumentID {
			return rows[i].DocumentID < rows[j].DocumentID
		}
		return rows[i].PublishedAt.Before(rows[j].PublishedAt)
	})

	ids := make([]string, 0, len(dropped))
	for id := range dropped {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return JoinResult{Rows: rows, Dropped: ids}
}

// Options tunes Summarize.
type Options struct {
	TopAuthors int // keep only the N most prolific authors; 0 keeps all
}

// Summarize groups rows by day, topic, author and section. A document only
// contributes to a grouping when it has a key for it. Means are unweighted.
func Summarize(rows []models.DocumentRow, opts Options) models.Summary {
	byDay := newGrouper(models.GroupByDay)
	byTopic := newGrouper(models.GroupByTopic)
	byAuthor := newGrouper(models.GroupByAuthor)
	bySection := newGrouper(models.GroupBySection)

	for _, r := range rows {
		if !r.PublishedAt.IsZero() {
			byDay.add(r.Day(), r.Score)
		}
		if r.Topic >= 0 {
			byTopic.add(strconv.Itoa(r.Topic), r.Score)
		}
		for _, a := range r.Authors {
			byAuthor.add(a, r.Score)
		}
		if r.Section != "" {
			bySection.add(r.Section, r.Score)
		}
	}

	authors := byAuthor.rows(byCountDesc)
	if opts.TopAuthors > 0 && len(authors) > opts.TopAuthors {
		authors = authors[:opts.TopAuthors]
	}

	return models.Summary{
		ByDay:     byDay.rows(byKeyAsc),
		ByTopic:   byTopic.rows(byTopicAsc),
		ByAuthor:  authors,
		BySection: bySection.rows(byCountDesc),
	}
}

// Run joins and summarizes in one step. Dropped carries the join losses.
func Run(scores []models.SentimentScore, topics map[string]int, articles []models.Article, opts Options) (models.Summary, JoinResult) {
	j := Join(scores, topics, articles)
	s := Summarize(j.Rows, opts)
	s.Dropped = len(j.Dropped)
	return s, j
}

type group struct {
	sum   float64
	count int
}

type grouper struct {
	by     models.GroupBy
	groups map[string]*group
}

func newGrouper(by models.GroupBy) *grouper {
	return &grouper{by: by, groups: make(map[string]*group)}
}

func (g *grouper) add(key string, score float64) {
	grp, ok := g.groups[key]
	if !ok {
		grp = &group{}
		g.groups[key] = grp
	}
	grp.sum += score
	grp.count++
}

func (g *grouper) rows(less func(a, b models.SummaryRow) bool) []models.SummaryRow {
	out := make([]models.SummaryRow, 0, len(g.groups))
	for key, grp := range g.groups {
		out = append(out, models.SummaryRow{
			GroupBy:       g.by,
			Key:           key,
			MeanSentiment: grp.sum / float64(grp.count),
			Count:         grp.count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byKeyAsc(a, b models.SummaryRow) bool { return a.Key < b.Key }

func byTopicAsc(a, b models.SummaryRow) bool {
	ai, _ := strconv.Atoi(a.Key)
	bi, _ := strconv.Atoi(b.Key)
	return ai < bi
}

func byCountDesc(a, b models.SummaryRow) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	return a.Key < b.Key
}

var bylineSeparator = regexp.MustCompile(`\s*(?:,|\band\b|&)\s*`)

// SplitByline splits a byline into individual author names. "Alex Hern and
// Dan Milmo" yields two authors. An empty byline yields nil.
func SplitByline(byline string) []string {
	byline = strings.TrimSpace(byline)
	if byline == "" {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, part := range bylineSeparator.Split(byline, -1) {
		name := strings.Join(strings.Fields(part), " ")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
