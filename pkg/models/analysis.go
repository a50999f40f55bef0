package models

import (
	"time"

	"github.com/seenimoa/narrative/pkg/utils"
)

// SentimentScore is the lexicon sentiment of a single document.
type SentimentScore struct {
	DocumentID  string    `json:"document_id"`
	PublishedAt time.Time `json:"published_at"`
	Score       float64   `json:"score"` // unbounded, sign and scale depend on the lexicon
}

// DocumentTopic is the topic mixture inferred for a single document.
type DocumentTopic struct {
	DocumentID    string    `json:"document_id"`
	Topic         int       `json:"topic"`         // dominant topic
	Probabilities []float64 `json:"probabilities"` // one entry per topic, sums to 1
}

// TopicTerm is a weighted vocabulary term within a topic.
type TopicTerm struct {
	Topic  int     `json:"topic"`
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// GroupBy identifies a summary dimension.
type GroupBy string

const (
	GroupByDay     GroupBy = "day"
	GroupByTopic   GroupBy = "topic"
	GroupByAuthor  GroupBy = "author"
	GroupBySection GroupBy = "section"
)

// AllGroupings returns every summary dimension in report order.
func AllGroupings() []GroupBy {
	return []GroupBy{GroupByDay, GroupByTopic, GroupByAuthor, GroupBySection}
}

// DayLayout is the key format used for daily groupings.
const DayLayout = utils.DayLayout

// SummaryRow is the mean sentiment of one group. Count is always >= 1.
type SummaryRow struct {
	GroupBy       GroupBy `json:"group_by"`
	Key           string  `json:"key"`
	MeanSentiment float64 `json:"mean_sentiment"`
	Count         int     `json:"count"`
}

// DocumentRow is the per-document result of joining sentiment, topic and
// article metadata.
type DocumentRow struct {
	DocumentID  string    `json:"document_id"`
	PublishedAt time.Time `json:"published_at"`
	Section     string    `json:"section"`
	Authors     []string  `json:"authors,omitempty"`
	Headline    string    `json:"headline"`
	Topic       int       `json:"topic"`
	Score       float64   `json:"score"`
	WordCount   int       `json:"word_count"`
}

// Day returns the UTC calendar day of the document.
func (r DocumentRow) Day() string {
	return r.PublishedAt.UTC().Format(DayLayout)
}

// Summary holds every grouped view of a run.
type Summary struct {
	ByDay     []SummaryRow `json:"by_day"`
	ByTopic   []SummaryRow `json:"by_topic"`
	ByAuthor  []SummaryRow `json:"by_author"`
	BySection []SummaryRow `json:"by_section"`
	Dropped   int          `json:"dropped"` // documents lost in the sentiment/topic join
}

// Rows returns the rows for a grouping.
func (s Summary) Rows(g GroupBy) []SummaryRow {
	switch g {
	case GroupByDay:
		return s.ByDay
	case GroupByTopic:
		return s.ByTopic
	case GroupByAuthor:
		return s.ByAuthor
	case GroupBySection:
		return s.BySection
	default:
		return nil
	}
}
