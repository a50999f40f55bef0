package models

import "time"

// RunStats counts what each stage of a run saw and discarded.
type RunStats struct {
	Fetched        int           `json:"fetched"`         // articles returned by the source
	Skipped        int           `json:"skipped"`         // malformed records dropped by the source
	Documents      int           `json:"documents"`       // documents entering the topic model
	EmptyDocuments int           `json:"empty_documents"` // documents with no token after filtering
	Tokens         int           `json:"tokens"`
	Vocabulary     int           `json:"vocabulary"`
	Dropped        int           `json:"dropped"` // documents lost in the join
	Duration       time.Duration `json:"duration"`
}

// RunResult is everything a finished run hands to the report layer.
type RunResult struct {
	RunID      string        `json:"run_id"`
	Query      string        `json:"query"`
	From       time.Time     `json:"from"`
	To         time.Time     `json:"to"`
	Method     string        `json:"sentiment_method"`
	Topics     int           `json:"topics"`
	Summary    Summary       `json:"summary"`
	Documents  []DocumentRow `json:"documents"`
	TopicTerms [][]TopicTerm `json:"topic_terms"` // top terms per topic, indexed by topic
	Stats      RunStats      `json:"stats"`
}

// MeanSentiment returns the unweighted mean score over all documents.
func (r *RunResult) MeanSentiment() float64 {
	if len(r.Documents) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range r.Documents {
		sum += d.Score
	}
	return sum / float64(len(r.Documents))
}

// PositiveShare returns the percentage of documents scoring above zero.
func (r *RunResult) PositiveShare() float64 {
	if len(r.Documents) == 0 {
		return 0
	}
	n := 0
	for _, d := range r.Documents {
		if d.Score > 0 {
			n++
		}
	}
	return 100 * float64(n) / float64(len(r.Documents))
}
