// Package topic fits a fixed-K latent Dirichlet allocation over a
// document-term matrix and exposes per-topic term weights and per-document
// topic mixtures.
package topic

import (
	"errors"
	"fmt"
	"sort"

	"github.com/james-bowman/nlp"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/seenimoa/narrative/internal/analysis/termfreq"
	"github.com/seenimoa/narrative/pkg/models"
)

// ErrInvalidTopicCount is returned when K < 1.
var ErrInvalidTopicCount = errors.New("topic count must be at least 1")

// InsufficientDataError is returned when the matrix has fewer distinct
// non-zero terms than requested topics.
type InsufficientDataError struct {
	Terms int
	K     int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for topic model: %d non-zero terms, need at least %d", e.Terms, e.K)
}

// Config controls model fitting.
type Config struct {
	K          int     // number of topics
	Seed       uint64  // random seed, identical seeds give identical fits
	Iterations int     // maximum passes over the corpus
	Alpha      float64 // document-topic prior
	Eta        float64 // topic-word prior
}

// DefaultConfig returns the settings used by the report.
func DefaultConfig() Config {
	return Config{
		K:          5,
		Seed:       1234,
		Iterations: 200,
		Alpha:      0.1,
		Eta:        0.01,
	}
}

// Model is a fitted topic model. It is immutable.
type Model struct {
	k          int
	vocab      []string
	docs       []string
	docIdx     map[string]int
	topicTerms [][]float64 // K x V, rows sum to 1
	docTopics  [][]float64 // D x K, rows sum to 1
}

// Fit infers cfg.K topics over m. Documents whose row is empty do not take
// part in the fit and receive a uniform mixture.
func Fit(m *termfreq.Matrix, cfg Config) (*Model, error) {
	if cfg.K < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopicCount, cfg.K)
	}
	if m == nil || m.NonZeroTerms() < cfg.K {
		terms := 0
		if m != nil {
			terms = m.NonZeroTerms()
		}
		return nil, &InsufficientDataError{Terms: terms, K: cfg.K}
	}

	td, cols := m.TermDocument()

	lda := nlp.NewLatentDirichletAllocation(cfg.K)
	lda.Rnd = rand.New(rand.NewSource(cfg.Seed))
	lda.Processes = 1
	if cfg.Iterations > 0 {
		lda.Iterations = cfg.Iterations
	}
	if cfg.Alpha > 0 {
		lda.Alpha = cfg.Alpha
	}
	if cfg.Eta > 0 {
		lda.Eta = cfg.Eta
	}

	mixtures, err := lda.FitTransform(td)
	if err != nil {
		return nil, fmt.Errorf("fit lda: %w", err)
	}

	model := &Model{
		k:      cfg.K,
		vocab:  m.Vocabulary(),
		docs:   m.Documents(),
		docIdx: make(map[string]int),
	}
	for i, id := range model.docs {
		model.docIdx[id] = i
	}

	model.topicTerms = normalizedRows(lda.Components())

	model.docTopics = make([][]float64, len(model.docs))
	for i := range model.docTopics {
		model.docTopics[i] = uniform(cfg.K)
	}
	fitted := normalizedRows(mixtures.T())
	for j, d := range cols {
		model.docTopics[d] = fitted[j]
	}

	return model, nil
}

// K returns the number of topics.
func (m *Model) K() int { return m.k }

// TopicTerms returns the term weights of topic. Weights sum to 1.
func (m *Model) TopicTerms(topic int) map[string]float64 {
	if topic < 0 || topic >= m.k {
		return nil
	}
	out := make(map[string]float64, len(m.vocab))
	for t, w := range m.topicTerms[topic] {
		out[m.vocab[t]] = w
	}
	return out
}

// TopTerms returns the n highest-weighted terms of topic, ties broken
// alphabetically.
func (m *Model) TopTerms(topic, n int) []models.TopicTerm {
	if topic < 0 || topic >= m.k {
		return nil
	}
	out := make([]models.TopicTerm, len(m.vocab))
	for t, w := range m.topicTerms[topic] {
		out[t] = models.TopicTerm{Topic: topic, Term: m.vocab[t], Weight: w}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weight > out[j].Weight
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Probabilities returns the topic mixture of doc, or nil for an unknown id.
func (m *Model) Probabilities(doc string) []float64 {
	i, ok := m.docIdx[doc]
	if !ok {
		return nil
	}
	return append([]float64(nil), m.docTopics[i]...)
}

// DocumentTopics returns every document's mixture and dominant topic in
// matrix row order.
func (m *Model) DocumentTopics() []models.DocumentTopic {
	out := make([]models.DocumentTopic, len(m.docs))
	for i, id := range m.docs {
		probs := append([]float64(nil), m.docTopics[i]...)
		out[i] = models.DocumentTopic{
			DocumentID:    id,
			Topic:         Dominant(probs),
			Probabilities: probs,
		}
	}
	return out
}

// Assignments maps each document to its dominant topic.
func (m *Model) Assignments() map[string]int {
	out := make(map[string]int, len(m.docs))
	for i, id := range m.docs {
		out[id] = Dominant(m.docTopics[i])
	}
	return out
}

// Dominant returns the index of the highest probability. Ties go to the
// lowest index. An empty vector yields -1.
func Dominant(probs []float64) int {
	best := -1
	for i, p := range probs {
		if best < 0 || p > probs[best] {
			best = i
		}
	}
	return best
}

func normalizedRows(a mat.Matrix) [][]float64 {
	r, c := a.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		sum := 0.0
		for j := 0; j < c; j++ {
			v := a.At(i, j)
			if v < 0 {
				v = 0
			}
			row[j] = v
			sum += v
		}
		if sum == 0 {
			row = uniform(c)
		} else {
			for j := range row {
				row[j] /= sum
			}
		}
		out[i] = row
	}
	return out
}

func uniform(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1 / float64(n)
	}
	return out
}
