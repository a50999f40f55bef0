package topic

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seenimoa/narrative/internal/analysis/termfreq"
	"github.com/seenimoa/narrative/pkg/models"
)

const tolerance = 1e-9

func corpus() *termfreq.Matrix {
	docs := map[string]string{
		"edu-1":  "students homework essay teachers school cheating essay students",
		"edu-2":  "teachers school students exam essay homework plagiarism",
		"edu-3":  "university exam students plagiarism essay teachers",
		"biz-1":  "microsoft investment shares market billion openai shares",
		"biz-2":  "investors market shares nvidia billion chips revenue",
		"biz-3":  "revenue billion microsoft investors market valuation",
		"gov-1":  "regulation law europe ban privacy regulators",
		"gov-2":  "privacy regulators italy ban data law",
		"empty":  "",
		"mixed1": "students market law essay shares privacy",
	}
	ids := []string{"edu-1", "edu-2", "edu-3", "biz-1", "biz-2", "biz-3", "gov-1", "gov-2", "empty", "mixed1"}
	var recs []models.TokenRecord
	for _, id := range ids {
		for _, w := range strings.Fields(docs[id]) {
			recs = append(recs, models.TokenRecord{DocumentID: id, Word: w})
		}
	}
	return termfreq.Build(ids, recs)
}

func testConfig(k int) Config {
	cfg := DefaultConfig()
	cfg.K = k
	cfg.Iterations = 50
	return cfg
}

func TestFitInsufficientData(t *testing.T) {
	m := termfreq.Build([]string{"d1", "d2"}, []models.TokenRecord{
		{DocumentID: "d1", Word: "chatgpt"},
		{DocumentID: "d2", Word: "openai"},
		{DocumentID: "d2", Word: "chatgpt"},
	})
	_, err := Fit(m, testConfig(5))

	var ide *InsufficientDataError
	require.True(t, errors.As(err, &ide), "got %v", err)
	require.Equal(t, 2, ide.Terms)
	require.Equal(t, 5, ide.K)
}

func TestFitInvalidK(t *testing.T) {
	_, err := Fit(corpus(), testConfig(0))
	require.ErrorIs(t, err, ErrInvalidTopicCount)
}

func TestFitNilMatrix(t *testing.T) {
	_, err := Fit(nil, testConfig(2))
	var ide *InsufficientDataError
	require.ErrorAs(t, err, &ide)
}

func TestFitIsSeedReproducible(t *testing.T) {
	m := corpus()
	a, err := Fit(m, testConfig(3))
	require.NoError(t, err)
	b, err := Fit(m, testConfig(3))
	require.NoError(t, err)

	require.Equal(t, a.Assignments(), b.Assignments())
	for _, id := range m.Documents() {
		require.InDeltaSlice(t, a.Probabilities(id), b.Probabilities(id), tolerance)
	}
}

func TestRepeatedFitsAreIdentical(t *testing.T) {
	first, err := Fit(corpus(), testConfig(3))
	require.NoError(t, err)

	for i := 0; i < 25; i++ {
		m := corpus()
		again, err := Fit(m, testConfig(3))
		require.NoError(t, err)
		require.Equal(t, first.Assignments(), again.Assignments(), "fit %d", i)
		for _, id := range m.Documents() {
			require.Equal(t, first.Probabilities(id), again.Probabilities(id), "fit %d, document %s", i, id)
		}
	}
}

func TestTopicTermWeightsSumToOne(t *testing.T) {
	m := corpus()
	model, err := Fit(m, testConfig(3))
	require.NoError(t, err)
	require.Equal(t, 3, model.K())

	for k := 0; k < model.K(); k++ {
		sum := 0.0
		weights := model.TopicTerms(k)
		require.Len(t, weights, m.NonZeroTerms())
		for _, w := range weights {
			require.GreaterOrEqual(t, w, 0.0)
			sum += w
		}
		require.InDelta(t, 1.0, sum, 1e-6, "topic %d", k)
	}
	require.Nil(t, model.TopicTerms(-1))
	require.Nil(t, model.TopicTerms(3))
}

func TestDocumentProbabilitiesSumToOne(t *testing.T) {
	model, err := Fit(corpus(), testConfig(3))
	require.NoError(t, err)

	dts := model.DocumentTopics()
	require.Len(t, dts, 10)
	for _, dt := range dts {
		require.Len(t, dt.Probabilities, 3)
		sum := 0.0
		for _, p := range dt.Probabilities {
			require.GreaterOrEqual(t, p, 0.0)
			require.LessOrEqual(t, p, 1.0+tolerance)
			sum += p
		}
		require.InDelta(t, 1.0, sum, 1e-6, "doc %s", dt.DocumentID)
		require.Equal(t, Dominant(dt.Probabilities), dt.Topic)
	}
}

func TestEmptyDocumentGetsUniformMixture(t *testing.T) {
	model, err := Fit(corpus(), testConfig(4))
	require.NoError(t, err)

	probs := model.Probabilities("empty")
	require.Len(t, probs, 4)
	for _, p := range probs {
		require.InDelta(t, 0.25, p, tolerance)
	}
	require.Equal(t, 0, model.Assignments()["empty"])
	require.Nil(t, model.Probabilities("unknown"))
}

func TestTopTerms(t *testing.T) {
	model, err := Fit(corpus(), testConfig(2))
	require.NoError(t, err)

	top := model.TopTerms(0, 5)
	require.Len(t, top, 5)
	for i := 1; i < len(top); i++ {
		require.GreaterOrEqual(t, top[i-1].Weight, top[i].Weight)
		require.Equal(t, 0, top[i].Topic)
	}
	require.Nil(t, model.TopTerms(9, 5))
}

func TestDominantTieBreak(t *testing.T) {
	tests := []struct {
		probs []float64
		want  int
	}{
		{[]float64{0.2, 0.5, 0.3}, 1},
		{[]float64{0.4, 0.4, 0.2}, 0},
		{[]float64{0.1, 0.45, 0.45}, 1},
		{[]float64{0.25, 0.25, 0.25, 0.25}, 0},
		{[]float64{1}, 0},
		{nil, -1},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Dominant(tt.probs), "probs %v", tt.probs)
	}
}
