package sentiment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/seenimoa/narrative/internal/analysis/text"
	"github.com/seenimoa/narrative/pkg/models"
)

// ------------------------------------------------------------------
// Lexicon-based sentiment scorer. A document's score is the sum of the
// dictionary weights of its tokens (and adjacent-token phrases).
// ------------------------------------------------------------------

// Method names a sentiment dictionary.
type Method string

const (
	MethodAFINN  Method = "afinn"  // integer valence -5..+5
	MethodBing   Method = "bing"   // +1 positive / -1 negative
	MethodMarket Method = "market" // weighted bullish/bearish keywords
)

// Methods returns every supported method.
func Methods() []Method {
	return []Method{MethodAFINN, MethodBing, MethodMarket}
}

// UnsupportedMethodError is returned for an unknown method name.
type UnsupportedMethodError struct {
	Name string
}

func (e *UnsupportedMethodError) Error() string {
	names := make([]string, 0, len(Methods()))
	for _, m := range Methods() {
		names = append(names, string(m))
	}
	return fmt.Sprintf("unsupported sentiment method %q (supported: %s)", e.Name, strings.Join(names, ", "))
}

// ParseMethod validates a method name. Matching is case-insensitive.
func ParseMethod(name string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Methods() {
		if m == known {
			return m, nil
		}
	}
	return "", &UnsupportedMethodError{Name: name}
}

// Scorer scores text against one dictionary. It holds no corpus state and is
// safe for concurrent use.
type Scorer struct {
	method    Method
	lexicon   map[string]float64
	maxPhrase int // longest dictionary entry in tokens
	tokenizer text.Tokenizer
}

// NewScorer returns a scorer for method. extra entries override or extend
// the built-in dictionary.
func NewScorer(method Method, extra map[string]float64) (*Scorer, error) {
	lex := builtinLexicon(method)
	if lex == nil {
		return nil, &UnsupportedMethodError{Name: string(method)}
	}
	for w, v := range extra {
		lex[strings.ToLower(w)] = v
	}

	maxPhrase := 1
	for w := range lex {
		if n := len(strings.Fields(w)); n > maxPhrase {
			maxPhrase = n
		}
	}

	return &Scorer{
		method:    method,
		lexicon:   lex,
		maxPhrase: maxPhrase,
		tokenizer: text.NewTokenizer(text.NewStopwordSet(), false),
	}, nil
}

// Method returns the dictionary in use.
func (s *Scorer) Method() Method { return s.method }

// Score returns the summed weight of every dictionary hit in txt. Empty or
// whitespace-only text scores exactly 0.
func (s *Scorer) Score(txt string) float64 {
	tokens := s.tokenizer.Collect(txt)
	if len(tokens) == 0 {
		return 0
	}

	score := 0.0
	for i := 0; i < len(tokens); {
		matched := 1
		// longest phrase wins
		for n := min(s.maxPhrase, len(tokens)-i); n >= 1; n-- {
			if w, ok := s.lexicon[strings.Join(tokens[i:i+n], " ")]; ok {
				score += w
				matched = n
				break
			}
		}
		i += matched
	}
	return score
}

// Hits returns the dictionary words found in txt with their occurrence
// counts, most frequent first.
func (s *Scorer) Hits(txt string) []WordHit {
	counts := make(map[string]int)
	for _, w := range s.tokenizer.Collect(txt) {
		if _, ok := s.lexicon[w]; ok {
			counts[w]++
		}
	}
	out := make([]WordHit, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordHit{Word: w, Weight: s.lexicon[w], Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	return out
}

// WordHit is a dictionary word found in a text.
type WordHit struct {
	Word   string
	Weight float64
	Count  int
}

// ScoreArticle scores the cleaned body of an article.
func (s *Scorer) ScoreArticle(a models.CleanedArticle) models.SentimentScore {
	return models.SentimentScore{
		DocumentID:  a.ID,
		PublishedAt: a.PublishedAt,
		Score:       s.Score(a.BodyTextCleaned),
	}
}

// Score scores txt with the named built-in method.
func Score(txt, method string) (float64, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return 0, err
	}
	s, err := NewScorer(m, nil)
	if err != nil {
		return 0, err
	}
	return s.Score(txt), nil
}

// Label classifies a score for display.
func Label(score float64) string {
	switch {
	case score > 0:
		return "Positive"
	case score < 0:
		return "Negative"
	default:
		return "Neutral"
	}
}
