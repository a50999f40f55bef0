package text

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/seenimoa/narrative/pkg/models"
)

// Tokenizer splits cleaned text into lowercase word tokens.
type Tokenizer struct {
	Stopwords   StopwordSet
	DropNumeric bool // drop tokens made only of digits (topic-modelling path)
}

// NewTokenizer returns a tokenizer filtering the given stopwords.
func NewTokenizer(stopwords StopwordSet, dropNumeric bool) Tokenizer {
	return Tokenizer{Stopwords: stopwords, DropNumeric: dropNumeric}
}

// Tokens returns the filtered token sequence of text. The sequence is lazy
// and can be ranged over any number of times with identical results.
func (t Tokenizer) Tokens(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for raw := range words(text) {
			w := strings.ToLower(raw)
			if t.Stopwords.Contains(w) {
				continue
			}
			if t.DropNumeric && isNumeric(w) {
				continue
			}
			if !yield(w) {
				return
			}
		}
	}
}

// Collect materializes the token sequence of text.
func (t Tokenizer) Collect(text string) []string {
	var out []string
	for w := range t.Tokens(text) {
		out = append(out, w)
	}
	return out
}

// TokenRecords emits (document, token) pairs for every document in order.
// Documents producing no tokens contribute no records.
func (t Tokenizer) TokenRecords(docs []models.CleanedArticle) []models.TokenRecord {
	var out []models.TokenRecord
	for _, d := range docs {
		for w := range t.Tokens(d.BodyTextCleaned) {
			out = append(out, models.TokenRecord{DocumentID: d.ID, Word: w})
		}
	}
	return out
}

// words yields maximal runs of word characters, with apostrophes kept only
// inside a word ("don't" stays whole, "'quoted'" becomes "quoted").
func words(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := -1
		for i := 0; i <= len(text); {
			r, size := utf8.RuneError, 1
			if i < len(text) {
				r, size = utf8.DecodeRuneInString(text[i:])
			}
			if i < len(text) && isWordRune(r) {
				if start < 0 {
					start = i
				}
				i += size
				continue
			}
			if start >= 0 {
				if w := strings.Trim(text[start:i], "'"); w != "" {
					if !yield(w) {
						return
					}
				}
				start = -1
			}
			i += size
		}
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || unicode.Is(unicode.Mn, r)
}

func isNumeric(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
