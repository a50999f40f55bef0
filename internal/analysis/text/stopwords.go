package text

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// StopwordSet is an immutable set of lowercase stopwords.
type StopwordSet struct {
	words map[string]struct{}
}

// NewStopwordSet builds a set from words. Entries are lowercased and trimmed.
func NewStopwordSet(words ...string) StopwordSet {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			m[w] = struct{}{}
		}
	}
	return StopwordSet{words: m}
}

// Contains reports whether w (already lowercase) is a stopword.
func (s StopwordSet) Contains(w string) bool {
	_, ok := s.words[w]
	return ok
}

// Len returns the number of stopwords.
func (s StopwordSet) Len() int { return len(s.words) }

// Words returns the stopwords in sorted order.
func (s StopwordSet) Words() []string {
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Union returns a new set containing the words of s and extra.
func (s StopwordSet) Union(extra ...string) StopwordSet {
	return NewStopwordSet(append(s.Words(), extra...)...)
}

// LoadStopwords reads a stopword list with one word per line.
// Blank lines and lines starting with '#' are ignored.
func LoadStopwords(path string) (StopwordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return StopwordSet{}, fmt.Errorf("open stopwords %s: %w", path, err)
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return StopwordSet{}, fmt.Errorf("read stopwords %s: %w", path, err)
	}
	return NewStopwordSet(words...), nil
}

// DefaultStopwords returns the built-in English stopword list.
func DefaultStopwords() StopwordSet {
	return NewStopwordSet(englishStopwords...)
}

var englishStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an",
	"and", "any", "are", "aren't", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "can", "can't", "cannot",
	"could", "couldn't", "did", "didn't", "do", "does", "doesn't", "doing", "don't",
	"down", "during", "each", "even", "ever", "few", "for", "from", "further", "get",
	"gets", "got", "had", "hadn't", "has", "hasn't", "have", "haven't", "having",
	"he", "he'd", "he'll", "he's", "her", "here", "here's", "hers", "herself", "him",
	"himself", "his", "how", "how's", "however", "i", "i'd", "i'll", "i'm", "i've",
	"if", "in", "into", "is", "isn't", "it", "it's", "its", "itself", "just", "let's",
	"like", "made", "make", "many", "may", "me", "might", "more", "most", "much",
	"must", "mustn't", "my", "myself", "new", "no", "nor", "not", "now", "of", "off",
	"on", "once", "one", "only", "or", "other", "ought", "our", "ours", "ourselves",
	"out", "over", "own", "said", "same", "say", "says", "shan't", "she", "she'd",
	"she'll", "she's", "should", "shouldn't", "so", "some", "still", "such", "than",
	"that", "that's", "the", "their", "theirs", "them", "themselves", "then",
	"there", "there's", "these", "they", "they'd", "they'll", "they're", "they've",
	"this", "those", "through", "to", "too", "two", "under", "until", "up", "us",
	"use", "used", "very", "was", "wasn't", "way", "we", "we'd", "we'll", "we're",
	"we've", "well", "were", "weren't", "what", "what's", "when", "when's", "where",
	"where's", "which", "while", "who", "who's", "whom", "why", "why's", "will",
	"with", "won't", "would", "wouldn't", "year", "years", "yet", "you", "you'd",
	"you'll", "you're", "you've", "your", "yours", "yourself", "yourselves",
}
