// Package termfreq builds the sparse document-term matrix of a corpus.
package termfreq

import (
	"sort"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/seenimoa/narrative/pkg/models"
)

// Matrix is a sparse mapping (document, term) -> count. Absent entries are 0.
// Documents keep their input order; the vocabulary is sorted.
type Matrix struct {
	docs    []string
	docIdx  map[string]int
	terms   []string
	termIdx map[string]int
	rows    []map[int]int // per document: term index -> count
	sums    []int
}

// TermCount is a term with its corpus-wide frequency.
type TermCount struct {
	Term  string
	Count int
}

// Build counts token occurrences per document. Every id in docIDs gets a row,
// even when none of its tokens survived filtering. Ids that only appear in
// records are appended in first-seen order.
func Build(docIDs []string, records []models.TokenRecord) *Matrix {
	m := &Matrix{
		docIdx:  make(map[string]int, len(docIDs)),
		termIdx: make(map[string]int),
	}
	for _, id := range docIDs {
		m.addDoc(id)
	}

	vocab := make(map[string]struct{})
	for _, r := range records {
		m.addDoc(r.DocumentID)
		vocab[r.Word] = struct{}{}
	}

	m.terms = make([]string, 0, len(vocab))
	for w := range vocab {
		m.terms = append(m.terms, w)
	}
	sort.Strings(m.terms)
	for i, w := range m.terms {
		m.termIdx[w] = i
	}

	for _, r := range records {
		d := m.docIdx[r.DocumentID]
		m.rows[d][m.termIdx[r.Word]]++
		m.sums[d]++
	}
	return m
}

func (m *Matrix) addDoc(id string) {
	if _, ok := m.docIdx[id]; ok {
		return
	}
	m.docIdx[id] = len(m.docs)
	m.docs = append(m.docs, id)
	m.rows = append(m.rows, make(map[int]int))
	m.sums = append(m.sums, 0)
}

// Documents returns the document ids in row order.
func (m *Matrix) Documents() []string {
	return append([]string(nil), m.docs...)
}

// Vocabulary returns the sorted term list in column order.
func (m *Matrix) Vocabulary() []string {
	return append([]string(nil), m.terms...)
}

// NumDocuments returns the number of rows.
func (m *Matrix) NumDocuments() int { return len(m.docs) }

// NonZeroTerms returns the number of distinct terms with a non-zero count.
func (m *Matrix) NonZeroTerms() int { return len(m.terms) }

// Count returns the occurrences of term in doc.
func (m *Matrix) Count(doc, term string) int {
	d, ok := m.docIdx[doc]
	if !ok {
		return 0
	}
	t, ok := m.termIdx[term]
	if !ok {
		return 0
	}
	return m.rows[d][t]
}

// RowSum returns the total token count of doc.
func (m *Matrix) RowSum(doc string) int {
	d, ok := m.docIdx[doc]
	if !ok {
		return 0
	}
	return m.sums[d]
}

// Terms returns the per-term counts of doc keyed by term.
func (m *Matrix) Terms(doc string) map[string]int {
	d, ok := m.docIdx[doc]
	if !ok {
		return nil
	}
	out := make(map[string]int, len(m.rows[d]))
	for t, c := range m.rows[d] {
		out[m.terms[t]] = c
	}
	return out
}

// EmptyDocuments returns the ids of documents whose row sums to zero.
func (m *Matrix) EmptyDocuments() []string {
	var out []string
	for i, id := range m.docs {
		if m.sums[i] == 0 {
			out = append(out, id)
		}
	}
	return out
}

// TermDocument returns the matrix transposed to terms x documents, restricted
// to non-empty documents, together with the row index of each kept column.
// This is the layout consumed by the nlp topic models.
func (m *Matrix) TermDocument() (mat.Matrix, []int) {
	var cols []int
	for i := range m.docs {
		if m.sums[i] > 0 {
			cols = append(cols, i)
		}
	}
	if len(cols) == 0 || len(m.terms) == 0 {
		return nil, nil
	}

	// Entries are laid out in a fixed order (term rows ascending, document
	// columns ascending within a row) so the fit sums them the same way on
	// every call. Map iteration order must not leak into the matrix.
	indptr := make([]int, len(m.terms)+1)
	for _, d := range cols {
		for t := range m.rows[d] {
			indptr[t+1]++
		}
	}
	for t := range m.terms {
		indptr[t+1] += indptr[t]
	}
	next := append([]int(nil), indptr[:len(m.terms)]...)
	ind := make([]int, indptr[len(m.terms)])
	data := make([]float64, len(ind))
	for j, d := range cols {
		for _, t := range sortedTerms(m.rows[d]) {
			ind[next[t]] = j
			data[next[t]] = float64(m.rows[d][t])
			next[t]++
		}
	}
	return sparse.NewCSR(len(m.terms), len(cols), indptr, ind, data), cols
}

// sortedTerms returns the term indices of a row in ascending order.
func sortedTerms(row map[int]int) []int {
	out := make([]int, 0, len(row))
	for t := range row {
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}

// TopTerms returns the n most frequent terms across the corpus, ties broken
// alphabetically. n <= 0 returns every term.
func (m *Matrix) TopTerms(n int) []TermCount {
	totals := make([]int, len(m.terms))
	for _, row := range m.rows {
		for t, c := range row {
			totals[t] += c
		}
	}
	out := make([]TermCount, len(m.terms))
	for i, w := range m.terms {
		out[i] = TermCount{Term: w, Count: totals[i]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
