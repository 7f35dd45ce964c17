// Package tfidf maintains per-document term-frequency vectors, corpus
// document-frequency, and derived inverse-document-frequency for ranked
// text search (§4.E), supporting both cosine TF-IDF and BM25 scoring.
package tfidf

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/kgraph/kgcore/internal/kgtypes"
)

// DefaultK1 and DefaultB are BM25's term-saturation and length-normalisation
// parameters (§4.E default k1=1.2, b=0.75).
const (
	DefaultK1 = 1.2
	DefaultB  = 0.75
)

// Statistics holds the incremental state needed to score ranked queries.
type Statistics struct {
	K1 float64
	B  float64

	termFreq map[string]map[string]int // docID -> term -> count
	docLen   map[string]int
	docFreq  map[string]int // term -> number of docs containing it
	idf      map[string]float64

	totalDocLen int
	docCount    int
}

// New returns an empty statistics set with default BM25 parameters.
func New() *Statistics {
	return &Statistics{
		K1:       DefaultK1,
		B:        DefaultB,
		termFreq: make(map[string]map[string]int),
		docLen:   make(map[string]int),
		docFreq:  make(map[string]int),
		idf:      make(map[string]float64),
	}
}

// Tokenize lowercases entity text (name ∪ entityType ∪ observations) into a
// stop-word-filtered token list.
func Tokenize(e *kgtypes.Entity) []string {
	var tokens []string
	collect := func(s string) {
		var cur strings.Builder
		flush := func() {
			if cur.Len() == 0 {
				return
			}
			tok := cur.String()
			if !StopWords[tok] {
				tokens = append(tokens, tok)
			}
			cur.Reset()
		}
		for _, r := range s {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				cur.WriteRune(unicode.ToLower(r))
			} else {
				flush()
			}
		}
		flush()
	}
	collect(e.Name)
	collect(e.EntityType)
	for _, o := range e.Observations {
		collect(o)
	}
	return tokens
}

func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}

// AddDocument inserts docID's tokens, incrementing document frequencies and
// recomputing IDF only for the terms that were added.
func (s *Statistics) AddDocument(docID string, tokens []string) {
	if _, exists := s.termFreq[docID]; exists {
		s.RemoveDocument(docID)
	}
	counts := termCounts(tokens)
	s.termFreq[docID] = counts
	s.docLen[docID] = len(tokens)
	s.totalDocLen += len(tokens)
	s.docCount++

	for term := range counts {
		s.docFreq[term]++
		s.recomputeIDF(term)
	}
}

// RemoveDocument subtracts docID's contribution; when a term's document
// frequency reaches zero it is dropped from the IDF table entirely.
func (s *Statistics) RemoveDocument(docID string) {
	counts, ok := s.termFreq[docID]
	if !ok {
		return
	}
	for term := range counts {
		s.docFreq[term]--
		if s.docFreq[term] <= 0 {
			delete(s.docFreq, term)
			delete(s.idf, term)
		} else {
			s.recomputeIDF(term)
		}
	}
	s.totalDocLen -= s.docLen[docID]
	delete(s.docLen, docID)
	delete(s.termFreq, docID)
	s.docCount--
}

// UpdateDocument diffs the old and new token sets, applying only the delta
// rather than a full remove+add.
func (s *Statistics) UpdateDocument(docID string, newTokens []string) {
	oldCounts, existed := s.termFreq[docID]
	newCounts := termCounts(newTokens)
	if !existed {
		s.AddDocument(docID, newTokens)
		return
	}

	for term := range oldCounts {
		if _, stillPresent := newCounts[term]; !stillPresent {
			s.docFreq[term]--
			if s.docFreq[term] <= 0 {
				delete(s.docFreq, term)
				delete(s.idf, term)
			} else {
				s.recomputeIDF(term)
			}
		}
	}
	for term := range newCounts {
		if _, wasPresent := oldCounts[term]; !wasPresent {
			s.docFreq[term]++
			s.recomputeIDF(term)
		}
	}

	s.totalDocLen += len(newTokens) - s.docLen[docID]
	s.docLen[docID] = len(newTokens)
	s.termFreq[docID] = newCounts
}

func (s *Statistics) recomputeIDF(term string) {
	df := s.docFreq[term]
	if df == 0 || s.docCount == 0 {
		delete(s.idf, term)
		return
	}
	// BM25/TF-IDF smoothed IDF: log(1 + (N - df + 0.5) / (df + 0.5)).
	s.idf[term] = math.Log(1 + (float64(s.docCount)-float64(df)+0.5)/(float64(df)+0.5))
}

func (s *Statistics) avgDocLen() float64 {
	if s.docCount == 0 {
		return 0
	}
	return float64(s.totalDocLen) / float64(s.docCount)
}

// Scored is one ranked result.
type Scored struct {
	DocID string
	Score float64
}

// ScoreBM25 ranks every document containing at least one query term via
// BM25. Empty corpora return an empty list.
func (s *Statistics) ScoreBM25(queryTokens []string) []Scored {
	if s.docCount == 0 {
		return nil
	}
	avgLen := s.avgDocLen()
	scores := make(map[string]float64)
	seen := make(map[string]bool)
	for _, term := range queryTokens {
		if seen[term] {
			continue
		}
		seen[term] = true
		idf, ok := s.idf[term]
		if !ok {
			continue
		}
		for docID, counts := range s.termFreq {
			tf, ok := counts[term]
			if !ok || tf == 0 {
				continue
			}
			dl := float64(s.docLen[docID])
			denom := float64(tf) + s.K1*(1-s.B+s.B*dl/nonZero(avgLen))
			scores[docID] += idf * (float64(tf) * (s.K1 + 1)) / denom
		}
	}
	return sortScores(scores)
}

// ScoreCosine ranks via standard TF-IDF cosine similarity between the query
// vector and each document vector.
func (s *Statistics) ScoreCosine(queryTokens []string) []Scored {
	if s.docCount == 0 {
		return nil
	}
	qCounts := termCounts(queryTokens)
	qVec := make(map[string]float64, len(qCounts))
	var qNorm float64
	for term, tf := range qCounts {
		idf := s.idf[term]
		w := float64(tf) * idf
		qVec[term] = w
		qNorm += w * w
	}
	qNorm = math.Sqrt(qNorm)
	if qNorm == 0 {
		return nil
	}

	scores := make(map[string]float64)
	for docID, counts := range s.termFreq {
		var dot, dNorm float64
		for term, tf := range counts {
			idf := s.idf[term]
			w := float64(tf) * idf
			dNorm += w * w
			if qw, ok := qVec[term]; ok {
				dot += qw * w
			}
		}
		dNorm = math.Sqrt(dNorm)
		if dot == 0 || dNorm == 0 {
			continue
		}
		scores[docID] = dot / (dNorm * qNorm)
	}
	return sortScores(scores)
}

func sortScores(scores map[string]float64) []Scored {
	out := make([]Scored, 0, len(scores))
	for id, sc := range scores {
		if sc > 0 {
			out = append(out, Scored{DocID: id, Score: sc})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].DocID < out[j].DocID
	})
	return out
}

func nonZero(f float64) float64 {
	if f == 0 {
		return 1
	}
	return f
}

// DocCount reports how many documents are indexed.
func (s *Statistics) DocCount() int { return s.docCount }
