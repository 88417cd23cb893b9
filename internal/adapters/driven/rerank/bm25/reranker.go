// Package bm25 provides the lexical reference implementation of the
// reranker port.
//
// Candidates are scored with BM25 over the candidate set itself:
// document frequency, document length and the average length are all
// computed from the candidates of one call, so scores are comparable
// within a call but not across calls. Tokenisation is whitespace
// splitting plus lowercasing. The scorer is deterministic and needs no
// external service, which makes it the default reranking strategy.
package bm25

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// Standard BM25 parameters: k1 saturates term frequency, b scales the
// document length penalty.
const (
	k1 = 1.2
	b  = 0.75
)

// Reranker scores candidates with BM25 against the query text.
type Reranker struct{}

// New creates a BM25 reranker.
func New() *Reranker {
	return &Reranker{}
}

// Name identifies the reranking strategy.
func (r *Reranker) Name() string {
	return "bm25"
}

// Rerank scores every candidate against the query and returns them
// ordered by descending score, stable for ties. topK <= 0 returns all.
// A candidate sharing no terms with the query scores zero.
func (r *Reranker) Rerank(_ context.Context, query string, candidates []domain.Candidate, topK int) ([]domain.Candidate, error) {
	if len(candidates) == 0 {
		return []domain.Candidate{}, nil
	}
	terms := uniqueTerms(tokenize(query))

	docs := make([][]string, len(candidates))
	totalLength := 0
	for i, c := range candidates {
		docs[i] = tokenize(c.Document.Content)
		totalLength += len(docs[i])
	}
	avgLength := float64(totalLength) / float64(len(docs))
	if avgLength == 0 {
		avgLength = 1
	}

	// Document frequency per query term across the candidate set.
	df := make(map[string]int, len(terms))
	for _, doc := range docs {
		seen := make(map[string]bool, len(doc))
		for _, term := range doc {
			seen[term] = true
		}
		for _, term := range terms {
			if seen[term] {
				df[term]++
			}
		}
	}

	ranked := make([]domain.Candidate, len(candidates))
	copy(ranked, candidates)
	for i := range ranked {
		score := bm25Score(terms, docs[i], df, len(docs), avgLength)
		ranked[i].Reranked = &score
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Reranked > *ranked[j].Reranked
	})
	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}

// bm25Score sums the per-term BM25 contributions for one document.
func bm25Score(terms, doc []string, df map[string]int, n int, avgLength float64) float64 {
	if len(doc) == 0 || len(terms) == 0 {
		return 0
	}
	freq := make(map[string]int, len(doc))
	for _, term := range doc {
		freq[term]++
	}
	lengthNorm := k1 * (1 - b + b*float64(len(doc))/avgLength)

	score := 0.0
	for _, term := range terms {
		f := float64(freq[term])
		if f == 0 {
			continue
		}
		idf := math.Log((float64(n-df[term])+0.5)/(float64(df[term])+0.5) + 1)
		score += idf * (f * (k1 + 1)) / (f + lengthNorm)
	}
	return score
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	unique := make([]string, 0, len(terms))
	for _, term := range terms {
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		unique = append(unique, term)
	}
	return unique
}
