// Package llm provides an LLM-scored implementation of the reranker
// port.
//
// Each candidate is scored by asking the model to rate its relevance to
// the query from 0 to 10; scores are normalised to [0, 1] so the same
// minimum-score threshold works for every reranking strategy. A
// response the scorer cannot parse falls back to lexical term overlap
// for that candidate, so one chatty model reply does not sink the whole
// pass. Scoring costs one generation call per candidate.
package llm

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

// Ensure Reranker implements the interfaces.
var (
	_ driven.Reranker         = (*Reranker)(nil)
	_ driven.PromptStoreAware = (*Reranker)(nil)
)

// scoringSystem keeps the model terse; the per-candidate prompt carries
// the actual instruction.
const scoringSystem = "You judge how relevant documents are to search queries. Respond with only a number."

// defaultScorePrompt is used when no custom template is configured.
// The placeholders receive the query and the document content.
const defaultScorePrompt = `Rate how relevant the following document is to the query on a scale from 0 to 10, where 0 means completely irrelevant and 10 means it directly answers the query.

Query: %s

Document:
%s

Respond with a single number from 0 to 10 and nothing else.`

// maxScoreTokens bounds the scoring response; a relevance number needs
// very few tokens.
const maxScoreTokens = 8

// Reranker scores candidates by asking an LLM to rate each one.
type Reranker struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	log     *logrus.Logger
}

// New creates an LLM reranker over the given service.
func New(svc driven.LLMService, log *logrus.Logger) *Reranker {
	if log == nil {
		log = logrus.New()
	}
	return &Reranker{llm: svc, log: log}
}

// SetPromptStore sets the prompt store for loading a customised scoring
// prompt.
func (r *Reranker) SetPromptStore(store driven.PromptStore) {
	r.prompts = store
}

// Name identifies the reranking strategy.
func (r *Reranker) Name() string {
	return "llm"
}

// Rerank scores every candidate against the query and returns them
// ordered by descending score, stable for ties. topK <= 0 returns all.
// A generation failure aborts the pass; the caller treats reranking as
// advisory and keeps the retrieval order.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []domain.Candidate, topK int) ([]domain.Candidate, error) {
	if len(candidates) == 0 {
		return []domain.Candidate{}, nil
	}
	if r.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	template := r.promptTemplate()

	ranked := make([]domain.Candidate, len(candidates))
	copy(ranked, candidates)
	for i := range ranked {
		prompt := fmt.Sprintf(template, query, ranked[i].Document.Content)
		response, err := r.llm.Generate(ctx, scoringSystem, prompt, driven.GenerateOptions{MaxTokens: maxScoreTokens})
		if err != nil {
			return nil, fmt.Errorf("score candidate %s: %w", ranked[i].Document.ID, err)
		}

		score, ok := parseScore(response)
		if !ok {
			score = overlapScore(query, ranked[i].Document.Content)
			r.log.WithFields(logrus.Fields{
				"id":       ranked[i].Document.ID,
				"response": response,
			}).Debug("Unparseable rerank score, falling back to term overlap")
		}
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

// promptTemplate returns the customised scoring prompt when one is
// configured and well-formed, otherwise the default.
func (r *Reranker) promptTemplate() string {
	if r.prompts == nil {
		return defaultScorePrompt
	}
	custom, err := r.prompts.Load(driven.PromptRerankScore)
	if err != nil || strings.TrimSpace(custom) == "" {
		return defaultScorePrompt
	}
	if strings.Count(custom, "%s") != 2 {
		r.log.Warnf("Custom rerank prompt needs exactly two %%s placeholders, using default")
		return defaultScorePrompt
	}
	return custom
}

// parseScore extracts a 0-10 relevance rating from a model response and
// normalises it to [0, 1]. Values outside the scale are clamped.
func parseScore(response string) (float64, bool) {
	for _, field := range strings.Fields(response) {
		field = strings.Trim(field, `.,:;!()[]"'`)
		if i := strings.IndexByte(field, '/'); i > 0 {
			field = field[:i]
		}
		if field == "" {
			continue
		}
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			continue
		}
		if value < 0 {
			value = 0
		}
		if value > 10 {
			value = 10
		}
		return value / 10, true
	}
	return 0, false
}

// overlapScore is the lexical fallback: the fraction of query terms
// present in the document, in [0, 1].
func overlapScore(query, content string) float64 {
	terms := uniqueTerms(tokenize(query))
	if len(terms) == 0 {
		return 0
	}
	present := make(map[string]struct{})
	for _, term := range tokenize(content) {
		present[term] = struct{}{}
	}
	hits := 0
	for _, term := range terms {
		if _, ok := present[term]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
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
