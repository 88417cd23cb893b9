package llm

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

// --- Mock implementations ---

type mockLLM struct {
	responses   []string
	generateErr error
	prompts     []string
}

func (m *mockLLM) Generate(_ context.Context, _, user string, _ driven.GenerateOptions) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	m.prompts = append(m.prompts, user)
	if len(m.responses) == 0 {
		return "5", nil
	}
	response := m.responses[0]
	m.responses = m.responses[1:]
	return response, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }

func (m *mockLLM) Ping(_ context.Context) error { return nil }

func (m *mockLLM) Close() error { return nil }

type mockPromptStore struct {
	prompt string
	err    error
}

func (m *mockPromptStore) Load(_ string) (string, error) { return m.prompt, m.err }

func (m *mockPromptStore) Reload() {}

// --- Test helpers ---

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func candidate(id, content string) domain.Candidate {
	return domain.Candidate{
		Document: domain.Document{ID: id, Content: content},
		Score:    0.8,
	}
}

// --- Tests ---

func TestRerank_OrdersByModelScore(t *testing.T) {
	svc := &mockLLM{responses: []string{"3", "9", "7"}}
	r := New(svc, discardLogger())
	candidates := []domain.Candidate{
		candidate("low", "first document"),
		candidate("high", "second document"),
		candidate("mid", "third document"),
	}

	ranked, err := r.Rerank(context.Background(), "question", candidates, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "high", ranked[0].Document.ID)
	assert.Equal(t, "mid", ranked[1].Document.ID)
	assert.Equal(t, "low", ranked[2].Document.ID)

	assert.InDelta(t, 0.9, *ranked[0].Reranked, 1e-9)
	assert.InDelta(t, 0.7, *ranked[1].Reranked, 1e-9)
	assert.InDelta(t, 0.3, *ranked[2].Reranked, 1e-9)
}

func TestRerank_ParsesDecoratedScores(t *testing.T) {
	svc := &mockLLM{responses: []string{"Score: 8", "7/10", "9."}}
	r := New(svc, discardLogger())
	candidates := []domain.Candidate{
		candidate("a", "one"),
		candidate("b", "two"),
		candidate("c", "three"),
	}

	ranked, err := r.Rerank(context.Background(), "question", candidates, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	// Sorted: c (0.9), a (0.8), b (0.7).
	assert.Equal(t, "c", ranked[0].Document.ID)
	assert.Equal(t, "a", ranked[1].Document.ID)
	assert.Equal(t, "b", ranked[2].Document.ID)
}

func TestRerank_UnparseableResponseFallsBackToOverlap(t *testing.T) {
	svc := &mockLLM{responses: []string{"I cannot rate this document"}}
	r := New(svc, discardLogger())
	candidates := []domain.Candidate{
		candidate("a", "alpha gamma delta"),
	}

	ranked, err := r.Rerank(context.Background(), "alpha beta", candidates, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 1)

	// One of the two query terms appears in the document.
	assert.InDelta(t, 0.5, *ranked[0].Reranked, 1e-9)
}

func TestRerank_TopKTruncates(t *testing.T) {
	svc := &mockLLM{responses: []string{"9", "5", "7"}}
	r := New(svc, discardLogger())
	candidates := []domain.Candidate{
		candidate("a", "one"),
		candidate("b", "two"),
		candidate("c", "three"),
	}

	ranked, err := r.Rerank(context.Background(), "question", candidates, 2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].Document.ID)
	assert.Equal(t, "c", ranked[1].Document.ID)
}

func TestRerank_GenerateFailureAborts(t *testing.T) {
	svc := &mockLLM{generateErr: assert.AnError}
	r := New(svc, discardLogger())
	candidates := []domain.Candidate{candidate("a", "one")}

	_, err := r.Rerank(context.Background(), "question", candidates, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRerank_NilService(t *testing.T) {
	r := New(nil, discardLogger())

	_, err := r.Rerank(context.Background(), "question", []domain.Candidate{candidate("a", "one")}, 0)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestRerank_EmptyCandidates(t *testing.T) {
	r := New(&mockLLM{}, discardLogger())

	ranked, err := r.Rerank(context.Background(), "question", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestRerank_CustomPrompt(t *testing.T) {
	svc := &mockLLM{responses: []string{"6"}}
	r := New(svc, discardLogger())
	r.SetPromptStore(&mockPromptStore{prompt: "CUSTOM RATING %s %s"})

	_, err := r.Rerank(context.Background(), "question", []domain.Candidate{candidate("a", "body")}, 0)
	require.NoError(t, err)

	require.Len(t, svc.prompts, 1)
	assert.Contains(t, svc.prompts[0], "CUSTOM RATING")
	assert.Contains(t, svc.prompts[0], "question")
	assert.Contains(t, svc.prompts[0], "body")
}

func TestRerank_MalformedCustomPromptUsesDefault(t *testing.T) {
	svc := &mockLLM{responses: []string{"6"}}
	r := New(svc, discardLogger())
	r.SetPromptStore(&mockPromptStore{prompt: "no placeholders here"})

	_, err := r.Rerank(context.Background(), "question", []domain.Candidate{candidate("a", "body")}, 0)
	require.NoError(t, err)

	require.Len(t, svc.prompts, 1)
	assert.Contains(t, svc.prompts[0], "scale from 0 to 10")
}

func TestRerank_KeepsRetrievalScore(t *testing.T) {
	svc := &mockLLM{responses: []string{"6"}}
	r := New(svc, discardLogger())

	ranked, err := r.Rerank(context.Background(), "question", []domain.Candidate{candidate("a", "body")}, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, 0.8, ranked[0].Score)
}

func TestParseScore(t *testing.T) {
	cases := []struct {
		response string
		want     float64
		ok       bool
	}{
		{"7", 0.7, true},
		{"7.5", 0.75, true},
		{"0", 0, true},
		{"10", 1.0, true},
		{"15", 1.0, true},
		{"-3", 0, true},
		{"7/10", 0.7, true},
		{"Score: 8", 0.8, true},
		{"The answer is 4.", 0.4, true},
		{"no digits here", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseScore(tc.response)
		assert.Equal(t, tc.ok, ok, "response %q", tc.response)
		assert.InDelta(t, tc.want, got, 1e-9, "response %q", tc.response)
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "llm", New(&mockLLM{}, discardLogger()).Name())
}
