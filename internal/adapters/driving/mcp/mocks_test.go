package mcp

import (
	"context"

	"github.com/custodia-labs/ansa/internal/core/domain"
)

// mockQueryService returns a canned answer for every question.
type mockQueryService struct {
	answer domain.Answer
}

func (m *mockQueryService) Answer(_ context.Context, _ domain.QueryRequest) domain.Answer {
	return m.answer
}

// mockSearchService records the options it was searched with.
type mockSearchService struct {
	results []domain.Candidate
	opts    domain.SearchOptions
	err     error
}

func (m *mockSearchService) Search(_ context.Context, _ string, opts domain.SearchOptions) ([]domain.Candidate, error) {
	m.opts = opts
	return m.results, m.err
}

// mockDocumentService serves fixed documents and records the theme filter.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	themeID   string
	err       error
}

func (m *mockDocumentService) Store(_ context.Context, doc domain.Document) (string, error) {
	return doc.ID, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) GetMany(_ context.Context, _ []string) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Update(_ context.Context, _ domain.Document) error {
	return m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentService) Count(_ context.Context, _ domain.CountCriteria) (int, error) {
	return len(m.documents), m.err
}

func (m *mockDocumentService) List(_ context.Context, _, themeID string) ([]domain.Document, error) {
	m.themeID = themeID
	return m.documents, m.err
}

// mockConversationStore accumulates context items in memory.
type mockConversationStore struct {
	items []domain.ContextItem
	err   error
}

func (m *mockConversationStore) AppendMessage(_ context.Context, _ domain.Message) error {
	return m.err
}

func (m *mockConversationStore) RecentMessages(_ context.Context, _ string, _ int) ([]domain.Message, error) {
	return nil, m.err
}

func (m *mockConversationStore) AddContextItem(_ context.Context, item domain.ContextItem) error {
	if m.err != nil {
		return m.err
	}
	m.items = append(m.items, item)
	return nil
}

func (m *mockConversationStore) ContextItems(_ context.Context, _ string) ([]domain.ContextItem, error) {
	return m.items, m.err
}
