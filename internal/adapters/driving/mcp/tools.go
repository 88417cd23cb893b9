package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ansa/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question       string `json:"question" jsonschema:"the question to answer from the document corpus"`
	OwnerID        string `json:"owner_id,omitempty" jsonschema:"restrict retrieval to this owner"`
	ThemeID        string `json:"theme_id,omitempty" jsonschema:"restrict retrieval to this topic collection"`
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"conversation to continue for follow-up questions"`
	TopK           int    `json:"top_k,omitempty" jsonschema:"number of documents to ground the answer on (default from configuration)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string            `json:"answer"`
	HasAnswer bool              `json:"has_answer"`
	Sources   []AskSourceOutput `json:"sources"`
}

// AskSourceOutput is one citation in an answer.
type AskSourceOutput struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Source     string  `json:"source,omitempty"`
	Snippet    string  `json:"snippet"`
	Score      float64 `json:"score"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query   string `json:"query" jsonschema:"the search query to find documents"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	OwnerID string `json:"owner_id,omitempty" jsonschema:"restrict the search to this owner"`
	ThemeID string `json:"theme_id,omitempty" jsonschema:"restrict the search to this topic collection"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Source     string  `json:"source,omitempty"`
	Score      float64 `json:"score"`
	Content    string  `json:"content,omitempty"`
}

// RememberInput is the input schema for the remember tool.
type RememberInput struct {
	ConversationID string `json:"conversation_id" jsonschema:"conversation to attach the note to"`
	Content        string `json:"content" jsonschema:"the note to keep for the rest of the conversation"`
}

// RememberOutput is the output schema for the remember tool.
type RememberOutput struct {
	ItemID string `json:"item_id"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question grounded in the stored documents, with sources cited",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the stored documents by semantic similarity",
	}, s.handleSearch)

	if s.ports.Conversation != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "remember",
			Description: "Pin a note to a conversation so later ask calls in it see the note",
		}, s.handleRemember)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer := s.ports.Query.Answer(ctx, domain.QueryRequest{
		Question:       input.Question,
		OwnerID:        input.OwnerID,
		ThemeID:        input.ThemeID,
		ConversationID: input.ConversationID,
		TopK:           input.TopK,
	})

	if answer.Meta.Error != "" {
		return nil, AskOutput{}, fmt.Errorf("query failed: %s", answer.Meta.Error)
	}

	output := AskOutput{
		Answer:    answer.Response,
		HasAnswer: answer.HasAnswer,
		Sources:   make([]AskSourceOutput, len(answer.Sources)),
	}

	for i, src := range answer.Sources {
		output.Sources[i] = AskSourceOutput{
			DocumentID: src.DocumentID,
			Title:      src.Title,
			Source:     src.Source,
			Snippet:    src.Snippet,
			Score:      src.Score,
		}
	}

	return nil, output, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	opts := domain.SearchOptions{
		Limit:     limit,
		OwnerID:   input.OwnerID,
		ThemeID:   input.ThemeID,
		Threshold: -1,
	}
	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			DocumentID: results[i].Document.ID,
			Title:      results[i].Document.DisplayTitle(),
			Source:     results[i].Document.Source,
			Score:      results[i].BestScore(),
			Content:    results[i].Document.Content,
		}
	}

	return nil, output, nil
}

// handleRemember handles the remember tool invocation.
func (s *Server) handleRemember(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RememberInput,
) (*mcp.CallToolResult, RememberOutput, error) {
	if input.ConversationID == "" {
		return nil, RememberOutput{}, fmt.Errorf("conversation_id is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, RememberOutput{}, fmt.Errorf("content is required")
	}

	item := domain.ContextItem{
		ID:             uuid.NewString(),
		ConversationID: input.ConversationID,
		Content:        input.Content,
		CreatedAt:      time.Now(),
	}
	if err := s.ports.Conversation.AddContextItem(ctx, item); err != nil {
		return nil, RememberOutput{}, fmt.Errorf("storing note: %w", err)
	}

	return nil, RememberOutput{ItemID: item.ID}, nil
}
