package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	uriScheme = "ansa://" // scheme for every resource this server exposes

	jsonMIME = "application/json"
	textMIME = "text/plain"
)

// registerResources exposes the corpus as MCP resources: a flat
// document listing, per-theme listings, and raw document bodies.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "List of all stored documents",
		MIMEType:    jsonMIME,
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "themes/{themeId}/documents",
		Name:        "theme-documents",
		Description: "Documents filed under a specific topic collection",
		MIMEType:    jsonMIME,
	}, s.handleThemeDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-content",
		Description: "Raw body of a single stored document",
		MIMEType:    textMIME,
	}, s.handleDocumentContentResource)
}

// documentInfo is the trimmed document shape exposed in listings.
type documentInfo struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Source string `json:"source"`
	Theme  string `json:"theme,omitempty"`
}

func (s *Server) handleDocumentsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	// Without a document service the listing is empty rather than an
	// error, so clients can still enumerate resources.
	if s.ports.Document == nil {
		return resourceResult(req.Params.URI, jsonMIME, "[]"), nil
	}
	return s.listDocuments(ctx, req.Params.URI, "")
}

func (s *Server) handleThemeDocumentsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	themeID := extractThemeID(req.Params.URI)
	if s.ports.Document == nil || themeID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return s.listDocuments(ctx, req.Params.URI, themeID)
}

func (s *Server) listDocuments(ctx context.Context, uri, themeID string) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Document.List(ctx, "", themeID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	infos := make([]documentInfo, len(docs))
	for i := range docs {
		infos[i] = documentInfo{
			ID:     docs[i].ID,
			Title:  docs[i].DisplayTitle(),
			Source: docs[i].Source,
			Theme:  docs[i].ThemeID,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}
	return resourceResult(uri, jsonMIME, string(data)), nil
}

func (s *Server) handleDocumentContentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	docID := extractDocumentID(req.Params.URI)
	if s.ports.Document == nil || docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Document.Get(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return resourceResult(req.Params.URI, textMIME, doc.Content), nil
}

func resourceResult(uri, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeType,
			Text:     text,
		}},
	}
}

// extractThemeID pulls the theme from ansa://themes/{themeId}/documents.
func extractThemeID(uri string) string {
	rest, ok := strings.CutPrefix(uri, uriScheme+"themes/")
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, "/documents")
	if !ok {
		return ""
	}
	return id
}

// extractDocumentID pulls the ID from ansa://documents/{documentId}.
func extractDocumentID(uri string) string {
	id, ok := strings.CutPrefix(uri, uriScheme+"documents/")
	if !ok {
		return ""
	}
	return id
}
