// Package mcp serves the corpus over the Model Context Protocol, so AI
// assistants can ask questions against local documents and browse what
// the store holds.
package mcp

import "errors"

var (
	// ErrMissingQueryService means no service can answer ask requests.
	ErrMissingQueryService = errors.New("mcp: query service is required")

	// ErrMissingSearchService means no service can run searches.
	ErrMissingSearchService = errors.New("mcp: search service is required")
)
