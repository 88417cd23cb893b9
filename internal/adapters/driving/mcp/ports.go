package mcp

import (
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
	"github.com/custodia-labs/ansa/internal/core/ports/driving"
)

// Ports is the injection point for everything the MCP server exposes.
// Query and Search are required. Document may be nil, in which case the
// document resources return empty listings. Conversation may be nil, in
// which case the remember tool is not registered at all.
type Ports struct {
	Query        driving.QueryService
	Search       driving.SearchService
	Document     driving.DocumentService
	Conversation driven.ConversationStore
}

// Validate reports whether the required ports are present.
func (p *Ports) Validate() error {
	switch {
	case p.Query == nil:
		return ErrMissingQueryService
	case p.Search == nil:
		return ErrMissingSearchService
	}
	return nil
}
