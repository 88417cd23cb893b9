// Package repository provides factory functions for creating the
// storage backends behind the document repository and conversation
// store ports.
package repository

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ansa/internal/adapters/driven/repository/chroma"
	"github.com/custodia-labs/ansa/internal/adapters/driven/repository/memory"
	"github.com/custodia-labs/ansa/internal/adapters/driven/repository/sqlite"
	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

// Backends bundles the adapters created for a storage configuration.
// The document repository and the conversation store share a backend
// when it can serve both; Chroma stores documents only, so
// conversations fall back to process memory.
type Backends struct {
	Documents     driven.DocumentRepository
	Conversations driven.ConversationStore
}

// Create builds the storage backends for the configured repository
// kind. An empty kind selects the in-memory backend.
func Create(ctx context.Context, settings domain.StorageSettings) (*Backends, error) {
	switch settings.Repository {
	case domain.RepositoryMemory, "":
		return &Backends{
			Documents:     memory.New(),
			Conversations: memory.NewConversationStore(),
		}, nil

	case domain.RepositorySQLite:
		store, err := sqlite.NewStore(settings.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return &Backends{
			Documents:     store.DocumentRepository(),
			Conversations: store.ConversationStore(),
		}, nil

	case domain.RepositoryChroma:
		repo, err := chroma.New(ctx, chroma.Config{
			URL:        settings.ChromaURL,
			Collection: settings.ChromaCollection,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to chroma: %w", err)
		}
		return &Backends{
			Documents:     repo,
			Conversations: memory.NewConversationStore(),
		}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported repository kind %q", domain.ErrInvalidInput, settings.Repository)
	}
}

// Close releases the backends. Backends sharing a connection close
// together through the document repository.
func (b *Backends) Close() error {
	if b == nil || b.Documents == nil {
		return nil
	}
	return b.Documents.Close()
}
