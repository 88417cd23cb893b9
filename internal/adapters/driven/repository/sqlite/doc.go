// Package sqlite provides a SQLite-based implementation of the document
// repository and conversation store ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. Both ports share a single
// database connection:
//
//   - DocumentRepository: document and embedding persistence
//   - ConversationStore: conversation message persistence
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Similarity Search
//
// SQLite has no native vector index, so SearchSimilar returns matches with
// Scored false and no limit applied: truncating an unranked result set could
// drop the best match. The caller scores, ranks and truncates.
//
// # Data Location
//
// By default, the database is stored at ~/.ansa/data/ansa.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
