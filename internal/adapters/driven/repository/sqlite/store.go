package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/custodia-labs/ansa/internal/adapters/driven/repository/sqlite/migrations"
	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

// Store owns the SQLite database connection shared by the document
// repository and the conversation store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database at path and applies any
// pending migrations. An empty path selects the default location
// ~/.ansa/data/ansa.db.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".ansa", "data", "ansa.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	// WAL allows concurrent readers while a write is in flight; the
	// busy timeout covers the brief writer lock.
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DocumentRepository returns the document repository backed by this store.
func (s *Store) DocumentRepository() driven.DocumentRepository {
	return &documentRepository{store: s}
}

// ConversationStore returns the conversation store backed by this store.
func (s *Store) ConversationStore() driven.ConversationStore {
	return &conversationStore{store: s}
}

// ==================== Migrations ====================

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	names, err := fs.Glob(migrations.FS, "*.up.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			return fmt.Errorf("parse migration name %q: %w", name, err)
		}
		if version <= current {
			continue
		}
		script, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return fmt.Errorf("read migration %q: %w", name, err)
		}
		if _, err := s.db.Exec(string(script)); err != nil {
			return fmt.Errorf("apply migration %q: %w", name, err)
		}
		if _, err := s.db.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %q: %w", name, err)
		}
	}
	return nil
}

// ==================== Documents ====================

// Ensure documentRepository implements the repository interfaces.
var (
	_ driven.DocumentRepository = (*documentRepository)(nil)
	_ driven.BatchFetcher       = (*documentRepository)(nil)
	_ driven.Counter            = (*documentRepository)(nil)
)

const documentColumns = `id, owner_id, theme_id, title, source, content, embedding, metadata, created_at, updated_at`

type documentRepository struct {
	store *Store
}

// Store persists a new document.
func (r *documentRepository) Store(ctx context.Context, doc domain.Document) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	res, err := r.store.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO documents (`+documentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.OwnerID, doc.ThemeID, doc.Title, doc.Source, doc.Content,
		float32SliceToBytes(doc.Embedding), string(metadata), doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check insert result: %w", err)
	}
	if affected == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

// Get retrieves a document by ID.
func (r *documentRepository) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// GetMany retrieves the documents for the given IDs in one query.
// Missing IDs are skipped, not errors.
func (r *documentRepository) GetMany(ctx context.Context, ids []string) ([]domain.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.store.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get documents: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// Update replaces an existing document.
func (r *documentRepository) Update(ctx context.Context, doc domain.Document) error {
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now().UTC()
	}
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	res, err := r.store.db.ExecContext(ctx,
		`UPDATE documents
		 SET owner_id = ?, theme_id = ?, title = ?, source = ?, content = ?,
		     embedding = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		doc.OwnerID, doc.ThemeID, doc.Title, doc.Source, doc.Content,
		float32SliceToBytes(doc.Embedding), string(metadata), doc.UpdatedAt, doc.ID,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a document.
func (r *documentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.store.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SearchSimilar returns every embedded document in scope with Scored
// false. SQLite has no vector index, so applying the limit here could
// drop the best match before anything has scored it; the caller
// scores, ranks and truncates.
func (r *documentRepository) SearchSimilar(ctx context.Context, _ []float32, opts domain.SearchOptions) ([]driven.SimilarityMatch, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE embedding IS NOT NULL`
	var args []any
	if opts.OwnerID != "" {
		query += ` AND owner_id = ?`
		args = append(args, opts.OwnerID)
	}
	if opts.ThemeID != "" {
		query += ` AND theme_id = ?`
		args = append(args, opts.ThemeID)
	}

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	var matches []driven.SimilarityMatch //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		matches = append(matches, driven.SimilarityMatch{Document: *doc})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return matches, nil
}

// GetAll returns every document, scoped to owner and theme when set.
func (r *documentRepository) GetAll(ctx context.Context, ownerID, themeID string) ([]domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	var conditions []string
	var args []any
	if ownerID != "" {
		conditions = append(conditions, "owner_id = ?")
		args = append(args, ownerID)
	}
	if themeID != "" {
		conditions = append(conditions, "theme_id = ?")
		args = append(args, themeID)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at"

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// Count returns the number of documents matching the criteria. Owner
// and theme narrow the query itself; metadata lives in a JSON column,
// so those filters are applied in Go.
func (r *documentRepository) Count(ctx context.Context, criteria domain.CountCriteria) (int, error) {
	var conditions []string
	var args []any
	if criteria.OwnerID != "" {
		conditions = append(conditions, "owner_id = ?")
		args = append(args, criteria.OwnerID)
	}
	if criteria.ThemeID != "" {
		conditions = append(conditions, "theme_id = ?")
		args = append(args, criteria.ThemeID)
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	if len(criteria.Metadata) == 0 {
		var count int
		err := r.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`+where, args...).Scan(&count)
		if err != nil {
			return 0, fmt.Errorf("count documents: %w", err)
		}
		return count, nil
	}

	rows, err := r.store.db.QueryContext(ctx,
		`SELECT owner_id, theme_id, metadata FROM documents`+where, args...)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var doc domain.Document
		var metadata string
		if err := rows.Scan(&doc.OwnerID, &doc.ThemeID, &metadata); err != nil {
			return 0, fmt.Errorf("scan document: %w", err)
		}
		if err := json.Unmarshal([]byte(metadata), &doc.Metadata); err != nil {
			return 0, fmt.Errorf("unmarshal metadata: %w", err)
		}
		if criteria.Matches(doc) {
			count++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate documents: %w", err)
	}
	return count, nil
}

// Close closes the underlying store.
func (r *documentRepository) Close() error {
	return r.store.Close()
}

// ==================== Scan helpers ====================

func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var embedding []byte
	var metadata string
	err := row.Scan(&doc.ID, &doc.OwnerID, &doc.ThemeID, &doc.Title, &doc.Source,
		&doc.Content, &embedding, &metadata, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	doc.Embedding = bytesToFloat32Slice(embedding)
	if err := json.Unmarshal([]byte(metadata), &doc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return &doc, nil
}

func scanDocumentRows(rows *sql.Rows) (*domain.Document, error) {
	var doc domain.Document
	var embedding []byte
	var metadata string
	err := rows.Scan(&doc.ID, &doc.OwnerID, &doc.ThemeID, &doc.Title, &doc.Source,
		&doc.Content, &embedding, &metadata, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	doc.Embedding = bytesToFloat32Slice(embedding)
	if err := json.Unmarshal([]byte(metadata), &doc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return &doc, nil
}

func collectDocuments(rows *sql.Rows) ([]domain.Document, error) {
	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// ==================== Embedding codec ====================

// float32SliceToBytes encodes a vector as little-endian float32 bytes
// for BLOB storage. Nil and empty vectors encode to nil, stored as NULL.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	out := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

// bytesToFloat32Slice decodes a BLOB written by float32SliceToBytes.
// Malformed lengths decode to nil rather than a truncated vector.
func bytesToFloat32Slice(b []byte) []float32 {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	floats := make([]float32, len(b)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return floats
}
