// Package disk provides a filesystem-backed implementation of the
// document cache port.
//
// Each document is stored as root/{owner}/{theme}/{id}.json holding
// metadata and content, with the embedding vector in a sibling
// {id}.embedding file of raw little-endian float32 values. The JSON
// record never inlines the vector. Writes replace whole files, and a
// missing sibling means the embedding is not yet available, not an
// error. The cache is rebuildable from the repository at any time, so
// every failure path degrades to a miss.
package disk

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.DocumentCache = (*Cache)(nil)

const (
	recordSuffix    = ".json"
	embeddingSuffix = ".embedding"

	// defaultSegment stands in for an empty owner or theme so every
	// entry sits at the same depth.
	defaultSegment = "default"
)

// Cache is a disk-backed implementation of driven.DocumentCache.
// Lookups go through an in-memory id index rebuilt from the directory
// tree on startup, since entries are partitioned by owner and theme
// but read by id alone.
type Cache struct {
	root string

	mu    sync.RWMutex
	paths map[string]string // id -> record path
}

// cacheRecord is the JSON shape of one cached document.
type cacheRecord struct {
	ID           string            `json:"id"`
	OwnerID      string            `json:"owner_id,omitempty"`
	ThemeID      string            `json:"theme_id,omitempty"`
	Title        string            `json:"title,omitempty"`
	Source       string            `json:"source,omitempty"`
	Content      string            `json:"content"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	HasEmbedding bool              `json:"has_embedding"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// NewCache opens the cache rooted at dir, creating it when absent and
// indexing any entries a previous run left behind. An empty dir selects
// the default location ~/.ansa/cache.
func NewCache(dir string) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".ansa", "cache")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	c := &Cache{root: dir, paths: make(map[string]string)}
	entries, err := filepath.Glob(filepath.Join(dir, "*", "*", "*"+recordSuffix))
	if err != nil {
		return nil, fmt.Errorf("scan cache directory: %w", err)
	}
	for _, path := range entries {
		id := strings.TrimSuffix(filepath.Base(path), recordSuffix)
		c.paths[id] = path
	}
	return c, nil
}

// Root returns the cache directory.
func (c *Cache) Root() string {
	return c.root
}

// Get returns the cached document and true on a hit. An unreadable or
// corrupt record is a miss.
func (c *Cache) Get(id string) (*domain.Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	path, ok := c.paths[id]
	if !ok {
		return nil, false
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var record cacheRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false
	}

	doc := domain.Document{
		ID:        record.ID,
		OwnerID:   record.OwnerID,
		ThemeID:   record.ThemeID,
		Title:     record.Title,
		Source:    record.Source,
		Content:   record.Content,
		Metadata:  record.Metadata,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if record.HasEmbedding {
		// A missing or truncated sibling means the embedding is not
		// yet available; the record itself still serves.
		if vector, err := os.ReadFile(embeddingPath(path)); err == nil {
			doc.Embedding = bytesToFloat32Slice(vector)
		}
	}
	return &doc, true
}

// Put stores the document, replacing any prior entry. The record and
// its embedding sibling are each written as a whole file.
func (c *Cache) Put(doc domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document id is empty", domain.ErrInvalidInput)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dir := filepath.Join(c.root, pathSegment(doc.OwnerID), pathSegment(doc.ThemeID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache entry directory: %w", err)
	}
	path := filepath.Join(dir, doc.ID+recordSuffix)

	record := cacheRecord{
		ID:           doc.ID,
		OwnerID:      doc.OwnerID,
		ThemeID:      doc.ThemeID,
		Title:        doc.Title,
		Source:       doc.Source,
		Content:      doc.Content,
		Metadata:     doc.Metadata,
		HasEmbedding: doc.HasEmbedding(),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
	raw, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache record: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write cache record: %w", err)
	}

	if doc.HasEmbedding() {
		if err := os.WriteFile(embeddingPath(path), float32SliceToBytes(doc.Embedding), 0o644); err != nil {
			return fmt.Errorf("write cache embedding: %w", err)
		}
	} else if err := os.Remove(embeddingPath(path)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale cache embedding: %w", err)
	}

	// An owner or theme change moves the entry; drop the old files.
	if old, ok := c.paths[doc.ID]; ok && old != path {
		os.Remove(old)
		os.Remove(embeddingPath(old))
	}
	c.paths[doc.ID] = path
	return nil
}

// Remove evicts the document from the cache. Eviction is best-effort;
// an entry that cannot be removed is served stale until overwritten.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path, ok := c.paths[id]
	if !ok {
		return
	}
	os.Remove(path)
	os.Remove(embeddingPath(path))
	delete(c.paths, id)
}

// embeddingPath returns the sibling vector file for a record path.
func embeddingPath(recordPath string) string {
	return strings.TrimSuffix(recordPath, recordSuffix) + embeddingSuffix
}

// pathSegment makes a value safe to use as a directory name.
func pathSegment(value string) string {
	if value == "" {
		return defaultSegment
	}
	value = strings.ReplaceAll(value, "/", "_")
	value = strings.ReplaceAll(value, string(filepath.Separator), "_")
	if strings.HasPrefix(value, ".") {
		value = "_" + strings.TrimLeft(value, ".")
	}
	return value
}

// float32SliceToBytes encodes a vector as little-endian float32 bytes.
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

// bytesToFloat32Slice decodes a vector written by float32SliceToBytes.
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
