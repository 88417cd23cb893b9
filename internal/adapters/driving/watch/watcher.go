// Package watch keeps a directory of text files and the document corpus
// in step. Created and modified files are re-ingested after a debounce
// window; documents whose file is gone are removed.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driving"
)

const (
	// DefaultDebounce is how long a file must stay quiet before it is
	// ingested. Editors often emit several writes per save.
	DefaultDebounce = 500 * time.Millisecond

	// hashKey is the metadata key carrying the content hash of the
	// source file at ingest time. The hash identifies unchanged files
	// across restarts.
	hashKey = "content_hash"
)

// Config configures a Watcher.
type Config struct {
	// Dir is the directory to watch. Subdirectories are not watched.
	Dir string

	// OwnerID scopes the ingested documents to an owner.
	OwnerID string

	// ThemeID assigns the ingested documents to a topic collection.
	ThemeID string

	// Debounce is how long a file must stay quiet before it is
	// ingested. Zero means DefaultDebounce.
	Debounce time.Duration
}

// Watcher mirrors a directory of text files into the document store.
type Watcher struct {
	ingest    driving.IngestService
	documents driving.DocumentService
	cfg       Config
	log       *logrus.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	hashes  map[string]string
}

// New creates a watcher for cfg.Dir. The directory must exist.
func New(
	ingest driving.IngestService,
	documents driving.DocumentService,
	cfg Config,
	log *logrus.Logger,
) (*Watcher, error) {
	if ingest == nil || documents == nil {
		return nil, fmt.Errorf("%w: watch needs ingest and document services", domain.ErrInvalidInput)
	}

	abs, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve watch dir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("watch dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, cfg.Dir)
	}
	cfg.Dir = abs

	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if log == nil {
		log = logrus.New()
	}

	return &Watcher{
		ingest:    ingest,
		documents: documents,
		cfg:       cfg,
		log:       log,
		pending:   make(map[string]*time.Timer),
		hashes:    make(map[string]string),
	}, nil
}

// Run synchronises the directory once and then processes change events
// until the context is cancelled. Cancellation is a normal stop, not an
// error.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Dir, err)
	}

	w.log.WithField("dir", w.cfg.Dir).Info("Watching directory")
	w.syncDir(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("Watcher error")
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !ingestible(event.Name) {
		return
	}

	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		w.schedule(ctx, event.Name)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// A rename shows up as Remove for the old path; the new path
		// arrives as its own Create event.
		w.cancelPending(event.Name)
		w.removeFile(ctx, event.Name)
	}
}

// schedule arms the debounce timer for path, replacing any timer
// already running. The file is ingested once it has stayed quiet for
// the whole window.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.cfg.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.ingestFile(ctx, path)
	})
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
		delete(w.pending, path)
	}
}

// syncDir brings the corpus in line with the directory contents. Files
// already ingested with the same content hash are left alone; documents
// whose file no longer exists are removed.
func (w *Watcher) syncDir(ctx context.Context) {
	indexed := w.indexedFiles(ctx)

	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		w.log.WithError(err).Warn("Cannot read watch directory")
		return
	}

	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.cfg.Dir, entry.Name())
		if !ingestible(path) {
			continue
		}
		seen[path] = true

		w.mu.Lock()
		w.hashes[path] = indexed[path]
		w.mu.Unlock()
		w.ingestFile(ctx, path)
	}

	for path := range indexed {
		if !seen[path] {
			w.removeFile(ctx, path)
		}
	}
}

// indexedFiles maps source path to content hash for every document
// previously ingested from the watched directory.
func (w *Watcher) indexedFiles(ctx context.Context) map[string]string {
	state := make(map[string]string)

	docs, err := w.documents.List(ctx, w.cfg.OwnerID, w.cfg.ThemeID)
	if err != nil {
		w.log.WithError(err).Warn("Cannot list documents")
		return state
	}
	for _, doc := range docs {
		if filepath.Dir(doc.Source) != w.cfg.Dir {
			continue
		}
		if hash := doc.Metadata[hashKey]; hash != "" {
			state[doc.Source] = hash
		}
	}
	return state
}

// ingestFile replaces the documents for path with a fresh ingestion.
// Unchanged content is skipped.
func (w *Watcher) ingestFile(ctx context.Context, path string) {
	hash, err := fileHash(path)
	if err != nil {
		w.log.WithError(err).WithField("path", path).Warn("Cannot hash file")
		return
	}

	w.mu.Lock()
	unchanged := w.hashes[path] == hash
	w.mu.Unlock()
	if unchanged {
		return
	}

	w.removeDocuments(ctx, path)

	req := driving.IngestRequest{
		OwnerID:  w.cfg.OwnerID,
		ThemeID:  w.cfg.ThemeID,
		Metadata: map[string]string{hashKey: hash},
	}
	result, err := w.ingest.IngestFile(ctx, path, req)
	if err != nil {
		w.log.WithError(err).WithField("path", path).Warn("Ingest failed")
		return
	}

	w.mu.Lock()
	w.hashes[path] = hash
	w.mu.Unlock()

	w.log.WithFields(logrus.Fields{
		"path":   path,
		"chunks": result.ChunkCount,
	}).Info("File ingested")
}

// removeFile drops the documents for a file that no longer exists.
func (w *Watcher) removeFile(ctx context.Context, path string) {
	w.removeDocuments(ctx, path)

	w.mu.Lock()
	delete(w.hashes, path)
	w.mu.Unlock()

	w.log.WithField("path", path).Info("File removed")
}

// removeDocuments deletes every document ingested from path.
func (w *Watcher) removeDocuments(ctx context.Context, path string) {
	docs, err := w.documents.List(ctx, w.cfg.OwnerID, w.cfg.ThemeID)
	if err != nil {
		w.log.WithError(err).Warn("Cannot list documents")
		return
	}
	for _, doc := range docs {
		if doc.Source != path {
			continue
		}
		if err := w.documents.Delete(ctx, doc.ID); err != nil {
			w.log.WithError(err).WithField("id", doc.ID).Warn("Delete failed")
		}
	}
}

// ingestible reports whether path is a file type the watcher ingests.
func ingestible(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return true
	}
	return false
}

func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
