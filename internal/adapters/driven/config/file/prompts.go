package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves LLM prompt templates from user-editable files,
// with compiled-in defaults behind them. Nothing touches the disk
// until the first Load: the constructor stays I/O-free so a store can
// be built unconditionally and only materialises its directory when a
// prompt is actually needed.
type PromptStore struct {
	mu      sync.RWMutex
	dir     string
	loaded  map[string]string
	once    sync.Once
	seedErr error
}

// defaultPrompts are the compiled-in templates. They seed the files on
// first use and answer for any prompt the disk cannot provide, so a
// deleted or unreadable file never changes behaviour.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptRAGSystem: `You are a helpful assistant that answers questions using the provided context.

Answer using only the information in the context below. If the context does not contain the answer, say that you do not know instead of guessing. Refer to documents by their titles when citing them.

%s`,

	driven.PromptRerankScore: `Rate how relevant the following document is to the query on a scale from 0 to 10, where 0 means completely irrelevant and 10 means it directly answers the query.

Query: %s

Document:
%s

Respond with a single number from 0 to 10 and nothing else.`,
}

// NewPromptStore builds a store over dir. An empty dir selects
// ~/.ansa/prompts. No files are created here; that happens on the
// first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".ansa", "prompts")
	}

	return &PromptStore{
		dir:    dir,
		loaded: map[string]string{},
	}, nil
}

// Load returns the template registered under name, preferring the
// on-disk file and falling back to the embedded default whenever the
// file cannot be read. The first call seeds the prompt directory.
func (s *PromptStore) Load(name string) (string, error) {
	s.once.Do(s.seed)
	if s.seedErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("seed prompt directory: %w", s.seedErr)
	}

	if prompt, ok := s.cached(name); ok {
		return prompt, nil
	}

	prompt, err := s.readPrompt(name)
	if err != nil {
		if fallback, ok := defaultPrompts[name]; ok {
			return fallback, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	s.loaded[name] = prompt
	s.mu.Unlock()
	return prompt, nil
}

// Reload drops every cached template so the next Load re-reads disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.loaded = map[string]string{}
	s.mu.Unlock()
}

// Dir reports the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) cached(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prompt, ok := s.loaded[name]
	return prompt, ok
}

// seed creates the prompt directory, one file per default template
// (existing files are left alone) and a README. Runs once.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := s.promptPath(name)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			s.seedErr = fmt.Errorf("write default prompt %q: %w", name, err)
			return
		}
	}

	s.seedErr = s.writeReadme()
}

func (s *PromptStore) promptPath(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

func (s *PromptStore) readPrompt(name string) (string, error) {
	raw, err := os.ReadFile(s.promptPath(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// writeReadme documents the directory for anyone who finds it. Kept
// out of seed's loop because it is not a template.
func (s *PromptStore) writeReadme() error {
	path := filepath.Join(s.dir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := `# Ansa Prompts

The files here control how Ansa talks to the LLM. Edit them freely;
every command re-reads the directory, so changes apply on the next run
(restart an open chat to pick them up).

## Files

- ` + "`rag_system.txt`" + ` - System prompt for grounded answer generation
- ` + "`rerank_score.txt`" + ` - Asks the model to score a document's relevance

## Format Placeholders

The prompts use Go fmt placeholders:
- ` + "`rag_system.txt`" + ` needs one ` + "`%s`" + ` for the assembled document context
- ` + "`rerank_score.txt`" + ` needs two ` + "`%s`" + `, the query then the document

Keep the placeholders; a prompt without them falls back to safe defaults.
`
	return os.WriteFile(path, []byte(content), 0600)
}
