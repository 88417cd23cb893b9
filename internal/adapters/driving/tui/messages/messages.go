// Package messages holds the Bubbletea messages the TUI passes between
// its views and the root model. Every async result enters the update
// loop as one of these types.
package messages

import (
	"github.com/custodia-labs/ansa/internal/core/domain"
)

// ViewType identifies which view is currently active. The zero value is
// the chat view, where the app starts.
type ViewType int

const (
	ViewChat       ViewType = iota // question and answer session
	ViewDocuments                  // corpus listing
	ViewDocContent                 // single document body
	ViewHelp                       // keybinding reference
)

var viewNames = map[ViewType]string{
	ViewChat:       "chat",
	ViewDocuments:  "documents",
	ViewDocContent: "doc_content",
	ViewHelp:       "help",
}

func (v ViewType) String() string {
	if name, ok := viewNames[v]; ok {
		return name
	}
	return "unknown"
}

// ViewChanged asks the root model to switch to another view.
type ViewChanged struct {
	View ViewType
}

// AnswerReceived delivers a completed answer to the chat view.
// Pipeline failures arrive inside the answer's metadata, never as a
// separate error.
type AnswerReceived struct {
	Answer domain.Answer
}

// DocumentsLoaded delivers the corpus listing, or the error that
// prevented loading it.
type DocumentsLoaded struct {
	Documents []domain.Document
	Err       error
}

// DocumentSelected signals a document was chosen for viewing.
type DocumentSelected struct {
	Document domain.Document
}

// DocumentContentLoaded delivers a freshly loaded document body.
type DocumentContentLoaded struct {
	DocumentID string
	Document   domain.Document
	Err        error
}

// SettingsLoaded delivers the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// ErrorOccurred reports an error no view claimed.
type ErrorOccurred struct {
	Err error
}

// Quit asks the application to exit.
type Quit struct{}
