package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewType_String(t *testing.T) {
	for view, want := range map[ViewType]string{
		ViewChat:       "chat",
		ViewDocuments:  "documents",
		ViewDocContent: "doc_content",
		ViewHelp:       "help",
		ViewType(99):   "unknown",
	} {
		assert.Equal(t, want, view.String())
	}
}

func TestViewType_ZeroValueIsChat(t *testing.T) {
	// An uninitialised app must land on the chat view.
	var v ViewType

	assert.Equal(t, ViewChat, v)
}
