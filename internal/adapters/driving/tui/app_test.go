package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ansa/internal/core/domain"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	app, err := NewApp(&Ports{
		Query:    &MockQueryService{},
		Document: &MockDocumentService{},
		Settings: &MockSettingsService{},
	}, Options{})
	require.NoError(t, err)

	app.SetDimensions(80, 24)
	return app
}

func typeString(app *App, s string) {
	for _, r := range s {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(&Ports{Query: &MockQueryService{}}, Options{})

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewChat, app.CurrentView())
	assert.NotEmpty(t, app.ConversationID())
}

func TestNewApp_NilPorts(t *testing.T) {
	app, err := NewApp(nil, Options{})

	assert.ErrorIs(t, err, ErrInvalidPorts)
	assert.Nil(t, app)
}

func TestNewApp_MissingQueryService(t *testing.T) {
	app, err := NewApp(&Ports{Document: &MockDocumentService{}}, Options{})

	assert.ErrorIs(t, err, ErrMissingQueryService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app := newTestApp(t)

	result := app.WithContext(context.Background())

	assert.Equal(t, app, result)
}

func TestApp_Init(t *testing.T) {
	app := newTestApp(t)

	assert.NotNil(t, app.Init())
}

func TestApp_Update_WindowSize(t *testing.T) {
	app, err := NewApp(&Ports{Query: &MockQueryService{}}, Options{})
	require.NoError(t, err)
	assert.False(t, app.Ready())

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
}

func TestApp_View_NotReady(t *testing.T) {
	app, err := NewApp(&Ports{Query: &MockQueryService{}}, Options{})
	require.NoError(t, err)

	assert.Contains(t, app.View(), "Initialising")
}

func TestApp_View_ChatByDefault(t *testing.T) {
	app := newTestApp(t)

	view := app.View()

	assert.Contains(t, view, "Ansa")
	assert.Contains(t, view, "Ask:")
}

func TestApp_Update_TypingReachesChatInput(t *testing.T) {
	app := newTestApp(t)

	typeString(app, "what is raft")

	assert.Equal(t, "what is raft", app.Question())
}

func TestApp_Update_Tab_OpensDocumentBrowser(t *testing.T) {
	listed := false
	app, err := NewApp(&Ports{
		Query: &MockQueryService{},
		Document: &MockDocumentService{
			ListFunc: func(_ context.Context, ownerID, themeID string) ([]domain.Document, error) {
				listed = true
				return []domain.Document{{ID: "doc-1", Title: "Runbook"}}, nil
			},
		},
	}, Options{})
	require.NoError(t, err)
	app.SetDimensions(80, 24)

	// Tab in the chat view produces a ViewChanged command.
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.NotNil(t, cmd)
	changed, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewDocuments, changed.View)

	// Processing it switches views and kicks off the listing.
	_, loadCmd := app.Update(changed)
	assert.Equal(t, messages.ViewDocuments, app.CurrentView())
	require.NotNil(t, loadCmd)

	loaded, ok := loadCmd().(messages.DocumentsLoaded)
	require.True(t, ok)
	assert.True(t, listed)

	app.Update(loaded)
	assert.Contains(t, app.View(), "Runbook")
}

func TestApp_Update_EscInDocuments_ReturnsToChat(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.ViewChanged{View: messages.ViewDocuments})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	changed, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewChat, changed.View)

	app.Update(changed)
	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_Update_F1_TogglesHelp(t *testing.T) {
	app := newTestApp(t)

	app.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	assert.Contains(t, app.View(), "Ansa Help")

	app.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_Update_EscInHelp_ReturnsToChat(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.ViewChanged{View: messages.ViewHelp})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.NotNil(t, cmd) // focus command for the input
	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_Update_DocumentSelected(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.ViewChanged{View: messages.ViewDocuments})

	doc := domain.Document{ID: "doc-1", Title: "Runbook", Content: "restart the service"}
	_, cmd := app.Update(messages.DocumentSelected{Document: doc})

	assert.Equal(t, messages.ViewDocContent, app.CurrentView())
	require.NotNil(t, app.selectedDocument)
	assert.Equal(t, "doc-1", app.selectedDocument.ID)
	assert.NotNil(t, cmd)
}

func TestApp_Update_AnswerReceived_RoutedToChat(t *testing.T) {
	app := newTestApp(t)
	typeString(app, "question")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	answer := domain.Answer{Response: "Grounded answer.", HasAnswer: true}
	model, cmd := app.Update(messages.AnswerReceived{Answer: answer})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.Contains(t, app.View(), "Grounded answer.")
}

func TestApp_Update_AnswerReceived_WhileBrowsing(t *testing.T) {
	app := newTestApp(t)
	typeString(app, "question")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app.Update(messages.ViewChanged{View: messages.ViewDocuments})

	// The answer lands in the chat transcript even when another view is
	// showing, so nothing is lost when the user browses while waiting.
	app.Update(messages.AnswerReceived{Answer: domain.Answer{Response: "late answer"}})
	app.Update(messages.ViewChanged{View: messages.ViewChat})

	assert.Contains(t, app.View(), "late answer")
}

func TestApp_Update_ErrorOccurred(t *testing.T) {
	app := newTestApp(t)

	model, _ := app.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.Equal(t, app, model)
	assert.Error(t, app.Err())
}

func TestApp_Update_Quit(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(messages.Quit{})

	assert.NotNil(t, cmd)
}

func TestApp_Update_CtrlC_Quits(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.NotNil(t, cmd)
}

func TestApp_Update_EscInChat_Quits(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.IsType(t, messages.Quit{}, cmd())
}

func TestApp_SessionScopeReachesQueries(t *testing.T) {
	var got domain.QueryRequest
	app, err := NewApp(&Ports{
		Query: &MockQueryService{
			AnswerFunc: func(_ context.Context, req domain.QueryRequest) domain.Answer {
				got = req
				return domain.Answer{Response: "ok", HasAnswer: true}
			},
		},
	}, Options{OwnerID: "alice", ThemeID: "work", TopK: 3})
	require.NoError(t, err)
	app.SetDimensions(80, 24)

	typeString(app, "what is raft")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	// Drain the batch until the answer arrives.
	drain(t, app, cmd)

	assert.Equal(t, "what is raft", got.Question)
	assert.Equal(t, "alice", got.OwnerID)
	assert.Equal(t, "work", got.ThemeID)
	assert.Equal(t, 3, got.TopK)
	assert.Equal(t, app.ConversationID(), got.ConversationID)
}

// drain executes commands breadth-first and feeds their messages back
// into the app, stopping once an answer has been processed.
func drain(t *testing.T, app *App, cmds ...tea.Cmd) {
	t.Helper()

	for depth := 0; depth < 8 && len(cmds) > 0; depth++ {
		var next []tea.Cmd
		for _, cmd := range cmds {
			if cmd == nil {
				continue
			}
			switch msg := cmd().(type) {
			case tea.BatchMsg:
				next = append(next, msg...)
			case messages.AnswerReceived:
				app.Update(msg)
				return
			}
		}
		cmds = next
	}
	t.Fatal("no answer produced")
}
