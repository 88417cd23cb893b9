package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ansa/internal/adapters/driving/tui/styles"
)

func TestNewQuestionInput(t *testing.T) {
	in := NewQuestionInput(styles.DefaultStyles())

	require.NotNil(t, in)
	assert.Empty(t, in.Value())
	assert.True(t, in.Focused(), "prompt starts focused")

	t.Run("nil styles fall back to defaults", func(t *testing.T) {
		in := NewQuestionInput(nil)
		require.NotNil(t, in)
		assert.NotNil(t, in.styles)
	})
}

func TestQuestionInput_Init(t *testing.T) {
	assert.NotNil(t, NewQuestionInput(nil).Init(), "Init should schedule the cursor blink")
}

func TestQuestionInput_TypingUpdatesValue(t *testing.T) {
	in := NewQuestionInput(nil)

	updated, _ := in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})

	assert.Equal(t, in, updated)
	assert.Equal(t, "a", in.Value())
}

func TestQuestionInput_View(t *testing.T) {
	view := NewQuestionInput(nil).View()

	assert.NotEmpty(t, view)
	assert.Contains(t, view, "Ask")
}

func TestQuestionInput_SetValue(t *testing.T) {
	in := NewQuestionInput(nil)

	in.SetValue("what is ansa")

	assert.Equal(t, "what is ansa", in.Value())
}

func TestQuestionInput_FocusBlur(t *testing.T) {
	in := NewQuestionInput(nil)

	in.Blur()
	assert.False(t, in.Focused())

	in.Focus()
	assert.True(t, in.Focused())
}

func TestQuestionInput_SetWidth(t *testing.T) {
	in := NewQuestionInput(nil)

	in.SetWidth(100)
	assert.Equal(t, 100, in.Width())

	// A tiny terminal still leaves room to type.
	in.SetWidth(5)
	assert.Equal(t, 5, in.Width())
	assert.Equal(t, minFieldWidth, in.inner.Width)
}

func TestQuestionInput_Reset(t *testing.T) {
	in := NewQuestionInput(nil)
	in.SetValue("leftover")

	in.Reset()

	assert.Empty(t, in.Value())
}
