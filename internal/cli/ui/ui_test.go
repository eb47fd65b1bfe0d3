package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

// TestModelInitialization verifies the TUI starts on the main menu with
// an unconnected device, mirroring the teacher's own
// TestChatViewInitialization shape.
func TestModelInitialization(t *testing.T) {
	model := NewModel()

	assert.Equal(t, MenuView, model.view, "should start on the main menu")
	assert.NotNil(t, model.mgr, "manager should be constructed")
	assert.Empty(t, model.err, "no error should be set initially")
}

// TestEscReturnsToMenu verifies Esc always returns to the main menu from
// any other view.
func TestEscReturnsToMenu(t *testing.T) {
	model := NewModel()
	model.view = OtpView

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m, ok := updated.(Model)
	assert.True(t, ok)
	assert.Equal(t, MenuView, m.view)
}
