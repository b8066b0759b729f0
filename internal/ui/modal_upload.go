package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// UploadModal asks for the path of the file to upload. An empty path is
// still submitted; the controller rejects it with a validation notice. Esc
// is the overlay's dismiss key.
type UploadModal struct {
	input textinput.Model
}

// Ensure UploadModal implements View.
var _ View = (*UploadModal)(nil)

// NewUploadModal creates an upload modal pre-filled with the previous
// selection, if any.
func NewUploadModal(selection string) *UploadModal {
	ti := textinput.New()
	ti.Placeholder = "~/Pictures/board.png"
	ti.Width = 48
	ti.SetValue(selection)
	ti.CursorEnd()
	ti.Focus()
	return &UploadModal{input: ti}
}

// Value returns the entered path.
func (m *UploadModal) Value() string {
	return m.input.Value()
}

// Init implements View.
func (m *UploadModal) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements View.
func (m *UploadModal) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			path := strings.TrimSpace(m.input.Value())
			return m, func() tea.Msg { return UploadFileMsg{Path: path} }
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements View.
func (m *UploadModal) View() string {
	content := Styles.Title.Render("Upload image") + "\n\n"
	content += m.input.View() + "\n\n"
	content += Styles.Hint.Render("Enter: upload  Esc: cancel")
	return Styles.Box.Render(content)
}
