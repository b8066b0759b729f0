package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmModal asks a yes/no question. y accepts and n refuses directly;
// tab or the arrow keys move between the two buttons and enter presses the
// focused one. Focus starts on the refusing button.
type ConfirmModal struct {
	Title   string
	Label   string
	Details string

	YesText string
	NoText  string

	onYes func() tea.Msg
	yes   bool
}

var _ View = (*ConfirmModal)(nil)

// NewConfirmModal creates a confirmation modal. onYes produces the message
// sent when the user accepts.
func NewConfirmModal(title, label string, onYes func() tea.Msg) *ConfirmModal {
	return &ConfirmModal{
		Title:   title,
		Label:   label,
		YesText: "Delete",
		NoText:  "Keep",
		onYes:   onYes,
	}
}

// WithDetails adds a dimmed line under the question.
func (m *ConfirmModal) WithDetails(details string) *ConfirmModal {
	m.Details = details
	return m
}

// Init implements View.
func (m *ConfirmModal) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (m *ConfirmModal) Update(msg tea.Msg) (View, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y":
		return m, m.accept()
	case "n":
		return m, dismiss
	case "tab", "shift+tab", "left", "right", "h", "l":
		m.yes = !m.yes
	case "enter":
		if m.yes {
			return m, m.accept()
		}
		return m, dismiss
	}
	return m, nil
}

func (m *ConfirmModal) accept() tea.Cmd {
	if m.onYes == nil {
		return dismiss
	}
	return m.onYes
}

func dismiss() tea.Msg { return DismissModalMsg{} }

// View implements View.
func (m *ConfirmModal) View() string {
	var b []string
	b = append(b, Styles.TitleWarning.Render(m.Title), "", Styles.Label.Render(m.Label))
	if m.Details != "" {
		b = append(b, Styles.Details.Render(m.Details))
	}
	b = append(b, "", m.buttons(), "", Styles.Hint.Render("y: yes  n/esc: no  tab: switch  enter: choose"))
	return Styles.BoxDanger.Render(lipgloss.JoinVertical(lipgloss.Left, b...))
}

func (m *ConfirmModal) buttons() string {
	yes, no := Styles.Control, Styles.Control
	if m.yes {
		yes = Styles.Selected
	} else {
		no = Styles.Selected
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, yes.Render("["+m.YesText+"]"), "  ", no.Render("["+m.NoText+"]"))
}
