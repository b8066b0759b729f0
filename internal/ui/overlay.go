package ui

import tea "github.com/charmbracelet/bubbletea"

// Overlay is a modal drawn over the gallery. Dismiss names the key that
// closes it without the modal seeing the key.
type Overlay struct {
	View    View
	Dismiss string
}

// IsDismissKey reports whether key closes o.
func (o Overlay) IsDismissKey(key string) bool {
	return o.Dismiss != "" && key == o.Dismiss
}

// OverlayStack holds the open modals. Only the top one gets input.
type OverlayStack struct {
	open []Overlay
}

// Push opens o above the others.
func (s *OverlayStack) Push(o Overlay) {
	s.open = append(s.open, o)
}

// Pop closes the top overlay.
func (s *OverlayStack) Pop() (Overlay, bool) {
	top, ok := s.Peek()
	if ok {
		s.open = s.open[:len(s.open)-1]
	}
	return top, ok
}

// Peek returns the top overlay.
func (s *OverlayStack) Peek() (Overlay, bool) {
	if len(s.open) == 0 {
		return Overlay{}, false
	}
	return s.open[len(s.open)-1], true
}

// Len returns the number of open overlays.
func (s *OverlayStack) Len() int {
	return len(s.open)
}

// UpdateTop hands msg to the top overlay. It reports false when nothing is
// open.
func (s *OverlayStack) UpdateTop(msg tea.Msg) (tea.Cmd, bool) {
	if len(s.open) == 0 {
		return nil, false
	}
	top := &s.open[len(s.open)-1]
	var cmd tea.Cmd
	top.View, cmd = top.View.Update(msg)
	return cmd, true
}
