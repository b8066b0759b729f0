package ui

import (
	"context"

	"boardview/internal/gallery"

	tea "github.com/charmbracelet/bubbletea"
)

// cmdQueue collects commands raised while one message is handled, by the
// controller's collaborators living in this package. The app drains it at
// the end of every Update.
type cmdQueue struct {
	cmds []tea.Cmd
}

func (q *cmdQueue) push(c tea.Cmd) {
	if c != nil {
		q.cmds = append(q.cmds, c)
	}
}

func (q *cmdQueue) drain() tea.Cmd {
	cmds := q.cmds
	q.cmds = nil
	return tea.Batch(cmds...)
}

// applyMsg carries a finished Work's apply step back into Update.
type applyMsg struct {
	apply func()
}

// confirmedMsg is sent when the user accepts a ConfirmModal raised by
// modalConfirmer.
type confirmedMsg struct {
	onYes func()
}

// teaLoop runs gallery work as tea.Cmds. Bubble Tea runs a Cmd on its own
// goroutine and feeds the result to Update, which gives run-to-completion.
type teaLoop struct {
	ctx   context.Context
	queue *cmdQueue
}

var _ gallery.Loop = (*teaLoop)(nil)

// Go implements gallery.Loop.
func (l *teaLoop) Go(w gallery.Work) {
	ctx := l.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	l.queue.push(func() tea.Msg {
		return applyMsg{apply: w(ctx)}
	})
}

// modalConfirmer asks with a ConfirmModal overlay.
type modalConfirmer struct {
	overlays *OverlayStack
	queue    *cmdQueue
}

var _ gallery.Confirmer = (*modalConfirmer)(nil)

// Confirm implements gallery.Confirmer.
func (c *modalConfirmer) Confirm(prompt string, onYes func()) {
	m := NewConfirmModal("Confirm", prompt, func() tea.Msg {
		return confirmedMsg{onYes: onYes}
	}).WithDetails("Deleted images stay hidden for this session")
	c.overlays.Push(Overlay{View: m, Dismiss: "esc"})
	c.queue.push(m.Init())
}
