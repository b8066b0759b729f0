package ui

import (
	"context"
	"time"

	"boardview/internal/gallery"
	"boardview/internal/preview"

	tea "github.com/charmbracelet/bubbletea"
)

// pollCmd schedules the next periodic fetch.
func pollCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

// loadImageCmd fetches and decodes the detail image for rec. Records without
// a URL are resolved through the store first.
func loadImageCmd(ctx context.Context, src ImageSource, seq uint64, rec gallery.ImageRecord) tea.Cmd {
	return func() tea.Msg {
		msg := imageLoadedMsg{seq: seq, id: rec.ID, url: rec.URL}
		if msg.url == "" {
			u, err := src.ResolveURL(ctx, rec.ID)
			if err != nil {
				msg.err = err
				return msg
			}
			msg.url = u
		}
		data, err := src.FetchImage(ctx, msg.url)
		if err != nil {
			msg.err = err
			return msg
		}
		msg.img, msg.info, msg.err = preview.Decode(data)
		return msg
	}
}
