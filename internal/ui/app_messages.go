package ui

import (
	"image"
	"time"

	"boardview/internal/gallery"
	"boardview/internal/preview"
)

// RefreshMsg triggers a manual fetch (r, SPC r).
type RefreshMsg struct{}

// DeleteImageMsg asks to delete the selected image (ctrl+delete, SPC x).
type DeleteImageMsg struct{}

// ShowUploadMsg opens the upload path modal (u, SPC u).
type ShowUploadMsg struct{}

// UploadFileMsg is sent when the upload modal is submitted.
type UploadFileMsg struct {
	Path string
}

// ToggleFullscreenMsg toggles fullscreen for the detail image (f, SPC f).
type ToggleFullscreenMsg struct{}

// DownloadMsg starts a bulk download (SPC d z, SPC d p).
type DownloadMsg struct {
	Kind gallery.DownloadKind
}

// SelectImageMsg selects a thumbnail by index (g, G, mouse).
type SelectImageMsg struct {
	Index int
}

// DismissModalMsg is sent when user cancels a modal (Esc).
type DismissModalMsg struct{}

// pollMsg fires the periodic fetch.
type pollMsg time.Time

// imageLoadedMsg is the result of fetching and decoding a detail image. seq
// matches GalleryView.loadSeq at request time; older results are dropped.
type imageLoadedMsg struct {
	seq  uint64
	id   string
	url  string
	img  image.Image
	info preview.Info
	err  error
}

// clearNoticeMsg expires the status line notice with the same seq.
type clearNoticeMsg struct {
	seq uint64
}
