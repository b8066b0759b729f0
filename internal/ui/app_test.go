package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"boardview/internal/apitest"
	"boardview/internal/gallery"

	tea "github.com/charmbracelet/bubbletea"
)

// memAPI is an in-memory store. Commands run on their own goroutines, so it
// locks.
type memAPI struct {
	mu        sync.Mutex
	images    []gallery.ImageRecord
	uploaded  []string
	navigated []string
	uploadErr error
}

func (m *memAPI) ListImages(ctx context.Context) ([]gallery.ImageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]gallery.ImageRecord(nil), m.images...), nil
}

func (m *memAPI) DeleteImage(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, img := range m.images {
		if img.ID == id {
			m.images = append(m.images[:i], m.images[i+1:]...)
			return nil
		}
	}
	return &gallery.NetworkError{Op: "delete", Status: 404}
}

func (m *memAPI) Upload(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return m.uploadErr
	}
	m.uploaded = append(m.uploaded, path)
	name := path[strings.LastIndex(path, "/")+1:]
	m.images = append(m.images, gallery.ImageRecord{ID: "whiteboard_captures/" + name, URL: "/img/" + name, Filename: name})
	return nil
}

func (m *memAPI) DownloadURL(kind gallery.DownloadKind) string {
	return "http://store/api/download-" + string(kind)
}

func (m *memAPI) Navigate(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.navigated = append(m.navigated, url)
	return nil
}

// pngSource serves the same small PNG for every URL, or fails.
type pngSource struct {
	err error
}

func (p pngSource) ResolveURL(ctx context.Context, id string) (string, error) {
	return "/img/" + id, nil
}

func (p pngSource) FetchImage(ctx context.Context, rawURL string) ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	return apitest.SamplePNG(8, 8), nil
}

func memImages(names ...string) []gallery.ImageRecord {
	out := make([]gallery.ImageRecord, len(names))
	for i, n := range names {
		out[i] = gallery.ImageRecord{ID: "whiteboard_captures/" + n, URL: "/img/" + n, Filename: n}
	}
	return out
}

func newTestApp(api *memAPI, src ImageSource) (*AppModel, tea.Model) {
	a := NewAppModel(Options{
		API:          api,
		Images:       src,
		Navigator:    api,
		PollInterval: time.Hour,
	})
	a.Gallery.noticeTTL = time.Hour
	return a, a.AsTeaModel()
}

// pump runs cmd and feeds every message it yields back into m until nothing
// is left. Commands that block (ticks) are dropped after a short wait.
func pump(m tea.Model, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < 500; steps++ {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := runCmd(c)
		if !ok || msg == nil {
			continue
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		case tea.QuitMsg:
			continue
		}
		_, next := m.Update(msg)
		queue = append(queue, next)
	}
}

func runCmd(c tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(50 * time.Millisecond):
		return nil, false
	}
}

func press(m tea.Model, keys ...string) {
	for _, k := range keys {
		_, cmd := m.Update(keyMsg(k))
		pump(m, cmd)
	}
}

func startApp(t *testing.T, api *memAPI, src ImageSource) (*AppModel, tea.Model) {
	t.Helper()
	a, m := newTestApp(api, src)
	pump(m, m.Init())
	return a, m
}

func TestApp_InitialFetchSelectsLast(t *testing.T) {
	a, m := startApp(t, &memAPI{images: memImages("a.png", "b.png", "c.png")}, pngSource{})

	if got := a.Controller.Current(); got != 2 {
		t.Fatalf("Current = %d, want 2", got)
	}
	if !a.Gallery.DetailShown() {
		t.Fatal("detail pane should be shown")
	}
	if a.Gallery.img == nil {
		t.Error("detail image should be loaded")
	}
	view := m.View()
	for _, s := range []string{"Images (3)", "c.png", "3/3", "8×8 png"} {
		if !strings.Contains(view, s) {
			t.Errorf("view missing %q", s)
		}
	}
}

func TestApp_EmptyGallery(t *testing.T) {
	a, m := startApp(t, &memAPI{}, pngSource{})

	view := m.View()
	if !strings.Contains(view, "No images yet") || !strings.Contains(view, "No image selected") {
		t.Errorf("expected placeholders, got:\n%s", view)
	}
	press(m, "delete", "right", "left")
	if a.Overlays.Len() != 0 {
		t.Error("keys must be ignored while the gallery is empty")
	}
	if a.Controller.Current() != gallery.NoSelection {
		t.Errorf("Current = %d", a.Controller.Current())
	}
}

func TestApp_ArrowKeys(t *testing.T) {
	a, m := startApp(t, &memAPI{images: memImages("a.png", "b.png", "c.png")}, pngSource{})

	press(m, "right")
	if a.Controller.Current() != 2 {
		t.Errorf("right at last: Current = %d, want 2", a.Controller.Current())
	}
	press(m, "left", "left", "left")
	if a.Controller.Current() != 0 {
		t.Errorf("Current = %d, want 0", a.Controller.Current())
	}
	press(m, "G")
	if a.Controller.Current() != 2 {
		t.Errorf("G: Current = %d, want 2", a.Controller.Current())
	}
	press(m, "g")
	if a.Controller.Current() != 0 {
		t.Errorf("g: Current = %d, want 0", a.Controller.Current())
	}
}

func TestApp_DeleteConfirmed(t *testing.T) {
	api := &memAPI{images: memImages("a.png", "b.png", "c.png")}
	a, m := startApp(t, api, pngSource{})

	press(m, "delete")
	if a.Overlays.Len() != 1 {
		t.Fatalf("expected confirmation modal, got %d overlays", a.Overlays.Len())
	}
	top, _ := a.Overlays.Peek()
	modal, ok := top.View.(*ConfirmModal)
	if !ok {
		t.Fatalf("expected ConfirmModal, got %T", top.View)
	}
	if !strings.Contains(modal.Label, "c.png") {
		t.Errorf("modal label = %q", modal.Label)
	}

	press(m, "y")
	if a.Overlays.Len() != 0 {
		t.Error("modal should close after confirming")
	}
	if n := len(a.Controller.Images()); n != 2 {
		t.Fatalf("images = %d, want 2", n)
	}
	if a.Controller.Current() != 1 {
		t.Errorf("Current = %d, want 1", a.Controller.Current())
	}
	if !strings.Contains(m.View(), "b.png") {
		t.Error("detail should show b.png")
	}
}

func TestApp_DeleteCancelled(t *testing.T) {
	api := &memAPI{images: memImages("a.png", "b.png")}
	a, m := startApp(t, api, pngSource{})

	press(m, " ", "x")
	if a.Overlays.Len() != 1 {
		t.Fatalf("SPC x should ask for confirmation")
	}
	press(m, "esc")
	if a.Overlays.Len() != 0 {
		t.Error("esc should dismiss the modal")
	}
	if len(a.Controller.Images()) != 2 {
		t.Error("nothing should be deleted")
	}
}

func TestApp_Upload(t *testing.T) {
	api := &memAPI{images: memImages("a.png")}
	a, m := startApp(t, api, pngSource{})

	press(m, "u")
	top, ok := a.Overlays.Peek()
	if !ok {
		t.Fatal("u should open the upload modal")
	}
	if _, ok := top.View.(*UploadModal); !ok {
		t.Fatalf("expected UploadModal, got %T", top.View)
	}
	press(m, "/tmp/new.png", "enter")

	if len(api.uploaded) != 1 || api.uploaded[0] != "/tmp/new.png" {
		t.Fatalf("uploaded = %v", api.uploaded)
	}
	if a.Controller.Uploading() || a.Gallery.busy {
		t.Error("upload control should be released")
	}
	if a.Gallery.Selection() != "" {
		t.Errorf("selection should be cleared, got %q", a.Gallery.Selection())
	}
	if a.Controller.Current() != 1 || !strings.Contains(m.View(), "new.png") {
		t.Error("refetch should select the uploaded image")
	}
}

func TestApp_UploadFailureKeepsSelection(t *testing.T) {
	api := &memAPI{uploadErr: &gallery.NetworkError{Op: "upload", Status: 400, Message: "Invalid file type"}}
	a, m := startApp(t, api, pngSource{})

	press(m, "u", "/tmp/notes.txt", "enter")
	if a.Gallery.Selection() != "/tmp/notes.txt" {
		t.Errorf("selection = %q", a.Gallery.Selection())
	}
	n := a.Gallery.Notice()
	if n.Level != gallery.NoticeError || !strings.Contains(n.Text, "Invalid file type") {
		t.Errorf("notice = %+v", n)
	}
	if a.Controller.Uploading() {
		t.Error("upload control should be released after failure")
	}

	press(m, "u")
	top, _ := a.Overlays.Peek()
	if modal, ok := top.View.(*UploadModal); !ok || modal.Value() != "/tmp/notes.txt" {
		t.Error("upload modal should be pre-filled with the previous selection")
	}
}

func TestApp_UploadEmptyPath(t *testing.T) {
	api := &memAPI{}
	a, m := startApp(t, api, pngSource{})

	press(m, "u", "enter")
	if len(api.uploaded) != 0 {
		t.Error("empty path must not reach the store")
	}
	if n := a.Gallery.Notice(); n.Level != gallery.NoticeError {
		t.Errorf("notice = %+v", n)
	}
}

func TestApp_Fullscreen(t *testing.T) {
	a, m := startApp(t, &memAPI{images: memImages("a.png")}, pngSource{})

	press(m, "f")
	if a.Mode() != ModeZoomed {
		t.Fatal("f should zoom the detail pane")
	}
	if strings.Contains(m.View(), "Images (") {
		t.Error("thumbnail strip should be hidden while zoomed")
	}
	press(m, "esc")
	if a.Mode() != ModeGallery {
		t.Error("esc should leave fullscreen")
	}
}

type countingZoom struct {
	on           bool
	enters, exit int
}

func (z *countingZoom) IsFullscreen() bool { return z.on }
func (z *countingZoom) Enter() error       { z.on = true; z.enters++; return nil }
func (z *countingZoom) Exit() error        { z.on = false; z.exit++; return nil }

func TestApp_OuterFullscreen(t *testing.T) {
	api := &memAPI{images: memImages("a.png")}
	outer := &countingZoom{}
	a := NewAppModel(Options{API: api, Fullscreen: outer, PollInterval: time.Hour})
	m := a.AsTeaModel()
	pump(m, m.Init())

	press(m, "f")
	if !outer.on || a.Mode() != ModeZoomed {
		t.Fatalf("both providers should zoom: outer=%v mode=%v", outer.on, a.Mode())
	}
	press(m, "f")
	if outer.on || a.Mode() != ModeGallery {
		t.Errorf("both providers should unzoom: outer=%v mode=%v", outer.on, a.Mode())
	}
}

func TestApp_ImageLoadFailure(t *testing.T) {
	a, m := startApp(t, &memAPI{images: memImages("a.png", "b.png")}, pngSource{err: errors.New("404 not found")})

	if a.Gallery.DetailShown() || a.Controller.DetailVisible() {
		t.Error("detail pane should be hidden after a load failure")
	}
	if len(a.Controller.Images()) != 2 {
		t.Error("images must be untouched")
	}
	if n := a.Gallery.Notice(); n.Level != gallery.NoticeError || !strings.Contains(n.Text, "404") {
		t.Errorf("notice = %+v", n)
	}
	if !strings.Contains(m.View(), "No image selected") {
		t.Error("view should show the empty detail pane")
	}
}

func TestGalleryView_StaleImageIgnored(t *testing.T) {
	v := NewGalleryView(context.Background(), &cmdQueue{}, pngSource{})
	v.ShowDetail(gallery.Detail{Record: memImages("a.png")[0], Total: 1})
	oldSeq := v.loadSeq
	v.ShowDetail(gallery.Detail{Record: memImages("b.png")[0], Total: 1})

	err := v.applyImage(imageLoadedMsg{seq: oldSeq, id: "whiteboard_captures/a.png", err: errors.New("boom")})
	if err != nil {
		t.Errorf("stale result should be ignored, got %v", err)
	}
	if !v.loading {
		t.Error("b.png should still be loading")
	}
}

func TestGalleryView_SameRecordNotRefetched(t *testing.T) {
	q := &cmdQueue{}
	v := NewGalleryView(context.Background(), q, pngSource{})
	d := gallery.Detail{Record: memImages("a.png")[0], Total: 1}
	v.ShowDetail(d)
	v.ShowDetail(d)
	if len(q.cmds) != 1 {
		t.Errorf("expected one image load, got %d queued", len(q.cmds))
	}
}

func TestGalleryView_ScrollAndHitTest(t *testing.T) {
	v := NewGalleryView(context.Background(), &cmdQueue{}, nil)
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 12})
	rows := v.stripRows()

	var thumbs []gallery.Thumbnail
	for i, r := range memImages("a", "b", "c", "d", "e", "f", "g", "h", "i", "j") {
		thumbs = append(thumbs, gallery.Thumbnail{Index: i, Record: r})
	}
	v.RenderThumbnails(thumbs)
	v.ScrollThumbnailsToEnd()
	if v.offset != len(thumbs)-rows {
		t.Errorf("offset = %d, want %d", v.offset, len(thumbs)-rows)
	}

	firstRow := headerRows + 1 + stripTitleRows
	if i, ok := v.ThumbnailAt(3, firstRow); !ok || i != v.offset {
		t.Errorf("ThumbnailAt first row = %d, %v", i, ok)
	}
	if _, ok := v.ThumbnailAt(stripWidth+5, firstRow); ok {
		t.Error("clicks in the detail pane are not thumbnails")
	}
	if _, ok := v.ThumbnailAt(3, 0); ok {
		t.Error("header is not a thumbnail")
	}

	thumbs[0].Selected = true
	v.RenderThumbnails(thumbs)
	if v.offset != 0 {
		t.Errorf("selecting the first thumbnail should scroll to it, offset = %d", v.offset)
	}
}

func TestApp_MouseSelect(t *testing.T) {
	a, m := startApp(t, &memAPI{images: memImages("a.png", "b.png", "c.png")}, pngSource{})

	y := headerRows + 1 + stripTitleRows + 1
	_, cmd := m.Update(tea.MouseMsg{X: 4, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	pump(m, cmd)
	if a.Controller.Current() != 1 {
		t.Errorf("Current = %d, want 1", a.Controller.Current())
	}
}

func TestApp_Download(t *testing.T) {
	api := &memAPI{images: memImages("a.png")}
	a, m := startApp(t, api, pngSource{})

	press(m, " ", "d", "z")
	if len(api.navigated) != 1 || api.navigated[0] != "http://store/api/download-zip" {
		t.Errorf("navigated = %v", api.navigated)
	}
	if n := a.Gallery.Notice(); n.Level != gallery.NoticeInfo {
		t.Errorf("notice = %+v", n)
	}
}

func TestApp_PollRefetches(t *testing.T) {
	api := &memAPI{images: memImages("a.png")}
	a, m := startApp(t, api, pngSource{})

	api.mu.Lock()
	api.images = memImages("a.png", "b.png")
	api.mu.Unlock()

	_, cmd := m.Update(pollMsg(time.Now()))
	pump(m, cmd)
	if a.Controller.Current() != 1 {
		t.Errorf("poll with a longer list should select the new image, Current = %d", a.Controller.Current())
	}
}

func TestApp_LeaderHelpShown(t *testing.T) {
	_, m := startApp(t, &memAPI{}, nil)
	press(m, " ")
	if !strings.Contains(m.View(), "Delete image") {
		t.Error("leader help should list SPC bindings")
	}
}
