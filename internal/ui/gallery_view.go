package ui

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"boardview/internal/gallery"
	"boardview/internal/preview"
	"boardview/internal/ui/textutil"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const (
	stripWidth        = 34 // Thumbnail strip width including its border
	stripTitleRows    = 1  // "Images (n)" line inside the strip
	paneBorderRows    = 2
	headerRows        = 1
	footerRows        = 2 // Status line and hint line
	detailChromeRows  = 3 // Title, meta and controls lines inside the detail pane
	defaultNoticeTTL  = 8 * time.Second
	defaultViewWidth  = 100
	defaultViewHeight = 30
)

// ImageSource fetches detail images. *api.Client implements it.
type ImageSource interface {
	ResolveURL(ctx context.Context, id string) (string, error)
	FetchImage(ctx context.Context, rawURL string) ([]byte, error)
}

// GalleryView draws the thumbnail strip and the detail pane. It is the
// gallery controller's Surface: the controller pushes derived state into it
// and it never changes gallery state itself.
type GalleryView struct {
	queue  *cmdQueue
	source ImageSource
	ctx    context.Context

	Server    string
	noticeTTL time.Duration

	width, height int
	zoomed        bool

	thumbs []gallery.Thumbnail
	offset int

	detail  *gallery.Detail
	wantID  string
	loadSeq uint64
	loading bool
	img     image.Image
	info    preview.Info
	art     string
	artKey  string

	busy      bool
	spinner   spinner.Model
	selection string

	notice    gallery.Notice
	noticeSeq uint64
}

// Ensure GalleryView implements View and gallery.Surface.
var (
	_ View            = (*GalleryView)(nil)
	_ gallery.Surface = (*GalleryView)(nil)
)

// NewGalleryView creates an empty gallery view. source may be nil, in which
// case the detail pane shows metadata only.
func NewGalleryView(ctx context.Context, queue *cmdQueue, source ImageSource) *GalleryView {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = Styles.Status
	if ctx == nil {
		ctx = context.Background()
	}
	return &GalleryView{
		queue:     queue,
		source:    source,
		ctx:       ctx,
		noticeTTL: defaultNoticeTTL,
		spinner:   s,
	}
}

// RenderThumbnails implements gallery.Surface.
func (v *GalleryView) RenderThumbnails(thumbs []gallery.Thumbnail) {
	v.thumbs = thumbs
	v.keepSelectedVisible()
}

// ShowDetail implements gallery.Surface. The image is fetched only when the
// record changes, so a poll that re-renders the same record is free.
func (v *GalleryView) ShowDetail(d gallery.Detail) {
	v.detail = &d
	if d.Record.ID == v.wantID {
		return
	}
	v.wantID = d.Record.ID
	v.loadSeq++
	v.img, v.info, v.art, v.artKey = nil, preview.Info{}, "", ""
	if v.source == nil {
		v.loading = false
		return
	}
	v.loading = true
	v.queue.push(loadImageCmd(v.ctx, v.source, v.loadSeq, d.Record))
}

// HideDetail implements gallery.Surface. Any image still loading is
// abandoned and fullscreen ends with it.
func (v *GalleryView) HideDetail() {
	v.detail = nil
	v.wantID = ""
	v.loadSeq++
	v.loading = false
	v.img, v.art, v.artKey = nil, "", ""
	v.zoomed = false
}

// ScrollThumbnailsToEnd implements gallery.Surface.
func (v *GalleryView) ScrollThumbnailsToEnd() {
	v.offset = max(0, len(v.thumbs)-v.stripRows())
}

// SetUploadBusy implements gallery.Surface.
func (v *GalleryView) SetUploadBusy(busy bool) {
	v.busy = busy
	if busy {
		v.queue.push(v.spinner.Tick)
	}
}

// ClearFileSelection implements gallery.Surface.
func (v *GalleryView) ClearFileSelection() {
	v.selection = ""
}

// Notify implements gallery.Surface. The notice stays on the status line
// until a newer one replaces it or it expires.
func (v *GalleryView) Notify(n gallery.Notice) {
	v.notice = n
	v.noticeSeq++
	seq := v.noticeSeq
	v.queue.push(tea.Tick(v.noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	}))
}

// Notice returns the notice on the status line.
func (v *GalleryView) Notice() gallery.Notice {
	return v.notice
}

// SetSelection remembers the file chosen for upload.
func (v *GalleryView) SetSelection(path string) {
	v.selection = path
}

// Selection returns the file chosen for upload, cleared after success.
func (v *GalleryView) Selection() string {
	return v.selection
}

// Zoomed reports whether the detail pane fills the terminal.
func (v *GalleryView) Zoomed() bool {
	return v.zoomed
}

// DetailShown reports whether the detail pane has a record.
func (v *GalleryView) DetailShown() bool {
	return v.detail != nil
}

// applyImage stores a loaded image. It returns the load error when the
// result is for the record still on screen, and nil for stale results.
func (v *GalleryView) applyImage(msg imageLoadedMsg) error {
	if msg.seq != v.loadSeq || msg.id != v.wantID {
		return nil
	}
	v.loading = false
	if msg.err != nil {
		return &gallery.LoadError{URL: msg.url, Err: msg.err}
	}
	v.img, v.info = msg.img, msg.info
	v.art, v.artKey = "", ""
	return nil
}

// ThumbnailAt maps a terminal cell to the thumbnail drawn there.
func (v *GalleryView) ThumbnailAt(x, y int) (int, bool) {
	if v.zoomed || x < 0 || x >= stripWidth {
		return 0, false
	}
	row := y - headerRows - 1 - stripTitleRows
	if row < 0 || row >= v.stripRows() {
		return 0, false
	}
	i := v.offset + row
	if i >= len(v.thumbs) {
		return 0, false
	}
	return i, true
}

// Init implements View.
func (v *GalleryView) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (v *GalleryView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
		v.keepSelectedVisible()
	case spinner.TickMsg:
		if v.busy {
			var cmd tea.Cmd
			v.spinner, cmd = v.spinner.Update(msg)
			return v, cmd
		}
	case clearNoticeMsg:
		if msg.seq == v.noticeSeq {
			v.notice = gallery.Notice{}
		}
	}
	return v, nil
}

// View implements View.
func (v *GalleryView) View() string {
	w, h := v.size()
	bodyH := max(h-headerRows-footerRows, paneBorderRows+1)

	var body string
	if v.zoomed {
		body = v.renderDetail(w, bodyH)
	} else {
		strip := v.renderStrip(bodyH)
		detail := v.renderDetail(max(w-stripWidth, 10), bodyH)
		body = lipgloss.JoinHorizontal(lipgloss.Top, strip, detail)
	}

	var b strings.Builder
	b.WriteString(v.renderHeader(w) + "\n")
	b.WriteString(body + "\n")
	b.WriteString(v.renderStatus(w) + "\n")
	b.WriteString(v.renderHint(w))
	return b.String()
}

func (v *GalleryView) size() (int, int) {
	w, h := v.width, v.height
	if w == 0 {
		w = defaultViewWidth
	}
	if h == 0 {
		h = defaultViewHeight
	}
	return w, h
}

// stripRows is how many thumbnails fit in the strip.
func (v *GalleryView) stripRows() int {
	_, h := v.size()
	return max(h-headerRows-footerRows-paneBorderRows-stripTitleRows, 1)
}

func (v *GalleryView) keepSelectedVisible() {
	rows := v.stripRows()
	for _, t := range v.thumbs {
		if !t.Selected {
			continue
		}
		if t.Index < v.offset {
			v.offset = t.Index
		} else if t.Index >= v.offset+rows {
			v.offset = t.Index - rows + 1
		}
	}
	v.offset = min(v.offset, max(0, len(v.thumbs)-rows))
	v.offset = max(v.offset, 0)
}

func (v *GalleryView) renderHeader(w int) string {
	left := Styles.Title.Render("boardview")
	if v.Server != "" {
		left += " " + Styles.Muted.Render(v.Server)
	}
	right := Styles.Muted.Render(fmt.Sprintf("%d images", len(v.thumbs)))
	if v.busy {
		label := "Uploading"
		if v.selection != "" {
			label += " " + textutil.TruncateMiddle(textutil.BaseName(v.selection), 24)
		}
		right = v.spinner.View() + " " + Styles.Status.Render(label+"…") + "  " + right
	}
	gap := max(w-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (v *GalleryView) renderStrip(bodyH int) string {
	inner := stripWidth - 4 // border and padding
	rows := v.stripRows()

	lines := []string{Styles.Title.Render(fmt.Sprintf("Images (%d)", len(v.thumbs)))}
	if len(v.thumbs) == 0 {
		lines = append(lines, Styles.Empty.Render(textutil.Truncate("No images yet", inner)))
	}
	end := min(v.offset+rows, len(v.thumbs))
	for _, t := range v.thumbs[v.offset:end] {
		lines = append(lines, thumbnailLine(t, inner))
	}
	return Styles.Pane.Width(stripWidth - 2).Height(bodyH - paneBorderRows).Render(strings.Join(lines, "\n"))
}

func thumbnailLine(t gallery.Thumbnail, width int) string {
	marker := "  "
	style := Styles.Normal
	if t.Selected {
		marker = "▸ "
		style = Styles.Selected
	}
	num := fmt.Sprintf("%3d ", t.Index+1)
	name := textutil.TruncateMiddle(recordName(t.Record), width-textutil.VisualWidth(marker+num))
	return style.Render(marker + num + name)
}

func (v *GalleryView) renderDetail(w, bodyH int) string {
	innerW := max(w-4, 1)
	innerH := max(bodyH-paneBorderRows, 1)
	frame := Styles.Pane
	var content string
	if v.detail == nil {
		content = Styles.Empty.Render("No image selected")
	} else {
		frame = Styles.PaneActive
		content = v.detailContent(innerW, innerH)
	}
	return frame.Width(w - 2).Height(innerH).Render(content)
}

func (v *GalleryView) detailContent(w, h int) string {
	d := v.detail
	title := Styles.Title.Render(textutil.Truncate(recordName(d.Record), max(w-12, 1))) +
		Styles.Muted.Render(fmt.Sprintf("  %d/%d", d.Index+1, d.Total))

	artRows := max(h-detailChromeRows, 1)
	var art string
	switch {
	case v.loading:
		art = Styles.Empty.Render("Loading…")
	case v.img != nil:
		art = v.cachedArt(w, artRows)
	default:
		art = Styles.Empty.Render("Preview unavailable")
	}
	art = lipgloss.PlaceHorizontal(w, lipgloss.Center, art)
	art = lipgloss.PlaceVertical(artRows, lipgloss.Center, art)

	return strings.Join([]string{title, v.metaLine(d, w), art, controls(d, w)}, "\n")
}

func (v *GalleryView) cachedArt(w, h int) string {
	key := fmt.Sprintf("%s/%dx%d", v.wantID, w, h)
	if key != v.artKey {
		v.art = preview.Render(v.img, w, h)
		v.artKey = key
	}
	return v.art
}

func (v *GalleryView) metaLine(d *gallery.Detail, w int) string {
	var parts []string
	if ts := d.Record.Timestamp; ts > 0 {
		sec := int64(ts)
		parts = append(parts, humanize.Time(time.Unix(sec, int64((ts-float64(sec))*1e9))))
	}
	if v.img != nil {
		parts = append(parts,
			fmt.Sprintf("%d×%d %s", v.info.Width, v.info.Height, v.info.Format),
			humanize.Bytes(uint64(v.info.Bytes)))
	}
	if len(parts) == 0 {
		parts = append(parts, d.Record.ID)
	}
	return Styles.Muted.Render(textutil.Truncate(strings.Join(parts, " · "), w))
}

func controls(d *gallery.Detail, w int) string {
	prev, next := Styles.Disabled, Styles.Disabled
	if d.PrevEnabled {
		prev = Styles.Control
	}
	if d.NextEnabled {
		next = Styles.Control
	}
	left := prev.Render("‹ prev")
	right := next.Render("next ›")
	gap := max(w-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (v *GalleryView) renderStatus(w int) string {
	if v.notice.Text == "" {
		return ""
	}
	style := Styles.Status
	if v.notice.Level == gallery.NoticeError {
		style = Styles.Error
	}
	return style.Render(textutil.Truncate(v.notice.Text, w))
}

func (v *GalleryView) renderHint(w int) string {
	upload := "u upload"
	if v.busy {
		upload = Styles.Disabled.Render("uploading…")
	}
	hint := "←/→ browse  ctrl+del delete  " + upload + "  f fullscreen  r refresh  SPC more  q quit"
	return Styles.Hint.Render(textutil.Truncate(hint, w))
}

func recordName(r gallery.ImageRecord) string {
	if r.Filename != "" {
		return r.Filename
	}
	return textutil.BaseName(r.ID)
}

// paneZoom is the in-terminal fullscreen provider: the detail pane takes the
// whole screen.
type paneZoom struct {
	view *GalleryView
}

var _ gallery.FullscreenProvider = paneZoom{}

func (z paneZoom) IsFullscreen() bool { return z.view.zoomed }

func (z paneZoom) Enter() error {
	z.view.zoomed = true
	return nil
}

func (z paneZoom) Exit() error {
	z.view.zoomed = false
	return nil
}
