package ui

import (
	"context"
	"errors"
	"time"

	"boardview/internal/gallery"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-logr/logr"
)

// DefaultPollInterval is how often the gallery refetches the list.
const DefaultPollInterval = 55 * time.Second

// Options wires the app to the outside world. API is required.
type Options struct {
	Context context.Context
	API     gallery.API
	// Images fetches detail images; nil shows metadata only.
	Images    ImageSource
	Navigator gallery.Navigator
	// Fullscreen is an outer provider (tmux pane zoom). The detail pane is
	// always zoomed in-app as well.
	Fullscreen   gallery.FullscreenProvider
	PollInterval time.Duration
	Server       string
	Logger       logr.Logger
}

// AppModel is the root model: the gallery screen, its controller, the
// keybind system and the modal overlays.
type AppModel struct {
	Gallery    *GalleryView
	Controller *gallery.Controller
	KeyHandler *KeyHandler
	Overlays   *OverlayStack

	pollInterval time.Duration
	queue        *cmdQueue
	log          logr.Logger
}

// Ensure AppModel can be used as tea.Model via adapter.
var _ tea.Model = (*appModelAdapter)(nil)

// appModelAdapter wraps AppModel to implement tea.Model.
type appModelAdapter struct {
	*AppModel
}

// NewAppModel creates the root model and the controller behind it.
func NewAppModel(opts Options) *AppModel {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	queue := &cmdQueue{}
	overlays := &OverlayStack{}
	view := NewGalleryView(ctx, queue, opts.Images)
	view.Server = opts.Server

	var fullscreen gallery.FullscreenProvider = paneZoom{view: view}
	if opts.Fullscreen != nil {
		fullscreen = stackedZoom{outer: opts.Fullscreen, inner: paneZoom{view: view}}
	}

	controller := gallery.NewController(gallery.Options{
		API:        opts.API,
		Surface:    view,
		Confirmer:  &modalConfirmer{overlays: overlays, queue: queue},
		Loop:       &teaLoop{ctx: ctx, queue: queue},
		Fullscreen: fullscreen,
		Navigator:  opts.Navigator,
		Logger:     log.WithName("gallery"),
	})

	return &AppModel{
		Gallery:      view,
		Controller:   controller,
		KeyHandler:   NewKeyHandler(newRegistry()),
		Overlays:     overlays,
		pollInterval: interval,
		queue:        queue,
		log:          log.WithName("ui"),
	}
}

func msgCmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func newRegistry() *KeybindRegistry {
	reg := NewKeybindRegistry()
	reg.BindWithDesc("q", tea.Quit, "Quit")
	reg.BindWithDesc("ctrl+c", tea.Quit, "Quit")
	reg.BindWithDesc("SPC q", tea.Quit, "Quit")
	reg.BindWithDesc("r", msgCmd(RefreshMsg{}), "Refresh")
	reg.BindWithDesc("SPC r", msgCmd(RefreshMsg{}), "Refresh")
	reg.BindWithDesc("u", msgCmd(ShowUploadMsg{}), "Upload")
	reg.BindWithDesc("SPC u", msgCmd(ShowUploadMsg{}), "Upload")
	reg.BindWithDesc("f", msgCmd(ToggleFullscreenMsg{}), "Fullscreen")
	reg.BindWithDesc("SPC f", msgCmd(ToggleFullscreenMsg{}), "Fullscreen")
	reg.BindWithDesc("SPC x", msgCmd(DeleteImageMsg{}), "Delete image")
	reg.BindWithDesc("SPC d z", msgCmd(DownloadMsg{Kind: gallery.DownloadZip}), "Zip")
	reg.BindWithDesc("SPC d p", msgCmd(DownloadMsg{Kind: gallery.DownloadPDF}), "PDF")
	reg.BindWithDesc("g", msgCmd(SelectImageMsg{Index: 0}), "First image")
	reg.BindWithDesc("G", msgCmd(SelectImageMsg{Index: -1}), "Last image")
	reg.BindWithDescForMode("esc", msgCmd(ToggleFullscreenMsg{}), "Leave fullscreen", []AppMode{ModeZoomed})
	return reg
}

// galleryKey translates the keyboard handler's keys. Plain delete is
// accepted alongside ctrl+delete because most terminals do not report the
// modifier for it; the confirmation modal guards both.
func galleryKey(s string) gallery.Key {
	switch s {
	case "left", "h", "up", "k":
		return gallery.KeyLeft
	case "right", "l", "down", "j":
		return gallery.KeyRight
	case "ctrl+delete", "delete":
		return gallery.KeyDelete
	}
	return gallery.KeyNone
}

// Mode reports the current layout.
func (a *AppModel) Mode() AppMode {
	if a.Gallery.Zoomed() {
		return ModeZoomed
	}
	return ModeGallery
}

// Init implements tea.Model: fetch now, then every poll interval.
func (a *appModelAdapter) Init() tea.Cmd {
	a.Controller.FetchAndSync()
	return tea.Batch(a.queue.drain(), pollCmd(a.pollInterval))
}

// Update implements tea.Model. Anything the controller's collaborators
// queued while handling msg is returned with it.
func (a *appModelAdapter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.handle(msg)
	a.KeyHandler.Mode = a.Mode()
	return a, tea.Batch(cmd, a.queue.drain())
}

func (a *appModelAdapter) handle(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case applyMsg:
		if msg.apply != nil {
			msg.apply()
		}
		return nil
	case confirmedMsg:
		a.Overlays.Pop()
		if msg.onYes != nil {
			msg.onYes()
		}
		return nil
	case DismissModalMsg:
		a.Overlays.Pop()
		return nil
	case pollMsg:
		a.Controller.FetchAndSync()
		return pollCmd(a.pollInterval)
	case RefreshMsg:
		a.Controller.Refresh()
		return nil
	case DeleteImageMsg:
		a.Controller.HandleKey(gallery.KeyDelete)
		return nil
	case ShowUploadMsg:
		if a.Controller.Uploading() {
			return nil
		}
		m := NewUploadModal(a.Gallery.Selection())
		a.Overlays.Push(Overlay{View: m, Dismiss: "esc"})
		return m.Init()
	case UploadFileMsg:
		a.Overlays.Pop()
		a.Gallery.SetSelection(msg.Path)
		a.Controller.OnUploadRequested(msg.Path)
		return nil
	case ToggleFullscreenMsg:
		a.Controller.ToggleFullscreen()
		return nil
	case DownloadMsg:
		a.Controller.Download(msg.Kind)
		return nil
	case SelectImageMsg:
		i := msg.Index
		if i < 0 {
			i += len(a.Controller.Images())
		}
		a.Controller.OnSelect(i)
		return nil
	case imageLoadedMsg:
		if err := a.Gallery.applyImage(msg); err != nil {
			a.Controller.ImageLoadFailed(err)
		}
		return nil
	case tea.MouseMsg:
		if a.Overlays.Len() == 0 {
			a.handleMouse(msg)
		}
		return nil
	case tea.KeyMsg:
		return a.handleKey(msg)
	case tea.WindowSizeMsg:
		_, cmd := a.Gallery.Update(msg)
		return cmd
	}

	// Timers and blinks for the gallery and the top modal.
	_, cmd := a.Gallery.Update(msg)
	if top, ok := a.Overlays.UpdateTop(msg); ok {
		cmd = tea.Batch(cmd, top)
	}
	return cmd
}

func (a *appModelAdapter) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if top, ok := a.Overlays.Peek(); ok {
		if top.IsDismissKey(msg.String()) {
			a.Overlays.Pop()
			return nil
		}
		cmd, _ := a.Overlays.UpdateTop(msg)
		return cmd
	}
	if consumed, cmd := a.KeyHandler.Handle(msg); consumed {
		return cmd
	}
	if k := galleryKey(msg.String()); k != gallery.KeyNone {
		a.Controller.HandleKey(k)
	}
	return nil
}

func (a *appModelAdapter) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}
	switch msg.Button {
	case tea.MouseButtonLeft:
		if i, ok := a.Gallery.ThumbnailAt(msg.X, msg.Y); ok {
			a.Controller.OnSelect(i)
		}
	case tea.MouseButtonWheelUp:
		a.Controller.HandleKey(gallery.KeyLeft)
	case tea.MouseButtonWheelDown:
		a.Controller.HandleKey(gallery.KeyRight)
	}
}

// View implements tea.Model.
func (a *appModelAdapter) View() string {
	if top, ok := a.Overlays.Peek(); ok {
		w, h := a.Gallery.size()
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, top.View.View())
	}
	base := a.Gallery.View()
	if a.KeyHandler.LeaderWaiting {
		base += "\n" + RenderKeybindHelp(a.KeyHandler)
	}
	return base
}

// AsTeaModel returns a tea.Model adapter for use with tea.NewProgram.
func (a *AppModel) AsTeaModel() tea.Model {
	return &appModelAdapter{AppModel: a}
}

// stackedZoom drives an outer fullscreen provider and the in-app pane zoom
// together. Either one being zoomed counts as fullscreen, so a toggle always
// leaves both.
type stackedZoom struct {
	outer gallery.FullscreenProvider
	inner gallery.FullscreenProvider
}

func (z stackedZoom) IsFullscreen() bool {
	return z.outer.IsFullscreen() || z.inner.IsFullscreen()
}

func (z stackedZoom) Enter() error {
	return errors.Join(z.outer.Enter(), z.inner.Enter())
}

func (z stackedZoom) Exit() error {
	return errors.Join(z.outer.Exit(), z.inner.Exit())
}
