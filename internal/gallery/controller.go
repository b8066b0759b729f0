// Package gallery owns the gallery view state and every rule for changing it.
//
// The Controller is the only code that mutates State. It talks to the remote
// store through API, draws through Surface, asks for confirmation through
// Confirmer and runs network work through Loop, so it has no dependency on
// any UI framework.
package gallery

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
)

// Options wires a Controller to its collaborators. API, Surface and Loop are
// required; the rest may be nil.
type Options struct {
	API        API
	Surface    Surface
	Confirmer  Confirmer
	Loop       Loop
	Fullscreen FullscreenProvider
	Navigator  Navigator
	Logger     logr.Logger
}

// Controller is the single authority over a gallery State.
type Controller struct {
	state      *State
	api        API
	surface    Surface
	confirm    Confirmer
	loop       Loop
	fullscreen FullscreenProvider
	navigator  Navigator
	log        logr.Logger

	detailShown bool
	uploading   bool
}

// Ensure Controller implements EventHandler.
var _ EventHandler = (*Controller)(nil)

// NewController creates a controller with an empty state.
func NewController(opts Options) *Controller {
	confirm := opts.Confirmer
	if confirm == nil {
		confirm = AutoConfirm(false)
	}
	loop := opts.Loop
	if loop == nil {
		loop = InlineLoop{}
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Controller{
		state:      NewState(),
		api:        opts.API,
		surface:    opts.Surface,
		confirm:    confirm,
		loop:       loop,
		fullscreen: opts.Fullscreen,
		navigator:  opts.Navigator,
		log:        log,
	}
}

// Images returns a copy of the current list.
func (c *Controller) Images() []ImageRecord {
	return append([]ImageRecord(nil), c.state.Images...)
}

// Current returns the selected index, or NoSelection.
func (c *Controller) Current() int {
	return c.state.Current
}

// Selected returns the selected record, if any.
func (c *Controller) Selected() (ImageRecord, bool) {
	return c.state.Selected()
}

// DetailVisible reports whether the detail pane is currently shown.
func (c *Controller) DetailVisible() bool {
	return c.detailShown
}

// Uploading reports whether an upload holds the upload control.
func (c *Controller) Uploading() bool {
	return c.uploading
}

// State returns a snapshot of the state. Changing it does not affect the
// controller.
func (c *Controller) State() State {
	return State{
		Images:  append([]ImageRecord(nil), c.state.Images...),
		Current: c.state.Current,
	}
}

// FetchAndSync lists the remote images and reconciles the state with them.
// A failed fetch leaves the state alone and raises a notice.
func (c *Controller) FetchAndSync() {
	c.loop.Go(func(ctx context.Context) func() {
		images, err := c.api.ListImages(ctx)
		return func() { c.applyFetch(images, err) }
	})
}

// Refresh is a manual FetchAndSync.
func (c *Controller) Refresh() {
	c.log.V(1).Info("manual refresh")
	c.FetchAndSync()
}

func (c *Controller) applyFetch(images []ImageRecord, err error) {
	if err != nil {
		c.log.Error(err, "fetch images")
		c.notifyError("Load images", err)
		return
	}
	before := c.state.Len()
	appended := c.state.Replace(images)
	c.log.V(1).Info("images synced", "before", before, "after", c.state.Len(), "current", c.state.Current)
	c.render()
	if appended {
		c.surface.ScrollThumbnailsToEnd()
	}
}

// SelectImage selects index i and redraws. Out-of-range indexes are ignored.
func (c *Controller) SelectImage(i int) {
	if !c.state.Valid(i) {
		return
	}
	c.state.Current = i
	c.render()
}

// StepPrev selects the previous image; no-op at the first one.
func (c *Controller) StepPrev() {
	if !c.state.Valid(c.state.Current) || c.state.Current == 0 {
		return
	}
	c.SelectImage(c.state.Current - 1)
}

// StepNext selects the next image; no-op at the last one.
func (c *Controller) StepNext() {
	if !c.state.Valid(c.state.Current) || c.state.Current == c.state.Len()-1 {
		return
	}
	c.SelectImage(c.state.Current + 1)
}

// DeleteCurrent asks for confirmation and then deletes the selected image on
// the server. The record is removed locally only after the server agrees.
func (c *Controller) DeleteCurrent() {
	rec, ok := c.state.Selected()
	if !ok {
		return
	}
	c.confirm.Confirm(fmt.Sprintf("Delete %s?", displayName(rec)), func() {
		c.loop.Go(func(ctx context.Context) func() {
			err := c.api.DeleteImage(ctx, rec.ID)
			return func() { c.applyDelete(rec, err) }
		})
	})
}

func (c *Controller) applyDelete(rec ImageRecord, err error) {
	if err != nil {
		c.log.Error(err, "delete image", "id", rec.ID)
		c.notifyError("Delete", err)
		return
	}
	// A poll may have replaced the list while the call was in flight.
	if !c.state.Remove(rec.ID) {
		c.state.Clamp()
	}
	c.log.Info("image deleted", "id", rec.ID, "remaining", c.state.Len())
	c.render()
	c.surface.Notify(Notice{Level: NoticeInfo, Text: "Deleted " + displayName(rec)})
}

// Upload sends the file at path to the server. An empty path fails with a
// *ValidationError before any network call. The upload control stays
// disabled until the call finishes, whatever the outcome.
func (c *Controller) Upload(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		err := &ValidationError{Reason: "Choose a file to upload first"}
		c.surface.Notify(Notice{Level: NoticeError, Text: err.Reason})
		return err
	}
	if c.uploading {
		c.notifyError("Upload", ErrUploadInProgress)
		return ErrUploadInProgress
	}
	c.uploading = true
	c.surface.SetUploadBusy(true)
	c.loop.Go(func(ctx context.Context) func() {
		err := c.api.Upload(ctx, path)
		return func() { c.finishUpload(path, err) }
	})
	return nil
}

func (c *Controller) finishUpload(path string, err error) {
	defer c.releaseUpload()
	if err != nil {
		c.log.Error(err, "upload", "path", path)
		c.notifyError("Upload", err)
		return
	}
	c.log.Info("uploaded", "path", path)
	c.surface.ClearFileSelection()
	c.surface.Notify(Notice{Level: NoticeInfo, Text: "Upload complete"})
	c.FetchAndSync()
}

func (c *Controller) releaseUpload() {
	c.uploading = false
	c.surface.SetUploadBusy(false)
}

// ToggleFullscreen leaves fullscreen if the provider is in it, otherwise asks
// for fullscreen on the detail image. It never touches the state.
func (c *Controller) ToggleFullscreen() {
	if c.fullscreen == nil {
		c.surface.Notify(Notice{Level: NoticeError, Text: "Fullscreen is not available here"})
		return
	}
	var err error
	if c.fullscreen.IsFullscreen() {
		err = c.fullscreen.Exit()
	} else {
		if !c.detailShown {
			return
		}
		err = c.fullscreen.Enter()
	}
	if err != nil {
		c.notifyError("Fullscreen", err)
	}
}

// HandleKey is the keyboard handler. Keys are ignored while the list is empty.
func (c *Controller) HandleKey(k Key) {
	DispatchKey(c.state, c, k)
}

// ImageLoadFailed reports a detail image that could not be shown. The pane
// is hidden; the list is left alone.
func (c *Controller) ImageLoadFailed(err error) {
	c.log.Error(err, "detail image failed to load")
	c.surface.Notify(Notice{Level: NoticeError, Text: "Could not display image: " + errorText(err)})
	c.detailShown = false
	c.surface.HideDetail()
}

// Download starts a bulk download of every image as a zip or pdf.
func (c *Controller) Download(kind DownloadKind) {
	if c.navigator == nil {
		c.surface.Notify(Notice{Level: NoticeError, Text: "Downloads are not available here"})
		return
	}
	url := c.api.DownloadURL(kind)
	c.loop.Go(func(ctx context.Context) func() {
		var saved string
		var err error
		if s, ok := c.navigator.(Saver); ok {
			saved, err = s.Save(ctx, url)
		} else {
			err = c.navigator.Navigate(ctx, url)
		}
		return func() {
			if err != nil {
				c.log.Error(err, "download", "kind", kind)
				c.notifyError("Download", err)
				return
			}
			text := fmt.Sprintf("Download (%s) started", kind)
			if saved != "" {
				text = fmt.Sprintf("Saved %s", saved)
			}
			c.surface.Notify(Notice{Level: NoticeInfo, Text: text})
		}
	})
}

// OnSelect implements EventHandler.
func (c *Controller) OnSelect(index int) { c.SelectImage(index) }

// OnNavigate implements EventHandler.
func (c *Controller) OnNavigate(dir Direction) {
	switch dir {
	case Prev:
		c.StepPrev()
	case Next:
		c.StepNext()
	}
}

// OnDeleteRequested implements EventHandler.
func (c *Controller) OnDeleteRequested() { c.DeleteCurrent() }

// OnUploadRequested implements EventHandler.
func (c *Controller) OnUploadRequested(path string) { _ = c.Upload(path) }

// render redraws thumbnails and then the detail pane for Current, or hides
// the pane when there is nothing to show.
func (c *Controller) render() {
	c.surface.RenderThumbnails(Thumbnails(c.state))
	if d, ok := DetailFor(c.state, c.state.Current); ok {
		c.detailShown = true
		c.surface.ShowDetail(d)
		return
	}
	c.detailShown = false
	c.surface.HideDetail()
}

func (c *Controller) notifyError(action string, err error) {
	c.surface.Notify(Notice{Level: NoticeError, Text: noticeFor(action, err)})
}

func displayName(rec ImageRecord) string {
	if rec.Filename != "" {
		return rec.Filename
	}
	return rec.ID
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
