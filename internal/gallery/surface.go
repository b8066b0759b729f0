package gallery

import "context"

// DownloadKind selects one of the server's bulk download endpoints.
type DownloadKind string

const (
	DownloadZip DownloadKind = "zip"
	DownloadPDF DownloadKind = "pdf"
)

// API is the remote image store as seen by the controller.
type API interface {
	ListImages(ctx context.Context) ([]ImageRecord, error)
	DeleteImage(ctx context.Context, id string) error
	Upload(ctx context.Context, path string) error
	DownloadURL(kind DownloadKind) string
}

// Surface is the rendering target. The controller calls it only from the
// event loop, with values derived from State.
type Surface interface {
	RenderThumbnails(thumbs []Thumbnail)
	ShowDetail(d Detail)
	HideDetail()
	ScrollThumbnailsToEnd()
	SetUploadBusy(busy bool)
	ClearFileSelection()
	Notify(n Notice)
}

// Confirmer is the yes/no gate in front of destructive actions. onYes runs on
// the event loop if and only if the user agrees.
type Confirmer interface {
	Confirm(prompt string, onYes func())
}

// FullscreenProvider toggles fullscreen for the detail image on one kind of
// display surface.
type FullscreenProvider interface {
	IsFullscreen() bool
	Enter() error
	Exit() error
}

// Navigator hands a URL to something that performs full-page navigation,
// such as a browser or a file saver.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// Saver is a Navigator that stores the response locally and can say where.
type Saver interface {
	Save(ctx context.Context, url string) (path string, err error)
}

// NoticeLevel distinguishes informational notices from failures.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice is a user-visible message.
type Notice struct {
	Level NoticeLevel
	Text  string
}

// AutoConfirm is a Confirmer that always answers the same way.
type AutoConfirm bool

// Confirm implements Confirmer.
func (a AutoConfirm) Confirm(_ string, onYes func()) {
	if a {
		onYes()
	}
}
