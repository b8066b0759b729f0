package ui

// AppMode is the top-level layout: the full gallery, or the detail pane
// zoomed to fill the terminal.
type AppMode int

const (
	ModeGallery AppMode = iota
	ModeZoomed
)

func (m AppMode) String() string {
	switch m {
	case ModeGallery:
		return "Gallery"
	case ModeZoomed:
		return "Zoomed"
	default:
		return "Unknown"
	}
}
