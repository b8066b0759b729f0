package gallery

// Direction is a one-step move through the list.
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// Key is a keyboard intent, already translated from a UI framework's key
// events.
type Key int

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyDelete // Ctrl+Delete
)

// EventHandler is the capability set a UI adapter dispatches user input to.
type EventHandler interface {
	OnSelect(index int)
	OnNavigate(dir Direction)
	OnDeleteRequested()
	OnUploadRequested(path string)
}

// DispatchKey routes a keyboard intent to h. Every key is ignored while the
// list is empty.
func DispatchKey(s *State, h EventHandler, k Key) {
	if s.Empty() {
		return
	}
	switch k {
	case KeyLeft:
		h.OnNavigate(Prev)
	case KeyRight:
		h.OnNavigate(Next)
	case KeyDelete:
		h.OnDeleteRequested()
	}
}
