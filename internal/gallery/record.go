package gallery

// NoSelection is the Current value of a state with nothing selected.
const NoSelection = -1

// ImageRecord is one image as listed by the server. Records are immutable
// once fetched; a fetch replaces the whole list.
type ImageRecord struct {
	ID        string  `json:"public_id"`
	URL       string  `json:"url"`
	Filename  string  `json:"filename"`
	Timestamp float64 `json:"timestamp,omitempty"` // unix seconds, 0 if unknown
}

// State holds the ordered image list and the selected index.
// Only the Controller mutates it.
type State struct {
	Images  []ImageRecord
	Current int
}

// NewState returns an empty state with nothing selected.
func NewState() *State {
	return &State{Current: NoSelection}
}

// Len returns the number of images.
func (s *State) Len() int {
	return len(s.Images)
}

// Empty reports whether there are no images.
func (s *State) Empty() bool {
	return len(s.Images) == 0
}

// Valid reports whether i addresses an image.
func (s *State) Valid(i int) bool {
	return i >= 0 && i < len(s.Images)
}

// Selected returns the current record, if any.
func (s *State) Selected() (ImageRecord, bool) {
	if !s.Valid(s.Current) {
		return ImageRecord{}, false
	}
	return s.Images[s.Current], true
}

// IndexOf returns the index of the record with the given ID, or -1.
func (s *State) IndexOf(id string) int {
	for i, img := range s.Images {
		if img.ID == id {
			return i
		}
	}
	return -1
}

// Clamp forces Current back into range: NoSelection when empty,
// otherwise min(max(Current, 0), len-1).
func (s *State) Clamp() {
	if len(s.Images) == 0 {
		s.Current = NoSelection
		return
	}
	if s.Current < 0 {
		s.Current = 0
	}
	if s.Current > len(s.Images)-1 {
		s.Current = len(s.Images) - 1
	}
}

// Replace installs a freshly fetched list. A strictly longer list is treated
// as "new item appended" and selects the last index; it returns true in that
// case. Otherwise Current is kept and clamped.
//
// Only lengths are compared, so one deletion plus two additions elsewhere
// also counts as an append.
func (s *State) Replace(images []ImageRecord) (appended bool) {
	appended = len(images) > len(s.Images)
	s.Images = images
	if appended {
		s.Current = len(images) - 1
		return true
	}
	s.Clamp()
	return false
}

// Remove deletes the record with the given ID and clamps Current.
// Returns false if no record has that ID.
func (s *State) Remove(id string) bool {
	i := s.IndexOf(id)
	if i < 0 {
		return false
	}
	images := make([]ImageRecord, 0, len(s.Images)-1)
	images = append(images, s.Images[:i]...)
	images = append(images, s.Images[i+1:]...)
	s.Images = images
	s.Clamp()
	return true
}
