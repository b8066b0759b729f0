package gallery

// Thumbnail is one entry of the thumbnail strip.
type Thumbnail struct {
	Index    int
	Record   ImageRecord
	Selected bool
}

// Detail is what the large-view pane shows.
type Detail struct {
	Index       int
	Total       int
	Record      ImageRecord
	PrevEnabled bool
	NextEnabled bool
}

// Thumbnails derives the strip 1:1 from the state. At most one entry is
// selected: the one at Current. An empty state yields an empty slice, which
// surfaces render as a placeholder.
func Thumbnails(s *State) []Thumbnail {
	thumbs := make([]Thumbnail, len(s.Images))
	for i, img := range s.Images {
		thumbs[i] = Thumbnail{Index: i, Record: img, Selected: i == s.Current}
	}
	return thumbs
}

// DetailFor derives the detail pane for index i. ok is false when i is out of
// range.
func DetailFor(s *State, i int) (d Detail, ok bool) {
	if !s.Valid(i) {
		return Detail{}, false
	}
	return Detail{
		Index:       i,
		Total:       len(s.Images),
		Record:      s.Images[i],
		PrevEnabled: i > 0,
		NextEnabled: i < len(s.Images)-1,
	}, true
}
