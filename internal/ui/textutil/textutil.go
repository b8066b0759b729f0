// Package textutil provides unicode-aware text utilities for TUI rendering.
package textutil

import (
	"path"
	"strings"

	"github.com/mattn/go-runewidth"
)

// TruncateEllipsis is the unicode ellipsis character used for truncation.
const TruncateEllipsis = "…"

// VisualWidth returns the number of terminal columns s occupies.
func VisualWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate cuts s to at most maxWidth columns, ending in an ellipsis when
// anything was removed.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if VisualWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, TruncateEllipsis)
}

// TruncateMiddle cuts s to at most maxWidth columns by dropping runes from the
// middle, so both the start of a filename and its extension stay visible.
func TruncateMiddle(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if VisualWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 2 {
		return Truncate(s, maxWidth)
	}
	avail := maxWidth - VisualWidth(TruncateEllipsis)
	tailWidth := avail / 2
	headWidth := avail - tailWidth

	runes := []rune(s)
	var head strings.Builder
	w := 0
	for _, r := range runes {
		rw := runewidth.RuneWidth(r)
		if w+rw > headWidth {
			break
		}
		head.WriteRune(r)
		w += rw
	}
	var tail []rune
	w = 0
	for i := len(runes) - 1; i >= 0; i-- {
		rw := runewidth.RuneWidth(runes[i])
		if w+rw > tailWidth {
			break
		}
		tail = append([]rune{runes[i]}, tail...)
		w += rw
	}
	return head.String() + TruncateEllipsis + string(tail)
}

// BaseName returns the last element of a slash or backslash separated path,
// such as a public_id or an upload path.
func BaseName(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	b := path.Base(p)
	if b == "." || b == "/" {
		return p
	}
	return b
}
