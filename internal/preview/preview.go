// Package preview decodes a detail image and draws it with half-block
// characters: each terminal cell shows two vertically stacked pixels, the
// upper one as foreground and the lower one as background.
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/charmbracelet/lipgloss"
	_ "golang.org/x/image/webp"
)

const upperHalfBlock = "▀"

// ErrEmpty is returned for a zero-length image body.
var ErrEmpty = errors.New("empty image")

// Info describes a decoded image.
type Info struct {
	Format string
	Width  int
	Height int
	Bytes  int
}

// Decode parses an image body.
func Decode(data []byte) (image.Image, Info, error) {
	if len(data) == 0 {
		return nil, Info{}, ErrEmpty
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Info{}, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	return img, Info{Format: format, Width: b.Dx(), Height: b.Dy(), Bytes: len(data)}, nil
}

// Fit returns the largest size in pixels, keeping the aspect ratio, that fits
// into cols×rows cells (rows*2 pixel rows).
func Fit(w, h, cols, rows int) (int, int) {
	if w <= 0 || h <= 0 || cols <= 0 || rows <= 0 {
		return 0, 0
	}
	maxW, maxH := cols, rows*2
	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	tw, th := int(float64(w)*scale), int(float64(h)*scale)
	return max(tw, 1), max(th, 1)
}

// Render draws img into at most cols×rows cells. Returns "" when there is no
// room.
func Render(img image.Image, cols, rows int) string {
	b := img.Bounds()
	tw, th := Fit(b.Dx(), b.Dy(), cols, rows)
	if tw == 0 {
		return ""
	}
	sample := func(x, y int) color.Color {
		sx := b.Min.X + x*b.Dx()/tw
		sy := b.Min.Y + y*b.Dy()/th
		return img.At(sx, sy)
	}

	lines := make([]string, 0, (th+1)/2)
	for y := 0; y < th; y += 2 {
		var line strings.Builder
		for x := 0; x < tw; x++ {
			style := lipgloss.NewStyle().Foreground(hex(sample(x, y)))
			if y+1 < th {
				style = style.Background(hex(sample(x, y+1)))
			}
			line.WriteString(style.Render(upperHalfBlock))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

func hex(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
