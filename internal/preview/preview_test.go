package preview

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"boardview/internal/apitest"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	img, info, err := Decode(apitest.SamplePNG(8, 6))
	require.NoError(t, err)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, 8, info.Width)
	assert.Equal(t, 6, info.Height)
	assert.Equal(t, 8, img.Bounds().Dx())
}

func TestDecode_WebP(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "logo.webp"))
	require.NoError(t, err)

	img, info, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "webp", info.Format)
	assert.Equal(t, 16, info.Width)
	assert.Equal(t, 16, info.Height)
	assert.NotEmpty(t, Render(img, 16, 8))
}

func TestDecode_Errors(t *testing.T) {
	_, _, err := Decode(nil)
	assert.ErrorIs(t, err, ErrEmpty)

	_, _, err = Decode([]byte("<html>not found</html>"))
	assert.Error(t, err)
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, cols, rows int
		wantW, wantH     int
	}{
		{864, 576, 60, 20, 60, 40},
		{100, 100, 80, 10, 20, 20},
		{10, 10, 80, 40, 80, 80},
		{10, 10, 0, 10, 0, 0},
	}
	for _, tt := range tests {
		gw, gh := Fit(tt.w, tt.h, tt.cols, tt.rows)
		assert.Equal(t, tt.wantW, gw, "%+v", tt)
		assert.Equal(t, tt.wantH, gh, "%+v", tt)
	}
}

func TestRender_Dimensions(t *testing.T) {
	img, _, err := Decode(apitest.SamplePNG(16, 8))
	require.NoError(t, err)

	out := Render(img, 16, 4)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 4)
	for _, l := range lines {
		assert.Equal(t, 16, lipgloss.Width(l))
	}
	assert.Equal(t, "", Render(img, 0, 4))
}
