package fsutil

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndOpen(t *testing.T) {
	ctx := context.Background()
	target := filepath.Join(t.TempDir(), "whiteboard_images.zip")

	n, err := Create(ctx, target, strings.NewReader("PK-data"))
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)

	exists, err := Exists(ctx, target)
	require.NoError(t, err)
	assert.True(t, exists)

	// Overwrite replaces the old contents.
	_, err = Create(ctx, target, strings.NewReader("new"))
	require.NoError(t, err)

	rc, err := Open(ctx, target)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "new", string(b))
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := Normalize("~/Pictures/board.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Pictures", "board.png"), got)

	got, err = Normalize("file:///tmp/board.png")
	require.NoError(t, err)
	assert.Equal(t, "file:///tmp/board.png", got)

	got, err = Normalize("board.png")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestBase(t *testing.T) {
	assert.Equal(t, "board.png", Base("/tmp/board.png"))
	assert.Equal(t, "board.png", Base("file:///tmp/board.png"))
}
