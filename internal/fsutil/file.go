// Package fsutil reads upload sources and writes saved downloads through a
// URL-addressed file system, so plain paths and file:// URLs both work.
package fsutil

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/option"
)

var fileSystem = afs.New()

// Normalize turns a user-entered location into something the file system
// accepts: "~/" is expanded and relative paths are made absolute. URLs with
// a scheme are returned unchanged.
func Normalize(location string) (string, error) {
	location = strings.TrimSpace(location)
	if strings.Contains(location, "://") {
		return location, nil
	}
	if strings.HasPrefix(location, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		location = filepath.Join(home, location[2:])
	}
	return filepath.Abs(location)
}

// Open opens location for reading.
func Open(ctx context.Context, location string) (io.ReadCloser, error) {
	u, err := Normalize(location)
	if err != nil {
		return nil, err
	}
	return fileSystem.OpenURL(ctx, u)
}

// Exists reports whether location exists.
func Exists(ctx context.Context, location string) (bool, error) {
	u, err := Normalize(location)
	if err != nil {
		return false, err
	}
	return fileSystem.Exists(ctx, u)
}

// Create writes everything from r to location, replacing any existing file.
// Returns the number of bytes written.
func Create(ctx context.Context, location string, r io.Reader) (n int64, err error) {
	u, err := Normalize(location)
	if err != nil {
		return 0, err
	}
	if exists, err := fileSystem.Exists(ctx, u); err != nil {
		return 0, err
	} else if exists {
		if err := fileSystem.Delete(ctx, u); err != nil {
			return 0, err
		}
	}
	w, err := fileSystem.NewWriter(ctx, u, 0o644, option.NewSkipChecksum(true))
	if err != nil {
		return 0, err
	}
	defer func() {
		err = errors.Join(err, w.Close())
	}()
	return io.Copy(w, r)
}

// Base returns the last element of a path or URL.
func Base(location string) string {
	if i := strings.Index(location, "://"); i >= 0 {
		return path.Base(location[i+3:])
	}
	return filepath.Base(location)
}
