// Package download performs the full-page navigations behind the bulk zip and
// pdf downloads.
package download

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"boardview/internal/fsutil"
	"boardview/internal/gallery"

	"github.com/go-logr/logr"
)

var (
	_ gallery.Navigator = (*Browser)(nil)
	_ gallery.Saver     = (*Saver)(nil)
)

// Browser opens the URL in the system browser. The browser does not share
// the client's session cookie, so images deleted in this session still show
// up in what it downloads.
type Browser struct {
	// Command overrides the opener (xdg-open, open or rundll32 by default).
	Command []string
}

// Navigate launches the opener and waits for it to exit.
func (b *Browser) Navigate(ctx context.Context, rawURL string) error {
	argv := b.Command
	if len(argv) == 0 {
		argv = defaultOpener(runtime.GOOS)
	}
	args := append(append([]string(nil), argv[1:]...), rawURL)
	cmd := exec.CommandContext(ctx, argv[0], args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", argv[0], err, strings.TrimSpace(out.String()))
	}
	return nil
}

func defaultOpener(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler"}
	default:
		return []string{"xdg-open"}
	}
}

// Streamer opens a download response. *api.Client implements it.
type Streamer interface {
	Stream(ctx context.Context, rawURL string) (io.ReadCloser, string, error)
}

// Saver fetches the download with the client's session and writes it into Dir.
type Saver struct {
	Client Streamer
	Dir    string
	Log    logr.Logger
}

// Navigate saves the download and discards the path.
func (s *Saver) Navigate(ctx context.Context, rawURL string) error {
	_, err := s.Save(ctx, rawURL)
	return err
}

// Save writes the response body to Dir, named after the server's
// Content-Disposition filename when it sends one.
func (s *Saver) Save(ctx context.Context, rawURL string) (string, error) {
	body, name, err := s.Client.Stream(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	name = safeName(name)
	if name == "" {
		name = fallbackName(rawURL)
	}
	dest := filepath.Join(s.Dir, name)
	n, err := fsutil.Create(ctx, dest, body)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", dest, err)
	}
	s.Log.Info("download saved", "path", dest, "bytes", n)
	return dest, nil
}

// safeName keeps only the final element so a server-chosen name cannot
// escape Dir.
func safeName(name string) string {
	name = filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, "\\", "/")))
	if name == "/" || name == "." {
		return ""
	}
	return name
}

func fallbackName(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	if strings.HasSuffix(path.Base(p), "-pdf") {
		return "whiteboard_images.pdf"
	}
	return "whiteboard_images.zip"
}
