// Package tmux zooms the boardview pane via exec, giving the detail image the
// whole tmux window. It is used as the fullscreen provider when boardview runs
// inside tmux (TMUX env set). Commands target the current pane.
package tmux

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes a tmux command and returns its combined output.
type Runner func(ctx context.Context, args ...string) (string, error)

// Exec runs the real tmux binary.
func Exec(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "tmux", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		name := "tmux"
		if len(args) > 0 {
			name += " " + args[0]
		}
		return "", fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(out.String()))
	}
	return strings.TrimSpace(out.String()), nil
}

// Available reports whether the process runs inside a tmux client.
func Available() bool {
	return os.Getenv("TMUX") != ""
}

// Zoom toggles tmux's pane zoom. Set Target to address a pane other than the
// current one.
type Zoom struct {
	Run    Runner
	Target string
}

// NewZoom returns a Zoom that shells out to tmux.
func NewZoom() *Zoom {
	return &Zoom{Run: Exec, Target: os.Getenv("TMUX_PANE")}
}

// run calls tmux command sub. tmux stops parsing options at the first
// positional argument, so flags and the target go in front of positional.
func (z *Zoom) run(sub string, flags []string, positional ...string) (string, error) {
	run := z.Run
	if run == nil {
		run = Exec
	}
	args := append([]string{sub}, flags...)
	if z.Target != "" {
		args = append(args, "-t", z.Target)
	}
	args = append(args, positional...)
	return run(context.Background(), args...)
}

func (z *Zoom) display(format string) (string, error) {
	return z.run("display-message", []string{"-p"}, format)
}

func (z *Zoom) toggle() error {
	_, err := z.run("resize-pane", []string{"-Z"})
	return err
}

// WindowPaneCount returns the number of panes in the current window.
func (z *Zoom) WindowPaneCount() (int, error) {
	out, err := z.display("#{window_panes}")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("parse pane count: %w", err)
	}
	return n, nil
}

// IsFullscreen reports the window_zoomed_flag. Errors read as not zoomed.
func (z *Zoom) IsFullscreen() bool {
	out, err := z.display("#{window_zoomed_flag}")
	if err != nil {
		return false
	}
	return parseFlag(out)
}

// Enter zooms the pane. A window with a single pane is already as large as it
// gets, so nothing is done.
func (z *Zoom) Enter() error {
	if z.IsFullscreen() {
		return nil
	}
	count, err := z.WindowPaneCount()
	if err != nil {
		return err
	}
	if count < 2 {
		return nil
	}
	return z.toggle()
}

// Exit unzooms the pane.
func (z *Zoom) Exit() error {
	if !z.IsFullscreen() {
		return nil
	}
	return z.toggle()
}

func parseFlag(s string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return err == nil && n != 0
}
