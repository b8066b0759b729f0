package main

import (
	"io"
	stdlog "log"

	"boardview/internal/config"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"go.opentelemetry.io/otel"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger returns the process logger. Logs go to cfg.LogFile when set. The
// gallery owns the terminal, so without a log file it logs nothing; other
// commands log to stderr with --debug.
func newLogger(cfg config.Config, stderr io.Writer, tui bool) (logr.Logger, io.Closer, error) {
	verbosity := 0
	if cfg.Debug {
		verbosity = 1
	}
	stdr.SetVerbosity(verbosity)

	var (
		std    *stdlog.Logger
		closer io.Closer = nopCloser{}
	)
	switch {
	case cfg.LogFile != "":
		f, err := tea.LogToFile(cfg.LogFile, "boardview ")
		if err != nil {
			return logr.Discard(), closer, err
		}
		std, closer = stdlog.Default(), f
	case cfg.Debug && !tui:
		std = stdlog.New(stderr, "boardview ", stdlog.LstdFlags)
	default:
		return logr.Discard(), closer, nil
	}

	log := stdr.New(std)
	otel.SetLogger(log)
	return log, closer, nil
}
