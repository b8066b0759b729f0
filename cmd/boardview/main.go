package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"boardview/internal/api"
	"boardview/internal/config"
	"boardview/internal/download"
	"boardview/internal/gallery"
	"boardview/internal/telemetry"
	"boardview/internal/tmux"
	"boardview/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
)

var globalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "server",
		Usage:   "Base URL of the image store (env " + config.ServerURLEnv + ")",
		Aliases: []string{"s"},
	},
	&cli.DurationFlag{
		Name:  "poll-interval",
		Usage: "How often the gallery refetches the list (env " + config.PollIntervalEnv + ")",
	},
	&cli.DurationFlag{
		Name:  "timeout",
		Usage: "Timeout for a single request (env " + config.TimeoutEnv + ")",
	},
	&cli.StringFlag{
		Name:  "delete-path",
		Usage: "Delete route template, {id} is the escaped public_id (env " + config.DeletePathEnv + ")",
	},
	&cli.StringFlag{
		Name:    "download-dir",
		Usage:   "Where zip and pdf downloads are saved (env " + config.DownloadDirEnv + ")",
		Aliases: []string{"o"},
	},
	&cli.BoolFlag{
		Name:  "browser",
		Usage: "Open downloads in the system browser instead of saving them; the browser does not see this session's deletions (env " + config.OpenBrowserEnv + ")",
	},
	&cli.StringFlag{
		Name:  "log-file",
		Usage: "Write logs to this file (env " + config.LogFileEnv + ")",
	},
	&cli.BoolFlag{
		Name:  "debug",
		Usage: "Verbose logging (env " + config.DebugEnv + ")",
	},
}

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "boardview",
		Usage:     "Browse, upload and delete whiteboard captures",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     globalFlags,
		Action:    runGallery,
		Commands: []*cli.Command{
			listCommand,
			downloadCommand,
			uploadCommand,
		},
	}
}

// settings resolves the configuration: defaults, then env, then any flag the
// user actually set.
func settings(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		return cfg, err
	}
	if c.IsSet("server") {
		cfg.ServerURL = c.String("server")
	}
	if c.IsSet("poll-interval") {
		cfg.PollInterval = c.Duration("poll-interval")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("delete-path") {
		cfg.DeletePath = c.String("delete-path")
	}
	if c.IsSet("download-dir") {
		cfg.DownloadDir = c.String("download-dir")
	}
	if c.IsSet("browser") {
		cfg.OpenBrowser = c.Bool("browser")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	return cfg, cfg.Validate()
}

// env is everything a command needs once configuration is resolved.
type env struct {
	cfg       config.Config
	log       logr.Logger
	telemetry *telemetry.Provider
	client    *api.Client
	closers   []io.Closer
}

func setup(c *cli.Context, tui bool) (*env, error) {
	cfg, err := settings(c)
	if err != nil {
		return nil, err
	}
	log, closer, err := newLogger(cfg, c.App.ErrWriter, tui)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: log, closers: []io.Closer{closer}}

	otelOpts := telemetry.ParseEndpoint(cfg.OTLPEndpoint)
	otelOpts.ServiceName = cfg.ServiceName
	e.telemetry, err = telemetry.NewProvider(c.Context, otelOpts)
	if err != nil {
		e.close(c.Context)
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	e.client, err = api.New(api.Options{
		BaseURL:    cfg.ServerURL,
		Timeout:    cfg.Timeout,
		DeletePath: cfg.DeletePath,
		Tracer:     e.telemetry.Tracer(),
		Logger:     log,
	})
	if err != nil {
		e.close(c.Context)
		return nil, err
	}
	log.V(1).Info("configured", "server", cfg.ServerURL, "poll", cfg.PollInterval.String(), "tracing", e.telemetry.Enabled())
	return e, nil
}

func (e *env) close(ctx context.Context) {
	if err := e.telemetry.Shutdown(ctx); err != nil {
		e.log.Error(err, "telemetry shutdown")
	}
	for _, c := range e.closers {
		_ = c.Close()
	}
}

func (e *env) navigator() gallery.Navigator {
	if e.cfg.OpenBrowser {
		return &download.Browser{}
	}
	return &download.Saver{Client: e.client, Dir: e.cfg.DownloadDir, Log: e.log.WithName("download")}
}

// runGallery starts the interactive gallery.
func runGallery(c *cli.Context) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return errors.New("the gallery needs a terminal; use `boardview list` for plain output")
	}
	e, err := setup(c, true)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	defer e.close(context.Background())

	var fullscreen gallery.FullscreenProvider
	if tmux.Available() {
		fullscreen = tmux.NewZoom()
	}
	model := ui.NewAppModel(ui.Options{
		Context:      ctx,
		API:          e.client,
		Images:       e.client,
		Navigator:    e.navigator(),
		Fullscreen:   fullscreen,
		PollInterval: e.cfg.PollInterval,
		Server:       e.client.BaseURL(),
		Logger:       e.log,
	})
	p := tea.NewProgram(model.AsTeaModel(), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
