// Package config resolves boardview's settings: defaults first, then
// environment variables. Command-line flags are applied on top by cmd/boardview.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by Load.
const (
	ServerURLEnv    = "BOARDVIEW_SERVER_URL"
	PollIntervalEnv = "BOARDVIEW_POLL_INTERVAL"
	TimeoutEnv      = "BOARDVIEW_TIMEOUT"
	DeletePathEnv   = "BOARDVIEW_DELETE_PATH"
	DownloadDirEnv  = "BOARDVIEW_DOWNLOAD_DIR"
	OpenBrowserEnv  = "BOARDVIEW_OPEN_BROWSER"
	LogFileEnv      = "BOARDVIEW_LOG_FILE"
	DebugEnv        = "BOARDVIEW_DEBUG"
	ServiceNameEnv  = "OTEL_SERVICE_NAME"
	OTLPEndpointEnv = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

const (
	DefaultServerURL    = "http://localhost:5000"
	DefaultPollInterval = 55 * time.Second
	DefaultTimeout      = 30 * time.Second
	DefaultDeletePath   = "/api/delete/{id}"
	DefaultServiceName  = "boardview"
)

// Config holds everything the binary needs to start.
type Config struct {
	ServerURL    string
	PollInterval time.Duration
	Timeout      time.Duration
	// DeletePath is the delete route template; {id} is the escaped public_id.
	DeletePath string
	// DownloadDir receives saved zip/pdf downloads.
	DownloadDir string
	// OpenBrowser hands downloads to the system browser instead of saving them.
	OpenBrowser bool
	// LogFile is where logs go; empty discards them.
	LogFile      string
	Debug        bool
	ServiceName  string
	OTLPEndpoint string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		ServerURL:    DefaultServerURL,
		PollInterval: DefaultPollInterval,
		Timeout:      DefaultTimeout,
		DeletePath:   DefaultDeletePath,
		DownloadDir:  ".",
		ServiceName:  DefaultServiceName,
	}
}

// Load overlays the environment onto the defaults. getenv is usually
// os.Getenv; nil means os.Getenv.
func Load(getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Default()
	if v := getenv(ServerURLEnv); v != "" {
		cfg.ServerURL = v
	}
	if v := getenv(DeletePathEnv); v != "" {
		cfg.DeletePath = v
	}
	if v := getenv(DownloadDirEnv); v != "" {
		cfg.DownloadDir = v
	}
	if v := getenv(LogFileEnv); v != "" {
		cfg.LogFile = v
	}
	if v := getenv(ServiceNameEnv); v != "" {
		cfg.ServiceName = v
	}
	cfg.OTLPEndpoint = getenv(OTLPEndpointEnv)

	var err error
	if cfg.PollInterval, err = duration(getenv, PollIntervalEnv, cfg.PollInterval); err != nil {
		return cfg, err
	}
	if cfg.Timeout, err = duration(getenv, TimeoutEnv, cfg.Timeout); err != nil {
		return cfg, err
	}
	if cfg.OpenBrowser, err = boolean(getenv, OpenBrowserEnv, cfg.OpenBrowser); err != nil {
		return cfg, err
	}
	if cfg.Debug, err = boolean(getenv, DebugEnv, cfg.Debug); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("server url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server url %q: want http(s)://host", c.ServerURL)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if !strings.Contains(c.DeletePath, "{id}") {
		return fmt.Errorf("delete path %q has no {id} placeholder", c.DeletePath)
	}
	return nil
}

// duration accepts Go durations ("55s", "2m") and bare seconds ("55").
func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func boolean(getenv func(string) string, key string, def bool) (bool, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
