// Package api is the HTTP client for the whiteboard image store.
//
// The store keeps per-session soft deletes keyed by a session cookie, so a
// Client holds a cookie jar for its whole life and every call shares it.
package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"boardview/internal/gallery"
	"boardview/internal/jsonutil"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/net/publicsuffix"
)

const (
	// DefaultDeletePath is the server's delete route; {id} is replaced with
	// the path-escaped public_id.
	DefaultDeletePath = "/api/delete/{id}"
	// DefaultTimeout bounds a single call.
	DefaultTimeout = 30 * time.Second

	listPath        = "/api/images"
	resolvePath     = "/api/images/{id}"
	uploadPath      = "/api/upload"
	downloadZipPath = "/api/download"
	downloadPDFPath = "/api/download-pdf"

	// maxBodyBytes caps bodies read into memory (listings, errors, one image).
	maxBodyBytes = 64 << 20

	requestIDHeader = "X-Request-ID"
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	DeletePath string
	Tracer     oteltrace.Tracer
	Logger     logr.Logger
	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// Client talks to one image store.
type Client struct {
	base       *url.URL
	http       *http.Client
	deletePath string
	tracer     oteltrace.Tracer
	log        logr.Logger
}

// Ensure Client satisfies the controller's API.
var _ gallery.API = (*Client)(nil)

// New creates a client for the store at opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", opts.BaseURL)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deletePath := opts.DeletePath
	if deletePath == "" {
		deletePath = DefaultDeletePath
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("boardview/api")
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Client{
		base:       base,
		http:       &http.Client{Jar: jar, Timeout: timeout, Transport: opts.Transport},
		deletePath: deletePath,
		tracer:     tracer,
		log:        log.WithName("api"),
	}, nil
}

// BaseURL returns the store's base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// ListImages fetches the ordered image list.
func (c *Client) ListImages(ctx context.Context) ([]gallery.ImageRecord, error) {
	status, body, err := c.send(ctx, "list", http.MethodGet, c.endpoint(listPath), nil, "")
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, statusError("list", status, body)
	}
	images, err := jsonutil.UnmarshalArrayAllowEmpty[gallery.ImageRecord](body, "decode image list")
	if err != nil {
		return nil, &gallery.NetworkError{Op: "list", Status: status, Err: err}
	}
	c.log.V(1).Info("listed images", "count", len(images))
	return images, nil
}

// DeleteImage deletes the image with the given public_id for this session.
func (c *Client) DeleteImage(ctx context.Context, id string) error {
	status, body, err := c.send(ctx, "delete", http.MethodDelete, c.idEndpoint(c.deletePath, id), nil, "")
	if err != nil {
		return err
	}
	if !ok(status) {
		return statusError("delete", status, body)
	}
	return nil
}

// ResolveURL asks the server for the canonical URL of an image.
func (c *Client) ResolveURL(ctx context.Context, id string) (string, error) {
	status, body, err := c.send(ctx, "resolve", http.MethodGet, c.idEndpoint(resolvePath, id), nil, "")
	if err != nil {
		return "", err
	}
	if !ok(status) {
		return "", statusError("resolve", status, body)
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := jsonutil.UnmarshalWithContext(body, &out, "decode resolve response"); err != nil {
		return "", &gallery.NetworkError{Op: "resolve", Status: status, Err: err}
	}
	return out.URL, nil
}

// FetchImage downloads the bytes behind an image URL. Relative URLs are
// resolved against the store.
func (c *Client) FetchImage(ctx context.Context, rawURL string) ([]byte, error) {
	target, err := c.base.Parse(rawURL)
	if err != nil {
		return nil, &gallery.NetworkError{Op: "image", Err: err}
	}
	status, body, err := c.send(ctx, "image", http.MethodGet, target.String(), nil, "")
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, &gallery.NetworkError{Op: "image", Status: status}
	}
	return body, nil
}

// DownloadURL returns the bulk download endpoint for kind.
func (c *Client) DownloadURL(kind gallery.DownloadKind) string {
	if kind == gallery.DownloadPDF {
		return c.endpoint(downloadPDFPath)
	}
	return c.endpoint(downloadZipPath)
}

// Stream performs a GET and hands back the open response body for large
// downloads. The caller closes it. filename is taken from
// Content-Disposition when present.
func (c *Client) Stream(ctx context.Context, rawURL string) (body io.ReadCloser, filename string, err error) {
	ctx, span := c.startSpan(ctx, "download", http.MethodGet, rawURL)
	defer func() {
		endSpan(span, err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", &gallery.NetworkError{Op: "download", Err: err}
	}
	c.stamp(req, span)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", &gallery.NetworkError{Op: "download", Err: err}
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if !ok(resp.StatusCode) {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		return nil, "", statusError("download", resp.StatusCode, b)
	}
	return resp.Body, dispositionFilename(resp.Header.Get("Content-Disposition")), nil
}

// send performs one request and reads the whole response body.
func (c *Client) send(ctx context.Context, op, method, target string, body io.Reader, contentType string) (status int, respBody []byte, err error) {
	ctx, span := c.startSpan(ctx, op, method, target)
	defer func() {
		endSpan(span, err)
	}()

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, nil, &gallery.NetworkError{Op: op, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	c.stamp(req, span)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error(err, "request failed", "op", op, "method", method)
		return 0, nil, &gallery.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, &gallery.NetworkError{Op: op, Status: resp.StatusCode, Err: err}
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if !ok(resp.StatusCode) {
		span.SetStatus(codes.Error, resp.Status)
	}
	c.log.V(1).Info("request done", "op", op, "method", method, "status", resp.StatusCode, "elapsed", time.Since(start).String())
	return resp.StatusCode, respBody, nil
}

func (c *Client) startSpan(ctx context.Context, op, method, target string) (context.Context, oteltrace.Span) {
	return c.tracer.Start(ctx, "boardview."+op,
		oteltrace.WithSpanKind(oteltrace.SpanKindClient),
		oteltrace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", target),
			attribute.String("boardview.op", op),
		),
	)
}

// stamp tags the request with a fresh request ID shared with the span.
func (c *Client) stamp(req *http.Request, span oteltrace.Span) {
	id := uuid.NewString()
	req.Header.Set(requestIDHeader, id)
	span.SetAttributes(attribute.String("boardview.request_id", id))
}

func endSpan(span oteltrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (c *Client) endpoint(p string) string {
	return c.base.String() + p
}

func (c *Client) idEndpoint(template, id string) string {
	return c.base.String() + strings.ReplaceAll(template, "{id}", url.PathEscape(id))
}

func ok(status int) bool {
	return status >= 200 && status < 300
}

// statusError builds a NetworkError from a non-success response, keeping
// the server's {"error": ...} message when there is one.
func statusError(op string, status int, body []byte) error {
	return &gallery.NetworkError{Op: op, Status: status, Message: jsonutil.ErrorMessage(body)}
}

func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}
