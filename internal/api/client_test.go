package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"boardview/internal/apitest"
	"boardview/internal/gallery"
	"boardview/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newClient(t *testing.T, srv *apitest.Server) *Client {
	t.Helper()
	c, err := New(Options{BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New(Options{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
	_, err = New(Options{BaseURL: "://nope"})
	assert.Error(t, err)
}

func TestListImages(t *testing.T) {
	srv := apitest.New("a.png", "b.png")
	defer srv.Close()
	c := newClient(t, srv)

	images, err := c.ListImages(context.Background())
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "whiteboard_captures/a.png", images[0].ID)
	assert.Equal(t, "b.png", images[1].Filename)
	assert.NotZero(t, images[0].Timestamp)
}

func TestListImages_Empty(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	images, err := newClient(t, srv).ListImages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestListImages_ServerError(t *testing.T) {
	srv := apitest.New("a.png")
	defer srv.Close()
	srv.Fail("list", http.StatusInternalServerError, "cloudinary unavailable")

	_, err := newClient(t, srv).ListImages(context.Background())
	var netErr *gallery.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusInternalServerError, netErr.Status)
	assert.Equal(t, "cloudinary unavailable", netErr.Message)
}

func TestListImages_Unreachable(t *testing.T) {
	srv := apitest.New()
	url := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)
	_, err = c.ListImages(context.Background())
	var netErr *gallery.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Zero(t, netErr.Status)
	assert.Error(t, errors.Unwrap(err))
}

func TestDeleteImage_PersistsForSession(t *testing.T) {
	srv := apitest.New("a.png", "b.png")
	defer srv.Close()
	c := newClient(t, srv)
	ctx := context.Background()

	_, err := c.ListImages(ctx)
	require.NoError(t, err)
	require.NoError(t, c.DeleteImage(ctx, "whiteboard_captures/a.png"))

	images, err := c.ListImages(ctx)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "b.png", images[0].Filename)

	// A different session still sees both.
	other, err := newClient(t, srv).ListImages(ctx)
	require.NoError(t, err)
	assert.Len(t, other, 2)
}

func TestDeleteImage_Failure(t *testing.T) {
	srv := apitest.New("a.png")
	defer srv.Close()
	srv.Fail("delete", http.StatusUnauthorized, "No session")

	err := newClient(t, srv).DeleteImage(context.Background(), "whiteboard_captures/a.png")
	var netErr *gallery.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "No session", netErr.Message)
}

func TestResolveURL(t *testing.T) {
	srv := apitest.New("a.png")
	defer srv.Close()
	c := newClient(t, srv)

	u, err := c.ResolveURL(context.Background(), "whiteboard_captures/a.png")
	require.NoError(t, err)
	assert.Equal(t, "/img/a.png", u)

	_, err = c.ResolveURL(context.Background(), "whiteboard_captures/missing.png")
	assert.Error(t, err)
}

func TestFetchImage_ResolvesRelativeURL(t *testing.T) {
	srv := apitest.New("a.png")
	defer srv.Close()

	b, err := newClient(t, srv).FetchImage(context.Background(), "/img/a.png")
	require.NoError(t, err)
	assert.Equal(t, apitest.SamplePNG(4, 4), b)

	_, err = newClient(t, srv).FetchImage(context.Background(), "/img/missing.png")
	var netErr *gallery.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusNotFound, netErr.Status)
}

func TestUpload(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	c := newClient(t, srv)
	path := filepath.Join(t.TempDir(), "board.png")
	require.NoError(t, os.WriteFile(path, apitest.SamplePNG(2, 2), 0o644))

	res, err := c.UploadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Upload successful", res.Message)
	assert.Contains(t, res.PublicID, "board.png")

	uploads := srv.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, "board.png", uploads[0].Filename)
	assert.Equal(t, "image/png", uploads[0].ContentType)
	assert.Equal(t, len(apitest.SamplePNG(2, 2)), uploads[0].Size)

	images, err := c.ListImages(context.Background())
	require.NoError(t, err)
	assert.Len(t, images, 1)
}

func TestUpload_MissingFileNeverCallsServer(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	missing := filepath.Join(t.TempDir(), "missing.png")
	err := newClient(t, srv).Upload(context.Background(), missing)
	assert.ErrorIs(t, err, gallery.ErrValidation)
	assert.ErrorContains(t, err, "No such file: "+missing)
	assert.Zero(t, srv.Requests("upload"))
}

func TestUpload_ServerErrorMessage(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	srv.Fail("upload", http.StatusBadRequest, "No selected file")
	path := filepath.Join(t.TempDir(), "board.png")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	err := newClient(t, srv).Upload(context.Background(), path)
	var netErr *gallery.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "No selected file", netErr.Message)
}

func TestDownloadURLAndStream(t *testing.T) {
	srv := apitest.New("a.png")
	defer srv.Close()
	c := newClient(t, srv)

	assert.Equal(t, srv.URL+"/api/download", c.DownloadURL(gallery.DownloadZip))
	assert.Equal(t, srv.URL+"/api/download-pdf", c.DownloadURL(gallery.DownloadPDF))

	body, name, err := c.Stream(context.Background(), c.DownloadURL(gallery.DownloadPDF))
	require.NoError(t, err)
	defer body.Close()
	assert.Equal(t, "whiteboard_images.pdf", name)
	b, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "a.png")
}

func TestCustomDeletePath(t *testing.T) {
	c, err := New(Options{BaseURL: "http://store.local/", DeletePath: "/api/{id}"})
	require.NoError(t, err)
	assert.Equal(t, "http://store.local/api/whiteboard_captures%2Fa.png", c.idEndpoint(c.deletePath, "whiteboard_captures/a.png"))
}

func TestSpansPerCall(t *testing.T) {
	srv := apitest.New("a.png")
	defer srv.Close()
	srv.Fail("delete", http.StatusInternalServerError, "boom")
	rec := tracetest.NewSpanRecorder()
	tp := telemetry.FromSDK(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	c, err := New(Options{BaseURL: srv.URL, Tracer: tp.Tracer()})
	require.NoError(t, err)

	_, err = c.ListImages(context.Background())
	require.NoError(t, err)
	_ = c.DeleteImage(context.Background(), "whiteboard_captures/a.png")

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "boardview.list", ended[0].Name())
	assert.Equal(t, "boardview.delete", ended[1].Name())
	assert.Equal(t, codes.Unset, ended[0].Status().Code)
}

func TestDispositionFilename(t *testing.T) {
	assert.Equal(t, "whiteboard_images.zip", dispositionFilename(`attachment; filename="whiteboard_images.zip"`))
	assert.Equal(t, "", dispositionFilename(""))
}
