package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"boardview/internal/fsutil"
	"boardview/internal/gallery"
	"boardview/internal/jsonutil"
)

// UploadResult is the store's answer to a successful upload.
type UploadResult struct {
	Message  string `json:"message"`
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// Upload sends the file at location as the multipart field "file".
func (c *Client) Upload(ctx context.Context, location string) error {
	_, err := c.UploadFile(ctx, location)
	return err
}

// UploadFile is Upload returning the store's result. A file that cannot be
// opened is a *gallery.ValidationError; nothing is sent in that case.
func (c *Client) UploadFile(ctx context.Context, location string) (UploadResult, error) {
	if exists, err := fsutil.Exists(ctx, location); err == nil && !exists {
		return UploadResult{}, &gallery.ValidationError{Reason: fmt.Sprintf("No such file: %s", location)}
	}
	src, err := fsutil.Open(ctx, location)
	if err != nil {
		return UploadResult{}, &gallery.ValidationError{Reason: fmt.Sprintf("Cannot read %s: %v", location, err)}
	}
	defer src.Close()

	name := fsutil.Base(location)
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeFilePart(mw, name, src))
	}()

	status, body, err := c.send(ctx, "upload", http.MethodPost, c.endpoint(uploadPath), pr, mw.FormDataContentType())
	// Unblock the writer goroutine if the request ended early.
	pr.Close()
	if err != nil {
		return UploadResult{}, err
	}
	if !ok(status) {
		netErr := &gallery.NetworkError{Op: "upload", Status: status, Message: jsonutil.ErrorMessage(body)}
		if netErr.Message == "" {
			netErr.Message = "Upload failed"
		}
		return UploadResult{}, netErr
	}

	var res UploadResult
	if len(body) > 0 {
		// The body is informational; a success status is what counts.
		if err := jsonutil.UnmarshalWithContext(body, &res, "decode upload response"); err != nil {
			c.log.V(1).Info("ignoring undecodable upload response", "error", err.Error())
		}
	}
	c.log.Info("upload accepted", "file", name, "public_id", res.PublicID)
	return res, nil
}

func writeFilePart(mw *multipart.Writer, name string, src io.Reader) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(name)))
	h.Set("Content-Type", contentTypeFor(name))
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	return mw.Close()
}

func contentTypeFor(name string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return "application/octet-stream"
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
