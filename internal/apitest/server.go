// Package apitest runs an in-process image store for tests. It mirrors the
// real store's routes and its per-session soft deletes.
package apitest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"boardview/internal/gallery"
	"boardview/internal/jsonutil"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Folder is the prefix the store puts in front of every public_id.
const Folder = "whiteboard_captures"

const sessionCookie = "session"

// Upload records one accepted upload.
type Upload struct {
	Filename    string
	ContentType string
	Size        int
}

// Server is a fake image store.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	images   []gallery.ImageRecord
	blobs    map[string][]byte // image path -> bytes
	deleted  map[string]map[string]bool
	failures map[string]failure
	uploads  []Upload
	requests map[string]int
}

type failure struct {
	status  int
	message string
}

// New starts a server pre-loaded with images named filenames.
func New(filenames ...string) *Server {
	s := &Server{
		blobs:    make(map[string][]byte),
		deleted:  make(map[string]map[string]bool),
		failures: make(map[string]failure),
		requests: make(map[string]int),
	}
	r := mux.NewRouter()
	r.UseEncodedPath()
	r.Use(s.session, s.count)
	r.HandleFunc("/api/images", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/api/images/{id}", s.handleResolve).Methods(http.MethodGet)
	r.HandleFunc("/api/delete/{id}", s.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/api/upload", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/api/download", s.handleZip).Methods(http.MethodGet)
	r.HandleFunc("/api/download-pdf", s.handlePDF).Methods(http.MethodGet)
	r.HandleFunc("/img/{name}", s.handleBlob).Methods(http.MethodGet)
	s.Server = httptest.NewServer(r)

	for _, name := range filenames {
		s.Add(name, SamplePNG(4, 4))
	}
	return s
}

// Add stores an image and appends it to the listing.
func (s *Server) Add(filename string, data []byte) gallery.ImageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(filename, data)
}

func (s *Server) addLocked(filename string, data []byte) gallery.ImageRecord {
	rec := gallery.ImageRecord{
		ID:        Folder + "/" + filename,
		URL:       "/img/" + url.PathEscape(filename),
		Filename:  filename,
		Timestamp: float64(time.Date(2025, 1, 1, 0, 0, len(s.images), 0, time.UTC).Unix()),
	}
	s.images = append(s.images, rec)
	s.blobs[filename] = data
	return rec
}

// AddBroken lists an image whose URL serves something that is not an image.
func (s *Server) AddBroken(filename string) gallery.ImageRecord {
	return s.Add(filename, []byte("not an image"))
}

// Fail makes every request for op ("list", "delete", "upload", "resolve",
// "download") answer status with {"error": message}. status 0 clears it.
func (s *Server) Fail(op string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, op)
		return
	}
	s.failures[op] = failure{status: status, message: message}
}

// Uploads returns the uploads accepted so far.
func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

// Requests returns how many requests hit op.
func (s *Server) Requests(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[op]
}

// session hands out a session cookie on first contact.
func (s *Server) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie(sessionCookie); err != nil {
			id := uuid.NewString()
			http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/"})
			r.AddCookie(&http.Cookie{Name: sessionCookie, Value: id})
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[opFor(r)]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func opFor(r *http.Request) string {
	p := r.URL.Path
	switch {
	case p == "/api/images":
		return "list"
	case strings.HasPrefix(p, "/api/images/"):
		return "resolve"
	case strings.HasPrefix(p, "/api/delete/"):
		return "delete"
	case p == "/api/upload":
		return "upload"
	case strings.HasPrefix(p, "/api/download"):
		return "download"
	default:
		return "image"
	}
}

func sessionID(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// failed writes the configured failure for op, if any.
func (s *Server) failed(w http.ResponseWriter, op string) bool {
	s.mu.Lock()
	f, ok := s.failures[op]
	s.mu.Unlock()
	if !ok {
		return false
	}
	writeJSON(w, f.status, map[string]string{"error": f.message})
	return true
}

// visible returns the listing for a session, oldest first.
func (s *Server) visible(session string) []gallery.ImageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gallery.ImageRecord, 0, len(s.images))
	for _, img := range s.images {
		if s.deleted[session][img.ID] {
			continue
		}
		out = append(out, img)
	}
	return out
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "list") {
		return
	}
	writeJSON(w, http.StatusOK, s.visible(sessionID(r)))
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "resolve") {
		return
	}
	id, err := url.PathUnescape(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	for _, img := range s.visible(sessionID(r)) {
		if img.ID == id {
			writeJSON(w, http.StatusOK, map[string]string{"url": img.URL})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not available"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "delete") {
		return
	}
	id, err := url.PathUnescape(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	session := sessionID(r)
	s.mu.Lock()
	if s.deleted[session] == nil {
		s.deleted[session] = make(map[string]bool)
	}
	s.deleted[session][id] = true
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "upload") {
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file part"})
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No selected file"})
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.mu.Lock()
	name := fmt.Sprintf("%d_%s", len(s.images)+1, header.Filename)
	rec := s.addLocked(name, data)
	s.uploads = append(s.uploads, Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        len(data),
	})
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Upload successful",
		"public_id": rec.ID,
		"url":       rec.URL,
	})
}

func (s *Server) handleZip(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "download") {
		return
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, img := range s.visible(sessionID(r)) {
		f, err := zw.Create(fmt.Sprintf("%03d_%s", i+1, img.Filename))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.mu.Lock()
		data := s.blobs[img.Filename]
		s.mu.Unlock()
		_, _ = f.Write(data)
	}
	_ = zw.Close()
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="whiteboard_images.zip"`)
	_, _ = w.Write(buf.Bytes())
}

// handlePDF returns a placeholder document naming each page's image.
func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "download") {
		return
	}
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	for _, img := range s.visible(sessionID(r)) {
		fmt.Fprintf(&b, "%% page %s\n", img.Filename)
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="whiteboard_images.pdf"`)
	_, _ = io.WriteString(w, b.String())
}

func (s *Server) handleBlob(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(mux.Vars(r)["name"])
	if err != nil {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	data, ok := s.blobs[name]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := jsonutil.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// SamplePNG encodes a w×h gradient.
func SamplePNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / max(w-1, 1)), G: uint8(y * 255 / max(h-1, 1)), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
