package handlers

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/bloghub/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
)

const (
	maxImageBytes      = 10 << 20
	maxMultipartMemory = 16 << 20
	formFieldImage     = "img"
)

// UploadHandler accepts image uploads and serves stored images back.
type UploadHandler struct {
	mediaService *services.MediaService
}

// NewUploadHandler constructs a handler with the provided service.
func NewUploadHandler(mediaService *services.MediaService) *UploadHandler {
	return &UploadHandler{mediaService: mediaService}
}

// UploadImage stores a multipart image upload and returns the generated
// filename. Posts reference that filename in their photo field.
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldImage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusBadRequest, "only image files are allowed")
		return
	}

	data, err := readFileLimited(file, maxImageBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filename, err := h.mediaService.Save(r.Context(), header.Filename, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "image uploaded successfully",
		"filename": filename,
	})
}

// ServeImage streams a stored image back to the client.
func (h *UploadHandler) ServeImage(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	reader, err := h.mediaService.Open(r.Context(), filename)
	if err != nil {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	defer reader.Close()

	// Object storage reads are lazy; peek so a missing key becomes a
	// 404 instead of a broken 200.
	buffered := bufio.NewReader(reader)
	head, err := buffered.Peek(512)
	if err != nil && err != io.EOF {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}

	contentType := mime.TypeByExtension(path.Ext(filename))
	if contentType == "" {
		contentType = http.DetectContentType(head)
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = io.Copy(w, buffered)
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
