package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/starford/hugin/internal/vaultservice"
)

const (
	assetDir       = "attachments"
	maxUploadBytes = 50 << 20 // 50 MB
)

// AssetHandler serves and accepts binary vault assets. Assets live under
// the attachments/ directory of the open vault and go through the vault
// service, so the storage layer's traversal checks and atomic writes apply.
type AssetHandler struct {
	svc *vaultservice.Service
}

// NewAssetHandler creates a handler backed by the vault service.
func NewAssetHandler(svc *vaultservice.Service) *AssetHandler {
	return &AssetHandler{svc: svc}
}

// safeAssetName validates that the filename is a plain name (no path
// separators, no traversal).
func safeAssetName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	return cleaned, nil
}

// ServeFile handles GET /assets/{filename}.
func (h *AssetHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name, err := safeAssetName(chi.URLParam(r, "filename"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	fc, err := h.svc.ReadFile(path.Join(assetDir, name))
	if err != nil {
		writeServiceError(w, "serve asset", err)
		return
	}
	// ServeContent picks the content type from the name and handles ranges.
	http.ServeContent(w, r, name, time.Time{}, bytes.NewReader([]byte(fc.Content)))
}

// Upload handles POST /api/assets (multipart/form-data, field "file").
func (h *AssetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	name, err := safeAssetName(header.Filename)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
		return
	}

	if _, err := h.svc.SaveFile(path.Join(assetDir, name), data, ""); err != nil {
		writeServiceError(w, "upload asset", err)
		return
	}

	writeJSON(w, http.StatusCreated, AssetUploadResponse{
		Filename: name,
		Size:     int64(len(data)),
		URL:      "/assets/" + name,
	})
}
