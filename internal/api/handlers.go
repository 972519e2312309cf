package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/hugin/internal/apperr"
	"github.com/starford/hugin/internal/graph"
	"github.com/starford/hugin/internal/vaultservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *vaultservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *vaultservice.Service) *Handler {
	return &Handler{svc: svc}
}

// filePath extracts the vault-relative path from the URL (everything after
// /api/files/). Supports encoded slashes from OpenAPI clients
// (e.g. topics%2Fnote.md).
func filePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// writeServiceError maps sentinel errors onto status codes. Everything
// unexpected is logged and hidden behind a 500.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNoVault):
		writeJSON(w, http.StatusConflict, errorBody("no vault open"))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// OpenVault handles POST /api/vault/open.
//
//	@Summary		Open a vault directory and run a full sync
//	@Tags			vault
//	@Accept			json
//	@Produce		json
//	@Param			body	body		OpenVaultRequest	true	"Vault to open"
//	@Success		200		{object}	SyncStats
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/vault/open [post]
func (h *Handler) OpenVault(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req OpenVaultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	stats, err := h.svc.Open(req.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeJSON(w, http.StatusBadRequest, errorBody("vault directory does not exist"))
			return
		}
		writeServiceError(w, "open vault", err)
		return
	}
	writeJSON(w, http.StatusOK, syncStatsFrom(stats))
}

// CloseVault handles POST /api/vault/close.
//
//	@Summary		Close the open vault
//	@Tags			vault
//	@Success		204	"Vault closed"
//	@Security		BearerAuth
//	@Router			/vault/close [post]
func (h *Handler) CloseVault(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Close(); err != nil {
		writeServiceError(w, "close vault", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SyncVault handles POST /api/vault/sync.
//
//	@Summary		Rebuild the graph projection from the vault files
//	@Tags			vault
//	@Produce		json
//	@Success		200	{object}	SyncStats
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/vault/sync [post]
func (h *Handler) SyncVault(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Resync()
	if err != nil {
		writeServiceError(w, "sync vault", err)
		return
	}
	writeJSON(w, http.StatusOK, syncStatsFrom(stats))
}

// Tree handles GET /api/vault/tree.
//
//	@Summary		Get the vault file tree
//	@Tags			vault
//	@Produce		json
//	@Success		200	{object}	TreeNode
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/vault/tree [get]
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.svc.FileTree()
	if err != nil {
		writeServiceError(w, "vault tree", err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// Stats handles GET /api/vault/stats.
//
//	@Summary		Get vault statistics
//	@Tags			vault
//	@Produce		json
//	@Success		200	{object}	VaultStats
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/vault/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats()
	if err != nil {
		writeServiceError(w, "vault stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetFile handles GET /api/files/*.
//
//	@Summary		Read a vault file
//	@Tags			files
//	@Produce		json
//	@Param			path	path		string	true	"Vault-relative path"
//	@Success		200		{object}	FileContent
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files/{path} [get]
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	fc, err := h.svc.ReadFile(path)
	if err != nil {
		writeServiceError(w, "get file", err)
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

// SaveFile handles PUT /api/files/*.
//
//	@Summary		Write a vault file with optimistic concurrency
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			path		path		string			true	"Vault-relative path"
//	@Param			If-Match	header		string			false	"Content fingerprint for optimistic concurrency"
//	@Param			body		body		SaveFileRequest	true	"File content"
//	@Success		200			{object}	FileContent
//	@Failure		400			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files/{path} [put]
func (h *Handler) SaveFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req SaveFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	ifMatch := r.Header.Get("If-Match")
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch = strings.Trim(ifMatch, `"`)

	fc, err := h.svc.SaveFile(path, []byte(req.Content), ifMatch)
	if err != nil {
		writeServiceError(w, "save file", err)
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

// DeleteFile handles DELETE /api/files/*.
//
//	@Summary		Delete a vault file
//	@Tags			files
//	@Param			path	path	string	true	"Vault-relative path"
//	@Success		204		"File deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files/{path} [delete]
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteFile(path); err != nil {
		writeServiceError(w, "delete file", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across the projection
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(q, limit)
	if err != nil {
		writeServiceError(w, "search", err)
		return
	}
	if results == nil {
		results = []graph.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Graph handles GET /api/graph.
//
//	@Summary		Get the knowledge graph projection
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	GraphResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	nodes, edges, err := h.svc.GraphData()
	if err != nil {
		writeServiceError(w, "graph", err)
		return
	}
	if nodes == nil {
		nodes = []graph.Node{}
	}
	if edges == nil {
		edges = []graph.Edge{}
	}
	writeJSON(w, http.StatusOK, GraphResponse{Nodes: nodes, Edges: edges})
}
