package api

import (
	"github.com/starford/hugin/internal/graph"
	"github.com/starford/hugin/internal/vault"
	"github.com/starford/hugin/internal/vaultservice"
)

// OpenVaultRequest is the request body for opening a vault.
type OpenVaultRequest struct {
	Path string `json:"path" example:"/home/me/vault" validate:"required"`
}

// SaveFileRequest is the request body for writing a vault file.
type SaveFileRequest struct {
	Content string `json:"content" example:"# Hello\nWorld" validate:"required"`
}

// FileContent is the full file response type (aliased from the domain layer).
type FileContent = vaultservice.FileContent

// TreeNode is one entry of the vault file tree (aliased from the domain layer).
type TreeNode = vaultservice.TreeNode

// VaultStats is the vault statistics response (aliased from the domain layer).
type VaultStats = vaultservice.VaultStats

// SyncStats is the JSON shape of one sync run.
type SyncStats struct {
	Files      int   `json:"files" example:"42" validate:"required"`
	Nodes      int   `json:"nodes" example:"42" validate:"required"`
	Edges      int   `json:"edges" example:"97" validate:"required"`
	Skipped    int   `json:"skipped" example:"0" validate:"required"`
	DurationMS int64 `json:"duration_ms" example:"12" validate:"required"`
}

func syncStatsFrom(s vault.Stats) SyncStats {
	return SyncStats{
		Files:      s.Files,
		Nodes:      s.Nodes,
		Edges:      s.Edges,
		Skipped:    s.Skipped,
		DurationMS: s.Duration.Milliseconds(),
	}
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []graph.SearchResult `json:"results" validate:"required"`
}

// GraphResponse wraps the knowledge graph projection.
type GraphResponse struct {
	Nodes []graph.Node `json:"nodes" validate:"required"`
	Edges []graph.Edge `json:"edges" validate:"required"`
}

// AssetUploadResponse is returned after a successful asset upload.
type AssetUploadResponse struct {
	Filename string `json:"filename" example:"image.png" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	URL      string `json:"url" example:"/assets/image.png" validate:"required"`
}
