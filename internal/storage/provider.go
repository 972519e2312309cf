// Package storage defines the vault file-system abstraction.
package storage

import "time"

// FileMeta describes one vault file as seen by List.
type FileMeta struct {
	Path      string // relative to the vault root, slash-separated
	Checksum  string
	Size      int64
	UpdatedAt time.Time
}

// Provider is the interface for vault file operations. Paths are relative to
// the vault root; hidden dot-entries are invisible through it.
type Provider interface {
	// List returns metadata for every file under dir (relative to vault root).
	List(dir string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}
