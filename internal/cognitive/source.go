package cognitive

import (
	"crypto/sha256"
	"encoding/hex"
)

// Source describes one physical or virtual representation backing an
// object. An object may have zero, one, or many.
type Source interface {
	isSource()
}

// TextFileSource is a text file on disk, identified by vault-relative
// path. Hash is a content fingerprint, Modified is Unix millis.
type TextFileSource struct {
	Path     string
	Hash     string
	Modified int64
}

// BinaryFileSource is a binary file on disk.
type BinaryFileSource struct {
	Path     string
	Hash     string
	MIME     string
	Size     int64
	Modified int64
}

// VirtualSource marks content computed by a rule rather than stored.
type VirtualSource struct {
	Rule       string
	ComputedAt int64
}

func (TextFileSource) isSource()   {}
func (BinaryFileSource) isSource() {}
func (VirtualSource) isSource()    {}

// Fingerprint returns a deterministic content digest in hex. Used only
// for change detection, never for identity or security.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
