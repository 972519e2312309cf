// Package adapter defines the pluggable bridge between raw note bytes
// and cognitive objects, plus the extension-dispatch registry.
package adapter

import "github.com/starford/hugin/internal/cognitive"

// LinkKind classifies how a link was written in the source text. It
// doubles as the provenance tag on derived graph edges.
type LinkKind string

const (
	KindWikiLink LinkKind = "wikilink"
	KindEmbed    LinkKind = "embed"
	KindBlockRef LinkKind = "blockref"
	KindExternal LinkKind = "external"
)

// Link is a transient extracted relationship. Target is the raw written
// target (a note name or URL), not a resolved identity. Line is 1-based;
// 0 means unknown.
type Link struct {
	Target  string
	Kind    LinkKind
	Display string
	Line    int
}

// Adapter converts between a note dialect and cognitive objects.
// Implementations must be stateless: Load, Save, and ExtractLinks are
// invoked concurrently without synchronization.
type Adapter interface {
	// Extensions lists the file extensions this adapter claims, without
	// the leading dot. Matching is case-insensitive.
	Extensions() []string

	// Load parses raw bytes into a fresh object. Fails with
	// apperr.ErrDecode when the bytes are not valid text for a textual
	// dialect.
	Load(path string, data []byte) (*cognitive.Object, error)

	// Save serializes the object back to bytes. Fails with
	// apperr.ErrMissingAttribute when a required attribute (such as the
	// title) is absent; otherwise best-effort reconstruction.
	Save(obj *cognitive.Object) ([]byte, error)

	// ExtractLinks returns the relationships written in the object's
	// content. Pure: reads only the object, never disk.
	ExtractLinks(obj *cognitive.Object) []Link
}
