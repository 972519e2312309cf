// Package obsidian implements the Obsidian-flavored Markdown dialect:
// YAML front matter, [[wiki]] links, ![[embeds]], block references, and
// the load/save adapter over the cognitive object model.
package obsidian

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/starford/hugin/internal/adapter"
	"github.com/starford/hugin/internal/apperr"
	"github.com/starford/hugin/internal/cognitive"
)

// Adapter is the Obsidian dialect adapter. Stateless; one instance
// serves arbitrarily many concurrent loads.
type Adapter struct{}

var _ adapter.Adapter = (*Adapter)(nil)

// New returns the Obsidian adapter.
func New() *Adapter { return &Adapter{} }

// Extensions claims Markdown files.
func (a *Adapter) Extensions() []string { return []string{"md", "markdown"} }

// Load decodes data as UTF-8 Markdown and builds a fresh object:
// title/content/type/created plus front-matter extras as properties,
// tags and aliases as sets, wiki targets as outbound links, and one
// text-file source fingerprinting the raw bytes.
func (a *Adapter) Load(path string, data []byte) (*cognitive.Object, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%s: %w", path, apperr.ErrDecode)
	}

	note := Parse(string(data))
	obj := cognitive.New()

	if note.Meta != nil {
		for k, v := range note.Meta.Extra {
			obj.SetProperty(k, cognitive.FromAny(v))
		}
		if note.Meta.Type != "" {
			obj.SetProperty("type", cognitive.String(note.Meta.Type))
		}
		if note.Meta.Created != "" {
			obj.SetProperty("created", cognitive.DateTime(note.Meta.Created))
		}
		for _, al := range note.Meta.Aliases {
			obj.AddAlias(al)
		}
	}

	// Structural fields win over same-named front-matter extras.
	obj.SetProperty("title", cognitive.String(note.Title))
	obj.SetProperty("content", cognitive.String(note.Body))

	for _, tag := range note.Tags {
		obj.AddTag(tag)
	}
	for _, target := range note.Links {
		obj.AddLink(cognitive.ObjectID(target))
	}

	obj.AddSource(cognitive.TextFileSource{
		Path:     path,
		Hash:     cognitive.Fingerprint(data),
		Modified: time.Now().UnixMilli(),
	})
	return obj, nil
}

// Save reconstructs Markdown bytes: a front-matter block when any
// metadata exists, a heading from the title, then the content with a
// leading duplicate heading stripped. Round-tripping preserves title,
// type, tags, aliases, and body text, not exact bytes.
func (a *Adapter) Save(obj *cognitive.Object) ([]byte, error) {
	title := obj.StringProperty("title")
	if title == "" {
		return nil, fmt.Errorf("title: %w", apperr.ErrMissingAttribute)
	}

	fm := &FrontMatter{
		Tags:    obj.Tags(),
		Aliases: obj.Aliases(),
		Type:    obj.StringProperty("type"),
	}
	if v, ok := obj.Property("created"); ok {
		if d, ok := v.AsDateTime(); ok {
			fm.Created = d
		} else if s, ok := v.AsString(); ok {
			fm.Created = s
		}
	}
	for k, v := range obj.Properties() {
		switch k {
		case "title", "content", "type", "created":
			continue
		}
		if fm.Extra == nil {
			fm.Extra = make(map[string]any)
		}
		fm.Extra[k] = v.Interface()
	}

	var b strings.Builder
	if len(fm.Tags) > 0 || len(fm.Aliases) > 0 || fm.Type != "" || fm.Created != "" || len(fm.Extra) > 0 {
		enc, err := fm.encode()
		if err != nil {
			return nil, fmt.Errorf("encode front matter: %w", err)
		}
		b.WriteString(fmDelim + "\n")
		b.WriteString(enc)
		b.WriteString(fmDelim + "\n\n")
	}

	b.WriteString("# " + title + "\n\n")
	b.WriteString(stripLeadingHeading(obj.StringProperty("content"), title))
	return []byte(b.String()), nil
}

// ExtractLinks reports the links written in the object's content
// property: wiki-family links, embeds, and external links.
func (a *Adapter) ExtractLinks(obj *cognitive.Object) []adapter.Link {
	content := obj.StringProperty("content")
	if content == "" {
		return nil
	}
	return extractAllLinks(content)
}

// stripLeadingHeading drops a leading heading whose text equals title,
// along with the blank lines around it, so Save does not stack a second
// copy above it.
func stripLeadingHeading(content, title string) string {
	rest := strings.TrimLeft(content, "\r\n")
	line := rest
	if i := strings.Index(rest, "\n"); i >= 0 {
		line = rest[:i]
	}
	m := headingRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil || strings.TrimSpace(m[2]) != title {
		return content
	}
	rest = rest[len(line):]
	return strings.TrimLeft(rest, "\r\n")
}
