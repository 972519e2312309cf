package obsidian

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// FrontMatter is the typed view of the YAML block between the leading
// --- delimiters: four well-known keys plus an open bag of extras.
type FrontMatter struct {
	Tags    []string       `yaml:"tags,omitempty"`
	Aliases []string       `yaml:"aliases,omitempty"`
	Type    string         `yaml:"type,omitempty"`
	Created string         `yaml:"created,omitempty"`
	Extra   map[string]any `yaml:",inline"`
}

const fmDelim = "---"

// parseFrontMatter splits content into front matter and body. When the
// content does not start with a delimiter line, has no closing
// delimiter, or the YAML between them fails to decode, it returns
// (nil, content) with the input untouched: a bad metadata block must
// never cost the caller the document text.
func parseFrontMatter(content string) (*FrontMatter, string) {
	if !strings.HasPrefix(content, fmDelim+"\n") && !strings.HasPrefix(content, fmDelim+"\r\n") {
		return nil, content
	}

	rest := content[len(fmDelim):]
	idx := strings.Index(rest, "\n"+fmDelim)
	if idx < 0 {
		return nil, content
	}

	block := rest[:idx]
	body := strings.TrimLeft(rest[idx+1+len(fmDelim):], "\r\n")

	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return nil, content
	}
	return &fm, body
}

// encode renders the front matter as YAML, without delimiters.
func (fm *FrontMatter) encode() (string, error) {
	out, err := yaml.Marshal(fm)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
