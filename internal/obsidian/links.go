package obsidian

import (
	"regexp"
	"strings"

	"github.com/starford/hugin/internal/adapter"
)

var (
	embedRe    = regexp.MustCompile(`!\[\[(.*?)\]\]`)
	blockRefRe = regexp.MustCompile(`\[\[([^\[\]#|]+)#\^([A-Za-z0-9-]+)\]\]`)
	wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)
	externalRe = regexp.MustCompile(`\[([^\]]*)\]\((https?://[^\s)]+)\)`)
	blockIDRe  = regexp.MustCompile(`\^([A-Za-z0-9-]+)`)
)

// BlockRef records a bare ^id block marker and the 1-based line it sits
// on. Markers are addressable anchors, not links.
type BlockRef struct {
	ID   string
	Line int
}

// ExtractWikiLinks returns the [[...]]-family links in content, line by
// line. Embeds are stripped from each line first so their inner [[...]]
// is not double-counted; a [[note#^id]] block reference wins over the
// generic wiki pattern for the same span.
func ExtractWikiLinks(content string) []adapter.Link {
	var out []adapter.Link
	for i, line := range strings.Split(content, "\n") {
		lineNo := i + 1
		clean := embedRe.ReplaceAllString(line, "")

		for _, m := range blockRefRe.FindAllStringSubmatch(clean, -1) {
			note := strings.TrimSpace(m[1])
			if note == "" {
				continue
			}
			out = append(out, adapter.Link{
				Target:  note,
				Kind:    adapter.KindBlockRef,
				Display: note + "#^" + m[2],
				Line:    lineNo,
			})
		}
		clean = blockRefRe.ReplaceAllString(clean, "")

		for _, m := range wikilinkRe.FindAllStringSubmatch(clean, -1) {
			target, display := m[1], ""
			if p := strings.Index(target, "|"); p >= 0 {
				display = strings.TrimSpace(target[p+1:])
				target = target[:p]
			}
			// Strip a heading or block anchor from the target.
			if h := strings.Index(target, "#"); h >= 0 {
				target = target[:h]
			}
			target = strings.TrimSpace(target)
			if target == "" {
				continue
			}
			out = append(out, adapter.Link{
				Target:  target,
				Kind:    adapter.KindWikiLink,
				Display: display,
				Line:    lineNo,
			})
		}
	}
	return out
}

// ExtractEmbeds returns ![[...]] embeds in content.
func ExtractEmbeds(content string) []adapter.Link {
	var out []adapter.Link
	for i, line := range strings.Split(content, "\n") {
		for _, m := range embedRe.FindAllStringSubmatch(line, -1) {
			target := strings.TrimSpace(m[1])
			if target == "" {
				continue
			}
			out = append(out, adapter.Link{
				Target: target,
				Kind:   adapter.KindEmbed,
				Line:   i + 1,
			})
		}
	}
	return out
}

// ExtractExternalLinks returns [text](http...) links in content.
func ExtractExternalLinks(content string) []adapter.Link {
	var out []adapter.Link
	for i, line := range strings.Split(content, "\n") {
		for _, m := range externalRe.FindAllStringSubmatch(line, -1) {
			out = append(out, adapter.Link{
				Target:  m[2],
				Kind:    adapter.KindExternal,
				Display: strings.TrimSpace(m[1]),
				Line:    i + 1,
			})
		}
	}
	return out
}

// ExtractBlockRefs returns the bare ^id markers in content. Link and
// embed spans are removed first so ids inside [[note#^id]] are not
// reported as markers.
func ExtractBlockRefs(content string) []BlockRef {
	var out []BlockRef
	for i, line := range strings.Split(content, "\n") {
		clean := embedRe.ReplaceAllString(line, "")
		clean = blockRefRe.ReplaceAllString(clean, "")
		clean = wikilinkRe.ReplaceAllString(clean, "")

		for _, m := range blockIDRe.FindAllStringSubmatch(clean, -1) {
			out = append(out, BlockRef{ID: m[1], Line: i + 1})
		}
	}
	return out
}

// extractAllLinks is the combined relationship set an adapter reports:
// the wiki-link family, embeds, and external links.
func extractAllLinks(content string) []adapter.Link {
	links := ExtractWikiLinks(content)
	links = append(links, ExtractEmbeds(content)...)
	links = append(links, ExtractExternalLinks(content)...)
	return links
}
