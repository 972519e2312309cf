package obsidian

import (
	"regexp"
	"strings"
)

var (
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	tagRe     = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
)

// Note is the structural parse of one document: title, body with front
// matter removed, deduplicated wiki-link targets and tags, and bare
// block markers.
type Note struct {
	Title  string
	Body   string
	Links  []string
	Tags   []string
	Blocks []BlockRef
	Meta   *FrontMatter
}

// Parse runs the structural parse. It never fails: malformed front
// matter degrades to a plain body (see parseFrontMatter).
func Parse(content string) *Note {
	fm, body := parseFrontMatter(content)
	return &Note{
		Title:  deriveTitle(body),
		Body:   body,
		Links:  uniqueWikiTargets(body),
		Tags:   collectTags(fm, body),
		Blocks: ExtractBlockRefs(body),
		Meta:   fm,
	}
}

// deriveTitle returns the first heading's text; failing that, the first
// non-empty line trimmed of leading #/whitespace; failing that,
// "Untitled".
func deriveTitle(body string) string {
	lines := strings.Split(body, "\n")
	for _, line := range lines {
		if m := headingRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			if title := strings.TrimSpace(m[2]); title != "" {
				return title
			}
		}
	}
	for _, line := range lines {
		if t := strings.TrimSpace(strings.TrimLeft(line, "# \t")); t != "" {
			return t
		}
	}
	return "Untitled"
}

// uniqueWikiTargets returns the deduplicated targets of the wiki-link
// family, in first-seen order. Targets arrive anchor-stripped and
// alias-free from ExtractWikiLinks, so [[A]], [[A|x]], and [[A#h]]
// collapse to one entry.
func uniqueWikiTargets(body string) []string {
	links := ExtractWikiLinks(body)
	seen := make(map[string]struct{}, len(links))
	var out []string
	for _, l := range links {
		if _, dup := seen[l.Target]; dup {
			continue
		}
		seen[l.Target] = struct{}{}
		out = append(out, l.Target)
	}
	return out
}

// collectTags merges front-matter tags with inline #tag occurrences,
// deduplicated, front matter first.
func collectTags(fm *FrontMatter, body string) []string {
	seen := make(map[string]struct{})
	var out []string

	if fm != nil {
		for _, t := range fm.Tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}

	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		t := m[1]
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
