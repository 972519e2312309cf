package mcpserver

// NoteFormatContract describes the canonical Markdown note format that
// LLM consumers should follow when creating or updating notes.
const NoteFormatContract = `# Hugin Note Format Contract

Every Markdown note stored in Hugin SHOULD follow this structure.

## Structure

` + "```" + `markdown
---
tags:                               # OPTIONAL – YAML list; merged with inline #tags
  - tag-one
  - tag-two
aliases:                            # OPTIONAL – alternate names for the note
  - short-name
type: note                          # OPTIONAL – object type (defaults to note)
created: 2025-01-15                 # OPTIONAL – ISO-8601 date or datetime
---

# Human-readable title

Body text in standard Markdown.

Use [[wikilinks]] to reference other notes (without .md extension).
Use [[target|alias]] for display text that differs from the target.
` + "```" + `

## Rules

1. **The title is the first Markdown heading.** Open every note with a
   ` + "`" + `# Heading` + "`" + ` line; it is the primary display name in search, graph and
   stats. Without one the first non-empty line is used, and a blank note
   falls back to ` + "`" + `Untitled` + "`" + `.
2. **YAML frontmatter is optional.** When present, the ` + "```" + `---` + "```" + ` fences must be
   the first thing in the file (no leading blank lines). A malformed block is
   treated as plain body text, never an error.
3. **Tags** come from the frontmatter ` + "`" + `tags` + "`" + ` list and inline ` + "`" + `#tag` + "`" + ` tokens;
   both forms index identically. Use lowercase, kebab-case (e.g. ` + "`" + `project-x` + "`" + `).
4. **Wikilinks** use double brackets: ` + "`" + `[[other-note]]` + "`" + `. The target is the
   filename stem (no ` + "`" + `.md` + "`" + ` extension, path separators OK: ` + "`" + `[[folder/note]]` + "`" + `).
   ` + "`" + `[[target#heading]]` + "`" + ` anchors to a section, ` + "`" + `[[target|alias]]` + "`" + ` renames the link.
5. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes.
6. **Encoding** is UTF-8 with a trailing newline.
7. **No HTML** unless absolutely necessary; prefer Markdown equivalents.
8. **Language policy:** file names and directory names MUST be in English (Latin characters).
   Frontmatter keys MUST be in English (they are schema fields). Frontmatter values
   (tags, aliases, etc.) and body content may use any language including Cyrillic.

## Assets & Images

- Import assets via the ` + "`" + `import_asset` + "`" + ` tool. It returns a ` + "`" + `markdownImage` + "`" + ` field ready to paste into the note body.
- Assets are stored in the vault ` + "`" + `attachments/` + "`" + ` directory (flat, no sub-folders).
- Reference in notes using the absolute URL path: ` + "`" + `![description](/assets/filename.png)` + "`" + `
- Supported formats: png, jpg, jpeg, gif, webp, svg, pdf.
- Do **not** use relative paths like ` + "`" + `./attachments/...` + "`" + ` — always use ` + "`" + `/assets/filename` + "`" + `.

## Example

` + "```" + `markdown
---
tags:
  - meeting-notes
  - project-x
created: 2025-01-20
---

# Weekly standup 2025-01-20

Attendees: Alice, Bob.

![Whiteboard photo](/assets/standup-2025-01-20.jpg)

## Action items

- [[alice]] to review the [[design-doc]]
- Bob to update [[project-x/roadmap|the roadmap]]
` + "```" + `
`
