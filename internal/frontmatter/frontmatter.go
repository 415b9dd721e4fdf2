// Package frontmatter splits and decodes the YAML header of asset files.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Document is an asset file split into its header fields and body.
type Document struct {
	// Fields holds the decoded YAML header. It is empty, never nil.
	Fields map[string]any
	// Body is the content after the closing delimiter.
	Body string
	// HasFrontmatter reports whether a delimited header was found.
	HasFrontmatter bool
}

// Split separates a leading "---" delimited header from content. A missing
// closing delimiter means the file has no header. CRLF line endings are
// accepted and the returned header uses LF.
func Split(content []byte) (header []byte, body string, ok bool) {
	rest, found := cutLine(content, delimiter)
	if !found {
		return nil, string(content), false
	}

	// An empty header closes on the very next line.
	if after, found := cutLine(rest, delimiter); found {
		return []byte{}, string(after), true
	}

	closing := []byte("\n" + delimiter)
	for off := 0; off < len(rest); {
		idx := bytes.Index(rest[off:], closing)
		if idx == -1 {
			break
		}
		idx += off
		after := rest[idx+len(closing):]
		if !atLineEnd(after) {
			off = idx + len(closing)
			continue
		}
		header = bytes.ReplaceAll(rest[:idx], []byte("\r\n"), []byte("\n"))
		header = bytes.TrimSuffix(header, []byte("\r"))
		after = bytes.TrimPrefix(after, []byte("\r"))
		after = bytes.TrimPrefix(after, []byte("\n"))
		return header, string(after), true
	}
	return nil, string(content), false
}

// cutLine strips a line equal to want from the front of b.
func cutLine(b []byte, want string) ([]byte, bool) {
	if !bytes.HasPrefix(b, []byte(want)) {
		return nil, false
	}
	rest := b[len(want):]
	switch {
	case bytes.HasPrefix(rest, []byte("\r\n")):
		return rest[2:], true
	case bytes.HasPrefix(rest, []byte("\n")):
		return rest[1:], true
	case len(rest) == 0:
		return rest, true
	default:
		return nil, false
	}
}

func atLineEnd(b []byte) bool {
	return len(b) == 0 || b[0] == '\n' || b[0] == '\r'
}

// Parse splits content and decodes the header as YAML.
func Parse(content []byte) (Document, error) {
	header, body, ok := Split(content)
	doc := Document{Fields: map[string]any{}, Body: body, HasFrontmatter: ok}
	if !ok || len(bytes.TrimSpace(header)) == 0 {
		return doc, nil
	}
	if err := yaml.Unmarshal(header, &doc.Fields); err != nil {
		return doc, fmt.Errorf("failed to parse YAML frontmatter: %w", err)
	}
	if doc.Fields == nil {
		doc.Fields = map[string]any{}
	}
	return doc, nil
}

// Value looks up a dotted key such as "metadata.version".
func (d Document) Value(key string) (any, bool) {
	var cur any = d.Fields
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String returns the value at key as a trimmed string. Non-string scalars
// are formatted; missing keys, nulls and collections yield "".
func (d Document) String(key string) string {
	v, ok := d.Value(key)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// Has reports whether key is present with a non-empty value.
func (d Document) Has(key string) bool {
	v, ok := d.Value(key)
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
