// Package content splits file contents into frontmatter metadata and body.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Delimiter opens and closes a frontmatter block. Each delimiter sits on a
// line of its own.
const Delimiter = "---"

// ErrInvalidFrontmatter is returned when a file starts a frontmatter block
// that cannot be parsed.
var ErrInvalidFrontmatter = errors.New("invalid frontmatter")

// Metadata holds the key/value pairs of a frontmatter block.
type Metadata map[string]any

// Frontmatter is the result of splitting a text document.
type Frontmatter struct {
	// Data is the decoded metadata. It is empty, never nil, for documents
	// without a block.
	Data Metadata
	// Raw is the text of the block including both delimiter lines and the
	// newline after the closing one.
	Raw  string
	Body string
}

// Join reassembles the document the Frontmatter was split from.
func (f Frontmatter) Join() string {
	return f.Raw + f.Body
}

// SplitFunc separates metadata from the body of a text document.
type SplitFunc func(text string) (Frontmatter, error)

// Split separates a leading YAML frontmatter block from text. A document
// without an opening delimiter line is returned as body with empty metadata.
func Split(text string) (Frontmatter, error) {
	fm := Frontmatter{Data: Metadata{}, Body: text}

	first, ok := lineEnd(text, 0)
	if !ok || strings.TrimRight(text[:first], "\r\n") != Delimiter {
		return fm, nil
	}

	matterStart := first
	pos := first
	for pos < len(text) {
		end, _ := lineEnd(text, pos)
		line := strings.TrimRight(text[pos:end], "\r\n")
		if line == Delimiter {
			// Nested mappings decode as map[string]any; only the top level is Metadata.
			var data map[string]any
			if err := yaml.Unmarshal([]byte(text[matterStart:pos]), &data); err != nil {
				return Frontmatter{}, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
			}
			if data != nil {
				fm.Data = Metadata(data)
			}
			fm.Raw = text[:end]
			fm.Body = text[end:]
			return fm, nil
		}
		pos = end
	}

	return Frontmatter{}, fmt.Errorf("%w: missing closing %q", ErrInvalidFrontmatter, Delimiter)
}

// lineEnd returns the index just past the newline ending the line that
// starts at pos, or len(text) for a final unterminated line. ok is false
// when pos is at the end of text.
func lineEnd(text string, pos int) (int, bool) {
	if pos >= len(text) {
		return pos, false
	}
	if idx := strings.IndexByte(text[pos:], '\n'); idx != -1 {
		return pos + idx + 1, true
	}
	return len(text), true
}

// Marshal renders metadata and body as a document with a frontmatter
// block. Empty metadata produces the body alone.
func Marshal(meta Metadata, body []byte) ([]byte, error) {
	if len(meta) == 0 {
		return body, nil
	}

	data, err := yaml.Marshal(map[string]any(meta))
	if err != nil {
		return nil, fmt.Errorf("marshal frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + len(body) + 8)
	buf.WriteString(Delimiter + "\n")
	buf.Write(data)
	buf.WriteString(Delimiter + "\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

// IsText reports whether b decodes as UTF-8.
func IsText(b []byte) bool {
	return utf8.Valid(b)
}
