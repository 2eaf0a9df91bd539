// Package frontmatter parses and formats YAML frontmatter in markdown
// documents, the on-disk format of client agent files.
package frontmatter

import (
	"bytes"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// ErrMissingDelimiter indicates an opening "---" without a closing one.
var ErrMissingDelimiter = errors.New("missing closing frontmatter delimiter")

// Parse extracts YAML frontmatter and body content from a document.
// If no frontmatter is present, matter is left untouched and the full
// content is returned as the body.
func Parse[T any](content []byte, matter *T) (body []byte, err error) {
	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return content, nil
	}

	// Skip the opening delimiter line.
	start := 3
	if len(content) > start && content[start] == '\r' {
		start++
	}
	if len(content) > start && content[start] == '\n' {
		start++
	}

	rest := content[start:]
	idx := bytes.Index(rest, []byte("\n---"))
	sep := 4
	if idx < 0 {
		idx = bytes.Index(rest, []byte("\r\n---"))
		sep = 5
	}
	if idx < 0 {
		return nil, ErrMissingDelimiter
	}

	fm := rest[:idx]
	body = rest[idx+sep:]
	for len(body) > 0 && (body[0] == '\r' || body[0] == '\n') {
		body = body[1:]
	}

	if err := yaml.Unmarshal(fm, matter); err != nil {
		return nil, errors.Wrap(err, "parsing frontmatter")
	}
	return body, nil
}

// Format renders a document with YAML frontmatter: the matter struct
// wrapped in "---" delimiters, followed by the body.
func Format(matter any, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(matter); err != nil {
		return nil, errors.Wrap(err, "encoding frontmatter")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encoding frontmatter")
	}

	buf.WriteString("---\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}
