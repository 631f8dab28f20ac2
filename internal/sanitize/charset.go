package sanitize

import (
	"bufio"
	"fmt"
	"io"
	"mime"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
)

// NewTranscodingReader is like NewReader, but first converts the content of r to utf-8.
//
// The encoding is taken from the charset parameter of contentType, which may be empty.
// Without one, the encoding named in the xml declaration is used, defaulting to utf-8.
//
// Because the content is utf-8 afterwards, the encoding given in an xml declaration is replaced with "utf-8".
func NewTranscodingReader(r io.Reader, contentType string) (*Reader, error) {
	buffered := bufio.NewReader(r)

	label := contentCharset(contentType)
	if label == "" {
		label = declaredEncoding(buffered)
	}

	utf8, err := charset.NewReaderLabel(label, buffered)
	if err != nil {
		return nil, fmt.Errorf("failed to determine encoding: %w", err)
	}

	reader := NewReader(utf8)
	reader.declaration = true
	return reader, nil
}

// contentCharset returns the charset parameter of contentType, if any.
func contentCharset(contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["charset"])
}

var encodingAttribute = regexp.MustCompile(`encoding\s*=\s*("[^"]*"|'[^']*')`)

// declarationSize is the number of bytes searched for an xml declaration.
const declarationSize = 1024

// declaredEncoding peeks at the start of r and returns the encoding named in its xml declaration.
// When there is none, returns "utf-8".
func declaredEncoding(r *bufio.Reader) string {
	// errors are reported once the content is actually read
	peek, _ := r.Peek(declarationSize)

	line := string(peek)
	start := strings.Index(line, "<?xml")
	if start < 0 || strings.TrimLeft(line[:start], "\ufeff \t\r\n") != "" {
		return "utf-8"
	}
	end := strings.Index(line[start:], "?>")
	if end < 0 {
		return "utf-8"
	}

	match := encodingAttribute.FindStringSubmatch(line[start : start+end])
	if match == nil {
		return "utf-8"
	}
	return match[1][1 : len(match[1])-1]
}

// FilterDeclaration sets the encoding of an xml declaration at the start of line to utf-8.
// Lines not starting with an xml declaration are returned unchanged.
func FilterDeclaration(line string) string {
	start := strings.Index(line, "<?xml")
	if start < 0 || strings.TrimLeft(line[:start], "\ufeff \t") != "" {
		return line
	}

	end := strings.Index(line[start:], "?>")
	if end < 0 {
		return line
	}
	end += start

	declaration := encodingAttribute.ReplaceAllString(line[start:end], `encoding="utf-8"`)
	return line[:start] + declaration + line[end:]
}
