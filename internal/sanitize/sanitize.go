// Package sanitize repairs malformed RDF/XML before it is handed to a parser.
package sanitize

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// cspell:words apos

// entities are the prefixes that may legally follow an ampersand
var entities = []string{"#", "amp", "apos", "quot", "lt", "gt"}

// FilterLine repairs a single line of RDF/XML.
//
// Bare ampersands are escaped as "&amp;".
// Spaces inside the first rdf:about attribute on the line are replaced by "%20".
// All other content is returned unchanged.
func FilterLine(line string) string {
	return repairAbout(repairAmpersands(line))
}

func repairAmpersands(line string) string {
	if !strings.Contains(line, "&") {
		return line
	}

	fragments := strings.Split(line, "&")
	for i, fragment := range fragments[1:] {
		if !hasEntityPrefix(fragment) {
			fragments[i+1] = "amp;" + fragment
		}
	}
	return strings.Join(fragments, "&")
}

func hasEntityPrefix(fragment string) bool {
	for _, entity := range entities {
		if strings.HasPrefix(fragment, entity) {
			return true
		}
	}
	return false
}

const (
	aboutDouble = `rdf:about="`
	aboutSingle = `rdf:about='`
)

func repairAbout(line string) string {
	attr, quote := aboutDouble, `"`
	start := strings.Index(line, attr)
	if start < 0 {
		attr, quote = aboutSingle, `'`
		start = strings.Index(line, attr)
	}
	if start < 0 {
		return line
	}

	prefix := line[:start+len(attr)]
	value, suffix, ok := strings.Cut(line[len(prefix):], quote)
	if !ok {
		// unterminated value, leave the line alone
		return line
	}

	return prefix + strings.ReplaceAll(value, " ", "%20") + quote + suffix
}

// Reader applies [FilterLine] to every line read from an underlying reader.
//
// Lines may be terminated by "\n" or "\r\n".
// Every line produced is terminated by a single "\n", including the last one.
type Reader struct {
	in *bufio.Reader

	buffer []byte // filtered content not yet returned
	err    error  // error to return once buffer is drained

	declaration bool // rewrite the encoding of a leading xml declaration
	lines       int  // number of lines read so far
}

// NewReader creates a new reader that sanitizes the content of r.
func NewReader(r io.Reader) *Reader {
	return &Reader{in: bufio.NewReader(r)}
}

// Read implements [io.Reader].
func (r *Reader) Read(p []byte) (n int, err error) {
	for len(r.buffer) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		r.fill()
	}

	n = copy(p, r.buffer)
	r.buffer = r.buffer[n:]
	return n, nil
}

// fill reads and filters the next line into the buffer.
func (r *Reader) fill() {
	line, err := r.in.ReadString('\n')
	if err != nil {
		r.err = err
		if errors.Is(err, io.EOF) && line == "" {
			return
		}
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	r.lines++
	if r.declaration && r.lines == 1 {
		line = FilterDeclaration(line)
	}

	r.buffer = append(r.buffer[:0], FilterLine(line)...)
	r.buffer = append(r.buffer, '\n')
}
