// Package impl holds the primitive value types shared by the triplestore packages.
package impl

import (
	"encoding/json"
	"strings"
)

// Label represents the label of a node or edge inside a graph.
// A label is either an IRI, or a blank node identifier carrying the [BlankPrefix].
type Label string

// BlankPrefix is the prefix used for labels of blank nodes.
const BlankPrefix = "_:"

// BlankLabel returns the label of the blank node with the given identifier.
// An identifier that already carries the prefix is returned unchanged.
func BlankLabel(id string) Label {
	if strings.HasPrefix(id, BlankPrefix) {
		return Label(id)
	}
	return Label(BlankPrefix + id)
}

// IsBlank checks if this label refers to a blank node, that is a node without an IRI.
func (label Label) IsBlank() bool {
	return strings.HasPrefix(string(label), BlankPrefix)
}

// BlankID returns the identifier of a blank node without the prefix.
// For non-blank labels, returns the empty string.
func (label Label) BlankID() string {
	if !label.IsBlank() {
		return ""
	}
	return string(label[len(BlankPrefix):])
}

// LabelAsByte encodes a label as a set of bytes.
func LabelAsByte(label Label) []byte {
	return []byte(label)
}

// ByteAsLabel returns a label from a []byte
func ByteAsLabel(label []byte) Label {
	return Label(label)
}

// Datum represents a literal value attached to a node.
// Datum is comparable; two literals are identical iff all fields are identical.
type Datum struct {
	Value    string
	Language string // language tag, if any
	Datatype Label  // datatype IRI, if any
}

// DatumAsByte encodes a datum as a set of bytes.
func DatumAsByte(datum Datum) ([]byte, error) {
	return json.Marshal(&datum)
}

// ByteAsDatum decodes a datum from a set of bytes.
func ByteAsDatum(dest *Datum, src []byte) error {
	return json.Unmarshal(src, dest)
}
