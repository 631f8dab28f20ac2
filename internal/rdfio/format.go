package rdfio

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/FAU-CDI/catalogproxy/internal/triplestore/igraph"
	"github.com/FAU-CDI/catalogproxy/internal/triplestore/impl"
	"github.com/anglo-korean/rdf"
	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
)

// ErrUnknownFormat is returned when a format can not be determined.
var ErrUnknownFormat = errors.New("unknown format")

// Format is a serialization of a graph
type Format struct {
	Name      string   // short name, e.g. for use in query parameters
	MediaType string   // IANA media type
	Aliases   []string // other media types accepted for this format

	write func(w io.Writer, triples []igraph.Triple) error
}

// ContentType returns the content type to send for this format.
func (format Format) ContentType() string {
	return format.MediaType + "; charset=utf-8"
}

// Write writes all triples in graph to w.
func (format Format) Write(w io.Writer, graph *igraph.Graph) error {
	triples, err := graph.Triples()
	if err != nil {
		return fmt.Errorf("failed to read triples: %w", err)
	}
	if err := format.write(w, triples); err != nil {
		return fmt.Errorf("failed to write %s: %w", format.Name, err)
	}
	return nil
}

var (
	RDFXML = Format{
		Name:      "rdfxml",
		MediaType: "application/rdf+xml",
		Aliases:   []string{"application/xml", "text/xml"},
		write:     WriteRDFXML,
	}
	Turtle = Format{
		Name:      "turtle",
		MediaType: "text/turtle",
		Aliases:   []string{"application/x-turtle"},
		write:     WriteTurtle,
	}
	NTriples = Format{
		Name:      "ntriples",
		MediaType: "application/n-triples",
		Aliases:   []string{"application/n-quads", "text/plain"},
		write:     WriteNTriples,
	}
)

// Formats lists all supported output formats, the default first.
var Formats = []Format{RDFXML, Turtle, NTriples}

// FormatByName returns the format with the given name.
func FormatByName(name string) (Format, error) {
	for _, format := range Formats {
		if strings.EqualFold(format.Name, name) {
			return format, nil
		}
	}
	return Format{}, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Negotiate picks the best format for the given Accept header.
// When nothing acceptable is found, returns the default format.
func Negotiate(accept string) Format {
	type candidate struct {
		mediaType string
		quality   float64
	}

	var candidates []candidate
	for _, part := range strings.Split(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}

		quality := 1.0
		if q, ok := params["q"]; ok {
			if quality, err = strconv.ParseFloat(q, 64); err != nil {
				continue
			}
		}
		if quality <= 0 {
			continue
		}
		candidates = append(candidates, candidate{mediaType: mediaType, quality: quality})
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(b.quality, a.quality)
	})

	for _, candidate := range candidates {
		for _, format := range Formats {
			if candidate.mediaType == format.MediaType || slices.Contains(format.Aliases, candidate.mediaType) {
				return format
			}
		}
	}
	return Formats[0]
}

// NewSource creates a source for the file with the given name, based on its extension.
func NewSource(name string, r io.Reader) (Source, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xml", ".rdf", ".owl":
		return &XMLSource{Reader: r}, nil
	case ".nt", ".nq":
		return &QuadSource{Reader: r}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// WriteTurtle writes triples in turtle format.
// All terms are written as full iris, as paged collection iris do not form valid prefixed names.
func WriteTurtle(w io.Writer, triples []igraph.Triple) error {
	enc := rdf.NewTripleEncoder(w, rdf.Turtle)
	enc.GenerateNamespaces = false
	for _, triple := range triples {
		spo, err := triple.Triple()
		if err != nil {
			return fmt.Errorf("invalid triple %s: %w", triple.ID, err)
		}
		if err := enc.Encode(spo); err != nil {
			return err
		}
	}
	return enc.Close()
}

// WriteNTriples writes triples in N-Triples format.
func WriteNTriples(w io.Writer, triples []igraph.Triple) error {
	writer := nquads.NewWriter(w)
	for _, triple := range triples {
		if err := writer.WriteQuad(asQuad(triple)); err != nil {
			return err
		}
	}
	return writer.Close()
}

func asQuad(triple igraph.Triple) quad.Quad {
	q := quad.Quad{
		Subject:   asQuadNode(triple.Subject),
		Predicate: asQuadNode(triple.Predicate),
	}

	datum := triple.Datum
	switch {
	case !triple.HasDatum():
		q.Object = asQuadNode(triple.Object)
	case datum.Language != "":
		q.Object = quad.LangString{Value: quad.String(datum.Value), Lang: datum.Language}
	case datum.Datatype != "":
		q.Object = quad.TypedString{Value: quad.String(datum.Value), Type: quad.IRI(datum.Datatype)}
	default:
		q.Object = quad.String(datum.Value)
	}
	return q
}

func asQuadNode(label impl.Label) quad.Value {
	if label.IsBlank() {
		return quad.BNode(label.BlankID())
	}
	return quad.IRI(label)
}
