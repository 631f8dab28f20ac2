package rdfio

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/FAU-CDI/catalogproxy/internal/dcat"
	"github.com/FAU-CDI/catalogproxy/internal/triplestore/igraph"
	"github.com/FAU-CDI/catalogproxy/internal/triplestore/impl"
)

// ErrUnsplittablePredicate indicates that a predicate can not be written as an xml element name.
var ErrUnsplittablePredicate = errors.New("predicate can not be written as an xml element")

// WriteRDFXML writes triples as an RDF/XML document.
//
// Each subject is written as a single rdf:Description element, in order of first occurrence.
// Blank nodes are renumbered.
func WriteRDFXML(w io.Writer, triples []igraph.Triple) error {
	ns := newNamespaces()
	ns.use(dcat.RDF)

	// group triples by subject and collect namespaces
	var subjects []impl.Label
	properties := make(map[impl.Label][]igraph.Triple)
	for _, triple := range triples {
		if _, ok := properties[triple.Subject]; !ok {
			subjects = append(subjects, triple.Subject)
		}
		properties[triple.Subject] = append(properties[triple.Subject], triple)

		space, _, ok := splitIRI(string(triple.Predicate))
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnsplittablePredicate, triple.Predicate)
		}
		ns.use(space)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	if err := enc.EncodeToken(xml.ProcInst{Target: "xml", Inst: []byte(`version="1.0" encoding="utf-8"`)}); err != nil {
		return err
	}

	root := xml.StartElement{Name: xml.Name{Local: "rdf:RDF"}}
	for _, space := range ns.order {
		root.Attr = append(root.Attr, xml.Attr{Name: xml.Name{Local: "xmlns:" + ns.prefixes[space]}, Value: space})
	}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}

	blanks := make(map[impl.Label]string)
	node := func(label impl.Label, resource string) xml.Attr {
		if !label.IsBlank() {
			return xml.Attr{Name: xml.Name{Local: resource}, Value: string(label)}
		}
		id, ok := blanks[label]
		if !ok {
			id = "b" + strconv.Itoa(len(blanks))
			blanks[label] = id
		}
		return xml.Attr{Name: xml.Name{Local: "rdf:nodeID"}, Value: id}
	}

	for _, subject := range subjects {
		description := xml.StartElement{
			Name: xml.Name{Local: "rdf:Description"},
			Attr: []xml.Attr{node(subject, "rdf:about")},
		}
		if err := enc.EncodeToken(description); err != nil {
			return err
		}

		for _, triple := range properties[subject] {
			space, local, _ := splitIRI(string(triple.Predicate))
			property := xml.StartElement{Name: xml.Name{Local: ns.prefixes[space] + ":" + local}}

			if !triple.HasDatum() {
				property.Attr = []xml.Attr{node(triple.Object, "rdf:resource")}
				if err := encodeEmpty(enc, property); err != nil {
					return err
				}
				continue
			}

			switch {
			case triple.Datum.Language != "":
				property.Attr = []xml.Attr{{Name: xml.Name{Local: "xml:lang"}, Value: triple.Datum.Language}}
			case triple.Datum.Datatype != "":
				property.Attr = []xml.Attr{{Name: xml.Name{Local: "rdf:datatype"}, Value: string(triple.Datum.Datatype)}}
			}
			if err := enc.EncodeToken(property); err != nil {
				return err
			}
			if err := enc.EncodeToken(xml.CharData(triple.Datum.Value)); err != nil {
				return err
			}
			if err := enc.EncodeToken(property.End()); err != nil {
				return err
			}
		}

		if err := enc.EncodeToken(description.End()); err != nil {
			return err
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}

	_, err := io.WriteString(w, "\n")
	return err
}

// encodeEmpty writes an element without any content
func encodeEmpty(enc *xml.Encoder, element xml.StartElement) error {
	if err := enc.EncodeToken(element); err != nil {
		return err
	}
	return enc.EncodeToken(element.End())
}

// namespaces assigns prefixes to namespaces
type namespaces struct {
	prefixes map[string]string // namespace => prefix
	taken    map[string]bool   // prefixes in use
	order    []string          // namespaces in order of use
}

func newNamespaces() *namespaces {
	return &namespaces{
		prefixes: make(map[string]string),
		taken:    make(map[string]bool),
	}
}

func (ns *namespaces) use(space string) {
	if _, ok := ns.prefixes[space]; ok {
		return
	}

	prefix, ok := dcat.Prefixes[space]
	if !ok || ns.taken[prefix] {
		for i := len(ns.order); ; i++ {
			prefix = "ns" + strconv.Itoa(i)
			if !ns.taken[prefix] {
				break
			}
		}
	}

	ns.prefixes[space] = prefix
	ns.taken[prefix] = true
	ns.order = append(ns.order, space)
}

// splitIRI splits an iri into a namespace and a local name.
// The local name is the longest suffix of iri that is a valid xml name without a colon.
func splitIRI(iri string) (space, local string, ok bool) {
	split := len(iri)
	for split > 0 {
		r, size := utf8.DecodeLastRuneInString(iri[:split])
		if !isNameChar(r) {
			break
		}
		split -= size
	}

	// the local name must start with a letter or underscore
	for split < len(iri) {
		r, size := utf8.DecodeRuneInString(iri[split:])
		if isNameStartChar(r) {
			break
		}
		split += size
	}

	if split == 0 || split == len(iri) {
		return "", "", false
	}
	return iri[:split], iri[split:], true
}

func isNameStartChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	return isNameStartChar(r) || r == '-' || r == '.' || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
