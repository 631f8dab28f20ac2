// Package rdfio reads and writes graphs in various rdf serializations.
package rdfio

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/FAU-CDI/catalogproxy/internal/triplestore/impl"
	"github.com/anglo-korean/rdf"
	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
)

// cspell:words nquads rdfio

// Source represents a source of triples
type Source interface {
	// Open opens this data source.
	// It must be called before the first call to Next.
	Open() error

	// Close closes this source.
	// It does not close the underlying reader.
	Close() error

	// Next scans the next token.
	// Once the source is exhausted, it returns a token with Err = io.EOF.
	Next() Token
}

// Token represents a token read from a triplestore file.
//
// It can represent one of three states:
//
// 1. an error token
// 2. a (subject, predicate, object) token
// 3. a (subject, predicate, datum) token
//
// In the case of 1, Err != nil.
// In the case of 2, Err == nil && HasDatum = False
// In the case of 3, Err == nil && HasDatum = True
type Token struct {
	Err error

	Subject   impl.Label
	Predicate impl.Label
	Object    impl.Label
	Datum     impl.Datum

	HasDatum bool
}

// well-known datatypes that are implied and not stored.
const (
	xsdString  = "http://www.w3.org/2001/XMLSchema#string"
	langString = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
)

// newDatum creates a new datum, dropping implied datatypes.
func newDatum(value, language, datatype string) impl.Datum {
	if language != "" || datatype == xsdString || datatype == langString {
		datatype = ""
	}
	return impl.Datum{Value: value, Language: language, Datatype: impl.Label(datatype)}
}

// XMLSource reads triples from an RDF/XML document.
type XMLSource struct {
	Reader io.Reader

	decoder rdf.TripleDecoder
}

func (xs *XMLSource) Open() error {
	if xs.decoder != nil {
		return errors.New("XMLSource: already opened")
	}
	xs.decoder = rdf.NewTripleDecoder(xs.Reader, rdf.RDFXML)
	return nil
}

// Next reads the next token from the XMLSource
func (xs *XMLSource) Next() Token {
	triple, err := xs.decoder.Decode()
	if err != nil {
		return Token{Err: err}
	}

	subject, err := termLabel(triple.Subj)
	if err != nil {
		return Token{Err: fmt.Errorf("invalid subject: %w", err)}
	}
	predicate, err := termLabel(triple.Pred)
	if err != nil {
		return Token{Err: fmt.Errorf("invalid predicate: %w", err)}
	}

	if literal, ok := triple.Obj.(rdf.Literal); ok {
		return Token{
			Subject:   subject,
			Predicate: predicate,
			Datum:     newDatum(literal.String(), literal.Lang(), literal.DataType.String()),
			HasDatum:  true,
		}
	}

	object, err := termLabel(triple.Obj)
	if err != nil {
		return Token{Err: fmt.Errorf("invalid object: %w", err)}
	}
	return Token{
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
	}
}

func (xs *XMLSource) Close() error {
	xs.decoder = nil
	return nil
}

var errUnexpectedTerm = errors.New("unexpected term")

// termLabel returns the label of an iri or blank node term.
func termLabel(term rdf.Term) (impl.Label, error) {
	switch term := term.(type) {
	case rdf.IRI:
		return impl.Label(term.String()), nil
	case rdf.Blank:
		return impl.BlankLabel(strings.TrimPrefix(term.String(), impl.BlankPrefix)), nil
	default:
		return "", fmt.Errorf("%w %v", errUnexpectedTerm, term)
	}
}

// QuadSource reads triples from an N-Quads or N-Triples file.
// Graph labels of quads are ignored.
type QuadSource struct {
	Reader io.Reader
	reader *nquads.Reader
}

func (qs *QuadSource) Open() error {
	if qs.reader != nil {
		return errors.New("QuadSource: already opened")
	}
	qs.reader = nquads.NewReader(qs.Reader, true)
	return nil
}

// Next reads the next token from the QuadSource
func (qs *QuadSource) Next() Token {
	for {
		value, err := qs.reader.ReadQuad()
		if err != nil {
			return Token{Err: err}
		}

		sI, sOK := asURILike(value.Subject)
		pI, pOK := asURILike(value.Predicate)
		if !(sOK && pOK) {
			continue
		}

		if oI, oOK := asURILike(value.Object); oOK {
			return Token{
				Subject:   sI,
				Predicate: pI,
				Object:    oI,
			}
		}

		var datum impl.Datum
		switch object := value.Object.(type) {
		case quad.String:
			datum = newDatum(string(object), "", "")
		case quad.LangString:
			datum = newDatum(string(object.Value), object.Lang, "")
		case quad.TypedString:
			datum = newDatum(string(object.Value), "", string(object.Type))
		default:
			datum = newDatum(fmt.Sprint(object.Native()), "", "")
		}

		return Token{
			Subject:   sI,
			Predicate: pI,
			HasDatum:  true,
			Datum:     datum,
		}
	}
}

func (qs *QuadSource) Close() error {
	if qs.reader == nil {
		return nil
	}
	err := qs.reader.Close()
	qs.reader = nil
	return err
}

func asURILike(value quad.Value) (uri impl.Label, ok bool) {
	switch datum := value.(type) {
	case quad.IRI:
		return impl.Label(string(datum)), true
	case quad.BNode:
		return impl.BlankLabel(string(datum)), true
	default:
		return "", false
	}
}
