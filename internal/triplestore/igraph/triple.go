package igraph

import (
	"errors"
	"fmt"

	"github.com/FAU-CDI/catalogproxy/internal/triplestore/impl"
	"github.com/anglo-korean/rdf"
)

// Stats holds statistics about operations performed on a graph.
type Stats struct {
	AddedTriples     uint64 // triples inserted
	DuplicateTriples uint64 // insertions of a triple that already existed
	RemovedTriples   uint64 // triples removed
	RenamedNodes     uint64 // nodes that were renamed
}

func (stats Stats) String() string {
	return fmt.Sprintf("{added:%d,duplicate:%d,removed:%d,renamed:%d}", stats.AddedTriples, stats.DuplicateTriples, stats.RemovedTriples, stats.RenamedNodes)
}

// IndexTriple represents a triple stored inside the graph
type IndexTriple struct {
	Role  // What kind of object does this triple have?
	Items [3]impl.ID
}

func MarshalTriple(triple IndexTriple) ([]byte, error) {
	result := make([]byte, 3*impl.IDLen+1)
	result[0] = byte(triple.Role)
	copy(result[1:], impl.EncodeIDs(triple.Items[:]...))
	return result, nil
}

var errDecodeTriple = errors.New("UnmarshalTriple: src too short")

func UnmarshalTriple(dest *IndexTriple, src []byte) error {
	if len(src) < 3*impl.IDLen+1 {
		return errDecodeTriple
	}
	dest.Role = Role(src[0])
	return impl.UnmarshalIDs(
		src[1:],
		&(dest.Items[0]),
		&(dest.Items[1]),
		&(dest.Items[2]),
	)
}

// Triple represents a triple found inside a graph
type Triple struct {
	Subject   impl.Label
	Predicate impl.Label

	// Object is set when Role == Resource, Datum when Role == Data.
	Object impl.Label
	Datum  impl.Datum

	// ID uniquely identifies this triple within the graph it was read from.
	// It is the zero ID for triples that have not been read from a graph.
	ID impl.ID

	Role Role
}

// Resource creates a new triple with a resource object.
func Resource(subject, predicate, object impl.Label) Triple {
	return Triple{Subject: subject, Predicate: predicate, Object: object, Role: ResourceRole}
}

// Data creates a new triple with a literal object.
func Data(subject, predicate impl.Label, datum impl.Datum) Triple {
	return Triple{Subject: subject, Predicate: predicate, Datum: datum, Role: DataRole}
}

// HasDatum checks if the object of this triple is a literal.
func (triple Triple) HasDatum() bool {
	return triple.Role == DataRole
}

// Mentions checks if the given label occurs as subject or resource object of this triple.
func (triple Triple) Mentions(label impl.Label) bool {
	return triple.Subject == label || (!triple.HasDatum() && triple.Object == label)
}

// Triple returns this Triple as an rdf triple
func (triple Triple) Triple() (spo rdf.Triple, err error) {
	subject, err := asRDFResource(triple.Subject)
	if err != nil {
		return rdf.Triple{}, err
	}
	spo.Subj = subject

	spo.Pred, err = rdf.NewIRI(string(triple.Predicate))
	if err != nil {
		return rdf.Triple{}, err
	}

	if !triple.HasDatum() {
		object, err := asRDFResource(triple.Object)
		if err != nil {
			return rdf.Triple{}, err
		}
		spo.Obj = object
		return spo, nil
	}

	switch {
	case triple.Datum.Language != "":
		spo.Obj, err = rdf.NewLangLiteral(triple.Datum.Value, triple.Datum.Language)
	case triple.Datum.Datatype != "":
		var dt rdf.IRI
		dt, err = rdf.NewIRI(string(triple.Datum.Datatype))
		if err == nil {
			spo.Obj = rdf.NewTypedLiteral(triple.Datum.Value, dt)
		}
	default:
		spo.Obj, err = rdf.NewLiteral(triple.Datum.Value)
	}
	if err != nil {
		return rdf.Triple{}, err
	}
	return spo, nil
}

// rdfResource is a term valid in both subject and object position.
type rdfResource interface {
	rdf.Subject
	rdf.Object
}

func asRDFResource(label impl.Label) (rdfResource, error) {
	if label.IsBlank() {
		blank, err := rdf.NewBlank(label.BlankID())
		if err != nil {
			return nil, err
		}
		return blank, nil
	}

	iri, err := rdf.NewIRI(string(label))
	if err != nil {
		return nil, err
	}
	return iri, nil
}

// Compare compares this triple to another triple based on it's id
func (triple Triple) Compare(other Triple) int {
	return triple.ID.Compare(other.ID)
}

// Role represents the kind of object of a triple
type Role uint8

const (
	// ResourceRole represents a triple pointing to another node
	ResourceRole Role = iota

	// DataRole represents a triple pointing to a literal
	DataRole
)
