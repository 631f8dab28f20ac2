// Package igraph provides Graph, a mutable in-memory or on-disk triple store.
package igraph

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/FAU-CDI/catalogproxy/internal/triplestore/imap"
	"github.com/FAU-CDI/catalogproxy/internal/triplestore/impl"
)

// cSpell:words igraph imap

// Graph represents a mutable directed labeled graph with optionally attached literal data.
//
// Nodes and edges are identified by labels, which are interned into ids.
// Each triple is stored once in a statement table, and referenced from three indexes:
// by subject, by predicate and object, and by object (for resource objects only).
//
// The zero value represents an empty graph, but is otherwise not ready to be used.
// It must be [Graph.Reset] before use, and [Graph.Close]d afterwards.
//
// Graph may not be used concurrently.
// Lookups return fully materialized slices, so callers may freely mutate the graph
// after a lookup has returned.
type Graph struct {
	engine Engine

	labels   imap.IMap
	data     imap.HashMap[impl.ID, impl.Datum]
	literals imap.HashMap[impl.Datum, impl.ID]
	triples  imap.HashMap[impl.ID, IndexTriple]

	spoIndex ThreeStorage
	posIndex ThreeStorage
	ospIndex ThreeStorage

	triple impl.ID // last triple id handed out
	stats  Stats
}

// ErrClosed is returned when using a graph that has not been reset.
var ErrClosed = errors.New("IGraph: Graph is closed")

// Reset resets this graph and prepares all internal structures for use with the given engine.
func (graph *Graph) Reset(engine Engine) (err error) {
	if err = graph.Close(); err != nil {
		return fmt.Errorf("failed to close graph: %w", err)
	}

	defer func() {
		if err != nil {
			err = errors.Join(err, graph.Close())
		}
	}()

	if err := graph.labels.Reset(engine); err != nil {
		return fmt.Errorf("failed to reset labels: %w", err)
	}

	graph.data, err = engine.Data()
	if err != nil {
		return fmt.Errorf("failed to initialize data: %w", err)
	}

	graph.literals, err = engine.Literals()
	if err != nil {
		return fmt.Errorf("failed to initialize literals: %w", err)
	}

	graph.triples, err = engine.Triples()
	if err != nil {
		return fmt.Errorf("failed to initialize triples: %w", err)
	}

	graph.spoIndex, err = engine.SPOIndex()
	if err != nil {
		return fmt.Errorf("failed to initialize SPO index: %w", err)
	}

	graph.posIndex, err = engine.POSIndex()
	if err != nil {
		return fmt.Errorf("failed to initialize POS index: %w", err)
	}

	graph.ospIndex, err = engine.OSPIndex()
	if err != nil {
		return fmt.Errorf("failed to initialize OSP index: %w", err)
	}

	graph.engine = engine
	graph.triple.Reset()
	graph.stats = Stats{}
	return nil
}

// Stats returns statistics about this graph.
func (graph *Graph) Stats() Stats {
	return graph.stats
}

// Count returns the number of triples in this graph.
func (graph *Graph) Count() (uint64, error) {
	if graph.triples == nil {
		return 0, ErrClosed
	}
	count, err := graph.triples.Count()
	if err != nil {
		return 0, fmt.Errorf("failed to count triples: %w", err)
	}
	return count, nil
}

// AddTriple inserts a subject-predicate-object triple into the graph.
// Adding a triple that already exists has no effect, and returns added = false.
func (graph *Graph) AddTriple(subject, predicate, object impl.Label) (added bool, err error) {
	if graph.triples == nil {
		return false, ErrClosed
	}

	s, p, err := graph.addSP(subject, predicate)
	if err != nil {
		return false, err
	}
	o, err := graph.labels.Add(object)
	if err != nil {
		return false, fmt.Errorf("failed to add object label: %w", err)
	}

	return graph.insert(IndexTriple{Role: ResourceRole, Items: [3]impl.ID{s, p, o}})
}

// AddData inserts a subject-predicate-literal triple into the graph.
// Adding a triple that already exists has no effect, and returns added = false.
func (graph *Graph) AddData(subject, predicate impl.Label, datum impl.Datum) (added bool, err error) {
	if graph.triples == nil {
		return false, ErrClosed
	}

	s, p, err := graph.addSP(subject, predicate)
	if err != nil {
		return false, err
	}

	o, ok, err := graph.literals.Get(datum)
	if err != nil {
		return false, fmt.Errorf("failed to get literal: %w", err)
	}
	if !ok {
		o = graph.labels.Next()
		if err := graph.literals.Set(datum, o); err != nil {
			return false, fmt.Errorf("failed to store literal: %w", err)
		}
		if err := graph.data.Set(o, datum); err != nil {
			return false, fmt.Errorf("failed to store literal data: %w", err)
		}
	}

	return graph.insert(IndexTriple{Role: DataRole, Items: [3]impl.ID{s, p, o}})
}

// Add adds the given triple to the graph, dispatching on its role.
// The id of the triple is ignored.
func (graph *Graph) Add(triple Triple) (bool, error) {
	if triple.HasDatum() {
		return graph.AddData(triple.Subject, triple.Predicate, triple.Datum)
	}
	return graph.AddTriple(triple.Subject, triple.Predicate, triple.Object)
}

func (graph *Graph) addSP(subject, predicate impl.Label) (s, p impl.ID, err error) {
	s, err = graph.labels.Add(subject)
	if err != nil {
		return s, p, fmt.Errorf("failed to add subject label: %w", err)
	}
	p, err = graph.labels.Add(predicate)
	if err != nil {
		return s, p, fmt.Errorf("failed to add predicate label: %w", err)
	}
	return s, p, nil
}

// insert stores the given triple in the statement table and all indexes.
func (graph *Graph) insert(triple IndexTriple) (bool, error) {
	s, p, o := triple.Items[0], triple.Items[1], triple.Items[2]

	id := graph.triple.Inc()
	if _, existed, err := graph.spoIndex.Add(s, p, o, id); err != nil {
		return false, fmt.Errorf("failed to add to SPO index: %w", err)
	} else if existed {
		graph.stats.DuplicateTriples++
		return false, nil
	}

	if err := graph.triples.Set(id, triple); err != nil {
		return false, fmt.Errorf("failed to store triple: %w", err)
	}
	if _, _, err := graph.posIndex.Add(p, o, s, id); err != nil {
		return false, fmt.Errorf("failed to add to POS index: %w", err)
	}
	if triple.Role == ResourceRole {
		if _, _, err := graph.ospIndex.Add(o, s, p, id); err != nil {
			return false, fmt.Errorf("failed to add to OSP index: %w", err)
		}
	}

	graph.stats.AddedTriples++
	return true, nil
}

// Remove removes the given triple from the graph.
// Removing a triple that does not exist has no effect.
func (graph *Graph) Remove(triple Triple) error {
	if graph.triples == nil {
		return ErrClosed
	}

	ids, ok, err := graph.lookup(triple)
	if err != nil || !ok {
		return err
	}
	return graph.delete(ids)
}

// RemoveAll removes all the given triples from the graph.
func (graph *Graph) RemoveAll(triples []Triple) error {
	for _, triple := range triples {
		if err := graph.Remove(triple); err != nil {
			return err
		}
	}
	return nil
}

// lookup finds the index representation of the given triple, if it exists.
func (graph *Graph) lookup(triple Triple) (it IndexTriple, ok bool, err error) {
	it.Role = triple.Role

	if it.Items[0], ok, err = graph.labels.Get(triple.Subject); err != nil || !ok {
		return
	}
	if it.Items[1], ok, err = graph.labels.Get(triple.Predicate); err != nil || !ok {
		return
	}
	if triple.HasDatum() {
		it.Items[2], ok, err = graph.literals.Get(triple.Datum)
	} else {
		it.Items[2], ok, err = graph.labels.Get(triple.Object)
	}
	if err != nil || !ok {
		return
	}

	_, ok, err = graph.spoIndex.Has(it.Items[0], it.Items[1], it.Items[2])
	return
}

// delete removes the given triple from all indexes.
func (graph *Graph) delete(triple IndexTriple) error {
	s, p, o := triple.Items[0], triple.Items[1], triple.Items[2]

	id, ok, err := graph.spoIndex.Has(s, p, o)
	if err != nil {
		return fmt.Errorf("failed to lookup triple: %w", err)
	}
	if !ok {
		return nil
	}

	errs := []error{
		graph.spoIndex.Delete(s, p, o),
		graph.posIndex.Delete(p, o, s),
		graph.triples.Delete(id),
	}
	if triple.Role == ResourceRole {
		errs = append(errs, graph.ospIndex.Delete(o, s, p))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to delete triple: %w", err)
	}

	graph.stats.RemovedTriples++
	return nil
}

// resolve turns the index representation of a triple into a Triple.
func (graph *Graph) resolve(id impl.ID, it IndexTriple) (triple Triple, err error) {
	triple.ID = id
	triple.Role = it.Role

	triple.Subject, err = graph.labels.Reverse(it.Items[0])
	if err != nil {
		return triple, fmt.Errorf("failed to resolve subject: %w", err)
	}
	triple.Predicate, err = graph.labels.Reverse(it.Items[1])
	if err != nil {
		return triple, fmt.Errorf("failed to resolve predicate: %w", err)
	}

	if it.Role == DataRole {
		triple.Datum, err = graph.data.GetZero(it.Items[2])
		if err != nil {
			return triple, fmt.Errorf("failed to resolve datum: %w", err)
		}
		return triple, nil
	}

	triple.Object, err = graph.labels.Reverse(it.Items[2])
	if err != nil {
		return triple, fmt.Errorf("failed to resolve object: %w", err)
	}
	return triple, nil
}

// resolveID is like resolve, but first loads the triple with the given id.
func (graph *Graph) resolveID(id impl.ID) (Triple, error) {
	it, ok, err := graph.triples.Get(id)
	if err != nil {
		return Triple{}, fmt.Errorf("failed to load triple: %w", err)
	}
	if !ok {
		return Triple{}, fmt.Errorf("triple %s missing from statement table", id)
	}
	return graph.resolve(id, it)
}

// Properties returns all triples with the given subject.
func (graph *Graph) Properties(subject impl.Label) ([]Triple, error) {
	if graph.triples == nil {
		return nil, ErrClosed
	}

	s, ok, err := graph.labels.Get(subject)
	if err != nil || !ok {
		return nil, err
	}

	var ids []impl.ID
	if err := graph.spoIndex.FetchAll(s, func(_, _, l impl.ID) error {
		ids = append(ids, l)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch properties: %w", err)
	}
	return graph.resolveAll(ids)
}

// Values returns all triples with the given subject and predicate.
func (graph *Graph) Values(subject, predicate impl.Label) ([]Triple, error) {
	if graph.triples == nil {
		return nil, ErrClosed
	}

	s, ok, err := graph.labels.Get(subject)
	if err != nil || !ok {
		return nil, err
	}
	p, ok, err := graph.labels.Get(predicate)
	if err != nil || !ok {
		return nil, err
	}

	var ids []impl.ID
	if err := graph.spoIndex.Fetch(s, p, func(_, l impl.ID) error {
		ids = append(ids, l)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch values: %w", err)
	}
	return graph.resolveAll(ids)
}

// Value returns the first triple with the given subject and predicate, if any.
// Triples are ordered by the time their object was first seen.
func (graph *Graph) Value(subject, predicate impl.Label) (Triple, bool, error) {
	values, err := graph.Values(subject, predicate)
	if err != nil || len(values) == 0 {
		return Triple{}, false, err
	}
	return values[0], true, nil
}

// Subjects returns the subjects of all triples with the given predicate and resource object.
// Each subject is returned once.
func (graph *Graph) Subjects(predicate, object impl.Label) ([]impl.Label, error) {
	if graph.triples == nil {
		return nil, ErrClosed
	}

	p, ok, err := graph.labels.Get(predicate)
	if err != nil || !ok {
		return nil, err
	}
	o, ok, err := graph.labels.Get(object)
	if err != nil || !ok {
		return nil, err
	}

	var ids []impl.ID
	if err := graph.posIndex.Fetch(p, o, func(s, _ impl.ID) error {
		ids = append(ids, s)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch subjects: %w", err)
	}

	subjects := make([]impl.Label, len(ids))
	for i, id := range ids {
		subjects[i], err = graph.labels.Reverse(id)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve subject: %w", err)
		}
	}
	return subjects, nil
}

// Referencing returns all triples that have the given label as their object.
func (graph *Graph) Referencing(object impl.Label) ([]Triple, error) {
	if graph.triples == nil {
		return nil, ErrClosed
	}

	o, ok, err := graph.labels.Get(object)
	if err != nil || !ok {
		return nil, err
	}

	var ids []impl.ID
	if err := graph.ospIndex.FetchAll(o, func(_, _, l impl.ID) error {
		ids = append(ids, l)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch referencing triples: %w", err)
	}
	return graph.resolveAll(ids)
}

func (graph *Graph) resolveAll(ids []impl.ID) ([]Triple, error) {
	triples := make([]Triple, len(ids))
	for i, id := range ids {
		var err error
		triples[i], err = graph.resolveID(id)
		if err != nil {
			return nil, err
		}
	}
	return triples, nil
}

// Triples returns all triples in this graph, ordered by insertion.
func (graph *Graph) Triples() ([]Triple, error) {
	if graph.triples == nil {
		return nil, ErrClosed
	}

	var triples []Triple
	if err := graph.triples.Iterate(func(id impl.ID, it IndexTriple) error {
		triple, err := graph.resolve(id, it)
		if err != nil {
			return err
		}
		triples = append(triples, triple)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to iterate triples: %w", err)
	}

	slices.SortFunc(triples, Triple.Compare)
	return triples, nil
}

// AllSubjects returns every label that occurs as the subject of some triple.
// Each subject is returned once, in order of first insertion.
func (graph *Graph) AllSubjects() ([]impl.Label, error) {
	triples, err := graph.Triples()
	if err != nil {
		return nil, err
	}

	seen := make(map[impl.Label]struct{})
	subjects := make([]impl.Label, 0)
	for _, triple := range triples {
		if _, ok := seen[triple.Subject]; ok {
			continue
		}
		seen[triple.Subject] = struct{}{}
		subjects = append(subjects, triple.Subject)
	}
	return subjects, nil
}

// AllObjects returns the set of labels that occur as a resource object of some triple.
func (graph *Graph) AllObjects() (map[impl.Label]struct{}, error) {
	if graph.triples == nil {
		return nil, ErrClosed
	}

	objects := make(map[impl.Label]struct{})
	if err := graph.triples.Iterate(func(_ impl.ID, it IndexTriple) error {
		if it.Role != ResourceRole {
			return nil
		}
		label, err := graph.labels.Reverse(it.Items[2])
		if err != nil {
			return fmt.Errorf("failed to resolve object: %w", err)
		}
		objects[label] = struct{}{}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to iterate triples: %w", err)
	}
	return objects, nil
}

// Rename changes the label of a node from old to new.
//
// Every triple that has old as its subject or resource object is replaced by the
// same triple using new instead; all other triples are untouched.
// If new already names a node, the two nodes are merged.
// Afterwards old is no longer known to the graph.
func (graph *Graph) Rename(old, new impl.Label) error {
	if graph.triples == nil {
		return ErrClosed
	}
	if old == new {
		return nil
	}

	if _, ok, err := graph.labels.Get(old); err != nil || !ok {
		return err
	}

	// collect everything first, a self-referencing triple shows up twice
	outgoing, err := graph.Properties(old)
	if err != nil {
		return err
	}
	incoming, err := graph.Referencing(old)
	if err != nil {
		return err
	}

	affected := make([]Triple, 0, len(outgoing)+len(incoming))
	seen := make(map[impl.ID]struct{}, cap(affected))
	for _, triple := range slices.Concat(outgoing, incoming) {
		if _, ok := seen[triple.ID]; ok {
			continue
		}
		seen[triple.ID] = struct{}{}
		affected = append(affected, triple)
	}

	if err := graph.RemoveAll(affected); err != nil {
		return fmt.Errorf("failed to remove old triples: %w", err)
	}

	for _, triple := range affected {
		if triple.Subject == old {
			triple.Subject = new
		}
		if !triple.HasDatum() && triple.Object == old {
			triple.Object = new
		}
		if _, err := graph.Add(triple); err != nil {
			return fmt.Errorf("failed to add renamed triple: %w", err)
		}
	}

	if err := graph.labels.Delete(old); err != nil {
		return fmt.Errorf("failed to delete old label: %w", err)
	}

	graph.stats.RenamedNodes++
	return nil
}

// Compact informs the implementation to perform any internal optimizations.
func (graph *Graph) Compact() error {
	if graph.triples == nil {
		return ErrClosed
	}
	return errors.Join(
		graph.labels.Compact(),
		graph.data.Compact(),
		graph.literals.Compact(),
		graph.triples.Compact(),
		graph.spoIndex.Compact(),
		graph.posIndex.Compact(),
		graph.ospIndex.Compact(),
	)
}

// Close closes any storages attached to this graph, and the engine if it implements [io.Closer].
// Closing a closed graph is a no-op.
func (graph *Graph) Close() error {
	errs := make([]error, 0, 8)
	errs = append(errs, graph.labels.Close())

	closeStorage := func(closer io.Closer) {
		if closer != nil {
			errs = append(errs, closer.Close())
		}
	}

	closeStorage(graph.data)
	closeStorage(graph.literals)
	closeStorage(graph.triples)
	closeStorage(graph.spoIndex)
	closeStorage(graph.posIndex)
	closeStorage(graph.ospIndex)

	graph.data = nil
	graph.literals = nil
	graph.triples = nil
	graph.spoIndex = nil
	graph.posIndex = nil
	graph.ospIndex = nil

	if closer, ok := graph.engine.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	graph.engine = nil

	return errors.Join(errs...)
}
