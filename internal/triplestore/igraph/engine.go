package igraph

import (
	"fmt"
	"io"
	"os"

	"github.com/FAU-CDI/catalogproxy/internal/triplestore/imap"
	"github.com/FAU-CDI/catalogproxy/internal/triplestore/impl"
)

// cspell:words igraph imap

// Engine creates the storages backing a [Graph].
//
// An engine may additionally implement [io.Closer].
// In that case it is closed once the graph using it has been closed.
type Engine interface {
	imap.Map

	Data() (imap.HashMap[impl.ID, impl.Datum], error)     // literal ids to their values
	Literals() (imap.HashMap[impl.Datum, impl.ID], error) // literal values to their ids
	Triples() (imap.HashMap[impl.ID, IndexTriple], error) // triple ids to their members

	SPOIndex() (ThreeStorage, error) // <subject> <predicate> <object>
	POSIndex() (ThreeStorage, error) // <predicate> <object> <subject>
	OSPIndex() (ThreeStorage, error) // <object> <subject> <predicate>, resource objects only
}

// ThreeStorage stores a mapping from (a, b, c) id triples to a triple id l.
type ThreeStorage interface {
	io.Closer

	// Compact informs the storage to perform any internal optimizations.
	Compact() error

	// Add stores the mapping (a, b, c) => l.
	// If a mapping for (a, b, c) already exists, it is left untouched and the old value is returned with existed = true.
	Add(a, b, c, l impl.ID) (old impl.ID, existed bool, err error)

	// Delete removes the mapping for (a, b, c), if any.
	Delete(a, b, c impl.ID) error

	// Has returns the value stored for (a, b, c), if any.
	Has(a, b, c impl.ID) (impl.ID, bool, error)

	// Fetch calls f for every (c, l) stored below (a, b), ordered by c.
	Fetch(a, b impl.ID, f func(c, l impl.ID) error) error

	// FetchAll calls f for every (b, c, l) stored below a, ordered by b and then c.
	FetchAll(a impl.ID, f func(b, c, l impl.ID) error) error

	// Count returns the total number of mappings.
	Count() (int64, error)
}

// NewEngine creates an engine that stores data in a fresh temporary directory below dir.
// When dir is the empty string, stores data in memory.
//
// Temporary directories are removed when the engine is closed.
func NewEngine(dir string) (Engine, error) {
	if dir == "" {
		return &MemoryEngine{}, nil
	}

	path, err := os.MkdirTemp(dir, "graph-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary directory: %w", err)
	}

	return &DiskEngine{
		DiskMap:   imap.DiskMap{Path: path},
		Temporary: true,
	}, nil
}
