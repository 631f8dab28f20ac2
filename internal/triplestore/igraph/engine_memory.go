package igraph

import (
	"maps"
	"slices"

	"github.com/FAU-CDI/catalogproxy/internal/triplestore/imap"
	"github.com/FAU-CDI/catalogproxy/internal/triplestore/impl"
)

// MemoryEngine represents an engine that stores everything in memory.
type MemoryEngine struct {
	imap.MemoryMap
}

func (MemoryEngine) Data() (imap.HashMap[impl.ID, impl.Datum], error) {
	ms := imap.MakeMemory[impl.ID, impl.Datum](0)
	return &ms, nil
}
func (MemoryEngine) Literals() (imap.HashMap[impl.Datum, impl.ID], error) {
	ms := imap.MakeMemory[impl.Datum, impl.ID](0)
	return &ms, nil
}
func (MemoryEngine) Triples() (imap.HashMap[impl.ID, IndexTriple], error) {
	ms := imap.MakeMemory[impl.ID, IndexTriple](0)
	return &ms, nil
}
func (MemoryEngine) SPOIndex() (ThreeStorage, error) {
	th := make(ThreeHash)
	return &th, nil
}
func (MemoryEngine) POSIndex() (ThreeStorage, error) {
	th := make(ThreeHash)
	return &th, nil
}
func (MemoryEngine) OSPIndex() (ThreeStorage, error) {
	th := make(ThreeHash)
	return &th, nil
}

// ThreeHash implements ThreeStorage in memory.
type ThreeHash map[impl.ID]map[impl.ID]map[impl.ID]impl.ID

func (th *ThreeHash) Compact() error {
	return nil // do nothing
}

func (th ThreeHash) Add(a, b, c, l impl.ID) (old impl.ID, existed bool, err error) {
	if th[a] == nil {
		th[a] = make(map[impl.ID]map[impl.ID]impl.ID)
	}
	if th[a][b] == nil {
		th[a][b] = make(map[impl.ID]impl.ID, 1)
	}

	old, existed = th[a][b][c]
	if existed {
		return old, true, nil
	}
	th[a][b][c] = l
	return l, false, nil
}

func (th ThreeHash) Delete(a, b, c impl.ID) error {
	cs := th[a][b]
	if cs == nil {
		return nil
	}
	delete(cs, c)

	// drop empty levels, so that FetchAll does not report stale keys
	if len(cs) == 0 {
		delete(th[a], b)
	}
	if len(th[a]) == 0 {
		delete(th, a)
	}
	return nil
}

func (th ThreeHash) Has(a, b, c impl.ID) (impl.ID, bool, error) {
	l, ok := th[a][b][c]
	return l, ok, nil
}

func (th ThreeHash) Fetch(a, b impl.ID, f func(c, l impl.ID) error) error {
	cs := th[a][b]
	for _, c := range sortedKeys(cs) {
		if err := f(c, cs[c]); err != nil {
			return err
		}
	}
	return nil
}

func (th ThreeHash) FetchAll(a impl.ID, f func(b, c, l impl.ID) error) error {
	bs := th[a]
	for _, b := range sortedKeys(bs) {
		cs := bs[b]
		for _, c := range sortedKeys(cs) {
			if err := f(b, c, cs[c]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (th ThreeHash) Count() (total int64, err error) {
	for _, bs := range th {
		for _, cs := range bs {
			total += int64(len(cs))
		}
	}
	return total, nil
}

func (th *ThreeHash) Close() error {
	*th = nil
	return nil
}

// sortedKeys returns the keys of mp in ascending order.
// The keys are copied, so mp may be modified while iterating the result.
func sortedKeys[Value any](mp map[impl.ID]Value) []impl.ID {
	return slices.SortedFunc(maps.Keys(mp), impl.ID.Compare)
}
