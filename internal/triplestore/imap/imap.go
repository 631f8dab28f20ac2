// Package imap interns labels into compact identifiers.
package imap

import (
	"errors"
	"fmt"

	"github.com/FAU-CDI/catalogproxy/internal/triplestore/impl"
)

// cspell:words imap

// IMap holds forward and reverse mapping from Labels to IDs.
// An IMap may be read concurrently; however any operations which change internal state are not safe to access concurrently.
//
// The zero map is not ready for use; it should be initialized using a call to [IMap.Reset].
type IMap struct {
	forward HashMap[impl.Label, impl.ID] // mapping from labels to their ids
	reverse HashMap[impl.ID, impl.Label] // mapping from ids back to their labels

	id impl.ID // last id handed out
}

// Reset resets this IMap to be empty, closing any previously opened storages.
func (mp *IMap) Reset(engine Map) (err error) {
	if err := mp.Close(); err != nil {
		return err
	}

	mp.forward, err = engine.Forward()
	if err != nil {
		return fmt.Errorf("failed to open forward storage: %w", err)
	}

	mp.reverse, err = engine.Reverse()
	if err != nil {
		e2 := mp.forward.Close()
		mp.forward = nil
		return errors.Join(fmt.Errorf("failed to open reverse storage: %w", err), e2)
	}

	mp.id.Reset()
	return nil
}

// Next returns a new unused id within this map.
// It is always valid.
//
// Callers may use Next to allocate ids for objects that are not labels,
// these never collide with ids of labels.
func (mp *IMap) Next() impl.ID {
	return mp.id.Inc()
}

// Compact indicates to the implementation to perform any optimization of internal data structures.
func (mp *IMap) Compact() error {
	return errors.Join(
		mp.forward.Compact(),
		mp.reverse.Compact(),
	)
}

// Add inserts label into this IMap and returns the corresponding id.
// When label already exists in this IMap, returns the existing ID.
func (mp *IMap) Add(label impl.Label) (id impl.ID, err error) {
	id, _, err = mp.AddNew(label)
	return
}

// AddNew behaves like Add, except additionally returns a boolean indicating if the returned id existed previously.
func (mp *IMap) AddNew(label impl.Label) (id impl.ID, old bool, err error) {
	id, old, err = mp.forward.Get(label)
	if err != nil || old {
		return
	}

	id = mp.id.Inc()

	if err := mp.forward.Set(label, id); err != nil {
		return id, false, fmt.Errorf("failed to store forward mapping: %w", err)
	}
	if err := mp.reverse.Set(id, label); err != nil {
		return id, false, fmt.Errorf("failed to store reverse mapping: %w", err)
	}
	return id, false, nil
}

// Get behaves like Add, but in case the label has no associated mappings returns ok = false and does not modify the state.
func (mp *IMap) Get(label impl.Label) (id impl.ID, ok bool, err error) {
	return mp.forward.Get(label)
}

// Forward returns the id corresponding to the given label.
//
// If the label is not contained in this map, the zero ID is returned.
// The zero ID is never returned for a valid id.
func (mp *IMap) Forward(label impl.Label) (impl.ID, error) {
	return mp.forward.GetZero(label)
}

// Reverse returns the label corresponding to the given id.
// When id is not contained in this map, the zero value of the label type is contained.
func (mp *IMap) Reverse(id impl.ID) (impl.Label, error) {
	return mp.reverse.GetZero(id)
}

// Delete removes the label and its id from this map.
// The id is never handed out again.
func (mp *IMap) Delete(label impl.Label) error {
	id, ok, err := mp.forward.Get(label)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return errors.Join(
		mp.forward.Delete(label),
		mp.reverse.Delete(id),
	)
}

// Count returns the number of labels in this map.
func (mp *IMap) Count() (uint64, error) {
	return mp.forward.Count()
}

// Close closes any storages related to this IMap.
//
// Calling close multiple times results in err = nil.
func (mp *IMap) Close() error {
	var errs [2]error

	if mp.forward != nil {
		errs[0] = mp.forward.Close()
		mp.forward = nil
	}
	if mp.reverse != nil {
		errs[1] = mp.reverse.Close()
		mp.reverse = nil
	}

	return errors.Join(errs[:]...)
}
