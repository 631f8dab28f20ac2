package impl

// cspell:words twiesing

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// ID uniquely identifies an interned object within a single graph.
// The zero ID is never handed out, see [ID.Valid].
type ID struct {
	// big endian, so that encoded ids sort like their numeric values
	data [IDLen]byte
}

// IDLen is the size of an encoded ID struct in bytes
const IDLen = 4

// Valid checks if this ID is valid
func (id ID) Valid() bool {
	// most ids are small, so the last byte is the most likely to be set
	for i := IDLen - 1; i >= 0; i-- {
		if id.data[i] != 0 {
			return true
		}
	}
	return false
}

// Reset resets this id to an invalid value
func (id *ID) Reset() {
	id.data = [IDLen]byte{}
}

// Inc increments this ID, and then returns a copy of the new value.
// It is the equivalent of the "++" operator.
//
// When Inc() exceeds the maximum possible value for an ID, panics.
func (id *ID) Inc() (next ID) {
	for i := IDLen - 1; i >= 0; i-- {
		id.data[i]++
		if id.data[i] != 0 {
			return (*id)
		}
	}

	// NOTE(twiesing): a single catalog page never comes close to 2^32 nodes.
	panic("ID.Inc: Overflow (not enough IDs)")
}

// Uint32 returns the numerical value of this id.
func (id ID) Uint32() uint32 {
	return binary.BigEndian.Uint32(id.data[:])
}

// FromUint32 sets the numerical value of this id.
// The id is returned for convenience.
func (id *ID) FromUint32(value uint32) *ID {
	binary.BigEndian.PutUint32(id.data[:], value)
	return id
}

// Compare compares this ID to another id, based on how many times Inc() has been called.
// The result will be 0 if id == other, -1 if id < other, and +1 if id > other.
func (id ID) Compare(other ID) int {
	return bytes.Compare(id.data[:], other.data[:])
}

// String formats this id as a string.
// It is only intended for debugging.
func (id ID) String() string {
	return fmt.Sprintf("ID(%d)", id.Uint32())
}

// Encode encodes id using a big endian encoding into dest.
// dest must be of at least size [IDLen].
func (id ID) Encode(dest []byte) {
	_ = dest[IDLen-1] // boundary hint to compiler
	copy(dest[:], id.data[:])
}

// Decode sets this id to be the values that has been decoded from src.
// src must be of at least size IDLen, or a runtime panic occurs.
func (id *ID) Decode(src []byte) {
	_ = src[IDLen-1] // boundary hint to compiler
	copy(id.data[:], src[:])
}

// MarshalID encodes a single id into a new slice.
func MarshalID(value ID) ([]byte, error) {
	return EncodeIDs(value), nil
}

// EncodeIDs encodes IDs into a new slice of bytes.
// Each id is encoded sequentially using [ID.Encode].
func EncodeIDs(ids ...ID) []byte {
	dst := make([]byte, len(ids)*IDLen)
	for i := range ids {
		ids[i].Encode(dst[i*IDLen:])
	}
	return dst
}

// DecodeID decodes the id with the given index from a slice produced by [EncodeIDs].
func DecodeID(src []byte, index int) (id ID) {
	id.Decode(src[index*IDLen:])
	return
}

var errUnmarshal = errors.New("UnmarshalID: invalid length")

// UnmarshalID behaves like [dest.Decode], but produces an error
// when there are insufficient number of bytes in src.
func UnmarshalID(dest *ID, src []byte) error {
	if len(src) < IDLen {
		return errUnmarshal
	}
	dest.Decode(src)
	return nil
}

// UnmarshalIDs is like UnmarshalID but decodes into every destination passed.
func UnmarshalIDs(src []byte, dests ...*ID) error {
	if len(src) < len(dests)*IDLen {
		return errUnmarshal
	}
	for i, dest := range dests {
		dest.Decode(src[i*IDLen:])
	}
	return nil
}
