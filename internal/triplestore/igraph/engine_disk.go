package igraph

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/FAU-CDI/catalogproxy/internal/triplestore/imap"
	"github.com/FAU-CDI/catalogproxy/internal/triplestore/impl"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// DiskEngine represents an engine that stores everything on disk
type DiskEngine struct {
	imap.DiskMap

	// Temporary indicates that Path should be deleted when the engine is closed.
	Temporary bool
}

var (
	datumCodec  = imap.Codec[impl.Datum]{Marshal: impl.DatumAsByte, Unmarshal: impl.ByteAsDatum}
	tripleCodec = imap.Codec[IndexTriple]{Marshal: MarshalTriple, Unmarshal: UnmarshalTriple}
)

func (de DiskEngine) Data() (imap.HashMap[impl.ID, impl.Datum], error) {
	ds, err := imap.OpenDiskStorage(filepath.Join(de.Path, "data.leveldb"), imap.IDCodec, datumCodec)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func (de DiskEngine) Literals() (imap.HashMap[impl.Datum, impl.ID], error) {
	ds, err := imap.OpenDiskStorage(filepath.Join(de.Path, "literals.leveldb"), datumCodec, imap.IDCodec)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func (de DiskEngine) Triples() (imap.HashMap[impl.ID, IndexTriple], error) {
	ds, err := imap.OpenDiskStorage(filepath.Join(de.Path, "triples.leveldb"), imap.IDCodec, tripleCodec)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func (de DiskEngine) SPOIndex() (ThreeStorage, error) {
	return NewDiskHash(filepath.Join(de.Path, "spo.leveldb"))
}
func (de DiskEngine) POSIndex() (ThreeStorage, error) {
	return NewDiskHash(filepath.Join(de.Path, "pos.leveldb"))
}
func (de DiskEngine) OSPIndex() (ThreeStorage, error) {
	return NewDiskHash(filepath.Join(de.Path, "osp.leveldb"))
}

// Close removes the directory of a temporary engine.
func (de DiskEngine) Close() error {
	if !de.Temporary {
		return nil
	}
	if err := os.RemoveAll(de.Path); err != nil {
		return fmt.Errorf("failed to remove temporary directory: %w", err)
	}
	return nil
}

// NewDiskHash creates a new ThreeDiskHash at the given path.
// The path must not yet hold a database.
func NewDiskHash(path string) (ThreeStorage, error) {
	level, err := imap.OpenLevel(path)
	if err != nil {
		return nil, err
	}
	return &ThreeDiskHash{DB: level}, nil
}

// ThreeDiskHash implements ThreeStorage on disk.
//
// Keys are the big-endian encoded (a, b, c) ids, so that leveldb's byte ordering
// matches the ordering of ids.
type ThreeDiskHash struct {
	DB *leveldb.DB
}

func (tlm *ThreeDiskHash) Add(a, b, c, l impl.ID) (old impl.ID, existed bool, err error) {
	key := impl.EncodeIDs(a, b, c)

	value, err := tlm.DB.Get(key, nil)
	switch {
	case err == nil:
		if err := impl.UnmarshalID(&old, value); err != nil {
			return old, false, err
		}
		return old, true, nil
	case !errors.Is(err, leveldb.ErrNotFound):
		return old, false, fmt.Errorf("failed to get key: %w", err)
	}

	if err := tlm.DB.Put(key, impl.EncodeIDs(l), nil); err != nil {
		return old, false, fmt.Errorf("failed to put key: %w", err)
	}
	return l, false, nil
}

func (tlm *ThreeDiskHash) Delete(a, b, c impl.ID) error {
	if err := tlm.DB.Delete(impl.EncodeIDs(a, b, c), nil); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

func (tlm *ThreeDiskHash) Has(a, b, c impl.ID) (id impl.ID, ok bool, err error) {
	value, err := tlm.DB.Get(impl.EncodeIDs(a, b, c), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return id, false, nil
	}
	if err != nil {
		return id, false, fmt.Errorf("failed to get key: %w", err)
	}

	if err := impl.UnmarshalID(&id, value); err != nil {
		return id, false, err
	}
	return id, true, nil
}

func (tlm *ThreeDiskHash) Fetch(a, b impl.ID, f func(c, l impl.ID) error) error {
	iterator := tlm.DB.NewIterator(util.BytesPrefix(impl.EncodeIDs(a, b)), nil)
	defer iterator.Release()

	for iterator.Next() {
		c := impl.DecodeID(iterator.Key(), 2)
		l := impl.DecodeID(iterator.Value(), 0)
		if err := f(c, l); err != nil {
			return err
		}
	}

	return iterator.Error()
}

func (tlm *ThreeDiskHash) FetchAll(a impl.ID, f func(b, c, l impl.ID) error) error {
	iterator := tlm.DB.NewIterator(util.BytesPrefix(impl.EncodeIDs(a)), nil)
	defer iterator.Release()

	for iterator.Next() {
		key := iterator.Key()
		b := impl.DecodeID(key, 1)
		c := impl.DecodeID(key, 2)
		l := impl.DecodeID(iterator.Value(), 0)
		if err := f(b, c, l); err != nil {
			return err
		}
	}

	return iterator.Error()
}

func (tlm *ThreeDiskHash) Count() (total int64, err error) {
	iterator := tlm.DB.NewIterator(nil, nil)
	defer iterator.Release()

	for iterator.Next() {
		total++
	}

	if err := iterator.Error(); err != nil {
		return 0, err
	}

	return total, nil
}

func (tlm *ThreeDiskHash) Compact() error {
	return tlm.DB.CompactRange(util.Range{})
}

func (tlm *ThreeDiskHash) Close() (err error) {
	if tlm.DB != nil {
		err = tlm.DB.Close()
		tlm.DB = nil
	}
	return
}
