package imap

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/FAU-CDI/catalogproxy/internal/triplestore/impl"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// DiskMap stores the label mapping in two leveldb databases below Path.
//
// Path is expected to be a directory owned by a single graph.
// The databases are created when the map is opened, and opening fails if they already exist.
type DiskMap struct {
	Path string
}

var (
	_ Map = (*DiskMap)(nil)
)

func (de DiskMap) Forward() (HashMap[impl.Label, impl.ID], error) {
	ds, err := OpenDiskStorage(filepath.Join(de.Path, "forward.leveldb"), LabelCodec, IDCodec)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func (de DiskMap) Reverse() (HashMap[impl.ID, impl.Label], error) {
	ds, err := OpenDiskStorage(filepath.Join(de.Path, "reverse.leveldb"), IDCodec, LabelCodec)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// Codec converts values to and from their on-disk representation.
type Codec[T any] struct {
	Marshal   func(value T) ([]byte, error)
	Unmarshal func(dest *T, src []byte) error
}

var (
	// LabelCodec stores labels as their raw bytes.
	LabelCodec = Codec[impl.Label]{
		Marshal: func(label impl.Label) ([]byte, error) {
			return impl.LabelAsByte(label), nil
		},
		Unmarshal: func(dest *impl.Label, src []byte) error {
			*dest = impl.ByteAsLabel(src)
			return nil
		},
	}

	// IDCodec stores ids in their fixed width big-endian form.
	IDCodec = Codec[impl.ID]{
		Marshal:   impl.MarshalID,
		Unmarshal: impl.UnmarshalID,
	}
)

// ErrStoreExists is returned when opening a database at a path that is already in use.
var ErrStoreExists = errors.New("database already exists")

// OpenLevel creates a new leveldb database at path.
//
// Databases are scratch space that only live as long as the graph using them.
// Writes are therefore not synced, and an existing database is never reused.
func OpenLevel(path string) (*leveldb.DB, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		ErrorIfExist: true,
		NoSync:       true,
	})
	if errors.Is(err, fs.ErrExist) {
		return nil, fmt.Errorf("%w: %s", ErrStoreExists, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", path, err)
	}
	return db, nil
}

// OpenDiskStorage creates a new DiskStorage at path, using the given codecs for keys and values.
func OpenDiskStorage[Key comparable, Value any](path string, key Codec[Key], value Codec[Value]) (*DiskStorage[Key, Value], error) {
	db, err := OpenLevel(path)
	if err != nil {
		return nil, err
	}
	return &DiskStorage[Key, Value]{db: db, key: key, value: value}, nil
}

// DiskStorage implements HashMap on top of a leveldb database.
type DiskStorage[Key comparable, Value any] struct {
	db    *leveldb.DB
	key   Codec[Key]
	value Codec[Value]
}

func (ds *DiskStorage[Key, Value]) encodeKey(key Key) ([]byte, error) {
	if ds.db == nil {
		return nil, leveldb.ErrClosed
	}
	data, err := ds.key.Marshal(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key %v: %w", key, err)
	}
	return data, nil
}

func (ds *DiskStorage[Key, Value]) Set(key Key, value Value) error {
	k, err := ds.encodeKey(key)
	if err != nil {
		return err
	}
	v, err := ds.value.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	if err := ds.db.Put(k, v, nil); err != nil {
		return fmt.Errorf("failed to store key: %w", err)
	}
	return nil
}

func (ds *DiskStorage[Key, Value]) Get(key Key) (value Value, ok bool, err error) {
	k, err := ds.encodeKey(key)
	if err != nil {
		return value, false, err
	}

	data, err := ds.db.Get(k, nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return value, false, nil
	case err != nil:
		return value, false, fmt.Errorf("failed to read key: %w", err)
	}

	if err := ds.value.Unmarshal(&value, data); err != nil {
		return value, false, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return value, true, nil
}

func (ds *DiskStorage[Key, Value]) GetZero(key Key) (Value, error) {
	value, _, err := ds.Get(key)
	return value, err
}

func (ds *DiskStorage[Key, Value]) Has(key Key) (bool, error) {
	k, err := ds.encodeKey(key)
	if err != nil {
		return false, err
	}
	ok, err := ds.db.Has(k, nil)
	if err != nil {
		return false, fmt.Errorf("failed to read key: %w", err)
	}
	return ok, nil
}

func (ds *DiskStorage[Key, Value]) Delete(key Key) error {
	k, err := ds.encodeKey(key)
	if err != nil {
		return err
	}
	if err := ds.db.Delete(k, nil); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// scan calls f with the raw bytes of every entry in key order.
func (ds *DiskStorage[Key, Value]) scan(f func(key, value []byte) error) error {
	if ds.db == nil {
		return leveldb.ErrClosed
	}

	it := ds.db.NewIterator(nil, nil)
	defer it.Release()

	for it.Next() {
		if err := f(it.Key(), it.Value()); err != nil {
			return err
		}
	}
	if err := it.Error(); err != nil {
		return fmt.Errorf("failed to iterate database: %w", err)
	}
	return nil
}

// Iterate calls f for every entry, ordered by the encoded key.
func (ds *DiskStorage[Key, Value]) Iterate(f func(Key, Value) error) error {
	return ds.scan(func(k, v []byte) error {
		var (
			key   Key
			value Value
		)
		if err := ds.key.Unmarshal(&key, k); err != nil {
			return fmt.Errorf("failed to unmarshal key: %w", err)
		}
		if err := ds.value.Unmarshal(&value, v); err != nil {
			return fmt.Errorf("failed to unmarshal value: %w", err)
		}
		return f(key, value)
	})
}

func (ds *DiskStorage[Key, Value]) Count() (count uint64, err error) {
	err = ds.scan(func(_, _ []byte) error {
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (ds *DiskStorage[Key, Value]) Compact() error {
	if ds.db == nil {
		return leveldb.ErrClosed
	}
	if err := ds.db.CompactRange(util.Range{}); err != nil {
		return fmt.Errorf("failed to compact database: %w", err)
	}
	return nil
}

// Close closes the underlying database.
// Closing a closed storage is a no-op.
func (ds *DiskStorage[Key, Value]) Close() error {
	if ds.db == nil {
		return nil
	}
	db := ds.db
	ds.db = nil
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
