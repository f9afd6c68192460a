// Package memorydb implements an ephemeral accdb.KeyValueStore backed by a
// plain Go map, used as the "light" store backend (spec §4.3) that actually
// honors node removal.
package memorydb

import (
	"errors"
	"sync"

	"github.com/okonomi-labs/go-mpt/accdb"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("memorydb: key not found")

// MemDB is an ephemeral key-value store. Apart from basic data storage
// functionality it also supports batch writes.
type MemDB struct {
	db   map[string][]byte
	lock sync.RWMutex
}

// New returns a wrapped map with all the required database interface methods
// implemented.
func New() *MemDB {
	return &MemDB{
		db: make(map[string][]byte),
	}
}

// Has reports whether key is present.
func (d *MemDB) Has(key []byte) (bool, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	_, ok := d.db[string(key)]
	return ok, nil
}

// Get returns the value stored under key.
func (d *MemDB) Get(key []byte) ([]byte, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	v, ok := d.db[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	cpy := make([]byte, len(v))
	copy(cpy, v)
	return cpy, nil
}

// Put stores value under key.
func (d *MemDB) Put(key []byte, value []byte) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	cpy := make([]byte, len(value))
	copy(cpy, value)
	d.db[string(key)] = cpy
	return nil
}

// Delete removes key.
func (d *MemDB) Delete(key []byte) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	delete(d.db, string(key))
	return nil
}

// Close is a no-op; MemDB holds no external resources.
func (d *MemDB) Close() error { return nil }

// NewBatch returns a write buffer that commits to d on Submit.
func (d *MemDB) NewBatch() accdb.Batch {
	return &memBatch{db: d}
}

type keyvalue struct {
	key    []byte
	value  []byte
	delete bool
}

// memBatch buffers writes until Submit commits them to the parent MemDB in
// one locked pass, mirroring accdb.Batch's host-database batching contract.
type memBatch struct {
	db     *MemDB
	writes []keyvalue
	size   int
}

func (b *memBatch) Put(key, value []byte) error {
	b.writes = append(b.writes, keyvalue{append([]byte{}, key...), append([]byte{}, value...), false})
	b.size += len(key) + len(value)
	return nil
}

func (b *memBatch) Delete(key []byte) error {
	b.writes = append(b.writes, keyvalue{append([]byte{}, key...), nil, true})
	b.size += len(key)
	return nil
}

func (b *memBatch) ValueSize() int { return b.size }

// Submit commits every buffered write to the host MemDB.
func (b *memBatch) Submit() error {
	b.db.lock.Lock()
	defer b.db.lock.Unlock()
	for _, kv := range b.writes {
		if kv.delete {
			delete(b.db.db, string(kv.key))
			continue
		}
		b.db.db[string(kv.key)] = kv.value
	}
	return nil
}

func (b *memBatch) Reset() {
	b.writes = b.writes[:0]
	b.size = 0
}

// Write replays the batch's buffered operations into w.
func (b *memBatch) Write(w accdb.KeyValueWriter) error {
	for _, kv := range b.writes {
		if kv.delete {
			if err := w.Delete(kv.key); err != nil {
				return err
			}
			continue
		}
		if err := w.Put(kv.key, kv.value); err != nil {
			return err
		}
	}
	return nil
}
