// Package hashtable implements an open-addressed hash table with linear
// probing, tombstone deletion, and a two-phase plan/commit insertion API
// that lets a caller look up a key once and reuse the result to either
// read an existing record or place a new one, without probing twice.
package hashtable

import (
	"unsafe"

	"github.com/dacapoday/coredata"
)

// Status is the shared result taxonomy; see coredata.Status.
type Status = coredata.Status

const (
	StatusSuccess     = coredata.StatusSuccess
	StatusOutOfMemory = coredata.StatusOutOfMemory
	StatusExists      = coredata.StatusExists
	StatusNotFound    = coredata.StatusNotFound
)

// minEntries is the smallest table size, and the floor shrink() will not
// cross.
const minEntries = 4

// slotState tags an entry slot. The source structure packs this into a
// null value pointer plus a hash sentinel (0xDEAD for a tombstone, 0 for
// never-used); Go generics give no way to ask an arbitrary R "are you
// nil", so this uses an explicit tag instead of that representation
// trick.
type slotState uint8

const (
	slotEmpty slotState = iota
	slotTombstone
	slotOccupied
)

type entry[R any] struct {
	state slotState
	hash  uint64
	value R
}

// KeyFunc extracts the key a record is addressed by.
type KeyFunc[R, K any] func(R) K

// HashFunc computes a full (non-folded) hash code for a key.
type HashFunc[K any] func(K) uint64

// EqualFunc is the key equality predicate.
type EqualFunc[K any] func(a, b K) bool

// HashTable is an open-addressed set of records of type R, addressed by
// a key of type K extracted via KeyFunc. Not safe for concurrent use.
type HashTable[R, K any] struct {
	allocator coredata.Allocator
	keyOf     KeyFunc[R, K]
	hashOf    HashFunc[K]
	equalOf   EqualFunc[K]
	count     uint64
	mask      uint64
	nEntries  uint64
	entries   []entry[R]
}

func entriesByteSize[R any](n uint64) uintptr {
	var z entry[R]
	return unsafe.Sizeof(z) * uintptr(n)
}

// New constructs an empty HashTable. allocator may be nil
// (DefaultAllocator). It reports StatusOutOfMemory if the allocator
// declines the initial table allocation.
func New[R, K any](allocator coredata.Allocator, keyOf KeyFunc[R, K], hashOf HashFunc[K], equalOf EqualFunc[K]) (*HashTable[R, K], Status) {
	t := &HashTable[R, K]{
		allocator: coredata.Resolve(allocator),
		keyOf:     keyOf,
		hashOf:    hashOf,
		equalOf:   equalOf,
		nEntries:  minEntries,
		mask:      minEntries - 1,
	}
	if !t.allocator.Reserve(entriesByteSize[R](minEntries)) {
		return nil, StatusOutOfMemory
	}
	t.entries = make([]entry[R], minEntries)
	return t, StatusSuccess
}

// Size returns the number of records currently stored.
func (t *HashTable[R, K]) Size() int {
	return int(t.count)
}

func (t *HashTable[R, K]) nextIndex(i uint64) uint64 {
	if i == t.mask {
		return 0
	}
	return i + 1
}

func isMatch[R, K any](t *HashTable[R, K], e *entry[R], code uint64, key K) bool {
	return e.state == slotOccupied && e.hash == code && t.equalOf(t.keyOf(e.value), key)
}

// findEntry returns the index at which key is stored, or the index of
// the first never-used slot on the probe path if it is absent. It probes
// past occupied non-matching slots and past tombstones alike, stopping
// only at a slot that has never held an entry.
func (t *HashTable[R, K]) findEntry(h, code uint64, key K) uint64 {
	i := h
	for t.entries[i].state != slotEmpty && !isMatch(t, &t.entries[i], code, key) {
		i = t.nextIndex(i)
	}
	return i
}

// Find returns the record stored under key, if any.
func (t *HashTable[R, K]) Find(key K) (R, bool) {
	code := t.hashOf(key)
	i := t.findEntry(code&t.mask, code, key)
	if t.entries[i].state != slotOccupied {
		var zero R
		return zero, false
	}
	return t.entries[i].value, true
}

// Insert adds record, keyed by keyOf(record). It reports StatusExists
// without modifying the table if an equal key is already present, and
// StatusOutOfMemory, also leaving the table unchanged, if inserting would
// require a grow the allocator declined.
func (t *HashTable[R, K]) Insert(record R) Status {
	return t.InsertAt(t.PlanInsert(t.keyOf(record)), record)
}

// Remove deletes the record stored under key, if any, returning it.
func (t *HashTable[R, K]) Remove(key K) (R, Status) {
	i := t.FindIter(key)
	if i == t.End() {
		var zero R
		return zero, StatusNotFound
	}
	return t.Erase(i)
}

// Clear empties the table back to its initial minimum size. Unlike the
// source structure (which only ever frees a hash table outright), this
// table offers Clear for a reusable reset, as btree and ranktree do; this hash
// table owns no resources beyond its entry array, so Clear and Free
// coincide except for the array being eagerly reallocated.
func (t *HashTable[R, K]) Clear() Status {
	size := entriesByteSize[R](minEntries)
	if !t.allocator.Reserve(size) {
		return StatusOutOfMemory
	}
	t.allocator.Release(entriesByteSize[R](t.nEntries))
	t.entries = make([]entry[R], minEntries)
	t.nEntries = minEntries
	t.mask = minEntries - 1
	t.count = 0
	return StatusSuccess
}

// Free discards the table's storage. The table must not be used
// afterward except via a fresh New.
func (t *HashTable[R, K]) Free() {
	t.allocator.Release(entriesByteSize[R](t.nEntries))
	t.entries = nil
	t.nEntries = 0
	t.mask = 0
	t.count = 0
}
