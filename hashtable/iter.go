package hashtable

// Iter is an index into the table's entry array, the same representation
// the source structure uses (a plain size_t), rather than a pointer or
// struct — cheap to copy and to compare with ==.
type Iter uint64

// Begin returns an iterator at the first occupied slot, or End() if the
// table is empty.
func (t *HashTable[R, K]) Begin() Iter {
	if len(t.entries) > 0 && t.entries[0].state == slotOccupied {
		return 0
	}
	return t.Next(0)
}

// End returns the conventional end sentinel, one past the last slot.
func (t *HashTable[R, K]) End() Iter {
	return Iter(t.nEntries)
}

// Next returns the next occupied slot at or after i+1, or End() if none
// remains.
func (t *HashTable[R, K]) Next(i Iter) Iter {
	for {
		i++
		if uint64(i) >= t.nEntries || t.entries[i].state == slotOccupied {
			return i
		}
	}
}

// Get returns the record at i, or ok=false if i is End() or otherwise not
// an occupied slot.
func (t *HashTable[R, K]) Get(i Iter) (value R, ok bool) {
	if uint64(i) >= t.nEntries || t.entries[i].state != slotOccupied {
		return value, false
	}
	return t.entries[i].value, true
}

// FindIter returns an iterator at the slot holding key, or End() if
// absent.
func (t *HashTable[R, K]) FindIter(key K) Iter {
	code := t.hashOf(key)
	i := t.findEntry(code&t.mask, code, key)
	if t.entries[i].state != slotOccupied {
		return t.End()
	}
	return Iter(i)
}

// Erase removes the record at i, returning it. It reports StatusNotFound,
// leaving the table unchanged, if i does not reference an occupied slot.
// Erasing always leaves a tombstone, never a bare empty slot, so later
// probes that passed through this position keep working.
func (t *HashTable[R, K]) Erase(i Iter) (R, Status) {
	idx := uint64(i)
	if idx >= t.nEntries || t.entries[idx].state != slotOccupied {
		var zero R
		return zero, StatusNotFound
	}

	removed := t.entries[idx].value
	t.entries[idx] = entry[R]{state: slotTombstone, hash: tombstoneHash}
	t.count--

	if t.count < t.nEntries/4 {
		t.shrink()
	}
	return removed, StatusSuccess
}

// tombstoneHash is stored (though never consulted) on a tombstone slot
// for parity with the source representation's sentinel hash value; the
// explicit slotTombstone tag is what this port actually dispatches on.
const tombstoneHash = 0xDEAD
