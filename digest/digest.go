// Package digest provides the default byte-digest function used to build
// hashtable hash functions: a good, non-cryptographic, process-stable hash
// of arbitrary byte data, seedable so callers can decorrelate independent
// tables.
package digest

import "github.com/cespare/xxhash/v2"

// Sum64 returns a pointer-sized (64-bit) hash of data, mixed with seed.
// It is built on xxhash, the same fast non-cryptographic digest the wider
// ecosystem (e.g. sharded/ring-indexed store backends) uses for exactly
// this purpose; xxhash's Sum64 takes no seed, so one is folded in with a
// boost-style hash-combine step (golden-ratio constant plus shifted
// copies of the hash).
func Sum64(seed uint64, data []byte) uint64 {
	h := xxhash.Sum64(data)
	h ^= seed + 0x9e3779b97f4a7c15 + (h << 6) + (h >> 2)
	return h
}

// Sum64String is Sum64 for a string, avoiding a copy into []byte.
func Sum64String(seed uint64, s string) uint64 {
	h := xxhash.Sum64String(s)
	h ^= seed + 0x9e3779b97f4a7c15 + (h << 6) + (h >> 2)
	return h
}
