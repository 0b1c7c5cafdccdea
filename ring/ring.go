// Package ring implements a lock-free single-producer/single-consumer
// byte ring buffer. Exactly one goroutine may call the write-side
// operations (Write, BeginWrite/AmendWrite/CommitWrite, WriteSpace) and
// exactly one (which may differ from the writer) may call the read-side
// operations (Read, Peek, Skip, ReadSpace); under that discipline no
// locking is needed; each side only ever atomically stores the head it
// owns and atomically loads the head the other side owns.
package ring

import (
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/dacapoday/coredata"
)

// Status is the shared result taxonomy; see coredata.Status.
type Status = coredata.Status

const (
	StatusSuccess      = coredata.StatusSuccess
	StatusOutOfMemory  = coredata.StatusOutOfMemory
	StatusNoSpace      = coredata.StatusNoSpace
	StatusNotSupported = coredata.StatusNotSupported
)

// Ring is a fixed-capacity byte ring buffer sized up to the next power of
// two, which lets every index computation use a mask instead of a
// modulo.
type Ring struct {
	allocator coredata.Allocator
	buf       []byte
	size      uint32 // capacity in bytes, a power of two
	sizeMask  uint32
	writeHead atomic.Uint32
	readHead  atomic.Uint32
}

func nextPowerOfTwo(size uint32) uint32 {
	size--
	size |= size >> 1
	size |= size >> 2
	size |= size >> 4
	size |= size >> 8
	size |= size >> 16
	size++
	return size
}

// New constructs a Ring with at least sizeHint bytes of capacity, rounded
// up to the next power of two. allocator may be nil (DefaultAllocator).
func New(allocator coredata.Allocator, sizeHint uint32) (*Ring, Status) {
	a := coredata.Resolve(allocator)
	size := nextPowerOfTwo(sizeHint)
	if !a.Reserve(uintptr(size)) {
		return nil, StatusOutOfMemory
	}
	return &Ring{
		allocator: a,
		buf:       make([]byte, size),
		size:      size,
		sizeMask:  size - 1,
	}, StatusSuccess
}

// Free releases the ring's buffer budget back to its allocator.
func (r *Ring) Free() {
	r.allocator.Release(uintptr(r.size))
}

// Mlock locks the ring's buffer into physical memory, preventing it from
// being paged out, via mlock(2). It reports StatusNotSupported whenever
// the mlock call fails, whatever the reason.
func (r *Ring) Mlock() Status {
	if err := unix.Mlock(r.buf); err != nil {
		return StatusNotSupported
	}
	return StatusSuccess
}

// Reset empties the ring without reallocating it. Unlike the read-side and
// write-side operations, it must not be called concurrently with any
// other method.
func (r *Ring) Reset() {
	r.writeHead.Store(0)
	r.readHead.Store(0)
}

// Capacity returns the maximum number of bytes the ring can hold at
// once: one less than its backing buffer's size, since a full ring is
// indistinguishable from an empty one unless one slot is always kept
// vacant.
func (r *Ring) Capacity() uint32 {
	return r.size - 1
}

func readSpace(r *Ring, readHead, writeHead uint32) uint32 {
	return (writeHead - readHead) & r.sizeMask
}

func writeSpace(r *Ring, readHead, writeHead uint32) uint32 {
	return (readHead - writeHead - 1) & r.sizeMask
}

// ReadSpace returns the number of bytes currently available to read.
func (r *Ring) ReadSpace() uint32 {
	w := r.writeHead.Load()
	return readSpace(r, r.readHead.Load(), w)
}

// WriteSpace returns the number of bytes currently available to write.
func (r *Ring) WriteSpace() uint32 {
	rd := r.readHead.Load()
	return writeSpace(r, rd, r.writeHead.Load())
}

func peekInternal(r *Ring, readHead, writeHead, size uint32, dst []byte) uint32 {
	if readSpace(r, readHead, writeHead) < size {
		return 0
	}
	if readHead+size < r.size {
		copy(dst[:size], r.buf[readHead:readHead+size])
	} else {
		firstSize := r.size - readHead
		copy(dst[:firstSize], r.buf[readHead:])
		copy(dst[firstSize:size], r.buf[:size-firstSize])
	}
	return size
}

// Peek copies len(dst) bytes from the read position into dst without
// advancing it. It returns 0 (and copies nothing) if fewer bytes than
// that are available.
func (r *Ring) Peek(dst []byte) uint32 {
	w := r.writeHead.Load()
	return peekInternal(r, r.readHead.Load(), w, uint32(len(dst)), dst)
}

// Read copies len(dst) bytes from the ring into dst and advances the
// read position past them. It returns 0 (and copies nothing, and does
// not advance) if fewer bytes than that are available.
func (r *Ring) Read(dst []byte) uint32 {
	size := uint32(len(dst))
	w := r.writeHead.Load()
	rd := r.readHead.Load()
	if peekInternal(r, rd, w, size, dst) == 0 {
		return 0
	}
	r.readHead.Store((rd + size) & r.sizeMask)
	return size
}

// Skip discards size unread bytes without copying them. It returns 0 (and
// advances nothing) if fewer bytes than that are available.
func (r *Ring) Skip(size uint32) uint32 {
	w := r.writeHead.Load()
	rd := r.readHead.Load()
	if readSpace(r, rd, w) < size {
		return 0
	}
	r.readHead.Store((rd + size) & r.sizeMask)
	return size
}
