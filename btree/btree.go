// Package btree implements an ordered B-tree with cache/page-sized nodes,
// preemptive split-on-insert and merge-on-remove (so no operation ever
// needs to rebalance back up past the node it just visited), a
// fixed-depth stack-allocatable iterator, and a weak-order wildcard
// lower-bound search.
package btree

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
	StatusOverflow    = coredata.StatusOverflow
)

// PageSize is the target node size in bytes that leaf and internal node
// capacities are derived from, matching the "one page, default 4096
// bytes" sizing in the source specification.
const PageSize = 4096

// MaxHeight bounds the number of (node, index) frames an Iterator can
// hold. It is a fixed array, not a slice, so Iterator stays POD and
// stack-allocatable; at the default PageSize a tree of height MaxHeight
// holds many orders of magnitude more elements than any real caller will
// store, so this is not a practical limit — Insert reports
// StatusOverflow rather than silently growing past it.
const MaxHeight = 6

// Comparator is a strict total order over T, used by Insert/Find/Remove.
// Go closures subsume the C API's user_data parameter.
type Comparator[T any] func(a, b T) int

// BTree is an ordered collection of T with a caller-supplied comparator.
// Not safe for concurrent use.
type BTree[T any] struct {
	allocator               coredata.Allocator
	cmp                     Comparator[T]
	root                    *node[T]
	size                    int
	height                  int
	leafCap, internalCap    int
}

// New constructs an empty BTree. allocator may be nil (DefaultAllocator).
func New[T any](allocator coredata.Allocator, cmp Comparator[T]) *BTree[T] {
	leafCap := leafCapacity[T]()
	internalCap := leafCap / 2
	if internalCap < 2 {
		internalCap = 2
	}
	return &BTree[T]{
		allocator:   coredata.Resolve(allocator),
		cmp:         cmp,
		leafCap:     leafCap,
		internalCap: internalCap,
	}
}

// leafCapacity derives the number of T values a page-sized leaf node can
// hold: the page minus a small header, divided by the element size. Go
// cannot express a C union/variable-length-array node as a literal
// PageSize-byte block (node storage here is slice-backed, not an inline
// byte array), so this reproduces the spec's sizing formula —
// capacity computed from page size and payload size — without claiming
// byte-identical memory layout to a C translation unit.
func leafCapacity[T any]() int {
	var z T
	itemSize := int(unsafe.Sizeof(z))
	if itemSize == 0 {
		itemSize = 1
	}
	const header = 16 // isLeaf + count, rounded up
	cap := (PageSize - header) / itemSize
	if cap < 3 {
		cap = 3
	}
	return cap
}

// Size returns the number of payloads currently stored.
func (t *BTree[T]) Size() int {
	return t.size
}

// Height returns the current tree height (0 for an empty tree or a
// single leaf root).
func (t *BTree[T]) Height() int {
	return t.height
}

func (t *BTree[T]) capFor(isLeaf bool) int {
	if isLeaf {
		return t.leafCap
	}
	return t.internalCap
}

func (t *BTree[T]) minFor(isLeaf bool) int {
	cap := t.capFor(isLeaf)
	return (cap+1)/2 - 1
}

func (t *BTree[T]) full(n *node[T]) bool {
	return n.count == t.capFor(n.isLeaf)
}

func (t *BTree[T]) isMinimal(n *node[T]) bool {
	return n.count <= t.minFor(n.isLeaf)
}

func (t *BTree[T]) compareFn(key T) func(T) int {
	return func(stored T) int { return t.cmp(stored, key) }
}

func nodeByteSize[T any]() uintptr {
	return uintptr(PageSize)
}

func (t *BTree[T]) newNode(isLeaf bool) (*node[T], bool) {
	if !t.allocator.Reserve(nodeByteSize[T]()) {
		return nil, false
	}
	cap := t.capFor(isLeaf)
	n := &node[T]{isLeaf: isLeaf, values: make([]T, cap)}
	if !isLeaf {
		n.children = make([]*node[T], cap+1)
	}
	return n, true
}

func (t *BTree[T]) freeNode(*node[T]) {
	t.allocator.Release(nodeByteSize[T]())
}

// Insert adds element to the tree. It returns StatusExists without
// modifying the tree if an equal element (per the comparator) is already
// present, StatusOutOfMemory if the allocator declined a required node
// allocation, or StatusOverflow if the tree has already reached
// MaxHeight. On any non-success status the tree's elements and size are
// left unchanged; node splits already made on the way down (including a
// new root, which raises Height) remain in place.
func (t *BTree[T]) Insert(element T) Status {
	if t.root == nil {
		n, ok := t.newNode(true)
		if !ok {
			return StatusOutOfMemory
		}
		n.values[0] = element
		n.count = 1
		t.root = n
		t.size = 1
		return StatusSuccess
	}

	if t.full(t.root) {
		if t.height+1 >= MaxHeight {
			return StatusOverflow
		}
		newRoot, ok := t.newNode(false)
		if !ok {
			return StatusOutOfMemory
		}
		newRoot.children[0] = t.root
		newRoot.count = 0
		if !t.splitChild(newRoot, 0) {
			t.freeNode(newRoot)
			return StatusOutOfMemory
		}
		t.root = newRoot
		t.height++
	}

	return t.insertNonFull(t.root, element)
}

func (t *BTree[T]) insertNonFull(n *node[T], element T) Status {
	for {
		i, found := search(n, t.compareFn(element))
		if found {
			return StatusExists
		}
		if n.isLeaf {
			n.insertLeaf(i, element)
			t.size++
			return StatusSuccess
		}

		if t.full(n.children[i]) {
			if !t.splitChild(n, i) {
				return StatusOutOfMemory
			}
			c := t.cmp(n.values[i], element)
			if c == 0 {
				return StatusExists
			}
			if c < 0 {
				i++
			}
		}
		n = n.children[i]
	}
}

// Find returns an iterator at the element equal to key, or End() if
// absent.
func (t *BTree[T]) Find(key T) (Status, Iterator[T]) {
	it := LowerBound(t, func(stored, k T) int { return t.cmp(stored, k) }, key)
	if it.IsEnd() {
		return StatusNotFound, it
	}
	v, _ := it.Get()
	if t.cmp(v, key) != 0 {
		return StatusNotFound, t.End()
	}
	return StatusSuccess, it
}

// Clear removes every element, invoking destroy (if non-nil) exactly once
// per stored element, immediately before the containing node is freed.
// The tree remains usable and empty afterward.
func (t *BTree[T]) Clear(destroy func(T)) {
	freeSubtree(t, t.root, destroy)
	t.root = nil
	t.size = 0
	t.height = 0
}

// Free discards the tree, invoking destroy (if non-nil) on every
// remaining element. Equivalent to Clear for this in-memory
// implementation, which owns no resources beyond its nodes.
func (t *BTree[T]) Free(destroy func(T)) {
	t.Clear(destroy)
}

func freeSubtree[T any](t *BTree[T], n *node[T], destroy func(T)) {
	if n == nil {
		return
	}
	if !n.isLeaf {
		for i := 0; i <= n.count; i++ {
			freeSubtree(t, n.children[i], destroy)
		}
	}
	if destroy != nil {
		for i := 0; i < n.count; i++ {
			destroy(n.values[i])
		}
	}
	t.freeNode(n)
}
