package ranktree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dacapoday/coredata"
)

func TestPushAtRoundTrip(t *testing.T) {
	tree := New[int](nil)
	for i := 0; i < 2000; i++ {
		require.Equal(t, StatusSuccess, tree.Push(i))
	}
	require.Equal(t, uint64(2000), tree.Size())

	for i := 0; i < 2000; i++ {
		v, ok := tree.At(uint64(i))
		require.True(t, ok)
		require.Equal(t, i, v)
	}

	_, ok := tree.At(2000)
	require.False(t, ok)
}

// TestPushAcrossFullLeaf pushes enough elements to span multiple leaves
// and the first internal level, crossing the Fanout (512) boundary.
func TestPushAcrossFullLeaf(t *testing.T) {
	tree := New[int](nil)
	for i := 0; i < 4096; i++ {
		require.Equal(t, StatusSuccess, tree.Push(i))
	}
	require.Equal(t, uint64(4096), tree.Size())
	require.Equal(t, uint8(1), tree.Height())

	v, ok := tree.At(4095)
	require.True(t, ok)
	require.Equal(t, 4095, v)

	popped, status := tree.Pop()
	require.Equal(t, StatusSuccess, status)
	require.Equal(t, 4095, popped)
	require.Equal(t, uint64(4095), tree.Size())

	v, ok = tree.At(4095)
	require.False(t, ok)
	require.Equal(t, 0, v)
}

func TestPopEmptyReportsNotFound(t *testing.T) {
	tree := New[int](nil)
	_, status := tree.Pop()
	require.Equal(t, StatusNotFound, status)
}

func TestPushPopStackDiscipline(t *testing.T) {
	tree := New[int](nil)
	for i := 0; i < 3000; i++ {
		tree.Push(i)
	}
	for i := 2999; i >= 0; i-- {
		v, status := tree.Pop()
		require.Equal(t, StatusSuccess, status)
		require.Equal(t, i, v)
		require.Equal(t, uint64(i), tree.Size())
	}
	require.Equal(t, uint8(0), tree.Height())
	_, ok := tree.At(0)
	require.False(t, ok)
}

func TestHeightShrinksOnPop(t *testing.T) {
	tree := New[int](nil)
	for i := 0; i < 513; i++ {
		tree.Push(i)
	}
	require.Equal(t, uint8(1), tree.Height())

	for i := 0; i < 2; i++ {
		tree.Pop()
	}
	require.Equal(t, uint8(0), tree.Height())
	require.Equal(t, uint64(511), tree.Size())
}

func TestClearInvokesDestroyOncePerElement(t *testing.T) {
	tree := New[int](nil)
	for i := 0; i < 1200; i++ {
		tree.Push(i)
	}
	var destroyed []int
	tree.Clear(func(v int) { destroyed = append(destroyed, v) })
	require.Len(t, destroyed, 1200)
	require.Equal(t, uint64(0), tree.Size())

	seen := make([]bool, 1200)
	for _, v := range destroyed {
		require.False(t, seen[v])
		seen[v] = true
	}
}

func TestOutOfMemoryLeavesTreeUnchanged(t *testing.T) {
	// One page's budget admits exactly the root leaf (Fanout elements);
	// growing past it needs a second page for the new internal root.
	alloc := &coredata.BoundedAllocator{Limit: PageSize}
	tree := New[int](alloc)

	for i := 0; i < Fanout; i++ {
		require.Equal(t, StatusSuccess, tree.Push(i))
	}
	require.Equal(t, uint64(Fanout), tree.Size())

	status := tree.Push(Fanout)
	require.Equal(t, StatusOutOfMemory, status)
	require.Equal(t, uint64(Fanout), tree.Size())

	v, ok := tree.At(0)
	require.True(t, ok)
	require.Equal(t, 0, v)
}
