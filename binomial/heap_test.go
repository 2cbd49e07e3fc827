package binomial

import (
	"math"
	"math/bits"
	"math/rand"
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenario(t *testing.T) {
	heap := NewHeap()
	items := insertMult(t, heap, []int{10, 5, 20, 3})

	assert.Equal(t, 3, heap.FindMin().Key())
	assert.NoError(t, heap.Verify())

	popped, err := heap.DeleteMin()
	assert.NoError(t, err)
	assert.Same(t, items[3], popped)
	assert.False(t, popped.InHeap())
	assert.Equal(t, 5, heap.FindMin().Key())

	err = heap.DecreaseKey(items[2], 18)
	assert.NoError(t, err)
	assert.Equal(t, 2, items[2].Key())
	assert.Same(t, items[2], heap.FindMin())
	assert.NoError(t, heap.Verify())

	size := heap.Size()
	err = heap.Delete(items[0])
	assert.NoError(t, err)
	assert.Equal(t, size-1, heap.Size())
	assert.False(t, items[0].InHeap())
	assert.NoError(t, heap.Verify())

	assert.Equal(t, []int{2, 5}, drain(t, heap))
}

func TestEmptyHeap(t *testing.T) {
	heap := NewHeap()

	assert.True(t, heap.Empty())
	assert.Equal(t, 0, heap.Size())
	assert.Equal(t, 0, heap.NumTrees())
	assert.Nil(t, heap.FindMin())
	assert.NoError(t, heap.Verify())

	_, err := heap.DeleteMin()
	assert.True(t, errors.Is(err, ErrEmptyHeap))
}

func TestInsert(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		heap := NewHeap()
		it, err := heap.Insert(42, "answer")
		require.NoError(t, err)

		assert.Same(t, it, heap.FindMin())
		assert.Equal(t, "answer", heap.FindMin().Payload())
		assert.Equal(t, 1, heap.Size())
		assert.Equal(t, 1, heap.NumTrees())
		assert.False(t, heap.Empty())
	})

	t.Run("trees follow binary size", func(t *testing.T) {
		heap := NewHeap()
		for i := 1; i <= 64; i++ {
			_, err := heap.Insert(i, nil)
			require.NoError(t, err)
			assert.Equal(t, i, heap.Size())
			assert.Equal(t, bits.OnesCount(uint(i)), heap.NumTrees())
			assert.NoError(t, heap.Verify())
		}
	})

	t.Run("invalid key", func(t *testing.T) {
		heap := NewHeap()
		for _, key := range []int{0, -1, math.MinInt32} {
			it, err := heap.Insert(key, nil)
			assert.Nil(t, it)
			assert.True(t, errors.Is(err, ErrInvalidKey))
		}
		assert.True(t, heap.Empty())
	})
}

func TestHeapsort(t *testing.T) {
	heap := NewHeap()
	for i := 30; i > 0; i-- {
		_, err := heap.Insert(i, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, interval(1, 31), drain(t, heap))
}

func TestHeapsortShuffle(t *testing.T) {
	const SIZE = 500
	rand.Seed(1)

	heap := NewHeap()
	insertMult(t, heap, shuffle(interval(1, SIZE+1)))
	assert.Equal(t, SIZE, heap.Size())

	assert.Equal(t, interval(1, SIZE+1), drain(t, heap))
	assert.True(t, heap.Empty())
}

func TestDuplicateKeys(t *testing.T) {
	heap := NewHeap()
	keys := []int{4, 1, 4, 1, 4, 2, 2, 1}
	insertMult(t, heap, keys)

	sorted := append([]int(nil), keys...)
	sort.Ints(sorted)
	assert.Equal(t, sorted, drain(t, heap))
}

func TestMeld(t *testing.T) {
	t.Run("disjoint ranges", func(t *testing.T) {
		const (
			SIZE1 = 10
			SIZE2 = SIZE1 * 2
		)
		h1 := NewHeap()
		h2 := NewHeap()
		insertMult(t, h1, interval(1, SIZE1+1))
		insertMult(t, h2, interval(SIZE1+1, SIZE2+1))

		assert.NoError(t, h1.Meld(h2))
		assert.Equal(t, SIZE2, h1.Size())
		assert.True(t, h2.Empty())
		assert.Nil(t, h2.FindMin())
		assert.NoError(t, h1.Verify())
		assert.NoError(t, h2.Verify())

		assert.Equal(t, interval(1, SIZE2+1), drain(t, h1))
	})

	t.Run("every size pair", func(t *testing.T) {
		rand.Seed(2)
		for n1 := 0; n1 <= 17; n1++ {
			for n2 := 0; n2 <= 17; n2++ {
				h1 := NewHeap()
				h2 := NewHeap()
				keys := shuffle(interval(1, n1+n2+1))
				insertMult(t, h1, keys[:n1])
				insertMult(t, h2, keys[n1:])

				require.NoError(t, h1.Meld(h2))
				require.NoError(t, h1.Verify(), "meld %d into %d", n2, n1)
				assert.Equal(t, n1+n2, h1.Size())
				assert.LessOrEqual(t, h1.NumTrees(), maxTrees(h1.Size()))
				assert.Equal(t, bits.OnesCount(uint(n1+n2)), h1.NumTrees())
				assert.Equal(t, interval(1, n1+n2+1), drain(t, h1))
			}
		}
	})

	t.Run("into empty", func(t *testing.T) {
		src := NewHeap()
		items := insertMult(t, src, []int{9, 4, 7, 1, 8, 3, 6})
		min := src.FindMin()
		trees := src.NumTrees()

		dst := NewHeap()
		require.NoError(t, dst.Meld(src))
		assert.Equal(t, 7, dst.Size())
		assert.Equal(t, trees, dst.NumTrees())
		assert.Same(t, min, dst.FindMin())
		assert.True(t, src.Empty())

		// handles survive the move
		require.NoError(t, dst.DecreaseKey(items[0], 8))
		assert.Equal(t, 1, items[0].Key())
		assert.Equal(t, 1, dst.FindMin().Key())
		assert.Equal(t, []int{1, 1, 3, 4, 6, 7, 8}, drain(t, dst))
	})

	t.Run("empty other", func(t *testing.T) {
		heap := NewHeap()
		insertMult(t, heap, []int{9, 4, 7, 1, 8, 3, 6})
		min := heap.FindMin()

		assert.NoError(t, heap.Meld(NewHeap()))
		assert.NoError(t, heap.Meld(nil))
		assert.Equal(t, 7, heap.Size())
		assert.Same(t, min, heap.FindMin())
		assert.NoError(t, heap.Verify())
	})

	t.Run("self", func(t *testing.T) {
		heap := NewHeap()
		insertMult(t, heap, []int{1, 2, 3})
		err := heap.Meld(heap)
		assert.True(t, errors.Is(err, ErrSelfMeld))
		assert.Equal(t, 3, heap.Size())
		assert.NoError(t, heap.Verify())
	})

	t.Run("equal minimums", func(t *testing.T) {
		h1 := NewHeap()
		h2 := NewHeap()
		insertMult(t, h1, []int{5, 5, 5})
		insertMult(t, h2, []int{5, 5, 5, 5, 5})

		require.NoError(t, h1.Meld(h2))
		assert.NoError(t, h1.Verify())
		assert.Equal(t, 5, h1.FindMin().Key())
		assert.Equal(t, []int{5, 5, 5, 5, 5, 5, 5, 5}, drain(t, h1))
	})
}

func TestDecreaseKey(t *testing.T) {
	t.Run("walks to the root", func(t *testing.T) {
		heap := NewHeap()
		items := insertMult(t, heap, interval(10, 42))
		require.Equal(t, 1, heap.NumTrees())

		it := items[len(items)-1]
		require.NoError(t, heap.DecreaseKey(it, 41-1))
		assert.Equal(t, 1, it.Key())
		assert.Same(t, it, heap.FindMin())
		assert.Nil(t, it.node.parent)
		assert.NoError(t, heap.Verify())

		// every handle still resolves to a node holding it
		for _, it := range items {
			assert.Same(t, it, it.node.item)
		}
	})

	t.Run("stays below a smaller parent", func(t *testing.T) {
		heap := NewHeap()
		items := insertMult(t, heap, []int{1, 10, 20, 30})
		min := heap.FindMin()

		require.NoError(t, heap.DecreaseKey(items[3], 5))
		assert.Equal(t, 25, items[3].Key())
		assert.Same(t, min, heap.FindMin())
		assert.NoError(t, heap.Verify())
	})

	t.Run("invalid diff", func(t *testing.T) {
		heap := NewHeap()
		items := insertMult(t, heap, []int{10, 20})

		for _, diff := range []int{0, -3, 10, 11} {
			err := heap.DecreaseKey(items[0], diff)
			assert.True(t, errors.Is(err, ErrInvalidDiff), "diff %d", diff)
		}
		assert.Equal(t, 10, items[0].Key())
		assert.NoError(t, heap.Verify())
	})

	t.Run("foreign and removed items", func(t *testing.T) {
		h1 := NewHeap()
		h2 := NewHeap()
		a := insertMult(t, h1, []int{10, 20})
		b := insertMult(t, h2, []int{30})

		assert.True(t, errors.Is(h1.DecreaseKey(b[0], 1), ErrNotInHeap))
		assert.True(t, errors.Is(h1.DecreaseKey(nil, 1), ErrNotInHeap))

		_, err := h1.DeleteMin()
		require.NoError(t, err)
		assert.True(t, errors.Is(h1.DecreaseKey(a[0], 1), ErrNotInHeap))
		assert.True(t, errors.Is(h1.Delete(a[0]), ErrNotInHeap))
		assert.True(t, errors.Is(h2.Delete(a[1]), ErrNotInHeap))

		require.NoError(t, h1.Meld(h2))
		assert.NoError(t, h1.DecreaseKey(b[0], 29))
		assert.Same(t, b[0], h1.FindMin())
	})
}

func TestDelete(t *testing.T) {
	t.Run("every position", func(t *testing.T) {
		const SIZE = 37
		for victim := 0; victim < SIZE; victim++ {
			heap := NewHeap()
			items := insertMult(t, heap, interval(1, SIZE+1))

			require.NoError(t, heap.Delete(items[victim]))
			require.NoError(t, heap.Verify())
			assert.Equal(t, SIZE-1, heap.Size())
			assert.Equal(t, victim+1, items[victim].Key())

			want := append(interval(1, victim+1), interval(victim+2, SIZE+1)...)
			assert.Equal(t, want, drain(t, heap))
		}
	})

	t.Run("min key is one", func(t *testing.T) {
		heap := NewHeap()
		items := insertMult(t, heap, []int{1, 1, 2, 1})

		require.NoError(t, heap.Delete(items[2]))
		assert.NoError(t, heap.Verify())
		assert.Equal(t, []int{1, 1, 1}, drain(t, heap))
	})

	t.Run("last item", func(t *testing.T) {
		heap := NewHeap()
		items := insertMult(t, heap, []int{8})

		require.NoError(t, heap.Delete(items[0]))
		assert.True(t, heap.Empty())
		assert.Nil(t, heap.FindMin())
		assert.NoError(t, heap.Verify())
	})
}

func TestRandomOperations(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	heap := NewHeap()
	var live []*Item

	remove := func(it *Item) {
		for i, l := range live {
			if l == it {
				live = append(live[:i], live[i+1:]...)
				return
			}
		}
		t.Fatalf("item %d not tracked", it.Key())
	}

	for step := 0; step < 3000; step++ {
		switch op := rnd.Intn(10); {
		case op < 4:
			it, err := heap.Insert(rnd.Intn(1000)+1, step)
			require.NoError(t, err)
			live = append(live, it)
		case op < 6:
			if heap.Empty() {
				continue
			}
			it, err := heap.DeleteMin()
			require.NoError(t, err)
			assert.Equal(t, minKey(live), it.Key())
			remove(it)
		case op < 8:
			if len(live) == 0 {
				continue
			}
			it := live[rnd.Intn(len(live))]
			if it.Key() < 2 {
				continue
			}
			before := it.Key()
			require.NoError(t, heap.DecreaseKey(it, rnd.Intn(it.Key()-1)+1))
			assert.Less(t, it.Key(), before)
		case op < 9:
			if len(live) == 0 {
				continue
			}
			it := live[rnd.Intn(len(live))]
			require.NoError(t, heap.Delete(it))
			remove(it)
		default:
			other := NewHeap()
			for i := rnd.Intn(20); i > 0; i-- {
				it, err := other.Insert(rnd.Intn(1000)+1, nil)
				require.NoError(t, err)
				live = append(live, it)
			}
			require.NoError(t, heap.Meld(other))
			assert.True(t, other.Empty())
		}

		require.NoError(t, heap.Verify(), "step %d", step)
		require.Equal(t, len(live), heap.Size())
		assert.LessOrEqual(t, heap.NumTrees(), maxTrees(heap.Size()))
		if len(live) > 0 {
			assert.Equal(t, minKey(live), heap.FindMin().Key())
		} else {
			assert.Nil(t, heap.FindMin())
		}
	}

	keys := make([]int, 0, len(live))
	for _, it := range live {
		keys = append(keys, it.Key())
	}
	sort.Ints(keys)
	assert.Equal(t, keys, drain(t, heap))
}

func TestVerifyDetectsCorruption(t *testing.T) {
	build := func() (*Heap, []*Item) {
		heap := NewHeap()
		items := insertMult(t, heap, interval(1, 8))
		require.NoError(t, heap.Verify())
		return heap, items
	}

	t.Run("size", func(t *testing.T) {
		heap, _ := build()
		heap.size++
		assert.Error(t, heap.Verify())
	})

	t.Run("tree count", func(t *testing.T) {
		heap, _ := build()
		heap.numTrees--
		assert.Error(t, heap.Verify())
	})

	t.Run("heap order", func(t *testing.T) {
		heap, _ := build()
		heap.min.item.key = 200
		assert.Error(t, heap.Verify())
	})

	t.Run("back reference", func(t *testing.T) {
		heap, items := build()
		items[3].node = items[4].node
		assert.Error(t, heap.Verify())
	})

	t.Run("rank", func(t *testing.T) {
		heap, _ := build()
		heap.last.rank++
		assert.Error(t, heap.Verify())
	})

	t.Run("min not minimal", func(t *testing.T) {
		heap, _ := build()
		heap.min = heap.last.next
		assert.Error(t, heap.Verify())
	})
}

// ====== Helpers ======
func interval(start int, end int) []int {
	// [start, end)
	slice := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		slice = append(slice, i)
	}
	return slice
}

func shuffle(slice []int) []int {
	shuffled := make([]int, len(slice))
	copy(shuffled, slice)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

func insertMult(t *testing.T, heap *Heap, keys []int) []*Item {
	t.Helper()
	items := make([]*Item, 0, len(keys))
	for _, key := range keys {
		it, err := heap.Insert(key, key)
		require.NoError(t, err)
		items = append(items, it)
	}
	return items
}

// drain pops everything and returns the keys in pop order.
func drain(t *testing.T, heap *Heap) []int {
	t.Helper()
	keys := make([]int, 0, heap.Size())
	for !heap.Empty() {
		it, err := heap.DeleteMin()
		require.NoError(t, err)
		keys = append(keys, it.Key())
		require.NoError(t, heap.Verify())
	}
	return keys
}

func minKey(items []*Item) int {
	min := items[0].Key()
	for _, it := range items[1:] {
		if it.Key() < min {
			min = it.Key()
		}
	}
	return min
}

// maxTrees is ceil(log2(size+1)).
func maxTrees(size int) int {
	return bits.Len(uint(size))
}
