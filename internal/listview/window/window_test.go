package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(size int) func(int) int {
	return func(int) int { return size }
}

func indices(w Window) []int {
	out := make([]int, 0, len(w.Items))
	for _, it := range w.Items {
		out = append(out, it.Index)
	}
	return out
}

// assertWellFormed checks contiguity, ordering and offset consistency
func assertWellFormed(t *testing.T, w Window, count int) {
	t.Helper()
	for i, it := range w.Items {
		require.GreaterOrEqual(t, it.Index, 0)
		require.Less(t, it.Index, count)
		if i > 0 {
			prev := w.Items[i-1]
			require.Equal(t, prev.Index+1, it.Index, "indices must be contiguous")
			require.Equal(t, prev.Start+prev.Size, it.Start, "offsets must chain")
		}
	}
	if !w.Empty() {
		assert.Equal(t, w.Items[0].Index, w.Start)
		assert.Equal(t, w.Items[len(w.Items)-1].Index, w.End)
	}
}

func TestEmptyList(t *testing.T) {
	w := Compute(0, 0, 20, fixed(1), 5)
	assert.True(t, w.Empty())
	assert.Equal(t, 0, w.TotalSize)
	assert.Equal(t, -1, w.Start)
	assert.Equal(t, -1, w.End)
}

func TestUnmeasuredViewportYieldsEmptyWindow(t *testing.T) {
	for _, vh := range []int{0, -10} {
		w := Compute(50, 0, vh, fixed(2), 3)
		assert.True(t, w.Empty())
		assert.Equal(t, 100, w.TotalSize)
	}
}

func TestComputeAtTop(t *testing.T) {
	w := Compute(100, 0, 10, fixed(1), 2)
	assertWellFormed(t, w, 100)
	// rows 0..10 touch [0,10]; two extra below, none above
	assert.Equal(t, 0, w.Start)
	assert.Equal(t, 12, w.End)
	assert.Equal(t, 100, w.TotalSize)
}

func TestComputeMiddleAddsOverscanBothSides(t *testing.T) {
	w := Compute(100, 40, 10, fixed(2), 3)
	assertWellFormed(t, w, 100)
	// visible rows: 20 (starts at 40) through 25 (starts at 50)
	assert.Equal(t, 17, w.Start)
	assert.Equal(t, 28, w.End)
	assert.Equal(t, 34, w.Items[0].Start)
}

func TestComputeClampsAtBottom(t *testing.T) {
	w := Compute(10, 1000, 5, fixed(1), 4)
	assertWellFormed(t, w, 10)
	assert.Equal(t, 9, w.End)
	assert.Equal(t, 5, w.Start)
}

func TestOverscanLargerThanCount(t *testing.T) {
	w := Compute(3, 0, 1, fixed(1), 50)
	assertWellFormed(t, w, 3)
	assert.Equal(t, []int{0, 1, 2}, indices(w))
}

func TestNegativeInputsAreNormalized(t *testing.T) {
	w := Compute(20, -15, 4, fixed(1), -3)
	assertWellFormed(t, w, 20)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, indices(w))
}

func TestCoverageOfVisibleRows(t *testing.T) {
	sizes := []int{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8, 9, 7, 9}
	sizeOf := func(i int) int { return sizes[i] }
	total := 0
	for _, s := range sizes {
		total += s
	}

	for scroll := 0; scroll < total; scroll++ {
		for vh := 1; vh <= 12; vh++ {
			for overscan := 0; overscan <= 2; overscan++ {
				w := Compute(len(sizes), scroll, vh, sizeOf, overscan)
				assertWellFormed(t, w, len(sizes))

				first, last := -1, -1
				offset := 0
				for i, s := range sizes {
					if offset+s > scroll && offset <= scroll+vh {
						if first < 0 {
							first = i
						}
						last = i
					}
					offset += s
				}
				require.Equal(t, max(0, first-overscan), w.Start, "scroll=%d vh=%d", scroll, vh)
				require.Equal(t, min(len(sizes)-1, last+overscan), w.End, "scroll=%d vh=%d", scroll, vh)
			}
		}
	}
}

func TestWindowSizeIndependentOfCount(t *testing.T) {
	small := Compute(100, 30, 20, fixed(1), 5)
	large := Compute(100_000, 30, 20, fixed(1), 5)
	assert.Equal(t, small.Len(), large.Len())

	m := New(1)
	m.SetCount(100_000)
	deep := m.Compute(70_000, 20, 5)
	assert.Equal(t, small.Len(), deep.Len())
	assert.LessOrEqual(t, deep.Len(), 20/1+2*5+2)
}

func TestManagerReusesOffsetsWhenCountGrows(t *testing.T) {
	calls := 0
	m := New(0)
	m.SetSizeFunc(func(int) int { calls++; return 2 })
	m.SetCount(10)
	require.Equal(t, 20, m.TotalSize())
	require.Equal(t, 10, calls)

	m.SetCount(15)
	assert.Equal(t, 30, m.TotalSize())
	assert.Equal(t, 15, calls, "only new rows are sized")

	m.SetCount(5)
	assert.Equal(t, 10, m.TotalSize())
	assert.Equal(t, 15, calls)
}

func TestMeasureMatchesStatelessCompute(t *testing.T) {
	m := New(2)
	m.SetCount(50)
	before := m.Compute(10, 10, 1)
	require.Equal(t, 100, before.TotalSize)

	m.Measure(3, 7)
	m.Measure(9, 1)

	sizeOf := func(i int) int {
		switch i {
		case 3:
			return 7
		case 9:
			return 1
		}
		return 2
	}
	for _, scroll := range []int{0, 5, 9, 30, 99} {
		assert.Equal(t, Compute(50, scroll, 10, sizeOf, 1), m.Compute(scroll, 10, 1), "scroll=%d", scroll)
	}
	assert.Equal(t, 104, m.TotalSize())
}

func TestIndexAt(t *testing.T) {
	m := New(0)
	m.SetSizeFunc(func(i int) int { return i + 1 }) // starts: 0,1,3,6,10
	m.SetCount(5)

	assert.Equal(t, 0, m.IndexAt(-4))
	assert.Equal(t, 0, m.IndexAt(0))
	assert.Equal(t, 1, m.IndexAt(1))
	assert.Equal(t, 1, m.IndexAt(2))
	assert.Equal(t, 3, m.IndexAt(9))
	assert.Equal(t, 4, m.IndexAt(10))
	assert.Equal(t, 4, m.IndexAt(500))

	assert.Equal(t, -1, New(1).IndexAt(3))
}

func TestScrollIntoView(t *testing.T) {
	m := New(2)
	m.SetCount(20) // total 40

	assert.Equal(t, 10, m.ScrollIntoView(5, 20, 8), "row above the viewport aligns to top")
	assert.Equal(t, 20, m.ScrollIntoView(12, 20, 8), "visible row keeps scroll")
	assert.Equal(t, 24, m.ScrollIntoView(15, 20, 8), "row below aligns to bottom")
	assert.Equal(t, 32, m.ScrollIntoView(19, 0, 8), "last row clamps to max scroll")
	assert.Equal(t, 30, m.ScrollIntoView(0, 30, 0), "unmeasured viewport only clamps")
}

func TestMaxAndClampScroll(t *testing.T) {
	m := New(1)
	m.SetCount(10)
	assert.Equal(t, 6, m.MaxScroll(4))
	assert.Equal(t, 0, m.MaxScroll(40))
	assert.Equal(t, 6, m.ClampScroll(9, 4))
	assert.Equal(t, 0, m.ClampScroll(-1, 4))
}
