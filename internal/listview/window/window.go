// Package window computes which rows of a long list must be materialized
// for a given scroll position and viewport height.
package window

import (
	"sort"
)

// VirtualItem is one materialized row
type VirtualItem struct {
	Index int
	Start int // absolute offset of the row
	Size  int
}

// End returns the offset just past the row
func (v VirtualItem) End() int { return v.Start + v.Size }

// Window is the result of a window computation. Start and End are
// inclusive indices, both -1 when nothing is materialized.
type Window struct {
	Start     int
	End       int
	Items     []VirtualItem
	TotalSize int
}

// Len returns the number of materialized rows
func (w Window) Len() int { return len(w.Items) }

// Empty reports whether no row is materialized
func (w Window) Empty() bool { return len(w.Items) == 0 }

func emptyWindow(total int) Window {
	return Window{Start: -1, End: -1, TotalSize: total}
}

// Compute is the stateless form of Manager.Compute
func Compute(totalCount, scrollOffset, viewportHeight int, sizeOf func(int) int, overscan int) Window {
	m := New(0)
	m.SetSizeFunc(sizeOf)
	m.SetCount(totalCount)
	return m.Compute(scrollOffset, viewportHeight, overscan)
}

// Manager caches row offsets for a list of count rows.
//
// With a fixed row size offsets are computed arithmetically. With a size
// function, prefix sums are extended lazily up to the highest row asked
// for and kept until the sizes are invalidated.
type Manager struct {
	count    int
	fixed    int
	sizeOf   func(int) int
	measured map[int]int

	// starts[i] is the offset of row i; starts has one more entry than the
	// number of rows whose offsets are known
	starts []int
}

// New creates a manager with a fixed row size
func New(rowSize int) *Manager {
	m := &Manager{}
	m.SetFixedSize(rowSize)
	return m
}

// SetFixedSize switches to fixed-size rows and drops measurements
func (m *Manager) SetFixedSize(size int) {
	if size < 1 {
		size = 1
	}
	m.fixed = size
	m.sizeOf = nil
	m.measured = nil
	m.starts = m.starts[:0]
}

// SetSizeFunc switches to per-row size estimates. A nil function falls
// back to a fixed size of 1.
func (m *Manager) SetSizeFunc(sizeOf func(int) int) {
	if sizeOf == nil {
		m.SetFixedSize(1)
		return
	}
	m.fixed = 0
	m.sizeOf = sizeOf
	m.measured = nil
	m.starts = m.starts[:0]
}

// SetCount changes the number of rows. Known offsets of rows that still
// exist are kept.
func (m *Manager) SetCount(n int) {
	if n < 0 {
		n = 0
	}
	if n < m.count {
		if len(m.starts) > n+1 {
			m.starts = m.starts[:n+1]
		}
		for idx := range m.measured {
			if idx >= n {
				delete(m.measured, idx)
			}
		}
	}
	m.count = n
}

// Count returns the number of rows
func (m *Manager) Count() int { return m.count }

// Measure records the real size of a row, replacing its estimate. Offsets
// after the row are recomputed on demand.
func (m *Manager) Measure(index, size int) {
	if index < 0 || index >= m.count {
		return
	}
	if size < 1 {
		size = 1
	}
	if m.Size(index) == size {
		return
	}
	if m.fixed > 0 {
		// leave arithmetic mode; remaining rows keep the fixed estimate
		fixed := m.fixed
		m.fixed = 0
		m.sizeOf = func(int) int { return fixed }
		m.starts = m.starts[:0]
	}
	if m.measured == nil {
		m.measured = make(map[int]int)
	}
	m.measured[index] = size
	if len(m.starts) > index+1 {
		m.starts = m.starts[:index+1]
	}
}

// Size returns the size of a row
func (m *Manager) Size(index int) int {
	if m.fixed > 0 {
		return m.fixed
	}
	if s, ok := m.measured[index]; ok {
		return s
	}
	s := m.sizeOf(index)
	if s < 1 {
		s = 1
	}
	return s
}

// Offset returns the absolute start offset of a row; index == Count()
// yields the total size
func (m *Manager) Offset(index int) int {
	if index <= 0 {
		return 0
	}
	if index > m.count {
		index = m.count
	}
	if m.fixed > 0 {
		return index * m.fixed
	}
	m.extend(index)
	return m.starts[index]
}

// TotalSize returns the cumulative size of all rows
func (m *Manager) TotalSize() int {
	return m.Offset(m.count)
}

// IndexAt returns the row containing offset, clamped to valid rows, or -1
// for an empty list
func (m *Manager) IndexAt(offset int) int {
	if m.count == 0 {
		return -1
	}
	if offset <= 0 {
		return 0
	}
	if m.fixed > 0 {
		return min(offset/m.fixed, m.count-1)
	}
	// first row whose end lies beyond offset
	i := sort.Search(m.count, func(i int) bool { return m.Offset(i+1) > offset })
	return min(i, m.count-1)
}

// MaxScroll returns the largest useful scroll offset for a viewport
func (m *Manager) MaxScroll(viewportHeight int) int {
	return max(0, m.TotalSize()-max(0, viewportHeight))
}

// ClampScroll limits a scroll offset to [0, MaxScroll]
func (m *Manager) ClampScroll(scrollOffset, viewportHeight int) int {
	return max(0, min(scrollOffset, m.MaxScroll(viewportHeight)))
}

// ScrollIntoView returns the scroll offset closest to scrollOffset that
// shows the whole row (or its top, if the row is taller than the viewport)
func (m *Manager) ScrollIntoView(index, scrollOffset, viewportHeight int) int {
	if m.count == 0 || index < 0 || viewportHeight <= 0 {
		return m.ClampScroll(scrollOffset, viewportHeight)
	}
	index = min(index, m.count-1)
	start := m.Offset(index)
	end := start + m.Size(index)

	switch {
	case start < scrollOffset:
		scrollOffset = start
	case end > scrollOffset+viewportHeight:
		scrollOffset = end - viewportHeight
		if end-start > viewportHeight {
			scrollOffset = start
		}
	}
	return m.ClampScroll(scrollOffset, viewportHeight)
}

// Compute returns the rows intersecting [scrollOffset, scrollOffset+viewportHeight]
// plus overscan rows on each side, clamped to valid indices
func (m *Manager) Compute(scrollOffset, viewportHeight, overscan int) Window {
	if m.count == 0 {
		return emptyWindow(0)
	}
	total := m.TotalSize()
	if viewportHeight <= 0 {
		// not measured yet
		return emptyWindow(total)
	}
	if overscan < 0 {
		overscan = 0
	}
	scrollOffset = max(0, min(scrollOffset, total-1))

	first := m.IndexAt(scrollOffset)
	bottom := scrollOffset + viewportHeight
	// last row starting at or before the bottom edge
	last := sort.Search(m.count, func(i int) bool { return m.Offset(i) > bottom }) - 1
	last = max(first, last)

	start := max(0, first-overscan)
	end := min(m.count-1, last+overscan)

	items := make([]VirtualItem, 0, end-start+1)
	for i := start; i <= end; i++ {
		items = append(items, VirtualItem{Index: i, Start: m.Offset(i), Size: m.Size(i)})
	}

	return Window{Start: start, End: end, Items: items, TotalSize: total}
}

// extend makes sure starts holds offsets up to and including index
func (m *Manager) extend(index int) {
	if len(m.starts) == 0 {
		m.starts = append(m.starts, 0)
	}
	for known := len(m.starts) - 1; known < index; known++ {
		m.starts = append(m.starts, m.starts[known]+m.Size(known))
	}
}
