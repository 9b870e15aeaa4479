// Package viewport maps a row-based scroll position onto the linear byte
// index space without materializing the rows it skips.
package viewport

import (
	"math"

	"hexview/internal/layout"
)

// Range is a half-open byte index interval [Start, End).
type Range struct {
	Start int
	End   int
}

func (r Range) Empty() bool { return r.End <= r.Start }

func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return r.End - r.Start
}

func (r Range) Contains(index int) bool { return index >= r.Start && index < r.End }

// Bounds is the slider view of the scroll position.
type Bounds struct {
	Min     int
	Max     int
	Current int
}

// State is the scroll position of a document. Visible rows are not stored;
// they come from the layout on every call.
type State struct {
	ScrollIndex int
	TotalRows   int
	// Sliding is set while a drag gesture is active. It is a render hint
	// only and never affects clamping.
	Sliding bool
}

func New(n, columns int) State {
	return State{TotalRows: TotalRows(n, columns)}
}

func TotalRows(n, columns int) int {
	if columns <= 0 || n <= 0 {
		return 0
	}
	return (n + columns - 1) / columns
}

// MaxScrollIndex returns the largest valid scroll index for rows visible rows.
func (s State) MaxScrollIndex(rows int) int {
	if rows < 0 {
		rows = 0
	}
	if m := s.TotalRows - rows; m > 0 {
		return m
	}
	return 0
}

// SetScrollIndex clamps requested into [0, MaxScrollIndex(rows)].
func (s State) SetScrollIndex(requested, rows int) State {
	limit := s.MaxScrollIndex(rows)
	switch {
	case requested < 0:
		requested = 0
	case requested > limit:
		requested = limit
	}
	s.ScrollIndex = requested
	return s
}

func (s State) ScrollBy(deltaRows, rows int) State {
	// Saturate instead of overflowing on huge deltas.
	target := s.ScrollIndex + deltaRows
	if deltaRows > 0 && target < s.ScrollIndex {
		target = math.MaxInt
	} else if deltaRows < 0 && target > s.ScrollIndex {
		target = math.MinInt
	}
	return s.SetScrollIndex(target, rows)
}

// WheelRows converts a wheel delta into whole rows. Partial rows truncate
// toward zero, but a non-zero delta always moves at least one row.
func WheelRows(deltaPx, cellHeightPx float64) int {
	if deltaPx == 0 || cellHeightPx <= 0 || math.IsNaN(deltaPx) {
		return 0
	}
	rows := math.Trunc(deltaPx / cellHeightPx)
	if rows == 0 {
		if deltaPx > 0 {
			return 1
		}
		return -1
	}
	if rows > float64(math.MaxInt32) {
		return math.MaxInt32
	}
	if rows < float64(math.MinInt32) {
		return math.MinInt32
	}
	return int(rows)
}

// ScrollByWheel scrolls by a wheel delta measured in cellHeightPx units.
func (s State) ScrollByWheel(deltaPx, cellHeightPx float64, rows int) State {
	return s.ScrollBy(WheelRows(deltaPx, cellHeightPx), rows)
}

// ScrollToIndex scrolls the least amount needed to show the row of index.
func (s State) ScrollToIndex(index, columns, rows int) State {
	if columns <= 0 || rows <= 0 || index < 0 {
		return s
	}
	row := index / columns
	switch {
	case row < s.ScrollIndex:
		return s.SetScrollIndex(row, rows)
	case row >= s.ScrollIndex+rows:
		return s.SetScrollIndex(row-rows+1, rows)
	}
	return s
}

// Relayout recomputes TotalRows for a new column count, keeping the first
// visible byte on screen.
func (s State) Relayout(oldColumns, newColumns, n, rows int) State {
	first := 0
	if oldColumns > 0 {
		first = s.ScrollIndex * oldColumns
	}
	s.TotalRows = TotalRows(n, newColumns)
	if newColumns <= 0 {
		s.ScrollIndex = 0
		return s
	}
	return s.SetScrollIndex(first/newColumns, rows)
}

func (s State) Bounds(rows int) Bounds {
	return Bounds{Min: 0, Max: s.MaxScrollIndex(rows), Current: s.ScrollIndex}
}

func VisibleRange(s State, n int, l layout.Config) Range {
	if l.Columns <= 0 || l.Rows <= 0 || n <= 0 {
		return Range{}
	}
	start := s.ScrollIndex * l.Columns
	if start >= n {
		return Range{Start: n, End: n}
	}
	end := n
	if remaining := (n - start + l.Columns - 1) / l.Columns; remaining > l.Rows {
		end = start + l.Rows*l.Columns
	}
	return Range{Start: start, End: end}
}
