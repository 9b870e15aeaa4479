// Package selection tracks the cursor and a contiguous byte range over the
// linear index space.
package selection

// NoIndex marks an absent cursor or anchor.
const NoIndex = -1

// Range is an inclusive byte range with Start <= End.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int { return r.End - r.Start + 1 }

func (r Range) Contains(index int) bool { return index >= r.Start && index <= r.End }

func normalize(a, b int) Range {
	if a > b {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// Class is the per-cell classification reported by the tracker.
type Class struct {
	Cursor   bool
	Selected bool
}

// Tracker holds one cursor and at most one range. Both are independent.
// The zero value is not usable; call New.
type Tracker struct {
	cursor   int
	anchor   int
	rng      Range
	hasRange bool
	dragging bool
}

func New() Tracker {
	return Tracker{cursor: NoIndex, anchor: NoIndex}
}

func (t Tracker) Cursor() int { return t.cursor }

func (t Tracker) Range() (Range, bool) { return t.rng, t.hasRange }

// Dragging reports whether a Begin has not yet been matched by End.
func (t Tracker) Dragging() bool { return t.dragging }

// SetCursor moves the cursor. A plain move drops the anchor and range; an
// extending move grows the range from the anchor, or from the previous
// cursor when no anchor exists.
func (t *Tracker) SetCursor(index int, extend bool) {
	if !extend {
		t.cursor = index
		t.anchor = NoIndex
		t.rng = Range{}
		t.hasRange = false
		t.dragging = false
		return
	}

	if t.anchor == NoIndex {
		t.anchor = t.cursor
		if t.anchor == NoIndex {
			t.anchor = index
		}
	}
	t.cursor = index
	t.rng = normalize(t.anchor, index)
	t.hasRange = true
}

func (t *Tracker) Begin(index int) {
	t.anchor = index
	t.rng = Range{Start: index, End: index}
	t.hasRange = true
	t.dragging = true
}

// Extend moves the free end of the selection to index. The range is
// normalized on every call so it is valid mid-drag.
func (t *Tracker) Extend(index int) {
	if t.anchor == NoIndex {
		t.Begin(index)
		return
	}
	t.rng = normalize(t.anchor, index)
	t.hasRange = true
}

func (t *Tracker) End() {
	t.dragging = false
}

func (t *Tracker) Clear() {
	*t = New()
}

// Classify reports the cursor and selection state of index in O(1).
func (t Tracker) Classify(index int) Class {
	return Class{
		Cursor:   t.cursor != NoIndex && index == t.cursor,
		Selected: t.hasRange && t.rng.Contains(index),
	}
}
