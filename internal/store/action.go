package store

import (
	"hexview/internal/glyph"
	"hexview/internal/layout"
	"hexview/internal/search"
)

// Action is one entry of the store's closed action vocabulary. The set is
// sealed: only the types in this file satisfy it.
type Action interface {
	Kind() string
	sealed()
}

// Document-scoped actions carry the Generation they were produced against,
// as returned by Store.Generation. Actions from an earlier generation are
// rejected so they cannot index into a newer document.

// DocumentLoaded replaces the current document and resets all per-document
// state. History and preferences survive.
type DocumentLoaded struct {
	Glyphs *glyph.Maps
}

// LayoutChanged reports new container metrics or a changed auto/manual
// choice. It is valid before any document is loaded.
type LayoutChanged struct {
	Metrics layout.Metrics
	Config  layout.Config
}

type ScrollTo struct {
	Generation uint64
	Row        int
}

type ScrollBy struct {
	Generation uint64
	Rows       int
}

// WheelScrolled requests a scroll by a wheel delta. CellHeight is the row
// height in the same unit as Delta; zero uses the last measured metrics.
type WheelScrolled struct {
	Generation uint64
	Delta      float64
	CellHeight float64
}

type SlidingChanged struct {
	Generation uint64
	Sliding    bool
}

// CursorSet moves the cursor. Extend is set for shift-modified moves.
type CursorSet struct {
	Generation uint64
	Index      int
	Extend     bool
}

type SelectionBegin struct {
	Generation uint64
	Index      int
}

type SelectionExtend struct {
	Generation uint64
	Index      int
}

type SelectionEnd struct {
	Generation uint64
}

type SelectionCleared struct {
	Generation uint64
}

// SearchQueryChanged recomputes matches.
type SearchQueryChanged struct {
	Query string
	Mode  search.Mode
}

// SearchNavigate moves to the next or previous match and records the query
// in the history.
type SearchNavigate struct {
	Backward bool
}

// HistoryRecall replaces the query with an older or newer history entry.
type HistoryRecall struct {
	Older bool
}

// AddressBaseChanged sets the radix used by Store.Address.
type AddressBaseChanged struct {
	Base glyph.Base
}

func (DocumentLoaded) Kind() string     { return "document-loaded" }
func (LayoutChanged) Kind() string      { return "layout-changed" }
func (ScrollTo) Kind() string           { return "scroll-to" }
func (ScrollBy) Kind() string           { return "scroll-by" }
func (WheelScrolled) Kind() string      { return "wheel-scrolled" }
func (SlidingChanged) Kind() string     { return "sliding-changed" }
func (CursorSet) Kind() string          { return "cursor-set" }
func (SelectionBegin) Kind() string     { return "selection-begin" }
func (SelectionExtend) Kind() string    { return "selection-extend" }
func (SelectionEnd) Kind() string       { return "selection-end" }
func (SelectionCleared) Kind() string   { return "selection-cleared" }
func (SearchQueryChanged) Kind() string { return "search-query-changed" }
func (SearchNavigate) Kind() string     { return "search-navigate" }
func (HistoryRecall) Kind() string      { return "history-recall" }
func (AddressBaseChanged) Kind() string { return "address-base-changed" }

func (DocumentLoaded) sealed()     {}
func (LayoutChanged) sealed()      {}
func (ScrollTo) sealed()           {}
func (ScrollBy) sealed()           {}
func (WheelScrolled) sealed()      {}
func (SlidingChanged) sealed()     {}
func (CursorSet) sealed()          {}
func (SelectionBegin) sealed()     {}
func (SelectionExtend) sealed()    {}
func (SelectionEnd) sealed()       {}
func (SelectionCleared) sealed()   {}
func (SearchQueryChanged) sealed() {}
func (SearchNavigate) sealed()     {}
func (HistoryRecall) sealed()      {}
func (AddressBaseChanged) sealed() {}
