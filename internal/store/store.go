// Package store threads every piece of hex viewer state through a single
// ordered action stream and exposes the per-cell query surface a renderer
// reads after each dispatch.
package store

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hexview/internal/glyph"
	"hexview/internal/history"
	"hexview/internal/layout"
	"hexview/internal/search"
	"hexview/internal/selection"
	"hexview/internal/viewport"
)

// Status is the document lifecycle state.
type Status int

const (
	StatusUnloaded Status = iota
	StatusLoaded
)

func (s Status) String() string {
	if s == StatusLoaded {
		return "loaded"
	}
	return "unloaded"
}

var (
	// ErrUnknownAction is returned for an action outside the closed set.
	ErrUnknownAction = errors.New("unknown action")
	// ErrNotLoaded is returned for document actions before any document.
	ErrNotLoaded = errors.New("no document loaded")
	// ErrStaleGeneration is returned for actions built against a replaced document.
	ErrStaleGeneration = errors.New("stale document generation")
	// ErrIndexOutOfRange is returned for byte indices outside the document.
	ErrIndexOutOfRange = errors.New("byte index out of range")
	// ErrInvalidAction is returned for actions with invalid field values.
	ErrInvalidAction = errors.New("invalid action")
)

// Preferences is the process-wide state that outlives a document.
type Preferences struct {
	AddressBase glyph.Base
	History     []string
}

// PrefsStore persists Preferences between runs.
type PrefsStore interface {
	Load() (Preferences, error)
	Save(Preferences) error
}

// Decoration is the visual classification of one cell.
type Decoration struct {
	Cursor       bool
	Selected     bool
	Match        bool
	CurrentMatch bool
}

// SearchStatus summarizes the search for status lines.
type SearchStatus struct {
	Query   string
	Mode    search.Mode
	Matches int
	// Current is the 0-based current match, or -1.
	Current int
}

// Store is the single state container of a hex viewer. It is not safe for
// concurrent dispatch; the glyph maps it hands out are.
type Store struct {
	status     Status
	generation uint64
	glyphs     *glyph.Maps

	metrics   layout.Metrics
	layout    layout.Config
	steps     layout.Steps
	viewport  viewport.State
	selection selection.Tracker
	search    search.State
	history   *history.History
	base      glyph.Base

	prefs  PrefsStore
	strict bool
	logger zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithStrict makes rejected actions return their error and log at error
// level. Without it rejections are silent no-ops.
func WithStrict(strict bool) Option {
	return func(s *Store) { s.strict = strict }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithPrefs restores preferences at construction and saves them on change.
func WithPrefs(p PrefsStore) Option {
	return func(s *Store) { s.prefs = p }
}

func WithHistoryLimit(n int) Option {
	return func(s *Store) { s.history = history.New(n) }
}

func WithColumnSteps(steps layout.Steps) Option {
	return func(s *Store) { s.steps = steps }
}

// WithAddressBase sets the initial address base. Restored preferences win.
func WithAddressBase(b glyph.Base) Option {
	return func(s *Store) {
		if b.Valid() {
			s.base = b
		}
	}
}

// WithLayout sets the initial layout configuration.
func WithLayout(cfg layout.Config) Option {
	return func(s *Store) { s.layout = cfg }
}

func New(opts ...Option) *Store {
	s := &Store{
		layout:    layout.DefaultConfig(),
		steps:     layout.DefaultSteps,
		selection: selection.New(),
		search:    search.NewState(),
		history:   history.New(history.DefaultLimit),
		base:      glyph.BaseHex,
		logger:    log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.restore()
	return s
}

func (s *Store) restore() {
	if s.prefs == nil {
		return
	}
	p, err := s.prefs.Load()
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load viewer preferences")
		return
	}
	if p.AddressBase.Valid() {
		s.base = p.AddressBase
	}
	s.history.Restore(p.History)
}

func (s *Store) persist() {
	if s.prefs == nil {
		return
	}
	err := s.prefs.Save(Preferences{AddressBase: s.base, History: s.history.Values()})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to save viewer preferences")
	}
}

// Dispatch applies a. Invalid actions leave the state untouched; in strict
// mode their error is returned, otherwise Dispatch returns nil.
func (s *Store) Dispatch(a Action) error {
	err := s.apply(a)
	if err == nil {
		return nil
	}

	kind := "nil"
	if a != nil {
		kind = a.Kind()
	}
	if s.strict {
		s.logger.Error().Err(err).Str("action", kind).Uint64("generation", s.generation).Msg("action rejected")
		return err
	}
	s.logger.Debug().Err(err).Str("action", kind).Uint64("generation", s.generation).Msg("action ignored")
	return nil
}

func (s *Store) apply(a Action) error {
	switch a := a.(type) {
	case DocumentLoaded:
		s.load(a.Glyphs)
		return nil

	case LayoutChanged:
		s.relayout(a.Metrics, a.Config)
		return nil

	case ScrollTo:
		if err := s.checkDocument(a.Generation); err != nil {
			return err
		}
		s.viewport = s.viewport.SetScrollIndex(a.Row, s.layout.Rows)
		return nil

	case ScrollBy:
		if err := s.checkDocument(a.Generation); err != nil {
			return err
		}
		s.viewport = s.viewport.ScrollBy(a.Rows, s.layout.Rows)
		return nil

	case WheelScrolled:
		if err := s.checkDocument(a.Generation); err != nil {
			return err
		}
		cell := a.CellHeight
		if cell == 0 {
			cell = float64(s.metrics.CellHeight)
		}
		s.viewport = s.viewport.ScrollByWheel(a.Delta, cell, s.layout.Rows)
		return nil

	case SlidingChanged:
		if err := s.checkDocument(a.Generation); err != nil {
			return err
		}
		s.viewport.Sliding = a.Sliding
		return nil

	case CursorSet:
		if err := s.checkIndex(a.Generation, a.Index); err != nil {
			return err
		}
		s.selection.SetCursor(a.Index, a.Extend)
		s.reveal(a.Index)
		return nil

	case SelectionBegin:
		if err := s.checkIndex(a.Generation, a.Index); err != nil {
			return err
		}
		s.selection.Begin(a.Index)
		return nil

	case SelectionExtend:
		if err := s.checkIndex(a.Generation, a.Index); err != nil {
			return err
		}
		s.selection.Extend(a.Index)
		s.reveal(a.Index)
		return nil

	case SelectionEnd:
		if err := s.checkDocument(a.Generation); err != nil {
			return err
		}
		s.selection.End()
		return nil

	case SelectionCleared:
		if err := s.checkDocument(a.Generation); err != nil {
			return err
		}
		s.selection.Clear()
		return nil

	case SearchQueryChanged:
		if a.Mode != search.ModeText && a.Mode != search.ModeHex {
			return fmt.Errorf("search mode %d: %w", a.Mode, ErrInvalidAction)
		}
		s.search = search.Run(s.glyphs, a.Query, a.Mode)
		return nil

	case SearchNavigate:
		s.navigate(a.Backward)
		return nil

	case HistoryRecall:
		s.recall(a.Older)
		return nil

	case AddressBaseChanged:
		if !a.Base.Valid() {
			return fmt.Errorf("address base %d: %w", a.Base, ErrInvalidAction)
		}
		if a.Base != s.base {
			s.base = a.Base
			s.persist()
		}
		return nil
	}
	return fmt.Errorf("%T: %w", a, ErrUnknownAction)
}

func (s *Store) checkDocument(generation uint64) error {
	if s.status != StatusLoaded {
		return ErrNotLoaded
	}
	if generation != s.generation {
		return fmt.Errorf("generation %d, current %d: %w", generation, s.generation, ErrStaleGeneration)
	}
	return nil
}

func (s *Store) checkIndex(generation uint64, index int) error {
	if err := s.checkDocument(generation); err != nil {
		return err
	}
	if index < 0 || index >= s.glyphs.Len() {
		return fmt.Errorf("index %d, length %d: %w", index, s.glyphs.Len(), ErrIndexOutOfRange)
	}
	return nil
}

func (s *Store) load(m *glyph.Maps) {
	if m == nil {
		m = glyph.Build(nil)
	}
	s.generation++
	s.status = StatusLoaded
	s.glyphs = m
	s.viewport = viewport.New(m.Len(), s.layout.Columns)
	s.selection = selection.New()
	s.search = search.NewState()
	s.history.Reset()
	s.logger.Debug().Int("bytes", m.Len()).Uint64("generation", s.generation).Msg("document loaded")
}

func (s *Store) relayout(m layout.Metrics, cfg layout.Config) {
	old := s.layout.Columns
	s.metrics = m
	s.layout = layout.Compute(m, cfg, s.steps)
	s.viewport = s.viewport.Relayout(old, s.layout.Columns, s.glyphs.Len(), s.layout.Rows)
}

func (s *Store) reveal(index int) {
	s.viewport = s.viewport.ScrollToIndex(index, s.layout.Columns, s.layout.Rows)
}

func (s *Store) navigate(backward bool) {
	var (
		target int
		ok     bool
	)
	if backward {
		target, ok = s.search.Previous()
	} else {
		target, ok = s.search.Next()
	}
	if s.history.Push(s.search.Query) {
		s.persist()
	}
	if ok {
		s.reveal(target)
	}
}

func (s *Store) recall(older bool) {
	var (
		query string
		ok    bool
	)
	if older {
		query, ok = s.history.Up()
	} else {
		query, ok = s.history.Down()
	}
	if ok {
		s.search = search.Run(s.glyphs, query, s.search.Mode)
	}
}

func (s *Store) Status() Status { return s.status }

// Generation identifies the current document. Document-scoped actions must
// carry it.
func (s *Store) Generation() uint64 { return s.generation }

func (s *Store) Len() int { return s.glyphs.Len() }

func (s *Store) Glyphs() *glyph.Maps { return s.glyphs }

func (s *Store) Layout() layout.Config { return s.layout }

func (s *Store) Metrics() layout.Metrics { return s.metrics }

func (s *Store) Viewport() viewport.State { return s.viewport }

func (s *Store) Cursor() int { return s.selection.Cursor() }

func (s *Store) Selection() (selection.Range, bool) { return s.selection.Range() }

func (s *Store) Search() search.State {
	st := s.search
	st.Matches = slices.Clone(st.Matches)
	return st
}

func (s *Store) SearchStatus() SearchStatus {
	return SearchStatus{
		Query:   s.search.Query,
		Mode:    s.search.Mode,
		Matches: len(s.search.Matches),
		Current: s.search.Current,
	}
}

func (s *Store) History() []string { return s.history.Values() }

func (s *Store) AddressBase() glyph.Base { return s.base }

// CellGlyph returns the glyph of kind at index, or "" out of range.
func (s *Store) CellGlyph(index int, kind glyph.Kind) string {
	return s.glyphs.Glyph(index, kind)
}

// CellDecoration classifies index. Out-of-range indices are undecorated.
func (s *Store) CellDecoration(index int) Decoration {
	if index < 0 || index >= s.glyphs.Len() {
		return Decoration{}
	}
	c := s.selection.Classify(index)
	return Decoration{
		Cursor:       c.Cursor,
		Selected:     c.Selected,
		Match:        s.search.IsMatch(index),
		CurrentMatch: s.search.IsCurrent(index),
	}
}

func (s *Store) VisibleRange() viewport.Range {
	return viewport.VisibleRange(s.viewport, s.glyphs.Len(), s.layout)
}

func (s *Store) ScrollBounds() viewport.Bounds {
	return s.viewport.Bounds(s.layout.Rows)
}

// Address renders index in the current address base, padded to the width
// of the document's last address.
func (s *Store) Address(index int) string {
	if index < 0 {
		index = 0
	}
	return glyph.Address(uint64(index), s.base, glyph.AddressWidth(s.glyphs.Len(), s.base))
}

// SelectedRange returns the selection, or the cursor byte when nothing is
// selected.
func (s *Store) SelectedRange() (selection.Range, bool) {
	if r, ok := s.selection.Range(); ok {
		return r, true
	}
	c := s.selection.Cursor()
	if c == selection.NoIndex || c >= s.glyphs.Len() {
		return selection.Range{}, false
	}
	return selection.Range{Start: c, End: c}, true
}

func (s *Store) SelectedBytes() []byte {
	r, ok := s.SelectedRange()
	if !ok {
		return nil
	}
	return s.glyphs.Bytes(r.Start, r.End+1)
}

// CopySelection renders SelectedRange as hex pairs separated by spaces, or
// as the concatenated text glyphs.
func (s *Store) CopySelection(kind glyph.Kind) string {
	r, ok := s.SelectedRange()
	if !ok {
		return ""
	}
	var b strings.Builder
	for i := r.Start; i <= r.End; i++ {
		if kind == glyph.KindHex && i > r.Start {
			b.WriteByte(' ')
		}
		b.WriteString(s.glyphs.Glyph(i, kind))
	}
	return b.String()
}
