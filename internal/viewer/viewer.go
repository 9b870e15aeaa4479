// Package viewer is the terminal front end of the hex viewer. It turns
// bubbletea messages into store actions and renders from the store's query
// surface.
package viewer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"hexview/internal/buffer"
	"hexview/internal/config"
	"hexview/internal/glyph"
	"hexview/internal/layout"
	"hexview/internal/search"
	"hexview/internal/selection"
	"hexview/internal/store"
)

type View int

const (
	ViewMain View = iota
	ViewHelp
	ViewFind
	ViewGoto
)

type loadedMsg struct {
	buf *buffer.Buffer
}

type loadFailedMsg struct {
	err error
}

func loadCmd(path string, format buffer.Format) tea.Cmd {
	return func() tea.Msg {
		buf, err := buffer.Open(path, format)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return loadedMsg{buf: buf}
	}
}

type Model struct {
	store  *store.Store
	buf    *buffer.Buffer
	path   string
	format buffer.Format

	view      View
	width     int
	height    int
	config    *config.Config
	styles    *config.Styles
	bigEndian bool
	clipboard io.Writer

	findInput textinput.Model
	findMode  search.Mode
	gotoInput textinput.Model

	// Mouse drag selection in progress
	dragging bool

	statusMsg string
}

// Option configures a Model.
type Option func(*Model)

// WithClipboard sets where OSC 52 copy sequences are written.
func WithClipboard(w io.Writer) Option {
	return func(m *Model) { m.clipboard = w }
}

// NewModel returns a viewer for path. The file is read by Init.
func NewModel(path string, format buffer.Format, cfg *config.Config, st *store.Store, opts ...Option) *Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	m := &Model{
		store:     st,
		path:      path,
		format:    format,
		view:      ViewMain,
		config:    cfg,
		styles:    config.NewStyles(&cfg.Theme),
		bigEndian: true,
		clipboard: os.Stderr,
		findMode:  search.ModeText,
		findInput: newInput(256, nil),
		gotoInput: newInput(18, validateOffset),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	if m.path == "" {
		return nil
	}
	return loadCmd(m.path, m.format)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.relayout(m.store.Layout())
		return m, nil

	case loadedMsg:
		m.buf = msg.buf
		m.dispatch(store.DocumentLoaded{Glyphs: msg.buf.Glyphs()})
		m.relayout(m.store.Layout())
		m.findInput.SetValue("")
		log.Info().Str("file", msg.buf.Filename()).Int64("size", msg.buf.Size()).Str("sha256", msg.buf.Hash()).Msg("document loaded")
		return m, nil

	case loadFailedMsg:
		m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		log.Error().Err(msg.err).Str("file", m.path).Msg("failed to load document")
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	}

	// Cursor blink and other input messages
	var cmd tea.Cmd
	switch m.view {
	case ViewFind:
		m.findInput, cmd = m.findInput.Update(msg)
	case ViewGoto:
		m.gotoInput, cmd = m.gotoInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) dispatch(a store.Action) {
	if err := m.store.Dispatch(a); err != nil {
		m.statusMsg = fmt.Sprintf("Error: %v", err)
	}
}

func (m *Model) gen() uint64 {
	return m.store.Generation()
}

// metrics measures the terminal in cells for the current document.
func (m *Model) metrics() layout.Metrics {
	return layout.Metrics{
		Width:          m.width,
		Height:         m.height,
		CellWidth:      byteCellWidth,
		CellHeight:     1,
		ReservedWidth:  m.addressWidth() + reservedGridWidth,
		ReservedHeight: chromeHeight,
	}
}

func (m *Model) relayout(cfg layout.Config) {
	m.dispatch(store.LayoutChanged{Metrics: m.metrics(), Config: cfg})
}

func (m *Model) addressWidth() int {
	return glyph.AddressWidth(m.store.Len(), m.store.AddressBase())
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Clear status message on any key
	m.statusMsg = ""

	switch m.view {
	case ViewHelp:
		return m.handleHelpKey(msg)
	case ViewFind:
		return m.handleFindKey(msg)
	case ViewGoto:
		return m.handleGotoKey(msg)
	default:
		return m.handleMainKey(msg)
	}
}

func (m *Model) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := m.store.Layout().Columns
	rows := m.store.Layout().Rows

	switch msg.String() {
	// Navigation
	case "up":
		m.moveCursor(-cols, false)
	case "down":
		m.moveCursor(cols, false)
	case "left":
		m.moveCursor(-1, false)
	case "right":
		m.moveCursor(1, false)
	case "shift+up":
		m.moveCursor(-cols, true)
	case "shift+down":
		m.moveCursor(cols, true)
	case "shift+left":
		m.moveCursor(-1, true)
	case "shift+right":
		m.moveCursor(1, true)
	case "pgup":
		m.dispatch(store.ScrollBy{Generation: m.gen(), Rows: -rows})
		m.moveCursor(-rows*cols, false)
	case "pgdown":
		m.dispatch(store.ScrollBy{Generation: m.gen(), Rows: rows})
		m.moveCursor(rows*cols, false)
	case "home":
		if cur := m.cursorOrTop(); cols > 0 && cur >= 0 {
			m.setCursor(cur - cur%cols)
		}
	case "end":
		if cur := m.cursorOrTop(); cols > 0 && cur >= 0 {
			m.setCursor(cur - cur%cols + cols - 1)
		}
	case "ctrl+home":
		m.setCursor(0)
	case "ctrl+end":
		m.setCursor(m.store.Len() - 1)
	case "esc":
		m.dispatch(store.SelectionCleared{Generation: m.gen()})

	// Commands
	case "q", "Q":
		return m, tea.Quit
	case "h", "H", "?":
		m.view = ViewHelp
	case "f", "F", "/":
		m.view = ViewFind
		m.findInput.SetValue(m.store.SearchStatus().Query)
		m.findInput.CursorEnd()
		return m, m.findInput.Focus()
	case "g", "G":
		m.view = ViewGoto
		m.gotoInput.SetValue("")
		return m, m.gotoInput.Focus()
	case "n":
		m.dispatch(store.SearchNavigate{})
	case "N":
		m.dispatch(store.SearchNavigate{Backward: true})
	case "b", "B":
		m.dispatch(store.AddressBaseChanged{Base: m.store.AddressBase().Next()})
		m.relayout(m.store.Layout())
	case "e", "E":
		m.bigEndian = !m.bigEndian
	case "a", "A":
		cfg := m.store.Layout()
		cfg.AutoColumns = !cfg.AutoColumns
		m.relayout(cfg)
	case "+", "=":
		m.stepColumns(1)
	case "-", "_":
		m.stepColumns(-1)
	case "z", "Z":
		cfg := m.store.Layout()
		if cfg.Mode == layout.ModeFullscreen {
			cfg.Mode = layout.ModePaged
		} else {
			cfg.Mode = layout.ModeFullscreen
		}
		m.relayout(cfg)
	case "ctrl+c", "c":
		m.copy(glyph.KindHex)
	case "t":
		m.copy(glyph.KindText)
	case "r", "R":
		return m.tryReload()
	}

	return m, nil
}

// cursorOrTop returns the cursor, or the first visible byte when there is
// no cursor yet.
func (m *Model) cursorOrTop() int {
	if c := m.store.Cursor(); c != selection.NoIndex {
		return c
	}
	if m.store.Len() == 0 {
		return -1
	}
	return m.store.VisibleRange().Start
}

func (m *Model) moveCursor(delta int, extend bool) {
	cur := m.cursorOrTop()
	if cur < 0 {
		return
	}
	m.dispatch(store.CursorSet{Generation: m.gen(), Index: m.clampIndex(cur + delta), Extend: extend})
}

func (m *Model) setCursor(pos int) {
	if m.store.Len() == 0 {
		return
	}
	m.dispatch(store.CursorSet{Generation: m.gen(), Index: m.clampIndex(pos)})
}

func (m *Model) clampIndex(pos int) int {
	if pos < 0 {
		return 0
	}
	if maxPos := m.store.Len() - 1; pos > maxPos {
		return maxPos
	}
	return pos
}

// stepColumns switches to manual columns and moves to the neighbouring
// entry of the column table.
func (m *Model) stepColumns(dir int) {
	cfg := m.store.Layout()
	steps := layout.Steps(m.config.Viewer.ColumnSteps)
	if len(steps) == 0 {
		steps = layout.DefaultSteps
	}

	next := cfg.Columns
	if dir > 0 {
		for _, s := range steps {
			if s > cfg.Columns {
				next = s
				break
			}
		}
	} else {
		for i := len(steps) - 1; i >= 0; i-- {
			if steps[i] < cfg.Columns {
				next = steps[i]
				break
			}
		}
	}
	if next < 1 {
		next = 1
	}

	cfg.AutoColumns = false
	cfg.Columns = next
	m.relayout(cfg)
}

func (m *Model) copy(kind glyph.Kind) {
	text := m.store.CopySelection(kind)
	if text == "" {
		return
	}
	if _, err := osc52.New(text).WriteTo(m.clipboard); err != nil {
		m.statusMsg = fmt.Sprintf("Error: %v", err)
		return
	}
	r, _ := m.store.SelectedRange()
	m.statusMsg = fmt.Sprintf("Copied %d bytes", r.Len())
}

func (m *Model) tryReload() (tea.Model, tea.Cmd) {
	if m.buf == nil || m.buf.Filename() == "" {
		return m, nil
	}
	changed, err := m.buf.HasChangedOnDisk()
	if err != nil {
		m.statusMsg = fmt.Sprintf("Error: %v", err)
		return m, nil
	}
	if !changed {
		m.statusMsg = "File unchanged"
		return m, nil
	}
	return m, loadCmd(m.buf.Filename(), m.buf.Format())
}

func (m *Model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEscape || msg.String() == "h" || msg.String() == "H" || msg.String() == "?" {
		m.view = ViewMain
	}
	return m, nil
}

var (
	errNotHexQuery = errors.New("hex queries take hex digits and spaces")
	errNotOffset   = errors.New("offsets take decimal or 0x-prefixed hex digits")
)

func newInput(limit int, validate textinput.ValidateFunc) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = limit
	ti.Validate = validate
	return ti
}

func validateHexQuery(s string) error {
	for _, r := range s {
		if !isHexDigit(r) && r != ' ' {
			return errNotHexQuery
		}
	}
	return nil
}

func validateOffset(s string) error {
	for _, r := range s {
		if !isHexDigit(r) && r != 'x' && r != 'X' {
			return errNotOffset
		}
	}
	return nil
}

// updateInput forwards msg to in and drops any edit its Validate rejects.
func updateInput(in textinput.Model, msg tea.Msg) (textinput.Model, tea.Cmd) {
	prev := in.Value()
	next, cmd := in.Update(msg)
	if next.Err != nil {
		next.SetValue(prev)
		next.Err = nil
	}
	return next, cmd
}

func (m *Model) handleFindKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.findInput.Blur()
		m.view = ViewMain
		return m, nil
	case tea.KeyTab:
		if m.findMode == search.ModeText {
			m.findMode = search.ModeHex
			m.findInput.Validate = validateHexQuery
		} else {
			m.findMode = search.ModeText
			m.findInput.Validate = nil
		}
		m.findInput.SetValue("")
		m.updateQuery()
		return m, nil
	case tea.KeyUp, tea.KeyDown:
		m.dispatch(store.HistoryRecall{Older: msg.Type == tea.KeyUp})
		m.findInput.SetValue(m.store.SearchStatus().Query)
		m.findInput.CursorEnd()
		return m, nil
	case tea.KeyEnter:
		m.dispatch(store.SearchNavigate{})
		return m, nil
	case tea.KeyShiftTab:
		m.dispatch(store.SearchNavigate{Backward: true})
		return m, nil
	}

	prev := m.findInput.Value()
	var cmd tea.Cmd
	m.findInput, cmd = updateInput(m.findInput, msg)
	if m.findInput.Value() != prev {
		m.updateQuery()
	}
	return m, cmd
}

func (m *Model) updateQuery() {
	m.dispatch(store.SearchQueryChanged{Query: m.findInput.Value(), Mode: m.findMode})
}

func (m *Model) handleGotoKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.gotoInput.Blur()
		m.view = ViewMain
		return m, nil
	case tea.KeyEnter:
		m.doGoto()
		m.gotoInput.Blur()
		m.view = ViewMain
		return m, nil
	}

	var cmd tea.Cmd
	m.gotoInput, cmd = updateInput(m.gotoInput, msg)
	return m, cmd
}

func (m *Model) doGoto() {
	value := m.gotoInput.Value()
	if value == "" {
		return
	}

	var (
		offset int64
		err    error
	)
	input := strings.ToLower(value)
	if strings.HasPrefix(input, "0x") {
		offset, err = strconv.ParseInt(input[2:], 16, 64)
	} else {
		offset, err = strconv.ParseInt(input, 10, 64)
	}
	if err != nil {
		m.statusMsg = fmt.Sprintf("Invalid offset %q", value)
		return
	}
	if offset > int64(m.store.Len()) {
		offset = int64(m.store.Len())
	}

	m.setCursor(int(offset))
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
