package viewer

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"

	"hexview/internal/buffer"
	"hexview/internal/config"
	"hexview/internal/glyph"
	"hexview/internal/search"
	"hexview/internal/store"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func newTestModel(t *testing.T, path string) (*Model, *bytes.Buffer) {
	t.Helper()
	st := store.New(store.WithStrict(true), store.WithLogger(zerolog.Nop()))
	var clip bytes.Buffer
	m := NewModel(path, buffer.FormatRaw, config.DefaultConfig(), st, WithClipboard(&clip))
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, &clip
}

func loadedModel(t *testing.T, data []byte) (*Model, *bytes.Buffer) {
	t.Helper()
	m, clip := newTestModel(t, "")
	m.Update(loadedMsg{buf: buffer.FromBytes(data)})
	if m.statusMsg != "" {
		t.Fatalf("unexpected status after load: %s", m.statusMsg)
	}
	return m, clip
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, keys ...tea.KeyMsg) {
	for _, k := range keys {
		m.Update(k)
	}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(runes(string(r)))
	}
}

func TestLoadingBeforeResize(t *testing.T) {
	st := store.New(store.WithLogger(zerolog.Nop()))
	m := NewModel("", buffer.FormatRaw, nil, st)
	if got := m.View(); got != "Loading..." {
		t.Errorf("expected Loading..., got %q", got)
	}
}

func TestLayoutFromWindowSize(t *testing.T) {
	m, _ := loadedModel(t, make([]byte, 100))

	l := m.store.Layout()
	if l.Columns != 16 {
		t.Errorf("expected 16 columns, got %d", l.Columns)
	}
	if l.Rows != 24-chromeHeight {
		t.Errorf("expected %d rows, got %d", 24-chromeHeight, l.Rows)
	}
}

func TestRenderRows(t *testing.T) {
	m, _ := loadedModel(t, []byte("ABCDEFGHIJKLMNOPQR"))

	view := ansi.Strip(m.View())
	want := "00000000  41 42 43 44 45 46 47 48 49 4A 4B 4C 4D 4E 4F 50  ABCDEFGHIJKLMNOP"
	if !strings.Contains(view, want) {
		t.Errorf("expected first row %q in view:\n%s", want, view)
	}
	if !strings.Contains(view, "00000010  51 52 ") {
		t.Errorf("expected second row in view:\n%s", view)
	}
}

func TestKeyNavigation(t *testing.T) {
	m, _ := loadedModel(t, make([]byte, 64))

	press(m, tea.KeyMsg{Type: tea.KeyRight})
	if c := m.store.Cursor(); c != 1 {
		t.Fatalf("expected cursor 1, got %d", c)
	}
	press(m, tea.KeyMsg{Type: tea.KeyDown})
	if c := m.store.Cursor(); c != 17 {
		t.Fatalf("expected cursor 17, got %d", c)
	}

	press(m, tea.KeyMsg{Type: tea.KeyShiftLeft})
	r, ok := m.store.Selection()
	if !ok || r.Start != 16 || r.End != 17 {
		t.Errorf("expected selection 16..17, got %+v (%v)", r, ok)
	}

	press(m, tea.KeyMsg{Type: tea.KeyEscape})
	if _, ok := m.store.Selection(); ok {
		t.Error("expected selection cleared")
	}

	press(m, tea.KeyMsg{Type: tea.KeyCtrlEnd})
	if c := m.store.Cursor(); c != 63 {
		t.Errorf("expected cursor 63, got %d", c)
	}
	press(m, tea.KeyMsg{Type: tea.KeyHome})
	if c := m.store.Cursor(); c != 48 {
		t.Errorf("expected cursor 48, got %d", c)
	}
}

func TestFindAndNavigate(t *testing.T) {
	m, _ := loadedModel(t, []byte("abcABCabc"))

	press(m, runes("f"))
	if m.view != ViewFind {
		t.Fatalf("expected find view, got %d", m.view)
	}
	typeText(m, "abc")

	s := m.store.SearchStatus()
	if s.Matches != 3 || s.Current != -1 {
		t.Fatalf("expected 3 matches and no current, got %+v", s)
	}

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if s := m.store.SearchStatus(); s.Current != 1 {
		t.Errorf("expected current match 1, got %d", s.Current)
	}
	if d := m.store.CellDecoration(3); !d.CurrentMatch {
		t.Errorf("expected byte 3 in current match, got %+v", d)
	}

	press(m, tea.KeyMsg{Type: tea.KeyEscape})
	if m.view != ViewMain {
		t.Errorf("expected main view, got %d", m.view)
	}

	press(m, runes("N"))
	if s := m.store.SearchStatus(); s.Current != 0 {
		t.Errorf("expected current match 0, got %d", s.Current)
	}
}

func TestFindHexMode(t *testing.T) {
	m, _ := loadedModel(t, []byte{0x00, 0x41, 0x42, 0x41})

	press(m, runes("/"), tea.KeyMsg{Type: tea.KeyTab})
	if m.findMode != search.ModeHex {
		t.Fatalf("expected hex mode")
	}
	typeText(m, "zq41")
	if got := m.findInput.Value(); got != "41" {
		t.Errorf("expected non-hex input ignored, got %q", got)
	}
	if s := m.store.SearchStatus(); s.Matches != 2 || s.Mode != search.ModeHex {
		t.Errorf("expected 2 hex matches, got %+v", s)
	}

	press(m, tea.KeyMsg{Type: tea.KeyBackspace})
	if got := m.findInput.Value(); got != "4" {
		t.Errorf("expected backspace to drop a char, got %q", got)
	}

	press(m, tea.KeyMsg{Type: tea.KeyBackspace})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("41 42"), Paste: true})
	if got := m.findInput.Value(); got != "41 42" {
		t.Errorf("expected pasted query, got %q", got)
	}
	if s := m.store.SearchStatus(); s.Query != "41 42" || s.Matches != 1 {
		t.Errorf("expected one match for pasted query, got %+v", s)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" 4G"), Paste: true})
	if got := m.findInput.Value(); got != "41 42" {
		t.Errorf("expected rejected paste to leave query alone, got %q", got)
	}
}

func TestFindHistoryRecall(t *testing.T) {
	m, _ := loadedModel(t, []byte("one two"))

	press(m, runes("f"))
	typeText(m, "one")
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	for range "one" {
		press(m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	typeText(m, "two")
	press(m, tea.KeyMsg{Type: tea.KeyEnter})

	press(m, tea.KeyMsg{Type: tea.KeyUp})
	if got := m.findInput.Value(); got != "two" {
		t.Errorf("expected most recent query, got %q", got)
	}
	press(m, tea.KeyMsg{Type: tea.KeyUp})
	if got := m.findInput.Value(); got != "one" {
		t.Errorf("expected older query, got %q", got)
	}
}

func TestGoto(t *testing.T) {
	m, _ := loadedModel(t, make([]byte, 1024))

	press(m, runes("g"))
	typeText(m, "0xz2g00")
	if got := m.gotoInput.Value(); got != "0x200" {
		t.Errorf("expected letters outside hex rejected, got %q", got)
	}
	press(m, tea.KeyMsg{Type: tea.KeyEnter})

	if c := m.store.Cursor(); c != 0x200 {
		t.Errorf("expected cursor 0x200, got %d", c)
	}
	if r := m.store.VisibleRange(); !r.Contains(0x200) {
		t.Errorf("expected offset visible, got %+v", r)
	}

	press(m, runes("g"))
	typeText(m, "99999")
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if c := m.store.Cursor(); c != 1023 {
		t.Errorf("expected cursor clamped to 1023, got %d", c)
	}
}

func TestCopyWritesOSC52(t *testing.T) {
	m, clip := loadedModel(t, []byte("ABCD"))

	press(m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyShiftRight})
	press(m, tea.KeyMsg{Type: tea.KeyCtrlC})

	want := base64.StdEncoding.EncodeToString([]byte("42 43"))
	if !strings.Contains(clip.String(), want) {
		t.Errorf("expected %q in clipboard sequence %q", want, clip.String())
	}
	if m.statusMsg != "Copied 2 bytes" {
		t.Errorf("unexpected status %q", m.statusMsg)
	}

	clip.Reset()
	press(m, runes("t"))
	if want := base64.StdEncoding.EncodeToString([]byte("BC")); !strings.Contains(clip.String(), want) {
		t.Errorf("expected %q in clipboard sequence %q", want, clip.String())
	}
}

func TestMouseDragSelects(t *testing.T) {
	m, _ := loadedModel(t, make([]byte, 64))
	g := m.grid()

	m.Update(tea.MouseMsg{X: g.hexX + 2*hexCellWidth, Y: g.top, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: g.textX + 5*textCellWidth, Y: g.top + 1, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: g.textX + 5*textCellWidth, Y: g.top + 1, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	r, ok := m.store.Selection()
	if !ok || r.Start != 2 || r.End != 21 {
		t.Errorf("expected selection 2..21, got %+v (%v)", r, ok)
	}
	if m.dragging {
		t.Error("expected drag finished")
	}
	if c := m.store.Cursor(); c != 2 {
		t.Errorf("expected cursor 2, got %d", c)
	}
}

func TestMouseWheelAndScrollbar(t *testing.T) {
	m, _ := loadedModel(t, make([]byte, 1024))

	m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	if s := m.store.Viewport().ScrollIndex; s != wheelRows {
		t.Errorf("expected scroll %d, got %d", wheelRows, s)
	}
	m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	if s := m.store.Viewport().ScrollIndex; s != 0 {
		t.Errorf("expected scroll clamped to 0, got %d", s)
	}

	g := m.grid()
	m.Update(tea.MouseMsg{X: g.scrollX, Y: g.top + g.rows - 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !m.store.Viewport().Sliding {
		t.Fatal("expected sliding")
	}
	if strings.Contains(ansi.Strip(m.View()), "Endianness") {
		t.Error("expected decoder hidden while sliding")
	}
	last := m.store.ScrollBounds().Max
	if s := m.store.Viewport().ScrollIndex; s != last {
		t.Errorf("expected scroll %d, got %d", last, s)
	}

	m.Update(tea.MouseMsg{X: g.scrollX, Y: g.top + g.rows - 1, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if m.store.Viewport().Sliding {
		t.Error("expected sliding finished")
	}
}

func TestColumnControls(t *testing.T) {
	m, _ := loadedModel(t, make([]byte, 256))

	press(m, runes("-"))
	if l := m.store.Layout(); l.AutoColumns || l.Columns != 12 {
		t.Errorf("expected manual 12 columns, got %+v", l)
	}
	press(m, runes("+"), runes("+"))
	if l := m.store.Layout(); l.Columns != 24 {
		t.Errorf("expected 24 columns, got %d", l.Columns)
	}
	press(m, runes("a"))
	if l := m.store.Layout(); !l.AutoColumns || l.Columns != 16 {
		t.Errorf("expected auto 16 columns, got %+v", l)
	}
}

func TestBaseAndFullscreen(t *testing.T) {
	m, _ := loadedModel(t, make([]byte, 32))

	press(m, runes("b"))
	if b := m.store.AddressBase(); b != glyph.BaseDecimal {
		t.Errorf("expected decimal base, got %s", b)
	}

	rows := m.store.Layout().Rows
	press(m, runes("z"))
	if l := m.store.Layout(); l.Rows != 24 {
		t.Errorf("expected fullscreen rows 24, got %d", l.Rows)
	}
	if strings.Contains(ansi.Strip(m.View()), "Quit") {
		t.Error("expected no legend in fullscreen")
	}
	press(m, runes("z"))
	if l := m.store.Layout(); l.Rows != rows {
		t.Errorf("expected %d rows back, got %d", rows, l.Rows)
	}
}

func TestDecoderEndianness(t *testing.T) {
	m, _ := loadedModel(t, []byte{0x01, 0x02, 0x03, 0x04})

	press(m, tea.KeyMsg{Type: tea.KeyCtrlHome})
	view := ansi.Strip(m.View())
	if !strings.Contains(view, "u16: 258") || !strings.Contains(view, "u32: 16909060") {
		t.Errorf("expected big endian values in view:\n%s", view)
	}
	if !strings.Contains(view, "u64: -") {
		t.Errorf("expected u64 unavailable:\n%s", view)
	}

	press(m, runes("e"))
	view = ansi.Strip(m.View())
	if !strings.Contains(view, "u16: 513") || !strings.Contains(view, "Little") {
		t.Errorf("expected little endian values in view:\n%s", view)
	}
}

func TestDecoderSignedAndFloat(t *testing.T) {
	m, _ := loadedModel(t, []byte{0xFF, 0xFF, 0xFF, 0xFE, 0x3F, 0x80, 0x00, 0x00})

	press(m, tea.KeyMsg{Type: tea.KeyCtrlHome})
	view := ansi.Strip(m.View())
	for _, want := range []string{"u8: 255", "i8: -1", "i16: -1", "i32: -2", "u64: 18446744066184970240"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}

	for i := 0; i < 4; i++ {
		press(m, tea.KeyMsg{Type: tea.KeyRight})
	}
	view = ansi.Strip(m.View())
	if !strings.Contains(view, "f32: 1") || !strings.Contains(view, "f64: -") {
		t.Errorf("expected f32 1 and no f64 in view:\n%s", view)
	}
}

func TestInitLoadsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(path, []byte("first"), 0644); err != nil {
		t.Fatal(err)
	}

	m, _ := newTestModel(t, path)
	m.Update(m.Init()())
	if m.store.Len() != 5 {
		t.Fatalf("expected 5 bytes, got %d", m.store.Len())
	}
	gen := m.store.Generation()

	press(m, runes("r"))
	if m.statusMsg != "File unchanged" {
		t.Errorf("unexpected status %q", m.statusMsg)
	}

	if err := os.WriteFile(path, []byte("second!"), 0644); err != nil {
		t.Fatal(err)
	}
	_, cmd := m.Update(runes("r"))
	if cmd == nil {
		t.Fatal("expected reload command")
	}
	m.Update(cmd())
	if m.store.Len() != 7 || m.store.Generation() == gen {
		t.Errorf("expected reloaded document, got len=%d gen=%d", m.store.Len(), m.store.Generation())
	}
}

func TestLoadFailure(t *testing.T) {
	m, _ := newTestModel(t, filepath.Join(t.TempDir(), "missing.bin"))
	m.Update(m.Init()())

	if m.store.Status() != store.StatusUnloaded {
		t.Error("expected document to stay unloaded")
	}
	if !strings.HasPrefix(m.statusMsg, "Error:") {
		t.Errorf("expected error status, got %q", m.statusMsg)
	}
}

func TestHelpAndQuit(t *testing.T) {
	m, _ := loadedModel(t, []byte("x"))

	press(m, runes("h"))
	if !strings.Contains(m.View(), "HELP") {
		t.Error("expected help screen")
	}
	press(m, tea.KeyMsg{Type: tea.KeyEscape})
	if m.view != ViewMain {
		t.Error("expected main view")
	}

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
