package viewer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"hexview/internal/glyph"
	"hexview/internal/layout"
	"hexview/internal/search"
	"hexview/internal/store"
)

const (
	// address, two spaces, hex pane, one space, text pane, one space, scrollbar
	addressGap        = 2
	paneGap           = 1
	scrollbarGap      = 1
	reservedGridWidth = addressGap + paneGap + scrollbarGap + 1

	// legend, column header, status line and the bottom panel
	headerHeight = 2
	panelHeight  = 3
	chromeHeight = headerHeight + 1 + panelHeight
)

var (
	hexCellWidth  = runewidth.StringWidth("00 ")
	textCellWidth = widestTextGlyph()
	byteCellWidth = hexCellWidth + textCellWidth
)

// widestTextGlyph is 1 except where the terminal treats the null glyph as
// east asian wide.
func widestTextGlyph() int {
	w := 1
	for b := 0; b < 256; b++ {
		if gw := runewidth.StringWidth(glyph.TextGlyph(byte(b))); gw > w {
			w = gw
		}
	}
	return w
}

// grid describes where the byte grid sits on screen.
type grid struct {
	top       int
	rows      int
	cols      int
	addrWidth int
	hexX      int
	textX     int
	scrollX   int
}

func (m *Model) grid() grid {
	l := m.store.Layout()
	g := grid{rows: l.Rows, cols: l.Columns, addrWidth: m.addressWidth()}
	if l.Mode == layout.ModePaged {
		g.top = headerHeight
	}
	g.hexX = g.addrWidth + addressGap
	g.textX = g.hexX + g.cols*hexCellWidth + paneGap
	g.scrollX = g.textX + g.cols*textCellWidth + scrollbarGap
	return g
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.view == ViewHelp {
		return m.renderLegend() + "\n" + m.renderHelp()
	}

	if m.store.Layout().Mode == layout.ModeFullscreen {
		return m.renderGrid()
	}

	var b strings.Builder
	b.WriteString(m.renderLegend())
	b.WriteString("\n")
	b.WriteString(m.renderColumnHeader())
	b.WriteString("\n")
	b.WriteString(m.renderGrid())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	switch m.view {
	case ViewFind:
		b.WriteString(m.renderFind())
	case ViewGoto:
		b.WriteString(m.renderGoto())
	default:
		// Decoding is skipped while the scrollbar is dragged.
		if !m.store.Viewport().Sliding {
			b.WriteString(m.renderDecoder())
		}
	}

	return b.String()
}

func (m *Model) renderLegend() string {
	var items []string

	hl := func(text string, highlightIdx int) string {
		var result strings.Builder
		for i, ch := range text {
			if i == highlightIdx {
				result.WriteString(m.styles.LegendHighlight.Render(string(ch)))
			} else {
				result.WriteString(m.styles.Legend.Render(string(ch)))
			}
		}
		return result.String()
	}

	items = append(items, hl("Quit", 0))
	items = append(items, hl("Help", 0))

	if m.view == ViewMain {
		items = append(items, hl("Find", 0))
		items = append(items, hl("Goto", 0))
		items = append(items, hl("Base", 0))
		items = append(items, hl("Endian", 0))
		items = append(items, hl("Auto", 0))
		items = append(items, hl("Zoom", 0))
		if m.buf != nil && m.buf.Filename() != "" {
			items = append(items, hl("Reload", 0))
		} else {
			items = append(items, m.styles.Disabled.Render("Reload"))
		}
		items = append(items, m.styles.LegendHighlight.Render("^C")+m.styles.Legend.Render(" Copy"))
	} else {
		items = append(items, m.styles.LegendHighlight.Render("ESC")+m.styles.Legend.Render(" Back"))
	}

	legend := strings.Join(items, m.styles.Legend.Render(" | "))
	return m.styles.Legend.Width(m.width).Render(legend)
}

func (m *Model) renderColumnHeader() string {
	g := m.grid()
	header := strings.Repeat(" ", g.hexX)

	cursorCol := -1
	if c := m.store.Cursor(); c >= 0 && g.cols > 0 {
		cursorCol = c % g.cols
	}
	for i := 0; i < g.cols; i++ {
		label := fmt.Sprintf("%02X", i%256)
		if i == cursorCol {
			label = m.styles.IndexMarker.Render(label)
		}
		header += label + strings.Repeat(" ", hexCellWidth-2)
	}
	return header
}

func (m *Model) renderGrid() string {
	g := m.grid()
	if g.rows == 0 || g.cols == 0 {
		return ""
	}

	n := m.store.Len()
	first := m.store.Viewport().ScrollIndex
	cursorRow := -1
	if c := m.store.Cursor(); c >= 0 {
		cursorRow = c / g.cols
	}
	thumbStart, thumbEnd := m.scrollThumb(g.rows)

	lines := make([]string, 0, g.rows)
	for row := 0; row < g.rows; row++ {
		rowIndex := (first + row) * g.cols

		var line strings.Builder
		if rowIndex < n || (rowIndex == 0 && n == 0) {
			addr := m.store.Address(rowIndex)
			if first+row == cursorRow {
				addr = m.styles.IndexMarker.Render(addr)
			} else {
				addr = m.styles.Address.Render(addr)
			}
			line.WriteString(addr)
		} else {
			line.WriteString(strings.Repeat(" ", g.addrWidth))
		}
		line.WriteString(strings.Repeat(" ", addressGap))

		var hexLine, textLine strings.Builder
		for col := 0; col < g.cols; col++ {
			index := rowIndex + col
			hexStr := "  "
			textStr := strings.Repeat(" ", textCellWidth)
			if index < n {
				hexStr = m.store.CellGlyph(index, glyph.KindHex)
				textStr = runewidth.FillRight(m.store.CellGlyph(index, glyph.KindText), textCellWidth)
			}
			style := m.cellStyle(m.store.CellDecoration(index))
			hexLine.WriteString(style.Render(hexStr))
			hexLine.WriteString(strings.Repeat(" ", hexCellWidth-2))
			textLine.WriteString(style.Render(textStr))
		}
		line.WriteString(hexLine.String())
		line.WriteString(strings.Repeat(" ", paneGap))
		line.WriteString(textLine.String())
		line.WriteString(strings.Repeat(" ", scrollbarGap))

		switch {
		case thumbEnd <= thumbStart:
			line.WriteString(" ")
		case row >= thumbStart && row < thumbEnd:
			line.WriteString(m.styles.Normal.Render("█"))
		default:
			line.WriteString(m.styles.Disabled.Render("│"))
		}

		lines = append(lines, line.String())
	}

	return strings.Join(lines, "\n")
}

// cellStyle picks the strongest decoration: cursor, current match,
// selection, then match.
func (m *Model) cellStyle(d store.Decoration) lipgloss.Style {
	switch {
	case d.Cursor:
		return m.styles.Cursor
	case d.CurrentMatch:
		return m.styles.CurrentMatch
	case d.Selected:
		return m.styles.Selection
	case d.Match:
		return m.styles.Match
	}
	return m.styles.Normal
}

// scrollThumb returns the half-open screen rows covered by the scrollbar
// thumb. It is empty when everything fits.
func (m *Model) scrollThumb(rows int) (int, int) {
	b := m.store.ScrollBounds()
	total := m.store.Viewport().TotalRows
	if b.Max == 0 || rows == 0 || total == 0 {
		return 0, 0
	}
	size := rows * rows / total
	if size < 1 {
		size = 1
	}
	start := b.Current * (rows - size) / b.Max
	return start, start + size
}

func (m *Model) renderStatus() string {
	if m.statusMsg != "" {
		return ansi.Truncate(m.statusMsg, m.width, "…")
	}

	var parts []string
	if m.buf != nil && m.buf.Filename() != "" {
		parts = append(parts, filepath.Base(m.buf.Filename()))
	}

	n := m.store.Len()
	if c := m.store.Cursor(); c >= 0 {
		parts = append(parts, fmt.Sprintf("offset %s/%s", m.store.Address(c), m.store.Address(n)))
	} else {
		parts = append(parts, fmt.Sprintf("size %s", m.store.Address(n)))
	}
	if r, ok := m.store.Selection(); ok {
		parts = append(parts, fmt.Sprintf("sel %d bytes", r.Len()))
	}

	if s := m.store.SearchStatus(); s.Query != "" {
		if s.Current >= 0 {
			parts = append(parts, fmt.Sprintf("%q %d/%d", s.Query, s.Current+1, s.Matches))
		} else {
			parts = append(parts, fmt.Sprintf("%q %d matches", s.Query, s.Matches))
		}
	}

	l := m.store.Layout()
	cols := fmt.Sprintf("%d cols", l.Columns)
	if l.AutoColumns {
		cols += " auto"
	}
	parts = append(parts, cols, m.store.AddressBase().String())

	return m.styles.DecoderLabel.Render(ansi.Truncate(strings.Join(parts, " | "), m.width, "…"))
}

func (m *Model) renderHelp() string {
	help := `
HELP - hexview
==============

NAVIGATION
  Arrow keys      Move cursor
  Shift+Arrows    Select bytes
  Mouse drag      Select bytes
  Wheel           Scroll
  PgUp/PgDown     Page up/down
  Home/End        Start/end of line
  Ctrl+Home/End   Start/end of file
  ESC             Clear selection

SEARCH
  F or /          Find (TAB toggles text/hex, Up/Down recall history)
  N / Shift+N     Next/previous match

VIEW
  B               Cycle address base (hex, dec, oct)
  A               Toggle automatic columns
  + / -           More/fewer columns
  Z               Toggle fullscreen grid
  E               Toggle endianness

OTHER
  Ctrl+C or C     Copy selection as hex
  T               Copy selection as text
  G               Goto offset
  R               Reload file if it changed on disk
  H               Help (this screen)
  Q               Quit

Press ESC or H to close this help screen.
`
	return help
}

func (m *Model) renderFind() string {
	var b strings.Builder

	label := "Find text: "
	if m.findMode == search.ModeHex {
		label = "Find hex:  "
	}
	b.WriteString(m.styles.HelpTitle.Render(label))
	b.WriteString(m.findInput.View())
	b.WriteString("\n")

	s := m.store.SearchStatus()
	b.WriteString(fmt.Sprintf("Matches: %d", s.Matches))
	if s.Current >= 0 {
		b.WriteString(fmt.Sprintf("  current: %d", s.Current+1))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.DecoderLabel.Render("Enter next, Shift+TAB previous, TAB text/hex, Up/Down history, ESC close"))

	return b.String()
}

func (m *Model) renderGoto() string {
	var b strings.Builder
	b.WriteString(m.styles.HelpTitle.Render("Goto offset: "))
	b.WriteString(m.gotoInput.View())
	b.WriteString("\n")
	b.WriteString("(Prefix with 0x for hex offset)\n")
	b.WriteString(m.styles.DecoderLabel.Render("Press Enter to go, ESC to close"))
	return b.String()
}
