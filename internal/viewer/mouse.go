package viewer

import (
	tea "github.com/charmbracelet/bubbletea"

	"hexview/internal/store"
)

// wheelRows is how far one wheel notch scrolls.
const wheelRows = 3

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.view == ViewHelp || m.store.Status() != store.StatusLoaded {
		return
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.dispatch(store.WheelScrolled{Generation: m.gen(), Delta: -wheelRows, CellHeight: 1})
		return
	case tea.MouseButtonWheelDown:
		m.dispatch(store.WheelScrolled{Generation: m.gen(), Delta: wheelRows, CellHeight: 1})
		return
	}

	g := m.grid()
	row := msg.Y - g.top

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if msg.X == g.scrollX && row >= 0 && row < g.rows {
			m.dispatch(store.SlidingChanged{Generation: m.gen(), Sliding: true})
			m.slideTo(row, g)
			return
		}
		index, ok := m.hitTest(msg.X, msg.Y, g)
		if !ok {
			return
		}
		if msg.Shift {
			m.dispatch(store.CursorSet{Generation: m.gen(), Index: index, Extend: true})
			return
		}
		m.dispatch(store.CursorSet{Generation: m.gen(), Index: index})
		m.dispatch(store.SelectionBegin{Generation: m.gen(), Index: index})
		m.dragging = true

	case tea.MouseActionMotion:
		if m.store.Viewport().Sliding {
			m.slideTo(row, g)
			return
		}
		if !m.dragging {
			return
		}
		if index, ok := m.hitTest(msg.X, msg.Y, g); ok {
			m.dispatch(store.SelectionExtend{Generation: m.gen(), Index: index})
		}

	case tea.MouseActionRelease:
		if m.store.Viewport().Sliding {
			m.dispatch(store.SlidingChanged{Generation: m.gen(), Sliding: false})
			return
		}
		if m.dragging {
			m.dragging = false
			m.dispatch(store.SelectionEnd{Generation: m.gen()})
		}
	}
}

// hitTest maps a screen cell to a byte index in either pane.
func (m *Model) hitTest(x, y int, g grid) (int, bool) {
	row := y - g.top
	if row < 0 || row >= g.rows || g.cols == 0 {
		return 0, false
	}

	col := -1
	switch {
	case x >= g.hexX && x < g.hexX+g.cols*hexCellWidth:
		col = (x - g.hexX) / hexCellWidth
	case x >= g.textX && x < g.textX+g.cols*textCellWidth:
		col = (x - g.textX) / textCellWidth
	}
	if col < 0 {
		return 0, false
	}

	index := (m.store.Viewport().ScrollIndex+row)*g.cols + col
	if index >= m.store.Len() {
		return 0, false
	}
	return index, true
}

// slideTo scrolls so that the thumb follows the pointer row.
func (m *Model) slideTo(row int, g grid) {
	b := m.store.ScrollBounds()
	if row < 0 {
		row = 0
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	target := 0
	if g.rows > 1 {
		target = row * b.Max / (g.rows - 1)
	}
	m.dispatch(store.ScrollTo{Generation: m.gen(), Row: target})
}
