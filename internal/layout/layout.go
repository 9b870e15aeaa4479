// Package layout resolves how many byte columns and rows fit in a container.
package layout

import (
	"errors"
	"fmt"
	"sort"
)

// Mode controls how the container height is interpreted.
type Mode int

const (
	// ModePaged reserves ReservedHeight for surrounding chrome.
	ModePaged Mode = iota
	// ModeFullscreen gives the whole container height to the grid.
	ModeFullscreen
)

func (m Mode) String() string {
	if m == ModeFullscreen {
		return "fullscreen"
	}
	return "paged"
}

// Config is the resolved grid. Zero Columns or Rows means not yet measured.
type Config struct {
	Columns     int
	Rows        int
	AutoColumns bool
	AutoRows    bool
	Mode        Mode
}

func DefaultConfig() Config {
	return Config{AutoColumns: true, AutoRows: true, Mode: ModePaged}
}

// Metrics describe the container and a single byte cell. Units are whatever
// the caller measures in (pixels, terminal cells); only ratios matter.
type Metrics struct {
	Width          int
	Height         int
	CellWidth      int
	CellHeight     int
	ReservedWidth  int
	ReservedHeight int
}

func (m Metrics) AvailableWidth() int {
	w := m.Width - m.ReservedWidth
	if w < 0 {
		return 0
	}
	return w
}

func (m Metrics) AvailableHeight(mode Mode) int {
	h := m.Height
	if mode == ModePaged {
		h -= m.ReservedHeight
	}
	if h < 0 {
		return 0
	}
	return h
}

// Steps is a strictly increasing table of column counts auto mode may pick.
type Steps []int

// DefaultSteps keeps the column count on values that read well in a hex grid.
var DefaultSteps = Steps{1, 2, 4, 8, 12, 16, 24, 32, 48, 64}

// ErrInvalidSteps is returned by Steps.Validate.
var ErrInvalidSteps = errors.New("column steps must be positive and strictly increasing")

// Validate checks that s is non-empty, positive and strictly increasing.
func (s Steps) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("empty table: %w", ErrInvalidSteps)
	}
	for i, c := range s {
		if c <= 0 || (i > 0 && c <= s[i-1]) {
			return fmt.Errorf("entry %d (%d): %w", i, c, ErrInvalidSteps)
		}
	}
	return nil
}

// Fit returns the largest step whose breakpoint (step × cellWidth) fits in
// width, or 0 if none does.
func (s Steps) Fit(width, cellWidth int) int {
	if width <= 0 || cellWidth <= 0 {
		return 0
	}
	capacity := width / cellWidth
	i := sort.SearchInts(s, capacity+1)
	if i == 0 {
		return 0
	}
	return s[i-1]
}

// Compute resolves Columns and Rows for cfg against m. Manual values are
// kept, clamped to at least 1.
func Compute(m Metrics, cfg Config, steps Steps) Config {
	if len(steps) == 0 {
		steps = DefaultSteps
	}

	if cfg.AutoColumns {
		cfg.Columns = steps.Fit(m.AvailableWidth(), m.CellWidth)
	} else if cfg.Columns < 1 {
		cfg.Columns = 1
	}

	if cfg.AutoRows {
		cfg.Rows = fitRows(m.AvailableHeight(cfg.Mode), m.CellHeight)
	} else if cfg.Rows < 1 {
		cfg.Rows = 1
	}

	return cfg
}

func fitRows(height, cellHeight int) int {
	if height <= 0 || cellHeight <= 0 {
		return 0
	}
	rows := height / cellHeight
	if rows < 1 {
		rows = 1
	}
	return rows
}
