// Package glyph turns a byte buffer into the two parallel glyph sequences a
// hex view renders: two-digit hex pairs and single printable-text glyphs.
package glyph

import (
	"fmt"
	"strconv"
	"strings"
)

// NullGlyph is shown in the text pane for byte 0.
const NullGlyph = "·"

// PlaceholderGlyph is shown in the text pane for control and high bytes.
const PlaceholderGlyph = "*"

// Kind selects one of the two glyph sequences.
type Kind int

const (
	KindHex Kind = iota
	KindText
)

var (
	hexTable  [256]string
	textTable [256]string
)

func init() {
	for i := 0; i < 256; i++ {
		b := byte(i)
		hexTable[i] = fmt.Sprintf("%02X", b)
		textTable[i] = textGlyph(b)
	}
}

func textGlyph(b byte) string {
	switch {
	case b == 0:
		return NullGlyph
	case b < 32 || b >= 128:
		return PlaceholderGlyph
	default:
		return string(rune(b))
	}
}

// Maps is the immutable glyph view of one loaded document. It is safe for
// concurrent readers.
type Maps struct {
	data []byte
}

func Build(data []byte) *Maps {
	cp := make([]byte, len(data))
	copy(cp, data)
	return &Maps{data: cp}
}

func (m *Maps) Len() int {
	if m == nil {
		return 0
	}
	return len(m.data)
}

func (m *Maps) Byte(index int) (byte, bool) {
	if m == nil || index < 0 || index >= len(m.data) {
		return 0, false
	}
	return m.data[index], true
}

// Hex returns the two-digit uppercase hex glyph, or "" when out of range.
func (m *Maps) Hex(index int) string {
	b, ok := m.Byte(index)
	if !ok {
		return ""
	}
	return hexTable[b]
}

// Text returns the printable-text glyph, or "" when out of range.
func (m *Maps) Text(index int) string {
	b, ok := m.Byte(index)
	if !ok {
		return ""
	}
	return textTable[b]
}

func (m *Maps) Glyph(index int, kind Kind) string {
	if kind == KindText {
		return m.Text(index)
	}
	return m.Hex(index)
}

// Bytes returns a copy of [start, end), clamped to the document.
func (m *Maps) Bytes(start, end int) []byte {
	if m == nil {
		return nil
	}
	if start < 0 {
		start = 0
	}
	if end > len(m.data) {
		end = len(m.data)
	}
	if start >= end {
		return nil
	}
	result := make([]byte, end-start)
	copy(result, m.data[start:end])
	return result
}

func HexGlyph(b byte) string { return hexTable[b] }

func TextGlyph(b byte) string { return textTable[b] }

// Base is the radix used for rendering addresses.
type Base int

const (
	BaseOctal   Base = 8
	BaseDecimal Base = 10
	BaseHex     Base = 16
)

func (b Base) Valid() bool {
	return b == BaseOctal || b == BaseDecimal || b == BaseHex
}

// Next cycles hex → decimal → octal → hex.
func (b Base) Next() Base {
	switch b {
	case BaseHex:
		return BaseDecimal
	case BaseDecimal:
		return BaseOctal
	default:
		return BaseHex
	}
}

func (b Base) String() string {
	switch b {
	case BaseOctal:
		return "oct"
	case BaseDecimal:
		return "dec"
	case BaseHex:
		return "hex"
	}
	return "base(" + strconv.Itoa(int(b)) + ")"
}

// Address renders index in base, uppercased and zero-padded to width.
// Unsupported bases render as hex.
func Address(index uint64, base Base, width int) string {
	if !base.Valid() {
		base = BaseHex
	}
	s := strings.ToUpper(strconv.FormatUint(index, int(base)))
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// AddressWidth returns the number of digits needed to render every index of
// an n-byte document in base, never less than 8.
func AddressWidth(n int, base Base) int {
	if !base.Valid() {
		base = BaseHex
	}
	last := uint64(0)
	if n > 0 {
		last = uint64(n - 1)
	}
	w := len(strconv.FormatUint(last, int(base)))
	if w < 8 {
		return 8
	}
	return w
}
