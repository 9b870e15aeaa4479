package glyph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultDumpWidth is the number of bytes per dump line.
const DefaultDumpWidth = 16

// ErrMalformedDump is returned when dump text cannot be decoded.
var ErrMalformedDump = errors.New("malformed hex dump")

// Dump writes m as fixed-width dump lines: address, hex pairs with a gap
// after the middle column, then the text glyphs between pipes.
func Dump(w io.Writer, m *Maps, width int) error {
	if width <= 0 {
		width = DefaultDumpWidth
	}
	bw := bufio.NewWriter(w)
	n := m.Len()
	addrWidth := AddressWidth(n, BaseHex)
	for offset := 0; offset < n; offset += width {
		end := offset + width
		if end > n {
			end = n
		}
		writeDumpLine(bw, m, offset, end, width, addrWidth)
	}
	return bw.Flush()
}

func writeDumpLine(b *bufio.Writer, m *Maps, start, end, width, addrWidth int) {
	b.WriteString(Address(uint64(start), BaseHex, addrWidth))
	b.WriteString("  ")
	for i := 0; i < width; i++ {
		if start+i < end {
			b.WriteString(m.Hex(start + i))
			b.WriteByte(' ')
		} else {
			b.WriteString("   ")
		}
		if i == width/2-1 {
			b.WriteByte(' ')
		}
	}
	b.WriteString(" |")
	for i := start; i < end; i++ {
		b.WriteString(m.Text(i))
	}
	for i := end - start; i < width; i++ {
		b.WriteByte(' ')
	}
	b.WriteString("|\n")
}

// ParseDump decodes text in the layout written by Dump. The text column is
// ignored; text glyphs are derived from the decoded bytes.
func ParseDump(text string) (*Maps, error) {
	var data []byte
	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		addrEnd := strings.IndexByte(line, ' ')
		if addrEnd <= 0 {
			return nil, fmt.Errorf("line %d: missing address: %w", lineNo+1, ErrMalformedDump)
		}
		offset, err := strconv.ParseUint(line[:addrEnd], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad address %q: %w", lineNo+1, line[:addrEnd], ErrMalformedDump)
		}
		if offset != uint64(len(data)) {
			return nil, fmt.Errorf("line %d: address %X, expected %X: %w", lineNo+1, offset, len(data), ErrMalformedDump)
		}

		hexRegion := line[addrEnd:]
		if bar := strings.Index(hexRegion, " |"); bar >= 0 {
			hexRegion = hexRegion[:bar]
		}
		for _, pair := range strings.Fields(hexRegion) {
			if len(pair) != 2 {
				return nil, fmt.Errorf("line %d: bad byte %q: %w", lineNo+1, pair, ErrMalformedDump)
			}
			v, err := strconv.ParseUint(pair, 16, 8)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad byte %q: %w", lineNo+1, pair, ErrMalformedDump)
			}
			data = append(data, byte(v))
		}
	}
	return &Maps{data: data}, nil
}
