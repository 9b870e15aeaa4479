package viewer

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type field struct {
	label  string
	size   int
	format func(m *Model, b []byte) string
}

var intFields = []field{
	{"u8", 1, unsigned}, {"i8", 1, signed},
	{"u16", 2, unsigned}, {"i16", 2, signed},
	{"u32", 4, unsigned}, {"i32", 4, signed},
	{"u64", 8, unsigned}, {"i64", 8, signed},
}

var floatFields = []field{
	{"f32", 4, floating}, {"f64", 8, floating},
}

// decoderBytes returns up to count bytes starting at the cursor.
func (m *Model) decoderBytes(count int) []byte {
	c := m.store.Cursor()
	if c < 0 {
		return nil
	}
	return m.store.Glyphs().Bytes(c, c+count)
}

// word widens b (at most 8 bytes) to a uint64 in the selected byte order.
func (m *Model) word(b []byte) uint64 {
	var buf [8]byte
	if m.bigEndian {
		copy(buf[8-len(b):], b)
		return binary.BigEndian.Uint64(buf[:])
	}
	copy(buf[:], b)
	return binary.LittleEndian.Uint64(buf[:])
}

func unsigned(m *Model, b []byte) string {
	return strconv.FormatUint(m.word(b), 10)
}

func signed(m *Model, b []byte) string {
	shift := 64 - 8*uint(len(b))
	return strconv.FormatInt(int64(m.word(b)<<shift)>>shift, 10)
}

func floating(m *Model, b []byte) string {
	v := m.word(b)
	if len(b) == 4 {
		return strconv.FormatFloat(float64(math.Float32frombits(uint32(v))), 'g', -1, 32)
	}
	return strconv.FormatFloat(math.Float64frombits(v), 'g', -1, 64)
}

func (m *Model) renderFields(b *strings.Builder, fields []field, data []byte) {
	for i, f := range fields {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(m.styles.DecoderLabel.Render(f.label + ": "))
		if len(data) < f.size {
			b.WriteString("-")
			continue
		}
		b.WriteString(m.styles.DecoderValue.Render(f.format(m, data[:f.size])))
	}
}

func (m *Model) renderDecoder() string {
	var b strings.Builder

	order := "Big"
	if !m.bigEndian {
		order = "Little"
	}
	b.WriteString(m.styles.DecoderLabel.Render("Endianness: "))
	b.WriteString(m.styles.DecoderValue.Render(order))

	data := m.decoderBytes(8)

	b.WriteString(m.styles.DecoderLabel.Render("  Bits: "))
	if len(data) == 0 {
		b.WriteString("-")
	} else {
		bits := make([]string, 0, 4)
		for _, v := range data[:min(4, len(data))] {
			bits = append(bits, fmt.Sprintf("%08b", v))
		}
		b.WriteString(m.styles.DecoderValue.Render(strings.Join(bits, " ")))
	}
	b.WriteString("\n")

	m.renderFields(&b, intFields, data)
	b.WriteString("\n")
	m.renderFields(&b, floatFields, data)

	return b.String()
}
