// Package search finds query occurrences in a document's glyph sequences
// and tracks the current match for next/previous navigation.
package search

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"hexview/internal/glyph"
)

// Mode selects the glyph sequence a query is matched against.
type Mode int

const (
	// ModeText matches the text glyphs, case-insensitively.
	ModeText Mode = iota
	// ModeHex matches byte-value pairs against the hex glyphs.
	ModeHex
)

func (m Mode) String() string {
	if m == ModeHex {
		return "hex"
	}
	return "text"
}

// Pattern is a compiled query: one predicate per byte of a match.
type Pattern struct {
	text  []rune
	bytes []byte
	mode  Mode
}

func (p Pattern) Len() int {
	if p.mode == ModeHex {
		return len(p.bytes)
	}
	return len(p.text)
}

// Compile turns query into a pattern. A hex query is whitespace-separated
// fields of hex digit pairs; anything else compiles to an empty pattern.
func Compile(query string, mode Mode) Pattern {
	p := Pattern{mode: mode}
	if mode == ModeHex {
		p.bytes = parseHexPairs(query)
		return p
	}
	if !utf8.ValidString(query) {
		return p
	}
	for _, r := range query {
		p.text = append(p.text, unicode.ToLower(r))
	}
	return p
}

// parseHexPairs reads whitespace-separated fields of exactly two hex digits.
func parseHexPairs(query string) []byte {
	var out []byte
	for _, field := range strings.Fields(query) {
		if len(field) != 2 {
			return nil
		}
		v, err := strconv.ParseUint(field, 16, 8)
		if err != nil {
			return nil
		}
		out = append(out, byte(v))
	}
	return out
}

// foldedText maps each byte value to the lower-cased rune of its text glyph.
var foldedText [256]rune

func init() {
	for i := 0; i < 256; i++ {
		r, _ := utf8.DecodeRuneInString(glyph.TextGlyph(byte(i)))
		foldedText[i] = unicode.ToLower(r)
	}
}

func (p Pattern) matchAt(m *glyph.Maps, i int) bool {
	if p.mode == ModeHex {
		for k, want := range p.bytes {
			if b, _ := m.Byte(i + k); b != want {
				return false
			}
		}
		return true
	}
	for k, want := range p.text {
		b, _ := m.Byte(i + k)
		if foldedText[b] != want {
			return false
		}
	}
	return true
}

// Find returns the start index of every non-overlapping occurrence of
// query in m, scanning left to right and resuming after each match.
func Find(m *glyph.Maps, query string, mode Mode) []int {
	return FindPattern(m, Compile(query, mode))
}

func FindPattern(m *glyph.Maps, p Pattern) []int {
	l := p.Len()
	n := m.Len()
	if l == 0 || l > n {
		return nil
	}

	var matches []int
	for i := 0; i <= n-l; {
		if p.matchAt(m, i) {
			matches = append(matches, i)
			i += l
			continue
		}
		i++
	}
	return matches
}

// State is the search over the current document.
type State struct {
	Query   string
	Mode    Mode
	Matches []int
	// Current indexes Matches, or -1 when no match is current.
	Current int
	length  int
}

func NewState() State {
	return State{Current: -1}
}

// Run recomputes matches for query in m. No match is current until the
// first Next or Previous.
func Run(m *glyph.Maps, query string, mode Mode) State {
	p := Compile(query, mode)
	return State{
		Query:   query,
		Mode:    mode,
		Matches: FindPattern(m, p),
		Current: -1,
		length:  p.Len(),
	}
}

func (s State) Length() int { return s.length }

// Next advances to the following match, wrapping to the first. It returns
// the byte index of the new current match.
func (s *State) Next() (int, bool) {
	if len(s.Matches) == 0 {
		return 0, false
	}
	if s.Current < 0 || s.Current >= len(s.Matches)-1 {
		s.Current = 0
	} else {
		s.Current++
	}
	return s.Matches[s.Current], true
}

func (s *State) Previous() (int, bool) {
	if len(s.Matches) == 0 {
		return 0, false
	}
	if s.Current <= 0 || s.Current >= len(s.Matches) {
		s.Current = len(s.Matches) - 1
	} else {
		s.Current--
	}
	return s.Matches[s.Current], true
}

func (s State) CurrentIndex() (int, bool) {
	if s.Current < 0 || s.Current >= len(s.Matches) {
		return 0, false
	}
	return s.Matches[s.Current], true
}

// matchContaining returns the position in Matches of the match covering
// index, or -1.
func (s State) matchContaining(index int) int {
	if s.length == 0 || len(s.Matches) == 0 {
		return -1
	}
	// Largest start <= index.
	i := sort.SearchInts(s.Matches, index+1) - 1
	if i < 0 || index >= s.Matches[i]+s.length {
		return -1
	}
	return i
}

func (s State) IsMatch(index int) bool {
	return s.matchContaining(index) >= 0
}

func (s State) IsCurrent(index int) bool {
	i := s.matchContaining(index)
	return i >= 0 && i == s.Current
}
