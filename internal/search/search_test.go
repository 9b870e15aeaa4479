package search

import (
	"reflect"
	"testing"

	"hexview/internal/glyph"
)

func TestFindNonOverlapping(t *testing.T) {
	m := glyph.Build([]byte("AAAA"))
	got := Find(m, "AA", ModeText)
	if !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("expected [0 2], got %v", got)
	}

	got = Find(glyph.Build([]byte("AAAAA")), "AA", ModeText)
	if !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("expected trailing single A to be skipped, got %v", got)
	}
}

func TestFindCaseInsensitive(t *testing.T) {
	m := glyph.Build([]byte("Hello HELLO hello"))
	got := Find(m, "hElLo", ModeText)
	if !reflect.DeepEqual(got, []int{0, 6, 12}) {
		t.Errorf("expected [0 6 12], got %v", got)
	}
}

func TestFindMatchesTextGlyphsNotBytes(t *testing.T) {
	// 0x01 and 0x80 both render as '*', byte 0 as the middle dot.
	m := glyph.Build([]byte{0x01, 'x', 0x80, 0x00, 'y'})

	if got := Find(m, "*", ModeText); !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("expected placeholders at [0 2], got %v", got)
	}
	if got := Find(m, "·y", ModeText); !reflect.DeepEqual(got, []int{3}) {
		t.Errorf("expected null glyph match at [3], got %v", got)
	}
}

func TestFindHex(t *testing.T) {
	m := glyph.Build([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0xDE, 0xAD})

	tests := []struct {
		query string
		want  []int
	}{
		{"DE AD", []int{0, 4}},
		{"de ad", []int{0, 4}},
		{"AD BE EF", []int{1}},
		{"dead", nil},
		{"adbe ef", nil},
		{"EF", []int{3}},
		{"D", nil},
		{"DEA D", nil},
		{"zz", nil},
		{"  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := Find(m, tt.query, ModeHex); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestModeIsExplicit(t *testing.T) {
	// "41" is a hex-looking query but text mode must not reinterpret it.
	m := glyph.Build([]byte("A41"))
	if got := Find(m, "41", ModeText); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("text mode: expected [1], got %v", got)
	}
	if got := Find(m, "41", ModeHex); !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("hex mode: expected [0], got %v", got)
	}
}

func TestEmptyQuery(t *testing.T) {
	s := Run(glyph.Build([]byte("abc")), "", ModeText)
	if len(s.Matches) != 0 || s.Current != -1 {
		t.Errorf("expected empty search, got %+v", s)
	}
	if _, ok := s.Next(); ok {
		t.Error("expected Next to be a no-op")
	}
	if _, ok := s.Previous(); ok {
		t.Error("expected Previous to be a no-op")
	}
	if s.Current != -1 {
		t.Errorf("expected Current to stay -1, got %d", s.Current)
	}
}

func TestQueryLongerThanDocument(t *testing.T) {
	if got := Find(glyph.Build([]byte("ab")), "abc", ModeText); got != nil {
		t.Errorf("expected no matches, got %v", got)
	}
}

func TestNavigationWraps(t *testing.T) {
	s := Run(glyph.Build([]byte("x..x..x")), "x", ModeText)
	if len(s.Matches) != 3 {
		t.Fatalf("expected 3 matches, got %v", s.Matches)
	}

	if idx, _ := s.Next(); idx != 0 || s.Current != 0 {
		t.Errorf("expected first Next to land on match 0, got idx=%d current=%d", idx, s.Current)
	}

	s.Current = 2
	idx, ok := s.Next()
	if !ok || s.Current != 0 || idx != 0 {
		t.Errorf("expected wrap to 0, got current=%d idx=%d", s.Current, idx)
	}

	idx, _ = s.Previous()
	if s.Current != 2 || idx != 6 {
		t.Errorf("expected wrap to last, got current=%d idx=%d", s.Current, idx)
	}

	idx, _ = s.Previous()
	if s.Current != 1 || idx != 3 {
		t.Errorf("expected step back to 1, got current=%d idx=%d", s.Current, idx)
	}
}

func TestPreviousFromNoCurrentGoesToLast(t *testing.T) {
	s := Run(glyph.Build([]byte("abab")), "ab", ModeText)
	if idx, _ := s.Previous(); idx != 2 || s.Current != 1 {
		t.Errorf("expected last match, got idx=%d current=%d", idx, s.Current)
	}
}

func TestIsMatch(t *testing.T) {
	s := Run(glyph.Build([]byte("..abc...abc.")), "abc", ModeText)
	s.Next()

	for i := 0; i < 12; i++ {
		want := (i >= 2 && i <= 4) || (i >= 8 && i <= 10)
		if got := s.IsMatch(i); got != want {
			t.Errorf("IsMatch(%d): expected %v, got %v", i, want, got)
		}
		wantCurrent := i >= 2 && i <= 4
		if got := s.IsCurrent(i); got != wantCurrent {
			t.Errorf("IsCurrent(%d): expected %v, got %v", i, wantCurrent, got)
		}
	}

	if s.IsMatch(-1) || s.IsMatch(100) {
		t.Error("expected out-of-range indices not to match")
	}
}

func TestCurrentIndex(t *testing.T) {
	s := Run(glyph.Build([]byte("zzz")), "z", ModeText)
	if _, ok := s.CurrentIndex(); ok {
		t.Error("expected no current match before navigation")
	}
	s.Next()
	s.Next()
	if idx, ok := s.CurrentIndex(); !ok || idx != 1 {
		t.Errorf("expected current at 1, got %d", idx)
	}
}
