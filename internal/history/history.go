// Package history keeps a bounded list of executed search queries with
// shell-style up/down recall.
package history

// DefaultLimit is the number of entries kept when no limit is configured.
const DefaultLimit = 50

// History is ordered oldest first. Index is -1 while not recalling.
type History struct {
	values []string
	limit  int
	index  int
}

func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit, index: -1}
}

// Restore replaces the entries, keeping the newest ones that fit.
func (h *History) Restore(values []string) {
	h.values = nil
	for _, v := range values {
		h.push(v)
	}
	h.index = -1
}

func (h *History) Values() []string {
	out := make([]string, len(h.values))
	copy(out, h.values)
	return out
}

func (h *History) Len() int { return len(h.values) }

func (h *History) Index() int { return h.index }

// Push records value as the most recent entry and ends any recall. An
// earlier identical entry is moved rather than duplicated. It reports
// whether the entries changed.
func (h *History) Push(value string) bool {
	h.index = -1
	if value == "" {
		return false
	}
	if n := len(h.values); n > 0 && h.values[n-1] == value {
		return false
	}
	h.push(value)
	return true
}

func (h *History) push(value string) {
	if value == "" {
		return
	}
	for i, v := range h.values {
		if v == value {
			h.values = append(h.values[:i], h.values[i+1:]...)
			break
		}
	}
	h.values = append(h.values, value)
	if over := len(h.values) - h.limit; over > 0 {
		h.values = append([]string(nil), h.values[over:]...)
	}
}

// Up recalls the next older entry. It stops at the oldest.
func (h *History) Up() (string, bool) {
	if len(h.values) == 0 {
		return "", false
	}
	switch {
	case h.index < 0:
		h.index = len(h.values) - 1
	case h.index > 0:
		h.index--
	}
	return h.values[h.index], true
}

// Down recalls the next newer entry. Past the newest it ends the recall and
// returns an empty value with ok set, so the caller clears its input.
func (h *History) Down() (string, bool) {
	if h.index < 0 {
		return "", false
	}
	if h.index >= len(h.values)-1 {
		h.index = -1
		return "", true
	}
	h.index++
	return h.values[h.index], true
}

func (h *History) Reset() { h.index = -1 }
