package suggest

import (
	"strings"
	"sync"
)

// History keeps the most recent distinct searches, newest first.
type History struct {
	mu      sync.Mutex
	size    int
	entries []string
}

// NewHistory returns a History holding at most size entries.
func NewHistory(size int) *History {
	if size <= 0 {
		size = 50
	}
	return &History{size: size}
}

// Add records query. Re-adding a query, ignoring case, moves it to the front.
func (h *History) Add(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, e := range h.entries {
		if strings.EqualFold(e, query) {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			break
		}
	}
	h.entries = append([]string{query}, h.entries...)
	if len(h.entries) > h.size {
		h.entries = h.entries[:h.size]
	}
}

// Recent returns up to n entries, newest first. n <= 0 returns all.
func (h *History) Recent(n int) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]string, n)
	copy(out, h.entries[:n])
	return out
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Clear drops every entry.
func (h *History) Clear() {
	h.mu.Lock()
	h.entries = nil
	h.mu.Unlock()
}
