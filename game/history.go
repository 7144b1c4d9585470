package game

import (
	"github.com/pthm-cable/artlife/components"
	"github.com/pthm-cable/artlife/neural"
)

// HistoryEntry is what is remembered about a removed agent.
type HistoryEntry struct {
	ID     uint32
	Genome *neural.Genome
	Color  components.Color
	Cause  components.DeathCause
	Tick   int32
}

// History is a bounded FIFO of recently removed agents. When full, adding
// an entry evicts the oldest one. It seeds the next population after an
// extinction.
type History struct {
	entries []HistoryEntry // circular buffer
	start   int            // index of the oldest entry
	count   int
}

// NewHistory creates an empty history holding at most maxSize entries.
func NewHistory(maxSize int) *History {
	return &History{entries: make([]HistoryEntry, maxSize)}
}

// Push appends an entry, evicting the oldest if the history is full.
func (h *History) Push(e HistoryEntry) {
	if h.count < len(h.entries) {
		h.entries[(h.start+h.count)%len(h.entries)] = e
		h.count++
		return
	}
	h.entries[h.start] = e
	h.start = (h.start + 1) % len(h.entries)
}

// At returns entry i, oldest first.
func (h *History) At(i int) HistoryEntry {
	return h.entries[(h.start+i)%len(h.entries)]
}

// Len returns the number of entries.
func (h *History) Len() int {
	return h.count
}
