package recent

import (
	"time"

	"github.com/lotas/tabwart/internal/types"
)

// DefaultWindow is how close together two close actions must land to be
// undone as one.
const DefaultWindow = 1500 * time.Millisecond

// Entry is one undoable bundle of tabs closed within a single burst.
type Entry struct {
	ClosedAt time.Time // time of the last append
	Tabs     []*types.Tab
}

// Buffer is the time-windowed undo log of closed tabs. Tabs closed within
// the window of the previous close join its entry, so "close all" registers
// as a single undo step.
type Buffer struct {
	window  time.Duration
	entries []*Entry
}

// NewBuffer creates a buffer with the given burst window; window <= 0 uses
// DefaultWindow.
func NewBuffer(window time.Duration) *Buffer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Buffer{window: window}
}

// Record appends closed tabs, merging into the latest entry if it is still
// within the burst window.
func (b *Buffer) Record(tabs []*types.Tab, now time.Time) {
	if len(tabs) == 0 {
		return
	}
	if n := len(b.entries); n > 0 {
		last := b.entries[n-1]
		if now.Sub(last.ClosedAt) <= b.window {
			last.Tabs = append(last.Tabs, tabs...)
			last.ClosedAt = now
			return
		}
	}
	b.entries = append(b.entries, &Entry{ClosedAt: now, Tabs: append([]*types.Tab(nil), tabs...)})
}

// Entries returns the undo log, oldest first.
func (b *Buffer) Entries() []*Entry {
	return b.entries
}

// Flattened returns every buffered tab across all entries, oldest first.
func (b *Buffer) Flattened() []*types.Tab {
	var out []*types.Tab
	for _, e := range b.entries {
		out = append(out, e.Tabs...)
	}
	return out
}

// Restore seeds the buffer with previously persisted closed tabs, one entry
// per tab. A seeded entry has a zero close time, so it never merges with
// closes that happen after the reload.
func (b *Buffer) Restore(tabs []*types.Tab) {
	for _, t := range tabs {
		b.entries = append(b.entries, &Entry{Tabs: []*types.Tab{t}})
	}
}

// Remove drops an entry, typically after it has been restored.
func (b *Buffer) Remove(entry *Entry) {
	for i, e := range b.entries {
		if e == entry {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return
		}
	}
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.entries = nil
}
