package types

import (
	"time"

	"github.com/google/uuid"
)

// Tab represents a single open browsing context.
//
// A Tab with a nil Content handle is a "zombie": its metadata is live but the
// page itself is not loaded, which bounds memory for large sessions.
type Tab struct {
	ID            string // stable, immutable, persisted
	RootID        string // tabs sharing a RootID form one group
	ParentID      string // id of the tab that opened this one; empty if none
	ParentSpaceID string // optional link to an external bookmark collection

	URL        string // current URL; empty before first load
	InitialURL string // URL the tab was created with, used for group matching
	Title      string
	FaviconURL string

	CreatedAt      time.Time
	LastExecutedAt time.Time

	Incognito bool // immutable after creation

	// History holds back/forward entries up to the current page.
	History []HistoryEntry

	// ScreenshotKey keys this tab's screenshot in the blob store.
	ScreenshotKey string

	Content WebContent // nil = zombie

	pinned   bool
	pinnedAt time.Time
}

// HistoryEntry is one back/forward navigation entry.
type HistoryEntry struct {
	URL   string
	Title string
}

// NewTab creates a tab with fresh ID, RootID and screenshot key.
func NewTab(url string, incognito bool, now time.Time) *Tab {
	return &Tab{
		ID:             uuid.NewString(),
		RootID:         uuid.NewString(),
		URL:            url,
		InitialURL:     url,
		CreatedAt:      now,
		LastExecutedAt: now,
		Incognito:      incognito,
		ScreenshotKey:  uuid.NewString(),
	}
}

// Pinned reports whether the tab is pinned.
func (t *Tab) Pinned() bool { return t.pinned }

// PinnedAt returns when the tab was pinned; zero if unpinned.
func (t *Tab) PinnedAt() time.Time { return t.pinnedAt }

// SetPinned flips pin state and the pin timestamp together. This is the only
// way to mutate either field, so pinned==true always implies a pin time and
// pinned==false always implies a zero pin time.
func (t *Tab) SetPinned(pinned bool, now time.Time) {
	t.pinned = pinned
	if pinned {
		t.pinnedAt = now
	} else {
		t.pinnedAt = time.Time{}
	}
}

// ReleaseContent closes and drops the live content handle, turning the tab
// into a zombie. Safe to call on a zombie.
func (t *Tab) ReleaseContent() {
	if t.Content != nil {
		t.Content.Close()
		t.Content = nil
	}
}

// ArchivedTab is an immutable snapshot of a tab whose content was discarded
// after prolonged inactivity. It can be promoted back into a live Tab.
type ArchivedTab struct {
	ID             string
	RootID         string
	URL            string
	Title          string
	FaviconURL     string
	LastExecutedAt time.Time
	Pinned         bool
	PinnedAt       time.Time
	ScreenshotKey  string
	Manual         bool // archived explicitly by the user, not by policy
}

// Entry is a tagged union over live and archived tabs. Exactly one of the
// fields is non-nil.
type Entry struct {
	Live     *Tab
	Archived *ArchivedTab
}

// LiveEntry wraps a live tab.
func LiveEntry(t *Tab) Entry { return Entry{Live: t} }

// ArchivedEntry wraps an archived tab.
func ArchivedEntry(a *ArchivedTab) Entry { return Entry{Archived: a} }

func (e Entry) ID() string {
	if e.Live != nil {
		return e.Live.ID
	}
	return e.Archived.ID
}

func (e Entry) RootID() string {
	if e.Live != nil {
		return e.Live.RootID
	}
	return e.Archived.RootID
}

func (e Entry) URL() string {
	if e.Live != nil {
		return e.Live.URL
	}
	return e.Archived.URL
}

func (e Entry) Title() string {
	if e.Live != nil {
		return e.Live.Title
	}
	return e.Archived.Title
}

func (e Entry) LastExecutedAt() time.Time {
	if e.Live != nil {
		return e.Live.LastExecutedAt
	}
	return e.Archived.LastExecutedAt
}

func (e Entry) Pinned() bool {
	if e.Live != nil {
		return e.Live.Pinned()
	}
	return e.Archived.Pinned
}

// IsLive reports whether the entry wraps a live tab.
func (e Entry) IsLive() bool { return e.Live != nil }
