package store

// HistoryEntry is one serialized back/forward navigation entry.
type HistoryEntry struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// TabRecord is the persisted snapshot of a single tab, live or archived.
// Archive eligibility is re-derived from LastExecutedMs at load time rather
// than persisted, so a stale save never pins a tab to the wrong collection.
type TabRecord struct {
	ID             string         `json:"id"`
	RootID         string         `json:"rootId"`
	ParentID       string         `json:"parentId,omitempty"`
	SpaceID        string         `json:"spaceId,omitempty"`
	Selected       bool           `json:"selected,omitempty"`
	Pinned         bool           `json:"pinned,omitempty"`
	PinnedAtMs     int64          `json:"pinnedAtMs,omitempty"`
	Title          string         `json:"title,omitempty"`
	URL            string         `json:"url,omitempty"`
	InitialURL     string         `json:"initialUrl,omitempty"`
	FaviconURL     string         `json:"faviconUrl,omitempty"`
	Incognito      bool           `json:"incognito,omitempty"`
	LastExecutedMs int64          `json:"lastExecutedMs"`
	History        []HistoryEntry `json:"history,omitempty"`
	ScreenshotKey  string         `json:"screenshotKey,omitempty"`
	Manual         bool           `json:"manuallyArchived,omitempty"`
	RecentlyClosed bool           `json:"recentlyClosed,omitempty"`
}

// snapshotDoc is the on-disk document for one storage key.
type snapshotDoc struct {
	Version int         `json:"version"`
	Records []TabRecord `json:"records"`
}

const docVersion = 1
