package registry

import (
	"time"

	"github.com/lotas/tabwart/internal/applog"
	"github.com/lotas/tabwart/internal/archive"
	"github.com/lotas/tabwart/internal/recent"
	"github.com/lotas/tabwart/internal/store"
	"github.com/lotas/tabwart/internal/types"
)

// LoadSaved reads the persisted snapshot for this window and restores it.
// Missing or corrupted snapshots restore an empty session.
func (r *Registry) LoadSaved() error {
	if r.store == nil {
		return nil
	}
	records, err := r.store.Load(r.windowKey)
	if err != nil {
		return err
	}
	r.RestoreSaved(records)
	return nil
}

// RestoreSaved reconstructs tabs from persisted records. Restoration is
// two-phase: every record is materialized first, then parent links are
// resolved by id, so ordering inside the batch does not matter. Records
// that already meet archive eligibility against their saved timestamp go
// straight into the archived collection instead of coming back as zombies.
// Recently-closed records refill the undo buffer rather than the tab list.
func (r *Registry) RestoreSaved(records []store.TabRecord) {
	now := r.now()
	var restored []*types.Tab
	var closed []*types.Tab
	var selected *types.Tab
	var lastSelectedFlag string

	for _, rec := range records {
		if rec.Incognito {
			continue // incognito sessions are never restored
		}
		if rec.RecentlyClosed {
			closed = append(closed, recordToTab(rec))
			continue
		}
		if r.byID[rec.ID] != nil || r.archivedByID[rec.ID] != nil {
			applog.Info("registry.restore.duplicate", "tab", rec.ID)
			continue
		}

		last := time.UnixMilli(rec.LastExecutedMs)
		if !rec.Pinned && archive.ShouldArchive(false, last, now, r.cfg.Retention) {
			a := &types.ArchivedTab{
				ID:             rec.ID,
				RootID:         rec.RootID,
				URL:            rec.URL,
				Title:          rec.Title,
				FaviconURL:     rec.FaviconURL,
				LastExecutedAt: last,
				ScreenshotKey:  rec.ScreenshotKey,
				Manual:         rec.Manual,
			}
			r.archived = append(r.archived, a)
			r.archivedByID[a.ID] = a
			continue
		}

		t := recordToTab(rec)
		r.tabs = append(r.tabs, t)
		r.byID[t.ID] = t
		restored = append(restored, t)
		if rec.Selected {
			lastSelectedFlag = t.ID
		}
	}

	// Phase two: link parents now that the whole batch exists.
	for _, t := range restored {
		if t.ParentID != "" && r.byID[t.ParentID] == nil {
			t.ParentID = ""
		}
	}

	// Selection: the snapshot's selected tab if it is still viable, else
	// the last restored tab.
	if lastSelectedFlag != "" {
		if t := r.byID[lastSelectedFlag]; t != nil && r.viable(t) {
			selected = t
		}
	}
	if selected == nil && len(restored) > 0 {
		selected = restored[len(restored)-1]
	}
	if selected != nil {
		r.selectLive(selected)
	}
	if len(closed) > 0 {
		r.recent.Restore(closed)
	}

	applog.Info("registry.restored", "active", len(restored), "archived", len(r.archived), "closed", len(closed))
	r.recompute("restore")
}

func recordToTab(rec store.TabRecord) *types.Tab {
	t := &types.Tab{
		ID:             rec.ID,
		RootID:         rec.RootID,
		ParentID:       rec.ParentID,
		ParentSpaceID:  rec.SpaceID,
		URL:            rec.URL,
		InitialURL:     rec.InitialURL,
		Title:          rec.Title,
		FaviconURL:     rec.FaviconURL,
		LastExecutedAt: time.UnixMilli(rec.LastExecutedMs),
		ScreenshotKey:  rec.ScreenshotKey,
	}
	if rec.Pinned {
		t.SetPinned(true, time.UnixMilli(rec.PinnedAtMs))
	}
	for _, h := range rec.History {
		t.History = append(t.History, types.HistoryEntry{URL: h.URL, Title: h.Title})
	}
	return t
}

// RestoreRecentlyClosed re-inserts every tab of a recently-closed entry as
// an active tab, removing the entry from the buffer. Parent links survive
// only when the parent is back in the registry.
func (r *Registry) RestoreRecentlyClosed(entry *recent.Entry) {
	r.recent.Remove(entry)

	var restored []*types.Tab
	for _, t := range entry.Tabs {
		if r.byID[t.ID] != nil {
			continue
		}
		r.tabs = append(r.tabs, t)
		r.byID[t.ID] = t
		restored = append(restored, t)
	}
	for _, t := range restored {
		if t.ParentID != "" && r.byID[t.ParentID] == nil {
			t.ParentID = ""
		}
	}
	if len(restored) > 0 {
		r.selectLive(restored[len(restored)-1])
	}
	r.recompute("restore-closed")
}

// SelectArchived promotes an archived tab back into a live, selected tab
// and drops it from the archive. Unknown ids are a logged no-op.
func (r *Registry) SelectArchived(id string) {
	a, ok := r.archivedByID[id]
	if !ok {
		applog.Info("registry.unarchive.missing", "tab", id)
		return
	}
	r.removeArchived(id)

	now := r.now()
	t := &types.Tab{
		ID:             a.ID,
		RootID:         a.RootID,
		URL:            a.URL,
		InitialURL:     a.URL,
		Title:          a.Title,
		FaviconURL:     a.FaviconURL,
		CreatedAt:      now,
		LastExecutedAt: now,
		ScreenshotKey:  a.ScreenshotKey,
	}
	r.tabs = append(r.tabs, t)
	r.byID[t.ID] = t
	r.selectLive(t)
	r.recompute("unarchive")
}

// RemoveArchivedGroup deletes every archived tab with the given root ID.
func (r *Registry) RemoveArchivedGroup(rootID string) {
	kept := r.archived[:0]
	for _, a := range r.archived {
		if a.RootID == rootID {
			delete(r.archivedByID, a.ID)
			continue
		}
		kept = append(kept, a)
	}
	r.archived = kept
	r.recompute("remove-archived-group")
}

// ClearArchived empties the archived collection.
func (r *Registry) ClearArchived() {
	r.archived = nil
	r.archivedByID = map[string]*types.ArchivedTab{}
	r.recompute("clear-archived")
}

// ArchiveAllForDebug force-archives every non-incognito, non-pinned tab
// regardless of age. Test and debug tooling only.
func (r *Registry) ArchiveAllForDebug() {
	kept := r.tabs[:0]
	for _, t := range r.tabs {
		if t.Incognito || t.Pinned() {
			kept = append(kept, t)
			continue
		}
		if r.selectedID == t.ID {
			r.selectedID = ""
		}
		r.archiveTab(t, true)
	}
	r.tabs = kept
	r.recompute("archive-all")
}

func (r *Registry) removeArchived(id string) {
	for i, a := range r.archived {
		if a.ID == id {
			r.archived = append(r.archived[:i], r.archived[i+1:]...)
			delete(r.archivedByID, id)
			return
		}
	}
}
