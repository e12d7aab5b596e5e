package registry

import (
	"time"

	"github.com/lotas/tabwart/internal/applog"
	"github.com/lotas/tabwart/internal/store"
	"github.com/lotas/tabwart/internal/types"
)

// snapshotRecords builds the persistable view of the current state:
// archived snapshots first (unmodified), then freshly snapshotted active
// tabs, then the flattened recently-closed pool so undo survives a restart.
// Incognito tabs are never written. Must run on the mutating goroutine —
// the async writer only ever sees this copy.
func (r *Registry) snapshotRecords() []store.TabRecord {
	records := make([]store.TabRecord, 0, len(r.archived)+len(r.tabs))

	for _, a := range r.archived {
		records = append(records, store.TabRecord{
			ID:             a.ID,
			RootID:         a.RootID,
			URL:            a.URL,
			Title:          a.Title,
			FaviconURL:     a.FaviconURL,
			Pinned:         a.Pinned,
			PinnedAtMs:     toMillis(a.PinnedAt),
			LastExecutedMs: a.LastExecutedAt.UnixMilli(),
			ScreenshotKey:  a.ScreenshotKey,
			Manual:         a.Manual,
		})
	}

	for _, t := range r.tabs {
		if t.Incognito {
			continue
		}
		rec := tabRecord(t)
		rec.Selected = t.ID == r.selectedID
		records = append(records, rec)
	}

	// Incognito tabs never enter the buffer, so no filter here.
	for _, t := range r.recent.Flattened() {
		rec := tabRecord(t)
		rec.RecentlyClosed = true
		records = append(records, rec)
	}

	return records
}

func tabRecord(t *types.Tab) store.TabRecord {
	rec := store.TabRecord{
		ID:             t.ID,
		RootID:         t.RootID,
		ParentID:       t.ParentID,
		SpaceID:        t.ParentSpaceID,
		Pinned:         t.Pinned(),
		PinnedAtMs:     toMillis(t.PinnedAt()),
		Title:          t.Title,
		URL:            t.URL,
		InitialURL:     t.InitialURL,
		LastExecutedMs: t.LastExecutedAt.UnixMilli(),
		FaviconURL:     t.FaviconURL,
		ScreenshotKey:  t.ScreenshotKey,
	}
	for _, h := range t.History {
		rec.History = append(rec.History, store.HistoryEntry{URL: h.URL, Title: h.Title})
	}
	return rec
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// schedulePersist snapshots state synchronously and arms the debounced
// background write. Rapid mutations coalesce to the last snapshot. Failures
// are non-fatal: the next mutation schedules a fresh write.
func (r *Registry) schedulePersist() {
	if r.store == nil {
		return
	}
	records := r.snapshotRecords()

	r.saveMu.Lock()
	defer r.saveMu.Unlock()
	r.pending = records
	if r.saveTimer == nil {
		r.saveTimer = time.AfterFunc(r.cfg.SaveDebounce, r.flushPending)
	} else {
		r.saveTimer.Reset(r.cfg.SaveDebounce)
	}
}

func (r *Registry) flushPending() {
	r.saveMu.Lock()
	records := r.pending
	r.pending = nil
	r.saveMu.Unlock()
	if records == nil {
		return
	}
	if err := r.store.Save(r.windowKey, records); err != nil {
		applog.Error("registry.persist", err, "key", r.windowKey)
		return
	}
	applog.Debug("registry.persisted", "records", len(records))
}

// PersistNow writes the current state synchronously, bypassing the
// debounce. Callers needing guaranteed durability (app termination) use
// this instead of waiting for the timer.
func (r *Registry) PersistNow() error {
	if r.store == nil {
		return nil
	}
	r.saveMu.Lock()
	if r.saveTimer != nil {
		r.saveTimer.Stop()
	}
	r.pending = nil
	r.saveMu.Unlock()
	return r.store.Save(r.windowKey, r.snapshotRecords())
}
