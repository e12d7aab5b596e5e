package registry

import (
	"sync"
	"time"

	"github.com/lotas/tabwart/internal/applog"
	"github.com/lotas/tabwart/internal/archive"
	"github.com/lotas/tabwart/internal/classify"
	"github.com/lotas/tabwart/internal/config"
	"github.com/lotas/tabwart/internal/groups"
	"github.com/lotas/tabwart/internal/recent"
	"github.com/lotas/tabwart/internal/store"
	"github.com/lotas/tabwart/internal/types"
)

// Change is the notification emitted after every consistent recompute.
// Listeners never observe partially updated state: groups and archive
// status are final for the operation by the time the change fires.
type Change struct {
	Reason string
	// ShowOverview is set when an operation left no selectable tab and the
	// UI should fall back to the tab-overview screen.
	ShowOverview bool
}

// Registry owns the authoritative in-memory tab list and performs every
// mutating operation on it. After each mutation it re-evaluates archive
// eligibility, fully recomputes active and archived groups, schedules an
// asynchronous persist and then notifies listeners. The full recompute is
// deliberate: it trades CPU for the elimination of stale derived state.
//
// Registry is not safe for concurrent use. All mutating calls must be
// serialized by the caller; the websocket bridge does this with its own
// lock. The only background work is the debounced store write, which
// operates on records snapshotted synchronously inside the mutating call.
type Registry struct {
	cfg        *config.Config
	store      *store.Store
	blobs      types.BlobStore
	newContent types.WebContentFactory
	windowKey  string

	now func() time.Time

	tabs         []*types.Tab
	byID         map[string]*types.Tab
	archived     []*types.ArchivedTab
	archivedByID map[string]*types.ArchivedTab

	selectedID          string
	selectedIncognitoID string
	incognito           bool

	activeGroups   map[string]*groups.Group
	archivedGroups map[string]*groups.Group

	recent *recent.Buffer

	listeners    map[int]func(Change)
	nextListener int

	showOverview bool

	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   []store.TabRecord
}

// New creates a registry. st and blobs may be nil for a purely in-memory
// registry; factory may be nil, in which case every tab stays a zombie.
func New(cfg *config.Config, st *store.Store, blobs types.BlobStore, factory types.WebContentFactory, windowKey string) *Registry {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Registry{
		cfg:          cfg,
		store:        st,
		blobs:        blobs,
		newContent:   factory,
		windowKey:    windowKey,
		now:          time.Now,
		byID:         map[string]*types.Tab{},
		archivedByID: map[string]*types.ArchivedTab{},
		recent:       recent.NewBuffer(recent.DefaultWindow),
		listeners:    map[int]func(Change){},
	}
}

// Subscribe registers a change listener and returns its unsubscribe
// function. Listeners are invoked synchronously on the mutating goroutine.
func (r *Registry) Subscribe(fn func(Change)) func() {
	id := r.nextListener
	r.nextListener++
	r.listeners[id] = fn
	return func() { delete(r.listeners, id) }
}

// Tabs returns the ordered active tab list. Callers must not mutate it.
func (r *Registry) Tabs() []*types.Tab { return r.tabs }

// Archived returns the archived tab list. Callers must not mutate it.
func (r *Registry) Archived() []*types.ArchivedTab { return r.archived }

// Groups returns the resolved active-tab groups keyed by root ID.
func (r *Registry) Groups() map[string]*groups.Group { return r.activeGroups }

// ArchivedGroups returns the resolved archived-tab groups keyed by root ID.
func (r *Registry) ArchivedGroups() map[string]*groups.Group { return r.archivedGroups }

// RecentlyClosed returns the undo buffer.
func (r *Registry) RecentlyClosed() *recent.Buffer { return r.recent }

// Incognito reports the current partition.
func (r *Registry) Incognito() bool { return r.incognito }

// Selected returns the selected tab of the current partition, or nil.
func (r *Registry) Selected() *types.Tab {
	id := r.selectedID
	if r.incognito {
		id = r.selectedIncognitoID
	}
	if id == "" {
		return nil
	}
	return r.byID[id]
}

// Section classifies a tab under the registry's clock.
func (r *Registry) Section(t *types.Tab) classify.Section {
	return classify.Classify(t.Pinned(), t.LastExecutedAt, r.now())
}

// recompute runs the post-mutation pipeline: selected-tab exemption,
// archive sweep, full group recompute for both collections, debounced
// persist, then synchronous notification.
func (r *Registry) recompute(reason string) {
	r.sweepArchive()
	r.resolveGroups()
	r.schedulePersist()

	change := Change{Reason: reason, ShowOverview: r.showOverview}
	r.showOverview = false
	for _, fn := range r.listeners {
		fn(change)
	}
}

func (r *Registry) resolveGroups() {
	active := make([]types.Entry, 0, len(r.tabs))
	for _, t := range r.tabs {
		active = append(active, types.LiveEntry(t))
	}
	r.activeGroups = groups.Resolve(active, r.cfg.GroupNames)

	arch := make([]types.Entry, 0, len(r.archived))
	for _, a := range r.archived {
		arch = append(arch, types.ArchivedEntry(a))
	}
	r.archivedGroups = groups.Resolve(arch, r.cfg.GroupNames)
}

// sweepArchive demotes every active tab that aged out of retention. The
// selected tab is exempted by refreshing its timestamp first, so the
// visible page never disappears out from under the user after the app
// returns from background.
func (r *Registry) sweepArchive() {
	now := r.now()
	if sel := r.Selected(); sel != nil {
		sel.LastExecutedAt = now
	}

	selID := r.selectedID
	kept := r.tabs[:0]
	for _, t := range r.tabs {
		if t.Incognito || t.Pinned() || t.ID == selID ||
			!archive.ShouldArchive(t.Pinned(), t.LastExecutedAt, now, r.cfg.Retention) {
			kept = append(kept, t)
			continue
		}
		r.archiveTab(t, false)
	}
	r.tabs = kept
}

// archiveTab releases the tab's content and snapshots it into the archived
// collection. The caller removes it from r.tabs.
func (r *Registry) archiveTab(t *types.Tab, manual bool) {
	t.ReleaseContent()
	a := &types.ArchivedTab{
		ID:             t.ID,
		RootID:         t.RootID,
		URL:            t.URL,
		Title:          t.Title,
		FaviconURL:     t.FaviconURL,
		LastExecutedAt: t.LastExecutedAt,
		Pinned:         t.Pinned(),
		PinnedAt:       t.PinnedAt(),
		ScreenshotKey:  t.ScreenshotKey,
		Manual:         manual,
	}
	delete(r.byID, t.ID)
	r.archived = append(r.archived, a)
	r.archivedByID[a.ID] = a
	applog.Debug("registry.archived", "tab", t.ID)
}
