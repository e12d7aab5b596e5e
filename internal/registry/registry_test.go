package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/lotas/tabwart/internal/archive"
	"github.com/lotas/tabwart/internal/config"
	"github.com/lotas/tabwart/internal/store"
	"github.com/lotas/tabwart/internal/types"
)

// fakeContent is a WebContent stub that records its lifecycle.
type fakeContent struct {
	loaded   string
	closed   bool
	backs    int
	forwards int
	reloads  int
}

func (f *fakeContent) Load(url string) error { f.loaded = url; return nil }
func (f *fakeContent) GoBack() error         { f.backs++; return nil }
func (f *fakeContent) GoForward() error      { f.forwards++; return nil }
func (f *fakeContent) Reload() error         { f.reloads++; return nil }
func (f *fakeContent) Close()                { f.closed = true }

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	cfg := config.Default()
	r := New(cfg, nil, nil, func(incognito bool) types.WebContent { return &fakeContent{} }, "window-test")
	fixClock(r, time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local))
	return r
}

func fixClock(r *Registry, at time.Time) {
	r.now = func() time.Time { return at }
}

func addTab(r *Registry, url string) *types.Tab {
	return r.AddTab(AddOptions{URL: url, Select: true})
}

func TestSelectTabIdempotent(t *testing.T) {
	r := testRegistry(t)
	a := addTab(r, "https://a.example")
	b := addTab(r, "https://b.example")

	r.SelectTab(a.ID)
	first := snapshotState(r)
	r.SelectTab(a.ID)
	second := snapshotState(r)

	if first != second {
		t.Errorf("selecting twice changed state: %q vs %q", first, second)
	}
	if r.Selected() != a {
		t.Errorf("selected = %v, want a", r.Selected())
	}
	_ = b
}

func snapshotState(r *Registry) string {
	s := ""
	for _, tab := range r.Tabs() {
		s += tab.ID + "|" + tab.RootID + ";"
	}
	if sel := r.Selected(); sel != nil {
		s += "sel=" + sel.ID
	}
	s += "|groups="
	for id := range r.Groups() {
		s += id + ","
	}
	return s
}

func TestSelectUnknownTabNoop(t *testing.T) {
	r := testRegistry(t)
	a := addTab(r, "https://a.example")
	r.SelectTab("nope")
	if r.Selected() != a {
		t.Error("selecting an unknown id must not change selection")
	}
}

func TestTogglePinnedPairing(t *testing.T) {
	r := testRegistry(t)
	a := addTab(r, "https://a.example")

	r.TogglePinned(a.ID)
	if !a.Pinned() || a.PinnedAt().IsZero() {
		t.Errorf("pinned=%v pinnedAt=%v after pin", a.Pinned(), a.PinnedAt())
	}

	r.TogglePinned(a.ID)
	if a.Pinned() || !a.PinnedAt().IsZero() {
		t.Errorf("pinned=%v pinnedAt=%v after unpin", a.Pinned(), a.PinnedAt())
	}
}

func TestRemoveSelectedPrefersParent(t *testing.T) {
	r := testRegistry(t)
	a := addTab(r, "https://a.example")
	b := r.AddTab(AddOptions{URL: "https://b.example", ParentID: a.ID, Select: true})

	if r.Selected() != b {
		t.Fatal("child should be selected")
	}
	r.RemoveTab(b.ID, SelectParent)
	if r.Selected() != a {
		t.Errorf("selected = %v, want parent", r.Selected())
	}
}

func TestRemoveLastTabSignalsOverview(t *testing.T) {
	r := testRegistry(t)
	a := addTab(r, "https://a.example")

	var got Change
	r.Subscribe(func(c Change) { got = c })

	r.RemoveTab(a.ID, SelectDefault)
	if r.Selected() != nil {
		t.Error("selection should be empty")
	}
	if !got.ShowOverview {
		t.Error("expected overview signal in change")
	}
	if len(r.Tabs()) != 0 {
		t.Errorf("tabs remaining: %d", len(r.Tabs()))
	}
}

func TestRemoveUnknownTabNoop(t *testing.T) {
	r := testRegistry(t)
	addTab(r, "https://a.example")
	r.RemoveTab("nope", SelectDefault)
	if len(r.Tabs()) != 1 {
		t.Error("removing unknown id must be a no-op")
	}
}

func TestRemoveClearsChildParentLinks(t *testing.T) {
	r := testRegistry(t)
	a := addTab(r, "https://a.example")
	b := r.AddTab(AddOptions{URL: "https://b.example", ParentID: a.ID})

	r.RemoveTab(a.ID, SelectDefault)
	if b.ParentID != "" {
		t.Errorf("child still links removed parent: %q", b.ParentID)
	}
}

func TestRemoveNotViableFallsBackToOverview(t *testing.T) {
	r := testRegistry(t)
	now := r.now()
	a := addTab(r, "https://a.example")
	b := addTab(r, "https://b.example")

	// Make a ancient but not archive-eligible (month retention, 20 days).
	a.LastExecutedAt = now.AddDate(0, 0, -20)

	var got Change
	r.Subscribe(func(c Change) { got = c })
	r.RemoveTab(b.ID, SelectDefault)

	if r.Selected() != nil {
		t.Error("an old tab must not be resurrected as the active one")
	}
	if !got.ShowOverview {
		t.Error("expected overview signal")
	}
}

func TestAddTabJoinsParentGroup(t *testing.T) {
	r := testRegistry(t)
	a := addTab(r, "https://a.example")
	b := r.AddTab(AddOptions{URL: "https://b.example", ParentID: a.ID})

	if b.RootID != a.RootID {
		t.Error("child should share the parent's root")
	}
	g, ok := r.Groups()[a.RootID]
	if !ok {
		t.Fatal("parent/child should form a group")
	}
	if len(g.Children) != 2 {
		t.Errorf("group size = %d", len(g.Children))
	}
}

func TestAddTabInsertsAfterParentDescendants(t *testing.T) {
	r := testRegistry(t)
	a := addTab(r, "https://a.example")
	b := r.AddTab(AddOptions{URL: "https://b.example", ParentID: a.ID})
	c := r.AddTab(AddOptions{URL: "https://c.example", ParentID: b.ID})
	d := r.AddTab(AddOptions{URL: "https://d.example", ParentID: a.ID})

	want := []*types.Tab{a, b, c, d}
	for i, tab := range r.Tabs() {
		if tab != want[i] {
			t.Fatalf("order[%d] = %s, want %s", i, tab.URL, want[i].URL)
		}
	}
}

func TestAddTabNavigationHeuristic(t *testing.T) {
	r := testRegistry(t)
	a := addTab(r, "https://example.com/article")
	addTab(r, "https://other.example")

	// Same navigation repeated: joins a's group despite different scheme
	// and trailing slash.
	c := r.AddTab(AddOptions{URL: "http://example.com/article/"})
	if c.RootID != a.RootID {
		t.Error("repeated navigation should join the originating tab's group")
	}
}

func TestAddTabExplicitIndex(t *testing.T) {
	r := testRegistry(t)
	addTab(r, "https://a.example")
	addTab(r, "https://b.example")
	zero := 0
	c := r.AddTab(AddOptions{URL: "https://c.example", Index: &zero})
	if r.Tabs()[0] != c {
		t.Error("explicit index 0 should insert at the front")
	}
}

func TestRearrangeIntoGroup(t *testing.T) {
	r := testRegistry(t)
	x := addTab(r, "https://x.example")
	y := addTab(r, "https://y.example")
	z := r.AddTab(AddOptions{URL: "https://z.example", ParentID: y.ID})

	if y.RootID != z.RootID {
		t.Fatal("setup: y and z should share a group")
	}
	g1 := y.RootID

	r.RearrangeTabs(r.indexOf(x.ID), r.indexOf(y.ID))

	if x.RootID != g1 {
		t.Errorf("x.RootID = %q, want %q", x.RootID, g1)
	}
	group, ok := r.Groups()[g1]
	if !ok {
		t.Fatal("group should exist after rearrange")
	}
	found := false
	for _, e := range group.Children {
		if e.ID() == x.ID {
			found = true
		}
	}
	if !found {
		t.Error("x should appear in the destination group")
	}
}

func TestRearrangeOutOfGroupAssignsFreshRoot(t *testing.T) {
	r := testRegistry(t)
	a := addTab(r, "https://a.example")
	b := r.AddTab(AddOptions{URL: "https://b.example", ParentID: a.ID})
	lone := addTab(r, "https://lone.example")

	oldRoot := b.RootID
	r.RearrangeTabs(r.indexOf(b.ID), r.indexOf(lone.ID))

	if b.RootID == oldRoot {
		t.Error("moving next to an ungrouped tab should leave the old group")
	}
	if b.RootID == lone.RootID {
		t.Error("destination was not a group; no group join expected")
	}
}

func TestArchiveSweepMutualExclusion(t *testing.T) {
	r := testRegistry(t)
	r.cfg.Retention = archive.Week
	now := r.now()

	old := addTab(r, "https://old.example")
	fresh := addTab(r, "https://fresh.example")
	old.LastExecutedAt = now.AddDate(0, 0, -20)

	// Any mutation triggers the sweep.
	r.SetGroupName("none", "")

	if r.byID[old.ID] != nil {
		t.Error("aged-out tab still in active set")
	}
	found := false
	for _, a := range r.Archived() {
		if a.ID == old.ID {
			found = true
		}
	}
	if !found {
		t.Error("aged-out tab missing from archive")
	}
	if r.byID[fresh.ID] == nil {
		t.Error("fresh tab should stay active")
	}
}

func TestArchiveExemptsSelectedAndPinned(t *testing.T) {
	r := testRegistry(t)
	r.cfg.Retention = archive.Week
	now := r.now()

	pinned := addTab(r, "https://pinned.example")
	sel := addTab(r, "https://selected.example")
	r.TogglePinned(pinned.ID)

	pinned.LastExecutedAt = now.AddDate(0, 0, -40)
	sel.LastExecutedAt = now.AddDate(0, 0, -40)
	r.SelectTab(sel.ID)

	if len(r.Archived()) != 0 {
		t.Error("pinned and selected tabs must survive the sweep")
	}
	// The selected tab's timestamp was refreshed by the exemption.
	if sel.LastExecutedAt.Before(now) {
		t.Error("selected tab timestamp should have been refreshed")
	}
}

func TestIncognitoNeverArchivedOrBuffered(t *testing.T) {
	r := testRegistry(t)
	r.cfg.Retention = archive.Week
	now := r.now()

	inc := r.AddTab(AddOptions{URL: "https://secret.example", Incognito: true, Select: true})
	inc.LastExecutedAt = now.AddDate(0, 0, -40)

	r.SetGroupName("none", "")
	if len(r.Archived()) != 0 {
		t.Error("incognito tabs are never archived")
	}

	r.RemoveTab(inc.ID, SelectDefault)
	if len(r.RecentlyClosed().Entries()) != 0 {
		t.Error("incognito tabs never enter the recently-closed buffer")
	}
}

func TestIncognitoPartitionSelection(t *testing.T) {
	r := testRegistry(t)
	normal := addTab(r, "https://a.example")
	inc := r.AddTab(AddOptions{URL: "https://secret.example", Incognito: true, Select: true})

	if !r.Incognito() {
		t.Fatal("selecting an incognito tab switches the partition")
	}
	if r.Selected() != inc {
		t.Fatal("incognito tab should be selected")
	}

	r.SelectTab(normal.ID)
	if r.Incognito() {
		t.Error("selecting a normal tab switches back")
	}
	if r.Selected() != normal {
		t.Error("normal tab should be selected")
	}
	// Both partition selections are retained.
	if r.selectedIncognitoID != inc.ID {
		t.Error("incognito selection should persist across the switch")
	}
}

func TestCloseIncognitoOnExit(t *testing.T) {
	r := testRegistry(t)
	r.cfg.CloseIncognitoOnExit = true
	normal := addTab(r, "https://a.example")
	r.AddTab(AddOptions{URL: "https://secret.example", Incognito: true, Select: true})

	r.SelectTab(normal.ID)
	for _, tab := range r.Tabs() {
		if tab.Incognito {
			t.Error("incognito tabs should be purged on partition exit")
		}
	}
}

func TestRecentlyClosedBurst(t *testing.T) {
	r := testRegistry(t)
	base := r.now()
	a := addTab(r, "https://a.example")
	b := addTab(r, "https://b.example")
	c := addTab(r, "https://c.example")
	d := addTab(r, "https://d.example")

	fixClock(r, base)
	r.RemoveTab(a.ID, SelectDefault)
	fixClock(r, base.Add(200*time.Millisecond))
	r.RemoveTab(b.ID, SelectDefault)
	fixClock(r, base.Add(400*time.Millisecond))
	r.RemoveTab(c.ID, SelectDefault)

	if n := len(r.RecentlyClosed().Entries()); n != 1 {
		t.Fatalf("burst close should form 1 entry, got %d", n)
	}
	if n := len(r.RecentlyClosed().Entries()[0].Tabs); n != 3 {
		t.Fatalf("entry should hold 3 tabs, got %d", n)
	}

	fixClock(r, base.Add(5*time.Second))
	r.RemoveTab(d.ID, SelectDefault)
	if n := len(r.RecentlyClosed().Entries()); n != 2 {
		t.Fatalf("late close should start a new entry, got %d entries", n)
	}
}

func TestRestoreRecentlyClosed(t *testing.T) {
	r := testRegistry(t)
	a := addTab(r, "https://a.example")
	b := r.AddTab(AddOptions{URL: "https://b.example", ParentID: a.ID})

	r.RemoveTab(b.ID, SelectDefault)
	r.RemoveTab(a.ID, SelectDefault)

	entries := r.RecentlyClosed().Entries()
	if len(entries) != 1 {
		t.Fatalf("expected one burst entry, got %d", len(entries))
	}

	r.RestoreRecentlyClosed(entries[0])
	if len(r.Tabs()) != 2 {
		t.Fatalf("expected both tabs restored, got %d", len(r.Tabs()))
	}
	if len(r.RecentlyClosed().Entries()) != 0 {
		t.Error("restored entry should leave the buffer")
	}
	if r.byID[a.ID] == nil || r.byID[b.ID] == nil {
		t.Error("restored tabs keep their ids")
	}
}

func TestRemoveIncognitoSelectsOlderIncognito(t *testing.T) {
	r := testRegistry(t)
	old := r.AddTab(AddOptions{URL: "https://old.example", Incognito: true, Select: true})
	cur := r.AddTab(AddOptions{URL: "https://cur.example", Incognito: true, Select: true})
	old.LastExecutedAt = r.now().AddDate(0, 0, -1)

	r.RemoveTab(cur.ID, SelectDefault)

	// The section gate applies to normal tabs only; a day-old incognito
	// tab is still a replacement candidate.
	if r.Selected() != old {
		t.Errorf("selected = %v, want the remaining incognito tab", r.Selected())
	}
}

func TestContentHistoryOps(t *testing.T) {
	r := testRegistry(t)
	a := addTab(r, "https://a.example")
	fc := a.Content.(*fakeContent)

	if err := r.GoBack(a.ID); err != nil {
		t.Fatalf("GoBack: %v", err)
	}
	if err := r.GoForward(a.ID); err != nil {
		t.Fatalf("GoForward: %v", err)
	}
	if err := r.Reload(a.ID); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if fc.backs != 1 || fc.forwards != 1 || fc.reloads != 1 {
		t.Errorf("content calls: back=%d forward=%d reload=%d", fc.backs, fc.forwards, fc.reloads)
	}

	if err := r.GoBack("nope"); err == nil {
		t.Error("expected error for unknown tab")
	}

	zombie := r.AddTab(AddOptions{URL: "https://z.example"})
	if err := r.Reload(zombie.ID); err == nil {
		t.Error("expected error for a tab with no loaded content")
	}
}

func TestRecentlyClosedSurvivesReload(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tabs.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer st.Close()

	r := New(config.Default(), st, st, nil, "window-1")
	fixClock(r, time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local))

	addTab(r, "https://keep.example")
	gone := addTab(r, "https://gone.example")
	gone.Title = "Gone"
	r.RemoveTab(gone.ID, SelectDefault)

	if err := r.PersistNow(); err != nil {
		t.Fatalf("PersistNow: %v", err)
	}

	r2 := New(config.Default(), st, st, nil, "window-1")
	fixClock(r2, r.now())
	if err := r2.LoadSaved(); err != nil {
		t.Fatalf("LoadSaved: %v", err)
	}

	if len(r2.Tabs()) != 1 {
		t.Fatalf("active after reload = %d, want 1", len(r2.Tabs()))
	}
	flat := r2.RecentlyClosed().Flattened()
	if len(flat) != 1 {
		t.Fatalf("recently-closed pool after reload = %d tabs, want 1", len(flat))
	}
	if flat[0].ID != gone.ID || flat[0].Title != "Gone" {
		t.Errorf("closed tab lost identity: %+v", flat[0])
	}

	// The restored entry is undoable like any other.
	r2.RestoreRecentlyClosed(r2.RecentlyClosed().Entries()[0])
	if len(r2.Tabs()) != 2 || r2.byID[gone.ID] == nil {
		t.Error("restored closed tab should be active again")
	}
}

func TestSelectArchivedPromotes(t *testing.T) {
	r := testRegistry(t)
	a := addTab(r, "https://a.example")
	addTab(r, "https://keep.example") // selected, keeps a out of the exemption

	id := a.ID
	r.cfg.Retention = archive.Week
	a.LastExecutedAt = r.now().AddDate(0, 0, -20)
	r.SetGroupName("none", "")

	if r.byID[id] != nil {
		t.Fatal("setup: tab should be archived")
	}

	r.SelectArchived(id)
	if r.byID[id] == nil {
		t.Fatal("archived tab should be live again")
	}
	if r.Selected() == nil || r.Selected().ID != id {
		t.Error("promoted tab should be selected")
	}
	for _, arch := range r.Archived() {
		if arch.ID == id {
			t.Error("promoted tab should leave the archive")
		}
	}
}

func TestArchiveAllAndRemoveArchivedGroup(t *testing.T) {
	r := testRegistry(t)
	a := addTab(r, "https://a.example")
	b := r.AddTab(AddOptions{URL: "https://b.example", ParentID: a.ID})
	c := addTab(r, "https://c.example")

	r.ArchiveAllForDebug()
	if len(r.Tabs()) != 0 {
		t.Fatalf("expected all tabs archived, %d left", len(r.Tabs()))
	}
	if len(r.Archived()) != 3 {
		t.Fatalf("expected 3 archived, got %d", len(r.Archived()))
	}

	r.RemoveArchivedGroup(a.RootID)
	if len(r.Archived()) != 1 {
		t.Fatalf("expected 1 archived after group removal, got %d", len(r.Archived()))
	}
	if r.Archived()[0].ID != c.ID {
		t.Error("wrong archived tab survived")
	}
	_ = b
}

func TestNotificationAfterConsistentRecompute(t *testing.T) {
	r := testRegistry(t)

	var groupsAtNotify int
	unsub := r.Subscribe(func(Change) {
		groupsAtNotify = len(r.Groups())
	})

	a := addTab(r, "https://a.example")
	r.AddTab(AddOptions{URL: "https://b.example", ParentID: a.ID})

	if groupsAtNotify != 1 {
		t.Errorf("listener observed %d groups, want 1 (recompute before notify)", groupsAtNotify)
	}

	unsub()
	calls := groupsAtNotify
	addTab(r, "https://c.example")
	if groupsAtNotify != calls {
		t.Error("unsubscribed listener was invoked")
	}
}

func TestPersistRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tabs.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer st.Close()

	cfg := config.Default()
	r := New(cfg, st, st, nil, "window-1")
	fixClock(r, time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local))

	a := addTab(r, "https://a.example")
	a.Title = "Alpha"
	b := r.AddTab(AddOptions{URL: "https://b.example", ParentID: a.ID})
	r.TogglePinned(a.ID)
	r.UpdateNavigation(b.ID, "https://b.example/next", "Next")

	if err := r.PersistNow(); err != nil {
		t.Fatalf("PersistNow: %v", err)
	}

	r2 := New(config.Default(), st, st, nil, "window-1")
	fixClock(r2, r.now())
	if err := r2.LoadSaved(); err != nil {
		t.Fatalf("LoadSaved: %v", err)
	}

	if len(r2.Tabs()) != 2 {
		t.Fatalf("restored %d tabs, want 2", len(r2.Tabs()))
	}
	ra := r2.byID[a.ID]
	rb := r2.byID[b.ID]
	if ra == nil || rb == nil {
		t.Fatal("restored tabs lost their ids")
	}
	if ra.Title != "Alpha" || ra.URL != "https://a.example" || !ra.Pinned() {
		t.Errorf("tab a fields lost: %+v", ra)
	}
	if ra.RootID != a.RootID || rb.RootID != b.RootID {
		t.Error("root ids must survive the round trip")
	}
	if rb.ParentID != a.ID {
		t.Error("parent link should resolve after two-phase restore")
	}
	if rb.URL != "https://b.example/next" || len(rb.History) != 1 {
		t.Errorf("navigation state lost: url=%q history=%d", rb.URL, len(rb.History))
	}
}

func TestLoadSavedRederivesArchive(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tabs.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer st.Close()

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)
	records := []store.TabRecord{
		{ID: "fresh", RootID: "r1", URL: "https://fresh.example", LastExecutedMs: now.Add(-time.Hour).UnixMilli()},
		{ID: "stale", RootID: "r2", URL: "https://stale.example", LastExecutedMs: now.AddDate(0, 0, -60).UnixMilli()},
	}
	if err := st.Save("window-1", records); err != nil {
		t.Fatalf("Save: %v", err)
	}

	r := New(config.Default(), st, st, nil, "window-1")
	fixClock(r, now)
	if err := r.LoadSaved(); err != nil {
		t.Fatalf("LoadSaved: %v", err)
	}

	if len(r.Tabs()) != 1 || r.Tabs()[0].ID != "fresh" {
		t.Errorf("active after load: %d", len(r.Tabs()))
	}
	if len(r.Archived()) != 1 || r.Archived()[0].ID != "stale" {
		t.Errorf("stale record should load straight into the archive")
	}
}

func TestRestoreSavedSelection(t *testing.T) {
	r := testRegistry(t)
	now := r.now()

	records := []store.TabRecord{
		{ID: "t1", RootID: "r1", URL: "https://a.example", LastExecutedMs: now.Add(-time.Hour).UnixMilli(), Selected: true},
		{ID: "t2", RootID: "r2", URL: "https://b.example", LastExecutedMs: now.Add(-time.Minute).UnixMilli()},
	}
	r.RestoreSaved(records)

	if sel := r.Selected(); sel == nil || sel.ID != "t1" {
		t.Errorf("snapshot-selected tab should win, got %v", r.Selected())
	}
}

func TestRestoreSavedSelectionFallsBackToLast(t *testing.T) {
	r := testRegistry(t)
	now := r.now()

	// The flagged tab is too old to be viable, so the last restored wins.
	records := []store.TabRecord{
		{ID: "t1", RootID: "r1", URL: "https://a.example", LastExecutedMs: now.AddDate(0, 0, -10).UnixMilli(), Selected: true},
		{ID: "t2", RootID: "r2", URL: "https://b.example", LastExecutedMs: now.Add(-time.Minute).UnixMilli()},
	}
	r.RestoreSaved(records)

	if sel := r.Selected(); sel == nil || sel.ID != "t2" {
		t.Errorf("stale snapshot selection should fall back to last restored, got %v", r.Selected())
	}
}

func TestZombieRevivalOnSelect(t *testing.T) {
	r := testRegistry(t)
	records := []store.TabRecord{
		{ID: "t1", RootID: "r1", URL: "https://a.example", LastExecutedMs: r.now().Add(-time.Minute).UnixMilli()},
	}
	r.RestoreSaved(records)

	tab := r.byID["t1"]
	if tab == nil {
		t.Fatal("restore failed")
	}
	// Restored tabs come back as zombies and only load on selection.
	if tab.Content == nil {
		t.Fatal("selection during restore should have revived the content handle")
	}
	fc := tab.Content.(*fakeContent)
	if fc.loaded != "https://a.example" {
		t.Errorf("content loaded %q", fc.loaded)
	}
}
