package registry

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/lotas/tabwart/internal/applog"
	"github.com/lotas/tabwart/internal/classify"
	"github.com/lotas/tabwart/internal/groups"
	"github.com/lotas/tabwart/internal/types"
)

// SelectPreference controls which tab becomes selected after the selected
// tab is closed.
type SelectPreference int

const (
	SelectDefault SelectPreference = iota
	SelectParent
	SelectMostRecent
)

// AddOptions configures AddTab. A nil Index means "no explicit position".
type AddOptions struct {
	URL       string
	Title     string
	Incognito bool
	ParentID  string
	SpaceID   string
	Index     *int
	Select    bool
}

// AddTab inserts a new tab and returns it. It never fails. Placement, in
// priority order: the explicit index; after the parent and the parent's
// descendants; next to an ungrouped tab whose initial URL matches the new
// tab's target (joining its group); appended at the end.
func (r *Registry) AddTab(opts AddOptions) *types.Tab {
	now := r.now()
	t := types.NewTab(opts.URL, opts.Incognito, now)
	t.Title = opts.Title
	t.ParentSpaceID = opts.SpaceID

	index := len(r.tabs)
	switch {
	case opts.Index != nil:
		index = *opts.Index
		if index < 0 {
			index = 0
		}
		if index > len(r.tabs) {
			index = len(r.tabs)
		}
	case opts.ParentID != "":
		if parent, ok := r.byID[opts.ParentID]; ok && parent.Incognito == t.Incognito {
			t.ParentID = parent.ID
			t.RootID = parent.RootID
			index = r.afterDescendants(parent)
		}
	default:
		if match, at := r.matchNavigation(opts.URL, t.Incognito); match != nil {
			t.RootID = match.RootID
			index = at + 1
		}
	}

	r.tabs = append(r.tabs, nil)
	copy(r.tabs[index+1:], r.tabs[index:])
	r.tabs[index] = t
	r.byID[t.ID] = t

	applog.Debug("registry.add", "tab", t.ID, "index", index)

	if opts.Select {
		r.selectLive(t)
	}
	r.recompute("add")
	return t
}

// afterDescendants returns the insertion index just past a parent tab and
// every contiguous tab descending from it.
func (r *Registry) afterDescendants(parent *types.Tab) int {
	idx := r.indexOf(parent.ID)
	under := map[string]bool{parent.ID: true}
	i := idx + 1
	for ; i < len(r.tabs); i++ {
		if !under[r.tabs[i].ParentID] {
			break
		}
		under[r.tabs[i].ID] = true
	}
	return i
}

// matchNavigation finds an ungrouped same-partition tab whose initial URL
// matches the target under the configured policy.
func (r *Registry) matchNavigation(targetURL string, incognito bool) (*types.Tab, int) {
	if targetURL == "" {
		return nil, -1
	}
	rootCount := map[string]int{}
	for _, t := range r.tabs {
		rootCount[t.RootID]++
	}
	for i, t := range r.tabs {
		if t.Incognito != incognito {
			continue
		}
		if rootCount[t.RootID] > 1 || r.cfg.GroupNames[t.RootID] != "" {
			continue // already grouped
		}
		if groups.SameNavigation(targetURL, t, r.cfg.MatchPolicy) {
			return t, i
		}
	}
	return nil, -1
}

// SelectTab makes the tab the selected one of its partition, switching the
// global partition if needed. Idempotent: selecting the selected tab again
// just refreshes its timestamp. Unknown ids are a logged no-op.
func (r *Registry) SelectTab(id string) {
	t, ok := r.byID[id]
	if !ok {
		applog.Info("registry.select.missing", "tab", id)
		return
	}
	r.selectLive(t)
	r.recompute("select")
}

func (r *Registry) selectLive(t *types.Tab) {
	if t.Incognito != r.incognito {
		leaving := r.incognito && !t.Incognito
		r.incognito = t.Incognito
		if leaving && r.cfg.CloseIncognitoOnExit {
			r.purgeIncognito()
		}
	}

	t.LastExecutedAt = r.now()
	if t.Content == nil && r.newContent != nil {
		t.Content = r.newContent(t.Incognito)
		if t.URL != "" {
			if err := t.Content.Load(t.URL); err != nil {
				applog.Error("registry.load", err, "tab", t.ID)
			}
		}
	}

	if t.Incognito {
		r.selectedIncognitoID = t.ID
	} else {
		r.selectedID = t.ID
	}
}

// purgeIncognito closes every incognito tab. Incognito tabs never enter the
// recently-closed buffer.
func (r *Registry) purgeIncognito() {
	kept := r.tabs[:0]
	for _, t := range r.tabs {
		if t.Incognito {
			t.ReleaseContent()
			delete(r.byID, t.ID)
			continue
		}
		kept = append(kept, t)
	}
	r.tabs = kept
	r.selectedIncognitoID = ""
	applog.Info("registry.incognito.purged")
}

// RemoveTab closes a tab: drops it from the active list, releases its
// content, clears its children's parent link, records it in the
// recently-closed buffer (unless incognito) and, if it was selected, picks
// a replacement per the preference. Unknown ids are a logged no-op.
func (r *Registry) RemoveTab(id string, pref SelectPreference) {
	idx := r.indexOf(id)
	if idx < 0 {
		applog.Info("registry.remove.missing", "tab", id)
		return
	}
	t := r.tabs[idx]

	r.tabs = append(r.tabs[:idx], r.tabs[idx+1:]...)
	delete(r.byID, t.ID)
	for _, child := range r.tabs {
		if child.ParentID == t.ID {
			child.ParentID = ""
		}
	}
	t.ReleaseContent()

	if !t.Incognito {
		r.recent.Record([]*types.Tab{t}, r.now())
	}

	wasSelected := (t.Incognito && r.selectedIncognitoID == t.ID) ||
		(!t.Incognito && r.selectedID == t.ID)
	if wasSelected {
		r.replaceSelection(t, idx, pref)
	}

	r.recompute("remove")
}

// replaceSelection picks the next selected tab after the selected one was
// removed. Viable means: same incognito partition and, for normal tabs,
// classified Today or Pinned — closing a tab must not resurrect an ancient
// one as the active page. Incognito tabs skip the section gate; the whole
// partition is short-lived anyway. With no viable tab, selection goes empty
// and the change carries the overview signal.
func (r *Registry) replaceSelection(removed *types.Tab, removedIdx int, pref SelectPreference) {
	if removed.Incognito {
		r.selectedIncognitoID = ""
	} else {
		r.selectedID = ""
	}

	parent := r.byID[removed.ParentID]
	if parent != nil && parent.Incognito != removed.Incognito {
		parent = nil
	}

	var next *types.Tab
	switch {
	case pref == SelectParent && parent != nil && r.viable(parent):
		next = parent
	case pref == SelectMostRecent:
		next = r.mostRecentViable(removed.Incognito)
	default:
		mr := r.mostRecentViable(removed.Incognito)
		if parent != nil && r.viable(parent) && (parent == mr || parent.Pinned()) {
			next = parent
		} else if adj := r.adjacentViable(removedIdx, removed.Incognito); adj != nil {
			next = adj
		} else {
			next = mr
		}
	}

	if next == nil {
		r.showOverview = true
		applog.Info("registry.select.empty")
		return
	}
	r.selectLive(next)
}

// viable reports whether a tab may become selected as a replacement. The
// Today/Pinned gate applies to normal tabs only; incognito tabs are always
// candidates within their partition, which the callers check.
func (r *Registry) viable(t *types.Tab) bool {
	if t.Incognito {
		return true
	}
	switch classify.Classify(t.Pinned(), t.LastExecutedAt, r.now()) {
	case classify.Pinned, classify.Today:
		return true
	}
	return false
}

func (r *Registry) mostRecentViable(incognito bool) *types.Tab {
	var best *types.Tab
	for _, t := range r.tabs {
		if t.Incognito != incognito || !r.viable(t) {
			continue
		}
		if best == nil || t.LastExecutedAt.After(best.LastExecutedAt) {
			best = t
		}
	}
	return best
}

func (r *Registry) adjacentViable(idx int, incognito bool) *types.Tab {
	if idx < len(r.tabs) {
		if t := r.tabs[idx]; t.Incognito == incognito && r.viable(t) {
			return t
		}
	}
	if idx-1 >= 0 && idx-1 < len(r.tabs) {
		if t := r.tabs[idx-1]; t.Incognito == incognito && r.viable(t) {
			return t
		}
	}
	return nil
}

// RearrangeTabs moves the tab at from to position to. The moved tab joins
// the destination tab's group when the destination belongs to one, and
// otherwise leaves any group it was in by taking a fresh root ID.
// Out-of-range indices are a logged no-op.
func (r *Registry) RearrangeTabs(from, to int) {
	if from < 0 || from >= len(r.tabs) || to < 0 || to >= len(r.tabs) || from == to {
		applog.Info("registry.rearrange.invalid", "from", from, "to", to)
		return
	}

	moved := r.tabs[from]
	dest := r.tabs[to]
	if r.inGroup(dest) {
		moved.RootID = dest.RootID
	} else {
		moved.RootID = uuid.NewString()
	}

	r.tabs = append(r.tabs[:from], r.tabs[from+1:]...)
	if to > from {
		to--
	}
	r.tabs = append(r.tabs[:to], append([]*types.Tab{moved}, r.tabs[to:]...)...)

	r.recompute("rearrange")
}

// inGroup reports whether a tab's root partition is a visible group.
func (r *Registry) inGroup(t *types.Tab) bool {
	if r.cfg.GroupNames[t.RootID] != "" {
		return true
	}
	n := 0
	for _, other := range r.tabs {
		if other.RootID == t.RootID {
			n++
		}
	}
	return n > 1
}

// TogglePinned flips the pin state; the pin timestamp moves with it.
// Unknown ids are a logged no-op.
func (r *Registry) TogglePinned(id string) {
	t, ok := r.byID[id]
	if !ok {
		applog.Info("registry.pin.missing", "tab", id)
		return
	}
	t.SetPinned(!t.Pinned(), r.now())
	r.recompute("pin")
}

// SetGroupName assigns (or clears, with an empty name) the custom name of a
// group.
func (r *Registry) SetGroupName(rootID, name string) {
	if name == "" {
		delete(r.cfg.GroupNames, rootID)
	} else {
		r.cfg.GroupNames[rootID] = name
	}
	r.recompute("group-name")
}

// UpdateNavigation records an in-tab navigation: the previous page goes
// into history, URL and title update, and the activity timestamp refreshes.
func (r *Registry) UpdateNavigation(id, url, title string) {
	t, ok := r.byID[id]
	if !ok {
		applog.Info("registry.navigate.missing", "tab", id)
		return
	}
	if t.URL != "" {
		t.History = append(t.History, types.HistoryEntry{URL: t.URL, Title: t.Title})
	}
	t.URL = url
	t.Title = title
	t.LastExecutedAt = r.now()
	r.recompute("navigate")
}

// GoBack navigates the tab's content one history entry back. The resulting
// URL change arrives separately through UpdateNavigation.
func (r *Registry) GoBack(id string) error {
	return r.contentOp(id, "back", types.WebContent.GoBack)
}

// GoForward navigates the tab's content one history entry forward.
func (r *Registry) GoForward(id string) error {
	return r.contentOp(id, "forward", types.WebContent.GoForward)
}

// Reload reloads the tab's current page.
func (r *Registry) Reload(id string) error {
	return r.contentOp(id, "reload", types.WebContent.Reload)
}

// contentOp runs a history operation against a tab's content handle. Unknown
// tabs and zombies (no loaded content) error out rather than no-op: the
// caller asked for a page interaction that cannot happen.
func (r *Registry) contentOp(id, op string, fn func(types.WebContent) error) error {
	t, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("no tab %q", id)
	}
	if t.Content == nil {
		return fmt.Errorf("tab %q has no loaded content", id)
	}
	if err := fn(t.Content); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	t.LastExecutedAt = r.now()
	r.recompute(op)
	return nil
}

// UpdateScreenshot stores a fresh screenshot blob for the tab. Not a
// structural mutation, so no recompute runs.
func (r *Registry) UpdateScreenshot(id string, blob []byte) {
	t, ok := r.byID[id]
	if !ok || r.blobs == nil {
		return
	}
	if err := r.blobs.Update(t.ScreenshotKey, blob); err != nil {
		applog.Error("registry.screenshot", err, "tab", id)
	}
}

func (r *Registry) indexOf(id string) int {
	for i, t := range r.tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}
