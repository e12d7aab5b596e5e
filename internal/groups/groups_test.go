package groups

import (
	"testing"
	"time"

	"github.com/lotas/tabwart/internal/types"
)

func liveTab(id, root, title string, last time.Time) types.Entry {
	t := &types.Tab{ID: id, RootID: root, Title: title, LastExecutedAt: last}
	return types.LiveEntry(t)
}

func TestResolveGroupSymmetry(t *testing.T) {
	now := time.Now()
	entries := []types.Entry{
		liveTab("a", "g1", "First", now.Add(-2*time.Hour)),
		liveTab("b", "g1", "Second", now),
		liveTab("c", "g2", "Lone", now),
	}

	result := Resolve(entries, nil)

	g, ok := result["g1"]
	if !ok {
		t.Fatal("expected group g1")
	}
	if g.ID != "g1" {
		t.Errorf("group ID = %q, want g1", g.ID)
	}
	if len(g.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(g.Children))
	}
	ids := map[string]bool{}
	for _, e := range g.Children {
		ids[e.ID()] = true
	}
	if !ids["a"] || !ids["b"] {
		t.Errorf("group g1 missing members: %v", ids)
	}
	if !g.LastExecutedAt.Equal(now) {
		t.Errorf("LastExecutedAt = %v, want %v", g.LastExecutedAt, now)
	}

	if _, ok := result["g2"]; ok {
		t.Error("single unnamed tab should not form a group")
	}
}

func TestResolveNamedSingleton(t *testing.T) {
	entries := []types.Entry{
		liveTab("a", "g1", "Research", time.Now()),
	}
	names := map[string]string{"g1": "Reading List"}

	result := Resolve(entries, names)

	g, ok := result["g1"]
	if !ok {
		t.Fatal("named single-tab group should be visible")
	}
	if g.Title != "Reading List" {
		t.Errorf("Title = %q, want custom name", g.Title)
	}
}

func TestResolveTitleFallbacks(t *testing.T) {
	now := time.Now()

	// Child title wins when no custom name.
	result := Resolve([]types.Entry{
		liveTab("a", "g1", "Article", now),
		liveTab("b", "g1", "", now),
	}, nil)
	if got := result["g1"].Title; got != "Article" {
		t.Errorf("Title = %q, want Article", got)
	}

	// All empty titles fall back to the count.
	result = Resolve([]types.Entry{
		liveTab("a", "g2", "", now),
		liveTab("b", "g2", "", now),
		liveTab("c", "g2", "", now),
	}, nil)
	if got := result["g2"].Title; got != "3 Tabs" {
		t.Errorf("Title = %q, want \"3 Tabs\"", got)
	}
}

func TestResolvePinnedChild(t *testing.T) {
	now := time.Now()
	pinned := &types.Tab{ID: "a", RootID: "g1", LastExecutedAt: now}
	pinned.SetPinned(true, now)
	entries := []types.Entry{
		types.LiveEntry(pinned),
		liveTab("b", "g1", "Other", now),
	}

	result := Resolve(entries, nil)
	if !result["g1"].HasPinnedChild {
		t.Error("expected HasPinnedChild")
	}
}

func TestResolveMixedLiveArchived(t *testing.T) {
	now := time.Now()
	entries := []types.Entry{
		liveTab("a", "g1", "Live", now),
		types.ArchivedEntry(&types.ArchivedTab{ID: "b", RootID: "g1", Title: "Old", LastExecutedAt: now.Add(-time.Hour)}),
	}

	result := Resolve(entries, nil)
	if len(result["g1"].Children) != 2 {
		t.Fatal("archived and live entries with the same root should group together")
	}
}

func TestNormalize(t *testing.T) {
	p := DefaultMatchPolicy()

	tests := []struct {
		a, b string
		same bool
	}{
		{"https://example.com/page", "http://example.com/page", true},
		{"https://example.com/page/", "https://example.com/page", true},
		{"https://EXAMPLE.com/page", "https://example.com/page", true},
		{"https://example.com/page#section", "https://example.com/page", true},
		{"https://example.com/page?q=1", "https://example.com/page", false},
		{"https://example.com/a", "https://example.com/b", false},
	}

	for _, tt := range tests {
		got := Normalize(tt.a, p) == Normalize(tt.b, p)
		if got != tt.same {
			t.Errorf("Normalize(%q) == Normalize(%q): got %v, want %v", tt.a, tt.b, got, tt.same)
		}
	}
}

func TestNormalizeIgnoreQuery(t *testing.T) {
	p := DefaultMatchPolicy()
	p.IgnoreQuery = true
	if Normalize("https://example.com/page?q=1", p) != Normalize("https://example.com/page", p) {
		t.Error("IgnoreQuery should drop the query string")
	}
}

func TestSameNavigation(t *testing.T) {
	p := DefaultMatchPolicy()
	candidate := &types.Tab{InitialURL: "https://example.com/article"}

	if !SameNavigation("http://example.com/article/", candidate, p) {
		t.Error("equivalent URL should match the candidate's initial URL")
	}
	if SameNavigation("https://example.com/other", candidate, p) {
		t.Error("different URL should not match")
	}
	if SameNavigation("", candidate, p) {
		t.Error("empty target should never match")
	}
	if SameNavigation("https://example.com", &types.Tab{}, p) {
		t.Error("candidate with no initial URL should never match")
	}
}
