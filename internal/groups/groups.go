package groups

import (
	"fmt"
	"time"

	"github.com/lotas/tabwart/internal/types"
)

// Group is a derived view over entries sharing a root ID. Groups are never
// stored; they are recomputed from the authoritative tab list after every
// mutation.
type Group struct {
	ID             string // == RootID of every child
	Children       []types.Entry
	LastExecutedAt time.Time // max over children
	HasPinnedChild bool
	Title          string
}

// Resolve partitions entries by root ID. A partition becomes a visible group
// when it has more than one member, or when the user assigned it a custom
// name (so a deliberately named lone tab stays discoverable after its
// siblings close). names maps rootID to custom group name.
func Resolve(entries []types.Entry, names map[string]string) map[string]*Group {
	byRoot := make(map[string]*Group)
	var order []string

	for _, e := range entries {
		root := e.RootID()
		g, ok := byRoot[root]
		if !ok {
			g = &Group{ID: root}
			byRoot[root] = g
			order = append(order, root)
		}
		g.Children = append(g.Children, e)
		if e.LastExecutedAt().After(g.LastExecutedAt) {
			g.LastExecutedAt = e.LastExecutedAt()
		}
		if e.Pinned() {
			g.HasPinnedChild = true
		}
	}

	result := make(map[string]*Group)
	for _, root := range order {
		g := byRoot[root]
		custom := names[root]
		if len(g.Children) < 2 && custom == "" {
			continue
		}
		g.Title = groupTitle(g, custom)
		result[root] = g
	}
	return result
}

// groupTitle picks the display title: custom name, else the first non-empty
// child title, else "N Tabs".
func groupTitle(g *Group, custom string) string {
	if custom != "" {
		return custom
	}
	for _, e := range g.Children {
		if t := e.Title(); t != "" {
			return t
		}
	}
	return fmt.Sprintf("%d Tabs", len(g.Children))
}
