package export

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lotas/tabwart/internal/classify"
	"github.com/lotas/tabwart/internal/types"
)

// sections in display order. Archived is appended as a pseudo-section.
var sectionOrder = []classify.Section{
	classify.Pinned,
	classify.Today,
	classify.Yesterday,
	classify.LastWeek,
	classify.LastMonth,
	classify.Older,
}

type jsonExport struct {
	Window     string        `json:"window"`
	ExportedAt time.Time     `json:"exported_at"`
	Sections   []jsonSection `json:"sections"`
}

type jsonSection struct {
	Name string    `json:"name"`
	Tabs []jsonTab `json:"tabs"`
}

type jsonTab struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	URL              string    `json:"url"`
	Domain           string    `json:"domain"`
	Group            string    `json:"group,omitempty"`
	Pinned           bool      `json:"pinned,omitempty"`
	Archived         bool      `json:"archived,omitempty"`
	LastExecuted     time.Time `json:"last_executed"`
	LastExecutedAgo  string    `json:"last_executed_ago"`
	LastExecutedDays int       `json:"last_executed_days"`
}

// View is the exportable state: live tabs bucketed by section, archived
// tabs, and group titles by root id.
type View struct {
	Window     string
	Tabs       []*types.Tab
	Archived   []*types.ArchivedTab
	GroupTitle map[string]string // rootID -> display title
	Now        time.Time
}

// JSON formats the view as an indented JSON document.
func JSON(v View) (string, error) {
	out := jsonExport{
		Window:     v.Window,
		ExportedAt: v.Now,
	}

	for _, sec := range sectionOrder {
		js := jsonSection{Name: sec.String()}
		for _, t := range v.Tabs {
			if classify.Classify(t.Pinned(), t.LastExecutedAt, v.Now) != sec {
				continue
			}
			js.Tabs = append(js.Tabs, jsonTab{
				ID:               t.ID,
				Title:            t.Title,
				URL:              t.URL,
				Domain:           extractDomain(t.URL),
				Group:            v.GroupTitle[t.RootID],
				Pinned:           t.Pinned(),
				LastExecuted:     t.LastExecutedAt,
				LastExecutedAgo:  relativeTime(t.LastExecutedAt, v.Now),
				LastExecutedDays: int(v.Now.Sub(t.LastExecutedAt).Hours() / 24),
			})
		}
		if len(js.Tabs) > 0 {
			out.Sections = append(out.Sections, js)
		}
	}

	if len(v.Archived) > 0 {
		js := jsonSection{Name: "archived"}
		for _, a := range v.Archived {
			js.Tabs = append(js.Tabs, jsonTab{
				ID:               a.ID,
				Title:            a.Title,
				URL:              a.URL,
				Domain:           extractDomain(a.URL),
				Group:            v.GroupTitle[a.RootID],
				Archived:         true,
				LastExecuted:     a.LastExecutedAt,
				LastExecutedAgo:  relativeTime(a.LastExecutedAt, v.Now),
				LastExecutedDays: int(v.Now.Sub(a.LastExecutedAt).Hours() / 24),
			})
		}
		out.Sections = append(out.Sections, js)
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

// Markdown formats the view as a markdown document.
func Markdown(v View) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Tabs — %s\n", v.Window)
	fmt.Fprintf(&b, "> Exported %s\n", v.Now.Format("2006-01-02 15:04"))

	for _, sec := range sectionOrder {
		var lines []string
		for _, t := range v.Tabs {
			if classify.Classify(t.Pinned(), t.LastExecutedAt, v.Now) != sec {
				continue
			}
			lines = append(lines, tabLine(t.Title, t.URL, v.GroupTitle[t.RootID], relativeTime(t.LastExecutedAt, v.Now)))
		}
		writeSection(&b, sec.String(), lines)
	}

	var archived []string
	for _, a := range v.Archived {
		archived = append(archived, tabLine(a.Title, a.URL, v.GroupTitle[a.RootID], relativeTime(a.LastExecutedAt, v.Now)))
	}
	writeSection(&b, "archived", archived)

	return b.String()
}

func writeSection(b *strings.Builder, name string, lines []string) {
	if len(lines) == 0 {
		return
	}
	noun := "tabs"
	if len(lines) == 1 {
		noun = "tab"
	}
	fmt.Fprintf(b, "\n## %s (%d %s)\n\n", name, len(lines), noun)
	for _, l := range lines {
		b.WriteString(l)
	}
}

func tabLine(title, rawURL, group, ago string) string {
	if title == "" {
		title = rawURL
	}
	if group != "" {
		return fmt.Sprintf("- [%s](%s) [%s] — %s\n", title, rawURL, group, ago)
	}
	return fmt.Sprintf("- [%s](%s) — %s\n", title, rawURL, ago)
}

func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Hostname()
}

func relativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
