package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"nhooyr.io/websocket"

	"github.com/lotas/tabwart/internal/applog"
	"github.com/lotas/tabwart/internal/registry"
	"github.com/lotas/tabwart/internal/types"
)

// IncomingMsg is an operation request from a connected UI.
type IncomingMsg struct {
	ID        string `json:"id,omitempty"`
	Action    string `json:"action"`
	TabID     string `json:"tabId,omitempty"`
	URL       string `json:"url,omitempty"`
	Title     string `json:"title,omitempty"`
	ParentID  string `json:"parentId,omitempty"`
	Incognito bool   `json:"incognito,omitempty"`
	Select    bool   `json:"select,omitempty"`
	From      int    `json:"from,omitempty"`
	To        int    `json:"to,omitempty"`
	Pref      string `json:"pref,omitempty"`
	RootID    string `json:"rootId,omitempty"`
	Name      string `json:"name,omitempty"`
	Entry     int    `json:"entry,omitempty"`
}

// TabPayload is one tab in a published state message.
type TabPayload struct {
	ID             string `json:"id"`
	RootID         string `json:"rootId"`
	ParentID       string `json:"parentId,omitempty"`
	URL            string `json:"url,omitempty"`
	Title          string `json:"title,omitempty"`
	Pinned         bool   `json:"pinned,omitempty"`
	Incognito      bool   `json:"incognito,omitempty"`
	Section        string `json:"section"`
	LastExecutedMs int64  `json:"lastExecutedMs"`
}

// GroupPayload is one resolved group in a published state message.
type GroupPayload struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	TabIDs         []string `json:"tabIds"`
	HasPinnedChild bool     `json:"hasPinnedChild,omitempty"`
	LastExecutedMs int64    `json:"lastExecutedMs"`
}

// OutgoingMsg is a message to the UI: either a full state publish or an
// operation acknowledgement.
type OutgoingMsg struct {
	Type         string         `json:"type"`
	ID           string         `json:"id,omitempty"`
	OK           *bool          `json:"ok,omitempty"`
	Error        string         `json:"error,omitempty"`
	Reason       string         `json:"reason,omitempty"`
	ShowOverview bool           `json:"showOverview,omitempty"`
	SelectedID   string         `json:"selectedId,omitempty"`
	Tabs         []TabPayload   `json:"tabs,omitempty"`
	Groups       []GroupPayload `json:"groups,omitempty"`
	Archived     []TabPayload   `json:"archived,omitempty"`
}

// Server bridges the registry to a UI over a local WebSocket. The registry
// itself is not safe for concurrent use, so every registry call — operation
// handling and state publishing alike — runs under regMu.
type Server struct {
	port  int
	reg   *registry.Registry
	regMu sync.Mutex

	mu      sync.Mutex
	conn    *websocket.Conn
	connCtx context.Context
}

// New creates a bridge server for the registry.
func New(port int, reg *registry.Registry) *Server {
	s := &Server{port: port, reg: reg}
	reg.Subscribe(func(c registry.Change) {
		// Runs on the mutating goroutine, regMu already held by the
		// operation that triggered it (or by the embedding caller).
		s.send(s.stateMsg(c.Reason, c.ShowOverview))
	})
	return s
}

// stateMsg builds the full published view. Caller holds regMu.
func (s *Server) stateMsg(reason string, overview bool) OutgoingMsg {
	msg := OutgoingMsg{Type: "state", Reason: reason, ShowOverview: overview}
	if sel := s.reg.Selected(); sel != nil {
		msg.SelectedID = sel.ID
	}
	for _, t := range s.reg.Tabs() {
		msg.Tabs = append(msg.Tabs, TabPayload{
			ID:             t.ID,
			RootID:         t.RootID,
			ParentID:       t.ParentID,
			URL:            t.URL,
			Title:          t.Title,
			Pinned:         t.Pinned(),
			Incognito:      t.Incognito,
			Section:        s.reg.Section(t).String(),
			LastExecutedMs: t.LastExecutedAt.UnixMilli(),
		})
	}
	for _, a := range s.reg.Archived() {
		msg.Archived = append(msg.Archived, TabPayload{
			ID:             a.ID,
			RootID:         a.RootID,
			URL:            a.URL,
			Title:          a.Title,
			Pinned:         a.Pinned,
			Section:        "archived",
			LastExecutedMs: a.LastExecutedAt.UnixMilli(),
		})
	}
	for id, g := range s.reg.Groups() {
		gp := GroupPayload{
			ID:             id,
			Title:          g.Title,
			HasPinnedChild: g.HasPinnedChild,
			LastExecutedMs: g.LastExecutedAt.UnixMilli(),
		}
		for _, e := range g.Children {
			gp.TabIDs = append(gp.TabIDs, e.ID())
		}
		msg.Groups = append(msg.Groups, gp)
	}
	return msg
}

// handle dispatches one operation message. Caller holds regMu.
func (s *Server) handle(msg IncomingMsg) error {
	switch msg.Action {
	case "add":
		s.reg.AddTab(registry.AddOptions{
			URL:       msg.URL,
			Title:     msg.Title,
			ParentID:  msg.ParentID,
			Incognito: msg.Incognito,
			Select:    msg.Select,
		})
	case "select":
		s.reg.SelectTab(msg.TabID)
	case "close":
		s.reg.RemoveTab(msg.TabID, parsePref(msg.Pref))
	case "rearrange":
		s.reg.RearrangeTabs(msg.From, msg.To)
	case "pin":
		s.reg.TogglePinned(msg.TabID)
	case "navigate":
		s.reg.UpdateNavigation(msg.TabID, msg.URL, msg.Title)
	case "back":
		return s.reg.GoBack(s.targetTab(msg))
	case "forward":
		return s.reg.GoForward(s.targetTab(msg))
	case "reload":
		return s.reg.Reload(s.targetTab(msg))
	case "group-name":
		s.reg.SetGroupName(msg.RootID, msg.Name)
	case "unarchive":
		s.reg.SelectArchived(msg.TabID)
	case "remove-archived-group":
		s.reg.RemoveArchivedGroup(msg.RootID)
	case "restore-closed":
		entries := s.reg.RecentlyClosed().Entries()
		if msg.Entry < 0 || msg.Entry >= len(entries) {
			return fmt.Errorf("no recently-closed entry %d", msg.Entry)
		}
		s.reg.RestoreRecentlyClosed(entries[msg.Entry])
	case "persist":
		return s.reg.PersistNow()
	default:
		return fmt.Errorf("unknown action %q", msg.Action)
	}
	return nil
}

// targetTab resolves the tab a page action applies to: the explicit id when
// given, else the selected tab.
func (s *Server) targetTab(msg IncomingMsg) string {
	if msg.TabID != "" {
		return msg.TabID
	}
	if sel := s.reg.Selected(); sel != nil {
		return sel.ID
	}
	return ""
}

func parsePref(s string) registry.SelectPreference {
	switch s {
	case "parent":
		return registry.SelectParent
	case "most-recent":
		return registry.SelectMostRecent
	default:
		return registry.SelectDefault
	}
}

// send writes a message to the connected UI, if any.
func (s *Server) send(msg OutgoingMsg) {
	s.mu.Lock()
	conn := s.conn
	ctx := s.connCtx
	s.mu.Unlock()
	if conn == nil {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		applog.Error("ws.marshal", err)
		return
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		applog.Error("ws.send", err, "type", msg.Type)
	}
}

// Handler returns an http.Handler that accepts WebSocket upgrades.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			applog.Error("ws.accept", err)
			return
		}

		conn.SetReadLimit(16 << 20) // large sessions publish big state messages

		ctx := r.Context()
		s.mu.Lock()
		if s.conn != nil {
			applog.Info("ws.replaced")
			s.conn.CloseNow()
		}
		s.conn = conn
		s.connCtx = ctx
		s.mu.Unlock()

		applog.Info("ws.connected", "remote", r.RemoteAddr)

		// Initial full state so a fresh UI can render immediately.
		s.regMu.Lock()
		s.send(s.stateMsg("connected", false))
		s.regMu.Unlock()

		defer func() {
			s.mu.Lock()
			if s.conn == conn {
				s.conn = nil
				s.connCtx = nil
			}
			s.mu.Unlock()
			conn.CloseNow()
			applog.Info("ws.disconnected")
		}()

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var msg IncomingMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				applog.Error("ws.parse", err)
				continue
			}
			applog.Debug("ws.recv", "action", msg.Action)

			s.regMu.Lock()
			opErr := s.handle(msg)
			s.regMu.Unlock()

			if msg.ID != "" {
				ok := opErr == nil
				ack := OutgoingMsg{Type: "ack", ID: msg.ID, OK: &ok}
				if opErr != nil {
					ack.Error = opErr.Error()
				}
				s.send(ack)
			}
		}
	})
}

// ListenAndServe serves the bridge on 127.0.0.1 until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/", s.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler: mux,
	}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	applog.Info("ws.listen", "port", s.port)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

var _ types.WebContent = (*noContent)(nil)

// noContent is the WebContent used when no rendering engine is attached:
// navigation succeeds but nothing loads. The serve command runs with it.
type noContent struct{}

// NoContentFactory creates inert content handles.
func NoContentFactory(bool) types.WebContent { return &noContent{} }

func (*noContent) Load(string) error { return nil }
func (*noContent) GoBack() error     { return nil }
func (*noContent) GoForward() error  { return nil }
func (*noContent) Reload() error     { return nil }
func (*noContent) Close()            {}
