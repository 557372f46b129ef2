package dashboard

import (
	"time"

	"go.uber.org/zap"

	"github.com/gradtrack/gradtrack/internal/store"
	"github.com/gradtrack/gradtrack/internal/types"
	"github.com/gradtrack/gradtrack/internal/watch"
)

// ApplicationUpdateData describes one changed application.
type ApplicationUpdateData struct {
	ID          string             `json:"id"`
	Action      string             `json:"action"` // added, updated, deleted
	Application *types.Application `json:"application,omitempty"`
}

// SaveData reports a save attempt.
type SaveData struct {
	Count int    `json:"count,omitempty"`
	Error string `json:"error,omitempty"`
}

// ExternalChangeData reports an edit made outside gt.
type ExternalChangeData struct {
	Path string `json:"path"`
	Op   string `json:"op"`
}

// StatsData summarizes the list.
type StatsData struct {
	Total       int            `json:"total"`
	ByStatus    map[string]int `json:"by_status"`
	Pinned      int            `json:"pinned"`
	DueThisWeek int            `json:"due_this_week"`
}

// Handler turns store and watcher events into dashboard messages.
type Handler struct {
	server *Server
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates a new event handler connected to a dashboard server
func NewHandler(server *Server, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{server: server, logger: logger, now: time.Now}
}

// OnStoreEvent is a store.Listener.
func (h *Handler) OnStoreEvent(ev store.Event) {
	switch ev.Kind {
	case store.EventLoaded, store.EventImported:
		h.server.BroadcastData(MessageTypeSnapshot, ev.Applications)
		h.broadcastStats(ev.Applications)

	case store.EventAdded, store.EventUpdated, store.EventDeleted:
		data := ApplicationUpdateData{ID: ev.ID, Action: string(ev.Kind)}
		for i := range ev.Applications {
			if ev.Applications[i].ID == ev.ID {
				app := ev.Applications[i]
				data.Application = &app
				break
			}
		}
		h.server.BroadcastData(MessageTypeApplication, data)
		h.broadcastStats(ev.Applications)

	case store.EventSaved:
		h.server.BroadcastData(MessageTypeSaved, SaveData{Count: len(ev.Applications)})

	case store.EventSaveFailed:
		msg := ""
		if ev.Err != nil {
			msg = ev.Err.Error()
		}
		h.server.BroadcastData(MessageTypeSaveFailed, SaveData{Error: msg})
	}
}

// OnExternalChange forwards a watcher event.
func (h *Handler) OnExternalChange(ev watch.ChangeEvent) {
	h.logger.Warn("data file changed outside gt; changes made here will overwrite it on next save",
		zap.String("path", ev.Path),
		zap.String("op", ev.Op.String()))
	h.server.BroadcastData(MessageTypeExternalChange, ExternalChangeData{Path: ev.Path, Op: ev.Op.String()})
}

func (h *Handler) broadcastStats(apps []types.Application) {
	h.server.BroadcastData(MessageTypeStats, ComputeStats(apps, h.now()))
}

// ComputeStats counts applications by status, pinned, and deadlines within
// the next seven days.
func ComputeStats(apps []types.Application, now time.Time) StatsData {
	stats := StatsData{Total: len(apps), ByStatus: make(map[string]int)}
	today := now.Format(types.DateLayout)
	weekOut := now.AddDate(0, 0, 7).Format(types.DateLayout)

	for _, app := range apps {
		stats.ByStatus[string(app.Status)]++
		if app.IsPinned {
			stats.Pinned++
		}
		if d := app.Deadline; d != nil && *d >= today && *d <= weekOut {
			stats.DueThisWeek++
		}
	}
	return stats
}
