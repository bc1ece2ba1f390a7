// Package handler exposes the latest collection result over HTTP: a JSON
// view of the current snapshot, control endpoints for manual refresh and the
// auto-refresh toggle, and a websocket stream that pushes every new result.
package handler

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-logr/logr"
	"github.com/gorilla/websocket"

	"sysmon/internal/model"
	"sysmon/internal/scheduler"
)

// Controller is the scheduler surface the handler consumes. Satisfied by
// *scheduler.Scheduler.
type Controller interface {
	Subscribe(fn func(scheduler.Result))
	TriggerRefresh() bool
	ToggleAutoRefresh() bool
	AutoRefreshEnabled() bool
	Collecting() bool
	LastResult() (scheduler.Result, bool)
	LastSnapshot() *model.Snapshot
}

type wsMessage struct {
	Type     string          `json:"type"`
	Snapshot *model.Snapshot `json:"snapshot,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type Handler struct {
	ctrl     Controller
	logger   logr.Logger
	upgrader websocket.Upgrader

	mu          sync.Mutex
	subscribers map[*websocket.Conn]bool
}

func New(ctrl Controller, logger logr.Logger) *Handler {
	h := &Handler{
		ctrl:        ctrl,
		logger:      logger.WithName("handler"),
		subscribers: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	ctrl.Subscribe(h.broadcast)
	return h
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.handleSnapshot)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("GET /status", h.handleStatus)
	mux.HandleFunc("POST /refresh", h.handleRefresh)
	mux.HandleFunc("POST /autorefresh", h.handleToggle)
	mux.HandleFunc("GET /ws", h.handleWebSocket)
	return mux
}

// handleSnapshot serves the last successfully collected snapshot. If the
// most recent cycle failed, the last good snapshot is still served; only
// before the first success is there nothing to show.
func (h *Handler) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap := h.ctrl.LastSnapshot()
	if snap == nil {
		msg := "no snapshot collected yet"
		if res, ok := h.ctrl.LastResult(); ok && res.Err != nil {
			msg = res.Err.Error()
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": msg})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	status := map[string]any{
		"auto_refresh": h.ctrl.AutoRefreshEnabled(),
		"collecting":   h.ctrl.Collecting(),
	}
	if res, ok := h.ctrl.LastResult(); ok {
		status["last_cycle"] = res.At
		if res.Err != nil {
			status["last_error"] = res.Err.Error()
		}
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	started := h.ctrl.TriggerRefresh()
	writeJSON(w, http.StatusAccepted, map[string]bool{"started": started})
}

func (h *Handler) handleToggle(w http.ResponseWriter, _ *http.Request) {
	enabled := h.ctrl.ToggleAutoRefresh()
	writeJSON(w, http.StatusOK, map[string]bool{"auto_refresh": enabled})
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(err, "websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Initial state goes out before the connection joins the broadcast set,
	// so no two goroutines ever write to the same connection.
	if snap := h.ctrl.LastSnapshot(); snap != nil {
		if err := conn.WriteJSON(wsMessage{Type: "snapshot", Snapshot: snap}); err != nil {
			return
		}
	}

	h.addSubscriber(conn)
	defer h.removeSubscriber(conn)

	// Reads are discarded; the read loop only notices the peer going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) broadcast(res scheduler.Result) {
	msg := wsMessage{Type: "snapshot", Snapshot: res.Snapshot}
	if res.Err != nil {
		msg = wsMessage{Type: "error", Error: res.Err.Error()}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.subscribers {
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.V(1).Info("dropping websocket subscriber", "error", err)
			conn.Close()
			delete(h.subscribers, conn)
		}
	}
}

func (h *Handler) addSubscriber(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[conn] = true
}

func (h *Handler) removeSubscriber(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, conn)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
