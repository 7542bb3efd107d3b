package handler

import (
	"log/slog"
	"net/http"
	"strings"

	gorillaws "github.com/gorilla/websocket"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/event"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/resource"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/websocket"
)

type NotificationHandler struct {
	catalogue *resource.Catalogue
	bus       event.Bus
	hub       *websocket.Hub
	upgrader  gorillaws.Upgrader
	log       *slog.Logger
}

func NewNotificationHandler(catalogue *resource.Catalogue, bus event.Bus, hub *websocket.Hub, allowedOrigins []string, log *slog.Logger) *NotificationHandler {
	if log == nil {
		log = slog.Default()
	}
	return &NotificationHandler{
		catalogue: catalogue,
		bus:       bus,
		hub:       hub,
		upgrader:  websocket.Upgrader(allowedOrigins),
		log:       log.With("component", "notifications"),
	}
}

// RegisterDevice forwards a push token for the signed-in user to the backend.
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req model.DeviceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Token = strings.TrimSpace(req.Token)
	if req.Platform == "" {
		req.Platform = "web"
	}

	if errs := fieldErrors(req); len(errs) > 0 {
		writeError(w, r, validationError(errs))
		return
	}

	device, err := h.catalogue.Devices.Create(r.Context(), currentSession(r), model.Device{Token: req.Token, Platform: req.Platform})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, r, http.StatusCreated, device, nil)
}

// Push publishes a toast to every dashboard, or to one session when the
// request names it.
func (h *NotificationHandler) Push(w http.ResponseWriter, r *http.Request) {
	var req model.PushRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Level == "" {
		req.Level = "info"
	}

	if errs := fieldErrors(req); len(errs) > 0 {
		writeError(w, r, validationError(errs))
		return
	}

	id := event.Notify(h.bus, event.TypePush, req.SessionID, event.Toast{
		Level:   req.Level,
		Title:   req.Title,
		Message: req.Message,
	})

	writeSuccess(w, r, http.StatusAccepted, map[string]string{"id": id}, nil)
}

// WebSocket streams toast events to the signed-in browser.
func (h *NotificationHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if err := h.hub.Serve(&h.upgrader, w, r, sess.ID()); err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
	}
}
