package handlers

import (
	"net/http"

	"github.com/dom/crusadetome/internal/logger"
	"github.com/dom/crusadetome/internal/service"
	"github.com/dom/crusadetome/internal/websocket"
	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

type WebSocketHandler struct {
	hub            *websocket.Hub
	sessionService *service.SessionService
}

func NewWebSocketHandler(hub *websocket.Hub, sessionService *service.SessionService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		sessionService: sessionService,
	}
}

func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	// Browsers cannot set headers on a websocket handshake
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Token required", http.StatusUnauthorized)
		return
	}

	sessionID, err := h.sessionService.ValidateToken(token)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	if _, err := h.sessionService.Get(r.Context(), sessionID); err != nil {
		writeSessionError(w, "[handlers.WebSocketHandler.Handle] failed to get session", err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("[handlers.WebSocketHandler.Handle] upgrade failed", zap.Error(err))
		return
	}

	client := websocket.NewClient(h.hub, conn, sessionID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
