package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dom/crusadetome/internal/api/middleware"
	"github.com/dom/crusadetome/internal/codec"
	"github.com/dom/crusadetome/internal/domain"
	"github.com/dom/crusadetome/internal/logger"
	"github.com/dom/crusadetome/internal/service"
	"go.uber.org/zap"
)

type SessionHandler struct {
	sessionService *service.SessionService
	unitService    *service.UnitService
}

func NewSessionHandler(sessionService *service.SessionService, unitService *service.UnitService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		unitService:    unitService,
	}
}

type SessionResponse struct {
	Token string       `json:"token"`
	Unit  UnitResponse `json:"unit"`
}

// UnitResponse is a session's record in both its saved and its form shape.
type UnitResponse struct {
	SessionID string          `json:"sessionId"`
	Document  json.RawMessage `json:"document"`
	Form      service.Form    `json:"form"`
	Report    *service.Report `json:"report,omitempty"`
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	result, err := h.sessionService.Start(r.Context())
	if err != nil {
		logger.Error("[handlers.SessionHandler.Create] failed to start session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	unit, err := unitResponse(h.unitService, result.Session, nil)
	if err != nil {
		logger.Error("[handlers.SessionHandler.Create] failed to encode record", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, SessionResponse{
		Token: result.Token,
		Unit:  unit,
	})
}

func unitResponse(units *service.UnitService, session *domain.Session, report *service.Report) (UnitResponse, error) {
	document, err := codec.ToJSON(session.Record)
	if err != nil {
		return UnitResponse{}, err
	}
	return UnitResponse{
		SessionID: session.ID.String(),
		Document:  document,
		Form:      units.View(session.Record),
		Report:    report,
	}, nil
}

// End discards the session of the caller's token.
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.sessionService.End(r.Context(), sessionID); err != nil {
		writeSessionError(w, "[handlers.SessionHandler.End] failed to end session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
