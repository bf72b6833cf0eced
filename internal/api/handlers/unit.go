package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/dom/crusadetome/internal/api/middleware"
	"github.com/dom/crusadetome/internal/config"
	"github.com/dom/crusadetome/internal/domain"
	"github.com/dom/crusadetome/internal/logger"
	"github.com/dom/crusadetome/internal/service"
	"go.uber.org/zap"
)

type UnitHandler struct {
	sessionService *service.SessionService
	unitService    *service.UnitService
	cfg            *config.Config
}

func NewUnitHandler(sessionService *service.SessionService, unitService *service.UnitService, cfg *config.Config) *UnitHandler {
	return &UnitHandler{
		sessionService: sessionService,
		unitService:    unitService,
		cfg:            cfg,
	}
}

func (h *UnitHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	session, err := h.sessionService.Get(r.Context(), sessionID)
	if err != nil {
		writeSessionError(w, "[handlers.UnitHandler.Get] failed to get session", err)
		return
	}
	h.respond(w, "[handlers.UnitHandler.Get]", session, nil)
}

// New discards the session record and starts over with an empty one.
func (h *UnitHandler) New(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	session, err := h.sessionService.Reset(r.Context(), sessionID)
	if err != nil {
		writeSessionError(w, "[handlers.UnitHandler.New] failed to reset session", err)
		return
	}
	h.respond(w, "[handlers.UnitHandler.New]", session, nil)
}

// Load replaces the session record with an uploaded document, sent either as
// the raw request body or as the "file" part of a multipart form.
func (h *UnitHandler) Load(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	data, err := h.readDocument(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large",
				fmt.Sprintf("Document exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_upload", err.Error())
		return
	}

	session, report, err := h.sessionService.Load(r.Context(), sessionID, data)
	if err != nil {
		var parseErr *domain.ParseError
		if errors.As(err, &parseErr) {
			resp := ErrorResponse{Error: "parse_error", Message: parseErr.Error()}
			if parseErr.Offset >= 0 {
				resp.Offset = &parseErr.Offset
			}
			writeJSON(w, http.StatusBadRequest, resp)
			return
		}
		writeSessionError(w, "[handlers.UnitHandler.Load] failed to load document", err)
		return
	}
	h.respond(w, "[handlers.UnitHandler.Load]", session, &report)
}

func (h *UnitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	var form service.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_form", "Invalid request body")
		return
	}

	session, report, err := h.sessionService.Submit(r.Context(), sessionID, form)
	if err != nil {
		writeSessionError(w, "[handlers.UnitHandler.Submit] failed to submit form", err)
		return
	}
	h.respond(w, "[handlers.UnitHandler.Submit]", session, &report)
}

// Save downloads the session record as "<unit_name>.json".
func (h *UnitHandler) Save(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	saved, err := h.sessionService.Save(r.Context(), sessionID)
	if err != nil {
		writeSessionError(w, "[handlers.UnitHandler.Save] failed to save record", err)
		return
	}

	w.Header().Set("Content-Type", saved.ContentType)
	w.Header().Set("Content-Disposition", contentDisposition(saved.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(saved.Data)
}

func (h *UnitHandler) respond(w http.ResponseWriter, scope string, session *domain.Session, report *service.Report) {
	resp, err := unitResponse(h.unitService, session, report)
	if err != nil {
		logger.Error(scope+" failed to encode record", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UnitHandler) readDocument(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.ReadAll(r.Body)
	}

	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing file part: %w", err)
	}
	defer file.Close()
	return io.ReadAll(file)
}

// contentDisposition builds an attachment header. Names outside ASCII get an
// ASCII fallback plus an RFC 5987 filename* parameter.
func contentDisposition(filename string) string {
	fallback := strings.Map(func(r rune) rune {
		if r >= utf8.RuneSelf {
			return '_'
		}
		return r
	}, filename)
	quoted := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(fallback)

	header := `attachment; filename="` + quoted + `"`
	if fallback != filename {
		header += "; filename*=UTF-8''" + url.PathEscape(filename)
	}
	return header
}
