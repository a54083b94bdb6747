package settings

import (
	"encoding/json"
	"net/http"

	"github.com/marketpulse/core/pkg/logger"
	"github.com/marketpulse/core/pkg/models/api"
	coresettings "github.com/marketpulse/core/pkg/settings"
)

// Handler handles settings read and write requests
type Handler struct {
	manager *coresettings.Manager
	logger  *logger.Logger
}

// NewHandler creates a new settings handler
func NewHandler(manager *coresettings.Manager, log *logger.Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  log,
	}
}

// Handle dispatches GET and POST /api/settings. GET returns the full
// document, or one section when the section query parameter is set.
// POST writes a partial section document.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.read(w, r)
	case http.MethodPost:
		h.write(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *Handler) read(w http.ResponseWriter, r *http.Request) {
	section := r.URL.Query().Get("section")
	if section == "" {
		writeJSON(w, http.StatusOK, api.SettingsResponse{
			Success: true,
			Data:    h.manager.Read(),
		})
		return
	}

	doc := h.manager.Read()
	value, ok := doc[section]
	if !ok {
		writeJSON(w, http.StatusNotFound, api.SettingsResponse{
			Success: false,
			Message: "Unknown section: " + section,
		})
		return
	}
	writeJSON(w, http.StatusOK, api.SettingsResponse{
		Success: true,
		Data:    map[string]any{section: value},
	})
}

type writeRequest struct {
	Section string         `json:"section"`
	Data    map[string]any `json:"data"`
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request) {
	var req writeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Section == "" {
		writeError(w, http.StatusBadRequest, "section is required")
		return
	}
	if req.Data == nil {
		writeError(w, http.StatusBadRequest, "data is required")
		return
	}

	if err := h.manager.WriteSection(req.Section, req.Data); err != nil {
		h.logger.Error().
			Err(err).
			Str("action", "settings_write_failed").
			Str("section", req.Section).
			Msg("Failed to write settings section")
		writeError(w, http.StatusBadRequest, "Failed to write settings: "+err.Error())
		return
	}

	h.logger.Info().
		Str("action", "settings_written").
		Str("section", req.Section).
		Msg("Settings section updated")

	writeJSON(w, http.StatusOK, api.SettingsResponse{
		Success: true,
		Data:    h.manager.Section(req.Section),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.ErrorResponse{Success: false, Message: message})
}
