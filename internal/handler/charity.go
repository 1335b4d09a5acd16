package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"charityhub/internal/auth"
	"charityhub/internal/ingest"
	"charityhub/internal/model"
	"charityhub/internal/store"
	"charityhub/internal/websocket"
)

// maxUploadBytes caps the multipart form kept in memory for an image upload.
const maxUploadBytes = 10 << 20

type CharityHandler struct {
	charities *store.CharityStore
	pipeline  *ingest.Pipeline
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewCharityHandler(cs *store.CharityStore, p *ingest.Pipeline, hub *websocket.Hub, logger *slog.Logger) *CharityHandler {
	return &CharityHandler{charities: cs, pipeline: p, hub: hub, logger: logger}
}

// List returns every fully ingested charity listing. Public.
func (h *CharityHandler) List(w http.ResponseWriter, r *http.Request) {
	charities, err := h.charities.ListVisible()
	if err != nil {
		h.logger.Error("list charities", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list charities"})
		return
	}
	if charities == nil {
		charities = []model.Charity{}
	}
	writeJSON(w, http.StatusOK, charities)
}

// Create accepts a multipart submission and runs the ingestion pipeline.
func (h *CharityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var identPtr *auth.Identity
	if ident, ok := auth.FromContext(r.Context()); ok {
		identPtr = &ident
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	sub := ingest.Submission{
		Name:        strings.TrimSpace(r.FormValue("name")),
		RawTags:     r.FormValue("tags"),
		Description: strings.TrimSpace(r.FormValue("description")),
		Website:     strings.TrimSpace(r.FormValue("website")),
		Location:    strings.TrimSpace(r.FormValue("location")),
	}
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		sub.Image = file
		sub.ImageName = header.Filename
	}

	c, err := h.pipeline.Ingest(identPtr, sub)
	if err != nil {
		h.writeIngestError(w, err)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("charity", "created", c.ID, map[string]any{"name": c.Name}))
	writeJSON(w, http.StatusCreated, c)
}

func (h *CharityHandler) writeIngestError(w http.ResponseWriter, err error) {
	var verr *ingest.ValidationError
	var serr *ingest.StorageError
	switch {
	case errors.Is(err, auth.ErrNotLoggedIn):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
	case errors.Is(err, auth.ErrWrongRole):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "charity role required"})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Error()})
	case errors.As(err, &serr):
		h.logger.Error("ingest charity", "step", serr.Step, "error", serr.Err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create charity"})
	default:
		h.logger.Error("ingest charity", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create charity"})
	}
}

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
