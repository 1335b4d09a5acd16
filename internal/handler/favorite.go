package handler

import (
	"log/slog"
	"net/http"

	"charityhub/internal/auth"
	"charityhub/internal/model"
	"charityhub/internal/store"
	"charityhub/internal/websocket"
)

type FavoriteHandler struct {
	favorites *store.FavoriteStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewFavoriteHandler(fs *store.FavoriteStore, hub *websocket.Hub, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{favorites: fs, hub: hub, logger: logger}
}

// List returns the caller's favorited listings.
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	charities, err := h.favorites.ListForUser(auth.Username(r.Context()))
	if err != nil {
		h.logger.Error("list favorites", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list favorites"})
		return
	}
	if charities == nil {
		charities = []model.Charity{}
	}
	writeJSON(w, http.StatusOK, charities)
}

// Add bookmarks the charity for the caller.
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	username := auth.Username(r.Context())
	switch err := h.favorites.Add(username, id); err {
	case nil:
	case store.ErrNotFound:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "charity not found"})
		return
	case store.ErrAlreadyExists:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "already favorited"})
		return
	default:
		h.logger.Error("add favorite", "charity_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add favorite"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("favorite", "added", id, nil))
	writeJSON(w, http.StatusCreated, map[string]any{"charity_id": id})
}

// Remove drops the caller's bookmark for the charity.
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	username := auth.Username(r.Context())
	switch err := h.favorites.Remove(username, id); err {
	case nil:
	case store.ErrNotFound:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "favorite not found"})
		return
	default:
		h.logger.Error("remove favorite", "charity_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to remove favorite"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("favorite", "removed", id, nil))
	writeJSON(w, http.StatusOK, map[string]any{"charity_id": id})
}
