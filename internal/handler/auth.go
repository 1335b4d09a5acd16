package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"charityhub/internal/auth"
	"charityhub/internal/middleware"
	"charityhub/internal/model"
	"charityhub/internal/session"
	"charityhub/internal/store"
)

type AuthHandler struct {
	accounts    *store.AccountStore
	sessions    *session.Manager
	ownerSecret string
	logger      *slog.Logger
}

func NewAuthHandler(as *store.AccountStore, sm *session.Manager, ownerSecret string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts:    as,
		sessions:    sm,
		ownerSecret: ownerSecret,
		logger:      logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := h.denyAuthenticated(r, auth.OpRegister); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "already logged in"})
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
		Secret   string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" || req.Role == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username, password, and role are required"})
		return
	}
	if !model.ValidRole(req.Role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown role"})
		return
	}

	role := model.Role(req.Role)
	if role == model.RoleCharityOwner {
		if err := auth.CheckElevation(h.ownerSecret, req.Secret); err != nil {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid charity secret"})
			return
		}
	}

	account, err := h.accounts.Create(req.Username, req.Password, role)
	if err == store.ErrAlreadyExists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username already taken"})
		return
	}
	if err != nil {
		h.logger.Error("create account", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to register"})
		return
	}

	if err := h.startSession(w, account); err != nil {
		h.logger.Error("create session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to register"})
		return
	}

	h.logger.Info("account registered", "username", account.Username, "role", account.Role)
	writeJSON(w, http.StatusCreated, map[string]any{
		"username": account.Username,
		"role":     account.Role,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := h.denyAuthenticated(r, auth.OpLogin); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "already logged in"})
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	account, err := h.accounts.Authenticate(strings.TrimSpace(req.Username), req.Password)
	if err == store.ErrInvalidCredentials {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid username or password"})
		return
	}
	if err != nil {
		h.logger.Error("authenticate", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to log in"})
		return
	}

	if err := h.startSession(w, account); err != nil {
		h.logger.Error("create session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to log in"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"username": account.Username,
		"role":     account.Role,
	})
}

// Logout destroys the session if one exists. Always answers 200.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		h.sessions.Destroy(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// SessionInfo reports whether the caller holds a live session.
func (h *AuthHandler) SessionInfo(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.ResolveIdentity(r, h.sessions)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"loggedIn": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"loggedIn": true,
		"username": ident.Username,
		"role":     ident.Role,
	})
}

// denyAuthenticated applies the register/login gate for callers who already
// hold a valid session.
func (h *AuthHandler) denyAuthenticated(r *http.Request, op auth.Operation) error {
	var identPtr *auth.Identity
	if ident, ok := middleware.ResolveIdentity(r, h.sessions); ok {
		identPtr = &ident
	}
	return auth.Authorize(identPtr, op)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, account *model.Account) error {
	s, err := h.sessions.Create(account.Username, account.Role)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    s.Token,
		Path:     "/",
		MaxAge:   int(session.TTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
