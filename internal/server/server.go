package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"charityhub/internal/backup"
	"charityhub/internal/handler"
	"charityhub/internal/ingest"
	"charityhub/internal/logging"
	"charityhub/internal/middleware"
	"charityhub/internal/session"
	"charityhub/internal/store"
	ws "charityhub/internal/websocket"
)

// Config holds server configuration.
type Config struct {
	OwnerSecret string
	UploadDir   string
	Backup      backup.Config
}

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	authH         *handler.AuthHandler
	charityH      *handler.CharityHandler
	favoriteH     *handler.FavoriteHandler
	sessions      *session.Manager
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	uploadDir     string
	logger        *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) (*Server, error) {
	hub := ws.NewHub(logging.Component(logger, "websocket"))
	sessions := session.NewManager()

	accountStore := store.NewAccountStore(db)
	charityStore := store.NewCharityStore(db)
	favoriteStore := store.NewFavoriteStore(db, charityStore)
	backupStore := store.NewBackupStore(db)

	pipeline, err := ingest.New(charityStore, cfg.UploadDir, logging.Component(logger, "ingest"))
	if err != nil {
		return nil, err
	}

	backupMgr := backup.NewManager(cfg.Backup, db, backupStore, logging.Component(logger, "backup"), func(s backup.Status) {
		hub.Broadcast(ws.Message{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(s.State),
			Extra: map[string]any{
				"in_progress": s.InProgress,
				"error":       s.Error,
			},
		})
	})

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(accountStore, sessions, cfg.OwnerSecret, logging.Component(logger, "auth")),
		charityH:      handler.NewCharityHandler(charityStore, pipeline, hub, logging.Component(logger, "charity")),
		favoriteH:     handler.NewFavoriteHandler(favoriteStore, hub, logging.Component(logger, "favorite")),
		sessions:      sessions,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		uploadDir:     cfg.UploadDir,
		logger:        logger,
	}, nil
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes (no auth required)
	mux.HandleFunc("POST /api/register", s.rateLimitedHandler(s.authH.Register))
	mux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/session", s.authH.SessionInfo)
	mux.HandleFunc("GET /api/charities", s.charityH.List)
	mux.HandleFunc("GET /uploads/{file}", s.serveUpload)
	mux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes
	requireAuth := middleware.RequireAuth(s.sessions)
	mux.Handle("POST /api/charities", requireAuth(http.HandlerFunc(s.charityH.Create)))
	mux.Handle("GET /api/favorites", requireAuth(http.HandlerFunc(s.favoriteH.List)))
	mux.Handle("POST /api/favorites/{id}", requireAuth(http.HandlerFunc(s.favoriteH.Add)))
	mux.Handle("DELETE /api/favorites/{id}", requireAuth(http.HandlerFunc(s.favoriteH.Remove)))
	mux.Handle("GET /api/ws", requireAuth(ws.HandleWebSocket(s.hub)))

	return middleware.RequestLogger(logging.Component(s.logger, "http"))(mux)
}

// serveUpload serves a single image from the upload root. Staged files
// under tmp/ are never reachable.
func (s *Server) serveUpload(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(s.uploadDir, filepath.Base(r.PathValue("file")))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
