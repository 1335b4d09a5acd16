package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"charityhub/internal/backup"
	"charityhub/internal/database"
	"charityhub/internal/logging"
	"charityhub/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("CHARITYHUB_LOG_LEVEL"))

	port := envOr("CHARITYHUB_PORT", "8080")
	dbPath := envOr("CHARITYHUB_DB_PATH", "charityhub.db")
	uploadDir := envOr("CHARITYHUB_UPLOAD_DIR", "uploads")

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cfg := server.Config{
		OwnerSecret: os.Getenv("CHARITYHUB_OWNER_SECRET"),
		UploadDir:   uploadDir,
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  os.Getenv("CHARITYHUB_S3_ENDPOINT"),
				Bucket:    os.Getenv("CHARITYHUB_S3_BUCKET"),
				Region:    envOr("CHARITYHUB_S3_REGION", "us-east-1"),
				AccessKey: os.Getenv("CHARITYHUB_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("CHARITYHUB_S3_SECRET_KEY"),
			},
			DBPath:        dbPath,
			UploadDir:     uploadDir,
			Passphrase:    os.Getenv("CHARITYHUB_BACKUP_PASSPHRASE"),
			ScheduleHour:  envInt("CHARITYHUB_BACKUP_HOUR", 3),
			RetentionDays: envInt("CHARITYHUB_BACKUP_RETENTION_DAYS", 30),
		},
	}
	if cfg.OwnerSecret == "" {
		logger.Warn("CHARITYHUB_OWNER_SECRET not set, charity owner registration is disabled")
	}

	srv, err := server.New(db, cfg, logger)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backupMgr := srv.BackupManager()
	if backupMgr.Enabled() {
		backupMgr.Start(ctx)
		defer backupMgr.Stop()
	} else {
		logger.Info("backups disabled, missing S3 credentials or passphrase")
	}

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("charityhub listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
