package handler

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"testing"

	"charityhub/internal/database"
	"charityhub/internal/ingest"
	"charityhub/internal/session"
	"charityhub/internal/store"
	"charityhub/internal/websocket"
)

const testOwnerSecret = "open-sesame"

type testEnv struct {
	sessions  *session.Manager
	accounts  *store.AccountStore
	charities *store.CharityStore
	favorites *store.FavoriteStore
	hub       *websocket.Hub

	auth     *AuthHandler
	charity  *CharityHandler
	favorite *FavoriteHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := &testEnv{
		sessions:  session.NewManager(),
		accounts:  store.NewAccountStore(db),
		charities: store.NewCharityStore(db),
		hub:       websocket.NewHub(logger),
	}
	e.favorites = store.NewFavoriteStore(db, e.charities)

	pipeline, err := ingest.New(e.charities, t.TempDir(), logger)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	e.auth = NewAuthHandler(e.accounts, e.sessions, testOwnerSecret, logger)
	e.charity = NewCharityHandler(e.charities, pipeline, e.hub, logger)
	e.favorite = NewFavoriteHandler(e.favorites, e.hub, logger)
	return e
}

// multipartBody builds a charity submission form. An empty value skips the
// field; imageBytes nil skips the file part.
func multipartBody(t *testing.T, fields map[string]string, imageBytes []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if imageBytes != nil {
		fw, err := mw.CreateFormFile("image", "logo.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(imageBytes); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}
