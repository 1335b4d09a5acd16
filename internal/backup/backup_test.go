package backup

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"charityhub/internal/database"
	"charityhub/internal/model"
	"charityhub/internal/store"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	getErr  error
	delErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3NotFound{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(string(data))),
	}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.delErr != nil {
		return nil, m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type s3NotFound struct{}

func (e *s3NotFound) Error() string { return "NoSuchKey" }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupManager opens a real database file on disk so runBackup can
// copy it, and swaps in the mock S3 client.
func setupManager(t *testing.T) (*Manager, *mockS3Client, *sql.DB, string) {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "charityhub.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	uploadDir := filepath.Join(dir, "uploads")
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		t.Fatalf("mkdir uploads: %v", err)
	}

	cfg := Config{
		S3:         S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
		DBPath:     dbPath,
		UploadDir:  uploadDir,
		Passphrase: "test-passphrase",
	}
	m := NewManager(cfg, db, store.NewBackupStore(db), testLogger(), nil)

	mock := newMockS3()
	m.client = mock

	return m, mock, db, dir
}

func TestManagerStateLifecycle(t *testing.T) {
	// Without S3 config -> disabled
	m := NewManager(Config{}, nil, nil, testLogger(), nil)
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}

	// With S3 config but no passphrase -> still disabled
	m2 := NewManager(Config{
		S3: S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
	}, nil, nil, testLogger(), nil)
	if m2.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m2.Status().State, StateDisabled)
	}

	// Full config -> idle
	m3 := NewManager(Config{
		S3:         S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
		Passphrase: "pass",
	}, nil, nil, testLogger(), nil)
	if m3.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", m3.Status().State, StateIdle)
	}
	if !m3.Enabled() {
		t.Error("expected manager enabled")
	}
}

func TestManagerStatusCallback(t *testing.T) {
	var received []Status
	var mu sync.Mutex
	cb := func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}

	m := NewManager(Config{
		S3:         S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
		Passphrase: "pass",
	}, nil, nil, testLogger(), cb)

	m.setStatus(Status{State: StateRunning, InProgress: true})
	m.setStatus(Status{State: StateIdle})

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("received %d callbacks, want 2", len(received))
	}
	if received[0].State != StateRunning {
		t.Errorf("first callback state = %q, want %q", received[0].State, StateRunning)
	}
	if received[1].State != StateIdle {
		t.Errorf("second callback state = %q, want %q", received[1].State, StateIdle)
	}
}

func TestManagerStopSafety(t *testing.T) {
	m := NewManager(Config{
		S3:         S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
		Passphrase: "pass",
	}, nil, nil, testLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	m.Stop()

	// Double stop should not panic
	m.Stop()
}

func TestManagerDisabledNoStart(t *testing.T) {
	m := NewManager(Config{}, nil, nil, testLogger(), nil)

	ctx := context.Background()
	m.Start(ctx) // should be a no-op for disabled state

	// Stop should not block
	m.Stop()
}

func TestRunNowAndRestore(t *testing.T) {
	m, mock, _, dir := setupManager(t)

	imagePath := filepath.Join(m.cfg.UploadDir, "charity_1.png")
	if err := os.WriteFile(imagePath, []byte("fake png"), 0644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	ctx := context.Background()
	id, err := m.RunNow(ctx)
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	record, err := m.backupStore.GetByID(id)
	if err != nil || record == nil {
		t.Fatalf("get backup record: %v", err)
	}
	if record.Status != model.BackupStatusCompleted {
		t.Errorf("status = %q, want %q", record.Status, model.BackupStatusCompleted)
	}
	if record.SizeBytes == 0 {
		t.Error("expected nonzero backup size")
	}

	mock.mu.Lock()
	_, uploaded := mock.objects[record.S3Key]
	mock.mu.Unlock()
	if !uploaded {
		t.Fatalf("expected object at %s", record.S3Key)
	}

	if m.Status().State != StateIdle {
		t.Errorf("state after backup = %q, want %q", m.Status().State, StateIdle)
	}
	if m.Status().LastBackup == nil {
		t.Error("expected last backup timestamp")
	}

	destDir := filepath.Join(dir, "restore")
	if err := m.Restore(ctx, id, destDir); err != nil {
		t.Fatalf("restore: %v", err)
	}

	img, err := os.ReadFile(filepath.Join(destDir, "uploads", "charity_1.png"))
	if err != nil {
		t.Fatalf("read restored image: %v", err)
	}
	if !bytes.Equal(img, []byte("fake png")) {
		t.Error("restored image content mismatch")
	}
	if _, err := os.Stat(filepath.Join(destDir, "charityhub.db")); err != nil {
		t.Errorf("restored db missing: %v", err)
	}
}

func TestRunNowUploadFailure(t *testing.T) {
	m, mock, _, _ := setupManager(t)
	mock.putErr = &s3NotFound{}

	if _, err := m.RunNow(context.Background()); err == nil {
		t.Fatal("expected upload error")
	}
	if m.Status().State != StateError {
		t.Errorf("state = %q, want %q", m.Status().State, StateError)
	}

	backups, err := m.backupStore.List(10)
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(backups) != 1 || backups[0].Status != model.BackupStatusFailed {
		t.Fatalf("expected one failed backup record, got %+v", backups)
	}
}

func TestRestoreUnknownBackup(t *testing.T) {
	m, _, _, dir := setupManager(t)

	err := m.Restore(context.Background(), 999, filepath.Join(dir, "restore"))
	if err == nil {
		t.Fatal("expected error for unknown backup")
	}
}

func TestCleanupDeletesOldObjects(t *testing.T) {
	m, mock, db, _ := setupManager(t)

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}
	record, _ := m.backupStore.GetByID(id)

	// Age the record past the retention window
	old := time.Now().UTC().AddDate(0, 0, -60)
	if _, err := db.Exec(`UPDATE backups SET created_at = ? WHERE id = ?`, old, id); err != nil {
		t.Fatalf("age backup record: %v", err)
	}

	if err := m.Cleanup(context.Background(), 30); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	mock.mu.Lock()
	_, exists := mock.objects[record.S3Key]
	mock.mu.Unlock()
	if exists {
		t.Error("expected s3 object deleted")
	}

	got, err := m.backupStore.GetByID(id)
	if err != nil {
		t.Fatalf("get backup: %v", err)
	}
	if got != nil {
		t.Error("expected backup record deleted")
	}
}
