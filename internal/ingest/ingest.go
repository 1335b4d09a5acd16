package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"charityhub/internal/auth"
	"charityhub/internal/model"
	"charityhub/internal/store"
)

// ValidationError names the missing required field. No writes have happened
// when one is returned.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

// StorageError wraps a database or filesystem failure during ingestion. The
// step records how far the pipeline got.
type StorageError struct {
	Step string
	Err  error
}

func (e *StorageError) Error() string {
	return "ingestion failed at " + e.Step + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Submission is the raw form input for a new charity listing.
type Submission struct {
	Name        string
	RawTags     string
	Description string
	Website     string
	Location    string
	ImageName   string
	Image       io.Reader
}

// Pipeline turns a submission plus its uploaded image into a published
// listing. The catalog row and the image file live on two resources that
// cannot be written atomically together, so the image reference is the commit
// point: a row without one is never visible to readers.
type Pipeline struct {
	charities *store.CharityStore
	uploadDir string
	logger    *slog.Logger
}

// New creates a Pipeline storing images under uploadDir, with a tmp/
// subdirectory for staged uploads.
func New(cs *store.CharityStore, uploadDir string, logger *slog.Logger) (*Pipeline, error) {
	if err := os.MkdirAll(filepath.Join(uploadDir, "tmp"), 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Pipeline{charities: cs, uploadDir: uploadDir, logger: logger}, nil
}

// Ingest runs the full workflow: authorize, validate, normalize tags, stage
// the image, insert the row, move the image into place, record the reference.
//
// A failure after the row insert leaves a row without an image reference. The
// read path hides such rows, the caller gets a StorageError, and the staged
// file is not reclaimed here.
func (p *Pipeline) Ingest(ident *auth.Identity, sub Submission) (*model.Charity, error) {
	if err := auth.Authorize(ident, auth.OpCreateCharity); err != nil {
		return nil, err
	}

	if sub.Name == "" {
		return nil, &ValidationError{Field: "name"}
	}
	tags := model.NormalizeTags(sub.RawTags)
	if len(tags) == 0 {
		return nil, &ValidationError{Field: "tags"}
	}
	if sub.Image == nil {
		return nil, &ValidationError{Field: "image"}
	}

	staged, ext, err := p.stage(sub)
	if err != nil {
		return nil, &StorageError{Step: "stage image", Err: err}
	}

	c, err := p.charities.Create(sub.Name, tags, sub.Description, sub.Website, sub.Location)
	if err != nil {
		return nil, &StorageError{Step: "insert row", Err: err}
	}

	imageName := fmt.Sprintf("charity_%d%s", c.ID, ext)
	finalPath := filepath.Join(p.uploadDir, imageName)
	if err := os.Rename(staged, finalPath); err != nil {
		p.logger.Warn("partial ingestion: row has no image reference",
			"charity_id", c.ID, "staged", staged, "error", err)
		return nil, &StorageError{Step: "move image", Err: err}
	}

	if err := p.charities.SetImage(c.ID, imageName); err != nil {
		p.logger.Warn("partial ingestion: image moved but reference not recorded",
			"charity_id", c.ID, "image", imageName, "error", err)
		return nil, &StorageError{Step: "record image reference", Err: err}
	}

	c.ImagePath = imageName
	p.logger.Info("charity ingested", "charity_id", c.ID, "name", c.Name, "image", imageName)
	return c, nil
}

// stage writes the upload to a collision-resistant temporary name, decoupling
// receipt of the bytes from acceptance into the catalog.
func (p *Pipeline) stage(sub Submission) (path, ext string, err error) {
	ext = filepath.Ext(sub.ImageName)
	path = filepath.Join(p.uploadDir, "tmp", fmt.Sprintf("upload_%d%s", time.Now().UnixNano(), ext))

	f, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("create staged file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, sub.Image); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("write staged file: %w", err)
	}
	return path, ext, nil
}
