package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"charityhub/internal/model"
)

type CharityStore struct {
	db *sql.DB
}

func NewCharityStore(db *sql.DB) *CharityStore {
	return &CharityStore{db: db}
}

const charityCols = `id, name, tags, description, website, location, image_path, created_at`

// Tags are stored as a JSON array string in a single column.
func scanCharity(scanner interface{ Scan(...any) error }) (*model.Charity, error) {
	var c model.Charity
	var tags string
	err := scanner.Scan(&c.ID, &c.Name, &tags, &c.Description, &c.Website, &c.Location, &c.ImagePath, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &c.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return &c, nil
}

// Create inserts a charity row without an image reference. The listing stays
// invisible to ListVisible until SetImage records one.
func (s *CharityStore) Create(name string, tags []string, description, website, location string) (*model.Charity, error) {
	encoded, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO charities (name, tags, description, website, location) VALUES (?, ?, ?, ?, ?)`,
		name, string(encoded), description, website, location,
	)
	if err != nil {
		return nil, fmt.Errorf("insert charity: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// SetImage records the final image reference for a charity row.
func (s *CharityStore) SetImage(id int64, imagePath string) error {
	result, err := s.db.Exec(`UPDATE charities SET image_path = ? WHERE id = ?`, imagePath, id)
	if err != nil {
		return fmt.Errorf("set image: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CharityStore) GetByID(id int64) (*model.Charity, error) {
	row := s.db.QueryRow(`SELECT `+charityCols+` FROM charities WHERE id = ?`, id)
	c, err := scanCharity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get charity: %w", err)
	}
	return c, nil
}

// ListVisible returns all fully ingested listings. Rows without an image
// reference are partial-ingestion artifacts and are never surfaced.
func (s *CharityStore) ListVisible() ([]model.Charity, error) {
	rows, err := s.db.Query(`SELECT ` + charityCols + ` FROM charities WHERE image_path != '' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list charities: %w", err)
	}
	defer rows.Close()

	var charities []model.Charity
	for rows.Next() {
		c, err := scanCharity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan charity: %w", err)
		}
		charities = append(charities, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate charities: %w", err)
	}
	return charities, nil
}
