package store

import (
	"database/sql"
	"fmt"

	"charityhub/internal/model"
)

type FavoriteStore struct {
	db      *sql.DB
	charity *CharityStore
}

func NewFavoriteStore(db *sql.DB, cs *CharityStore) *FavoriteStore {
	return &FavoriteStore{db: db, charity: cs}
}

// Add creates the edge (username, charityID). The listing must exist and be
// visible, else ErrNotFound. A duplicate edge returns ErrAlreadyExists; two
// concurrent adds for the same pair both pass the pre-check, and the UNIQUE
// constraint on the insert resolves the race to a single edge.
func (s *FavoriteStore) Add(username string, charityID int64) error {
	c, err := s.charity.GetByID(charityID)
	if err != nil {
		return err
	}
	if c == nil || c.ImagePath == "" {
		return ErrNotFound
	}

	_, err = s.db.Exec(
		`INSERT INTO favorites (username, charity_id) VALUES (?, ?)`,
		username, charityID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

// Remove deletes the edge, returning ErrNotFound when it does not exist.
func (s *FavoriteStore) Remove(username string, charityID int64) error {
	result, err := s.db.Exec(
		`DELETE FROM favorites WHERE username = ? AND charity_id = ?`,
		username, charityID,
	)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
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

// ListForUser returns the visible listings the user has favorited, oldest
// bookmark first. A user with no favorites gets an empty slice.
func (s *FavoriteStore) ListForUser(username string) ([]model.Charity, error) {
	rows, err := s.db.Query(
		`SELECT c.id, c.name, c.tags, c.description, c.website, c.location, c.image_path, c.created_at
		 FROM favorites f
		 JOIN charities c ON c.id = f.charity_id
		 WHERE f.username = ? AND c.image_path != ''
		 ORDER BY f.id`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	charities := []model.Charity{}
	for rows.Next() {
		c, err := scanCharity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		charities = append(charities, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}
	return charities, nil
}
