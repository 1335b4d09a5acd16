package model

import (
	"strings"
	"time"
)

type Charity struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Tags        []string  `json:"tags"`
	Description string    `json:"description"`
	Website     string    `json:"website"`
	Location    string    `json:"location"`
	ImagePath   string    `json:"image_path"`
	CreatedAt   time.Time `json:"created_at"`
}

// NormalizeTags splits a comma-separated tag string into a deduplicated list.
// Whitespace is trimmed, empty entries are dropped, and duplicates are folded
// case-insensitively keeping the first occurrence's casing. The result is in
// first-appearance order, so normalizing is idempotent.
func NormalizeTags(raw string) []string {
	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		tag := strings.TrimSpace(p)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
