package model

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "messy input with case duplicate and empties",
			raw:  "Education, education , Youth,,",
			want: []string{"Education", "Youth"},
		},
		{
			name: "dedupe keeps first casing",
			raw:  "health, Health, HEALTH",
			want: []string{"health"},
		},
		{
			name: "first-appearance order",
			raw:  "Youth, Education, Youth",
			want: []string{"Youth", "Education"},
		},
		{
			name: "only separators",
			raw:  " , ,,",
			want: []string{},
		},
		{
			name: "single tag",
			raw:  "Environment",
			want: []string{"Environment"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTags(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTags(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeTagsIdempotent(t *testing.T) {
	once := NormalizeTags("Education, education , Youth,,")
	twice := NormalizeTags(strings.Join(once, ","))
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("re-normalization changed result: %v -> %v", once, twice)
	}
}
