package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"charityhub/internal/auth"
	"charityhub/internal/model"
)

func ownerCtx(username string) context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{Username: username, Role: model.RoleCharityOwner})
}

func standardCtx(username string) context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{Username: username, Role: model.RoleStandard})
}

func charityForm() map[string]string {
	return map[string]string{
		"name":        "Hope Trust",
		"tags":        "Education, Youth",
		"description": "After-school programs",
		"website":     "https://hope.example",
		"location":    "Springfield",
	}
}

func TestCharityListEmpty(t *testing.T) {
	e := newTestEnv(t)

	rec := httptest.NewRecorder()
	e.charity.List(rec, httptest.NewRequest("GET", "/api/charities", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got []model.Charity
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d charities, want 0", len(got))
	}
}

func TestCharityCreate(t *testing.T) {
	e := newTestEnv(t)

	body, contentType := multipartBody(t, charityForm(), []byte("png-bytes"))
	req := httptest.NewRequest("POST", "/api/charities", body).WithContext(ownerCtx("bob"))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	e.charity.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}
	var got model.Charity
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Name != "Hope Trust" {
		t.Errorf("name = %q", got.Name)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "Education" || got.Tags[1] != "Youth" {
		t.Errorf("tags = %v, want [Education Youth]", got.Tags)
	}
	if got.ImagePath == "" {
		t.Error("expected assigned image reference")
	}

	// The listing is now publicly visible.
	rec = httptest.NewRecorder()
	e.charity.List(rec, httptest.NewRequest("GET", "/api/charities", nil))
	var listed []model.Charity
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("got %d visible charities, want 1", len(listed))
	}
}

func TestCharityCreateWrongRole(t *testing.T) {
	e := newTestEnv(t)

	body, contentType := multipartBody(t, charityForm(), []byte("png-bytes"))
	req := httptest.NewRequest("POST", "/api/charities", body).WithContext(standardCtx("alice"))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	e.charity.Create(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestCharityCreateAnonymous(t *testing.T) {
	e := newTestEnv(t)

	body, contentType := multipartBody(t, charityForm(), []byte("png-bytes"))
	req := httptest.NewRequest("POST", "/api/charities", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	e.charity.Create(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestCharityCreateValidation(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name   string
		mutate func(map[string]string) map[string]string
		noFile bool
	}{
		{"missing name", func(f map[string]string) map[string]string { f["name"] = ""; return f }, false},
		{"missing tags", func(f map[string]string) map[string]string { f["tags"] = ""; return f }, false},
		{"missing image", func(f map[string]string) map[string]string { return f }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var imageBytes []byte
			if !tt.noFile {
				imageBytes = []byte("png-bytes")
			}
			body, contentType := multipartBody(t, tt.mutate(charityForm()), imageBytes)
			req := httptest.NewRequest("POST", "/api/charities", body).WithContext(ownerCtx("bob"))
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			e.charity.Create(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body)
			}
		})
	}
}
