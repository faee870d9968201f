package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginStoresToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"token": "tok-123", "userId": 7})
	}))
	defer server.Close()

	c := New(server.URL)
	if err := c.Login(context.Background(), "a@example.com", "pw"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.token != "tok-123" {
		t.Fatalf("token not stored: %q", c.token)
	}
}

func TestGetStructureCaches(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Fatalf("missing bearer token")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"formId": 1,
			"title":  "Survey",
			"fields": []map[string]any{{"id": "name", "type": "TEXT", "order": 0}},
		})
	}))
	defer server.Close()

	c := New(server.URL)
	c.SetToken("tok")

	structure, err := c.GetStructure(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if structure.Title != "Survey" || len(structure.Fields) != 1 {
		t.Fatalf("unexpected structure: %+v", structure)
	}

	if _, err := c.GetStructure(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected cached second read, server saw %d calls", calls)
	}
}

func TestSubmit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/forms/1/submit" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Data map[string]any `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if body.Data["name"] != "Alice" {
			t.Fatalf("unexpected data: %v", body.Data)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 1, "formId": 1, "status": "SUBMITTED"})
	}))
	defer server.Close()

	c := New(server.URL)
	result, err := c.Submit(context.Background(), 1, map[string]any{"name": "Alice"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != "SUBMITTED" {
		t.Fatalf("unexpected status: %s", result.Status)
	}
}

func TestErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := New(server.URL)
	if _, err := c.GetStructure(context.Background(), 1); err == nil {
		t.Fatalf("expected an error for 403")
	}
}
