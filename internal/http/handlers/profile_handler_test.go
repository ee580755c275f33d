package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/couponhub/go-coupon-backend/internal/domain"
)

func TestCreateProfile(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/user-profiles", map[string]any{
		"userName": "Alice",
		"email":    "Alice@Example.com",
		"password": "s3cret",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var p domain.UserProfile
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Without an explicit userId the normalized email becomes the identity.
	if p.UserID != "alice@example.com" || p.Email != "alice@example.com" {
		t.Fatalf("identity not derived from email: %+v", p)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("password leaked in response: %s", w.Body.String())
	}
}

func TestCreateProfile_DuplicateEmail(t *testing.T) {
	r, _ := newTestServer(t)
	registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/user-profiles", map[string]any{
		"userId":   "alice2",
		"userName": "Alice Again",
		"email":    "alice@example.com",
		"password": "s3cret",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "a profile with email alice@example.com already exists") {
		t.Fatalf("conflict message should name the email: %s", w.Body.String())
	}
}

func TestCreateProfile_Binding(t *testing.T) {
	r, _ := newTestServer(t)

	for name, body := range map[string]map[string]any{
		"missing email":  {"userName": "Alice", "password": "s3cret"},
		"bad email":      {"userName": "Alice", "email": "nope", "password": "s3cret"},
		"short password": {"userName": "Alice", "email": "a@b.com", "password": "pw"},
	} {
		if w := doJSON(t, r, http.MethodPost, "/user-profiles", body, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, w.Code)
		}
	}
}

func TestListProfiles_Projection(t *testing.T) {
	r, _ := newTestServer(t)
	registerUser(t, r, "alice")
	registerUser(t, r, "bob")

	w := doJSON(t, r, http.MethodGet, "/user-profiles", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}
	var out []ProfileSummary
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(out))
	}
	if strings.Contains(w.Body.String(), "email") {
		t.Fatalf("summary projection should not expose emails: %s", w.Body.String())
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/user-profile/ghost", nil, nil)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "not_found") {
		t.Fatalf("expected not_found envelope, got %d %s", w.Code, w.Body.String())
	}
}

func TestUpdateProfile_PasswordRotation(t *testing.T) {
	r, _ := newTestServer(t)
	registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodPatch, "/user-profile/alice",
		map[string]any{"password": "n3wpass"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", w.Code, w.Body.String())
	}

	login := func(password string) int {
		w := doJSON(t, r, http.MethodPost, "/login", map[string]any{
			"email":    "alice@example.com",
			"password": password,
		}, nil)
		return w.Code
	}
	if code := login("n3wpass"); code != http.StatusOK {
		t.Fatalf("new password rejected: %d", code)
	}
	if code := login("s3cret"); code != http.StatusUnauthorized {
		t.Fatalf("old password should be rejected: %d", code)
	}
}

func TestDeleteProfile(t *testing.T) {
	r, _ := newTestServer(t)
	registerUser(t, r, "alice")

	if w := doJSON(t, r, http.MethodDelete, "/user-profile/alice", nil, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/user-profile/alice", nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("second delete should 404, got %d", w.Code)
	}
}

func TestLogin(t *testing.T) {
	r, _ := newTestServer(t)
	registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/login", map[string]any{
		"email":    "ALICE@example.com",
		"password": "s3cret",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var p domain.UserProfile
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.UserID != "alice" {
		t.Fatalf("unexpected profile: %+v", p)
	}

	// Unknown email and wrong password are indistinguishable.
	for name, body := range map[string]map[string]any{
		"unknown email":  {"email": "ghost@example.com", "password": "s3cret"},
		"wrong password": {"email": "alice@example.com", "password": "wrong"},
	} {
		w := doJSON(t, r, http.MethodPost, "/login", body, nil)
		if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), "unauthorized") {
			t.Errorf("%s: expected 401 unauthorized, got %d %s", name, w.Code, w.Body.String())
		}
	}
}
