package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"budget/internal/auth"
	"budget/internal/models"
	"budget/internal/store"

	"github.com/lib/pq"
)

func TestRegisterSuccess(t *testing.T) {
	d := defaultDeps()
	var storedHash string
	d.stores.Users = stubUserStore{
		createFn: func(ctx context.Context, tx store.Getter, id, email, passwordHash string) (models.User, error) {
			storedHash = passwordHash
			return models.User{ID: id, Email: email, PasswordHash: passwordHash}, nil
		},
	}
	rr, resp := doRequest(t, newTestHandler(d), http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    " Alice@Example.com ",
		"password": "secret1",
	})
	if rr.Code != http.StatusCreated || !resp.Success {
		t.Fatalf("expected 201, got %d (%s)", rr.Code, rr.Body.String())
	}
	var body authResponse
	decodeData(t, resp, &body)
	if body.User.Email != "alice@example.com" || body.User.ID == "" {
		t.Fatalf("unexpected user %+v", body.User)
	}
	claims, err := auth.ParseToken(testSecret, body.Token)
	if err != nil || claims.UserID != body.User.ID {
		t.Fatalf("token does not identify the new user: %v", err)
	}
	if strings.HasPrefix(storedHash, "hash:") || storedHash == "secret1" {
		t.Fatalf("password stored in clear: %q", storedHash)
	}
	if strings.Contains(rr.Body.String(), "passwordHash") {
		t.Fatalf("password hash leaked: %s", rr.Body.String())
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	d := defaultDeps()
	d.stores.Users = stubUserStore{
		emailExistsFn: func(ctx context.Context, email string) (bool, error) { return true, nil },
	}
	rr, resp := doRequest(t, newTestHandler(d), http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "a@example.com", "password": "secret1",
	})
	expectError(t, rr, resp, http.StatusConflict, "email already registered")
}

func TestRegisterUniqueViolationRace(t *testing.T) {
	d := defaultDeps()
	d.stores.Users = stubUserStore{
		createFn: func(ctx context.Context, tx store.Getter, id, email, passwordHash string) (models.User, error) {
			return models.User{}, &pq.Error{Code: "23505"}
		},
	}
	rr, resp := doRequest(t, newTestHandler(d), http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "a@example.com", "password": "secret1",
	})
	expectError(t, rr, resp, http.StatusConflict, "email already registered")
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]string
		message string
	}{
		{"missing email", map[string]string{"password": "secret1"}, "email is required"},
		{"missing password", map[string]string{"email": "a@example.com"}, "password is required"},
		{"bad email", map[string]string{"email": "nope", "password": "secret1"}, "invalid email"},
		{"short password", map[string]string{"email": "a@example.com", "password": "123"}, "password must be at least 6 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, resp := doRequest(t, newTestHandler(defaultDeps()), http.MethodPost, "/api/auth/register", "", tt.body)
			expectError(t, rr, resp, http.StatusBadRequest, tt.message)
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	hash, err := auth.HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	d := defaultDeps()
	d.stores.Users = stubUserStore{
		getByEmailFn: func(ctx context.Context, email string) (models.User, error) {
			return models.User{ID: "user-1", Email: email, PasswordHash: hash}, nil
		},
		updateHashFn: func(ctx context.Context, userID, passwordHash string) error {
			t.Fatal("bcrypt password must not be rewritten")
			return nil
		},
	}
	rr, resp := doRequest(t, newTestHandler(d), http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@example.com", "password": "secret1",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body authResponse
	decodeData(t, resp, &body)
	if body.User.ID != "user-1" || body.Token == "" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestLoginUpgradesLegacyPassword(t *testing.T) {
	for _, stored := range []string{"hash:secret1", "hashed:secret1"} {
		upgraded := ""
		d := defaultDeps()
		d.stores.Users = stubUserStore{
			getByEmailFn: func(ctx context.Context, email string) (models.User, error) {
				return models.User{ID: "user-1", Email: email, PasswordHash: stored}, nil
			},
			updateHashFn: func(ctx context.Context, userID, passwordHash string) error {
				upgraded = passwordHash
				return nil
			},
		}
		rr, _ := doRequest(t, newTestHandler(d), http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "a@example.com", "password": "secret1",
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", stored, rr.Code)
		}
		if ok, legacy := auth.CheckPassword(upgraded, "secret1"); !ok || legacy {
			t.Fatalf("%s: expected bcrypt upgrade, got %q", stored, upgraded)
		}
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	d := defaultDeps()
	d.stores.Users = stubUserStore{
		getByEmailFn: func(ctx context.Context, email string) (models.User, error) {
			return models.User{ID: "user-1", PasswordHash: "hash:other"}, nil
		},
	}
	rr, resp := doRequest(t, newTestHandler(d), http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@example.com", "password": "secret1",
	})
	expectError(t, rr, resp, http.StatusUnauthorized, "invalid credentials")

	rr, resp = doRequest(t, newTestHandler(defaultDeps()), http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "secret1",
	})
	expectError(t, rr, resp, http.StatusUnauthorized, "invalid credentials")
}

func TestMe(t *testing.T) {
	d := defaultDeps()
	d.stores.Users = stubUserStore{
		getByIDFn: func(ctx context.Context, userID string) (models.User, error) {
			return models.User{ID: userID, Email: "a@example.com"}, nil
		},
	}
	rr, resp := doRequest(t, newTestHandler(d), http.MethodGet, "/api/auth/me", "user-1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var user models.PublicUser
	decodeData(t, resp, &user)
	if user.ID != "user-1" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newTestHandler(defaultDeps())
	for _, path := range []string{"/api/scopes", "/api/transactions", "/api/bills", "/api/user-settings", "/api/export", "/api/auth/me"} {
		rr, resp := doRequest(t, h, http.MethodGet, path, "", nil)
		expectError(t, rr, resp, http.StatusUnauthorized, "unauthorized")
	}
}
