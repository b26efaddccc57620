package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	apiContext "burnstop/internal/api/context"
	"burnstop/internal/platform/auth"
	"burnstop/internal/platform/config"
	"burnstop/internal/platform/repositories"
	"burnstop/internal/platform/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return store.NewWithClient(client)
}

func newAuthHandler(t *testing.T) (*AuthHandler, *repositories.UserRepository, *auth.TokenService) {
	t.Helper()
	userRepo := repositories.NewUserRepository(newTestStore(t))
	tokenSvc := auth.NewTokenService(config.JWTConfig{Secret: "test-secret", AccessTokenTTL: time.Hour})
	return NewAuthHandler(userRepo, tokenSvc), userRepo, tokenSvc
}

func postJSONRequest(path, body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
}

func TestSignupAndLogin(t *testing.T) {
	handler, _, tokenSvc := newAuthHandler(t)

	rec := httptest.NewRecorder()
	handler.Signup(rec, postJSONRequest("/api/v1/auth/signup", `{"email":"dev@acme.io","password":"hunter2hunter2"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tokenResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if tokenResp.TokenType != "bearer" || tokenResp.AccessToken == "" {
		t.Errorf("unexpected token response %+v", tokenResp)
	}

	claims, err := tokenSvc.ValidateToken(tokenResp.AccessToken)
	if err != nil {
		t.Fatalf("signup token should validate: %v", err)
	}
	if claims.Email != "dev@acme.io" {
		t.Errorf("claims email = %s, want dev@acme.io", claims.Email)
	}

	// Signing in with the same credentials works.
	rec = httptest.NewRecorder()
	handler.Login(rec, postJSONRequest("/api/v1/auth/login", `{"email":"dev@acme.io","password":"hunter2hunter2"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bad email", body: `{"email":"not-an-email","password":"hunter2hunter2"}`},
		{name: "short password", body: `{"email":"dev@acme.io","password":"short"}`},
		{name: "malformed body", body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, _ := newAuthHandler(t)
			rec := httptest.NewRecorder()
			handler.Signup(rec, postJSONRequest("/api/v1/auth/signup", tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	handler, _, _ := newAuthHandler(t)

	rec := httptest.NewRecorder()
	handler.Signup(rec, postJSONRequest("/api/v1/auth/signup", `{"email":"dev@acme.io","password":"hunter2hunter2"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first signup status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Signup(rec, postJSONRequest("/api/v1/auth/signup", `{"email":"dev@acme.io","password":"anotherpassword"}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate signup status = %d, want 400", rec.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	handler, _, _ := newAuthHandler(t)

	rec := httptest.NewRecorder()
	handler.Signup(rec, postJSONRequest("/api/v1/auth/signup", `{"email":"dev@acme.io","password":"hunter2hunter2"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Login(rec, postJSONRequest("/api/v1/auth/login", `{"email":"dev@acme.io","password":"wrong-password"}`))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("login status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Login(rec, postJSONRequest("/api/v1/auth/login", `{"email":"ghost@acme.io","password":"whatever"}`))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown user login status = %d, want 401", rec.Code)
	}
}

func TestMeHidesPasswordHash(t *testing.T) {
	handler, userRepo, _ := newAuthHandler(t)

	rec := httptest.NewRecorder()
	handler.Signup(rec, postJSONRequest("/api/v1/auth/signup", `{"email":"dev@acme.io","password":"hunter2hunter2"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d", rec.Code)
	}

	user, err := userRepo.GetByEmail(context.Background(), "dev@acme.io")
	if err != nil || user == nil {
		t.Fatalf("user lookup failed: %v", err)
	}
	if user.HashedPassword == "" {
		t.Fatal("stored user must keep the password hash")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	ctx := context.WithValue(req.Context(), apiContext.Claims, &auth.Claims{UserID: user.ID, Email: user.Email})
	rec = httptest.NewRecorder()
	handler.Me(rec, req.WithContext(ctx))
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["email"] != "dev@acme.io" {
		t.Errorf("email = %v, want dev@acme.io", body["email"])
	}
	if _, present := body["hashed_password"]; present {
		t.Error("response must not expose the password hash")
	}
}
