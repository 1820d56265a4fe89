package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokens(t *testing.T) {
	const secret = "test-secret"

	t.Run("Round Trip", func(t *testing.T) {
		token, err := IssueToken(secret, "user-123", time.Hour)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		userID, err := ParseToken(secret, token)
		if err != nil {
			t.Fatalf("failed to parse token: %v", err)
		}
		if userID != "user-123" {
			t.Errorf("expected subject user-123, got %s", userID)
		}
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		token, err := IssueToken(secret, "user-123", time.Hour)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		if _, err := ParseToken("other-secret", token); err == nil {
			t.Error("expected error for wrong secret")
		}
	})

	t.Run("Expired Token", func(t *testing.T) {
		token, err := IssueToken(secret, "user-123", -time.Minute)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		if _, err := ParseToken(secret, token); err == nil {
			t.Error("expected error for expired token")
		}
	})

	t.Run("Garbage Token", func(t *testing.T) {
		if _, err := ParseToken(secret, "not.a.token"); err == nil {
			t.Error("expected error for garbage token")
		}
	})
}

func TestAuthenticate(t *testing.T) {
	const secret = "test-secret"

	handler := Authenticate(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(UserID(r)))
	}))

	t.Run("Missing Header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("Malformed Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic abc123")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("Invalid Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bogus")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("Valid Token", func(t *testing.T) {
		token, err := IssueToken(secret, "user-123", time.Hour)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Body.String() != "user-123" {
			t.Errorf("expected user ID in context, got %s", rec.Body.String())
		}
	})
}

func TestCORS(t *testing.T) {
	handler := CORS("https://app.example.com")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("Sets Headers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
			t.Errorf("expected configured origin, got %s", got)
		}
	})

	t.Run("Short Circuits Preflight", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))

		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204 for preflight, got %d", rec.Code)
		}
	})

	t.Run("Empty Origin Defaults To Wildcard", func(t *testing.T) {
		wildcard := CORS("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		wildcard.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("expected wildcard origin, got %s", got)
		}
	})
}

func TestUserIDWithoutAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if UserID(req) != "" {
		t.Error("expected empty user ID outside authenticated context")
	}
}
