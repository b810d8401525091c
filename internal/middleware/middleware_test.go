package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTAuth_RoundTrip(t *testing.T) {
	j := NewJWTAuth("test-secret")
	userID := uuid.New()

	token, err := j.GenerateAccessToken(userID, "alice")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	got, err := j.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if got != userID {
		t.Fatalf("expected %s, got %s", userID, got)
	}

	if _, err := NewJWTAuth("other-secret").ParseToken(token); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestJWTAuth_Middleware(t *testing.T) {
	j := NewJWTAuth("test-secret")
	userID := uuid.New()
	token, _ := j.GenerateAccessToken(userID, "alice")

	var seen uuid.UUID
	h := j.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserID(r.Context())
	}))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rr.Code)
			}
		})
	}

	if seen != userID {
		t.Fatalf("expected user %s in context, got %s", userID, seen)
	}
}

func TestGetUserID_Missing(t *testing.T) {
	if id := GetUserID(context.Background()); id != uuid.Nil {
		t.Fatalf("expected nil uuid, got %s", id)
	}
}

func TestRequestID(t *testing.T) {
	h := RequestID(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get(RequestIDHeader); got != "abc" {
		t.Fatalf("expected caller id to be kept, got %q", got)
	}
}

func TestCORS(t *testing.T) {
	h := CORS("http://localhost:5173, https://blog.example.com/")(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/blogs", nil)
	req.Header.Set("Origin", "https://blog.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://blog.example.com" {
		t.Fatalf("unexpected allow origin %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow origin for unknown origin, got %q", got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	now := time.Now()
	rl.now = func() time.Time { return now }

	h := rl.Middleware(okHandler())
	hit := func() int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	if hit() != http.StatusOK || hit() != http.StatusOK {
		t.Fatal("expected first two requests to pass")
	}
	if code := hit(); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}

	now = now.Add(2 * time.Minute)
	if code := hit(); code != http.StatusOK {
		t.Fatalf("expected window reset, got %d", code)
	}
}
