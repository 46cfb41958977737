package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type stubRateLimitStore struct {
	counts  map[string]int64
	lastKey string
	err     error
}

func (s *stubRateLimitStore) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.counts == nil {
		s.counts = make(map[string]int64)
	}
	s.counts[key]++
	s.lastKey = key
	return s.counts[key], nil
}

func TestRateLimitMiddlewareAllowsUnderLimit(t *testing.T) {
	store := &stubRateLimitStore{}
	handler := NewRateLimitMiddleware(store, 2, nil).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i+1, rec.Code)
		}
	}
}

func TestRateLimitMiddlewareBlocksOverLimit(t *testing.T) {
	store := &stubRateLimitStore{}
	handler := NewRateLimitMiddleware(store, 1, nil).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After header, got %q", rec.Header().Get("Retry-After"))
	}
}

func TestRateLimitMiddlewareKeysByUser(t *testing.T) {
	store := &stubRateLimitStore{}
	handler := NewRateLimitMiddleware(store, 10, nil).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	ctx := context.WithValue(req.Context(), UserIDContextKey, "user-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))

	if store.lastKey != "user-1" {
		t.Fatalf("expected user-keyed bucket, got %q", store.lastKey)
	}
}

func TestRateLimitMiddlewareFailsOpen(t *testing.T) {
	store := &stubRateLimitStore{err: errors.New("redis down")}
	handler := NewRateLimitMiddleware(store, 1, nil).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("a broken limiter store must not reject requests, got %d", rec.Code)
	}
}
