package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// memoryCache is an in-memory IdempotencyCache for tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]string)}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	return value, ok, nil
}

func (c *memoryCache) SetNX(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; exists {
		return false, nil
	}
	c.entries[key] = value
	return true, nil
}

func (c *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memoryCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func countingHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"success"}`))
	})
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	cache := newMemoryCache()
	calls := 0
	handler := Idempotency(cache)(countingHandler(&calls))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/transaction/fund", nil)
		req.Header.Set(IdempotencyHeader, "key-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: status mismatch: got %d, want 200", i, rec.Code)
		}
		if rec.Body.String() != `{"message":"success"}` {
			t.Fatalf("attempt %d: body mismatch: got %s", i, rec.Body.String())
		}
	}

	if calls != 1 {
		t.Errorf("Handler call count mismatch: got %d, want 1", calls)
	}
}

func TestIdempotency_DistinctKeysRunIndependently(t *testing.T) {
	cache := newMemoryCache()
	calls := 0
	handler := Idempotency(cache)(countingHandler(&calls))

	for _, key := range []string{"key-a", "key-b"} {
		req := httptest.NewRequest(http.MethodPost, "/transaction/fund", nil)
		req.Header.Set(IdempotencyHeader, key)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}

	if calls != 2 {
		t.Errorf("Handler call count mismatch: got %d, want 2", calls)
	}
}

func TestIdempotency_NoHeaderPassesThrough(t *testing.T) {
	cache := newMemoryCache()
	calls := 0
	handler := Idempotency(cache)(countingHandler(&calls))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/transaction/fund", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}

	if calls != 2 {
		t.Errorf("Handler call count mismatch: got %d, want 2", calls)
	}
}

func TestIdempotency_FailedResponsesAreNotCached(t *testing.T) {
	cache := newMemoryCache()
	calls := 0
	handler := Idempotency(cache)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"failed"}`))
			return
		}
		w.Write([]byte(`{"message":"success"}`))
	}))

	first := httptest.NewRequest(http.MethodPost, "/transaction/fund", nil)
	first.Header.Set(IdempotencyHeader, "key-retry")
	firstRec := httptest.NewRecorder()
	handler.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusBadRequest {
		t.Fatalf("Status mismatch: got %d, want 400", firstRec.Code)
	}

	// The failure was not cached, so a retry reaches the handler.
	second := httptest.NewRequest(http.MethodPost, "/transaction/fund", nil)
	second.Header.Set(IdempotencyHeader, "key-retry")
	secondRec := httptest.NewRecorder()
	handler.ServeHTTP(secondRec, second)

	if calls != 2 {
		t.Errorf("Handler call count mismatch: got %d, want 2", calls)
	}
	if secondRec.Code != http.StatusOK {
		t.Errorf("Retry status mismatch: got %d, want 200", secondRec.Code)
	}
}

func TestIdempotency_ConcurrentDuplicateRejected(t *testing.T) {
	cache := newMemoryCache()
	// Simulate another request holding the lock.
	if _, err := cache.SetNX(context.Background(), "lock:key-busy", "processing", time.Minute); err != nil {
		t.Fatalf("SetNX failed: %v", err)
	}

	calls := 0
	handler := Idempotency(cache)(countingHandler(&calls))

	req := httptest.NewRequest(http.MethodPost, "/transaction/fund", nil)
	req.Header.Set(IdempotencyHeader, "key-busy")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("Status mismatch: got %d, want 409", rec.Code)
	}
	if calls != 0 {
		t.Errorf("Handler must not run while the key is locked, got %d calls", calls)
	}
}
