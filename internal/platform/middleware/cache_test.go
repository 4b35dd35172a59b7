package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

// ---------------------------------------------------------------------------
// ETag tests
// ---------------------------------------------------------------------------

func TestETagMiddleware_SetsETagHeader(t *testing.T) {
	e := echo.New()
	handler := ETagMiddleware(DefaultCacheConfig(300))(func(c echo.Context) error {
		return c.String(http.StatusOK, "hello world")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/overview", nil)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	etag := rec.Header().Get("ETag")
	if len(etag) < 3 || etag[0] != '"' || etag[len(etag)-1] != '"' {
		t.Errorf("expected strong ETag format \"...\", got %q", etag)
	}
	if rec.Header().Get("Cache-Control") != "private, max-age=300" {
		t.Errorf("unexpected Cache-Control %q", rec.Header().Get("Cache-Control"))
	}
	if rec.Header().Get("Vary") != "Accept, Accept-Encoding" {
		t.Errorf("unexpected Vary %q", rec.Header().Get("Vary"))
	}
}

func TestETagMiddleware_304OnMatch(t *testing.T) {
	e := echo.New()
	handler := ETagMiddleware(DefaultCacheConfig(300))(func(c echo.Context) error {
		return c.String(http.StatusOK, "hello world")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/overview", nil)
	rec := httptest.NewRecorder()
	_ = handler(e.NewContext(req, rec))
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag from first request")
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/overview", nil)
	req2.Header.Set("If-None-Match", etag)
	rec2 := httptest.NewRecorder()
	if err := handler(e.NewContext(req2, rec2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec2.Code != http.StatusNotModified {
		t.Errorf("expected 304, got %d", rec2.Code)
	}
	if rec2.Body.Len() != 0 {
		t.Errorf("expected empty body for 304, got %d bytes", rec2.Body.Len())
	}
}

func TestETagMiddleware_200OnMismatch(t *testing.T) {
	e := echo.New()
	handler := ETagMiddleware(DefaultCacheConfig(300))(func(c echo.Context) error {
		return c.String(http.StatusOK, "hello world")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/overview", nil)
	req.Header.Set("If-None-Match", `W/"does-not-match"`)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "hello world" {
		t.Errorf("expected 200 with body, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestETagMiddleware_SkipsErrorResponses(t *testing.T) {
	e := echo.New()
	handler := ETagMiddleware(DefaultCacheConfig(300))(func(c echo.Context) error {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "boom"})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/overview", nil)
	rec := httptest.NewRecorder()
	_ = handler(e.NewContext(req, rec))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if rec.Header().Get("ETag") != "" || rec.Header().Get("Cache-Control") != "" {
		t.Error("expected no cache headers on error responses")
	}
}

func TestETagMiddleware_SkipsExcludedPaths(t *testing.T) {
	e := echo.New()
	cfg := DefaultCacheConfig(300)
	cfg.ExcludePaths = []string{"/health"}
	handler := ETagMiddleware(cfg)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	_ = handler(e.NewContext(req, rec))
	if rec.Header().Get("ETag") != "" {
		t.Error("expected no ETag on excluded path")
	}
}

func TestBuildCacheControl(t *testing.T) {
	tests := []struct {
		cfg  CacheConfig
		want string
	}{
		{CacheConfig{MaxAge: 60}, "public, max-age=60"},
		{CacheConfig{MaxAge: 60, Private: true}, "private, max-age=60"},
		{CacheConfig{NoStore: true, Private: true}, "no-store, private, max-age=0"},
	}
	for _, tt := range tests {
		if got := buildCacheControl(tt.cfg); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

// ---------------------------------------------------------------------------
// CacheStore tests
// ---------------------------------------------------------------------------

func TestInMemoryCacheStore_SetAndGet(t *testing.T) {
	store := NewInMemoryCacheStore()
	store.Set("key1", []byte("value1"), 5*time.Minute)

	data, ok := store.Get("key1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(data) != "value1" {
		t.Errorf("expected 'value1', got %q", string(data))
	}
}

func TestInMemoryCacheStore_NonPositiveTTL(t *testing.T) {
	store := NewInMemoryCacheStore()
	store.Set("key1", []byte("value1"), 0)
	if _, ok := store.Get("key1"); ok {
		t.Error("expected zero ttl to store nothing")
	}
}

func TestInMemoryCacheStore_Expiration(t *testing.T) {
	store := NewInMemoryCacheStore()
	store.Set("key1", []byte("value1"), 1*time.Millisecond)

	time.Sleep(10 * time.Millisecond)

	if _, ok := store.Get("key1"); ok {
		t.Error("expected cache miss for expired entry")
	}
}

func TestInMemoryCacheStore_DeleteAndClear(t *testing.T) {
	store := NewInMemoryCacheStore()
	store.Set("key1", []byte("value1"), 5*time.Minute)
	store.Set("key2", []byte("value2"), 5*time.Minute)

	store.Delete("key1")
	if _, ok := store.Get("key1"); ok {
		t.Error("expected cache miss after delete")
	}
	store.Clear()
	if store.Len() != 0 {
		t.Errorf("expected empty store after clear, got %d", store.Len())
	}
}

func TestInMemoryCacheStore_ConcurrentAccess(t *testing.T) {
	store := NewInMemoryCacheStore()
	var wg sync.WaitGroup
	iterations := 100

	for i := 0; i < iterations; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			store.Set("key", []byte("value"), 1*time.Minute)
		}()
		go func() {
			defer wg.Done()
			store.Get("key")
		}()
		go func() {
			defer wg.Done()
			store.Delete("key")
		}()
	}

	wg.Wait()
}

func TestInMemoryCacheStore_StartCleanup(t *testing.T) {
	store := NewInMemoryCacheStore()
	store.Set("key1", []byte("value1"), 1*time.Millisecond)
	store.Set("key2", []byte("value2"), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	store.StartCleanup(ctx, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	cancel()

	if store.Len() != 1 {
		t.Errorf("expected only the live entry to remain, got %d", store.Len())
	}
}

// ---------------------------------------------------------------------------
// Response cache tests
// ---------------------------------------------------------------------------

func TestResponseCache_HitRestoresContentType(t *testing.T) {
	e := echo.New()
	store := NewInMemoryCacheStore()
	callCount := 0
	handler := ResponseCacheMiddleware(store, 5*time.Minute)(func(c echo.Context) error {
		callCount++
		return c.JSON(http.StatusOK, map[string]string{"kpi-total-patients": "12"})
	})

	req1 := httptest.NewRequest(http.MethodGet, "/api/v1/overview?sex=1", nil)
	rec1 := httptest.NewRecorder()
	_ = handler(e.NewContext(req1, rec1))
	if rec1.Header().Get("X-Cache") != "MISS" {
		t.Errorf("first request: expected MISS, got %q", rec1.Header().Get("X-Cache"))
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/overview?sex=1", nil)
	rec2 := httptest.NewRecorder()
	if err := handler(e.NewContext(req2, rec2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec2.Header().Get("X-Cache") != "HIT" {
		t.Errorf("second request: expected HIT, got %q", rec2.Header().Get("X-Cache"))
	}
	if !strings.HasPrefix(rec2.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		t.Errorf("expected JSON content type on hit, got %q", rec2.Header().Get(echo.HeaderContentType))
	}
	if rec2.Body.String() != rec1.Body.String() {
		t.Errorf("expected identical body, got %q vs %q", rec2.Body.String(), rec1.Body.String())
	}
	if callCount != 1 {
		t.Errorf("expected handler called once, called %d times", callCount)
	}
}

func TestResponseCache_QueryStringIsPartOfKey(t *testing.T) {
	e := echo.New()
	store := NewInMemoryCacheStore()
	callCount := 0
	handler := ResponseCacheMiddleware(store, 5*time.Minute)(func(c echo.Context) error {
		callCount++
		return c.String(http.StatusOK, c.QueryParam("sex"))
	})

	for _, target := range []string{"/api/v1/overview?sex=1", "/api/v1/overview?sex=2"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		_ = handler(e.NewContext(req, rec))
		if rec.Header().Get("X-Cache") != "MISS" {
			t.Errorf("%s: expected MISS, got %q", target, rec.Header().Get("X-Cache"))
		}
	}
	if callCount != 2 {
		t.Errorf("expected handler called twice, called %d times", callCount)
	}
}

func TestResponseCache_SkipsErrors(t *testing.T) {
	e := echo.New()
	store := NewInMemoryCacheStore()
	handler := ResponseCacheMiddleware(store, 5*time.Minute)(func(c echo.Context) error {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "down"})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/overview", nil)
	rec := httptest.NewRecorder()
	_ = handler(e.NewContext(req, rec))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if store.Len() != 0 {
		t.Errorf("expected nothing cached, got %d entries", store.Len())
	}
}

func TestResponseCache_SkipsNoStore(t *testing.T) {
	e := echo.New()
	store := NewInMemoryCacheStore()
	calls := 0
	handler := ResponseCacheMiddleware(store, 5*time.Minute)(func(c echo.Context) error {
		calls++
		if calls == 1 {
			NoStore(c)
			return c.JSON(http.StatusOK, map[string]string{"kpi": "—"})
		}
		return c.JSON(http.StatusOK, map[string]string{"kpi": "42"})
	})

	for i, want := range []string{"—", "42", "42"} {
		req := httptest.NewRequest(http.MethodGet, "/api/overview?sex=1", nil)
		rec := httptest.NewRecorder()
		if err := handler(e.NewContext(req, rec)); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("request %d: expected %q in %s", i, want, rec.Body.String())
		}
	}
	if calls != 2 {
		t.Errorf("expected the fallback answer to be recomputed once, handler ran %d times", calls)
	}
}

func TestETagMiddleware_LeavesNoStoreAlone(t *testing.T) {
	e := echo.New()
	handler := ETagMiddleware(DefaultCacheConfig(300))(func(c echo.Context) error {
		NoStore(c)
		return c.String(http.StatusOK, "fallback")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/overview", nil)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("expected no-store, got %q", rec.Header().Get("Cache-Control"))
	}
	if rec.Header().Get("ETag") != "" {
		t.Error("expected no ETag on an uncacheable response")
	}
	if rec.Body.String() != "fallback" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestETagMiddleware_304RecordsStatus(t *testing.T) {
	e := echo.New()
	handler := ETagMiddleware(DefaultCacheConfig(300))(func(c echo.Context) error {
		return c.String(http.StatusOK, "hello world")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/overview", nil)
	req.Header.Set("If-None-Match", computeETag([]byte("hello world")))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Response().Status != http.StatusNotModified {
		t.Errorf("expected response status 304 for the access log, got %d", c.Response().Status)
	}
}

func TestResponseCache_Disabled(t *testing.T) {
	e := echo.New()
	store := NewInMemoryCacheStore()
	handler := ResponseCacheMiddleware(store, 0)(func(c echo.Context) error {
		return c.String(http.StatusOK, "data")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/overview", nil)
	rec := httptest.NewRecorder()
	_ = handler(e.NewContext(req, rec))
	if rec.Header().Get("X-Cache") != "" || store.Len() != 0 {
		t.Error("expected caching to be disabled")
	}
}

func TestResponseCache_Expiration(t *testing.T) {
	e := echo.New()
	store := NewInMemoryCacheStore()
	callCount := 0
	handler := ResponseCacheMiddleware(store, 1*time.Millisecond)(func(c echo.Context) error {
		callCount++
		return c.String(http.StatusOK, "data")
	})

	req1 := httptest.NewRequest(http.MethodGet, "/api/v1/cohort", nil)
	_ = handler(e.NewContext(req1, httptest.NewRecorder()))

	time.Sleep(10 * time.Millisecond)

	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/cohort", nil)
	rec2 := httptest.NewRecorder()
	_ = handler(e.NewContext(req2, rec2))

	if rec2.Header().Get("X-Cache") != "MISS" {
		t.Errorf("expected MISS after expiry, got %q", rec2.Header().Get("X-Cache"))
	}
	if callCount != 2 {
		t.Errorf("expected handler called twice, called %d times", callCount)
	}
}

// ---------------------------------------------------------------------------
// Helper function tests
// ---------------------------------------------------------------------------

func TestComputeETag(t *testing.T) {
	etag := computeETag([]byte("hello world"))
	if strings.HasPrefix(etag, `W/`) || etag[0] != '"' {
		t.Errorf("expected strong validator, got %q", etag)
	}
	if etag != computeETag([]byte("hello world")) {
		t.Error("expected deterministic ETag")
	}
	if etag == computeETag([]byte("different")) {
		t.Error("expected different ETag for different input")
	}
}

func TestCacheKey(t *testing.T) {
	u1, _ := url.Parse("/api/v1/overview?sex=1&service=HOS")
	u2, _ := url.Parse("/api/v1/overview?service=HOS&sex=1")
	u3, _ := url.Parse("/api/v1/overview?service=PSQ&sex=1")

	if cacheKey("GET", u1, "application/json") != cacheKey("GET", u2, "application/json") {
		t.Error("expected parameter order not to matter")
	}
	if cacheKey("GET", u1, "application/json") == cacheKey("GET", u3, "application/json") {
		t.Error("expected different filters to produce different keys")
	}
	if cacheKey("GET", u1, "application/json") == cacheKey("GET", u1, "text/csv") {
		t.Error("expected different cache key for different Accept")
	}
}

func TestSplitCached(t *testing.T) {
	ct, body := splitCached(joinCached("text/csv", []byte("a,b\n1,2\n")))
	if ct != "text/csv" || string(body) != "a,b\n1,2\n" {
		t.Errorf("unexpected split %q %q", ct, body)
	}
}

func TestEtagMatch(t *testing.T) {
	if !etagMatch("*", `W/"abc"`) {
		t.Error("expected wildcard to match")
	}
	if !etagMatch(`"x", "abc"`, `W/"abc"`) {
		t.Error("expected weak comparison in a list to match")
	}
	if etagMatch(`"x"`, `W/"abc"`) {
		t.Error("expected mismatch")
	}
}
