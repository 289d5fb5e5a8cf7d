package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/storelane/catalog-api/internal/config"
)

func cacheKeyFor(t *testing.T, target string) string {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	return cacheKeyFrom(config.CacheConfig{Prefix: "catalog"}, c)
}

func TestCacheKeySeparatesSlugsAndQueries(t *testing.T) {
	books := cacheKeyFor(t, "/api/categories/books")
	music := cacheKeyFor(t, "/api/categories/music")
	if books == music {
		t.Error("different slugs must not share a cache entry")
	}

	p1 := cacheKeyFor(t, "/api/categories?page=1")
	p2 := cacheKeyFor(t, "/api/categories?page=2")
	if p1 == p2 {
		t.Error("different queries must not share a cache entry")
	}

	if again := cacheKeyFor(t, "/api/categories/books"); again != books {
		t.Error("key is not deterministic for the same request")
	}
}
