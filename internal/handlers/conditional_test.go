package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/x/etag"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/guitar-store/internal/metrics"
)

func newConditionalEngine(m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Conditional(m), Elapsed())
	r.GET("/api/things", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": c.DefaultQuery("name", "strat")})
	})
	r.GET("/api/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "nope"})
	})
	r.POST("/api/things", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"name": "strat"})
	})
	r.DELETE("/api/things", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte(`{"name":"strat"}`))
	assert.Equal(t, a, Fingerprint([]byte(`{"name":"strat"}`)))
	assert.NotEqual(t, a, Fingerprint([]byte(`{"name":"Strat"}`)))
	assert.Equal(t, "0", Fingerprint(nil))
	// CRC-32 check value.
	assert.Equal(t, "cbf43926", Fingerprint([]byte("123456789")))
}

func TestConditionalNotModified(t *testing.T) {
	m := metrics.New()
	r := newConditionalEngine(m)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/things", nil))
	require.Equal(t, http.StatusOK, first.Code)

	tag := first.Header().Get("ETag")
	assert.Equal(t, Fingerprint(first.Body.Bytes()), tag)
	assert.Equal(t, "public, max-age=3600", first.Header().Get("Cache-Control"))
	assert.NotEmpty(t, first.Header().Get("X-Elapsed-Time"))

	req := httptest.NewRequest(http.MethodGet, "/api/things", nil)
	etag.Request(req, tag)
	second := httptest.NewRecorder()
	r.ServeHTTP(second, req)

	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Empty(t, second.Body.String())
	assert.Equal(t, tag, second.Header().Get("ETag"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.NotModified))
}

func TestConditionalChangedBody(t *testing.T) {
	r := newConditionalEngine(nil)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/things", nil))

	req := httptest.NewRequest(http.MethodGet, "/api/things?name=tele", nil)
	req.Header.Set("If-None-Match", first.Header().Get("ETag"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tele")
	assert.NotEqual(t, first.Header().Get("ETag"), w.Header().Get("ETag"))
}

func TestConditionalSkipsUnsafeAndFailed(t *testing.T) {
	r := newConditionalEngine(nil)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"post", http.MethodPost, "/api/things", http.StatusCreated},
		{"delete", http.MethodDelete, "/api/things", http.StatusNoContent},
		{"not found", http.MethodGet, "/api/missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("If-None-Match", "*")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Empty(t, w.Header().Get("ETag"))
			assert.Empty(t, w.Header().Get("Cache-Control"))
		})
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{"abc", true},
		{`"abc"`, true},
		{`W/"abc"`, true},
		{`"zzz", "abc"`, true},
		{"*", true},
		{"abcd", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matches(tt.header, "abc"), tt.header)
	}
}
