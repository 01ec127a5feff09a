package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/prudhivi99/guitar-store/internal/service"
)

type stubVerifier map[string]*Caller

func (s stubVerifier) Verify(_ context.Context, token string) (*Caller, error) {
	if token == "down" {
		return nil, &service.UpstreamError{Service: "identity provider", Err: errors.New("timeout")}
	}
	c, ok := s[token]
	if !ok {
		return nil, service.ErrUnauthorized
	}
	return c, nil
}

var verifier = stubVerifier{
	"admin-token": {UID: "u1", Email: "admin@example.com", Role: "admin"},
	"user-token":  {UID: "u2", Email: "user@example.com", Role: "user"},
}

// statusFromErrors stands in for the API error mapper.
func statusFromErrors(c *gin.Context) {
	c.Next()
	if len(c.Errors) == 0 {
		return
	}
	err := c.Errors.Last().Err
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.Status(http.StatusUnauthorized)
	case errors.Is(err, service.ErrForbidden):
		c.Status(http.StatusForbidden)
	case errors.Is(err, service.ErrUpstream):
		c.Status(http.StatusBadGateway)
	default:
		c.Status(http.StatusInternalServerError)
	}
}

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(statusFromErrors)
	r.GET("/x", mw, func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		fromCtx, _ := FromContext(c.Request.Context())
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		if fromCtx != caller {
			c.String(http.StatusInternalServerError, "request context out of sync")
			return
		}
		c.String(http.StatusOK, caller.Email)
	})
	return r
}

func do(r http.Handler, setup func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if setup != nil {
		setup(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func TestRequire(t *testing.T) {
	r := newRouter(Require(verifier, "admin"))

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
		body   string
	}{
		{"no token", nil, http.StatusUnauthorized, ""},
		{"invalid token", bearer("bogus"), http.StatusUnauthorized, ""},
		{"wrong role", bearer("user-token"), http.StatusForbidden, ""},
		{"admin", bearer("admin-token"), http.StatusOK, "admin@example.com"},
		{"cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: CookieName, Value: "admin-token"})
		}, http.StatusOK, "admin@example.com"},
		{"provider down", bearer("down"), http.StatusBadGateway, ""},
		{"basic scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic YWJj") }, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.setup)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestRequireAnyRole(t *testing.T) {
	r := newRouter(Require(verifier, ""))

	w := do(r, bearer("user-token"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user@example.com", w.Body.String())
}

func TestOptional(t *testing.T) {
	r := newRouter(Optional(verifier))

	assert.Equal(t, "anonymous", do(r, nil).Body.String())
	assert.Equal(t, "anonymous", do(r, bearer("bogus")).Body.String())
	assert.Equal(t, "user@example.com", do(r, bearer("user-token")).Body.String())
}

func TestToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, Token(req))

	req.Header.Set("Authorization", "bearer abc")
	assert.Equal(t, "abc", Token(req))
}

func TestRequireDistinguishesMissingFromInvalid(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var got error
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			got = c.Errors.Last().Err
		}
	})
	r.GET("/x", Require(verifier, "admin"), func(c *gin.Context) {})

	do(r, nil)
	assert.ErrorIs(t, got, ErrNoToken)

	do(r, bearer("bogus"))
	assert.ErrorIs(t, got, ErrInvalidToken)
	assert.ErrorIs(t, got, service.ErrUnauthorized)
}
