// Package auth resolves the caller of a request from a bearer token and
// enforces route roles.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prudhivi99/guitar-store/internal/service"
)

// CookieName is the cookie the browser pages store the token in.
const CookieName = "token"

// Both match service.ErrUnauthorized.
var (
	ErrNoToken      = fmt.Errorf("%w: no token provided", service.ErrUnauthorized)
	ErrInvalidToken = fmt.Errorf("%w: invalid or expired token", service.ErrUnauthorized)
)

// Caller is the verified identity behind a request.
type Caller struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// HasRole reports whether the caller satisfies role. An empty role only
// requires a verified caller.
func (c *Caller) HasRole(role string) bool {
	return role == "" || c.Role == role
}

// Verifier checks a token with the identity provider. It returns an error
// matching service.ErrUnauthorized when the token is invalid or expired.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Caller, error)
}

type ctxKey struct{}

const ginCallerKey = "auth.caller"

// WithCaller returns a copy of ctx carrying c.
func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the caller stored by the middleware, if any.
func FromContext(ctx context.Context) (*Caller, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Caller)
	return c, ok && c != nil
}

// CallerFrom returns the caller of a gin request.
func CallerFrom(c *gin.Context) (*Caller, bool) {
	v, ok := c.Get(ginCallerKey)
	if !ok {
		return nil, false
	}
	caller, ok := v.(*Caller)
	return caller, ok && caller != nil
}

// Token extracts the bearer token from the Authorization header, falling
// back to the token cookie.
func Token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if ck, err := r.Cookie(CookieName); err == nil {
		return ck.Value
	}
	return ""
}

// Require rejects requests without a valid token with 401 and requests whose
// caller lacks role with 403.
func Require(v Verifier, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := resolve(c, v)
		if err == nil && caller == nil {
			err = ErrNoToken
		}
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if !caller.HasRole(role) {
			_ = c.Error(service.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Optional attaches the caller when a valid token is present and never
// rejects the request.
func Optional(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, _ = resolve(c, v)
		c.Next()
	}
}

// resolve verifies the request token and stores the caller in both the gin
// context and the request context. It returns (nil, nil) without a token.
func resolve(c *gin.Context, v Verifier) (*Caller, error) {
	if caller, ok := CallerFrom(c); ok {
		return caller, nil
	}
	token := Token(c.Request)
	if token == "" {
		return nil, nil
	}
	caller, err := v.Verify(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	c.Set(ginCallerKey, caller)
	c.Request = c.Request.WithContext(WithCaller(c.Request.Context(), caller))
	return caller, nil
}
