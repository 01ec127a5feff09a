package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/prudhivi99/guitar-store/internal/auth"
	"github.com/prudhivi99/guitar-store/internal/config"
	"github.com/prudhivi99/guitar-store/internal/service"
)

const identityScope = "https://www.googleapis.com/auth/identitytoolkit"

// IdentityClient talks to the identity provider's REST API. Token lookups and
// sign-ups use the public API key; role claims are written with the service
// account credentials when those are configured.
type IdentityClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	adminHTTP  *http.Client
}

// NewIdentityClient builds the client. A credentials file enables the admin
// client used for role claims; without it the public client is used, which
// is enough for the local emulator.
func NewIdentityClient(ctx context.Context, cfg config.Identity) (*IdentityClient, error) {
	c := &IdentityClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	c.adminHTTP = c.httpClient

	if cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read identity credentials: %w", err)
		}
		creds, err := googleoauth.CredentialsFromJSON(ctx, data, identityScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse identity credentials: %w", err)
		}
		admin := oauth2.NewClient(ctx, creds.TokenSource)
		admin.Timeout = 10 * time.Second
		c.adminHTTP = admin
	}
	return c, nil
}

// NewIdentityClientWithHTTP is used by tests to point the client at a fake
// provider.
func NewIdentityClientWithHTTP(baseURL, apiKey string, hc *http.Client) *IdentityClient {
	return &IdentityClient{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, httpClient: hc, adminHTTP: hc}
}

type providerError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type lookupResponse struct {
	Users []struct {
		LocalID          string `json:"localId"`
		Email            string `json:"email"`
		CustomAttributes string `json:"customAttributes"`
	} `json:"users"`
}

// Verify resolves an ID token to the caller it was issued for. The role comes
// from the account's custom claims.
func (c *IdentityClient) Verify(ctx context.Context, token string) (*auth.Caller, error) {
	var out lookupResponse
	err := c.call(ctx, c.httpClient, "accounts:lookup", map[string]string{"idToken": token}, &out)
	if err != nil {
		var pe *statusError
		if errors.As(err, &pe) && pe.status == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %s", service.ErrUnauthorized, pe.message)
		}
		return nil, &service.UpstreamError{Service: "identity provider", Err: err}
	}
	if len(out.Users) == 0 {
		return nil, service.ErrUnauthorized
	}

	u := out.Users[0]
	caller := &auth.Caller{UID: u.LocalID, Email: u.Email}
	if u.CustomAttributes != "" {
		var claims struct {
			Role string `json:"role"`
		}
		if err := json.Unmarshal([]byte(u.CustomAttributes), &claims); err == nil {
			caller.Role = claims.Role
		}
	}
	return caller, nil
}

// CreateAccount signs up an email/password account and returns its uid.
func (c *IdentityClient) CreateAccount(ctx context.Context, email, password string) (string, error) {
	var out struct {
		LocalID string `json:"localId"`
	}
	err := c.call(ctx, c.httpClient, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": false,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.LocalID, nil
}

// SetRole stores {"role": role} as the account's custom claims.
func (c *IdentityClient) SetRole(ctx context.Context, uid, role string) error {
	claims, err := json.Marshal(map[string]string{"role": role})
	if err != nil {
		return err
	}
	return c.call(ctx, c.adminHTTP, "accounts:update", map[string]string{
		"localId":          uid,
		"customAttributes": string(claims),
	}, nil)
}

type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("identity provider returned status %d: %s", e.status, e.message)
}

func (c *IdentityClient) call(ctx context.Context, hc *http.Client, method string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/%s", c.baseURL, method)
	if c.apiKey != "" {
		url += "?key=" + c.apiKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var pe providerError
		_ = json.NewDecoder(resp.Body).Decode(&pe)
		return &statusError{status: resp.StatusCode, message: pe.Error.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
