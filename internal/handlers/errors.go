package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/prudhivi99/guitar-store/internal/auth"
	"github.com/prudhivi99/guitar-store/internal/models"
	"github.com/prudhivi99/guitar-store/internal/service"
)

var (
	// errNotNumeric is returned for a non-numeric :id path parameter.
	errNotNumeric = &service.ValidationError{Message: "Validation failed (numeric string is expected)"}
	errNoRoute    = errors.New("not found")
)

type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
	Message    string `json:"message"`
	Path       string `json:"path"`
}

// statusFor maps an error to its HTTP status and client-facing message.
func statusFor(err error) (int, string) {
	var (
		notFound   *service.NotFoundError
		invalid    *service.ValidationError
		pageErr    *models.PageError
		validation validator.ValidationErrors
	)
	switch {
	case errors.As(err, &pageErr):
		return http.StatusBadRequest, pageErr.Error()
	case errors.Is(err, errNoRoute):
		return http.StatusNotFound, "Not Found"
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Error()
	case errors.As(err, &invalid):
		return http.StatusBadRequest, invalid.Error()
	case errors.As(err, &validation):
		return http.StatusBadRequest, validationMessage(validation)
	case errors.Is(err, auth.ErrNoToken):
		return http.StatusUnauthorized, "No token provided"
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "Invalid or expired token"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "Insufficient permissions"
	case errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func validationMessage(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed on the '%s=%s' rule", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// bindError turns a request body decoding failure into a 400.
func bindError(err error) error {
	var validation validator.ValidationErrors
	if errors.As(err, &validation) {
		return validation
	}
	return &service.ValidationError{Message: err.Error()}
}

// ErrorMapper renders the last error recorded with c.Error. API requests get
// a JSON body, page requests the HTML error page.
func ErrorMapper(logger *slog.Logger, html bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status, msg := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"status", status,
				"error", err,
				"request_id", RequestIDFromContext(c.Request.Context()),
			)
		}

		if c.Writer.Written() {
			return
		}

		body := errorBody{
			StatusCode: status,
			Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
			Message:    msg,
			Path:       c.Request.URL.Path,
		}
		if html && wantsHTML(c.Request) {
			c.HTML(status, "error.tmpl", gin.H{
				"Title":      http.StatusText(status),
				"StatusCode": status,
				"Message":    msg,
			})
			return
		}
		c.JSON(status, body)
	}
}

// isAPIRequest mirrors how clients tell the JSON API apart from pages.
func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html") && !isAPIRequest(r)
}
