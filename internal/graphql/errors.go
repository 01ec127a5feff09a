package graphql

import (
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/prudhivi99/guitar-store/internal/auth"
	"github.com/prudhivi99/guitar-store/internal/service"
)

// Error codes reported in extensions.code.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeUpstream        = "UPSTREAM_UNAVAILABLE"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// toGraphQLError maps service errors the same way the REST error mapper
// does. Unexpected errors are logged and hidden.
func toGraphQLError(err error, logger *slog.Logger) *gqlerror.Error {
	var (
		notFound   *service.NotFoundError
		invalid    *service.ValidationError
		validation validator.ValidationErrors
	)
	code, msg := CodeInternal, "Internal server error"
	switch {
	case errors.Is(err, errIntrospection):
		code, msg = CodeBadUserInput, err.Error()
	case errors.As(err, &notFound):
		code, msg = CodeNotFound, notFound.Error()
	case errors.As(err, &invalid):
		code, msg = CodeBadUserInput, invalid.Error()
	case errors.As(err, &validation):
		code, msg = CodeBadUserInput, validationMessage(validation)
	case errors.Is(err, auth.ErrNoToken):
		code, msg = CodeUnauthenticated, "No token provided"
	case errors.Is(err, service.ErrUnauthorized):
		code, msg = CodeUnauthenticated, "Invalid or expired token"
	case errors.Is(err, service.ErrForbidden):
		code, msg = CodeForbidden, "Insufficient permissions"
	case errors.Is(err, service.ErrUpstream):
		code, msg = CodeUpstream, err.Error()
	default:
		logger.Error("graphql resolver failed", "error", err)
	}
	return &gqlerror.Error{
		Err:        err,
		Message:    msg,
		Extensions: map[string]any{"code": code},
	}
}
