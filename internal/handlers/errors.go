package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/navidad-api/internal/auth"
	"github.com/gravadigital/navidad-api/internal/domain/vote"
	"github.com/gravadigital/navidad-api/internal/response"
)

// errorResponse maps the error taxonomy onto status codes. data travels
// with the error, e.g. the phase an AlreadyVoted caller should move to.
func errorResponse(c *gin.Context, l *log.Logger, err error, data any) {
	status, kind := classify(err)
	if status >= http.StatusInternalServerError {
		l.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	response.ErrorWithKind(c, status, kind, message(err), data)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, vote.ErrInvalidOption):
		return http.StatusBadRequest, "invalid_option"
	case errors.Is(err, vote.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, vote.ErrAlreadyVoted):
		return http.StatusConflict, "already_voted"
	case errors.Is(err, vote.ErrPermissionDenied):
		return http.StatusForbidden, "permission_denied"
	case errors.Is(err, vote.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, vote.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func message(err error) string {
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return "Incorrect name or password."
	}
	return vote.Message(err)
}
