package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/komsit37/yqdash/pkg/yqdash/catalog"
	"github.com/komsit37/yqdash/pkg/yqdash/handle"
	"github.com/komsit37/yqdash/pkg/yqdash/session"
	"github.com/komsit37/yqdash/pkg/yqdash/yahoo"
)

// APIResponse is the envelope every route answers with.
type APIResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ValidationError describes one rejected request field.
type ValidationError struct {
	Code    string         `json:"code,omitempty"`
	Field   string         `json:"field,omitempty"`
	Message string         `json:"message,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
}

// AppError is an error with the HTTP status it maps to.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func newAppError(code string, status int, err error) *AppError {
	return &AppError{Code: code, Message: err.Error(), Status: status, Err: err}
}

// toAppError maps domain errors to HTTP statuses. Anything unrecognized came
// from upstream.
func toAppError(err error) *AppError {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, catalog.ErrUnknownEndpoint):
		return newAppError("ERR_UNKNOWN_ENDPOINT", http.StatusNotFound, err)
	case errors.Is(err, handle.ErrNotExposed):
		return newAppError("ERR_NOT_EXPOSED", http.StatusInternalServerError, err)
	case errors.Is(err, handle.ErrArgumentMismatch):
		return newAppError("ERR_ARGUMENT_MISMATCH", http.StatusBadRequest, err)
	case errors.Is(err, session.ErrNotConfigured):
		return newAppError("ERR_BAD_REQUEST", http.StatusBadRequest, err)
	case errors.Is(err, yahoo.ErrPremiumCredentials):
		return newAppError("ERR_UNAUTHORIZED", http.StatusUnauthorized, err)
	default:
		return newAppError("ERR_UPSTREAM", http.StatusBadGateway, err)
	}
}

func dataResponse(c echo.Context, status int, data any) error {
	return c.JSON(status, APIResponse{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
	})
}

func successResponse(c echo.Context, data any) error {
	return dataResponse(c, http.StatusOK, data)
}

func badRequestResponse(c echo.Context, errs []ValidationError) error {
	return dataResponse(c, http.StatusBadRequest, errs)
}

func appErrorResponse(c echo.Context, err error) error {
	appErr := toAppError(err)
	return dataResponse(c, appErr.Status, []*AppError{appErr})
}
