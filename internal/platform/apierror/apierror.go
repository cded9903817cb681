// Package apierror maps domain failures onto HTTP responses.
package apierror

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/safetynet/safetynet/internal/platform/agecalc"
	"github.com/safetynet/safetynet/internal/platform/memstore"
)

// ValidationError collects per-field request validation failures.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator accumulates field failures; Err returns nil when there are none.
type Validator struct {
	fields map[string]string
}

func (v *Validator) Add(field, msg string) {
	if v.fields == nil {
		v.fields = make(map[string]string)
	}
	if _, ok := v.fields[field]; !ok {
		v.fields[field] = msg
	}
}

// NotBlank records msg for field when value is empty or whitespace.
func (v *Validator) NotBlank(field, value, msg string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, msg)
	}
}

func (v *Validator) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

// Body is the JSON error payload.
type Body struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// FromBindError maps a failed c.Bind. A status raised while the body was
// read, such as 413 from the body limit, is kept even when the binder
// wrapped it in its own 400. Any other failure is a 400.
func FromBindError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		return echo.NewHTTPError(http.StatusBadRequest, Body{Message: err.Error()})
	}
	var inner *echo.HTTPError
	if he.Internal != nil && errors.As(he.Internal, &inner) {
		return inner
	}
	return he
}

// FromError converts err to an *echo.HTTPError whose status reflects the
// domain failure it wraps.
func FromError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, Body{Message: "validation failed", Fields: ve.Fields})
	case errors.Is(err, memstore.ErrAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, Body{Message: err.Error()})
	case errors.Is(err, memstore.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, Body{Message: err.Error()})
	case errors.Is(err, agecalc.ErrInvalidDateFormat):
		return echo.NewHTTPError(http.StatusBadRequest, Body{Message: err.Error()})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, Body{Message: "internal server error"}).SetInternal(err)
	}
}

// ErrorHandler renders every error returned from a handler as a JSON Body.
// Server errors are logged with the request id.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		he := FromError(err)

		body, ok := he.Message.(Body)
		if !ok {
			msg := http.StatusText(he.Code)
			if s, isStr := he.Message.(string); isStr && s != "" {
				msg = s
			}
			body = Body{Message: msg}
		}

		if he.Code >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			evt := logger.Error().Str("request_id", rid).Int("status", he.Code)
			if he.Internal != nil {
				evt = evt.Err(he.Internal)
			} else {
				evt = evt.Err(err)
			}
			evt.Msg("request failed")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(he.Code)
		} else {
			writeErr = c.JSON(he.Code, body)
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("write error response")
		}
	}
}
