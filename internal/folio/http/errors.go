package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/folio/internal/folio/service"
	"github.com/aussiebroadwan/folio/pkg/authsdk"
	"github.com/aussiebroadwan/folio/pkg/httpx"
	"github.com/aussiebroadwan/folio/pkg/idx"
	"github.com/aussiebroadwan/folio/pkg/slogx"
)

// statusFor maps a service error kind to an HTTP status.
func statusFor(e *service.Error) int {
	switch e.Kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		// Registration collisions stay a plain 400 so the response does not
		// reveal which accounts exist.
		if errors.Is(e, service.ErrRegistrationFailed) {
			return http.StatusBadRequest
		}
		return http.StatusConflict
	case service.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError logs and renders err. The wrapped cause is logged but
// never sent to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	e := service.AsError(err)
	status := statusFor(e)

	l := slogx.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		l.Error("request failed", "kind", e.Kind, "err", e.Err)
	} else {
		l.Debug("request rejected", "kind", e.Kind, "message", e.Message)
	}

	code := string(e.Kind)
	if errors.Is(e, service.ErrRegistrationFailed) {
		// A duplicate identity reads like any other bad registration.
		code = authsdk.ErrorCodeValidation
	}

	httpx.WriteJSON(w, status, authsdk.ErrorResponse{
		Code:    code,
		Message: e.Message,
		Details: e.Details,
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	httpx.WriteJSON(w, http.StatusBadRequest, authsdk.ErrorResponse{
		Code:    authsdk.ErrorCodeInvalidBody,
		Message: message,
	})
}

// pathID reads a ULID path parameter. A malformed ID cannot name a stored
// record, so it answers 404 without a lookup.
func pathID(w http.ResponseWriter, r *http.Request, name, resource string) (string, bool) {
	id, err := idx.Parse(r.PathValue(name))
	if err != nil {
		httpx.WriteJSON(w, http.StatusNotFound, authsdk.ErrorResponse{
			Code:    authsdk.ErrorCodeNotFound,
			Message: resource + " not found",
		})
		return "", false
	}
	return id.String(), true
}
