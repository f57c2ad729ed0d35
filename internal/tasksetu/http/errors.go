package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/service"
	"github.com/aussiebroadwan/tasksetu/pkg/httpx"
	"github.com/aussiebroadwan/tasksetu/pkg/slogx"
	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
)

// errorClass maps a service error to its HTTP status and error code.
type errorClass struct {
	err    error
	status int
	code   string
}

// validationErrors carry the request field they complain about.
var validationErrors = []struct {
	err   error
	field string
}{
	{domain.ErrInvalidEmail, "email"},
	{domain.ErrWeakPassword, "password"},
	{domain.ErrInvalidName, "name"},
	{domain.ErrInvalidOrgName, "name"},
	{domain.ErrInvalidSlug, "slug"},
	{domain.ErrInvalidOrgType, "type"},
	{domain.ErrInvalidOrgStatus, "status"},
	{domain.ErrInvalidSeatCount, "seats"},
	{domain.ErrAmbiguousRole, "roles"},
	{service.ErrInvalidRole, "role"},
}

var errorClasses = []errorClass{
	{service.ErrInvalidRequest, http.StatusBadRequest, tasksdk.ErrorCodeInvalidRequest},
	{service.ErrInvalidTOTPCode, http.StatusBadRequest, tasksdk.ErrorCodeInvalidRequest},

	{service.ErrInvalidCredentials, http.StatusUnauthorized, tasksdk.ErrorCodeInvalidCredentials},
	{service.ErrMFARequired, http.StatusUnauthorized, tasksdk.ErrorCodeMFARequired},
	{service.ErrBootstrapUnauthorized, http.StatusUnauthorized, tasksdk.ErrorCodeUnauthorized},

	{service.ErrAccountInactive, http.StatusForbidden, tasksdk.ErrorCodeAccountInactive},
	{service.ErrOrganizationSuspended, http.StatusForbidden, tasksdk.ErrorCodeOrganizationSuspended},
	{service.ErrEmailNotVerified, http.StatusForbidden, tasksdk.ErrorCodeEmailNotVerified},
	{service.ErrLastAdmin, http.StatusForbidden, tasksdk.ErrorCodeLastAdmin},
	{service.ErrForbidden, http.StatusForbidden, tasksdk.ErrorCodeForbidden},
	{service.ErrIndividualNotAllowed, http.StatusForbidden, tasksdk.ErrorCodeForbidden},
	{service.ErrSignupDisabled, http.StatusForbidden, tasksdk.ErrorCodeForbidden},

	{service.ErrUserNotFound, http.StatusNotFound, tasksdk.ErrorCodeNotFound},
	{service.ErrOrganizationNotFound, http.StatusNotFound, tasksdk.ErrorCodeNotFound},
	{service.ErrBootstrapDisabled, http.StatusNotFound, tasksdk.ErrorCodeNotFound},
	{service.ErrInvalidToken, http.StatusNotFound, tasksdk.ErrorCodeInvalidToken},

	{service.ErrEmailTaken, http.StatusConflict, tasksdk.ErrorCodeEmailTaken},
	{service.ErrAlreadyMember, http.StatusConflict, tasksdk.ErrorCodeAlreadyMember},
	{service.ErrSeatLimitReached, http.StatusConflict, tasksdk.ErrorCodeSeatLimitReached},
	{service.ErrSlugTaken, http.StatusConflict, tasksdk.ErrorCodeConflict},
	{service.ErrNotPending, http.StatusConflict, tasksdk.ErrorCodeConflict},
	{service.ErrUserPending, http.StatusConflict, tasksdk.ErrorCodeConflict},
	{service.ErrBootstrapAlready, http.StatusConflict, tasksdk.ErrorCodeConflict},
	{service.ErrMFAAlreadyEnabled, http.StatusConflict, tasksdk.ErrorCodeConflict},
	{service.ErrMFANotEnabled, http.StatusConflict, tasksdk.ErrorCodeConflict},
	{service.ErrMFANotEnrolled, http.StatusConflict, tasksdk.ErrorCodeConflict},
}

// classify returns the status, code and client-safe message for err.
// Unknown errors are server errors.
func classify(err error) (int, string, string) {
	for _, v := range validationErrors {
		if errors.Is(err, v.err) {
			return http.StatusBadRequest, tasksdk.ErrorCodeValidation, v.err.Error()
		}
	}
	for _, c := range errorClasses {
		if errors.Is(err, c.err) {
			return c.status, c.code, c.err.Error()
		}
	}
	return http.StatusInternalServerError, tasksdk.ErrorCodeServerError, "Internal server error"
}

// writeServiceError writes err in the standard envelope. Validation errors
// name the offending field in details. what describes the failed operation
// in the server log.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, what string) {
	status, code, desc := classify(err)
	if status == http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error(what, slog.Any("error", err))
		httpx.WriteError(w, status, code, desc)
		return
	}

	if code == tasksdk.ErrorCodeValidation {
		details := map[string]string{}
		for _, v := range validationErrors {
			if errors.Is(err, v.err) {
				details[v.field] = v.err.Error()
			}
		}
		httpx.WriteJSON(w, status, tasksdk.ValidationErrorResponse{
			Error:            code,
			ErrorDescription: "validation failed for some fields",
			Details:          details,
		})
		return
	}
	httpx.WriteError(w, status, code, desc)
}

// writeTokenError answers a rejected reset or verification token. Unlike
// invite tokens these are reported as bad requests.
func writeTokenError(w http.ResponseWriter, r *http.Request, err error, what string) {
	if errors.Is(err, service.ErrInvalidToken) {
		httpx.WriteError(w, http.StatusBadRequest, tasksdk.ErrorCodeInvalidToken, err.Error())
		return
	}
	writeServiceError(w, r, err, what)
}

func writeBadJSON(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusBadRequest, tasksdk.ErrorCodeInvalidRequest, "Request body must be valid JSON")
}
