package tasksdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes written in the "error" field.
const (
	ErrorCodeInvalidRequest        = "invalid_request"
	ErrorCodeValidation            = "validation_error"
	ErrorCodeUnauthorized          = "unauthorized"
	ErrorCodeInvalidToken          = "invalid_token"
	ErrorCodeInvalidCredentials    = "invalid_credentials"
	ErrorCodeAccountInactive       = "account_inactive"
	ErrorCodeOrganizationSuspended = "organization_suspended"
	ErrorCodeEmailNotVerified      = "email_not_verified"
	ErrorCodeMFARequired           = "mfa_required"
	ErrorCodeForbidden             = "forbidden"
	ErrorCodeNotFound              = "not_found"
	ErrorCodeEmailTaken            = "email_taken"
	ErrorCodeAlreadyMember         = "already_member"
	ErrorCodeSeatLimitReached      = "seat_limit_reached"
	ErrorCodeLastAdmin             = "last_admin"
	ErrorCodeConflict              = "conflict"
	ErrorCodeRateLimited           = "rate_limit_exceeded"
	ErrorCodeServerError           = "server_error"
)

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
	Details     map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Description)
}

// IsCode reports whether err is an APIError carrying code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// StatusCode returns the HTTP status of an APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func parseErrorResponse(resp *http.Response, body []byte) error {
	var v ValidationErrorResponse
	if err := json.Unmarshal(body, &v); err == nil && v.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        v.Error,
			Description: v.ErrorDescription,
			Details:     v.Details,
		}
	}
	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
