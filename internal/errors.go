package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation         ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound           ErrorType = "NOT_FOUND"
	ErrorTypeConflict           ErrorType = "CONFLICT"
	ErrorTypeUnauthorized       ErrorType = "UNAUTHORIZED"
	ErrorTypeInsufficientRights ErrorType = "INSUFFICIENT_RIGHTS"
	ErrorTypeInternal           ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeInvalidCategory         ErrorCode = "INVALID_CATEGORY"
	ErrCodeOutsideBoundary         ErrorCode = "LOCATION_OUTSIDE_BOUNDARY"
	ErrCodePhotoRequired           ErrorCode = "PHOTO_REQUIRED"
	ErrCodeReportNotFound          ErrorCode = "REPORT_NOT_FOUND"
	ErrCodeInvalidReportStatus     ErrorCode = "INVALID_REPORT_STATUS"
	ErrCodeRejectionReasonRequired ErrorCode = "REJECTION_REASON_REQUIRED"
	ErrCodeNoCategoryMapping       ErrorCode = "NO_CATEGORY_MAPPING"
	ErrCodeNoEligibleStaff         ErrorCode = "NO_ELIGIBLE_STAFF"

	ErrCodeUserNotFound           ErrorCode = "USER_NOT_FOUND"
	ErrCodeDuplicateUser          ErrorCode = "DUPLICATE_USER"
	ErrCodeDepartmentNotFound     ErrorCode = "DEPARTMENT_NOT_FOUND"
	ErrCodeDepartmentRoleNotFound ErrorCode = "DEPARTMENT_ROLE_NOT_FOUND"
	ErrCodeRoleNotGrantable       ErrorCode = "ROLE_NOT_GRANTABLE"
	ErrCodeCitizenNotPromotable   ErrorCode = "CITIZEN_NOT_PROMOTABLE"
	ErrCodeRoleNotHeld            ErrorCode = "ROLE_NOT_HELD"
	ErrCodeRoleAlreadyHeld        ErrorCode = "ROLE_ALREADY_HELD"
	ErrCodeLastRole               ErrorCode = "LAST_ROLE"
	ErrCodeEmptyRoleList          ErrorCode = "EMPTY_ROLE_LIST"

	ErrCodeCompanyNotFound   ErrorCode = "COMPANY_NOT_FOUND"
	ErrCodeCompanyInUse      ErrorCode = "COMPANY_IN_USE"
	ErrCodeDuplicateCompany  ErrorCode = "DUPLICATE_COMPANY"
	ErrCodeCompanyRequired   ErrorCode = "COMPANY_REQUIRED"
	ErrCodeCompanyNotAllowed ErrorCode = "COMPANY_NOT_ALLOWED"
	ErrCodeWrongRole         ErrorCode = "WRONG_ROLE"
	ErrCodeCategoryMismatch  ErrorCode = "CATEGORY_MISMATCH"

	ErrCodeMessageEmpty         ErrorCode = "MESSAGE_EMPTY"
	ErrCodeMessageTooLong       ErrorCode = "MESSAGE_TOO_LONG"
	ErrCodeNotificationNotFound ErrorCode = "NOTIFICATION_NOT_FOUND"
	ErrCodeNotParticipant       ErrorCode = "NOT_PARTICIPANT"

	ErrCodeInsufficientRights ErrorCode = "INSUFFICIENT_RIGHTS"
	ErrCodeNotAuthenticated   ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause returns a copy so the package-level sentinels stay immutable.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewInsufficientRightsError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeInsufficientRights,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrReportNotFound         = NewNotFoundError("Report not found", ErrCodeReportNotFound)
	ErrNotificationNotFound   = NewNotFoundError("Notification not found", ErrCodeNotificationNotFound)
	ErrUserNotFound           = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrDepartmentNotFound     = NewNotFoundError("Department not found", ErrCodeDepartmentNotFound)
	ErrDepartmentRoleNotFound = NewNotFoundError("Department role not found", ErrCodeDepartmentRoleNotFound)
	ErrCompanyNotFound        = NewNotFoundError("Company not found", ErrCodeCompanyNotFound)

	ErrNotAuthenticated   = NewUnauthorizedError("Not authenticated", ErrCodeNotAuthenticated)
	ErrAccessDenied       = NewInsufficientRightsError("Access denied", ErrCodeInsufficientRights)
	ErrInvalidCredentials = NewUnauthorizedError("Invalid username or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewInsufficientRightsError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)

	ErrLastRole         = NewValidationError("cannot remove last role", ErrCodeLastRole)
	ErrRoleNotHeld      = NewNotFoundError("User does not hold this role", ErrCodeRoleNotHeld)
	ErrRoleNotGrantable = NewValidationError("Citizen and Administrator roles cannot be granted", ErrCodeRoleNotGrantable)
	ErrDuplicateUser    = NewConflictError("Username or email already in use", ErrCodeDuplicateUser)
	ErrDuplicateCompany = NewConflictError("Company name already in use", ErrCodeDuplicateCompany)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, struct {
		Error *AppError `json:"error"`
	}{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
