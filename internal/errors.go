package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeUnauthenticated ErrorType = "UNAUTHENTICATED"
	ErrorTypeForbidden       ErrorType = "FORBIDDEN"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeStorage         ErrorType = "STORAGE_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeMissingPermission  ErrorCode = "MISSING_PERMISSION"
	ErrCodeNoRoleAssigned     ErrorCode = "NO_ROLE_ASSIGNED"

	ErrCodeUserNotFound           ErrorCode = "USER_NOT_FOUND"
	ErrCodeUserAlreadyExists      ErrorCode = "USER_ALREADY_EXISTS"
	ErrCodeTeamNotFound           ErrorCode = "TEAM_NOT_FOUND"
	ErrCodeTeamAlreadyExists      ErrorCode = "TEAM_ALREADY_EXISTS"
	ErrCodeRoleNotFound           ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeRoleAlreadyExists      ErrorCode = "ROLE_ALREADY_EXISTS"
	ErrCodeRolePermNotFound       ErrorCode = "ROLE_PERMISSION_NOT_FOUND"
	ErrCodeRolePermAlreadyExists  ErrorCode = "ROLE_PERMISSION_ALREADY_EXISTS"
	ErrCodeReferencedByOthers     ErrorCode = "REFERENCED_BY_OTHER_RECORDS"
	ErrCodeItemTypeNotFound       ErrorCode = "ITEM_TYPE_NOT_FOUND"
	ErrCodeItemBrandNotFound      ErrorCode = "ITEM_BRAND_NOT_FOUND"
	ErrCodeItemNotFound           ErrorCode = "ITEM_NOT_FOUND"
	ErrCodeRequisitionNotFound    ErrorCode = "REQUISITION_NOT_FOUND"
	ErrCodeInvalidTransition      ErrorCode = "INVALID_REQUISITION_STATUS"
	ErrCodeCatalogAlreadyExists   ErrorCode = "CATALOG_ENTRY_ALREADY_EXISTS"
	ErrCodeStorageFailure         ErrorCode = "STORAGE_FAILURE"
	ErrCodeImmutableField         ErrorCode = "IMMUTABLE_FIELD"
	ErrCodeMissingRequiredField   ErrorCode = "MISSING_REQUIRED_FIELD"
	ErrCodePermissionUnknownValue ErrorCode = "UNKNOWN_PERMISSION"
)

type AppError struct {
	Type       ErrorType `json:"type"`
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
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

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
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

func NewUnauthenticatedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthenticated,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewConflictError maps to 400: the API contract surfaces uniqueness and
// FK violations as bad requests, not 409s.
func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewStorageError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeStorage,
		Code:       ErrCodeStorageFailure,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrInvalidCredentials = NewUnauthenticatedError("invalid username or password", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthenticatedError("could not validate credentials", ErrCodeInvalidToken)
	ErrNoRoleAssigned     = NewUnauthenticatedError("user has no role assigned", ErrCodeNoRoleAssigned)
	ErrForbidden          = NewForbiddenError("you do not have the necessary permissions", ErrCodeMissingPermission)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType `json:"type"`
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
	})
}
