package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeAccessDenied       ErrorCode = "ACCESS_DENIED"
	ErrCodeCrossTenant        ErrorCode = "CROSS_TENANT_ACCESS"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	ErrCodeChurchNotFound        ErrorCode = "CHURCH_NOT_FOUND"
	ErrCodeChurchNotApproved     ErrorCode = "CHURCH_NOT_APPROVED"
	ErrCodeChurchAlreadyActive   ErrorCode = "CHURCH_ALREADY_ACTIVE"
	ErrCodeChurchAlreadyInactive ErrorCode = "CHURCH_ALREADY_INACTIVE"
	ErrCodeChurchAlreadyApproved ErrorCode = "CHURCH_ALREADY_APPROVED"

	ErrCodeLevelNotFound  ErrorCode = "HIERARCHY_LEVEL_NOT_FOUND"
	ErrCodeLevelNotActive ErrorCode = "HIERARCHY_LEVEL_NOT_ACTIVE"

	ErrCodeLeadNotFound           ErrorCode = "CHURCH_LEAD_NOT_FOUND"
	ErrCodeAlreadyMapped          ErrorCode = "CHURCH_LEAD_ALREADY_MAPPED"
	ErrCodeMappingNotActive       ErrorCode = "CHURCH_LEAD_NOT_ACTIVE"
	ErrCodeMappingAlreadyApproved ErrorCode = "CHURCH_LEAD_ALREADY_APPROVED"
	ErrCodeChurchIsBranch         ErrorCode = "CHURCH_IS_BRANCH"

	ErrCodeMemberNotFound        ErrorCode = "MEMBER_NOT_FOUND"
	ErrCodeMemberAlreadyActive   ErrorCode = "MEMBER_ALREADY_ACTIVE"
	ErrCodeMemberAlreadyInactive ErrorCode = "MEMBER_ALREADY_INACTIVE"
	ErrCodeNotABranch            ErrorCode = "CHURCH_NOT_A_BRANCH"
	ErrCodeDuplicateEntry        ErrorCode = "DUPLICATE_ENTRY"
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
	return &AppError{
		Type:       e.Type,
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Cause:      cause,
	}
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

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
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

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInvalidStateError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
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
