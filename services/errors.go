package services

import "fmt"

// Error codes surfaced alongside HTTP statuses so the frontend can explain
// exactly which precondition failed.
const (
	CodeValidation        = "validation_error"
	CodeInvalidState      = "invalid_state"
	CodeInsufficientStock = "insufficient_stock"
	CodeNotFound          = "not_found"
	CodeExternalService   = "external_service_error"
	CodeInternal          = "internal_error"
)

// ServiceError is a typed error with an HTTP status code and a stable
// machine-readable code.
type ServiceError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ServiceError) Error() string { return e.Message }

func validationError(format string, args ...interface{}) *ServiceError {
	return &ServiceError{StatusCode: 400, Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// invalidStateError names both the current and the required status, so the
// UI can explain why a button is rejected.
func invalidStateError(current string, required ...string) *ServiceError {
	return &ServiceError{
		StatusCode: 409,
		Code:       CodeInvalidState,
		Message:    fmt.Sprintf("request is %s, operation requires status %v", current, required),
	}
}

func insufficientStockError(itemName string, available, requested int) *ServiceError {
	return &ServiceError{
		StatusCode: 409,
		Code:       CodeInsufficientStock,
		Message:    fmt.Sprintf("%s has %d units available, %d requested", itemName, available, requested),
	}
}

func notFoundError(what string) *ServiceError {
	return &ServiceError{StatusCode: 404, Code: CodeNotFound, Message: what + " not found"}
}

func internalError(message string) *ServiceError {
	return &ServiceError{StatusCode: 500, Code: CodeInternal, Message: message}
}
