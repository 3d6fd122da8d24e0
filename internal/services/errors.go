package services

import "fmt"

type WorkflowErrorType string

const (
	ErrInvalidInput       WorkflowErrorType = "INVALID_INPUT"
	ErrNotFound           WorkflowErrorType = "NOT_FOUND"
	ErrInvalidToken       WorkflowErrorType = "INVALID_TOKEN"
	ErrExpiredToken       WorkflowErrorType = "TOKEN_EXPIRED"
	ErrAlreadyFinalized   WorkflowErrorType = "ALREADY_FINALIZED"
	ErrInvalidExpiry      WorkflowErrorType = "INVALID_EXPIRY"
	ErrAlreadyRegistered  WorkflowErrorType = "ALREADY_REGISTERED"
	ErrRegistrationClosed WorkflowErrorType = "REGISTRATION_CLOSED"
	ErrNotEligible        WorkflowErrorType = "NOT_ELIGIBLE"
	ErrBadgeTaken         WorkflowErrorType = "BADGE_TAKEN"
	ErrFieldLocked        WorkflowErrorType = "FIELD_LOCKED"
	ErrPermissionDenied   WorkflowErrorType = "PERMISSION_DENIED"
	ErrEmailDelivery      WorkflowErrorType = "EMAIL_DELIVERY"
	ErrCertExtraction     WorkflowErrorType = "CERT_EXTRACTION"
	ErrDatabaseError      WorkflowErrorType = "DATABASE_ERROR"
)

// WorkflowError carries a machine-readable code so handlers can map each
// failure kind to its own user-facing message instead of a generic one.
type WorkflowError struct {
	Message string            `json:"message"`
	Code    WorkflowErrorType `json:"code"`
	Details error             `json:"details,omitempty"`
}

func (e *WorkflowError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s [%s]: %v", e.Message, e.Code, e.Details)
	}
	return fmt.Sprintf("%s [%s]", e.Message, e.Code)
}

func (e *WorkflowError) Unwrap() error {
	return e.Details
}

func NewWorkflowError(message string, code WorkflowErrorType, details error) *WorkflowError {
	return &WorkflowError{
		Message: message,
		Code:    code,
		Details: details,
	}
}

func IsWorkflowError(err error) bool {
	_, ok := err.(*WorkflowError)
	return ok
}

func GetWorkflowErrorCode(err error) WorkflowErrorType {
	if werr, ok := err.(*WorkflowError); ok {
		return werr.Code
	}
	return ""
}
