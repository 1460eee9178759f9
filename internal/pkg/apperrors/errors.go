package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrInvalidFormat = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Action ledger errors
var (
	ErrDuplicateAction = errors.New("action already recorded for this target")
	ErrActionNotFound  = errors.New("action not found")
	ErrUnknownAction   = errors.New("unknown action kind")
)

// Counter errors
var (
	ErrUnknownCounter    = errors.New("unknown counter")
	ErrUnknownTargetKind = errors.New("unknown target kind")
	ErrUnknownActorKind  = errors.New("unknown actor kind")
)

// Content errors
var (
	ErrContentNotFound = errors.New("content not found")
	ErrSlugTaken       = errors.New("slug already in use")
)

// Comment errors
var (
	ErrCommentNotFound = errors.New("comment not found")
)

// Group errors
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrNotGroupMember      = errors.New("not a member of this group")
	ErrNotGroupManager     = errors.New("not a manager of this group")
	ErrAlreadyMember       = errors.New("already a member of this group")
	ErrGroupNotEmpty       = errors.New("group still has members")
	ErrCannotRemoveManager = errors.New("cannot remove a group manager")
	ErrCandidateNotFound   = errors.New("candidate user not found")
)

// Workflow errors
var (
	ErrProcessNotFound   = errors.New("process not found")
	ErrActivityNotFound  = errors.New("activity not found")
	ErrProcessFinalized  = errors.New("process already closed")
	ErrProcessNotPending = errors.New("process is not pending")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// Is returns whether target matches err or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
