package services

import "errors"

// ErrorKind is the stable machine-readable classification carried by every
// engine error. Controllers map kinds to HTTP statuses; collaborators match
// on kinds, never on messages.
type ErrorKind string

const (
	KindNotFound                   ErrorKind = "NOT_FOUND"
	KindCapacityExceeded           ErrorKind = "CAPACITY_EXCEEDED"
	KindDuplicateEnrollment        ErrorKind = "DUPLICATE_ENROLLMENT"
	KindInvalidEnrollmentStructure ErrorKind = "INVALID_ENROLLMENT_STRUCTURE"
	KindSequentialViolation        ErrorKind = "SEQUENTIAL_VIOLATION"
	KindInvalidPayment             ErrorKind = "INVALID_PAYMENT"
	KindInvalidAssessment          ErrorKind = "INVALID_ASSESSMENT"
	KindMembershipAlreadyActive    ErrorKind = "MEMBERSHIP_ALREADY_ACTIVE"
	KindInvalidTierTransition      ErrorKind = "INVALID_TIER_TRANSITION"
	KindInvalidTransition          ErrorKind = "INVALID_TRANSITION"
	KindConfigurationError         ErrorKind = "CONFIGURATION_ERROR"
)

// ServiceError is the engine's error type. Details carries structured
// context where callers need it (e.g. blocking lesson IDs on a
// sequential-unlock violation).
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Details interface{}
}

func (e *ServiceError) Error() string {
	return e.Message
}

func newError(kind ErrorKind, message string) *ServiceError {
	return &ServiceError{Kind: kind, Message: message}
}

// IsKind reports whether err is a ServiceError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Kind == kind
	}
	return false
}

// AsServiceError unwraps err into a *ServiceError, or nil.
func AsServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}
