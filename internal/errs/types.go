package errs

import "fmt"

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

// MalformedBackupError is returned when a backup document cannot be
// parsed or lacks its required top-level fields. Nothing has been
// written to the backend when it is returned.
type MalformedBackupError struct {
	ErrorMessage
	Err error
}

func (e *MalformedBackupError) Unwrap() error { return e.Err }

// CloudUnavailableError is returned when cloud storage is not configured
// for this deployment.
type CloudUnavailableError struct {
	ErrorMessage
}

type DatabaseError struct {
	ErrorMessage
	Operation string
	Err       error
}

func (e *DatabaseError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

type ExternalServiceError struct {
	ErrorMessage
	Service    string
	StatusCode int
	Transient  bool
	Err        error
}

func (e *ExternalServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Service, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Service, e.Message, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

type EncryptionError struct {
	ErrorMessage
	Err error
}

func (e *EncryptionError) Unwrap() error { return e.Err }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewMalformedBackupError(message string, err error) *MalformedBackupError {
	return &MalformedBackupError{
		ErrorMessage: ErrorMessage{Message: message},
		Err:          err,
	}
}

func NewCloudUnavailableError() *CloudUnavailableError {
	return &CloudUnavailableError{
		ErrorMessage: ErrorMessage{Message: "cloud storage is not available"},
	}
}

func NewDatabaseError(operation, message string, err error) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Err:          err,
	}
}

// NewExternalServiceError treats 5xx responses and transport failures
// (status 0) as transient.
func NewExternalServiceError(service, message string, statusCode int, err error) *ExternalServiceError {
	return &ExternalServiceError{
		ErrorMessage: ErrorMessage{Message: message},
		Service:      service,
		StatusCode:   statusCode,
		Transient:    statusCode == 0 || statusCode >= 500,
		Err:          err,
	}
}

func NewEncryptionError(message string, err error) *EncryptionError {
	return &EncryptionError{
		ErrorMessage: ErrorMessage{Message: message},
		Err:          err,
	}
}
