package errs

import "fmt"

// ValidationError blocks a submission; the message is shown inline
// against the named field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// PermissionError rejects an action the current user is not entitled
// to. Surfaced as a visible message, never silently swallowed.
type PermissionError struct {
	Action string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Action)
}

func Permission(action string) error {
	return &PermissionError{Action: action}
}

// WriteError wraps a failed backend write. Surfaced as a transient
// notification; the action's loading state is cleared and the write is
// not retried automatically.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func Write(op string, err error) error {
	return &WriteError{Op: op, Err: err}
}

// ImportFormatError aborts an import or restore before any write
// happens. Requirement names what the input is missing.
type ImportFormatError struct {
	Requirement string
}

func (e *ImportFormatError) Error() string {
	return fmt.Sprintf("invalid format: %s", e.Requirement)
}

func ImportFormat(requirement string) error {
	return &ImportFormatError{Requirement: requirement}
}
