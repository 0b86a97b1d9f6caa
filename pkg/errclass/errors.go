package errclass

import "fmt"

// ChadError is a stable, machine-readable error class.
type ChadError struct {
	Code    string
	Message string
}

func (e *ChadError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ChadError) Is(target error) bool {
	t, ok := target.(*ChadError)
	return ok && e.Code == t.Code
}

// WithMessage returns a new ChadError with the same Code but a specific message.
func (e *ChadError) WithMessage(msg string) *ChadError {
	return &ChadError{Code: e.Code, Message: msg}
}

// WithMessagef returns a new ChadError with a formatted message.
func (e *ChadError) WithMessagef(format string, args ...any) *ChadError {
	return &ChadError{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// Stable error classes for the lock subsystem.
var (
	// ErrAlreadyLocked is the expected contention outcome of acquire: another
	// holder's record exists. Not a fault; the caller decides retry/skip/force.
	ErrAlreadyLocked = &ChadError{Code: "E_ALREADY_LOCKED"}

	// ErrNotLocked reports an explicit operation against an issue with no
	// lock record (e.g. unlocking a named, already-free issue).
	ErrNotLocked = &ChadError{Code: "E_NOT_LOCKED"}

	// ErrLockLost signals that the holder's own record vanished underneath it
	// (forcibly released elsewhere). The holder must stop processing the issue.
	ErrLockLost = &ChadError{Code: "E_LOCK_LOST"}

	// ErrLockCorrupt marks a lock record that exists but cannot be parsed.
	ErrLockCorrupt = &ChadError{Code: "E_LOCK_CORRUPT"}

	// ErrNameInvalid reports an unsafe worker or repository identifier.
	ErrNameInvalid = &ChadError{Code: "E_NAME_INVALID"}

	// ErrPathEscape reports a path resolving outside the state directory.
	ErrPathEscape = &ChadError{Code: "E_PATH_ESCAPE"}

	// ErrFormatUnsupported reports a state directory written by a newer version.
	ErrFormatUnsupported = &ChadError{Code: "E_FORMAT_UNSUPPORTED"}
)
