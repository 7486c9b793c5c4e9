package dispose

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// ErrorReason categorizes why a disposition failed
type ErrorReason int

const (
	ErrorPermissionDenied ErrorReason = iota
	ErrorEntryInUse
	ErrorEntryNotFound
	ErrorInvalidPath
	ErrorUnknown
)

// String returns a human-readable error reason
func (e ErrorReason) String() string {
	switch e {
	case ErrorPermissionDenied:
		return "Permission denied"
	case ErrorEntryInUse:
		return "Entry is in use"
	case ErrorEntryNotFound:
		return "Entry not found"
	case ErrorInvalidPath:
		return "Invalid path"
	case ErrorUnknown:
		return "Unknown error"
	default:
		return "Unspecified error"
	}
}

// ActionError represents a detailed disposition error
type ActionError struct {
	Path      string
	Action    Action
	Reason    ErrorReason
	Original  error
	Retryable bool
}

// Error implements the error interface
func (e *ActionError) Error() string {
	return fmt.Sprintf("%s %s: %s (%v)", e.Action, e.Path, e.Reason, e.Original)
}

func (e *ActionError) Unwrap() error { return e.Original }

// UserMessage returns a user-friendly error message
func (e *ActionError) UserMessage() string {
	switch e.Reason {
	case ErrorPermissionDenied:
		return fmt.Sprintf("⚠️  Permission denied, kept for next run: %s", e.Path)
	case ErrorEntryInUse:
		return fmt.Sprintf("⚠️  Entry is being used: %s (will retry next run)", e.Path)
	case ErrorEntryNotFound:
		return fmt.Sprintf("ℹ️  Already gone: %s", e.Path)
	case ErrorInvalidPath:
		return fmt.Sprintf("❌ Invalid or unsafe path: %s", e.Path)
	default:
		return fmt.Sprintf("❌ Error handling %s: %v", e.Path, e.Original)
	}
}

// CategorizeError analyzes an error and returns a categorized ActionError
func CategorizeError(path string, action Action, err error) *ActionError {
	if err == nil {
		return nil
	}

	actErr := &ActionError{
		Path:     path,
		Action:   action,
		Original: err,
		Reason:   ErrorUnknown,
	}

	// Check if entry not found
	if os.IsNotExist(err) {
		actErr.Reason = ErrorEntryNotFound
		return actErr
	}

	// Check if permission error
	if os.IsPermission(err) {
		actErr.Reason = ErrorPermissionDenied
		actErr.Retryable = true
		return actErr
	}

	// Check syscall errors
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EACCES, syscall.EPERM:
			actErr.Reason = ErrorPermissionDenied
			actErr.Retryable = true
		case syscall.EBUSY, syscall.ETXTBSY:
			actErr.Reason = ErrorEntryInUse
			actErr.Retryable = true
		case syscall.ENOENT:
			actErr.Reason = ErrorEntryNotFound
		default:
			actErr.Reason = ErrorUnknown
		}
		return actErr
	}

	return actErr
}

// GroupErrors groups disposition errors by reason
func GroupErrors(errs []*ActionError) map[ErrorReason][]*ActionError {
	grouped := make(map[ErrorReason][]*ActionError)
	for _, err := range errs {
		grouped[err.Reason] = append(grouped[err.Reason], err)
	}
	return grouped
}

// FormatErrorSummary creates a user-friendly summary of errors
func FormatErrorSummary(errs []*ActionError) string {
	if len(errs) == 0 {
		return ""
	}

	grouped := GroupErrors(errs)
	summary := "\n⚠️  Issues encountered:\n"

	if perms, ok := grouped[ErrorPermissionDenied]; ok {
		summary += fmt.Sprintf("   ├─ Permission denied: %d entries\n", len(perms))
		summary += "   │  └─ Tip: Check ownership; they stay tracked and retry next run\n"
	}

	if busy, ok := grouped[ErrorEntryInUse]; ok {
		summary += fmt.Sprintf("   ├─ Entry in use: %d entries\n", len(busy))
		summary += "   │  └─ Tip: Close applications; they retry next run\n"
	}

	if notFound, ok := grouped[ErrorEntryNotFound]; ok {
		summary += fmt.Sprintf("   ├─ Already gone: %d entries\n", len(notFound))
	}

	if unknown, ok := grouped[ErrorUnknown]; ok {
		summary += fmt.Sprintf("   └─ Other errors: %d entries\n", len(unknown))
	}

	return summary
}
