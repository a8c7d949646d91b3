package utils

import (
	"errors"
	"fmt"
)

// Exit codes
const (
	ExitSuccess = 0
	// Configuration errors (10-19)
	ExitConfigInvalid  = 10
	ExitKeyUnavailable = 11
	// Store errors (20-29)
	ExitNotFound   = 20
	ExitStoreRead  = 21
	ExitStoreWrite = 22
	// Reconcile errors (30-39)
	ExitSyncFailed  = 30
	ExitSyncPartial = 31
	ExitRootChanged = 32
	// Validation errors (40-49)
	ExitInvalidArgument = 40
	// Unknown
	ExitUnknown = 99
)

// Error codes (tool-owned, stable)
const (
	ErrCodeConfigInvalid   = "CONFIG_INVALID"
	ErrCodeKeyUnavailable  = "KEY_UNAVAILABLE"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeStoreRead       = "STORE_READ"
	ErrCodeStoreWrite      = "STORE_WRITE"
	ErrCodeSyncFailed      = "SYNC_FAILED"
	ErrCodeRootChanged     = "ROOT_CHANGED"
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
	ErrCodeUnknown         = "UNKNOWN"
)

// CLIError is a structured error carrying a stable code and the process
// exit code the CLI should terminate with.
type CLIError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	ExitCode int    `json:"-"`
}

func (e *CLIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewCLIError creates a CLIError with the given code, message and exit code.
func NewCLIError(code, message string, exitCode int) *CLIError {
	return &CLIError{Code: code, Message: message, ExitCode: exitCode}
}

// ExitCodeForError maps an error to a process exit code. CLIErrors carry
// their own; everything else is unknown.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.ExitCode
	}
	return ExitUnknown
}
