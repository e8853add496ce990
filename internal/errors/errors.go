package errors

import (
	"errors"
	"fmt"
)

// Common error types for the edge service
var (
	// Session errors
	ErrSessionInvalid = errors.New("invalid session")
	ErrSessionExpired = errors.New("session expired")

	// OAuth errors
	ErrStateMismatch = errors.New("state mismatch")
	ErrMissingCode   = errors.New("missing authorization code")

	// GitHub API errors
	ErrGitHubAPI      = errors.New("github api error")
	ErrBranchConflict = errors.New("branch already exists")

	// Catalog errors
	ErrNotFound          = errors.New("not found")
	ErrSlugConflict      = errors.New("slug already exists")
	ErrInvalidTransition = errors.New("invalid status transition")

	// General errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternal       = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
