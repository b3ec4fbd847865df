package eta

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication marks a rejected or malformed credential exchange.
	ErrAuthentication = errors.New("eta authentication failed")
	// ErrSearchPage marks a failed search page request.
	ErrSearchPage = errors.New("eta search page failed")
	// ErrDocumentUnavailable marks a document that could not be retrieved.
	ErrDocumentUnavailable = errors.New("eta document unavailable")
	// ErrMalformedBody marks a nested document body that is not valid JSON.
	ErrMalformedBody = errors.New("eta document body malformed")
)

// AuthenticationError carries the details of a failed token exchange.
// It matches ErrAuthentication with errors.Is.
type AuthenticationError struct {
	StatusCode int
	Err        error
}

func (e *AuthenticationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", ErrAuthentication, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrAuthentication, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthentication }
