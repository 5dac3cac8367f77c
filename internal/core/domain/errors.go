package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is the unauthenticated terminal state: no stored
	// token, or a token the backend rejected. The caller redirects to login.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrValidation marks local, pre-network field errors; no request was made.
	ErrValidation = errors.New("invalid input")
	// ErrSubmitInFlight rejects a submission while the same mode is already
	// submitting.
	ErrSubmitInFlight = errors.New("submission already in flight")
	// ErrTemporary marks transient transport failures.
	ErrTemporary = errors.New("temporary failure")
	// ErrBackend marks a definitive backend rejection of an analysis request.
	ErrBackend = errors.New("backend rejected request")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
