package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingCredentials indicates the login request lacked an email or password.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidCredentials indicates the email/password pair did not match.
	// It never reveals which half failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateEmail is returned when registering an email that already exists.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateSlug is returned when a post slug is already taken.
	ErrDuplicateSlug = errors.New("slug already in use")
	// ErrNotFound indicates an unresolvable id or slug.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports rejected input. Post operations set Fields with
// every missing field at once; registration sets Message with the first
// failing rule only.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// PartialFailure reports a reorder batch that applied some updates but not
// all. FailedIDs holds the post ids that did not update.
type PartialFailure struct {
	FailedIDs []string
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("order update failed for posts: %s", strings.Join(e.FailedIDs, ", "))
}
