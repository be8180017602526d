package shortener

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories when no row matches a lookup.
var ErrNotFound = errors.New("short url not found")

// ErrCodeTaken is returned by repositories when assigning a code violates
// the short_code uniqueness constraint.
var ErrCodeTaken = errors.New("short code already taken")

// InvalidURLError reports a target URL that failed the reachability check.
type InvalidURLError struct {
	URL   string
	Cause error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("url %q did not respond: %v", e.URL, e.Cause)
}

func (e *InvalidURLError) Unwrap() error {
	return e.Cause
}

// InvalidSlugError reports a requested alias left with no usable
// characters after normalization.
type InvalidSlugError struct {
	Slug string
}

func (e *InvalidSlugError) Error() string {
	return fmt.Sprintf("alias %q contains no characters usable in a slug", e.Slug)
}

// NonUniqueSlugError reports a custom slug that already maps to a code.
type NonUniqueSlugError struct {
	Slug string
}

func (e *NonUniqueSlugError) Error() string {
	return fmt.Sprintf("slug %q is already in use", e.Slug)
}

// InvalidShortCodeError reports a code containing characters outside the
// configured alphabet.
type InvalidShortCodeError struct {
	Code     Code
	Alphabet string
}

func (e *InvalidShortCodeError) Error() string {
	return fmt.Sprintf("short code %q does not match charset %q", e.Code, e.Alphabet)
}

// NotFoundError reports a well-formed lookup key with no matching entity.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q does not exist", e.Entity, e.Key)
}

// RuntimeError wraps any unexpected failure during the creation
// transaction. It always implies a completed rollback: no partial row is
// visible after it is returned.
type RuntimeError struct {
	Cause error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("an error occurred while persisting the short url: %v", e.Cause)
}

func (e *RuntimeError) Unwrap() error {
	return e.Cause
}
