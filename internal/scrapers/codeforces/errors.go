package codeforces

import (
	"fmt"
)

// AuthError is returned when the login handshake could not be completed,
// either the csrf token was missing or the credentials were rejected.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("codeforces: login failed: %s: %s", e.Reason, e.Err.Error())
	}
	return fmt.Sprintf("codeforces: login failed: %s", e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// FetchError is returned when a page could not be retrieved, Status is 0
// when no response was received (ex. timeouts).
type FetchError struct {
	Url    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("codeforces: fetch %s: %s", e.Url, e.Err.Error())
	}
	return fmt.Sprintf("codeforces: fetch %s: unexpected status %d", e.Url, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError is returned when the structure of a page does not match what
// its parser expects, this usually means the page layout changed upstream.
type ParseError struct {
	Page   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("codeforces: parse %s page: %s: %s", e.Page, e.Reason, e.Err.Error())
	}
	return fmt.Sprintf("codeforces: parse %s page: %s", e.Page, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErrorf(page string, err error, format string, args ...any) *ParseError {
	return &ParseError{Page: page, Reason: fmt.Sprintf(format, args...), Err: err}
}
