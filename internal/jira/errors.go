package jira

import "errors"

// Sentinel errors for the client's failure taxonomy. Callers check them
// with errors.Is; the CLI maps all of them to a non-zero exit.
var (
	// ErrAuth indicates the credentials were rejected (HTTP 401/403).
	ErrAuth = errors.New("jira authentication failed")

	// ErrNotFound indicates the requested ticket does not exist or is not
	// visible to the authenticated user (HTTP 404).
	ErrNotFound = errors.New("ticket not found")

	// ErrTransport indicates a network failure, an unexpected status code,
	// or a malformed response body.
	ErrTransport = errors.New("jira request failed")
)
