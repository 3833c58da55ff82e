// Package errs defines the error taxonomy shared across services and
// handlers. Soft upstream failures (retrieval, translation) are absorbed
// inside the chat pipeline and never appear here.
package errs

import "errors"

var (
	// ErrUsernameTaken signals a registration attempt with an existing username.
	ErrUsernameTaken = errors.New("username already registered")

	// ErrInvalidCredentials signals a failed username/password login.
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// ErrInvalidToken signals a missing, malformed, tampered or expired
	// bearer token. Deliberately one error for all cases.
	ErrInvalidToken = errors.New("could not validate credentials")

	// ErrNotFound signals a session that does not exist or is not owned by
	// the caller. The same error covers both so existence never leaks.
	ErrNotFound = errors.New("session not found or you do not have access")

	// ErrGeneration signals a hard LLM failure. The handler maps it to a
	// fixed apology; the wrapped detail is only ever logged.
	ErrGeneration = errors.New("generation failed")
)
