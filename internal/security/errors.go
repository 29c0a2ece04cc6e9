package security

import "errors"

// Verify errors wrap one of these, and the parser error when there is one.
var (
	ErrTokenInvalid = errors.New("invalid access token")
	ErrTokenExpired = errors.New("access token expired")
	// ErrNoUser means the token is well formed but names no user to scope visits to
	ErrNoUser       = errors.New("access token has no user")
)
