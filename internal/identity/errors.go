package identity

import "errors"

// Typed provider errors. The adapter translates the provider's wire-level
// error shapes into these at the boundary so no service ever inspects
// provider message strings.
var (
	// ErrInvalidCredentials indicates a failed password sign-in.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	// ErrUserNotFound indicates the provider has no identity for the id/email.
	ErrUserNotFound = errors.New("identity: user not found")
	// ErrEmailExists indicates the provider already holds an identity for the email.
	ErrEmailExists = errors.New("identity: email already registered")
	// ErrRateLimited indicates the provider throttled the request.
	ErrRateLimited = errors.New("identity: rate limited")
	// ErrUnavailable covers transport failures and unexpected provider responses.
	ErrUnavailable = errors.New("identity: provider unavailable")
)
