package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingResolutionData indicates user_resolve was requested
	// without caller-supplied resolved data.
	ErrMissingResolutionData = errors.New("missing resolution data")

	// ErrConflictNotFound indicates the referenced conflict is not active.
	// Conflicts retire when their pending operation is confirmed or rolled back.
	ErrConflictNotFound = errors.New("conflict not found")

	// ErrNotConnected indicates an outbound send was attempted while the
	// sync channel is not open. The caller rolls the operation back rather
	// than surfacing this to the user.
	ErrNotConnected = errors.New("channel not connected")

	// ErrReconnectExhausted indicates the reconnect budget was spent.
	// Surfaced through the connection-status subscription, never thrown
	// across the channel boundary.
	ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

	// ErrAuthExpired indicates the channel auth token has expired.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrAuthInvalid indicates the channel auth token is malformed.
	ErrAuthInvalid = errors.New("authentication invalid")
)
