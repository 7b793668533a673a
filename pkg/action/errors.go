package action

import "errors"

var (
	// ErrActionDisabled indicates that an action is disabled in configuration.
	ErrActionDisabled = errors.New("action is disabled")

	// ErrActionNotFound indicates that a requested action doesn't exist in the registry.
	ErrActionNotFound = errors.New("action not found in registry")

	// ErrInvalidConfig indicates that an action's configuration is invalid.
	ErrInvalidConfig = errors.New("invalid action configuration")

	// ErrMissingContact indicates that the creator has no address for the channel.
	ErrMissingContact = errors.New("missing contact for channel")
)
