package service

import "errors"

var (
	// ErrConcurrentSend is returned by ClaimSend when another evaluation
	// already recorded a send for the same creator and key.
	ErrConcurrentSend = errors.New("nudge already claimed by a concurrent evaluation")

	// ErrCreatorLocked is returned by CreatorLock.Acquire when another
	// evaluation holds the creator's lease.
	ErrCreatorLocked = errors.New("creator is locked by another evaluation")

	// ErrWhatsAppRejected is returned when the provider refuses a message
	// with a non-retryable status.
	ErrWhatsAppRejected = errors.New("whatsapp message rejected")
)
