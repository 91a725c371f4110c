package ballot

import "errors"

var (
	// ErrNotAllowed means the acting identity lacks permission for the
	// operation. Surfaced to the caller, never retried here.
	ErrNotAllowed = errors.New("ballot: operation not allowed")

	// ErrMessageTooLarge is returned by a MessageReceiver when the serialized
	// payload exceeds the transport limit. Publish rolls back on it, Close
	// does not.
	ErrMessageTooLarge = errors.New("ballot: message too large")

	// ErrBadProtocolMessage means an inbound message violates a protocol
	// invariant. The merge is aborted with no partial state change.
	ErrBadProtocolMessage = errors.New("ballot: bad protocol message")

	// ErrNotFound means a referenced ballot, choice or link is absent.
	// Callers generally treat it as a warning and no-op, to tolerate races
	// with concurrent deletion.
	ErrNotFound = errors.New("ballot: not found")

	// ErrNotEnoughChoices rejects publishing a ballot with fewer than two
	// choices.
	ErrNotEnoughChoices = errors.New("ballot: at least two choices required")
)
