package gateway

import "errors"

var (
	// ErrAssistantResponseInvalid is returned when a structured reply
	// from the model cannot be parsed at all.
	ErrAssistantResponseInvalid = errors.New("failed to get a valid response from the AI assistant")

	// ErrGenerationFailed is returned when the backend completed a
	// request without producing a usable artifact.
	ErrGenerationFailed = errors.New("generation returned no usable result")

	// ErrNoSession is returned when a chat turn is attempted without a
	// live session handle.
	ErrNoSession = errors.New("no active chat session")
)
