package chat

import "errors"

var (
	// ErrInvalidInput marks malformed json/raw mode input. The turn is
	// discarded without touching the conversation or the network.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownMode marks an unrecognized /mode argument.
	ErrUnknownMode = errors.New("unknown mode")

	// ErrUnknownCommand marks an unrecognized slash command.
	ErrUnknownCommand = errors.New("unknown command")
)
