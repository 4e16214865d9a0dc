package agent

import "errors"

var (
	// ErrMalformedToolArguments means the model produced argument text that
	// does not decode to a JSON object.
	ErrMalformedToolArguments = errors.New("malformed tool arguments")
	ErrMaxToolRounds          = errors.New("maximum tool rounds exceeded")
	ErrNotConfigured          = errors.New("no active model configured")
	ErrModelNotFound          = errors.New("model not found")
)
