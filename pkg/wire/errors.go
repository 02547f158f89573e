package wire

import "errors"

// Sentinel errors for the wire codec and request parsing. Callers wrap
// these with fmt.Errorf("...: %w", ...) to add context.
var (
	ErrDecryption  = errors.New("decryption failed")
	ErrFormat      = errors.New("malformed message")
	ErrAuth        = errors.New("invalid hmac")
	ErrUnknownVerb = errors.New("unknown type")
	ErrProtocol    = errors.New("invalid request")
)
