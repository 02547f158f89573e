/*
Package wire implements the broker's on-the-wire message format: framing,
authenticated encryption, and typed request parsing.

# Framing

Each message is length-prefixed (ReadFrame/WriteFrame): a 4-byte
big-endian byte count followed by that many ciphertext bytes, capped at
a configured maximum.

# Codec

Codec.Encode takes an Envelope (a map[string]interface{}), computes an
HMAC-SHA256 tag over its canonical JSON form (encoding/json sorts map
keys, so this requires no separate canonicalization step), attaches the
tag under "hmac", and encrypts the whole structure with AES-256-GCM.
Codec.Decode reverses this: decrypt, parse, strip and recompute the tag,
compare in constant time.

# Requests

ParseRequest turns a verified Envelope into one of AddTaskRequest,
GetTaskRequest, TaskCompletedRequest, or HeartbeatRequest: a typed
discriminated union rather than dispatch on a raw "type" string. Missing
or mistyped required fields fail with ErrProtocol; unrecognized verbs
fail with ErrUnknownVerb.
*/
package wire
