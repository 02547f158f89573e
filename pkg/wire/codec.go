package wire

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/taskbroker/pkg/security"
)

// tagField is the reserved key under which the authentication tag
// travels. It is stripped before computing or verifying the tag and
// before handing the envelope to request parsing.
const tagField = "hmac"

// Envelope is a decoded, tag-verified message: a canonical key→value
// structure. pkg/broker turns an Envelope into a typed request via
// ParseRequest.
type Envelope map[string]interface{}

// Codec encrypts, tags, and parses wire messages. Go's encoding/json
// sorts map keys when marshaling a map[string]interface{}, so
// json.Marshal(Envelope) is itself the canonical, key-ordered byte form
// the authentication tag is computed over; no separate canonicalization
// step is needed beyond stripping tagField.
type Codec struct {
	cipher *security.Cipher
}

// NewCodec builds a Codec backed by cipher.
func NewCodec(cipher *security.Cipher) *Codec {
	return &Codec{cipher: cipher}
}

// Encode attaches an authentication tag to msg and encrypts the result.
// msg must not already contain tagField.
func (c *Codec) Encode(msg Envelope) ([]byte, error) {
	canonical, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	tagged := make(Envelope, len(msg)+1)
	for k, v := range msg {
		tagged[k] = v
	}
	tagged[tagField] = c.cipher.Tag(canonical)

	plaintext, err := json.Marshal(tagged)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	ciphertext, err := c.cipher.Encrypt(plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return ciphertext, nil
}

// Decode decrypts ciphertext, parses the structured form, and verifies
// its authentication tag. Returns ErrDecryption, ErrFormat, or ErrAuth
// as appropriate; the returned Envelope has tagField already removed.
func (c *Codec) Decode(ciphertext []byte) (Envelope, error) {
	plaintext, err := c.cipher.Decrypt(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	var msg Envelope
	if err := json.Unmarshal(plaintext, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	tag, ok := msg[tagField].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s field", ErrFormat, tagField)
	}
	delete(msg, tagField)

	canonical, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	if !c.cipher.VerifyTag(canonical, tag) {
		return nil, ErrAuth
	}
	return msg, nil
}
