/*
Package security provides the cryptographic primitives behind the wire
protocol: a Cipher combining AES-256-GCM authenticated encryption with an
independent HMAC-SHA256 tag, both keyed off a single 32-byte shared
secret.

The shared secret is provisioned via the TASKBROKER_SECRET environment
variable (LoadSecret) or generated ephemerally at startup when unset
(GenerateSecret); cmd/taskbroker makes that choice when it starts the
broker. pkg/wire uses the resulting Cipher to encrypt each message and
to compute/verify its authentication tag.
*/
package security
