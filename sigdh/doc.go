// Package sigdh provides a signed ephemeral Diffie-Hellman handshake and
// the record channel keyed by it.
//
// Two parties exchange three fixed-size packets: the initiator's DH public
// value, the responder's DH public value, and the initiator's RSA signature
// over the responder's value. Both sides then hash the shared secret into a
// cipher key, a MAC key and a nonce. Only the initiator is authenticated.
//
// Peer is the high-level entry point. It runs the handshake over QUIC and
// returns a Conn whose messages are encrypted and authenticated with the
// derived keys. The building blocks live in subpackages:
//
//	crypto/bigint  fixed-width big-endian integers
//	crypto         SHA3-256, HMAC, the key schedule, wiping
//	kex            ephemeral DH key pairs
//	identity       textbook RSA identities and peer IDs
//	params         group and identity configuration
//	protocol       handshake packet and frame codecs
//	session        the handshake state machine and its drivers
//	channel        AES-CTR encrypt-then-MAC records with replay protection
//	transfer       compressed, erasure-coded payload transfer
//	transport      in-memory pipes, stream adapters and QUIC
package sigdh
