// Package crypto provides the symmetric primitives used by the handshake.
//
//   - Hash: SHA3-256 (Keccak sponge, 136 byte rate)
//   - HMAC: the nested-hash construction built directly over Hash
//   - KDF: a two step hash ratchet turning the DH shared secret into a
//     cipher key, a MAC key and a stream nonce
//   - Wipe: best-effort zeroisation of secret buffers
package crypto
