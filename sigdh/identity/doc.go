// Package identity holds the long-term RSA signing identities of the two
// handshake roles.
//
// Signatures are textbook RSA: the signer raises the integer it signs to
// its private exponent with no hashing or padding. This matches the deployed
// wire format and is weaker than a hash-and-pad scheme.
package identity
