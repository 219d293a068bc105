package crypto

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/sha3"
)

const (
	innerPad = 0x36
	outerPad = 0x5c
)

var ErrMACKeyTooLong = errors.New("crypto: HMAC key longer than hash block")

// HMAC computes Hash((K ^ opad) || Hash((K ^ ipad) || data)) where K is key
// zero-padded to BlockSize. Keys longer than BlockSize are rejected rather
// than hashed down. data is the concatenation of parts.
func HMAC(key []byte, parts ...[]byte) ([DigestSize]byte, error) {
	var tag [DigestSize]byte
	if len(key) > BlockSize {
		return tag, ErrMACKeyTooLong
	}

	var pad [BlockSize]byte
	defer Wipe(pad[:])

	copy(pad[:], key)
	for i := range pad {
		pad[i] ^= innerPad
	}
	inner := sha3.New256()
	inner.Write(pad[:])
	for _, p := range parts {
		inner.Write(p)
	}
	var innerSum [DigestSize]byte
	inner.Sum(innerSum[:0])

	// Flip from K^ipad to K^opad without touching the key again.
	for i := range pad {
		pad[i] ^= innerPad ^ outerPad
	}
	outer := sha3.New256()
	outer.Write(pad[:])
	outer.Write(innerSum[:])
	outer.Sum(tag[:0])
	return tag, nil
}

// VerifyHMAC recomputes the tag for data and compares it to tag in constant time.
func VerifyHMAC(key, tag []byte, parts ...[]byte) bool {
	want, err := HMAC(key, parts...)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(want[:], tag) == 1
}
