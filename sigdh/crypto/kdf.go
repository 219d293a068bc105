package crypto

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"github.com/TheusHen/sigdh/sigdh/crypto/bigint"
)

const (
	CipherKeySize = DigestSize / 2
	MACKeySize    = DigestSize / 2
	NonceSize     = 8
)

var ErrEmptySecret = errors.New("crypto: shared secret has no width")

// SessionKeys is the key material both parties derive after the handshake.
type SessionKeys struct {
	CipherKey [CipherKeySize]byte
	MACKey    [MACKeySize]byte
	Nonce     [NonceSize]byte
}

// DeriveSessionKeys runs the hash ratchet over the shared secret:
//
//	d1 = Hash(secret at group width)
//	cipherKey || macKey = d1
//	d2 = Hash(d1)
//	nonce = d2[:NonceSize]
//
// The second hash is fed exactly the DigestSize bytes of d1.
func DeriveSessionKeys(shared bigint.Int) (SessionKeys, error) {
	var keys SessionKeys
	if shared.Width() == 0 {
		return keys, ErrEmptySecret
	}

	secret := shared.Octets()
	defer Wipe(secret)

	d1 := Hash(secret)
	defer Wipe(d1[:])
	copy(keys.CipherKey[:], d1[:CipherKeySize])
	copy(keys.MACKey[:], d1[CipherKeySize:])

	d2 := Hash(d1[:])
	defer Wipe(d2[:])
	copy(keys.Nonce[:], d2[:NonceSize])
	return keys, nil
}

// Equal compares two key sets in constant time.
func (k *SessionKeys) Equal(o *SessionKeys) bool {
	if k == nil || o == nil {
		return k == o
	}
	eq := subtle.ConstantTimeCompare(k.CipherKey[:], o.CipherKey[:])
	eq &= subtle.ConstantTimeCompare(k.MACKey[:], o.MACKey[:])
	eq &= subtle.ConstantTimeCompare(k.Nonce[:], o.Nonce[:])
	return eq == 1
}

// IsZero reports whether every key byte is zero, e.g. after Wipe.
func (k *SessionKeys) IsZero() bool {
	var z SessionKeys
	return k.Equal(&z)
}

// Fingerprint returns a short hex digest of the key set. It is safe to log
// and lets two parties confirm they agree without revealing the keys.
func (k *SessionKeys) Fingerprint() string {
	sum := Hash([]byte("sigdh keys"), k.CipherKey[:], k.MACKey[:], k.Nonce[:])
	return hex.EncodeToString(sum[:8])
}

// Wipe zeroes all key material. Safe to call more than once.
func (k *SessionKeys) Wipe() {
	if k == nil {
		return
	}
	Wipe(k.CipherKey[:])
	Wipe(k.MACKey[:])
	Wipe(k.Nonce[:])
}
