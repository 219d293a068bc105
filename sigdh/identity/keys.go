package identity

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/TheusHen/sigdh/sigdh/crypto/bigint"
)

var (
	ErrInvalidModulus  = errors.New("identity: modulus must be odd and greater than one")
	ErrInvalidExponent = errors.New("identity: public exponent must be greater than one")
	ErrNoPrivateKey    = errors.New("identity: private exponent not configured")
	ErrMessageRange    = errors.New("identity: message not below modulus")
	ErrKeyMismatch     = errors.New("identity: private exponent does not match public key")
)

// PublicKey is an RSA verification key. Modulus fixes the signature width.
type PublicKey struct {
	Modulus  bigint.Int
	Exponent bigint.Int
}

// Width returns the octet width of signatures under this key.
func (pub PublicKey) Width() int { return pub.Modulus.Width() }

// Validate checks the key is usable for verification.
func (pub PublicKey) Validate() error {
	n := pub.Modulus.Big()
	if n.Cmp(big.NewInt(1)) <= 0 || n.Bit(0) == 0 {
		return ErrInvalidModulus
	}
	if pub.Exponent.Big().Cmp(big.NewInt(1)) <= 0 {
		return ErrInvalidExponent
	}
	return nil
}

func (pub PublicKey) PeerID() PeerID {
	return PeerIDFromPublicKey(pub)
}

// KeyPair is a signing identity. The private exponent may be absent when
// only the peer's public half is known locally.
type KeyPair struct {
	PublicKey
	private bigint.Int
}

// NewKeyPair binds a private exponent to pub. The exponent is stored at the
// modulus width.
func NewKeyPair(pub PublicKey, private bigint.Int) (KeyPair, error) {
	if err := pub.Validate(); err != nil {
		return KeyPair{}, err
	}
	d, err := bigint.FromBig(private.Big(), pub.Width())
	if err != nil {
		return KeyPair{}, fmt.Errorf("identity: private exponent: %w", err)
	}
	return KeyPair{PublicKey: pub, private: d}, nil
}

// PublicOnly wraps a verification key with no signing capability.
func PublicOnly(pub PublicKey) KeyPair {
	return KeyPair{PublicKey: pub}
}

// Generate creates a fresh identity with public exponent 65537. The RSA
// primes come from crypto/rsa.
func Generate(r io.Reader, bits int) (KeyPair, error) {
	key, err := rsa.GenerateKey(r, bits)
	if err != nil {
		return KeyPair{}, fmt.Errorf("identity: generate: %w", err)
	}
	width := (key.N.BitLen() + 7) / 8
	n, err := bigint.FromBig(key.N, width)
	if err != nil {
		return KeyPair{}, err
	}
	e, err := bigint.FromBig(big.NewInt(int64(key.E)), 3)
	if err != nil {
		return KeyPair{}, err
	}
	d, err := bigint.FromBig(key.D, width)
	if err != nil {
		return KeyPair{}, err
	}
	return NewKeyPair(PublicKey{Modulus: n, Exponent: e}, d)
}

// HasPrivate reports whether the pair can sign.
func (kp KeyPair) HasPrivate() bool { return !kp.private.IsZero() }

// Private returns the private exponent, for serialisation.
func (kp KeyPair) Private() bigint.Int { return kp.private }

// Sign computes m^d mod n. m must already be reduced below the modulus.
func (kp KeyPair) Sign(m bigint.Int) (bigint.Int, error) {
	if !kp.HasPrivate() {
		return bigint.Int{}, ErrNoPrivateKey
	}
	if bigint.Cmp(m, kp.Modulus) >= 0 {
		return bigint.Int{}, ErrMessageRange
	}
	return bigint.ModExp(m, kp.private, kp.Modulus)
}

// Check signs and verifies a probe value to catch mismatched key material.
func (kp KeyPair) Check() error {
	if err := kp.Validate(); err != nil {
		return err
	}
	if !kp.HasPrivate() {
		return nil
	}
	probe, err := bigint.FromUint64(0x5349474448, kp.Width())
	if err != nil {
		return err
	}
	probe, err = bigint.Mod(probe, kp.Modulus)
	if err != nil {
		return err
	}
	sig, err := kp.Sign(probe)
	if err != nil {
		return err
	}
	if !Verify(kp.PublicKey, sig, probe) {
		return ErrKeyMismatch
	}
	return nil
}

// Verify reports whether sig^e mod n equals m. The comparison covers the
// whole modulus width and runs in constant time. Any malformed input is a
// plain rejection.
func Verify(pub PublicKey, sig, m bigint.Int) bool {
	width := pub.Width()
	if width == 0 || sig.Width() != width {
		return false
	}
	if bigint.Cmp(sig, pub.Modulus) >= 0 {
		return false
	}
	want, err := bigint.FromBig(m.Big(), width)
	if err != nil {
		return false
	}
	got, err := bigint.ModExp(sig, pub.Exponent, pub.Modulus)
	if err != nil {
		return false
	}
	return bigint.Equal(got, want)
}

// TranscriptValue maps a DH public value to the integer the initiator signs:
// the value reduced modulo the signer's modulus, at the modulus width. The
// DH prime may be wider than the RSA modulus, so the raw value does not
// always fit.
func TranscriptValue(pub PublicKey, publicValue bigint.Int) (bigint.Int, error) {
	return bigint.Mod(publicValue, pub.Modulus)
}
