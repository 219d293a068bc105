package bigint

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
)

var (
	ErrWidth      = errors.New("bigint: octet string does not match width")
	ErrOverflow   = errors.New("bigint: value does not fit width")
	ErrArithmetic = errors.New("bigint: arithmetic failure")
)

// Int is a non-negative integer bound to a fixed octet width.
// The zero value is the integer zero with width zero.
type Int struct {
	v     *big.Int
	width int
}

// FromOctets decodes a big-endian octet string of exactly width bytes.
func FromOctets(b []byte, width int) (Int, error) {
	if width <= 0 || len(b) != width {
		return Int{}, fmt.Errorf("%w: got %d bytes, want %d", ErrWidth, len(b), width)
	}
	return Int{v: new(big.Int).SetBytes(b), width: width}, nil
}

// FromBig copies x into an Int of the given width.
func FromBig(x *big.Int, width int) (Int, error) {
	if width <= 0 || x == nil || x.Sign() < 0 || x.BitLen() > 8*width {
		return Int{}, ErrOverflow
	}
	return Int{v: new(big.Int).Set(x), width: width}, nil
}

// FromUint64 builds a small Int, mostly useful in tests.
func FromUint64(x uint64, width int) (Int, error) {
	return FromBig(new(big.Int).SetUint64(x), width)
}

// ParseHex decodes a hex string. A width of zero takes the decoded length.
func ParseHex(s string, width int) (Int, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Int{}, fmt.Errorf("bigint: %w", err)
	}
	if width == 0 {
		width = len(b)
	}
	if len(b) > width {
		// Accept redundant leading zeros but nothing that overflows.
		return FromBig(new(big.Int).SetBytes(b), width)
	}
	padded := make([]byte, width)
	copy(padded[width-len(b):], b)
	return FromOctets(padded, width)
}

func (x Int) big() *big.Int {
	if x.v == nil {
		return new(big.Int)
	}
	return x.v
}

// Width returns the encoding width in bytes.
func (x Int) Width() int { return x.width }

// Octets returns the big-endian encoding, exactly Width() bytes long.
func (x Int) Octets() []byte {
	out := make([]byte, x.width)
	x.big().FillBytes(out)
	return out
}

// Hex returns the fixed-width hex encoding.
func (x Int) Hex() string { return hex.EncodeToString(x.Octets()) }

// Big returns a copy of the value as a *big.Int.
func (x Int) Big() *big.Int { return new(big.Int).Set(x.big()) }

// BitLen returns the length of the absolute value in bits.
func (x Int) BitLen() int { return x.big().BitLen() }

// IsZero reports whether x == 0.
func (x Int) IsZero() bool { return x.big().Sign() == 0 }

// Cmp compares the numeric values of x and y, ignoring width.
func Cmp(x, y Int) int { return x.big().Cmp(y.big()) }

// Equal reports whether a and b have the same width and value. The
// comparison runs over the full encoding in constant time.
func Equal(a, b Int) bool {
	if a.width != b.width {
		return false
	}
	return subtle.ConstantTimeCompare(a.Octets(), b.Octets()) == 1
}

// ModExp computes base^exponent mod modulus at the width of modulus.
func ModExp(base, exponent, modulus Int) (Int, error) {
	m := modulus.big()
	if m.Sign() <= 0 {
		return Int{}, fmt.Errorf("%w: modulus must be positive", ErrArithmetic)
	}
	r := new(big.Int).Exp(base.big(), exponent.big(), m)
	if r == nil {
		return Int{}, ErrArithmetic
	}
	return Int{v: r, width: modulus.width}, nil
}

// Mod reduces x modulo m and returns the result at the width of m.
func Mod(x, m Int) (Int, error) {
	if m.big().Sign() <= 0 {
		return Int{}, fmt.Errorf("%w: modulus must be positive", ErrArithmetic)
	}
	return Int{v: new(big.Int).Mod(x.big(), m.big()), width: m.width}, nil
}

// Random returns a uniformly distributed value in [lo, hi] at the width of hi.
func Random(r io.Reader, lo, hi Int) (Int, error) {
	if r == nil {
		r = rand.Reader
	}
	span := new(big.Int).Sub(hi.big(), lo.big())
	if span.Sign() < 0 {
		return Int{}, fmt.Errorf("%w: empty range", ErrArithmetic)
	}
	span.Add(span, big.NewInt(1))
	n, err := rand.Int(r, span)
	if err != nil {
		return Int{}, fmt.Errorf("bigint: random: %w", err)
	}
	n.Add(n, lo.big())
	return Int{v: n, width: hi.width}, nil
}

// Wipe zeroes the limbs backing x and resets it to zero. Copies of x made
// with Big() are not affected.
func (x *Int) Wipe() {
	if x == nil || x.v == nil {
		return
	}
	words := x.v.Bits()
	for i := range words {
		words[i] = 0
	}
	x.v.SetInt64(0)
}
