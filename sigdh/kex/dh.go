package kex

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/TheusHen/sigdh/sigdh/crypto/bigint"
	"github.com/TheusHen/sigdh/sigdh/params"
)

var (
	ErrRandomness         = errors.New("kex: randomness source failed")
	ErrInvalidPublicValue = errors.New("kex: public value out of range")
	ErrWiped              = errors.New("kex: ephemeral secret already wiped")
)

// Ephemeral is one side's per-session DH key pair. The secret never leaves
// this struct and is destroyed by Wipe.
type Ephemeral struct {
	secret bigint.Int
	Public bigint.Int
	wiped  bool
}

// Generate draws a secret uniformly from [2, p-2] and computes g^x mod p.
// A nil reader uses crypto/rand.
func Generate(r io.Reader, g *params.Group) (*Ephemeral, error) {
	width := g.Width()
	lo, err := bigint.FromUint64(2, width)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bigint.ErrArithmetic, err)
	}
	hi, err := bigint.FromBig(new(big.Int).Sub(g.Prime.Big(), big.NewInt(2)), width)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bigint.ErrArithmetic, err)
	}
	x, err := bigint.Random(r, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomness, err)
	}
	pub, err := bigint.ModExp(g.Generator, x, g.Prime)
	if err != nil {
		x.Wipe()
		return nil, err
	}
	return &Ephemeral{secret: x, Public: pub}, nil
}

// ValidatePublicValue rejects peer values outside (1, p-1), which includes
// the degenerate values 0, 1 and p-1.
func ValidatePublicValue(g *params.Group, v bigint.Int) error {
	if v.Width() != g.Width() {
		return fmt.Errorf("%w: width %d, want %d", ErrInvalidPublicValue, v.Width(), g.Width())
	}
	x := v.Big()
	pMinus1 := new(big.Int).Sub(g.Prime.Big(), big.NewInt(1))
	if x.Cmp(big.NewInt(1)) <= 0 || x.Cmp(pMinus1) >= 0 {
		return ErrInvalidPublicValue
	}
	return nil
}

// SharedSecret computes peer^x mod p after validating the peer value.
func (e *Ephemeral) SharedSecret(g *params.Group, peer bigint.Int) (bigint.Int, error) {
	if e == nil || e.wiped {
		return bigint.Int{}, ErrWiped
	}
	if err := ValidatePublicValue(g, peer); err != nil {
		return bigint.Int{}, err
	}
	return bigint.ModExp(peer, e.secret, g.Prime)
}

// Wipe destroys the secret. It is safe to call repeatedly.
func (e *Ephemeral) Wipe() {
	if e == nil || e.wiped {
		return
	}
	e.secret.Wipe()
	e.wiped = true
}

// Wiped reports whether Wipe has run.
func (e *Ephemeral) Wiped() bool { return e == nil || e.wiped }
