package params

import (
	"errors"
	"math/big"

	"github.com/TheusHen/sigdh/sigdh/crypto/bigint"
)

var (
	ErrInvalidPrime     = errors.New("params: group prime is not an odd prime")
	ErrInvalidGenerator = errors.New("params: generator must satisfy 1 < g < p")
)

// Group is a multiplicative group modulo a prime. Width is the octet width of
// the prime and of every value exchanged in the group.
type Group struct {
	Generator bigint.Int
	Prime     bigint.Int
}

func (g *Group) Width() int { return g.Prime.Width() }

// Validate checks 1 < g < p and that p is an odd probable prime.
func (g *Group) Validate() error {
	p := g.Prime.Big()
	if p.Cmp(big.NewInt(3)) < 0 || p.Bit(0) == 0 || !p.ProbablyPrime(16) {
		return ErrInvalidPrime
	}
	gen := g.Generator.Big()
	if gen.Cmp(big.NewInt(1)) <= 0 || gen.Cmp(p) >= 0 {
		return ErrInvalidGenerator
	}
	if g.Generator.Width() != g.Width() {
		return ErrInvalidGenerator
	}
	return nil
}
