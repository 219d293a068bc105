// Package paramstest provides a small, fast configuration for tests: a
// 128-bit safe-prime group and 512-bit RSA identities for both roles.
package paramstest

import (
	"github.com/TheusHen/sigdh/sigdh/crypto/bigint"
	"github.com/TheusHen/sigdh/sigdh/identity"
	"github.com/TheusHen/sigdh/sigdh/params"
)

const (
	// Prime is a 128-bit safe prime; Generator 4 spans its prime-order subgroup.
	Prime     = "c70edcffc3b37c556c45eb47f9d59eaf"
	Generator = "04"

	InitiatorModulus = "b7ddfd520e361e8d2d109f5c2e4b8b180d3f93de71d3132f41a539ddfe11c86e" +
		"598fc1eaf33649a9aa8f9684fbbf3a296907933697106f710bc6a0af1cdd3ee7"
	InitiatorPrivate = "6f9e62cf3273663e9bf1f05c3c7a7db91f29ce7186b5f57a85a67127b3ba45ea" +
		"b7a8829e35a9467428b2de77450a5cc45fd712488d018c6d0d8edce9ed064ad1"

	ResponderModulus = "d373d38364d561a30096e9c151bf11589e0dac40de2a09f9e035cfd90b2bb53a" +
		"8244be99cc03f083ee240886dc7dc9f6f0afe498110278f5771a8c76cae2a59d"
	ResponderPrivate = "2f9153d8b01b4c7e95c85d478ef3339cc2d982918928dddba773939158f0f930" +
		"8aa196c594c45c7d2e103582d35557626e6e5cb7de671a8ab0bff09e4b51f0c1"

	PublicExponent = "010001"
)

// Config returns a fresh test configuration. It panics on malformed
// constants, which would be a bug in this file.
func Config() *params.Config {
	prime := must(bigint.ParseHex(Prime, 0))
	return &params.Config{
		Group: params.Group{
			Generator: must(bigint.ParseHex(Generator, prime.Width())),
			Prime:     prime,
		},
		Initiator: keyPair(InitiatorModulus, InitiatorPrivate),
		Responder: keyPair(ResponderModulus, ResponderPrivate),
	}
}

func keyPair(modulus, private string) identity.KeyPair {
	pub := identity.PublicKey{
		Modulus:  must(bigint.ParseHex(modulus, 0)),
		Exponent: must(bigint.ParseHex(PublicExponent, 0)),
	}
	return must(identity.NewKeyPair(pub, must(bigint.ParseHex(private, 0))))
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
