package params

import (
	"github.com/TheusHen/sigdh/sigdh/crypto/bigint"
	"github.com/TheusHen/sigdh/sigdh/identity"
)

// Built-in deployment constants: a 1248-bit group and 1248-bit RSA moduli.
// The moduli carry a leading zero octet, so signatures are one byte wider
// than group elements. Only the initiator's private exponent is shipped.
const (
	defaultGenerator = "82c1571cf68d59aac19367c7de234be8c3b920b8362d21f53e3c6bc84eaa5c54" +
		"8d8488733ac3278bcf66e635bebd20734b4beaaa4846f1bcf48dfa0d91a3bbd2" +
		"97272184256678036dd56680c5a1636b2536d7e23ef66aac1d62b7db3c6fbe05" +
		"751b1b642f7c1aba7c074f488e347bf4d7ff255f2d134d874b06541984e03d61" +
		"144e7afb123834625ec0337deae470a6799c0587bbed9accf10df08b"

	defaultPrime = "d0a8738004a35f3d10f9349224cc66b8df416e9b8a09794d6935f712a33246c6" +
		"4351ef3bdbad21cbf754525620cb8cfacc7148eae42bfb4d129012c6f7ed1fee" +
		"95a13fcc957874cf5591b79f4efce62844275f86e1def320e940079024007d17" +
		"aa16c19fc55182aa5ce042ace57fe9afaa4647b676803e03bce8c10590ccd048" +
		"79a90eabcb18512aa5db1c6ba9fcd2ea89aeabe39c3f6b03c798ac43"

	defaultInitiatorModulus = "00a279f48fe4089d96130966316f5648782caaba8d01056f41b2ba636a7a8c1f" +
		"543331c30fa0e730353609516f6dddafe535c9b96e1673a63015ffad86afc3f4" +
		"6c8d4a76e5b64ee48f601246c0cd4265045808f13aa3e2c91ac33c7181e920ff" +
		"7ac0ff8e2444346e5a8ffc1394f6091957940aeccfe71911961d00ff4463b740" +
		"3ca9e4d251420ad4c709c5ea72db6af83b0c065f4f67eb2b5307a486f7"

	defaultInitiatorPrivate = "078e74795cb9a9da98f80ef0ada4eda9e929e7933740f173b4c4466b6557aefd" +
		"538434f63d1d83787612e8deadd569a0d7679260345b1c978fee5c3baf6105b5" +
		"26bd17da8728142936e6a2b3c4d806af49c05e4b8aeab55058a1931a34b7b11b" +
		"4ff96cc0edaddfa1a0e39e8728653ff26f40a40ce61363d9591f7c313173fcf7" +
		"da68c823ffc3194f851763cef17ae6b1deb0b965fd2a83eb6df65a41"

	defaultResponderModulus = "00b220919103e92f9959a365802cb5250303afe93c421307c25e151b21099e31" +
		"cbefaf19a7da52fc8c012b534eee532d31a6e53c26bc619e388674c144f9b19c" +
		"87189f583d0c005883aa5c77e1d25d048c00b6249166156ad9c1aa3e0299b511" +
		"adf6b4737791da4ab2b6a53cdacd2faac9475120f287e3be3bf58f1563b4c1b0" +
		"b02251f04bd41c5091a85b8f09555d466541a74eab5f4cf1860555df83"

	defaultPublicExponent = "010001"
)

// Default returns a fresh copy of the built-in configuration.
func Default() *Config {
	prime := mustHex(defaultPrime, 0)
	gen := mustHex(defaultGenerator, prime.Width())
	e := mustHex(defaultPublicExponent, 0)

	initiator, err := identity.NewKeyPair(identity.PublicKey{
		Modulus:  mustHex(defaultInitiatorModulus, 0),
		Exponent: e,
	}, mustHex(defaultInitiatorPrivate, 0))
	if err != nil {
		panic(err)
	}
	responder := identity.PublicOnly(identity.PublicKey{
		Modulus:  mustHex(defaultResponderModulus, 0),
		Exponent: e,
	})

	return &Config{
		Group:     Group{Generator: gen, Prime: prime},
		Initiator: initiator,
		Responder: responder,
	}
}

func mustHex(s string, width int) bigint.Int {
	x, err := bigint.ParseHex(s, width)
	if err != nil {
		panic(err)
	}
	return x
}
