package identity

import (
	"encoding/hex"
	"errors"

	"github.com/TheusHen/sigdh/sigdh/crypto"
)

// PeerID is the stable identifier for a signing identity.
// It is defined as: PeerID = SHA3-256(modulus || exponent).
type PeerID [32]byte

func PeerIDFromPublicKey(pub PublicKey) PeerID {
	return PeerID(crypto.Hash(pub.Modulus.Octets(), pub.Exponent.Octets()))
}

func ParsePeerIDHex(s string) (PeerID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return PeerID{}, err
	}
	if len(b) != len(PeerID{}) {
		return PeerID{}, errors.New("identity: invalid PeerID length")
	}
	var id PeerID
	copy(id[:], b)
	return id, nil
}

func (id PeerID) String() string {
	return hex.EncodeToString(id[:])
}

// Short is the first eight bytes in hex, for logs.
func (id PeerID) Short() string {
	return hex.EncodeToString(id[:8])
}
