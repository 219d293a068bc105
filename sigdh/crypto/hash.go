package crypto

import "golang.org/x/crypto/sha3"

const (
	// DigestSize is the output width of Hash.
	DigestSize = 32
	// BlockSize is the SHA3-256 rate, which is the HMAC block width.
	BlockSize = 136
)

// Hash returns SHA3-256 over the concatenation of parts.
func Hash(parts ...[]byte) [DigestSize]byte {
	h := sha3.New256()
	for _, p := range parts {
		h.Write(p)
	}
	var out [DigestSize]byte
	h.Sum(out[:0])
	return out
}
