package channel

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"errors"

	"github.com/TheusHen/sigdh/sigdh/crypto"
)

var ErrInvalidKey = errors.New("channel: invalid cipher key or nonce size")

func counterIV(nonce []byte, counter uint32) ([]byte, error) {
	if len(nonce) != crypto.NonceSize {
		return nil, ErrInvalidKey
	}
	iv := make([]byte, aes.BlockSize)
	copy(iv, nonce)
	binary.BigEndian.PutUint32(iv[crypto.NonceSize:], counter)
	return iv, nil
}

// Encrypt runs AES-CTR over data with the IV built from nonce and the
// packet counter. The caller must never repeat a counter under one key.
func Encrypt(key, nonce []byte, counter uint32, data []byte) ([]byte, error) {
	if len(key) != crypto.CipherKeySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	iv, err := counterIV(nonce, counter)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	cipher.NewCTR(block, iv).XORKeyStream(out, data)
	return out, nil
}

// Decrypt is the inverse of Encrypt. In counter mode they are the same
// operation.
func Decrypt(key, nonce []byte, counter uint32, data []byte) ([]byte, error) {
	return Encrypt(key, nonce, counter, data)
}
