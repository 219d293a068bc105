package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheusHen/sigdh/sigdh/crypto/bigint"
)

func mustHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestHashKnownAnswers(t *testing.T) {
	empty := Hash()
	assert.Equal(t, "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a", hex.EncodeToString(empty[:]))

	abc := Hash([]byte("abc"))
	assert.Equal(t, "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532", hex.EncodeToString(abc[:]))

	split := Hash([]byte("a"), []byte("bc"))
	assert.Equal(t, abc, split)
}

func TestHMACKnownAnswers(t *testing.T) {
	seq := make([]byte, 16)
	for i := range seq {
		seq[i] = byte(i)
	}
	cases := []struct {
		name string
		key  []byte
		data []byte
		want string
	}{
		{"rfc4231-case1", bytes.Repeat([]byte{0x0b}, 20), []byte("Hi There"), "ba85192310dffa96e2a3a40e69774351140bb7185e1202cdcc917589f95e16bb"},
		{"empty-message", seq, nil, "72756291ff30f3e916bef99ec9cf5938b25d90bbcac1bdb1e1e6564e8ec6fda5"},
		{"quick-fox", []byte("key"), []byte("The quick brown fox jumps over the lazy dog"), "8c6e0683409427f8931711b10ca92a506eb1fafa48fadd66d76126f47ac2c333"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tag, err := HMAC(tc.key, tc.data)
			require.NoError(t, err)
			assert.Equal(t, tc.want, hex.EncodeToString(tag[:]))
			assert.True(t, VerifyHMAC(tc.key, tag[:], tc.data))
		})
	}
}

func TestHMACKeyBounds(t *testing.T) {
	_, err := HMAC(make([]byte, BlockSize), []byte("x"))
	assert.NoError(t, err)

	_, err = HMAC(make([]byte, BlockSize+1), []byte("x"))
	assert.ErrorIs(t, err, ErrMACKeyTooLong)
	assert.False(t, VerifyHMAC(make([]byte, BlockSize+1), make([]byte, DigestSize), []byte("x")))
}

func TestVerifyHMACRejectsTamper(t *testing.T) {
	key := []byte("0123456789abcdef")
	tag, err := HMAC(key, []byte("counter"), []byte("payload"))
	require.NoError(t, err)
	assert.True(t, VerifyHMAC(key, tag[:], []byte("counterpayload")))

	tag[0] ^= 1
	assert.False(t, VerifyHMAC(key, tag[:], []byte("counterpayload")))
	assert.False(t, VerifyHMAC(key, tag[:DigestSize-1], []byte("counterpayload")))
}

func TestDeriveSessionKeysKnownAnswers(t *testing.T) {
	seq := make([]byte, 16)
	for i := range seq {
		seq[i] = byte(i)
	}
	small, err := bigint.FromOctets(seq, 16)
	require.NoError(t, err)
	keys, err := DeriveSessionKeys(small)
	require.NoError(t, err)
	assert.Equal(t, mustHex(t, "39462d2a2320f8da572a97b0b39473d4"), keys.CipherKey[:])
	assert.Equal(t, mustHex(t, "312e0228b23e2c2fe0ae9b6c67f2343c"), keys.MACKey[:])
	assert.Equal(t, mustHex(t, "730a51182820a439"), keys.Nonce[:])

	wide, err := bigint.FromUint64(42, 156)
	require.NoError(t, err)
	keys, err = DeriveSessionKeys(wide)
	require.NoError(t, err)
	assert.Equal(t, mustHex(t, "247a83370bedd952298718bca57627f6"), keys.CipherKey[:])
	assert.Equal(t, mustHex(t, "f0a73b866c8637814edb3606fdcf676c"), keys.MACKey[:])
	assert.Equal(t, mustHex(t, "a801098cdc945f22"), keys.Nonce[:])
}

func TestDeriveSessionKeysProperties(t *testing.T) {
	a, _ := bigint.FromUint64(0xdeadbeef, 64)
	k1, err := DeriveSessionKeys(a)
	require.NoError(t, err)
	k2, err := DeriveSessionKeys(a)
	require.NoError(t, err)
	assert.True(t, k1.Equal(&k2))
	assert.NotEqual(t, k1.CipherKey[:], k1.MACKey[:])
	assert.False(t, k1.IsZero())
	assert.Equal(t, k1.Fingerprint(), k2.Fingerprint())

	// The same value at another width is a different secret.
	b, _ := bigint.FromUint64(0xdeadbeef, 65)
	k3, err := DeriveSessionKeys(b)
	require.NoError(t, err)
	assert.False(t, k1.Equal(&k3))

	_, err = DeriveSessionKeys(bigint.Int{})
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestSessionKeysWipeIdempotent(t *testing.T) {
	a, _ := bigint.FromUint64(99, 32)
	k, err := DeriveSessionKeys(a)
	require.NoError(t, err)
	k.Wipe()
	assert.True(t, k.IsZero())
	k.Wipe()
	assert.True(t, k.IsZero())

	var nilKeys *SessionKeys
	nilKeys.Wipe()
}

func BenchmarkHMAC(b *testing.B) {
	key := make([]byte, MACKeySize)
	msg := make([]byte, 64*1024)
	b.SetBytes(int64(len(msg)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = HMAC(key, msg)
	}
}
