package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheusHen/sigdh/sigdh/crypto/bigint"
)

var defaultCodec = Codec{GroupWidth: 156, SignatureWidth: 157}

func TestPacketRoundTrip(t *testing.T) {
	c := defaultCodec
	require.Equal(t, 157, c.PacketSize())

	v, err := bigint.FromUint64(0xabcdef, 156)
	require.NoError(t, err)
	pkt, err := c.Encode(MessageTypeSenderHello, v)
	require.NoError(t, err)
	require.Len(t, pkt, 157)
	assert.Equal(t, byte(0), pkt[156])
	assert.Equal(t, byte(0xef), pkt[155])

	got, err := c.Decode(MessageTypeSenderHello, pkt)
	require.NoError(t, err)
	assert.True(t, bigint.Equal(v, got))

	sig, _ := bigint.FromUint64(0x1234, 157)
	pkt, err = c.Encode(MessageTypeSenderAcknowledge, sig)
	require.NoError(t, err)
	got, err = c.Decode(MessageTypeSenderAcknowledge, pkt)
	require.NoError(t, err)
	assert.True(t, bigint.Equal(sig, got))
}

func TestPacketMalformed(t *testing.T) {
	c := defaultCodec
	v, _ := bigint.FromUint64(7, 156)
	pkt, err := c.Encode(MessageTypeReceiverHello, v)
	require.NoError(t, err)

	_, err = c.Decode(MessageTypeReceiverHello, pkt[:156])
	assert.ErrorIs(t, err, ErrMalformedPacket)

	_, err = c.Decode(MessageTypeReceiverHello, append(pkt, 0))
	assert.ErrorIs(t, err, ErrMalformedPacket)

	pkt[156] = 1
	_, err = c.Decode(MessageTypeReceiverHello, pkt)
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

func TestPacketWidthMismatch(t *testing.T) {
	c := defaultCodec
	v, _ := bigint.FromUint64(7, 157)
	_, err := c.Encode(MessageTypeSenderHello, v)
	assert.Error(t, err)

	_, err = c.Encode(MessageTypeData, v)
	assert.ErrorIs(t, err, ErrInvalidType)
	_, err = c.Decode(MessageTypeData, make([]byte, c.PacketSize()))
	assert.ErrorIs(t, err, ErrInvalidType)
}
