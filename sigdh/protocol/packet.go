package protocol

import (
	"errors"
	"fmt"

	"github.com/TheusHen/sigdh/sigdh/crypto/bigint"
)

var ErrMalformedPacket = errors.New("protocol: malformed handshake packet")

// Codec encodes the three handshake packets. Every packet is PacketSize()
// bytes: the big-endian payload at its fixed width, then zero fill.
//
//	SENDER_HELLO, RECEIVER_HELLO: DH public value (GroupWidth bytes)
//	SENDER_ACK:                   RSA signature (SignatureWidth bytes)
//
// Packets carry no type or sequence field; position in the exchange
// determines their meaning.
type Codec struct {
	GroupWidth     int
	SignatureWidth int
}

func (c Codec) PacketSize() int { return max(c.GroupWidth, c.SignatureWidth) }

func (c Codec) payloadWidth(t MessageType) (int, error) {
	switch t {
	case MessageTypeSenderHello, MessageTypeReceiverHello:
		return c.GroupWidth, nil
	case MessageTypeSenderAcknowledge:
		return c.SignatureWidth, nil
	default:
		return 0, ErrInvalidType
	}
}

// Encode writes v into a fresh packet for message t.
func (c Codec) Encode(t MessageType, v bigint.Int) ([]byte, error) {
	width, err := c.payloadWidth(t)
	if err != nil {
		return nil, err
	}
	if v.Width() != width {
		return nil, fmt.Errorf("protocol: %s payload width %d, want %d", t, v.Width(), width)
	}
	pkt := make([]byte, c.PacketSize())
	copy(pkt, v.Octets())
	return pkt, nil
}

// Decode parses a packet for message t. A packet of the wrong length or
// with non-zero fill is rejected with ErrMalformedPacket.
func (c Codec) Decode(t MessageType, pkt []byte) (bigint.Int, error) {
	width, err := c.payloadWidth(t)
	if err != nil {
		return bigint.Int{}, err
	}
	if len(pkt) != c.PacketSize() {
		return bigint.Int{}, fmt.Errorf("%w: %s is %d bytes, want %d", ErrMalformedPacket, t, len(pkt), c.PacketSize())
	}
	var fill byte
	for _, b := range pkt[width:] {
		fill |= b
	}
	if fill != 0 {
		return bigint.Int{}, fmt.Errorf("%w: %s has non-zero fill", ErrMalformedPacket, t)
	}
	v, err := bigint.FromOctets(pkt[:width], width)
	if err != nil {
		return bigint.Int{}, fmt.Errorf("%w: %v", ErrMalformedPacket, err)
	}
	return v, nil
}
