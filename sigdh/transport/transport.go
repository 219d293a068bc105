package transport

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("transport: closed")

// Transport is the byte pipe consumed by the handshake.
type Transport interface {
	// Send writes pkt in full.
	Send(ctx context.Context, pkt []byte) error
	// Receive blocks until exactly n bytes have arrived.
	Receive(ctx context.Context, n int) ([]byte, error)
}

type intercepted struct {
	Transport
	fn func(pkt []byte) []byte
}

// Intercept returns a Transport that passes every outgoing packet through
// fn before sending it. fn may return a modified copy.
func Intercept(t Transport, fn func(pkt []byte) []byte) Transport {
	return &intercepted{Transport: t, fn: fn}
}

func (i *intercepted) Send(ctx context.Context, pkt []byte) error {
	return i.Transport.Send(ctx, i.fn(pkt))
}
