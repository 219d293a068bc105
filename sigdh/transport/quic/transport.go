// Package quic carries sigdh traffic over a single bidirectional QUIC stream.
package quic

import (
	"context"
	"net"
	"time"

	q "github.com/quic-go/quic-go"
)

// Config tunes the QUIC layer. The zero value uses quic-go defaults.
type Config struct {
	HandshakeIdleTimeout time.Duration
	MaxIdleTimeout       time.Duration
	KeepAlivePeriod      time.Duration
}

func (c Config) quic() *q.Config {
	return &q.Config{
		HandshakeIdleTimeout: c.HandshakeIdleTimeout,
		MaxIdleTimeout:       c.MaxIdleTimeout,
		KeepAlivePeriod:      c.KeepAlivePeriod,
	}
}

type Listener struct {
	inner *q.Listener
}

func Listen(addr string, conf Config) (*Listener, error) {
	tlsConf, err := serverTLSConfig()
	if err != nil {
		return nil, err
	}
	ln, err := q.ListenAddr(addr, tlsConf, conf.quic())
	if err != nil {
		return nil, err
	}
	return &Listener{inner: ln}, nil
}

// Accept waits for a connection and the stream its peer opens on it.
func (l *Listener) Accept(ctx context.Context) (q.Connection, q.Stream, error) {
	conn, err := l.inner.Accept(ctx)
	if err != nil {
		return nil, nil, err
	}
	st, err := conn.AcceptStream(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "no stream")
		return nil, nil, err
	}
	return conn, st, nil
}

func (l *Listener) Addr() net.Addr { return l.inner.Addr() }

func (l *Listener) AddrString() string {
	if l.inner == nil {
		return ""
	}
	return l.inner.Addr().String()
}

func (l *Listener) Close() error { return l.inner.Close() }

// Dial connects to addr and opens the stream the handshake runs on. The
// stream is only announced to the peer once the first packet is written.
func Dial(ctx context.Context, addr string, conf Config) (q.Connection, q.Stream, error) {
	conn, err := q.DialAddr(ctx, addr, clientTLSConfig(), conf.quic())
	if err != nil {
		return nil, nil, err
	}
	st, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "no stream")
		return nil, nil, err
	}
	return conn, st, nil
}
