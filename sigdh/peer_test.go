package sigdh

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheusHen/sigdh/sigdh/identity"
	"github.com/TheusHen/sigdh/sigdh/params/paramstest"
	"github.com/TheusHen/sigdh/sigdh/session"
)

func quietOptions() Options {
	logger, _ := test.NewNullLogger()
	return Options{Session: session.Options{Logger: logrus.NewEntry(logger), MessageTimeout: 3 * time.Second}}
}

func TestPeerEcho(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	server, err := NewPeer(paramstest.Config(), quietOptions())
	require.NoError(t, err)
	require.NoError(t, server.Listen("127.0.0.1:0"))
	defer server.Close()

	type result struct {
		msg []byte
		err error
	}
	resCh := make(chan result, 1)
	go func() {
		conn, err := server.Accept(ctx)
		if err != nil {
			resCh <- result{err: err}
			return
		}
		defer conn.Close()
		msg, err := conn.ReadMessage()
		if err == nil {
			err = conn.WriteMessage(msg)
		}
		resCh <- result{msg: msg, err: err}
		// Hold the connection until the client hangs up.
		_, _ = conn.ReadMessage()
	}()

	client, err := NewPeer(paramstest.Config(), quietOptions())
	require.NoError(t, err)
	conn, err := client.Dial(ctx, server.ListenAddr())
	require.NoError(t, err)
	assert.Equal(t, session.StateKeysDerived, conn.Session().State())
	assert.NotNil(t, conn.RemoteAddr())

	require.NoError(t, conn.WriteMessage([]byte("over quic")))
	echo, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "over quic", string(echo))

	res := <-resCh
	require.NoError(t, res.err)
	assert.Equal(t, "over quic", string(res.msg))

	_ = conn.Close()
	assert.Equal(t, session.StateClosed, conn.Session().State())
}

func TestPeerRejectsUnknownSigner(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The server expects the responder's key as the initiator identity, so
	// the client's genuine signature does not verify.
	serverCfg := paramstest.Config()
	serverCfg.Initiator = identity.PublicOnly(serverCfg.Responder.PublicKey)
	server, err := NewPeer(serverCfg, quietOptions())
	require.NoError(t, err)
	require.NoError(t, server.Listen("127.0.0.1:0"))
	defer server.Close()

	errCh := make(chan error, 1)
	go func() {
		conn, err := server.Accept(ctx)
		if err == nil {
			conn.Close()
		}
		errCh <- err
	}()

	client, err := NewPeer(paramstest.Config(), quietOptions())
	require.NoError(t, err)
	if conn, err := client.Dial(ctx, server.ListenAddr()); err == nil {
		defer conn.Close()
	}

	assert.ErrorIs(t, <-errCh, session.ErrSignatureRejected)
}

func TestPeerNotListening(t *testing.T) {
	p, err := NewPeer(paramstest.Config(), quietOptions())
	require.NoError(t, err)
	_, err = p.Accept(context.Background())
	assert.ErrorIs(t, err, ErrNotListening)
	assert.Empty(t, p.ListenAddr())
	assert.NoError(t, p.Close())
}

func TestNewPeerValidatesConfig(t *testing.T) {
	cfg := paramstest.Config()
	cfg.Initiator = identity.KeyPair{}
	_, err := NewPeer(cfg, quietOptions())
	assert.Error(t, err)
}
