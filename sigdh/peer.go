package sigdh

import (
	"context"
	"errors"
	"net"

	q "github.com/quic-go/quic-go"
	"github.com/sirupsen/logrus"

	"github.com/TheusHen/sigdh/sigdh/channel"
	"github.com/TheusHen/sigdh/sigdh/params"
	"github.com/TheusHen/sigdh/sigdh/session"
	"github.com/TheusHen/sigdh/sigdh/transport"
	"github.com/TheusHen/sigdh/sigdh/transport/quic"
)

var ErrNotListening = errors.New("sigdh: peer is not listening")

// QUIC application error codes used when a connection is torn down.
const (
	codeClosed          q.ApplicationErrorCode = 0
	codeHandshakeFailed q.ApplicationErrorCode = 1
)

type Options struct {
	Session session.Options
	QUIC    quic.Config
}

// Peer combines the QUIC transport with the handshake. The same Peer may
// listen and dial; its role is chosen per connection.
type Peer struct {
	cfg      *params.Config
	opts     Options
	log      *logrus.Entry
	listener *quic.Listener
}

// NewPeer validates cfg and returns a peer that uses it for every
// connection.
func NewPeer(cfg *params.Config, opts Options) (*Peer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := opts.Session.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
		opts.Session.Logger = log
	}
	return &Peer{cfg: cfg, opts: opts, log: log}, nil
}

func (p *Peer) Listen(addr string) error {
	ln, err := quic.Listen(addr, p.opts.QUIC)
	if err != nil {
		return err
	}
	p.listener = ln
	p.log.WithField("addr", ln.AddrString()).Info("listening")
	return nil
}

func (p *Peer) ListenAddr() string {
	if p.listener == nil {
		return ""
	}
	return p.listener.AddrString()
}

func (p *Peer) Close() error {
	if p.listener == nil {
		return nil
	}
	return p.listener.Close()
}

// Accept waits for the next connection and runs the responder role on it.
// A connection whose handshake fails is closed and the error returned; the
// listener stays usable.
func (p *Peer) Accept(ctx context.Context) (*Conn, error) {
	if p.listener == nil {
		return nil, ErrNotListening
	}
	qc, st, err := p.listener.Accept(ctx)
	if err != nil {
		return nil, err
	}
	log := p.log.WithField("remote", qc.RemoteAddr().String())
	s, err := session.Respond(ctx, p.cfg, transport.NewStream(st), p.sessionOptions(log))
	if err != nil {
		_ = qc.CloseWithError(codeHandshakeFailed, "handshake failed")
		return nil, err
	}
	return newConn(qc, st, s, log)
}

// Dial connects to addr and runs the initiator role.
func (p *Peer) Dial(ctx context.Context, addr string) (*Conn, error) {
	qc, st, err := quic.Dial(ctx, addr, p.opts.QUIC)
	if err != nil {
		return nil, err
	}
	log := p.log.WithField("remote", qc.RemoteAddr().String())
	s, err := session.Initiate(ctx, p.cfg, transport.NewStream(st), p.sessionOptions(log))
	if err != nil {
		_ = qc.CloseWithError(codeHandshakeFailed, "handshake failed")
		return nil, err
	}
	return newConn(qc, st, s, log)
}

func (p *Peer) sessionOptions(log *logrus.Entry) session.Options {
	o := p.opts.Session
	o.Logger = log
	return o
}

// Conn is an authenticated, encrypted connection to one remote peer.
type Conn struct {
	*channel.Conn
	qc      q.Connection
	session *session.Session
}

func newConn(qc q.Connection, st q.Stream, s *session.Session, log *logrus.Entry) (*Conn, error) {
	cc, err := channel.Dial(st, s, log)
	if err != nil {
		_ = s.Close()
		_ = qc.CloseWithError(codeHandshakeFailed, "no keys")
		return nil, err
	}
	return &Conn{Conn: cc, qc: qc, session: s}, nil
}

// Session returns the completed handshake. Its keys are wiped by Close.
func (c *Conn) Session() *session.Session { return c.session }

func (c *Conn) RemoteAddr() net.Addr { return c.qc.RemoteAddr() }

// Close sends a CLOSE record, wipes the channel and session keys and
// closes the QUIC connection.
func (c *Conn) Close() error {
	err := c.Conn.Close()
	_ = c.session.Close()
	if cerr := c.qc.CloseWithError(codeClosed, ""); err == nil {
		err = cerr
	}
	return err
}
