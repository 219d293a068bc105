package channel

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/TheusHen/sigdh/sigdh/protocol"
	"github.com/TheusHen/sigdh/sigdh/session"
)

// MaxMessage is the largest plaintext WriteMessage accepts.
const MaxMessage = protocol.MaxFramePayload - Overhead

var ErrMessageTooLarge = errors.New("channel: message too large")

// Conn carries sealed records over a byte stream as protocol frames.
type Conn struct {
	rw  io.ReadWriter
	ch  *Channel
	log *logrus.Entry

	wmu        sync.Mutex
	rmu        sync.Mutex
	peerClosed atomic.Bool
}

// NewConn wraps rw. The Conn owns ch and closes it on Close. A nil logger
// uses the logrus standard logger.
func NewConn(rw io.ReadWriter, ch *Channel, log *logrus.Entry) *Conn {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Conn{rw: rw, ch: ch, log: log}
}

// Dial is a convenience for NewConn(rw, FromSession(s), log).
func Dial(rw io.ReadWriter, s *session.Session, log *logrus.Entry) (*Conn, error) {
	ch, err := FromSession(s)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return NewConn(rw, ch, log.WithField("role", s.Role().String())), nil
}

// Channel exposes the underlying record layer.
func (c *Conn) Channel() *Channel { return c.ch }

// WriteMessage seals p and writes it as one DATA frame.
func (c *Conn) WriteMessage(p []byte) error {
	if len(p) > MaxMessage {
		return ErrMessageTooLarge
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	rec, err := c.ch.SealRecord(protocol.MessageTypeData, p)
	if err != nil {
		return err
	}
	return protocol.WriteFrame(c.rw, protocol.Frame{Type: protocol.MessageTypeData, Payload: rec})
}

// ReadMessage returns the next authenticated plaintext. The frame type is
// bound into each record's tag, so a CLOSE that verifies was sealed as a
// CLOSE and yields io.EOF. Records that fail authentication are
// returned as errors; the stream stays usable.
func (c *Conn) ReadMessage() ([]byte, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()
	f, err := protocol.ReadFrame(c.rw)
	if err != nil {
		return nil, err
	}
	p, err := c.ch.OpenRecord(f.Type, f.Payload)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"message": f.Type.String(),
			"size":    len(f.Payload),
			"error":   err.Error(),
		}).Warn("record rejected")
		return nil, err
	}
	if f.Type == protocol.MessageTypeClose {
		c.peerClosed.Store(true)
		return nil, io.EOF
	}
	return p, nil
}

// Close sends an authenticated CLOSE frame unless the peer already sent
// one, wipes the keys and closes the underlying stream if it is an
// io.Closer.
func (c *Conn) Close() error {
	c.wmu.Lock()
	var err error
	rec, sealErr := c.ch.SealRecord(protocol.MessageTypeClose, nil)
	if sealErr == nil && !c.peerClosed.Load() {
		err = protocol.WriteFrame(c.rw, protocol.Frame{Type: protocol.MessageTypeClose, Payload: rec})
	}
	c.wmu.Unlock()

	c.ch.Close()
	if cl, ok := c.rw.(io.Closer); ok {
		if cerr := cl.Close(); err == nil {
			err = cerr
		}
	}
	if errors.Is(sealErr, ErrChannelClosed) {
		return nil
	}
	return err
}
