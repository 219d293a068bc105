package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/TheusHen/sigdh/sigdh/params"
	"github.com/TheusHen/sigdh/sigdh/protocol"
	"github.com/TheusHen/sigdh/sigdh/transport"
)

// Initiate runs the initiator side over tr and returns a session in
// StateKeysDerived. On failure the session is torn down and only the error
// is returned.
func Initiate(ctx context.Context, cfg *params.Config, tr transport.Transport, opts Options) (*Session, error) {
	s, err := NewInitiator(cfg, opts)
	if err != nil {
		return nil, err
	}
	if err := s.runInitiator(ctx, tr); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) runInitiator(ctx context.Context, tr transport.Transport) error {
	hello, err := s.SenderHello()
	if err != nil {
		return err
	}
	if err := s.send(ctx, tr, protocol.MessageTypeSenderHello, hello); err != nil {
		return err
	}
	reply, err := s.receive(ctx, tr, protocol.MessageTypeReceiverHello)
	if err != nil {
		return err
	}
	if err := s.HandleReceiverHello(reply); err != nil {
		return err
	}
	ack, err := s.SenderAcknowledge()
	if err != nil {
		return err
	}
	if err := s.send(ctx, tr, protocol.MessageTypeSenderAcknowledge, ack); err != nil {
		return err
	}
	return s.DeriveKeys()
}

// Respond runs the responder side over tr. Keys are only derived once the
// initiator's signature has been verified.
func Respond(ctx context.Context, cfg *params.Config, tr transport.Transport, opts Options) (*Session, error) {
	s := NewResponder(cfg, opts)
	if err := s.runResponder(ctx, tr); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) runResponder(ctx context.Context, tr transport.Transport) error {
	hello, err := s.receive(ctx, tr, protocol.MessageTypeSenderHello)
	if err != nil {
		return err
	}
	if err := s.HandleSenderHello(hello); err != nil {
		return err
	}
	reply, err := s.ReceiverHello()
	if err != nil {
		return err
	}
	if err := s.send(ctx, tr, protocol.MessageTypeReceiverHello, reply); err != nil {
		return err
	}
	ack, err := s.receive(ctx, tr, protocol.MessageTypeSenderAcknowledge)
	if err != nil {
		return err
	}
	if err := s.HandleSenderAcknowledge(ack); err != nil {
		return err
	}
	return s.DeriveKeys()
}

func (s *Session) send(ctx context.Context, tr transport.Transport, mt protocol.MessageType, pkt []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.MessageTimeout)
	defer cancel()
	if err := tr.Send(ctx, pkt); err != nil {
		return s.fail(mt, err)
	}
	s.log.WithFields(logrus.Fields{
		"message":     mt.String(),
		"packet_size": len(pkt),
	}).Debug("packet sent")
	return nil
}

func (s *Session) receive(ctx context.Context, tr transport.Transport, mt protocol.MessageType) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.MessageTimeout)
	defer cancel()
	pkt, err := tr.Receive(ctx, s.PacketSize())
	if err != nil {
		return nil, s.fail(mt, err)
	}
	return pkt, nil
}

// fail aborts the session for a transport error. Deadline expiry is
// reported as ErrTimeout.
func (s *Session) fail(mt protocol.MessageType, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %s: %w", ErrTimeout, mt, err)
	} else {
		err = fmt.Errorf("session: %s: %w", mt, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.abort(err)
}

// Pair runs both roles against each other over an in-memory pipe. Each role
// gets its own copy of opts; the logger is shared.
func Pair(ctx context.Context, cfg *params.Config, opts Options) (initiator, responder *Session, err error) {
	return PairOver(ctx, cfg, opts, func(a, b transport.Transport) (transport.Transport, transport.Transport) {
		return a, b
	})
}

// PairOver is Pair with a hook to wrap either end of the pipe, e.g. to
// observe or corrupt packets.
func PairOver(ctx context.Context, cfg *params.Config, opts Options, wrap func(a, b transport.Transport) (transport.Transport, transport.Transport)) (initiator, responder *Session, err error) {
	a, b := transport.Pipe()
	defer a.Close()
	ta, tb := wrap(a, b)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := Initiate(gctx, cfg, ta, opts)
		initiator = s
		return err
	})
	g.Go(func() error {
		s, err := Respond(gctx, cfg, tb, opts)
		responder = s
		return err
	})
	if err := g.Wait(); err != nil {
		if initiator != nil {
			_ = initiator.Close()
		}
		if responder != nil {
			_ = responder.Close()
		}
		return nil, nil, err
	}
	return initiator, responder, nil
}
