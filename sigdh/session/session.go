package session

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TheusHen/sigdh/sigdh/crypto"
	"github.com/TheusHen/sigdh/sigdh/crypto/bigint"
	"github.com/TheusHen/sigdh/sigdh/identity"
	"github.com/TheusHen/sigdh/sigdh/kex"
	"github.com/TheusHen/sigdh/sigdh/params"
	"github.com/TheusHen/sigdh/sigdh/protocol"
)

// DefaultMessageTimeout bounds the wait for each expected handshake packet.
const DefaultMessageTimeout = 10 * time.Second

var (
	ErrSignatureRejected = errors.New("session: signature rejected")
	ErrUnexpectedState   = errors.New("session: operation not valid in current state")
	ErrWrongRole         = errors.New("session: operation belongs to the other role")
	ErrTimeout           = errors.New("session: timed out waiting for message")
	ErrAborted           = errors.New("session: aborted")
	ErrClosed            = errors.New("session: closed")
	ErrNoKeys            = errors.New("session: no key material")
	ErrNotSigner         = errors.New("session: initiator identity has no private exponent")
	ErrKeyMismatch       = errors.New("session: roles derived different keys")
)

type Options struct {
	// Rand is the entropy source for ephemeral secrets. Nil uses crypto/rand.
	Rand io.Reader
	// MessageTimeout bounds each blocking send or receive. Zero means
	// DefaultMessageTimeout.
	MessageTimeout time.Duration
	// Logger receives transition and failure events. Nil uses the logrus
	// standard logger.
	Logger *logrus.Entry
}

func (o Options) withDefaults() Options {
	if o.MessageTimeout <= 0 {
		o.MessageTimeout = DefaultMessageTimeout
	}
	if o.Logger == nil {
		o.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return o
}

// Session is one role's handshake state. It exclusively owns its ephemeral
// secret, the peer's public value and the derived keys, and wipes all of
// them on abort or Close.
type Session struct {
	mu    sync.Mutex
	role  Role
	cfg   *params.Config
	codec protocol.Codec
	opts  Options
	log   *logrus.Entry

	state   State
	eph     *kex.Ephemeral
	peer    bigint.Int
	keys    crypto.SessionKeys
	cause   error
	started time.Time
	elapsed time.Duration
}

func newSession(role Role, cfg *params.Config, opts Options) *Session {
	opts = opts.withDefaults()
	return &Session{
		role: role,
		cfg:  cfg,
		codec: protocol.Codec{
			GroupWidth:     cfg.Group.Width(),
			SignatureWidth: cfg.Initiator.Width(),
		},
		opts: opts,
		log: opts.Logger.WithFields(logrus.Fields{
			"role":      role.String(),
			"initiator": cfg.Initiator.PeerID().Short(),
		}),
	}
}

// NewInitiator creates the signing side. The configured initiator identity
// must carry a private exponent.
func NewInitiator(cfg *params.Config, opts Options) (*Session, error) {
	if !cfg.Initiator.HasPrivate() {
		return nil, ErrNotSigner
	}
	return newSession(RoleInitiator, cfg, opts), nil
}

// NewResponder creates the verifying side.
func NewResponder(cfg *params.Config, opts Options) *Session {
	return newSession(RoleResponder, cfg, opts)
}

func (s *Session) Role() Role { return s.role }

// PacketSize is the length of every handshake packet for this session.
func (s *Session) PacketSize() int { return s.codec.PacketSize() }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the reason the session aborted, if it did.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cause
}

// Elapsed is the time from the first handshake step to key derivation.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// PeerPublicValue returns the DH value received from the other side. It is
// zero before the value arrives and after teardown.
func (s *Session) PeerPublicValue() bigint.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peer
}

// Keys returns a copy of the derived key material. The copy is the caller's
// to wipe. Keys are only available in StateKeysDerived.
func (s *Session) Keys() (crypto.SessionKeys, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateKeysDerived:
		return s.keys, nil
	case StateClosed:
		return crypto.SessionKeys{}, ErrClosed
	default:
		return crypto.SessionKeys{}, ErrNoKeys
	}
}

// Close wipes every secret the session holds. It is safe to call any
// number of times and from any state.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil
	}
	s.wipe()
	s.transition(StateClosed)
	return nil
}

// SenderHello generates the initiator's ephemeral key and returns message 1.
func (s *Session) SenderHello() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(RoleInitiator, StateStart); err != nil {
		return nil, err
	}
	s.started = time.Now()
	pkt, err := s.generate(protocol.MessageTypeSenderHello)
	if err != nil {
		return nil, s.abort(err)
	}
	s.transition(StateSenderHelloSent)
	return pkt, nil
}

// HandleSenderHello records the initiator's public value from message 1.
func (s *Session) HandleSenderHello(pkt []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(RoleResponder, StateStart); err != nil {
		return err
	}
	s.started = time.Now()
	if err := s.acceptPublicValue(protocol.MessageTypeSenderHello, pkt); err != nil {
		return s.abort(err)
	}
	s.transition(StateSenderHelloSent)
	return nil
}

// ReceiverHello generates the responder's ephemeral key and returns message 2.
func (s *Session) ReceiverHello() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(RoleResponder, StateSenderHelloSent); err != nil {
		return nil, err
	}
	pkt, err := s.generate(protocol.MessageTypeReceiverHello)
	if err != nil {
		return nil, s.abort(err)
	}
	s.transition(StateReceiverHelloSent)
	return pkt, nil
}

// HandleReceiverHello records the responder's public value from message 2.
func (s *Session) HandleReceiverHello(pkt []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(RoleInitiator, StateSenderHelloSent); err != nil {
		return err
	}
	if err := s.acceptPublicValue(protocol.MessageTypeReceiverHello, pkt); err != nil {
		return s.abort(err)
	}
	s.transition(StateReceiverHelloSent)
	return nil
}

// SenderAcknowledge signs the responder's public value and returns message 3.
func (s *Session) SenderAcknowledge() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(RoleInitiator, StateReceiverHelloSent); err != nil {
		return nil, err
	}
	m, err := identity.TranscriptValue(s.cfg.Initiator.PublicKey, s.peer)
	if err != nil {
		return nil, s.abort(err)
	}
	sig, err := s.cfg.Initiator.Sign(m)
	m.Wipe()
	if err != nil {
		return nil, s.abort(err)
	}
	pkt, err := s.codec.Encode(protocol.MessageTypeSenderAcknowledge, sig)
	if err != nil {
		return nil, s.abort(err)
	}
	s.transition(StateSenderAcknowledgeSent)
	return pkt, nil
}

// HandleSenderAcknowledge verifies the initiator's signature over the
// responder's own public value. A bad signature aborts the session.
func (s *Session) HandleSenderAcknowledge(pkt []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(RoleResponder, StateReceiverHelloSent); err != nil {
		return err
	}
	sig, err := s.codec.Decode(protocol.MessageTypeSenderAcknowledge, pkt)
	if err != nil {
		return s.abort(err)
	}
	// A signature is a residue mod n; anything larger is not a signature.
	if bigint.Cmp(sig, s.cfg.Initiator.PublicKey.Modulus) >= 0 {
		return s.abort(fmt.Errorf("%w: %s signature not below the modulus",
			protocol.ErrMalformedPacket, protocol.MessageTypeSenderAcknowledge))
	}
	want, err := identity.TranscriptValue(s.cfg.Initiator.PublicKey, s.eph.Public)
	if err != nil {
		return s.abort(err)
	}
	if !identity.Verify(s.cfg.Initiator.PublicKey, sig, want) {
		return s.abort(ErrSignatureRejected)
	}
	s.transition(StateSenderAcknowledgeSent)
	return nil
}

// DeriveKeys computes the shared secret and runs the KDF. The ephemeral
// secret and the shared secret are wiped as soon as the keys exist.
func (s *Session) DeriveKeys() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(s.role, StateSenderAcknowledgeSent); err != nil {
		return err
	}
	shared, err := s.eph.SharedSecret(&s.cfg.Group, s.peer)
	if err != nil {
		return s.abort(err)
	}
	keys, err := crypto.DeriveSessionKeys(shared)
	shared.Wipe()
	if err != nil {
		return s.abort(err)
	}
	s.eph.Wipe()
	s.keys = keys
	keys.Wipe()
	s.elapsed = time.Since(s.started)
	s.transition(StateKeysDerived)
	s.log.WithFields(logrus.Fields{
		"keys":    s.keys.Fingerprint(),
		"elapsed": s.elapsed,
	}).Info("handshake complete")
	return nil
}

func (s *Session) expect(role Role, state State) error {
	if s.role != role {
		return ErrWrongRole
	}
	switch s.state {
	case state:
		return nil
	case StateAborted:
		return fmt.Errorf("%w: %w", ErrAborted, s.cause)
	case StateClosed:
		return ErrClosed
	}
	// Out-of-order use is a protocol violation, so it is fatal.
	return s.abort(fmt.Errorf("%w: in %s, need %s", ErrUnexpectedState, s.state, state))
}

func (s *Session) generate(mt protocol.MessageType) ([]byte, error) {
	eph, err := kex.Generate(s.opts.Rand, &s.cfg.Group)
	if err != nil {
		return nil, err
	}
	s.eph = eph
	return s.codec.Encode(mt, eph.Public)
}

func (s *Session) acceptPublicValue(mt protocol.MessageType, pkt []byte) error {
	v, err := s.codec.Decode(mt, pkt)
	if err != nil {
		return err
	}
	if err := kex.ValidatePublicValue(&s.cfg.Group, v); err != nil {
		return fmt.Errorf("%w: %w", protocol.ErrMalformedPacket, err)
	}
	s.peer = v
	return nil
}

func (s *Session) transition(to State) {
	s.log.WithFields(logrus.Fields{
		"from": s.state.String(),
		"to":   to.String(),
	}).Debug("handshake transition")
	s.state = to
}

// abort records err, destroys all secrets and moves to StateAborted.
func (s *Session) abort(err error) error {
	s.wipe()
	s.cause = err
	s.log.WithFields(logrus.Fields{
		"state": s.state.String(),
		"error": err.Error(),
	}).Warn("handshake aborted")
	s.state = StateAborted
	return err
}

func (s *Session) wipe() {
	s.eph.Wipe()
	s.peer.Wipe()
	s.peer = bigint.Int{}
	s.keys.Wipe()
}
