package channel

import (
	"encoding/binary"
	"errors"
	"sync"

	"github.com/TheusHen/sigdh/sigdh/crypto"
	"github.com/TheusHen/sigdh/sigdh/protocol"
	"github.com/TheusHen/sigdh/sigdh/session"
)

const (
	counterSize = 4
	tagSize     = crypto.DigestSize
	// Overhead is the number of bytes a record adds to its plaintext.
	Overhead = counterSize + tagSize

	responderBit = uint32(1) << 31
	// MaxRecords is the number of records each direction may send.
	MaxRecords = uint64(responderBit)
)

var (
	ErrChannelClosed    = errors.New("channel: closed")
	ErrCounterExhausted = errors.New("channel: packet counter exhausted")
	ErrRecordTooShort   = errors.New("channel: record too short")
	ErrAuthFailed       = errors.New("channel: record authentication failed")
	ErrWrongDirection   = errors.New("channel: record was sent by this side")
	ErrReplay           = errors.New("channel: record replayed or too old")
)

// Channel seals and opens records for one side of a session. Seal and Open
// may be used from different goroutines.
type Channel struct {
	mu      sync.Mutex
	keys    crypto.SessionKeys
	sendBit uint32
	recvBit uint32
	sent    uint64
	opened  uint64
	window  replayWindow
	closed  bool
}

// New builds a channel from derived keys. keys is copied; the caller may
// wipe its copy.
func New(keys crypto.SessionKeys, role session.Role) *Channel {
	c := &Channel{keys: keys}
	if role == session.RoleResponder {
		c.sendBit = responderBit
	} else {
		c.recvBit = responderBit
	}
	return c
}

// FromSession builds a channel from a session in StateKeysDerived.
func FromSession(s *session.Session) (*Channel, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}
	c := New(keys, s.Role())
	keys.Wipe()
	return c, nil
}

// Seal encrypts and authenticates plaintext as the next DATA record.
func (c *Channel) Seal(plaintext []byte) ([]byte, error) {
	return c.SealRecord(protocol.MessageTypeData, plaintext)
}

// Open authenticates a DATA record from the peer, rejects replays and
// decrypts it.
func (c *Channel) Open(record []byte) ([]byte, error) {
	return c.OpenRecord(protocol.MessageTypeData, record)
}

// SealRecord encrypts plaintext as the next record. The tag covers
// typ || counter || ciphertext; the type itself travels in the enclosing
// frame, so the record only opens under the same frame type.
func (c *Channel) SealRecord(typ protocol.MessageType, plaintext []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrChannelClosed
	}
	if c.sent >= MaxRecords {
		return nil, ErrCounterExhausted
	}
	counter := c.sendBit | uint32(c.sent)

	ct, err := Encrypt(c.keys.CipherKey[:], c.keys.Nonce[:], counter, plaintext)
	if err != nil {
		return nil, err
	}
	rec := make([]byte, counterSize, Overhead+len(plaintext))
	binary.BigEndian.PutUint32(rec, counter)
	rec = append(rec, ct...)
	tag, err := crypto.HMAC(c.keys.MACKey[:], []byte{byte(typ)}, rec)
	if err != nil {
		return nil, err
	}
	c.sent++
	return append(rec, tag[:]...), nil
}

// OpenRecord authenticates a record received in a frame of type typ,
// rejects replays and decrypts it.
func (c *Channel) OpenRecord(typ protocol.MessageType, record []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrChannelClosed
	}
	if len(record) < Overhead {
		return nil, ErrRecordTooShort
	}
	body := record[:len(record)-tagSize]
	tag := record[len(record)-tagSize:]
	if !crypto.VerifyHMAC(c.keys.MACKey[:], tag, []byte{byte(typ)}, body) {
		return nil, ErrAuthFailed
	}
	counter := binary.BigEndian.Uint32(body)
	if counter&responderBit != c.recvBit {
		return nil, ErrWrongDirection
	}
	if !c.window.check(uint64(counter &^ responderBit)) {
		return nil, ErrReplay
	}
	c.opened++
	return Decrypt(c.keys.CipherKey[:], c.keys.Nonce[:], counter, body[counterSize:])
}

// Stats reports how many records were sealed and accepted.
func (c *Channel) Stats() (sealed, opened uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent, c.opened
}

// Close wipes the keys. Further Seal and Open calls fail. Idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.keys.Wipe()
	c.window.reset()
	c.closed = true
}
