package transfer

import (
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/TheusHen/sigdh/sigdh/channel"
	"github.com/TheusHen/sigdh/sigdh/crypto"
	"github.com/TheusHen/sigdh/sigdh/transfer/erasure"
)

const (
	// MaxSize is the largest payload Send accepts, whatever the shard
	// layout.
	MaxSize = 64 << 20

	version    = 2
	headerSize = 4 + 3*4 + crypto.DigestSize
	flagLZ4    = 1 << 0
	// A shard record starts with its group (uint16) and its index in the
	// group.
	indexPrefix = 3
	maxShard    = channel.MaxMessage - indexPrefix
	maxGroups   = 1 << 16
)

var (
	ErrTooLarge          = errors.New("transfer: payload too large")
	ErrMalformedHeader   = errors.New("transfer: malformed header")
	ErrMalformedShard    = errors.New("transfer: malformed shard")
	ErrIntegrityMismatch = errors.New("transfer: payload digest mismatch")
)

// MessageConn is the record stream a transfer runs over. *channel.Conn
// implements it.
type MessageConn interface {
	WriteMessage(p []byte) error
	ReadMessage() ([]byte, error)
}

type Config struct {
	DataShards   int
	ParityShards int
	Compression  CompressionLevel
	// Logger receives per-transfer summaries. Nil uses the logrus standard
	// logger.
	Logger *logrus.Entry
}

func DefaultConfig() Config {
	return Config{DataShards: 10, ParityShards: 4}
}

func (c Config) logger() *logrus.Entry {
	if c.Logger == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return c.Logger
}

// Stats describes one completed transfer.
type Stats struct {
	Size       int
	Payload    int
	Compressed bool
	Groups     int
	Shards     int
	Lost       int
}

type header struct {
	flags     byte
	data      int
	parity    int
	shardSize int
	payload   int
	size      int
	digest    [crypto.DigestSize]byte
}

func (h header) marshal() []byte {
	b := make([]byte, headerSize)
	b[0] = version
	b[1] = h.flags
	b[2] = byte(h.data)
	b[3] = byte(h.parity)
	binary.BigEndian.PutUint32(b[4:], uint32(h.shardSize))
	binary.BigEndian.PutUint32(b[8:], uint32(h.payload))
	binary.BigEndian.PutUint32(b[12:], uint32(h.size))
	copy(b[16:], h.digest[:])
	return b
}

func parseHeader(b []byte) (header, error) {
	if len(b) != headerSize || b[0] != version {
		return header{}, fmt.Errorf("%w: %d bytes", ErrMalformedHeader, len(b))
	}
	h := header{
		flags:     b[1],
		data:      int(b[2]),
		parity:    int(b[3]),
		shardSize: int(binary.BigEndian.Uint32(b[4:])),
		payload:   int(binary.BigEndian.Uint32(b[8:])),
		size:      int(binary.BigEndian.Uint32(b[12:])),
	}
	copy(h.digest[:], b[16:])
	switch {
	case h.size > MaxSize, h.payload > MaxSize:
		return header{}, fmt.Errorf("%w: size %d", ErrMalformedHeader, h.size)
	case h.data == 0:
		return header{}, fmt.Errorf("%w: no data shards", ErrMalformedHeader)
	case h.shardSize != groupShardSize(h.data, h.payload):
		return header{}, fmt.Errorf("%w: shard size %d for %d bytes over %d shards", ErrMalformedHeader, h.shardSize, h.payload, h.data)
	}
	return h, nil
}

// groupShardSize is the shard size of every full group: as small as one
// group allows, capped by what fits in a record.
func groupShardSize(data, payload int) int {
	return max(1, min(maxShard, (payload+data-1)/data))
}

// groupLen is the payload length group g carries.
func (h header) groupLen(g int) int {
	full := h.data * h.shardSize
	return min(full, h.payload-g*full)
}

func (h header) groups() int {
	full := h.data * h.shardSize
	return max(1, (h.payload+full-1)/full)
}

// Send compresses data, encodes it into shards and writes the header and
// shard records to conn.
func Send(conn MessageConn, data []byte, cfg Config) (Stats, error) {
	if len(data) > MaxSize {
		return Stats{}, ErrTooLarge
	}
	codec, err := erasure.NewCodec(cfg.DataShards, cfg.ParityShards)
	if err != nil {
		return Stats{}, err
	}
	payload, compressed, err := Compress(data, cfg.Compression)
	if err != nil {
		return Stats{}, err
	}
	h := header{
		data:      codec.DataShards(),
		parity:    codec.ParityShards(),
		shardSize: groupShardSize(codec.DataShards(), len(payload)),
		payload:   len(payload),
		size:      len(data),
		digest:    crypto.Hash(data),
	}
	if compressed {
		h.flags |= flagLZ4
	}
	if h.groups() > maxGroups {
		return Stats{}, fmt.Errorf("%w: %d shard groups", ErrTooLarge, h.groups())
	}

	if err := conn.WriteMessage(h.marshal()); err != nil {
		return Stats{}, err
	}
	rec := make([]byte, indexPrefix+h.shardSize)
	off := 0
	for g := range h.groups() {
		n := h.groupLen(g)
		shards, err := codec.Encode(payload[off : off+n])
		if err != nil {
			return Stats{}, err
		}
		off += n
		binary.BigEndian.PutUint16(rec, uint16(g))
		for i, s := range shards {
			rec[2] = byte(i)
			m := copy(rec[indexPrefix:], s)
			if err := conn.WriteMessage(rec[:indexPrefix+m]); err != nil {
				return Stats{}, fmt.Errorf("transfer: group %d shard %d: %w", g, i, err)
			}
		}
	}

	st := Stats{
		Size:       len(data),
		Payload:    len(payload),
		Compressed: compressed,
		Groups:     h.groups(),
		Shards:     h.groups() * codec.TotalShards(),
	}
	cfg.logger().WithFields(logrus.Fields{
		"size":       st.Size,
		"payload":    st.Payload,
		"compressed": st.Compressed,
		"groups":     st.Groups,
		"shards":     st.Shards,
	}).Debug("transfer sent")
	return st, nil
}

// rejected reports whether err is a record the channel refused to open.
// Such records are lost shards, not a broken stream.
func rejected(err error) bool {
	return errors.Is(err, channel.ErrAuthFailed) ||
		errors.Is(err, channel.ErrReplay) ||
		errors.Is(err, channel.ErrWrongDirection)
}

// Receive reads one transfer from conn and returns the original payload.
// The header record must authenticate; up to ParityShards shard records
// may not. The shard layout comes from the header, so only cfg.Logger is
// used.
func Receive(conn MessageConn, cfg Config) ([]byte, Stats, error) {
	raw, err := conn.ReadMessage()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("transfer: header: %w", err)
	}
	h, err := parseHeader(raw)
	if err != nil {
		return nil, Stats{}, err
	}
	codec, err := erasure.NewCodec(h.data, h.parity)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w: %w", ErrMalformedHeader, err)
	}

	st := Stats{Size: h.size, Payload: h.payload, Compressed: h.flags&flagLZ4 != 0, Groups: h.groups()}
	log := cfg.logger().WithFields(logrus.Fields{
		"size":   st.Size,
		"groups": st.Groups,
	})

	payload := make([]byte, 0, h.payload)
	for g := range h.groups() {
		n := h.groupLen(g)
		shards, err := readGroup(conn, codec, g, codec.ShardSize(max(1, n)))
		if err != nil {
			return nil, st, err
		}
		st.Shards += len(shards)
		st.Lost += erasure.Missing(shards)
		chunk, err := codec.Decode(shards, n)
		if err != nil {
			log.WithFields(logrus.Fields{
				"group": g,
				"lost":  st.Lost,
				"error": err.Error(),
			}).Warn("transfer unrecoverable")
			return nil, st, err
		}
		payload = append(payload, chunk...)
	}
	log = log.WithFields(logrus.Fields{"shards": st.Shards, "lost": st.Lost})

	data := payload
	if st.Compressed {
		if data, err = Decompress(payload, h.size); err != nil {
			return nil, st, err
		}
	}
	got := crypto.Hash(data)
	if len(data) != h.size || subtle.ConstantTimeCompare(got[:], h.digest[:]) != 1 {
		return nil, st, ErrIntegrityMismatch
	}
	log.Debug("transfer received")
	return data, st, nil
}

// readGroup reads the TotalShards records of group g. Records the channel
// rejects are left nil.
func readGroup(conn MessageConn, codec *erasure.Codec, g, shardSize int) ([][]byte, error) {
	shards := make([][]byte, codec.TotalShards())
	for range shards {
		rec, err := conn.ReadMessage()
		if rejected(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("transfer: group %d shard: %w", g, err)
		}
		if len(rec) != indexPrefix+shardSize {
			return nil, fmt.Errorf("%w: %d bytes", ErrMalformedShard, len(rec))
		}
		if int(binary.BigEndian.Uint16(rec)) != g {
			return nil, fmt.Errorf("%w: group %d, want %d", ErrMalformedShard, binary.BigEndian.Uint16(rec), g)
		}
		i := int(rec[2])
		if i >= len(shards) || shards[i] != nil {
			return nil, fmt.Errorf("%w: index %d", ErrMalformedShard, i)
		}
		shards[i] = rec[indexPrefix:]
	}
	return shards, nil
}
