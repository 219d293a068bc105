package erasure

import (
	"errors"
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// MaxShards bounds data plus parity so a shard index fits in one byte.
const MaxShards = 256

var (
	ErrTooManyLost   = errors.New("erasure: too many shards lost")
	ErrInvalidConfig = errors.New("erasure: invalid data/parity configuration")
	ErrShardCount    = errors.New("erasure: wrong number of shards")
	ErrShardSize     = errors.New("erasure: shard sizes do not match")
)

// Codec splits payloads into a fixed number of data and parity shards.
type Codec struct {
	enc    reedsolomon.Encoder
	data   int
	parity int
}

func NewCodec(data, parity int) (*Codec, error) {
	if data <= 0 || parity <= 0 || data+parity > MaxShards {
		return nil, fmt.Errorf("%w: %d+%d", ErrInvalidConfig, data, parity)
	}
	enc, err := reedsolomon.New(data, parity)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &Codec{enc: enc, data: data, parity: parity}, nil
}

func (c *Codec) DataShards() int   { return c.data }
func (c *Codec) ParityShards() int { return c.parity }
func (c *Codec) TotalShards() int  { return c.data + c.parity }

// ShardSize is the per-shard length for a payload of n bytes.
func (c *Codec) ShardSize(n int) int {
	return (n + c.data - 1) / c.data
}

// Encode returns TotalShards() shards for payload, data shards first.
// An empty payload still yields one byte per shard.
func (c *Codec) Encode(payload []byte) ([][]byte, error) {
	if len(payload) == 0 {
		payload = []byte{0}
	}
	shards, err := c.enc.Split(payload)
	if err != nil {
		return nil, err
	}
	if err := c.enc.Encode(shards); err != nil {
		return nil, err
	}
	return shards, nil
}

// Missing counts the nil entries in shards.
func Missing(shards [][]byte) int {
	n := 0
	for _, s := range shards {
		if s == nil {
			n++
		}
	}
	return n
}

// Decode rebuilds any nil data shards in place and joins the first size
// bytes of payload. Present shards must all have the same length.
func (c *Codec) Decode(shards [][]byte, size int) ([]byte, error) {
	if len(shards) != c.TotalShards() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrShardCount, len(shards), c.TotalShards())
	}
	if lost := Missing(shards); lost > c.parity {
		return nil, fmt.Errorf("%w: %d missing, %d parity", ErrTooManyLost, lost, c.parity)
	} else if lost > 0 {
		if err := c.enc.ReconstructData(shards); err != nil {
			if errors.Is(err, reedsolomon.ErrShardSize) || errors.Is(err, reedsolomon.ErrShardNoData) {
				return nil, fmt.Errorf("%w: %w", ErrShardSize, err)
			}
			if errors.Is(err, reedsolomon.ErrTooFewShards) {
				return nil, ErrTooManyLost
			}
			return nil, err
		}
	}

	out := make([]byte, 0, size)
	for _, s := range shards[:c.data] {
		if len(out)+len(s) > size {
			s = s[:size-len(out)]
		}
		out = append(out, s...)
		if len(out) == size {
			break
		}
	}
	if len(out) != size {
		return nil, fmt.Errorf("%w: joined %d bytes, want %d", ErrShardSize, len(out), size)
	}
	return out, nil
}

// Verify reports whether the parity shards match the data shards.
func (c *Codec) Verify(shards [][]byte) (bool, error) {
	return c.enc.Verify(shards)
}

// Overhead is total shards over data shards, e.g. 1.4 for 10+4.
func (c *Codec) Overhead() float64 {
	return float64(c.TotalShards()) / float64(c.data)
}
