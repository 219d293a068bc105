package transfer

import (
	"bytes"
	"crypto/rand"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheusHen/sigdh/sigdh/channel"
	"github.com/TheusHen/sigdh/sigdh/crypto"
	"github.com/TheusHen/sigdh/sigdh/session"
	"github.com/TheusHen/sigdh/sigdh/transfer/erasure"
	"github.com/TheusHen/sigdh/sigdh/transport"
)

// corrupting flips the last byte of selected writes. Each protocol frame is
// written in one call, so write n is record n.
type corrupting struct {
	io.ReadWriter
	mu     sync.Mutex
	writes int
	flip   map[int]bool
}

func (c *corrupting) Write(p []byte) (int, error) {
	c.mu.Lock()
	n := c.writes
	c.writes++
	c.mu.Unlock()
	if c.flip[n] {
		p = append([]byte(nil), p...)
		p[len(p)-1] ^= 0xff
	}
	return c.ReadWriter.Write(p)
}

func conns(t *testing.T, flip ...int) (*channel.Conn, *channel.Conn) {
	t.Helper()
	var keys crypto.SessionKeys
	for i := range keys.CipherKey {
		keys.CipherKey[i] = byte(3 * i)
		keys.MACKey[i] = byte(5 * i)
	}
	logger, _ := test.NewNullLogger()
	log := logrus.NewEntry(logger)

	a, b := transport.Pipe()
	t.Cleanup(func() { a.Close() })
	w := &corrupting{ReadWriter: a, flip: map[int]bool{}}
	for _, i := range flip {
		w.flip[i] = true
	}
	send := channel.NewConn(w, channel.New(keys, session.RoleInitiator), log)
	recv := channel.NewConn(b, channel.New(keys, session.RoleResponder), log)
	return send, recv
}

func quietConfig() Config {
	cfg := DefaultConfig()
	logger, _ := test.NewNullLogger()
	cfg.Logger = logrus.NewEntry(logger)
	return cfg
}

func roundTrip(t *testing.T, send, recv MessageConn, data []byte, cfg Config) ([]byte, Stats, Stats, error) {
	t.Helper()
	var sent Stats
	var sendErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		sent, sendErr = Send(send, data, cfg)
	}()
	got, st, err := Receive(recv, cfg)
	<-done
	require.NoError(t, sendErr)
	return got, sent, st, err
}

func TestSendReceive(t *testing.T) {
	send, recv := conns(t)
	data := bytes.Repeat([]byte("compressible transfer payload "), 4096)

	got, sent, st, err := roundTrip(t, send, recv, data, quietConfig())
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.True(t, sent.Compressed)
	assert.Less(t, sent.Payload, sent.Size)
	assert.Equal(t, 14, st.Shards)
	assert.Zero(t, st.Lost)
}

func TestIncompressiblePayload(t *testing.T) {
	send, recv := conns(t)
	data := make([]byte, 10000)
	for i := range data {
		data[i] = byte(i*7919 ^ i>>3)
	}
	cfg := quietConfig()
	cfg.Compression = CompressionOff

	got, sent, _, err := roundTrip(t, send, recv, data, cfg)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.False(t, sent.Compressed)
}

func TestRejectedShardsAreRebuilt(t *testing.T) {
	// Write 0 is the header; shards 0, 6, 11 and 13 follow at writes 1..14.
	send, recv := conns(t, 1, 7, 12, 14)
	data := bytes.Repeat([]byte{0xa5, 0x5a, 0x00}, 5000)

	got, _, st, err := roundTrip(t, send, recv, data, quietConfig())
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, 4, st.Lost)
}

func TestTooManyRejectedShards(t *testing.T) {
	send, recv := conns(t, 1, 2, 3, 4, 5)
	_, _, st, err := roundTrip(t, send, recv, []byte("lost"), quietConfig())
	assert.ErrorIs(t, err, erasure.ErrTooManyLost)
	assert.Equal(t, 5, st.Lost)
}

func TestRejectedHeader(t *testing.T) {
	send, recv := conns(t, 0)
	var sendErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, sendErr = Send(send, []byte("header lost"), quietConfig())
	}()
	_, _, err := Receive(recv, quietConfig())
	assert.ErrorIs(t, err, channel.ErrAuthFailed)
	// Drain the shard records so the sender finishes.
	for i := 0; i < 14; i++ {
		_, _ = recv.ReadMessage()
	}
	<-done
	require.NoError(t, sendErr)
}

func TestMultiGroupTransfer(t *testing.T) {
	cfg := quietConfig()
	cfg.DataShards = 2
	cfg.ParityShards = 1
	cfg.Compression = CompressionOff
	data := make([]byte, 2*2*maxShard+1000)
	_, err := rand.Read(data)
	require.NoError(t, err)

	// Write 0 is the header; group 1 occupies writes 4..6.
	send, recv := conns(t, 5)
	got, sent, st, err := roundTrip(t, send, recv, data, cfg)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, 3, sent.Groups)
	assert.Equal(t, 9, sent.Shards)
	assert.Equal(t, 3, st.Groups)
	assert.Equal(t, 1, st.Lost)
}

func TestLayoutReachesMaxSize(t *testing.T) {
	for _, data := range []int{1, 10, 200} {
		h := header{data: data, payload: MaxSize}
		h.shardSize = groupShardSize(data, h.payload)
		assert.LessOrEqual(t, h.shardSize, maxShard)
		assert.LessOrEqual(t, indexPrefix+h.shardSize, channel.MaxMessage)
		assert.LessOrEqual(t, h.groups(), maxGroups)

		total := 0
		for g := range h.groups() {
			total += h.groupLen(g)
		}
		assert.Equal(t, MaxSize, total, "data shards %d", data)

		_, err := parseHeader(h.marshal())
		assert.NoError(t, err, "data shards %d", data)
	}
}

func TestSendLimits(t *testing.T) {
	send, _ := conns(t)
	_, err := Send(send, make([]byte, MaxSize+1), quietConfig())
	assert.ErrorIs(t, err, ErrTooLarge)

	cfg := quietConfig()
	cfg.ParityShards = 0
	_, err = Send(send, []byte("x"), cfg)
	assert.Error(t, err)
}

func TestParseHeader(t *testing.T) {
	good := header{data: 4, parity: 2, shardSize: 10, payload: 40, size: 100}
	_, err := parseHeader(good.marshal())
	require.NoError(t, err)

	for name, h := range map[string]header{
		"shards too small": {data: 4, parity: 2, shardSize: 9, payload: 40},
		"zero shard size":  {data: 4, parity: 2},
		"no data shards":   {parity: 2, shardSize: 1},
		"oversized":        {data: 4, parity: 2, shardSize: 10, size: MaxSize + 1},
	} {
		_, err := parseHeader(h.marshal())
		assert.ErrorIs(t, err, ErrMalformedHeader, name)
	}

	raw := good.marshal()
	raw[0] = 9
	_, err = parseHeader(raw)
	assert.ErrorIs(t, err, ErrMalformedHeader)
	_, err = parseHeader(raw[:10])
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestCompress(t *testing.T) {
	data := bytes.Repeat([]byte("lz4 "), 1000)
	for _, level := range []CompressionLevel{CompressionDefault, CompressionFast, CompressionBest} {
		frame, ok, err := Compress(data, level)
		require.NoError(t, err)
		require.True(t, ok)
		got, err := Decompress(frame, len(data))
		require.NoError(t, err)
		assert.Equal(t, data, got)

		_, err = Decompress(frame, len(data)-1)
		assert.True(t, errors.Is(err, ErrDecompressionFailed))
	}

	out, ok, err := Compress([]byte{1, 2, 3}, CompressionDefault)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, out)
}
