package transfer

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"
)

var (
	ErrCompressionFailed   = errors.New("transfer: compression failed")
	ErrDecompressionFailed = errors.New("transfer: decompression failed")
)

// CompressionLevel trades speed for ratio.
type CompressionLevel int

const (
	CompressionDefault CompressionLevel = iota
	CompressionFast
	CompressionBest
	CompressionOff
)

func (l CompressionLevel) lz4() lz4.CompressionLevel {
	switch l {
	case CompressionFast:
		return lz4.Fast
	case CompressionBest:
		return lz4.Level9
	default:
		return lz4.Level4
	}
}

var writerPool = sync.Pool{
	New: func() any { return lz4.NewWriter(nil) },
}

var readerPool = sync.Pool{
	New: func() any { return lz4.NewReader(nil) },
}

// Compress returns the LZ4 frame for data and whether it is worth sending.
// It reports false for CompressionOff or when the frame is not smaller.
func Compress(data []byte, level CompressionLevel) ([]byte, bool, error) {
	if level == CompressionOff || len(data) == 0 {
		return data, false, nil
	}
	w := writerPool.Get().(*lz4.Writer)
	defer writerPool.Put(w)

	var buf bytes.Buffer
	w.Reset(&buf)
	if err := w.Apply(lz4.CompressionLevelOption(level.lz4())); err != nil {
		return nil, false, errors.Join(ErrCompressionFailed, err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, false, errors.Join(ErrCompressionFailed, err)
	}
	if err := w.Close(); err != nil {
		return nil, false, errors.Join(ErrCompressionFailed, err)
	}
	if buf.Len() >= len(data) {
		return data, false, nil
	}
	return buf.Bytes(), true, nil
}

// Decompress expands an LZ4 frame. limit caps the output so a hostile frame
// cannot balloon memory.
func Decompress(frame []byte, limit int) ([]byte, error) {
	r := readerPool.Get().(*lz4.Reader)
	defer readerPool.Put(r)
	r.Reset(bytes.NewReader(frame))

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, errors.Join(ErrDecompressionFailed, err)
	}
	if n > int64(limit) {
		return nil, ErrDecompressionFailed
	}
	return buf.Bytes(), nil
}
