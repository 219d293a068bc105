package transport

import (
	"context"
	"io"
	"time"
)

type readDeadliner interface {
	SetReadDeadline(time.Time) error
}

type writeDeadliner interface {
	SetWriteDeadline(time.Time) error
}

// aLongTimeAgo is a non-zero deadline in the past, used to unblock I/O.
var aLongTimeAgo = time.Unix(1, 0)

// Stream adapts an io.ReadWriter such as a net.Conn or a QUIC stream. If
// the underlying value supports deadlines, context deadlines and
// cancellation interrupt blocked calls.
type Stream struct {
	rw io.ReadWriter
}

func NewStream(rw io.ReadWriter) *Stream {
	return &Stream{rw: rw}
}

func (s *Stream) Send(ctx context.Context, pkt []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var set func(time.Time) error
	if d, ok := s.rw.(writeDeadliner); ok {
		set = d.SetWriteDeadline
	}
	stop := watch(ctx, set)
	_, err := s.rw.Write(pkt)
	stop()
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *Stream) Receive(ctx context.Context, n int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var set func(time.Time) error
	if d, ok := s.rw.(readDeadliner); ok {
		set = d.SetReadDeadline
	}
	stop := watch(ctx, set)
	buf := make([]byte, n)
	_, err := io.ReadFull(s.rw, buf)
	stop()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return buf, nil
}

// watch applies ctx to a deadline setter for the duration of one call. The
// returned stop func clears the deadline and waits for the watcher to exit.
func watch(ctx context.Context, set func(time.Time) error) (stop func()) {
	if set == nil {
		return func() {}
	}
	if d, ok := ctx.Deadline(); ok {
		_ = set(d)
	}
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			_ = set(aLongTimeAgo)
		case <-done:
		}
	}()
	return func() {
		close(done)
		<-exited
		_ = set(time.Time{})
	}
}
