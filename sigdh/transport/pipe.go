package transport

import (
	"context"
	"io"
	"sync"
)

const pipeDepth = 64

// PipeEnd is one side of an in-memory connection. Sends are buffered, so a
// sender never waits for the peer to read. It also implements
// io.ReadWriteCloser for use after the handshake.
type PipeEnd struct {
	in      <-chan []byte
	out     chan<- []byte
	done    chan struct{}
	once    *sync.Once
	mu      sync.Mutex
	pending []byte
}

// Pipe returns two connected ends. Closing either end closes both.
func Pipe() (*PipeEnd, *PipeEnd) {
	ab := make(chan []byte, pipeDepth)
	ba := make(chan []byte, pipeDepth)
	done := make(chan struct{})
	once := new(sync.Once)
	return &PipeEnd{in: ba, out: ab, done: done, once: once},
		&PipeEnd{in: ab, out: ba, done: done, once: once}
}

func (p *PipeEnd) Send(ctx context.Context, pkt []byte) error {
	cp := append([]byte(nil), pkt...)
	select {
	case <-p.done:
		return ErrClosed
	default:
	}
	select {
	case p.out <- cp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return ErrClosed
	}
}

func (p *PipeEnd) Receive(ctx context.Context, n int) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.pending) < n {
		b, err := p.next(ctx.Done())
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		p.pending = append(p.pending, b...)
	}
	out := append([]byte(nil), p.pending[:n]...)
	p.pending = p.pending[n:]
	return out, nil
}

func (p *PipeEnd) Write(b []byte) (int, error) {
	if err := p.Send(context.Background(), b); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (p *PipeEnd) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(b) == 0 {
		return 0, nil
	}
	for len(p.pending) == 0 {
		chunk, err := p.next(nil)
		if err != nil {
			return 0, io.EOF
		}
		p.pending = chunk
	}
	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

// next returns the next queued chunk. Data sent before Close is still
// delivered after it.
func (p *PipeEnd) next(cancel <-chan struct{}) ([]byte, error) {
	select {
	case b := <-p.in:
		return b, nil
	default:
	}
	select {
	case b := <-p.in:
		return b, nil
	case <-cancel:
		return nil, context.Canceled
	case <-p.done:
		return nil, ErrClosed
	}
}

// Close shuts down both ends. It is safe to call more than once.
func (p *PipeEnd) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}
