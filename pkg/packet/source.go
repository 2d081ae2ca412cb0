package packet

import (
	"context"
	"io"
	"os"
	"sync"
)

// Source is the receiving side of a link.
type Source interface {
	// Available returns the number of bytes which can be read without blocking.
	Available() int
	// ReadByte reads one byte.
	ReadByte() (byte, error)
}

// Buffer is an in-memory Source. Bytes written are made available for reading.
// It's safe for concurrent use.
type Buffer struct {
	data []byte
	lock sync.Mutex
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	b.data = append(b.data, p...)
	b.lock.Unlock()
	return len(p), nil
}

// Available implements Source.
func (b *Buffer) Available() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.data)
}

// ReadByte implements Source.
func (b *Buffer) ReadByte() (byte, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if len(b.data) == 0 {
		return 0, io.EOF
	}
	c := b.data[0]
	if b.data = b.data[1:]; len(b.data) == 0 {
		b.data = nil
	}
	return c, nil
}

// ReaderSource makes a blocking io.Reader a Source by reading it in the
// background.
type ReaderSource struct {
	Reader   io.Reader
	ReadSize int

	Buffer

	err     error
	errLock sync.Mutex
}

// NewReaderSource creates a ReaderSource.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{Reader: r, ReadSize: 64}
}

// Run reads until an error happens or the context is canceled.
// It must be running for bytes to become available.
func (s *ReaderSource) Run(ctx context.Context) error {
	size := s.ReadSize
	if size <= 0 {
		size = 64
	}
	buf := make([]byte, size)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := s.Reader.Read(buf)
		if n > 0 {
			s.Buffer.Write(buf[:n])
		}
		if err != nil && !os.IsTimeout(err) {
			s.errLock.Lock()
			s.err = err
			s.errLock.Unlock()
			return err
		}
	}
}

// Err returns the error stopped the read loop.
func (s *ReaderSource) Err() error {
	s.errLock.Lock()
	defer s.errLock.Unlock()
	return s.err
}
