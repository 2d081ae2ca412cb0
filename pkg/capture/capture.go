// Package capture records bytes received from a link and replays them.
//
// A capture is a sequence of records, each prefixed by 4-byte
// (little-endian) length. A record is one chunk of bytes, as it was read
// from the link, compressed as an LZ4 block. Replaying keeps the chunking,
// so a session can be decoded again exactly as it was received.
package capture

import (
	"context"
	"encoding/binary"
	"io"
	"time"

	lz4 "github.com/bkaradzic/go-lz4"
	"github.com/pkg/errors"
)

// MaxRecordSize limits the size of a compressed record when reading.
const MaxRecordSize = 1 << 20

// ErrRecordTooLarge indicates a corrupted capture.
var ErrRecordTooLarge = errors.New("record too large")

// Writer writes chunks into a capture.
type Writer struct {
	io.Writer
}

// NewWriter creates a Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w}
}

// WriteChunk writes one chunk as a record. Empty chunks are skipped.
func (w *Writer) WriteChunk(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	data, err := lz4.Encode(nil, p)
	if err != nil {
		return errors.Wrap(err, "compress chunk")
	}
	if err = binary.Write(w.Writer, binary.LittleEndian, uint32(len(data))); err != nil {
		return err
	}
	_, err = w.Writer.Write(data)
	return err
}

// Write implements io.Writer, each call is recorded as a chunk.
func (w *Writer) Write(p []byte) (int, error) {
	if err := w.WriteChunk(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Tee returns a reader which records everything read from r.
func Tee(r io.Reader, w *Writer) io.Reader {
	return io.TeeReader(r, w)
}

// Reader reads chunks from a capture.
type Reader struct {
	io.Reader
}

// NewReader creates a Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r}
}

// ReadChunk reads the next chunk. It returns io.EOF at the end.
func (r *Reader) ReadChunk() ([]byte, error) {
	var size uint32
	if err := binary.Read(r.Reader, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	if size > MaxRecordSize {
		return nil, ErrRecordTooLarge
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r.Reader, data); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	chunk, err := lz4.Decode(nil, data)
	if err != nil {
		return nil, errors.Wrap(err, "decompress record")
	}
	return chunk, nil
}

// Replay writes all chunks to dst, pausing interval between chunks.
// It returns the number of chunks replayed.
func Replay(ctx context.Context, r *Reader, dst io.Writer, interval time.Duration) (int, error) {
	for n := 0; ; n++ {
		chunk, err := r.ReadChunk()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if n > 0 && interval > 0 {
			select {
			case <-ctx.Done():
				return n, ctx.Err()
			case <-time.After(interval):
			}
		}
		if _, err = dst.Write(chunk); err != nil {
			return n, err
		}
	}
}
