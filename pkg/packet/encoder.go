package packet

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Encoder writes frames to a byte sink.
// It doesn't buffer, each call writes one complete frame.
type Encoder struct {
	Writer     io.Writer
	MaxPayload int
}

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{Writer: w, MaxPayload: MaxPayloadSize}
}

// Send writes a binary frame with up to MaxValues fixed-size values.
// The values are encoded little-endian in argument order. All checks are
// done before anything is written, the payload is never truncated.
func (e *Encoder) Send(typ byte, values ...interface{}) error {
	if len(values) > MaxValues {
		return ErrTooManyValues
	}
	size := 0
	for n, v := range values {
		sz := binary.Size(v)
		if sz < 0 {
			return &NotFixedSizeError{Index: n, Value: v}
		}
		size += sz
	}
	if err := e.checkFrame(typ, size); err != nil {
		return err
	}
	b := bytes.NewBuffer(frameHeader(typ, size))
	for _, v := range values {
		if err := binary.Write(b, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	_, err := e.Writer.Write(b.Bytes())
	return err
}

// SendBytes writes a binary frame with an opaque payload.
func (e *Encoder) SendBytes(typ byte, payload []byte) error {
	if err := e.checkFrame(typ, len(payload)); err != nil {
		return err
	}
	_, err := e.Writer.Write(append(frameHeader(typ, len(payload)), payload...))
	return err
}

// SendLine writes a line of text. The first character must be above
// CommandThreshold and the text must not contain Terminator.
func (e *Encoder) SendLine(text string) error {
	if len(text) == 0 || IsBinaryType(text[0]) || bytes.IndexByte([]byte(text), Terminator) >= 0 {
		return ErrInvalidLine
	}
	b := make([]byte, len(text)+1)
	copy(b, text)
	b[len(text)] = Terminator
	_, err := e.Writer.Write(b)
	return err
}

func (e *Encoder) checkFrame(typ byte, size int) error {
	if !IsBinaryType(typ) {
		return &InvalidTypeError{Type: typ}
	}
	limit := e.MaxPayload
	if limit <= 0 {
		limit = MaxPayloadSize
	}
	if size > limit {
		return &PayloadTooLargeError{Size: size, Limit: limit}
	}
	return nil
}

func frameHeader(typ byte, size int) []byte {
	b := make([]byte, HeaderSize, HeaderSize+size)
	b[0] = typ
	binary.LittleEndian.PutUint32(b[1:], uint32(size))
	return b
}
