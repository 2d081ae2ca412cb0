package packet

import "encoding/binary"

// Decoder reconstructs frames from a Source.
// The same Decoder is reused for all messages on the stream. The buffer is
// overwritten in place, so a completed message must be consumed (or moved
// out using Take) before the next Poll.
type Decoder struct {
	threshold  byte
	terminator byte

	source    Source
	state     decodeState
	typ       byte
	dataLen   uint32
	lenBuf    [LengthSize]byte
	lenPos    int
	recvLen   uint64
	buf       []byte
	length    int
	text      bool
	truncated bool
	valid     bool
	consumed  uint64

	Cursor
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithThreshold overrides CommandThreshold.
func WithThreshold(threshold byte) Option {
	return func(d *Decoder) {
		d.threshold = threshold
	}
}

// WithTerminator overrides Terminator.
func WithTerminator(terminator byte) Option {
	return func(d *Decoder) {
		d.terminator = terminator
	}
}

type decodeState int

const (
	stateReadType    decodeState = iota // waiting for type byte
	stateReadDataLen                    // waiting for 4-byte length
	stateReadData                       // receiving payload
	stateReadString                     // receiving line of text
)

// NewDecoder creates a Decoder with a receive buffer of capacity bytes.
func NewDecoder(capacity int, opts ...Option) *Decoder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	d := &Decoder{
		threshold:  CommandThreshold,
		terminator: Terminator,
		buf:        make([]byte, capacity),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Bind binds the Decoder to a source. It can only be done once.
func (d *Decoder) Bind(src Source) error {
	if d.source != nil {
		return ErrAlreadyBound
	}
	d.source = src
	return nil
}

// Poll consumes the bytes currently available without blocking.
// It returns as soon as a message completes, leaving remaining bytes for
// the next call. The message of the previous completion is invalidated.
func (d *Decoder) Poll() Status {
	d.valid = false
	if d.source == nil {
		return None
	}
	for d.source.Available() > 0 {
		if d.state == stateReadDataLen {
			// never parse a partial length field.
			if d.source.Available() < LengthSize-d.lenPos {
				return None
			}
			// bytes already read are kept if the source fails midway.
			for ; d.lenPos < LengthSize; d.lenPos++ {
				c, ok := d.read()
				if !ok {
					return None
				}
				d.lenBuf[d.lenPos] = c
			}
			d.lenPos = 0
			if d.dataLen = binary.LittleEndian.Uint32(d.lenBuf[:]); d.dataLen == 0 {
				return d.complete(PacketAvailable)
			}
			d.recvLen, d.state = 0, stateReadData
			continue
		}

		b, ok := d.read()
		if !ok {
			return None
		}
		switch d.state {
		case stateReadType:
			d.typ, d.recvLen = b, 0
			if b > d.threshold {
				d.state = stateReadString
				d.store(b)
			} else {
				d.state = stateReadDataLen
			}
		case stateReadData:
			d.store(b)
			if d.recvLen == uint64(d.dataLen) {
				return d.complete(PacketAvailable)
			}
		case stateReadString:
			d.store(b)
			if b == d.terminator {
				return d.complete(StringAvailable)
			}
		}
	}
	return None
}

// Reset drops a partially received frame and waits for the next type byte.
func (d *Decoder) Reset() {
	d.state, d.recvLen, d.dataLen, d.lenPos = stateReadType, 0, 0, 0
}

// Take moves the completed message out of the Decoder.
// It returns false if there's no completed message since the last Poll or
// it has already been taken.
func (d *Decoder) Take() (*Message, bool) {
	if !d.valid {
		return nil, false
	}
	d.valid = false
	msg := &Message{Type: d.typ, Text: d.text, Truncated: d.truncated}
	msg.reset(append([]byte(nil), d.buf[:d.length]...))
	return msg, true
}

// Type gets the type of the last completed message.
func (d *Decoder) Type() byte {
	return d.typ
}

// Data returns the payload of the last completed message, capped at capacity.
// It is only valid until the next Poll.
func (d *Decoder) Data() []byte {
	return d.buf[:d.length]
}

// Len returns the payload length, capped at capacity.
func (d *Decoder) Len() int {
	return d.length
}

// Text returns the line of the last completed text message.
func (d *Decoder) Text() string {
	return string(d.buf[:d.length])
}

// StrLen returns the length of Text.
func (d *Decoder) StrLen() int {
	return d.length
}

// Truncated indicates the last message didn't fit in the buffer and the
// excess bytes were dropped.
func (d *Decoder) Truncated() bool {
	return d.truncated
}

// Receiving indicates a frame is partially received.
func (d *Decoder) Receiving() bool {
	return d.state != stateReadType
}

// Consumed returns the total number of bytes read from the source.
func (d *Decoder) Consumed() uint64 {
	return d.consumed
}

// Capacity returns the size of the receive buffer.
func (d *Decoder) Capacity() int {
	return len(d.buf)
}

func (d *Decoder) read() (byte, bool) {
	b, err := d.source.ReadByte()
	if err != nil {
		return 0, false
	}
	d.consumed++
	return b, true
}

// store keeps b if there's room, otherwise only counts it.
func (d *Decoder) store(b byte) {
	if d.recvLen < uint64(len(d.buf)) {
		d.buf[d.recvLen] = b
	}
	d.recvLen++
}

func (d *Decoder) complete(st Status) Status {
	capacity := uint64(len(d.buf))
	if st == StringAvailable {
		// the terminator takes the place of the last character when full.
		n := d.recvLen - 1
		d.truncated = n > capacity-1
		if d.truncated {
			n = capacity - 1
		}
		d.length = int(n)
	} else {
		n := uint64(d.dataLen)
		d.truncated = n > capacity
		if d.truncated {
			n = capacity
		}
		d.length = int(n)
	}
	d.text = st == StringAvailable
	d.state, d.valid = stateReadType, true
	d.Cursor.reset(d.buf[:d.length])
	return st
}
