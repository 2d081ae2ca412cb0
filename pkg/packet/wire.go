package packet

// Wire format constants.
const (
	// CommandThreshold is the largest type byte of a binary frame.
	// Type bytes above it start a line of text.
	CommandThreshold byte = 0x20
	// Terminator ends a line of text.
	Terminator byte = '\n'

	// LengthSize is the size of the length field of a binary frame.
	LengthSize = 4
	// HeaderSize is the size of type and length of a binary frame.
	HeaderSize = 1 + LengthSize

	// DefaultCapacity is the default receive buffer capacity.
	// Keep it small, firmware side usually has very limited RAM.
	DefaultCapacity = 16
	// MaxPayloadSize is the default limit of payload an Encoder sends.
	MaxPayloadSize = DefaultCapacity
	// MaxValues is the maximum number of values in one frame.
	MaxValues = 4
)

// Status is the result of Decoder.Poll.
type Status int

const (
	// None means no complete message yet.
	None Status = iota
	// PacketAvailable means a binary frame is complete.
	PacketAvailable
	// StringAvailable means a line of text is complete.
	StringAvailable
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case None:
		return "none"
	case PacketAvailable:
		return "packet"
	case StringAvailable:
		return "string"
	}
	return "unknown"
}

// IsBinaryType tells if typ starts a binary frame.
func IsBinaryType(typ byte) bool {
	return typ <= CommandThreshold
}
