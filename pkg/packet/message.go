package packet

import "context"

// Message is a completed message owned by the caller.
type Message struct {
	Type      byte
	Text      bool
	Truncated bool

	Cursor
}

// Data returns the payload, or the line without terminator for text.
func (m *Message) Data() []byte {
	return m.data
}

// Len returns the length of Data.
func (m *Message) Len() int {
	return len(m.data)
}

// String returns the line of a text message.
func (m *Message) String() string {
	return string(m.data)
}

// MessageHandler is called when a message is received.
type MessageHandler interface {
	HandleMessage(context.Context, *Message)
}

// HandleMessageFunc is func type of MessageHandler.
type HandleMessageFunc func(context.Context, *Message)

// HandleMessage implements MessageHandler.
func (f HandleMessageFunc) HandleMessage(ctx context.Context, msg *Message) {
	f(ctx, msg)
}
