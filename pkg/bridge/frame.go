package bridge

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/serialpacket/pkg/packet"
)

// Frame is the wire representation of a message on the bridge.
type Frame struct {
	Type      uint32 `protobuf:"varint,1,opt,name=type,proto3" json:"type,omitempty"`
	Text      bool   `protobuf:"varint,2,opt,name=text,proto3" json:"text,omitempty"`
	Truncated bool   `protobuf:"varint,3,opt,name=truncated,proto3" json:"truncated,omitempty"`
	Data      []byte `protobuf:"bytes,4,opt,name=data,proto3" json:"data,omitempty"`
}

// Reset implements proto.Message.
func (m *Frame) Reset() { *m = Frame{} }

// String implements proto.Message.
func (m *Frame) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*Frame) ProtoMessage() {}

// FrameFromMessage converts a received message.
func FrameFromMessage(msg *packet.Message) *Frame {
	return &Frame{
		Type:      uint32(msg.Type),
		Text:      msg.Text,
		Truncated: msg.Truncated,
		Data:      msg.Data(),
	}
}

// EncodeFrame encodes the frame to bytes.
func EncodeFrame(f *Frame) ([]byte, error) {
	return proto.Marshal(f)
}

// DecodeFrame decodes bytes into Frame.
func DecodeFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := proto.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// FormatFrame formats the frame for display.
func FormatFrame(f *Frame) string {
	var suffix string
	if f.Truncated {
		suffix = " (truncated)"
	}
	if f.Text {
		return strconv.Quote(string(f.Data)) + suffix
	}
	return fmt.Sprintf("0x%02x [%d] %s%s", f.Type, len(f.Data), hex.EncodeToString(f.Data), suffix)
}
