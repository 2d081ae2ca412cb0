package bridge

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/serialpacket/pkg/packet"
)

type recordPublisher struct {
	frames []*Frame
	err    error
}

func (p *recordPublisher) PublishFrame(ctx context.Context, f *Frame) error {
	p.frames = append(p.frames, f)
	return p.err
}

func receive(t *testing.T, wire []byte, capacity int) *packet.Message {
	var buf packet.Buffer
	buf.Write(wire)
	dec := packet.NewDecoder(capacity)
	require.NoError(t, dec.Bind(&buf))
	require.NotEqual(t, packet.None, dec.Poll())
	msg, ok := dec.Take()
	require.True(t, ok)
	return msg
}

func TestFrameCodec(t *testing.T) {
	f := &Frame{Type: 3, Truncated: true, Data: []byte{1, 2, 3}}
	data, err := EncodeFrame(f)
	require.NoError(t, err)
	decoded, err := DecodeFrame(data)
	require.NoError(t, err)
	require.Equal(t, f.Type, decoded.Type)
	require.Equal(t, f.Truncated, decoded.Truncated)
	require.False(t, decoded.Text)
	require.Equal(t, f.Data, decoded.Data)

	_, err = DecodeFrame([]byte{0xff})
	require.Error(t, err)
}

func TestFormatFrame(t *testing.T) {
	require.Equal(t, "0x03 [2] 0102", FormatFrame(&Frame{Type: 3, Data: []byte{1, 2}}))
	require.Equal(t, "0x01 [4] 01020304 (truncated)",
		FormatFrame(&Frame{Type: 1, Truncated: true, Data: []byte{1, 2, 3, 4}}))
	require.Equal(t, `"Hi"`, FormatFrame(&Frame{Type: 'H', Text: true, Data: []byte("Hi")}))
}

func TestBridgeHandleMessage(t *testing.T) {
	reg := prometheus.NewRegistry()
	pub1, pub2 := &recordPublisher{}, &recordPublisher{err: errors.New("offline")}
	b := New(nil, pub1).Add(pub2)
	b.Metrics = NewMetrics(reg)

	b.HandleMessage(context.Background(), receive(t, []byte{2, 6, 0, 0, 0, 1, 2, 3, 4, 5, 6}, 4))
	b.HandleMessage(context.Background(), receive(t, []byte("Hello\n"), 16))

	require.Len(t, pub1.frames, 2)
	require.Len(t, pub2.frames, 2)
	require.Equal(t, &Frame{Type: 2, Truncated: true, Data: []byte{1, 2, 3, 4}}, pub1.frames[0])
	require.Equal(t, &Frame{Type: 'H', Text: true, Data: []byte("Hello")}, pub1.frames[1])

	require.Equal(t, float64(1), testutil.ToFloat64(b.Metrics.Received.WithLabelValues("binary")))
	require.Equal(t, float64(1), testutil.ToFloat64(b.Metrics.Received.WithLabelValues("text")))
	require.Equal(t, float64(1), testutil.ToFloat64(b.Metrics.Truncated))
	require.Equal(t, float64(2), testutil.ToFloat64(b.Metrics.Errors.WithLabelValues("publish")))
}

func TestBridgeSendFrame(t *testing.T) {
	var wire bytes.Buffer
	b := New(packet.NewEncoder(&wire))
	b.Metrics = NewMetrics(prometheus.NewRegistry())

	require.NoError(t, b.SendFrame(&Frame{Type: 1, Data: []byte{9}}))
	require.NoError(t, b.SendFrame(&Frame{Type: 'p', Text: true, Data: []byte("ping")}))
	require.Equal(t, []byte{1, 1, 0, 0, 0, 9, 'p', 'i', 'n', 'g', '\n'}, wire.Bytes())

	require.Error(t, b.SendFrame(&Frame{Type: 0x100}))
	require.Error(t, b.SendFrame(&Frame{Type: 0x30}))
	require.Error(t, b.SendFrame(&Frame{Text: true, Data: []byte("a\nb")}))
	require.Error(t, b.SendFrame(&Frame{Type: 1, Data: make([]byte, packet.MaxPayloadSize+1)}))
	require.Len(t, wire.Bytes(), 11)

	require.Equal(t, float64(1), testutil.ToFloat64(b.Metrics.Sent.WithLabelValues("binary")))
	require.Equal(t, float64(1), testutil.ToFloat64(b.Metrics.Sent.WithLabelValues("text")))
	require.Equal(t, float64(4), testutil.ToFloat64(b.Metrics.Errors.WithLabelValues("send")))

	b.Stalled(context.Background())
	require.Equal(t, float64(1), testutil.ToFloat64(b.Metrics.Stalls))
}

func TestBridgeNilMetrics(t *testing.T) {
	var wire bytes.Buffer
	b := New(packet.NewEncoder(&wire))
	b.HandleMessage(context.Background(), receive(t, []byte{1, 0, 0, 0, 0}, 4))
	require.NoError(t, b.SendFrame(&Frame{Type: 1}))
	b.Stalled(context.Background())
}
