package capture

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/serialpacket/pkg/packet"
)

func TestWriterReader(t *testing.T) {
	chunks := [][]byte{
		{1},
		{0, 0, 0},
		bytes.Repeat([]byte("abc"), 100),
	}
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, chunk := range chunks {
		require.NoError(t, w.WriteChunk(chunk))
	}
	require.NoError(t, w.WriteChunk(nil))

	r := NewReader(&buf)
	for _, expect := range chunks {
		chunk, err := r.ReadChunk()
		require.NoError(t, err)
		require.Equal(t, expect, chunk)
	}
	_, err := r.ReadChunk()
	require.Equal(t, io.EOF, err)
}

func TestReaderCorrupted(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0x7f})).ReadChunk()
	require.Equal(t, ErrRecordTooLarge, err)

	_, err = NewReader(bytes.NewReader([]byte{8, 0, 0, 0, 1})).ReadChunk()
	require.Equal(t, io.ErrUnexpectedEOF, err)
}

func TestTeeAndReplay(t *testing.T) {
	var wire bytes.Buffer
	enc := packet.NewEncoder(&wire)
	require.NoError(t, enc.Send(1, uint32(7)))
	require.NoError(t, enc.SendLine("boot ok"))

	var captured bytes.Buffer
	tee := Tee(&wire, NewWriter(&captured))
	received, err := ioutil.ReadAll(tee)
	require.NoError(t, err)
	require.NotEmpty(t, received)

	var src packet.Buffer
	n, err := Replay(context.Background(), NewReader(&captured), &src, 0)
	require.NoError(t, err)
	require.True(t, n > 0)

	dec := packet.NewDecoder(packet.DefaultCapacity)
	require.NoError(t, dec.Bind(&src))
	require.Equal(t, packet.PacketAvailable, dec.Poll())
	require.Equal(t, uint32(7), dec.Uint32())
	require.Equal(t, packet.StringAvailable, dec.Poll())
	require.Equal(t, "boot ok", dec.Text())
}
