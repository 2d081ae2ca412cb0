package packet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursor(t *testing.T) {
	var c Cursor
	c.reset([]byte{0x01, 0x02, 0x03, 0x00, 0x00, 0xc0, 0x3f, 0x01})

	require.Equal(t, 8, c.Remaining())
	require.Equal(t, uint16(0x0201), c.Uint16())
	require.Equal(t, 6, c.Remaining())

	// not enough left for an int64, cursor stays.
	require.Zero(t, c.Int64())
	require.Equal(t, 6, c.Remaining())

	require.Equal(t, int8(3), c.Int8())
	require.Equal(t, float32(1.5), c.Float32())
	require.True(t, c.Bool())
	require.Zero(t, c.Remaining())
	require.False(t, c.Bool())

	c.Rewind()
	require.Equal(t, 8, c.Remaining())
	var pair struct {
		A uint8
		B uint8
	}
	require.True(t, c.Get(&pair))
	require.Equal(t, uint8(1), pair.A)
	require.Equal(t, uint8(2), pair.B)
}

func TestCursorGetZeroes(t *testing.T) {
	var c Cursor
	c.reset([]byte{1})
	v := uint32(0xffffffff)
	require.False(t, c.Get(&v))
	require.Zero(t, v)
	require.Equal(t, 1, c.Remaining())

	n := 5
	require.False(t, c.Get(&n), "int is not fixed-size")
	require.Zero(t, n)
	require.Equal(t, 1, c.Remaining())
}
