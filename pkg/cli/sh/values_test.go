package sh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	typ, err := ParseType("0x1f")
	require.NoError(t, err)
	require.Equal(t, byte(0x1f), typ)
	typ, err = ParseType("7")
	require.NoError(t, err)
	require.Equal(t, byte(7), typ)
	_, err = ParseType("256")
	require.Error(t, err)
}

func TestParseValue(t *testing.T) {
	testCases := []struct {
		in     string
		expect interface{}
	}{
		{"u8:255", uint8(255)},
		{"i8:-128", int8(-128)},
		{"u16:0x1234", uint16(0x1234)},
		{"i16:-2", int16(-2)},
		{"u32:7", uint32(7)},
		{"i32:-7", int32(-7)},
		{"u64:1", uint64(1)},
		{"i64:-1", int64(-1)},
		{"f32:1.5", float32(1.5)},
		{"f64:-0.25", float64(-0.25)},
		{"bool:true", true},
		{"hex:0a0b", []byte{0x0a, 0x0b}},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			v, err := ParseValue(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.expect, v)
		})
	}

	for _, in := range []string{"12", "u8:256", "i8:x", "q:1", "hex:zz", "bool:maybe"} {
		_, err := ParseValue(in)
		require.Error(t, err, in)
	}
}
