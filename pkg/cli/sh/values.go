package sh

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ParseType parses a type byte, e.g. 1, 0x1f.
func ParseType(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid type %q", s)
	}
	return byte(v), nil
}

// ParseValue parses a typed value KIND:VALUE where KIND is one of
// u8 i8 u16 i16 u32 i32 u64 i64 f32 f64 bool hex.
func ParseValue(s string) (interface{}, error) {
	items := strings.SplitN(s, ":", 2)
	if len(items) != 2 {
		return nil, fmt.Errorf("invalid value %q, expect KIND:VALUE", s)
	}
	kind, val := items[0], items[1]
	var (
		v   interface{}
		err error
	)
	switch kind {
	case "u8":
		var n uint64
		n, err = strconv.ParseUint(val, 0, 8)
		v = uint8(n)
	case "i8":
		var n int64
		n, err = strconv.ParseInt(val, 0, 8)
		v = int8(n)
	case "u16":
		var n uint64
		n, err = strconv.ParseUint(val, 0, 16)
		v = uint16(n)
	case "i16":
		var n int64
		n, err = strconv.ParseInt(val, 0, 16)
		v = int16(n)
	case "u32":
		var n uint64
		n, err = strconv.ParseUint(val, 0, 32)
		v = uint32(n)
	case "i32":
		var n int64
		n, err = strconv.ParseInt(val, 0, 32)
		v = int32(n)
	case "u64":
		v, err = strconv.ParseUint(val, 0, 64)
	case "i64":
		v, err = strconv.ParseInt(val, 0, 64)
	case "f32":
		var f float64
		f, err = strconv.ParseFloat(val, 32)
		v = float32(f)
	case "f64":
		v, err = strconv.ParseFloat(val, 64)
	case "bool":
		v, err = strconv.ParseBool(val)
	case "hex":
		v, err = hex.DecodeString(val)
	default:
		return nil, fmt.Errorf("unknown value kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %v", kind, val, err)
	}
	return v, nil
}
