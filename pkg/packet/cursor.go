package packet

import (
	"bytes"
	"encoding/binary"
	"reflect"
)

// Cursor extracts fixed-size values from a completed message in the order
// the sender wrote them. Values are little-endian.
//
// Reading past the end yields a zero value and doesn't advance the cursor.
type Cursor struct {
	data []byte
	pos  int
}

func (c *Cursor) reset(data []byte) {
	c.data, c.pos = data, 0
}

// Get reads the next value into v, which must be a pointer to a fixed-size
// value. It returns false, with *v zeroed, if there isn't enough data left.
func (c *Cursor) Get(v interface{}) bool {
	size := binary.Size(v)
	if size < 0 || c.pos+size > len(c.data) {
		zero(v)
		return false
	}
	if err := binary.Read(bytes.NewReader(c.data[c.pos:c.pos+size]), binary.LittleEndian, v); err != nil {
		zero(v)
		return false
	}
	c.pos += size
	return true
}

// Remaining returns the number of bytes not extracted yet.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// Rewind moves the cursor back to the beginning.
func (c *Cursor) Rewind() {
	c.pos = 0
}

// Uint8 extracts a uint8.
func (c *Cursor) Uint8() (v uint8) {
	c.Get(&v)
	return
}

// Int8 extracts an int8.
func (c *Cursor) Int8() (v int8) {
	c.Get(&v)
	return
}

// Uint16 extracts a uint16.
func (c *Cursor) Uint16() (v uint16) {
	c.Get(&v)
	return
}

// Int16 extracts an int16.
func (c *Cursor) Int16() (v int16) {
	c.Get(&v)
	return
}

// Uint32 extracts a uint32.
func (c *Cursor) Uint32() (v uint32) {
	c.Get(&v)
	return
}

// Int32 extracts an int32.
func (c *Cursor) Int32() (v int32) {
	c.Get(&v)
	return
}

// Uint64 extracts a uint64.
func (c *Cursor) Uint64() (v uint64) {
	c.Get(&v)
	return
}

// Int64 extracts an int64.
func (c *Cursor) Int64() (v int64) {
	c.Get(&v)
	return
}

// Float32 extracts an IEEE-754 float32.
func (c *Cursor) Float32() (v float32) {
	c.Get(&v)
	return
}

// Float64 extracts an IEEE-754 float64.
func (c *Cursor) Float64() (v float64) {
	c.Get(&v)
	return
}

// Bool extracts a bool, any non-zero byte is true.
func (c *Cursor) Bool() (v bool) {
	c.Get(&v)
	return
}

func zero(v interface{}) {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv.Elem().Set(reflect.Zero(rv.Elem().Type()))
	}
}
