package packet

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManyValues indicates more than MaxValues values are sent.
	ErrTooManyValues = errors.New("too many values")
	// ErrInvalidLine indicates a line can't be sent as text frame.
	ErrInvalidLine = errors.New("invalid line")
	// ErrAlreadyBound indicates the Decoder is already bound to a source.
	ErrAlreadyBound = errors.New("already bound")
)

// PayloadTooLargeError is returned when the payload exceeds the limit.
type PayloadTooLargeError struct {
	Size  int
	Limit int
}

// Error implements error.
func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("payload too large: %d > %d", e.Size, e.Limit)
}

// NotFixedSizeError indicates the value at Index has no fixed encoded size.
type NotFixedSizeError struct {
	Index int
	Value interface{}
}

// Error implements error.
func (e *NotFixedSizeError) Error() string {
	return fmt.Sprintf("value %d (%T) is not fixed-size", e.Index, e.Value)
}

// InvalidTypeError indicates the type can't be used for a binary frame.
type InvalidTypeError struct {
	Type byte
}

// Error implements error.
func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("type 0x%02x is above command threshold", e.Type)
}
