// Package packet provides framing of typed messages over a serial link.
//
// The protocol is spoken between a microcontroller and a host over a
// byte-oriented link (e.g. serial port) where the receiving side only has
// a small, fixed-size buffer.
//
// A frame starts with a type byte. Types up to CommandThreshold are binary
// frames followed by a 4-byte little-endian length and the payload. Larger
// types start a line of text which ends at Terminator.
//
// There's no checksum, flow control or retransmission. The link is assumed
// to be reliable and ordered, but bytes may arrive in arbitrarily small
// pieces, so the Decoder never blocks and keeps its state across polls.
package packet
