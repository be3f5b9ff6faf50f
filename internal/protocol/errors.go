// Package protocol implements the wire codec for the versioned block-game
// protocol: fixed-width and variable-width primitives, packet field
// schemas, and phase/direction dispatch tables.
package protocol

import "errors"

// Sentinel errors for the codec and dispatch layers.
var (
	ErrRanOutOfBytes  = errors.New("protocol: ran out of bytes")
	ErrValueTooLarge  = errors.New("protocol: varint/varlong value too large")
	ErrInvalidPacket  = errors.New("protocol: invalid packet id for phase")
	ErrStringTooLarge = errors.New("protocol: string exceeds declared limit")
)
