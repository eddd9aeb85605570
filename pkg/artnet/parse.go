package artnet

import (
	"encoding/binary"
	"errors"
)

// ErrShortPacket is returned when a datagram is too small to contain a
// valid Art-Net header.
var ErrShortPacket = errors.New("artnet: packet too short")

// ErrBadHeader is returned when the 8-byte "Art-Net\0" identifier does not
// match.
var ErrBadHeader = errors.New("artnet: bad header")

// ErrNotDMX is returned when a packet's OpCode is not OpCodeDMX. Callers
// that only care about DMX data treat this the same as a silent drop.
var ErrNotDMX = errors.New("artnet: not a DMX packet")

// DMXPacket is a parsed ArtDmx datagram.
type DMXPacket struct {
	Sequence byte
	Physical byte
	Universe int // 1-indexed, wire value + 1
	Data     [512]byte
}

// ParseDMXPacket validates the Art-Net header and OpCode and decodes an
// ArtDmx packet. Any failure is meant to be treated as a silent drop by the
// caller, per the input transport's "reject silently on mismatch" rule.
func ParseDMXPacket(data []byte) (*DMXPacket, error) {
	if len(data) < 18 {
		return nil, ErrShortPacket
	}
	if string(data[0:8]) != string(ArtNetID) {
		return nil, ErrBadHeader
	}
	opCode := binary.LittleEndian.Uint16(data[8:10])
	if opCode != OpCodeDMX {
		return nil, ErrNotDMX
	}

	pkt := &DMXPacket{
		Sequence: data[12],
		Physical: data[13],
		Universe: int(binary.LittleEndian.Uint16(data[14:16])) + 1,
	}
	n := copy(pkt.Data[:], data[18:])
	_ = n // remaining bytes (if any short of 512) stay zero, matching the zero-pad rule
	return pkt, nil
}
