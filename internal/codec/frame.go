package codec

import (
	"encoding/binary"

	"github.com/claudefs/claudefs/pkg/errors"
)

const (
	// FrameMagic identifies a ClaudeFS wire frame. Chosen per SPEC_FULL.md §5.
	FrameMagic uint32 = 0x43464653 // "CFFS"

	// FrameVersion is the only protocol version this core speaks.
	FrameVersion uint8 = 1

	// MaxPayloadSize bounds a single frame's payload.
	MaxPayloadSize uint32 = 64 * 1024 * 1024

	// HeaderSize is the fixed 24-byte frame header length.
	HeaderSize = 24

	// FlagOneWay marks a request that expects no response.
	FlagOneWay uint8 = 0x01
	// FlagResponse marks a frame carrying a response rather than a request.
	FlagResponse uint8 = 0x02
)

// Header is the fixed 24-byte frame header described in spec.md §6.
type Header struct {
	Magic       uint32
	Version    uint8
	Flags      uint8
	Opcode     uint16
	RequestID  uint64
	PayloadLen uint32
	CRC32      uint32
}

// Frame is a decoded header plus its payload bytes.
type Frame struct {
	Header  Header
	Payload []byte
}

// IsOneWay reports whether the frame carries the one-way flag.
func (h Header) IsOneWay() bool { return h.Flags&FlagOneWay != 0 }

// IsResponse reports whether the frame carries the response flag.
func (h Header) IsResponse() bool { return h.Flags&FlagResponse != 0 }

// EncodeFrame packs a frame into header||payload, with CRC32 computed over
// the payload alone. Returns errors.ErrCodePayloadTooLarge if payload
// exceeds MaxPayloadSize.
func EncodeFrame(opcode uint16, requestID uint64, flags uint8, payload []byte) ([]byte, error) {
	if uint32(len(payload)) > MaxPayloadSize {
		return nil, errors.NewError(errors.ErrCodePayloadTooLarge, "payload exceeds max payload size").
			WithDetail("size", len(payload)).WithDetail("max", MaxPayloadSize)
	}
	out := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(out[0:4], FrameMagic)
	out[4] = FrameVersion
	out[5] = flags
	binary.BigEndian.PutUint16(out[6:8], opcode)
	binary.BigEndian.PutUint64(out[8:16], requestID)
	binary.BigEndian.PutUint32(out[16:20], uint32(len(payload)))
	binary.BigEndian.PutUint32(out[20:24], CRC32(payload))
	copy(out[HeaderSize:], payload)
	return out, nil
}

// DecodeFrame parses header||payload from buf. It rejects wrong magic,
// unsupported version, oversized payload_len, CRC mismatch, and
// truncated input — never panicking on arbitrary byte input.
func DecodeFrame(buf []byte) (*Frame, error) {
	if len(buf) < HeaderSize {
		return nil, errors.NewError(errors.ErrCodeFrameTruncated, "frame header truncated").
			WithDetail("have", len(buf)).WithDetail("need", HeaderSize)
	}
	magic := binary.BigEndian.Uint32(buf[0:4])
	if magic != FrameMagic {
		return nil, errors.NewError(errors.ErrCodeFrameInvalidMagic, "invalid frame magic").
			WithDetail("got", magic).WithDetail("want", FrameMagic)
	}
	version := buf[4]
	if version != FrameVersion {
		return nil, errors.NewError(errors.ErrCodeFrameInvalidVersion, "unsupported frame version").
			WithDetail("got", version).WithDetail("want", FrameVersion)
	}
	flags := buf[5]
	opcode := binary.BigEndian.Uint16(buf[6:8])
	requestID := binary.BigEndian.Uint64(buf[8:16])
	payloadLen := binary.BigEndian.Uint32(buf[16:20])
	if payloadLen > MaxPayloadSize {
		return nil, errors.NewError(errors.ErrCodePayloadTooLarge, "frame payload_len exceeds max").
			WithDetail("payload_len", payloadLen).WithDetail("max", MaxPayloadSize)
	}
	crc := binary.BigEndian.Uint32(buf[20:24])
	if len(buf) < HeaderSize+int(payloadLen) {
		return nil, errors.NewError(errors.ErrCodeFrameTruncated, "frame payload truncated").
			WithDetail("have", len(buf)-HeaderSize).WithDetail("need", payloadLen)
	}
	payload := make([]byte, payloadLen)
	copy(payload, buf[HeaderSize:HeaderSize+int(payloadLen)])
	if got := CRC32(payload); got != crc {
		return nil, errors.NewError(errors.ErrCodeFrameChecksumMismatch, "frame crc32 mismatch").
			WithDetail("got", got).WithDetail("want", crc)
	}
	return &Frame{
		Header: Header{
			Magic:      magic,
			Version:    version,
			Flags:      flags,
			Opcode:     opcode,
			RequestID:  requestID,
			PayloadLen: payloadLen,
			CRC32:      crc,
		},
		Payload: payload,
	}, nil
}
