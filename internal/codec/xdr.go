package codec

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/claudefs/claudefs/pkg/errors"
)

// Encoder accumulates XDR-encoded (RFC 4506) values into a byte buffer.
// All integers are big-endian; opaque data is length-prefixed and padded
// to a 4-byte boundary; strings are opaque data required to be valid UTF-8.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an Encoder with the given initial capacity hint.
func NewEncoder(sizeHint int) *Encoder {
	return &Encoder{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the accumulated encoded buffer.
func (e *Encoder) Bytes() []byte { return e.buf }

// PutUint32 appends a big-endian u32.
func (e *Encoder) PutUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

// PutUint64 appends a big-endian u64.
func (e *Encoder) PutUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

// PutInt32 appends a big-endian i32.
func (e *Encoder) PutInt32(v int32) { e.PutUint32(uint32(v)) }

// PutInt64 appends a big-endian i64.
func (e *Encoder) PutInt64(v int64) { e.PutUint64(uint64(v)) }

// PutBool appends a bool encoded as a u32 (0 or 1), per RFC 4506 §4.4.
func (e *Encoder) PutBool(v bool) {
	if v {
		e.PutUint32(1)
	} else {
		e.PutUint32(0)
	}
}

// PutOpaque appends variable-length opaque data: a 4-byte length prefix,
// the raw bytes, and zero-padding to the next multiple of 4.
func (e *Encoder) PutOpaque(data []byte) {
	e.PutUint32(uint32(len(data)))
	e.buf = append(e.buf, data...)
	if pad := padLen(len(data)); pad > 0 {
		e.buf = append(e.buf, make([]byte, pad)...)
	}
}

// PutFixedOpaque appends exactly len(data) bytes, padded to a 4-byte
// boundary, without a length prefix (the length is known out-of-band).
func (e *Encoder) PutFixedOpaque(data []byte) {
	e.buf = append(e.buf, data...)
	if pad := padLen(len(data)); pad > 0 {
		e.buf = append(e.buf, make([]byte, pad)...)
	}
}

// PutString appends a string as XDR opaque data.
func (e *Encoder) PutString(s string) {
	e.PutOpaque([]byte(s))
}

func padLen(n int) int {
	if r := n % 4; r != 0 {
		return 4 - r
	}
	return 0
}

// Decoder consumes XDR-encoded values from a byte slice, advancing an
// internal cursor. Every method returns errors.ErrCodeXDRDecodeTruncated
// (wrapped) when insufficient bytes remain; the decoder never panics.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder wraps buf for sequential XDR decoding.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Remaining returns the number of unconsumed bytes.
func (d *Decoder) Remaining() int { return len(d.buf) - d.pos }

func (d *Decoder) need(n int) error {
	if d.Remaining() < n {
		return errors.NewError(errors.ErrCodeXDRDecodeTruncated, "xdr decode truncated").
			WithDetail("needed", n).WithDetail("remaining", d.Remaining())
	}
	return nil
}

// GetUint32 decodes a big-endian u32.
func (d *Decoder) GetUint32() (uint32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v, nil
}

// GetUint64 decodes a big-endian u64.
func (d *Decoder) GetUint64() (uint64, error) {
	if err := d.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(d.buf[d.pos:])
	d.pos += 8
	return v, nil
}

// GetInt32 decodes a big-endian i32.
func (d *Decoder) GetInt32() (int32, error) {
	v, err := d.GetUint32()
	return int32(v), err
}

// GetInt64 decodes a big-endian i64.
func (d *Decoder) GetInt64() (int64, error) {
	v, err := d.GetUint64()
	return int64(v), err
}

// GetBool decodes a u32-encoded bool. Any nonzero value is true.
func (d *Decoder) GetBool() (bool, error) {
	v, err := d.GetUint32()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// GetOpaque decodes length-prefixed opaque data, consuming its padding.
func (d *Decoder) GetOpaque(maxLen uint32) ([]byte, error) {
	length, err := d.GetUint32()
	if err != nil {
		return nil, err
	}
	if maxLen > 0 && length > maxLen {
		return nil, errors.NewError(errors.ErrCodeXDRDecodeError, "opaque length exceeds max").
			WithDetail("length", length).WithDetail("max", maxLen)
	}
	if err := d.need(int(length)); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, d.buf[d.pos:d.pos+int(length)])
	d.pos += int(length)
	pad := padLen(int(length))
	if err := d.need(pad); err != nil {
		return nil, err
	}
	d.pos += pad
	return out, nil
}

// GetFixedOpaque decodes exactly n bytes plus padding, no length prefix.
func (d *Decoder) GetFixedOpaque(n int) ([]byte, error) {
	if err := d.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, d.buf[d.pos:d.pos+n])
	d.pos += n
	pad := padLen(n)
	if err := d.need(pad); err != nil {
		return nil, err
	}
	d.pos += pad
	return out, nil
}

// GetString decodes opaque data and validates it as UTF-8.
func (d *Decoder) GetString(maxLen uint32) (string, error) {
	raw, err := d.GetOpaque(maxLen)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", errors.NewError(errors.ErrCodeXDRDecodeInvalidUTF8, "xdr string is not valid utf-8")
	}
	return string(raw), nil
}
