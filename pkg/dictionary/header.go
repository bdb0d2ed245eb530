package dictionary

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic identifies a compiled dictionary image.
const Magic = "WKD1"

// Version is the image format version this package reads and writes.
const Version uint32 = 1

// Load-time errors. Any of these aborts Store construction; no partial
// Store is ever returned.
var (
	ErrNotFound        = errors.New("dictionary: file not found")
	ErrBadHeader       = errors.New("dictionary: bad header")
	ErrVersionMismatch = errors.New("dictionary: unsupported format version")
	ErrTruncated       = errors.New("dictionary: truncated image")
)

// Header is the fixed preamble of a dictionary image.
type Header struct {
	Version     uint32
	CreateTime  uint64
	Description string
}

// AppendHeader serializes h onto buf.
func AppendHeader(buf []byte, h Header) []byte {
	buf = append(buf, Magic...)
	buf = binary.LittleEndian.AppendUint32(buf, h.Version)
	buf = binary.LittleEndian.AppendUint64(buf, h.CreateTime)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(h.Description)))
	buf = append(buf, h.Description...)
	return buf
}

func readHeader(r *reader) (Header, error) {
	magic, err := r.bytes(len(Magic))
	if err != nil {
		return Header{}, ErrBadHeader
	}
	if string(magic) != Magic {
		return Header{}, fmt.Errorf("%w: magic %q", ErrBadHeader, magic)
	}
	var h Header
	if h.Version, err = r.u32(); err != nil {
		return Header{}, err
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: image version %d, supported %d",
			ErrVersionMismatch, h.Version, Version)
	}
	if h.CreateTime, err = r.u64(); err != nil {
		return Header{}, err
	}
	n, err := r.u16()
	if err != nil {
		return Header{}, err
	}
	desc, err := r.bytes(int(n))
	if err != nil {
		return Header{}, err
	}
	h.Description = string(desc)
	return h, nil
}

// reader is a cursor over an image byte slice. Every accessor fails with
// ErrTruncated instead of panicking when the image is shorter than its
// embedded lengths claim.
type reader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) remaining() int { return len(r.data) - r.pos }

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrTruncated, n, r.pos, r.remaining())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) i16() (int16, error) {
	v, err := r.u16()
	return int16(v), err
}

// string reads a u16 length-prefixed UTF-8 string.
func (r *reader) string() (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
