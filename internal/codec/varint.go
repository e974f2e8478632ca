package codec

import (
	"errors"
	"io"
)

// ErrVarintTooLong is returned when a varint's continuation bit stays set
// past 64 bits of accumulated payload.
var ErrVarintTooLong = errors.New("codec: varint too long")

const maxVarintShift = 64

// WriteVarint encodes v as a LEB128-style varint: 7 payload bits per byte,
// high bit set on every byte but the last.
func WriteVarint(w io.Writer, v uint64) error {
	var buf [10]byte
	n := 0
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if v == 0 {
			break
		}
	}
	_, err := w.Write(buf[:n])
	return err
}

// ReadVarint decodes a LEB128-style varint from r.
//
// Any premature end of stream — including zero bytes read before a single
// byte of the varint arrives — surfaces as io.ErrUnexpectedEOF, never plain
// io.EOF: a caller expecting a varint and finding nothing at all is exactly
// as truncated as one expecting it mid-sequence.
func ReadVarint(r io.Reader) (uint64, error) {
	var result uint64
	var shift uint
	var b [1]byte

	for {
		n, err := r.Read(b[:])
		if n == 0 {
			if err == nil {
				continue
			}
			return 0, io.ErrUnexpectedEOF
		}

		result |= uint64(b[0]&0x7f) << shift
		if b[0]&0x80 == 0 {
			return result, nil
		}

		shift += 7
		if shift >= maxVarintShift {
			return 0, ErrVarintTooLong
		}
	}
}
