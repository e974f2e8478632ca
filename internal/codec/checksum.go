package codec

import (
	"errors"
	"fmt"
	"hash/fnv"
	"io"
)

// ErrCorrupt is returned when a checksum does not match the data it covers,
// and when checksummed container data cannot be decoded (a bad compressed
// arena, an unparsable metadata field, an out-of-bounds arena reference).
var ErrCorrupt = errors.New("codec: checksum mismatch")

const chunkSize = 8 * 1024

// ChecksumWriter wraps an io.Writer, accumulating an FNV-1a 64-bit hash of
// everything written through it.
type ChecksumWriter struct {
	w    io.Writer
	hash io.Writer
	sum  interface{ Sum64() uint64 }
}

// NewChecksumWriter wraps w.
func NewChecksumWriter(w io.Writer) *ChecksumWriter {
	h := fnv.New64a()
	return &ChecksumWriter{w: w, hash: h, sum: h}
}

func (c *ChecksumWriter) Write(p []byte) (int, error) {
	if _, err := c.hash.Write(p); err != nil {
		return 0, err
	}
	return c.w.Write(p)
}

// Sum64 returns the FNV-1a hash of everything written so far.
func (c *ChecksumWriter) Sum64() uint64 {
	return c.sum.Sum64()
}

// HashBytes returns the FNV-1a 64-bit hash of data.
func HashBytes(data []byte) uint64 {
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64()
}

// ValidateWholeFileHash reads the entire file from a ReadSeeker (except the
// trailing 8-byte hash itself), hashes it with FNV-1a in chunkSize pieces,
// and compares it against the hash stored in the last 8 bytes.
func ValidateWholeFileHash(rs io.ReadSeeker) error {
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if end < 8 {
		return fmt.Errorf("%w: file too short to contain a trailing hash", ErrCorrupt)
	}

	if _, err := rs.Seek(end-8, io.SeekStart); err != nil {
		return err
	}
	var stored [8]byte
	if _, err := io.ReadFull(rs, stored[:]); err != nil {
		return err
	}
	storedHash := leUint64(stored[:])

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return err
	}

	h := fnv.New64a()
	remaining := end - 8
	buf := make([]byte, chunkSize)
	for remaining > 0 {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		read, err := io.ReadFull(rs, buf[:n])
		if err != nil {
			return err
		}
		h.Write(buf[:read])
		remaining -= int64(read)
	}

	if h.Sum64() != storedHash {
		return fmt.Errorf("%w: whole-file hash", ErrCorrupt)
	}
	return nil
}

// WriteUint64 writes v as 8 little-endian bytes.
func WriteUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	putLeUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint64 reads 8 little-endian bytes as a uint64.
func ReadUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return 0, io.ErrUnexpectedEOF
		}
		return 0, err
	}
	return leUint64(buf[:]), nil
}

func putLeUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v)
		v >>= 8
	}
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
