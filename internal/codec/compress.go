package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// CompressArena compresses the string-arena blob at zstd's "balanced"
// encoder level. The original container format records a numeric zstd
// level ("5"); klauspost/compress's encoder API exposes named speed
// tiers rather than literal levels, so SpeedDefault is used as the
// closest equivalent.
func CompressArena(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("codec: create zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// DecompressArena reverses CompressArena.
func DecompressArena(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("codec: create zstd decoder: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: arena decompression: %v", ErrCorrupt, err)
	}
	return out, nil
}
