package codec

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
)

func TestWriteVarintVectors(t *testing.T) {
	cases := []struct {
		v    uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{129, []byte{0x81, 0x01}},
		{255, []byte{0xFF, 0x01}},
		{300, []byte{0xAC, 0x02}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{(1 << 28) - 1, []byte{0xFF, 0xFF, 0xFF, 0x7F}},
		{1 << 28, []byte{0x80, 0x80, 0x80, 0x80, 0x01}},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		if err := WriteVarint(&buf, c.v); err != nil {
			t.Fatalf("write %d: %v", c.v, err)
		}
		if !bytes.Equal(buf.Bytes(), c.want) {
			t.Errorf("v=%d: got %x, want %x", c.v, buf.Bytes(), c.want)
		}

		got, err := ReadVarint(bytes.NewReader(c.want))
		if err != nil {
			t.Fatalf("read %x: %v", c.want, err)
		}
		if got != c.v {
			t.Errorf("round trip %d: got %d", c.v, got)
		}
	}
}

func TestVarintMaxUint64RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteVarint(&buf, math.MaxUint64); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 10 {
		t.Fatalf("expected 10 bytes for MaxUint64, got %d", buf.Len())
	}
	got, err := ReadVarint(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if got != math.MaxUint64 {
		t.Fatalf("got %d", got)
	}
}

func TestVarintTooLong(t *testing.T) {
	// 11 continuation bytes, none terminating: shift exceeds 64 bits.
	data := bytes.Repeat([]byte{0x80}, 11)
	_, err := ReadVarint(bytes.NewReader(data))
	if !errors.Is(err, ErrVarintTooLong) {
		t.Fatalf("expected ErrVarintTooLong, got %v", err)
	}
}

func TestVarintIncomplete(t *testing.T) {
	// A continuation byte with nothing following.
	data := []byte{0x80}
	_, err := ReadVarint(bytes.NewReader(data))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestVarintEmptyStreamIsUnexpectedEOF(t *testing.T) {
	_, err := ReadVarint(bytes.NewReader(nil))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF for empty stream, got %v", err)
	}
}

func TestOptionalBlobRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOptionalBlob(&buf, []byte("hi"), true); err != nil {
		t.Fatal(err)
	}
	data, present, err := ReadOptionalBlob(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if !present || string(data) != "hi" {
		t.Fatalf("got present=%v data=%q", present, data)
	}

	buf.Reset()
	if err := WriteOptionalBlob(&buf, nil, false); err != nil {
		t.Fatal(err)
	}
	_, present, err = ReadOptionalBlob(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if present {
		t.Fatalf("expected not present")
	}
}
