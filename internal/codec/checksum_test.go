package codec

import (
	"bytes"
	"errors"
	"testing"
)

func TestChecksumWriterMatchesHashBytes(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChecksumWriter(&buf)
	payload := []byte("hello world")
	if _, err := cw.Write(payload); err != nil {
		t.Fatal(err)
	}
	if cw.Sum64() != HashBytes(payload) {
		t.Fatalf("checksum writer diverges from HashBytes")
	}
	if buf.String() != "hello world" {
		t.Fatalf("underlying writer not passed through: %q", buf.String())
	}
}

func TestWriteUint64LittleEndian(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteUint64(&buf, 0x0102030405060708); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("expected little-endian bytes %x, got %x", want, buf.Bytes())
	}

	got, err := ReadUint64(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x0102030405060708 {
		t.Fatalf("round trip mismatch: got %x", got)
	}
}

func TestValidateWholeFileHashRoundTrip(t *testing.T) {
	var body bytes.Buffer
	for body.Len() <= chunkSize {
		body.WriteString("some container body bytes, long enough to span chunks ")
	}
	hash := HashBytes(body.Bytes())

	var file bytes.Buffer
	file.Write(body.Bytes())
	if err := WriteUint64(&file, hash); err != nil {
		t.Fatal(err)
	}

	r := bytes.NewReader(file.Bytes())
	if err := ValidateWholeFileHash(r); err != nil {
		t.Fatalf("expected valid hash, got %v", err)
	}
}

func TestValidateWholeFileHashDetectsCorruption(t *testing.T) {
	var body bytes.Buffer
	body.WriteString("some container body bytes")
	hash := HashBytes(body.Bytes())

	var file bytes.Buffer
	file.Write(body.Bytes())
	if err := WriteUint64(&file, hash); err != nil {
		t.Fatal(err)
	}

	corrupted := file.Bytes()
	corrupted[2] ^= 0xFF

	r := bytes.NewReader(corrupted)
	err := ValidateWholeFileHash(r)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}
