package dictionary

import (
	"bytes"
	"fmt"
	"io"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/tsultanov/flts/internal/codec"
)

// Magic is the DC01 container magic.
var Magic = codec.Magic{'D', 'C', '0', '1'}

// Metadata is the cheap, body-free summary of a Dictionary container.
type Metadata struct {
	ID             uuid.UUID
	SourceLanguage language.Tag
	TargetLanguage language.Tag
}

// Serialize writes d to w in the DC01 container format.
func Serialize(w io.Writer, d *Dictionary) error {
	metaBuf, err := encodeMetadata(d)
	if err != nil {
		return err
	}
	metaHash := codec.HashBytes(metaBuf)

	bodyBuf, err := encodeBody(d)
	if err != nil {
		return err
	}

	cw := codec.NewChecksumWriter(w)
	if err := codec.WriteMagic(cw, Magic); err != nil {
		return err
	}
	if err := codec.WriteVersion(cw, codec.CurrentVersion); err != nil {
		return err
	}
	if err := codec.WriteUint64(cw, metaHash); err != nil {
		return err
	}
	if err := codec.WriteBlob(cw, metaBuf); err != nil {
		return err
	}
	if _, err := cw.Write(bodyBuf); err != nil {
		return err
	}
	return codec.WriteUint64(w, cw.Sum64())
}

// Deserialize reads a full Dictionary from r, validating both the metadata
// hash and the whole-file hash.
func Deserialize(r io.ReadSeeker) (*Dictionary, error) {
	if err := codec.ValidateWholeFileHash(r); err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	if err := codec.ReadMagic(r, Magic); err != nil {
		return nil, err
	}
	if _, err := codec.ReadVersion(r); err != nil {
		return nil, err
	}
	storedHash, err := codec.ReadUint64(r)
	if err != nil {
		return nil, err
	}
	metaBuf, err := codec.ReadBlob(r)
	if err != nil {
		return nil, err
	}
	if codec.HashBytes(metaBuf) != storedHash {
		return nil, fmt.Errorf("%w: dictionary metadata hash", codec.ErrCorrupt)
	}
	meta, err := decodeMetadata(metaBuf)
	if err != nil {
		return nil, err
	}

	d := &Dictionary{ID: meta.ID, SourceLanguage: meta.SourceLanguage, TargetLanguage: meta.TargetLanguage, Translations: make(map[string]map[string]struct{})}

	wordCount, err := codec.ReadVarint(r)
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < wordCount; i++ {
		wordBytes, err := codec.ReadBlob(r)
		if err != nil {
			return nil, err
		}
		translationCount, err := codec.ReadVarint(r)
		if err != nil {
			return nil, err
		}
		for j := uint64(0); j < translationCount; j++ {
			tBytes, err := codec.ReadBlob(r)
			if err != nil {
				return nil, err
			}
			d.AddTranslation(string(wordBytes), string(tBytes))
		}
	}

	return d, nil
}

// ReadMetadata parses only the metadata section.
func ReadMetadata(r io.Reader) (*Metadata, error) {
	if err := codec.ReadMagic(r, Magic); err != nil {
		return nil, err
	}
	if _, err := codec.ReadVersion(r); err != nil {
		return nil, err
	}
	storedHash, err := codec.ReadUint64(r)
	if err != nil {
		return nil, err
	}
	buf, err := codec.ReadBlob(r)
	if err != nil {
		return nil, err
	}
	if codec.HashBytes(buf) != storedHash {
		return nil, fmt.Errorf("%w: dictionary metadata hash", codec.ErrCorrupt)
	}
	return decodeMetadata(buf)
}

func encodeMetadata(d *Dictionary) ([]byte, error) {
	var buf bytes.Buffer
	idBytes, err := d.ID.MarshalBinary()
	if err != nil {
		return nil, err
	}
	buf.Write(idBytes)
	if err := codec.WriteBlob(&buf, []byte(d.SourceLanguage.String())); err != nil {
		return nil, err
	}
	if err := codec.WriteBlob(&buf, []byte(d.TargetLanguage.String())); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeMetadata(buf []byte) (*Metadata, error) {
	r := bytes.NewReader(buf)
	var idBytes [16]byte
	if _, err := io.ReadFull(r, idBytes[:]); err != nil {
		return nil, fmt.Errorf("%w: dictionary metadata id", codec.ErrCorrupt)
	}
	id, err := uuid.FromBytes(idBytes[:])
	if err != nil {
		return nil, fmt.Errorf("%w: dictionary metadata id: %v", codec.ErrCorrupt, err)
	}
	srcBytes, err := codec.ReadBlob(r)
	if err != nil {
		return nil, err
	}
	tgtBytes, err := codec.ReadBlob(r)
	if err != nil {
		return nil, err
	}
	src, err := language.Parse(string(srcBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: dictionary source language: %v", codec.ErrCorrupt, err)
	}
	tgt, err := language.Parse(string(tgtBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: dictionary target language: %v", codec.ErrCorrupt, err)
	}
	return &Metadata{ID: id, SourceLanguage: src, TargetLanguage: tgt}, nil
}

func encodeBody(d *Dictionary) ([]byte, error) {
	var buf bytes.Buffer
	words := d.Words()
	if err := codec.WriteVarint(&buf, uint64(len(words))); err != nil {
		return nil, err
	}
	for _, w := range words {
		if err := codec.WriteBlob(&buf, []byte(w)); err != nil {
			return nil, err
		}
		translations := d.TranslationsFor(w)
		if err := codec.WriteVarint(&buf, uint64(len(translations))); err != nil {
			return nil, err
		}
		for _, t := range translations {
			if err := codec.WriteBlob(&buf, []byte(t)); err != nil {
				return nil, err
			}
		}
	}
	return buf.Bytes(), nil
}
