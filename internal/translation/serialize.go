package translation

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/tsultanov/flts/internal/codec"
)

// Magic is the TR01 container magic.
var Magic = codec.Magic{'T', 'R', '0', '1'}

// Metadata is the cheap, body-free summary of a Translation container.
type Metadata struct {
	ID                        uuid.UUID
	SourceLanguage            language.Tag
	TargetLanguage            language.Tag
	TranslatedParagraphsCount int
}

// Serialize writes t to w in the TR01 container format, following the same
// magic/version/metadata-hash/metadata-blob/body/whole-file-hash shape as
// the book container.
func Serialize(w io.Writer, t *Translation) error {
	metaBuf, err := encodeMetadata(t)
	if err != nil {
		return err
	}
	metaHash := codec.HashBytes(metaBuf)

	bodyBuf, err := encodeBody(t)
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

// Deserialize reads a full Translation from r, validating both the
// metadata hash and the whole-file hash.
func Deserialize(r io.ReadSeeker) (*Translation, error) {
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
		return nil, fmt.Errorf("%w: translation metadata hash", codec.ErrCorrupt)
	}
	meta, err := decodeMetadata(metaBuf)
	if err != nil {
		return nil, err
	}

	t, err := decodeBody(r, meta)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ReadMetadata parses only the metadata section, never the body or the
// whole-file hash.
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
		return nil, fmt.Errorf("%w: translation metadata hash", codec.ErrCorrupt)
	}
	return decodeMetadata(buf)
}

func encodeMetadata(t *Translation) ([]byte, error) {
	var buf bytes.Buffer
	idBytes, err := t.ID.MarshalBinary()
	if err != nil {
		return nil, err
	}
	buf.Write(idBytes)
	if err := codec.WriteBlob(&buf, []byte(t.SourceLanguage.String())); err != nil {
		return nil, err
	}
	if err := codec.WriteBlob(&buf, []byte(t.TargetLanguage.String())); err != nil {
		return nil, err
	}
	if err := codec.WriteVarint(&buf, uint64(len(t.Latest))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeMetadata(buf []byte) (*Metadata, error) {
	r := bytes.NewReader(buf)
	var idBytes [16]byte
	if _, err := io.ReadFull(r, idBytes[:]); err != nil {
		return nil, fmt.Errorf("%w: translation metadata id", codec.ErrCorrupt)
	}
	id, err := uuid.FromBytes(idBytes[:])
	if err != nil {
		return nil, fmt.Errorf("%w: translation metadata id: %v", codec.ErrCorrupt, err)
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
		return nil, fmt.Errorf("%w: translation source language: %v", codec.ErrCorrupt, err)
	}
	tgt, err := language.Parse(string(tgtBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: translation target language: %v", codec.ErrCorrupt, err)
	}
	count, err := codec.ReadVarint(r)
	if err != nil {
		return nil, err
	}
	return &Metadata{ID: id, SourceLanguage: src, TargetLanguage: tgt, TranslatedParagraphsCount: int(count)}, nil
}

// encodeBody serializes the full paragraph-translation arena: a
// zstd-compressed, length-prefixed string arena for every text leaf
// (sentence/word text, grammar notes, contextual-translation text),
// followed by the uncompressed structural arrays that reference it.
func encodeBody(t *Translation) ([]byte, error) {
	var arenaBuf bytes.Buffer
	var structBuf bytes.Buffer

	pushString := func(s string) error {
		if err := codec.WriteVarint(&structBuf, uint64(arenaBuf.Len())); err != nil {
			return err
		}
		if err := codec.WriteVarint(&structBuf, uint64(len(s))); err != nil {
			return err
		}
		_, err := arenaBuf.WriteString(s)
		return err
	}
	pushOptionalString := func(s *string) error {
		hasValue := s != nil
		if err := structBuf.WriteByte(boolByte(hasValue)); err != nil {
			return err
		}
		if !hasValue {
			return nil
		}
		return pushString(*s)
	}

	if err := codec.WriteVarint(&structBuf, uint64(len(t.ParagraphTranslations))); err != nil {
		return nil, err
	}
	for _, v := range t.ParagraphTranslations {
		if err := codec.WriteVarint(&structBuf, uint64(v.Timestamp)); err != nil {
			return nil, err
		}
		hasPrev := v.PreviousVersion != nil
		if err := structBuf.WriteByte(boolByte(hasPrev)); err != nil {
			return nil, err
		}
		if hasPrev {
			if err := codec.WriteVarint(&structBuf, uint64(*v.PreviousVersion)); err != nil {
				return nil, err
			}
		}
		if err := codec.WriteVarint(&structBuf, uint64(len(v.Sentences))); err != nil {
			return nil, err
		}
		for _, s := range v.Sentences {
			if err := pushString(s.FullTranslation); err != nil {
				return nil, err
			}
			if err := codec.WriteVarint(&structBuf, uint64(len(s.Words))); err != nil {
				return nil, err
			}
			for _, w := range s.Words {
				if err := pushString(w.Original); err != nil {
					return nil, err
				}
				if err := pushString(w.Note); err != nil {
					return nil, err
				}
				if err := structBuf.WriteByte(boolByte(w.IsPunctuation)); err != nil {
					return nil, err
				}
				if err := pushString(w.Grammar.OriginalInitialForm); err != nil {
					return nil, err
				}
				if err := pushString(w.Grammar.TargetInitialForm); err != nil {
					return nil, err
				}
				if err := pushString(w.Grammar.PartOfSpeech); err != nil {
					return nil, err
				}
				for _, opt := range []*string{
					w.Grammar.Plurality, w.Grammar.Person, w.Grammar.Tense, w.Grammar.Case, w.Grammar.Other,
				} {
					if err := pushOptionalString(opt); err != nil {
						return nil, err
					}
				}
				if err := codec.WriteVarint(&structBuf, uint64(len(w.ContextualTranslations))); err != nil {
					return nil, err
				}
				for _, ct := range w.ContextualTranslations {
					if err := pushString(ct); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	// Latest map, sorted by paragraph index for determinism.
	paragraphIndices := make([]int, 0, len(t.Latest))
	for idx := range t.Latest {
		paragraphIndices = append(paragraphIndices, idx)
	}
	sort.Ints(paragraphIndices)
	if err := codec.WriteVarint(&structBuf, uint64(len(paragraphIndices))); err != nil {
		return nil, err
	}
	for _, idx := range paragraphIndices {
		if err := codec.WriteVarint(&structBuf, uint64(idx)); err != nil {
			return nil, err
		}
		if err := codec.WriteVarint(&structBuf, uint64(t.Latest[idx])); err != nil {
			return nil, err
		}
	}

	compressedArena, err := codec.CompressArena(arenaBuf.Bytes())
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := codec.WriteBlob(&body, compressedArena); err != nil {
		return nil, err
	}
	if _, err := body.Write(structBuf.Bytes()); err != nil {
		return nil, err
	}
	return body.Bytes(), nil
}

func decodeBody(r io.Reader, meta *Metadata) (*Translation, error) {
	compressedArena, err := codec.ReadBlob(r)
	if err != nil {
		return nil, err
	}
	arenaBytes, err := codec.DecompressArena(compressedArena)
	if err != nil {
		return nil, err
	}

	readString := func() (string, error) {
		start, err := codec.ReadVarint(r)
		if err != nil {
			return "", err
		}
		length, err := codec.ReadVarint(r)
		if err != nil {
			return "", err
		}
		if start+length > uint64(len(arenaBytes)) {
			return "", fmt.Errorf("%w: translation arena reference out of bounds", codec.ErrCorrupt)
		}
		return string(arenaBytes[start : start+length]), nil
	}
	readBool := func() (bool, error) {
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return false, io.ErrUnexpectedEOF
		}
		return b[0] != 0, nil
	}
	readOptionalString := func() (*string, error) {
		hasValue, err := readBool()
		if err != nil {
			return nil, err
		}
		if !hasValue {
			return nil, nil
		}
		s, err := readString()
		if err != nil {
			return nil, err
		}
		return &s, nil
	}

	t := &Translation{ID: meta.ID, SourceLanguage: meta.SourceLanguage, TargetLanguage: meta.TargetLanguage, Latest: make(map[int]int)}

	versionCount, err := codec.ReadVarint(r)
	if err != nil {
		return nil, err
	}
	t.ParagraphTranslations = make([]ParagraphTranslation, versionCount)
	for i := uint64(0); i < versionCount; i++ {
		ts, err := codec.ReadVarint(r)
		if err != nil {
			return nil, err
		}
		hasPrev, err := readBool()
		if err != nil {
			return nil, err
		}
		var prev *int
		if hasPrev {
			p, err := codec.ReadVarint(r)
			if err != nil {
				return nil, err
			}
			pi := int(p)
			prev = &pi
		}
		sentenceCount, err := codec.ReadVarint(r)
		if err != nil {
			return nil, err
		}
		sentences := make([]Sentence, sentenceCount)
		for si := uint64(0); si < sentenceCount; si++ {
			fullTranslation, err := readString()
			if err != nil {
				return nil, err
			}
			wordCount, err := codec.ReadVarint(r)
			if err != nil {
				return nil, err
			}
			words := make([]Word, wordCount)
			for wi := uint64(0); wi < wordCount; wi++ {
				original, err := readString()
				if err != nil {
					return nil, err
				}
				note, err := readString()
				if err != nil {
					return nil, err
				}
				isPunctuation, err := readBool()
				if err != nil {
					return nil, err
				}
				originalInitialForm, err := readString()
				if err != nil {
					return nil, err
				}
				targetInitialForm, err := readString()
				if err != nil {
					return nil, err
				}
				partOfSpeech, err := readString()
				if err != nil {
					return nil, err
				}
				plurality, err := readOptionalString()
				if err != nil {
					return nil, err
				}
				person, err := readOptionalString()
				if err != nil {
					return nil, err
				}
				tense, err := readOptionalString()
				if err != nil {
					return nil, err
				}
				wordCase, err := readOptionalString()
				if err != nil {
					return nil, err
				}
				other, err := readOptionalString()
				if err != nil {
					return nil, err
				}
				ctCount, err := codec.ReadVarint(r)
				if err != nil {
					return nil, err
				}
				cts := make([]string, ctCount)
				for ci := uint64(0); ci < ctCount; ci++ {
					text, err := readString()
					if err != nil {
						return nil, err
					}
					cts[ci] = text
				}
				words[wi] = Word{
					Original:               original,
					Note:                   note,
					IsPunctuation:          isPunctuation,
					ContextualTranslations: cts,
					Grammar: Grammar{
						OriginalInitialForm: originalInitialForm,
						TargetInitialForm:   targetInitialForm,
						PartOfSpeech:        partOfSpeech,
						Plurality:           plurality,
						Person:              person,
						Tense:               tense,
						Case:                wordCase,
						Other:               other,
					},
				}
			}
			sentences[si] = Sentence{FullTranslation: fullTranslation, Words: words}
		}
		t.ParagraphTranslations[i] = ParagraphTranslation{Timestamp: int64(ts), PreviousVersion: prev, Sentences: sentences}
	}

	latestCount, err := codec.ReadVarint(r)
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < latestCount; i++ {
		idx, err := codec.ReadVarint(r)
		if err != nil {
			return nil, err
		}
		val, err := codec.ReadVarint(r)
		if err != nil {
			return nil, err
		}
		t.Latest[int(idx)] = int(val)
	}

	return t, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
