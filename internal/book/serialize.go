package book

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/tsultanov/flts/internal/codec"
)

// Magic is the BK01 container magic.
var Magic = codec.Magic{'B', 'K', '0', '1'}

// Metadata is the cheap, body-free summary of a Book container.
type Metadata struct {
	ID                uuid.UUID
	Title             string
	ChaptersCount     int
	ParagraphsCount   int
}

// Serialize writes b to w in the BK01 container format:
//
//	magic(4) version(1) metadata_hash(8) metadata_blob body whole_file_hash(8)
//
// where metadata_blob is a length-prefixed encoding of Metadata, and body is
// a length-prefixed zstd-compressed string arena followed by the chapter and
// paragraph index arrays.
func Serialize(w io.Writer, b *Book) error {
	arenaBytes, chapterRefs, paragraphRefs := buildArena(b)

	metaBuf, err := encodeMetadata(b)
	if err != nil {
		return err
	}
	metaHash := codec.HashBytes(metaBuf)

	compressedArena, err := codec.CompressArena(arenaBytes)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	if err := codec.WriteBlob(&body, compressedArena); err != nil {
		return err
	}
	if err := codec.WriteVarint(&body, uint64(len(b.Chapters))); err != nil {
		return err
	}
	for i, ch := range b.Chapters {
		refs := chapterRefs[i]
		if err := writeRef(&body, refs.title); err != nil {
			return err
		}
		if err := codec.WriteBlob(&body, []byte(ch.MatterType)); err != nil {
			return err
		}
		if err := codec.WriteVarint(&body, uint64(len(ch.Paragraphs))); err != nil {
			return err
		}
		for _, pref := range paragraphRefs[i] {
			if err := writeRef(&body, pref.text); err != nil {
				return err
			}
			if err := writeOptionalRef(&body, pref.hasHTML, pref.html); err != nil {
				return err
			}
		}
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
	if _, err := cw.Write(body.Bytes()); err != nil {
		return err
	}
	return codec.WriteUint64(w, cw.Sum64())
}

// Deserialize reads a full Book from r, validating both the metadata hash
// and the whole-file hash. r must also implement io.Seeker so the
// whole-file hash can be checked.
func Deserialize(r io.ReadSeeker) (*Book, error) {
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
	storedMetaHash, err := codec.ReadUint64(r)
	if err != nil {
		return nil, err
	}
	metaBuf, err := codec.ReadBlob(r)
	if err != nil {
		return nil, err
	}
	if codec.HashBytes(metaBuf) != storedMetaHash {
		return nil, fmt.Errorf("%w: book metadata hash", codec.ErrCorrupt)
	}
	meta, err := decodeMetadata(metaBuf)
	if err != nil {
		return nil, err
	}

	compressedArena, err := codec.ReadBlob(r)
	if err != nil {
		return nil, err
	}
	arenaBytes, err := codec.DecompressArena(compressedArena)
	if err != nil {
		return nil, err
	}

	chapterCount, err := codec.ReadVarint(r)
	if err != nil {
		return nil, err
	}

	b := &Book{ID: meta.ID, Title: meta.Title}
	for i := uint64(0); i < chapterCount; i++ {
		titleRef, err := readRef(r)
		if err != nil {
			return nil, err
		}
		matterTypeBytes, err := codec.ReadBlob(r)
		if err != nil {
			return nil, err
		}
		paragraphCount, err := codec.ReadVarint(r)
		if err != nil {
			return nil, err
		}

		ch := Chapter{
			Title:      sliceString(arenaBytes, titleRef),
			MatterType: string(matterTypeBytes),
		}
		for j := uint64(0); j < paragraphCount; j++ {
			textRef, err := readRef(r)
			if err != nil {
				return nil, err
			}
			htmlRef, hasHTML, err := readOptionalRef(r)
			if err != nil {
				return nil, err
			}
			p := Paragraph{Text: sliceString(arenaBytes, textRef)}
			if hasHTML {
				p.OriginalHTML = sliceString(arenaBytes, htmlRef)
			}
			ch.Paragraphs = append(ch.Paragraphs, p)
		}
		b.Chapters = append(b.Chapters, ch)
	}

	return b, nil
}

// ReadMetadata parses only magic, version, metadata hash, and the metadata
// payload, never touching the body or the whole-file hash. This is the
// cheap path used for library discovery/listing.
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
		return nil, fmt.Errorf("%w: book metadata hash", codec.ErrCorrupt)
	}
	return decodeMetadata(buf)
}

type chapterRef struct {
	title ref
}

type paragraphRef struct {
	text    ref
	html    ref
	hasHTML bool
}

type ref struct {
	start, length uint64
}

func buildArena(b *Book) ([]byte, []chapterRef, [][]paragraphRef) {
	var a soaArena
	chapterRefs := make([]chapterRef, len(b.Chapters))
	paragraphRefs := make([][]paragraphRef, len(b.Chapters))

	for i, ch := range b.Chapters {
		tref := a.push(ch.Title)
		chapterRefs[i] = chapterRef{title: ref{uint64(tref.Start), uint64(tref.Len)}}

		prefs := make([]paragraphRef, len(ch.Paragraphs))
		for j, p := range ch.Paragraphs {
			textRef := a.push(p.Text)
			pref := paragraphRef{text: ref{uint64(textRef.Start), uint64(textRef.Len)}}
			if p.OriginalHTML != "" {
				htmlRef := a.push(p.OriginalHTML)
				pref.html = ref{uint64(htmlRef.Start), uint64(htmlRef.Len)}
				pref.hasHTML = true
			}
			prefs[j] = pref
		}
		paragraphRefs[i] = prefs
	}

	return a.bytes, chapterRefs, paragraphRefs
}

func writeRef(w io.Writer, r ref) error {
	if err := codec.WriteVarint(w, r.start); err != nil {
		return err
	}
	return codec.WriteVarint(w, r.length)
}

func readRef(r io.Reader) (ref, error) {
	start, err := codec.ReadVarint(r)
	if err != nil {
		return ref{}, err
	}
	length, err := codec.ReadVarint(r)
	if err != nil {
		return ref{}, err
	}
	return ref{start, length}, nil
}

// writeOptionalRef writes a presence byte, followed by r only if present.
func writeOptionalRef(w io.Writer, present bool, r ref) error {
	b := byte(0)
	if present {
		b = 1
	}
	if _, err := w.Write([]byte{b}); err != nil {
		return err
	}
	if !present {
		return nil
	}
	return writeRef(w, r)
}

// readOptionalRef reads a presence byte and, if set, the ref that follows.
func readOptionalRef(r io.Reader) (ref, bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return ref{}, false, io.ErrUnexpectedEOF
		}
		return ref{}, false, err
	}
	if b[0] == 0 {
		return ref{}, false, nil
	}
	rf, err := readRef(r)
	return rf, true, err
}

func sliceString(arenaBytes []byte, r ref) string {
	return string(arenaBytes[r.start : r.start+r.length])
}

func encodeMetadata(b *Book) ([]byte, error) {
	var buf bytes.Buffer
	idBytes, err := b.ID.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if _, err := buf.Write(idBytes); err != nil {
		return nil, err
	}
	if err := codec.WriteBlob(&buf, []byte(b.Title)); err != nil {
		return nil, err
	}
	if err := codec.WriteVarint(&buf, uint64(len(b.Chapters))); err != nil {
		return nil, err
	}
	if err := codec.WriteVarint(&buf, uint64(b.TotalParagraphs())); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeMetadata(buf []byte) (*Metadata, error) {
	r := bytes.NewReader(buf)
	var idBytes [16]byte
	if _, err := io.ReadFull(r, idBytes[:]); err != nil {
		return nil, fmt.Errorf("%w: book metadata id", codec.ErrCorrupt)
	}
	id, err := uuid.FromBytes(idBytes[:])
	if err != nil {
		return nil, fmt.Errorf("%w: book metadata id: %v", codec.ErrCorrupt, err)
	}
	titleBytes, err := codec.ReadBlob(r)
	if err != nil {
		return nil, err
	}
	chapters, err := codec.ReadVarint(r)
	if err != nil {
		return nil, err
	}
	paragraphs, err := codec.ReadVarint(r)
	if err != nil {
		return nil, err
	}
	return &Metadata{
		ID:              id,
		Title:           string(titleBytes),
		ChaptersCount:   int(chapters),
		ParagraphsCount: int(paragraphs),
	}, nil
}
