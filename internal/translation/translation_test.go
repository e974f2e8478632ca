package translation

import (
	"bytes"
	"errors"
	"testing"

	"golang.org/x/text/language"

	"github.com/tsultanov/flts/internal/codec"
	"github.com/tsultanov/flts/internal/translationimport"
)

func dto(target string) *translationimport.ParagraphTranslation {
	return &translationimport.ParagraphTranslation{
		Sentences: []translationimport.Sentence{
			{
				FullTranslation: target,
				Words: []translationimport.Word{
					{
						Original: "Hi",
						Grammar:  translationimport.Grammar{OriginalInitialForm: "hi", TargetInitialForm: target, PartOfSpeech: "interjection"},
					},
				},
			},
		},
		SourceLanguage: "en",
		TargetLanguage: "fr",
	}
}

func TestAddParagraphTranslation(t *testing.T) {
	tr := New(language.English, language.French)
	idx := tr.AddParagraphTranslation(0, dto("Salut"), 100)
	if idx != 0 {
		t.Fatalf("got idx %d", idx)
	}
	if tr.Latest[0] != 0 {
		t.Fatalf("latest not updated")
	}
	if tr.ParagraphTranslations[0].PreviousVersion != nil {
		t.Fatalf("expected no previous version for first entry")
	}

	idx2 := tr.AddParagraphTranslation(0, dto("Salut there"), 200)
	if idx2 != 1 {
		t.Fatalf("got idx %d", idx2)
	}
	if tr.ParagraphTranslations[1].PreviousVersion == nil || *tr.ParagraphTranslations[1].PreviousVersion != 0 {
		t.Fatalf("expected previous version 0")
	}
	if tr.Latest[0] != 1 {
		t.Fatalf("latest not advanced")
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	tr := New(language.English, language.French)
	tr.AddParagraphTranslation(0, dto("Hi"), 1)
	tr.AddParagraphTranslation(0, dto("Hi there"), 2)

	var buf bytes.Buffer
	if err := Serialize(&buf, tr); err != nil {
		t.Fatalf("serialize: %v", err)
	}

	got, err := Deserialize(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if got.ID != tr.ID {
		t.Fatalf("id mismatch")
	}
	if len(got.ParagraphTranslations) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(got.ParagraphTranslations))
	}
	if got.ParagraphTranslations[0].Sentences[0].FullTranslation != "Hi" {
		t.Fatalf("got %q", got.ParagraphTranslations[0].Sentences[0].FullTranslation)
	}
	if got.ParagraphTranslations[1].Sentences[0].FullTranslation != "Hi there" {
		t.Fatalf("got %q", got.ParagraphTranslations[1].Sentences[0].FullTranslation)
	}
	if got.ParagraphTranslations[0].Sentences[0].Words[0].Original != "Hi" {
		t.Fatalf("got %q", got.ParagraphTranslations[0].Sentences[0].Words[0].Original)
	}
	if got.ParagraphTranslations[0].Sentences[0].Words[0].Grammar.PartOfSpeech != "interjection" {
		t.Fatalf("got %q", got.ParagraphTranslations[0].Sentences[0].Words[0].Grammar.PartOfSpeech)
	}
	if got.Latest[0] != 1 {
		t.Fatalf("latest mismatch: %v", got.Latest)
	}
}

func TestSerializeDeserializeCorruption(t *testing.T) {
	tr := New(language.English, language.French)
	tr.AddParagraphTranslation(0, dto("Hi"), 1)

	var buf bytes.Buffer
	if err := Serialize(&buf, tr); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	data := buf.Bytes()
	data[12] ^= 0xFF

	_, err := Deserialize(bytes.NewReader(data))
	if !errors.Is(err, codec.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func chainTimestamps(tr *Translation, paragraphIndex int) []int64 {
	versions := tr.chain(paragraphIndex)
	out := make([]int64, len(versions))
	for i, v := range versions {
		out[i] = v.Timestamp
	}
	// reverse to latest-first, matching the scenario descriptions
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func addAt(tr *Translation, paragraphIndex int, ts int64) {
	tr.addVersion(paragraphIndex, ParagraphTranslation{Timestamp: ts, Sentences: fromDTO(dto("x"))})
}

func TestMergeSameHistory(t *testing.T) {
	a := New(language.English, language.French)
	addAt(a, 0, 1)
	addAt(a, 0, 2)

	b := New(language.English, language.French)
	b.ID = a.ID
	addAt(b, 0, 1)
	addAt(b, 0, 2)

	merged := a.Merge(b)
	got := chainTimestamps(merged, 0)
	want := []int64{2, 1}
	if !int64SliceEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestMergeDivergedCommonRoot(t *testing.T) {
	a := New(language.English, language.French)
	addAt(a, 0, 1)
	addAt(a, 0, 2)
	addAt(a, 0, 4)

	b := New(language.English, language.French)
	b.ID = a.ID
	addAt(b, 0, 1)
	addAt(b, 0, 3)
	addAt(b, 0, 5)

	merged := a.Merge(b)
	got := chainTimestamps(merged, 0)
	want := []int64{5, 4, 3, 2, 1}
	if !int64SliceEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestMergeNoCommonRoot(t *testing.T) {
	a := New(language.English, language.French)
	addAt(a, 0, 10)
	addAt(a, 0, 20)

	b := New(language.English, language.French)
	b.ID = a.ID
	addAt(b, 0, 5)
	addAt(b, 0, 15)
	addAt(b, 0, 25)

	merged := a.Merge(b)
	got := chainTimestamps(merged, 0)
	want := []int64{25, 20, 15, 10, 5}
	if !int64SliceEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestMergePresentOnlyInOneSide(t *testing.T) {
	a := New(language.English, language.French)
	addAt(a, 0, 1)

	b := New(language.English, language.French)
	b.ID = a.ID
	addAt(b, 1, 1)

	merged := a.Merge(b)
	if len(chainTimestamps(merged, 0)) != 1 {
		t.Fatalf("expected paragraph 0 preserved")
	}
	if len(chainTimestamps(merged, 1)) != 1 {
		t.Fatalf("expected paragraph 1 preserved")
	}
}

func int64SliceEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
