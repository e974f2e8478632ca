package dictionary

import (
	"bytes"
	"errors"
	"testing"

	"golang.org/x/text/language"

	"github.com/tsultanov/flts/internal/codec"
)

func sampleDictionary() *Dictionary {
	d := New(language.English, language.Russian)
	d.AddTranslation("Hello", "Привет")
	d.AddTranslation("Hello", "Здравствуй")
	d.AddTranslation("world", "мир")
	return d
}

func TestDictionaryAddAndRoundTrip(t *testing.T) {
	d := sampleDictionary()

	if got := d.TranslationsFor("hello"); len(got) != 2 || got[0] != "здравствуй" || got[1] != "привет" {
		t.Fatalf("unexpected translations: %v", got)
	}

	var buf bytes.Buffer
	if err := Serialize(&buf, d); err != nil {
		t.Fatalf("serialize: %v", err)
	}

	got, err := Deserialize(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if got.ID != d.ID {
		t.Fatalf("id mismatch")
	}
	if words := got.Words(); len(words) != 2 || words[0] != "hello" || words[1] != "world" {
		t.Fatalf("unexpected words: %v", words)
	}
	if translations := got.TranslationsFor("world"); len(translations) != 1 || translations[0] != "мир" {
		t.Fatalf("unexpected translations for world: %v", translations)
	}
}

func TestDictionaryCorruptionDetection(t *testing.T) {
	d := sampleDictionary()

	var buf bytes.Buffer
	if err := Serialize(&buf, d); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	data := buf.Bytes()
	data[10] ^= 0xFF

	_, err := Deserialize(bytes.NewReader(data))
	if !errors.Is(err, codec.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestDictionaryMerge(t *testing.T) {
	a := New(language.English, language.Russian)
	a.AddTranslation("hello", "привет")

	b := New(language.English, language.Russian)
	b.ID = a.ID
	b.AddTranslation("hello", "здравствуй")
	b.AddTranslation("world", "мир")

	merged := a.Merge(b)
	if words := merged.Words(); len(words) != 2 {
		t.Fatalf("expected 2 words, got %v", words)
	}
	if got := merged.TranslationsFor("hello"); len(got) != 2 {
		t.Fatalf("expected union of translations, got %v", got)
	}
}
