// Package dictionary implements the Dictionary container: a deterministic
// word -> set-of-translations mapping for one source/target language pair,
// serialized to the self-describing DC01 binary format.
package dictionary

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// Dictionary maps lowercased source-language words to the set of
// lowercased target-language translations seen for them.
type Dictionary struct {
	ID             uuid.UUID
	SourceLanguage language.Tag
	TargetLanguage language.Tag
	Translations   map[string]map[string]struct{}
}

// New creates an empty dictionary for the given language pair.
func New(source, target language.Tag) *Dictionary {
	return &Dictionary{
		ID:             uuid.New(),
		SourceLanguage: source,
		TargetLanguage: target,
		Translations:   make(map[string]map[string]struct{}),
	}
}

// AddTranslation records that word translates to translation, lowercasing
// both before storing.
func (d *Dictionary) AddTranslation(word, translation string) {
	if d.Translations == nil {
		d.Translations = make(map[string]map[string]struct{})
	}
	word = strings.ToLower(word)
	translation = strings.ToLower(translation)

	set, ok := d.Translations[word]
	if !ok {
		set = make(map[string]struct{})
		d.Translations[word] = set
	}
	set[translation] = struct{}{}
}

// Words returns the dictionary's words in deterministic (code-point)
// lexicographic order.
func (d *Dictionary) Words() []string {
	words := make([]string, 0, len(d.Translations))
	for w := range d.Translations {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// TranslationsFor returns the translations of word in deterministic
// lexicographic order.
func (d *Dictionary) TranslationsFor(word string) []string {
	set := d.Translations[strings.ToLower(word)]
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Merge resolves the otherwise-undefined Dictionary::merge: union of keys,
// union of lowercased value sets per key.
func (d *Dictionary) Merge(other *Dictionary) *Dictionary {
	merged := New(d.SourceLanguage, d.TargetLanguage)
	merged.ID = d.ID

	for word, set := range d.Translations {
		for t := range set {
			merged.AddTranslation(word, t)
		}
	}
	if other != nil {
		for word, set := range other.Translations {
			for t := range set {
				merged.AddTranslation(word, t)
			}
		}
	}
	return merged
}
