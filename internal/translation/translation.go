// Package translation implements the Translation container: per-paragraph
// version chains of translated sentences, words, and grammar notes, with a
// merge algorithm tolerant of two independently-extended histories.
package translation

import (
	"sort"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/tsultanov/flts/internal/translationimport"
)

// Grammar holds part-of-speech and morphological notes for a word. The
// first three fields are always present; the rest apply only to parts of
// speech that carry them.
type Grammar struct {
	OriginalInitialForm string
	TargetInitialForm   string
	PartOfSpeech        string
	Plurality           *string
	Person              *string
	Tense               *string
	Case                *string
	Other               *string
}

// Word is a single source-language word within a translated sentence.
type Word struct {
	Original               string
	ContextualTranslations []string
	Note                   string
	IsPunctuation          bool
	Grammar                Grammar
}

// Sentence is one translated sentence within a paragraph. FullTranslation
// is the rendered target-language text; each word's own Original field
// carries the corresponding source-language text.
type Sentence struct {
	FullTranslation string
	Words           []Word
}

// ParagraphTranslation is one version in a paragraph's translation history.
type ParagraphTranslation struct {
	Timestamp       int64
	PreviousVersion *int // index into Translation.ParagraphTranslations
	Sentences       []Sentence
}

// Translation holds the full version history of every translated paragraph
// of a book, for one source/target language pair.
type Translation struct {
	ID                    uuid.UUID
	SourceLanguage        language.Tag
	TargetLanguage        language.Tag
	ParagraphTranslations []ParagraphTranslation
	// Latest maps a paragraph index to the index, within
	// ParagraphTranslations, of that paragraph's most recent version.
	Latest map[int]int
}

// New creates an empty translation for the given language pair.
func New(source, target language.Tag) *Translation {
	return &Translation{
		ID:             uuid.New(),
		SourceLanguage: source,
		TargetLanguage: target,
		Latest:         make(map[int]int),
	}
}

func fromDTO(dto *translationimport.ParagraphTranslation) []Sentence {
	sentences := make([]Sentence, len(dto.Sentences))
	for i, s := range dto.Sentences {
		words := make([]Word, len(s.Words))
		for j, w := range s.Words {
			cts := make([]string, len(w.ContextualTranslations))
			copy(cts, w.ContextualTranslations)
			words[j] = Word{
				Original:               w.Original,
				ContextualTranslations: cts,
				Note:                   w.Note,
				IsPunctuation:          w.IsPunctuation,
				Grammar: Grammar{
					OriginalInitialForm: w.Grammar.OriginalInitialForm,
					TargetInitialForm:   w.Grammar.TargetInitialForm,
					PartOfSpeech:        w.Grammar.PartOfSpeech,
					Plurality:           w.Grammar.Plurality,
					Person:              w.Grammar.Person,
					Tense:               w.Grammar.Tense,
					Case:                w.Grammar.Case,
					Other:               w.Grammar.Other,
				},
			}
		}
		sentences[i] = Sentence{FullTranslation: s.FullTranslation, Words: words}
	}
	return sentences
}

// AddParagraphTranslation ingests a translator's output for paragraphIndex,
// assigning it timestamp (the core's ingestion-time wall clock, never a
// value supplied by the translator) and linking it as the new latest
// version of that paragraph's history. It returns the new version's index
// within ParagraphTranslations.
func (t *Translation) AddParagraphTranslation(paragraphIndex int, dto *translationimport.ParagraphTranslation, timestamp int64) int {
	return t.addVersion(paragraphIndex, ParagraphTranslation{
		Timestamp: timestamp,
		Sentences: fromDTO(dto),
	})
}

// addVersion appends v as the new latest version of paragraphIndex,
// ignoring any PreviousVersion already set on v and instead linking it to
// whatever this Translation currently considers the latest version of that
// paragraph. This is the single ingestion point both AddParagraphTranslation
// and Merge's chain-replay use, so PreviousVersion links are always
// consistent with the receiver's own history.
func (t *Translation) addVersion(paragraphIndex int, v ParagraphTranslation) int {
	if t.Latest == nil {
		t.Latest = make(map[int]int)
	}
	v.PreviousVersion = nil
	if prev, ok := t.Latest[paragraphIndex]; ok {
		p := prev
		v.PreviousVersion = &p
	}
	t.ParagraphTranslations = append(t.ParagraphTranslations, v)
	idx := len(t.ParagraphTranslations) - 1
	t.Latest[paragraphIndex] = idx
	return idx
}

// chain walks paragraphIndex's history from latest back to its root and
// returns the versions oldest-first.
func (t *Translation) chain(paragraphIndex int) []ParagraphTranslation {
	idx, ok := t.Latest[paragraphIndex]
	if !ok {
		return nil
	}
	var versions []ParagraphTranslation
	for {
		v := t.ParagraphTranslations[idx]
		versions = append(versions, v)
		if v.PreviousVersion == nil {
			break
		}
		idx = *v.PreviousVersion
	}
	// reverse to oldest-first
	for i, j := 0, len(versions)-1; i < j; i, j = i+1, j-1 {
		versions[i], versions[j] = versions[j], versions[i]
	}
	return versions
}

// Merge unions this translation's per-paragraph version chains with
// other's: for every paragraph present in either side, both full
// histories are collected, entries with equal timestamps are deduped in
// favor of the receiver's (self) side, the remaining entries are
// stable-sorted ascending by timestamp, and each is replayed through
// addVersion so the merged chain's PreviousVersion links are rebuilt from
// scratch. The new latest version of each paragraph is the one with the
// maximum timestamp.
func (t *Translation) Merge(other *Translation) *Translation {
	if other == nil {
		return t
	}

	result := &Translation{
		ID:             t.ID,
		SourceLanguage: t.SourceLanguage,
		TargetLanguage: t.TargetLanguage,
		Latest:         make(map[int]int),
	}

	paragraphIndices := make(map[int]struct{})
	for idx := range t.Latest {
		paragraphIndices[idx] = struct{}{}
	}
	for idx := range other.Latest {
		paragraphIndices[idx] = struct{}{}
	}

	ordered := make([]int, 0, len(paragraphIndices))
	for idx := range paragraphIndices {
		ordered = append(ordered, idx)
	}
	sort.Ints(ordered)

	for _, paragraphIndex := range ordered {
		type tagged struct {
			v      ParagraphTranslation
			isSelf bool
		}
		selfChain := t.chain(paragraphIndex)
		otherChain := other.chain(paragraphIndex)

		combined := make([]tagged, 0, len(selfChain)+len(otherChain))
		for _, v := range selfChain {
			combined = append(combined, tagged{v: v, isSelf: true})
		}
		for _, v := range otherChain {
			combined = append(combined, tagged{v: v, isSelf: false})
		}

		sort.SliceStable(combined, func(i, j int) bool {
			return combined[i].v.Timestamp < combined[j].v.Timestamp
		})

		deduped := make([]ParagraphTranslation, 0, len(combined))
		seenTimestamp := make(map[int64]bool)
		for _, c := range combined {
			if seenTimestamp[c.v.Timestamp] {
				continue
			}
			seenTimestamp[c.v.Timestamp] = true
			deduped = append(deduped, c.v)
		}

		for _, v := range deduped {
			result.addVersion(paragraphIndex, v)
		}
	}

	return result
}
