// Package translator defines the Translator capability the core uses to
// turn a single source-language paragraph into a translationimport.ParagraphTranslation,
// plus a concrete OpenAI-backed adapter and a no-op stand-in.
package translator

import (
	"context"
	"errors"

	"github.com/tsultanov/flts/internal/translationimport"
)

// ErrTranslatorUnavailable is returned by NullTranslator, and by any
// adapter invoked without the configuration it needs.
var ErrTranslatorUnavailable = errors.New("translator: no translator configured")

// Translator turns one paragraph of source text into a structured
// translation. Prompt content and provider selection are adapter
// concerns; this interface only describes the capability the core needs.
type Translator interface {
	Translate(ctx context.Context, paragraph string) (*translationimport.ParagraphTranslation, error)
}

// NullTranslator always fails with ErrTranslatorUnavailable. The CLI uses it
// when no translator provider is configured, so no API key is required.
type NullTranslator struct{}

// Translate implements Translator.
func (NullTranslator) Translate(ctx context.Context, paragraph string) (*translationimport.ParagraphTranslation, error) {
	return nil, ErrTranslatorUnavailable
}

var _ Translator = NullTranslator{}
