package translator

import (
	"context"
	"errors"
	"testing"
)

func TestNullTranslatorUnavailable(t *testing.T) {
	var tr Translator = NullTranslator{}
	_, err := tr.Translate(context.Background(), "hello")
	if !errors.Is(err, ErrTranslatorUnavailable) {
		t.Fatalf("expected ErrTranslatorUnavailable, got %v", err)
	}
}

func TestNewOpenAITranslatorRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAITranslator(OpenAIConfig{})
	if !errors.Is(err, ErrTranslatorUnavailable) {
		t.Fatalf("expected ErrTranslatorUnavailable, got %v", err)
	}
}
