package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tsultanov/flts/internal/translationimport"
)

// OpenAIConfig configures OpenAITranslator.
type OpenAIConfig struct {
	APIKey     string
	Model      string // e.g. "gpt-4o-mini"
	Source     string // BCP-47 source language tag
	Target     string // BCP-47 target language tag
	Timeout    time.Duration
	MaxRetries int
}

// OpenAITranslator implements Translator by prompting an OpenAI chat model
// for a structured translationimport.ParagraphTranslation payload and
// validating it against paragraphTranslationSchema before decoding it.
//
// Prompt wording and provider polymorphism are deliberately out of scope;
// this adapter exists to exercise the single-method Translator capability
// surface end to end.
type OpenAITranslator struct {
	client         openai.Client
	model          string
	source, target string
	schema         *jsonschema.Schema
}

// NewOpenAITranslator constructs an OpenAITranslator, compiling the
// structured-output schema once up front.
func NewOpenAITranslator(cfg OpenAIConfig) (*OpenAITranslator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("translator: openai: %w", ErrTranslatorUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("paragraph_translation.json", bytes.NewReader(paragraphTranslationSchema)); err != nil {
		return nil, fmt.Errorf("translator: compile schema: %w", err)
	}
	schema, err := compiler.Compile("paragraph_translation.json")
	if err != nil {
		return nil, fmt.Errorf("translator: compile schema: %w", err)
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(cfg.MaxRetries),
	)

	return &OpenAITranslator{
		client: client,
		model:  cfg.Model,
		source: cfg.Source,
		target: cfg.Target,
		schema: schema,
	}, nil
}

// Translate implements Translator.
func (t *OpenAITranslator) Translate(ctx context.Context, paragraph string) (*translationimport.ParagraphTranslation, error) {
	prompt := fmt.Sprintf(
		"Translate the following %s paragraph to %s. Return ONLY JSON matching the schema: %s\n\nParagraph:\n%s",
		t.source, t.target, string(paragraphTranslationSchema), paragraph,
	)

	resp, err := t.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(t.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("translator: openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("translator: openai returned no choices")
	}

	content := resp.Choices[0].Message.Content

	var doc any
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("translator: decode structured output: %w", err)
	}
	if err := t.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("translator: structured output failed validation: %w", err)
	}

	var dto translationimport.ParagraphTranslation
	if err := json.Unmarshal([]byte(content), &dto); err != nil {
		return nil, fmt.Errorf("translator: decode paragraph translation: %w", err)
	}
	return &dto, nil
}

var _ Translator = (*OpenAITranslator)(nil)
