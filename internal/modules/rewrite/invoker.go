package rewrite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
	jetopenai "go.jetify.com/ai/provider/openai"
	"google.golang.org/genai"
)

// Supported provider tags, one fixed model each.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

const invokeMaxOutputTokens = 4000

var providerModels = map[string]string{
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-haiku-4-5-20251001",
	ProviderGemini:    "gemini-2.0-flash",
}

// ErrorKind tags upstream failures so retry logic can switch on a type
// instead of re-parsing error text.
type ErrorKind int

const (
	ErrKindRateLimited ErrorKind = iota
	ErrKindAuthFailed
	ErrKindTransient
	ErrKindFatal
)

// ProviderError wraps a backend failure with its classification. The
// original message is preserved for diagnostics.
type ProviderError struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err carries a rate-limit classification.
func IsRateLimited(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Kind == ErrKindRateLimited
}

// classifyProviderError is the only place error-message sniffing is
// allowed; everything downstream switches on Kind.
func classifyProviderError(provider string, err error) *ProviderError {
	msg := strings.ToLower(err.Error())
	kind := ErrKindFatal
	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "429") || strings.Contains(msg, "rate"):
		kind = ErrKindRateLimited
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "authentication"):
		kind = ErrKindAuthFailed
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "connection") ||
		strings.Contains(msg, "unavailable") || strings.Contains(msg, "503"):
		kind = ErrKindTransient
	}
	return &ProviderError{Kind: kind, Provider: provider, Err: err}
}

// Invoker performs a single model call for a provider/credential pair.
// It never retries internally; retry policy lives in callWithRotation.
type Invoker interface {
	Invoke(ctx context.Context, provider, credential, systemPrompt, userPrompt string) (string, Usage, error)
}

type modelInvoker struct{}

// NewInvoker returns the production Invoker backed by the real SDKs.
func NewInvoker() Invoker { return modelInvoker{} }

// ModelFor returns the fixed model identifier for a provider tag.
func ModelFor(provider string) (string, bool) {
	m, ok := providerModels[normalizeProvider(provider)]
	return m, ok
}

func normalizeProvider(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func (modelInvoker) Invoke(ctx context.Context, provider, credential, systemPrompt, userPrompt string) (string, Usage, error) {
	p := normalizeProvider(provider)
	model, ok := providerModels[p]
	if !ok {
		return "", Usage{}, fmt.Errorf("unsupported provider: %s", provider)
	}
	if strings.TrimSpace(credential) == "" {
		return "", Usage{}, errors.New("credential is empty")
	}

	var (
		text string
		u    Usage
		err  error
	)
	switch p {
	case ProviderGemini:
		text, u, err = invokeGemini(ctx, model, credential, systemPrompt, userPrompt)
	default:
		text, u, err = invokeLanguageModel(ctx, p, model, credential, systemPrompt, userPrompt)
	}
	if err != nil {
		return "", u, classifyProviderError(p, err)
	}
	if u.InputTokens == 0 {
		u.InputTokens = estimateTokens(systemPrompt) + estimateTokens(userPrompt)
	}
	if u.OutputTokens == 0 {
		u.OutputTokens = estimateTokens(text)
	}
	return text, u, nil
}

// invokeLanguageModel handles openai and anthropic through the uniform
// LanguageModel layer. SDK-internal retries are disabled so the retry
// budget stays with the caller.
func invokeLanguageModel(ctx context.Context, provider, modelID, apiKey, systemPrompt, userPrompt string) (string, Usage, error) {
	var model jetapi.LanguageModel
	switch provider {
	case ProviderAnthropic:
		client := anthropicclient.NewClient(
			anthropicoption.WithAPIKey(apiKey),
			anthropicoption.WithMaxRetries(0),
		)
		model = jetanthropic.NewLanguageModel(modelID, jetanthropic.WithClient(client))
	default:
		client := openaiclient.NewClient(
			openaioption.WithAPIKey(apiKey),
			openaioption.WithMaxRetries(0),
		)
		model = jetopenai.NewLanguageModel(modelID, jetopenai.WithClient(client))
	}

	resp, err := jetai.GenerateText(
		ctx,
		buildPromptMessages(systemPrompt, userPrompt),
		jetai.WithModel(model),
		jetai.WithMaxOutputTokens(invokeMaxOutputTokens),
	)
	if err != nil {
		return "", Usage{}, err
	}

	text, err := extractResponseText(resp)
	if err != nil {
		return "", Usage{}, err
	}
	// The uniform layer does not surface token counts; the caller falls
	// back to a length-based estimate.
	return text, Usage{}, nil
}

func invokeGemini(ctx context.Context, modelID, apiKey, systemPrompt, userPrompt string) (string, Usage, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", Usage{}, err
	}

	cfg := &genai.GenerateContentConfig{}
	if strings.TrimSpace(systemPrompt) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	resp, err := client.Models.GenerateContent(ctx, modelID, genai.Text(userPrompt), cfg)
	if err != nil {
		return "", Usage{}, err
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", Usage{}, errors.New("empty response from model")
	}

	var u Usage
	if resp.UsageMetadata != nil {
		u.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		u.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return text, u, nil
}

func buildPromptMessages(systemPrompt, prompt string) []jetapi.Message {
	messages := make([]jetapi.Message, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, &jetapi.SystemMessage{Content: systemPrompt})
	}
	messages = append(messages, &jetapi.UserMessage{Content: jetapi.ContentFromText(prompt)})
	return messages
}

func extractResponseText(resp *jetapi.Response) (string, error) {
	if resp == nil {
		return "", errors.New("empty response from model")
	}

	var full strings.Builder
	for _, block := range resp.Content {
		textBlock, ok := block.(*jetapi.TextBlock)
		if !ok || textBlock.Text == "" {
			continue
		}
		full.WriteString(textBlock.Text)
	}

	text := full.String()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}

// estimateTokens approximates token usage as text length over four,
// used when the backend does not report counts.
func estimateTokens(s string) int {
	return len(s) / 4
}
