package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	providerGemini     = "Google Gemini"
	defaultGeminiModel = "gemini-1.5-flash"
)

// GeminiAnalyzer produces the reflective Markdown report through the Google
// Gemini API.
type GeminiAnalyzer struct {
	apiKey string
	model  string
	logger *slog.Logger
}

// GeminiOptions configures the analyzer. Model defaults to gemini-1.5-flash.
type GeminiOptions struct {
	APIKey string
	Model  string
	Logger *slog.Logger
}

// NewGeminiAnalyzer creates the adapter. As with the transcriber, a missing
// key surfaces as a ConfigError at call time.
func NewGeminiAnalyzer(opts GeminiOptions) *GeminiAnalyzer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	model := opts.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiAnalyzer{apiKey: opts.APIKey, model: model, logger: logger}
}

// Configured reports whether a credential was provided.
func (a *GeminiAnalyzer) Configured() bool {
	return a.apiKey != ""
}

// Analyze asks Gemini for the structured report over the transcript.
func (a *GeminiAnalyzer) Analyze(ctx context.Context, transcript string) (string, error) {
	if a.apiKey == "" {
		return "", &ConfigError{Provider: providerGemini, Setting: "GOOGLE_API_KEY"}
	}

	a.logger.Info("starting gemini analysis", slog.Int("transcript_chars", len(transcript)))

	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", &ProviderError{Provider: providerGemini, Detail: err.Error()}
	}
	defer client.Close()

	model := client.GenerativeModel(a.model)
	resp, err := model.GenerateContent(ctx, genai.Text(analysisPrompt(transcript)))
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return "", &ProviderError{
				Provider:   providerGemini,
				StatusCode: apiErr.Code,
				Detail:     apiErr.Message,
			}
		}
		return "", &ProviderError{Provider: providerGemini, Detail: err.Error()}
	}

	text := collectText(resp)
	if text == "" {
		return "", &ProviderError{Provider: providerGemini, Detail: "empty response"}
	}
	return text, nil
}

// collectText flattens the text parts of the first candidate.
func collectText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		break
	}
	return b.String()
}
