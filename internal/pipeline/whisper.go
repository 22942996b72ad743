package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

const providerOpenAI = "OpenAI"

// WhisperTranscriber transcribes audio through the OpenAI Whisper API.
type WhisperTranscriber struct {
	client *openai.Client
	logger *slog.Logger
}

// WhisperOptions configures the transcriber. BaseURL overrides the API
// endpoint, which tests use to point at a local server.
type WhisperOptions struct {
	APIKey  string
	BaseURL string
	Logger  *slog.Logger
}

// NewWhisperTranscriber creates the adapter. An empty API key is allowed;
// the missing credential is reported as a ConfigError on the first call, so
// a misconfigured server still starts and fails jobs with a clear detail.
func NewWhisperTranscriber(opts WhisperOptions) *WhisperTranscriber {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var client *openai.Client
	if opts.APIKey != "" {
		cfg := openai.DefaultConfig(opts.APIKey)
		if opts.BaseURL != "" {
			cfg.BaseURL = opts.BaseURL
		}
		client = openai.NewClientWithConfig(cfg)
	}
	return &WhisperTranscriber{client: client, logger: logger}
}

// Configured reports whether a credential was provided.
func (t *WhisperTranscriber) Configured() bool {
	return t.client != nil
}

// Transcribe sends the audio to Whisper and returns the plain-text
// transcript. The filename matters: the API derives the container format
// from its extension.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if t.client == nil {
		return "", &ConfigError{Provider: providerOpenAI, Setting: "OPENAI_API_KEY"}
	}

	t.logger.Info("starting whisper transcription", slog.String("filename", filename))

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   bytes.NewReader(audio),
		FilePath: filename,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &ProviderError{
				Provider:   providerOpenAI,
				StatusCode: apiErr.HTTPStatusCode,
				Detail:     apiErr.Message,
			}
		}
		return "", &ProviderError{Provider: providerOpenAI, Detail: err.Error()}
	}

	return resp.Text, nil
}
