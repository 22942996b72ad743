// Package pipeline holds the two external processing stages a job runs
// through: speech-to-text and transcript analysis. Both are narrow
// interfaces; everything behind them is a provider call with its own
// failure modes.
package pipeline

import (
	"context"
	"fmt"
)

// Transcriber converts an uploaded audio file to plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// Analyzer turns a transcript into a long-form Markdown report.
type Analyzer interface {
	Analyze(ctx context.Context, transcript string) (string, error)
}

// ConfigError reports a required credential or setting that was absent
// before any provider call was attempted. Not retryable without operator
// intervention.
type ConfigError struct {
	Provider string
	Setting  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s API key is not configured (%s)", e.Provider, e.Setting)
}

// ProviderError carries the detail a provider returned for a rejected or
// failed call.
type ProviderError struct {
	Provider   string
	StatusCode int
	Detail     string
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Detail)
}
