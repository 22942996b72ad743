package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/voicenoteslab/voicenotes-be/internal/pipeline"
)

const reportDisclaimer = "*This analysis was generated by AI and is intended for reflection. It is not a substitute for professional advice.*"

// Executor runs one submitted job to completion: transcription, analysis,
// artifact assembly, result cache fill. Each invocation owns exactly one job
// and shares nothing with concurrent invocations except the two stores.
type Executor struct {
	jobs        *Store
	results     *ResultCache
	transcriber pipeline.Transcriber
	analyzer    pipeline.Analyzer
	logger      *slog.Logger
}

// NewExecutor creates an executor over the given stores and pipeline stages.
func NewExecutor(
	jobs *Store,
	results *ResultCache,
	transcriber pipeline.Transcriber,
	analyzer pipeline.Analyzer,
	logger *slog.Logger,
) *Executor {
	return &Executor{
		jobs:        jobs,
		results:     results,
		transcriber: transcriber,
		analyzer:    analyzer,
		logger:      logger,
	}
}

// Run drives the job through the two-stage pipeline. Every failure path ends
// in a terminal failed transition; nothing escapes the calling goroutine.
// External stage calls happen outside any store lock, so a slow provider
// never stalls status queries.
func (e *Executor) Run(ctx context.Context, jobID string, audio []byte, filename string) {
	defer func() {
		if p := recover(); p != nil {
			e.logger.Error("executor panicked",
				slog.String("job_id", jobID),
				slog.Any("panic", p),
			)
			e.jobs.Transition(jobID, Transition{
				Status: StatusFailed,
				Error:  fmt.Sprintf("Processing error: %v", p),
			})
		}
	}()

	start := time.Now()
	e.jobs.Transition(jobID, Transition{
		Status:  StatusProcessing,
		Message: "Starting transcription...",
	})

	transcript, err := e.transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		e.fail(jobID, "Transcription", err)
		return
	}
	e.logger.Info("transcription finished",
		slog.String("job_id", jobID),
		slog.Duration("took", time.Since(start)),
	)

	e.jobs.Transition(jobID, Transition{
		Status:  StatusProcessing,
		Message: fmt.Sprintf("Transcription complete (%d characters). Analyzing text...", len(transcript)),
	})

	analysis, err := e.analyzer.Analyze(ctx, transcript)
	if err != nil {
		e.fail(jobID, "Analysis", err)
		return
	}

	e.jobs.Transition(jobID, Transition{
		Status:  StatusProcessing,
		Message: "Generating final report...",
	})

	content := analysis + "\n\n" + reportDisclaimer
	e.results.Put(jobID, content, reportFilename(filename))

	e.jobs.Transition(jobID, Transition{
		Status:   StatusCompleted,
		Message:  "Processing complete!",
		ResultID: jobID,
	})
	e.logger.Info("job finished",
		slog.String("job_id", jobID),
		slog.Duration("took", time.Since(start)),
	)
}

// fail records a terminal failure carrying the stage's error detail.
// Configuration errors are labelled as such; provider errors keep the
// provider-supplied detail verbatim.
func (e *Executor) fail(jobID, stage string, err error) {
	detail := fmt.Sprintf("%s failed: %v", stage, err)
	var cfgErr *pipeline.ConfigError
	if errors.As(err, &cfgErr) {
		detail = fmt.Sprintf("Configuration error: %v", err)
	}

	e.logger.Error("job failed",
		slog.String("job_id", jobID),
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
	e.jobs.Transition(jobID, Transition{
		Status: StatusFailed,
		Error:  detail,
	})
}

// reportFilename derives the download filename from the uploaded audio
// name, keeping only characters safe in a Content-Disposition header.
func reportFilename(uploadName string) string {
	base := strings.TrimSuffix(filepath.Base(uploadName), filepath.Ext(uploadName))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		b.WriteString("voice_note")
	}
	return "analysis_" + b.String() + ".md"
}
