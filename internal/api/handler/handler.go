package handler

import (
	"log/slog"

	"github.com/voicenoteslab/voicenotes-be/internal/config"
	"github.com/voicenoteslab/voicenotes-be/internal/jobs"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger  *slog.Logger
	Service *jobs.Service
	Uploads config.UploadsConfig

	// ProvidersReady gates uploads: false when either external stage is
	// missing its credential, so submissions fail fast with a 503 instead
	// of queueing jobs that can only fail.
	ProvidersReady bool
}

// AnalysisHandler handles the upload/status/download HTTP surface.
type AnalysisHandler struct {
	logger  *slog.Logger
	service *jobs.Service
	uploads config.UploadsConfig
	ready   bool
}

// NewAnalysisHandler creates a new AnalysisHandler instance
func NewAnalysisHandler(deps *Dependencies) *AnalysisHandler {
	return &AnalysisHandler{
		logger:  deps.Logger,
		service: deps.Service,
		uploads: deps.Uploads,
		ready:   deps.ProvidersReady,
	}
}
