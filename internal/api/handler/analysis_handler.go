package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/voicenoteslab/voicenotes-be/internal/api/dto"
	"github.com/voicenoteslab/voicenotes-be/internal/jobs"
)

// Upload handles POST /upload
// Accepts the audio file, validates it and submits a background job.
func (h *AnalysisHandler) Upload(c *gin.Context) {
	if !h.ready {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Detail: "Server configuration error: provider APIs are not initialized.",
		})
		return
	}

	fileHeader, err := c.FormFile("audio_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: "No audio file uploaded."})
		return
	}
	if fileHeader.Filename == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: "Empty filename."})
		return
	}

	if !h.allowedFile(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Detail: "File type not allowed (use " + strings.Join(h.uploads.AllowedExtensions, " or ") + ").",
		})
		return
	}

	if fileHeader.Size > h.uploads.MaxSizeBytes {
		c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{
			Detail: fmt.Sprintf("File exceeds the %dMB limit.", h.uploads.MaxSizeBytes/(1024*1024)),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("failed to open upload", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Detail: "Internal error while processing the upload."})
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, h.uploads.MaxSizeBytes+1))
	if err != nil {
		h.logger.Error("failed to read upload", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Detail: "Internal error while processing the upload."})
		return
	}
	if int64(len(audio)) > h.uploads.MaxSizeBytes {
		c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{
			Detail: fmt.Sprintf("File exceeds the %dMB limit.", h.uploads.MaxSizeBytes/(1024*1024)),
		})
		return
	}

	taskID, err := h.service.Submit(jobs.UploadPayload{
		Audio:    audio,
		Filename: filepath.Base(fileHeader.Filename),
	})
	if err != nil {
		h.logger.Error("failed to submit job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Detail: "Internal error while processing the upload."})
		return
	}

	c.JSON(http.StatusAccepted, dto.UploadResponse{TaskID: taskID})
}

// Status handles GET /status/:task_id
func (h *AnalysisHandler) Status(c *gin.Context) {
	taskID := c.Param("task_id")

	// Malformed IDs get the same answer as expired ones; the caller never
	// learns whether the task ever existed.
	if _, err := uuid.Parse(taskID); err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Detail: "Task not found or expired."})
		return
	}

	view, ok := h.service.Status(taskID)
	if !ok {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Detail: "Task not found or expired."})
		return
	}

	resp := dto.StatusResponse{
		Status:  string(view.Status),
		Message: view.Message,
		Error:   view.Error,
	}
	if view.ResultID != "" {
		resp.DownloadURL = "/download/" + view.ResultID
		expiresIn := view.ExpiresIn
		resp.ExpiresIn = &expiresIn
	}

	c.JSON(http.StatusOK, resp)
}

// Download handles GET /download/:result_id
// Serves the Markdown report as an attachment.
func (h *AnalysisHandler) Download(c *gin.Context) {
	resultID := c.Param("result_id")

	if _, err := uuid.Parse(resultID); err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Detail: "Result not found or expired."})
		return
	}

	result, ok := h.service.Fetch(resultID)
	if !ok {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Detail: "Result not found or expired."})
		return
	}

	h.logger.Info("serving download",
		slog.String("result_id", resultID),
		slog.String("filename", result.Filename),
	)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(result.Content))
}

// allowedFile checks the upload's extension against the allowlist.
func (h *AnalysisHandler) allowedFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range h.uploads.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
