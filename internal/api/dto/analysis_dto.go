package dto

// UploadResponse acknowledges an accepted upload.
type UploadResponse struct {
	TaskID string `json:"task_id"`
}

// StatusResponse reports job progress. DownloadURL and ExpiresIn are present
// only while the job is completed and its result still fetchable.
type StatusResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	ExpiresIn   *int   `json:"expires_in,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
