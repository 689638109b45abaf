package main

import "time"

// Metadata is what the extraction step reports about a video, plus the
// derived list of selectable resolutions. Fetched fresh per URL and cached
// briefly so a follow-up download request can be validated against it.
type Metadata struct {
	Title       string             `json:"title"`
	Uploader    string             `json:"uploader"`
	Duration    float64            `json:"duration"`
	ViewCount   int64              `json:"view_count"`
	Thumbnail   string             `json:"thumbnail"`
	Formats     []FormatDescriptor `json:"formats"`
	Resolutions []int              `json:"resolutions"`
	FetchedAt   time.Time          `json:"fetched_at"`
}

// FormatDescriptor is one available stream as reported by yt-dlp.
type FormatDescriptor struct {
	FormatID string `json:"format_id"`
	Ext      string `json:"ext"`
	HasVideo bool   `json:"has_video"`
	HasAudio bool   `json:"has_audio"`
	Height   int    `json:"height,omitempty"`
}

type JobKind string

const (
	KindVideo  JobKind = "video"  // URL -> merged MP4 at a resolution ceiling
	KindAudio  JobKind = "audio"  // URL -> bestaudio -> MP3 192k
	KindUpload JobKind = "upload" // uploaded file -> MP3 192k
)

type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job is one user request moving through the pipeline. Exactly one flow
// owns it and the staged files it references; jobs are never shared.
type Job struct {
	ID     string  `json:"id"`
	Kind   JobKind `json:"kind"`
	URL    string  `json:"url,omitempty"`
	Height int     `json:"height,omitempty"`

	UploadName string `json:"upload_name,omitempty"`
	UploadPath string `json:"upload_path,omitempty"`

	Status      JobStatus `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	FilePath     string    `json:"file_path"`
	DownloadName string    `json:"download_name"`
	DownloadURL  string    `json:"download_url"`
	Error        string    `json:"error"`
	Metadata     *Metadata `json:"metadata,omitempty"`
}

type jobRequest struct {
	URL    string `json:"url"`
	Height int    `json:"height,omitempty"`
}

type HealthStatus struct {
	Status        string `json:"status"`
	ActiveJobs    int64  `json:"active_jobs"`
	QueuedJobs    int64  `json:"queued_jobs"`
	CompletedJobs int64  `json:"completed_jobs"`
	FailedJobs    int64  `json:"failed_jobs"`
	Workers       int    `json:"workers"`
	Uptime        string `json:"uptime"`
	MemoryUsage   string `json:"memory_usage"`
}
