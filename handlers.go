package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP codes. The message reaches
// the user verbatim.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var ve *ValidationError
	var xe *ExtractionError
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
	case errors.As(err, &xe):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// preflight answers OPTIONS and enforces the method, returning false when
// the request has been fully handled.
func preflight(w http.ResponseWriter, r *http.Request, method string) bool {
	enableCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return false
	}
	if r.Method != method {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func decodeJobRequest(w http.ResponseWriter, r *http.Request) (*jobRequest, bool) {
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, validationErrorf("invalid JSON body"))
		return nil, false
	}
	if req.URL == "" {
		writeError(w, validationErrorf("missing video URL"))
		return nil, false
	}
	return &req, true
}

// handleMetadata fetches title, uploader, duration, view count, thumbnail
// and the selectable resolutions for a URL. POST /api/metadata.
func handleMetadata(w http.ResponseWriter, r *http.Request) {
	if !preflight(w, r, http.MethodPost) {
		return
	}
	req, ok := decodeJobRequest(w, r)
	if !ok {
		return
	}
	meta, err := metadataFor(req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// handleVideo enqueues a video download. The resolution ceiling must be
// one of the values offered by the metadata fetch; anything else is
// rejected before a download starts. POST /api/video.
func handleVideo(w http.ResponseWriter, r *http.Request) {
	if !preflight(w, r, http.MethodPost) {
		return
	}
	req, ok := decodeJobRequest(w, r)
	if !ok {
		return
	}
	if req.Height <= 0 {
		writeError(w, validationErrorf("missing or invalid resolution"))
		return
	}

	meta, err := metadataFor(req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(meta.Resolutions) == 0 {
		writeError(w, validationErrorf("no video formats available for this URL"))
		return
	}
	if !containsInt(meta.Resolutions, req.Height) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":       fmt.Sprintf("resolution %dp is not offered for this video", req.Height),
			"resolutions": meta.Resolutions,
		})
		return
	}

	enqueueJob(w, &Job{Kind: KindVideo, URL: req.URL, Height: req.Height})
}

// handleAudio enqueues a URL-to-MP3 extraction. POST /api/audio.
func handleAudio(w http.ResponseWriter, r *http.Request) {
	if !preflight(w, r, http.MethodPost) {
		return
	}
	req, ok := decodeJobRequest(w, r)
	if !ok {
		return
	}
	enqueueJob(w, &Job{Kind: KindAudio, URL: req.URL})
}

// handleUpload stages an uploaded video and enqueues its MP3 extraction.
// The extension allow-list and the container signature are both checked
// before any temp file is written. POST /api/upload, multipart field "file".
func handleUpload(w http.ResponseWriter, r *http.Request) {
	if !preflight(w, r, http.MethodPost) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, cfg.maxUploadBytes())

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, validationErrorf("missing or unreadable file upload: %v", err))
		return
	}
	defer file.Close()

	ext, err := validateUploadName(header.Filename)
	if err != nil {
		writeError(w, err)
		return
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		writeError(w, &FilesystemError{Err: err})
		return
	}
	if err := sniffUploadHeader(head[:n]); err != nil {
		writeError(w, err)
		return
	}

	stage, err := stageFile(ext)
	if err != nil {
		writeError(w, err)
		return
	}
	dst, err := os.Create(stage.Path())
	if err != nil {
		writeError(w, &FilesystemError{Err: err})
		return
	}
	_, werr := dst.Write(head[:n])
	if werr == nil {
		_, werr = io.Copy(dst, file)
	}
	if cerr := dst.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		stage.Cleanup()
		writeError(w, &FilesystemError{Err: werr})
		return
	}

	enqueueJob(w, &Job{
		Kind:       KindUpload,
		UploadName: header.Filename,
		UploadPath: stage.Release(),
	})
}

// enqueueJob stores the job and hands it to the worker pool, waiting
// briefly so quick jobs complete within the request.
func enqueueJob(w http.ResponseWriter, job *Job) {
	job.ID = uuid.New().String()
	job.Status = StatusPending
	job.CreatedAt = time.Now()

	putJob(job)
	atomic.AddInt64(&queuedJobs, 1)

	resultCh := registerJobWaiter(job.ID)

	select {
	case jobQueue <- job:
	default:
		unregisterJobWaiter(job.ID, resultCh)
		removeJob(job)
		atomic.AddInt64(&queuedJobs, -1)
		http.Error(w, "Server busy, please try again later.", http.StatusServiceUnavailable)
		return
	}

	select {
	case done := <-resultCh:
		writeJobResponse(w, done)
	case <-time.After(cfg.fastPathWait()):
		unregisterJobWaiter(job.ID, resultCh)
		writeJobResponse(w, snapshotJob(job))
	}
}

func writeJobResponse(w http.ResponseWriter, job *Job) {
	resp := map[string]any{
		"job_id":                job.ID,
		"kind":                  job.Kind,
		"status":                job.Status,
		"check_status_endpoint": statusEndpoint(job.ID),
	}
	if job.DownloadURL != "" {
		resp["download_url"] = job.DownloadURL
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStatus reports the job state machine projection. GET /api/status/{id}.
func handleStatus(w http.ResponseWriter, r *http.Request) {
	if !preflight(w, r, http.MethodGet) {
		return
	}
	jobID := filepath.Base(r.URL.Path)
	if jobID == "" || jobID == "status" {
		writeError(w, validationErrorf("missing job ID"))
		return
	}
	job := getJob(jobID)
	if job == nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	response := struct {
		JobID       string    `json:"job_id"`
		Kind        JobKind   `json:"kind"`
		Status      JobStatus `json:"status"`
		DownloadURL string    `json:"download_url,omitempty"`
		Error       string    `json:"error,omitempty"`
		Metadata    *Metadata `json:"metadata,omitempty"`
		CreatedAt   time.Time `json:"created_at"`
		CompletedAt time.Time `json:"completed_at,omitzero"`
	}{
		JobID:       job.ID,
		Kind:        job.Kind,
		Status:      job.Status,
		DownloadURL: job.DownloadURL,
		Error:       job.Error,
		Metadata:    job.Metadata,
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
	}
	writeJSON(w, http.StatusOK, response)
}

// handleDownload serves a completed job's file exactly once: after the
// body has been fully written the file and the job are removed. A retrieval
// that fails mid-transfer keeps the job so the user can retry.
// GET /api/download/{id}.
func handleDownload(w http.ResponseWriter, r *http.Request) {
	if !preflight(w, r, http.MethodGet) {
		return
	}

	jobID := filepath.Base(r.URL.Path)
	job := getJob(jobID)
	if job == nil || job.Status != StatusCompleted {
		http.Error(w, "File not found or conversion not completed", http.StatusNotFound)
		return
	}
	if job.FilePath == "" {
		http.Error(w, "File path not available", http.StatusInternalServerError)
		return
	}

	file, err := os.Open(job.FilePath)
	if err != nil {
		http.Error(w, "Error opening file", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	name := job.DownloadName
	if name == "" {
		name = jobID + filepath.Ext(job.FilePath)
	}
	w.Header().Set("Content-Type", contentTypeForSuffix(filepath.Ext(job.FilePath)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	if _, err := io.Copy(w, file); err != nil {
		log.Printf("Download of job %s aborted: %v", jobID, err)
		return
	}

	removeJob(job)
	log.Printf("Job %s retrieved and cleaned up (%s)", jobID, name)
}

// handleDelete discards a job and any staged file. DELETE /api/jobs/{id}.
func handleDelete(w http.ResponseWriter, r *http.Request) {
	if !preflight(w, r, http.MethodDelete) {
		return
	}
	jobID := filepath.Base(r.URL.Path)
	if jobID == "" || jobID == "jobs" {
		writeError(w, validationErrorf("missing job ID"))
		return
	}
	job := getJob(jobID)
	if job == nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	removeJob(job)
	writeJSON(w, http.StatusOK, map[string]string{"deleted": jobID})
}

func contentTypeForSuffix(suffix string) string {
	switch suffix {
	case ".mp3":
		return "audio/mpeg"
	case ".mp4":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}
