package main

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

func startWorker(workerID int) {
	log.Printf("Worker %d started", workerID)
	for job := range jobQueue {
		processJob(job, workerID)
	}
}

func processJob(job *Job, workerID int) {
	atomic.AddInt64(&activeJobs, 1)
	atomic.AddInt64(&queuedJobs, -1)
	defer atomic.AddInt64(&activeJobs, -1)

	log.Printf("Worker %d: Processing %s job %s", workerID, job.Kind, job.ID)

	jobStore.Lock()
	job.Status = StatusProcessing
	job.Error = ""
	job.StartedAt = time.Now()
	jobStore.Unlock()
	saveJobToRedis(job)

	var err error
	switch job.Kind {
	case KindVideo:
		err = runVideoJob(job)
	case KindAudio:
		err = runAudioJob(job)
	case KindUpload:
		err = runUploadJob(job)
	default:
		err = validationErrorf("unknown job kind %q", job.Kind)
	}

	if err != nil {
		failJob(job, err)
		return
	}

	jobStore.Lock()
	job.Status = StatusCompleted
	job.CompletedAt = time.Now()
	job.Error = ""
	job.DownloadURL = fmt.Sprintf("%s/api/download/%s", cfg.PublicBaseURL, job.ID)
	jobStore.jobs[job.ID] = job
	jobStore.Unlock()
	saveJobToRedis(job)

	atomic.AddInt64(&completedJobs, 1)
	atomic.AddInt64(&processingNanos, int64(job.CompletedAt.Sub(job.StartedAt)))

	notifyJobCompletion(job)
	log.Printf("Worker %d: Job %s completed. Download: %s", workerID, job.ID, job.DownloadURL)
}

// runVideoJob fetches the best video+audio pair at or below the requested
// height and merges it into an MP4. The ceiling is re-checked against the
// offered resolutions before any download starts.
func runVideoJob(job *Job) error {
	meta, err := metadataFor(job.URL)
	if err != nil {
		return err
	}
	if !containsInt(meta.Resolutions, job.Height) {
		return validationErrorf("resolution %dp is not offered for this video", job.Height)
	}
	jobStore.Lock()
	job.Metadata = meta
	jobStore.Unlock()

	out, err := stageFile(".mp4")
	if err != nil {
		return err
	}
	defer out.Cleanup()

	if err := downloadVideo(ctx, job.URL, job.Height, out.Path()); err != nil {
		return err
	}

	jobStore.Lock()
	job.FilePath = out.Release()
	job.DownloadName = sanitizeFilename(meta.Title) + ".mp4"
	jobStore.Unlock()
	return nil
}

// runAudioJob downloads the best audio-only stream, then transcodes it to
// a 192 kbps MP3. The intermediate download is removed on every exit path.
func runAudioJob(job *Job) error {
	meta, err := metadataFor(job.URL)
	if err != nil {
		return err
	}
	jobStore.Lock()
	job.Metadata = meta
	jobStore.Unlock()

	intermediate, err := stageFile(".m4a")
	if err != nil {
		return err
	}
	defer intermediate.Cleanup()

	if err := downloadBestAudio(ctx, job.URL, intermediate.Path()); err != nil {
		return err
	}

	out, err := stageFile(".mp3")
	if err != nil {
		return err
	}
	defer out.Cleanup()

	if err := transcodeToMP3(ctx, intermediate.Path(), out.Path()); err != nil {
		return err
	}

	jobStore.Lock()
	job.FilePath = out.Release()
	job.DownloadName = sanitizeFilename(meta.Title) + ".mp3"
	jobStore.Unlock()
	return nil
}

// runUploadJob transcodes a staged upload to MP3. The upload was written
// by the handler; the worker takes over its cleanup.
func runUploadJob(job *Job) error {
	src := adoptFile(job.UploadPath)
	defer src.Cleanup()

	out, err := stageFile(".mp3")
	if err != nil {
		return err
	}
	defer out.Cleanup()

	if err := transcodeToMP3(ctx, src.Path(), out.Path()); err != nil {
		return err
	}

	base := strings.TrimSuffix(job.UploadName, filepath.Ext(job.UploadName))
	jobStore.Lock()
	job.UploadPath = "" // consumed
	job.FilePath = out.Release()
	job.DownloadName = sanitizeFilename(base) + ".mp3"
	jobStore.Unlock()
	return nil
}

// metadataFor returns cached metadata for the URL or fetches it fresh.
func metadataFor(url string) (*Metadata, error) {
	if meta := cachedMetadata(url); meta != nil {
		return meta, nil
	}
	meta, err := fetchVideoInfo(ctx, url)
	if err != nil {
		return nil, err
	}
	cacheMetadata(url, meta)
	return meta, nil
}
