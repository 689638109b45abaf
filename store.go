package main

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"
)

func putJob(job *Job) {
	jobStore.Lock()
	jobStore.jobs[job.ID] = job
	jobStore.Unlock()
	saveJobToRedis(job)
}

// getJob returns a copy of the job so handlers never read fields the
// owning worker is still mutating.
func getJob(jobID string) *Job {
	jobStore.RLock()
	job, ok := jobStore.jobs[jobID]
	var snap Job
	if ok {
		snap = *job
	}
	jobStore.RUnlock()
	if ok {
		return &snap
	}
	if rj, err := getJobFromRedis(jobID); err == nil && rj != nil {
		return rj
	}
	return nil
}

// snapshotJob copies a live job under the store lock for responding while
// its worker may still be running.
func snapshotJob(job *Job) *Job {
	jobStore.RLock()
	snap := *job
	jobStore.RUnlock()
	return &snap
}

// removeJob drops the job from both stores and deletes any file it still
// owns.
func removeJob(job *Job) {
	if job.FilePath != "" {
		_ = os.Remove(job.FilePath)
	}
	if job.UploadPath != "" {
		_ = os.Remove(job.UploadPath)
	}
	jobStore.Lock()
	delete(jobStore.jobs, job.ID)
	jobStore.Unlock()
	deleteJobFromRedis(job.ID)
}

// updateJobStatus mutates the job under the store lock; handlers read
// through copies, so every worker-side write must hold it.
func updateJobStatus(job *Job, status JobStatus, errMsg string) {
	jobStore.Lock()
	job.Status = status
	job.Error = errMsg
	if status == StatusFailed {
		job.CompletedAt = time.Now()
	}
	jobStore.jobs[job.ID] = job
	jobStore.Unlock()
	saveJobToRedis(job)
	if errMsg != "" {
		log.Printf("Job %s status updated to %s: %s\n", job.ID, status, errMsg)
	}
}

// failJob moves the job to its terminal failed state. Failures are not
// retried; the collaborator message goes back to the user verbatim.
func failJob(job *Job, err error) {
	atomic.AddInt64(&failedJobs, 1)
	updateJobStatus(job, StatusFailed, err.Error())
	notifyJobCompletion(job)
}

// --- metadata cache ---

func cacheMetadata(url string, meta *Metadata) {
	metaCache.Lock()
	metaCache.entries[url] = meta
	metaCache.Unlock()
	saveMetadataToRedis(url, meta)
}

// cachedMetadata returns the metadata fetched for url within the TTL, or
// nil when the caller must fetch fresh.
func cachedMetadata(url string) *Metadata {
	metaCache.RLock()
	meta, ok := metaCache.entries[url]
	metaCache.RUnlock()
	if ok && time.Since(meta.FetchedAt) < cfg.metadataTTL() {
		return meta
	}
	if ok {
		metaCache.Lock()
		delete(metaCache.entries, url)
		metaCache.Unlock()
	}
	if rm, err := getMetadataFromRedis(url); err == nil && rm != nil {
		if time.Since(rm.FetchedAt) < cfg.metadataTTL() {
			return rm
		}
	}
	return nil
}

// --- janitor ---

// startJobJanitor periodically reclaims expired jobs and their files. This
// also picks up outputs abandoned by users who never retrieved them.
func startJobJanitor() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cleanupExpiredJobs()
		case <-ctx.Done():
			return
		}
	}
}

func cleanupExpiredJobs() {
	cutoff := time.Now().Add(-cfg.jobTTL())
	jobStore.Lock()
	var expired []*Job
	for id, job := range jobStore.jobs {
		if job.CreatedAt.Before(cutoff) {
			expired = append(expired, job)
			delete(jobStore.jobs, id)
		}
	}
	jobStore.Unlock()
	for _, job := range expired {
		if job.FilePath != "" {
			_ = os.Remove(job.FilePath)
		}
		if job.UploadPath != "" {
			_ = os.Remove(job.UploadPath)
		}
		deleteJobFromRedis(job.ID)
	}
	if len(expired) > 0 {
		log.Printf("janitor reclaimed %d expired jobs", len(expired))
	}
}

func statusEndpoint(jobID string) string {
	return fmt.Sprintf("%s/api/status/%s", cfg.PublicBaseURL, jobID)
}
