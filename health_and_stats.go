package main

import (
	"net/http"
	"sync/atomic"
	"time"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	enableCORS(w)
	status := "healthy"
	if atomic.LoadInt64(&activeJobs) > int64(cfg.Workers*2) {
		status = "overloaded"
	}
	health := HealthStatus{
		Status:        status,
		ActiveJobs:    atomic.LoadInt64(&activeJobs),
		QueuedJobs:    atomic.LoadInt64(&queuedJobs),
		CompletedJobs: atomic.LoadInt64(&completedJobs),
		FailedJobs:    atomic.LoadInt64(&failedJobs),
		Workers:       cfg.Workers,
		Uptime:        time.Since(serverStartTime).String(),
		MemoryUsage:   memoryUsage(),
	}
	writeJSON(w, http.StatusOK, health)
}

func handleMetrics(w http.ResponseWriter, r *http.Request) {
	enableCORS(w)
	metrics := map[string]any{
		"active_jobs":    atomic.LoadInt64(&activeJobs),
		"queued_jobs":    atomic.LoadInt64(&queuedJobs),
		"completed_jobs": atomic.LoadInt64(&completedJobs),
		"failed_jobs":    atomic.LoadInt64(&failedJobs),
		"workers":        cfg.Workers,
		"queue_capacity": cfg.QueueCapacity,
		"rate_limit":     cfg.RequestsPerSecond,
		"uptime_seconds": time.Since(serverStartTime).Seconds(),
	}
	writeJSON(w, http.StatusOK, metrics)
}

func handleStats(w http.ResponseWriter, r *http.Request) {
	enableCORS(w)
	jobStore.RLock()
	totalJobs := len(jobStore.jobs)
	jobStore.RUnlock()

	stats := map[string]any{
		"total_jobs":                  totalJobs,
		"active_jobs":                 atomic.LoadInt64(&activeJobs),
		"queued_jobs":                 atomic.LoadInt64(&queuedJobs),
		"completed_jobs":              atomic.LoadInt64(&completedJobs),
		"failed_jobs":                 atomic.LoadInt64(&failedJobs),
		"success_rate":                successRate(),
		"avg_processing_time_seconds": avgProcessingSeconds(),
	}
	writeJSON(w, http.StatusOK, stats)
}

func successRate() float64 {
	completed := atomic.LoadInt64(&completedJobs)
	failed := atomic.LoadInt64(&failedJobs)
	total := completed + failed
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total)
}

func avgProcessingSeconds() float64 {
	completed := atomic.LoadInt64(&completedJobs)
	if completed == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(&processingNanos)).Seconds() / float64(completed)
}
