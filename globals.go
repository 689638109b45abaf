package main

import (
	"context"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

var (
	cfg = defaultConfig()

	jobQueue chan *Job

	jobStore = struct {
		sync.RWMutex
		jobs map[string]*Job
	}{jobs: make(map[string]*Job)}

	// Per-URL metadata cache backing resolution validation. Entries expire
	// after cfg.metadataTTL.
	metaCache = struct {
		sync.RWMutex
		entries map[string]*Metadata
	}{entries: make(map[string]*Metadata)}

	// Metrics
	activeJobs      int64
	queuedJobs      int64
	completedJobs   int64
	failedJobs      int64
	processingNanos int64

	// Rate limiter, re-created from the loaded config at startup
	rateLimiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)

	// External tool seam; tests swap in a stub
	runner commandRunner = execRunner{}

	// Redis client, nil when Redis is unreachable
	redisClient *redis.Client

	// Server start time
	serverStartTime = time.Now()

	// Context for graceful shutdown
	ctx, cancel = context.WithCancel(context.Background())
)

// Waiters notified when a job reaches a terminal state (completed or failed).
var jobWaiters = struct {
	sync.Mutex
	m map[string][]chan *Job
}{m: make(map[string][]chan *Job)}
