package main

import (
	"context"
	"os"
	"testing"
	"time"
)

// testSetup gives each test an isolated config, work dir, queue and store.
func testSetup(t *testing.T) {
	t.Helper()
	prevCfg, prevRunner := cfg, runner
	cfg = defaultConfig()
	cfg.WorkDir = t.TempDir()
	cfg.FastPathWaitSeconds = 0
	jobQueue = make(chan *Job, 8)
	jobStore.Lock()
	jobStore.jobs = make(map[string]*Job)
	jobStore.Unlock()
	metaCache.Lock()
	metaCache.entries = make(map[string]*Metadata)
	metaCache.Unlock()
	t.Cleanup(func() {
		cfg, runner = prevCfg, prevRunner
	})
}

// stubRunner records every invocation and delegates to fn, standing in for
// the yt-dlp and ffmpeg binaries.
type stubRunner struct {
	calls [][]string
	fn    func(name string, args []string) ([]byte, error)
}

func (s *stubRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	call := append([]string{name}, args...)
	s.calls = append(s.calls, call)
	if s.fn != nil {
		return s.fn(name, args)
	}
	return nil, nil
}

// outputArg returns the path following the given flag, or the last
// argument for ffmpeg-style positional outputs.
func outputArg(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return args[len(args)-1]
}

func writeDummyFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		t.Fatalf("writing dummy file: %v", err)
	}
}

func countWorkDirFiles(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(cfg.WorkDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0
		}
		t.Fatalf("reading work dir: %v", err)
	}
	return len(entries)
}

func cacheTestMetadata(url string, resolutions ...int) *Metadata {
	meta := &Metadata{
		Title:       "My Video: Part 1",
		Uploader:    "someone",
		Duration:    600,
		ViewCount:   12345,
		Thumbnail:   "https://example.com/thumb.jpg",
		Resolutions: resolutions,
	}
	for _, h := range resolutions {
		meta.Formats = append(meta.Formats, FormatDescriptor{HasVideo: true, HasAudio: false, Height: h})
	}
	meta.FetchedAt = time.Now()
	cacheMetadata(url, meta)
	return meta
}
