package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	c, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if c.Listen != ":8080" || c.Workers != 5 {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.YtdlpPath != "yt-dlp" || c.FFmpegPath != "ffmpeg" {
		t.Errorf("tool paths: %q %q", c.YtdlpPath, c.FFmpegPath)
	}
	if c.jobTTL() != 24*time.Hour {
		t.Errorf("job ttl = %v", c.jobTTL())
	}
	if c.maxUploadBytes() != 512<<20 {
		t.Errorf("max upload = %d", c.maxUploadBytes())
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
listen: ":9090"
workers: 2
work_dir: "/var/lib/ytgrab"
ffmpeg_path: "/opt/ffmpeg/bin/ffmpeg"
redis:
  addr: "redis:6379"
  db: 3
metadata_ttl_seconds: 60
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	c, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if c.Listen != ":9090" || c.Workers != 2 || c.WorkDir != "/var/lib/ytgrab" {
		t.Errorf("overrides not applied: %+v", c)
	}
	if c.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("ffmpeg path = %q", c.FFmpegPath)
	}
	if c.Redis.Addr != "redis:6379" || c.Redis.DB != 3 {
		t.Errorf("redis config: %+v", c.Redis)
	}
	if c.metadataTTL() != time.Minute {
		t.Errorf("metadata ttl = %v", c.metadataTTL())
	}
	// untouched fields keep their defaults
	if c.QueueCapacity != 100 {
		t.Errorf("queue capacity = %d", c.QueueCapacity)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("workers: 0\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Fatal("expected an error for zero workers")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
}
