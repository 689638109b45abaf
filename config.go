package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the server needs at startup. Every field has a
// working default so the config file is optional.
type Config struct {
	Listen        string `yaml:"listen"`
	PublicBaseURL string `yaml:"public_base_url"`
	WorkDir       string `yaml:"work_dir"`

	Workers       int `yaml:"workers"`
	QueueCapacity int `yaml:"queue_capacity"`

	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`

	Redis RedisConfig `yaml:"redis"`

	YtdlpPath  string `yaml:"ytdlp_path"`
	FFmpegPath string `yaml:"ffmpeg_path"`

	JobTTLHours        int   `yaml:"job_ttl_hours"`
	MetadataTTLSeconds int   `yaml:"metadata_ttl_seconds"`
	MaxUploadMB        int64 `yaml:"max_upload_mb"`

	FastPathWaitSeconds     int `yaml:"fast_path_wait_seconds"`
	MetadataTimeoutSeconds  int `yaml:"metadata_timeout_seconds"`
	DownloadTimeoutMinutes  int `yaml:"download_timeout_minutes"`
	TranscodeTimeoutMinutes int `yaml:"transcode_timeout_minutes"`
}

// RedisConfig mirrors the redis.Options fields the server uses. An
// unreachable Redis is not fatal, the store falls back to memory only.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func defaultConfig() *Config {
	return &Config{
		Listen:                  ":8080",
		PublicBaseURL:           "http://localhost:8080",
		WorkDir:                 "downloads",
		Workers:                 5,
		QueueCapacity:           100,
		RequestsPerSecond:       50,
		Burst:                   100,
		Redis:                   RedisConfig{Addr: "localhost:6379"},
		YtdlpPath:               "yt-dlp",
		FFmpegPath:              "ffmpeg",
		JobTTLHours:             24,
		MetadataTTLSeconds:      300,
		MaxUploadMB:             512,
		FastPathWaitSeconds:     8,
		MetadataTimeoutSeconds:  45,
		DownloadTimeoutMinutes:  30,
		TranscodeTimeoutMinutes: 10,
	}
}

// loadConfig reads the YAML file at path on top of the defaults. An empty
// path keeps the defaults as-is.
func loadConfig(path string) (*Config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if c.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.QueueCapacity < 1 {
		return nil, fmt.Errorf("queue_capacity must be at least 1, got %d", c.QueueCapacity)
	}
	return c, nil
}

func (c *Config) jobTTL() time.Duration {
	return time.Duration(c.JobTTLHours) * time.Hour
}

func (c *Config) metadataTTL() time.Duration {
	return time.Duration(c.MetadataTTLSeconds) * time.Second
}

func (c *Config) maxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func (c *Config) fastPathWait() time.Duration {
	return time.Duration(c.FastPathWaitSeconds) * time.Second
}

func (c *Config) metadataTimeout() time.Duration {
	return time.Duration(c.MetadataTimeoutSeconds) * time.Second
}

func (c *Config) downloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeoutMinutes) * time.Minute
}

func (c *Config) transcodeTimeout() time.Duration {
	return time.Duration(c.TranscodeTimeoutMinutes) * time.Minute
}
