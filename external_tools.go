package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// commandRunner is the seam between the flows and the external binaries.
// Production shells out; tests substitute a stub.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return nil, fmt.Errorf("%s: %v | %s", name, err, msg)
	}
	return stdout.Bytes(), nil
}

// yt-dlp -J output, reduced to the fields the flows read.
type ytdlpFormat struct {
	FormatID string `json:"format_id"`
	Ext      string `json:"ext"`
	ACodec   string `json:"acodec"`
	VCodec   string `json:"vcodec"`
	Height   int    `json:"height"`
}

type ytdlpInfo struct {
	Title     string        `json:"title"`
	Uploader  string        `json:"uploader"`
	Duration  float64       `json:"duration"`
	ViewCount int64         `json:"view_count"`
	Thumbnail string        `json:"thumbnail"`
	Formats   []ytdlpFormat `json:"formats"`
}

// fetchVideoInfo runs yt-dlp in metadata-only mode, no bytes downloaded.
func fetchVideoInfo(parent context.Context, videoURL string) (*Metadata, error) {
	ctxTimeout, cancel := context.WithTimeout(parent, cfg.metadataTimeout())
	defer cancel()

	out, err := runner.Run(ctxTimeout, cfg.YtdlpPath,
		"-J", "--no-warnings", "--no-playlist", "--skip-download", videoURL)
	if err != nil {
		return nil, &ExtractionError{Err: err}
	}

	var info ytdlpInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, &ExtractionError{Err: fmt.Errorf("yt-dlp metadata parse error: %v", err)}
	}

	meta := &Metadata{
		Title:     info.Title,
		Uploader:  info.Uploader,
		Duration:  info.Duration,
		ViewCount: info.ViewCount,
		Thumbnail: info.Thumbnail,
		FetchedAt: time.Now(),
	}
	for _, f := range info.Formats {
		meta.Formats = append(meta.Formats, FormatDescriptor{
			FormatID: f.FormatID,
			Ext:      f.Ext,
			HasVideo: f.VCodec != "" && f.VCodec != "none",
			HasAudio: f.ACodec != "" && f.ACodec != "none",
			Height:   f.Height,
		})
	}
	meta.Resolutions = availableResolutions(meta.Formats)
	return meta, nil
}

// availableResolutions projects the video-capable formats to their distinct
// heights, highest first. Empty when the source is audio-only.
func availableResolutions(formats []FormatDescriptor) []int {
	seen := make(map[int]bool)
	var heights []int
	for _, f := range formats {
		if !f.HasVideo || f.Height <= 0 {
			continue
		}
		if seen[f.Height] {
			continue
		}
		seen[f.Height] = true
		heights = append(heights, f.Height)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(heights)))
	return heights
}

// downloadVideo fetches the best video stream at or below height plus the
// best audio stream and has yt-dlp merge them into an MP4 at outputPath.
func downloadVideo(parent context.Context, videoURL string, height int, outputPath string) error {
	ctxTimeout, cancel := context.WithTimeout(parent, cfg.downloadTimeout())
	defer cancel()

	selector := fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]", height, height)
	_, err := runner.Run(ctxTimeout, cfg.YtdlpPath,
		"-f", selector,
		"--merge-output-format", "mp4",
		"--no-warnings",
		"--no-playlist",
		"-o", outputPath,
		videoURL,
	)
	if err != nil {
		return &ExtractionError{Err: err}
	}
	return nil
}

// downloadBestAudio fetches the best available audio-only stream to
// outputPath, to be transcoded afterwards.
func downloadBestAudio(parent context.Context, videoURL, outputPath string) error {
	ctxTimeout, cancel := context.WithTimeout(parent, cfg.downloadTimeout())
	defer cancel()

	_, err := runner.Run(ctxTimeout, cfg.YtdlpPath,
		"-f", "bestaudio/best",
		"--no-warnings",
		"--no-playlist",
		"-o", outputPath,
		videoURL,
	)
	if err != nil {
		return &ExtractionError{Err: err}
	}
	return nil
}

// transcodeToMP3 re-encodes inputPath into a 192 kbps MP3 at outputPath,
// overwriting any pre-existing file there.
func transcodeToMP3(parent context.Context, inputPath, outputPath string) error {
	ctxTimeout, cancel := context.WithTimeout(parent, cfg.transcodeTimeout())
	defer cancel()

	_, err := runner.Run(ctxTimeout, cfg.FFmpegPath,
		"-y",
		"-loglevel", "error",
		"-nostdin",
		"-i", inputPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-ar", "44100",
		"-b:a", "192k",
		outputPath,
	)
	if err != nil {
		return &TranscodeError{Err: err}
	}
	return nil
}
