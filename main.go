package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ytgrab",
	Short: "Video downloader and MP3 extractor built on yt-dlp and ffmpeg",
	Long: `ytgrab serves a small HTTP API with three flows:

  - download a video at a chosen resolution as MP4
  - extract a video's audio track as a 192 kbps MP3
  - convert an uploaded video file to a 192 kbps MP3

All media work is delegated to yt-dlp and ffmpeg; ytgrab sequences the
calls, stages temp files and serves the results for one-shot download.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (optional, defaults apply without one)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve() error {
	loaded, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded
	rateLimiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)

	initRedis()

	jobQueue = make(chan *Job, cfg.QueueCapacity)
	setupGracefulShutdown()
	for i := 0; i < cfg.Workers; i++ {
		go startWorker(i)
	}
	go startJobJanitor()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/metadata", rateLimitMiddleware(handleMetadata))
	mux.HandleFunc("/api/video", rateLimitMiddleware(handleVideo))
	mux.HandleFunc("/api/audio", rateLimitMiddleware(handleAudio))
	mux.HandleFunc("/api/upload", rateLimitMiddleware(handleUpload))
	mux.HandleFunc("/api/status/", handleStatus)
	mux.HandleFunc("/api/download/", handleDownload)
	mux.HandleFunc("/api/jobs/", handleDelete)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/metrics", handleMetrics)
	mux.HandleFunc("/stats", handleStats)

	log.Printf("ytgrab listening on %s with %d workers", cfg.Listen, cfg.Workers)
	return http.ListenAndServe(cfg.Listen, mux)
}
