package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStageFileCleanupRemoves(t *testing.T) {
	testSetup(t)
	s, err := stageFile(".mp4")
	if err != nil {
		t.Fatalf("stageFile: %v", err)
	}
	if !strings.HasSuffix(s.Path(), ".mp4") {
		t.Errorf("suffix missing: %s", s.Path())
	}
	if filepath.Dir(s.Path()) != cfg.WorkDir {
		t.Errorf("staged outside work dir: %s", s.Path())
	}
	writeDummyFile(t, s.Path())
	s.Cleanup()
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("cleanup did not remove the file")
	}
}

func TestStageFileReleaseKeeps(t *testing.T) {
	testSetup(t)
	s, err := stageFile(".mp3")
	if err != nil {
		t.Fatalf("stageFile: %v", err)
	}
	writeDummyFile(t, s.Path())
	path := s.Release()
	s.Cleanup()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("released file removed: %v", err)
	}
}

func TestStageFileFreshNames(t *testing.T) {
	testSetup(t)
	a, _ := stageFile(".mp4")
	b, _ := stageFile(".mp4")
	if a.Path() == b.Path() {
		t.Fatal("two staged files share a path")
	}
}

func TestCleanupOnMissingFileIsSafe(t *testing.T) {
	testSetup(t)
	s, err := stageFile(".mp4")
	if err != nil {
		t.Fatalf("stageFile: %v", err)
	}
	s.Cleanup() // nothing was ever written
	s.Cleanup()
}

func TestAdoptFile(t *testing.T) {
	testSetup(t)
	path := filepath.Join(cfg.WorkDir, "upload.mov")
	writeDummyFile(t, path)
	adoptFile(path).Cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("adopted file not removed")
	}
}
