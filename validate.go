package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var allowedUploadExts = map[string]bool{
	".mp4": true,
	".mkv": true,
	".mov": true,
	".avi": true,
}

// sniffLen is how many leading bytes the upload handler reads to check the
// container signature before staging anything to disk.
const sniffLen = 16

// validateUploadName checks the extension allow-list. Runs before any
// bytes are staged.
func validateUploadName(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedUploadExts[ext] {
		return "", validationErrorf("unsupported file type %q, allowed: mp4, mkv, mov, avi", ext)
	}
	return ext, nil
}

// sniffUploadHeader rejects content whose leading signature matches none
// of the allowed containers. Extension checks alone are spoofable.
func sniffUploadHeader(header []byte) error {
	if len(header) >= 8 && bytes.Equal(header[4:8], []byte("ftyp")) {
		return nil // ISO base media: MP4 and MOV
	}
	if len(header) >= 4 && bytes.Equal(header[:4], []byte{0x1A, 0x45, 0xDF, 0xA3}) {
		return nil // EBML: Matroska
	}
	if len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("AVI ")) {
		return nil
	}
	return validationErrorf("file content does not match a supported video container")
}

// maxFilenameRunes bounds download filenames derived from video titles.
const maxFilenameRunes = 150

// sanitizeFilename makes a video title safe to hand back as a download
// filename: traversal sequences and characters illegal on common
// filesystems are stripped or replaced.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|':
			b.WriteRune('_')
		case r < 0x20 || r == 0x7f:
			// control characters dropped
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	out = strings.Trim(out, ".")
	if out == "" {
		out = "download"
	}
	if utf8.RuneCountInString(out) > maxFilenameRunes {
		out = string([]rune(out)[:maxFilenameRunes])
	}
	return out
}
