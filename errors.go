package main

import "fmt"

// The flow boundary distinguishes four error kinds. Messages from the
// external tools are carried through verbatim so the user sees what yt-dlp
// or ffmpeg actually said.

// ExtractionError is an unreachable, unsupported or blocked URL reported
// by the extraction tool.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string { return e.Err.Error() }
func (e *ExtractionError) Unwrap() error { return e.Err }

// TranscodeError is a failure inside the transcoding engine, typically a
// corrupt or non-media input.
type TranscodeError struct {
	Err error
}

func (e *TranscodeError) Error() string { return e.Err.Error() }
func (e *TranscodeError) Unwrap() error { return e.Err }

// FilesystemError covers disk-full, permission and staging failures.
type FilesystemError struct {
	Err error
}

func (e *FilesystemError) Error() string { return e.Err.Error() }
func (e *FilesystemError) Unwrap() error { return e.Err }

// ValidationError short-circuits a request before any blocking call runs.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, a ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, a...)}
}
