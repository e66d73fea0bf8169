// Package media abstracts the microphone and the speaker so the interview
// session can run against real devices or test fakes.
package media

import (
	"context"
	"errors"
)

var (
	// ErrPermissionDenied is returned when the microphone cannot be opened.
	ErrPermissionDenied = errors.New("microphone access denied")
	// ErrPaused is returned by Playback.Wait when playback was paused.
	ErrPaused = errors.New("playback paused")
)

// AudioCapture opens microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context) (CaptureSession, error)
}

// CaptureSession accumulates encoded audio until stopped.
type CaptureSession interface {
	// Stop ends capture, releases the device and returns every chunk
	// captured so far. Calling Stop twice returns nil chunks.
	Stop() ([][]byte, error)
}

// AudioPlayer starts playback of a local audio file.
type AudioPlayer interface {
	Play(ctx context.Context, path string) (Playback, error)
}

// Playback is one running playback.
type Playback interface {
	// Wait blocks until playback ends. It returns nil on natural end,
	// ErrPaused after Pause, or the playback error.
	Wait() error
	// Pause stops playback; it is safe to call at any time and more than once.
	Pause()
}
