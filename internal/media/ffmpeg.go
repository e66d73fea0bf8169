package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

const chunkSize = 16 * 1024

// defaultStartupWait is how long Start watches ffmpeg for an early exit
// before reporting the microphone as open.
const defaultStartupWait = 300 * time.Millisecond

// FFmpegCapture records the default microphone as opus in a webm container
// by running ffmpeg and reading its stdout.
type FFmpegCapture struct {
	Binary      string // ffmpeg path
	InputFormat string // avfoundation, pulse, alsa, dshow
	InputDevice string
	// StartupWait bounds the early-exit check in Start; zero means 300ms.
	StartupWait time.Duration
}

func NewFFmpegCapture(binary, inputFormat, inputDevice string) *FFmpegCapture {
	return &FFmpegCapture{Binary: binary, InputFormat: inputFormat, InputDevice: inputDevice}
}

// CheckFFmpeg reports whether the binary is on PATH.
func (c *FFmpegCapture) CheckFFmpeg() error {
	if _, err := exec.LookPath(c.Binary); err != nil {
		return fmt.Errorf("%s not found, install ffmpeg", c.Binary)
	}
	return nil
}

func (c *FFmpegCapture) inputName() string {
	device := c.InputDevice
	if device == "" {
		device = "default"
	}
	if c.InputFormat == "avfoundation" && !strings.HasPrefix(device, ":") {
		return ":" + device
	}
	return device
}

func (c *FFmpegCapture) Start(ctx context.Context) (CaptureSession, error) {
	if err := c.CheckFFmpeg(); err != nil {
		return nil, err
	}

	cmd := exec.Command(c.Binary,
		"-hide_banner", "-loglevel", "error",
		"-f", c.InputFormat,
		"-i", c.inputName(),
		"-ac", "1",
		"-c:a", "libopus",
		"-f", "webm",
		"pipe:1",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	s := &ffmpegSession{cmd: cmd, done: make(chan struct{}), firstChunk: make(chan struct{}), stderr: &stderr}
	go s.read(stdout)

	wait := c.StartupWait
	if wait <= 0 {
		wait = defaultStartupWait
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	// A denied or missing device makes ffmpeg exit right away.
	select {
	case <-s.firstChunk:
		return s, nil
	case <-timer.C:
		return s, nil
	case <-s.done:
		if s.captured() {
			return s, nil
		}
		_ = cmd.Wait()
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, strings.TrimSpace(stderr.String()))
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-s.done
		_ = cmd.Wait()
		return nil, ctx.Err()
	}
}

type ffmpegSession struct {
	cmd    *exec.Cmd
	stderr *bytes.Buffer

	mu         sync.Mutex
	chunks     [][]byte
	stopped    bool
	done       chan struct{}
	firstChunk chan struct{}
}

func (s *ffmpegSession) captured() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks) > 0
}

func (s *ffmpegSession) read(r io.Reader) {
	defer close(s.done)
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.mu.Lock()
			if len(s.chunks) == 0 {
				close(s.firstChunk)
			}
			s.chunks = append(s.chunks, chunk)
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (s *ffmpegSession) Stop() ([][]byte, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, nil
	}
	s.stopped = true
	s.mu.Unlock()

	// SIGINT lets ffmpeg finalize the container before exiting.
	if err := s.cmd.Process.Signal(os.Interrupt); err != nil {
		_ = s.cmd.Process.Kill()
	}
	<-s.done
	waitErr := s.cmd.Wait()

	s.mu.Lock()
	chunks := s.chunks
	s.chunks = nil
	s.mu.Unlock()

	if len(chunks) == 0 && waitErr != nil && !isInterrupt(waitErr) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, strings.TrimSpace(s.stderr.String()))
	}
	return chunks, nil
}

func isInterrupt(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return true
	}
	// ffmpeg exits with 255 after handling SIGINT
	return exitErr.ExitCode() == 255
}

// FFplayPlayer plays files with ffplay, without a window.
type FFplayPlayer struct {
	Binary string
}

func NewFFplayPlayer(binary string) *FFplayPlayer {
	return &FFplayPlayer{Binary: binary}
}

func (p *FFplayPlayer) Play(ctx context.Context, path string) (Playback, error) {
	cmd := exec.CommandContext(ctx, p.Binary, "-nodisp", "-autoexit", "-loglevel", "error", path)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", p.Binary, err)
	}

	pb := &processPlayback{cmd: cmd, done: make(chan struct{})}
	go func() {
		pb.err = cmd.Wait()
		close(pb.done)
	}()
	return pb, nil
}

type processPlayback struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error

	mu     sync.Mutex
	paused bool
}

func (p *processPlayback) Wait() error {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		return ErrPaused
	}
	return p.err
}

func (p *processPlayback) Pause() {
	p.mu.Lock()
	if p.paused {
		p.mu.Unlock()
		return
	}
	p.paused = true
	p.mu.Unlock()

	select {
	case <-p.done:
	default:
		_ = p.cmd.Process.Kill()
	}
}
