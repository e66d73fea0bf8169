// Package mediatest provides in-memory AudioCapture and AudioPlayer fakes.
package mediatest

import (
	"context"
	"sync"

	"entervio-client/internal/media"
)

// Capture hands out sessions that return Chunks on Stop.
type Capture struct {
	mu       sync.Mutex
	Chunks   [][]byte
	Err      error // returned by Start, e.g. media.ErrPermissionDenied
	Starts   int
	Sessions []*CaptureSession
}

func (c *Capture) Start(ctx context.Context) (media.CaptureSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Starts++
	if c.Err != nil {
		return nil, c.Err
	}
	s := &CaptureSession{chunks: c.Chunks}
	c.Sessions = append(c.Sessions, s)
	return s, nil
}

type CaptureSession struct {
	mu      sync.Mutex
	chunks  [][]byte
	Stopped int
}

func (s *CaptureSession) Stop() ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stopped++
	if s.Stopped > 1 {
		return nil, nil
	}
	return s.chunks, nil
}

// Player records playbacks. With AutoFinish every playback ends as soon as
// it is waited on; otherwise tests finish them through Playbacks.
type Player struct {
	AutoFinish bool
	Err        error

	mu        sync.Mutex
	Playbacks []*Playback
	Paths     []string
	active    int
	MaxActive int
	Events    []string
}

func (p *Player) Play(ctx context.Context, path string) (media.Playback, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}

	pb := &Playback{player: p, done: make(chan struct{})}
	p.Playbacks = append(p.Playbacks, pb)
	p.Paths = append(p.Paths, path)
	p.active++
	if p.active > p.MaxActive {
		p.MaxActive = p.active
	}
	p.Events = append(p.Events, "play")
	if p.AutoFinish {
		pb.finishLocked(nil)
	}
	return pb, nil
}

// Active returns the number of playbacks currently playing.
func (p *Player) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Count returns how many playbacks were started.
func (p *Player) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Playbacks)
}

// Last returns the most recent playback or nil.
func (p *Player) Last() *Playback {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Playbacks) == 0 {
		return nil
	}
	return p.Playbacks[len(p.Playbacks)-1]
}

type Playback struct {
	player *Player
	done   chan struct{}
	err    error
	ended  bool
	Paused bool
}

// Finish ends the playback naturally (err == nil) or with an error.
func (pb *Playback) Finish(err error) {
	pb.player.mu.Lock()
	defer pb.player.mu.Unlock()
	pb.finishLocked(err)
}

func (pb *Playback) finishLocked(err error) {
	if pb.ended {
		return
	}
	pb.ended = true
	pb.err = err
	pb.player.active--
	close(pb.done)
}

func (pb *Playback) Pause() {
	pb.player.mu.Lock()
	defer pb.player.mu.Unlock()
	if pb.ended {
		return
	}
	pb.Paused = true
	pb.player.Events = append(pb.player.Events, "pause")
	pb.finishLocked(media.ErrPaused)
}

func (pb *Playback) Wait() error {
	<-pb.done
	pb.player.mu.Lock()
	defer pb.player.mu.Unlock()
	return pb.err
}

// IsPaused reports whether Pause ended this playback.
func (pb *Playback) IsPaused() bool {
	pb.player.mu.Lock()
	defer pb.player.mu.Unlock()
	return pb.Paused
}
