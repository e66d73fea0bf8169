package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
)

// AudioResource is synthesized speech downloaded to a temporary file. It
// plays the role of a revocable object URL: Revoke deletes the file and is
// safe to call more than once.
type AudioResource struct {
	Path        string
	ContentType string

	once sync.Once
	err  error
}

// Revoke releases the underlying file exactly once.
func (r *AudioResource) Revoke() error {
	r.once.Do(func() {
		if err := os.Remove(r.Path); err != nil && !os.IsNotExist(err) {
			r.err = err
		}
	})
	return r.err
}

// AudioURL returns the synthesis URL for text, without fetching it.
func (c *Client) AudioURL(sessionID, text string) string {
	return c.baseURL + audioPath(sessionID, text)
}

func audioPath(sessionID, text string) string {
	return "/voice/interview/" + url.PathEscape(sessionID) + "/audio?text=" + url.QueryEscape(text)
}

// GetAudio fetches the spoken version of text for a session.
func (c *Client) GetAudio(ctx context.Context, sessionID, text string) (*AudioResource, error) {
	req, err := c.newRequest(ctx, http.MethodGet, audioPath(sessionID, text), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.IncrementAPICall(false)
		return nil, fmt.Errorf("GET %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.IncrementAPICall(false)
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &Error{Status: resp.StatusCode, Message: fmt.Sprintf("Failed to get audio: %d", resp.StatusCode)}
	}

	file, err := os.CreateTemp(c.tempDir, "entervio-audio-*"+extensionFor(resp.Header.Get("Content-Type")))
	if err != nil {
		c.metrics.IncrementAPICall(false)
		return nil, fmt.Errorf("creating audio file: %w", err)
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(file.Name())
		c.metrics.IncrementAPICall(false)
		return nil, fmt.Errorf("downloading audio: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		c.metrics.IncrementAPICall(false)
		return nil, fmt.Errorf("closing audio file: %w", err)
	}

	c.metrics.IncrementAPICall(true)
	return &AudioResource{Path: file.Name(), ContentType: resp.Header.Get("Content-Type")}, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/ogg", "audio/opus":
		return ".ogg"
	case "audio/webm":
		return ".webm"
	default:
		return ".mp3"
	}
}
