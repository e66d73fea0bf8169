package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// DefaultLanguage is sent with audio answers when none is given.
const DefaultLanguage = "fr"

// StartInterview opens a new interview session.
func (c *Client) StartInterview(ctx context.Context, in StartInterviewRequest) (*StartInterviewResponse, error) {
	var out StartInterviewResponse
	if err := c.postJSON(ctx, "/interviews/start", in, failedTo("start interview"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetInterviewInfo returns the metadata of a session.
func (c *Client) GetInterviewInfo(ctx context.Context, sessionID string) (*InterviewInfo, error) {
	failure := func(status int) string {
		if status == http.StatusNotFound {
			return "Session not found"
		}
		return fmt.Sprintf("Failed to get interview info: %d", status)
	}

	var out InterviewInfo
	if err := c.getJSON(ctx, "/interviews/"+url.PathEscape(sessionID)+"/info", failure, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetConversationHistory returns the ordered conversation of a session.
func (c *Client) GetConversationHistory(ctx context.Context, sessionID string) (*ConversationHistory, error) {
	var out ConversationHistory
	path := "/interviews/" + url.PathEscape(sessionID) + "/history"
	if err := c.getJSON(ctx, path, failedTo("get conversation history"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitResponse uploads a recorded answer and returns the transcription and
// the interviewer's reply.
func (c *Client) SubmitResponse(ctx context.Context, sessionID string, audio io.Reader, language string) (*RespondResult, error) {
	if language == "" {
		language = DefaultLanguage
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("audio", "recording.webm")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("copying audio: %w", err)
	}
	if err := writer.WriteField("language", language); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/interviews/"+url.PathEscape(sessionID)+"/respond", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	respBody, err := c.do(req, failedTo("submit response"))
	if err != nil {
		return nil, err
	}

	var out RespondResult
	if err := decode(respBody, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EndInterview closes a session and returns the backend's summary text.
func (c *Client) EndInterview(ctx context.Context, sessionID string) (*EndResult, error) {
	var out EndResult
	path := "/interviews/" + url.PathEscape(sessionID) + "/end"
	if err := c.postJSON(ctx, path, nil, failedTo("end interview"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListInterviews returns the current user's interviews.
func (c *Client) ListInterviews(ctx context.Context) ([]Interview, error) {
	var out []Interview
	if err := c.getJSON(ctx, "/interviews/", failedTo("get interviews"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetInterviewSummary returns grades and feedback for an interview.
func (c *Client) GetInterviewSummary(ctx context.Context, interviewID string) (*InterviewSummary, error) {
	var out InterviewSummary
	path := "/interviews/" + url.PathEscape(interviewID) + "/summary"
	if err := c.getJSON(ctx, path, failedTo("get interview summary"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
