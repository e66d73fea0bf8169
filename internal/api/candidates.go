package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadResume sends a PDF resume for parsing.
func (c *Client) UploadResume(ctx context.Context, filename string, file io.Reader) (*UploadResumeResponse, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copying resume: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/candidates/upload_resume", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	respBody, err := c.do(req, failedTo("upload resume"))
	if err != nil {
		return nil, err
	}

	var out UploadResumeResponse
	if err := decode(respBody, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMe returns the current candidate's resume status and skills.
func (c *Client) GetMe(ctx context.Context) (*Candidate, error) {
	var out Candidate
	if err := c.getJSON(ctx, "/candidates/me", failedTo("get candidate info"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
