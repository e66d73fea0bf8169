package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const signupFailedMessage = "Échec de la création du compte"

// Signup creates an account. The request goes out without a bearer token.
func (c *Client) Signup(ctx context.Context, in SignupRequest) (*SignupResponse, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := newTaggedRequest(ctx, http.MethodPost, c.baseURL+"/auth/signup", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req, func(int) string { return signupFailedMessage })
	if err != nil {
		if apiErr, ok := err.(*Error); ok {
			apiErr.Message = signupErrorDetail(body)
		}
		return nil, err
	}

	var out SignupResponse
	if err := decode(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// signupErrorDetail extracts detail or detail.message from an error body.
func signupErrorDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return signupFailedMessage
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return text
	}

	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Detail, &nested); err == nil && nested.Message != "" {
		return nested.Message
	}

	return signupFailedMessage
}
