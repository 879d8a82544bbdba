/*
 * This file is part of Voxlate (https://github.com/voxlate/voxlate-hub).
 * Copyright (C) 2026 Voxlate Labs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

// Package client is the Go client for a remote Voxlate hub. It speaks the
// hub's multipart /translate protocol and surfaces pipeline failures as
// typed errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Client talks to a Voxlate hub over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError is a structured failure returned by the hub
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
	Stage      string `json:"stage,omitempty"`
	Kind       string `json:"kind,omitempty"`
}

func (e *APIError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("hub error %d at %s (%s): %s", e.StatusCode, e.Stage, e.Kind, e.Message)
	}
	return fmt.Sprintf("hub error %d: %s", e.StatusCode, e.Message)
}

// Health is the hub's health report
type Health struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	EngineURL   string `json:"engine_url"`
	NATS        bool   `json:"nats"`
}

// New creates a client for the hub at baseURL. A zero timeout defaults to
// five minutes; translation of long clips is slow.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("hub URL cannot be empty")
	}

	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Translate sends a WAV byte buffer to the hub and returns the translated
// WAV bytes. Failures carry the hub's stage and error kind via *APIError.
func (c *Client) Translate(ctx context.Context, wav []byte, srcLang, tgtLang string) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("audio", "input.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return nil, fmt.Errorf("failed to write audio part: %w", err)
	}
	if err := writer.WriteField("src_lang", srcLang); err != nil {
		return nil, fmt.Errorf("failed to write src_lang field: %w", err)
	}
	if err := writer.WriteField("tgt_lang", tgtLang); err != nil {
		return nil, fmt.Errorf("failed to write tgt_lang field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translate request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read translate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp.StatusCode, respBody)
	}

	if len(respBody) == 0 {
		return nil, fmt.Errorf("hub returned an empty audio buffer")
	}

	return respBody, nil
}

// Health fetches the hub's health report
func (c *Client) Health(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health check failed with status %d", resp.StatusCode)
	}

	var health Health
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}

	return &health, nil
}

// Languages fetches the hub's supported language codes
func (c *Client) Languages(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/languages", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("languages request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("languages request failed with status %d", resp.StatusCode)
	}

	var body struct {
		Languages []string `json:"languages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode languages response: %w", err)
	}

	return body.Languages, nil
}

// decodeAPIError parses the hub's JSON error body, falling back to the
// raw text when the body is not JSON.
func decodeAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = string(body)
	}
	return apiErr
}
