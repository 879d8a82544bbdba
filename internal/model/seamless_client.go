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

package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/voxlate/voxlate-hub/internal/config"
	"github.com/voxlate/voxlate-hub/internal/logging"
)

// SeamlessClient implements Translator against a REST inference service
// hosting a SeamlessM4T-family model. The service keeps the model weights
// resident; this client is cheap to construct once the service is up.
type SeamlessClient struct {
	baseURL    string
	httpClient *http.Client
}

// generateRequest is the inference service request body
type generateRequest struct {
	Audio        []float32 `json:"audio"`
	SamplingRate int       `json:"sampling_rate"`
	SrcLang      string    `json:"src_lang"`
	TgtLang      string    `json:"tgt_lang"`
}

// NewSeamlessClient creates a client and verifies the inference service is
// reachable. Construction fails if the health check does not pass, so a
// successfully built client implies a loaded model.
func NewSeamlessClient(cfg config.EngineConfig) (*SeamlessClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("engine URL cannot be empty")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	c := &SeamlessClient{
		baseURL: cfg.URL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	if err := c.healthCheck(); err != nil {
		return nil, fmt.Errorf("engine health check failed: %w", err)
	}

	logging.Sugar.Infow("Connected to speech translation engine", "base_url", cfg.URL)

	return c, nil
}

// healthCheck verifies the inference service is running
func (c *SeamlessClient) healthCheck() error {
	resp, err := c.httpClient.Get(c.baseURL + "/health")
	if err != nil {
		return fmt.Errorf("failed to connect to engine at %s: %w", c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("engine health check failed with status: %d", resp.StatusCode)
	}

	return nil
}

// Generate implements the Translator interface. It posts the normalized
// waveform with the language pair and extracts the translated waveform
// from whichever response shape the service produced.
func (c *SeamlessClient) Generate(ctx context.Context, samples []float32, srcLang, tgtLang string) ([]float32, error) {
	startTime := time.Now()

	body, err := json.Marshal(generateRequest{
		Audio:        samples,
		SamplingRate: 16000,
		SrcLang:      srcLang,
		TgtLang:      tgtLang,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generate HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read generate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generate failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	waveform, err := extractWaveform(respBody)
	if err != nil {
		return nil, fmt.Errorf("failed to extract waveform: %w", err)
	}

	logging.LogEngineCall("generate",
		zap.String("src_lang", srcLang),
		zap.String("tgt_lang", tgtLang),
		zap.Int("input_samples", len(samples)),
		zap.Int("output_samples", len(waveform)),
		zap.Int64("processing_time_ms", time.Since(startTime).Milliseconds()),
	)

	return waveform, nil
}

// Close cleans up resources
func (c *SeamlessClient) Close() error {
	logging.Sugar.Infow("Closing engine client", "base_url", c.baseURL)
	return nil
}

// extractWaveform discriminates the engine's three known response shapes
// and always returns the waveform, never the text:
//
//	[0.1, -0.2, ...]                     bare waveform
//	[[text tokens...], [0.1, -0.2, ...]] tuple; the waveform is the LAST
//	                                     element (the leading elements are
//	                                     text sequences)
//	{"waveform": [0.1, -0.2, ...]}       named field
//
// The last-element rule is the canonical tuple contract: when the model
// generates speech alongside text, the waveform follows the text output.
func extractWaveform(data []byte) ([]float32, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	switch trimmed[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, fmt.Errorf("malformed response object: %w", err)
		}
		raw, ok := obj["waveform"]
		if !ok {
			return nil, fmt.Errorf("response object has no waveform field")
		}
		return parseWaveform(raw)

	case '[':
		var elements []json.RawMessage
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return nil, fmt.Errorf("malformed response array: %w", err)
		}
		if len(elements) == 0 {
			return []float32{}, nil
		}

		// A leading number means the whole array is the waveform.
		var probe float64
		if err := json.Unmarshal(elements[0], &probe); err == nil {
			var waveform []float32
			if err := json.Unmarshal(trimmed, &waveform); err != nil {
				return nil, fmt.Errorf("malformed waveform array: %w", err)
			}
			return waveform, nil
		}

		return parseWaveform(elements[len(elements)-1])

	default:
		return nil, fmt.Errorf("unexpected response shape: %s", previewBody(trimmed))
	}
}

// parseWaveform decodes a waveform that may carry a leading batch
// dimension, e.g. [[...]] with a single row.
func parseWaveform(raw json.RawMessage) ([]float32, error) {
	var flat []float32
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}

	var batched [][]float32
	if err := json.Unmarshal(raw, &batched); err == nil {
		if len(batched) == 0 {
			return []float32{}, nil
		}
		return batched[0], nil
	}

	return nil, fmt.Errorf("waveform is neither a float array nor a batched float array: %s", previewBody(raw))
}

func previewBody(data []byte) string {
	const max = 120
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
