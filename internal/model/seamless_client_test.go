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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/voxlate/voxlate-hub/internal/config"
)

func newTestEngine(t *testing.T, generateHandler http.HandlerFunc) (*httptest.Server, *SeamlessClient) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/generate", generateHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewSeamlessClient(config.EngineConfig{
		URL:     server.URL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewSeamlessClient failed: %v", err)
	}

	return server, client
}

func TestNewSeamlessClientEmptyURL(t *testing.T) {
	if _, err := NewSeamlessClient(config.EngineConfig{}); err == nil {
		t.Error("Expected error for empty engine URL")
	}
}

func TestNewSeamlessClientHealthCheckFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if _, err := NewSeamlessClient(config.EngineConfig{URL: server.URL}); err == nil {
		t.Error("Expected error when health check returns 503")
	}
}

func TestNewSeamlessClientUnreachable(t *testing.T) {
	cfg := config.EngineConfig{
		URL:     "http://localhost:1",
		Timeout: time.Second,
	}
	if _, err := NewSeamlessClient(cfg); err == nil {
		t.Error("Expected error for unreachable engine")
	}
}

func TestGenerateForwardsRequest(t *testing.T) {
	var got generateRequest
	_, client := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string][]float32{"waveform": {0.1}})
	})

	_, err := client.Generate(context.Background(), []float32{0.5, -0.5}, "eng", "fra")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if got.SamplingRate != 16000 {
		t.Errorf("Expected sampling rate 16000, got %d", got.SamplingRate)
	}
	if got.SrcLang != "eng" || got.TgtLang != "fra" {
		t.Errorf("Language pair not forwarded: %s -> %s", got.SrcLang, got.TgtLang)
	}
	if len(got.Audio) != 2 {
		t.Errorf("Expected 2 audio samples, got %d", len(got.Audio))
	}
}

func TestGenerateResponseShapes(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []float32
	}{
		{
			name:     "bare waveform array",
			response: `[0.1, -0.2, 0.3]`,
			want:     []float32{0.1, -0.2, 0.3},
		},
		{
			name:     "tuple with trailing waveform",
			response: `[["some", "text", "tokens"], [0.5, -0.5]]`,
			want:     []float32{0.5, -0.5},
		},
		{
			name:     "tuple with batched waveform",
			response: `[["text"], [[0.25, 0.75]]]`,
			want:     []float32{0.25, 0.75},
		},
		{
			name:     "object with waveform field",
			response: `{"text": "bonjour", "waveform": [0.9]}`,
			want:     []float32{0.9},
		},
		{
			name:     "object with batched waveform",
			response: `{"waveform": [[0.1, 0.2]]}`,
			want:     []float32{0.1, 0.2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.response))
			})

			got, err := client.Generate(context.Background(), []float32{0.1}, "eng", "fra")
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d samples, got %d", len(tt.want), len(got))
			}
			for i, want := range tt.want {
				if got[i] != want {
					t.Errorf("Sample %d: expected %v, got %v", i, want, got[i])
				}
			}
		})
	}
}

func TestGenerateEngineError(t *testing.T) {
	_, client := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "CUDA out of memory", http.StatusInternalServerError)
	})

	if _, err := client.Generate(context.Background(), []float32{0.1}, "eng", "fra"); err == nil {
		t.Error("Expected error on engine 500")
	}
}

func TestGenerateMalformedResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "empty body", response: ""},
		{name: "not json", response: "oops"},
		{name: "object without waveform", response: `{"text": "hello"}`},
		{name: "waveform of strings", response: `{"waveform": ["a", "b"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.response))
			})

			if _, err := client.Generate(context.Background(), []float32{0.1}, "eng", "fra"); err == nil {
				t.Error("Expected extraction error")
			}
		})
	}
}

func TestGenerateContextCanceled(t *testing.T) {
	_, client := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Generate(ctx, []float32{0.1}, "eng", "fra"); err == nil {
		t.Error("Expected error for canceled context")
	}
}

func TestExtractWaveformEmptyTuple(t *testing.T) {
	waveform, err := extractWaveform([]byte(`[]`))
	if err != nil {
		t.Fatalf("extractWaveform failed: %v", err)
	}
	if len(waveform) != 0 {
		t.Errorf("Expected empty waveform, got %d samples", len(waveform))
	}
}
