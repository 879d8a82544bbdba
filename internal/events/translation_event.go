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

package events

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TranslationEvent records one pass through the translation pipeline with
// full traceability: what came in, how far it got, and what came out.
type TranslationEvent struct {
	// Core identification
	UUID      string    `json:"uuid" db:"uuid"`
	RequestID string    `json:"request_id" db:"request_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`

	// Language pair
	SourceLang string `json:"source_lang" db:"source_lang"`
	TargetLang string `json:"target_lang" db:"target_lang"`

	// Input audio metadata
	AudioHash     string  `json:"audio_hash" db:"audio_hash"`
	InputDuration float64 `json:"input_duration" db:"input_duration"`
	SampleRate    int     `json:"sample_rate" db:"sample_rate"`
	Channels      int     `json:"channels" db:"channels"`

	// Outcome
	OutputDuration float64 `json:"output_duration" db:"output_duration"`
	Stage          string  `json:"stage" db:"stage"`
	ErrorKind      string  `json:"error_kind,omitempty" db:"error_kind"`
	ErrorMessage   string  `json:"error_message,omitempty" db:"error_message"`
	ProcessingTime int64   `json:"processing_time_ms" db:"processing_time_ms"`
	Success        bool    `json:"success" db:"success"`
}

// NewTranslationEvent creates an event with a generated UUID and current
// timestamp. The stage starts at "received".
func NewTranslationEvent(requestID, sourceLang, targetLang string) *TranslationEvent {
	return &TranslationEvent{
		UUID:       uuid.NewString(),
		RequestID:  requestID,
		Timestamp:  time.Now(),
		SourceLang: sourceLang,
		TargetLang: targetLang,
		Stage:      "received",
	}
}

// SetInputAudio records the raw input buffer's hash and size metadata
func (te *TranslationEvent) SetInputAudio(rawBytes []byte) {
	sum := sha256.Sum256(rawBytes)
	te.AudioHash = hex.EncodeToString(sum[:])
}

// SetClipMetadata records the decoded clip's properties
func (te *TranslationEvent) SetClipMetadata(duration float64, sampleRate, channels int) {
	te.InputDuration = duration
	te.SampleRate = sampleRate
	te.Channels = channels
}

// SetCompleted marks the event as a successful run through all stages
func (te *TranslationEvent) SetCompleted(outputDuration float64) {
	te.Stage = "completed"
	te.OutputDuration = outputDuration
	te.Success = true
	te.ProcessingTime = time.Since(te.Timestamp).Milliseconds()
}

// SetFailed marks the event as failed at the given stage with an error kind
func (te *TranslationEvent) SetFailed(stage, kind string, err error) {
	te.Stage = stage
	te.ErrorKind = kind
	if err != nil {
		te.ErrorMessage = err.Error()
	}
	te.Success = false
	te.ProcessingTime = time.Since(te.Timestamp).Milliseconds()
}

// IsValid performs basic validation on the translation event
func (te *TranslationEvent) IsValid() error {
	if te.UUID == "" {
		return fmt.Errorf("UUID is required")
	}

	if te.RequestID == "" {
		return fmt.Errorf("requestID is required")
	}

	if te.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}

	if te.SourceLang == "" || te.TargetLang == "" {
		return fmt.Errorf("language pair is required")
	}

	if te.Stage == "" {
		return fmt.Errorf("stage is required")
	}

	return nil
}

// String returns a human-readable representation of the translation event
func (te *TranslationEvent) String() string {
	return fmt.Sprintf("TranslationEvent{UUID: %s, Pair: %s->%s, Stage: %s, Success: %t}",
		te.UUID, te.SourceLang, te.TargetLang, te.Stage, te.Success)
}
