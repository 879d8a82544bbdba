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

package pipeline

import (
	"errors"
	"fmt"
)

// Stage identifies a position in the per-request state machine:
// Received → Decoding → Normalizing → Translating → Encoding → Completed.
// A request never moves back to an earlier stage; a failure terminates the
// request at the stage where it occurred.
type Stage int

const (
	StageReceived Stage = iota
	StageDecoding
	StageNormalizing
	StageTranslating
	StageEncoding
	StageCompleted
)

// String returns the stage name used in logs, events and API payloads
func (s Stage) String() string {
	switch s {
	case StageReceived:
		return "received"
	case StageDecoding:
		return "decoding"
	case StageNormalizing:
		return "normalizing"
	case StageTranslating:
		return "translating"
	case StageEncoding:
		return "encoding"
	case StageCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// ErrorKind is the closed set of pipeline failure kinds. Every failed
// request maps to exactly one kind; none are retried.
type ErrorKind string

const (
	// KindDecode: the input byte buffer is not a parseable audio container
	// (or could not be brought into the engine's required shape).
	KindDecode ErrorKind = "decode_error"

	// KindEmptyOutput: the engine produced a zero-length waveform. This is
	// a recognized degenerate failure mode of the model, distinct from a
	// transport or library error.
	KindEmptyOutput ErrorKind = "empty_output"

	// KindInference: the underlying engine call failed.
	KindInference ErrorKind = "inference_error"

	// KindEncode: serializing the translated waveform produced an empty
	// buffer, which indicates a tooling malfunction rather than bad data.
	KindEncode ErrorKind = "encode_error"
)

// StageError is a pipeline failure annotated with the stage it occurred in
// and its error kind. The boundary layer maps kinds to user-facing
// responses; the pipeline itself never recovers or retries.
type StageError struct {
	Stage Stage
	Kind  ErrorKind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func newStageError(stage Stage, kind ErrorKind, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}

// AsStageError extracts a StageError from an error chain
func AsStageError(err error) (*StageError, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr, true
	}
	return nil, false
}
