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

// Package pipeline implements the audio-normalization-and-translation
// request pipeline: decode → normalize → translate → encode, fail-fast
// with a single attempt per request.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/voxlate/voxlate-hub/internal/audio"
	"github.com/voxlate/voxlate-hub/internal/logging"
)

// Engine is the opaque pretrained speech-to-speech capability. Generate
// accepts a mono 16 kHz waveform plus source and target language tags and
// returns the translated waveform at 16 kHz. The call is blocking and
// non-cancelable once inference has started; ctx only bounds transport.
type Engine interface {
	Generate(ctx context.Context, samples []float32, srcLang, tgtLang string) ([]float32, error)
}

// Pipeline composes normalization, inference and encoding behind a single
// Run call. It holds no per-request state; the engine singleton is the
// only shared resource.
type Pipeline struct {
	engine Engine
}

// New creates a pipeline backed by the given engine
func New(engine Engine) *Pipeline {
	return &Pipeline{engine: engine}
}

// Result is the terminal artifact of a completed request
type Result struct {
	// WAV is the translated audio: WAV container, 16-bit PCM, mono, 16 kHz.
	WAV []byte

	// Input clip properties, recorded before normalization.
	InputSampleRate int
	InputChannels   int
	InputDuration   float64

	// OutputDuration is the translated waveform length in seconds.
	OutputDuration float64
}

// Run executes the pipeline on a raw audio byte buffer. Stages run in
// strict sequence; the first failure aborts the remaining stages and is
// returned as a *StageError carrying the failed stage and error kind.
func (p *Pipeline) Run(ctx context.Context, rawBytes []byte, srcLang, tgtLang string) (*Result, error) {
	clip, err := audio.DecodeWAV(rawBytes)
	if err != nil {
		return nil, newStageError(StageDecoding, KindDecode, err)
	}

	logPipelineDebug("decoded",
		zap.Int("sample_rate", clip.SampleRate),
		zap.Int("channels", clip.Channels),
		zap.Int("frames", clip.Frames()),
	)

	normalized, err := Normalize(clip)
	if err != nil {
		return nil, newStageError(StageNormalizing, KindDecode, err)
	}

	translated, err := p.engine.Generate(ctx, normalized.Samples, srcLang, tgtLang)
	if err != nil {
		return nil, newStageError(StageTranslating, KindInference, err)
	}
	if len(translated) == 0 {
		return nil, newStageError(StageTranslating, KindEmptyOutput,
			fmt.Errorf("engine produced zero-length waveform for %s -> %s", srcLang, tgtLang))
	}

	encoded, err := audio.EncodeWAV(translated, ModelSampleRate)
	if err != nil {
		return nil, newStageError(StageEncoding, KindEncode, err)
	}
	if len(encoded) == 0 {
		return nil, newStageError(StageEncoding, KindEncode,
			fmt.Errorf("encoder produced empty byte buffer"))
	}

	logPipelineDebug("completed",
		zap.Float64("input_duration", clip.Duration()),
		zap.Int("output_samples", len(translated)),
		zap.Int("output_bytes", len(encoded)),
	)

	return &Result{
		WAV:             encoded,
		InputSampleRate: clip.SampleRate,
		InputChannels:   clip.Channels,
		InputDuration:   clip.Duration(),
		OutputDuration:  float64(len(translated)) / float64(ModelSampleRate),
	}, nil
}

func logPipelineDebug(stage string, fields ...zap.Field) {
	if logging.Logger == nil {
		return
	}
	logging.Logger.Debug("Pipeline stage",
		append([]zap.Field{zap.String("stage", stage)}, fields...)...)
}
