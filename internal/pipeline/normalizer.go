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
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/voxlate/voxlate-hub/internal/audio"
)

// ModelSampleRate is the only sample rate the translation engine accepts.
const ModelSampleRate = 16000

// Normalize converts a decoded clip into the engine's required shape:
// exactly one channel at exactly 16 kHz. Multi-channel input is downmixed
// by averaging all channels sample-wise; other-rate input is resampled.
// A clip that is already mono at 16 kHz is returned unchanged, samples
// untouched.
func Normalize(clip *audio.Clip) (*audio.Clip, error) {
	if clip.Channels < 1 {
		return nil, fmt.Errorf("invalid channel count: %d", clip.Channels)
	}

	samples := clip.Samples
	if clip.Channels > 1 {
		samples = downmix(samples, clip.Channels)
	}

	if clip.SampleRate != ModelSampleRate {
		resampled, err := resample(samples, clip.SampleRate, ModelSampleRate)
		if err != nil {
			return nil, fmt.Errorf("resampling %d Hz to %d Hz: %w", clip.SampleRate, ModelSampleRate, err)
		}
		samples = resampled
	}

	if clip.Channels == 1 && clip.SampleRate == ModelSampleRate {
		return clip, nil
	}

	return &audio.Clip{
		Samples:    samples,
		SampleRate: ModelSampleRate,
		Channels:   1,
	}, nil
}

// downmix averages interleaved channels into a single channel. The
// arithmetic mean is the required policy; bit-parity with the reference
// behavior depends on it.
func downmix(samples []float32, channels int) []float32 {
	frames := len(samples) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(samples[i*channels+ch])
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

// resample converts mono samples from one rate to another using the
// bandlimited resampler, preserving the duration ratio.
func resample(samples []float32, fromRate, toRate int) ([]float32, error) {
	if fromRate <= 0 {
		return nil, fmt.Errorf("invalid source sample rate: %d", fromRate)
	}

	config := &resampling.Config{
		InputRate:  float64(fromRate),
		OutputRate: float64(toRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	}

	resampler, err := resampling.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	input := make([]float64, len(samples))
	for i, s := range samples {
		input[i] = float64(s)
	}

	output, err := resampler.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resample error: %w", err)
	}

	out := make([]float32, len(output))
	for i, s := range output {
		out[i] = float32(s)
	}
	return out, nil
}
