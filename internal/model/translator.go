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

// Package model wraps the pretrained speech-to-speech translation engine
// behind a single capability interface and a process-wide singleton
// holder.
package model

import "context"

// Translator is the opaque engine capability: a waveform in, a translated
// waveform out. Implementations decide where inference actually runs; the
// pipeline never depends on the engine family behind this interface.
type Translator interface {
	// Generate runs one inference pass over a mono 16 kHz waveform.
	Generate(ctx context.Context, samples []float32, srcLang, tgtLang string) ([]float32, error)

	// Close releases engine resources
	Close() error
}
