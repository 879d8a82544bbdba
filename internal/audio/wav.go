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

package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	formatPCM       = 1
	formatIEEEFloat = 3

	// riff header (12) + fmt chunk header (8) + fmt body (16) + data chunk header (8)
	minWAVSize = 44
)

// DecodeWAV parses a WAV byte buffer into a Clip. Supported sample
// encodings are 16-bit PCM and 32-bit IEEE float; any channel count and
// sample rate the header declares are accepted.
func DecodeWAV(data []byte) (*Clip, error) {
	if len(data) < minWAVSize {
		return nil, fmt.Errorf("buffer too short for WAV header: %d bytes", len(data))
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE container")
	}

	var (
		haveFmt       bool
		audioFormat   uint16
		channels      int
		sampleRate    int
		bitsPerSample int
		sampleBytes   []byte
	)

	// Walk the chunk list. Chunks are 2-byte aligned; unknown chunks are
	// skipped.
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8

		if chunkSize < 0 || body+chunkSize > len(data) {
			return nil, fmt.Errorf("truncated %q chunk: declared %d bytes", chunkID, chunkSize)
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("fmt chunk too short: %d bytes", chunkSize)
			}
			audioFormat = binary.LittleEndian.Uint16(data[body : body+2])
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			haveFmt = true
		case "data":
			sampleBytes = data[body : body+chunkSize]
		}

		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++ // pad byte
		}
	}

	if !haveFmt {
		return nil, fmt.Errorf("missing fmt chunk")
	}
	if sampleBytes == nil {
		return nil, fmt.Errorf("missing data chunk")
	}
	if channels < 1 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	samples, err := decodeSamples(audioFormat, bitsPerSample, sampleBytes)
	if err != nil {
		return nil, err
	}

	return &Clip{
		Samples:    samples,
		SampleRate: sampleRate,
		Channels:   channels,
	}, nil
}

// decodeSamples converts raw sample bytes to float32 in [-1, 1]
func decodeSamples(audioFormat uint16, bitsPerSample int, data []byte) ([]float32, error) {
	switch {
	case audioFormat == formatPCM && bitsPerSample == 16:
		// Drop a trailing odd byte rather than failing the whole clip
		count := len(data) / 2
		samples := make([]float32, count)
		for i := 0; i < count; i++ {
			val := int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
			samples[i] = float32(val) / 32767.0
		}
		return samples, nil

	case audioFormat == formatIEEEFloat && bitsPerSample == 32:
		count := len(data) / 4
		samples := make([]float32, count)
		for i := 0; i < count; i++ {
			bits := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
			samples[i] = math.Float32frombits(bits)
		}
		return samples, nil

	default:
		return nil, fmt.Errorf("unsupported sample encoding: format %d, %d bits", audioFormat, bitsPerSample)
	}
}

// EncodeWAV serializes a mono float32 waveform as a 16-bit PCM WAV buffer
// at the given sample rate. Samples outside [-1, 1] are clamped.
func EncodeWAV(samples []float32, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	dataSize := len(samples) * 2
	fileSize := 36 + dataSize

	var buf bytes.Buffer
	buf.Grow(44 + dataSize)

	buf.WriteString("RIFF")
	writeUint32(&buf, uint32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	writeUint32(&buf, 16)                      // fmt body size
	writeUint16(&buf, formatPCM)               // audio format
	writeUint16(&buf, 1)                       // channels (mono)
	writeUint32(&buf, uint32(sampleRate))      // sample rate
	writeUint32(&buf, uint32(sampleRate*2))    // byte rate
	writeUint16(&buf, 2)                       // block align
	writeUint16(&buf, 16)                      // bits per sample

	buf.WriteString("data")
	writeUint32(&buf, uint32(dataSize))

	for _, sample := range samples {
		scaled := math.Round(float64(sample) * 32767.0)
		if scaled > 32767 {
			scaled = 32767
		} else if scaled < -32768 {
			scaled = -32768
		}
		writeUint16(&buf, uint16(int16(scaled)))
	}

	return buf.Bytes(), nil
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
