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
	"math"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	// Samples derived from exact int16 values survive the round trip
	// bit-for-bit.
	values := []int16{0, 1, -1, 100, -100, 16384, -16384, 32767, -32767}
	samples := make([]float32, len(values))
	for i, v := range values {
		samples[i] = float32(v) / 32767.0
	}

	encoded, err := EncodeWAV(samples, 16000)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	clip, err := DecodeWAV(encoded)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}

	if clip.SampleRate != 16000 {
		t.Errorf("Expected sample rate 16000, got %d", clip.SampleRate)
	}
	if clip.Channels != 1 {
		t.Errorf("Expected mono, got %d channels", clip.Channels)
	}
	if len(clip.Samples) != len(samples) {
		t.Fatalf("Expected %d samples, got %d", len(samples), len(clip.Samples))
	}

	for i, want := range samples {
		if clip.Samples[i] != want {
			t.Errorf("Sample %d: expected %v, got %v", i, want, clip.Samples[i])
		}
	}
}

func TestEncodeWAVEmptyInput(t *testing.T) {
	encoded, err := EncodeWAV(nil, 16000)
	if err != nil {
		t.Fatalf("EncodeWAV failed on empty input: %v", err)
	}
	if len(encoded) != 44 {
		t.Errorf("Expected a bare 44-byte header, got %d bytes", len(encoded))
	}

	clip, err := DecodeWAV(encoded)
	if err != nil {
		t.Fatalf("DecodeWAV failed on empty data chunk: %v", err)
	}
	if len(clip.Samples) != 0 {
		t.Errorf("Expected zero samples, got %d", len(clip.Samples))
	}
}

func TestEncodeWAVClamping(t *testing.T) {
	encoded, err := EncodeWAV([]float32{2.0, -2.0, 1.0, -1.0}, 16000)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	data := encoded[44:]
	got := []int16{
		int16(binary.LittleEndian.Uint16(data[0:2])),
		int16(binary.LittleEndian.Uint16(data[2:4])),
		int16(binary.LittleEndian.Uint16(data[4:6])),
		int16(binary.LittleEndian.Uint16(data[6:8])),
	}
	want := []int16{32767, -32768, 32767, -32767}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestEncodeWAVInvalidSampleRate(t *testing.T) {
	if _, err := EncodeWAV([]float32{0.5}, 0); err == nil {
		t.Error("Expected error for zero sample rate")
	}
	if _, err := EncodeWAV([]float32{0.5}, -8000); err == nil {
		t.Error("Expected error for negative sample rate")
	}
}

func TestDecodeWAVStereo(t *testing.T) {
	// Build a small stereo PCM16 file by hand.
	frames := [][2]int16{{1000, 2000}, {3000, 4000}, {-1000, -2000}}
	var pcm bytes.Buffer
	for _, fr := range frames {
		_ = binary.Write(&pcm, binary.LittleEndian, fr[0])
		_ = binary.Write(&pcm, binary.LittleEndian, fr[1])
	}

	data := buildWAV(t, 1, 2, 44100, 16, pcm.Bytes())

	clip, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}

	if clip.Channels != 2 {
		t.Errorf("Expected 2 channels, got %d", clip.Channels)
	}
	if clip.SampleRate != 44100 {
		t.Errorf("Expected 44100 Hz, got %d", clip.SampleRate)
	}
	if clip.Frames() != 3 {
		t.Errorf("Expected 3 frames, got %d", clip.Frames())
	}

	want := float32(1000) / 32767.0
	if clip.Samples[0] != want {
		t.Errorf("First sample: expected %v, got %v", want, clip.Samples[0])
	}
}

func TestDecodeWAVFloat32(t *testing.T) {
	values := []float32{0.25, -0.5, 0.75}
	var pcm bytes.Buffer
	for _, v := range values {
		_ = binary.Write(&pcm, binary.LittleEndian, math.Float32bits(v))
	}

	data := buildWAV(t, 3, 1, 16000, 32, pcm.Bytes())

	clip, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}

	if len(clip.Samples) != len(values) {
		t.Fatalf("Expected %d samples, got %d", len(values), len(clip.Samples))
	}
	for i, want := range values {
		if clip.Samples[i] != want {
			t.Errorf("Sample %d: expected %v, got %v", i, want, clip.Samples[i])
		}
	}
}

func TestDecodeWAVSkipsUnknownChunks(t *testing.T) {
	var pcm bytes.Buffer
	_ = binary.Write(&pcm, binary.LittleEndian, int16(12345))

	// fmt chunk, then a LIST chunk the decoder must skip, then data.
	var body bytes.Buffer
	writeChunk(&body, "fmt ", fmtChunkBody(1, 1, 16000, 16))
	writeChunk(&body, "LIST", []byte("INFOjunk"))
	writeChunk(&body, "data", pcm.Bytes())

	data := wrapRIFF(body.Bytes())

	clip, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if len(clip.Samples) != 1 {
		t.Fatalf("Expected 1 sample, got %d", len(clip.Samples))
	}
}

func TestDecodeWAVErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "empty buffer",
			data: []byte{},
		},
		{
			name: "too short",
			data: []byte("RIFF"),
		},
		{
			name: "not riff",
			data: bytes.Repeat([]byte{0x42}, 64),
		},
		{
			name: "wrong wave tag",
			data: append([]byte("RIFF\x00\x00\x00\x00JUNK"), bytes.Repeat([]byte{0}, 40)...),
		},
		{
			name: "missing data chunk",
			data: wrapRIFF(chunkBytes("fmt ", fmtChunkBody(1, 1, 16000, 16))),
		},
		{
			name: "missing fmt chunk",
			data: wrapRIFF(chunkBytes("data", make([]byte, 32))),
		},
		{
			name: "truncated data chunk",
			data: truncatedDataWAV(),
		},
		{
			name: "unsupported encoding",
			data: wrapRIFF(append(
				chunkBytes("fmt ", fmtChunkBody(1, 1, 16000, 8)),
				chunkBytes("data", make([]byte, 32))...)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeWAV(tt.data); err == nil {
				t.Error("Expected decode error, got nil")
			}
		})
	}
}

// buildWAV assembles a minimal WAV file with one fmt and one data chunk
func buildWAV(t *testing.T, format uint16, channels, sampleRate, bits int, pcm []byte) []byte {
	t.Helper()
	var body bytes.Buffer
	writeChunk(&body, "fmt ", fmtChunkBody(format, channels, sampleRate, bits))
	writeChunk(&body, "data", pcm)
	return wrapRIFF(body.Bytes())
}

func fmtChunkBody(format uint16, channels, sampleRate, bits int) []byte {
	var b bytes.Buffer
	_ = binary.Write(&b, binary.LittleEndian, format)
	_ = binary.Write(&b, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&b, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&b, binary.LittleEndian, uint32(sampleRate*channels*bits/8))
	_ = binary.Write(&b, binary.LittleEndian, uint16(channels*bits/8))
	_ = binary.Write(&b, binary.LittleEndian, uint16(bits))
	return b.Bytes()
}

func writeChunk(buf *bytes.Buffer, id string, body []byte) {
	buf.WriteString(id)
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(body)))
	buf.Write(body)
	if len(body)%2 == 1 {
		buf.WriteByte(0)
	}
}

func chunkBytes(id string, body []byte) []byte {
	var buf bytes.Buffer
	writeChunk(&buf, id, body)
	return buf.Bytes()
}

func wrapRIFF(body []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(4+len(body)))
	buf.WriteString("WAVE")
	buf.Write(body)
	return buf.Bytes()
}

func truncatedDataWAV() []byte {
	var body bytes.Buffer
	writeChunk(&body, "fmt ", fmtChunkBody(1, 1, 16000, 16))
	// Declare 1000 bytes of data but provide 4.
	body.WriteString("data")
	_ = binary.Write(&body, binary.LittleEndian, uint32(1000))
	body.Write([]byte{1, 2, 3, 4})
	return wrapRIFF(body.Bytes())
}
