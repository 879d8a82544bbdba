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

package security

import (
	"strings"
	"testing"
)

func TestSanitizeLogInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Clean input",
			input:    "normal log message",
			expected: "normal log message",
		},
		{
			name:     "Single newline",
			input:    "line1\nline2",
			expected: "line1line2",
		},
		{
			name:     "Single carriage return",
			input:    "line1\rline2",
			expected: "line1line2",
		},
		{
			name:     "CRLF sequence",
			input:    "line1\r\nline2",
			expected: "line1line2",
		},
		{
			name:     "Multiple newlines",
			input:    "line1\n\nline2\nline3",
			expected: "line1line2line3",
		},
		{
			name:     "Log injection attempt",
			input:    "user_input\nERROR: fake error message",
			expected: "user_inputERROR: fake error message",
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "Only newlines",
			input:    "\n\r\n\r",
			expected: "",
		},
		{
			name:     "Unicode characters preserved",
			input:    "Hello 世界\nSecond line",
			expected: "Hello 世界Second line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeLogInput(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeLogInput(%q) = %q, want %q", tt.input, result, tt.expected)
			}

			// Verify no newlines remain
			if strings.Contains(result, "\n") || strings.Contains(result, "\r") {
				t.Errorf("SanitizeLogInput(%q) still contains line breaks: %q", tt.input, result)
			}
		})
	}
}

func TestValidateLanguageCode(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{name: "ISO 639-3", code: "eng", wantErr: false},
		{name: "ISO 639-1", code: "en", wantErr: false},
		{name: "With script subtag", code: "cmn_Hant", wantErr: false},
		{name: "Uppercase", code: "ENG", wantErr: false},
		{name: "Empty", code: "", wantErr: true},
		{name: "Too short", code: "e", wantErr: true},
		{name: "Too long base", code: "engl", wantErr: true},
		{name: "Digits", code: "en1", wantErr: true},
		{name: "Path traversal", code: "../etc", wantErr: true},
		{name: "Forward slash", code: "en/us", wantErr: true},
		{name: "Backslash", code: "en\\us", wantErr: true},
		{name: "Newline injection", code: "eng\nERROR", wantErr: true},
		{name: "Space", code: "en g", wantErr: true},
		{name: "Hyphen separator", code: "en-US", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLanguageCode(tt.code)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateLanguageCode(%q) = nil, want error", tt.code)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateLanguageCode(%q) = %v, want nil", tt.code, err)
			}
		})
	}
}

// Benchmark tests to ensure security functions don't impact performance
func BenchmarkSanitizeLogInput(b *testing.B) {
	testInput := "Normal log message with some\nmalicious\r\ncontent that needs sanitization"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SanitizeLogInput(testInput)
	}
}
