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
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrInvalidLanguageCode is returned when a language code format is invalid
	ErrInvalidLanguageCode = errors.New("invalid language code")

	// languageCodePattern validates language tags to only allow safe characters.
	// Covers ISO 639-3 codes and underscore-separated variants like cmn_Hant.
	languageCodePattern = regexp.MustCompile(`^[a-zA-Z]{2,3}(_[a-zA-Z]{2,8})?$`)
)

// SanitizeLogInput removes newline characters to prevent log injection attacks
// This function should be used for all user-controlled data before logging
func SanitizeLogInput(input string) string {
	sanitized := strings.ReplaceAll(input, "\n", "")
	sanitized = strings.ReplaceAll(sanitized, "\r", "")
	return sanitized
}

// ValidateLanguageCode ensures that a user-supplied language tag is shaped
// like a real code before it reaches logs, the database or the engine.
// Only allows alphabetic ASCII with an optional underscore-separated script
// or region subtag.
func ValidateLanguageCode(code string) error {
	if code == "" {
		return ErrInvalidLanguageCode
	}

	if strings.Contains(code, "/") || strings.Contains(code, "\\") || strings.Contains(code, "..") {
		return ErrInvalidLanguageCode
	}

	if !languageCodePattern.MatchString(code) {
		return ErrInvalidLanguageCode
	}

	return nil
}
