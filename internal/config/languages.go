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

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LanguageSet is the configured set of language codes the hub accepts.
// Codes are opaque to the pipeline; membership is checked at the request
// boundary only.
type LanguageSet struct {
	codes []string
	index map[string]struct{}
}

// NewLanguageSet builds a language set from a list of codes, preserving
// order and dropping duplicates.
func NewLanguageSet(codes []string) *LanguageSet {
	set := &LanguageSet{
		index: make(map[string]struct{}, len(codes)),
	}
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, seen := set.index[code]; seen {
			continue
		}
		set.index[code] = struct{}{}
		set.codes = append(set.codes, code)
	}
	return set
}

// Supported reports whether a language code is in the set
func (s *LanguageSet) Supported(code string) bool {
	_, ok := s.index[code]
	return ok
}

// Codes returns the configured codes in their original order
func (s *LanguageSet) Codes() []string {
	out := make([]string, len(s.codes))
	copy(out, s.codes)
	return out
}

// Len returns the number of configured codes
func (s *LanguageSet) Len() int {
	return len(s.codes)
}

// languagesFile is the YAML shape of a languages override file:
//
//	languages:
//	  - eng
//	  - fra
type languagesFile struct {
	Languages []string `yaml:"languages"`
}

// loadLanguagesFile reads a YAML languages file and returns its codes
func loadLanguagesFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var file languagesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if len(file.Languages) == 0 {
		return nil, fmt.Errorf("%s declares no languages", path)
	}

	return file.Languages, nil
}
