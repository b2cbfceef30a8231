// Copyright 2024 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//   This file is part of RELQUERY.
//
//  RELQUERY is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  RELQUERY is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with RELQUERY.  If not, see <https://www.gnu.org/licenses/>.

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"relquery/pattern"
)

func fileNamePart(token string) string {
	ans := strings.Map(
		func(r rune) rune {
			if unicode.IsSpace(r) || r == os.PathSeparator || r == '/' {
				return '-'
			}
			return r
		},
		strings.ToLower(strings.TrimSpace(token)),
	)
	if ans == "" {
		return "x"
	}
	return ans
}

// ExportFileName creates a name of a JSON file for patterns
// extracted from relationships between two tokens.
func ExportFileName(token1, token2 string) string {
	return fmt.Sprintf("%s_%s.json", fileNamePart(token1), fileNamePart(token2))
}

// ExportJSON writes patterns to a `<token1>_<token2>.json` file
// in the provided directory and returns the file path.
func ExportJSON(dir, token1, token2 string, patterns []pattern.Pattern) (string, error) {
	data, err := pattern.EncodeJSON(patterns)
	if err != nil {
		return "", fmt.Errorf("failed to export patterns: %w", err)
	}
	path := filepath.Join(dir, ExportFileName(token1, token2))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to export patterns: %w", err)
	}
	return path, nil
}

// ImportJSON loads patterns from a JSON file. The file may contain
// either a single pattern or a list of patterns.
func ImportJSON(path string) ([]pattern.Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return []pattern.Pattern{}, fmt.Errorf("failed to import patterns: %w", err)
	}
	ans, err := pattern.DecodeJSON(data)
	if err != nil {
		return []pattern.Pattern{}, fmt.Errorf("failed to import patterns from %s: %w", path, err)
	}
	return ans, nil
}
