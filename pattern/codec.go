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

package pattern

import (
	"bytes"
	"fmt"

	"github.com/bytedance/sonic"
)

// EncodeJSON serializes a list of patterns into a JSON array
func EncodeJSON(patterns []Pattern) ([]byte, error) {
	if patterns == nil {
		patterns = []Pattern{}
	}
	ans, err := sonic.Marshal(patterns)
	if err != nil {
		return nil, fmt.Errorf("failed to encode patterns: %w", err)
	}
	return ans, nil
}

// DecodeJSON deserializes patterns. Both a single JSON object
// and an array of objects are accepted.
func DecodeJSON(data []byte) ([]Pattern, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var p Pattern
		if err := sonic.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode pattern: %w", err)
		}
		return []Pattern{p}, nil
	}
	var ans []Pattern
	if err := sonic.Unmarshal(data, &ans); err != nil {
		return nil, fmt.Errorf("failed to decode patterns: %w", err)
	}
	return ans, nil
}
