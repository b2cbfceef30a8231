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

package vert

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
)

const (
	DfltSentenceStruct = "s"
)

type ParentEncoding string

const (

	// ParentRelative means the parent column contains an offset
	// of the parent token relative to the current one (e.g. -2, +1).
	// Zero means the token is the root. This is how parent
	// positions are encoded in CNC syntactic corpora.
	ParentRelative ParentEncoding = "relative"

	// ParentAbsolute means the parent column contains a 1-based
	// position of the parent token within the sentence with zero
	// denoting the root (CoNLL-U HEAD).
	ParentAbsolute ParentEncoding = "absolute"
)

// Setup describes positional attributes of a syntax-annotated
// vertical file. All the columns are zero-based with column 0
// being always the word itself.
type Setup struct {
	LemmaCol       int            `json:"lemmaCol"`
	PosCol         int            `json:"posCol"`
	DeprelCol      int            `json:"deprelCol"`
	ParentCol      int            `json:"parentCol"`
	ParentEncoding ParentEncoding `json:"parentEncoding"`

	// SentenceStruct is a structure delimiting sentences
	// (typically `s`)
	SentenceStruct string `json:"sentenceStruct"`
}

// MaxCol returns the highest column index the setup refers to
func (s *Setup) MaxCol() int {
	return max(s.LemmaCol, s.PosCol, s.DeprelCol, s.ParentCol)
}

// HeadIndex converts a raw parent column value into a zero-based
// index of the parent token (or -1 for the root)
func (s *Setup) HeadIndex(tokenIdx int, rawValue string) (int, error) {
	if rawValue == "" || rawValue == "_" {
		return -1, nil
	}
	v, err := strconv.Atoi(rawValue)
	if err != nil {
		return 0, fmt.Errorf("invalid parent value `%s`: %w", rawValue, err)
	}
	if v == 0 {
		return -1, nil
	}
	if s.ParentEncoding == ParentAbsolute {
		return v - 1, nil
	}
	return tokenIdx + v, nil
}

func (s *Setup) ValidateAndDefaults(confContext string) error {
	if s == nil {
		return fmt.Errorf("missing configuration section `%s`", confContext)
	}
	if s.LemmaCol <= 0 || s.PosCol <= 0 || s.DeprelCol <= 0 || s.ParentCol <= 0 {
		return fmt.Errorf(
			"`%s`: all of lemmaCol, posCol, deprelCol, parentCol must be positive numbers",
			confContext,
		)
	}
	switch s.ParentEncoding {
	case ParentRelative, ParentAbsolute:
	case "":
		s.ParentEncoding = ParentRelative
		log.Warn().
			Str("value", string(ParentRelative)).
			Msgf("`%s.parentEncoding` not set, using default", confContext)
	default:
		return fmt.Errorf("`%s.parentEncoding`: unsupported value %s", confContext, s.ParentEncoding)
	}
	if s.SentenceStruct == "" {
		s.SentenceStruct = DfltSentenceStruct
		log.Warn().
			Str("value", DfltSentenceStruct).
			Msgf("`%s.sentenceStruct` not set, using default", confContext)
	}
	return nil
}
