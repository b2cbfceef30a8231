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

	"relquery/deptree"

	"github.com/rs/zerolog/log"
	"github.com/tomachalek/vertigo/v5"
)

// SentenceInfo identifies a sentence within a vertical file
type SentenceInfo struct {
	FilePath string `json:"filePath"`

	// Line is a line number of the sentence's opening tag
	Line int `json:"line"`

	// Index is an order of the sentence within the file
	Index int `json:"index"`

	// ID is the value of the `id` attribute of the sentence
	// structure (if present)
	ID string `json:"id,omitempty"`
}

// SentenceHandler is called for each successfully built sentence.
// Returning an error stops the processing of the file.
type SentenceHandler func(sent *deptree.Sentence, info SentenceInfo) error

type ReadStats struct {
	NumSentences        int
	NumSkippedSentences int
}

// sentenceProcessor is a vertigo.LineProcessor collecting tokens
// between sentence structure tags and turning them into dependency
// trees.
type sentenceProcessor struct {
	setup    *Setup
	filePath string
	handler  SentenceHandler

	inSentence bool
	curr       SentenceInfo
	tokens     []deptree.Token
	rawParents []string
	invalid    error
	stats      ReadStats
}

func (sp *sentenceProcessor) ProcToken(token *vertigo.Token, line int, err error) error {
	if err != nil {
		return err
	}
	if !sp.inSentence {
		return nil
	}
	// below, we index always [k-1] because `word` in Vertigo is separated
	if len(token.Attrs) < sp.setup.MaxCol() {
		if sp.invalid == nil {
			sp.invalid = fmt.Errorf("too few token columns on line %d", line)
		}
		return nil
	}
	sp.tokens = append(sp.tokens, deptree.Token{
		Word:   token.Word,
		Lemma:  token.Attrs[sp.setup.LemmaCol-1],
		PoS:    token.Attrs[sp.setup.PosCol-1],
		Deprel: token.Attrs[sp.setup.DeprelCol-1],
	})
	sp.rawParents = append(sp.rawParents, token.Attrs[sp.setup.ParentCol-1])
	return nil
}

func (sp *sentenceProcessor) ProcStruct(strc *vertigo.Structure, line int, err error) error {
	if err != nil {
		return err
	}
	if strc.Name != sp.setup.SentenceStruct {
		return nil
	}
	if sp.inSentence {
		log.Warn().
			Str("file", sp.filePath).
			Int("line", line).
			Msg("sentence not closed, discarding its tokens")
		sp.stats.NumSkippedSentences++
	}
	sp.inSentence = true
	sp.curr = SentenceInfo{
		FilePath: sp.filePath,
		Line:     line,
		Index:    sp.stats.NumSentences + sp.stats.NumSkippedSentences,
		ID:       strc.Attrs["id"],
	}
	sp.tokens = make([]deptree.Token, 0, 30)
	sp.rawParents = make([]string, 0, 30)
	sp.invalid = nil
	return nil
}

func (sp *sentenceProcessor) ProcStructClose(strc *vertigo.StructureClose, line int, err error) error {
	if err != nil {
		return err
	}
	if strc.Name != sp.setup.SentenceStruct || !sp.inSentence {
		return nil
	}
	sp.inSentence = false
	sent, err := sp.buildSentence()
	if err != nil {
		log.Warn().
			Err(err).
			Str("file", sp.filePath).
			Int("line", sp.curr.Line).
			Msg("skipping invalid sentence")
		sp.stats.NumSkippedSentences++
		return nil
	}
	sp.stats.NumSentences++
	return sp.handler(sent, sp.curr)
}

func (sp *sentenceProcessor) buildSentence() (*deptree.Sentence, error) {
	if sp.invalid != nil {
		return nil, sp.invalid
	}
	for i, raw := range sp.rawParents {
		head, err := sp.setup.HeadIndex(i, raw)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		sp.tokens[i].Head = head
	}
	return deptree.NewSentence(sp.tokens)
}

// ReadFile parses a syntax-annotated vertical file and calls
// the handler for each valid sentence. Invalid sentences are
// logged and skipped.
func ReadFile(filePath string, setup *Setup, handler SentenceHandler) (ReadStats, error) {
	pc := &vertigo.ParserConf{
		InputFilePath:         filePath,
		Encoding:              "utf-8",
		StructAttrAccumulator: "comb",
	}
	proc := &sentenceProcessor{
		setup:    setup,
		filePath: filePath,
		handler:  handler,
	}
	if err := vertigo.ParseVerticalFile(pc, proc); err != nil {
		return proc.stats, fmt.Errorf("failed to read vertical file %s: %w", filePath, err)
	}
	return proc.stats, nil
}
