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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"relquery/deptree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// word, lemma, tag, pos, deprel, parent
const testVert = `<doc id="d1">
<s id="s1">
Balderton	Balderton	NNP	PROPN	nsubj	+1
invests	invest	VBZ	VERB	ROOT	0
in	in	IN	ADP	prep	-1
startups	startup	NNS	NOUN	pobj	-1
</s>
<s id="s2">
Banks	bank	NNS	NOUN	nsubj	+1
raise	raise	VBP	VERB	ROOT	0
funds	fund	NNS	NOUN	dobj	-1
</s>
<s id="s3">
broken	broken	JJ	ADJ	ROOT	0
sentence	sentence	NN	NOUN	ROOT	0
</s>
</doc>
`

func mkSetup() *Setup {
	return &Setup{
		LemmaCol:       1,
		PosCol:         3,
		DeprelCol:      4,
		ParentCol:      5,
		ParentEncoding: ParentRelative,
		SentenceStruct: "s",
	}
}

func writeVert(t *testing.T, data string) string {
	path := filepath.Join(t.TempDir(), "test.vert")
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestReadFile(t *testing.T) {
	path := writeVert(t, testVert)
	sents := make([]*deptree.Sentence, 0, 2)
	infos := make([]SentenceInfo, 0, 2)
	stats, err := ReadFile(path, mkSetup(), func(sent *deptree.Sentence, info SentenceInfo) error {
		sents = append(sents, sent)
		infos = append(infos, info)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, stats.NumSentences)
	assert.Equal(t, 1, stats.NumSkippedSentences)
	require.Len(t, sents, 2)

	assert.Equal(t, "Balderton invests in startups", sents[0].Text())
	root, ok := sents[0].Root()
	assert.True(t, ok)
	assert.Equal(t, "invest", root.Lemma())
	par, ok := sents[0].At(3).Parent()
	assert.True(t, ok)
	assert.Equal(t, "in", par.Word())
	assert.Equal(t, "pobj", sents[0].At(3).Deprel())
	assert.Equal(t, "NOUN", sents[0].At(3).PoS())

	assert.Equal(t, "s2", infos[1].ID)
	assert.Equal(t, path, infos[1].FilePath)
	assert.Equal(t, 1, infos[1].Index)
}

func TestReadFileHandlerError(t *testing.T) {
	path := writeVert(t, testVert)
	stopErr := errors.New("stop")
	var numCalls int
	_, err := ReadFile(path, mkSetup(), func(sent *deptree.Sentence, info SentenceInfo) error {
		numCalls++
		return stopErr
	})
	assert.ErrorIs(t, err, stopErr)
	assert.Equal(t, 1, numCalls)
}

func TestReadFileTooFewColumns(t *testing.T) {
	path := writeVert(t, "<s>\nfoo\tfoo\tNN\n</s>\n")
	var numCalls int
	stats, err := ReadFile(path, mkSetup(), func(sent *deptree.Sentence, info SentenceInfo) error {
		numCalls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, numCalls)
	assert.Equal(t, 1, stats.NumSkippedSentences)
}

func TestHeadIndexRelative(t *testing.T) {
	setup := mkSetup()
	v, err := setup.HeadIndex(3, "-2")
	assert.NoError(t, err)
	assert.Equal(t, 1, v)
	v, err = setup.HeadIndex(3, "+2")
	assert.NoError(t, err)
	assert.Equal(t, 5, v)
	v, err = setup.HeadIndex(3, "0")
	assert.NoError(t, err)
	assert.Equal(t, -1, v)
	_, err = setup.HeadIndex(3, "x")
	assert.Error(t, err)
}

func TestHeadIndexAbsolute(t *testing.T) {
	setup := mkSetup()
	setup.ParentEncoding = ParentAbsolute
	v, err := setup.HeadIndex(3, "2")
	assert.NoError(t, err)
	assert.Equal(t, 1, v)
	v, err = setup.HeadIndex(0, "0")
	assert.NoError(t, err)
	assert.Equal(t, -1, v)
	v, err = setup.HeadIndex(0, "_")
	assert.NoError(t, err)
	assert.Equal(t, -1, v)
}

func TestValidateAndDefaults(t *testing.T) {
	setup := &Setup{LemmaCol: 1, PosCol: 2, DeprelCol: 3, ParentCol: 4}
	assert.NoError(t, setup.ValidateAndDefaults("test"))
	assert.Equal(t, ParentRelative, setup.ParentEncoding)
	assert.Equal(t, DfltSentenceStruct, setup.SentenceStruct)

	setup = &Setup{LemmaCol: 1, PosCol: 2, DeprelCol: 3}
	assert.Error(t, setup.ValidateAndDefaults("test"))

	setup = &Setup{LemmaCol: 1, PosCol: 2, DeprelCol: 3, ParentCol: 4, ParentEncoding: "foo"}
	assert.Error(t, setup.ValidateAndDefaults("test"))

	var nilSetup *Setup
	assert.Error(t, nilSetup.ValidateAndDefaults("test"))
}

func TestMaxCol(t *testing.T) {
	assert.Equal(t, 5, mkSetup().MaxCol())
}
