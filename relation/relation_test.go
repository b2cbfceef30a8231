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

package relation

import (
	"errors"
	"testing"

	"relquery/deptree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// "The London-based fund Balderton said it backed the startup"
//
//	said (VERB, ROOT)
//	├── fund (NOUN, nsubj)
//	│   ├── The (DET, det)
//	│   ├── London-based (ADJ, amod)
//	│   └── Balderton (PROPN, appos)
//	└── backed (VERB, ccomp)
//	    ├── it (PRON, nsubj)
//	    └── startup (NOUN, dobj)
//	        └── the (DET, det)
func mkSentence(t *testing.T) *deptree.Sentence {
	sent, err := deptree.NewSentence([]deptree.Token{
		{Word: "The", Lemma: "the", PoS: "DET", Deprel: "det", Head: 2},
		{Word: "London-based", Lemma: "london-based", PoS: "ADJ", Deprel: "amod", Head: 2},
		{Word: "fund", Lemma: "fund", PoS: "NOUN", Deprel: "nsubj", Head: 4},
		{Word: "Balderton", Lemma: "Balderton", PoS: "PROPN", Deprel: "appos", Head: 2},
		{Word: "said", Lemma: "say", PoS: "VERB", Deprel: "ROOT", Head: -1},
		{Word: "it", Lemma: "it", PoS: "PRON", Deprel: "nsubj", Head: 6},
		{Word: "backed", Lemma: "back", PoS: "VERB", Deprel: "ccomp", Head: 4},
		{Word: "the", Lemma: "the", PoS: "DET", Deprel: "det", Head: 8},
		{Word: "startup", Lemma: "startup", PoS: "NOUN", Deprel: "dobj", Head: 6},
	})
	require.NoError(t, err)
	return sent
}

func TestFindSimple(t *testing.T) {
	sent, err := deptree.NewSentence([]deptree.Token{
		{Word: "Banks", Lemma: "bank", PoS: "NOUN", Deprel: "nsubj", Head: 1},
		{Word: "raise", Lemma: "raise", PoS: "VERB", Deprel: "ROOT", Head: -1},
		{Word: "funds", Lemma: "fund", PoS: "NOUN", Deprel: "dobj", Head: 1},
	})
	require.NoError(t, err)
	rel, err := Find(sent.At(0), sent.At(2))
	assert.NoError(t, err)
	assert.Equal(t, sent.At(1), rel.Fork())
	assert.Equal(t, []deptree.Node{sent.At(1)}, rel.CommonAncestors)
	assert.Equal(t, []deptree.Node{sent.At(0)}, rel.Branch1)
	assert.Equal(t, []deptree.Node{sent.At(2)}, rel.Branch2)
	assert.Equal(t, "Banks–funds", rel.String())
}

func TestFindDeeperBranches(t *testing.T) {
	sent := mkSentence(t)
	rel, err := Find(sent.At(3), sent.At(8))
	assert.NoError(t, err)
	assert.Equal(t, "said", rel.Fork().Word())
	assert.Equal(t, []deptree.Node{sent.At(2), sent.At(3)}, rel.Branch1)
	assert.Equal(t, []deptree.Node{sent.At(6), sent.At(8)}, rel.Branch2)
}

func TestFindForkBelowRoot(t *testing.T) {
	sent := mkSentence(t)
	rel, err := Find(sent.At(5), sent.At(7))
	assert.NoError(t, err)
	assert.Equal(t, sent.At(6), rel.Fork())
	assert.Equal(t, []deptree.Node{sent.At(4), sent.At(6)}, rel.CommonAncestors)
	assert.Equal(t, []deptree.Node{sent.At(5)}, rel.Branch1)
	assert.Equal(t, []deptree.Node{sent.At(8), sent.At(7)}, rel.Branch2)
}

func TestFindAncestorToken(t *testing.T) {
	sent := mkSentence(t)
	rel, err := Find(sent.At(6), sent.At(7))
	assert.NoError(t, err)
	assert.Equal(t, sent.At(6), rel.Fork())
	assert.Empty(t, rel.Branch1)
	assert.Equal(t, []deptree.Node{sent.At(8), sent.At(7)}, rel.Branch2)
}

func TestFindSameToken(t *testing.T) {
	sent := mkSentence(t)
	rel, err := Find(sent.At(2), sent.At(2))
	assert.NoError(t, err)
	assert.Equal(t, sent.At(2), rel.Fork())
	assert.Empty(t, rel.Branch1)
	assert.Empty(t, rel.Branch2)
}

func TestFindIsSymmetric(t *testing.T) {
	sent := mkSentence(t)
	for _, a := range sent.Nodes() {
		for _, b := range sent.Nodes() {
			rel1, err := Find(a, b)
			require.NoError(t, err)
			rel2, err := Find(b, a)
			require.NoError(t, err)
			assert.Equal(t, rel1.Fork(), rel2.Fork())
			assert.Equal(t, rel1.Branch1, rel2.Branch2)
			assert.Equal(t, rel1.Branch2, rel2.Branch1)
		}
	}
}

// isAncestor tests whether n lies on the path from other
// to the root (excluding other itself)
func isAncestor(n, other deptree.Node) bool {
	for curr, ok := other.Parent(); ok; curr, ok = curr.Parent() {
		if curr == n {
			return true
		}
	}
	return false
}

func TestForkIsDeepestCommonAncestor(t *testing.T) {
	sent := mkSentence(t)
	isCommonAnc := func(n, a, b deptree.Node) bool {
		return (n == a || isAncestor(n, a)) && (n == b || isAncestor(n, b))
	}
	for _, a := range sent.Nodes() {
		for _, b := range sent.Nodes() {
			rel, err := Find(a, b)
			require.NoError(t, err)
			fork := rel.Fork()
			assert.True(t, isCommonAnc(fork, a, b))
			for _, n := range sent.Nodes() {
				if isAncestor(fork, n) {
					assert.False(t, isCommonAnc(n, a, b), "%s is deeper than %s", n, fork)
				}
			}
		}
	}
}

func TestPathIsConnected(t *testing.T) {
	sent := mkSentence(t)
	for _, a := range sent.Nodes() {
		for _, b := range sent.Nodes() {
			rel, err := Find(a, b)
			require.NoError(t, err)
			path := rel.Path()
			assert.Equal(t, a, path[0])
			assert.Equal(t, b, path[len(path)-1])
			for i := 1; i < len(path); i++ {
				p1, ok1 := path[i-1].Parent()
				p2, ok2 := path[i].Parent()
				assert.True(
					t,
					(ok1 && p1 == path[i]) || (ok2 && p2 == path[i-1]),
					"%s and %s are not adjacent", path[i-1], path[i],
				)
			}
		}
	}
}

func TestFindUnrelatedTokens(t *testing.T) {
	s1 := mkSentence(t)
	s2 := mkSentence(t)
	_, err := Find(s1.At(0), s2.At(0))
	var uErr *UnrelatedTokensError
	assert.True(t, errors.As(err, &uErr))
	assert.Equal(t, "The", uErr.Token1)
}

func TestFindZeroNode(t *testing.T) {
	s1 := mkSentence(t)
	_, err := Find(s1.At(0), deptree.Node{})
	var uErr *UnrelatedTokensError
	assert.True(t, errors.As(err, &uErr))
}

func TestFindDisconnectedChains(t *testing.T) {
	s1 := mkSentence(t)
	s2 := mkSentence(t)
	// chains sharing a node but continuing to different roots
	chain1 := []deptree.Node{s1.At(0), s1.At(2), s1.At(4)}
	chain2 := []deptree.Node{s1.At(1), s1.At(2), s2.At(4)}
	_, err := findInChains(chain1, chain2)
	var dErr *DisconnectedTreeError
	assert.True(t, errors.As(err, &dErr))
	assert.Equal(t, []string{"fund", "said"}, dErr.Chain1)
}

func TestLongerShorterBranch(t *testing.T) {
	sent := mkSentence(t)
	rel, err := Find(sent.At(5), sent.At(7))
	require.NoError(t, err)
	assert.Equal(t, rel.Branch2, rel.LongerBranch())
	assert.Equal(t, rel.Branch1, rel.ShorterBranch())

	rel, err = Find(sent.At(2), sent.At(6))
	require.NoError(t, err)
	assert.Equal(t, rel.Branch1, rel.LongerBranch())
	assert.Equal(t, rel.Branch2, rel.ShorterBranch())
}

// two chains of chainLen nodes hanging from a single root
func TestFindDeepChains(t *testing.T) {
	const chainLen = 5000
	tokens := make([]deptree.Token, 2*chainLen+1)
	tokens[0] = deptree.Token{Word: "root", PoS: "VERB", Deprel: "ROOT", Head: -1}
	for i := 1; i < len(tokens); i++ {
		tokens[i] = deptree.Token{Word: "w", PoS: "NOUN", Deprel: "dep", Head: i - 1}
	}
	tokens[chainLen+1].Head = 0
	sent, err := deptree.NewSentence(tokens)
	require.NoError(t, err)

	rel, err := Find(sent.At(chainLen), sent.At(2*chainLen))
	require.NoError(t, err)
	assert.True(t, rel.Fork() == sent.At(0))
	assert.Len(t, rel.CommonAncestors, 1)
	assert.Len(t, rel.Branch1, chainLen)
	assert.Len(t, rel.Branch2, chainLen)

	rel, err = Find(sent.At(chainLen/2), sent.At(chainLen))
	require.NoError(t, err)
	assert.True(t, rel.Fork() == sent.At(chainLen/2))
	assert.Empty(t, rel.Branch1)
	assert.Len(t, rel.Branch2, chainLen-chainLen/2)
}
