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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	p := Pattern{
		CommonAncestor: NodeSpec{PoS: "VERB", Lemma: "invest"},
		Branch1:        Branch{{PoS: "PROPN", Deprel: "nsubj"}},
		Branch2:        Branch{{PoS: "ADP", Deprel: "prep"}, {PoS: "NOUN", Deprel: "pobj"}},
	}
	data, err := EncodeJSON([]Pattern{p})
	require.NoError(t, err)
	decoded, err := DecodeJSON(data)
	require.NoError(t, err)
	assert.Equal(t, []Pattern{p}, decoded)
}

func TestDecodeOriginalFormat(t *testing.T) {
	src := `[{"common_ancestor": {"pos": "VERB", "lemma": "raise"},
		"branch1": [{"pos": "NOUN", "dep": "nsubj"}],
		"branch2": [{"pos": "NOUN", "dep": "dobj"}]}]`
	decoded, err := DecodeJSON([]byte(src))
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, "raise", decoded[0].CommonAncestor.Lemma)
	assert.Equal(t, Step{PoS: "NOUN", Deprel: "dobj"}, decoded[0].Branch2[0])
}

func TestDecodeSingleObject(t *testing.T) {
	src := ` {"common_ancestor": {"pos": "VERB", "lemma": "raise"}, "branch1": [], "branch2": []}`
	decoded, err := DecodeJSON([]byte(src))
	require.NoError(t, err)
	assert.Len(t, decoded, 1)
}

func TestEncodeNil(t *testing.T) {
	data, err := EncodeJSON(nil)
	assert.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestDecodeInvalid(t *testing.T) {
	_, err := DecodeJSON([]byte("[{"))
	assert.Error(t, err)
}
