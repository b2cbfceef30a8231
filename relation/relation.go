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
	"fmt"
	"slices"

	"relquery/deptree"
)

// Relationship describes how two tokens of a sentence are
// connected in the dependency tree. There is a stem of common
// ancestors (from the root down to the fork node) and two
// branches leading from the fork node down to the tokens.
type Relationship struct {
	Token1 deptree.Node
	Token2 deptree.Node

	// CommonAncestors contains nodes from the root down to
	// the fork node (inclusive)
	CommonAncestors []deptree.Node

	// Branch1 contains nodes below the fork node down to Token1
	// (inclusive). In case Token1 is the fork itself, the branch
	// is empty.
	Branch1 []deptree.Node

	// Branch2 is the same as Branch1 but leading to Token2
	Branch2 []deptree.Node
}

// Fork returns the lowest common ancestor of the two tokens
func (rel *Relationship) Fork() deptree.Node {
	return rel.CommonAncestors[len(rel.CommonAncestors)-1]
}

func (rel *Relationship) LongerBranch() []deptree.Node {
	if len(rel.Branch1) >= len(rel.Branch2) {
		return rel.Branch1
	}
	return rel.Branch2
}

func (rel *Relationship) ShorterBranch() []deptree.Node {
	if len(rel.Branch2) <= len(rel.Branch1) {
		return rel.Branch2
	}
	return rel.Branch1
}

// Path returns the complete path between the two tokens, i.e.
// Token1, ..., Fork, ..., Token2
func (rel *Relationship) Path() []deptree.Node {
	ans := make([]deptree.Node, 0, len(rel.Branch1)+len(rel.Branch2)+1)
	ans = append(ans, reversed(rel.Branch1)...)
	ans = append(ans, rel.Fork())
	ans = append(ans, rel.Branch2...)
	return ans
}

func (rel *Relationship) String() string {
	return fmt.Sprintf("%s–%s", rel.Token1, rel.Token2)
}

func reversed(nodes []deptree.Node) []deptree.Node {
	ans := slices.Clone(nodes)
	slices.Reverse(ans)
	return ans
}

// Find walks up the dependency tree from two tokens of the same
// sentence to the root. The first node of the token1's chain
// which is also found in the token2's chain is the fork node
// (the lowest common ancestor).
func Find(token1, token2 deptree.Node) (*Relationship, error) {
	if token1.IsZero() || token2.IsZero() {
		return nil, &UnrelatedTokensError{Token1: token1.String(), Token2: token2.String()}
	}
	rel, err := findInChains(token1.AncestorChain(), token2.AncestorChain())
	if err != nil {
		return nil, err
	}
	rel.Token1 = token1
	rel.Token2 = token2
	return rel, nil
}

func findInChains(chain1, chain2 []deptree.Node) (*Relationship, error) {
	chain2Idx := make(map[deptree.Node]int, len(chain2))
	for j, node := range chain2 {
		chain2Idx[node] = j
	}
	i1, i2 := -1, -1
	for i, node := range chain1 {
		if j, ok := chain2Idx[node]; ok {
			i1, i2 = i, j
			break
		}
	}
	if i1 < 0 {
		return nil, &UnrelatedTokensError{Token1: chain1[0].String(), Token2: chain2[0].String()}
	}
	if !slices.Equal(chain1[i1:], chain2[i2:]) {
		return nil, &DisconnectedTreeError{
			Chain1: chainWords(chain1[i1:]),
			Chain2: chainWords(chain2[i2:]),
		}
	}
	return &Relationship{
		CommonAncestors: reversed(chain1[i1:]),
		Branch1:         reversed(chain1[:i1]),
		Branch2:         reversed(chain2[:i2]),
	}, nil
}
