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
	"errors"
	"fmt"
	"strings"

	"relquery/deptree"
	"relquery/relation"
)

// NodeSpec specifies the fork node of a pattern. Unlike
// branch steps, the fork keeps its lexical identity (lemma)
// as it typically represents the predicate connecting
// the two entities.
type NodeSpec struct {
	PoS   string `json:"pos"`
	Lemma string `json:"lemma"`
}

func (spec NodeSpec) Matches(node deptree.Node) bool {
	return node.PoS() == spec.PoS && node.Lemma() == spec.Lemma
}

func (spec NodeSpec) String() string {
	return fmt.Sprintf("%s:%s", spec.PoS, spec.Lemma)
}

// Step is a generalized branch node - only its part of speech
// and dependency relation are kept.
type Step struct {
	PoS    string `json:"pos"`
	Deprel string `json:"dep"`
}

func (step Step) Matches(node deptree.Node) bool {
	return node.PoS() == step.PoS && node.Deprel() == step.Deprel
}

func (step Step) String() string {
	return fmt.Sprintf("%s/%s", step.PoS, step.Deprel)
}

// Branch is a sequence of steps ordered from the fork
// node down to a token.
type Branch []Step

func (b Branch) String() string {
	items := make([]string, len(b))
	for i, v := range b {
		items[i] = v.String()
	}
	return "[" + strings.Join(items, " ") + "]"
}

// Pattern is a structural generalization of a relation.Relationship.
// It does not refer to any concrete tokens so it can be stored
// and matched against any other sentence.
type Pattern struct {
	CommonAncestor NodeSpec `json:"common_ancestor"`
	Branch1        Branch   `json:"branch1"`
	Branch2        Branch   `json:"branch2"`
}

func (p Pattern) String() string {
	return fmt.Sprintf("%s %s %s", p.CommonAncestor, p.Branch1, p.Branch2)
}

// IsZero tells whether the pattern specifies nothing at all
func (p Pattern) IsZero() bool {
	return p.CommonAncestor == NodeSpec{} && len(p.Branch1) == 0 && len(p.Branch2) == 0
}

// Validate checks that the pattern describes at least something.
// Empty attribute values are valid as matching is based on exact
// equality and corpus tokens may lack some attributes (e.g. lemma).
func (p Pattern) Validate() error {
	if p.IsZero() {
		return errors.New("pattern must specify a common ancestor or at least one branch step")
	}
	return nil
}

func generalizeBranch(nodes []deptree.Node) Branch {
	ans := make(Branch, len(nodes))
	for i, n := range nodes {
		ans[i] = Step{PoS: n.PoS(), Deprel: n.Deprel()}
	}
	return ans
}

// Extract creates a pattern out of a relationship. Each branch
// is generalized from its own path.
func Extract(rel *relation.Relationship) Pattern {
	fork := rel.Fork()
	return Pattern{
		CommonAncestor: NodeSpec{PoS: fork.PoS(), Lemma: fork.Lemma()},
		Branch1:        generalizeBranch(rel.Branch1),
		Branch2:        generalizeBranch(rel.Branch2),
	}
}
