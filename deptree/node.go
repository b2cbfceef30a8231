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

package deptree

import "strings"

// Node is a read-only handle of a token within a Sentence.
// Two handles are equal if and only if they refer to the same
// token of the same sentence.
type Node struct {
	sent *Sentence
	idx  int
}

func (n Node) data() *node {
	return &n.sent.nodes[n.idx]
}

// IsZero tests whether the node is an empty value
// not attached to any sentence.
func (n Node) IsZero() bool {
	return n.sent == nil
}

func (n Node) Sentence() *Sentence {
	return n.sent
}

// Index returns the token position within its sentence
func (n Node) Index() int {
	return n.idx
}

func (n Node) Word() string {
	return n.data().Word
}

func (n Node) Lower() string {
	return strings.ToLower(n.data().Word)
}

func (n Node) Lemma() string {
	return n.data().Lemma
}

func (n Node) PoS() string {
	return n.data().PoS
}

func (n Node) Deprel() string {
	return n.data().Deprel
}

// Attr returns a token attribute by its name. Supported names
// are `word` (also `orth` and `text`), `lower`, `lemma`, `pos`
// and `dep` (also `deprel`).
func (n Node) Attr(name string) (string, bool) {
	switch name {
	case "word", "orth", "text":
		return n.Word(), true
	case "lower":
		return n.Lower(), true
	case "lemma":
		return n.Lemma(), true
	case "pos":
		return n.PoS(), true
	case "dep", "deprel":
		return n.Deprel(), true
	}
	return "", false
}

// Parent returns the governing node. The root has no parent.
func (n Node) Parent() (Node, bool) {
	head := n.data().Head
	if head < 0 {
		return Node{}, false
	}
	return Node{sent: n.sent, idx: head}, true
}

// Children returns all the dependent nodes in the token order
func (n Node) Children() []Node {
	chIdxs := n.data().children
	ans := make([]Node, len(chIdxs))
	for i, idx := range chIdxs {
		ans[i] = Node{sent: n.sent, idx: idx}
	}
	return ans
}

// NumChildren is a cheaper variant of len(n.Children())
func (n Node) NumChildren() int {
	return len(n.data().children)
}

// AncestorChain returns the node followed by all its ancestors,
// i.e. [node, parent, grandparent, ..., root].
func (n Node) AncestorChain() []Node {
	ans := []Node{n}
	for curr, ok := n.Parent(); ok; curr, ok = curr.Parent() {
		ans = append(ans, curr)
	}
	return ans
}

func (n Node) String() string {
	if n.IsZero() {
		return ""
	}
	return n.Word()
}
