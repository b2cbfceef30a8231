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

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidHead   = errors.New("invalid head index")
	ErrCycle         = errors.New("dependency links contain a cycle")
	ErrNoRoot        = errors.New("sentence has no root")
	ErrMultipleRoots = errors.New("sentence has multiple roots")
)

// Token is a single parsed word as provided by an external
// parser (or read from a syntax-annotated vertical file).
type Token struct {
	Word   string `json:"word"`
	Lemma  string `json:"lemma"`
	PoS    string `json:"pos"`
	Deprel string `json:"dep"`

	// Head is a zero-based index of the parent token
	// within the sentence. The root token has Head == -1.
	Head int `json:"head"`
}

type node struct {
	Token
	children []int
}

// Sentence is a dependency tree stored as an arena of nodes.
// Parent and child links are indices into the arena so the
// sentence is the only owner of its nodes. Once created,
// a Sentence is never modified.
type Sentence struct {
	nodes []node
	root  int
}

// NewSentence builds a dependency tree from a list of tokens.
// The tokens must form exactly one tree - i.e. there is exactly
// one root (Head == -1) and every other token reaches the root
// via its head links. An empty list produces an empty sentence.
func NewSentence(tokens []Token) (*Sentence, error) {
	ans := &Sentence{
		nodes: make([]node, len(tokens)),
		root:  -1,
	}
	if len(tokens) == 0 {
		return ans, nil
	}
	for i, tok := range tokens {
		ans.nodes[i].Token = tok
	}
	for i, tok := range tokens {
		if tok.Head == -1 {
			if ans.root >= 0 {
				return nil, fmt.Errorf("%w: tokens %d and %d", ErrMultipleRoots, ans.root, i)
			}
			ans.root = i
			continue
		}
		if tok.Head < 0 || tok.Head >= len(tokens) || tok.Head == i {
			return nil, fmt.Errorf("%w: token %d points to %d", ErrInvalidHead, i, tok.Head)
		}
		ans.nodes[tok.Head].children = append(ans.nodes[tok.Head].children, i)
	}
	if ans.root < 0 {
		return nil, ErrNoRoot
	}
	if n := ans.numReachable(); n != len(ans.nodes) {
		return nil, fmt.Errorf("%w: %d of %d tokens not reachable from root", ErrCycle, len(ans.nodes)-n, len(ans.nodes))
	}
	return ans, nil
}

// numReachable counts nodes reachable from the root via child links.
// Nodes with a valid parent which cannot be reached must be part
// of a cycle.
func (s *Sentence) numReachable() int {
	var ans int
	stack := []int{s.root}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ans++
		stack = append(stack, s.nodes[curr].children...)
	}
	return ans
}

// Len returns number of tokens
func (s *Sentence) Len() int {
	return len(s.nodes)
}

// Root returns the root node. For an empty sentence,
// false is returned.
func (s *Sentence) Root() (Node, bool) {
	if s.root < 0 {
		return Node{}, false
	}
	return Node{sent: s, idx: s.root}, true
}

// At returns a node at a specified position. Like with slices,
// the function panics for an index out of range.
func (s *Sentence) At(idx int) Node {
	if idx < 0 || idx >= len(s.nodes) {
		panic(fmt.Sprintf("token index %d out of range [0, %d)", idx, len(s.nodes)))
	}
	return Node{sent: s, idx: idx}
}

// Nodes returns all the nodes in the token order
func (s *Sentence) Nodes() []Node {
	ans := make([]Node, len(s.nodes))
	for i := range s.nodes {
		ans[i] = Node{sent: s, idx: i}
	}
	return ans
}

// Text returns all the words separated by a single space
func (s *Sentence) Text() string {
	var sb strings.Builder
	for i, n := range s.nodes {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(n.Word)
	}
	return sb.String()
}

func (s *Sentence) String() string {
	return s.Text()
}
