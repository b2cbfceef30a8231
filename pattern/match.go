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
	"relquery/deptree"
)

// ForkMatch describes pattern matches rooted in a single
// candidate fork node.
type ForkMatch struct {
	Fork         deptree.Node
	Branch1Count int
	Branch2Count int
}

// Count is the number of all combinations of matching
// branch1 and branch2 paths
func (fm ForkMatch) Count() int {
	return fm.Branch1Count * fm.Branch2Count
}

// findForks searches the whole tree (depth first, pre-order)
// for nodes matching the spec.
func findForks(spec NodeSpec, sent *deptree.Sentence) []deptree.Node {
	root, ok := sent.Root()
	if !ok {
		return []deptree.Node{}
	}
	ans := make([]deptree.Node, 0, 4)
	stack := []deptree.Node{root}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if spec.Matches(curr) {
			ans = append(ans, curr)
		}
		children := curr.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return ans
}

// followBranch counts distinct downward paths starting at node
// and matching the steps. Multiple children may match the same
// step, each of them is followed separately. Recursion depth is
// bounded by the branch length.
func followBranch(node deptree.Node, steps Branch) int {
	if len(steps) == 0 {
		return 1
	}
	if node.NumChildren() == 0 {
		return 0
	}
	var ans int
	for _, child := range node.Children() {
		if steps[0].Matches(child) {
			ans += followBranch(child, steps[1:])
		}
	}
	return ans
}

// FindMatches returns all nodes matching pattern's common ancestor
// along with numbers of matching paths for both branches. Forks
// with no complete match are included too (with Count() == 0).
func FindMatches(p Pattern, sent *deptree.Sentence) []ForkMatch {
	forks := findForks(p.CommonAncestor, sent)
	ans := make([]ForkMatch, len(forks))
	for i, fork := range forks {
		ans[i] = ForkMatch{
			Fork:         fork,
			Branch1Count: followBranch(fork, p.Branch1),
			Branch2Count: followBranch(fork, p.Branch2),
		}
	}
	return ans
}

// CountMatches determines how many times the pattern occurs
// in the sentence. Each combination of a fork, a matching branch1
// path and a matching branch2 path counts as a single occurrence.
func CountMatches(p Pattern, sent *deptree.Sentence) int {
	var ans int
	for _, fm := range FindMatches(p, sent) {
		ans += fm.Count()
	}
	return ans
}
