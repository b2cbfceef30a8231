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
	"strings"

	"relquery/deptree"
)

// UnrelatedTokensError is returned when two tokens share
// no ancestor. This typically means the tokens come from
// different sentences.
type UnrelatedTokensError struct {
	Token1 string
	Token2 string
}

func (err *UnrelatedTokensError) Error() string {
	return fmt.Sprintf(
		"tokens %s and %s are unrelated (are they from the same sentence?)",
		err.Token1, err.Token2,
	)
}

// DisconnectedTreeError reports two ancestor chains which
// do not continue the same way above their fork node. A valid
// dependency tree cannot produce this.
type DisconnectedTreeError struct {
	Chain1 []string
	Chain2 []string
}

func (err *DisconnectedTreeError) Error() string {
	return fmt.Sprintf(
		"ambiguous chain before the fork: [%s] != [%s]",
		strings.Join(err.Chain1, ", "), strings.Join(err.Chain2, ", "),
	)
}

func chainWords(chain []deptree.Node) []string {
	ans := make([]string, len(chain))
	for i, n := range chain {
		ans[i] = n.String()
	}
	return ans
}
