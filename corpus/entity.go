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

package corpus

import (
	"fmt"
	"sort"
	"strings"

	"relquery/deptree"

	"github.com/czcorpus/cnc-gokit/collections"
)

var supportedEntityAttrs = []string{"word", "orth", "text", "lower", "lemma", "pos", "dep", "deprel"}

// EntitySpec specifies how to recognize an entity token. Keys are
// token attributes, values are required substrings. Matching is
// case-insensitive, e.g. {"lower": "balderton"} matches
// both `Balderton` and `Balderton's`.
type EntitySpec map[string]string

// ParseEntitySpec parses an expression like `lower=Balderton,pos=PROPN`.
// Both `=` and `:` can be used to separate attribute and value.
func ParseEntitySpec(expr string) (EntitySpec, error) {
	ans := make(EntitySpec)
	for _, item := range strings.Split(expr, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		k, v, ok := strings.Cut(item, "=")
		if !ok {
			k, v, ok = strings.Cut(item, ":")
		}
		if !ok {
			return nil, fmt.Errorf("invalid entity attribute expression `%s`", item)
		}
		ans[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if err := ans.Validate(); err != nil {
		return nil, err
	}
	return ans, nil
}

func (es EntitySpec) Validate() error {
	if len(es) == 0 {
		return fmt.Errorf("empty entity specification")
	}
	for k, v := range es {
		if !collections.SliceContains(supportedEntityAttrs, k) {
			return fmt.Errorf("unsupported entity attribute `%s`", k)
		}
		if v == "" {
			return fmt.Errorf("empty value for entity attribute `%s`", k)
		}
	}
	return nil
}

func (es EntitySpec) Matches(node deptree.Node) bool {
	for k, v := range es {
		attr, ok := node.Attr(k)
		if !ok || !strings.Contains(strings.ToLower(attr), strings.ToLower(v)) {
			return false
		}
	}
	return true
}

// SurfaceName returns a value usable for searching raw file contents
// (i.e. the `lower` attribute, or `word`). If there is no such
// attribute, false is returned.
func (es EntitySpec) SurfaceName() (string, bool) {
	for _, k := range []string{"lower", "word", "orth", "text"} {
		if v, ok := es[k]; ok {
			return strings.ToLower(v), true
		}
	}
	return "", false
}

// FindIn returns all the sentence nodes matching the spec
func (es EntitySpec) FindIn(sent *deptree.Sentence) []deptree.Node {
	ans := make([]deptree.Node, 0, 2)
	for _, node := range sent.Nodes() {
		if es.Matches(node) {
			ans = append(ans, node)
		}
	}
	return ans
}

func (es EntitySpec) String() string {
	keys := make([]string, 0, len(es))
	for k := range es {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	items := make([]string, len(keys))
	for i, k := range keys {
		items[i] = fmt.Sprintf("%s: %s", k, es[k])
	}
	return strings.Join(items, ", ")
}
