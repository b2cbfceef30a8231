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

package results

import (
	"relquery/corpus"
	"relquery/deptree"
	"relquery/pattern"

	"github.com/czcorpus/cnc-gokit/collections"
)

type MatchExampleItem struct {
	Sentence SentenceRef `json:"sentence"`
	Count    int         `json:"count"`
}

type PatternMatchesItem struct {
	Pattern              pattern.Pattern    `json:"pattern"`
	NumMatches           int                `json:"numMatches"`
	NumMatchingSentences int                `json:"numMatchingSentences"`
	Examples             []MatchExampleItem `json:"examples"`
}

// Matches is a result of replaying patterns against a whole corpus
type Matches struct {
	corpus.ScanStats
	CorpusID   string               `json:"corpusId"`
	Patterns   []PatternMatchesItem `json:"patterns"`
	ResultType ResultType           `json:"resultType"`
	Error      *JobError            `json:"error,omitempty"`
}

func (res *Matches) Err() error {
	return res.Error.AsError()
}

func (res *Matches) Type() ResultType {
	return ResultTypeMatches
}

// TotalMatches sums matches of all the patterns
func (res *Matches) TotalMatches() int {
	var ans int
	for _, p := range res.Patterns {
		ans += p.NumMatches
	}
	return ans
}

func NewMatches(corpusID string, data corpus.MatchResult) *Matches {
	items := make([]PatternMatchesItem, len(data.Patterns))
	for i, pm := range data.Patterns {
		items[i] = PatternMatchesItem{
			Pattern:              pm.Pattern,
			NumMatches:           pm.NumMatches,
			NumMatchingSentences: pm.NumMatchingSentences,
			Examples: collections.SliceMap(
				pm.Examples,
				func(v corpus.MatchExample, i int) MatchExampleItem {
					return MatchExampleItem{
						Sentence: newSentenceRef(v.Sentence, v.Info),
						Count:    v.Count,
					}
				},
			),
		}
	}
	return &Matches{
		ScanStats:  data.ScanStats,
		CorpusID:   corpusID,
		Patterns:   items,
		ResultType: ResultTypeMatches,
	}
}

// ----

type ForkInfo struct {
	Fork         TokenInfo `json:"fork"`
	Branch1Count int       `json:"branch1Count"`
	Branch2Count int       `json:"branch2Count"`
	Count        int       `json:"count"`
}

// SentenceMatches describes how a single pattern
// matches a single sentence
type SentenceMatches struct {
	Pattern pattern.Pattern `json:"pattern"`
	Forks   []ForkInfo      `json:"forks"`
	Total   int             `json:"total"`
}

func NewSentenceMatches(p pattern.Pattern, sent *deptree.Sentence) SentenceMatches {
	ans := SentenceMatches{
		Pattern: p,
		Forks:   make([]ForkInfo, 0, 5),
	}
	for _, fm := range pattern.FindMatches(p, sent) {
		ans.Forks = append(ans.Forks, ForkInfo{
			Fork:         NewTokenInfo(fm.Fork),
			Branch1Count: fm.Branch1Count,
			Branch2Count: fm.Branch2Count,
			Count:        fm.Count(),
		})
		ans.Total += fm.Count()
	}
	return ans
}
