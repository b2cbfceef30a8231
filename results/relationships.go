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
	"relquery/vert"

	"github.com/czcorpus/cnc-gokit/collections"
)

// TokenInfo is a serializable representation of a tree node
type TokenInfo struct {
	Index  int    `json:"index"`
	Word   string `json:"word"`
	Lemma  string `json:"lemma"`
	PoS    string `json:"pos"`
	Deprel string `json:"dep"`
}

func NewTokenInfo(node deptree.Node) TokenInfo {
	return TokenInfo{
		Index:  node.Index(),
		Word:   node.Word(),
		Lemma:  node.Lemma(),
		PoS:    node.PoS(),
		Deprel: node.Deprel(),
	}
}

func tokenInfoList(nodes []deptree.Node) []TokenInfo {
	return collections.SliceMap(
		nodes,
		func(v deptree.Node, i int) TokenInfo {
			return NewTokenInfo(v)
		},
	)
}

// SentenceRef identifies a corpus sentence
type SentenceRef struct {
	ID       string `json:"id,omitempty"`
	FilePath string `json:"filePath,omitempty"`
	Line     int    `json:"line,omitempty"`
	Text     string `json:"text"`
}

func newSentenceRef(sent *deptree.Sentence, info vert.SentenceInfo) SentenceRef {
	return SentenceRef{
		ID:       info.ID,
		FilePath: info.FilePath,
		Line:     info.Line,
		Text:     sent.Text(),
	}
}

// ----

type RelationshipItem struct {
	Sentence        SentenceRef     `json:"sentence"`
	Token1          TokenInfo       `json:"token1"`
	Token2          TokenInfo       `json:"token2"`
	CommonAncestors []TokenInfo     `json:"commonAncestors"`
	Branch1         []TokenInfo     `json:"branch1"`
	Branch2         []TokenInfo     `json:"branch2"`
	Pattern         pattern.Pattern `json:"pattern"`
}

func NewRelationshipItem(rel corpus.FoundRelationship) RelationshipItem {
	return RelationshipItem{
		Sentence:        newSentenceRef(rel.Sentence, rel.Info),
		Token1:          NewTokenInfo(rel.Relationship.Token1),
		Token2:          NewTokenInfo(rel.Relationship.Token2),
		CommonAncestors: tokenInfoList(rel.Relationship.CommonAncestors),
		Branch1:         tokenInfoList(rel.Relationship.Branch1),
		Branch2:         tokenInfoList(rel.Relationship.Branch2),
		Pattern:         rel.Pattern,
	}
}

// Relationships is a result of searching a corpus for relationships
// between two entities.
type Relationships struct {
	corpus.ScanStats
	CorpusID        string             `json:"corpusId"`
	Entity1         string             `json:"entity1"`
	Entity2         string             `json:"entity2"`
	Items           []RelationshipItem `json:"items"`
	NumSkippedPairs int                `json:"numSkippedPairs"`
	IsTruncated     bool               `json:"isTruncated,omitempty"`

	// NumStoredPatterns is set only in case the job
	// was asked to store extracted patterns.
	NumStoredPatterns int        `json:"numStoredPatterns,omitempty"`
	ResultType        ResultType `json:"resultType"`
	Error             *JobError  `json:"error,omitempty"`
}

func (res *Relationships) Err() error {
	return res.Error.AsError()
}

func (res *Relationships) Type() ResultType {
	return ResultTypeRelationships
}

// Patterns returns the patterns of all the items
func (res *Relationships) Patterns() []pattern.Pattern {
	return collections.SliceMap(
		res.Items,
		func(v RelationshipItem, i int) pattern.Pattern {
			return v.Pattern
		},
	)
}

func NewRelationships(
	corpusID string,
	entity1, entity2 corpus.EntitySpec,
	data corpus.RelationshipsResult,
) *Relationships {
	return &Relationships{
		ScanStats: data.ScanStats,
		CorpusID:  corpusID,
		Entity1:   entity1.String(),
		Entity2:   entity2.String(),
		Items: collections.SliceMap(
			data.Relationships,
			func(v corpus.FoundRelationship, i int) RelationshipItem {
				return NewRelationshipItem(v)
			},
		),
		NumSkippedPairs: data.NumSkippedPairs,
		IsTruncated:     data.IsTruncated,
		ResultType:      ResultTypeRelationships,
	}
}
