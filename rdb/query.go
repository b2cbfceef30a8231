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

package rdb

import (
	"encoding/json"
	"fmt"

	"relquery/pattern"

	"github.com/bytedance/sonic"
)

const (
	FuncFindRelationships = "findRelationships"
	FuncCountMatches      = "countMatches"
)

type Query struct {
	Channel string          `json:"channel"`
	Func    string          `json:"func"`
	Args    json.RawMessage `json:"args"`
}

func (q Query) ToJSON() (string, error) {
	ans, err := sonic.Marshal(q)
	if err != nil {
		return "", err
	}
	return string(ans), nil
}

// DecodeArgs deserializes query arguments into a provided value
func (q Query) DecodeArgs(v any) error {
	if len(q.Args) == 0 {
		return fmt.Errorf("missing arguments for %s", q.Func)
	}
	if err := sonic.Unmarshal(q.Args, v); err != nil {
		return fmt.Errorf("failed to decode arguments for %s: %w", q.Func, err)
	}
	return nil
}

func DecodeQuery(q string) (Query, error) {
	var ans Query
	err := sonic.Unmarshal([]byte(q), &ans)
	return ans, err
}

// NewQuery creates a query with serialized arguments.
// The channel is set by the adapter once the query is published.
func NewQuery(fn string, args any) (Query, error) {
	rawArgs, err := sonic.Marshal(args)
	if err != nil {
		return Query{}, fmt.Errorf("failed to serialize query arguments: %w", err)
	}
	return Query{Func: fn, Args: rawArgs}, nil
}

// ----

type RelationshipsArgs struct {
	CorpusID string `json:"corpusId"`

	// Entity1 and Entity2 are entity specifications
	// in the `attr=value,...` format
	Entity1       string `json:"entity1"`
	Entity2       string `json:"entity2"`
	StorePatterns bool   `json:"storePatterns"`
}

type MatchArgs struct {
	CorpusID string            `json:"corpusId"`
	Patterns []pattern.Pattern `json:"patterns"`
}
