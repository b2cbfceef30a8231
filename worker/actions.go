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

package worker

import (
	"context"
	"fmt"
	"strings"

	"relquery/corpus"
	"relquery/merror"
	"relquery/rdb"
	"relquery/results"
	"relquery/store"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/rs/zerolog/log"
)

func (w *Worker) getCorpus(corpusID string) (*corpus.CorpusSetup, error) {
	corp := w.corpora.Resources.Get(corpusID)
	if corp == nil {
		return nil, merror.InputError{Msg: fmt.Sprintf("unknown corpus `%s`", corpusID)}
	}
	return corp, nil
}

// PatternRecords converts relationships into pattern records
// suitable for the pattern store
func PatternRecords(res *results.Relationships) []store.PatternRecord {
	return collections.SliceMap(
		res.Items,
		func(item results.RelationshipItem, i int) store.PatternRecord {
			return store.PatternRecord{
				CorpusID: res.CorpusID,
				Token1:   strings.ToLower(item.Token1.Word),
				Token2:   strings.ToLower(item.Token2.Word),
				Pattern:  item.Pattern,
			}
		},
	)
}

func (w *Worker) findRelationships(ctx context.Context, args rdb.RelationshipsArgs) *results.Relationships {
	ans := &results.Relationships{CorpusID: args.CorpusID, ResultType: results.ResultTypeRelationships}
	corp, err := w.getCorpus(args.CorpusID)
	if err != nil {
		ans.Error = results.NewJobError(err)
		return ans
	}
	entity1, err := corpus.ParseEntitySpec(args.Entity1)
	if err != nil {
		ans.Error = results.NewJobError(merror.InputError{Msg: err.Error()})
		return ans
	}
	entity2, err := corpus.ParseEntitySpec(args.Entity2)
	if err != nil {
		ans.Error = results.NewJobError(merror.InputError{Msg: err.Error()})
		return ans
	}
	data, err := corpus.NewScanner(corp, w.corpora).FindRelationships(ctx, entity1, entity2)
	if err != nil {
		ans.Error = results.NewJobError(err)
		return ans
	}
	ans = results.NewRelationships(args.CorpusID, entity1, entity2, data)
	if args.StorePatterns {
		if w.patterns == nil {
			ans.Error = results.NewJobError(
				merror.InputError{Msg: "pattern storage is not configured"})
			return ans
		}
		ans.NumStoredPatterns, err = w.patterns.SaveAll(ctx, PatternRecords(ans))
		if err != nil {
			ans.Error = results.NewJobError(err)
			return ans
		}
		log.Info().
			Str("corpus", args.CorpusID).
			Int("numStored", ans.NumStoredPatterns).
			Msg("stored extracted patterns")
	}
	return ans
}

func (w *Worker) countMatches(ctx context.Context, args rdb.MatchArgs) *results.Matches {
	ans := &results.Matches{CorpusID: args.CorpusID, ResultType: results.ResultTypeMatches}
	corp, err := w.getCorpus(args.CorpusID)
	if err != nil {
		ans.Error = results.NewJobError(err)
		return ans
	}
	data, err := corpus.NewScanner(corp, w.corpora).CountMatches(ctx, args.Patterns)
	if err != nil {
		ans.Error = results.NewJobError(err)
		return ans
	}
	return results.NewMatches(args.CorpusID, data)
}
