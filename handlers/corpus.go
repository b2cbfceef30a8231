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

package handlers

import (
	"fmt"
	"io"
	"net/http"

	"relquery/corpus"
	"relquery/pattern"
	"relquery/rdb"
	"relquery/results"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

// CorpusRelationships godoc
// @Summary      CorpusRelationships
// @Description  Search a corpus for relationships between two entities.
// @Produce      json
// @Param        corpusId path string true "An ID of a corpus to search in"
// @Param        entity1 query string true "entity specification (e.g. `lower=balderton`)"
// @Param        entity2 query string true "entity specification"
// @Param        store query int false "store extracted patterns" enums(0, 1)
// @Success      200 {object} results.Relationships
// @Router       /corpus/{corpusId}/relationships [get]
func (a *Actions) CorpusRelationships(ctx *gin.Context) {
	corp, ok := a.corpusOrFail(ctx)
	if !ok {
		return
	}
	args := rdb.RelationshipsArgs{
		CorpusID:      corp.ID,
		Entity1:       ctx.Query("entity1"),
		Entity2:       ctx.Query("entity2"),
		StorePatterns: ctx.Query("store") == "1",
	}
	for _, e := range []string{args.Entity1, args.Entity2} {
		if _, err := corpus.ParseEntitySpec(e); err != nil {
			uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
			return
		}
	}
	if args.StorePatterns && a.patterns == nil {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("pattern storage is not configured"), http.StatusBadRequest)
		return
	}
	query, err := rdb.NewQuery(rdb.FuncFindRelationships, args)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	wait, err := a.queue.PublishQuery(query)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	ans, ok := awaitResult(ctx, wait, &results.Relationships{})
	if !ok {
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

// CorpusMatch godoc
// @Summary      CorpusMatch
// @Description  Count matches of one or more patterns in a whole corpus.
// @Accept       json
// @Produce      json
// @Param        corpusId path string true "An ID of a corpus to search in"
// @Success      200 {object} results.Matches
// @Router       /corpus/{corpusId}/match [post]
func (a *Actions) CorpusMatch(ctx *gin.Context) {
	corp, ok := a.corpusOrFail(ctx)
	if !ok {
		return
	}
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return
	}
	patterns, err := pattern.DecodeJSON(body)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return
	}
	if len(patterns) == 0 {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("no patterns to match"), http.StatusBadRequest)
		return
	}
	for i, p := range patterns {
		if err := p.Validate(); err != nil {
			uniresp.RespondWithErrorJSON(
				ctx, fmt.Errorf("invalid pattern %d: %w", i, err), http.StatusBadRequest)
			return
		}
	}
	query, err := rdb.NewQuery(rdb.FuncCountMatches, rdb.MatchArgs{CorpusID: corp.ID, Patterns: patterns})
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	wait, err := a.queue.CacheResult(a.queue.PublishQuery, query)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	ans, ok := awaitResult(ctx, wait, &results.Matches{})
	if !ok {
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}
