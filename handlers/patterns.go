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
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"relquery/pattern"
	"relquery/store"

	"github.com/czcorpus/cnc-gokit/unireq"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

type patternRecordArgs struct {
	CorpusID string          `json:"corpusId"`
	Token1   string          `json:"token1"`
	Token2   string          `json:"token2"`
	Pattern  pattern.Pattern `json:"pattern"`
}

type savedPatternResponse struct {
	ID    int64 `json:"id"`
	IsNew bool  `json:"isNew"`
}

func (a *Actions) storeOrFail(ctx *gin.Context) bool {
	if a.patterns == nil {
		uniresp.RespondWithErrorJSON(
			ctx, errors.New("pattern storage is not configured"), http.StatusNotImplemented)
		return false
	}
	return true
}

func patternIDOrFail(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("patternId"), 10, 64)
	if err != nil {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("invalid pattern ID `%s`", ctx.Param("patternId")), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (a *Actions) ListPatterns(ctx *gin.Context) {
	if !a.storeOrFail(ctx) {
		return
	}
	limit, ok := unireq.GetURLIntArgOrFail(ctx, "limit", store.DfltListLimit)
	if !ok {
		return
	}
	offset, ok := unireq.GetURLIntArgOrFail(ctx, "offset", 0)
	if !ok {
		return
	}
	ans, err := a.patterns.List(
		ctx.Request.Context(),
		store.ListFilter{
			CorpusID:      ctx.Query("corpusId"),
			Token:         ctx.Query("token"),
			AncestorLemma: ctx.Query("lemma"),
			Limit:         limit,
			Offset:        offset,
		},
	)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

func (a *Actions) GetPattern(ctx *gin.Context) {
	if !a.storeOrFail(ctx) {
		return
	}
	id, ok := patternIDOrFail(ctx)
	if !ok {
		return
	}
	ans, err := a.patterns.Get(ctx.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusNotFound)
		return

	} else if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

func (a *Actions) CreatePattern(ctx *gin.Context) {
	if !a.storeOrFail(ctx) {
		return
	}
	var args patternRecordArgs
	if !decodeBodyOrFail(ctx, &args) {
		return
	}
	if err := args.Pattern.Validate(); err != nil {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("invalid pattern: %w", err), http.StatusBadRequest)
		return
	}
	if args.CorpusID != "" && a.corpora.Resources.Get(args.CorpusID) == nil {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("corpus %s not found", args.CorpusID), http.StatusBadRequest)
		return
	}
	id, isNew, err := a.patterns.Save(
		ctx.Request.Context(),
		store.PatternRecord{
			CorpusID: args.CorpusID,
			Token1:   args.Token1,
			Token2:   args.Token2,
			Pattern:  args.Pattern,
		},
	)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, savedPatternResponse{ID: id, IsNew: isNew})
}

func (a *Actions) DeletePattern(ctx *gin.Context) {
	if !a.storeOrFail(ctx) {
		return
	}
	id, ok := patternIDOrFail(ctx)
	if !ok {
		return
	}
	err := a.patterns.Delete(ctx.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusNotFound)
		return

	} else if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, map[string]any{"ok": true})
}
