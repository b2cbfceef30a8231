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
	"net/http"

	"relquery/corpus"
	"relquery/deptree"
	"relquery/pattern"
	"relquery/relation"
	"relquery/results"

	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

type sentenceArgs struct {

	// Tokens are tokens of a parsed sentence. The `head` of each
	// token is a zero based index of its parent, root has -1.
	Tokens []deptree.Token `json:"tokens"`
}

type relationshipArgs struct {
	Sentence sentenceArgs `json:"sentence"`
	Token1   int          `json:"token1"`
	Token2   int          `json:"token2"`
}

type matchArgs struct {
	Pattern  pattern.Pattern `json:"pattern"`
	Sentence sentenceArgs    `json:"sentence"`
}

func decodeBodyOrFail(ctx *gin.Context, v any) bool {
	if err := sonic.ConfigDefault.NewDecoder(ctx.Request.Body).Decode(v); err != nil {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("failed to decode request body: %w", err), http.StatusBadRequest)
		return false
	}
	return true
}

func sentenceOrFail(ctx *gin.Context, args sentenceArgs) (*deptree.Sentence, bool) {
	sent, err := deptree.NewSentence(args.Tokens)
	if err != nil {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("invalid sentence: %w", err), http.StatusBadRequest)
		return nil, false
	}
	return sent, true
}

// Relationship godoc
// @Summary      Relationship
// @Description  Find a syntactic relationship between two tokens of a parsed sentence and extract its pattern.
// @Accept       json
// @Produce      json
// @Success      200 {object} results.RelationshipItem
// @Router       /relationship [post]
func (a *Actions) Relationship(ctx *gin.Context) {
	var args relationshipArgs
	if !decodeBodyOrFail(ctx, &args) {
		return
	}
	sent, ok := sentenceOrFail(ctx, args.Sentence)
	if !ok {
		return
	}
	for _, idx := range []int{args.Token1, args.Token2} {
		if idx < 0 || idx >= sent.Len() {
			uniresp.RespondWithErrorJSON(
				ctx, fmt.Errorf("token index %d out of range", idx), http.StatusBadRequest)
			return
		}
	}
	rel, err := relation.Find(sent.At(args.Token1), sent.At(args.Token2))
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusUnprocessableEntity)
		return
	}
	uniresp.WriteJSONResponse(
		ctx.Writer,
		results.NewRelationshipItem(corpus.FoundRelationship{
			Sentence:     sent,
			Relationship: rel,
			Pattern:      pattern.Extract(rel),
		}),
	)
}

// Match godoc
// @Summary      Match
// @Description  Count occurrences of a pattern in a parsed sentence.
// @Accept       json
// @Produce      json
// @Success      200 {object} results.SentenceMatches
// @Router       /match [post]
func (a *Actions) Match(ctx *gin.Context) {
	var args matchArgs
	if !decodeBodyOrFail(ctx, &args) {
		return
	}
	if err := args.Pattern.Validate(); err != nil {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("invalid pattern: %w", err), http.StatusBadRequest)
		return
	}
	sent, ok := sentenceOrFail(ctx, args.Sentence)
	if !ok {
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, results.NewSentenceMatches(args.Pattern, sent))
}
