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
	"context"
	"errors"
	"fmt"
	"net/http"

	"relquery/corpus"
	"relquery/merror"
	"relquery/rdb"
	"relquery/results"
	"relquery/store"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type jobQueue interface {
	PublishQuery(query rdb.Query) (<-chan *rdb.WorkerResult, error)
	CacheResult(fn rdb.QueryFunc, query rdb.Query) (<-chan *rdb.WorkerResult, error)
}

type patternStore interface {
	Save(ctx context.Context, rec store.PatternRecord) (int64, bool, error)
	Get(ctx context.Context, id int64) (store.PatternRecord, error)
	List(ctx context.Context, filter store.ListFilter) ([]store.PatternRecord, error)
	Delete(ctx context.Context, id int64) error
}

type Actions struct {
	corpora  *corpus.CorporaSetup
	queue    jobQueue
	patterns patternStore
}

func errStatus(err error) int {
	var timeoutErr merror.TimeoutError
	if merror.IsInputError(err) {
		return http.StatusBadRequest

	} else if errors.As(err, &timeoutErr) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (a *Actions) corpusOrFail(ctx *gin.Context) (*corpus.CorpusSetup, bool) {
	corpusID := ctx.Param("corpusId")
	corp := a.corpora.Resources.Get(corpusID)
	if corp == nil {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("corpus %s not found", corpusID), http.StatusNotFound)
		return nil, false
	}
	return corp, true
}

// awaitResult waits for a worker result and deserializes it into
// the expected type. In case of an error, the error response is
// written and false is returned.
func awaitResult[T results.SerializableResult](
	ctx *gin.Context,
	wait <-chan *rdb.WorkerResult,
	ans T,
) (T, bool) {
	var rawResult *rdb.WorkerResult
	select {
	case rawResult = <-wait:
	case <-ctx.Request.Context().Done():
		log.Warn().Msg("client closed connection before the result arrived")
		return ans, false
	}
	if rawResult == nil {
		uniresp.RespondWithErrorJSON(
			ctx, errors.New("no result from worker"), http.StatusInternalServerError)
		return ans, false
	}
	ans, err := rdb.DeserializeResult(rawResult, ans)
	if err != nil {
		status := errStatus(err)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Str("resultType", rawResult.ResultType.String()).Msg("worker failed")
		}
		uniresp.RespondWithErrorJSON(ctx, err, status)
		return ans, false
	}
	return ans, true
}

// NewActions creates handlers for the HTTP API. The `patterns` store
// is optional. Pattern store actions respond with an error if it is nil.
func NewActions(
	corpora *corpus.CorporaSetup,
	queue jobQueue,
	patterns patternStore,
) *Actions {
	return &Actions{
		corpora:  corpora,
		queue:    queue,
		patterns: patterns,
	}
}
