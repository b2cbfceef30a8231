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

	"relquery/monitoring"
	"relquery/rdb"
	"relquery/results"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

const (
	numRecentRecords = 100
)

type timeSpan string

func (ts timeSpan) Validate() error {
	if ts != spanTypeRecent && ts != spanTypeTotal {
		return fmt.Errorf("unknown time span `%s`", ts)
	}
	return nil
}

func (ts timeSpan) NumRecords() int {
	if ts == spanTypeTotal {
		return rdb.MaxJobLogSize
	}
	return numRecentRecords
}

const (
	spanTypeRecent timeSpan = "recent"
	spanTypeTotal  timeSpan = "total"
)

type jobLogSource interface {
	RecentJobLogs(num int) ([]results.JobLog, error)
}

type Actions struct {
	source jobLogSource
}

func (a *Actions) loadRecords(ctx *gin.Context) ([]results.JobLog, bool) {
	span := timeSpan(ctx.DefaultQuery("span", string(spanTypeRecent)))
	if err := span.Validate(); err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return nil, false
	}
	records, err := a.source.RecentJobLogs(span.NumRecords())
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return nil, false
	}
	return records, true
}

func (a *Actions) WorkersLoad(ctx *gin.Context) {
	records, ok := a.loadRecords(ctx)
	if !ok {
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, monitoring.LoadFromRecords(records))
}

func (a *Actions) SingleWorkerLoad(ctx *gin.Context) {
	records, ok := a.loadRecords(ctx)
	if !ok {
		return
	}
	ans, found := monitoring.WorkerLoadFromRecords(records, ctx.Param("workerId"))
	if !found {
		uniresp.RespondWithErrorJSON(ctx, monitoring.ErrWorkerNotFound, http.StatusNotFound)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

func (a *Actions) RecentRecords(ctx *gin.Context) {
	records, err := a.source.RecentJobLogs(numRecentRecords)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, records)
}

func NewActions(source jobLogSource) *Actions {
	return &Actions{source: source}
}
