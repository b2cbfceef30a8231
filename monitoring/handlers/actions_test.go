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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"relquery/results"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	records []results.JobLog
	err     error
	lastNum int
}

func (s *fakeSource) RecentJobLogs(num int) ([]results.JobLog, error) {
	s.lastNum = num
	return s.records, s.err
}

func mkEngine(src *fakeSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	actions := NewActions(src)
	engine := gin.New()
	engine.GET("/monitoring/workers-load", actions.WorkersLoad)
	engine.GET("/monitoring/workers-load/:workerId", actions.SingleWorkerLoad)
	engine.GET("/monitoring/recent-records", actions.RecentRecords)
	return engine
}

func doGet(engine *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	engine.ServeHTTP(w, req)
	return w
}

func mkSource() *fakeSource {
	begin := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &fakeSource{
		records: []results.JobLog{
			{WorkerID: "w1", Func: "countMatches", Begin: begin, End: begin.Add(2 * time.Second)},
			{WorkerID: "w2", Func: "findRelationships", Begin: begin, End: begin.Add(4 * time.Second), Error: "failed"},
		},
	}
}

func TestWorkersLoad(t *testing.T) {
	src := mkSource()
	w := doGet(mkEngine(src), "/monitoring/workers-load")
	require.Equal(t, http.StatusOK, w.Code)
	var ans map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &ans))
	assert.Equal(t, 2.0, ans["numJobs"])
	assert.Equal(t, 1.0, ans["numErrors"])
	assert.Equal(t, 2.0, ans["numWorkers"])
	assert.Equal(t, numRecentRecords, src.lastNum)
}

func TestWorkersLoadTotalSpan(t *testing.T) {
	src := mkSource()
	w := doGet(mkEngine(src), "/monitoring/workers-load?span=total")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Greater(t, src.lastNum, numRecentRecords)
}

func TestWorkersLoadInvalidSpan(t *testing.T) {
	w := doGet(mkEngine(mkSource()), "/monitoring/workers-load?span=foo")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkersLoadSourceError(t *testing.T) {
	w := doGet(mkEngine(&fakeSource{err: errors.New("redis down")}), "/monitoring/workers-load")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSingleWorkerLoad(t *testing.T) {
	engine := mkEngine(mkSource())
	w := doGet(engine, "/monitoring/workers-load/w2")
	require.Equal(t, http.StatusOK, w.Code)
	var ans map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &ans))
	assert.Equal(t, 1.0, ans["numErrors"])

	w = doGet(engine, "/monitoring/workers-load/w9")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecentRecords(t *testing.T) {
	w := doGet(mkEngine(mkSource()), "/monitoring/recent-records")
	require.Equal(t, http.StatusOK, w.Code)
	var ans []results.JobLog
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &ans))
	require.Len(t, ans, 2)
	assert.Equal(t, "w2", ans[1].WorkerID)
}
