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
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"relquery/corpus"
	"relquery/merror"
	"relquery/pattern"
	"relquery/rdb"
	"relquery/results"
	"relquery/store"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const raiseSentence = `{"tokens": [
	{"word": "Banks", "lemma": "bank", "pos": "NOUN", "dep": "nsubj", "head": 1},
	{"word": "raise", "lemma": "raise", "pos": "VERB", "dep": "ROOT", "head": -1},
	{"word": "funds", "lemma": "fund", "pos": "NOUN", "dep": "dobj", "head": 1}
]}`

const raisePattern = `{
	"common_ancestor": {"pos": "VERB", "lemma": "raise"},
	"branch1": [{"pos": "NOUN", "dep": "nsubj"}],
	"branch2": [{"pos": "NOUN", "dep": "dobj"}]
}`

type fakeQueue struct {
	result     *rdb.WorkerResult
	err        error
	queries    []rdb.Query
	numCached  int
	lastCached rdb.Query
}

func (q *fakeQueue) PublishQuery(query rdb.Query) (<-chan *rdb.WorkerResult, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.queries = append(q.queries, query)
	ans := make(chan *rdb.WorkerResult, 1)
	ans <- q.result
	close(ans)
	return ans, nil
}

func (q *fakeQueue) CacheResult(fn rdb.QueryFunc, query rdb.Query) (<-chan *rdb.WorkerResult, error) {
	q.numCached++
	q.lastCached = query
	return fn(query)
}

func mkResult(t *testing.T, value results.SerializableResult) *rdb.WorkerResult {
	ans, err := rdb.CreateWorkerResult(value)
	require.NoError(t, err)
	return ans
}

func mkEngine(t *testing.T, queue *fakeQueue, withStore bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	corpora := &corpus.CorporaSetup{
		Resources: corpus.Resources{"news": &corpus.CorpusSetup{ID: "news"}},
	}
	var actions *Actions
	if withStore {
		st, err := store.NewSQLStore(&store.Conf{
			Driver: store.DriverSQLite,
			Path:   filepath.Join(t.TempDir(), "patterns.db"),
		})
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
		actions = NewActions(corpora, queue, st)

	} else {
		actions = NewActions(corpora, queue, nil)
	}
	engine := gin.New()
	engine.POST("/relationship", actions.Relationship)
	engine.POST("/match", actions.Match)
	engine.GET("/corpus/:corpusId/relationships", actions.CorpusRelationships)
	engine.POST("/corpus/:corpusId/match", actions.CorpusMatch)
	engine.GET("/patterns", actions.ListPatterns)
	engine.POST("/patterns", actions.CreatePattern)
	engine.GET("/patterns/:patternId", actions.GetPattern)
	engine.DELETE("/patterns/:patternId", actions.DeletePattern)
	return engine
}

func doRequest(engine *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestRelationship(t *testing.T) {
	engine := mkEngine(t, &fakeQueue{}, false)
	w := doRequest(engine, http.MethodPost, "/relationship",
		`{"sentence": `+raiseSentence+`, "token1": 0, "token2": 2}`)
	require.Equal(t, http.StatusOK, w.Code)
	var ans results.RelationshipItem
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &ans))
	assert.Equal(t, "Banks raise funds", ans.Sentence.Text)
	assert.Equal(t, "raise", ans.CommonAncestors[0].Word)
	assert.Equal(t, pattern.NodeSpec{PoS: "VERB", Lemma: "raise"}, ans.Pattern.CommonAncestor)
	assert.Equal(t, pattern.Branch{{PoS: "NOUN", Deprel: "dobj"}}, ans.Pattern.Branch2)
}

func TestRelationshipInvalidInput(t *testing.T) {
	engine := mkEngine(t, &fakeQueue{}, false)
	w := doRequest(engine, http.MethodPost, "/relationship",
		`{"sentence": `+raiseSentence+`, "token1": 0, "token2": 3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(engine, http.MethodPost, "/relationship", `{"sentence": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(engine, http.MethodPost, "/relationship",
		`{"sentence": {"tokens": [{"word": "a", "head": -1}, {"word": "b", "head": -1}]}, "token1": 0, "token2": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatch(t *testing.T) {
	engine := mkEngine(t, &fakeQueue{}, false)
	w := doRequest(engine, http.MethodPost, "/match",
		`{"pattern": `+raisePattern+`, "sentence": `+raiseSentence+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	var ans results.SentenceMatches
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &ans))
	assert.Equal(t, 1, ans.Total)
	require.Len(t, ans.Forks, 1)
	assert.Equal(t, 1, ans.Forks[0].Fork.Index)
}

func TestMatchInvalidPattern(t *testing.T) {
	engine := mkEngine(t, &fakeQueue{}, false)
	w := doRequest(engine, http.MethodPost, "/match",
		`{"pattern": {}, "sentence": `+raiseSentence+`}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRelationshipPatternWithoutLemmaMatches(t *testing.T) {
	engine := mkEngine(t, &fakeQueue{}, false)
	sentence := `{"tokens": [
		{"word": "Banks", "lemma": "bank", "pos": "NOUN", "dep": "nsubj", "head": 1},
		{"word": "raise", "pos": "VERB", "dep": "ROOT", "head": -1},
		{"word": "funds", "lemma": "fund", "pos": "NOUN", "dep": "dobj", "head": 1}
	]}`
	w := doRequest(engine, http.MethodPost, "/relationship",
		`{"sentence": `+sentence+`, "token1": 0, "token2": 2}`)
	require.Equal(t, http.StatusOK, w.Code)
	var rel results.RelationshipItem
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &rel))
	assert.Equal(t, pattern.NodeSpec{PoS: "VERB"}, rel.Pattern.CommonAncestor)

	w = doRequest(engine, http.MethodPost, "/match",
		`{"pattern": `+string(mustJSON(t, rel.Pattern))+`, "sentence": `+sentence+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	var ans results.SentenceMatches
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &ans))
	assert.Equal(t, 1, ans.Total)
}

func TestCorpusRelationships(t *testing.T) {
	queue := &fakeQueue{}
	queue.result = mkResult(t, &results.Relationships{
		CorpusID:   "news",
		Entity1:    "lower: banks",
		ResultType: results.ResultTypeRelationships,
	})
	engine := mkEngine(t, queue, false)
	w := doRequest(engine, http.MethodGet, "/corpus/news/relationships?entity1=lower=banks&entity2=lemma:fund", "")
	require.Equal(t, http.StatusOK, w.Code)
	var ans results.Relationships
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &ans))
	assert.Equal(t, "lower: banks", ans.Entity1)

	require.Len(t, queue.queries, 1)
	assert.Equal(t, rdb.FuncFindRelationships, queue.queries[0].Func)
	var args rdb.RelationshipsArgs
	require.NoError(t, queue.queries[0].DecodeArgs(&args))
	assert.Equal(t, "news", args.CorpusID)
	assert.Equal(t, "lemma:fund", args.Entity2)
}

func TestCorpusRelationshipsErrors(t *testing.T) {
	engine := mkEngine(t, &fakeQueue{}, false)
	w := doRequest(engine, http.MethodGet, "/corpus/foo/relationships?entity1=lower=a&entity2=lower=b", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(engine, http.MethodGet, "/corpus/news/relationships?entity1=lower=a", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(engine, http.MethodGet, "/corpus/news/relationships?entity1=lower=a&entity2=lower=b&store=1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	engine = mkEngine(t, &fakeQueue{err: errors.New("redis down")}, false)
	w = doRequest(engine, http.MethodGet, "/corpus/news/relationships?entity1=lower=a&entity2=lower=b", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCorpusRelationshipsWorkerErrors(t *testing.T) {
	queue := &fakeQueue{
		result: mkResult(t, &results.ErrorResult{
			Error: results.NewJobError(merror.InputError{Msg: "invalid entity1"}),
		}),
	}
	engine := mkEngine(t, queue, false)
	w := doRequest(engine, http.MethodGet, "/corpus/news/relationships?entity1=lower=a&entity2=lower=b", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	queue.result = mkResult(t, &results.ErrorResult{
		Error: results.NewJobError(merror.TimeoutError{Msg: "no result"}),
	})
	w = doRequest(engine, http.MethodGet, "/corpus/news/relationships?entity1=lower=a&entity2=lower=b", "")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestCorpusMatch(t *testing.T) {
	queue := &fakeQueue{}
	queue.result = mkResult(t, &results.Matches{
		CorpusID:   "news",
		Patterns:   []results.PatternMatchesItem{{NumMatches: 3}},
		ResultType: results.ResultTypeMatches,
	})
	engine := mkEngine(t, queue, false)
	w := doRequest(engine, http.MethodPost, "/corpus/news/match", "["+raisePattern+"]")
	require.Equal(t, http.StatusOK, w.Code)
	var ans results.Matches
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &ans))
	assert.Equal(t, 3, ans.TotalMatches())
	assert.Equal(t, 1, queue.numCached)
	var args rdb.MatchArgs
	require.NoError(t, queue.lastCached.DecodeArgs(&args))
	require.Len(t, args.Patterns, 1)
	assert.Equal(t, "raise", args.Patterns[0].CommonAncestor.Lemma)
}

func TestCorpusMatchInvalid(t *testing.T) {
	engine := mkEngine(t, &fakeQueue{}, false)
	w := doRequest(engine, http.MethodPost, "/corpus/news/match", "[]")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doRequest(engine, http.MethodPost, "/corpus/news/match", `{"common_ancestor": {}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doRequest(engine, http.MethodPost, "/corpus/news/match", "{")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatternsCRUD(t *testing.T) {
	engine := mkEngine(t, &fakeQueue{}, true)
	body := `{"corpusId": "news", "token1": "banks", "token2": "funds", "pattern": ` + raisePattern + `}`
	w := doRequest(engine, http.MethodPost, "/patterns", body)
	require.Equal(t, http.StatusOK, w.Code)
	var saved savedPatternResponse
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &saved))
	assert.True(t, saved.IsNew)

	w = doRequest(engine, http.MethodPost, "/patterns", body)
	require.Equal(t, http.StatusOK, w.Code)
	var saved2 savedPatternResponse
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &saved2))
	assert.False(t, saved2.IsNew)
	assert.Equal(t, saved.ID, saved2.ID)

	w = doRequest(engine, http.MethodGet, "/patterns?corpusId=news&lemma=raise", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []store.PatternRecord
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "funds", list[0].Token2)

	idURL := "/patterns/" + strings.TrimSpace(string(mustJSON(t, saved.ID)))
	w = doRequest(engine, http.MethodGet, idURL, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(engine, http.MethodDelete, idURL, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(engine, http.MethodGet, idURL, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doRequest(engine, http.MethodDelete, idURL, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatternsInvalid(t *testing.T) {
	engine := mkEngine(t, &fakeQueue{}, true)
	w := doRequest(engine, http.MethodGet, "/patterns/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doRequest(engine, http.MethodPost, "/patterns", `{"corpusId": "foo", "pattern": `+raisePattern+`}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doRequest(engine, http.MethodPost, "/patterns", `{"pattern": {}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatternsStoreDisabled(t *testing.T) {
	engine := mkEngine(t, &fakeQueue{}, false)
	w := doRequest(engine, http.MethodGet, "/patterns", "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func mustJSON(t *testing.T, v any) []byte {
	data, err := sonic.Marshal(v)
	require.NoError(t, err)
	return data
}
