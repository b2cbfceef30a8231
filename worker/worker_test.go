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
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"relquery/corpus"
	"relquery/merror"
	"relquery/pattern"
	"relquery/rdb"
	"relquery/results"
	"relquery/store"
	"relquery/vert"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVert = `<doc>
<s id="s1">
Balderton	Balderton	PROPN	nsubj	+1
invests	invest	VERB	ROOT	0
in	in	ADP	prep	-1
startups	startup	NOUN	pobj	-1
</s>
<s id="s2">
Banks	bank	NOUN	nsubj	+1
raise	raise	VERB	ROOT	0
funds	fund	NOUN	dobj	-1
</s>
</doc>
`

type fakeQueue struct {
	mu        sync.Mutex
	queries   []rdb.Query
	inactive  map[string]bool
	published map[string]*rdb.WorkerResult
}

func (q *fakeQueue) DequeueQuery() (rdb.Query, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.queries) == 0 {
		return rdb.Query{}, rdb.ErrorEmptyQueue
	}
	ans := q.queries[0]
	q.queries = q.queries[1:]
	return ans, nil
}

func (q *fakeQueue) SomeoneListens(query rdb.Query) (bool, error) {
	return !q.inactive[query.Channel], nil
}

func (q *fakeQueue) PublishResult(channelName string, value *rdb.WorkerResult) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published[channelName] = value
	return nil
}

func (q *fakeQueue) result(channel string) *rdb.WorkerResult {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.published[channel]
}

type memLogger struct {
	records []results.JobLog
}

func (l *memLogger) Log(rec results.JobLog) {
	l.records = append(l.records, rec)
}

type fakePatternStorage struct {
	recs []store.PatternRecord
	err  error
}

func (s *fakePatternStorage) SaveAll(ctx context.Context, recs []store.PatternRecord) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.recs = append(s.recs, recs...)
	return len(recs), nil
}

func mkCorpora(t *testing.T) *corpus.CorporaSetup {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.vert"), []byte(testVert), 0644))
	setup := &corpus.CorporaSetup{
		Resources: corpus.Resources{
			"news": &corpus.CorpusSetup{
				DataDir: dir,
				Vertical: &vert.Setup{
					LemmaCol:  1,
					PosCol:    2,
					DeprelCol: 3,
					ParentCol: 4,
				},
			},
		},
	}
	require.NoError(t, setup.ValidateAndDefaults("corpora"))
	return setup
}

func mkWorker(t *testing.T, patterns patternStorage, queries ...rdb.Query) (*Worker, *fakeQueue, *memLogger) {
	q := &fakeQueue{
		queries:   queries,
		inactive:  make(map[string]bool),
		published: make(map[string]*rdb.WorkerResult),
	}
	logger := &memLogger{}
	w := NewWorker("w1", q, make(chan *redis.Message), mkCorpora(t), patterns, logger)
	t.Cleanup(w.ticker.Stop)
	return w, q, logger
}

func mkQuery(t *testing.T, channel, fn string, args any) rdb.Query {
	q, err := rdb.NewQuery(fn, args)
	require.NoError(t, err)
	q.Channel = channel
	return q
}

func TestFindRelationshipsJob(t *testing.T) {
	storage := &fakePatternStorage{}
	w, q, logger := mkWorker(
		t,
		storage,
		mkQuery(t, "ch1", rdb.FuncFindRelationships, rdb.RelationshipsArgs{
			CorpusID:      "news",
			Entity1:       "lower=balderton",
			Entity2:       "lemma=startup",
			StorePatterns: true,
		}),
	)
	require.NoError(t, w.tryNextQuery(context.Background()))

	wr := q.result("ch1")
	require.NotNil(t, wr)
	res, err := rdb.DeserializeResult(wr, &results.Relationships{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "invest", res.Items[0].Pattern.CommonAncestor.Lemma)
	assert.Equal(t, 1, res.NumStoredPatterns)
	require.Len(t, storage.recs, 1)
	assert.Equal(t, "balderton", storage.recs[0].Token1)
	assert.Equal(t, "startups", storage.recs[0].Token2)
	assert.Equal(t, "news", storage.recs[0].CorpusID)

	require.Len(t, logger.records, 1)
	assert.Equal(t, "w1", logger.records[0].WorkerID)
	assert.Equal(t, rdb.FuncFindRelationships, logger.records[0].Func)
	assert.False(t, logger.records[0].HasError())
}

func TestFindRelationshipsJobStoreDisabled(t *testing.T) {
	w, q, _ := mkWorker(
		t,
		nil,
		mkQuery(t, "ch1", rdb.FuncFindRelationships, rdb.RelationshipsArgs{
			CorpusID:      "news",
			Entity1:       "lower=balderton",
			Entity2:       "lemma=startup",
			StorePatterns: true,
		}),
	)
	require.NoError(t, w.tryNextQuery(context.Background()))
	_, err := rdb.DeserializeResult(q.result("ch1"), &results.Relationships{})
	assert.True(t, merror.IsInputError(err))
}

func TestFindRelationshipsJobStoreFails(t *testing.T) {
	w, q, logger := mkWorker(
		t,
		&fakePatternStorage{err: errors.New("db is down")},
		mkQuery(t, "ch1", rdb.FuncFindRelationships, rdb.RelationshipsArgs{
			CorpusID:      "news",
			Entity1:       "lower=balderton",
			Entity2:       "lemma=startup",
			StorePatterns: true,
		}),
	)
	require.NoError(t, w.tryNextQuery(context.Background()))
	wr := q.result("ch1")
	assert.Equal(t, results.ResultTypeError, wr.ResultType)
	_, err := rdb.DeserializeResult(wr, &results.Relationships{})
	assert.EqualError(t, err, "db is down")
	require.Len(t, logger.records, 1)
	assert.True(t, logger.records[0].HasError())
}

func TestCountMatchesJob(t *testing.T) {
	raise := pattern.Pattern{
		CommonAncestor: pattern.NodeSpec{PoS: "VERB", Lemma: "raise"},
		Branch1:        pattern.Branch{{PoS: "NOUN", Deprel: "nsubj"}},
		Branch2:        pattern.Branch{{PoS: "NOUN", Deprel: "dobj"}},
	}
	w, q, _ := mkWorker(
		t,
		nil,
		mkQuery(t, "ch2", rdb.FuncCountMatches, rdb.MatchArgs{CorpusID: "news", Patterns: []pattern.Pattern{raise}}),
	)
	require.NoError(t, w.tryNextQuery(context.Background()))
	res, err := rdb.DeserializeResult(q.result("ch2"), &results.Matches{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalMatches())
	assert.Equal(t, 2, res.NumSentences)
	require.Len(t, res.Patterns[0].Examples, 1)
	assert.Equal(t, "s2", res.Patterns[0].Examples[0].Sentence.ID)
}

func TestUnknownCorpus(t *testing.T) {
	w, q, _ := mkWorker(
		t,
		nil,
		mkQuery(t, "ch3", rdb.FuncCountMatches, rdb.MatchArgs{CorpusID: "foo"}),
	)
	require.NoError(t, w.tryNextQuery(context.Background()))
	wr := q.result("ch3")
	require.NotNil(t, wr)
	assert.Equal(t, results.ResultTypeError, wr.ResultType)
	_, err := rdb.DeserializeResult(wr, &results.Matches{})
	assert.True(t, merror.IsInputError(err))
}

func TestUnknownFunction(t *testing.T) {
	w, q, _ := mkWorker(t, nil, rdb.Query{Channel: "ch4", Func: "foo"})
	require.NoError(t, w.tryNextQuery(context.Background()))
	wr := q.result("ch4")
	require.NotNil(t, wr)
	assert.Equal(t, results.ResultTypeError, wr.ResultType)
}

func TestInvalidArgs(t *testing.T) {
	w, q, _ := mkWorker(t, nil, rdb.Query{Channel: "ch5", Func: rdb.FuncCountMatches, Args: []byte("[")})
	require.NoError(t, w.tryNextQuery(context.Background()))
	_, err := rdb.DeserializeResult(q.result("ch5"), &results.Matches{})
	assert.True(t, merror.IsInputError(err))
}

func TestInactiveQueryIsSkipped(t *testing.T) {
	w, q, logger := mkWorker(
		t,
		nil,
		mkQuery(t, "ch6", rdb.FuncCountMatches, rdb.MatchArgs{CorpusID: "news"}),
	)
	q.inactive["ch6"] = true
	require.NoError(t, w.tryNextQuery(context.Background()))
	assert.Nil(t, q.result("ch6"))
	assert.Empty(t, logger.records)
}

func TestEmptyQueue(t *testing.T) {
	w, _, _ := mkWorker(t, nil)
	assert.NoError(t, w.tryNextQuery(context.Background()))
}

func TestStartStop(t *testing.T) {
	w, _, _ := mkWorker(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	assert.NoError(t, w.Stop(stopCtx))
}

func TestPatternRecords(t *testing.T) {
	res := &results.Relationships{
		CorpusID: "news",
		Items: []results.RelationshipItem{
			{
				Token1: results.TokenInfo{Word: "Banks"},
				Token2: results.TokenInfo{Word: "Funds"},
			},
		},
	}
	recs := PatternRecords(res)
	require.Len(t, recs, 1)
	assert.Equal(t, store.PatternRecord{CorpusID: "news", Token1: "banks", Token2: "funds"}, recs[0])
}
