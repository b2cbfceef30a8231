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
	"fmt"
	"math/rand"
	"time"

	"relquery/corpus"
	"relquery/merror"
	"relquery/rdb"
	"relquery/results"
	"relquery/store"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTickerInterval = 2 * time.Second
)

type jobLogger interface {
	Log(rec results.JobLog)
}

type queue interface {
	DequeueQuery() (rdb.Query, error)
	SomeoneListens(query rdb.Query) (bool, error)
	PublishResult(channelName string, value *rdb.WorkerResult) error
}

type patternStorage interface {
	SaveAll(ctx context.Context, recs []store.PatternRecord) (int, error)
}

type Worker struct {
	ID         string
	messages   <-chan *redis.Message
	queue      queue
	corpora    *corpus.CorporaSetup
	patterns   patternStorage
	ticker     *time.Ticker
	jobLogger  jobLogger
	currJobLog *results.JobLog
	done       chan struct{}
}

func (w *Worker) publishResult(res results.SerializableResult, channel string) error {
	ans, err := rdb.CreateWorkerResult(res)
	if err != nil {
		return err
	}
	if w.currJobLog != nil {
		w.currJobLog.End = time.Now()
		if res.Err() != nil {
			w.currJobLog.Error = res.Err().Error()
		}
		w.jobLogger.Log(*w.currJobLog)
		w.currJobLog = nil
	}
	return w.queue.PublishResult(channel, ans)
}

func (w *Worker) publishError(query rdb.Query, err error) error {
	return w.publishResult(
		&results.ErrorResult{Func: query.Func, Error: results.NewJobError(err)},
		query.Channel,
	)
}

func (w *Worker) runQueryProtected(ctx context.Context, query rdb.Query) (ansErr error) {
	defer func() {
		if r := recover(); r != nil {
			ansErr = merror.PanicValueToErr(r)
		}
	}()
	var ans results.SerializableResult
	switch query.Func {
	case rdb.FuncFindRelationships:
		var args rdb.RelationshipsArgs
		if err := query.DecodeArgs(&args); err != nil {
			return w.publishError(query, merror.InputError{Msg: err.Error()})
		}
		ans = w.findRelationships(ctx, args)
	case rdb.FuncCountMatches:
		var args rdb.MatchArgs
		if err := query.DecodeArgs(&args); err != nil {
			return w.publishError(query, merror.InputError{Msg: err.Error()})
		}
		ans = w.countMatches(ctx, args)
	default:
		return w.publishError(
			query,
			merror.InputError{Msg: fmt.Sprintf("unknown query function: %s", query.Func)},
		)
	}
	if ans.Err() != nil {
		// failed jobs are always published as error results so that
		// consumers (and the result cache) can tell them by type
		ans = &results.ErrorResult{Func: query.Func, Error: results.NewJobError(ans.Err())}
	}
	if err := w.publishResult(ans, query.Channel); err != nil {
		if err2 := w.publishError(query, err); err2 != nil {
			log.Error().Err(err2).Msg("failed to publish general publishing error")
		}
		return err
	}
	return nil
}

func (w *Worker) tryNextQuery(ctx context.Context) error {
	time.Sleep(time.Duration(rand.Intn(40)) * time.Millisecond)
	query, err := w.queue.DequeueQuery()
	if err == rdb.ErrorEmptyQueue {
		return nil

	} else if err != nil {
		return err
	}
	log.Debug().
		Str("channel", query.Channel).
		Str("func", query.Func).
		Msg("received query")

	isActive, err := w.queue.SomeoneListens(query)
	if err != nil {
		return err
	}
	if !isActive {
		log.Warn().
			Str("func", query.Func).
			Str("channel", query.Channel).
			Msg("worker found an inactive query")
		return nil
	}

	w.currJobLog = &results.JobLog{
		WorkerID: w.ID,
		Func:     query.Func,
		Begin:    time.Now(),
	}

	err = w.runQueryProtected(ctx, query)
	var rcvErr merror.RecoveredError
	if errors.As(err, &rcvErr) {
		log.Error().Err(err).Str("func", query.Func).Msg("worker panicked")
		return w.publishError(
			query,
			merror.InternalError{Msg: fmt.Sprintf("worker panicked: %s", rcvErr.Error())},
		)
	}
	return err
}

func (w *Worker) listen(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-w.ticker.C:
			if err := w.tryNextQuery(ctx); err != nil {
				log.Error().Err(err).Msg("failed to process query")
			}
		case <-ctx.Done():
			log.Info().Msg("worker exiting")
			return
		case msg, ok := <-w.messages:
			if !ok {
				log.Warn().Msg("query channel closed, worker exiting")
				return
			}
			if msg.Payload == rdb.MsgNewQuery {
				if err := w.tryNextQuery(ctx); err != nil {
					log.Error().Err(err).Msg("failed to process query")
				}
			}
		}
	}
}

func (w *Worker) Start(ctx context.Context) {
	log.Info().Str("workerId", w.ID).Msg("starting worker")
	go w.listen(ctx)
}

func (w *Worker) Stop(ctx context.Context) error {
	w.ticker.Stop()
	select {
	case <-w.done:
		log.Info().Str("workerId", w.ID).Msg("worker stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker %s did not stop in time: %w", w.ID, ctx.Err())
	}
}

// NewWorker creates a new worker. The `patterns` storage is optional.
func NewWorker(
	workerID string,
	queue queue,
	messages <-chan *redis.Message,
	corpora *corpus.CorporaSetup,
	patterns patternStorage,
	jobLogger jobLogger,
) *Worker {
	return &Worker{
		ID:        workerID,
		queue:     queue,
		messages:  messages,
		corpora:   corpora,
		patterns:  patterns,
		ticker:    time.NewTicker(DefaultTickerInterval),
		jobLogger: jobLogger,
		done:      make(chan struct{}),
	}
}
