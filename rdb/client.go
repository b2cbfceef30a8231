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

package rdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"relquery/merror"
	"relquery/results"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	MsgNewQuery                = "newQuery"
	DefaultQueueKey            = "relqueryQueue"
	DefaultResultChannelPrefix = "relqueryResults"
	DefaultQueryChannel        = "relqueryQueries"
	DefaultResultExpiration    = 10 * time.Minute
	JobLogKey                  = "relqueryJobLog"
	MaxJobLogSize              = 1000
)

var (
	ErrorEmptyQueue = errors.New("no queries in the queue")
)

// Adapter provides job queue operations based on Redis lists
// and pub/sub. A query is pushed to a list and an announcement
// is published to the query channel. A worker picks the query,
// stores the result under the query's result channel name and
// publishes the name to the channel.
type Adapter struct {
	ctx                 context.Context
	c                   *redis.Client
	channelQuery        string
	channelResultPrefix string
	queryAnswerTimeout  time.Duration
	cachePath           string
}

func (a *Adapter) TestConnection(timeout time.Duration) error {
	tick := time.NewTicker(2 * time.Second)
	defer tick.Stop()
	timeoutCh := time.After(timeout)
	for {
		select {
		case <-timeoutCh:
			return fmt.Errorf("failed to connect to Redis: timeout")
		case <-tick.C:
			log.Info().Msg("waiting for Redis server...")
			_, err := a.c.Ping(a.ctx).Result()
			if err != nil {
				log.Error().Err(err).Msg("failed to ping Redis server")

			} else {
				log.Info().Msg("Redis server is ready")
				return nil
			}
		}
	}
}

// SomeoneListens tests whether a client still waits for the query result
func (a *Adapter) SomeoneListens(query Query) (bool, error) {
	cmd := a.c.PubSubNumSub(a.ctx, query.Channel)
	if cmd.Err() != nil {
		return false, fmt.Errorf("failed to check channel listeners: %w", cmd.Err())
	}
	return cmd.Val()[query.Channel] > 0, nil
}

func (a *Adapter) errorResult(fn string, err error) *WorkerResult {
	ans, err2 := CreateWorkerResult(&results.ErrorResult{Func: fn, Error: results.NewJobError(err)})
	if err2 != nil {
		log.Error().Err(err2).Msg("failed to create error result")
		return &WorkerResult{ResultType: results.ResultTypeError}
	}
	return ans
}

// PublishQuery publishes a new query and returns a channel
// the result will be sent through. In case no result arrives
// within the configured time, an error result is sent.
func (a *Adapter) PublishQuery(query Query) (<-chan *WorkerResult, error) {
	query.Channel = fmt.Sprintf("%s:%s", a.channelResultPrefix, uuid.New().String())
	log.Debug().
		Str("channel", query.Channel).
		Str("func", query.Func).
		Msg("publishing query")

	msg, err := query.ToJSON()
	if err != nil {
		return nil, err
	}
	// we must subscribe before the query is published
	// so we cannot miss the answer
	sub := a.c.Subscribe(a.ctx, query.Channel)
	if _, err := sub.Receive(a.ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to the result channel: %w", err)
	}
	if err := a.c.LPush(a.ctx, DefaultQueueKey, msg).Err(); err != nil {
		sub.Close()
		return nil, err
	}
	ans := make(chan *WorkerResult, 1)

	go func() {
		defer func() {
			sub.Close()
			close(ans)
		}()
		select {
		case item := <-sub.Channel():
			cmd := a.c.Get(a.ctx, item.Payload)
			if cmd.Err() != nil {
				ans <- a.errorResult(query.Func, cmd.Err())
				return
			}
			result := new(WorkerResult)
			if err := sonic.Unmarshal([]byte(cmd.Val()), result); err != nil {
				ans <- a.errorResult(query.Func, err)
				return
			}
			ans <- result
		case <-time.After(a.queryAnswerTimeout):
			ans <- a.errorResult(
				query.Func,
				merror.TimeoutError{Msg: fmt.Sprintf("no result for %s within %v", query.Func, a.queryAnswerTimeout)},
			)
		}
	}()
	return ans, a.c.Publish(a.ctx, a.channelQuery, MsgNewQuery).Err()
}

// DequeueQuery takes the oldest query from the queue.
// In case the queue is empty, ErrorEmptyQueue is returned.
func (a *Adapter) DequeueQuery() (Query, error) {
	cmd := a.c.RPop(a.ctx, DefaultQueueKey)
	if errors.Is(cmd.Err(), redis.Nil) {
		return Query{}, ErrorEmptyQueue
	}
	if cmd.Err() != nil {
		return Query{}, fmt.Errorf("failed to dequeue query: %w", cmd.Err())
	}
	q, err := DecodeQuery(cmd.Val())
	if err != nil {
		return Query{}, fmt.Errorf("failed to deserialize query: %w", err)
	}
	return q, nil
}

func (a *Adapter) PublishResult(channelName string, value *WorkerResult) error {
	log.Debug().
		Str("channel", channelName).
		Str("resultType", value.ResultType.String()).
		Msg("publishing result")
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}
	if err := a.c.Set(a.ctx, channelName, string(data), DefaultResultExpiration).Err(); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return a.c.Publish(a.ctx, channelName, channelName).Err()
}

// Subscribe returns a channel announcing new queries
func (a *Adapter) Subscribe() <-chan *redis.Message {
	sub := a.c.Subscribe(a.ctx, a.channelQuery)
	return sub.Channel()
}

// LogJob stores a job log record. Only MaxJobLogSize
// most recent records are kept.
func (a *Adapter) LogJob(jobLog results.JobLog) error {
	data, err := jobLog.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize job log: %w", err)
	}
	pipe := a.c.TxPipeline()
	pipe.LPush(a.ctx, JobLogKey, data)
	pipe.LTrim(a.ctx, JobLogKey, 0, MaxJobLogSize-1)
	if _, err := pipe.Exec(a.ctx); err != nil {
		return fmt.Errorf("failed to store job log: %w", err)
	}
	return nil
}

// RecentJobLogs returns at most `num` most recent job log records
func (a *Adapter) RecentJobLogs(num int) ([]results.JobLog, error) {
	items, err := a.c.LRange(a.ctx, JobLogKey, 0, int64(num)-1).Result()
	if err != nil {
		return []results.JobLog{}, fmt.Errorf("failed to load job logs: %w", err)
	}
	ans := make([]results.JobLog, 0, len(items))
	for _, item := range items {
		var jl results.JobLog
		if err := sonic.UnmarshalString(item, &jl); err != nil {
			log.Warn().Err(err).Msg("skipping invalid job log record")
			continue
		}
		ans = append(ans, jl)
	}
	return ans, nil
}

func (a *Adapter) Close() error {
	return a.c.Close()
}

func NewAdapter(conf *Conf) *Adapter {
	return &Adapter{
		c: redis.NewClient(&redis.Options{
			Addr:     conf.ServerInfo(),
			Password: conf.Password,
			DB:       conf.DB,
		}),
		ctx:                 context.Background(),
		channelQuery:        conf.ChannelQuery,
		channelResultPrefix: conf.ChannelResultPrefix,
		queryAnswerTimeout:  time.Duration(conf.QueryAnswerTimeoutSecs) * time.Second,
		cachePath:           conf.CachePath,
	}
}
