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

package monitoring

import (
	"context"
	"errors"
	"sync"
	"time"

	"relquery/results"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/rs/zerolog/log"
)

const (
	StaleWorkerLoadTTL = time.Hour * 24
	cleanupInterval    = 10 * time.Minute
	recentLogSize      = 100
)

var (
	ErrWorkerNotFound = errors.New("worker not found")
)

// StatusWriter forwards job log records to a persistent storage
type StatusWriter interface {
	Write(rec results.JobLog)
}

// WorkerJobLogger keeps load statistics of workers running within
// the current process and passes each record to status writers.
type WorkerJobLogger struct {
	loadData      WorkersLoad
	dataLock      sync.RWMutex
	recentLog     *collections.CircularList[results.JobLog]
	statusWriters []StatusWriter
}

func (w *WorkerJobLogger) Log(rec results.JobLog) {
	w.dataLock.Lock()
	entry := w.loadData[rec.WorkerID]
	entry.add(rec)
	entry.NumWorkers = 1
	w.loadData[rec.WorkerID] = entry
	w.recentLog.Append(rec)
	w.dataLock.Unlock()
	for _, sw := range w.statusWriters {
		sw.Write(rec)
	}
}

func (w *WorkerJobLogger) TotalLoad() WorkerLoad {
	w.dataLock.RLock()
	defer w.dataLock.RUnlock()
	return w.loadData.SumLoad()
}

func (w *WorkerJobLogger) RecentRecords() []results.JobLog {
	w.dataLock.RLock()
	defer w.dataLock.RUnlock()
	ans := make([]results.JobLog, 0, w.recentLog.Len())
	w.recentLog.ForEach(func(i int, item results.JobLog) bool {
		ans = append(ans, item)
		return true
	})
	return ans
}

func (w *WorkerJobLogger) RecentLoad() WorkerLoad {
	return LoadFromRecords(w.RecentRecords())
}

// logSummary writes the total load along with the load
// derived from the most recent jobs (at most recentLogSize)
func (w *WorkerJobLogger) logSummary(msg string) {
	total := w.TotalLoad()
	recent := w.RecentLoad()
	log.Info().
		Int("numJobs", total.NumJobs).
		Int("numErrors", total.NumErrors).
		Float64("totalTimeSecs", total.TotalTimeSecs).
		Int("recentNumJobs", recent.NumJobs).
		Int("recentNumErrors", recent.NumErrors).
		Float64("recentAvgLoad", recent.AvgLoad()).
		Msg(msg)
}

func (w *WorkerJobLogger) Start(ctx context.Context) {
	log.Info().Msg("starting worker job logger")
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("requesting worker job logger stop")
				return
			case now := <-ticker.C:
				w.dataLock.Lock()
				w.loadData.cleanOldRecords(now)
				w.dataLock.Unlock()
				w.logSummary("worker load summary")
			}
		}
	}()
}

func (w *WorkerJobLogger) Stop(ctx context.Context) error {
	w.logSummary("shutting down worker job logger")
	return nil
}

func NewWorkerJobLogger(statusWriters ...StatusWriter) *WorkerJobLogger {
	return &WorkerJobLogger{
		loadData:      make(WorkersLoad),
		recentLog:     collections.NewCircularList[results.JobLog](recentLogSize),
		statusWriters: statusWriters,
	}
}
