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
	"time"

	"relquery/results"

	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/collections"
)

type WorkerLoad struct {
	NumJobs       int
	TotalTimeSecs float64
	NumErrors     int
	FirstUpdate   time.Time
	LastUpdate    time.Time
	NumWorkers    int
}

// TotalSpan returns time span covered by the load info
func (wl WorkerLoad) TotalSpan() time.Duration {
	return wl.LastUpdate.Sub(wl.FirstUpdate)
}

func (wl WorkerLoad) AvgLoad() float64 {
	span := wl.TotalSpan().Seconds()
	if wl.TotalTimeSecs == 0 || span <= 0 || wl.NumWorkers == 0 {
		return 0
	}
	return wl.TotalTimeSecs / span / float64(wl.NumWorkers)
}

func (wl *WorkerLoad) add(rec results.JobLog) {
	if wl.FirstUpdate.IsZero() || rec.Begin.Before(wl.FirstUpdate) {
		wl.FirstUpdate = rec.Begin
	}
	if rec.End.After(wl.LastUpdate) {
		wl.LastUpdate = rec.End
	}
	if rec.HasError() {
		wl.NumErrors++
	}
	wl.NumJobs++
	wl.TotalTimeSecs += rec.End.Sub(rec.Begin).Seconds()
}

func (wl WorkerLoad) MarshalJSON() ([]byte, error) {
	var t0, t1 *time.Time
	if !wl.FirstUpdate.IsZero() {
		t0 = &wl.FirstUpdate
	}
	if !wl.LastUpdate.IsZero() {
		t1 = &wl.LastUpdate
	}
	return sonic.Marshal(
		struct {
			NumJobs       int        `json:"numJobs"`
			TotalTimeSecs float64    `json:"totalTimeSecs"`
			NumErrors     int        `json:"numErrors"`
			FirstUpdate   *time.Time `json:"firstUpdate,omitempty"`
			LastUpdate    *time.Time `json:"lastUpdate,omitempty"`
			NumWorkers    int        `json:"numWorkers"`
			AvgLoad       float64    `json:"avgLoad"`
		}{
			NumJobs:       wl.NumJobs,
			TotalTimeSecs: wl.TotalTimeSecs,
			NumErrors:     wl.NumErrors,
			FirstUpdate:   t0,
			LastUpdate:    t1,
			NumWorkers:    wl.NumWorkers,
			AvgLoad:       wl.AvgLoad(),
		},
	)
}

// ----

// WorkersLoad maps worker IDs to their loads
type WorkersLoad map[string]WorkerLoad

// SumLoad merges loads of all the workers
func (wl WorkersLoad) SumLoad() WorkerLoad {
	var ans WorkerLoad
	for _, v := range wl {
		if ans.FirstUpdate.IsZero() || v.FirstUpdate.Before(ans.FirstUpdate) {
			ans.FirstUpdate = v.FirstUpdate
		}
		if v.LastUpdate.After(ans.LastUpdate) {
			ans.LastUpdate = v.LastUpdate
		}
		ans.NumJobs += v.NumJobs
		ans.NumErrors += v.NumErrors
		ans.TotalTimeSecs += v.TotalTimeSecs
	}
	ans.NumWorkers = len(wl)
	return ans
}

func (wl WorkersLoad) cleanOldRecords(now time.Time) {
	for k, v := range wl {
		if now.Sub(v.LastUpdate) > StaleWorkerLoadTTL {
			delete(wl, k)
		}
	}
}

// LoadFromRecords calculates a total load of workers
// found in the provided job log records
func LoadFromRecords(records []results.JobLog) WorkerLoad {
	var ans WorkerLoad
	workers := collections.NewSet[string]()
	for _, rec := range records {
		workers.Add(rec.WorkerID)
		ans.add(rec)
	}
	ans.NumWorkers = workers.Size()
	return ans
}

// WorkerLoadFromRecords calculates a load of a single worker.
// The returned flag tells whether any record of the worker was found.
func WorkerLoadFromRecords(records []results.JobLog, workerID string) (WorkerLoad, bool) {
	recs := collections.SliceFilter(
		records,
		func(v results.JobLog, i int) bool {
			return v.WorkerID == workerID
		},
	)
	if len(recs) == 0 {
		return WorkerLoad{}, false
	}
	return LoadFromRecords(recs), true
}
