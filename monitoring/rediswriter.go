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
	"relquery/results"

	"github.com/rs/zerolog/log"
)

type jobLogStorage interface {
	LogJob(jobLog results.JobLog) error
}

// RedisStatusWriter stores job log records to Redis
// so the API server can report load of all the workers.
type RedisStatusWriter struct {
	storage jobLogStorage
}

func (sw *RedisStatusWriter) Write(rec results.JobLog) {
	if err := sw.storage.LogJob(rec); err != nil {
		log.Error().Err(err).Str("workerId", rec.WorkerID).Msg("failed to write job log")
	}
}

func NewRedisStatusWriter(storage jobLogStorage) *RedisStatusWriter {
	return &RedisStatusWriter{storage: storage}
}
