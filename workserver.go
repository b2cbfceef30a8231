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

package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"relquery/cnf"
	"relquery/monitoring"
	"relquery/rdb"
	"relquery/worker"

	"github.com/rs/zerolog/log"
)

func getWorkerID() (workerID string) {
	workerID = getEnv("WORKER_ID")
	if workerID == "" {
		workerID = strconv.Itoa(os.Getpid())
	}
	return
}

func runWorker(conf *cnf.Conf) {
	workerID := getWorkerID()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	radapter := rdb.NewAdapter(conf.Redis)
	err := radapter.TestConnection(redisConnectionTestTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	services := make([]service, 0, 4)
	statusWriters := []monitoring.StatusWriter{monitoring.NewRedisStatusWriter(radapter)}
	if conf.Monitoring.IsTimescaleEnabled() {
		tsWriter, err := monitoring.NewTimescaleDBWriter(
			ctx, *conf.Monitoring.DB, conf.TimezoneLocation())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize TimescaleDB status writer")
		}
		statusWriters = append(statusWriters, tsWriter)
		services = append(services, tsWriter)
		log.Info().Msg("TimescaleDB status writer enabled")
	}
	jobLogger := monitoring.NewWorkerJobLogger(statusWriters...)
	services = append(services, jobLogger)

	var wrk *worker.Worker
	patterns := openPatternStore(conf)
	ch := radapter.Subscribe()
	if patterns != nil {
		defer patterns.Close()
		wrk = worker.NewWorker(workerID, radapter, ch, conf.Corpora, patterns, jobLogger)

	} else {
		wrk = worker.NewWorker(workerID, radapter, ch, conf.Corpora, nil, jobLogger)
	}
	services = append(services, wrk)
	runServices(ctx, services)
	if err := radapter.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close Redis connection")
	}
}
