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
	"time"

	"relquery/results"

	"github.com/czcorpus/hltscl"
	"github.com/rs/zerolog/log"
)

/*
Expected tables:

create table relquery_operations_stats (
  "time" timestamp with time zone NOT NULL,
  func text,
  num_jobs int,
  num_errors int,
  duration_secs float
);
select create_hypertable('relquery_operations_stats', 'time');

*/

type Conf struct {
	DB *hltscl.PgConf `json:"db"`
}

func (conf *Conf) IsTimescaleEnabled() bool {
	return conf != nil && conf.DB != nil
}

// TimescaleDBWriter writes job statistics to a TimescaleDB table
type TimescaleDBWriter struct {
	tableWriter *hltscl.TableWriter
	opsDataCh   chan<- hltscl.Entry
	errCh       <-chan hltscl.WriteError
	location    *time.Location
}

func (sw *TimescaleDBWriter) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("about to close TimescaleDB status writer")
				return
			case err := <-sw.errCh:
				log.Error().
					Err(err.Err).
					Str("entry", err.Entry.String()).
					Str("table", "relquery_operations_stats").
					Msg("error writing data to TimescaleDB")
			}
		}
	}()
}

func (sw *TimescaleDBWriter) Stop(ctx context.Context) error {
	log.Warn().Msg("stopping TimescaleDB status writer")
	return nil
}

func (sw *TimescaleDBWriter) Write(item results.JobLog) {
	var numErr int
	if item.HasError() {
		numErr++
	}
	sw.opsDataCh <- *sw.tableWriter.NewEntry(item.End.In(sw.location)).
		Str("func", item.Func).
		Int("num_jobs", 1).
		Int("num_errors", numErr).
		Float("duration_secs", item.End.Sub(item.Begin).Seconds())
}

func NewTimescaleDBWriter(
	ctx context.Context,
	conf hltscl.PgConf,
	tz *time.Location,
) (*TimescaleDBWriter, error) {
	conn, err := hltscl.CreatePool(conf)
	if err != nil {
		return nil, err
	}
	twriter := hltscl.NewTableWriter(conn, "relquery_operations_stats", "time", tz)
	opsDataCh, errCh := twriter.Activate(
		ctx,
		hltscl.WithTimeout(20*time.Second),
	)
	return &TimescaleDBWriter{
		tableWriter: twriter,
		opsDataCh:   opsDataCh,
		errCh:       errCh,
		location:    tz,
	}, nil
}
