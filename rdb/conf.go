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
	"fmt"

	"github.com/rs/zerolog/log"
)

const (
	DfltPort                   = 6379
	DfltQueryAnswerTimeoutSecs = 120
)

type Conf struct {
	Host                string `json:"host"`
	Port                int    `json:"port"`
	DB                  int    `json:"db"`
	Password            string `json:"password"`
	ChannelQuery        string `json:"channelQuery"`
	ChannelResultPrefix string `json:"channelResultPrefix"`

	// QueryAnswerTimeoutSecs specifies how long a client waits
	// for a worker to process a query
	QueryAnswerTimeoutSecs int `json:"queryAnswerTimeoutSecs"`

	// CachePath is an optional directory where results of
	// expensive jobs are cached. Empty value disables caching.
	CachePath string `json:"cachePath"`
}

func (conf *Conf) ServerInfo() string {
	return fmt.Sprintf("%s:%d", conf.Host, conf.Port)
}

func (conf *Conf) ValidateAndDefaults() error {
	if conf == nil {
		return fmt.Errorf("missing `redis` section")
	}
	if conf.Host == "" {
		return fmt.Errorf("missing Redis host")
	}
	if conf.Port == 0 {
		conf.Port = DfltPort
		log.Warn().
			Int("value", conf.Port).
			Msg("Redis port not specified, using default")
	}
	if conf.ChannelQuery == "" {
		conf.ChannelQuery = DefaultQueryChannel
		log.Warn().
			Str("channel", conf.ChannelQuery).
			Msg("Redis channel for queries not specified, using default")
	}
	if conf.ChannelResultPrefix == "" {
		conf.ChannelResultPrefix = DefaultResultChannelPrefix
		log.Warn().
			Str("channel", conf.ChannelResultPrefix).
			Msg("Redis channel for results not specified, using default")
	}
	if conf.QueryAnswerTimeoutSecs <= 0 {
		conf.QueryAnswerTimeoutSecs = DfltQueryAnswerTimeoutSecs
		log.Warn().
			Int("value", conf.QueryAnswerTimeoutSecs).
			Msg("queryAnswerTimeoutSecs not specified, using default")
	}
	return nil
}
