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

package cnf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"relquery/corpus"
	"relquery/monitoring"
	"relquery/rdb"
	"relquery/store"

	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/rs/zerolog/log"
)

const (
	dfltServerReadTimeoutSecs  = 10
	dfltServerWriteTimeoutSecs = 30
	dfltListenPort             = 8989
	dfltAuthHeaderName         = "X-Api-Key"
	dfltTimeZone               = "Europe/Prague"
)

// Conf is a global configuration of the app
type Conf struct {
	ListenAddress          string               `json:"listenAddress"`
	ListenPort             int                  `json:"listenPort"`
	PublicURL              string               `json:"publicUrl"`
	ServerReadTimeoutSecs  int                  `json:"serverReadTimeoutSecs"`
	ServerWriteTimeoutSecs int                  `json:"serverWriteTimeoutSecs"`
	CorsAllowedOrigins     []string             `json:"corsAllowedOrigins"`
	AuthHeaderName         string               `json:"authHeaderName"`
	AuthTokens             []string             `json:"authTokens"`
	Corpora                *corpus.CorporaSetup `json:"corpora"`
	Redis                  *rdb.Conf            `json:"redis"`
	PatternStore           *store.Conf          `json:"patternStore"`
	Monitoring             *monitoring.Conf     `json:"monitoring"`
	LogFile                string               `json:"logFile"`
	LogLevel               logging.LogLevel     `json:"logLevel"`
	TimeZone               string               `json:"timeZone"`

	srcPath string
}

func (conf *Conf) TimezoneLocation() *time.Location {
	// the error can be ignored as ValidateAndDefaults
	// has already loaded the location
	loc, _ := time.LoadLocation(conf.TimeZone)
	return loc
}

// GetSourcePath returns an absolute path of a file
// the config was loaded from.
func (conf *Conf) GetSourcePath() string {
	if filepath.IsAbs(conf.srcPath) {
		return conf.srcPath
	}
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "[failed to get working dir]"
	}
	return filepath.Join(cwd, conf.srcPath)
}

// ServerAddress returns address:port the API server listens on
func (conf *Conf) ServerAddress() string {
	return fmt.Sprintf("%s:%d", conf.ListenAddress, conf.ListenPort)
}

func parseConfig(rawData []byte) (*Conf, error) {
	var conf Conf
	if err := sonic.Unmarshal(rawData, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func LoadConfig(path string) *Conf {
	if path == "" {
		log.Fatal().Msg("Cannot load config - path not specified")
	}
	rawData, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	conf, err := parseConfig(rawData)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	conf.srcPath = path
	return conf
}

func validateAndDefaults(conf *Conf) error {
	if conf.ListenPort == 0 {
		conf.ListenPort = dfltListenPort
		log.Warn().Int("value", dfltListenPort).Msg("listenPort not specified, using default")
	}
	if conf.ServerReadTimeoutSecs == 0 {
		conf.ServerReadTimeoutSecs = dfltServerReadTimeoutSecs
	}
	if conf.ServerWriteTimeoutSecs == 0 {
		conf.ServerWriteTimeoutSecs = dfltServerWriteTimeoutSecs
		log.Warn().Msgf(
			"serverWriteTimeoutSecs not specified, using default: %d",
			dfltServerWriteTimeoutSecs,
		)
	}
	if len(conf.AuthTokens) > 0 && conf.AuthHeaderName == "" {
		conf.AuthHeaderName = dfltAuthHeaderName
		log.Warn().
			Str("value", dfltAuthHeaderName).
			Msg("authHeaderName not specified, using default")
	}
	if err := conf.Corpora.ValidateAndDefaults("corpora"); err != nil {
		return err
	}
	if conf.Redis != nil {
		if err := conf.Redis.ValidateAndDefaults(); err != nil {
			return fmt.Errorf("invalid `redis` section: %w", err)
		}
	}
	if err := conf.PatternStore.ValidateAndDefaults(); err != nil {
		return fmt.Errorf("invalid `patternStore` section: %w", err)
	}
	if conf.TimeZone == "" {
		conf.TimeZone = dfltTimeZone
		log.Warn().
			Str("timeZone", dfltTimeZone).
			Msg("time zone not specified, using default")
	}
	if _, err := time.LoadLocation(conf.TimeZone); err != nil {
		return fmt.Errorf("invalid time zone: %w", err)
	}
	return nil
}

// ValidateAndDefaults checks the configuration and fills in
// default values. Any error is fatal.
func ValidateAndDefaults(conf *Conf) {
	if err := validateAndDefaults(conf); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
}
