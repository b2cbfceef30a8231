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

package store

import (
	"fmt"
	"os"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/rs/zerolog/log"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"

	DfltMySQLPort     = 3306
	DfltMySQLPoolSize = 10
)

type MySQLConf struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Name     string `json:"name"`
	User     string `json:"user"`
	Password string `json:"password"`
	PoolSize int    `json:"poolSize"`
}

type Conf struct {

	// Driver is either `sqlite` or `mysql`. Empty value
	// means no database is used (only JSON export is available).
	Driver string `json:"driver"`

	// Path is a path to an SQLite database file
	Path string `json:"path"`

	MySQL *MySQLConf `json:"mysql"`

	// ExportDir is a directory where JSON pattern files
	// are written. Working directory is used if empty.
	ExportDir string `json:"exportDir"`
}

// IsDBEnabled tells whether a pattern database is configured
func (conf *Conf) IsDBEnabled() bool {
	return conf != nil && conf.Driver != ""
}

func (conf *Conf) ValidateAndDefaults() error {
	if conf == nil {
		return nil
	}
	switch conf.Driver {
	case "":
		log.Warn().Msg("pattern database not configured, pattern storage will be disabled")
	case DriverSQLite:
		if conf.Path == "" {
			return fmt.Errorf("missing `path` for the SQLite pattern store")
		}
	case DriverMySQL:
		if conf.MySQL == nil {
			return fmt.Errorf("missing `mysql` section for the MySQL pattern store")
		}
		if conf.MySQL.Host == "" || conf.MySQL.Name == "" {
			return fmt.Errorf("MySQL pattern store requires both `host` and `name`")
		}
		if conf.MySQL.Port == 0 {
			conf.MySQL.Port = DfltMySQLPort
		}
		if conf.MySQL.PoolSize == 0 {
			conf.MySQL.PoolSize = DfltMySQLPoolSize
			log.Warn().
				Int("value", conf.MySQL.PoolSize).
				Msg("patternStore.mysql.poolSize not specified, using default")
		}
	default:
		return fmt.Errorf("unsupported pattern store driver `%s`", conf.Driver)
	}
	if conf.ExportDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine working directory: %w", err)
		}
		conf.ExportDir = wd
		log.Warn().
			Str("value", conf.ExportDir).
			Msg("patternStore.exportDir not specified, using working directory")

	} else if isDir, _ := fs.IsDir(conf.ExportDir); !isDir {
		return fmt.Errorf("patternStore.exportDir `%s` is not a directory", conf.ExportDir)
	}
	return nil
}
