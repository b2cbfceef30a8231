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
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS patterns (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	pattern_key CHAR(40) NOT NULL,
	corpus_id VARCHAR(63) NOT NULL,
	token1 VARCHAR(255) NOT NULL,
	token2 VARCHAR(255) NOT NULL,
	ancestor_pos VARCHAR(63) NOT NULL,
	ancestor_lemma VARCHAR(255) NOT NULL,
	data TEXT NOT NULL,
	created INTEGER NOT NULL,
	UNIQUE (corpus_id, token1, token2, pattern_key)
);
CREATE INDEX IF NOT EXISTS idx_patterns_lemma ON patterns(ancestor_lemma);
`

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS patterns (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		pattern_key CHAR(40) NOT NULL,
		corpus_id VARCHAR(63) NOT NULL,
		token1 VARCHAR(255) NOT NULL,
		token2 VARCHAR(255) NOT NULL,
		ancestor_pos VARCHAR(63) NOT NULL,
		ancestor_lemma VARCHAR(255) NOT NULL,
		data TEXT NOT NULL,
		created BIGINT NOT NULL,
		UNIQUE KEY patterns_uniq (corpus_id, token1, token2, pattern_key),
		KEY idx_patterns_lemma (ancestor_lemma)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

func openSQLite(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// writes are serialized by SQLite anyway
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

func openMySQL(conf *MySQLConf) (*sql.DB, error) {
	mconf := mysql.NewConfig()
	mconf.Net = "tcp"
	mconf.Addr = fmt.Sprintf("%s:%d", conf.Host, conf.Port)
	mconf.User = conf.User
	mconf.Passwd = conf.Password
	mconf.DBName = conf.Name
	mconf.ParseTime = true
	mconf.Loc = time.Local
	mconf.Params = map[string]string{"autocommit": "true"}
	db, err := sql.Open("mysql", mconf.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}
	db.SetMaxOpenConns(conf.PoolSize)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}
	for _, stmt := range mysqlSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return db, nil
}
