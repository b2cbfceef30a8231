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
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"relquery/pattern"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
)

const (
	DfltListLimit = 100
)

var (
	ErrNotFound = errors.New("pattern not found")

	ErrInvalidPattern = errors.New("invalid pattern")
)

// PatternRecord is a stored pattern along with the information
// where it comes from.
type PatternRecord struct {
	ID       int64           `json:"id"`
	CorpusID string          `json:"corpusId"`
	Token1   string          `json:"token1"`
	Token2   string          `json:"token2"`
	Pattern  pattern.Pattern `json:"pattern"`
	Created  time.Time       `json:"created"`
}

// ListFilter specifies which patterns to list. Empty values
// are ignored.
type ListFilter struct {
	CorpusID      string
	Token         string
	AncestorLemma string
	Limit         int
	Offset        int
}

func patternKey(p pattern.Pattern) (string, error) {
	data, err := sonic.Marshal(p)
	if err != nil {
		return "", err
	}
	h := sha1.Sum(data)
	return hex.EncodeToString(h[:]), nil
}

// SQLStore stores patterns in an SQL database (SQLite or MySQL).
// Identical patterns extracted from the same token pair in the same
// corpus are stored only once.
type SQLStore struct {
	db *sql.DB
}

// Save stores a pattern record. It returns the ID of the record
// and a flag telling whether the record was newly created.
func (s *SQLStore) Save(ctx context.Context, rec PatternRecord) (int64, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to save pattern: %w", err)
	}
	id, isNew, err := s.saveInTx(ctx, tx, rec)
	if err != nil {
		tx.Rollback()
		return 0, false, err
	}
	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("failed to save pattern: %w", err)
	}
	return id, isNew, nil
}

func (s *SQLStore) saveInTx(ctx context.Context, tx *sql.Tx, rec PatternRecord) (int64, bool, error) {
	if err := rec.Pattern.Validate(); err != nil {
		return 0, false, fmt.Errorf("%w: %s", ErrInvalidPattern, err)
	}
	key, err := patternKey(rec.Pattern)
	if err != nil {
		return 0, false, fmt.Errorf("failed to save pattern: %w", err)
	}
	var id int64
	row := tx.QueryRowContext(
		ctx,
		"SELECT id FROM patterns WHERE corpus_id = ? AND token1 = ? AND token2 = ? AND pattern_key = ?",
		rec.CorpusID, rec.Token1, rec.Token2, key,
	)
	err = row.Scan(&id)
	if err == nil {
		return id, false, nil

	} else if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to save pattern: %w", err)
	}
	data, err := sonic.Marshal(rec.Pattern)
	if err != nil {
		return 0, false, fmt.Errorf("failed to save pattern: %w", err)
	}
	created := rec.Created
	if created.IsZero() {
		created = time.Now()
	}
	res, err := tx.ExecContext(
		ctx,
		"INSERT INTO patterns (pattern_key, corpus_id, token1, token2, ancestor_pos, ancestor_lemma, data, created) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		key, rec.CorpusID, rec.Token1, rec.Token2,
		rec.Pattern.CommonAncestor.PoS, rec.Pattern.CommonAncestor.Lemma,
		string(data), created.Unix(),
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to save pattern: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("failed to save pattern: %w", err)
	}
	return id, true, nil
}

// SaveAll stores all the records within a single transaction
// and returns the number of newly created records. Invalid records
// are skipped so they cannot spoil the whole batch.
func (s *SQLStore) SaveAll(ctx context.Context, recs []PatternRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to save patterns: %w", err)
	}
	var numNew, numInvalid int
	for _, rec := range recs {
		_, isNew, err := s.saveInTx(ctx, tx, rec)
		if errors.Is(err, ErrInvalidPattern) {
			log.Warn().
				Err(err).
				Str("corpus", rec.CorpusID).
				Str("token1", rec.Token1).
				Str("token2", rec.Token2).
				Msg("skipping pattern record")
			numInvalid++
			continue

		} else if err != nil {
			tx.Rollback()
			return 0, err
		}
		if isNew {
			numNew++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to save patterns: %w", err)
	}
	log.Debug().
		Int("numRecords", len(recs)).
		Int("numNew", numNew).
		Int("numInvalid", numInvalid).
		Msg("patterns saved")
	return numNew, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (PatternRecord, error) {
	var rec PatternRecord
	var data string
	var created int64
	if err := row.Scan(&rec.ID, &rec.CorpusID, &rec.Token1, &rec.Token2, &data, &created); err != nil {
		return rec, err
	}
	if err := sonic.UnmarshalString(data, &rec.Pattern); err != nil {
		return rec, fmt.Errorf("failed to decode pattern %d: %w", rec.ID, err)
	}
	rec.Created = time.Unix(created, 0)
	return rec, nil
}

func (s *SQLStore) Get(ctx context.Context, id int64) (PatternRecord, error) {
	row := s.db.QueryRowContext(
		ctx,
		"SELECT id, corpus_id, token1, token2, data, created FROM patterns WHERE id = ?",
		id,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, ErrNotFound

	} else if err != nil {
		return rec, fmt.Errorf("failed to load pattern: %w", err)
	}
	return rec, nil
}

// List returns patterns matching the filter ordered by their IDs
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]PatternRecord, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 6)
	if filter.CorpusID != "" {
		where = append(where, "corpus_id = ?")
		args = append(args, filter.CorpusID)
	}
	if filter.Token != "" {
		where = append(where, "(token1 = ? OR token2 = ?)")
		args = append(args, filter.Token, filter.Token)
	}
	if filter.AncestorLemma != "" {
		where = append(where, "ancestor_lemma = ?")
		args = append(args, filter.AncestorLemma)
	}
	var sqlq strings.Builder
	sqlq.WriteString("SELECT id, corpus_id, token1, token2, data, created FROM patterns")
	if len(where) > 0 {
		sqlq.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sqlq.WriteString(" ORDER BY id LIMIT ? OFFSET ?")
	limit := filter.Limit
	if limit <= 0 {
		limit = DfltListLimit
	}
	args = append(args, limit, max(filter.Offset, 0))

	rows, err := s.db.QueryContext(ctx, sqlq.String(), args...)
	if err != nil {
		return []PatternRecord{}, fmt.Errorf("failed to list patterns: %w", err)
	}
	defer rows.Close()
	ans := make([]PatternRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return []PatternRecord{}, fmt.Errorf("failed to list patterns: %w", err)
		}
		ans = append(ans, rec)
	}
	if err := rows.Err(); err != nil {
		return []PatternRecord{}, fmt.Errorf("failed to list patterns: %w", err)
	}
	return ans, nil
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM patterns WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete pattern: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete pattern: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// NewSQLStore opens a database based on the configured driver
// and makes sure the schema exists.
func NewSQLStore(conf *Conf) (*SQLStore, error) {
	if !conf.IsDBEnabled() {
		return nil, fmt.Errorf("pattern database not configured")
	}
	var db *sql.DB
	var err error
	switch conf.Driver {
	case DriverSQLite:
		db, err = openSQLite(conf.Path)
	case DriverMySQL:
		db, err = openMySQL(conf.MySQL)
	default:
		err = fmt.Errorf("unsupported pattern store driver `%s`", conf.Driver)
	}
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("driver", conf.Driver).
		Msg("pattern database ready")
	return &SQLStore{db: db}, nil
}
