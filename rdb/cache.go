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
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"relquery/results"

	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/rs/zerolog/log"
)

// QueryFunc publishes a query and provides a channel for the result
type QueryFunc func(Query) (<-chan *WorkerResult, error)

func cacheFilePath(cachePath string, query Query) string {
	hashKey := sha1.Sum(query.Args)
	return filepath.Join(cachePath, query.Func+hex.EncodeToString(hashKey[:]))
}

func readCachedResult(path string) (*WorkerResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rt, value, ok := strings.Cut(string(content), "\n")
	if !ok {
		return nil, fmt.Errorf("invalid cache file %s", path)
	}
	return &WorkerResult{
		ResultType: results.ResultType(rt),
		Value:      json.RawMessage(value),
	}, nil
}

func writeCachedResult(path string, result *WorkerResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(result.ResultType.String() + "\n"); err != nil {
		return err
	}
	_, err = f.Write(result.Value)
	return err
}

// isCacheable tells whether a result is complete and error-free.
// Results carrying an embedded error or produced with some corpus
// files failing are not cached as the cause may be only temporary.
func isCacheable(result *WorkerResult) bool {
	if result.ResultType == results.ResultTypeError {
		return false
	}
	var status struct {
		Error          json.RawMessage `json:"error"`
		NumFailedFiles int             `json:"numFailedFiles"`
	}
	if err := sonic.Unmarshal(result.Value, &status); err != nil {
		log.Warn().Err(err).Msg("failed to inspect result for caching")
		return false
	}
	hasErr := len(status.Error) > 0 && string(status.Error) != "null"
	return !hasErr && status.NumFailedFiles == 0
}

func cachedQuery(cachePath string, fn QueryFunc, query Query) (<-chan *WorkerResult, error) {
	if len(cachePath) == 0 {
		return fn(query)
	}
	path := cacheFilePath(cachePath, query)
	isf, _ := fs.IsFile(path)
	if fs.PathExists(path) && isf {
		result, err := readCachedResult(path)
		if err == nil {
			ans := make(chan *WorkerResult, 1)
			ans <- result
			close(ans)
			return ans, nil
		}
		log.Error().Err(err).Str("path", path).Msg("failed to read cache file, ignoring")
	}

	wr, err := fn(query)
	if err != nil {
		return nil, err
	}
	ans := make(chan *WorkerResult, 1)
	go func() {
		defer close(ans)
		rawResult, ok := <-wr
		if !ok {
			return
		}
		if isCacheable(rawResult) {
			if err := writeCachedResult(path, rawResult); err != nil {
				log.Error().Err(err).Str("path", path).Msg("failed to write cache file")
			}
		}
		ans <- rawResult
	}()
	return ans, nil
}

// CacheResult returns a cached result of the query in case
// it is available. Otherwise, fn is called and its result
// is stored to the cache.
func (a *Adapter) CacheResult(fn QueryFunc, query Query) (<-chan *WorkerResult, error) {
	return cachedQuery(a.cachePath, fn, query)
}
