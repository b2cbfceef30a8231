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
	"encoding/json"
	"fmt"

	"relquery/results"

	"github.com/bytedance/sonic"
)

// WorkerResult is a raw result as passed between a worker
// and the API server. The value is deserialized by a client
// based on the ResultType.
type WorkerResult struct {
	ResultType results.ResultType `json:"resultType"`
	Value      json.RawMessage    `json:"value"`
}

func (wr *WorkerResult) AttachValue(value results.SerializableResult) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return err
	}
	wr.Value = data
	wr.ResultType = value.Type()
	return nil
}

func CreateWorkerResult(value results.SerializableResult) (*WorkerResult, error) {
	ans := new(WorkerResult)
	if err := ans.AttachValue(value); err != nil {
		return nil, err
	}
	return ans, nil
}

func deserializeErrorResult(wr *WorkerResult) results.ErrorResult {
	var ans results.ErrorResult
	if err := sonic.Unmarshal(wr.Value, &ans); err != nil || ans.Error == nil {
		ans.Error = &results.JobError{
			Msg: fmt.Sprintf("failed to deserialize error result: %s", string(wr.Value)),
		}
	}
	return ans
}

// DeserializeResult decodes a worker result into the expected type.
// In case the worker returned an error result, its error is returned.
func DeserializeResult[T results.SerializableResult](wr *WorkerResult, ans T) (T, error) {
	if wr.ResultType == results.ResultTypeError {
		errRes := deserializeErrorResult(wr)
		return ans, errRes.Err()
	}
	if wr.ResultType != ans.Type() {
		return ans, fmt.Errorf(
			"unexpected result type: %s (expected: %s)", wr.ResultType, ans.Type())
	}
	if err := sonic.Unmarshal(wr.Value, ans); err != nil {
		return ans, fmt.Errorf("failed to deserialize result: %w", err)
	}
	return ans, ans.Err()
}
