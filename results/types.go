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

package results

import (
	"errors"

	"relquery/merror"
)

const (
	ResultTypeRelationships ResultType = "relationships"
	ResultTypeMatches       ResultType = "matches"
	ResultTypeError         ResultType = "error"
)

type ResultType string

func (rt ResultType) String() string {
	return string(rt)
}

// SerializableResult is a result of a worker job
// which can be passed via the job queue
type SerializableResult interface {
	Err() error
	Type() ResultType
}

// JobError describes a failed job. Errors cannot be passed
// via the job queue as they are so we keep just the message
// along with a flag telling whether it was caused by user input.
type JobError struct {
	Msg         string `json:"msg"`
	IsUserError bool   `json:"isUserError,omitempty"`
	IsTimeout   bool   `json:"isTimeout,omitempty"`
}

// NewJobError creates an error description suitable for a result.
// For a nil error, nil is returned.
func NewJobError(err error) *JobError {
	if err == nil {
		return nil
	}
	var timeoutErr merror.TimeoutError
	return &JobError{
		Msg:         err.Error(),
		IsUserError: merror.IsInputError(err),
		IsTimeout:   errors.As(err, &timeoutErr),
	}
}

// AsError converts the description back to a typed error
func (je *JobError) AsError() error {
	if je == nil {
		return nil
	}
	if je.IsUserError {
		return merror.InputError{Msg: je.Msg}

	} else if je.IsTimeout {
		return merror.TimeoutError{Msg: je.Msg}
	}
	return merror.InternalError{Msg: je.Msg}
}

// ----

type ErrorResult struct {
	Func  string    `json:"func"`
	Error *JobError `json:"error"`
}

func (res *ErrorResult) Err() error {
	return res.Error.AsError()
}

func (res *ErrorResult) Type() ResultType {
	return ResultTypeError
}
