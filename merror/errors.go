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

package merror

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

func msgToJSON(msg string) ([]byte, error) {
	if msg != "" {
		return sonic.Marshal(msg)
	}
	return sonic.Marshal(nil)
}

// InputError is caused by invalid user input
// (unknown corpus, invalid pattern, ...)
type InputError struct {
	Msg string
}

func (err InputError) Error() string {
	return err.Msg
}

func (err InputError) MarshalJSON() ([]byte, error) {
	return msgToJSON(err.Msg)
}

// ----------------------------

type InternalError struct {
	Msg string
}

func (err InternalError) Error() string {
	return err.Msg
}

func (err InternalError) MarshalJSON() ([]byte, error) {
	return msgToJSON(err.Msg)
}

// ---------------------------

// RecoveredError wraps a panic recovered while
// processing a job.
type RecoveredError struct {
	Msg string
}

func (err RecoveredError) Error() string {
	return err.Msg
}

func (err RecoveredError) MarshalJSON() ([]byte, error) {
	return msgToJSON(err.Msg)
}

// ---------------------------

type TimeoutError struct {
	Msg string
}

func (err TimeoutError) Error() string {
	return err.Msg
}

func (err TimeoutError) MarshalJSON() ([]byte, error) {
	return msgToJSON(err.Msg)
}

// -----------------

// IsInputError tests whether the error (or any error it wraps)
// is an InputError
func IsInputError(err error) bool {
	var inpErr InputError
	return errors.As(err, &inpErr)
}

func PanicValueToErr(v any) (err error) {
	switch tr := v.(type) {
	case error:
		err = RecoveredError{Msg: fmt.Sprintf("recovered panic: %s", tr)}
	case string:
		err = RecoveredError{Msg: fmt.Sprintf("recovered panic: %s", tr)}
	default:
		err = RecoveredError{Msg: fmt.Sprintf("recovered panic from a value of type %T", v)}
	}
	return
}
