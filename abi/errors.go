/*
 * Copyright 2023 ICON Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package abi

import (
	"fmt"

	"github.com/icon-project/btp2/common/errors"

	"github.com/icon-project/btp-abi/contract"
)

// Error is returned by every encoding, decoding and parsing operation of the package.
// Value holds the offending input and Expected the constraint it failed.
type Error struct {
	code     errors.Code
	msg      string
	value    interface{}
	expected string
}

func (e *Error) Error() string {
	if len(e.expected) > 0 {
		return fmt.Sprintf("%s: %s (expected %s, value %s)",
			contract.CodeName(e.code), e.msg, e.expected, valueString(e.value))
	}
	return fmt.Sprintf("%s: %s", contract.CodeName(e.code), e.msg)
}

func (e *Error) ErrorCode() errors.Code {
	return e.code
}

func (e *Error) Value() interface{} {
	return e.value
}

func (e *Error) Expected() string {
	return e.expected
}

func newError(code errors.Code, value interface{}, expected string, format string, args ...interface{}) *Error {
	return &Error{
		code:     code,
		msg:      fmt.Sprintf(format, args...),
		value:    value,
		expected: expected,
	}
}

func typeMismatchf(value interface{}, expected string, format string, args ...interface{}) error {
	return newError(contract.ErrorCodeTypeMismatch, value, expected, format, args...)
}

func outOfRangef(value interface{}, expected string, format string, args ...interface{}) error {
	return newError(contract.ErrorCodeValueOutOfRange, value, expected, format, args...)
}

func unsupportedf(value interface{}, format string, args ...interface{}) error {
	return newError(contract.ErrorCodeUnsupportedType, value, "", format, args...)
}

func invalidSignaturef(value string, format string, args ...interface{}) error {
	return newError(contract.ErrorCodeInvalidSignature, value, "", format, args...)
}

func invalidDataf(format string, args ...interface{}) error {
	return newError(contract.ErrorCodeInvalidData, nil, "", format, args...)
}

func IsTypeMismatch(err error) bool {
	return errors.CodeOf(err) == contract.ErrorCodeTypeMismatch
}

func IsValueOutOfRange(err error) bool {
	return errors.CodeOf(err) == contract.ErrorCodeValueOutOfRange
}

func IsUnsupportedType(err error) bool {
	return errors.CodeOf(err) == contract.ErrorCodeUnsupportedType
}

func IsInvalidSignature(err error) bool {
	return errors.CodeOf(err) == contract.ErrorCodeInvalidSignature
}

func IsInvalidData(err error) bool {
	return errors.CodeOf(err) == contract.ErrorCodeInvalidData
}

func valueString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "<nil>"
	case []byte:
		return "0x" + BinaryToHex(t)
	case string:
		if len(t) > 80 {
			return fmt.Sprintf("%q...", t[:80])
		}
		return fmt.Sprintf("%q", t)
	default:
		s := fmt.Sprintf("%v(%T)", v, v)
		if len(s) > 120 {
			return s[:120] + "..."
		}
		return s
	}
}
