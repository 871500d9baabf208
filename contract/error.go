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

package contract

import (
	"fmt"

	"github.com/icon-project/btp2/common/errors"
)

const (
	// codes of btp2 take the first values after errors.CodeGeneral
	ErrorCodeNotFoundMethod errors.Code = errors.CodeGeneral + 100 + iota
	ErrorCodeInvalidParam
	ErrorCodeTypeMismatch
	ErrorCodeValueOutOfRange
	ErrorCodeUnsupportedType
	ErrorCodeInvalidSignature
	ErrorCodeInvalidData
)

var (
	codeNames = map[errors.Code]string{
		ErrorCodeNotFoundMethod:   "NotFoundMethod",
		ErrorCodeInvalidParam:     "InvalidParam",
		ErrorCodeTypeMismatch:     "TypeMismatch",
		ErrorCodeValueOutOfRange:  "ValueOutOfRange",
		ErrorCodeUnsupportedType:  "UnsupportedType",
		ErrorCodeInvalidSignature: "InvalidSignature",
		ErrorCodeInvalidData:      "InvalidData",
	}
)

func CodeName(c errors.Code) string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("E%04d", int(c))
}

// IsClientError reports whether the error was caused by the input rather than the process.
func IsClientError(err error) bool {
	switch errors.CodeOf(err) {
	case ErrorCodeInvalidParam, ErrorCodeTypeMismatch, ErrorCodeValueOutOfRange,
		ErrorCodeUnsupportedType, ErrorCodeInvalidSignature, ErrorCodeInvalidData:
		return true
	default:
		return false
	}
}
