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
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/icon-project/btp-abi/contract"
)

// ResolveHexString decides whether text given for a bytes slot is hex or raw content.
// Prefixed text is always decoded as hex. Unprefixed text is decoded only when it is
// all hex digits and exactly twice the fixed byte length of the slot, so for a bytes4 slot
// "01020304" is hex while "abcd" stays raw. Raw text which happens to satisfy the rule can not
// be passed as text; pass it as []byte instead.
func ResolveHexString(t *Type, text string) ([]byte, error) {
	if IsHexPrefixed(text) {
		return HexToBinary(text)
	}
	if len(text) == 2*t.ByteLength() && IsHexText(text) {
		return HexToBinary(text)
	}
	return []byte(text), nil
}

// byteStringOf returns the payload of a string, bytes or bytesN value.
// Only text supplied for bytes slots goes through ResolveHexString, binary values are taken as is.
func byteStringOf(t *Type, value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return textPayload(t, v)
	case contract.String:
		return textPayload(t, string(v))
	case []byte:
		return v, nil
	case contract.Bytes:
		return v, nil
	case hexutil.Bytes:
		return v, nil
	default:
		b, err := contract.BytesOf(value)
		if err != nil {
			return nil, typeMismatchf(value, "string or bytes", "invalid value for %s", t)
		}
		return b, nil
	}
}

func textPayload(t *Type, s string) ([]byte, error) {
	if t.BaseType == BaseBytes {
		return ResolveHexString(t, s)
	}
	return []byte(s), nil
}
