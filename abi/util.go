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
	"encoding/binary"
	"encoding/hex"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

func Ceil32(n int) int {
	return (n + WordSize - 1) / WordSize * WordSize
}

// ZeroPadLeft returns a copy of b left-padded with zeros to width bytes.
func ZeroPadLeft(b []byte, width int) ([]byte, error) {
	if len(b) > width {
		return nil, outOfRangef(b, "at most "+strconv.Itoa(width)+" bytes", "value too long to pad")
	}
	if len(b) == width {
		return append([]byte(nil), b...), nil
	}
	return common.LeftPadBytes(b, width), nil
}

// ZeroPadRight returns a copy of b right-padded with zeros to width bytes.
func ZeroPadRight(b []byte, width int) ([]byte, error) {
	if len(b) > width {
		return nil, outOfRangef(b, "at most "+strconv.Itoa(width)+" bytes", "value too long to pad")
	}
	if len(b) == width {
		return append([]byte(nil), b...), nil
	}
	return common.RightPadBytes(b, width), nil
}

func IsHexPrefixed(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func removeHexPrefix(s string) string {
	if IsHexPrefixed(s) {
		return s[2:]
	}
	return s
}

// IsHexText reports whether s, without an optional 0x prefix, consists of hex digits only.
func IsHexText(s string) bool {
	for _, c := range []byte(removeHexPrefix(s)) {
		if !isHexDigit(c) {
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// HexToBinary decodes hex text case-insensitively, with or without a 0x prefix.
func HexToBinary(s string) ([]byte, error) {
	b, err := hex.DecodeString(removeHexPrefix(s))
	if err != nil {
		return nil, typeMismatchf(s, "hex text", "fail to decode hex err:%s", err.Error())
	}
	return b, nil
}

// BinaryToHex encodes b as lowercase hex without prefix.
func BinaryToHex(b []byte) string {
	return hex.EncodeToString(b)
}

func appendSizeWord(buf []byte, n int) []byte {
	var w [WordSize]byte
	binary.BigEndian.PutUint64(w[WordSize-8:], uint64(n))
	return append(buf, w[:]...)
}
