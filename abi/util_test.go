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
	"testing"

	"github.com/icon-project/btp2/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Ceil32(t *testing.T) {
	for n, expected := range map[int]int{0: 0, 1: 32, 31: 32, 32: 32, 33: 64, 64: 64} {
		assert.Equal(t, expected, Ceil32(n), n)
	}
}

func Test_ZeroPad(t *testing.T) {
	src := []byte{1, 2}
	left, err := ZeroPadLeft(src, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 1, 2}, left)
	right, err := ZeroPadRight(src, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 0, 0}, right)

	same, err := ZeroPadLeft(src, 2)
	require.NoError(t, err)
	same[0] = 9
	assert.Equal(t, byte(1), src[0])

	_, err = ZeroPadLeft([]byte{1, 2, 3}, 2)
	assert.True(t, IsValueOutOfRange(err), "%+v", err)
	_, err = ZeroPadRight([]byte{1, 2, 3}, 2)
	assert.True(t, IsValueOutOfRange(err), "%+v", err)
}

func Test_HexText(t *testing.T) {
	assert.True(t, IsHexPrefixed("0x12"))
	assert.True(t, IsHexPrefixed("0X12"))
	assert.False(t, IsHexPrefixed("12"))
	assert.True(t, IsHexText("0xdeadBEEF"))
	assert.True(t, IsHexText("deadbeef"))
	assert.False(t, IsHexText("0xdeadbeeg"))

	b, err := HexToBinary("0x0102")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, b)
	assert.Equal(t, "0102", BinaryToHex(b))
	_, err = HexToBinary("0x012")
	assert.True(t, IsTypeMismatch(err), "%+v", err)
	_, err = HexToBinary("xyz")
	assert.True(t, IsTypeMismatch(err), "%+v", err)
}

func Test_ResolveHexString(t *testing.T) {
	bytes4 := MustParseType("bytes4")
	for text, expected := range map[string][]byte{
		"0x01020304": {1, 2, 3, 4},
		"01020304":   {1, 2, 3, 4},
		"abcd":       []byte("abcd"),
		"0102":       []byte("0102"),
		"0x":         {},
	} {
		b, err := ResolveHexString(bytes4, text)
		require.NoError(t, err, text)
		assert.Equal(t, expected, b, text)
	}
	b, err := ResolveHexString(MustParseType("bytes"), "hello")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), b)
}

func Test_ErrorKinds(t *testing.T) {
	assert.False(t, IsTypeMismatch(errors.IllegalArgumentError.New("illegal")))
	assert.False(t, IsValueOutOfRange(errors.UnsupportedError.New("unsupported")))
	assert.False(t, IsUnsupportedType(errors.InvalidStateError.New("state")))
	assert.False(t, IsInvalidSignature(errors.New("plain")))

	_, err := EncodePrimitive(MustParseType("uint8"), 256, false)
	assert.True(t, IsValueOutOfRange(err), "%+v", err)
	assert.False(t, errors.IllegalArgumentError.Equals(err))
	assert.False(t, errors.UnsupportedError.Equals(err))
}
