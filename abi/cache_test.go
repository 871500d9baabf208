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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_TypeCache(t *testing.T) {
	c, err := NewTypeCache(2)
	require.NoError(t, err)

	ts, err := c.Types("uint256", "string[]")
	require.NoError(t, err)
	again, err := c.Types("uint256", "string[]")
	require.NoError(t, err)
	assert.Same(t, ts[0], again[0])
	assert.Equal(t, 1, c.Len())

	joined, err := c.Types("uint256,string[]")
	assert.Error(t, err)
	assert.Nil(t, joined)
	assert.Equal(t, 1, c.Len())

	m, err := c.Method("transfer(address,uint256)")
	require.NoError(t, err)
	cached, err := c.Method("transfer(address,uint256)")
	require.NoError(t, err)
	assert.Same(t, m, cached)
	assert.Equal(t, 2, c.Len())

	_, err = c.Types("bool")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())

	_, err = NewTypeCache(0)
	assert.Error(t, err)
}

func Test_EncodeSignatures(t *testing.T) {
	b, err := EncodeSignatures([]string{"uint8", "string"}, []interface{}{1, "a"}, true)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 'a'}, b)

	b, err = EncodeSignatures([]string{"uint8", "string"}, []interface{}{1, "a"}, false)
	require.NoError(t, err)
	values, err := DecodeSignatures([]string{"uint8", "string"}, b)
	require.NoError(t, err)
	assert.Equal(t, "a", values[1])

	_, err = EncodeSignatures([]string{"uint7"}, []interface{}{1}, false)
	assert.True(t, IsInvalidSignature(err), "%+v", err)
}
