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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseType(t *testing.T) {
	for _, c := range []struct {
		sig        string
		canonical  string
		kind       Kind
		dims       []int
		dynamic    bool
		staticSize int
	}{
		{"uint", "uint256", KindUint, nil, false, 32},
		{"int", "int256", KindInt, nil, false, 32},
		{"uint8", "uint8", KindUint, nil, false, 32},
		{"bool[2]", "bool[2]", KindBool, []int{2}, false, 64},
		{"address[]", "address[]", KindAddress, []int{0}, true, 0},
		{"bytes32[2][]", "bytes32[2][]", KindFixedBytes, []int{0, 2}, true, 0},
		{"uint16[][3]", "uint16[][3]", KindUint, []int{3, 0}, true, 0},
		{"string", "string", KindString, nil, true, 0},
		{"bytes", "bytes", KindBytes, nil, true, 0},
		{"hash20", "hash20", KindHash, nil, false, 32},
		{"ufixed128x128", "ufixed128x128", KindUfixed, nil, false, 32},
		{"real24x232", "real24x232", KindFixed, nil, false, 32},
		{" (uint256 id, address owner)[2] ", "(uint256,address)[2]", KindTuple, []int{2}, false, 128},
		{"(uint8,(bool,bytes4)[3])", "(uint8,(bool,bytes4)[3])", KindTuple, nil, false, 224},
		{"(string,uint8)[2]", "(string,uint8)[2]", KindTuple, []int{2}, true, 0},
	} {
		typ, err := ParseType(c.sig)
		require.NoError(t, err, c.sig)
		assert.Equal(t, c.canonical, typ.String(), c.sig)
		assert.Equal(t, c.kind, typ.Kind(), c.sig)
		assert.Equal(t, c.dims, typ.Dimensions, c.sig)
		assert.Equal(t, c.dynamic, typ.IsDynamic(), c.sig)
		assert.Equal(t, c.staticSize, typ.StaticSize(), c.sig)
	}
}

func Test_ParseTypeAttributes(t *testing.T) {
	assert.Equal(t, 256, MustParseType("uint").Bits())
	assert.Equal(t, 24, MustParseType("int24").Bits())
	high, low := MustParseType("fixed120x136").Fixed()
	assert.Equal(t, 120, high)
	assert.Equal(t, 136, low)
	assert.Equal(t, 8, MustParseType("bytes8[]").ByteLength())
	assert.Equal(t, 0, MustParseType("bytes").ByteLength())

	typ := MustParseType("uint256[3][]")
	sub := typ.NestedSub()
	assert.Equal(t, "uint256[3]", sub.String())
	assert.Equal(t, "uint256", sub.NestedSub().String())
	assert.Equal(t, "uint256", sub.NestedSub().NestedSub().String())
	assert.Equal(t, "uint256[3][]", typ.String())
	assert.Equal(t, 3, typ.Depth())
}

func Test_ParseTypeErrors(t *testing.T) {
	for _, sig := range []string{
		"", "uint7", "uint264", "int0", "bytes0", "bytes33", "hash", "hash33",
		"ufixed", "fixed8x7", "fixed128x136", "ufixed0x0", "string8", "bool1", "address20",
		"uint256[0]", "uint256[", "uint256[a]", "()", "(uint256", "uint256)", "(uint256,)",
		"tuple", "Uint256",
	} {
		_, err := ParseType(sig)
		assert.True(t, IsInvalidSignature(err), "sig:%q err:%+v", sig, err)
	}
	for _, sig := range []string{"decimal", "uint256[16777217]", "float32"} {
		_, err := ParseType(sig)
		assert.True(t, IsUnsupportedType(err), "sig:%q err:%+v", sig, err)
	}

	deep := "uint256" + strings.Repeat("[]", MaxTypeDepth)
	_, err := ParseType(deep)
	assert.True(t, IsUnsupportedType(err), "%+v", err)
	_, err = ParseType(strings.Repeat("(", MaxTypeDepth+1) + "bool" + strings.Repeat(")", MaxTypeDepth+1))
	assert.True(t, IsUnsupportedType(err), "%+v", err)
}

func Test_ParseTypeList(t *testing.T) {
	ts, err := ParseTypeList("address to, uint256 amount, (bytes data, bool ok)[] calldata results")
	require.NoError(t, err)
	require.Len(t, ts, 3)
	assert.Equal(t, "to", ts[0].Name)
	assert.Equal(t, "amount", ts[1].Name)
	assert.Equal(t, "results", ts[2].Name)
	assert.Equal(t, "(bytes,bool)[]", ts[2].String())
	assert.Equal(t, "data", ts[2].Components[0].Name)

	ts, err = ParseTypeList("")
	assert.NoError(t, err)
	assert.Len(t, ts, 0)
}

func Test_Argument(t *testing.T) {
	a := Argument{
		Name: "orders",
		Type: "tuple[]",
		Components: []Argument{
			{Name: "id", Type: "uint256"},
			{Name: "tags", Type: "string[2]"},
			{Name: "inner", Type: "tuple", Components: []Argument{{Name: "ok", Type: "bool"}}},
		},
	}
	typ, err := a.ToType()
	require.NoError(t, err)
	assert.Equal(t, "orders", typ.Name)
	assert.Equal(t, "(uint256,string[2],(bool))[]", typ.String())
	assert.True(t, typ.hasNamedComponents())
	assert.Equal(t, a, ArgumentOf(typ))

	_, err = Argument{Type: "tuple"}.ToType()
	assert.True(t, IsInvalidSignature(err), "%+v", err)
}
