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
	"strconv"
	"strings"
)

const (
	WordSize     = 32
	MaxTypeDepth = 32
)

const (
	BaseUint    = "uint"
	BaseInt     = "int"
	BaseBool    = "bool"
	BaseUfixed  = "ufixed"
	BaseFixed   = "fixed"
	BaseUreal   = "ureal"
	BaseReal    = "real"
	BaseString  = "string"
	BaseBytes   = "bytes"
	BaseTuple   = "tuple"
	BaseHash    = "hash"
	BaseAddress = "address"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindUint
	KindInt
	KindBool
	KindUfixed
	KindFixed
	KindString
	KindBytes
	KindFixedBytes
	KindTuple
	KindHash
	KindAddress
)

var (
	kindNames = []string{"Unknown", "Uint", "Int", "Bool", "Ufixed", "Fixed", "String",
		"Bytes", "FixedBytes", "Tuple", "Hash", "Address"}
)

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// Type is a parsed ABI type. Dimensions are ordered outermost first,
// so "uint256[3][]" has Dimensions [0, 3] where 0 denotes a dynamic dimension.
// Types returned by the parser or a TypeCache are shared and must not be modified.
type Type struct {
	BaseType   string
	SubType    string
	Dimensions []int
	Components []*Type
	Name       string
}

func (t *Type) Kind() Kind {
	switch t.BaseType {
	case BaseUint:
		return KindUint
	case BaseInt:
		return KindInt
	case BaseBool:
		return KindBool
	case BaseUfixed, BaseUreal:
		return KindUfixed
	case BaseFixed, BaseReal:
		return KindFixed
	case BaseString:
		if len(t.SubType) > 0 {
			return KindFixedBytes
		}
		return KindString
	case BaseBytes:
		if len(t.SubType) > 0 {
			return KindFixedBytes
		}
		return KindBytes
	case BaseTuple:
		return KindTuple
	case BaseHash:
		return KindHash
	case BaseAddress:
		return KindAddress
	default:
		return KindUnknown
	}
}

func (t *Type) IsArray() bool {
	return len(t.Dimensions) > 0
}

// IsDynamic reports whether the encoding length depends on the value.
func (t *Type) IsDynamic() bool {
	return isDynamic(t, t.Dimensions)
}

func isDynamic(t *Type, dims []int) bool {
	if len(dims) > 0 {
		return dims[0] == 0 || isDynamic(t, dims[1:])
	}
	switch t.Kind() {
	case KindString, KindBytes:
		return true
	case KindTuple:
		for _, c := range t.Components {
			if c.IsDynamic() {
				return true
			}
		}
	}
	return false
}

// StaticSize returns the encoded length of a static type. It returns 0 for dynamic types.
func (t *Type) StaticSize() int {
	if t.IsDynamic() {
		return 0
	}
	return staticSize(t, t.Dimensions)
}

func staticSize(t *Type, dims []int) int {
	if len(dims) > 0 {
		return dims[0] * staticSize(t, dims[1:])
	}
	if t.Kind() == KindTuple {
		size := 0
		for _, c := range t.Components {
			size += Ceil32(c.StaticSize())
		}
		return size
	}
	return WordSize
}

// NestedSub returns the element type of an array type by dropping the outermost dimension.
// For a non-array type it returns the type itself.
func (t *Type) NestedSub() *Type {
	if len(t.Dimensions) == 0 {
		return t
	}
	return &Type{
		BaseType:   t.BaseType,
		SubType:    t.SubType,
		Dimensions: t.Dimensions[1:],
		Components: t.Components,
		Name:       t.Name,
	}
}

// Bits returns the declared width of uint/int types.
func (t *Type) Bits() int {
	if len(t.SubType) == 0 {
		return 256
	}
	n, err := strconv.Atoi(t.SubType)
	if err != nil {
		return 0
	}
	return n
}

// Fixed returns the high and low bit counts of an HxL fixed-point type.
func (t *Type) Fixed() (high, low int) {
	h, l, ok := strings.Cut(t.SubType, "x")
	if !ok {
		return 0, 0
	}
	high, _ = strconv.Atoi(h)
	low, _ = strconv.Atoi(l)
	return high, low
}

// ByteLength returns N of bytesN and hashN, 0 for the dynamic byte strings.
func (t *Type) ByteLength() int {
	if len(t.SubType) == 0 {
		return 0
	}
	n, err := strconv.Atoi(t.SubType)
	if err != nil {
		return 0
	}
	return n
}

// Depth returns the nesting depth of the type tree, counting every dimension and tuple level.
func (t *Type) Depth() int {
	d := 0
	for _, c := range t.Components {
		if cd := c.Depth(); cd > d {
			d = cd
		}
	}
	return d + len(t.Dimensions) + 1
}

// String returns the canonical signature, with tuples written as "(c1,c2)".
func (t *Type) String() string {
	sb := &strings.Builder{}
	t.writeTo(sb)
	return sb.String()
}

func (t *Type) writeTo(sb *strings.Builder) {
	if t.Kind() == KindTuple {
		sb.WriteByte('(')
		for i, c := range t.Components {
			if i > 0 {
				sb.WriteByte(',')
			}
			c.writeTo(sb)
		}
		sb.WriteByte(')')
	} else {
		sb.WriteString(t.BaseType)
		sb.WriteString(t.SubType)
	}
	for i := len(t.Dimensions) - 1; i >= 0; i-- {
		sb.WriteByte('[')
		if t.Dimensions[i] > 0 {
			sb.WriteString(strconv.Itoa(t.Dimensions[i]))
		}
		sb.WriteByte(']')
	}
}

func (t *Type) hasNamedComponents() bool {
	if len(t.Components) == 0 {
		return false
	}
	names := make(map[string]bool, len(t.Components))
	for _, c := range t.Components {
		if len(c.Name) == 0 || names[c.Name] {
			return false
		}
		names[c.Name] = true
	}
	return true
}
