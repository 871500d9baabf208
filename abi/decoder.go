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
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Decode reads unpacked data produced by Encode for the same types.
// Integers decode to *big.Int, fixed-point values to *big.Rat, addresses to common.Address,
// string to string and other byte strings to []byte. Arrays decode to []interface{} and tuples
// to map[string]interface{} when all components are named, to []interface{} otherwise.
func Decode(types []*Type, data []byte) ([]interface{}, error) {
	values := make([]interface{}, len(types))
	pos := 0
	for i, t := range types {
		if t.IsDynamic() {
			off, err := readSize(data, pos)
			if err != nil {
				return nil, err
			}
			if off > len(data) {
				return nil, invalidDataf("offset %d out of range for %s", off, t)
			}
			if values[i], _, err = decodeType(data[off:], t, 0); err != nil {
				return nil, err
			}
			pos += WordSize
		} else {
			if pos > len(data) {
				return nil, invalidDataf("insufficient data for %s", t)
			}
			v, n, err := decodeType(data[pos:], t, 0)
			if err != nil {
				return nil, err
			}
			values[i] = v
			pos += n
		}
	}
	return values, nil
}

func DecodeHex(types []*Type, data string) ([]interface{}, error) {
	b, err := hexutil.Decode(data)
	if err != nil {
		return nil, invalidDataf("fail to decode hex err:%s", err.Error())
	}
	return Decode(types, b)
}

func readWord(b []byte, pos int) ([]byte, error) {
	if pos < 0 || pos+WordSize > len(b) {
		return nil, invalidDataf("insufficient data at %d, length %d", pos, len(b))
	}
	return b[pos : pos+WordSize], nil
}

// readSize reads a length or offset word, which must fit in the data.
func readSize(b []byte, pos int) (int, error) {
	w, err := readWord(b, pos)
	if err != nil {
		return 0, err
	}
	v := new(big.Int).SetBytes(w)
	if !v.IsInt64() || v.Int64() > int64(len(b)) {
		return 0, invalidDataf("size %s out of range at %d", v, pos)
	}
	return int(v.Int64()), nil
}

// decodeType decodes a value of type t at the start of b and returns the number of bytes
// its encoding covers.
func decodeType(b []byte, t *Type, depth int) (interface{}, int, error) {
	if depth > MaxTypeDepth {
		return nil, 0, unsupportedf(nil, "type nesting exceeds %d", MaxTypeDepth)
	}
	codecLogger.Traceln("decode type:", t)
	switch {
	case isDynamicByteString(t):
		return decodeByteString(b, t)
	case t.Kind() == KindTuple && len(t.Dimensions) == 1 && t.Dimensions[0] > 0 && t.IsDynamic():
		return decodeStructOffsets(b, t.NestedSub(), t.Dimensions[0], depth)
	case t.IsArray() && t.IsDynamic():
		n, err := readSize(b, 0)
		if err != nil {
			return nil, 0, err
		}
		if d := t.Dimensions[0]; d > 0 && n != d {
			return nil, 0, invalidDataf("number of elements %d does not match %s", n, t)
		}
		if n > (len(b)-WordSize)/WordSize {
			return nil, 0, invalidDataf("number of elements %d exceeds data for %s", n, t)
		}
		values, size, err := decodeDynamicArray(b[WordSize:], t.NestedSub(), n, depth)
		if err != nil {
			return nil, 0, err
		}
		return values, WordSize + size, nil
	case t.IsArray():
		return decodeSequence(b, t.NestedSub(), t.Dimensions[0], depth)
	case t.Kind() == KindTuple:
		return decodeTuple(b, t, depth)
	default:
		v, err := decodePrimitive(b, t)
		if err != nil {
			return nil, 0, err
		}
		return v, WordSize, nil
	}
}

func decodeByteString(b []byte, t *Type) (interface{}, int, error) {
	l, err := readSize(b, 0)
	if err != nil {
		return nil, 0, err
	}
	if WordSize+l > len(b) {
		return nil, 0, invalidDataf("insufficient data for %s of length %d", t, l)
	}
	payload := append([]byte(nil), b[WordSize:WordSize+l]...)
	size := WordSize + Ceil32(l)
	if size > len(b) {
		size = len(b)
	}
	if t.Kind() == KindString {
		return string(payload), size, nil
	}
	return payload, size, nil
}

func decodeDynamicArray(b []byte, sub *Type, n int, depth int) ([]interface{}, int, error) {
	if isDynamicByteString(sub) || (sub.Kind() == KindTuple && sub.IsDynamic()) {
		return decodeOffsets(b, sub, n, depth)
	}
	return decodeSequence(b, sub, n, depth)
}

func decodeStructOffsets(b []byte, sub *Type, n int, depth int) ([]interface{}, int, error) {
	return decodeOffsets(b, sub, n, depth)
}

// decodeOffsets reads n offsets, relative to the start of b, and the elements they point to.
func decodeOffsets(b []byte, sub *Type, n int, depth int) ([]interface{}, int, error) {
	values := make([]interface{}, n)
	end := n * WordSize
	for i := 0; i < n; i++ {
		off, err := readSize(b, i*WordSize)
		if err != nil {
			return nil, 0, err
		}
		v, size, err := decodeType(b[off:], sub, depth+1)
		if err != nil {
			return nil, 0, err
		}
		values[i] = v
		if off+size > end {
			end = off + size
		}
	}
	return values, end, nil
}

func decodeSequence(b []byte, sub *Type, n int, depth int) ([]interface{}, int, error) {
	values := make([]interface{}, n)
	pos := 0
	for i := 0; i < n; i++ {
		if pos >= len(b) {
			return nil, 0, invalidDataf("insufficient data for element %d of %s", i, sub)
		}
		v, size, err := decodeType(b[pos:], sub, depth+1)
		if err != nil {
			return nil, 0, err
		}
		values[i] = v
		pos += size
	}
	return values, pos, nil
}

func decodeTuple(b []byte, t *Type, depth int) (interface{}, int, error) {
	values := make([]interface{}, len(t.Components))
	pos, end := 0, 0
	for i, c := range t.Components {
		if c.IsDynamic() {
			off, err := readSize(b, pos)
			if err != nil {
				return nil, 0, err
			}
			v, size, err := decodeType(b[off:], c, depth+1)
			if err != nil {
				return nil, 0, err
			}
			values[i] = v
			if off+size > end {
				end = off + size
			}
			pos += WordSize
		} else {
			if pos > len(b) {
				return nil, 0, invalidDataf("insufficient data for %s", c)
			}
			v, size, err := decodeType(b[pos:], c, depth+1)
			if err != nil {
				return nil, 0, err
			}
			values[i] = v
			pos += size
		}
	}
	if pos > end {
		end = pos
	}
	if !t.hasNamedComponents() {
		return values, end, nil
	}
	m := make(map[string]interface{}, len(values))
	for i, c := range t.Components {
		m[c.Name] = values[i]
	}
	return m, end, nil
}

func decodePrimitive(b []byte, t *Type) (interface{}, error) {
	w, err := readWord(b, 0)
	if err != nil {
		return nil, err
	}
	switch t.Kind() {
	case KindUint:
		i := new(big.Int).SetBytes(w)
		if i.BitLen() > t.Bits() {
			return nil, invalidDataf("value out of range for %s", t)
		}
		return i, nil
	case KindInt:
		return decodeSigned(w, t, t.Bits())
	case KindBool:
		i := new(big.Int).SetBytes(w)
		if i.BitLen() > 1 {
			return nil, invalidDataf("invalid bool word %s", hexutil.Encode(w))
		}
		return i.Sign() == 1, nil
	case KindUfixed:
		high, low := t.Fixed()
		i := new(big.Int).SetBytes(w)
		if i.BitLen() > high+low {
			return nil, invalidDataf("value out of range for %s", t)
		}
		return new(big.Rat).Mul(new(big.Rat).SetInt(i), pow2Rat(-low)), nil
	case KindFixed:
		high, low := t.Fixed()
		v, err := decodeSigned(w, t, high+low)
		if err != nil {
			return nil, err
		}
		return new(big.Rat).Mul(new(big.Rat).SetInt(v.(*big.Int)), pow2Rat(-low)), nil
	case KindFixedBytes:
		return append([]byte(nil), w[:t.ByteLength()]...), nil
	case KindHash:
		n := t.ByteLength()
		return append([]byte(nil), w[WordSize-n:]...), nil
	case KindAddress:
		if new(big.Int).SetBytes(w).BitLen() > 8*common.AddressLength {
			return nil, invalidDataf("invalid address word %s", hexutil.Encode(w))
		}
		return common.BytesToAddress(w), nil
	default:
		return nil, unsupportedf(nil, "unsupported type %s", t)
	}
}

// decodeSigned accepts the zero padded two's complement written by the encoder
// as well as the sign extended form.
func decodeSigned(w []byte, t *Type, bits int) (interface{}, error) {
	i := new(big.Int).SetBytes(w)
	if i.BitLen() > bits {
		if i.Cmp(tt255) < 0 {
			return nil, invalidDataf("value out of range for %s", t)
		}
		i.Sub(i, tt256)
		if i.Cmp(new(big.Int).Neg(new(big.Int).Lsh(big1, uint(bits-1)))) < 0 {
			return nil, invalidDataf("value out of range for %s", t)
		}
		return i, nil
	}
	if i.Bit(bits-1) == 1 {
		i.Sub(i, new(big.Int).Lsh(big1, uint(bits)))
	}
	return i, nil
}
