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
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/icon-project/btp-abi/contract"
)

var (
	big1       = big.NewInt(1)
	tt256      = math.BigPow(2, 256)
	tt255      = math.BigPow(2, 255)
	maxUint256 = new(big.Int).Sub(tt256, big1)
	maxInt256  = new(big.Int).Sub(tt255, big1)
	minInt256  = new(big.Int).Neg(tt255)
)

// EncodePrimitive encodes a single value of type t.
// Array types are passed on to the array rules of Encode, so any type is accepted.
func EncodePrimitive(t *Type, value interface{}, packed bool) ([]byte, error) {
	if t.IsArray() {
		return appendType(nil, t, value, packed, 0)
	}
	return encodePrimitive(t, value, packed, 0)
}

func encodePrimitive(t *Type, value interface{}, packed bool, depth int) ([]byte, error) {
	codecLogger.Traceln("encodePrimitive type:", t, "packed:", packed)
	switch t.Kind() {
	case KindUint:
		return encodeUint(t, value, packed)
	case KindInt:
		return encodeInt(t, value, packed)
	case KindBool:
		return encodeBool(t, value, packed)
	case KindUfixed:
		if packed {
			return nil, unsupportedf(value, "packed encoding of %s is not supported", t)
		}
		return encodeUfixed(t, value)
	case KindFixed:
		if packed {
			return nil, unsupportedf(value, "packed encoding of %s is not supported", t)
		}
		return encodeFixed(t, value)
	case KindString, KindBytes, KindFixedBytes:
		return encodeBytes(t, value, packed)
	case KindTuple:
		// tuples are laid out canonically even inside packed output
		return appendTuple(nil, t, value, depth)
	case KindHash:
		return encodeHash(t, value)
	case KindAddress:
		return encodeAddress(t, value, packed)
	default:
		return nil, unsupportedf(value, "unsupported type %s", t)
	}
}

func wordWidth(bits int, packed bool) int {
	if packed {
		return bits / 8
	}
	return WordSize
}

func integerOf(t *Type, value interface{}) (*big.Int, error) {
	i, err := contract.BigIntOf(value)
	if err != nil {
		return nil, typeMismatchf(value, "integer", "invalid value for %s err:%s", t, err.Error())
	}
	return i, nil
}

func encodeUint(t *Type, value interface{}, packed bool) ([]byte, error) {
	i, err := integerOf(t, value)
	if err != nil {
		return nil, err
	}
	if i.Sign() < 0 || i.Cmp(maxUint256) > 0 {
		return nil, outOfRangef(value, "0 <= x < 2^256", "number out of range for %s", t)
	}
	bits := t.Bits()
	if i.BitLen() > bits {
		return nil, outOfRangef(value, fmt.Sprintf("0 <= x < 2^%d", bits), "number out of range for %s", t)
	}
	return math.PaddedBigBytes(i, wordWidth(bits, packed)), nil
}

// encodeInt writes the two's complement of i in the declared width, zero padded to the word.
func encodeInt(t *Type, value interface{}, packed bool) ([]byte, error) {
	i, err := integerOf(t, value)
	if err != nil {
		return nil, err
	}
	if i.Cmp(minInt256) < 0 || i.Cmp(maxInt256) > 0 {
		return nil, outOfRangef(value, "-2^255 <= x < 2^255", "number out of range for %s", t)
	}
	bits := t.Bits()
	lim := math.BigPow(2, int64(bits-1))
	if i.Cmp(new(big.Int).Neg(lim)) < 0 || i.Cmp(lim) >= 0 {
		return nil, outOfRangef(value, fmt.Sprintf("-2^%d <= x < 2^%d", bits-1, bits-1),
			"number out of range for %s", t)
	}
	u := new(big.Int).Mod(i, math.BigPow(2, int64(bits)))
	return math.PaddedBigBytes(u, wordWidth(bits, packed)), nil
}

func encodeBool(t *Type, value interface{}, packed bool) ([]byte, error) {
	b, err := contract.BooleanOf(value)
	if err != nil {
		return nil, typeMismatchf(value, "bool", "invalid value for %s", t)
	}
	width := WordSize
	if packed {
		width = 1
	}
	ret := make([]byte, width)
	if b {
		ret[width-1] = 1
	}
	return ret, nil
}

func ratOf(t *Type, value interface{}) (*big.Rat, error) {
	r, err := contract.RatOf(value)
	if err != nil {
		return nil, typeMismatchf(value, "number", "invalid value for %s err:%s", t, err.Error())
	}
	return r, nil
}

func pow2Rat(n int) *big.Rat {
	if n >= 0 {
		return new(big.Rat).SetInt(new(big.Int).Lsh(big1, uint(n)))
	}
	return new(big.Rat).SetFrac(big1, new(big.Int).Lsh(big1, uint(-n)))
}

// roundRat rounds half away from zero.
func roundRat(r *big.Rat) *big.Int {
	den := r.Denom()
	q := new(big.Int).Abs(r.Num())
	q.Lsh(q, 1).Add(q, den)
	q.Quo(q, new(big.Int).Lsh(den, 1))
	if r.Sign() < 0 {
		q.Neg(q)
	}
	return q
}

func encodeUfixed(t *Type, value interface{}) ([]byte, error) {
	r, err := ratOf(t, value)
	if err != nil {
		return nil, err
	}
	high, low := t.Fixed()
	if r.Sign() < 0 || r.Cmp(pow2Rat(high)) >= 0 {
		return nil, outOfRangef(value, fmt.Sprintf("0 <= x < 2^%d", high), "number out of range for %s", t)
	}
	// rounding may reach 2^(H+L), which still fits the word
	v := roundRat(new(big.Rat).Mul(r, pow2Rat(low)))
	return math.PaddedBigBytes(v, WordSize), nil
}

func encodeFixed(t *Type, value interface{}) ([]byte, error) {
	r, err := ratOf(t, value)
	if err != nil {
		return nil, err
	}
	high, low := t.Fixed()
	expected := fmt.Sprintf("-2^%d <= x < 2^%d", high-1, high-1)
	lim := pow2Rat(high - 1)
	if r.Cmp(new(big.Rat).Neg(lim)) < 0 || r.Cmp(lim) >= 0 {
		return nil, outOfRangef(value, expected, "number out of range for %s", t)
	}
	v := roundRat(new(big.Rat).Mul(r, pow2Rat(low)))
	u := new(big.Int).Mod(v, new(big.Int).Lsh(big1, uint(high+low)))
	return math.PaddedBigBytes(u, WordSize), nil
}

func encodeBytes(t *Type, value interface{}, packed bool) ([]byte, error) {
	b, err := byteStringOf(t, value)
	if err != nil {
		return nil, err
	}
	if t.Kind() != KindFixedBytes {
		return appendByteString(nil, b, packed), nil
	}
	n := t.ByteLength()
	if len(b) > n {
		return nil, outOfRangef(value, fmt.Sprintf("at most %d bytes", n), "value too long for %s", t)
	}
	if packed {
		return append([]byte(nil), b...), nil
	}
	return ZeroPadRight(b, WordSize)
}

// appendByteString writes a length word and the right-padded payload, or the raw payload if packed.
func appendByteString(buf, b []byte, packed bool) []byte {
	if packed {
		return append(buf, b...)
	}
	buf = appendSizeWord(buf, len(b))
	buf = append(buf, b...)
	return append(buf, make([]byte, Ceil32(len(b))-len(b))...)
}

func encodeHash(t *Type, value interface{}) ([]byte, error) {
	n := t.ByteLength()
	if n < 1 || n > WordSize {
		return nil, outOfRangef(value, "hash size in 1..32", "invalid hash size of %s", t)
	}
	switch v := value.(type) {
	case string:
		return hashText(t, value, v, n)
	case contract.String:
		return hashText(t, value, string(v), n)
	}
	if b, err := contract.BytesOf(value); err == nil {
		if len(b) != n {
			return nil, outOfRangef(value, fmt.Sprintf("%d bytes", n), "could not parse %s", t)
		}
		return ZeroPadLeft(b, WordSize)
	}
	if i, err := contract.BigIntOf(value); err == nil {
		if i.Sign() < 0 || i.BitLen() > 8*WordSize {
			return nil, outOfRangef(value, "0 <= x < 2^256", "number out of range for %s", t)
		}
		return math.PaddedBigBytes(i, WordSize), nil
	}
	return nil, typeMismatchf(value, "integer, bytes or hex text", "invalid value for %s", t)
}

func hashText(t *Type, value interface{}, s string, n int) ([]byte, error) {
	switch {
	case len(s) == n:
		return ZeroPadLeft([]byte(s), WordSize)
	case len(s) == 2*n && !IsHexPrefixed(s) && IsHexText(s):
		b, err := HexToBinary(s)
		if err != nil {
			return nil, err
		}
		return ZeroPadLeft(b, WordSize)
	default:
		return nil, outOfRangef(value, fmt.Sprintf("%d bytes or %d hex digits", n, 2*n),
			"could not parse %s", t)
	}
}

// encodeAddress takes the first matching form of: typed address, integer,
// 20 byte binary, 40 hex digits and 0x prefixed 40 hex digits.
func encodeAddress(t *Type, value interface{}, packed bool) ([]byte, error) {
	width := WordSize
	if packed {
		width = common.AddressLength
	}
	switch v := value.(type) {
	case common.Address:
		return ZeroPadLeft(v.Bytes(), width)
	case *common.Address:
		if v != nil {
			return ZeroPadLeft(v.Bytes(), width)
		}
	case contract.Address:
		return addressOf(t, value, []byte(v), width)
	case string:
		return addressOf(t, value, []byte(v), width)
	case contract.String:
		return addressOf(t, value, []byte(v), width)
	case []byte:
		return addressOf(t, value, v, width)
	case contract.Bytes:
		return addressOf(t, value, v, width)
	case hexutil.Bytes:
		return addressOf(t, value, v, width)
	}
	i, err := contract.BigIntOf(value)
	if err != nil {
		return nil, typeMismatchf(value, "address", "invalid value for %s", t)
	}
	if i.Sign() < 0 || i.BitLen() > 8*common.AddressLength {
		return nil, outOfRangef(value, "0 <= x < 2^160", "number out of range for %s", t)
	}
	return math.PaddedBigBytes(i, width), nil
}

func addressOf(t *Type, value interface{}, b []byte, width int) ([]byte, error) {
	s := string(b)
	switch {
	case len(b) == common.AddressLength:
		return ZeroPadLeft(b, width)
	case len(b) == 2*common.AddressLength && !IsHexPrefixed(s) && IsHexText(s),
		len(b) == 2*common.AddressLength+2 && IsHexPrefixed(s) && IsHexText(s):
		a, err := HexToBinary(s)
		if err != nil {
			return nil, err
		}
		return ZeroPadLeft(a, width)
	default:
		return nil, outOfRangef(value, "20 bytes, 40 hex digits or 0x prefixed 40 hex digits",
			"could not parse %s", t)
	}
}
