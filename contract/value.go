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
	"bytes"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/intconv"
)

// Integer is an integer in text form: "0x" prefixed hex or decimal, with an optional sign.
type Integer string

func (i Integer) AsBigInt() (*big.Int, error) {
	s := strings.TrimSpace(string(i))
	neg := false
	if strings.HasPrefix(s, "-") {
		neg, s = true, s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base, s = 16, s[2:]
	}
	if len(s) == 0 || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return nil, errors.Errorf("fail to convert big.Int value:%s", string(i))
	}
	r, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, errors.Errorf("fail to convert big.Int value:%s", string(i))
	}
	if neg {
		r.Neg(r)
	}
	return r, nil
}

func (i Integer) AsInt64() (int64, error) {
	r, err := i.AsBigInt()
	if err != nil {
		return 0, err
	}
	if !r.IsInt64() {
		return 0, errors.Errorf("out of int64 range value:%s", string(i))
	}
	return r.Int64(), nil
}

func (i Integer) AsUint64() (uint64, error) {
	r, err := i.AsBigInt()
	if err != nil {
		return 0, err
	}
	if !r.IsUint64() {
		return 0, errors.Errorf("out of uint64 range value:%s", string(i))
	}
	return r.Uint64(), nil
}

func FromInt64(i int64) Integer {
	return FromBigInt(big.NewInt(i))
}

func FromUint64(i uint64) Integer {
	return FromBigInt(new(big.Int).SetUint64(i))
}

func FromBigInt(i *big.Int) Integer {
	return Integer(intconv.FormatBigInt(i))
}

type Boolean bool
type String string

// Bytes is a byte string, marshalled as 0x prefixed hex.
type Bytes []byte

func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexutil.Encode(b))
}

func (b *Bytes) UnmarshalJSON(input []byte) error {
	var s string
	if err := json.Unmarshal(input, &s); err != nil {
		return err
	}
	v, err := hexutil.Decode(s)
	if err != nil {
		return errors.Wrapf(err, "fail to decode hex value:%s err:%s", s, err.Error())
	}
	*b = v
	return nil
}

// Address is a 20-byte account address in hex form.
type Address string

func (a Address) Common() (common.Address, error) {
	s := string(a)
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Errorf("invalid address value:%s", s)
	}
	return common.HexToAddress(s), nil
}

// Decimal is an exact decimal rendering of a fixed-point value.
type Decimal string

func (d Decimal) AsRat() (*big.Rat, error) {
	r, ok := new(big.Rat).SetString(string(d))
	if !ok {
		return nil, errors.Errorf("fail to convert big.Rat value:%s", string(d))
	}
	return r, nil
}

// FromRat renders r exactly when its denominator is a power of two, as fixed-point values always are.
func FromRat(r *big.Rat) Decimal {
	if r.IsInt() {
		return Decimal(r.Num().String())
	}
	den := r.Denom()
	if den.Cmp(new(big.Int).Lsh(big.NewInt(1), uint(den.BitLen()-1))) != 0 {
		return Decimal(r.RatString())
	}
	s := r.FloatString(den.BitLen() - 1)
	return Decimal(strings.TrimRight(s, "0"))
}

type Params map[string]interface{}

type KeyValue struct {
	Key   string
	Value interface{}
}

// Struct keeps field order, which Params can not.
type Struct struct {
	Name   string
	Fields []KeyValue
}

func (s Struct) Params() Params {
	p := make(Params, len(s.Fields))
	for _, f := range s.Fields {
		p[f.Key] = f.Value
	}
	return p
}

func (s Struct) Get(key string) (interface{}, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func (s Struct) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, f := range s.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
