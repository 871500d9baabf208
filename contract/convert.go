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
	"encoding/json"
	"math"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/intconv"
	"github.com/icon-project/btp2/common/log"
)

func MustParamOf(value interface{}) interface{} {
	ret, err := ParamOf(value)
	if err != nil {
		log.Panicf("fail to ParamOf err:%v", err)
	}
	return ret
}

// ParamOf converts a value into the JSON friendly value model:
// integers become Integer, byte strings Bytes, addresses Address and fixed-point values Decimal.
func ParamOf(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case Params:
		return ParamsOf(v)
	case Struct:
		return StructOf(v)
	case Address, common.Address, *common.Address:
		return AddressOf(v)
	case Integer, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, big.Int, *big.Int:
		return IntegerOf(v)
	case Decimal, big.Rat, *big.Rat:
		return DecimalOf(v)
	case json.Number, float32, float64:
		if i, err := BigIntOf(v); err == nil {
			return FromBigInt(i), nil
		}
		return DecimalOf(v)
	case Boolean, bool:
		return BooleanOf(v)
	case String, string:
		return StringOf(v)
	case Bytes, []byte, hexutil.Bytes:
		return BytesOf(v)
	default:
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Array:
			if rv.Type().Elem().Kind() == reflect.Uint8 {
				return BytesOf(v)
			}
			return listOf(rv)
		case reflect.Slice:
			return listOf(rv)
		case reflect.Struct:
			return StructOf(v)
		case reflect.Map:
			return ParamsOf(v)
		case reflect.Ptr:
			if rv.IsNil() {
				return nil, nil
			}
			return ParamOf(rv.Elem().Interface())
		default:
			return nil, errors.Errorf("not supported type %T", v)
		}
	}
}

func listOf(rv reflect.Value) ([]interface{}, error) {
	ret := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		p, err := ParamOf(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		ret[i] = p
	}
	return ret, nil
}

func MustIntegerOf(value interface{}) Integer {
	ret, err := IntegerOf(value)
	if err != nil {
		log.Panicf("fail to IntegerOf err:%v", err)
	}
	return ret
}

const (
	invalidInteger = ""
)

func IntegerOf(value interface{}) (Integer, error) {
	switch v := value.(type) {
	case Integer:
		if _, err := v.AsBigInt(); err != nil {
			return invalidInteger, err
		}
		return v, nil
	case string:
		return IntegerOf(Integer(v))
	case []byte:
		return Integer(intconv.FormatBigInt(intconv.BigIntSetBytes(new(big.Int), v))), nil
	default:
		i, err := BigIntOf(value)
		if err != nil {
			return invalidInteger, err
		}
		return FromBigInt(i), nil
	}
}

// BigIntOf converts Go integers, big numbers, Integer text, json.Number and integral floats.
// Plain strings are rejected so that text is never taken for a number by accident.
func BigIntOf(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case nil:
		return nil, errors.New("nil value")
	case *big.Int:
		if v == nil {
			return nil, errors.New("nil value")
		}
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case Integer:
		return v.AsBigInt()
	case json.Number:
		if i, ok := new(big.Int).SetString(string(v), 10); ok {
			return i, nil
		}
		r, ok := new(big.Rat).SetString(string(v))
		if !ok || !r.IsInt() {
			return nil, errors.Errorf("not an integer value:%s", string(v))
		}
		return new(big.Int).Set(r.Num()), nil
	case float64:
		return floatToBigInt(v)
	case float32:
		return floatToBigInt(float64(v))
	case bool, string, []byte:
		return nil, errors.Errorf("invalid type %T", value)
	default:
		rv := reflect.ValueOf(value)
		if rv.CanInt() {
			return big.NewInt(rv.Int()), nil
		} else if rv.CanUint() {
			return new(big.Int).SetUint64(rv.Uint()), nil
		} else {
			return nil, errors.Errorf("invalid type %T", value)
		}
	}
}

func floatToBigInt(f float64) (*big.Int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, errors.Errorf("not an integer value:%v", f)
	}
	i, _ := new(big.Float).SetFloat64(f).Int(nil)
	return i, nil
}

// RatOf converts any value accepted by BigIntOf as well as big.Rat, big.Float,
// Decimal, decimal json.Number and finite floats.
func RatOf(value interface{}) (*big.Rat, error) {
	switch v := value.(type) {
	case *big.Rat:
		if v == nil {
			return nil, errors.New("nil value")
		}
		return new(big.Rat).Set(v), nil
	case big.Rat:
		return new(big.Rat).Set(&v), nil
	case *big.Float:
		if v == nil || v.IsInf() {
			return nil, errors.Errorf("not a finite value:%v", v)
		}
		r, _ := v.Rat(nil)
		return r, nil
	case Decimal:
		return v.AsRat()
	case json.Number:
		r, ok := new(big.Rat).SetString(string(v))
		if !ok {
			return nil, errors.Errorf("not a number value:%s", string(v))
		}
		return r, nil
	case float64:
		return floatToRat(v)
	case float32:
		return floatToRat(float64(v))
	default:
		i, err := BigIntOf(value)
		if err != nil {
			return nil, err
		}
		return new(big.Rat).SetInt(i), nil
	}
}

func floatToRat(f float64) (*big.Rat, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errors.Errorf("not a finite value:%v", f)
	}
	return new(big.Rat).SetFloat64(f), nil
}

func DecimalOf(value interface{}) (Decimal, error) {
	r, err := RatOf(value)
	if err != nil {
		return "", err
	}
	return FromRat(r), nil
}

func MustBooleanOf(value interface{}) Boolean {
	ret, err := BooleanOf(value)
	if err != nil {
		log.Panicf("fail to BooleanOf err:%v", err)
	}
	return ret
}

func BooleanOf(value interface{}) (Boolean, error) {
	switch v := value.(type) {
	case Boolean:
		return v, nil
	case bool:
		return Boolean(v), nil
	default:
		return false, errors.Errorf("invalid type %T", v)
	}
}

func MustStringOf(value interface{}) String {
	ret, err := StringOf(value)
	if err != nil {
		log.Panicf("fail to StringOf err:%v", err)
	}
	return ret
}

func StringOf(value interface{}) (String, error) {
	switch v := value.(type) {
	case String:
		return v, nil
	case string:
		return String(v), nil
	default:
		return "", errors.Errorf("invalid type %T", v)
	}
}

func MustBytesOf(value interface{}) Bytes {
	ret, err := BytesOf(value)
	if err != nil {
		log.Panicf("fail to BytesOf err:%v", err)
	}
	return ret
}

// BytesOf accepts binary values only, including fixed size byte arrays such as common.Hash.
func BytesOf(value interface{}) (Bytes, error) {
	switch v := value.(type) {
	case Bytes:
		return v, nil
	case []byte:
		return v, nil
	case hexutil.Bytes:
		return Bytes(v), nil
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return b, nil
		}
		return nil, errors.Errorf("invalid type %T", v)
	}
}

func MustAddressOf(value interface{}) Address {
	ret, err := AddressOf(value)
	if err != nil {
		log.Panicf("fail to AddressOf err:%v", err)
	}
	return ret
}

func AddressOf(value interface{}) (Address, error) {
	switch v := value.(type) {
	case Address:
		if _, err := v.Common(); err != nil {
			return "", err
		}
		return v, nil
	case string:
		return AddressOf(Address(v))
	case common.Address:
		return Address(v.Hex()), nil
	case *common.Address:
		if v == nil {
			return "", errors.New("nil value")
		}
		return Address(v.Hex()), nil
	default:
		return "", errors.Errorf("invalid type %T", v)
	}
}

func MustStructOf(value interface{}) Struct {
	ret, err := StructOf(value)
	if err != nil {
		log.Panicf("fail to StructOf err:%v", err)
	}
	return ret
}

// StructOf converts a Go struct, using the json tag or the field name as key.
func StructOf(value interface{}) (Struct, error) {
	if v, ok := value.(Struct); ok {
		ret := Struct{Name: v.Name, Fields: make([]KeyValue, len(v.Fields))}
		for i, f := range v.Fields {
			p, err := ParamOf(f.Value)
			if err != nil {
				return v, err
			}
			ret.Fields[i] = KeyValue{Key: f.Key, Value: p}
		}
		return ret, nil
	}
	fields, name, err := FieldsOf(value)
	if err != nil {
		return Struct{}, err
	}
	ret := Struct{Name: name, Fields: make([]KeyValue, len(fields))}
	for i, f := range fields {
		p, err := ParamOf(f.Value)
		if err != nil {
			return Struct{}, err
		}
		ret.Fields[i] = KeyValue{Key: f.Key, Value: p}
	}
	return ret, nil
}

// FieldsOf returns the exported fields of a Go struct without converting their values.
func FieldsOf(value interface{}) ([]KeyValue, string, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, "", errors.Errorf("invalid type:%T", value)
	}
	rt := rv.Type()
	fields := make([]KeyValue, 0, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		fields = append(fields, KeyValue{Key: name, Value: rv.Field(i).Interface()})
	}
	return fields, rt.Name(), nil
}

func MustParamsOf(value interface{}) Params {
	ret, err := ParamsOf(value)
	if err != nil {
		log.Panicf("fail to ParamsOf err:%v", err)
	}
	return ret
}

func ParamsOf(value interface{}) (Params, error) {
	if v, ok := value.(Params); ok {
		ret := make(Params, len(v))
		for k, p := range v {
			var err error
			if ret[k], err = ParamOf(p); err != nil {
				return nil, err
			}
		}
		return ret, nil
	}
	m, err := MapOf(value)
	if err != nil {
		return nil, err
	}
	return ParamsOf(Params(m))
}

// MapOf returns the entries of a map with string keys without converting their values.
func MapOf(value interface{}) (map[string]interface{}, error) {
	switch v := value.(type) {
	case map[string]interface{}:
		return v, nil
	case Params:
		return v, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map {
		return nil, errors.Errorf("invalid type:%T", value)
	}
	if rv.Type().Key().Kind() != reflect.String {
		return nil, errors.Errorf("not supported key type %v", rv.Type().Key())
	}
	ret := make(map[string]interface{}, rv.Len())
	for _, k := range rv.MapKeys() {
		ret[k.String()] = rv.MapIndex(k).Interface()
	}
	return ret, nil
}
