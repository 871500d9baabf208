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
	"reflect"

	"github.com/icon-project/btp2/common/log"

	"github.com/icon-project/btp-abi/contract"
)

var (
	codecLogger = log.New()
)

func init() {
	codecLogger.SetLevel(log.DebugLevel)
}

// Encode encodes values against types. Unpacked output places static values and offsets
// in a head followed by the dynamic tails; packed output is the plain concatenation of
// each value encoded in packed mode.
func Encode(types []*Type, values []interface{}, packed bool) ([]byte, error) {
	if len(types) != len(values) {
		return nil, typeMismatchf(values, fmt.Sprintf("%d values", len(types)),
			"number of values %d does not match number of types %d", len(values), len(types))
	}
	var err error
	if packed {
		var out []byte
		for i, t := range types {
			if out, err = appendType(out, t, values[i], true, 0); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	headSize := 0
	for _, t := range types {
		if t.IsDynamic() {
			headSize += WordSize
		} else {
			headSize += t.StaticSize()
		}
	}
	head := make([]byte, 0, headSize)
	var tail []byte
	for i, t := range types {
		if t.IsDynamic() {
			head = appendSizeWord(head, headSize+len(tail))
			if tail, err = appendType(tail, t, values[i], false, 0); err != nil {
				return nil, err
			}
		} else if head, err = appendType(head, t, values[i], false, 0); err != nil {
			return nil, err
		}
	}
	return append(head, tail...), nil
}

// EncodeType encodes a single value of type t and appends nothing else.
func EncodeType(t *Type, value interface{}, packed bool) ([]byte, error) {
	return appendType(nil, t, value, packed, 0)
}

func isDynamicByteString(t *Type) bool {
	k := t.Kind()
	return !t.IsArray() && (k == KindString || k == KindBytes)
}

// appendType appends the encoding of value to buf and returns the extended buffer.
func appendType(buf []byte, t *Type, value interface{}, packed bool, depth int) ([]byte, error) {
	if depth > MaxTypeDepth {
		return nil, unsupportedf(value, "type nesting exceeds %d", MaxTypeDepth)
	}
	codecLogger.Traceln("encode type:", t, "packed:", packed)
	switch {
	case isDynamicByteString(t):
		b, err := byteStringOf(t, value)
		if err != nil {
			return nil, err
		}
		return appendByteString(buf, b, packed), nil
	// static tuple arrays fall through to the in-place layout
	case t.Kind() == KindTuple && len(t.Dimensions) == 1 && t.Dimensions[0] > 0 && t.IsDynamic():
		elems, err := sequenceOf(t, value)
		if err != nil {
			return nil, err
		}
		return appendStructOffsets(buf, t.NestedSub(), elems, depth)
	case t.IsArray() && t.IsDynamic():
		elems, err := sequenceOf(t, value)
		if err != nil {
			return nil, err
		}
		return appendDynamicArray(buf, t, elems, packed, depth)
	case t.IsArray():
		elems, err := sequenceOf(t, value)
		if err != nil {
			return nil, err
		}
		sub := t.NestedSub()
		for _, e := range elems {
			if buf, err = appendType(buf, sub, e, packed, depth+1); err != nil {
				return nil, err
			}
		}
		return buf, nil
	default:
		b, err := encodePrimitive(t, value, packed, depth)
		if err != nil {
			return nil, err
		}
		return append(buf, b...), nil
	}
}

// appendDynamicArray writes the element count (unpacked only) and the elements.
// Unpacked arrays of byte strings and of dynamic tuples get an offset table,
// other elements follow each other without offsets.
func appendDynamicArray(buf []byte, t *Type, elems []interface{}, packed bool, depth int) ([]byte, error) {
	sub := t.NestedSub()
	if !packed {
		buf = appendSizeWord(buf, len(elems))
	}
	var err error
	switch {
	case !packed && isDynamicByteString(sub):
		payloads := make([][]byte, len(elems))
		for i, e := range elems {
			if payloads[i], err = byteStringOf(sub, e); err != nil {
				return nil, err
			}
		}
		offset := len(elems) * WordSize
		for i := range payloads {
			if i > 0 {
				offset += WordSize + Ceil32(len(payloads[i-1]))
			}
			buf = appendSizeWord(buf, offset)
		}
		for _, p := range payloads {
			buf = appendByteString(buf, p, false)
		}
		return buf, nil
	case !packed && sub.Kind() == KindTuple && sub.IsDynamic():
		return appendStructOffsets(buf, sub, elems, depth)
	}
	for _, e := range elems {
		if buf, err = appendType(buf, sub, e, packed, depth+1); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// appendStructOffsets writes an offset table followed by the unpacked element encodings.
func appendStructOffsets(buf []byte, sub *Type, elems []interface{}, depth int) ([]byte, error) {
	encs := make([][]byte, len(elems))
	var err error
	for i, e := range elems {
		if encs[i], err = appendType(nil, sub, e, false, depth+1); err != nil {
			return nil, err
		}
	}
	offset := len(elems) * WordSize
	for i := range encs {
		if i > 0 {
			offset += len(encs[i-1])
		}
		buf = appendSizeWord(buf, offset)
	}
	for _, enc := range encs {
		buf = append(buf, enc...)
	}
	return buf, nil
}

// appendTuple writes the canonical head/tail layout of a tuple.
func appendTuple(buf []byte, t *Type, value interface{}, depth int) ([]byte, error) {
	fields, err := tupleFieldsOf(t, value)
	if err != nil {
		return nil, err
	}
	headSize := 0
	for _, c := range t.Components {
		if c.IsDynamic() {
			headSize += WordSize
		} else {
			headSize += Ceil32(c.StaticSize())
		}
	}
	var tail []byte
	for i, c := range t.Components {
		if c.IsDynamic() {
			buf = appendSizeWord(buf, headSize+len(tail))
			if tail, err = appendType(tail, c, fields[i], false, depth+1); err != nil {
				return nil, err
			}
		} else if buf, err = appendType(buf, c, fields[i], false, depth+1); err != nil {
			return nil, err
		}
	}
	return append(buf, tail...), nil
}

// sequenceOf returns the elements of an array value, checking the count of fixed dimensions.
func sequenceOf(t *Type, value interface{}) ([]interface{}, error) {
	var elems []interface{}
	switch v := value.(type) {
	case []interface{}:
		elems = v
	case string, contract.String, contract.Integer, contract.Address, nil:
		return nil, typeMismatchf(value, "sequence", "invalid value for %s", t)
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, typeMismatchf(value, "sequence", "invalid value for %s", t)
		}
		elems = make([]interface{}, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
	}
	if n := t.Dimensions[0]; n > 0 && len(elems) != n {
		return nil, typeMismatchf(value, fmt.Sprintf("%d elements", n),
			"number of elements %d does not match %s", len(elems), t)
	}
	return elems, nil
}

// tupleFieldsOf returns the component values of a tuple in component order.
// Positional values are matched by index and keyed values by component name.
func tupleFieldsOf(t *Type, value interface{}) ([]interface{}, error) {
	var m map[string]interface{}
	switch v := value.(type) {
	case contract.Struct:
		m = v.Params()
	case map[string]interface{}:
		m = v
	case contract.Params:
		m = v
	default:
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			elems := make([]interface{}, rv.Len())
			for i := range elems {
				elems[i] = rv.Index(i).Interface()
			}
			if len(elems) != len(t.Components) {
				return nil, typeMismatchf(value, fmt.Sprintf("%d components", len(t.Components)),
					"number of values %d does not match %s", len(elems), t)
			}
			return elems, nil
		case reflect.Map:
			var err error
			if m, err = contract.MapOf(value); err != nil {
				return nil, typeMismatchf(value, "tuple", "invalid value for %s err:%s", t, err.Error())
			}
		case reflect.Struct, reflect.Ptr:
			kvs, _, err := contract.FieldsOf(value)
			if err != nil {
				return nil, typeMismatchf(value, "tuple", "invalid value for %s", t)
			}
			m = contract.Struct{Fields: kvs}.Params()
		default:
			return nil, typeMismatchf(value, "tuple", "invalid value for %s", t)
		}
	}
	if len(m) != len(t.Components) {
		return nil, typeMismatchf(value, fmt.Sprintf("%d components", len(t.Components)),
			"number of values %d does not match %s", len(m), t)
	}
	fields := make([]interface{}, len(t.Components))
	for i, c := range t.Components {
		v, ok := m[c.Name]
		if !ok || len(c.Name) == 0 {
			return nil, typeMismatchf(value, fmt.Sprintf("component %q", c.Name),
				"missing component %q for %s", c.Name, t)
		}
		fields[i] = v
	}
	return fields, nil
}
