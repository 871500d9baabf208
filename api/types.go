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

package api

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/icon-project/btp2/common/errors"

	"github.com/icon-project/btp-abi/abi"
	"github.com/icon-project/btp-abi/contract"
)

type EncodeRequest struct {
	Types  []string      `json:"types" validate:"required"`
	Values []interface{} `json:"values"`
	Packed bool          `json:"packed,omitempty"`
}

type EncodeResponse struct {
	Data hexutil.Bytes `json:"data"`
}

type DecodeRequest struct {
	Types []string      `json:"types" validate:"required"`
	Data  hexutil.Bytes `json:"data"`
}

type DecodeResponse struct {
	Values []interface{} `json:"values"`
}

type SelectorRequest struct {
	Signature string `json:"signature" query:"signature" validate:"required"`
}

type SelectorResponse struct {
	Signature string        `json:"signature"`
	Selector  hexutil.Bytes `json:"selector"`
}

type RegisterRequest struct {
	Signature string `json:"signature" validate:"required"`
}

type CallEncodeRequest struct {
	Values []interface{} `json:"values"`
}

type CallDecodeRequest struct {
	Data hexutil.Bytes `json:"data" validate:"required"`
}

// wsEncodeReply is what a client reads from the encode stream, either
// an EncodeResponse or an ErrorResponse.
type wsEncodeReply struct {
	Code    errors.Code     `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (r *wsEncodeReply) result() (hexutil.Bytes, error) {
	if r.Code != errors.Success || len(r.Message) > 0 {
		return nil, &ErrorResponse{Code: r.Code, Message: r.Message, Data: r.Data}
	}
	var b hexutil.Bytes
	if err := json.Unmarshal(r.Data, &b); err != nil {
		return nil, err
	}
	return b, nil
}

// UnmarshalBody decodes JSON keeping numbers as json.Number, so that 256-bit integers survive.
func UnmarshalBody(b io.ReadCloser, v interface{}) error {
	defer b.Close()
	return decodeJSON(b, v)
}

func unmarshalJSON(b []byte, v interface{}) error {
	return decodeJSON(bytes.NewReader(b), v)
}

func decodeJSON(r io.Reader, v interface{}) error {
	d := json.NewDecoder(r)
	d.UseNumber()
	return d.Decode(v)
}

// ValuesOf prepares JSON decoded values for types: numeric text becomes
// contract.Integer or contract.Decimal and 0x prefixed text for hashes is decoded,
// other values are kept.
func ValuesOf(types []*abi.Type, values []interface{}) []interface{} {
	if len(types) != len(values) {
		return values
	}
	ret := make([]interface{}, len(values))
	for i, v := range values {
		ret[i] = valueOf(types[i], v)
	}
	return ret
}

func valueOf(t *abi.Type, v interface{}) interface{} {
	if t.IsArray() {
		l, ok := v.([]interface{})
		if !ok {
			return v
		}
		sub := t.NestedSub()
		ret := make([]interface{}, len(l))
		for i, e := range l {
			ret[i] = valueOf(sub, e)
		}
		return ret
	}
	switch t.Kind() {
	case abi.KindUint, abi.KindInt:
		if s, ok := v.(string); ok {
			return contract.Integer(s)
		}
	case abi.KindUfixed, abi.KindFixed:
		if s, ok := v.(string); ok {
			return contract.Decimal(s)
		}
	case abi.KindHash:
		if s, ok := v.(string); ok && abi.IsHexPrefixed(s) {
			if b, err := hexutil.Decode(s); err == nil {
				return b
			}
		}
	case abi.KindTuple:
		switch tv := v.(type) {
		case []interface{}:
			if len(tv) != len(t.Components) {
				return v
			}
			ret := make([]interface{}, len(tv))
			for i, e := range tv {
				ret[i] = valueOf(t.Components[i], e)
			}
			return ret
		case map[string]interface{}:
			ret := make(map[string]interface{}, len(tv))
			for k, e := range tv {
				ret[k] = e
			}
			for _, c := range t.Components {
				if e, ok := tv[c.Name]; ok {
					ret[c.Name] = valueOf(c, e)
				}
			}
			return ret
		}
	}
	return v
}

// ParamsOf converts decoded values to their JSON form, see contract.ParamOf.
func ParamsOf(values []interface{}) ([]interface{}, error) {
	ret := make([]interface{}, len(values))
	for i, v := range values {
		p, err := contract.ParamOf(v)
		if err != nil {
			return nil, err
		}
		ret[i] = p
	}
	return ret, nil
}
