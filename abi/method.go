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
	"bytes"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	SelectorSize = 4
)

var (
	methodNameRegexp = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

// Method is a function signature with its 4-byte selector.
type Method struct {
	Name   string
	Inputs []*Type
	Sig    string
	ID     []byte
}

// ParseMethod parses "name(type1,type2,...)", parameter names being allowed after each type.
func ParseMethod(signature string) (*Method, error) {
	s := strings.TrimSpace(signature)
	open := strings.IndexByte(s, '(')
	if open < 0 || s[len(s)-1] != ')' {
		return nil, invalidSignaturef(signature, "method signature requires name(types)")
	}
	if matchingParen(s, open) != len(s)-1 {
		return nil, invalidSignaturef(signature, "unbalanced parentheses")
	}
	name := strings.TrimSpace(s[:open])
	if !methodNameRegexp.MatchString(name) {
		return nil, invalidSignaturef(signature, "invalid method name %q", name)
	}
	inputs, err := ParseTypeList(s[open+1 : len(s)-1])
	if err != nil {
		return nil, err
	}
	return NewMethod(name, inputs), nil
}

func NewMethod(name string, inputs []*Type) *Method {
	sb := &strings.Builder{}
	sb.WriteString(name)
	sb.WriteByte('(')
	for i, t := range inputs {
		if i > 0 {
			sb.WriteByte(',')
		}
		t.writeTo(sb)
	}
	sb.WriteByte(')')
	sig := sb.String()
	return &Method{
		Name:   name,
		Inputs: inputs,
		Sig:    sig,
		ID:     crypto.Keccak256([]byte(sig))[:SelectorSize],
	}
}

// Selector returns the first 4 bytes of the keccak256 hash of the canonical signature.
func Selector(signature string) ([]byte, error) {
	m, err := ParseMethod(signature)
	if err != nil {
		return nil, err
	}
	return m.ID, nil
}

func (m *Method) String() string {
	return m.Sig
}

func (m *Method) Selector() string {
	return hexutil.Encode(m.ID)
}

// Encode returns the call data: the selector followed by the unpacked encoding of values.
func (m *Method) Encode(values ...interface{}) ([]byte, error) {
	b, err := Encode(m.Inputs, values, false)
	if err != nil {
		return nil, err
	}
	return append(append(make([]byte, 0, SelectorSize+len(b)), m.ID...), b...), nil
}

func (m *Method) Decode(data []byte) ([]interface{}, error) {
	if len(data) < SelectorSize {
		return nil, invalidDataf("call data shorter than selector")
	}
	if !bytes.Equal(data[:SelectorSize], m.ID) {
		return nil, invalidDataf("selector %s does not match %s of %s",
			hexutil.Encode(data[:SelectorSize]), m.Selector(), m.Sig)
	}
	return Decode(m.Inputs, data[SelectorSize:])
}
