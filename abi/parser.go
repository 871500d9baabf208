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
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/icon-project/btp2/common/log"
)

const (
	MaxDimension = 1 << 24
)

var (
	typeRegexp  = regexp.MustCompile(`^([a-z]+)([0-9]*x?[0-9]*)((?:\[[0-9]*\])*)$`)
	dimsRegexp  = regexp.MustCompile(`^(?:\[[0-9]*\])*$`)
	dimRegexp   = regexp.MustCompile(`\[([0-9]*)\]`)
	fixedRegexp = regexp.MustCompile(`^([0-9]+)x([0-9]+)$`)
)

// Argument is the JSON ABI representation of a typed parameter.
type Argument struct {
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	InternalType string     `json:"internalType,omitempty"`
	Components   []Argument `json:"components,omitempty"`
}

func (a Argument) ToType() (*Type, error) {
	t, err := ParseType(a.Type, a.Components...)
	if err != nil {
		return nil, err
	}
	t.Name = a.Name
	return t, nil
}

// ArgumentOf converts t back to its JSON ABI form, tuples being written as "tuple" with components.
func ArgumentOf(t *Type) Argument {
	a := Argument{Name: t.Name}
	if t.Kind() == KindTuple {
		a.Type = BaseTuple + dimensionString(t.Dimensions)
		a.Components = make([]Argument, len(t.Components))
		for i, c := range t.Components {
			a.Components[i] = ArgumentOf(c)
		}
	} else {
		a.Type = t.BaseType + t.SubType + dimensionString(t.Dimensions)
	}
	return a
}

func dimensionString(dims []int) string {
	sb := &strings.Builder{}
	for i := len(dims) - 1; i >= 0; i-- {
		sb.WriteByte('[')
		if dims[i] > 0 {
			sb.WriteString(strconv.Itoa(dims[i]))
		}
		sb.WriteByte(']')
	}
	return sb.String()
}

func MustParseType(signature string, components ...Argument) *Type {
	t, err := ParseType(signature, components...)
	if err != nil {
		log.Panicf("fail to ParseType signature:%s err:%+v", signature, err)
	}
	return t
}

// ParseType parses a single type signature such as "uint256", "bytes32[2][]" or "(address,string)[]".
// Components are required when the signature names the "tuple" base type.
func ParseType(signature string, components ...Argument) (*Type, error) {
	t, err := parseType(strings.TrimSpace(signature), components, 0)
	if err != nil {
		return nil, err
	}
	if d := t.Depth(); d > MaxTypeDepth {
		return nil, unsupportedf(signature, "type nesting depth %d exceeds %d", d, MaxTypeDepth)
	}
	return t, nil
}

func ParseTypes(signatures []string) ([]*Type, error) {
	ts := make([]*Type, len(signatures))
	for i, s := range signatures {
		t, err := ParseType(s)
		if err != nil {
			return nil, err
		}
		ts[i] = t
	}
	return ts, nil
}

// ParseTypeList parses a comma separated list of types, each optionally followed by a name.
func ParseTypeList(list string) ([]*Type, error) {
	ts, err := parseComponents(list, 0)
	if err != nil {
		return nil, err
	}
	for _, t := range ts {
		if d := t.Depth(); d > MaxTypeDepth {
			return nil, unsupportedf(list, "type nesting depth %d exceeds %d", d, MaxTypeDepth)
		}
	}
	return ts, nil
}

func parseType(sig string, components []Argument, depth int) (*Type, error) {
	if depth > MaxTypeDepth {
		return nil, unsupportedf(sig, "type nesting exceeds %d", MaxTypeDepth)
	}
	if len(sig) == 0 {
		return nil, invalidSignaturef(sig, "empty type")
	}
	if sig[0] == '(' {
		end := matchingParen(sig, 0)
		if end < 0 {
			return nil, invalidSignaturef(sig, "unbalanced parentheses")
		}
		cs, err := parseComponents(sig[1:end], depth+1)
		if err != nil {
			return nil, err
		}
		if len(cs) == 0 {
			return nil, invalidSignaturef(sig, "empty tuple")
		}
		dims, err := parseDimensions(sig, sig[end+1:])
		if err != nil {
			return nil, err
		}
		return &Type{BaseType: BaseTuple, Dimensions: dims, Components: cs}, nil
	}
	m := typeRegexp.FindStringSubmatch(sig)
	if m == nil {
		return nil, invalidSignaturef(sig, "malformed type")
	}
	dims, err := parseDimensions(sig, m[3])
	if err != nil {
		return nil, err
	}
	t := &Type{BaseType: m[1], SubType: m[2], Dimensions: dims}
	if t.BaseType == BaseTuple {
		if len(components) == 0 {
			return nil, invalidSignaturef(sig, "tuple without components")
		}
		t.Components = make([]*Type, len(components))
		for i, a := range components {
			c, err := parseType(strings.TrimSpace(a.Type), a.Components, depth+1)
			if err != nil {
				return nil, err
			}
			c.Name = a.Name
			t.Components[i] = c
		}
	}
	if err = validateBaseType(sig, t); err != nil {
		return nil, err
	}
	return t, nil
}

func validateBaseType(sig string, t *Type) error {
	switch t.BaseType {
	case BaseString, BaseBool, BaseAddress, BaseTuple:
		if len(t.SubType) > 0 {
			return invalidSignaturef(sig, "%s takes no size", t.BaseType)
		}
	case BaseBytes:
		if len(t.SubType) > 0 {
			if n, err := strconv.Atoi(t.SubType); err != nil || n < 1 || n > 32 {
				return invalidSignaturef(sig, "bytes size must be in 1..32")
			}
		}
	case BaseHash:
		if n, err := strconv.Atoi(t.SubType); err != nil || n < 1 || n > 32 {
			return invalidSignaturef(sig, "hash size must be in 1..32")
		}
	case BaseUint, BaseInt:
		if len(t.SubType) == 0 {
			t.SubType = "256"
		}
		n, err := strconv.Atoi(t.SubType)
		if err != nil || n < 8 || n > 256 || n%8 != 0 {
			return invalidSignaturef(sig, "integer size must be a multiple of 8 in 8..256")
		}
	case BaseUfixed, BaseFixed, BaseUreal, BaseReal:
		m := fixedRegexp.FindStringSubmatch(t.SubType)
		if m == nil {
			return invalidSignaturef(sig, "fixed-point type requires HxL size")
		}
		high, _ := strconv.Atoi(m[1])
		low, _ := strconv.Atoi(m[2])
		if total := high + low; total < 8 || total > 256 {
			return invalidSignaturef(sig, "fixed-point size out of bounds (max 32 bytes)")
		}
		if high%8 != 0 || low%8 != 0 {
			return invalidSignaturef(sig, "fixed-point high and low must be multiples of 8")
		}
	default:
		return unsupportedf(sig, "unknown base type %s", t.BaseType)
	}
	return nil
}

// parseDimensions returns the dimensions of s, outermost first.
func parseDimensions(sig, s string) ([]int, error) {
	if !dimsRegexp.MatchString(s) {
		return nil, invalidSignaturef(sig, "malformed dimensions %s", s)
	}
	ms := dimRegexp.FindAllStringSubmatch(s, -1)
	if len(ms) == 0 {
		return nil, nil
	}
	dims := make([]int, len(ms))
	for i, m := range ms {
		n := 0
		if len(m[1]) > 0 {
			var err error
			if n, err = strconv.Atoi(m[1]); err != nil || n > MaxDimension {
				return nil, unsupportedf(sig, "dimension %s exceeds %d", m[1], MaxDimension)
			}
			if n == 0 {
				return nil, invalidSignaturef(sig, "zero-length dimension")
			}
		}
		dims[len(ms)-1-i] = n
	}
	return dims, nil
}

func parseComponents(s string, depth int) ([]*Type, error) {
	items, err := splitTopLevel(s)
	if err != nil {
		return nil, err
	}
	ts := make([]*Type, 0, len(items))
	for _, item := range items {
		sig, name := splitTypeAndName(item)
		t, err := parseType(sig, nil, depth)
		if err != nil {
			return nil, err
		}
		t.Name = name
		ts = append(ts, t)
	}
	return ts, nil
}

func splitTopLevel(s string) ([]string, error) {
	if len(strings.TrimSpace(s)) == 0 {
		return nil, nil
	}
	var (
		items []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth--; depth < 0 {
				return nil, invalidSignaturef(s, "unbalanced parentheses")
			}
		case ',':
			if depth == 0 {
				items = append(items, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, invalidSignaturef(s, "unbalanced parentheses")
	}
	items = append(items, strings.TrimSpace(s[start:]))
	for _, item := range items {
		if len(item) == 0 {
			return nil, invalidSignaturef(s, "empty element in type list")
		}
	}
	return items, nil
}

var dataLocations = map[string]bool{"memory": true, "calldata": true, "storage": true, "indexed": true}

// splitTypeAndName separates "uint256 amount" into its type and name parts.
func splitTypeAndName(item string) (string, string) {
	depth := 0
	for i, r := range item {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
		case depth == 0 && unicode.IsSpace(r):
			fields := strings.Fields(item[i:])
			name := ""
			for _, f := range fields {
				if !dataLocations[f] {
					name = f
				}
			}
			return item[:i], name
		}
	}
	return item, ""
}

func matchingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth--; depth == 0 {
				return i
			}
		}
	}
	return -1
}
