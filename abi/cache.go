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

	lru "github.com/hashicorp/golang-lru"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
)

const (
	DefaultTypeCacheSize = 512
	methodKeyPrefix      = "method:"
)

// TypeCache keeps parsed signatures. Cached values are shared between callers.
type TypeCache struct {
	c *lru.Cache
}

func NewTypeCache(size int) (*TypeCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to lru.New err:%s", err.Error())
	}
	return &TypeCache{c: c}, nil
}

func MustNewTypeCache(size int) *TypeCache {
	c, err := NewTypeCache(size)
	if err != nil {
		log.Panicf("%+v", err)
	}
	return c
}

func (c *TypeCache) Types(signatures ...string) ([]*Type, error) {
	key := strings.Join(signatures, "\x00")
	if v, ok := c.c.Get(key); ok {
		return v.([]*Type), nil
	}
	ts, err := ParseTypes(signatures)
	if err != nil {
		return nil, err
	}
	c.c.Add(key, ts)
	return ts, nil
}

func (c *TypeCache) Method(signature string) (*Method, error) {
	key := methodKeyPrefix + signature
	if v, ok := c.c.Get(key); ok {
		return v.(*Method), nil
	}
	m, err := ParseMethod(signature)
	if err != nil {
		return nil, err
	}
	c.c.Add(key, m)
	return m, nil
}

func (c *TypeCache) Len() int {
	return c.c.Len()
}

func (c *TypeCache) Purge() {
	c.c.Purge()
}

var (
	defaultTypeCache = MustNewTypeCache(DefaultTypeCacheSize)
)

// EncodeSignatures is Encode with types given as signatures.
func EncodeSignatures(signatures []string, values []interface{}, packed bool) ([]byte, error) {
	ts, err := defaultTypeCache.Types(signatures...)
	if err != nil {
		return nil, err
	}
	return Encode(ts, values, packed)
}

func DecodeSignatures(signatures []string, data []byte) ([]interface{}, error) {
	ts, err := defaultTypeCache.Types(signatures...)
	if err != nil {
		return nil, err
	}
	return Decode(ts, data)
}
