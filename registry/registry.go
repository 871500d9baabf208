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

package registry

import (
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
	"gorm.io/gorm"

	"github.com/icon-project/btp-abi/abi"
	"github.com/icon-project/btp-abi/contract"
	"github.com/icon-project/btp-abi/database"
)

const (
	TableMethod = "method"
)

// MethodRecord is a registered function signature, addressed by its name.
type MethodRecord struct {
	database.Model
	Name      string `json:"name" gorm:"uniqueIndex;size:256"`
	Signature string `json:"signature" gorm:"size:4096"`
	Selector  string `json:"selector" gorm:"index;size:10"`
}

type Registry struct {
	r     database.Repository[MethodRecord]
	cache *abi.TypeCache
	l     log.Logger
}

func NewRegistry(db *gorm.DB, cache *abi.TypeCache, l log.Logger) (*Registry, error) {
	r, err := database.NewDefaultRepository[MethodRecord](db, TableMethod)
	if err != nil {
		return nil, err
	}
	return &Registry{
		r:     r,
		cache: cache,
		l:     l.WithFields(log.Fields{log.FieldKeyModule: "registry"}),
	}, nil
}

// Register stores the canonical form of signature under the method name,
// replacing the signature previously registered with the same name.
func (r *Registry) Register(signature string) (*MethodRecord, error) {
	m, err := r.cache.Method(signature)
	if err != nil {
		return nil, err
	}
	var ret *MethodRecord
	err = r.r.Transaction(func(tx database.Repository[MethodRecord]) error {
		found, err := tx.FindOne(&MethodRecord{Name: m.Name})
		if err != nil {
			return err
		}
		if found == nil {
			found = &MethodRecord{Name: m.Name}
		} else if found.Signature != m.Sig {
			r.l.Infof("replace method name:%s %s -> %s", m.Name, found.Signature, m.Sig)
		}
		found.Signature = m.Sig
		found.Selector = m.Selector()
		if err = tx.Save(found); err != nil {
			return err
		}
		ret = found
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fail to register method:%s err:%s", m.Name, err.Error())
	}
	r.l.Debugf("registered method name:%s sig:%s selector:%s", ret.Name, ret.Signature, ret.Selector)
	return ret, nil
}

func (r *Registry) Get(name string) (*MethodRecord, error) {
	if len(name) == 0 {
		return nil, contract.ErrorCodeInvalidParam.Errorf("method name required")
	}
	found, err := r.r.FindOne(&MethodRecord{Name: name})
	if err != nil {
		return nil, errors.Wrapf(err, "fail to find method:%s err:%s", name, err.Error())
	}
	if found == nil {
		return nil, contract.ErrorCodeNotFoundMethod.Errorf("not found method:%s", name)
	}
	return found, nil
}

// FindBySelector returns the methods whose selector is the given 0x prefixed hex.
func (r *Registry) FindBySelector(selector string) ([]MethodRecord, error) {
	l, err := r.r.FindWithOrder("name", &MethodRecord{Selector: selector})
	if err != nil {
		return nil, errors.Wrapf(err, "fail to find selector:%s err:%s", selector, err.Error())
	}
	return l, nil
}

func (r *Registry) List(p database.Pageable) (*database.Page[MethodRecord], error) {
	if len(p.Sort) == 0 {
		p.Sort = "name"
	}
	if err := p.Validate(); err != nil {
		return nil, contract.ErrorCodeInvalidParam.Wrap(err, err.Error())
	}
	return r.r.Page(p, nil)
}

func (r *Registry) Remove(name string) error {
	found, err := r.Get(name)
	if err != nil {
		return err
	}
	if err = r.r.Delete(found); err != nil {
		return errors.Wrapf(err, "fail to delete method:%s err:%s", name, err.Error())
	}
	r.l.Debugf("removed method name:%s", name)
	return nil
}

// Method returns the parsed form of the registered method.
func (r *Registry) Method(name string) (*abi.Method, error) {
	found, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return r.cache.Method(found.Signature)
}

// EncodeCall returns the call data of the registered method for values.
func (r *Registry) EncodeCall(name string, values []interface{}) ([]byte, error) {
	m, err := r.Method(name)
	if err != nil {
		return nil, err
	}
	return m.Encode(values...)
}

func (r *Registry) DecodeCall(name string, data []byte) ([]interface{}, error) {
	m, err := r.Method(name)
	if err != nil {
		return nil, err
	}
	return m.Decode(data)
}
