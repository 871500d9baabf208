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

package database

import (
	"database/sql"
	"regexp"
	"strings"
	"time"

	"github.com/icon-project/btp2/common/errors"
	"gorm.io/gorm"
)

type Model struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Pageable struct {
	// Page 0-indexed
	Page uint `json:"page" query:"page"`
	// Size zero for unlimited
	Size uint `json:"size" query:"size"`
	// Sort for example "FIELD desc,FIELD"
	Sort string `json:"sort,omitempty" query:"sort"`
}

var (
	sortRegexp = regexp.MustCompile(`^[a-z_][a-z0-9_]*( (?i:asc|desc))?$`)
)

// Validate checks Sort against the "FIELD [asc|desc],..." form, so it can be
// passed to the database as is.
func (p Pageable) Validate() error {
	if len(p.Sort) == 0 {
		return nil
	}
	for _, s := range strings.Split(p.Sort, ",") {
		if !sortRegexp.MatchString(strings.TrimSpace(s)) {
			return errors.IllegalArgumentError.Errorf("invalid sort:%s", p.Sort)
		}
	}
	return nil
}

type Page[T any] struct {
	Content       []T      `json:"content"`
	TotalElements int      `json:"total_elements"`
	TotalPages    int      `json:"total_pages"`
	Pageable      Pageable `json:"pageable"`
}

type Repository[T any] interface {
	Save(v *T) error
	Delete(query interface{}, conds ...interface{}) error
	FindOne(query interface{}, conds ...interface{}) (*T, error)
	FindWithOrder(order string, query interface{}, conds ...interface{}) ([]T, error)
	Page(p Pageable, query interface{}, conds ...interface{}) (*Page[T], error)
	Transaction(fc func(tx Repository[T]) error, opts ...*sql.TxOptions) error
}

type DefaultRepository[T any] struct {
	db   *gorm.DB
	name string
}

func NewDefaultRepository[T any](db *gorm.DB, name string) (*DefaultRepository[T], error) {
	if err := db.Table(name).AutoMigrate(new(T)); err != nil {
		return nil, errors.Wrapf(err, "fail to AutoMigrate table:%s err:%s", name, err.Error())
	}
	return &DefaultRepository[T]{
		db:   db,
		name: name,
	}, nil
}

func (r *DefaultRepository[T]) table() *gorm.DB {
	if len(r.name) > 0 {
		return r.db.Table(r.name)
	} else {
		return r.db
	}
}

func (r *DefaultRepository[T]) Save(v *T) error {
	return r.table().Save(v).Error
}

func (r *DefaultRepository[T]) Delete(query interface{}, conds ...interface{}) error {
	return r.table().Delete(query, conds...).Error
}

func (r *DefaultRepository[T]) where(query interface{}, conds ...interface{}) *gorm.DB {
	ret := r.table()
	if query != nil {
		ret = ret.Where(query, conds...)
	}
	return ret
}

func filterError(err error) error {
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	return nil
}

func (r *DefaultRepository[T]) FindOne(query interface{}, conds ...interface{}) (*T, error) {
	v := new(T)
	err := r.where(query, conds...).First(v).Error
	if err != nil {
		return nil, filterError(err)
	}
	return v, nil
}

// FindWithOrder returns all matches of query, ordered by order if not empty.
func (r *DefaultRepository[T]) FindWithOrder(order string, query interface{}, conds ...interface{}) ([]T, error) {
	ret := r.where(query, conds...)
	if len(order) > 0 {
		ret = ret.Order(order)
	}
	var l []T
	if err := ret.Find(&l).Error; err != nil {
		return nil, filterError(err)
	}
	return l, nil
}

func (r *DefaultRepository[T]) Page(p Pageable, query interface{}, conds ...interface{}) (*Page[T], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var count int64
	if err := r.where(query, conds...).Count(&count).Error; err != nil {
		return nil, err
	}
	ret := &Page[T]{
		Pageable:      p,
		TotalElements: int(count),
		Content:       make([]T, 0),
	}
	if count == 0 {
		return ret, nil
	}
	q := r.where(query, conds...)
	ret.TotalPages = 1
	if p.Size > 0 {
		ret.TotalPages = int((count + int64(p.Size) - 1) / int64(p.Size))
		q = q.Offset(int(p.Page * p.Size)).Limit(int(p.Size))
	}
	if len(p.Sort) > 0 {
		q = q.Order(p.Sort)
	}
	if err := q.Find(&ret.Content).Error; err != nil {
		return nil, filterError(err)
	}
	return ret, nil
}

func (r *DefaultRepository[T]) tx(db *gorm.DB) *DefaultRepository[T] {
	return &DefaultRepository[T]{
		db:   db,
		name: r.name,
	}
}

func (r *DefaultRepository[T]) Transaction(fc func(tx Repository[T]) error, opts ...*sql.TxOptions) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fc(r.tx(tx))
	}, opts...)
}
